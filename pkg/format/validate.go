package format

import (
	"regexp"
	"strings"
	"sync"

	"github.com/go-playground/validator/v10"
)

var (
	emailPattern = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)
	phonePattern = regexp.MustCompile(`^(09\d{9}|\+639\d{9})$`)
	namePattern  = regexp.MustCompile(`^[a-zA-Z\s'-]+$`)
	phoneNoise   = strings.NewReplacer(" ", "", "-", "", "\t", "")
)

// ValidEmail checks the loose local@domain.tld shape.
func ValidEmail(email string) bool {
	return emailPattern.MatchString(email)
}

// ValidPhone accepts Philippine mobile numbers as 09XXXXXXXXX or
// +639XXXXXXXXX, ignoring spaces and dashes. Empty is valid; the phone is
// optional.
func ValidPhone(phone string) bool {
	if phone == "" {
		return true
	}
	return phonePattern.MatchString(phoneNoise.Replace(phone))
}

// FormatPhone groups a mobile number as 09XX-XXX-XXXX or +63 9XX-XXX-XXXX;
// anything else is returned unchanged.
func FormatPhone(phone string) string {
	var digits strings.Builder
	for _, r := range phone {
		if r >= '0' && r <= '9' {
			digits.WriteRune(r)
		}
	}
	d := digits.String()
	switch {
	case strings.HasPrefix(d, "09") && len(d) == 11:
		return d[:4] + "-" + d[4:7] + "-" + d[7:]
	case strings.HasPrefix(d, "639") && len(d) == 12:
		return "+" + d[:2] + " " + d[2:5] + "-" + d[5:8] + "-" + d[8:]
	default:
		return phone
	}
}

// CheckPassword returns the first unmet password rule, or "" when the
// password is acceptable.
func CheckPassword(password string) string {
	switch {
	case len(password) < 8:
		return "Password must be at least 8 characters"
	case !strings.ContainsAny(password, "ABCDEFGHIJKLMNOPQRSTUVWXYZ"):
		return "Password must contain at least one uppercase letter"
	case !strings.ContainsAny(password, "abcdefghijklmnopqrstuvwxyz"):
		return "Password must contain at least one lowercase letter"
	case !strings.ContainsAny(password, "0123456789"):
		return "Password must contain at least one number"
	case !strings.ContainsAny(password, "!@#$%^&*"):
		return "Password must contain at least one special character (!@#$%^&*)"
	default:
		return ""
	}
}

// ValidName accepts letters, spaces, hyphens and apostrophes, at least two
// characters after trimming.
func ValidName(name string) bool {
	if len(strings.TrimSpace(name)) < 2 {
		return false
	}
	return namePattern.MatchString(name)
}

// ValidCompanyName requires 2 to 255 characters after trimming.
func ValidCompanyName(name string) bool {
	n := len(strings.TrimSpace(name))
	return n >= 2 && n <= 255
}

// SanitizeInput trims and drops angle brackets.
func SanitizeInput(input string) string {
	return strings.NewReplacer("<", "", ">", "").Replace(strings.TrimSpace(input))
}

var (
	validateOnce sync.Once
	validate     *validator.Validate
)

// Validator returns a shared validator with the clinic tags registered:
// ph_mobile (ValidPhone) and strong_password (CheckPassword).
func Validator() *validator.Validate {
	validateOnce.Do(func() {
		v := validator.New(validator.WithRequiredStructEnabled())
		v.RegisterTagNameFunc(jsonTagName)
		// Registration only fails for empty tags or nil functions.
		_ = v.RegisterValidation("ph_mobile", func(fl validator.FieldLevel) bool {
			return ValidPhone(fl.Field().String())
		})
		_ = v.RegisterValidation("strong_password", func(fl validator.FieldLevel) bool {
			return CheckPassword(fl.Field().String()) == ""
		})
		_ = v.RegisterValidation("person_name", func(fl validator.FieldLevel) bool {
			return ValidName(fl.Field().String())
		})
		validate = v
	})
	return validate
}
