package format

import (
	"errors"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
)

var tagMessages = map[string]string{
	"required":        "This field is required.",
	"email":           "Enter a valid email address.",
	"ph_mobile":       "Enter a valid mobile number (09XXXXXXXXX or +639XXXXXXXXX).",
	"strong_password": "Password must be at least 8 characters with upper, lower, number and special character.",
	"person_name":     "Use letters, spaces, hyphens or apostrophes only.",
	"datetime":        "Enter a valid date.",
	"gt":              "Select a value.",
}

func jsonTagName(fld reflect.StructField) string {
	name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
	if name == "-" || name == "" {
		return fld.Name
	}
	return name
}

// FieldErrors converts a validator error into the backend's error payload
// shape: json field name to messages. Other errors map to "detail".
func FieldErrors(err error) map[string][]string {
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return map[string][]string{"detail": {err.Error()}}
	}
	out := make(map[string][]string, len(verrs))
	for _, fe := range verrs {
		msg, ok := tagMessages[fe.Tag()]
		if !ok {
			msg = fe.Error()
		}
		out[fe.Field()] = append(out[fe.Field()], msg)
	}
	return out
}
