package tailwind

import (
	"embed"
	"io/fs"
)

//go:embed templates/*.tmpl templates/widgets/*.tmpl
var templatesFS embed.FS

// TemplatesFS returns the embedded templates: form, section, field and
// errors under templates/, one file per widget under templates/widgets/.
func TemplatesFS() fs.FS {
	return templatesFS
}
