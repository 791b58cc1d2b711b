package compiler

import "strings"

const fallbackFileName = "document.docx"

var unsafeChars = strings.NewReplacer(
	`\`, "", "/", "", ":", "", "*", "", "?", "",
	`"`, "", "<", "", ">", "", "|", "",
)

// FileName derives the download name from a title and an organization.
func FileName(title, organization string) string {
	var parts []string
	for _, s := range []string{title, organization} {
		if s = sanitize(s); s != "" {
			parts = append(parts, s)
		}
	}
	if len(parts) == 0 {
		return fallbackFileName
	}
	return strings.Join(parts, "_") + ".docx"
}

func sanitize(s string) string {
	s = unsafeChars.Replace(s)
	s = strings.Map(func(r rune) rune {
		if r < 0x20 || r == 0x7f {
			return -1
		}
		return r
	}, s)
	return strings.TrimSpace(s)
}
