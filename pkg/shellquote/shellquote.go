// Package shellquote splits and quotes command lines in the subset of shell
// syntax that systemd accepts in Exec* directives.
package shellquote

import (
	"strings"

	"github.com/gopherclass/go-shellquote"
)

const specialChars = " \t\"'\\;"

// systemd expands both in Exec* lines: $ for environment variables and % for
// unit specifiers. Doubling them yields the literal character.
var specifiers = strings.NewReplacer("$", "$$", "%", "%%")

func Split(input string) ([]string, error) {
	return shellquote.Split(input)
}

// Join quotes every argument that needs it with double quotes and doubles
// $ and %. The result is meant for systemd, not for a shell.
func Join(args ...string) string {
	quoted := make([]string, 0, len(args))

	for _, arg := range args {
		quoted = append(quoted, quote(arg))
	}

	return strings.Join(quoted, " ")
}

func quote(arg string) string {
	if arg == "" {
		return `""`
	}

	arg = specifiers.Replace(arg)

	if !strings.ContainsAny(arg, specialChars) {
		return arg
	}

	b := strings.Builder{}
	b.Grow(len(arg) + 2) //nolint:mnd

	b.WriteByte('"')
	for _, r := range arg {
		if r == '"' || r == '\\' {
			b.WriteByte('\\')
		}
		b.WriteRune(r)
	}
	b.WriteByte('"')

	return b.String()
}
