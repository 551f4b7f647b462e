// Package unitfile rewrites systemd unit files shipped as templates.
//
// Rewriting is line oriented. For every field the first line starting with
// the field key (leading whitespace ignored) is replaced by the key followed
// by the value. Keys missing from the document are never inserted, so
// rendering a document twice with the same fields gives the same bytes as
// rendering it once.
package unitfile

import (
	"bytes"
)

const (
	KeyUser       = "User="
	KeyGroup      = "Group="
	KeyWorkingDir = "WorkingDirectory="
	KeyExecStart  = "ExecStart="
	KeyXAuthority = "Environment=XAUTHORITY="
	KeyDisplay    = "Environment=DISPLAY="
)

type Field struct {
	Key   string
	Value string
}

func (f Field) Line() string {
	return f.Key + f.Value
}

// Render returns a new document with fields substituted. Line terminators
// of the input, including a missing final newline, are kept as is.
func Render(doc []byte, fields []Field) []byte {
	result := bytes.Buffer{}
	result.Grow(len(doc))

	done := make([]bool, len(fields))

	for _, line := range bytes.SplitAfter(doc, []byte("\n")) {
		if len(line) == 0 {
			continue
		}

		content, eol := splitEOL(line)
		indent, trimmed := splitIndent(content)

		idx := matchField(trimmed, fields, done)
		if idx < 0 {
			result.Write(line)

			continue
		}

		done[idx] = true

		result.Write(indent)
		result.WriteString(fields[idx].Line())
		result.Write(eol)
	}

	return result.Bytes()
}

// Lookup returns the value of the first line with the key.
func Lookup(doc []byte, key string) (string, bool) {
	for _, line := range bytes.SplitAfter(doc, []byte("\n")) {
		content, _ := splitEOL(line)
		_, trimmed := splitIndent(content)

		if bytes.HasPrefix(trimmed, []byte(key)) {
			return string(trimmed[len(key):]), true
		}
	}

	return "", false
}

func matchField(trimmed []byte, fields []Field, done []bool) int {
	for i, f := range fields {
		if done[i] || f.Key == "" {
			continue
		}

		if bytes.HasPrefix(trimmed, []byte(f.Key)) {
			return i
		}
	}

	return -1
}

func splitEOL(line []byte) ([]byte, []byte) {
	switch {
	case bytes.HasSuffix(line, []byte("\r\n")):
		return line[:len(line)-2], line[len(line)-2:]
	case bytes.HasSuffix(line, []byte("\n")):
		return line[:len(line)-1], line[len(line)-1:]
	default:
		return line, nil
	}
}

func splitIndent(content []byte) ([]byte, []byte) {
	trimmed := bytes.TrimLeft(content, " \t")

	return content[:len(content)-len(trimmed)], trimmed
}
