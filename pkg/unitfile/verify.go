package unitfile

import (
	"bytes"
	"fmt"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/humansforhousing/kioskctl/pkg/shellquote"
	"github.com/pkg/errors"
	"go.uber.org/multierr"
)

var placeholderRegexp = regexp.MustCompile(`\{\{[^}]*\}\}|<[A-Z][A-Z0-9_]*>`)

type FieldMismatchError struct {
	Key  string
	Want string
	Got  string
}

func (e *FieldMismatchError) Error() string {
	return fmt.Sprintf("field %s has value %q, expected %q", e.Key, e.Got, e.Want)
}

// CheckPlaceholders fails when template tokens are left in the document.
func CheckPlaceholders(doc []byte) error {
	var err error

	for i, line := range bytes.Split(doc, []byte("\n")) {
		if token := placeholderRegexp.Find(line); token != nil {
			err = multierr.Append(err, errors.Errorf("line %d: unresolved placeholder %s", i+1, token))
		}
	}

	return err
}

// Verify checks that a rendered document carries the resolved value for
// every field it contains and nothing left to substitute.
func Verify(doc []byte, fields []Field) error {
	err := CheckPlaceholders(doc)

	for _, f := range fields {
		got, ok := Lookup(doc, f.Key)
		if !ok {
			continue
		}

		if got != f.Value {
			err = multierr.Append(err, &FieldMismatchError{Key: f.Key, Want: f.Value, Got: got})
		}
	}

	if execStart, ok := Lookup(doc, KeyExecStart); ok {
		err = multierr.Append(err, checkExecStart(execStart))
	}

	return err
}

func checkExecStart(value string) error {
	// Special executable prefixes, see systemd.service(5).
	value = strings.TrimLeft(strings.TrimSpace(value), "-@:+!")

	words, err := shellquote.Split(value)
	if err != nil {
		return errors.WithMessage(err, "failed to parse ExecStart")
	}

	if len(words) == 0 {
		return errors.New("ExecStart is empty")
	}

	if !filepath.IsAbs(words[0]) {
		return errors.Errorf("ExecStart executable %s is not an absolute path", words[0])
	}

	return nil
}
