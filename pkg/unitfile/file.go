package unitfile

import (
	"bytes"
	"log"
	"os"
	"path/filepath"

	"github.com/pkg/errors"
)

// RenderFile renders the file in place and returns the new contents.
// The file is replaced atomically and only when the contents change.
func RenderFile(path string, fields []Field) ([]byte, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, errors.WithMessage(err, "failed to stat unit template")
	}

	doc, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.WithMessage(err, "failed to read unit template")
	}

	rendered := Render(doc, fields)
	if bytes.Equal(doc, rendered) {
		log.Printf("%s is up to date\n", path)

		return rendered, nil
	}

	err = writeFileAtomic(path, rendered, info.Mode().Perm())
	if err != nil {
		return nil, err
	}

	return rendered, nil
}

func writeFileAtomic(path string, contents []byte, perm os.FileMode) error {
	tmpFile, err := os.CreateTemp(filepath.Dir(path), ".unitfile-*")
	if err != nil {
		return errors.WithMessage(err, "failed to create temporary file")
	}
	tmpName := tmpFile.Name()

	defer func() {
		if _, err := os.Stat(tmpName); err == nil {
			if err := os.Remove(tmpName); err != nil {
				log.Println(err)
			}
		}
	}()

	if _, err = tmpFile.Write(contents); err != nil {
		_ = tmpFile.Close()

		return errors.WithMessage(err, "failed to write temporary file")
	}

	if err = tmpFile.Close(); err != nil {
		return errors.WithMessage(err, "failed to close temporary file")
	}

	if err = os.Chmod(tmpName, perm); err != nil {
		return errors.WithMessage(err, "failed to chmod temporary file")
	}

	if err = os.Rename(tmpName, path); err != nil {
		return errors.WithMessage(err, "failed to replace unit file")
	}

	return nil
}
