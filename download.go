package stmtfetch

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
)

// Download is a file the browser fetched, held in memory. The browser's
// copy in the session's download directory is removed once it is read.
type Download struct {
	data      []byte
	suggested string
}

// NewDownload wraps content fetched by other means, such as a [Portal]
// that does not drive a browser.
func NewDownload(data []byte, suggestedName string) *Download {
	return &Download{data: data, suggested: suggestedName}
}

// Bytes returns the file content.
func (d *Download) Bytes() []byte { return d.data }

// SuggestedName is the name from the server's Content-Disposition, if any.
func (d *Download) SuggestedName() string { return d.suggested }

// Len returns the size of the content in bytes.
func (d *Download) Len() int { return len(d.data) }

// WriteTo implements [io.WriterTo].
func (d *Download) WriteTo(w io.Writer) (int64, error) {
	n, err := w.Write(d.data)
	return int64(n), err
}

// WriteToFile replaces the file at path with the content. The data is
// written to a temporary file in the same directory and renamed into
// place, so an interrupted write never leaves a partial statement behind.
func (d *Download) WriteToFile(path string, perm os.FileMode) error {
	tmp, err := os.CreateTemp(filepath.Dir(path), ".download-*")
	if err != nil {
		return err
	}
	name := tmp.Name()
	defer os.Remove(name) // no-op after a successful rename

	if _, err := d.WriteTo(tmp); err != nil {
		tmp.Close()
		return fmt.Errorf("writing %s: %w", name, err)
	}
	if err := tmp.Chmod(perm); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	return os.Rename(name, path)
}
