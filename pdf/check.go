// Package pdf performs the structural checks applied to downloaded
// statements before they are saved.
package pdf

import (
	"bytes"
	"errors"
	"fmt"
	"strconv"
	"strings"
)

var (
	// ErrNotPDF is returned when the data does not start with a PDF header,
	// typically because the portal served an HTML error page instead.
	ErrNotPDF = errors.New("pdf: not a PDF file")

	// ErrTruncated is returned when the trailer is missing from the end of
	// the data.
	ErrTruncated = errors.New("pdf: file is truncated")
)

// trailerWindow is how far from the end of the file the trailer is searched.
const trailerWindow = 1024

// Info describes a PDF that passed [Check].
type Info struct {
	Version   string // e.g. "1.7"
	StartXRef int64  // offset of the cross-reference section
	Size      int
}

// Check validates the %PDF-n.n header and the startxref trailer of data.
func Check(data []byte) (Info, error) {
	if !bytes.HasPrefix(data, []byte("%PDF-")) {
		return Info{}, ErrNotPDF
	}
	offset, err := findStartXRef(data)
	if err != nil {
		return Info{}, err
	}
	if offset >= int64(len(data)) {
		return Info{}, fmt.Errorf("%w: startxref %d beyond end of file (%d bytes)", ErrTruncated, offset, len(data))
	}
	return Info{Version: version(data), StartXRef: offset, Size: len(data)}, nil
}

// version returns the version string following the header.
func version(data []byte) string {
	if len(data) < 8 {
		return "?"
	}
	limit := len(data)
	if limit > 20 {
		limit = 20
	}
	end := bytes.IndexAny(data[5:limit], "\r\n")
	if end < 0 {
		end = limit - 5
	}
	v := strings.TrimRight(string(data[5:5+end]), "\r\n ")
	if v == "" {
		return "?"
	}
	return v
}

// findStartXRef scans backward to locate "startxref" and reads the offset.
func findStartXRef(data []byte) (int64, error) {
	searchFrom := len(data) - trailerWindow
	if searchFrom < 0 {
		searchFrom = 0
	}
	idx := bytes.LastIndex(data[searchFrom:], []byte("startxref"))
	if idx < 0 {
		return 0, fmt.Errorf("%w: startxref not found", ErrTruncated)
	}
	pos := searchFrom + idx + len("startxref")
	for pos < len(data) && isWhitespace(data[pos]) {
		pos++
	}
	end := pos
	for end < len(data) && data[end] >= '0' && data[end] <= '9' {
		end++
	}
	if end == pos {
		return 0, fmt.Errorf("%w: invalid startxref value", ErrTruncated)
	}
	offset, err := strconv.ParseInt(string(data[pos:end]), 10, 64)
	if err != nil {
		return 0, fmt.Errorf("pdf: parsing startxref: %w", err)
	}
	return offset, nil
}

// isWhitespace reports whether b is a PDF whitespace character.
func isWhitespace(b byte) bool {
	switch b {
	case ' ', '\t', '\r', '\n', '\f', 0:
		return true
	}
	return false
}
