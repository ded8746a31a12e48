package loader

import (
	"bufio"
	"fmt"
	"io"
	"strings"
	"unicode/utf8"

	"ehr-analysis-service/internal/domain"

	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"
)

const maxLineBytes = 16 * 1024 * 1024

// tableReader splits a tab-delimited source into header and data rows.
type tableReader struct {
	name    string
	scanner *bufio.Scanner
	line    int
	header  []string
}

// newTableReader reads the header row of r. A leading byte-order mark is
// dropped before the header is split, so the first column name is clean.
// Bytes after a UTF-8 BOM (or with no BOM) pass through unchanged.
func newTableReader(name string, r io.Reader) (*tableReader, error) {
	decoded := transform.NewReader(r, unicode.BOMOverride(transform.Nop))
	sc := bufio.NewScanner(decoded)
	sc.Buffer(make([]byte, 0, 64*1024), maxLineBytes)

	t := &tableReader{name: name, scanner: sc}
	header, err := t.next()
	if err == io.EOF {
		return nil, domain.NewParseError(name, 0, "", "", "missing header row", nil)
	}
	if err != nil {
		return nil, err
	}
	t.header = header
	return t, nil
}

// next returns the fields of the next non-empty row, or io.EOF. Trailing
// spaces and carriage returns are trimmed; tabs are kept so that an empty
// last column still counts as a field and a tab-only row is still a row.
func (t *tableReader) next() ([]string, error) {
	for t.scanner.Scan() {
		t.line++
		text := strings.TrimRight(t.scanner.Text(), " \r\n")
		if text == "" {
			continue
		}
		if !utf8.ValidString(text) {
			return nil, domain.NewParseError(t.name, t.line, "", "", "line is not valid UTF-8", nil)
		}
		return strings.Split(text, "\t"), nil
	}
	if err := t.scanner.Err(); err != nil {
		return nil, domain.NewIOError(t.name, "read", err)
	}
	return nil, io.EOF
}

// row reads the next data row and checks its width against the header.
func (t *tableReader) row() ([]string, error) {
	fields, err := t.next()
	if err != nil {
		return nil, err
	}
	if len(fields) != len(t.header) {
		return nil, domain.NewParseError(t.name, t.line, "", "",
			fmt.Sprintf("expected %d fields, got %d", len(t.header), len(fields)), nil)
	}
	return fields, nil
}

// require fails unless the header names column.
func (t *tableReader) require(column string) error {
	for _, h := range t.header {
		if h == column {
			return nil
		}
	}
	return domain.NewParseError(t.name, 1, "", "", fmt.Sprintf("header is missing required column %q", column), nil)
}
