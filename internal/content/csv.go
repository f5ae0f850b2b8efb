package content

import (
	"bytes"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
)

var utf8BOM = []byte{0xef, 0xbb, 0xbf}

// record is one data row of a CSV file with its position for error messages.
type record struct {
	file   string
	line   int
	fields []string
}

func (r record) errorf(format string, args ...interface{}) error {
	return fmt.Errorf("%s:%d: %s", r.file, r.line, fmt.Sprintf(format, args...))
}

// atoi parses column i; an empty column is zero.
func (r record) atoi(i int) (int, error) {
	s := strings.TrimSpace(r.fields[i])
	if s == "" {
		return 0, nil
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		return 0, r.errorf("column %d: %q is not a number", i+1, s)
	}
	return n, nil
}

// readRecords reads an Excel-dialect CSV file with exactly cols columns.
// Rows whose key column is empty or whose first column starts with "#" are
// comments. A missing file yields no rows and os.ErrNotExist.
func readRecords(path string, cols, keyCol int) ([]record, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	data = bytes.TrimPrefix(data, utf8BOM)

	r := csv.NewReader(bytes.NewReader(data))
	r.FieldsPerRecord = -1
	r.LazyQuotes = true

	var out []record
	for {
		fields, err := r.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("%s: %w", path, err)
		}
		line, _ := r.FieldPos(0)
		if len(fields) == 0 || strings.HasPrefix(fields[0], "#") {
			continue
		}
		if len(fields) != cols {
			return nil, fmt.Errorf("%s:%d: expected %d columns, got %d", path, line, cols, len(fields))
		}
		if strings.TrimSpace(fields[keyCol]) == "" {
			continue
		}
		out = append(out, record{file: path, line: line, fields: fields})
	}
	return out, nil
}

func splitList(s string) []string {
	if s == "" {
		return nil
	}
	return strings.Split(s, ",")
}
