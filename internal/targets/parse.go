// internal/targets/parse.go
package targets

import (
	"bufio"
	"bytes"
	"encoding/csv"
	"fmt"
	"io"
	"math"
	"strconv"
	"strings"

	"pfs-target-uploader/internal/ecsv"
)

// CoerceInt converts a cell to an integer, accepting "3" and "3.0" but
// rejecting non-integral values like "1.5".
func CoerceInt(value string) (int64, error) {
	s := strings.TrimSpace(value)
	if s == "" {
		return 0, fmt.Errorf("non integer value detected: %q", value)
	}
	if n, err := strconv.ParseInt(s, 10, 64); err == nil {
		return n, nil
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, fmt.Errorf("non integer value detected: %q", value)
	}
	n := int64(math.Round(f))
	if math.Abs(f-float64(n)) > 1e-9 {
		return 0, fmt.Errorf("non integer value detected: %q", value)
	}
	return n, nil
}

// ParseCSV reads a comma-separated target list. Lines starting with `#`
// are comments; the first data line is the header. Known integer and float
// columns are coerced on load; a coercion failure fails the whole load.
func ParseCSV(r io.Reader) (*List, error) {
	var body bytes.Buffer
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 4*1024*1024)
	for scanner.Scan() {
		line := scanner.Text()
		if strings.HasPrefix(strings.TrimSpace(line), "#") {
			continue
		}
		body.WriteString(line)
		body.WriteByte('\n')
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}

	cr := csv.NewReader(&body)
	cr.TrimLeadingSpace = true
	records, err := cr.ReadAll()
	if err != nil {
		return nil, err
	}
	if len(records) == 0 {
		return nil, fmt.Errorf("no header row found")
	}

	header := make([]string, len(records[0]))
	for i, h := range records[0] {
		header[i] = strings.TrimSpace(h)
	}

	list := &List{Columns: header, Rows: records[1:]}
	for _, c := range header {
		if _, known := Datatype[c]; !known {
			list.Unknown = append(list.Unknown, c)
		}
	}

	if err := coerceColumns(list); err != nil {
		return nil, err
	}
	return list, nil
}

// ParseECSV reads an ECSV target list, applying the same coercion rules as
// the CSV path. The header metadata is carried over.
func ParseECSV(r io.Reader) (*List, error) {
	tbl, err := ecsv.Read(r)
	if err != nil {
		return nil, err
	}

	columns := make([]string, len(tbl.Columns))
	for i, c := range tbl.Columns {
		columns[i] = c.Name
	}

	list := &List{Columns: columns, Rows: tbl.Rows, Meta: tbl.Meta}
	for _, c := range columns {
		if _, known := Datatype[c]; !known {
			list.Unknown = append(list.Unknown, c)
		}
	}

	if err := coerceColumns(list); err != nil {
		return nil, err
	}
	return list, nil
}

// coerceColumns normalizes cells of typed columns in place. Integer columns
// use the strict coercion; float columns must parse as floats.
func coerceColumns(l *List) error {
	for j, name := range l.Columns {
		kind, known := Datatype[name]
		if !known {
			continue
		}
		for i, row := range l.Rows {
			cell := strings.TrimSpace(row[j])
			switch kind {
			case KindInt:
				n, err := CoerceInt(cell)
				if err != nil {
					return fmt.Errorf("column %q row %d: %w", name, i+1, err)
				}
				l.Rows[i][j] = strconv.FormatInt(n, 10)
			case KindFloat:
				// Empty optional cells stay empty (missing values).
				if cell == "" {
					l.Rows[i][j] = ""
					continue
				}
				if _, err := strconv.ParseFloat(cell, 64); err != nil {
					return fmt.Errorf("column %q row %d: non float value detected: %q", name, i+1, cell)
				}
				l.Rows[i][j] = cell
			default:
				l.Rows[i][j] = cell
			}
		}
	}
	return nil
}
