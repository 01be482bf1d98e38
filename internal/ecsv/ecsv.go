// internal/ecsv/ecsv.go

// Package ecsv reads and writes the Enhanced Character Separated Values
// format (ECSV 1.0): a yaml column/metadata header in comment lines above a
// plain CSV body.
package ecsv

import (
	"bufio"
	"bytes"
	"encoding/csv"
	"fmt"
	"io"
	"strings"

	"gopkg.in/yaml.v3"
)

const (
	versionLine = "%ECSV 1.0"
	schemaName  = "astropy-2.0"
)

// Column describes one column of a table.
type Column struct {
	Name     string `yaml:"name"`
	Datatype string `yaml:"datatype"`
	Unit     string `yaml:"unit,omitempty"`
	Subtype  string `yaml:"subtype,omitempty"`
}

// Table is an in-memory ECSV table. Cells are kept as strings; typed access
// is the caller's concern.
type Table struct {
	Columns []Column
	Rows    [][]string
	Meta    map[string]interface{}
}

// header is the yaml document embedded in the comment block.
type header struct {
	Datatype []Column               `yaml:"datatype"`
	Meta     map[string]interface{} `yaml:"meta,omitempty"`
	Schema   string                 `yaml:"schema,omitempty"`
}

// ColumnIndex returns the index of the named column, or -1.
func (t *Table) ColumnIndex(name string) int {
	for i, c := range t.Columns {
		if c.Name == name {
			return i
		}
	}
	return -1
}

// Cell returns the value of the named column in row i, or "" when the
// column does not exist.
func (t *Table) Cell(i int, name string) string {
	j := t.ColumnIndex(name)
	if j < 0 || i < 0 || i >= len(t.Rows) {
		return ""
	}
	return t.Rows[i][j]
}

// AppendRow adds a row. The cell count must match the column count.
func (t *Table) AppendRow(cells ...string) error {
	if len(cells) != len(t.Columns) {
		return fmt.Errorf("row has %d cells, table has %d columns", len(cells), len(t.Columns))
	}
	t.Rows = append(t.Rows, cells)
	return nil
}

// Write serializes the table: version line, yaml header, CSV header row,
// CSV body.
func Write(w io.Writer, t *Table) error {
	if len(t.Columns) == 0 {
		return fmt.Errorf("cannot write table with no columns")
	}

	hdr := header{
		Datatype: t.Columns,
		Meta:     t.Meta,
		Schema:   schemaName,
	}
	yml, err := yaml.Marshal(&hdr)
	if err != nil {
		return fmt.Errorf("failed to marshal ecsv header: %w", err)
	}

	var buf bytes.Buffer
	buf.WriteString("# " + versionLine + "\n")
	buf.WriteString("# ---\n")
	for _, line := range strings.Split(strings.TrimRight(string(yml), "\n"), "\n") {
		buf.WriteString("# " + line + "\n")
	}

	cw := csv.NewWriter(&buf)
	names := make([]string, len(t.Columns))
	for i, c := range t.Columns {
		names[i] = c.Name
	}
	if err := cw.Write(names); err != nil {
		return err
	}
	for _, row := range t.Rows {
		if err := cw.Write(row); err != nil {
			return err
		}
	}
	cw.Flush()
	if err := cw.Error(); err != nil {
		return err
	}

	_, err = w.Write(buf.Bytes())
	return err
}

// Read parses an ECSV document.
func Read(r io.Reader) (*Table, error) {
	var yamlLines []string
	var body bytes.Buffer
	sawVersion := false

	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 4*1024*1024)
	for scanner.Scan() {
		line := scanner.Text()
		if strings.HasPrefix(line, "#") {
			content := strings.TrimPrefix(line, "#")
			content = strings.TrimPrefix(content, " ")
			if !sawVersion {
				if !strings.HasPrefix(content, "%ECSV") {
					return nil, fmt.Errorf("missing %%ECSV version line")
				}
				sawVersion = true
				continue
			}
			if content == "---" {
				continue
			}
			yamlLines = append(yamlLines, content)
			continue
		}
		body.WriteString(line)
		body.WriteByte('\n')
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	if !sawVersion {
		return nil, fmt.Errorf("not an ecsv document")
	}

	var hdr header
	if err := yaml.Unmarshal([]byte(strings.Join(yamlLines, "\n")), &hdr); err != nil {
		return nil, fmt.Errorf("failed to parse ecsv header: %w", err)
	}
	if len(hdr.Datatype) == 0 {
		return nil, fmt.Errorf("ecsv header has no datatype entries")
	}

	cr := csv.NewReader(&body)
	cr.FieldsPerRecord = len(hdr.Datatype)
	records, err := cr.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("failed to parse ecsv body: %w", err)
	}
	if len(records) == 0 {
		return nil, fmt.Errorf("ecsv body has no header row")
	}

	// The CSV header row must repeat the yaml column names.
	for i, name := range records[0] {
		if name != hdr.Datatype[i].Name {
			return nil, fmt.Errorf("column %d: csv name %q does not match header name %q",
				i, name, hdr.Datatype[i].Name)
		}
	}

	return &Table{
		Columns: hdr.Datatype,
		Rows:    records[1:],
		Meta:    hdr.Meta,
	}, nil
}
