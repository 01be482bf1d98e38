// internal/ecsv/ecsv_test.go
package ecsv

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testTable() *Table {
	return &Table{
		Columns: []Column{
			{Name: "ob_code", Datatype: "string"},
			{Name: "ra", Datatype: "float64", Unit: "deg"},
			{Name: "priority", Datatype: "int64"},
		},
		Rows: [][]string{
			{"obj_a", "150.1", "0"},
			{"obj_b", "150.3", "9"},
		},
		Meta: map[string]interface{}{
			"upload_id":         "0123456789abcdef",
			"original_filename": "targets.csv",
		},
	}
}

func TestWrite(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, Write(&buf, testTable()))

	out := buf.String()
	lines := strings.Split(out, "\n")
	assert.Equal(t, "# %ECSV 1.0", lines[0])
	assert.Equal(t, "# ---", lines[1])
	assert.Contains(t, out, "# schema: astropy-2.0")
	assert.Contains(t, out, "ob_code,ra,priority\n")
	assert.Contains(t, out, "obj_a,150.1,0\n")

	// every header line carries the comment prefix
	for _, line := range lines {
		if strings.Contains(line, "datatype") || strings.Contains(line, "meta") {
			assert.True(t, strings.HasPrefix(line, "# "), "header line %q not commented", line)
		}
	}
}

func TestWrite_NoColumns(t *testing.T) {
	var buf bytes.Buffer
	err := Write(&buf, &Table{})
	assert.Error(t, err)
}

func TestRoundTrip(t *testing.T) {
	var buf bytes.Buffer
	src := testTable()
	require.NoError(t, Write(&buf, src))

	got, err := Read(&buf)
	require.NoError(t, err)

	assert.Equal(t, src.Columns, got.Columns)
	assert.Equal(t, src.Rows, got.Rows)
	assert.Equal(t, "0123456789abcdef", got.Meta["upload_id"])
	assert.Equal(t, "targets.csv", got.Meta["original_filename"])
}

func TestRead_RejectsPlainCSV(t *testing.T) {
	_, err := Read(strings.NewReader("ob_code,ra\nobj_a,150.1\n"))
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "ecsv")
}

func TestRead_RejectsMissingVersionLine(t *testing.T) {
	doc := "# ---\n# datatype:\n# - {name: ob_code, datatype: string}\nob_code\nobj_a\n"
	_, err := Read(strings.NewReader(doc))
	assert.Error(t, err)
}

func TestRead_RejectsMismatchedHeaderNames(t *testing.T) {
	doc := "# %ECSV 1.0\n" +
		"# ---\n" +
		"# datatype:\n" +
		"# - {name: ob_code, datatype: string}\n" +
		"wrong_name\n" +
		"obj_a\n"
	_, err := Read(strings.NewReader(doc))
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "does not match")
}

func TestTableHelpers(t *testing.T) {
	tbl := testTable()

	assert.Equal(t, 1, tbl.ColumnIndex("ra"))
	assert.Equal(t, -1, tbl.ColumnIndex("missing"))
	assert.Equal(t, "150.3", tbl.Cell(1, "ra"))
	assert.Equal(t, "", tbl.Cell(0, "missing"))
	assert.Equal(t, "", tbl.Cell(5, "ra"))

	require.NoError(t, tbl.AppendRow("obj_c", "150.5", "3"))
	assert.Len(t, tbl.Rows, 3)
	assert.Error(t, tbl.AppendRow("too", "few"))
}
