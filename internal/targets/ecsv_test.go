// internal/targets/ecsv_test.go
package targets

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"pfs-target-uploader/internal/ecsv"
)

func TestToTable(t *testing.T) {
	csv := "obj_id,ob_code,ra,dec,equinox,priority,exptime,resolution,mystery\n" +
		"1,obj_a,150.1,2.2,J2000.0,0,900,L,surprise\n"
	list := mustParse(t, csv)
	list.Meta = map[string]interface{}{"original_filename": "targets.csv"}

	table := list.ToTable()
	require.Len(t, table.Columns, 9)
	assert.Equal(t, ecsv.Column{Name: "obj_id", Datatype: "int64"}, table.Columns[0])
	assert.Equal(t, ecsv.Column{Name: "ra", Datatype: "float64"}, table.Columns[2])
	assert.Equal(t, ecsv.Column{Name: "resolution", Datatype: "string"}, table.Columns[7])
	// unknown columns fall back to string
	assert.Equal(t, ecsv.Column{Name: "mystery", Datatype: "string"}, table.Columns[8])
	assert.Equal(t, "targets.csv", table.Meta["original_filename"])

	// the table owns its rows
	table.Rows[0][0] = "changed"
	assert.Equal(t, "1", list.Cell(0, "obj_id"))
}

func TestFromTable(t *testing.T) {
	csv := "obj_id,ob_code,ra,dec,equinox,priority,exptime,resolution,mystery\n" +
		"1,obj_a,150.1,2.2,J2000.0,0,900,L,surprise\n"
	src := mustParse(t, csv)

	got := FromTable(src.ToTable())
	assert.Equal(t, src.Columns, got.Columns)
	assert.Equal(t, src.Rows, got.Rows)
	assert.Equal(t, []string{"mystery"}, got.Unknown)
}

func TestParseECSV(t *testing.T) {
	csv := "obj_id,ob_code,ra,dec,equinox,priority,exptime,resolution\n" +
		"1,obj_a,150.1,2.2,J2000.0,0,900,L\n"
	src := mustParse(t, csv)

	var buf bytes.Buffer
	require.NoError(t, ecsv.Write(&buf, src.ToTable()))

	got, err := ParseECSV(&buf)
	require.NoError(t, err)
	assert.Equal(t, src.Columns, got.Columns)
	assert.Equal(t, src.Rows, got.Rows)
}

func TestParseECSV_RejectsPlainCSV(t *testing.T) {
	_, err := ParseECSV(strings.NewReader("obj_id,ob_code\n1,obj_a\n"))
	assert.Error(t, err)
}
