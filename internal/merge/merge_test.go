package merge

import (
	"bytes"
	"io"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/courseta/courseta/internal/tabular"
)

var gradebookRows = tabular.Rows{
	tabular.NewRow(
		[]string{"User_Name", "First_Name", "Last_Name"},
		[]string{"auser1", "a", "user1"},
	),
	tabular.NewRow(
		[]string{"User_Name", "First_Name", "Last_Name"},
		[]string{"buser2", "b", "user2"},
	),
}

func TestRender_KeyedByColumn(t *testing.T) {
	t.Parallel()

	res, err := Render("{{.First_Name}} {{.Last_Name}}", gradebookRows, "User_Name")
	require.NoError(t, err)
	require.Equal(t, map[string]string{
		"auser1": "a user1",
		"buser2": "b user2",
	}, res.Map())

	// First-appearance order is preserved.
	entries := res.Entries()
	require.Equal(t, "auser1", entries[0].Key)
	require.Equal(t, "buser2", entries[1].Key)
}

func TestRender_KeyedByRowIndex(t *testing.T) {
	t.Parallel()

	res, err := Render("{{.First_Name}} {{.Last_Name}}", gradebookRows, "")
	require.NoError(t, err)
	require.Equal(t, map[string]string{
		"0": "a user1",
		"1": "b user2",
	}, res.Map())
}

func TestRender_OneEntryPerRow(t *testing.T) {
	t.Parallel()

	res, err := Render("hi {{.User_Name}}", gradebookRows, "User_Name")
	require.NoError(t, err)
	require.Equal(t, len(gradebookRows), res.Len())
}

func TestRender_MissingKeyColumn(t *testing.T) {
	t.Parallel()

	_, err := Render("{{.First_Name}}", gradebookRows, "Email")
	require.ErrorIs(t, err, tabular.ErrDataFormat)
	require.ErrorContains(t, err, "Email")
}

func TestRender_DuplicateKey(t *testing.T) {
	t.Parallel()

	rows := tabular.Rows{
		tabular.NewRow([]string{"User_Name"}, []string{"auser1"}),
		tabular.NewRow([]string{"User_Name"}, []string{"auser1"}),
	}
	_, err := Render("x", rows, "User_Name")
	require.ErrorIs(t, err, tabular.ErrDataFormat)
	require.ErrorContains(t, err, "duplicate key")
}

func TestRender_MissingVariable(t *testing.T) {
	t.Parallel()

	_, err := Render("{{.Email}}", gradebookRows, "User_Name")
	require.ErrorIs(t, err, ErrTemplate)
}

func TestRender_BadTemplateSyntax(t *testing.T) {
	t.Parallel()

	_, err := Render("{{.First_Name", gradebookRows, "User_Name")
	require.ErrorIs(t, err, ErrTemplate)
}

func TestFromCSV(t *testing.T) {
	t.Parallel()

	csvData := strings.Join([]string{
		"User_Name,First_Name,Last_Name",
		"auser1,a,user1",
		"buser2,b,user2",
	}, "\n")

	res, err := FromCSV(
		strings.NewReader("{{.First_Name}} {{.Last_Name}}"),
		strings.NewReader(csvData),
		"User_Name",
	)
	require.NoError(t, err)
	require.Equal(t, map[string]string{
		"auser1": "a user1",
		"buser2": "b user2",
	}, res.Map())
}

func TestFromXLSX(t *testing.T) {
	t.Parallel()

	f := excelize.NewFile()
	defer f.Close()
	_, err := f.NewSheet("Section1")
	require.NoError(t, err)
	for i, row := range [][]any{
		{"User_Name", "First_Name", "Last_Name"},
		{"auser1", "a", "user1"},
		{"buser2", "b", "user2"},
	} {
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		require.NoError(t, err)
		require.NoError(t, f.SetSheetRow("Section1", cell, &row))
	}
	buf, err := f.WriteToBuffer()
	require.NoError(t, err)

	res, err := FromXLSX(
		strings.NewReader("{{.First_Name}} {{.Last_Name}}"),
		bytes.NewReader(buf.Bytes()),
		"Section1",
		"User_Name",
	)
	require.NoError(t, err)
	require.Equal(t, map[string]string{
		"auser1": "a user1",
		"buser2": "b user2",
	}, res.Map())
}

func TestFromXLSX_MissingWorksheet(t *testing.T) {
	t.Parallel()

	f := excelize.NewFile()
	defer f.Close()
	buf, err := f.WriteToBuffer()
	require.NoError(t, err)

	_, err = FromXLSX(
		strings.NewReader("x"),
		bytes.NewReader(buf.Bytes()),
		"Nope",
		"",
	)
	require.ErrorIs(t, err, tabular.ErrNoWorksheet)
}

type failingReader struct{}

func (failingReader) Read([]byte) (int, error) { return 0, io.ErrUnexpectedEOF }

func TestFromCSV_TemplateReadError(t *testing.T) {
	t.Parallel()

	_, err := FromCSV(failingReader{}, strings.NewReader("A\n1\n"), "")
	require.Error(t, err)
}
