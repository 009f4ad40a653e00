package tabular

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func teamRows(t *testing.T) Rows {
	t.Helper()

	data := strings.Join([]string{
		"GitHub_User_Name,Team_Number",
		"uuser1,team-1",
		"uuser2,team-2",
		"uuser3,team-2",
		"uuser4,team-1",
	}, "\n")

	rows, err := ReadCSV(strings.NewReader(data))
	require.NoError(t, err)
	return rows
}

func TestGroupBy(t *testing.T) {
	t.Parallel()

	mm, err := GroupBy(teamRows(t), "Team_Number", "GitHub_User_Name", false)
	require.NoError(t, err)

	require.Equal(t, map[string][]string{
		"team-1": {"uuser1", "uuser4"},
		"team-2": {"uuser2", "uuser3"},
	}, mm.Map())
	require.Equal(t, 2, mm.Len())
}

func TestGroupBy_KeyOrder(t *testing.T) {
	t.Parallel()

	mm, err := GroupBy(teamRows(t), "Team_Number", "GitHub_User_Name", false)
	require.NoError(t, err)

	require.Equal(t, []string{"team-1", "team-2"}, mm.Keys())
	require.Equal(t, []string{"uuser2", "uuser3"}, mm.Get("team-2"))
	require.Nil(t, mm.Get("team-3"))
}

func TestGroupBy_Overwrite(t *testing.T) {
	t.Parallel()

	data := strings.Join([]string{
		"User_Name,Score",
		"auser1,7",
		"buser2,4",
		"auser1,9",
	}, "\n")
	rows, err := ReadCSV(strings.NewReader(data))
	require.NoError(t, err)

	mm, err := GroupBy(rows, "User_Name", "Score", true)
	require.NoError(t, err)

	// The last row wins for each user.
	require.Equal(t, map[string][]string{
		"auser1": {"9"},
		"buser2": {"4"},
	}, mm.Map())
	require.Equal(t, []string{"auser1", "buser2"}, mm.Keys())
}

func TestGroupBy_MissingColumn(t *testing.T) {
	t.Parallel()

	rows := teamRows(t)

	_, err := GroupBy(rows, "Nope", "GitHub_User_Name", false)
	require.ErrorIs(t, err, ErrDataFormat)

	_, err = GroupBy(rows, "Team_Number", "Nope", false)
	require.ErrorIs(t, err, ErrDataFormat)
}
