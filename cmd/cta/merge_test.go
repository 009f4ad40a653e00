package main

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/courseta/courseta/internal/merge"
	"github.com/courseta/courseta/internal/tabular"
)

func renderedResults(t *testing.T, usernames ...string) merge.Results {
	t.Helper()

	rows := make(tabular.Rows, len(usernames))
	for i, u := range usernames {
		rows[i] = tabular.NewRow([]string{"User_Name"}, []string{u})
	}
	res, err := merge.Render("Hello {{.User_Name}}", rows, "User_Name")
	require.NoError(t, err)
	return res
}

func TestResultFileName(t *testing.T) {
	t.Parallel()

	name, err := resultFileName("auser1")
	require.NoError(t, err)
	require.Equal(t, "auser1.txt", name)

	for _, key := range []string{"", ".", "..", "a/b", `a\b`, "../escape"} {
		_, err := resultFileName(key)
		require.Error(t, err, "key %q", key)
	}
}

func TestWriteResults(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	require.NoError(t, writeResults(renderedResults(t, "auser1", "buser2"), dir))

	data, err := os.ReadFile(filepath.Join(dir, "auser1.txt"))
	require.NoError(t, err)
	require.Equal(t, "Hello auser1", string(data))
}

func TestWriteResults_RejectsPathKeys(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	err := writeResults(renderedResults(t, "../escapee"), dir)
	require.Error(t, err)

	_, statErr := os.Stat(filepath.Join(filepath.Dir(dir), "escapee.txt"))
	require.True(t, os.IsNotExist(statErr))
}
