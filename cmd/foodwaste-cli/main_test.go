package main

import (
	"bytes"
	"io"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func run(t *testing.T, dbPath string, args ...string) (string, error) {
	t.Helper()
	root := newRootCmd()
	var out bytes.Buffer
	root.SetOut(&out)
	root.SetErr(io.Discard)
	root.SetArgs(append([]string{"--backend", "sqlite", "--sqlite-path", dbPath, "--chat-mode", "offline"}, args...))
	err := root.Execute()
	return out.String(), err
}

func TestCLI_AddListStatsDelete(t *testing.T) {
	db := filepath.Join(t.TempDir(), "cli.db")

	out, err := run(t, db, "add", "--item", "Spinach", "--category", "vegetables", "--quantity", "200", "--unit", "g", "--reason", "spoiled")
	require.NoError(t, err)
	require.Contains(t, out, "Saved entry ")
	id := strings.TrimSpace(strings.TrimPrefix(strings.TrimSpace(out), "Saved entry "))
	require.NotEmpty(t, id)

	out, err = run(t, db, "list")
	require.NoError(t, err)
	assert.Contains(t, out, "Spinach")
	assert.Contains(t, out, "0.20")

	out, err = run(t, db, "stats", "--period", "all")
	require.NoError(t, err)
	assert.Contains(t, out, "0.20 kg")
	assert.Contains(t, out, "Vegetables")

	out, err = run(t, db, "chat", "What", "is", "my", "total", "waste?", "--stage")
	require.NoError(t, err)
	assert.Contains(t, out, "Total recorded waste: 0.20 kg")
	assert.Contains(t, out, "answered by: data")

	out, err = run(t, db, "delete", id)
	require.NoError(t, err)
	assert.Contains(t, out, "Deleted entry "+id)

	out, err = run(t, db, "list")
	require.NoError(t, err)
	assert.Contains(t, out, "No entries logged.")
}

func TestCLI_AddValidation(t *testing.T) {
	db := filepath.Join(t.TempDir(), "cli.db")
	_, err := run(t, db, "add", "--item", "Milk", "--category", "Dairy", "--quantity", "-1", "--reason", "Expired")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "quantity")
}

func TestCLI_DeleteUnknown(t *testing.T) {
	db := filepath.Join(t.TempDir(), "cli.db")
	_, err := run(t, db, "delete", "does-not-exist")
	assert.Error(t, err)
}

func TestCLI_ExportImportRoundTrip(t *testing.T) {
	dir := t.TempDir()
	src := filepath.Join(dir, "src.db")
	dst := filepath.Join(dir, "dst.db")
	book := filepath.Join(dir, "waste.xlsx")

	_, err := run(t, src, "add", "--item", "Bread", "--category", "Grains", "--quantity", "2", "--unit", "items", "--reason", "Expired", "--date", "2024-05-01")
	require.NoError(t, err)

	out, err := run(t, src, "export", book)
	require.NoError(t, err)
	assert.Contains(t, out, "Exported 1 entries")

	out, err = run(t, dst, "import", book)
	require.NoError(t, err)
	assert.Contains(t, out, "Imported 1 entries")

	out, err = run(t, dst, "list")
	require.NoError(t, err)
	assert.Contains(t, out, "Bread")
	assert.Contains(t, out, "2024-05-01")
}

func TestCLI_UnknownBackend(t *testing.T) {
	root := newRootCmd()
	root.SetOut(io.Discard)
	root.SetErr(io.Discard)
	root.SetArgs([]string{"--backend", "mongo", "list"})
	err := root.Execute()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid data backend")
}
