package host

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDatasetSaveLoadRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "run.csv")

	d := NewDataset()
	d.Append(10, 0)
	d.Append(20, 406.5)
	d.Append(30, 1210)

	require.NoError(t, d.SaveCSV(path))

	loaded, err := LoadCSV(path)
	require.NoError(t, err)

	assert.Equal(t, d.X, loaded.X)
	assert.Equal(t, d.Y, loaded.Y)
}

func TestLoadCSVRejectsGarbage(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.csv")
	require.NoError(t, os.WriteFile(path, []byte("time_ms,position\nabc,def\n"), 0644))

	_, err := LoadCSV(path)
	assert.Error(t, err)
}

func TestLoadCSVMissingFile(t *testing.T) {
	_, err := LoadCSV(filepath.Join(t.TempDir(), "absent.csv"))
	assert.Error(t, err)
}
