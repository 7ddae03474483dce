package forensics

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidateFile_Missing(t *testing.T) {
	err := ValidateFile(filepath.Join(t.TempDir(), "nope.pdf"))

	require.Error(t, err)
	verr, ok := err.(*ValidationError)
	require.True(t, ok)
	assert.Contains(t, verr.Reason, "not found")
}

func TestValidateFile_Empty(t *testing.T) {
	path := filepath.Join(t.TempDir(), "empty.pdf")
	require.NoError(t, os.WriteFile(path, nil, 0o644))

	err := ValidateFile(path)

	require.Error(t, err)
	assert.Contains(t, err.Error(), "Empty file")
}

func TestValidateFile_Oversized(t *testing.T) {
	path := filepath.Join(t.TempDir(), "huge.pdf")
	f, err := os.Create(path)
	require.NoError(t, err)
	// Sparse file: one byte past the cap without writing 50 MiB.
	require.NoError(t, f.Truncate(MaxFileSize+1))
	require.NoError(t, f.Close())

	err = ValidateFile(path)

	require.Error(t, err)
	assert.Contains(t, err.Error(), "too large")
}

func TestValidateFile_OK(t *testing.T) {
	path := filepath.Join(t.TempDir(), "fine.pdf")
	require.NoError(t, os.WriteFile(path, []byte("%PDF-1.4 tiny"), 0o644))

	assert.NoError(t, ValidateFile(path))
}
