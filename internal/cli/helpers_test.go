package cli

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

// absTestdata returns the absolute path of a testdata entry, for tests that
// change the working directory.
func absTestdata(t *testing.T, elem ...string) string {
	t.Helper()
	path, err := filepath.Abs(filepath.Join(append([]string{"testdata"}, elem...)...))
	require.NoError(t, err)
	return path
}
