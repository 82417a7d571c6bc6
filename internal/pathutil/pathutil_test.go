package pathutil

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCanonicalize(t *testing.T) {
	base, err := filepath.EvalSymlinks(t.TempDir())
	require.NoError(t, err)
	require.NoError(t, os.MkdirAll(filepath.Join(base, "styles", "partials"), 0755))

	tests := []struct {
		name    string
		baseDir string
		path    string
		want    string
		wantErr bool
	}{
		{
			name:    "relative to base dir",
			baseDir: base,
			path:    "styles/partials",
			want:    filepath.Join(base, "styles", "partials"),
		},
		{
			name: "absolute path ignores base dir",
			path: filepath.Join(base, "styles"),
			want: filepath.Join(base, "styles"),
		},
		{
			name:    "dot segments are cleaned",
			baseDir: base,
			path:    "styles/partials/../partials",
			want:    filepath.Join(base, "styles", "partials"),
		},
		{
			name:    "missing path",
			baseDir: base,
			path:    "does/not/exist",
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Canonicalize(tt.baseDir, tt.path)
			if tt.wantErr {
				require.Error(t, err)
				var resErr *ResolutionError
				require.True(t, errors.As(err, &resErr))
				assert.Equal(t, tt.path, resErr.Path)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestCanonicalizeFollowsSymlinks(t *testing.T) {
	base, err := filepath.EvalSymlinks(t.TempDir())
	require.NoError(t, err)

	target := filepath.Join(base, "real")
	require.NoError(t, os.Mkdir(target, 0755))
	link := filepath.Join(base, "link")
	if err := os.Symlink(target, link); err != nil {
		t.Skipf("symlinks unavailable: %v", err)
	}

	got, err := Canonicalize("", link)
	require.NoError(t, err)
	assert.Equal(t, target, got)
}

func TestCanonicalizeAllStopsAtFirstFailure(t *testing.T) {
	base := t.TempDir()

	_, err := CanonicalizeAll(base, []string{".", "missing", "also-missing"})
	require.Error(t, err)

	var resErr *ResolutionError
	require.ErrorAs(t, err, &resErr)
	assert.Equal(t, "missing", resErr.Path)
	assert.Equal(t, `could not resolve path "missing"`, resErr.Message())
}

func TestCanonicalizeAllEmpty(t *testing.T) {
	got, err := CanonicalizeAll("", nil)
	require.NoError(t, err)
	assert.Empty(t, got)
}
