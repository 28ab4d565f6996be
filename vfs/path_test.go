package vfs

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNormalize(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		in   string
		want string
	}{
		{"bare name", "file.txt", "/file.txt"},
		{"leading slash", "/file.txt", "/file.txt"},
		{"repeated slashes", "//file.txt", "/file.txt"},
		{"inner repeated slashes", "/a//b///c", "/a/b/c"},
		{"trailing slash", "/a/b/", "/a/b"},
		{"root", "/", "/"},
		{"empty", "", "/"},
		{"dot segments", "/a/./b/../c", "/a/c"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			got := Normalize(tt.in)
			assert.Equal(t, tt.want, got)
			assert.Equal(t, got, Normalize(got), "Normalize must be idempotent")
		})
	}
}

func TestNormalize_EquivalentForms(t *testing.T) {
	t.Parallel()

	// All three spellings must map to the same key.
	assert.Equal(t, Normalize("file.txt"), Normalize("/file.txt"))
	assert.Equal(t, Normalize("/file.txt"), Normalize("//file.txt"))
}

func TestResolver_ResolveImport_ExtensionPriority(t *testing.T) {
	t.Parallel()

	fs := New()
	require.NoError(t, fs.CreateFile("/Button.tsx", "tsx"))
	require.NoError(t, fs.CreateFile("/Button.js", "js"))

	r := NewResolver()
	resolved, external, err := r.ResolveImport(fs, "/App.jsx", "./Button")
	require.NoError(t, err)
	assert.False(t, external)
	assert.Equal(t, "/Button.tsx", resolved, ".tsx must win over .js")
}

func TestResolver_ResolveImport_Literal(t *testing.T) {
	t.Parallel()

	fs := New()
	require.NoError(t, fs.CreateFile("/styles.css", "body{}"))

	r := NewResolver()
	resolved, external, err := r.ResolveImport(fs, "/App.jsx", "./styles.css")
	require.NoError(t, err)
	assert.False(t, external)
	assert.Equal(t, "/styles.css", resolved)
}

func TestResolver_ResolveImport_IndexFallback(t *testing.T) {
	t.Parallel()

	fs := New()
	require.NoError(t, fs.CreateFile("/components/index.ts", "export {}"))

	r := NewResolver()
	resolved, external, err := r.ResolveImport(fs, "/App.jsx", "./components")
	require.NoError(t, err)
	assert.False(t, external)
	assert.Equal(t, "/components/index.ts", resolved, "directory imports must fall through to index files")
}

func TestResolver_ResolveImport_RelativeFromSubdir(t *testing.T) {
	t.Parallel()

	fs := New()
	require.NoError(t, fs.CreateFile("/src/lib/util.ts", ""))
	require.NoError(t, fs.CreateFile("/src/components/Button.tsx", ""))

	r := NewResolver()
	resolved, _, err := r.ResolveImport(fs, "/src/components/Button.tsx", "../lib/util")
	require.NoError(t, err)
	assert.Equal(t, "/src/lib/util.ts", resolved)
}

func TestResolver_ResolveImport_Bare(t *testing.T) {
	t.Parallel()

	r := NewResolver()
	resolved, external, err := r.ResolveImport(New(), "/App.jsx", "react")
	require.NoError(t, err, "bare specifiers are not an error at resolution time")
	assert.True(t, external)
	assert.Empty(t, resolved)
}

func TestResolver_ResolveImport_Miss(t *testing.T) {
	t.Parallel()

	r := NewResolver()
	_, _, err := r.ResolveImport(New(), "/App.jsx", "./Missing")

	var resErr *ResolutionError
	require.ErrorAs(t, err, &resErr)
	assert.Equal(t, "./Missing", resErr.Specifier)
	assert.Equal(t, "/App.jsx", resErr.From)
	assert.False(t, resErr.External)
}
