package sketchfs

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sketchfs/sketchfs/vfs"
)

func TestSession_FileLifecycle(t *testing.T) {
	t.Parallel()

	s := New(nil)
	require.NoError(t, s.CreateFile("/old.txt", "content"))
	require.NoError(t, s.RenameNode("/old.txt", "/new.txt"))

	assert.False(t, s.Exists("/old.txt"))
	content, err := s.ReadFile("/new.txt")
	require.NoError(t, err)
	assert.Equal(t, "content", content)

	require.NoError(t, s.DeleteNode("/new.txt"))
	assert.False(t, s.Exists("/new.txt"))
}

func TestSession_SnapshotRoundTrip(t *testing.T) {
	t.Parallel()

	s := New(nil)
	require.NoError(t, s.SeedStarter())
	snap := s.Snapshot()

	restored := New(nil)
	require.NoError(t, restored.LoadSnapshot(snap))
	assert.Equal(t, snap, restored.Snapshot())

	_, err := restored.BuildPreview("")
	require.NoError(t, err, "a restored session must build the same preview")
}

func TestSession_BuildPreview_ReleasesPriorBuild(t *testing.T) {
	t.Parallel()

	s := New(nil)
	require.NoError(t, s.SeedStarter())

	first, err := s.BuildPreview("")
	require.NoError(t, err)
	require.NoError(t, s.WriteFile("/Button.jsx", `export default function Button() { return <b>!</b>; }`))

	second, err := s.BuildPreview("")
	require.NoError(t, err)

	assert.Greater(t, second.Generation, first.Generation)
	assert.Equal(t, len(second.ModuleURLs), s.registry.Len(),
		"accepting a new build must release the prior build's module handles")
}

func TestSession_BuildPreview_FailureKeepsLastBuild(t *testing.T) {
	t.Parallel()

	s := New(nil)
	require.NoError(t, s.SeedStarter())

	first, err := s.BuildPreview("")
	require.NoError(t, err)

	require.NoError(t, s.WriteFile("/Button.jsx", `export default function () { return <; }`))
	_, err = s.BuildPreview("")
	require.Error(t, err)

	assert.Same(t, first, s.LastBuild(), "a failed build must leave the last good build serveable")
	assert.Equal(t, len(first.ModuleURLs), s.registry.Len(), "the last good build's modules must stay live")
}

func TestSession_DeleteInvalidatesTransforms(t *testing.T) {
	t.Parallel()

	s := New(nil)
	require.NoError(t, s.CreateFile("/src/a.js", `export const a = 1;`))
	_, err := s.BuildPreview("/src/a.js")
	require.NoError(t, err)

	require.NoError(t, s.DeleteNode("/src"))
	assert.Equal(t, 0, s.transformer.Cache().Len(), "deleted files must not linger in the memo cache")
}

func TestSession_LoadSnapshot_Invalid(t *testing.T) {
	t.Parallel()

	s := New(nil)
	require.NoError(t, s.CreateFile("/keep.txt", "x"))

	err := s.LoadSnapshot(vfs.Snapshot{"/a.txt": {Kind: vfs.KindFile}})
	require.Error(t, err)
	assert.True(t, s.Exists("/keep.txt"), "a rejected snapshot must not replace the tree")
}
