package vfs

import (
	"encoding/json"
	"fmt"
)

// SnapshotEntry is the serialized form of a single node.
type SnapshotEntry struct {
	Kind    Kind   `json:"kind"`
	Content string `json:"content,omitempty"`
}

// Snapshot is the flat persistence format: normalized path -> entry.
// It is the only serialized representation of a tree.
type Snapshot map[string]SnapshotEntry

// Snapshot captures the full tree as a flat mapping.
func (fs *FS) Snapshot() Snapshot {
	snap := make(Snapshot, len(fs.nodes))
	for p, n := range fs.nodes {
		entry := SnapshotEntry{Kind: n.Kind}
		if !n.IsDir() {
			entry.Content = n.Content
		}
		snap[p] = entry
	}
	return snap
}

// Restore rebuilds a tree from a snapshot, re-validating all invariants.
// Snapshots missing root, containing non-normalized or orphaned paths, or
// mixing up node kinds are rejected.
func Restore(snap Snapshot) (*FS, error) {
	root, ok := snap["/"]
	if !ok {
		return nil, fmt.Errorf("invalid snapshot: missing root")
	}
	if root.Kind != KindDirectory {
		return nil, fmt.Errorf("invalid snapshot: root is not a directory")
	}

	fs := New()
	for p, entry := range snap {
		if p == "/" {
			continue
		}
		if Normalize(p) != p {
			return nil, fmt.Errorf("invalid snapshot: non-normalized path %q", p)
		}
		switch entry.Kind {
		case KindFile, KindDirectory:
		default:
			return nil, fmt.Errorf("invalid snapshot: %s has unknown kind %q", p, entry.Kind)
		}
		if entry.Kind == KindDirectory && entry.Content != "" {
			return nil, fmt.Errorf("invalid snapshot: directory %s carries content", p)
		}
		// Every non-root node needs its parent present as a directory.
		parent, ok := snap[parentOf(p)]
		if !ok {
			return nil, fmt.Errorf("invalid snapshot: orphaned path %s", p)
		}
		if parent.Kind != KindDirectory {
			return nil, fmt.Errorf("invalid snapshot: parent of %s is not a directory", p)
		}

		if entry.Kind == KindDirectory {
			fs.nodes[p] = newDirNode(p)
		} else {
			fs.nodes[p] = newFileNode(p, entry.Content)
		}
	}

	// Second pass: link children now that every node exists.
	for p := range snap {
		if p == "/" {
			continue
		}
		fs.nodes[parentOf(p)].addChild(p)
	}
	return fs, nil
}

// MarshalSnapshot encodes the tree's snapshot as JSON.
func (fs *FS) MarshalSnapshot() ([]byte, error) {
	return json.Marshal(fs.Snapshot())
}

// UnmarshalSnapshot decodes a JSON snapshot and restores a tree from it.
func UnmarshalSnapshot(data []byte) (*FS, error) {
	var snap Snapshot
	if err := json.Unmarshal(data, &snap); err != nil {
		return nil, fmt.Errorf("failed to unmarshal snapshot: %w", err)
	}
	return Restore(snap)
}
