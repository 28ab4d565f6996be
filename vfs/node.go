package vfs

import "sort"

// Kind discriminates file nodes from directory nodes.
type Kind string

const (
	KindFile      Kind = "file"
	KindDirectory Kind = "directory"
)

// Node is a single entry in the tree. Nodes are kept in a flat path-keyed map
// rather than a linked parent/child graph, so rename and delete reduce to
// key-prefix rewrites instead of pointer surgery.
type Node struct {
	Path     string
	Kind     Kind
	Content  string              // files only
	childSet map[string]struct{} // directories only; full child paths
}

func newFileNode(path, content string) *Node {
	return &Node{Path: path, Kind: KindFile, Content: content}
}

func newDirNode(path string) *Node {
	return &Node{Path: path, Kind: KindDirectory, childSet: make(map[string]struct{})}
}

// IsDir reports whether the node is a directory.
func (n *Node) IsDir() bool {
	return n.Kind == KindDirectory
}

// Children returns the node's child paths in sorted order.
// Returns nil for file nodes.
func (n *Node) Children() []string {
	if n.childSet == nil {
		return nil
	}
	paths := make([]string, 0, len(n.childSet))
	for p := range n.childSet {
		paths = append(paths, p)
	}
	sort.Strings(paths)
	return paths
}

func (n *Node) addChild(path string) {
	n.childSet[path] = struct{}{}
}

func (n *Node) removeChild(path string) {
	delete(n.childSet, path)
}
