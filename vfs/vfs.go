package vfs

import (
	"sort"
	"strings"

	"github.com/sketchfs/sketchfs/internal/util"
)

// FS is an in-memory hierarchical file store keyed by normalized absolute
// path. The root directory always exists and can neither be deleted nor
// renamed. All path arguments are normalized before use.
//
// FS follows a single-writer discipline: it is not safe for concurrent
// mutation. Each editing session owns its own instance.
type FS struct {
	nodes map[string]*Node
}

// New creates an FS containing only the root directory.
func New() *FS {
	fs := &FS{nodes: make(map[string]*Node)}
	fs.nodes["/"] = newDirNode("/")
	return fs
}

// Exists reports whether a node occupies the path.
func (fs *FS) Exists(path string) bool {
	_, ok := fs.nodes[Normalize(path)]
	return ok
}

// IsDir reports whether the path exists and is a directory.
func (fs *FS) IsDir(path string) bool {
	n, ok := fs.nodes[Normalize(path)]
	return ok && n.IsDir()
}

// CreateFile creates a file at path, creating missing ancestor directories.
// Fails with AlreadyExists if any node already occupies the path.
func (fs *FS) CreateFile(path, content string) error {
	logger := util.GetLogger("vfs.CreateFile")

	p := Normalize(path)
	if _, ok := fs.nodes[p]; ok {
		err := &PathError{Op: "create file", Path: p, Kind: KindAlreadyExists}
		logger.Debug().Err(err).Str("path", p).Msg("Refusing to overwrite existing node")
		return err
	}
	if err := fs.ensureDir("create file", parentOf(p)); err != nil {
		return err
	}

	fs.nodes[p] = newFileNode(p, content)
	fs.nodes[parentOf(p)].addChild(p)
	logger.Debug().Str("path", p).Int("bytes", len(content)).Msg("Created file")
	return nil
}

// CreateDirectory recursively creates a directory at path, mkdir -p style.
// Idempotent for directories that already exist; fails with a type mismatch
// if any segment of the path exists as a file.
func (fs *FS) CreateDirectory(path string) error {
	return fs.ensureDir("create directory", Normalize(path))
}

// ReadFile returns the file's content.
func (fs *FS) ReadFile(path string) (string, error) {
	p := Normalize(path)
	n, ok := fs.nodes[p]
	if !ok {
		return "", &PathError{Op: "read file", Path: p, Kind: KindNotFound}
	}
	if n.IsDir() {
		return "", &TypeMismatchError{Op: "read file", Path: p, Want: KindFile, Got: KindDirectory}
	}
	return n.Content, nil
}

// WriteFile overwrites the file's content, creating it (and missing ancestor
// directories) if absent.
func (fs *FS) WriteFile(path, content string) error {
	p := Normalize(path)
	n, ok := fs.nodes[p]
	if !ok {
		return fs.CreateFile(p, content)
	}
	if n.IsDir() {
		return &TypeMismatchError{Op: "write file", Path: p, Want: KindFile, Got: KindDirectory}
	}
	n.Content = content
	return nil
}

// DeleteNode removes the node at path. Directories cascade to all descendants.
// Root cannot be deleted.
func (fs *FS) DeleteNode(path string) error {
	logger := util.GetLogger("vfs.DeleteNode")

	p := Normalize(path)
	if p == "/" {
		return &PathError{Op: "delete", Path: p, Kind: KindInvalidOperation}
	}
	if _, ok := fs.nodes[p]; !ok {
		return &PathError{Op: "delete", Path: p, Kind: KindNotFound}
	}

	removed := fs.subtreePaths(p)
	for _, sub := range removed {
		delete(fs.nodes, sub)
	}
	fs.nodes[parentOf(p)].removeChild(p)
	logger.Debug().Str("path", p).Int("nodes", len(removed)).Msg("Deleted subtree")
	return nil
}

// RenameNode moves the node at oldPath, and its entire subtree, to newPath.
// Missing ancestor directories of newPath are created; root cannot be renamed
// and an occupied destination is an error. All preconditions are validated
// before any mutation, so a failed rename leaves the tree untouched.
func (fs *FS) RenameNode(oldPath, newPath string) error {
	logger := util.GetLogger("vfs.RenameNode")

	oldP := Normalize(oldPath)
	newP := Normalize(newPath)
	if oldP == "/" {
		return &PathError{Op: "rename", Path: oldP, Kind: KindInvalidOperation}
	}
	if _, ok := fs.nodes[oldP]; !ok {
		return &PathError{Op: "rename", Path: oldP, Kind: KindNotFound}
	}
	if _, ok := fs.nodes[newP]; ok {
		return &PathError{Op: "rename", Path: newP, Kind: KindAlreadyExists}
	}
	if newP == oldP || strings.HasPrefix(newP, oldP+"/") {
		// Moving a directory into itself would orphan the subtree.
		return &PathError{Op: "rename", Path: newP, Kind: KindInvalidOperation}
	}
	// Destination ancestors must be creatable before anything moves.
	if err := fs.checkDirCreatable("rename", parentOf(newP)); err != nil {
		return err
	}

	if err := fs.ensureDir("rename", parentOf(newP)); err != nil {
		return err
	}

	moved := fs.subtreePaths(oldP)
	for _, sub := range moved {
		node := fs.nodes[sub]
		delete(fs.nodes, sub)

		dest := newP + strings.TrimPrefix(sub, oldP)
		node.Path = dest
		if node.IsDir() {
			rewritten := make(map[string]struct{}, len(node.childSet))
			for child := range node.childSet {
				rewritten[newP+strings.TrimPrefix(child, oldP)] = struct{}{}
			}
			node.childSet = rewritten
		}
		fs.nodes[dest] = node
	}

	fs.nodes[parentOf(oldP)].removeChild(oldP)
	fs.nodes[parentOf(newP)].addChild(newP)
	logger.Debug().Str("from", oldP).Str("to", newP).Int("nodes", len(moved)).Msg("Renamed subtree")
	return nil
}

// ListDirectory returns the directory's child names in sorted order.
func (fs *FS) ListDirectory(path string) ([]string, error) {
	p := Normalize(path)
	n, ok := fs.nodes[p]
	if !ok {
		return nil, &PathError{Op: "list", Path: p, Kind: KindNotFound}
	}
	if !n.IsDir() {
		return nil, &TypeMismatchError{Op: "list", Path: p, Want: KindDirectory, Got: KindFile}
	}

	names := make([]string, 0, len(n.childSet))
	for _, child := range n.Children() {
		names = append(names, baseOf(child))
	}
	return names, nil
}

// AllFiles returns a mapping of every file path to its content.
func (fs *FS) AllFiles() map[string]string {
	files := make(map[string]string)
	for p, n := range fs.nodes {
		if !n.IsDir() {
			files[p] = n.Content
		}
	}
	return files
}

// FilePaths returns every file path in sorted order.
func (fs *FS) FilePaths() []string {
	paths := make([]string, 0, len(fs.nodes))
	for p, n := range fs.nodes {
		if !n.IsDir() {
			paths = append(paths, p)
		}
	}
	sort.Strings(paths)
	return paths
}

// ensureDir creates the directory at p and any missing ancestors.
func (fs *FS) ensureDir(op, p string) error {
	if err := fs.checkDirCreatable(op, p); err != nil {
		return err
	}
	for _, ancestor := range ancestorChain(p) {
		if _, ok := fs.nodes[ancestor]; ok {
			continue
		}
		fs.nodes[ancestor] = newDirNode(ancestor)
		fs.nodes[parentOf(ancestor)].addChild(ancestor)
	}
	return nil
}

// checkDirCreatable verifies that p and all its ancestors either do not exist
// or exist as directories, without mutating anything.
func (fs *FS) checkDirCreatable(op, p string) error {
	for _, ancestor := range ancestorChain(p) {
		if n, ok := fs.nodes[ancestor]; ok && !n.IsDir() {
			return &TypeMismatchError{Op: op, Path: ancestor, Want: KindDirectory, Got: KindFile}
		}
	}
	return nil
}

// subtreePaths returns p and every descendant path, sorted so parents precede
// children.
func (fs *FS) subtreePaths(p string) []string {
	prefix := p + "/"
	paths := make([]string, 0, 1)
	for key := range fs.nodes {
		if key == p || strings.HasPrefix(key, prefix) {
			paths = append(paths, key)
		}
	}
	sort.Strings(paths)
	return paths
}

// ancestorChain returns the path chain from the first non-root ancestor down
// to p itself; empty for root.
func ancestorChain(p string) []string {
	if p == "/" {
		return nil
	}
	var chain []string
	for cur := p; cur != "/"; cur = parentOf(cur) {
		chain = append(chain, cur)
	}
	// Reverse so parents come first.
	for i, j := 0, len(chain)-1; i < j; i, j = i+1, j-1 {
		chain[i], chain[j] = chain[j], chain[i]
	}
	return chain
}
