// Package sketchfs ties an in-memory virtual file tree to a preview assembly
// pipeline: mutate files through a Session, then build a self-contained
// renderable document from the current tree state.
package sketchfs

import (
	"github.com/sketchfs/sketchfs/config"
	"github.com/sketchfs/sketchfs/preview"
	"github.com/sketchfs/sketchfs/transform"
	"github.com/sketchfs/sketchfs/vfs"
)

// Session owns one editing session's state: a file tree, a content-memoized
// transformer, and a preview assembler. There is no global instance; separate
// sessions are separate Sessions.
//
// Sessions follow the tree's single-writer discipline and are not safe for
// concurrent use.
type Session struct {
	cfg         *config.Config
	fs          *vfs.FS
	transformer *transform.Transformer
	assembler   *preview.Assembler
	registry    *preview.MemoryRegistry
	lastBuild   *preview.Build
}

// New creates a Session with an empty tree. A nil cfg uses defaults.
func New(cfg *config.Config) *Session {
	if cfg == nil {
		cfg = config.NewDefaultConfig()
	}
	s := &Session{cfg: cfg}
	s.attach(vfs.New())
	return s
}

// attach wires the pipeline onto a tree. Used at construction and when a
// snapshot replaces the tree wholesale.
func (s *Session) attach(fs *vfs.FS) {
	s.fs = fs
	s.transformer = transform.NewDefault(fs)
	s.registry = preview.NewMemoryRegistry()
	s.assembler = preview.New(fs, s.transformer, s.cfg, s.registry)
	s.lastBuild = nil
}

// FS exposes the underlying tree for read access.
func (s *Session) FS() *vfs.FS {
	return s.fs
}

// Config returns the session's configuration.
func (s *Session) Config() *config.Config {
	return s.cfg
}

// CreateFile creates a file, auto-creating missing ancestor directories.
func (s *Session) CreateFile(path, content string) error {
	return s.fs.CreateFile(path, content)
}

// CreateDirectory recursively creates a directory.
func (s *Session) CreateDirectory(path string) error {
	return s.fs.CreateDirectory(path)
}

// ReadFile returns a file's content.
func (s *Session) ReadFile(path string) (string, error) {
	return s.fs.ReadFile(path)
}

// WriteFile creates or overwrites a file. The transform cache keys on content,
// so downstream rebuilds re-transform exactly this file and nothing else.
func (s *Session) WriteFile(path, content string) error {
	return s.fs.WriteFile(path, content)
}

// DeleteNode removes a node, cascading over directories, and drops any
// memoized transforms for the removed files.
func (s *Session) DeleteNode(path string) error {
	removed := s.filesUnder(path)
	if err := s.fs.DeleteNode(path); err != nil {
		return err
	}
	for _, p := range removed {
		s.transformer.Invalidate(p)
	}
	return nil
}

// RenameNode moves a subtree and drops memoized transforms for the old paths.
func (s *Session) RenameNode(oldPath, newPath string) error {
	moved := s.filesUnder(oldPath)
	if err := s.fs.RenameNode(oldPath, newPath); err != nil {
		return err
	}
	for _, p := range moved {
		s.transformer.Invalidate(p)
	}
	return nil
}

// Exists reports whether a node occupies the path.
func (s *Session) Exists(path string) bool {
	return s.fs.Exists(path)
}

// ListDirectory returns sorted child names.
func (s *Session) ListDirectory(path string) ([]string, error) {
	return s.fs.ListDirectory(path)
}

// Snapshot captures the tree in its flat persistence form.
func (s *Session) Snapshot() vfs.Snapshot {
	return s.fs.Snapshot()
}

// LoadSnapshot replaces the session's tree with one restored from snap. The
// transform cache and any live preview modules belong to the old tree and are
// discarded with it.
func (s *Session) LoadSnapshot(snap vfs.Snapshot) error {
	fs, err := vfs.Restore(snap)
	if err != nil {
		return err
	}
	s.registry.ReleaseAll()
	s.attach(fs)
	return nil
}

// BuildPreview assembles a preview document from the current tree. On success
// the prior build's module handles are released; a build that fails leaves the
// last successful build's resources alone, so its document stays serveable.
func (s *Session) BuildPreview(entryPath string) (*preview.Build, error) {
	build, err := s.assembler.BuildPreview(entryPath)
	if err != nil {
		return nil, err
	}
	if s.lastBuild != nil {
		for _, url := range s.lastBuild.ModuleURLs {
			s.registry.Release(url)
		}
	}
	s.lastBuild = build
	return build, nil
}

// LastBuild returns the most recent successful build, or nil.
func (s *Session) LastBuild() *preview.Build {
	return s.lastBuild
}

// SeedStarter populates an empty session with a minimal runnable project:
// an entry component, a child component, and a stylesheet.
func (s *Session) SeedStarter() error {
	files := map[string]string{
		"/App.jsx": `import { createRoot } from "react-dom/client";
import Button from "./Button";
import "./styles.css";

function App() {
  return (
    <div className="app">
      <h1>sketchfs</h1>
      <Button label="Click me" />
    </div>
  );
}

createRoot(document.getElementById("root")).render(<App />);
export default App;
`,
		"/Button.jsx": `export default function Button({ label }) {
  return <button className="button">{label}</button>;
}
`,
		"/styles.css": `.app { font-family: sans-serif; padding: 2rem; }
.button { padding: 0.5rem 1rem; }
`,
	}
	for path, content := range files {
		if err := s.fs.WriteFile(path, content); err != nil {
			return err
		}
	}
	return nil
}

// filesUnder returns the file paths at or below path, before a destructive
// operation runs.
func (s *Session) filesUnder(path string) []string {
	p := vfs.Normalize(path)
	var out []string
	for _, file := range s.fs.FilePaths() {
		if file == p || len(file) > len(p) && file[:len(p)] == p && file[len(p)] == '/' {
			out = append(out, file)
		}
	}
	return out
}
