package preview

import (
	"sort"
	"strings"
	"sync/atomic"

	"github.com/google/uuid"

	"github.com/sketchfs/sketchfs/config"
	"github.com/sketchfs/sketchfs/internal/util"
	"github.com/sketchfs/sketchfs/transform"
	"github.com/sketchfs/sketchfs/vfs"
)

// Assembler walks the import graph from an entry file, transforms every
// reachable file, wires the modules together through synthetic module
// references, and emits one self-contained renderable document.
//
// A build either succeeds completely or fails with a single structured error;
// no partial document is ever produced.
type Assembler struct {
	fs         *vfs.FS
	tr         *transform.Transformer
	resolver   *vfs.Resolver
	cfg        *config.Config
	registry   ModuleRegistry
	generation atomic.Uint64
}

// New creates an Assembler over the given tree and transformer. Modules are
// registered through registry; the resolver follows the configured extension
// priority.
func New(fs *vfs.FS, tr *transform.Transformer, cfg *config.Config, registry ModuleRegistry) *Assembler {
	return &Assembler{
		fs:       fs,
		tr:       tr,
		resolver: vfs.NewResolver(cfg.Extensions...),
		cfg:      cfg,
		registry: registry,
	}
}

// Build is one successful preview assembly. ModuleURLs are the registry
// handles this build owns; the caller releases them when a newer build's
// output is accepted.
type Build struct {
	Document    string
	Generation  uint64
	EntryPath   string
	ModulePaths []string
	Externals   []string
	ModuleURLs  []string
}

// module is one reachable file mid-assembly.
type module struct {
	path    string
	result  transform.Result
	ref     string            // synthetic module reference
	targets map[string]string // relative specifier -> resolved path
}

// BuildPreview assembles the preview document starting at entryPath. An empty
// entryPath means the configured entry; if that file is absent the first file
// in the tree (sorted) is used instead.
func (a *Assembler) BuildPreview(entryPath string) (*Build, error) {
	logger := util.GetLogger("preview")
	gen := a.generation.Add(1)

	entry, err := a.pickEntry(entryPath)
	if err != nil {
		return nil, err
	}

	modules, externals, err := a.collect(entry)
	if err != nil {
		logger.Debug().Err(err).Str("entry", entry).Msg("Preview build failed")
		return nil, err
	}

	importMap := make(map[string]string, len(modules)+len(externals))
	for _, spec := range externals {
		importMap[spec] = a.cfg.Externals[spec]
	}

	// Register rewritten modules and map their refs.
	urls := make([]string, 0, len(modules))
	paths := make([]string, 0, len(modules))
	for _, m := range modules {
		url, err := a.registry.Register(a.rewrite(m, modules))
		if err != nil {
			return nil, err
		}
		importMap[m.ref] = url
		urls = append(urls, url)
		paths = append(paths, m.path)
	}
	sort.Strings(paths)

	doc := renderDocument(importMap, modules[entry].ref)
	logger.Info().
		Str("entry", entry).
		Int("modules", len(modules)).
		Int("externals", len(externals)).
		Uint64("generation", gen).
		Msg("Preview assembled")

	return &Build{
		Document:    doc,
		Generation:  gen,
		EntryPath:   entry,
		ModulePaths: paths,
		Externals:   externals,
		ModuleURLs:  urls,
	}, nil
}

// pickEntry normalizes and validates the entry path, falling back to the
// configured default and then to the first file in the tree.
func (a *Assembler) pickEntry(entryPath string) (string, error) {
	if entryPath == "" {
		entryPath = a.cfg.EntryPath
	}
	entry := vfs.Normalize(entryPath)
	if a.fs.Exists(entry) && !a.fs.IsDir(entry) {
		return entry, nil
	}
	if files := a.fs.FilePaths(); len(files) > 0 {
		return files[0], nil
	}
	return "", &vfs.PathError{Op: "build preview", Path: entry, Kind: vfs.KindNotFound}
}

// collect walks import edges depth-first from entry, transforming each
// reachable file once. It returns the reachable module set keyed by path and
// the sorted external specifiers, all of which are verified against the
// externals table.
func (a *Assembler) collect(entry string) (map[string]*module, []string, error) {
	modules := make(map[string]*module)
	externalSet := make(map[string]string) // specifier -> first importer

	stack := []string{entry}
	for len(stack) > 0 {
		path := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		if _, ok := modules[path]; ok {
			continue
		}

		result, err := a.tr.Transform(path)
		if err != nil {
			return nil, nil, err
		}
		m := &module{
			path:    path,
			result:  result,
			ref:     "sketch:" + uuid.NewString(),
			targets: make(map[string]string),
		}
		modules[path] = m

		for _, spec := range result.Imports {
			target, external, err := a.resolver.ResolveImport(a.fs, path, spec)
			if err != nil {
				return nil, nil, err
			}
			if external {
				if _, ok := externalSet[spec]; !ok {
					externalSet[spec] = path
				}
				continue
			}
			m.targets[spec] = target
			stack = append(stack, target)
		}
	}

	externals := make([]string, 0, len(externalSet))
	for spec, from := range externalSet {
		if _, ok := a.cfg.Externals[spec]; !ok {
			return nil, nil, &vfs.ResolutionError{From: from, Specifier: spec, External: true}
		}
		externals = append(externals, spec)
	}
	sort.Strings(externals)
	return modules, externals, nil
}

// rewrite splices every relative import specifier in the module's code into
// the sibling module's synthetic reference. Bare specifiers stay as written;
// the document's import map points them at their whitelisted URLs.
func (a *Assembler) rewrite(m *module, modules map[string]*module) string {
	refs := transform.ScanImportRefs(m.result.Code)
	if len(refs) == 0 {
		return m.result.Code
	}

	var b strings.Builder
	last := 0
	for _, ref := range refs {
		target, ok := m.targets[ref.Specifier]
		if !ok {
			continue
		}
		sibling, ok := modules[target]
		if !ok {
			continue
		}
		b.WriteString(m.result.Code[last:ref.Start])
		b.WriteString(sibling.ref)
		last = ref.End
	}
	b.WriteString(m.result.Code[last:])
	return b.String()
}

// BuildPreview assembles a preview over fs with default configuration and a
// fresh in-memory registry. Sessions that build repeatedly should hold an
// Assembler instead, to keep the transform cache and manage registry lifetime.
func BuildPreview(fs *vfs.FS, entryPath string) (*Build, error) {
	cfg := config.NewDefaultConfig()
	return New(fs, transform.NewDefault(fs), cfg, NewMemoryRegistry()).BuildPreview(entryPath)
}
