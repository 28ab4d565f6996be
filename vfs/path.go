package vfs

import (
	gopath "path"
	"strings"
)

// Normalize canonicalizes a path string: repeated separators collapse, a single
// leading separator is ensured, and the trailing separator is stripped unless
// the result is root. Dot segments are resolved. Idempotent.
func Normalize(p string) string {
	if !strings.HasPrefix(p, "/") {
		p = "/" + p
	}
	return gopath.Clean(p)
}

// parentOf returns the parent directory path; the parent of root is root.
func parentOf(p string) string {
	if p == "/" {
		return "/"
	}
	return Normalize(gopath.Dir(p))
}

// baseOf returns the last path component; empty for root.
func baseOf(p string) string {
	if p == "/" {
		return ""
	}
	return gopath.Base(p)
}

// Lookup is the read surface import resolution needs from the tree.
// *FS satisfies it.
type Lookup interface {
	Exists(path string) bool
	IsDir(path string) bool
}

// Resolver resolves import specifiers against the tree the way a bundler's
// filesystem resolver would: literal path first, then candidate extensions in
// priority order, then index files inside a matching directory.
type Resolver struct {
	Extensions []string
}

// NewResolver creates a Resolver with the given candidate extension order.
// With no arguments it uses the conventional component-source order
// (.tsx, .jsx, .ts, .js, .css).
func NewResolver(extensions ...string) *Resolver {
	if len(extensions) == 0 {
		extensions = []string{".tsx", ".jsx", ".ts", ".js", ".css"}
	}
	return &Resolver{Extensions: extensions}
}

// ResolveImport resolves specifier as imported from fromPath.
//
// Relative specifiers ("./x", "../x") resolve against fromPath's directory;
// a miss across all candidates returns a *ResolutionError. Bare specifiers
// name libraries outside the tree: they return external=true with no error,
// leaving the mapping decision to the assembler's externals table.
func (r *Resolver) ResolveImport(l Lookup, fromPath, specifier string) (resolved string, external bool, err error) {
	if !strings.HasPrefix(specifier, ".") {
		return "", true, nil
	}

	base := gopath.Join(parentOf(Normalize(fromPath)), specifier)
	base = Normalize(base)

	for _, candidate := range r.candidates(base) {
		// A directory hit is not a module; it falls through to its index candidates.
		if l.Exists(candidate) && !l.IsDir(candidate) {
			return candidate, false, nil
		}
	}
	return "", false, &ResolutionError{From: fromPath, Specifier: specifier}
}

// candidates returns the probe order for a resolved base path: the literal
// path, then appended extensions, then index files under it.
func (r *Resolver) candidates(base string) []string {
	out := make([]string, 0, 1+2*len(r.Extensions))
	out = append(out, base)
	for _, ext := range r.Extensions {
		out = append(out, base+ext)
	}
	for _, ext := range r.Extensions {
		out = append(out, Normalize(base+"/index"+ext))
	}
	return out
}
