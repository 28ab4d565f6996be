package transform

import (
	"encoding/json"
	"fmt"
	gopath "path"
	"strings"

	"github.com/sketchfs/sketchfs/internal/util"
	"github.com/sketchfs/sketchfs/vfs"
)

// Result is one file's executable module code plus the import specifiers it
// references, deduplicated in first-seen order.
type Result struct {
	Code    string
	Imports []string
}

// Source is the read surface the transformer needs from the tree.
// *vfs.FS satisfies it.
type Source interface {
	ReadFile(path string) (string, error)
}

// Transformer turns virtual source files into executable module code.
// Component and script sources go through the Lowerer; style sources become
// code that injects their content as a document style rule. Results are
// memoized by content, so repeated builds over an unchanged tree never
// re-parse.
type Transformer struct {
	fs    Source
	lower Lowerer
	cache *Cache
}

// New creates a Transformer reading from fs and lowering through lower.
func New(fs Source, lower Lowerer) *Transformer {
	return &Transformer{fs: fs, lower: lower, cache: NewCache()}
}

// NewDefault creates a Transformer with the esbuild lowerer.
func NewDefault(fs Source) *Transformer {
	return New(fs, NewESBuildLowerer())
}

// Transform produces the module code and import list for the file at path.
func (t *Transformer) Transform(path string) (Result, error) {
	logger := util.GetLogger("transform")

	p := vfs.Normalize(path)
	content, err := t.fs.ReadFile(p)
	if err != nil {
		return Result{}, err
	}
	if result, ok := t.cache.Get(p, content); ok {
		return result, nil
	}

	var result Result
	if strings.EqualFold(gopath.Ext(p), ".css") {
		result = Result{Code: styleModule(p, content)}
	} else {
		code, err := t.lower.Lower(p, content)
		if err != nil {
			logger.Debug().Err(err).Str("path", p).Msg("Lowering failed")
			return Result{}, err
		}
		result = Result{Code: code, Imports: ScanImports(code)}
	}

	t.cache.Put(p, content, result)
	logger.Debug().Str("path", p).Int("imports", len(result.Imports)).Msg("Transformed file")
	return result, nil
}

// Invalidate drops the memoized result for one path. Content hashing already
// catches overwrites; this is for deletes and renames, where a stale entry
// would otherwise linger for the dead path.
func (t *Transformer) Invalidate(path string) {
	t.cache.Invalidate(vfs.Normalize(path))
}

// Cache exposes the memo cache, mainly for stats.
func (t *Transformer) Cache() *Cache {
	return t.cache
}

// styleModule wraps raw stylesheet content in module code that injects it as
// a style rule when executed, and exports the raw text as the default export.
func styleModule(path, content string) string {
	css, _ := json.Marshal(content)
	tag, _ := json.Marshal(path)
	return fmt.Sprintf(`const css = %s;
const style = document.createElement("style");
style.dataset.path = %s;
style.textContent = css;
document.head.appendChild(style);
export default css;
`, css, tag)
}
