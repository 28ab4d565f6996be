package preview

import (
	"encoding/base64"
	"sync"
)

// ModuleRegistry turns module code into loadable URLs and owns their
// lifetime. A browser host would back this with blob URLs; the in-process
// implementation uses data URLs. Either way the caller must release a build's
// URLs once a newer build replaces it, since they are process-wide handles.
type ModuleRegistry interface {
	// Register stores the code and returns a URL the output document can load
	// it from.
	Register(code string) (string, error)

	// Release frees one registered URL.
	Release(url string)

	// ReleaseAll frees every registered URL.
	ReleaseAll()
}

// MemoryRegistry is the in-memory ModuleRegistry: modules become
// base64-encoded data URLs, and Release is pure bookkeeping.
type MemoryRegistry struct {
	mu      sync.Mutex
	modules map[string]struct{}
}

// NewMemoryRegistry creates an empty MemoryRegistry.
func NewMemoryRegistry() *MemoryRegistry {
	return &MemoryRegistry{modules: make(map[string]struct{})}
}

func (r *MemoryRegistry) Register(code string) (string, error) {
	url := "data:text/javascript;base64," + base64.StdEncoding.EncodeToString([]byte(code))
	r.mu.Lock()
	r.modules[url] = struct{}{}
	r.mu.Unlock()
	return url, nil
}

func (r *MemoryRegistry) Release(url string) {
	r.mu.Lock()
	delete(r.modules, url)
	r.mu.Unlock()
}

func (r *MemoryRegistry) ReleaseAll() {
	r.mu.Lock()
	r.modules = make(map[string]struct{})
	r.mu.Unlock()
}

// Len returns the number of live registered modules.
func (r *MemoryRegistry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.modules)
}
