// Package engine defines the document handle used for one tidy call and
// the backends that create it.
//
// A handle follows the lifecycle of the tidying library it wraps:
// create, set options, parse, clean and repair, save, release. Release
// must be called on every path; after it, every method fails with
// diag.ErrReleased.
package engine

import (
	"sort"
	"sync"

	"github.com/cybergodev/tidy/internal/diag"
)

// Version of the tidying engine, written into the generator meta element.
const Version = "1.0.0"

// Generator is the content of the generator meta element.
const Generator = "HTML Tidy for Go version " + Version

// DefaultBackend names the backend used when none is configured.
const DefaultBackend = "native"

// Doc is one configured engine handle.
type Doc interface {
	SetOption(name string, value any) error
	SetOptionValue(name, text string) error
	ParseString(document string) error
	ParseBytes(data []byte) error
	CleanAndRepair() error
	Save() (string, error)
	Diagnostics() []diag.Diagnostic
	Report() string
	Release()
}

// MaxNestingDepth is the deepest element nesting the HTML tree builder
// accepts. Deeper documents fail with ErrMaxDepthExceeded whatever the
// configured limit.
const MaxNestingDepth = 512

// Limits bound the resources a handle may use.
type Limits struct {
	MaxDepth int
}

// Backend creates handles.
type Backend interface {
	Name() string
	NewDoc(limits Limits) (Doc, error)
}

var (
	mu       sync.RWMutex
	backends = make(map[string]Backend)
)

// Register makes a backend available by name. Registering a name twice
// replaces the earlier backend.
func Register(b Backend) {
	mu.Lock()
	defer mu.Unlock()
	backends[b.Name()] = b
}

// Lookup returns the backend registered under name.
func Lookup(name string) (Backend, bool) {
	mu.RLock()
	defer mu.RUnlock()
	b, ok := backends[name]
	return b, ok
}

// Names returns the registered backend names, sorted.
func Names() []string {
	mu.RLock()
	defer mu.RUnlock()
	names := make([]string, 0, len(backends))
	for name := range backends {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func init() {
	Register(nativeBackend{})
}
