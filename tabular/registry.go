package tabular

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"sync"

	"github.com/poiesic/stratum/core"
)

// Parser decodes one tabular file format.
type Parser interface {
	// Parse reads the whole input and returns its table.
	Parse(r io.Reader) (*Table, error)

	// FileType returns the extension this parser handles.
	FileType() core.FileType
}

// Registry manages tabular parsers keyed by file extension.
type Registry struct {
	mu      sync.RWMutex
	parsers map[core.FileType]Parser
}

// DefaultRegistry is the registry with the CSV and XLSX parsers.
var DefaultRegistry = NewRegistry()

// NewRegistry creates a registry with the default parsers.
func NewRegistry() *Registry {
	r := &Registry{
		parsers: make(map[core.FileType]Parser),
	}

	r.Register(NewCSVParser())
	r.Register(NewXLSXParser())

	return r
}

// Register adds a parser to the registry, replacing any parser for the same type.
func (r *Registry) Register(p Parser) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.parsers[p.FileType()] = p
}

// Lookup returns the parser for filename's extension.
func (r *Registry) Lookup(filename string) (Parser, error) {
	ft := core.FileType(strings.ToLower(filepath.Ext(filename)))

	r.mu.RLock()
	defer r.mu.RUnlock()

	p, ok := r.parsers[ft]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedFormat, filepath.Ext(filename))
	}
	return p, nil
}

// FileTypes returns the registered extensions in sorted order.
func (r *Registry) FileTypes() []core.FileType {
	r.mu.RLock()
	defer r.mu.RUnlock()

	types := make([]core.FileType, 0, len(r.parsers))
	for ft := range r.parsers {
		types = append(types, ft)
	}
	slices.Sort(types)
	return types
}

// Supports reports whether filename has a registered extension.
func (r *Registry) Supports(filename string) bool {
	_, err := r.Lookup(filename)
	return err == nil
}

// ParseFile parses the file at path using the parser for its extension.
// The extension is checked before the file is opened.
func (r *Registry) ParseFile(path string) (*Table, error) {
	p, err := r.Lookup(path)
	if err != nil {
		return nil, err
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open %s: %w", path, err)
	}
	defer f.Close()

	return p.Parse(f)
}

// DetectFileType returns the FileType for filename using the default parsers.
func DetectFileType(filename string) (core.FileType, error) {
	p, err := DefaultRegistry.Lookup(filename)
	if err != nil {
		return "", err
	}
	return p.FileType(), nil
}
