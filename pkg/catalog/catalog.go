package catalog

import (
	"errors"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/gnana997/hooks2vue/catalogs"
	"github.com/gnana997/hooks2vue/pkg/parser"
	"github.com/gnana997/hooks2vue/pkg/rewrite"
)

// Catalog is a named set of examples.
type Catalog struct {
	Name     string    `yaml:"name" json:"name"`
	Version  string    `yaml:"version" json:"version"`
	Default  string    `yaml:"default" json:"default"`
	Examples []Example `yaml:"examples" json:"examples"`
}

// CatalogIndex provides O(1) lookups into the catalog.
// Built during LoadFromBytes after validation passes.
type CatalogIndex struct {
	// ExampleByName maps example name -> *Example.
	ExampleByName map[string]*Example

	// ExamplesByHook maps hook name -> examples using it, in catalog order.
	ExamplesByHook map[string][]*Example
}

// Validate checks the catalog for internal consistency.
// Returns a slice of validation errors (empty slice if valid).
func (c *Catalog) Validate() []error {
	var errs []error

	if c.Name == "" {
		errs = append(errs, fmt.Errorf("catalog name is required"))
	}
	if c.Version == "" {
		errs = append(errs, fmt.Errorf("catalog version is required"))
	}

	names := make(map[string]bool, len(c.Examples))
	for i, ex := range c.Examples {
		if ex.Name == "" {
			errs = append(errs, fmt.Errorf("examples[%d]: name is required", i))
			continue
		}
		if names[ex.Name] {
			errs = append(errs, fmt.Errorf("example %q: duplicate example name", ex.Name))
			continue
		}
		names[ex.Name] = true

		if ex.Code == "" {
			errs = append(errs, fmt.Errorf("example %q: code is required", ex.Name))
		}
		if _, err := parser.ParseDialect(ex.Language); err != nil {
			errs = append(errs, fmt.Errorf("example %q: %w", ex.Name, err))
		}
		for j, hook := range ex.Hooks {
			if rewrite.HookKindFromName(hook) == rewrite.HookNone {
				errs = append(errs, fmt.Errorf("example %q hooks[%d]: unknown hook %q", ex.Name, j, hook))
			}
		}
	}

	if c.Default != "" && !names[c.Default] {
		errs = append(errs, fmt.Errorf("default references non-existent example %q", c.Default))
	}

	return errs
}

// BuildIndex creates lookup maps for fast access.
// Should be called after Validate() passes.
func (c *Catalog) BuildIndex() *CatalogIndex {
	idx := &CatalogIndex{
		ExampleByName:  make(map[string]*Example, len(c.Examples)),
		ExamplesByHook: make(map[string][]*Example),
	}

	for i := range c.Examples {
		ex := &c.Examples[i]
		idx.ExampleByName[ex.Name] = ex
		for _, hook := range ex.Hooks {
			idx.ExamplesByHook[hook] = append(idx.ExamplesByHook[hook], ex)
		}
	}

	return idx
}

// LoadFromFile loads a catalog from a YAML file, validates it, and builds the index.
func LoadFromFile(path string) (*Catalog, *CatalogIndex, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to read catalog file: %w", err)
	}
	return LoadFromBytes(data)
}

// LoadFromBytes parses a catalog from raw YAML bytes, validates it, and builds the index.
func LoadFromBytes(data []byte) (*Catalog, *CatalogIndex, error) {
	var catalog Catalog
	if err := yaml.Unmarshal(data, &catalog); err != nil {
		return nil, nil, fmt.Errorf("failed to parse catalog YAML: %w", err)
	}

	if errs := catalog.Validate(); len(errs) > 0 {
		return nil, nil, fmt.Errorf("catalog validation failed: %w", errors.Join(errs...))
	}

	index := catalog.BuildIndex()
	return &catalog, index, nil
}

// LoadBundled loads the catalog embedded in the binary.
func LoadBundled() (*Catalog, *CatalogIndex, error) {
	return LoadFromBytes(catalogs.ExamplesYAML)
}
