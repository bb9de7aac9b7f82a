package registry

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/doeshing/aura-go/internal/domain"
)

// Catalog maps action names used in handler tables to Go actions.
type Catalog map[string]Action

// ParseTable decodes a YAML handler table.
func ParseTable(data []byte) (domain.HandlerTable, error) {
	var table domain.HandlerTable
	if err := yaml.Unmarshal(data, &table); err != nil {
		return domain.HandlerTable{}, fmt.Errorf("parse handler table: %w", err)
	}
	if len(table.Handlers) == 0 {
		return domain.HandlerTable{}, fmt.Errorf("handler table has no handlers")
	}
	return table, nil
}

// LoadTable reads a handler table from path, falling back to defaults when
// path is empty or missing.
func LoadTable(path string, defaults []byte) (domain.HandlerTable, error) {
	if path != "" {
		data, err := os.ReadFile(path)
		switch {
		case err == nil:
			table, err := ParseTable(data)
			table.Source = path
			return table, err
		case !os.IsNotExist(err):
			return domain.HandlerTable{}, fmt.Errorf("read handler table: %w", err)
		}
	}
	table, err := ParseTable(defaults)
	table.Source = domain.BuiltinHandlerSource
	return table, err
}

// Build registers every row of table in order, resolving actions from catalog.
func Build(table domain.HandlerTable, catalog Catalog) (*Registry, error) {
	reg := New()
	for _, spec := range table.Handlers {
		action, ok := catalog[spec.Action]
		if !ok {
			return nil, fmt.Errorf("handler %q: %w %q", spec.ID, domain.ErrUnknownAction, spec.Action)
		}
		category, err := domain.ParseCategory(spec.Category)
		if err != nil {
			return nil, fmt.Errorf("handler %q: %w", spec.ID, err)
		}
		if err := reg.Register(spec.ID, spec.Keywords, category, action); err != nil {
			return nil, err
		}
	}
	return reg, nil
}
