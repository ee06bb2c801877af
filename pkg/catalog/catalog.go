// Package catalog holds the fixed, ordered list of drone models accepted by
// the service tool.
package catalog

import (
	"errors"
	"strings"

	pkgerrors "github.com/pkg/errors"
)

var (
	// ErrEmptyCatalog is returned when a catalog would contain no models.
	ErrEmptyCatalog = errors.New("model catalog is empty")

	// ErrInvalidModel is returned for blank or duplicate model identifiers.
	ErrInvalidModel = errors.New("invalid model identifier")
)

// DefaultModels is the catalog shipped with the tool, in menu order.
var DefaultModels = []string{
	"A2", "P330", "P330V", "P330Z", "P330VP", "WM610", "P3X", "P3S", "MAT100", "P3C",
	"MG1", "WM325", "WM330", "MAT600", "WM220", "WM620", "WM331", "MAT200", "MG1S",
	"WM332", "WM100", "WM230", "WM335", "WM240", "WM245", "WM246", "WM160", "WM231",
	"WM232", "WM260",
}

// Catalog is immutable once built.
type Catalog struct {
	models []string
}

// New validates models and returns a catalog holding a copy of them.
func New(models []string) (*Catalog, error) {
	if len(models) == 0 {
		return nil, ErrEmptyCatalog
	}

	seen := make(map[string]struct{}, len(models))
	c := &Catalog{models: make([]string, 0, len(models))}
	for i, m := range models {
		m = strings.TrimSpace(m)
		if m == "" {
			return nil, pkgerrors.Wrapf(ErrInvalidModel, "entry %d is blank", i+1)
		}
		if strings.ContainsAny(m, " \t") {
			return nil, pkgerrors.Wrapf(ErrInvalidModel, "%q contains whitespace", m)
		}
		if _, ok := seen[m]; ok {
			return nil, pkgerrors.Wrapf(ErrInvalidModel, "%q is listed more than once", m)
		}
		seen[m] = struct{}{}
		c.models = append(c.models, m)
	}

	return c, nil
}

// Default returns the built-in catalog.
func Default() *Catalog {
	c, err := New(DefaultModels)
	if err != nil {
		panic(err)
	}
	return c
}

// Models returns a copy of the models in menu order.
func (c *Catalog) Models() []string {
	out := make([]string, len(c.models))
	copy(out, c.models)
	return out
}

func (c *Catalog) Len() int {
	return len(c.models)
}

// At returns the model at the zero-based index i.
func (c *Catalog) At(i int) string {
	return c.models[i]
}

// Number returns the 1-based menu number of model, or 0 if it is unknown.
func (c *Catalog) Number(model string) int {
	for i, m := range c.models {
		if strings.EqualFold(m, model) {
			return i + 1
		}
	}
	return 0
}
