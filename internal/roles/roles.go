// Package roles holds the static catalog of role profiles a search can target.
package roles

import (
	_ "embed"
	"errors"
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/amishk599/jobscout/internal/model"
)

//go:embed roles.yaml
var builtin []byte

// Catalog is an ordered, read-only set of roles keyed by Role.Key.
type Catalog struct {
	roles []model.Role
	index map[string]int
}

var _ model.RoleCatalog = (*Catalog)(nil)

// Default returns the built-in catalog.
func Default() *Catalog {
	c, err := Parse(builtin)
	if err != nil {
		panic(fmt.Sprintf("roles: built-in catalog is invalid: %v", err))
	}
	return c
}

// LoadFile reads a catalog from a YAML file with the same shape as the
// built-in one.
func LoadFile(path string) (*Catalog, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read roles file: %w", err)
	}
	c, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("roles file %s: %w", path, err)
	}
	return c, nil
}

// Parse decodes a YAML list of roles and validates it.
func Parse(data []byte) (*Catalog, error) {
	var list []model.Role
	if err := yaml.Unmarshal(data, &list); err != nil {
		return nil, fmt.Errorf("parse roles: %w", err)
	}
	return New(list)
}

// New builds a catalog from roles, keeping their order. Keys must be unique
// and non-empty, and every role needs at least one search term.
func New(list []model.Role) (*Catalog, error) {
	if len(list) == 0 {
		return nil, errors.New("no roles defined")
	}
	c := &Catalog{
		roles: make([]model.Role, 0, len(list)),
		index: make(map[string]int, len(list)),
	}
	for i, r := range list {
		r.Key = strings.TrimSpace(r.Key)
		if r.Key == "" {
			return nil, fmt.Errorf("role %d: key is required", i)
		}
		if _, dup := c.index[r.Key]; dup {
			return nil, fmt.Errorf("role %q: duplicate key", r.Key)
		}
		terms := make([]string, 0, len(r.SearchTerms))
		for _, t := range r.SearchTerms {
			if t = strings.TrimSpace(t); t != "" {
				terms = append(terms, t)
			}
		}
		if len(terms) == 0 {
			return nil, fmt.Errorf("role %q: at least one search term is required", r.Key)
		}
		r.SearchTerms = terms
		if r.Label == "" {
			r.Label = r.Key
		}
		c.index[r.Key] = len(c.roles)
		c.roles = append(c.roles, r)
	}
	return c, nil
}

// Lookup returns the role for key.
func (c *Catalog) Lookup(key string) (model.Role, bool) {
	i, ok := c.index[key]
	if !ok {
		return model.Role{}, false
	}
	return clone(c.roles[i]), true
}

// All returns every role in catalog order.
func (c *Catalog) All() []model.Role {
	out := make([]model.Role, len(c.roles))
	for i, r := range c.roles {
		out[i] = clone(r)
	}
	return out
}

func clone(r model.Role) model.Role {
	r.SearchTerms = append([]string(nil), r.SearchTerms...)
	return r
}
