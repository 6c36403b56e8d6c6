package functions

import (
	"sort"
	"strings"

	"github.com/pkg/errors"

	"github.com/sqltype/sqltype/pkg/problem"
	"github.com/sqltype/sqltype/pkg/types"
)

// Signature declares a scalar function. Optional parameters follow the required ones and
// Variadic, when not nil, accepts any number of trailing arguments.
type Signature struct {
	Name     string
	Required []types.StaticType
	Optional []types.StaticType
	Variadic types.StaticType
	Returns  types.StaticType
}

func (s Signature) Arity() problem.Arity {
	a := problem.Arity{Min: len(s.Required), Max: len(s.Required) + len(s.Optional)}
	if s.Variadic != nil {
		a.Max = problem.Unbounded
	}
	return a
}

// Param is the declared type of the i-th argument. It is only meaningful for an index the
// arity accepts.
func (s Signature) Param(i int) types.StaticType {
	switch {
	case i < len(s.Required):
		return s.Required[i]
	case i < len(s.Required)+len(s.Optional):
		return s.Optional[i-len(s.Required)]
	case s.Variadic != nil:
		return s.Variadic
	}
	return types.Any
}

func (s Signature) String() string {
	params := make([]string, 0, len(s.Required)+len(s.Optional)+1)
	for _, p := range s.Required {
		params = append(params, p.String())
	}
	for _, p := range s.Optional {
		params = append(params, "["+p.String()+"]")
	}
	if s.Variadic != nil {
		params = append(params, s.Variadic.String()+"...")
	}
	return s.Name + "(" + strings.Join(params, ", ") + ") -> " + s.Returns.String()
}

// Catalog is an immutable set of signatures keyed by case-insensitive name.
type Catalog struct {
	sigs map[string]Signature
}

// NewCatalog builds a catalog. A later signature replaces an earlier one with the same name.
func NewCatalog(sigs ...Signature) *Catalog {
	c := &Catalog{sigs: make(map[string]Signature, len(sigs))}
	for _, s := range sigs {
		c.sigs[strings.ToLower(s.Name)] = s
	}
	return c
}

// Merge combines catalogs. Signatures of later catalogs take precedence.
func Merge(cs ...*Catalog) *Catalog {
	var sigs []Signature
	for _, c := range cs {
		if c != nil {
			sigs = append(sigs, c.Signatures()...)
		}
	}
	return NewCatalog(sigs...)
}

func (c *Catalog) Lookup(name string) (Signature, bool) {
	if c == nil {
		return Signature{}, false
	}
	s, ok := c.sigs[strings.ToLower(name)]
	return s, ok
}

// Signatures returns every signature ordered by name.
func (c *Catalog) Signatures() []Signature {
	if c == nil {
		return nil
	}
	out := make([]Signature, 0, len(c.sigs))
	for _, s := range c.sigs {
		out = append(out, s)
	}
	sort.Slice(out, func(i, j int) bool { return strings.ToLower(out[i].Name) < strings.ToLower(out[j].Name) })
	return out
}

func (c *Catalog) Len() int {
	if c == nil {
		return 0
	}
	return len(c.sigs)
}

// SignatureConfig is the YAML form of a Signature. Types are written as type expressions,
// for example `nullable(string(<=10))`.
type SignatureConfig struct {
	Name     string   `yaml:"name"`
	Required []string `yaml:"required,omitempty"`
	Optional []string `yaml:"optional,omitempty"`
	Variadic string   `yaml:"variadic,omitempty"`
	Returns  string   `yaml:"returns"`
}

func (c SignatureConfig) Build() (Signature, error) {
	if c.Name == "" {
		return Signature{}, errors.New("function name is required")
	}
	if c.Returns == "" {
		return Signature{}, errors.Errorf("function %s: returns is required", c.Name)
	}

	s := Signature{Name: strings.ToLower(c.Name)}
	var err error
	if s.Required, err = parseAll(c.Required); err != nil {
		return Signature{}, errors.Wrapf(err, "function %s: required", c.Name)
	}
	if s.Optional, err = parseAll(c.Optional); err != nil {
		return Signature{}, errors.Wrapf(err, "function %s: optional", c.Name)
	}
	if c.Variadic != "" {
		if s.Variadic, err = types.Parse(c.Variadic); err != nil {
			return Signature{}, errors.Wrapf(err, "function %s: variadic", c.Name)
		}
	}
	if s.Returns, err = types.Parse(c.Returns); err != nil {
		return Signature{}, errors.Wrapf(err, "function %s: returns", c.Name)
	}
	return s, nil
}

func parseAll(ss []string) ([]types.StaticType, error) {
	out := make([]types.StaticType, 0, len(ss))
	for _, s := range ss {
		t, err := types.Parse(s)
		if err != nil {
			return nil, err
		}
		out = append(out, t)
	}
	return out, nil
}
