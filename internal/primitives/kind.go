package primitives

import (
	"errors"
	"fmt"
	"os"
	"sort"
	"strconv"

	"gopkg.in/yaml.v3"
)

// Kind identifies an exception variant. Kinds are flat: there is no hierarchy
// and matching is by equality only.
type Kind int

// None is the "no exception pending" sentinel.
const None Kind = 0

var (
	ErrInvalidKind   = errors.New("invalid exception kind")
	ErrDuplicateKind = errors.New("duplicate exception kind")
)

// String returns "none" for None and "kind(N)" otherwise. Use KindTable.Name for
// registered names.
func (k Kind) String() string {
	if k == None {
		return "none"
	}
	return "kind(" + strconv.Itoa(int(k)) + ")"
}

// KindSpec declares one exception kind.
type KindSpec struct {
	ID          Kind   `json:"id" yaml:"id"`
	Name        string `json:"name" yaml:"name"`
	Description string `json:"description,omitempty" yaml:"description,omitempty"`
}

// KindTable maps kinds to human readable names for diagnostics and traces.
type KindTable struct {
	Kinds []KindSpec `json:"kinds" yaml:"kinds"`

	byID   map[Kind]*KindSpec
	byName map[string]*KindSpec
}

// NewKindTable builds and validates a table from specs.
func NewKindTable(specs ...KindSpec) (*KindTable, error) {
	t := &KindTable{Kinds: append([]KindSpec(nil), specs...)}
	if err := t.Validate(); err != nil {
		return nil, err
	}
	return t, nil
}

// MustKindTable is NewKindTable for package-level tables; it panics on error.
func MustKindTable(specs ...KindSpec) *KindTable {
	t, err := NewKindTable(specs...)
	if err != nil {
		panic(err)
	}
	return t
}

// ParseKindTable decodes a YAML (or JSON, which is valid YAML) kind table.
func ParseKindTable(data []byte) (*KindTable, error) {
	var t KindTable
	if err := yaml.Unmarshal(data, &t); err != nil {
		return nil, fmt.Errorf("yaml unmarshal: %w", err)
	}
	if err := t.Validate(); err != nil {
		return nil, err
	}
	return &t, nil
}

// LoadKindTable reads and parses a kind table file.
func LoadKindTable(path string) (*KindTable, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	t, err := ParseKindTable(data)
	if err != nil {
		return nil, fmt.Errorf("kind table %s: %w", path, err)
	}
	return t, nil
}

// Validate checks that every kind is positive and named, and that ids and names
// are unique. It rebuilds the lookup indexes.
func (t *KindTable) Validate() error {
	byID := make(map[Kind]*KindSpec, len(t.Kinds))
	byName := make(map[string]*KindSpec, len(t.Kinds))
	for i := range t.Kinds {
		spec := &t.Kinds[i]
		if spec.ID <= None {
			return fmt.Errorf("kind %d (%q): %w: id must be positive", spec.ID, spec.Name, ErrInvalidKind)
		}
		if spec.Name == "" {
			return fmt.Errorf("kind %d: %w: name is required", spec.ID, ErrInvalidKind)
		}
		if _, exists := byID[spec.ID]; exists {
			return fmt.Errorf("kind id %d: %w", spec.ID, ErrDuplicateKind)
		}
		if _, exists := byName[spec.Name]; exists {
			return fmt.Errorf("kind name %q: %w", spec.Name, ErrDuplicateKind)
		}
		byID[spec.ID] = spec
		byName[spec.Name] = spec
	}
	t.byID = byID
	t.byName = byName
	return nil
}

// Name returns the registered name of k, or k.String() when unknown. A nil table
// is valid and knows no names.
func (t *KindTable) Name(k Kind) string {
	if t != nil {
		if spec, ok := t.byID[k]; ok {
			return spec.Name
		}
	}
	return k.String()
}

// Describe formats k for diagnostics, e.g. "div-by-zero (1)".
func (t *KindTable) Describe(k Kind) string {
	if t != nil {
		if spec, ok := t.byID[k]; ok {
			return fmt.Sprintf("%s (%d)", spec.Name, int(k))
		}
	}
	return k.String()
}

// Lookup finds a kind by name.
func (t *KindTable) Lookup(name string) (Kind, bool) {
	if t == nil {
		return None, false
	}
	spec, ok := t.byName[name]
	if !ok {
		return None, false
	}
	return spec.ID, true
}

// Sorted returns the specs ordered by id.
func (t *KindTable) Sorted() []KindSpec {
	if t == nil {
		return nil
	}
	out := append([]KindSpec(nil), t.Kinds...)
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}
