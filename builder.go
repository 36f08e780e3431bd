package exceptx

import "fmt"

// KindsBuilder provides a fluent API for declaring exception kinds by name
// instead of picking integer ids by hand.
type KindsBuilder struct {
	nextID Kind
	specs  []KindSpec
	byName map[string]Kind
	err    error
}

// NewKinds creates a builder; ids are assigned sequentially from 1.
func NewKinds() *KindsBuilder {
	return &KindsBuilder{
		nextID: 1,
		byName: make(map[string]Kind),
	}
}

// Add declares a kind with the next free id.
func (b *KindsBuilder) Add(name, description string) *KindsBuilder {
	return b.AddID(b.nextID, name, description)
}

// AddID declares a kind with an explicit id. Later Add calls continue after
// the highest id seen so far.
func (b *KindsBuilder) AddID(id Kind, name, description string) *KindsBuilder {
	if b.err != nil {
		return b
	}
	if _, exists := b.byName[name]; exists {
		b.err = fmt.Errorf("kind name %q: %w", name, ErrDuplicateKind)
		return b
	}
	b.byName[name] = id
	b.specs = append(b.specs, KindSpec{ID: id, Name: name, Description: description})
	if id >= b.nextID {
		b.nextID = id + 1
	}
	return b
}

// ID returns the id assigned to name, or None.
func (b *KindsBuilder) ID(name string) Kind {
	return b.byName[name]
}

// Build validates the declarations and returns the table.
func (b *KindsBuilder) Build() (*KindTable, error) {
	if b.err != nil {
		return nil, b.err
	}
	return NewKindTable(b.specs...)
}
