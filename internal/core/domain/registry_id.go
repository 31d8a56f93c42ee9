package domain

import (
	"cmp"
	"unique"

	"github.com/cespare/xxhash/v2"
)

// RegistryID is the opaque identity of one logical set of function definitions.
// Identity is by name, never by content: two registries holding identical
// definitions under different ids are separate cache partitions.
//
// The name is interned with unique.Handle so ids compare by pointer and can be
// used as map keys cheaply.
type RegistryID struct {
	h    unique.Handle[string]
	hash uint64
}

// NewRegistryID creates a RegistryID for the given name.
func NewRegistryID(name string) RegistryID {
	return RegistryID{
		h:    unique.Make(name),
		hash: xxhash.Sum64String(name),
	}
}

// String returns the registry name.
func (id RegistryID) String() string {
	var zero unique.Handle[string]
	if id.h == zero {
		return ""
	}
	return id.h.Value()
}

// IsZero reports whether the id was never initialised.
func (id RegistryID) IsZero() bool {
	var zero unique.Handle[string]
	return id.h == zero
}

// Hash returns the stable xxhash of the registry name.
func (id RegistryID) Hash() uint64 {
	return id.hash
}

// Compare orders registry ids by hash, falling back to the name on collision.
// The order carries no meaning beyond keeping a sorted index stable.
func (id RegistryID) Compare(other RegistryID) int {
	if c := cmp.Compare(id.hash, other.hash); c != 0 {
		return c
	}
	if id.h == other.h {
		return 0
	}
	return cmp.Compare(id.String(), other.String())
}

// MarshalText implements encoding.TextMarshaler.
func (id RegistryID) MarshalText() ([]byte, error) {
	return []byte(id.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (id *RegistryID) UnmarshalText(text []byte) error {
	*id = NewRegistryID(string(text))
	return nil
}
