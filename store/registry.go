package store

import (
	"context"

	"linkage/store/description"
	"linkage/store/errors"
)

//RelationLinker is one relation kind's implementation: the linking
//algorithm behind link-field writes, the installer producing the computed
//field accessors, and the relation-driven create path.
type RelationLinker interface {
	//SetLink runs the linking algorithm for a write to the relation's local field.
	SetLink(store *Store, relation *RelationDescription, record *Record, value interface{}) (interface{}, error)
	//Install produces the accessors implementing the relation's computed
	//fields, or nil if the relation is not linkable yet.
	Install(store *Store, relation *RelationDescription) map[string]Accessor
	//CreateLinked creates a related record through the relation.
	CreateLinked(ctx context.Context, store *Store, relation *RelationDescription, record *Record, data map[string]interface{}) (*Record, error)
}

//KindRegistry maps a relation-kind tag to its implementation. Populated at
//store construction; the single dispatch point for relation kinds, so a new
//kind needs no change to the existing ones.
type KindRegistry struct {
	linkers map[description.RelationKind]RelationLinker
}

func NewKindRegistry() *KindRegistry {
	return &KindRegistry{linkers: make(map[description.RelationKind]RelationLinker)}
}

//Register installs a kind implementation; the last registration for a given
//kind name wins.
func (registry *KindRegistry) Register(kind description.RelationKind, linker RelationLinker) {
	registry.linkers[kind] = linker
}

func (registry *KindRegistry) Lookup(kind description.RelationKind) (RelationLinker, error) {
	if linker, ok := registry.linkers[kind]; ok {
		return linker, nil
	}
	return nil, errors.NewUnknownRelationKindError(string(kind))
}
