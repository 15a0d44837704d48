package store

import (
	"context"
)

//HasOneLinker implements the to-one inverse of a BelongsTo: the parent
//exposes its single child through a stored link slot while the child keeps
//the foreign key. Both sides are written together here since both records
//are known, without re-triggering the full BelongsTo algorithm.
type HasOneLinker struct {
}

func (linker *HasOneLinker) Install(store *Store, relation *RelationDescription) map[string]Accessor {
	if relation.RelatedMapper == nil {
		//not yet linkable, the related mapper is still undefined
		return nil
	}
	store.ensureForeignKeyIndex(relation.RelatedMapperName(), relation.ForeignKey)
	localField := relation.LocalField
	return map[string]Accessor{
		localField: {
			Get: func(record *Record) interface{} {
				if related := record.linkedRecord(localField); related != nil {
					return related
				}
				return nil
			},
			Set: func(record *Record, value interface{}) (interface{}, error) {
				return linker.SetLink(store, relation, record, value)
			},
		},
	}
}

//SetLink replaces the parent's child. The current triangle (parent slot,
//child FK, child back link) is torn down fully before the new child is
//attached; the new child is substituted with the canonical stored instance.
func (linker *HasOneLinker) SetLink(store *Store, relation *RelationDescription, parent *Record, value interface{}) (interface{}, error) {
	newChild, err := asSingleRecord(relation, value)
	if err != nil {
		return nil, err
	}
	current := parent.linkedRecord(relation.LocalField)
	if newChild == current {
		if current == nil {
			return nil, nil
		}
		return current, nil
	}

	inverse := relation.Inverse()
	childCollection := store.Collection(relation.RelatedMapperName())

	if current != nil {
		current.Data[relation.ForeignKey] = nil
		if childCollection != nil {
			childCollection.UpdateIndex(current, relation.ForeignKey)
		}
		if inverse != nil {
			current.setLinkedRecord(inverse.LocalField, nil)
		}
	}

	if newChild == nil {
		parent.setLinkedRecord(relation.LocalField, nil)
		return nil, nil
	}

	resolved := newChild
	if childCollection != nil {
		if canonical := childCollection.Get(newChild.Pk()); canonical != nil {
			resolved = canonical
		}
	}

	parent.setLinkedRecord(relation.LocalField, resolved)
	resolved.Data[relation.ForeignKey] = parent.Pk()
	if childCollection != nil {
		childCollection.UpdateIndex(resolved, relation.ForeignKey)
	}
	if inverse != nil {
		resolved.setLinkedRecord(inverse.LocalField, parent)
	}
	return resolved, nil
}

//CreateLinked creates the child through the external persister. The foreign
//key is assigned only after the creation resolves; a failed creation leaves
//every link field in its pre-call state. The attach runs through SetLink, so
//a child the parent already holds is torn down like any other replacement.
func (linker *HasOneLinker) CreateLinked(ctx context.Context, store *Store, relation *RelationDescription, parent *Record, data map[string]interface{}) (*Record, error) {
	child, err := store.createRelated(ctx, relation, parent, data)
	if err != nil {
		return nil, err
	}
	if _, err := linker.SetLink(store, relation, parent, child); err != nil {
		return nil, err
	}
	return child, nil
}
