package store

import (
	"context"

	"linkage/logger"
	"linkage/store/description"
	"linkage/store/errors"
)

//BelongsToLinker implements the to-one relation owning the foreign key: the
//child record stores the related identifier in its FK field and exposes the
//resolved parent through the link field. Both representations are kept in
//step whichever of them a mutation enters through.
type BelongsToLinker struct {
}

func (linker *BelongsToLinker) Install(store *Store, relation *RelationDescription) map[string]Accessor {
	localField := relation.LocalField
	foreignKey := relation.ForeignKey
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
		foreignKey: {
			Get: func(record *Record) interface{} {
				return record.Data[foreignKey]
			},
			Set: func(record *Record, value interface{}) (interface{}, error) {
				return linker.SetForeignKey(store, relation, record, value)
			},
		},
	}
}

//SetLink links the child to a new parent. The old parent's inverse side is
//torn down strictly before the new one is attached, so the child is never
//observable as linked from two parents. A detached parent argument is
//substituted with the canonical stored instance sharing its identifier.
func (linker *BelongsToLinker) SetLink(store *Store, relation *RelationDescription, child *Record, value interface{}) (interface{}, error) {
	newParent, err := asSingleRecord(relation, value)
	if err != nil {
		return nil, err
	}
	current := child.linkedRecord(relation.LocalField)
	if newParent == current {
		if current == nil {
			return nil, nil
		}
		return current, nil
	}

	inverse := relation.Inverse()
	if current != nil && inverse != nil {
		detachFromInverse(current, inverse, child)
	}

	if newParent == nil {
		//the foreign key is left to the caller, see SetForeignKey
		child.setLinkedRecord(relation.LocalField, nil)
		return nil, nil
	}

	resolved := newParent
	if relatedCollection := store.Collection(relation.RelatedMapperName()); relatedCollection != nil {
		if canonical := relatedCollection.Get(newParent.Pk()); canonical != nil {
			resolved = canonical
		}
	} else {
		logger.Debug("No collection for '%s', linking '%s.%s' to a detached record", relation.RelatedMapperName(), relation.Mapper.Name, relation.LocalField)
	}

	child.setLinkedRecord(relation.LocalField, resolved)
	child.Data[relation.ForeignKey] = resolved.Pk()
	if ownCollection := store.Collection(child.Mapper.Name); ownCollection != nil {
		ownCollection.UpdateIndex(child, relation.ForeignKey)
	}
	if inverse != nil {
		attachToInverse(resolved, inverse, child)
	}
	return resolved, nil
}

//SetForeignKey is the symmetric entry point triggered by assigning the
//scalar FK field itself. It reaches the same end state as SetLink: the old
//inverse link is torn down, the raw value is written and indexed, and the
//link field is resolved eagerly if the parent is already loaded.
func (linker *BelongsToLinker) SetForeignKey(store *Store, relation *RelationDescription, child *Record, value interface{}) (interface{}, error) {
	currentId := child.Data[relation.ForeignKey]
	current := child.linkedRecord(relation.LocalField)
	if current != nil {
		currentId = current.Pk()
	}
	if currentId == value {
		child.Data[relation.ForeignKey] = value
		return value, nil
	}

	inverse := relation.Inverse()
	if current != nil && inverse != nil {
		detachFromInverse(current, inverse, child)
	}

	child.Data[relation.ForeignKey] = value
	if ownCollection := store.Collection(child.Mapper.Name); ownCollection != nil {
		ownCollection.UpdateIndex(child, relation.ForeignKey)
	}

	if value == nil {
		if currentId != nil {
			child.setLinkedRecord(relation.LocalField, nil)
		}
		return nil, nil
	}

	//optimistic resolution: the link stays unresolved until the parent is loaded
	child.setLinkedRecord(relation.LocalField, nil)
	if relatedCollection := store.Collection(relation.RelatedMapperName()); relatedCollection != nil {
		if parent := relatedCollection.Get(value); parent != nil {
			child.setLinkedRecord(relation.LocalField, parent)
			if inverse != nil {
				attachToInverse(parent, inverse, child)
			}
		}
	}
	return value, nil
}

//By relation-kind definition a BelongsTo side has no children.
func (linker *BelongsToLinker) CreateLinked(ctx context.Context, store *Store, relation *RelationDescription, record *Record, data map[string]interface{}) (*Record, error) {
	return nil, errors.NewMisuseError(
		relation.Mapper.Name,
		"create_linked",
		"Cannot create child records through the belongsTo relation '%s'", relation.LocalField,
	)
}

//detachFromInverse clears the child out of the parent's inverse slot. The
//hasMany side keeps no stored membership (its link field is a read-through
//view over the FK index), so only a hasOne slot needs clearing here.
func detachFromInverse(parent *Record, inverse *RelationDescription, child *Record) {
	if inverse.Kind != description.HasOne {
		return
	}
	if linked := parent.linkedRecord(inverse.LocalField); linked == child || (linked != nil && linked.Pk() == child.Pk()) {
		parent.setLinkedRecord(inverse.LocalField, nil)
	}
}

func attachToInverse(parent *Record, inverse *RelationDescription, child *Record) {
	if inverse.Kind != description.HasOne {
		return
	}
	parent.setLinkedRecord(inverse.LocalField, child)
}

func asSingleRecord(relation *RelationDescription, value interface{}) (*Record, error) {
	if value == nil {
		return nil, nil
	}
	if record, ok := value.(*Record); ok {
		return record, nil
	}
	return nil, errors.NewMisuseError(
		relation.Mapper.Name,
		"set_link",
		"Link field '%s' expects a record, got '%T'", relation.LocalField, value,
	)
}
