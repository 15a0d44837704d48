package store

import (
	"context"

	"linkage/store/errors"
)

//HasManyLinker implements the to-many inverse of a BelongsTo. Membership is
//index-backed: the link field is a read-through view over the related
//collection's FK index, refreshed on every read, so it can never drift from
//the foreign keys. Mutations go through the single-member BelongsTo
//algorithm so the FK, index and inverse bookkeeping is not duplicated.
type HasManyLinker struct {
}

func (linker *HasManyLinker) Install(store *Store, relation *RelationDescription) map[string]Accessor {
	if relation.RelatedMapper == nil {
		//not yet linkable, the related mapper is still undefined
		return nil
	}
	store.ensureForeignKeyIndex(relation.RelatedMapperName(), relation.ForeignKey)
	return map[string]Accessor{
		relation.LocalField: {
			Get: func(record *Record) interface{} {
				return linker.members(store, relation, record)
			},
			Set: func(record *Record, value interface{}) (interface{}, error) {
				return linker.SetLink(store, relation, record, value)
			},
		},
	}
}

func (linker *HasManyLinker) members(store *Store, relation *RelationDescription, parent *Record) []*Record {
	collection := store.Collection(relation.RelatedMapperName())
	if collection == nil {
		return []*Record{}
	}
	return collection.GetRecordsByIndex(relation.ForeignKey, parent.Pk())
}

//SetLink replaces the whole membership: removed members have their
//BelongsTo side unlinked, added members have it linked, one by one.
func (linker *HasManyLinker) SetLink(store *Store, relation *RelationDescription, parent *Record, value interface{}) (interface{}, error) {
	newMembers, err := asRecordList(relation, value)
	if err != nil {
		return nil, err
	}

	current := linker.members(store, relation, parent)
	newById := make(map[interface{}]*Record, len(newMembers))
	for _, member := range newMembers {
		newById[member.Pk()] = member
	}

	for _, member := range current {
		if _, kept := newById[member.Pk()]; !kept {
			if err := linker.unlinkMember(store, relation, member); err != nil {
				return nil, err
			}
		}
	}
	for _, member := range newMembers {
		if err := linker.linkMember(store, relation, parent, member); err != nil {
			return nil, err
		}
	}
	return linker.members(store, relation, parent), nil
}

//AddMember links a single child to the parent.
func (linker *HasManyLinker) AddMember(store *Store, relation *RelationDescription, parent *Record, child *Record) error {
	return linker.linkMember(store, relation, parent, child)
}

//RemoveMember unlinks a single child from the parent if it is a member.
func (linker *HasManyLinker) RemoveMember(store *Store, relation *RelationDescription, parent *Record, child *Record) error {
	for _, member := range linker.members(store, relation, parent) {
		if member == child || member.Pk() == child.Pk() {
			return linker.unlinkMember(store, relation, member)
		}
	}
	return nil
}

//linkMember delegates to the child's BelongsTo side when one is declared;
//a one-sided relation gets local-side bookkeeping only.
func (linker *HasManyLinker) linkMember(store *Store, relation *RelationDescription, parent *Record, child *Record) error {
	if collection := store.Collection(relation.RelatedMapperName()); collection != nil {
		if canonical := collection.Get(child.Pk()); canonical != nil {
			child = canonical
		}
	}
	if inverse := relation.Inverse(); inverse != nil {
		_, err := (&BelongsToLinker{}).SetLink(store, inverse, child, parent)
		return err
	}
	child.Data[relation.ForeignKey] = parent.Pk()
	if collection := store.Collection(relation.RelatedMapperName()); collection != nil {
		collection.UpdateIndex(child, relation.ForeignKey)
	}
	return nil
}

func (linker *HasManyLinker) unlinkMember(store *Store, relation *RelationDescription, child *Record) error {
	if inverse := relation.Inverse(); inverse != nil {
		_, err := (&BelongsToLinker{}).SetForeignKey(store, inverse, child, nil)
		return err
	}
	child.Data[relation.ForeignKey] = nil
	if collection := store.Collection(relation.RelatedMapperName()); collection != nil {
		collection.UpdateIndex(child, relation.ForeignKey)
	}
	return nil
}

//CreateLinked creates a child through the external persister; the foreign
//key write is deferred until the creation resolves.
func (linker *HasManyLinker) CreateLinked(ctx context.Context, store *Store, relation *RelationDescription, parent *Record, data map[string]interface{}) (*Record, error) {
	return store.createRelated(ctx, relation, parent, data)
}

func asRecordList(relation *RelationDescription, value interface{}) ([]*Record, error) {
	if value == nil {
		return []*Record{}, nil
	}
	if records, ok := value.([]*Record); ok {
		return records, nil
	}
	return nil, errors.NewMisuseError(
		relation.Mapper.Name,
		"set_link",
		"Link field '%s' expects a list of records, got '%T'", relation.LocalField, value,
	)
}
