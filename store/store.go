package store

import (
	"context"

	pkgerrors "github.com/pkg/errors"

	"linkage/logger"
	"linkage/store/description"
	"linkage/store/errors"
	"linkage/utils"
)

/*
   Store owns one collection per entity type and coordinates the linking
   machinery: the relation-kind registry, the augmentation of newly defined
   mappers with computed link fields, the relation-driven create path and
   the cascade unlink on destroy. All linking runs synchronously on the
   caller's goroutine; the only suspension point is the external persister.
*/
type Store struct {
	mappers         *MapperCache
	collections     map[string]*Collection
	registry        *KindRegistry
	persister       Persister
	unlinkOnDestroy bool
	//FK indexes requested for collections not defined yet
	pendingIndexes map[string][]string
}

func NewStore(persister Persister, appConfig *utils.AppConfig) *Store {
	store := &Store{
		mappers:         NewMapperCache(),
		collections:     make(map[string]*Collection),
		registry:        NewKindRegistry(),
		persister:       persister,
		unlinkOnDestroy: appConfig.UnlinkOnDestroy,
		pendingIndexes:  make(map[string][]string),
	}
	store.RegisterRelationKind(description.BelongsTo, &BelongsToLinker{})
	store.RegisterRelationKind(description.HasOne, &HasOneLinker{})
	store.RegisterRelationKind(description.HasMany, &HasManyLinker{})
	return store
}

func (store *Store) RegisterRelationKind(kind description.RelationKind, linker RelationLinker) {
	store.registry.Register(kind, linker)
}

func (store *Store) Mapper(name string) *Mapper {
	return store.mappers.Get(name)
}

//Mappers exposes the schema registry the store reads from. Mappers placed
//there directly have no collection until DefineMapper is called for them;
//relations pointing at them stay partially linkable meanwhile.
func (store *Store) Mappers() *MapperCache {
	return store.mappers
}

func (store *Store) Collection(name string) *Collection {
	return store.collections[name]
}

//DefineMapper validates and resolves the description, creates the backing
//collection, replays any parked FK-index requests against it and augments
//every cached mapper, so relations declared ahead of this mapper become
//linkable now.
func (store *Store) DefineMapper(md *description.MapperDescription) (*Mapper, error) {
	mapper, err := store.mappers.FactoryMapper(md)
	if err != nil {
		return nil, err
	}
	collection := NewCollection(mapper)
	store.collections[mapper.Name] = collection
	for _, foreignKey := range store.pendingIndexes[mapper.Name] {
		collection.CreateIndex(foreignKey)
	}
	delete(store.pendingIndexes, mapper.Name)

	for _, cached := range store.mappers.GetList() {
		if err := store.augmentMapper(cached); err != nil {
			return nil, err
		}
	}
	return mapper, nil
}

//augmentMapper installs the computed-field accessors for every relation of
//the mapper. An unregistered kind fails loudly; a relation whose installer
//yields no accessors is silently skipped as not yet linkable.
func (store *Store) augmentMapper(mapper *Mapper) error {
	for _, relation := range mapper.Relations {
		linker, err := store.registry.Lookup(relation.Kind)
		if err != nil {
			return err
		}
		accessors := linker.Install(store, relation)
		if accessors == nil {
			logger.Debug("Relation '%s.%s' is not linkable yet, skipping augmentation", mapper.Name, relation.LocalField)
			continue
		}
		for name, accessor := range accessors {
			mapper.setAccessor(name, accessor)
		}
	}
	return nil
}

//ensureForeignKeyIndex creates the FK index on the named collection, or
//parks the request until the collection is defined.
func (store *Store) ensureForeignKeyIndex(mapperName string, foreignKey string) {
	if collection, ok := store.collections[mapperName]; ok {
		collection.CreateIndex(foreignKey)
		return
	}
	if !utils.Contains(store.pendingIndexes[mapperName], foreignKey) {
		store.pendingIndexes[mapperName] = append(store.pendingIndexes[mapperName], foreignKey)
	}
}

//Put inserts record data into the mapper's collection and returns the record.
func (store *Store) Put(mapperName string, data map[string]interface{}) (*Record, error) {
	mapper := store.mappers.Get(mapperName)
	if mapper == nil {
		return nil, errors.NewConfigurationError(mapperName, "put", "Mapper '%s' is not defined", mapperName)
	}
	record := NewRecord(mapper, data)
	collection, ok := store.collections[mapperName]
	if !ok {
		return nil, errors.NewConfigurationError(mapperName, "put", "Mapper '%s' has no collection", mapperName)
	}
	collection.Put(record)
	return record, nil
}

func (store *Store) Get(mapperName string, id interface{}) *Record {
	collection, ok := store.collections[mapperName]
	if !ok {
		return nil
	}
	return collection.Get(id)
}

//SetLink runs the relation's linking algorithm for a link-field write.
func (store *Store) SetLink(record *Record, localField string, value interface{}) (interface{}, error) {
	relation := record.Mapper.FindRelation(localField)
	if relation == nil {
		return nil, errors.NewConfigurationError(record.Mapper.Name, "set_link", "Mapper '%s' has no relation with local field '%s'", record.Mapper.Name, localField)
	}
	linker, err := store.registry.Lookup(relation.Kind)
	if err != nil {
		return nil, err
	}
	return linker.SetLink(store, relation, record, value)
}

//CreateLinked creates a related record through the relation's convenience
//path. Any persister failure propagates unlinked.
func (store *Store) CreateLinked(ctx context.Context, record *Record, localField string, data map[string]interface{}) (*Record, error) {
	relation := record.Mapper.FindRelation(localField)
	if relation == nil {
		return nil, errors.NewConfigurationError(record.Mapper.Name, "create_linked", "Mapper '%s' has no relation with local field '%s'", record.Mapper.Name, localField)
	}
	linker, err := store.registry.Lookup(relation.Kind)
	if err != nil {
		return nil, err
	}
	return linker.CreateLinked(ctx, store, relation, record, data)
}

//createRelated calls the external persister and, only once the creation has
//resolved, performs the deferred foreign-key write and inserts the child
//into its collection. On failure no field is written.
func (store *Store) createRelated(ctx context.Context, relation *RelationDescription, parent *Record, data map[string]interface{}) (*Record, error) {
	if relation.RelatedMapper == nil {
		return nil, errors.NewConfigurationError(relation.Mapper.Name, "create_linked", "Related mapper '%s' is not defined", relation.RelatedMapperName())
	}
	createdData, err := store.persister.CreateLinked(ctx, relation.RelatedMapperName(), data)
	if err != nil {
		return nil, pkgerrors.Wrapf(err, "creating a '%s' record through relation '%s.%s'", relation.RelatedMapperName(), relation.Mapper.Name, relation.LocalField)
	}
	child := NewRecord(relation.RelatedMapper, createdData)
	child.Data[relation.ForeignKey] = parent.Pk()
	if collection := store.Collection(relation.RelatedMapperName()); collection != nil {
		collection.Put(child)
	}
	return child, nil
}

//Destroy removes the record through the external persister and, strictly
//after that call resolves, evicts it and clears its own link fields. Other
//records still pointing at it are left as they are.
func (store *Store) Destroy(ctx context.Context, record *Record) error {
	if err := store.persister.Destroy(ctx, record.Mapper.Name, record.Pk()); err != nil {
		return pkgerrors.Wrapf(err, "destroying '%s' record '%v'", record.Mapper.Name, record.Pk())
	}
	if collection := store.Collection(record.Mapper.Name); collection != nil {
		collection.Remove(record.Pk())
	}
	if store.unlinkOnDestroy {
		store.unlinkRecord(record)
	}
	return nil
}

//DestroyAll bulk-removes records by identifier. The unlink pass is applied
//per destroyed record that is actually loaded; an empty result set performs
//zero field mutations.
func (store *Store) DestroyAll(ctx context.Context, mapperName string, ids []interface{}) (*RecordSet, error) {
	mapper := store.mappers.Get(mapperName)
	if mapper == nil {
		return nil, errors.NewConfigurationError(mapperName, "destroy_all", "Mapper '%s' is not defined", mapperName)
	}
	destroyedIds, err := store.persister.DestroyAll(ctx, mapperName, ids)
	if err != nil {
		return nil, pkgerrors.Wrapf(err, "destroying '%s' records", mapperName)
	}
	recordSet := NewRecordSet(mapper)
	if len(destroyedIds) == 0 {
		return recordSet, nil
	}
	collection := store.Collection(mapperName)
	if collection == nil {
		return recordSet, nil
	}
	for _, id := range destroyedIds {
		record := collection.Remove(id)
		if record == nil {
			continue
		}
		recordSet.Records = append(recordSet.Records, record)
		if store.unlinkOnDestroy {
			store.unlinkRecord(record)
		}
	}
	return recordSet, nil
}

//unlinkRecord clears the destroyed record's own view of its relations: each
//local link slot is dropped directly, without running the linking
//algorithms, so no other record's fields are mutated.
func (store *Store) unlinkRecord(record *Record) {
	for _, relation := range record.Mapper.Relations {
		record.setLinkedRecord(relation.LocalField, nil)
	}
}
