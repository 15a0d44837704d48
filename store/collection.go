package store

import (
	"linkage/logger"
)

//SecondaryIndex maps a field's value to the ordered bucket of records
//currently holding that value. It is maintained only through explicit
//update calls issued by the linking algorithms; field writes alone never
//touch it. The last indexed value of every member is tracked so that a
//reposition can drop stale bucket membership without a rebuild.
type SecondaryIndex struct {
	fieldName string
	buckets   map[interface{}][]*Record
	positions map[*Record]interface{}
}

func newSecondaryIndex(fieldName string) *SecondaryIndex {
	return &SecondaryIndex{
		fieldName: fieldName,
		buckets:   make(map[interface{}][]*Record),
		positions: make(map[*Record]interface{}),
	}
}

func (index *SecondaryIndex) insert(record *Record) {
	value := record.Data[index.fieldName]
	index.buckets[value] = append(index.buckets[value], record)
	index.positions[record] = value
}

func (index *SecondaryIndex) remove(record *Record) {
	value, ok := index.positions[record]
	if !ok {
		return
	}
	bucket := index.buckets[value]
	for i, member := range bucket {
		if member == record {
			index.buckets[value] = append(bucket[:i], bucket[i+1:]...)
			break
		}
	}
	if len(index.buckets[value]) == 0 {
		delete(index.buckets, value)
	}
	delete(index.positions, record)
}

//update repositions the record within the buckets by its current field value.
func (index *SecondaryIndex) update(record *Record) {
	if current, ok := index.positions[record]; ok && current == record.Data[index.fieldName] {
		return
	}
	index.remove(record)
	index.insert(record)
}

func (index *SecondaryIndex) bucket(value interface{}) []*Record {
	return index.buckets[value]
}

/*
   The authoritative set of records of one entity type, keyed by identifier,
   plus zero or more secondary indexes keyed by an arbitrary field.
*/
type Collection struct {
	Mapper  *Mapper
	records map[interface{}]*Record
	indexes map[string]*SecondaryIndex
}

func NewCollection(mapper *Mapper) *Collection {
	return &Collection{
		Mapper:  mapper,
		records: make(map[interface{}]*Record),
		indexes: make(map[string]*SecondaryIndex),
	}
}

func (collection *Collection) Get(id interface{}) *Record {
	return collection.records[id]
}

func (collection *Collection) Size() int {
	return len(collection.records)
}

func (collection *Collection) Records() []*Record {
	records := make([]*Record, 0, len(collection.records))
	for _, record := range collection.records {
		records = append(records, record)
	}
	return records
}

//Put inserts or overwrites a record by its identifier. A replaced record is
//dropped from every index; the inserted one is indexed by its current values.
func (collection *Collection) Put(record *Record) {
	id := record.Pk()
	if previous, ok := collection.records[id]; ok && previous != record {
		for _, index := range collection.indexes {
			index.remove(previous)
		}
	}
	collection.records[id] = record
	for _, index := range collection.indexes {
		index.update(record)
	}
}

//Remove evicts a record from the collection and its indexes. Link fields of
//other records still pointing at it are intentionally left alone; eviction
//must never depend on link-field cleanup.
func (collection *Collection) Remove(id interface{}) *Record {
	record, ok := collection.records[id]
	if !ok {
		return nil
	}
	for _, index := range collection.indexes {
		index.remove(record)
	}
	delete(collection.records, id)
	return record
}

//CreateIndex builds a secondary index on the given field, scanning current
//members once. Idempotent if the index already exists.
func (collection *Collection) CreateIndex(fieldName string) {
	if _, ok := collection.indexes[fieldName]; ok {
		return
	}
	index := newSecondaryIndex(fieldName)
	for _, record := range collection.records {
		index.insert(record)
	}
	collection.indexes[fieldName] = index
}

func (collection *Collection) HasIndex(fieldName string) bool {
	_, ok := collection.indexes[fieldName]
	return ok
}

//UpdateIndex repositions the record within the named index after a field
//mutation. This is the only index-maintenance entry point: the linking
//algorithms call it synchronously right after every foreign-key write.
//A record the collection does not hold stays unindexed, so a detached
//record can never enter a bucket ahead of being stored.
func (collection *Collection) UpdateIndex(record *Record, fieldName string) {
	index, ok := collection.indexes[fieldName]
	if !ok {
		return
	}
	if collection.records[record.Pk()] != record {
		return
	}
	index.update(record)
}

//GetRecordsByIndex returns the bucket of records whose fieldName currently
//equals value. Without an index the collection is scanned instead, which
//keeps partially-configured mappers usable.
func (collection *Collection) GetRecordsByIndex(fieldName string, value interface{}) []*Record {
	if index, ok := collection.indexes[fieldName]; ok {
		bucket := index.bucket(value)
		result := make([]*Record, len(bucket))
		copy(result, bucket)
		return result
	}
	logger.Debug("No index on '%s.%s', falling back to a full scan", collection.Mapper.Name, fieldName)
	result := make([]*Record, 0)
	for _, record := range collection.records {
		if record.Data[fieldName] == value {
			result = append(result, record)
		}
	}
	return result
}
