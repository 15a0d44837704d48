package store

import (
	"github.com/fatih/structs"
)

//Record is an instance of a mapper's entity type: a plain data map holding
//the scalar fields (identifier and foreign keys included) plus a side table
//of resolved to-one link slots backing the computed link fields.
type Record struct {
	Mapper *Mapper
	Data   map[string]interface{}
	links  map[string]*Record
}

func NewRecord(mapper *Mapper, data map[string]interface{}) *Record {
	if data == nil {
		data = make(map[string]interface{})
	}
	return &Record{Mapper: mapper, Data: data, links: make(map[string]*Record)}
}

//NewRecordOf builds a record from an arbitrary struct value.
func NewRecordOf(mapper *Mapper, value interface{}) *Record {
	return NewRecord(mapper, structs.Map(value))
}

func (record *Record) Pk() interface{} {
	return record.Data[record.Mapper.Key]
}

//Get reads a field, dispatching through the accessor installed for it if the
//field is computed; plain fields are read straight from the data map.
func (record *Record) Get(name string) interface{} {
	if accessor, ok := record.Mapper.accessors[name]; ok && accessor.Get != nil {
		return accessor.Get(record)
	}
	return record.Data[name]
}

//Set writes a field. Writes to link fields and augmented foreign keys run
//the relation's linking algorithm; anything else is a raw data write.
func (record *Record) Set(name string, value interface{}) (interface{}, error) {
	if accessor, ok := record.Mapper.accessors[name]; ok && accessor.Set != nil {
		return accessor.Set(record, value)
	}
	record.Data[name] = value
	return value, nil
}

func (record *Record) linkedRecord(name string) *Record {
	return record.links[name]
}

func (record *Record) setLinkedRecord(name string, related *Record) {
	if related == nil {
		delete(record.links, name)
	} else {
		record.links[name] = related
	}
}
