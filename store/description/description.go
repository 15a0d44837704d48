package description

import (
	"github.com/getlantern/deepcopy"
)

//The declarative part of a mapper: identifier field name and the list of
//declared relations. Resolved counterparts live in the store package.
type MapperDescription struct {
	Name      string     `json:"name"`
	Key       string     `json:"key"`
	Relations []Relation `json:"relations"`
}

func (md *MapperDescription) Clone() *MapperDescription {
	mapperDescription := new(MapperDescription)
	deepcopy.Copy(mapperDescription, md)
	return mapperDescription
}

func (md *MapperDescription) FindRelation(localField string) *Relation {
	for i, relation := range md.Relations {
		if relation.LocalField == localField {
			return &md.Relations[i]
		}
	}
	return nil
}

func (md *MapperDescription) FindRelationByForeignKey(foreignKey string) *Relation {
	for i, relation := range md.Relations {
		if relation.ForeignKey == foreignKey {
			return &md.Relations[i]
		}
	}
	return nil
}

func NewMapperDescription(name string, key string, relations []Relation) *MapperDescription {
	return &MapperDescription{Name: name, Key: key, Relations: relations}
}
