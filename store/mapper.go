package store

import (
	"linkage/store/description"
)

//Accessor is the get/set pair backing one computed field. Installed onto a
//mapper at definition time by the relation kind's installer.
type Accessor struct {
	Get func(record *Record) interface{}
	Set func(record *Record, value interface{}) (interface{}, error)
}

//Resolved mapper: the description plus relation descriptions wired to their
//related mappers and the accessors installed for their computed fields.
type Mapper struct {
	*description.MapperDescription
	Relations []*RelationDescription
	accessors map[string]Accessor
}

func (mapper *Mapper) FindRelation(localField string) *RelationDescription {
	for _, relation := range mapper.Relations {
		if relation.LocalField == localField {
			return relation
		}
	}
	return nil
}

func (mapper *Mapper) FindRelationByForeignKey(foreignKey string) *RelationDescription {
	for _, relation := range mapper.Relations {
		if relation.ForeignKey == foreignKey {
			return relation
		}
	}
	return nil
}

func (mapper *Mapper) setAccessor(name string, accessor Accessor) {
	mapper.accessors[name] = accessor
}

//RelationDescription is one resolved relation. RelatedMapper shadows the
//raw related mapper name of the embedded description with the resolved
//mapper; it stays nil until the related mapper is defined.
type RelationDescription struct {
	*description.Relation
	Mapper        *Mapper
	RelatedMapper *Mapper

	inverse      *RelationDescription
	inverseKnown bool
}

func (relation *RelationDescription) RelatedMapperName() string {
	return relation.Relation.RelatedMapper
}

//Inverse resolves the complementary relation on the related mapper lazily,
//tolerating relations declared before their counterpart. Candidates must
//point back at the declaring mapper, carry a complementary kind and share
//the foreign key; a configured InverseLocalField pins the match. The result
//is cached until the mapper cache re-resolves links.
func (relation *RelationDescription) Inverse() *RelationDescription {
	if relation.inverseKnown {
		return relation.inverse
	}
	if relation.RelatedMapper == nil {
		return nil
	}
	for _, candidate := range relation.RelatedMapper.Relations {
		if candidate.RelatedMapperName() != relation.Mapper.Name {
			continue
		}
		if !relation.Kind.ComplementaryTo(candidate.Kind) {
			continue
		}
		if candidate.ForeignKey != relation.ForeignKey {
			continue
		}
		if relation.InverseLocalField != "" && candidate.LocalField != relation.InverseLocalField {
			continue
		}
		relation.inverse = candidate
		break
	}
	relation.inverseKnown = true
	return relation.inverse
}

func (relation *RelationDescription) resetResolution() {
	relation.inverse = nil
	relation.inverseKnown = false
}
