package description

import (
	"linkage/utils"
)

type MapperValidationService struct {
}

func (validationService *MapperValidationService) Validate(mapperDescription *MapperDescription) (bool, error) {
	if mapperDescription.Name == "" {
		return false, NewMapperDescriptionError(mapperDescription.Name, "validate", ErrNotValid, "Mapper has no name")
	}
	if mapperDescription.Key == "" {
		return false, NewMapperDescriptionError(mapperDescription.Name, "validate", ErrNotValid, "Mapper '%s' has no identifier field", mapperDescription.Name)
	}
	if ok, err := validationService.checkRelationsDoNotContainDuplicates(mapperDescription); !ok {
		return false, err
	}
	for i := range mapperDescription.Relations {
		if ok, err := validationService.checkRelation(mapperDescription, &mapperDescription.Relations[i]); !ok {
			return false, err
		}
	}
	return true, nil
}

//check if mapper contains relations with duplicated local fields
func (validationService *MapperValidationService) checkRelationsDoNotContainDuplicates(mapperDescription *MapperDescription) (bool, error) {
	localFields := make([]string, 0)
	for _, relation := range mapperDescription.Relations {
		if !utils.Contains(localFields, relation.LocalField) {
			localFields = append(localFields, relation.LocalField)
		} else {
			return false, NewMapperDescriptionError(mapperDescription.Name, "validate", ErrNotValid, "Mapper contains duplicated link field '%s'", relation.LocalField)
		}
	}
	return true, nil
}

func (validationService *MapperValidationService) checkRelation(mapperDescription *MapperDescription, relation *Relation) (bool, error) {
	//kind membership is not checked here: the relation-kind registry is the
	//authority, so augmentation can reject unregistered kinds instead
	if relation.Kind == "" {
		return false, NewMapperDescriptionError(mapperDescription.Name, "validate", ErrNotValid, "Relation '%s' has no kind", relation.LocalField)
	}
	if relation.RelatedMapper == "" {
		return false, NewMapperDescriptionError(mapperDescription.Name, "validate", ErrNotValid, "Relation '%s' has no related mapper", relation.LocalField)
	}
	if relation.LocalField == "" {
		return false, NewMapperDescriptionError(mapperDescription.Name, "validate", ErrNotValid, "Relation of kind '%s' to '%s' has no local field", relation.Kind, relation.RelatedMapper)
	}
	if relation.ForeignKey == "" {
		return false, NewMapperDescriptionError(mapperDescription.Name, "validate", ErrNotValid, "Relation '%s' has no foreign key", relation.LocalField)
	}
	return true, nil
}
