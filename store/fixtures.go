package store

import (
	"linkage/store/description"
)

func GetBaseMapperData(mapperName string) *description.MapperDescription {
	return description.NewMapperDescription(mapperName, "id", nil)
}
