package store

import (
	"sync"

	"linkage/store/description"
)

//MapperCache is the schema registry the linking core reads from: mapper
//name to resolved mapper. Relation-to-mapper wiring is re-resolved on every
//change so relations declared ahead of their counterpart pick it up later.
type MapperCache struct {
	mutex      sync.RWMutex
	mapperList map[string]*Mapper
}

func NewMapperCache() *MapperCache {
	return &MapperCache{mutex: sync.RWMutex{}, mapperList: make(map[string]*Mapper)}
}

func (mc *MapperCache) Get(mapperName string) *Mapper {
	mc.mutex.RLock()
	defer mc.mutex.RUnlock()
	if mapper, ok := mc.mapperList[mapperName]; ok {
		return mapper
	}
	return nil
}

func (mc *MapperCache) GetList() []*Mapper {
	mc.mutex.RLock()
	defer mc.mutex.RUnlock()
	mapperList := make([]*Mapper, 0, len(mc.mapperList))
	for _, mapper := range mc.mapperList {
		mapperList = append(mapperList, mapper)
	}
	return mapperList
}

func (mc *MapperCache) Set(mapper *Mapper) {
	mc.mutex.Lock()
	defer mc.mutex.Unlock()
	mc.mapperList[mapper.Name] = mapper
}

func (mc *MapperCache) Delete(mapperName string) {
	mc.mutex.Lock()
	defer mc.mutex.Unlock()
	delete(mc.mapperList, mapperName)
}

func (mc *MapperCache) Flush() {
	mc.mutex.Lock()
	defer mc.mutex.Unlock()
	mc.mapperList = make(map[string]*Mapper)
}

func (mc *MapperCache) Fill(descriptions []*description.MapperDescription) error {
	for _, md := range descriptions {
		if _, err := mc.FactoryMapper(md); err != nil {
			return err
		}
	}
	return nil
}

//FactoryMapper validates the description, builds the resolved mapper and
//re-resolves relation links across the whole cache.
func (mc *MapperCache) FactoryMapper(md *description.MapperDescription) (*Mapper, error) {
	if ok, err := (&description.MapperValidationService{}).Validate(md); !ok {
		return nil, err
	}
	mapper := &Mapper{MapperDescription: md, accessors: make(map[string]Accessor)}
	mapper.Relations = make([]*RelationDescription, 0, len(md.Relations))
	for i := range md.Relations {
		mapper.Relations = append(mapper.Relations, &RelationDescription{Relation: &md.Relations[i], Mapper: mapper})
	}
	mc.Set(mapper)
	mc.resolveLinks()
	return mapper, nil
}

//resolveLinks rewires every relation's related mapper pointer and drops any
//cached inverse so it is looked up again on next use.
func (mc *MapperCache) resolveLinks() {
	for _, currentMapper := range mc.GetList() {
		for _, relation := range currentMapper.Relations {
			relation.RelatedMapper = mc.Get(relation.RelatedMapperName())
			relation.resetResolution()
		}
	}
}
