package store

type RecordSet struct {
	Mapper  *Mapper
	Records []*Record
}

func (recordSet *RecordSet) GetRecordById(id interface{}) *Record {
	for _, record := range recordSet.Records {
		if record.Data[recordSet.Mapper.Key] == id {
			return record
		}
	}
	return nil
}

func (recordSet *RecordSet) Data() []map[string]interface{} {
	data := make([]map[string]interface{}, len(recordSet.Records))
	for i, record := range recordSet.Records {
		data[i] = record.Data
	}
	return data
}

func NewRecordSet(mapper *Mapper) *RecordSet {
	return &RecordSet{Mapper: mapper, Records: make([]*Record, 0)}
}
