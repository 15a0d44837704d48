package description

import (
	"encoding/json"
	"fmt"
)

type mapperDescriptionError struct {
	code   string
	msg    string
	mapper string
	op     string
}

func (e *mapperDescriptionError) Error() string {
	return fmt.Sprintf("MapperDescription error:  MapperDescription = '%s', operation = '%s', code='%s'  msg = '%s'", e.mapper, e.op, e.code, e.msg)
}

func (e *mapperDescriptionError) Json() []byte {
	j, _ := json.Marshal(map[string]string{
		"MapperDescription": e.mapper,
		"op":                e.op,
		"code":              "MapperDescription:" + e.code,
		"msg":               e.msg,
	})
	return j
}

func NewMapperDescriptionError(mapper string, op string, code string, msg string, a ...interface{}) *mapperDescriptionError {
	return &mapperDescriptionError{mapper: mapper, op: op, code: code, msg: fmt.Sprintf(msg, a...)}
}

const (
	ErrNotValid      = "not_valid"
	ErrJsonUnmarshal = "json_unmarshal"
	ErrJsonMarshal   = "json_marshal"
)
