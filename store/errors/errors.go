package errors

import (
	"encoding/json"
	"fmt"
)

//Linking errors description
const (
	ErrConfiguration       = "configuration_error"
	ErrUnknownRelationKind = "unknown_relation_kind"
	ErrMisuse              = "misuse_error"
)

//The interface of error convertable to JSON in format {"code":"some_code"; "msg":"message"}.
type JsonError interface {
	Json() []byte
	Serialize() map[string]string
}

type LinkError struct {
	Code   string
	Mapper string
	Op     string
	Msg    string
}

func (e *LinkError) Error() string {
	return fmt.Sprintf("Link error: Mapper = '%s', operation = '%s', code = '%s', msg = '%s'", e.Mapper, e.Op, e.Code, e.Msg)
}

func (e *LinkError) Serialize() map[string]string {
	return map[string]string{
		"mapper": e.Mapper,
		"op":     e.Op,
		"code":   e.Code,
		"msg":    e.Msg,
	}
}

func (e *LinkError) Json() []byte {
	encodedData, _ := json.Marshal(e.Serialize())
	return encodedData
}

func NewConfigurationError(mapper string, op string, msg string, a ...interface{}) *LinkError {
	return &LinkError{Code: ErrConfiguration, Mapper: mapper, Op: op, Msg: fmt.Sprintf(msg, a...)}
}

func NewUnknownRelationKindError(kind string) *LinkError {
	return &LinkError{Code: ErrUnknownRelationKind, Op: "lookup", Msg: fmt.Sprintf("Relation kind '%s' is not registered", kind)}
}

func NewMisuseError(mapper string, op string, msg string, a ...interface{}) *LinkError {
	return &LinkError{Code: ErrMisuse, Mapper: mapper, Op: op, Msg: fmt.Sprintf(msg, a...)}
}
