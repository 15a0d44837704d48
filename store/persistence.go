package store

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"
)

var protocols []string

type Protocol int

func (p Protocol) String() (string, bool) {
	if i := int(p); i <= 0 || i > len(protocols) {
		return "", false
	} else {
		return protocols[i-1], true
	}
}
func protocol_iota(s string) Protocol {
	protocols = append(protocols, s)
	return Protocol(len(protocols))
}

func asProtocol(name string) (Protocol, bool) {
	for i := range protocols {
		if protocols[i] == name {
			return Protocol(i + 1), true
		}
	}
	return Protocol(0), false
}

var (
	MEMORY = protocol_iota("MEMORY")
	TEST   = protocol_iota("TEST")
)

func (p *Protocol) MarshalJSON() ([]byte, error) {
	if s, ok := p.String(); ok {
		return json.Marshal(s)
	}
	return nil, NewPersistenceError("json_marshal", "Incorrect protocol: %v", p)
}
func (p *Protocol) UnmarshalJSON(b []byte) error {
	var s string
	if e := json.Unmarshal(b, &s); e != nil {
		return e
	}
	if protocol, ok := asProtocol(s); ok {
		*p = protocol
		return nil
	}
	return NewPersistenceError("json_unmarshal", "Incorrect protocol: %s", s)
}

type PersistenceError struct {
	code string
	msg  string
}

func (e *PersistenceError) Error() string {
	return fmt.Sprintf("Persistence error:  code='%s'  msg = '%s'", e.code, e.msg)
}

func (e *PersistenceError) Json() []byte {
	j, _ := json.Marshal(map[string]string{
		"code": "persistence:" + e.code,
		"msg":  e.msg,
	})
	return j
}

func NewPersistenceError(code string, msg string, a ...interface{}) *PersistenceError {
	return &PersistenceError{code: code, msg: fmt.Sprintf(msg, a...)}
}

/*
   The narrow surface the core needs from the external persistence layer.
   The core never retries and never de-duplicates concurrent creates for
   what converges to one logical entity; both belong to the implementation
   behind this interface.
*/
type Persister interface {
	CreateLinked(ctx context.Context, mapperName string, data map[string]interface{}) (map[string]interface{}, error)
	Destroy(ctx context.Context, mapperName string, id interface{}) error
	DestroyAll(ctx context.Context, mapperName string, ids []interface{}) ([]interface{}, error)
}

type Factory func(args []string) (Persister, error)

var PersisterFactories = map[Protocol]Factory{
	MEMORY: NewMemoryPersister,
	TEST:   NewTestPersister,
}

//MemoryPersister keeps created data in plain maps and assigns uuid
//identifiers to records created without one.
type MemoryPersister struct {
	keyField string
	stored   map[string]map[interface{}]map[string]interface{}
}

func NewMemoryPersister(args []string) (Persister, error) {
	keyField := "id"
	if len(args) > 0 && args[0] != "" {
		keyField = args[0]
	}
	return &MemoryPersister{keyField: keyField, stored: make(map[string]map[interface{}]map[string]interface{})}, nil
}

func (persister *MemoryPersister) CreateLinked(ctx context.Context, mapperName string, data map[string]interface{}) (map[string]interface{}, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	created := make(map[string]interface{}, len(data)+1)
	for key, value := range data {
		created[key] = value
	}
	if _, ok := created[persister.keyField]; !ok {
		created[persister.keyField] = uuid.New().String()
	}
	if _, ok := persister.stored[mapperName]; !ok {
		persister.stored[mapperName] = make(map[interface{}]map[string]interface{})
	}
	persister.stored[mapperName][created[persister.keyField]] = created
	return created, nil
}

func (persister *MemoryPersister) Destroy(ctx context.Context, mapperName string, id interface{}) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	delete(persister.stored[mapperName], id)
	return nil
}

func (persister *MemoryPersister) DestroyAll(ctx context.Context, mapperName string, ids []interface{}) ([]interface{}, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	destroyed := make([]interface{}, 0, len(ids))
	for _, id := range ids {
		delete(persister.stored[mapperName], id)
		destroyed = append(destroyed, id)
	}
	return destroyed, nil
}

//TestPersister records every call and fails on demand.
type TestPersister struct {
	NextError error
	Created   []map[string]interface{}
	Destroyed []interface{}
}

func NewTestPersister(args []string) (Persister, error) {
	return &TestPersister{}, nil
}

func (persister *TestPersister) takeError() error {
	err := persister.NextError
	persister.NextError = nil
	return err
}

func (persister *TestPersister) CreateLinked(ctx context.Context, mapperName string, data map[string]interface{}) (map[string]interface{}, error) {
	if err := persister.takeError(); err != nil {
		return nil, err
	}
	persister.Created = append(persister.Created, data)
	return data, nil
}

func (persister *TestPersister) Destroy(ctx context.Context, mapperName string, id interface{}) error {
	if err := persister.takeError(); err != nil {
		return err
	}
	persister.Destroyed = append(persister.Destroyed, id)
	return nil
}

func (persister *TestPersister) DestroyAll(ctx context.Context, mapperName string, ids []interface{}) ([]interface{}, error) {
	if err := persister.takeError(); err != nil {
		return nil, err
	}
	persister.Destroyed = append(persister.Destroyed, ids...)
	return ids, nil
}
