package description

import "encoding/json"

type RelationKind string

const (
	BelongsTo RelationKind = "belongsTo"
	HasOne    RelationKind = "hasOne"
	HasMany   RelationKind = "hasMany"
)

var relationKinds = []RelationKind{BelongsTo, HasOne, HasMany}

func asRelationKind(name string) (RelationKind, bool) {
	for _, kind := range relationKinds {
		if string(kind) == name {
			return kind, true
		}
	}
	return RelationKind(""), false
}

//ComplementaryTo reports whether other is a valid inverse kind: a BelongsTo
//inverts into HasOne or HasMany and vice versa.
func (kind RelationKind) ComplementaryTo(other RelationKind) bool {
	switch kind {
	case BelongsTo:
		return other == HasOne || other == HasMany
	case HasOne, HasMany:
		return other == BelongsTo
	default:
		return false
	}
}

//IsBuiltin reports whether the kind is one of the closed built-in variants.
//Custom kinds registered with the store pass validation and marshalling;
//only the relation-kind registry decides whether a kind is usable.
func (kind RelationKind) IsBuiltin() bool {
	_, ok := asRelationKind(string(kind))
	return ok
}

func (kind RelationKind) MarshalJSON() ([]byte, error) {
	if kind == "" {
		return nil, NewMapperDescriptionError("", "json_marshal", ErrJsonMarshal, "Empty relation kind")
	}
	return json.Marshal(string(kind))
}

func (kind *RelationKind) UnmarshalJSON(b []byte) error {
	var s string
	if e := json.Unmarshal(b, &s); e != nil {
		return e
	}
	if s == "" {
		return NewMapperDescriptionError("", "json_unmarshal", ErrJsonUnmarshal, "Empty relation kind")
	}
	*kind = RelationKind(s)
	return nil
}

//A single declared relation. ForeignKey always names the scalar field on the
//BelongsTo side; LocalField names the computed link field on the declaring
//mapper. InverseLocalField optionally pins the inverse relation on the
//related mapper when more than one candidate could match.
type Relation struct {
	Kind              RelationKind `json:"kind"`
	RelatedMapper     string       `json:"related_mapper"`
	ForeignKey        string       `json:"foreign_key"`
	LocalField        string       `json:"local_field"`
	InverseLocalField string       `json:"inverse_local_field,omitempty"`
}
