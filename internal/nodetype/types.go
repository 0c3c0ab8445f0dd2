// Package nodetype defines the pluggable type model: the five basic value
// types, construct types with declared parameters and fields, list types,
// and the macro meta-types expanded away before type checking.
package nodetype

// Type is implemented by every registrable concrete type. Meta-types are
// deliberately not Types: once expansion completes no node may carry one.
type Type interface {
	// TypeID is the unique identifier the script uses to name this type.
	TypeID() string
	// Title is a short human-readable name, used in diagnostics.
	Title() string
}

// BasicTypeID identifies one of the five primitive value types.
type BasicTypeID string

const (
	BasicString    BasicTypeID = "string"
	BasicNumber    BasicTypeID = "number"
	BasicInteger   BasicTypeID = "integer"
	BasicBoolean   BasicTypeID = "boolean"
	BasicReference BasicTypeID = "reference"
)

// BasicType is a primitive value type. Its values live inline on simple
// nodes rather than as registry-resolved nodes.
type BasicType struct {
	ID BasicTypeID
}

func (t *BasicType) TypeID() string { return string(t.ID) }
func (t *BasicType) Title() string  { return string(t.ID) }

// The process-wide basic type singletons. Identity comparison against
// these is the exact-match rule for primitives.
var (
	StringType    = &BasicType{ID: BasicString}
	NumberType    = &BasicType{ID: BasicNumber}
	IntegerType   = &BasicType{ID: BasicInteger}
	BooleanType   = &BasicType{ID: BasicBoolean}
	ReferenceType = &BasicType{ID: BasicReference}
)

// BasicTypes maps each basic type id to its singleton.
var BasicTypes = map[BasicTypeID]*BasicType{
	BasicString:    StringType,
	BasicNumber:    NumberType,
	BasicInteger:   IntegerType,
	BasicBoolean:   BooleanType,
	BasicReference: ReferenceType,
}

// IsBasicTypeID reports whether id names one of the five basic types.
func IsBasicTypeID(id string) bool {
	_, ok := BasicTypes[BasicTypeID(id)]
	return ok
}

// CheckBasicValue reports whether value is a runtime match for the basic
// type. A reference value must be a non-empty []string of non-empty strings.
func CheckBasicValue(id BasicTypeID, value any) bool {
	switch id {
	case BasicString:
		_, ok := value.(string)
		return ok
	case BasicNumber:
		switch value.(type) {
		case float64, float32, int, int64:
			return true
		}
		return false
	case BasicInteger:
		switch value.(type) {
		case int, int64:
			return true
		}
		return false
	case BasicBoolean:
		_, ok := value.(bool)
		return ok
	case BasicReference:
		ref, ok := value.([]string)
		if !ok || len(ref) == 0 {
			return false
		}
		for _, elem := range ref {
			if elem == "" {
				return false
			}
		}
		return true
	}
	return false
}

// Parameter is a declared keyed input slot on a construct type.
type Parameter struct {
	Key      string
	Title    string
	Type     Type // exact type required; nil only when AnyConstruct is set
	Required bool
	// AnyConstruct accepts any construct-typed node. Used by container
	// commands whose children are arbitrary runnable constructs.
	AnyConstruct bool
}

// Allows reports whether a node of type t may fill this slot. Matching is
// strict type identity; there is no subtyping or coercion.
func (p *Parameter) Allows(t Type) bool {
	if p.AnyConstruct {
		_, ok := t.(*ConstructType)
		return ok
	}
	return p.Type == t
}

// Field is a declared keyed output/state slot on a construct type. Fields
// are always materialized in the lowered tree, whether or not the script
// references them.
type Field struct {
	Key   string
	Title string
	Type  Type
	// UsableBeforeRun marks fields the script may reference before the
	// owning node's execute fragment has run.
	UsableBeforeRun bool
}

// ConstructType is a named complex type with declared Parameters (inputs)
// and Fields (outputs/state).
type ConstructType struct {
	ID         string
	Name       string
	Doc        string
	Parameters []*Parameter
	Fields     []*Field
}

func (t *ConstructType) TypeID() string { return t.ID }
func (t *ConstructType) Title() string  { return t.Name }

// Parameter returns the declared parameter with the given key, or nil.
func (t *ConstructType) Parameter(key string) *Parameter {
	for _, p := range t.Parameters {
		if p.Key == key {
			return p
		}
	}
	return nil
}

// ListType constrains an ordered collection: a uniform item slot plus
// inclusive count bounds. Max is nil when the list is unbounded above.
type ListType struct {
	ID    string
	Name  string
	Items *Parameter
	Min   int
	Max   *int
}

func (t *ListType) TypeID() string { return t.ID }
func (t *ListType) Title() string  { return t.Name }

// MetaType describes a macro: its node is replaced by a generated subtree
// before normal type checking.
type MetaType struct {
	ID         string
	Name       string
	Doc        string
	Parameters []*Parameter
}

// MetaID returns the macro's unique identifier.
func (t *MetaType) MetaID() string { return t.ID }

// Title returns the macro's short human-readable name.
func (t *MetaType) Title() string { return t.Name }
