package state

import "fmt"

// FieldType is the declared Go-level type of a state field. Declaring the
// type up front prevents the class of bug where a field starts life as one
// shape (e.g. a list) and is later treated as another (e.g. a string) at a
// different use site.
type FieldType int

const (
	FieldString FieldType = iota
	FieldInt
	FieldFloat
	FieldBool
	FieldEnum
	FieldStruct
)

func (t FieldType) String() string {
	switch t {
	case FieldString:
		return "string"
	case FieldInt:
		return "int"
	case FieldFloat:
		return "float"
	case FieldBool:
		return "bool"
	case FieldEnum:
		return "enum"
	case FieldStruct:
		return "struct"
	default:
		return "unknown"
	}
}

// MergeStrategy determines how ApplyPatch combines a new value for a field
// with the value already present in the store.
type MergeStrategy int

const (
	// LastWriterWins replaces the existing value outright. Two patches in the
	// same ApplyPatch batch writing the same LastWriterWins field is a
	// conflicting update and rejected with ErrConflictingUpdate.
	LastWriterWins MergeStrategy = iota

	// SetUnion merges map values key-by-key (disjoint keys never collide,
	// e.g. per-analyst status maps). Non-map values fall back to
	// LastWriterWins semantics.
	SetUnion

	// AppendString concatenates the new value onto the existing string with
	// a newline separator, unless the existing value is empty.
	AppendString
)

func (m MergeStrategy) String() string {
	switch m {
	case LastWriterWins:
		return "last_writer_wins"
	case SetUnion:
		return "set_union"
	case AppendString:
		return "append_string"
	default:
		return "unknown"
	}
}

// FieldSpec is one declared field of a Schema.
type FieldSpec struct {
	Name  string
	Type  FieldType
	Merge MergeStrategy
}

// zeroValue returns the value a freshly-constructed Store holds for this
// field before any node has written to it. Debate-history and report fields
// are FieldString and so start as "" — never nil, never a list — which is
// the invariant that rules out string/list concatenation crashes.
func (f FieldSpec) zeroValue() any {
	switch f.Type {
	case FieldString, FieldEnum:
		return ""
	case FieldInt:
		return 0
	case FieldFloat:
		return 0.0
	case FieldBool:
		return false
	case FieldStruct:
		return map[string]any{}
	default:
		return nil
	}
}

// Schema is the set of fields declared for a run, built once at graph
// construction time via Declare, before any node executes.
type Schema struct {
	fields map[string]FieldSpec
	order  []string
}

// NewSchema returns an empty Schema ready for field declarations.
func NewSchema() *Schema {
	return &Schema{fields: make(map[string]FieldSpec)}
}

// Declare registers a field's name, type, and merge strategy. Declaring the
// same name twice is a construction-time error, not a runtime one: it
// returns an error so callers can fail fast at graph build.
func (s *Schema) Declare(name string, typ FieldType, merge MergeStrategy) error {
	if name == "" {
		return fmt.Errorf("state: field name must not be empty")
	}
	if _, exists := s.fields[name]; exists {
		return fmt.Errorf("state: field %q already declared", name)
	}

	s.fields[name] = FieldSpec{Name: name, Type: typ, Merge: merge}
	s.order = append(s.order, name)
	return nil
}

// MustDeclare is Declare but panics on error; intended for package-level
// schema construction where a duplicate or empty name is a coding mistake.
func (s *Schema) MustDeclare(name string, typ FieldType, merge MergeStrategy) *Schema {
	if err := s.Declare(name, typ, merge); err != nil {
		panic(err)
	}
	return s
}

// Field returns the declared spec for name and whether it was declared.
func (s *Schema) Field(name string) (FieldSpec, bool) {
	spec, ok := s.fields[name]
	return spec, ok
}

// Fields returns every declared field in declaration order.
func (s *Schema) Fields() []FieldSpec {
	out := make([]FieldSpec, 0, len(s.order))
	for _, name := range s.order {
		out = append(out, s.fields[name])
	}
	return out
}
