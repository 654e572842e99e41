package ir

import "slices"

// ValidFieldTypes defines the allowed type strings for item fields.
// NO "float" - floats are forbidden in query literals.
var ValidFieldTypes = map[string]bool{
	"string": true,
	"int":    true,
	"bool":   true,
	"array":  true,
	"object": true,
}

// SourceSchema describes the item type of a query source: the shape of the
// value a range variable binds to.
type SourceSchema struct {
	Name   string        `json:"name"`
	Fields []FieldSchema `json:"fields"`
}

// FieldSchema describes one member of an item type.
// Elem names the element item type for "array" fields whose elements are
// themselves schema-described items (e.g. Student.Courses → Course).
type FieldSchema struct {
	Name string `json:"name"`
	Type string `json:"type"`
	Elem string `json:"elem,omitempty"`
}

// Field looks up a field by name.
func (s *SourceSchema) Field(name string) (FieldSchema, bool) {
	i := slices.IndexFunc(s.Fields, func(f FieldSchema) bool { return f.Name == name })
	if i < 0 {
		return FieldSchema{}, false
	}
	return s.Fields[i], true
}

// SourceDecl binds a named query source (a table, a collection) to the
// item type its elements have.
type SourceDecl struct {
	Name     string `json:"name"`
	ItemType string `json:"item_type"`
}
