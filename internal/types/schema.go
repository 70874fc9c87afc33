package types

import "strings"

// AttributeSchema describes one column: its type, whether it is the
// table's primary key, whether nulls are allowed, and an optional
// default used by ALTER TABLE ADD.
type AttributeSchema struct {
	Name         string
	DataType     DataType
	IsPrimaryKey bool
	IsNotNull    bool
	Default      Value
	HasDefault   bool
}

// NewAttributeSchema lowercases name and folds primary-key status into
// not-null, matching AttributeSchema(name, type, isPrimaryKey,
// isNotNull, default) from the original: a primary key is always
// not-null even if the caller didn't say so.
func NewAttributeSchema(name string, dataType DataType, isPrimaryKey, isNotNull bool, def Value, hasDefault bool) AttributeSchema {
	return AttributeSchema{
		Name:         strings.ToLower(name),
		DataType:     dataType,
		IsPrimaryKey: isPrimaryKey,
		IsNotNull:    isNotNull || isPrimaryKey,
		Default:      def,
		HasDefault:   hasDefault,
	}
}

// TableSchema is a lowercase-named, insertion-ordered attribute list
// plus the page id of the table's head page (-1 until created).
type TableSchema struct {
	Name       string
	Attributes []AttributeSchema
	HeadPageID int32
}

// NewTableSchema creates an empty schema with no head page yet.
func NewTableSchema(name string) *TableSchema {
	return &TableSchema{
		Name:       strings.ToLower(name),
		Attributes: nil,
		HeadPageID: -1,
	}
}

// Clone makes a shallow copy of the attribute list and head page id,
// the way TableSchema's copy constructor does for ALTER's rebuild.
func (t *TableSchema) Clone() *TableSchema {
	clone := &TableSchema{
		Name:       t.Name,
		HeadPageID: t.HeadPageID,
		Attributes: make([]AttributeSchema, len(t.Attributes)),
	}
	copy(clone.Attributes, t.Attributes)
	return clone
}

// AddAttribute appends attr unless an attribute with the same
// (case-insensitive) name already exists.
func (t *TableSchema) AddAttribute(attr AttributeSchema) bool {
	if t.HasAttribute(attr.Name) {
		return false
	}
	t.Attributes = append(t.Attributes, attr)
	return true
}

// DropAttribute removes the attribute with the given name, returning
// false if none existed.
func (t *TableSchema) DropAttribute(name string) bool {
	name = strings.ToLower(name)
	for i, attr := range t.Attributes {
		if attr.Name == name {
			t.Attributes = append(t.Attributes[:i], t.Attributes[i+1:]...)
			return true
		}
	}
	return false
}

func (t *TableSchema) AttributeCount() int { return len(t.Attributes) }

// Attribute returns the attribute with the given name, or ok=false.
func (t *TableSchema) Attribute(name string) (AttributeSchema, bool) {
	name = strings.ToLower(name)
	for _, attr := range t.Attributes {
		if attr.Name == name {
			return attr, true
		}
	}
	return AttributeSchema{}, false
}

func (t *TableSchema) AttributeIndex(name string) int {
	name = strings.ToLower(name)
	for i, attr := range t.Attributes {
		if attr.Name == name {
			return i
		}
	}
	return -1
}

func (t *TableSchema) HasAttribute(name string) bool {
	_, ok := t.Attribute(name)
	return ok
}

// PrimaryKey returns the table's single primary-key attribute, or
// ok=false if none is defined yet (true mid-CREATE TABLE only).
func (t *TableSchema) PrimaryKey() (AttributeSchema, bool) {
	for _, attr := range t.Attributes {
		if attr.IsPrimaryKey {
			return attr, true
		}
	}
	return AttributeSchema{}, false
}
