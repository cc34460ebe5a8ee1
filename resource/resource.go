// Package resource translates between ndb rows and a flat hypermedia
// document format ({type, id, attributes, relationships}). It is a thin
// boundary adapter: malformed documents come back as errors, never
// panics, because documents originate outside the program.
package resource

import (
	"fmt"

	"github.com/andreyvit/ndb"
)

// Document is the wire shape of one resource, as produced by a generic
// JSON decoder.
type Document = map[string]any

// Mapping describes how one document type maps onto one table. Explicit
// per-key entries win over the casing transforms; keys without either are
// passed through unchanged.
type Mapping struct {
	Type  string // document type name
	Table string // defaults to Type
	IDKey string // document id key, defaults to "id"

	Attrs map[string]string // document attribute key => row attribute
	Rels  map[string]string // document relationship key => row field

	DecodeKey func(string) string // document key => row key (Parse)
	EncodeKey func(string) string // row key => document key (Format)
}

// Registry holds the mappings of every resource type the host exchanges.
type Registry struct {
	db      *ndb.Database
	byType  map[string]*Mapping
	byTable map[string]*Mapping
}

func NewRegistry(db *ndb.Database) *Registry {
	return &Registry{
		db:      db,
		byType:  make(map[string]*Mapping),
		byTable: make(map[string]*Mapping),
	}
}

// Add registers a mapping. Registration mistakes are programmer errors
// and panic, like schema registration does.
func (reg *Registry) Add(m *Mapping) *Registry {
	if m.Type == "" {
		panic(fmt.Errorf("resource: mapping without a type name"))
	}
	if reg.byType[m.Type] != nil {
		panic(fmt.Errorf("resource: duplicate mapping for type %q", m.Type))
	}
	if m.Table == "" {
		m.Table = m.Type
	}
	if reg.db.Schema().TableNamed(m.Table) == nil {
		panic(fmt.Errorf("resource: mapping for type %q references unregistered table %q", m.Type, m.Table))
	}
	if m.IDKey == "" {
		m.IDKey = "id"
	}
	reg.byType[m.Type] = m
	reg.byTable[m.Table] = m
	return reg
}

func (m *Mapping) decodeAttrKey(key string) string {
	if attr, ok := m.Attrs[key]; ok {
		return attr
	}
	if m.DecodeKey != nil {
		return m.DecodeKey(key)
	}
	return key
}

func (m *Mapping) decodeRelKey(key string) string {
	if field, ok := m.Rels[key]; ok {
		return field
	}
	if m.DecodeKey != nil {
		return m.DecodeKey(key)
	}
	return key
}

func (m *Mapping) encodeKey(explicit map[string]string, rowKey string) string {
	for docKey, attr := range explicit {
		if attr == rowKey {
			return docKey
		}
	}
	if m.EncodeKey != nil {
		return m.EncodeKey(rowKey)
	}
	return rowKey
}

// Parse turns a document into the table name and an attribute map ready
// for Model.Create or Upsert. To-one relationships become the linked id,
// to-many relationships become a slice of ids.
func (reg *Registry) Parse(doc Document) (string, ndb.Attrs, error) {
	typeName, _ := doc["type"].(string)
	if typeName == "" {
		return "", nil, fmt.Errorf("resource: document without a type")
	}
	m := reg.byType[typeName]
	if m == nil {
		return "", nil, fmt.Errorf("resource: unknown document type %q", typeName)
	}
	tbl := reg.db.Schema().TableNamed(m.Table)

	attrs := make(ndb.Attrs)
	if id, ok := doc[m.IDKey]; ok && id != nil {
		attrs[tbl.KeyAttr()] = id
	}

	if rawAttrs, ok := doc["attributes"]; ok {
		attrMap, ok := rawAttrs.(map[string]any)
		if !ok {
			return "", nil, fmt.Errorf("resource: %s document attributes are %T, not a map", typeName, rawAttrs)
		}
		for key, value := range attrMap {
			attrs[m.decodeAttrKey(key)] = value
		}
	}

	if rawRels, ok := doc["relationships"]; ok {
		relMap, ok := rawRels.(map[string]any)
		if !ok {
			return "", nil, fmt.Errorf("resource: %s document relationships are %T, not a map", typeName, rawRels)
		}
		for key, value := range relMap {
			field := m.decodeRelKey(key)
			ids, err := parseLinkage(typeName, key, value)
			if err != nil {
				return "", nil, err
			}
			attrs[field] = ids
		}
	}
	return m.Table, attrs, nil
}

// parseLinkage unwraps a {data: ...} relationship value: one resource
// identifier for to-one, a list for to-many, nil for an empty to-one.
func parseLinkage(typeName, key string, value any) (any, error) {
	rel, ok := value.(map[string]any)
	if !ok {
		return nil, fmt.Errorf("resource: %s relationship %q is %T, not a map", typeName, key, value)
	}
	data, ok := rel["data"]
	if !ok {
		return nil, fmt.Errorf("resource: %s relationship %q has no data", typeName, key)
	}
	switch data := data.(type) {
	case nil:
		return nil, nil
	case map[string]any:
		return linkageID(typeName, key, data)
	case []any:
		ids := make([]any, 0, len(data))
		for _, item := range data {
			ref, ok := item.(map[string]any)
			if !ok {
				return nil, fmt.Errorf("resource: %s relationship %q has a %T entry", typeName, key, item)
			}
			id, err := linkageID(typeName, key, ref)
			if err != nil {
				return nil, err
			}
			ids = append(ids, id)
		}
		return ids, nil
	default:
		return nil, fmt.Errorf("resource: %s relationship %q has unsupported data %T", typeName, key, data)
	}
}

func linkageID(typeName, key string, ref map[string]any) (any, error) {
	id, ok := ref["id"]
	if !ok || id == nil {
		return nil, fmt.Errorf("resource: %s relationship %q identifier without an id", typeName, key)
	}
	return id, nil
}

// Format turns a row into a document of the given type. To-one
// relationships stored on the row become resource identifiers; to-many
// relationships live in through tables and are not embedded.
func (reg *Registry) Format(typeName string, row ndb.Row) (Document, error) {
	m := reg.byType[typeName]
	if m == nil {
		return nil, fmt.Errorf("resource: unknown document type %q", typeName)
	}
	tbl := reg.db.Schema().TableNamed(m.Table)

	attrs := make(map[string]any)
	rels := make(map[string]any)
	for key, value := range row {
		if key == tbl.KeyAttr() {
			continue
		}
		f := tbl.FieldNamed(key)
		if f != nil && (f.Kind() == ndb.FKField || f.Kind() == ndb.O2OField) {
			rels[m.encodeKey(m.Rels, key)] = map[string]any{
				"data": reg.identifier(f.Target().Name(), value),
			}
		} else {
			attrs[m.encodeKey(m.Attrs, key)] = value
		}
	}

	doc := Document{
		"type":  typeName,
		m.IDKey: row[tbl.KeyAttr()],
	}
	if len(attrs) > 0 {
		doc["attributes"] = attrs
	}
	if len(rels) > 0 {
		doc["relationships"] = rels
	}
	return doc, nil
}

func (reg *Registry) identifier(table string, id any) any {
	if id == nil {
		return nil
	}
	typeName := table
	if m := reg.byTable[table]; m != nil {
		typeName = m.Type
	}
	return map[string]any{"type": typeName, "id": id}
}
