package codec

import (
	"encoding/json"
	"fmt"
)

// LayoutDocument is the JSON description of a schema, for programs whose
// layout is supplied at runtime instead of compiled in.
//
//	{"name": "intro", "fields": [{"name": "variant", "type": "u8"}, ...]}
type LayoutDocument struct {
	Name   string        `json:"name"`
	Fields []LayoutField `json:"fields"`
}

type LayoutField struct {
	Name string `json:"name"`
	Type string `json:"type"`
}

var kindsByName = map[string]Kind{
	"u8":        U8,
	"bool":      Bool,
	"string":    String,
	"str":       String,
	"publicKey": PublicKey,
	"pubkey":    PublicKey,
}

// ParseLayout builds a Schema from its JSON description.
func ParseLayout(raw []byte) (Schema, error) {
	var doc LayoutDocument
	if err := json.Unmarshal(raw, &doc); err != nil {
		return Schema{}, fmt.Errorf("error unmarshalling layout JSON: %w", err)
	}
	if len(doc.Fields) == 0 {
		return Schema{}, fmt.Errorf("layout %q has no fields", doc.Name)
	}

	seen := make(map[string]struct{}, len(doc.Fields))
	fields := make([]Field, 0, len(doc.Fields))
	for i, lf := range doc.Fields {
		if lf.Name == "" {
			return Schema{}, fmt.Errorf("layout %q: field %d has no name", doc.Name, i)
		}
		if _, dup := seen[lf.Name]; dup {
			return Schema{}, fmt.Errorf("layout %q: duplicate field %q", doc.Name, lf.Name)
		}
		kind, ok := kindsByName[lf.Type]
		if !ok {
			return Schema{}, fmt.Errorf("layout %q: field %q has unknown type %q", doc.Name, lf.Name, lf.Type)
		}
		seen[lf.Name] = struct{}{}
		fields = append(fields, Field{Name: lf.Name, Kind: kind})
	}

	return NewSchema(doc.Name, fields...), nil
}

// Document renders the schema back into its JSON description.
func (s Schema) Document() LayoutDocument {
	doc := LayoutDocument{Name: s.Name, Fields: make([]LayoutField, 0, len(s.Fields))}
	for _, f := range s.Fields {
		doc.Fields = append(doc.Fields, LayoutField{Name: f.Name, Type: f.Kind.String()})
	}
	return doc
}
