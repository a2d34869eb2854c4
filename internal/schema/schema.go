// Copyright (c) matt-FFFFFF 2025. All rights reserved.
// SPDX-License-Identifier: MIT

// Package schema generates a JSON schema from the config structs, using their
// yaml tags for names and requiredness and docdesc tags for descriptions.
package schema

import (
	"encoding/json"
	"fmt"
	"io"
	"reflect"
	"strings"
)

// Draft is the JSON schema dialect of generated documents.
const Draft = "https://json-schema.org/draft/2020-12/schema"

// Field represents a field in a JSON schema.
type Field struct {
	Name        string
	Type        string
	Description string
	Required    bool
	Items       *Field   // For arrays
	Fields      []Field  // For objects, in declaration order
	Enum        []string // From the enum tag, comma separated
	Minimum     *int     // From the min tag, for integers
}

// Generator converts structs to schema documents.
type Generator struct{}

// NewGenerator creates a new Generator.
func NewGenerator() *Generator {
	return &Generator{}
}

// Fields extracts the schema fields of a struct value or type.
func (g *Generator) Fields(def any) ([]Field, error) {
	return g.extractFields(reflect.TypeOf(def))
}

// Generate returns the schema document for def as a map ready for JSON encoding.
func (g *Generator) Generate(def any, title, description string) (map[string]any, error) {
	fields, err := g.Fields(def)
	if err != nil {
		return nil, err
	}

	root := g.objectProperty(fields)
	root["$schema"] = Draft
	root["title"] = title
	root["description"] = description

	return root, nil
}

// WriteJSONSchema writes the indented schema for def to w.
func (g *Generator) WriteJSONSchema(w io.Writer, def any, title, description string) error {
	doc, err := g.Generate(def, title, description)
	if err != nil {
		return err
	}

	b, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return fmt.Errorf("encoding schema: %w", err)
	}

	_, err = w.Write(append(b, '\n'))

	return err //nolint:wrapcheck
}

// extractFields extracts schema fields from a struct type using reflection.
func (g *Generator) extractFields(t reflect.Type) ([]Field, error) {
	if t == nil {
		return nil, fmt.Errorf("expected struct type, got nil")
	}

	if t.Kind() == reflect.Ptr {
		t = t.Elem()
	}

	if t.Kind() != reflect.Struct {
		return nil, fmt.Errorf("expected struct type, got %s", t.Kind())
	}

	var fields []Field

	for i := range t.NumField() {
		field := t.Field(i)

		if !field.IsExported() {
			continue
		}

		// Embedded structs contribute their fields inline.
		if field.Anonymous {
			embedded, err := g.extractFields(field.Type)
			if err != nil {
				return nil, err
			}

			fields = append(fields, embedded...)

			continue
		}

		f, ok, err := g.fieldToSchemaField(field)
		if err != nil {
			return nil, err
		}

		if ok {
			fields = append(fields, f)
		}
	}

	return fields, nil
}

// fieldToSchemaField converts a struct field. Fields tagged yaml:"-" are skipped.
func (g *Generator) fieldToSchemaField(field reflect.StructField) (Field, bool, error) {
	yamlTag := field.Tag.Get("yaml")
	if yamlTag == "-" {
		return Field{}, false, nil
	}

	name := strings.ToLower(field.Name)

	parts := strings.Split(yamlTag, ",")
	if parts[0] != "" {
		name = parts[0]
	}

	f := Field{
		Name:        name,
		Description: field.Tag.Get("docdesc"),
		Required:    !strings.Contains(yamlTag, "omitempty"),
	}

	if enum := field.Tag.Get("enum"); enum != "" {
		f.Enum = strings.Split(enum, ",")
	}

	if minimum := field.Tag.Get("min"); minimum != "" {
		var n int
		if _, err := fmt.Sscanf(minimum, "%d", &n); err != nil {
			return Field{}, false, fmt.Errorf("field %s: bad min tag %q: %w", field.Name, minimum, err)
		}

		f.Minimum = &n
	}

	if err := g.describeType(&f, field.Type); err != nil {
		return Field{}, false, err
	}

	return f, true, nil
}

// describeType fills in the JSON type and, for arrays and objects, the nested schema.
func (g *Generator) describeType(f *Field, t reflect.Type) error {
	if t.Kind() == reflect.Ptr {
		t = t.Elem()
	}

	f.Type = schemaType(t)

	switch t.Kind() {
	case reflect.Slice, reflect.Array:
		item := &Field{}
		if err := g.describeType(item, t.Elem()); err != nil {
			return err
		}

		f.Items = item

	case reflect.Struct:
		fields, err := g.extractFields(t)
		if err != nil {
			return err
		}

		f.Fields = fields
	}

	return nil
}

// schemaType converts a Go type to a JSON schema type.
func schemaType(t reflect.Type) string {
	switch t.Kind() {
	case reflect.String:
		return "string"
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return "integer"
	case reflect.Float32, reflect.Float64:
		return "number"
	case reflect.Bool:
		return "boolean"
	case reflect.Slice, reflect.Array:
		return "array"
	case reflect.Map, reflect.Struct:
		return "object"
	default:
		return "string"
	}
}

func (g *Generator) objectProperty(fields []Field) map[string]any {
	properties := make(map[string]any, len(fields))
	required := []string{}

	for _, f := range fields {
		properties[f.Name] = g.property(f)

		if f.Required {
			required = append(required, f.Name)
		}
	}

	return map[string]any{
		"type":                 "object",
		"properties":           properties,
		"required":             required,
		"additionalProperties": false,
	}
}

// property converts a Field to a JSON schema property.
func (g *Generator) property(f Field) map[string]any {
	prop := map[string]any{"type": f.Type}

	if f.Type == "object" && f.Fields != nil {
		prop = g.objectProperty(f.Fields)
	}

	if f.Description != "" {
		prop["description"] = f.Description
	}

	if len(f.Enum) > 0 {
		prop["enum"] = f.Enum
	}

	if f.Minimum != nil {
		prop["minimum"] = *f.Minimum
	}

	if f.Items != nil {
		prop["items"] = g.property(*f.Items)
	}

	return prop
}
