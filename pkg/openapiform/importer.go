// Package openapiform derives a form schema from an OpenAPI operation's JSON
// request body, so hosts can bootstrap a runnable form from an existing API
// contract and refine staging/conditions by hand.
package openapiform

import (
	"context"
	"fmt"
	"os"
	"sort"
	"strconv"
	"strings"
	"unicode"

	"github.com/getkin/kin-openapi/openapi3"

	"github.com/goliatone/go-formflow/pkg/schema"
)

// Import parses an OpenAPI document and converts the request body of the
// operation with the given operationId into a single-stage form schema.
func Import(ctx context.Context, data []byte, operationID string) (*schema.Schema, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	loader := &openapi3.Loader{Context: ctx}
	doc, err := loader.LoadFromData(data)
	if err != nil {
		return nil, fmt.Errorf("openapiform: load document: %w", err)
	}

	op, err := findOperation(doc, operationID)
	if err != nil {
		return nil, err
	}

	body, err := requestBodySchema(op)
	if err != nil {
		return nil, fmt.Errorf("openapiform: operation %q: %w", operationID, err)
	}

	fields, err := fieldsFromObject(body)
	if err != nil {
		return nil, fmt.Errorf("openapiform: operation %q: %w", operationID, err)
	}
	if len(fields) == 0 {
		return nil, fmt.Errorf("openapiform: operation %q yields no fields", operationID)
	}

	out := &schema.Schema{
		ID:    operationID,
		Title: strings.TrimSpace(op.Summary),
		Stages: []schema.Stage{{
			ID:     operationID,
			Label:  labelFor(operationID, op.Summary),
			Fields: fields,
		}},
	}
	if err := schema.Validate(out); err != nil {
		return nil, err
	}
	return out, nil
}

// ImportFile is Import over a document on disk.
func ImportFile(ctx context.Context, path, operationID string) (*schema.Schema, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("openapiform: read document: %w", err)
	}
	return Import(ctx, data, operationID)
}

func findOperation(doc *openapi3.T, operationID string) (*openapi3.Operation, error) {
	if doc.Paths == nil {
		return nil, fmt.Errorf("openapiform: document declares no paths")
	}
	for _, item := range doc.Paths.Map() {
		if item == nil {
			continue
		}
		for _, op := range item.Operations() {
			if op != nil && op.OperationID == operationID {
				return op, nil
			}
		}
	}
	return nil, fmt.Errorf("openapiform: operation %q not found", operationID)
}

func requestBodySchema(op *openapi3.Operation) (*openapi3.Schema, error) {
	if op.RequestBody == nil || op.RequestBody.Value == nil {
		return nil, fmt.Errorf("no request body")
	}
	media := op.RequestBody.Value.Content.Get("application/json")
	if media == nil || media.Schema == nil || media.Schema.Value == nil {
		return nil, fmt.Errorf("no application/json body schema")
	}
	return media.Schema.Value, nil
}

func fieldsFromObject(obj *openapi3.Schema) ([]schema.Field, error) {
	requiredSet := make(map[string]bool, len(obj.Required))
	for _, name := range obj.Required {
		requiredSet[name] = true
	}

	names := make([]string, 0, len(obj.Properties))
	for name := range obj.Properties {
		names = append(names, name)
	}
	sort.Strings(names)

	var fields []schema.Field
	for _, name := range names {
		ref := obj.Properties[name]
		if ref == nil || ref.Value == nil {
			continue
		}
		prop := ref.Value
		// Nested objects and arrays have no flat-form equivalent; authors
		// split those into their own stages by hand.
		if typeIs(prop, "object") || typeIs(prop, "array") {
			continue
		}
		fields = append(fields, fieldFromProperty(name, prop, requiredSet[name]))
	}
	return fields, nil
}

func fieldFromProperty(name string, prop *openapi3.Schema, required bool) schema.Field {
	field := schema.Field{
		Name:       name,
		Type:       fieldType(prop),
		Label:      labelFor(name, prop.Title),
		HelperText: strings.TrimSpace(prop.Description),
		Required:   required,
	}

	if len(prop.Enum) > 0 && field.Type != schema.FieldTypeCheckbox {
		field.Type = schema.FieldTypeSelect
		for _, value := range prop.Enum {
			field.Options = append(field.Options, schema.Option{Value: stringify(value)})
		}
	}

	attrs := make(schema.Attributes)
	if prop.Min != nil {
		attrs["min"] = schema.Attr{Kind: schema.AttrValue, Value: formatFloat(*prop.Min)}
	}
	if prop.Max != nil {
		attrs["max"] = schema.Attr{Kind: schema.AttrValue, Value: formatFloat(*prop.Max)}
	}
	if prop.MinLength > 0 {
		attrs["minlength"] = schema.Attr{Kind: schema.AttrValue, Value: strconv.FormatUint(prop.MinLength, 10)}
	}
	if prop.MaxLength != nil {
		attrs["maxlength"] = schema.Attr{Kind: schema.AttrValue, Value: strconv.FormatUint(*prop.MaxLength, 10)}
	}
	if prop.Pattern != "" {
		attrs["pattern"] = schema.Attr{Kind: schema.AttrValue, Value: prop.Pattern}
	}
	if len(attrs) > 0 {
		field.Attributes = attrs
	}
	return field
}

func fieldType(prop *openapi3.Schema) schema.FieldType {
	switch {
	case typeIs(prop, "boolean"):
		return schema.FieldTypeCheckbox
	case typeIs(prop, "integer"), typeIs(prop, "number"):
		return schema.FieldTypeNumber
	}

	switch strings.ToLower(prop.Format) {
	case "email":
		return schema.FieldTypeEmail
	case "date":
		return schema.FieldTypeDate
	case "date-time":
		return schema.FieldTypeDate
	case "password":
		return schema.FieldTypePassword
	case "uri", "url":
		return schema.FieldTypeURL
	case "tel", "phone":
		return schema.FieldTypeTel
	}
	return schema.FieldTypeText
}

func typeIs(prop *openapi3.Schema, name string) bool {
	return prop.Type != nil && prop.Type.Is(name)
}

// labelFor prefers the authored title, falling back to a humanized version
// of the property name (camelCase and snake_case both split into words).
func labelFor(name, title string) string {
	if trimmed := strings.TrimSpace(title); trimmed != "" {
		return trimmed
	}
	var b strings.Builder
	for i, r := range name {
		switch {
		case r == '_' || r == '-':
			b.WriteByte(' ')
		case i == 0:
			b.WriteRune(unicode.ToUpper(r))
		case unicode.IsUpper(r):
			b.WriteByte(' ')
			b.WriteRune(unicode.ToLower(r))
		default:
			b.WriteRune(r)
		}
	}
	return b.String()
}

func stringify(value any) string {
	switch v := value.(type) {
	case string:
		return v
	case float64:
		return formatFloat(v)
	case bool:
		return strconv.FormatBool(v)
	default:
		return fmt.Sprintf("%v", v)
	}
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
