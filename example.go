// SPDX-License-Identifier: MIT
// Copyright (c) 2026 WoozyMasta
// Source: github.com/woozymasta/protodoc

package protodoc

import (
	"bytes"
	"encoding/json"
	"strconv"
	"strings"

	"gitlab.com/tozd/go/errors"
	"gopkg.in/yaml.v3"
)

const (
	// ExampleModeAll builds example with all declared fields.
	ExampleModeAll ExampleMode = "all"
	// ExampleModeRequired builds example with non-optional fields only.
	ExampleModeRequired ExampleMode = "required"
)

// ExampleMode configures example generation field coverage.
type ExampleMode string

const (
	// ExampleFormatJSON encodes example payload as JSON.
	ExampleFormatJSON ExampleFormat = "json"
	// ExampleFormatYAML encodes example payload as YAML.
	ExampleFormatYAML ExampleFormat = "yaml"
)

// ExampleFormat configures output format for generated example payload.
type ExampleFormat string

const (
	// FieldGroupArgs selects message arguments.
	FieldGroupArgs FieldGroupName = "args"
	// FieldGroupData selects message data.
	FieldGroupData FieldGroupName = "data"
)

// FieldGroupName selects args or data group of a message.
type FieldGroupName string

// exampleScalarPlaceholders provides fallback values for scalar field types.
var exampleScalarPlaceholders = map[string]any{
	"string":  "<string>",
	"str":     "<string>",
	"number":  0,
	"integer": 0,
	"int":     0,
	"uint":    0,
	"float":   0,
	"double":  0,
	"boolean": false,
	"bool":    false,
	"bytes":   "<bytes>",
	"binary":  "<bytes>",
	"null":    nil,
}

var (
	exampleArrayWrappers = map[string]struct{}{
		"array": {}, "list": {}, "set": {}, "sequence": {},
	}
	exampleMapWrappers = map[string]struct{}{
		"map": {}, "record": {}, "dict": {}, "object": {},
	}
)

// exampleBuilder converts fields and models into example values.
type exampleBuilder struct {
	activeModels map[string]int
	mode         ExampleMode
	schema       *Schema
}

// exampleObject is an ordered object with per-key comments.
type exampleObject struct {
	keys     []string
	values   map[string]any
	comments map[string]string
}

// typeExpr is a parsed field type such as "Array<Receiver>" or "string[]".
type typeExpr struct {
	name  string
	args  []typeExpr
	array bool
}

// GenerateExample returns example payload of one message field group.
func GenerateExample(schema *Schema, id MessageID, group FieldGroupName, mode ExampleMode, format ExampleFormat) ([]byte, error) {
	message, ok := schema.Message(id)
	if !ok {
		return nil, errors.Errorf("%w %q", ErrUnknownMessage, id)
	}

	var fieldGroup *FieldGroup
	switch FieldGroupName(strings.ToLower(strings.TrimSpace(string(group)))) {
	case FieldGroupArgs:
		fieldGroup = message.Args
	case FieldGroupData:
		fieldGroup = message.Data
	default:
		return nil, errors.Errorf("%w %q", ErrUnknownFieldGroup, group)
	}

	var fields []Field
	if fieldGroup != nil {
		fields = fieldGroup.Fields
	}

	return GenerateFieldsExample(schema, fields, mode, format)
}

// GenerateFieldsExample returns example payload for a field list encoded in selected format.
func GenerateFieldsExample(schema *Schema, fields []Field, mode ExampleMode, format ExampleFormat) ([]byte, error) {
	mode, err := normalizeExampleMode(mode)
	if err != nil {
		return nil, err
	}

	format, err = normalizeExampleFormat(format)
	if err != nil {
		return nil, err
	}

	builder := exampleBuilder{
		schema:       schema,
		mode:         mode,
		activeModels: make(map[string]int),
	}

	value := builder.buildFields(fields)
	switch format {
	case ExampleFormatYAML:
		data, err := marshalExampleYAMLNode(yamlNodeForValue(value))
		if err != nil {
			return nil, wrapError(ErrEncodeExample, err)
		}

		return data, nil
	default:
		data, err := marshalExampleJSON(value)
		if err != nil {
			return nil, wrapError(ErrEncodeExample, err)
		}

		return data, nil
	}
}

// normalizeExampleMode validates and normalizes caller mode value.
func normalizeExampleMode(mode ExampleMode) (ExampleMode, error) {
	normalized := ExampleMode(strings.ToLower(strings.TrimSpace(string(mode))))
	switch normalized {
	case ExampleModeAll, ExampleModeRequired:
		return normalized, nil
	default:
		return "", errors.Errorf("%w %q", ErrUnknownExampleMode, mode)
	}
}

// normalizeExampleFormat validates and normalizes caller format value.
func normalizeExampleFormat(format ExampleFormat) (ExampleFormat, error) {
	normalized := ExampleFormat(strings.ToLower(strings.TrimSpace(string(format))))
	switch normalized {
	case ExampleFormatJSON, ExampleFormatYAML:
		return normalized, nil
	default:
		return "", errors.Errorf("%w %q", ErrUnknownExampleFormat, format)
	}
}

// buildFields materializes ordered object from field list honoring example mode.
func (builder *exampleBuilder) buildFields(fields []Field) *exampleObject {
	out := newExampleObject()
	for _, field := range fields {
		if builder.mode == ExampleModeRequired && field.Optional {
			continue
		}

		name := strings.TrimSpace(field.Name)
		if name == "" {
			continue
		}

		out.set(name, builder.buildType(parseTypeExpr(field.Type)), field.Description)
	}

	return out
}

// buildType builds example value for one parsed type expression.
func (builder *exampleBuilder) buildType(expr typeExpr) any {
	if expr.array {
		element := expr
		element.array = false
		return []any{builder.buildType(element)}
	}

	// Declared models shadow built-in wrapper and scalar names.
	if model, ok := builder.schema.Model(expr.name); ok {
		return builder.buildModel(model)
	}

	lowered := strings.ToLower(expr.name)
	if _, ok := exampleArrayWrappers[lowered]; ok && len(expr.args) > 0 {
		return []any{builder.buildType(expr.args[0])}
	}

	if _, ok := exampleMapWrappers[lowered]; ok {
		out := newExampleObject()
		if len(expr.args) > 0 {
			out.set("<key>", builder.buildType(expr.args[len(expr.args)-1]), "")
		}

		return out
	}

	if value, ok := exampleScalarPlaceholders[lowered]; ok {
		return value
	}

	if len(expr.args) == 1 {
		return builder.buildType(expr.args[0])
	}

	if expr.name == "" {
		return nil
	}

	return "<" + expr.name + ">"
}

// buildModel expands model fields and stops on recursive model chains.
func (builder *exampleBuilder) buildModel(model *Model) any {
	release, ok := builder.enterModel(model.Name)
	if !ok {
		return nil
	}
	defer release()

	return builder.buildFields(model.Fields)
}

// enterModel registers active model and returns release callback.
func (builder *exampleBuilder) enterModel(name string) (func(), bool) {
	if builder.activeModels[name] > 0 {
		return nil, false
	}

	builder.activeModels[name]++
	return func() {
		builder.activeModels[name]--
		if builder.activeModels[name] <= 0 {
			delete(builder.activeModels, name)
		}
	}, true
}

// parseTypeExpr parses free-form type strings with generic-like wrappers.
// Union types ("A | B") use their first alternative.
func parseTypeExpr(text string) typeExpr {
	text = strings.TrimSpace(text)
	if head, _, ok := splitTopLevel(text, '|'); ok {
		text = strings.TrimSpace(head)
	}

	if strings.HasSuffix(text, "[]") {
		inner := parseTypeExpr(strings.TrimSuffix(text, "[]"))
		return typeExpr{name: "Array", args: []typeExpr{inner}}
	}

	open := strings.IndexByte(text, '<')
	if open < 0 || !strings.HasSuffix(text, ">") {
		return typeExpr{name: text}
	}

	expr := typeExpr{name: strings.TrimSpace(text[:open])}
	rest := text[open+1 : len(text)-1]
	for {
		head, tail, ok := splitTopLevel(rest, ',')
		expr.args = append(expr.args, parseTypeExpr(head))
		if !ok {
			break
		}

		rest = tail
	}

	return expr
}

// splitTopLevel splits text at first separator outside angle brackets.
func splitTopLevel(text string, separator byte) (string, string, bool) {
	depth := 0
	for index := 0; index < len(text); index++ {
		switch text[index] {
		case '<':
			depth++
		case '>':
			depth--
		case separator:
			if depth == 0 {
				return text[:index], text[index+1:], true
			}
		}
	}

	return text, "", false
}

func newExampleObject() *exampleObject {
	return &exampleObject{
		values:   make(map[string]any),
		comments: make(map[string]string),
	}
}

// set stores value under key keeping first insertion order.
func (object *exampleObject) set(key string, value any, comment string) {
	if _, exists := object.values[key]; !exists {
		object.keys = append(object.keys, key)
	}

	object.values[key] = value
	if comment = strings.TrimSpace(comment); comment != "" {
		object.comments[key] = comment
	}
}

// MarshalJSON encodes object members in insertion order.
func (object *exampleObject) MarshalJSON() ([]byte, error) {
	var out bytes.Buffer
	out.WriteByte('{')
	for index, key := range object.keys {
		if index > 0 {
			out.WriteByte(',')
		}

		keyData, err := marshalJSONCompact(key)
		if err != nil {
			return nil, err
		}

		valueData, err := marshalJSONCompact(object.values[key])
		if err != nil {
			return nil, err
		}

		out.Write(keyData)
		out.WriteByte(':')
		out.Write(valueData)
	}

	out.WriteByte('}')
	return out.Bytes(), nil
}

// marshalJSONCompact encodes value without HTML escaping of placeholders.
func marshalJSONCompact(value any) ([]byte, error) {
	var out bytes.Buffer
	encoder := json.NewEncoder(&out)
	encoder.SetEscapeHTML(false)
	if err := encoder.Encode(value); err != nil {
		return nil, err
	}

	return bytes.TrimRight(out.Bytes(), "\n"), nil
}

// marshalExampleJSON serializes example payload as pretty JSON.
func marshalExampleJSON(value any) ([]byte, error) {
	var out bytes.Buffer
	encoder := json.NewEncoder(&out)
	encoder.SetEscapeHTML(false)
	encoder.SetIndent("", "  ")

	if err := encoder.Encode(value); err != nil {
		return nil, err
	}

	return out.Bytes(), nil
}

// marshalExampleYAMLNode serializes example payload as YAML.
func marshalExampleYAMLNode(node *yaml.Node) ([]byte, error) {
	document := &yaml.Node{
		Kind:    yaml.DocumentNode,
		Content: []*yaml.Node{node},
	}

	var out bytes.Buffer
	encoder := yaml.NewEncoder(&out)
	encoder.SetIndent(2)

	if err := encoder.Encode(document); err != nil {
		return nil, err
	}

	if err := encoder.Close(); err != nil {
		return nil, err
	}

	return out.Bytes(), nil
}

// normalizeYAMLComment strips empty lines from comment body.
func normalizeYAMLComment(comment string) string {
	lines := strings.Split(normalizeLineEndings(comment), "\n")
	normalized := make([]string, 0, len(lines))
	for _, line := range lines {
		if strings.TrimSpace(line) == "" {
			continue
		}

		normalized = append(normalized, strings.TrimRight(line, " \t"))
	}

	return strings.Join(normalized, "\n")
}

// yamlNodeForValue builds deterministic yaml.Node tree from example value.
func yamlNodeForValue(value any) *yaml.Node {
	switch typed := value.(type) {
	case nil:
		return yamlScalarNode("!!null", "null")

	case bool:
		return yamlScalarNode("!!bool", strconv.FormatBool(typed))

	case string:
		return yamlScalarNode("!!str", typed)

	case int:
		return yamlScalarNode("!!int", strconv.Itoa(typed))

	case float64:
		return yamlScalarNode("!!float", strconv.FormatFloat(typed, 'g', -1, 64))

	case *exampleObject:
		node := &yaml.Node{Kind: yaml.MappingNode, Tag: "!!map"}
		for _, key := range typed.keys {
			keyNode := yamlScalarNode("!!str", key)
			if comment := normalizeYAMLComment(typed.comments[key]); comment != "" {
				keyNode.HeadComment = comment
			}

			node.Content = append(node.Content, keyNode, yamlNodeForValue(typed.values[key]))
		}
		return node

	case []any:
		node := &yaml.Node{Kind: yaml.SequenceNode, Tag: "!!seq"}
		for _, item := range typed {
			node.Content = append(node.Content, yamlNodeForValue(item))
		}
		return node

	default:
		return yamlScalarNode("!!str", mustJSONInline(typed))
	}
}

// yamlScalarNode creates one scalar yaml.Node with explicit tag.
func yamlScalarNode(tag, value string) *yaml.Node {
	return &yaml.Node{
		Kind:  yaml.ScalarNode,
		Tag:   tag,
		Value: value,
	}
}
