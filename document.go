// SPDX-License-Identifier: MIT
// Copyright (c) 2026 WoozyMasta
// Source: github.com/woozymasta/protodoc

package protodoc

import (
	"fmt"
	"os"
	"strings"

	"gitlab.com/tozd/go/errors"
	"gopkg.in/yaml.v3"
)

// sharedFieldMarker prefixes field list entries referencing sharedFields keys.
const sharedFieldMarker = "@"

// Document is the author-written schema before resolution.
// It is consumed by Resolve and never exposed to rendering.
type Document struct {
	Title       string
	Description string
	Version     string

	messages     []rawMessageType
	models       []*Model
	concepts     []*Concept
	sharedFields map[string]fieldEntry
	errorCodes   []ErrorCode
}

// rawDocument mirrors top-level schema keys for YAML decoding.
type rawDocument struct {
	Title        string                `yaml:"title"`
	Description  string                `yaml:"description"`
	Version      string                `yaml:"version"`
	Messages     rawMessageTypes       `yaml:"messages"`
	Models       rawModels             `yaml:"models"`
	Concepts     rawConcepts           `yaml:"concepts"`
	SharedFields map[string]fieldEntry `yaml:"sharedFields"`
	ErrorCodes   errorCodeList         `yaml:"errorCodes"`
}

type rawMessageTypes []rawMessageType

type rawMessageType struct {
	name     string
	subtypes []rawMessageSubtype
}

type rawMessageSubtype struct {
	name     string
	messages []rawMessage
}

// rawMessage is one message variant as written by schema authors.
type rawMessage struct {
	Direction   Direction       `yaml:"direction"`
	Summary     string          `yaml:"summary"`
	Description string          `yaml:"description"`
	Args        *rawFieldGroup  `yaml:"args"`
	Data        *rawFieldGroup  `yaml:"data"`
	Models      []string        `yaml:"models"`
	ErrorCodes  *ErrorCodeGroup `yaml:"errorCodes"`
	ReplyTo     []rawReference  `yaml:"replyTo"`
	SubscribeTo []rawReference  `yaml:"subscribeTo"`
}

type rawFieldGroup struct {
	Description string       `yaml:"description"`
	Fields      []fieldEntry `yaml:"fields"`
}

// fieldEntry is either a structured field or a shared field reference.
type fieldEntry struct {
	ref   string
	field Field
}

// rawField accepts both "name" and "field" keys for the field name.
type rawField struct {
	Name        string `yaml:"name"`
	Field       string `yaml:"field"`
	Description string `yaml:"description"`
	Type        string `yaml:"type"`
	Optional    bool   `yaml:"optional"`
	Nullable    bool   `yaml:"nullable"`
}

type rawReference struct {
	Message    string        `yaml:"message"`
	Condition  string        `yaml:"condition"`
	ErrorCodes errorCodeList `yaml:"errorCodes"`
}

type rawModel struct {
	Description string     `yaml:"description"`
	Fields      []rawField `yaml:"fields"`
}

type rawModels []*Model

type rawConcept struct {
	Name        string `yaml:"name"`
	Description string `yaml:"description"`
}

type rawConcepts []*Concept

type errorCodeList []ErrorCode

// ParseFile reads and parses schema document from file.
func ParseFile(path string) (*Document, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, wrapError(ErrReadSchemaFile, err)
	}

	return Parse(data)
}

// Parse decodes YAML or JSON schema bytes into a raw document.
func Parse(data []byte) (*Document, error) {
	var root yaml.Node
	if err := yaml.Unmarshal(data, &root); err != nil {
		return nil, wrapError(ErrDecodeSchema, err)
	}

	if root.Kind != yaml.DocumentNode || len(root.Content) == 0 {
		return nil, errors.Errorf("%w: empty document", ErrDecodeSchema)
	}

	var raw rawDocument
	if err := root.Content[0].Decode(&raw); err != nil {
		return nil, wrapError(ErrDecodeSchema, err)
	}

	return &Document{
		Title:        strings.TrimSpace(raw.Title),
		Description:  raw.Description,
		Version:      strings.TrimSpace(raw.Version),
		messages:     raw.Messages,
		models:       raw.Models,
		concepts:     raw.Concepts,
		sharedFields: raw.SharedFields,
		errorCodes:   raw.ErrorCodes,
	}, nil
}

// UnmarshalYAML decodes ordered type -> subtype -> sequence message mapping.
func (types *rawMessageTypes) UnmarshalYAML(node *yaml.Node) error {
	return eachMappingPair(node, func(typeName string, subtypesNode *yaml.Node) error {
		messageType := rawMessageType{name: typeName}
		err := eachMappingPair(subtypesNode, func(subtypeName string, messagesNode *yaml.Node) error {
			var messages []rawMessage
			if err := messagesNode.Decode(&messages); err != nil {
				return fmt.Errorf("messages %s/%s: %w", typeName, subtypeName, err)
			}

			messageType.subtypes = append(messageType.subtypes, rawMessageSubtype{
				name:     subtypeName,
				messages: messages,
			})
			return nil
		})
		if err != nil {
			return err
		}

		*types = append(*types, messageType)
		return nil
	})
}

// UnmarshalYAML decodes field record or "@key" shared field reference.
func (entry *fieldEntry) UnmarshalYAML(node *yaml.Node) error {
	if node.Kind == yaml.ScalarNode {
		value := strings.TrimSpace(node.Value)
		key := strings.TrimPrefix(value, sharedFieldMarker)
		if key == value || strings.TrimSpace(key) == "" {
			return errors.Errorf("line %d: field entry %q is neither a field record nor a %skey reference", node.Line, value, sharedFieldMarker)
		}

		entry.ref = strings.TrimSpace(key)
		return nil
	}

	var field rawField
	if err := node.Decode(&field); err != nil {
		return err
	}

	entry.field = field.toField()
	return nil
}

// isReference reports whether entry is a shared field reference.
func (entry fieldEntry) isReference() bool {
	return entry.ref != ""
}

func (field rawField) toField() Field {
	name := strings.TrimSpace(field.Name)
	if name == "" {
		name = strings.TrimSpace(field.Field)
	}

	return Field{
		Name:        name,
		Description: field.Description,
		Type:        strings.TrimSpace(field.Type),
		Optional:    field.Optional,
		Nullable:    field.Nullable,
	}
}

// UnmarshalYAML decodes ordered model mapping.
func (models *rawModels) UnmarshalYAML(node *yaml.Node) error {
	return eachMappingPair(node, func(name string, value *yaml.Node) error {
		var model rawModel
		if err := value.Decode(&model); err != nil {
			return fmt.Errorf("model %s: %w", name, err)
		}

		fields := make([]Field, 0, len(model.Fields))
		for _, field := range model.Fields {
			fields = append(fields, field.toField())
		}

		*models = append(*models, &Model{
			Name:        name,
			Description: model.Description,
			Fields:      fields,
		})
		return nil
	})
}

// UnmarshalYAML decodes ordered concept mapping.
func (concepts *rawConcepts) UnmarshalYAML(node *yaml.Node) error {
	return eachMappingPair(node, func(key string, value *yaml.Node) error {
		var concept rawConcept
		if err := value.Decode(&concept); err != nil {
			return fmt.Errorf("concept %s: %w", key, err)
		}

		name := strings.TrimSpace(concept.Name)
		if name == "" {
			name = key
		}

		*concepts = append(*concepts, &Concept{
			Key:         key,
			Name:        name,
			Description: concept.Description,
		})
		return nil
	})
}

// UnmarshalYAML decodes ordered code -> description mapping.
func (codes *errorCodeList) UnmarshalYAML(node *yaml.Node) error {
	return eachMappingPair(node, func(code string, value *yaml.Node) error {
		var description string
		if err := value.Decode(&description); err != nil {
			return fmt.Errorf("error code %s: %w", code, err)
		}

		*codes = append(*codes, ErrorCode{Code: code, Description: description})
		return nil
	})
}

// UnmarshalYAML decodes message-level error code listing.
func (group *ErrorCodeGroup) UnmarshalYAML(node *yaml.Node) error {
	var raw struct {
		Description string        `yaml:"description"`
		Codes       errorCodeList `yaml:"codes"`
	}

	if err := node.Decode(&raw); err != nil {
		return err
	}

	group.Description = raw.Description
	group.Codes = raw.Codes
	return nil
}

// eachMappingPair walks mapping node pairs in document order and rejects duplicate keys.
func eachMappingPair(node *yaml.Node, fn func(key string, value *yaml.Node) error) error {
	if node.Kind == yaml.AliasNode && node.Alias != nil {
		node = node.Alias
	}

	if node.Kind == yaml.ScalarNode && node.Tag == "!!null" {
		return nil
	}

	if node.Kind != yaml.MappingNode {
		return errors.Errorf("line %d: expected mapping", node.Line)
	}

	seen := make(map[string]struct{}, len(node.Content)/2)
	for index := 0; index+1 < len(node.Content); index += 2 {
		keyNode := node.Content[index]
		key := strings.TrimSpace(keyNode.Value)
		if _, exists := seen[key]; exists {
			return errors.Errorf("line %d: duplicate key %q", keyNode.Line, key)
		}

		seen[key] = struct{}{}
		if err := fn(key, node.Content[index+1]); err != nil {
			return err
		}
	}

	return nil
}

// wrapError keeps both sentinel and cause reachable through errors.Is.
func wrapError(sentinel, cause error) error {
	return errors.WithStack(fmt.Errorf("%w: %w", sentinel, cause))
}
