// SPDX-License-Identifier: MIT
// Copyright (c) 2026 WoozyMasta
// Source: github.com/woozymasta/protodoc

package protodoc

import (
	"slices"
	"strings"

	"gitlab.com/tozd/go/errors"
)

// Resolve expands shared fields, resolves reply/subscribe references and
// materializes links. The document is left untouched; every call returns a
// fresh graph.
func Resolve(doc *Document) (*Schema, error) {
	schema := &Schema{
		Title:       doc.Title,
		Description: doc.Description,
		Version:     doc.Version,
		Models:      cloneModels(doc.models),
		Concepts:    cloneConcepts(doc.concepts),
		ErrorCodes:  slices.Clone(doc.errorCodes),
		messages:    make(map[MessageID]*Message),
	}

	schema.models = make(map[string]*Model, len(schema.Models))
	for _, model := range schema.Models {
		schema.models[model.Name] = model
	}

	pending, err := buildMessages(schema, doc)
	if err != nil {
		return nil, err
	}

	index := buildMessageIndex(pending)
	if err := resolveReferences(index, pending); err != nil {
		return nil, err
	}

	// References run first so a reference to a repeated triple reports ambiguity.
	if err := rejectDuplicateMessages(pending); err != nil {
		return nil, err
	}

	if err := materializeLinks(schema); err != nil {
		return nil, err
	}

	return schema, nil
}

// ParseAndResolve parses schema bytes and resolves the document.
func ParseAndResolve(data []byte) (*Schema, error) {
	doc, err := Parse(data)
	if err != nil {
		return nil, err
	}

	return Resolve(doc)
}

// ResolveFile parses schema file and resolves the document.
func ResolveFile(path string) (*Schema, error) {
	doc, err := ParseFile(path)
	if err != nil {
		return nil, err
	}

	return Resolve(doc)
}

// buildMessages constructs message entities with expanded fields in declaration order.
func buildMessages(schema *Schema, doc *Document) ([]pendingMessage, error) {
	pending := make([]pendingMessage, 0)
	for _, rawType := range doc.messages {
		messageType := &MessageType{Name: rawType.name}
		for _, rawSubtype := range rawType.subtypes {
			subtype := &MessageSubtype{Name: rawSubtype.name}
			for index := range rawSubtype.messages {
				raw := &rawSubtype.messages[index]
				message, err := buildMessage(rawType.name, rawSubtype.name, raw, doc.sharedFields)
				if err != nil {
					return nil, err
				}

				subtype.Messages = append(subtype.Messages, message)
				if _, exists := schema.messages[message.ID()]; !exists {
					schema.messages[message.ID()] = message
				}

				pending = append(pending, pendingMessage{message: message, raw: raw, position: index + 1})
			}

			messageType.Subtypes = append(messageType.Subtypes, subtype)
		}

		schema.Messages = append(schema.Messages, messageType)
	}

	return pending, nil
}

// rejectDuplicateMessages fails on the first identity triple declared twice.
func rejectDuplicateMessages(pending []pendingMessage) error {
	seen := make(map[MessageID]int, len(pending))
	for _, item := range pending {
		id := item.message.ID()
		if first, exists := seen[id]; exists {
			return errors.WithStack(&DuplicateMessageError{Message: id, First: first, Second: item.position})
		}

		seen[id] = item.position
	}

	return nil
}

// buildMessage converts one raw message and expands its field groups.
func buildMessage(typeName, subtypeName string, raw *rawMessage, catalog map[string]fieldEntry) (*Message, error) {
	message := &Message{
		Type:        typeName,
		Subtype:     subtypeName,
		Direction:   Direction(strings.TrimSpace(string(raw.Direction))),
		Summary:     raw.Summary,
		Description: raw.Description,
		Models:      slices.Clone(raw.Models),
		ErrorCodes:  cloneErrorCodeGroup(raw.ErrorCodes),
	}

	if !message.Direction.Valid() {
		return nil, errors.Errorf("%w %q of message %s/%s", ErrInvalidDirection, message.Direction, typeName, subtypeName)
	}

	id := message.ID()
	args, err := resolveFieldGroup(id, raw.Args, catalog)
	if err != nil {
		return nil, err
	}

	data, err := resolveFieldGroup(id, raw.Data, catalog)
	if err != nil {
		return nil, err
	}

	message.Args = args
	message.Data = data
	return message, nil
}

func cloneModels(models []*Model) []*Model {
	out := make([]*Model, 0, len(models))
	for _, model := range models {
		clone := *model
		clone.Fields = slices.Clone(model.Fields)
		out = append(out, &clone)
	}

	return out
}

func cloneConcepts(concepts []*Concept) []*Concept {
	out := make([]*Concept, 0, len(concepts))
	for _, concept := range concepts {
		clone := *concept
		out = append(out, &clone)
	}

	return out
}

func cloneErrorCodeGroup(group *ErrorCodeGroup) *ErrorCodeGroup {
	if group == nil {
		return nil
	}

	return &ErrorCodeGroup{
		Description: group.Description,
		Codes:       slices.Clone(group.Codes),
	}
}
