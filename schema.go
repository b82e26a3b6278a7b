// SPDX-License-Identifier: MIT
// Copyright (c) 2026 WoozyMasta
// Source: github.com/woozymasta/protodoc

package protodoc

import (
	"fmt"
	"iter"
	"slices"
	"strings"

	"gitlab.com/tozd/go/errors"
)

const (
	// DirectionFromApp marks messages sent by the app to the client.
	DirectionFromApp Direction = "fromapp"
	// DirectionToApp marks messages sent by the client to the app.
	DirectionToApp Direction = "toapp"
	// DirectionBidirectional marks messages sent by both sides.
	DirectionBidirectional Direction = "bidirectional"
)

// ConditionNone is the condition of references that declare none.
const ConditionNone = "(none)"

// Direction is the flow of one message variant.
type Direction string

// Valid reports whether direction is one of the three known values.
func (direction Direction) Valid() bool {
	switch direction {
	case DirectionFromApp, DirectionToApp, DirectionBidirectional:
		return true
	default:
		return false
	}
}

// Invert returns the expected direction of a reply or subscription to a message
// flowing in this direction. Unknown directions are returned unchanged.
func (direction Direction) Invert() Direction {
	switch direction {
	case DirectionFromApp:
		return DirectionToApp
	case DirectionToApp:
		return DirectionFromApp
	default:
		return direction
	}
}

// Text returns human-readable direction phrase.
func (direction Direction) Text() string {
	switch direction {
	case DirectionFromApp:
		return "app -> client"
	case DirectionToApp:
		return "client -> app"
	case DirectionBidirectional:
		return "bidirectional"
	default:
		return "unknown"
	}
}

// MessageID identifies exactly one message variant.
type MessageID struct {
	Type      string
	Subtype   string
	Direction Direction
}

// String returns "type/subtype/direction".
func (id MessageID) String() string {
	return id.Type + "/" + id.Subtype + "/" + string(id.Direction)
}

// Label returns "type/subtype".
func (id MessageID) Label() string {
	return id.Type + "/" + id.Subtype
}

// Page returns the page name (without extension) of the message.
func (id MessageID) Page() string {
	return "message-" + id.Type + "-" + id.Subtype + "-" + string(id.Direction)
}

// ParseMessageID parses "type/subtype/direction"; the direction is required.
func ParseMessageID(value string) (MessageID, error) {
	target, err := parseReferenceTarget(value)
	if err != nil {
		return MessageID{}, errors.WithStack(fmt.Errorf("%w %q: %w", ErrUnknownMessage, value, err))
	}

	if target.Direction == "" {
		return MessageID{}, errors.Errorf("%w %q: missing direction", ErrUnknownMessage, value)
	}

	return MessageID{Type: target.Type, Subtype: target.Subtype, Direction: target.Direction}, nil
}

// Schema is the resolved, bidirectionally linked schema graph.
type Schema struct {
	Title       string
	Description string
	Version     string
	Messages    []*MessageType
	Models      []*Model
	Concepts    []*Concept
	// ErrorCodes is the global error code catalog.
	ErrorCodes []ErrorCode

	models   map[string]*Model
	messages map[MessageID]*Message
}

// MessageType groups all subtypes of one message type in declaration order.
type MessageType struct {
	Name     string
	Subtypes []*MessageSubtype
}

// MessageSubtype groups all direction variants of one type/subtype pair.
type MessageSubtype struct {
	Name     string
	Messages []*Message
}

// Message is one concrete protocol message variant.
type Message struct {
	Type        string
	Subtype     string
	Direction   Direction
	Summary     string
	Description string
	Args        *FieldGroup
	Data        *FieldGroup
	Models      []string
	ErrorCodes  *ErrorCodeGroup

	ReplyTo       []*Reference
	SubscribeTo   []*Reference
	ReplyFrom     []*Reference
	SubscribeFrom []*Reference

	// Reply, Subscribe and ModelRefs are filled by link materialization.
	Reply     *ReferenceBundle
	Subscribe *ReferenceBundle
	ModelRefs []ModelRef
}

// ID returns message identity triple.
func (message *Message) ID() MessageID {
	return MessageID{Type: message.Type, Subtype: message.Subtype, Direction: message.Direction}
}

// FieldGroup is a described, ordered list of fields. Empty groups are nil.
type FieldGroup struct {
	Description string
	Fields      []Field
}

// Field is one documented value of a message or model.
type Field struct {
	Name        string `json:"name" yaml:"name"`
	Description string `json:"description,omitempty" yaml:"description,omitempty"`
	Type        string `json:"type" yaml:"type"`
	Optional    bool   `json:"optional,omitempty" yaml:"optional,omitempty"`
	Nullable    bool   `json:"nullable,omitempty" yaml:"nullable,omitempty"`
}

// Model is a named reusable type definition.
type Model struct {
	Name        string
	Description string
	Fields      []Field
}

// Concept is free-form documentation unit.
type Concept struct {
	Key         string
	Name        string
	Description string
}

// ErrorCode is one documented error code.
type ErrorCode struct {
	Code        string
	Description string
}

// ErrorCodeGroup lists error codes a message may carry.
type ErrorCodeGroup struct {
	Description string
	Codes       []ErrorCode
}

// Reference is one reply or subscribe link between two messages.
type Reference struct {
	Target     MessageID
	Condition  string
	ErrorCodes []ErrorCode
	Link       Link
}

// Link is presentation metadata of a reference target.
type Link struct {
	Page          string
	Label         string
	DirectionText string
}

// BundleDirection tells whether a bundle lists declared or received references.
type BundleDirection string

const (
	// BundleTo marks references declared by the message itself.
	BundleTo BundleDirection = "to"
	// BundleFrom marks reverse references received from other messages.
	BundleFrom BundleDirection = "from"
)

// ReferenceBundle is the precomputed reply or subscribe section of a message.
type ReferenceBundle struct {
	Direction  BundleDirection
	References []*Reference
}

// ModelRef pairs a model name used by a message with its definition.
type ModelRef struct {
	Name  string
	Model *Model
}

// AllMessages iterates messages in declared type, subtype and sequence order.
func (schema *Schema) AllMessages() iter.Seq[*Message] {
	return func(yield func(*Message) bool) {
		for _, messageType := range schema.Messages {
			for _, subtype := range messageType.Subtypes {
				for _, message := range subtype.Messages {
					if !yield(message) {
						return
					}
				}
			}
		}
	}
}

// Message returns message by identity triple.
func (schema *Schema) Message(id MessageID) (*Message, bool) {
	message, ok := schema.messages[id]
	return message, ok
}

// Model returns model by name.
func (schema *Schema) Model(name string) (*Model, bool) {
	model, ok := schema.models[name]
	return model, ok
}

// Concept returns concept by mapping key.
func (schema *Schema) Concept(key string) (*Concept, bool) {
	for _, concept := range schema.Concepts {
		if concept.Key == key {
			return concept, true
		}
	}

	return nil, false
}

// SortedModels returns models ordered by case-insensitive name.
func (schema *Schema) SortedModels() []*Model {
	out := slices.Clone(schema.Models)
	slices.SortStableFunc(out, func(a, b *Model) int {
		return strings.Compare(strings.ToLower(a.Name), strings.ToLower(b.Name))
	})

	return out
}

// ModelPage returns the page name (without extension) of a model.
func ModelPage(name string) string {
	return strings.ToLower("model-" + name)
}

// ConceptPage returns the page name (without extension) of a concept.
func ConceptPage(key string) string {
	return strings.ToLower("concept-" + key)
}
