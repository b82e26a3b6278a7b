// SPDX-License-Identifier: MIT
// Copyright (c) 2026 WoozyMasta
// Source: github.com/woozymasta/protodoc

package protodoc

import (
	"fmt"

	"gitlab.com/tozd/go/errors"
)

var (
	// ErrReadSchemaFile is returned when schema file loading fails.
	ErrReadSchemaFile = errors.Base("read schema file")
	// ErrDecodeSchema is returned when schema YAML/JSON decoding fails.
	ErrDecodeSchema = errors.Base("decode schema")
	// ErrUnresolvedSharedField is returned when a field list references a missing shared field.
	ErrUnresolvedSharedField = errors.Base("unresolved shared field")
	// ErrNestedSharedField is returned when a shared field template is itself a reference.
	ErrNestedSharedField = errors.Base("nested shared field reference")
	// ErrUnresolvableReference is returned when a reply/subscribe target matches no message.
	ErrUnresolvableReference = errors.Base("unresolvable reference")
	// ErrAmbiguousReference is returned when a reply/subscribe target matches several messages.
	ErrAmbiguousReference = errors.Base("ambiguous reference")
	// ErrMalformedReference is returned when a reference target is not type/subtype[/direction].
	ErrMalformedReference = errors.Base("malformed reference")
	// ErrDuplicateMessage is returned when a type/subtype/direction triple is declared more than once.
	ErrDuplicateMessage = errors.Base("duplicate message")
	// ErrDuplicatePage is returned when two rendered pages share one file name.
	ErrDuplicatePage = errors.Base("duplicate page")
	// ErrInvalidDirection is returned when a message has missing or unknown direction.
	ErrInvalidDirection = errors.Base("invalid message direction")
	// ErrUnknownModel is returned when a message uses a model that is not declared.
	ErrUnknownModel = errors.Base("unknown model")
	// ErrUnknownMessage is returned when a lookup names a message that is not declared.
	ErrUnknownMessage = errors.Base("unknown message")
	// ErrUnknownFormat is returned when requested output format is not supported.
	ErrUnknownFormat = errors.Base("unknown output format")
	// ErrUnknownBuiltinTemplate is returned when requested built-in template name is not registered.
	ErrUnknownBuiltinTemplate = errors.Base("unknown built-in template")
	// ErrReadBuiltinTemplate is returned when built-in template file loading fails.
	ErrReadBuiltinTemplate = errors.Base("read built-in template")
	// ErrParseTemplate is returned when built-in or custom template parsing fails.
	ErrParseTemplate = errors.Base("parse template")
	// ErrExecuteTemplate is returned when page template execution fails.
	ErrExecuteTemplate = errors.Base("execute template")
	// ErrWriteSite is returned when generated pages or assets cannot be written.
	ErrWriteSite = errors.Base("write site")
	// ErrUnknownExampleMode is returned when example generation mode is not supported.
	ErrUnknownExampleMode = errors.Base("unknown example mode")
	// ErrUnknownExampleFormat is returned when example generation format is not supported.
	ErrUnknownExampleFormat = errors.Base("unknown example format")
	// ErrUnknownFieldGroup is returned when example generation targets neither args nor data.
	ErrUnknownFieldGroup = errors.Base("unknown field group")
	// ErrEncodeExample is returned when generated example encoding fails.
	ErrEncodeExample = errors.Base("encode example")
)

// UnresolvedSharedFieldError reports a "@key" field entry without catalog entry.
type UnresolvedSharedFieldError struct {
	Message MessageID
	Key     string
}

func (e *UnresolvedSharedFieldError) Error() string {
	return fmt.Sprintf("%s: message %s references shared field %q", ErrUnresolvedSharedField, e.Message, e.Key)
}

func (e *UnresolvedSharedFieldError) Unwrap() error {
	return ErrUnresolvedSharedField
}

// UnresolvableReferenceError reports a reference target that matches no declared message.
type UnresolvableReferenceError struct {
	Message MessageID
	Field   string
	Target  MessageID
}

func (e *UnresolvableReferenceError) Error() string {
	return fmt.Sprintf("%s: %s of message %s points to %s", ErrUnresolvableReference, e.Field, e.Message, e.Target)
}

func (e *UnresolvableReferenceError) Unwrap() error {
	return ErrUnresolvableReference
}

// AmbiguousReferenceError reports a reference target declared more than once.
type AmbiguousReferenceError struct {
	Message MessageID
	Field   string
	Target  MessageID
	Matches int
}

func (e *AmbiguousReferenceError) Error() string {
	return fmt.Sprintf("%s: %s of message %s points to %s which is declared %d times", ErrAmbiguousReference, e.Field, e.Message, e.Target, e.Matches)
}

func (e *AmbiguousReferenceError) Unwrap() error {
	return ErrAmbiguousReference
}

// DuplicateMessageError reports a type/subtype/direction triple declared twice.
// First and Second are 1-based positions in the type/subtype message list.
type DuplicateMessageError struct {
	Message MessageID
	First   int
	Second  int
}

func (e *DuplicateMessageError) Error() string {
	return fmt.Sprintf("%s: %s declared as entries %d and %d of %s/%s",
		ErrDuplicateMessage, e.Message, e.First, e.Second, e.Message.Type, e.Message.Subtype)
}

func (e *DuplicateMessageError) Unwrap() error {
	return ErrDuplicateMessage
}

// MalformedReferenceError reports a reference string that cannot be parsed
// (the malformed reference syntax error kind).
type MalformedReferenceError struct {
	Message MessageID
	Field   string
	Value   string
	Reason  string
}

func (e *MalformedReferenceError) Error() string {
	return fmt.Sprintf("%s: %s of message %s has value %q: %s", ErrMalformedReference, e.Field, e.Message, e.Value, e.Reason)
}

func (e *MalformedReferenceError) Unwrap() error {
	return ErrMalformedReference
}
