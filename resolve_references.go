// SPDX-License-Identifier: MIT
// Copyright (c) 2026 WoozyMasta
// Source: github.com/woozymasta/protodoc

package protodoc

import (
	"slices"
	"strings"

	"gitlab.com/tozd/go/errors"
)

// referenceKind selects forward and reverse reference lists of a message.
type referenceKind struct {
	field   string
	forward func(message *Message) *[]*Reference
	reverse func(message *Message) *[]*Reference
}

var (
	replyKind = referenceKind{
		field:   "replyTo",
		forward: func(message *Message) *[]*Reference { return &message.ReplyTo },
		reverse: func(message *Message) *[]*Reference { return &message.ReplyFrom },
	}
	subscribeKind = referenceKind{
		field:   "subscribeTo",
		forward: func(message *Message) *[]*Reference { return &message.SubscribeTo },
		reverse: func(message *Message) *[]*Reference { return &message.SubscribeFrom },
	}
)

// referenceTarget is a parsed "type/subtype[/direction]" value.
// Direction is empty when the author omitted it.
type referenceTarget struct {
	Type      string
	Subtype   string
	Direction Direction
}

// messageIndex maps identity triples to every message declaring them.
type messageIndex map[MessageID][]*Message

// pendingMessage pairs a constructed message with its author-written references.
// Position is 1-based within the declaring type/subtype list.
type pendingMessage struct {
	message  *Message
	raw      *rawMessage
	position int
}

// parseReferenceTarget splits reference value into type, subtype and optional direction.
func parseReferenceTarget(value string) (referenceTarget, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return referenceTarget{}, errors.New("empty reference")
	}

	typeName, rest, ok := strings.Cut(value, "/")
	if !ok {
		return referenceTarget{}, errors.New("expected type/subtype")
	}

	subtype, direction, hasDirection := strings.Cut(rest, "/")
	target := referenceTarget{
		Type:      strings.TrimSpace(typeName),
		Subtype:   strings.TrimSpace(subtype),
		Direction: Direction(strings.TrimSpace(direction)),
	}

	if target.Type == "" {
		return referenceTarget{}, errors.New("missing type")
	}

	if target.Subtype == "" {
		return referenceTarget{}, errors.New("missing subtype")
	}

	if hasDirection && target.Direction == "" {
		return referenceTarget{}, errors.New("empty direction")
	}

	if target.Direction != "" && !target.Direction.Valid() {
		return referenceTarget{}, errors.Errorf("unknown direction %q", target.Direction)
	}

	return target, nil
}

// resolve fills omitted direction by inverting the declaring message direction.
func (target referenceTarget) resolve(source Direction) MessageID {
	direction := target.Direction
	if direction == "" {
		direction = source.Invert()
	}

	return MessageID{Type: target.Type, Subtype: target.Subtype, Direction: direction}
}

// buildMessageIndex indexes all constructed messages before any reference is resolved.
func buildMessageIndex(pending []pendingMessage) messageIndex {
	index := make(messageIndex, len(pending))
	for _, item := range pending {
		id := item.message.ID()
		index[id] = append(index[id], item.message)
	}

	return index
}

// lookup returns the single message declared under target triple.
func (index messageIndex) lookup(source MessageID, field string, target MessageID) (*Message, error) {
	matches := index[target]
	switch len(matches) {
	case 0:
		return nil, errors.WithStack(&UnresolvableReferenceError{Message: source, Field: field, Target: target})
	case 1:
		return matches[0], nil
	default:
		return nil, errors.WithStack(&AmbiguousReferenceError{Message: source, Field: field, Target: target, Matches: len(matches)})
	}
}

// resolveReferences resolves declared references in declaration order and
// appends reverse references to their targets.
func resolveReferences(index messageIndex, pending []pendingMessage) error {
	for _, item := range pending {
		if err := resolveMessageReferences(index, item.message, replyKind, item.raw.ReplyTo); err != nil {
			return err
		}

		if err := resolveMessageReferences(index, item.message, subscribeKind, item.raw.SubscribeTo); err != nil {
			return err
		}
	}

	return nil
}

// resolveMessageReferences resolves one reference list of one message.
func resolveMessageReferences(index messageIndex, message *Message, kind referenceKind, references []rawReference) error {
	source := message.ID()
	for _, raw := range references {
		target, err := parseReferenceTarget(raw.Message)
		if err != nil {
			return errors.WithStack(&MalformedReferenceError{
				Message: source,
				Field:   kind.field,
				Value:   raw.Message,
				Reason:  err.Error(),
			})
		}

		targetID := target.resolve(source.Direction)
		targetMessage, err := index.lookup(source, kind.field, targetID)
		if err != nil {
			return err
		}

		forward := &Reference{
			Target:     targetID,
			Condition:  strings.TrimSpace(raw.Condition),
			ErrorCodes: slices.Clone([]ErrorCode(raw.ErrorCodes)),
		}

		forwardList := kind.forward(message)
		*forwardList = append(*forwardList, forward)

		reverseList := kind.reverse(targetMessage)
		*reverseList = append(*reverseList, forward.reversed(source))
	}

	return nil
}

// reversed returns independent copy pointing back at source with its own direction.
func (reference *Reference) reversed(source MessageID) *Reference {
	out := *reference
	out.Target = source
	out.ErrorCodes = slices.Clone(reference.ErrorCodes)
	out.Link = Link{}
	return &out
}
