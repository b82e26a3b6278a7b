// SPDX-License-Identifier: MIT
// Copyright (c) 2026 WoozyMasta
// Source: github.com/woozymasta/protodoc

package protodoc

import (
	"gitlab.com/tozd/go/errors"
)

// materializeLinks annotates every reference with presentation metadata and
// precomputes reply/subscribe bundles and model tuples of every message.
func materializeLinks(schema *Schema) error {
	for message := range schema.AllMessages() {
		for _, list := range [][]*Reference{message.ReplyTo, message.ReplyFrom} {
			for _, reference := range list {
				materializeReply(reference, schema.ErrorCodes)
			}
		}

		for _, list := range [][]*Reference{message.SubscribeTo, message.SubscribeFrom} {
			for _, reference := range list {
				materializeReference(reference)
			}
		}

		message.Reply = referenceBundle(message.ReplyTo, message.ReplyFrom)
		message.Subscribe = referenceBundle(message.SubscribeTo, message.SubscribeFrom)

		modelRefs, err := messageModelRefs(schema, message)
		if err != nil {
			return err
		}

		message.ModelRefs = modelRefs
	}

	return nil
}

// messageLink returns link metadata for one message identity.
func messageLink(id MessageID) Link {
	return Link{
		Page:          id.Page(),
		Label:         id.Label(),
		DirectionText: id.Direction.Text(),
	}
}

// materializeReference fills link and default condition.
func materializeReference(reference *Reference) {
	reference.Link = messageLink(reference.Target)
	if reference.Condition == "" {
		reference.Condition = ConditionNone
	}
}

// materializeReply fills link, default condition and merged error codes.
func materializeReply(reference *Reference, global []ErrorCode) {
	materializeReference(reference)
	reference.ErrorCodes = mergeErrorCodes(reference.ErrorCodes, global)
}

// mergeErrorCodes returns local codes followed by global codes not defined locally.
func mergeErrorCodes(local, global []ErrorCode) []ErrorCode {
	if len(local) == 0 && len(global) == 0 {
		return nil
	}

	out := make([]ErrorCode, 0, len(local)+len(global))
	seen := make(map[string]struct{}, len(local)+len(global))
	for _, codes := range [][]ErrorCode{local, global} {
		for _, code := range codes {
			if _, exists := seen[code.Code]; exists {
				continue
			}

			seen[code.Code] = struct{}{}
			out = append(out, code)
		}
	}

	return out
}

// referenceBundle prefers declared references and falls back to received ones.
func referenceBundle(declared, received []*Reference) *ReferenceBundle {
	switch {
	case len(declared) > 0:
		return &ReferenceBundle{Direction: BundleTo, References: declared}
	case len(received) > 0:
		return &ReferenceBundle{Direction: BundleFrom, References: received}
	default:
		return nil
	}
}

// messageModelRefs pairs every model name used by message with its definition.
func messageModelRefs(schema *Schema, message *Message) ([]ModelRef, error) {
	if len(message.Models) == 0 {
		return nil, nil
	}

	out := make([]ModelRef, 0, len(message.Models))
	for _, name := range message.Models {
		model, ok := schema.Model(name)
		if !ok {
			return nil, errors.Errorf("%w %q used by message %s", ErrUnknownModel, name, message.ID())
		}

		out = append(out, ModelRef{Name: name, Model: model})
	}

	return out, nil
}
