// SPDX-License-Identifier: MIT
// Copyright (c) 2026 WoozyMasta
// Source: github.com/woozymasta/protodoc

package protodoc

import (
	"gitlab.com/tozd/go/errors"
)

// expandFields replaces "@key" entries with copies of shared field templates.
// The pass is flat: a template that is itself a reference is copied unchanged.
func expandFields(id MessageID, entries []fieldEntry, catalog map[string]fieldEntry) ([]fieldEntry, error) {
	if len(entries) == 0 {
		return nil, nil
	}

	out := make([]fieldEntry, 0, len(entries))
	for _, entry := range entries {
		if !entry.isReference() {
			out = append(out, entry)
			continue
		}

		template, ok := catalog[entry.ref]
		if !ok {
			return nil, errors.WithStack(&UnresolvedSharedFieldError{Message: id, Key: entry.ref})
		}

		out = append(out, template)
	}

	return out, nil
}

// resolveFieldGroup expands one args/data group and drops it when empty.
func resolveFieldGroup(id MessageID, group *rawFieldGroup, catalog map[string]fieldEntry) (*FieldGroup, error) {
	if group == nil {
		return nil, nil
	}

	entries, err := expandFields(id, group.Fields, catalog)
	if err != nil {
		return nil, err
	}

	fields := make([]Field, 0, len(entries))
	for _, entry := range entries {
		if entry.isReference() {
			return nil, errors.Errorf("%w: message %s, shared field resolves to %s%s", ErrNestedSharedField, id, sharedFieldMarker, entry.ref)
		}

		fields = append(fields, entry.field)
	}

	if group.Description == "" && len(fields) == 0 {
		return nil, nil
	}

	if len(fields) == 0 {
		fields = nil
	}

	return &FieldGroup{Description: group.Description, Fields: fields}, nil
}
