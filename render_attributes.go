// SPDX-License-Identifier: MIT
// Copyright (c) 2026 WoozyMasta
// Source: github.com/woozymasta/protodoc

package protodoc

import (
	"strings"
)

// fieldView is one rendered row of a field table.
type fieldView struct {
	Name        string
	Type        string
	Description string
	Attributes  []attributeView
}

// attributeView is one "name: value" field attribute.
type attributeView struct {
	Name  string
	Value string
}

// fieldGroupView is a rendered args or data section.
type fieldGroupView struct {
	Description string
	Fields      []fieldView
	// Example is the encoded example payload; empty when examples are disabled.
	Example       string
	ExampleFormat ExampleFormat
}

// buildFieldViews converts fields into rendered rows.
func buildFieldViews(fields []Field) []fieldView {
	if len(fields) == 0 {
		return nil
	}

	out := make([]fieldView, 0, len(fields))
	for _, field := range fields {
		out = append(out, fieldView{
			Name:        strings.TrimSpace(field.Name),
			Type:        strings.TrimSpace(field.Type),
			Description: field.Description,
			Attributes:  fieldAttributes(field),
		})
	}

	return out
}

// fieldAttributes renders flat attribute list of one field.
func fieldAttributes(field Field) []attributeView {
	out := make([]attributeView, 0, 3)
	if field.Type != "" {
		out = append(out, attributeView{Name: "type", Value: strings.TrimSpace(field.Type)})
	}

	out = append(out,
		attributeView{Name: "optional", Value: yesNo(field.Optional)},
		attributeView{Name: "nullable", Value: yesNo(field.Nullable)},
	)

	return out
}

// yesNo renders bool values as human-readable text.
func yesNo(value bool) string {
	if value {
		return "yes"
	}

	return "no"
}
