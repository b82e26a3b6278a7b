// SPDX-License-Identifier: MIT
// Copyright (c) 2026 WoozyMasta
// Source: github.com/woozymasta/protodoc

/*
Package protodoc generates a cross-linked reference site from a declarative
message protocol schema.

A schema (YAML or JSON) declares message types, subtypes and per-direction
message variants, reusable shared fields, models, concepts and global error
codes. Resolution expands "@name" shared-field references, links reply and
subscribe references in both directions, and merges error codes. Rendering
writes one page per message, model and concept plus an index, as HTML or
Markdown.

Generate a site from schema bytes:

	data, err := os.ReadFile("schema/v2.yaml")
	if err != nil {
		return err
	}

	site, err := protodoc.Generate(ctx, data, "output", protodoc.Options{
		Format: protodoc.FormatHTML,
		Jobs:   4,
	})
	if err != nil {
		return err
	}

	fmt.Println(len(site.Pages))

Resolve without rendering:

	schema, err := protodoc.ResolveFile("schema/v2.yaml")
	if err != nil {
		return err
	}

	id := protodoc.MessageID{Type: "chat", Subtype: "send", Direction: protodoc.DirectionToApp}
	message, ok := schema.Message(id)
	if ok && message.Reply != nil {
		for _, reference := range message.Reply.References {
			fmt.Println(reference.Link.Label, reference.Condition)
		}
	}

Generate example payload of a message field group:

	payload, err := protodoc.GenerateExample(schema, id, protodoc.FieldGroupData,
		protodoc.ExampleModeRequired, protodoc.ExampleFormatYAML)
	if err != nil {
		return err
	}

	fmt.Println(string(payload))

Export a built-in template for customization:

	for _, name := range protodoc.BuiltinTemplateNames() {
		fmt.Println(name)
	}

	tpl, err := protodoc.BuiltinTemplate("markdown/message")
	if err != nil {
		return err
	}

	// Save as message.gotmpl and pass the directory as Options.TemplateDir.
	fmt.Println(len(tpl) > 0)
*/
package protodoc
