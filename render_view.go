// SPDX-License-Identifier: MIT
// Copyright (c) 2026 WoozyMasta
// Source: github.com/woozymasta/protodoc

package protodoc

import (
	"slices"
	"strings"
)

// siteView carries schema-wide data shared by every page.
type siteView struct {
	Title       string
	Description string
	Version     string
	Format      Format
	ErrorCodes  []ErrorCode
}

// indexView is the data of the index page.
type indexView struct {
	Site     siteView
	Title    string
	Types    []messageTypeView
	Models   []modelLinkView
	Concepts []conceptLinkView
}

type messageTypeView struct {
	Name     string
	Subtypes []messageSubtypeView
}

type messageSubtypeView struct {
	Name     string
	Messages []messageLinkView
}

// messageLinkView links one message variant.
type messageLinkView struct {
	Page          string
	Label         string
	Direction     Direction
	DirectionText string
	Summary       string
}

type modelLinkView struct {
	Name string
	Page string
}

type conceptLinkView struct {
	Key  string
	Name string
	Page string
}

// messageView is the data of one message page.
type messageView struct {
	Site          siteView
	Title         string
	Type          string
	Subtype       string
	Direction     Direction
	DirectionText string
	Summary       string
	Description   string
	Args          *fieldGroupView
	Data          *fieldGroupView
	Reply         *bundleView
	Subscribe     *bundleView
	Models        []modelRefView
	ErrorCodes    *ErrorCodeGroup
}

// bundleView is a rendered reply or subscribe section.
type bundleView struct {
	Direction  BundleDirection
	References []referenceView
}

type referenceView struct {
	Page          string
	Label         string
	DirectionText string
	Condition     string
	ErrorCodes    []ErrorCode
}

type modelRefView struct {
	Name        string
	Page        string
	Description string
}

// modelView is the data of one model page.
type modelView struct {
	Site        siteView
	Title       string
	Name        string
	Description string
	Fields      []fieldView
	UsedBy      []messageLinkView
	Models      []modelLinkView
}

// conceptView is the data of one concept page.
type conceptView struct {
	Site        siteView
	Title       string
	Key         string
	Name        string
	Description string
	Concepts    []conceptLinkView
}

// buildSiteView prepares schema-wide page data.
func buildSiteView(schema *Schema, opt Options) siteView {
	title := opt.Title
	if title == "" {
		title = sanitizeText(schema.Title)
	}

	if title == "" {
		title = defaultTitle
	}

	return siteView{
		Title:       title,
		Description: schema.Description,
		Version:     strings.TrimSpace(schema.Version),
		Format:      opt.Format,
		ErrorCodes:  schema.ErrorCodes,
	}
}

// buildIndexView prepares index page data in declared message order.
func buildIndexView(schema *Schema, site siteView) indexView {
	view := indexView{
		Site:     site,
		Title:    site.Title,
		Types:    make([]messageTypeView, 0, len(schema.Messages)),
		Models:   modelLinks(schema),
		Concepts: conceptLinks(schema),
	}

	for _, messageType := range schema.Messages {
		typeView := messageTypeView{Name: messageType.Name}
		for _, subtype := range messageType.Subtypes {
			subtypeView := messageSubtypeView{Name: subtype.Name}
			for _, message := range subtype.Messages {
				subtypeView.Messages = append(subtypeView.Messages, messagePageLink(message))
			}

			typeView.Subtypes = append(typeView.Subtypes, subtypeView)
		}

		view.Types = append(view.Types, typeView)
	}

	return view
}

// buildMessageView prepares one message page; examples are encoded when enabled.
func buildMessageView(schema *Schema, message *Message, site siteView, opt Options) (messageView, error) {
	view := messageView{
		Site:          site,
		Title:         "Message: " + message.Type + " / " + message.Subtype + " (" + message.Direction.Text() + ")",
		Type:          message.Type,
		Subtype:       message.Subtype,
		Direction:     message.Direction,
		DirectionText: message.Direction.Text(),
		Summary:       message.Summary,
		Description:   message.Description,
		Reply:         buildBundleView(message.Reply),
		Subscribe:     buildBundleView(message.Subscribe),
		ErrorCodes:    message.ErrorCodes,
	}

	var err error
	if view.Args, err = buildFieldGroupView(schema, message.Args, opt); err != nil {
		return messageView{}, err
	}

	if view.Data, err = buildFieldGroupView(schema, message.Data, opt); err != nil {
		return messageView{}, err
	}

	for _, ref := range message.ModelRefs {
		view.Models = append(view.Models, modelRefView{
			Name:        ref.Name,
			Page:        ModelPage(ref.Name),
			Description: ref.Model.Description,
		})
	}

	return view, nil
}

// buildFieldGroupView renders field rows and optional example payload of one group.
func buildFieldGroupView(schema *Schema, group *FieldGroup, opt Options) (*fieldGroupView, error) {
	if group == nil {
		return nil, nil
	}

	view := &fieldGroupView{
		Description: group.Description,
		Fields:      buildFieldViews(group.Fields),
	}

	if opt.ExampleMode != "" && len(group.Fields) > 0 {
		example, err := GenerateFieldsExample(schema, group.Fields, opt.ExampleMode, opt.ExampleFormat)
		if err != nil {
			return nil, err
		}

		view.Example = strings.TrimRight(string(example), "\n")
		view.ExampleFormat = opt.ExampleFormat
	}

	return view, nil
}

// buildBundleView converts a materialized bundle into rows.
func buildBundleView(bundle *ReferenceBundle) *bundleView {
	if bundle == nil {
		return nil
	}

	view := &bundleView{
		Direction:  bundle.Direction,
		References: make([]referenceView, 0, len(bundle.References)),
	}

	for _, reference := range bundle.References {
		view.References = append(view.References, referenceView{
			Page:          reference.Link.Page,
			Label:         reference.Link.Label,
			DirectionText: reference.Link.DirectionText,
			Condition:     reference.Condition,
			ErrorCodes:    reference.ErrorCodes,
		})
	}

	return view
}

// buildModelView prepares one model page with messages using the model.
func buildModelView(schema *Schema, model *Model, site siteView) modelView {
	view := modelView{
		Site:        site,
		Title:       "Model: " + model.Name,
		Name:        model.Name,
		Description: model.Description,
		Fields:      buildFieldViews(model.Fields),
		Models:      modelLinks(schema),
	}

	for message := range schema.AllMessages() {
		if slices.Contains(message.Models, model.Name) {
			view.UsedBy = append(view.UsedBy, messagePageLink(message))
		}
	}

	return view
}

// buildConceptView prepares one concept page.
func buildConceptView(schema *Schema, concept *Concept, site siteView) conceptView {
	return conceptView{
		Site:        site,
		Title:       "Concept: " + concept.Name,
		Key:         concept.Key,
		Name:        concept.Name,
		Description: concept.Description,
		Concepts:    conceptLinks(schema),
	}
}

func messagePageLink(message *Message) messageLinkView {
	id := message.ID()
	return messageLinkView{
		Page:          id.Page(),
		Label:         id.Label(),
		Direction:     message.Direction,
		DirectionText: message.Direction.Text(),
		Summary:       message.Summary,
	}
}

// modelLinks lists models by case-insensitive name.
func modelLinks(schema *Schema) []modelLinkView {
	models := schema.SortedModels()
	out := make([]modelLinkView, 0, len(models))
	for _, model := range models {
		out = append(out, modelLinkView{Name: model.Name, Page: ModelPage(model.Name)})
	}

	return out
}

// conceptLinks lists concepts in declaration order.
func conceptLinks(schema *Schema) []conceptLinkView {
	out := make([]conceptLinkView, 0, len(schema.Concepts))
	for _, concept := range schema.Concepts {
		name := concept.Name
		if name == "" {
			name = concept.Key
		}

		out = append(out, conceptLinkView{Key: concept.Key, Name: name, Page: ConceptPage(concept.Key)})
	}

	return out
}
