// SPDX-License-Identifier: AGPL-3.0-only
// Copyright (c) 2026 WoozyMasta
// Source: github.com/woozymasta/protodoc

package protodoc

import (
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
	"github.com/stretchr/testify/require"
)

const chatSchema = `
title: chat
sharedFields:
  id:
    name: id
    type: string
errorCodes:
  E1: generic
messages:
  chat:
    send:
      - direction: toapp
        args:
          fields:
            - "@id"
            - name: text
              type: string
        replyTo:
          - message: chat/ack
            condition: always
    ack:
      - direction: fromapp
        args:
          fields:
            - "@id"
`

func TestResolveChatSendAck(t *testing.T) {
	t.Parallel()

	schema := mustResolve(t, chatSchema)

	send := mustMessage(t, schema, MessageID{Type: "chat", Subtype: "send", Direction: DirectionToApp})
	ack := mustMessage(t, schema, MessageID{Type: "chat", Subtype: "ack", Direction: DirectionFromApp})

	require.Equal(t, []Field{{Name: "id", Type: "string"}, {Name: "text", Type: "string"}}, send.Args.Fields)
	require.Equal(t, []Field{{Name: "id", Type: "string"}}, ack.Args.Fields)

	require.Len(t, send.ReplyTo, 1)
	require.Equal(t, &Reference{
		Target:     ack.ID(),
		Condition:  "always",
		ErrorCodes: []ErrorCode{{Code: "E1", Description: "generic"}},
		Link: Link{
			Page:          "message-chat-ack-fromapp",
			Label:         "chat/ack",
			DirectionText: "app -> client",
		},
	}, send.ReplyTo[0])

	require.Len(t, ack.ReplyFrom, 1)
	require.Equal(t, &Reference{
		Target:     send.ID(),
		Condition:  "always",
		ErrorCodes: []ErrorCode{{Code: "E1", Description: "generic"}},
		Link: Link{
			Page:          "message-chat-send-toapp",
			Label:         "chat/send",
			DirectionText: "client -> app",
		},
	}, ack.ReplyFrom[0])

	require.Equal(t, BundleTo, send.Reply.Direction)
	require.Equal(t, BundleFrom, ack.Reply.Direction)
	require.Nil(t, send.Subscribe)
	require.Nil(t, ack.Subscribe)
}

func TestResolveFixtureReverseLinkSymmetry(t *testing.T) {
	t.Parallel()

	schema, err := ResolveFile(filepath.Join("testdata", "schema.fixture.yaml"))
	require.NoError(t, err)

	forward := 0
	reverse := 0
	for message := range schema.AllMessages() {
		forward += len(message.ReplyTo) + len(message.SubscribeTo)
		reverse += len(message.ReplyFrom) + len(message.SubscribeFrom)

		for _, kind := range []referenceKind{replyKind, subscribeKind} {
			for _, reference := range *kind.forward(message) {
				target := mustMessage(t, schema, reference.Target)
				require.Truef(t, containsTarget(*kind.reverse(target), message.ID()),
					"%s %s -> %s has no reverse entry", kind.field, message.ID(), reference.Target)
			}

			for _, reference := range *kind.reverse(message) {
				source := mustMessage(t, schema, reference.Target)
				require.Truef(t, containsTarget(*kind.forward(source), message.ID()),
					"reverse %s %s <- %s has no forward entry", kind.field, message.ID(), reference.Target)
			}
		}
	}

	require.Equal(t, forward, reverse)
	require.Equal(t, 3, forward)
}

func TestResolveSubscribeDefaultsConditionAndSkipsErrorCodes(t *testing.T) {
	t.Parallel()

	schema := mustResolve(t, `
errorCodes:
  E1: generic
messages:
  feed:
    update:
      - direction: fromapp
    watch:
      - direction: toapp
        subscribeTo:
          - message: feed/update
`)

	watch := mustMessage(t, schema, MessageID{Type: "feed", Subtype: "watch", Direction: DirectionToApp})
	update := mustMessage(t, schema, MessageID{Type: "feed", Subtype: "update", Direction: DirectionFromApp})

	require.Len(t, watch.SubscribeTo, 1)
	require.Equal(t, ConditionNone, watch.SubscribeTo[0].Condition)
	require.Empty(t, watch.SubscribeTo[0].ErrorCodes)
	require.Equal(t, update.ID(), watch.SubscribeTo[0].Target)

	require.Len(t, update.SubscribeFrom, 1)
	require.Equal(t, ConditionNone, update.SubscribeFrom[0].Condition)
	require.Equal(t, BundleFrom, update.Subscribe.Direction)
	require.Nil(t, update.Reply)
}

func TestResolveExplicitDirectionOverridesInversion(t *testing.T) {
	t.Parallel()

	schema := mustResolve(t, `
messages:
  sync:
    state:
      - direction: bidirectional
        replyTo:
          - message: sync/done/fromapp
    done:
      - direction: fromapp
`)

	state := mustMessage(t, schema, MessageID{Type: "sync", Subtype: "state", Direction: DirectionBidirectional})
	require.Equal(t, DirectionFromApp, state.ReplyTo[0].Target.Direction)

	done := mustMessage(t, schema, MessageID{Type: "sync", Subtype: "done", Direction: DirectionFromApp})
	require.Equal(t, DirectionBidirectional, done.ReplyFrom[0].Target.Direction)
	require.Equal(t, "bidirectional", done.ReplyFrom[0].Link.DirectionText)
}

func TestResolveSelfReference(t *testing.T) {
	t.Parallel()

	schema := mustResolve(t, `
messages:
  conn:
    ping:
      - direction: bidirectional
        replyTo:
          - message: conn/ping
`)

	ping := mustMessage(t, schema, MessageID{Type: "conn", Subtype: "ping", Direction: DirectionBidirectional})
	require.Len(t, ping.ReplyTo, 1)
	require.Len(t, ping.ReplyFrom, 1)
	require.Equal(t, ping.ID(), ping.ReplyTo[0].Target)
	require.Equal(t, ping.ID(), ping.ReplyFrom[0].Target)
	require.NotSame(t, ping.ReplyTo[0], ping.ReplyFrom[0])
	require.Equal(t, BundleTo, ping.Reply.Direction)
}

func TestResolveFailures(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name   string
		schema string
		want   error
	}{
		{
			name: "unresolvable",
			schema: `
messages:
  chat:
    send:
      - direction: toapp
        replyTo:
          - message: chat/ack
`,
			want: ErrUnresolvableReference,
		},
		{
			name: "ambiguous",
			schema: `
messages:
  chat:
    send:
      - direction: toapp
        replyTo:
          - message: chat/ack
    ack:
      - direction: fromapp
      - direction: fromapp
`,
			want: ErrAmbiguousReference,
		},
		{
			name: "malformed",
			schema: `
messages:
  chat:
    send:
      - direction: toapp
        subscribeTo:
          - message: chat
`,
			want: ErrMalformedReference,
		},
		{
			name: "missing shared field",
			schema: `
messages:
  chat:
    send:
      - direction: toapp
        data:
          fields:
            - "@missing"
`,
			want: ErrUnresolvedSharedField,
		},
		{
			name: "invalid direction",
			schema: `
messages:
  chat:
    send:
      - direction: sideways
`,
			want: ErrInvalidDirection,
		},
		{
			name: "unknown model",
			schema: `
messages:
  chat:
    send:
      - direction: toapp
        models: [Ghost]
`,
			want: ErrUnknownModel,
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			schema, err := ParseAndResolve([]byte(tc.schema))
			require.ErrorIs(t, err, tc.want)
			require.Nil(t, schema)
		})
	}
}

func TestResolveRejectsDuplicateTripleWithoutReferences(t *testing.T) {
	t.Parallel()

	doc, err := Parse([]byte(`
messages:
  chat:
    send:
      - direction: toapp
    ack:
      - direction: fromapp
        summary: first
      - direction: toapp
      - direction: fromapp
        summary: second
`))
	require.NoError(t, err)

	_, err = Resolve(doc)
	require.ErrorIs(t, err, ErrDuplicateMessage)

	var duplicate *DuplicateMessageError
	require.ErrorAs(t, err, &duplicate)
	require.Equal(t, MessageID{Type: "chat", Subtype: "ack", Direction: DirectionFromApp}, duplicate.Message)
	require.Equal(t, 1, duplicate.First)
	require.Equal(t, 3, duplicate.Second)
	require.Contains(t, err.Error(), "entries 1 and 3 of chat/ack")
}

func TestResolveTwiceYieldsEqualIndependentGraphs(t *testing.T) {
	t.Parallel()

	doc, err := Parse([]byte(chatSchema))
	require.NoError(t, err)

	first, err := Resolve(doc)
	require.NoError(t, err)

	second, err := Resolve(doc)
	require.NoError(t, err)

	opts := cmp.Options{cmpopts.IgnoreUnexported(Schema{})}
	if diff := cmp.Diff(first, second, opts); diff != "" {
		t.Fatalf("second resolution differs (-first +second):\n%s", diff)
	}

	send := mustMessage(t, first, MessageID{Type: "chat", Subtype: "send", Direction: DirectionToApp})
	send.ReplyTo[0].Condition = "changed"
	send.Args.Fields[0].Name = "changed"

	again := mustMessage(t, second, MessageID{Type: "chat", Subtype: "send", Direction: DirectionToApp})
	require.Equal(t, "always", again.ReplyTo[0].Condition)
	require.Equal(t, "id", again.Args.Fields[0].Name)
	require.Len(t, again.ReplyTo, 1)
}

func mustResolve(t *testing.T, text string) *Schema {
	t.Helper()

	schema, err := ParseAndResolve([]byte(text))
	require.NoError(t, err)
	return schema
}

func mustMessage(t *testing.T, schema *Schema, id MessageID) *Message {
	t.Helper()

	message, ok := schema.Message(id)
	require.Truef(t, ok, "message %s not found", id)
	return message
}

func containsTarget(references []*Reference, id MessageID) bool {
	for _, reference := range references {
		if reference.Target == id {
			return true
		}
	}

	return false
}
