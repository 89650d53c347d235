// Package command defines the command message envelope and the handler
// contract shared by aggregates, the routing builder and the dispatcher.
//
// A handler is a typed function bound to an entity type and a payload type:
//
//	h := command.Handle(func(ctx context.Context, line *OrderLine, cmd ChangeLineQuantity) (any, error) {
//	    return nil, line.ChangeQuantity(cmd.Quantity)
//	})
//
// The payload type of a handler is the key used to route a command to it.
package command

import (
	"maps"
	"reflect"
	"strings"
)

// Message is the envelope carried through dispatch. The payload holds the
// command's business data; its dynamic type determines routing.
type Message interface {
	PayloadType() reflect.Type
	Payload() any
	Metadata() map[string]string
}

// Compile-time interface check.
var _ Message = (*GenericMessage)(nil)

// GenericMessage is the default Message implementation.
type GenericMessage struct {
	payload  any
	metadata map[string]string
}

// NewMessage wraps payload in a message with empty metadata.
func NewMessage(payload any) *GenericMessage {
	return &GenericMessage{payload: payload, metadata: map[string]string{}}
}

// WithMetadata returns a copy of the message with key set to value.
// The receiver is left untouched.
func (m *GenericMessage) WithMetadata(key, value string) *GenericMessage {
	md := maps.Clone(m.metadata)
	if md == nil {
		md = make(map[string]string, 1)
	}
	md[key] = value
	return &GenericMessage{payload: m.payload, metadata: md}
}

// PayloadType returns the dynamic type of the payload, or nil for a nil payload.
func (m *GenericMessage) PayloadType() reflect.Type {
	return reflect.TypeOf(m.payload)
}

// Payload returns the command's business data.
func (m *GenericMessage) Payload() any {
	return m.payload
}

// Metadata returns the message metadata. Callers must not modify it.
func (m *GenericMessage) Metadata() map[string]string {
	return m.metadata
}

// TypeName renders a type token for logs and error messages, without the
// pointer prefix ("order.OrderLine" for *order.OrderLine).
func TypeName(t reflect.Type) string {
	if t == nil {
		return "<nil>"
	}
	return strings.TrimLeft(t.String(), "*")
}
