package command

import (
	"context"
	"errors"
	"reflect"
	"testing"
)

type account struct {
	Balance int
}

type deposit struct {
	Amount int
}

type openAccount struct {
	Initial int
}

func TestHandle(t *testing.T) {
	t.Parallel()

	h := Handle(func(_ context.Context, a *account, cmd deposit) (any, error) {
		a.Balance += cmd.Amount
		return a.Balance, nil
	})

	if h.PayloadType() != reflect.TypeFor[deposit]() {
		t.Errorf("PayloadType() = %v", h.PayloadType())
	}
	if h.EntityType() != reflect.TypeFor[*account]() {
		t.Errorf("EntityType() = %v", h.EntityType())
	}
	if got := h.Markers().Get(MarkerName); got != "command.deposit" {
		t.Errorf("name marker = %q, want command.deposit", got)
	}
	if got := h.Markers().Get(MarkerKind); got != KindMethod {
		t.Errorf("kind marker = %q, want %q", got, KindMethod)
	}

	acc := &account{Balance: 10}
	got, err := h.Invoke(context.Background(), acc, NewMessage(deposit{Amount: 5}))
	if err != nil {
		t.Fatalf("Invoke() error = %v", err)
	}
	if got != 15 || acc.Balance != 15 {
		t.Errorf("Invoke() = %v, balance %d; want 15", got, acc.Balance)
	}

	if _, err := h.Invoke(context.Background(), account{}, NewMessage(deposit{})); !errors.Is(err, ErrTargetType) {
		t.Errorf("Invoke(wrong target) error = %v, want ErrTargetType", err)
	}
	if _, err := h.Invoke(context.Background(), acc, NewMessage(openAccount{})); !errors.Is(err, ErrPayloadType) {
		t.Errorf("Invoke(wrong payload) error = %v, want ErrPayloadType", err)
	}
}

func TestConstruct(t *testing.T) {
	t.Parallel()

	h := Construct(func(_ context.Context, cmd openAccount) (*account, error) {
		return &account{Balance: cmd.Initial}, nil
	}, Named("open"), WithMarker("audit", "true"))

	if h.EntityType() != reflect.TypeFor[*account]() {
		t.Errorf("EntityType() = %v", h.EntityType())
	}
	m := h.Markers()
	if m.Get(MarkerName) != "open" || m.Get(MarkerKind) != KindConstructor || m.Get("audit") != "true" {
		t.Errorf("Markers() = %v", m)
	}

	got, err := h.Invoke(context.Background(), nil, NewMessage(openAccount{Initial: 3}))
	if err != nil {
		t.Fatalf("Invoke() error = %v", err)
	}
	if a, ok := got.(*account); !ok || a.Balance != 3 {
		t.Errorf("Invoke() = %#v, want account with balance 3", got)
	}
}

func TestMessage(t *testing.T) {
	t.Parallel()

	msg := NewMessage(deposit{Amount: 1})
	tagged := msg.WithMetadata("correlation_id", "c-1")

	if msg.PayloadType() != reflect.TypeFor[deposit]() {
		t.Errorf("PayloadType() = %v", msg.PayloadType())
	}
	if len(msg.Metadata()) != 0 {
		t.Errorf("original metadata modified: %v", msg.Metadata())
	}
	if tagged.Metadata()["correlation_id"] != "c-1" {
		t.Errorf("Metadata() = %v", tagged.Metadata())
	}
	if tagged.Payload() != msg.Payload() {
		t.Error("WithMetadata changed the payload")
	}
	if NewMessage(nil).PayloadType() != nil {
		t.Error("PayloadType() of nil payload is not nil")
	}
}

func TestTypeName(t *testing.T) {
	t.Parallel()

	tests := []struct {
		t    reflect.Type
		want string
	}{
		{t: reflect.TypeFor[*account](), want: "command.account"},
		{t: reflect.TypeFor[account](), want: "command.account"},
		{t: reflect.TypeFor[[]*account](), want: "[]*command.account"},
		{t: nil, want: "<nil>"},
	}
	for _, tt := range tests {
		if got := TypeName(tt.t); got != tt.want {
			t.Errorf("TypeName(%v) = %q, want %q", tt.t, got, tt.want)
		}
	}
}
