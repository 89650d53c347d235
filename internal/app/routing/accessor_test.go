package routing

import (
	"reflect"
	"testing"

	"github.com/jsamuelsen11/go-entity-routing/internal/domain/command"
)

type lineID string

func TestMapKey(t *testing.T) {
	t.Parallel()

	stringKey := reflect.TypeFor[string]()
	anyKey := reflect.TypeFor[any]()

	tests := []struct {
		name    string
		keyType reflect.Type
		target  any
		wantOK  bool
	}{
		{name: "same type", keyType: stringKey, target: "a", wantOK: true},
		{name: "named type over the key kind", keyType: stringKey, target: lineID("a"), wantOK: false},
		{name: "interface key", keyType: anyKey, target: lineID("a"), wantOK: true},
		{name: "different kind", keyType: stringKey, target: 7, wantOK: false},
		{name: "not comparable", keyType: stringKey, target: []string{"a"}, wantOK: false},
		{name: "int to int64 is rejected", keyType: reflect.TypeFor[int64](), target: 7, wantOK: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			_, ok := mapKey(tt.keyType, tt.target)
			if ok != tt.wantOK {
				t.Errorf("mapKey(%v, %#v) ok = %v, want %v", tt.keyType, tt.target, ok, tt.wantOK)
			}
		})
	}
}

// Collections and maps must agree on which targets identify an entity.
func TestLookup_SameIdentityRule(t *testing.T) {
	t.Parallel()

	id, ok := fxProps(t).Accessor(fxItemType, "id")
	if !ok {
		t.Fatal("no id accessor for fxItem")
	}
	m1 := &fxItem{ID: "m1"}
	items := []*fxItem{{ID: "m0"}, m1}
	byKey := map[string]*fxItem{"m0": items[0], "m1": m1}

	tests := []struct {
		name   string
		target any
		want   bool
	}{
		{name: "same type", target: "m1", want: true},
		{name: "named type", target: lineID("m1"), want: false},
		{name: "other kind", target: 1, want: false},
		{name: "unknown identity", target: "m9", want: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			inColl, collOK := collectionLookup(id)(items, tt.target)
			inMap, mapOK := mapLookup(byKey, tt.target)
			if collOK != tt.want || mapOK != tt.want {
				t.Fatalf("found in collection = %v, in map = %v; want %v for both", collOK, mapOK, tt.want)
			}
			if tt.want && (inColl != m1 || inMap != m1) {
				t.Errorf("collection = %v, map = %v; want m1 from both", inColl, inMap)
			}
		})
	}
}

func TestRootAccessor(t *testing.T) {
	t.Parallel()

	root := NewRootAccessor(fxRootType)
	agg := &fxRoot{}
	msg := command.NewMessage(fxRename{})

	if got, ok := root.Instance(agg, msg); !ok || got != agg {
		t.Errorf("Instance() = %v, %v; want aggregate", got, ok)
	}
	if _, ok := root.Instance(nil, msg); ok {
		t.Error("Instance(nil) ok = true, want false")
	}
	if root.Parent() != nil || root.Kind() != KindRoot || root.Member() != "" {
		t.Errorf("root accessor = parent %v kind %q member %q", root.Parent(), root.Kind(), root.Member())
	}
	if Depth(root) != 0 || len(Chain(root)) != 1 {
		t.Errorf("Depth = %d, len(Chain) = %d", Depth(root), len(Chain(root)))
	}
}
