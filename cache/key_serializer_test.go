package cache

import (
	"fmt"
	"strings"
	"testing"
)

func joinWithSeparator(parts ...string) string {
	return strings.Join(parts, KeySeparator)
}

type dexNumber int

func (d dexNumber) String() string { return fmt.Sprintf("#%d", int(d)) }

func TestDefaultKeySerializer_SerializeKey(t *testing.T) {
	serializer := NewDefaultKeySerializer()

	tests := []struct {
		name      string
		namespace string
		args      []any
		want      string
	}{
		{
			name:      "no args",
			namespace: NamespaceRecord,
			args:      []any{},
			want:      NamespaceRecord,
		},
		{
			name:      "int id",
			namespace: NamespaceRecord,
			args:      []any{25},
			want:      joinWithSeparator(NamespaceRecord, "25"),
		},
		{
			name:      "string id matches int id",
			namespace: NamespaceRecord,
			args:      []any{"25"},
			want:      joinWithSeparator(NamespaceRecord, "25"),
		},
		{
			name:      "name is lowercased and trimmed",
			namespace: NamespaceRecord,
			args:      []any{"  Pikachu "},
			want:      joinWithSeparator(NamespaceRecord, "pikachu"),
		},
		{
			name:      "species namespace",
			namespace: NamespaceSpecies,
			args:      []any{int64(150)},
			want:      joinWithSeparator(NamespaceSpecies, "150"),
		},
		{
			name:      "empty namespace",
			namespace: "",
			args:      []any{"Mew"},
			want:      "mew",
		},
		{
			name:      "nil arg",
			namespace: NamespaceRecord,
			args:      []any{nil},
			want:      joinWithSeparator(NamespaceRecord, "nil"),
		},
		{
			name:      "stringer",
			namespace: NamespaceRecord,
			args:      []any{dexNumber(7)},
			want:      joinWithSeparator(NamespaceRecord, "#7"),
		},
		{
			name:      "multiple args",
			namespace: NamespaceRecord,
			args:      []any{"Fire", uint(1)},
			want:      joinWithSeparator(NamespaceRecord, "fire", "1"),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := serializer.SerializeKey(tt.namespace, tt.args...)
			if got != tt.want {
				t.Errorf("SerializeKey() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestDefaultKeySerializer_Stable(t *testing.T) {
	serializer := NewDefaultKeySerializer()

	first := serializer.SerializeKey(NamespaceRecord, "Charizard")
	for i := 0; i < 10; i++ {
		if got := serializer.SerializeKey(NamespaceRecord, "charizard"); got != first {
			t.Fatalf("expected stable key %q, got %q", first, got)
		}
	}
}
