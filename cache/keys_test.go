package cache

import (
	"strings"
	"testing"
)

func TestSerializeKeyBasic(t *testing.T) {
	s := NewDefaultKeySerializer()

	cases := []struct {
		name string
		got  string
		want string
	}{
		{"no args", s.SerializeKey("product"), "product"},
		{"string arg", s.SerializeKey("product", "42"), "product::42"},
		{"int arg", s.SerializeKey("products", "list", 10, 0), "products::list::10::0"},
		{"bool arg", s.SerializeKey("search", "widgets", true), "search::widgets::true"},
		{"nil arg", s.SerializeKey("order", nil), "order::nil"},
	}
	for _, tc := range cases {
		if tc.got != tc.want {
			t.Errorf("%s: got %q, want %q", tc.name, tc.got, tc.want)
		}
	}
}

func TestSerializeKeyStable(t *testing.T) {
	s := NewDefaultKeySerializer()

	args := []any{"a", 1, []string{"x", "y"}, map[string]int{"k1": 1, "k2": 2}}
	first := s.SerializeKey("m", args...)
	for i := 0; i < 50; i++ {
		if got := s.SerializeKey("m", args...); got != first {
			t.Fatalf("key changed across calls: %q vs %q", got, first)
		}
	}
}

func TestSerializeKeyComposites(t *testing.T) {
	s := NewDefaultKeySerializer()

	if got := s.SerializeKey("m", []int{1, 2, 3}); got != "m::[1,2,3]" {
		t.Errorf("slice: got %q", got)
	}

	type filter struct {
		Status string
		Limit  int
		hidden bool
	}
	got := s.SerializeKey("m", filter{Status: "paid", Limit: 5, hidden: true})
	if got != "m::{Status:paid,Limit:5}" {
		t.Errorf("struct: got %q; unexported fields must be skipped", got)
	}

	id := "c9"
	if got := s.SerializeKey("m", &id); got != "m::c9" {
		t.Errorf("pointer: got %q; want dereferenced value", got)
	}
	var nilPtr *string
	if got := s.SerializeKey("m", nilPtr); got != "m::nil" {
		t.Errorf("nil pointer: got %q", got)
	}
}

func TestSerializeKeyMapDeterministic(t *testing.T) {
	s := NewDefaultKeySerializer()

	m := map[string]int{"zebra": 1, "alpha": 2, "mid": 3}
	want := "k::{alpha=2,mid=3,zebra=1}"
	for i := 0; i < 20; i++ {
		if got := s.SerializeKey("k", m); got != want {
			t.Fatalf("map order unstable: got %q, want %q", got, want)
		}
	}
}

func TestSerializeKeyLongKeyDigested(t *testing.T) {
	s := NewDefaultKeySerializer()

	long := strings.Repeat("q", 1000)
	key := s.SerializeKey("search", long)

	if len(key) > maxKeyLen {
		t.Fatalf("digested key length = %d exceeds max %d", len(key), maxKeyLen)
	}
	if !strings.HasPrefix(key, "search"+KeySeparator) {
		t.Fatalf("digest must keep the namespace prefix, got %q", key)
	}
	if key2 := s.SerializeKey("search", long); key2 != key {
		t.Fatalf("digest not stable: %q vs %q", key2, key)
	}
	if other := s.SerializeKey("search", long+"x"); other == key {
		t.Fatalf("distinct inputs collapsed to the same digest")
	}
}

func TestSerializeKeyFuncArgs(t *testing.T) {
	s := NewDefaultKeySerializer()

	f := func() {}
	a := s.SerializeKey("m", f)
	b := s.SerializeKey("m", f)
	if a != b {
		t.Fatalf("same func pointer must produce the same key: %q vs %q", a, b)
	}
}
