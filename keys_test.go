package modelcache

import "testing"

func TestStoreKeyLengthPrefixPreventsCollisions(t *testing.T) {
	a := cacheKey{owner: "a:b", name: "c"}
	b := cacheKey{owner: "a", name: "b:c"}
	if a.storeKey() == b.storeKey() {
		t.Fatalf("distinct composite keys render identically: %q", a.storeKey())
	}
}

func TestStoreKeyStableFormat(t *testing.T) {
	k := cacheKey{owner: "User", name: "roles"}
	if got := k.storeKey(); got != "l:4:User:roles" {
		t.Fatalf("unexpected store key %q", got)
	}
}

func TestNormalizeKeyTrimsWhitespace(t *testing.T) {
	if got := NormalizeKey("  ada@example.com \t"); got != "ada@example.com" {
		t.Fatalf("unexpected normalized key %q", got)
	}
	if got := NormalizeKey("inner space kept"); got != "inner space kept" {
		t.Fatalf("inner whitespace must survive, got %q", got)
	}
}

func TestKeyRendersScalarsCanonically(t *testing.T) {
	cases := []struct {
		in   any
		want string
	}{
		{"plain", "plain"},
		{" padded ", "padded"},
		{[]byte("bytes"), "bytes"},
		{42, "42"},
		{int64(42), "42"},
		{int32(-7), "-7"},
		{uint(9), "9"},
		{uint64(9), "9"},
		{3.5, "3.5"},
		{float32(2), "2"},
		{true, "true"},
	}
	for _, tc := range cases {
		if got := Key(tc.in); got != tc.want {
			t.Fatalf("Key(%v) = %q, want %q", tc.in, got, tc.want)
		}
	}
	// An int and its decimal string address the same table entry.
	if Key(42) != Key("42") {
		t.Fatalf("expected 42 and \"42\" to render identically")
	}
}
