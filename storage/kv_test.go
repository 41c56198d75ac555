package storage

import (
	"testing"
)

type snapshotValue struct {
	Name  string `json:"name"`
	Count int    `json:"count"`
}

func TestKVRoundTrip(t *testing.T) {
	kv, err := NewKV(t.TempDir())
	if err != nil {
		t.Fatalf("NewKV: %v", err)
	}

	in := snapshotValue{Name: "hello", Count: 3}
	if err := kv.Set("session", in); err != nil {
		t.Fatalf("Set: %v", err)
	}

	var out snapshotValue
	found, err := kv.Get("session", &out)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if !found {
		t.Fatal("Get reported key missing after Set")
	}
	if out != in {
		t.Fatalf("got %+v, want %+v", out, in)
	}
}

func TestKVGetMissingKey(t *testing.T) {
	kv, _ := NewKV(t.TempDir())

	var out snapshotValue
	found, err := kv.Get("nope", &out)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if found {
		t.Fatal("Get reported a missing key as present")
	}
}

func TestKVOverwrite(t *testing.T) {
	kv, _ := NewKV(t.TempDir())

	kv.Set("k", snapshotValue{Name: "first"})
	if err := kv.Set("k", snapshotValue{Name: "second"}); err != nil {
		t.Fatalf("Set: %v", err)
	}

	var out snapshotValue
	kv.Get("k", &out)
	if out.Name != "second" {
		t.Fatalf("Name = %q, want overwrite to win", out.Name)
	}
}

func TestKVRemove(t *testing.T) {
	kv, _ := NewKV(t.TempDir())

	kv.Set("gone", snapshotValue{Name: "x"})
	if err := kv.Remove("gone"); err != nil {
		t.Fatalf("Remove: %v", err)
	}

	var out snapshotValue
	if found, _ := kv.Get("gone", &out); found {
		t.Fatal("key still present after Remove")
	}

	// Removing again must not error
	if err := kv.Remove("gone"); err != nil {
		t.Fatalf("Remove missing key: %v", err)
	}
}

func TestSanitizeKey(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"plain", "plain"},
		{"with/slash", "with-slash"},
		{"a:b*c?d", "a-b-c-d"},
		{"  spaced out  ", "spaced-out"},
		{"...", "state"},
		{"", "state"},
	}

	for _, tt := range tests {
		if got := sanitizeKey(tt.in); got != tt.want {
			t.Errorf("sanitizeKey(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}
