package identity

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestHalfHash(t *testing.T) {
	tests := []struct {
		name string
		seed map[string]string
		want string
	}{
		{"even length", map[string]string{KeyUserHash: "abc123def456"}, "abc123"},
		{"odd length rounds down", map[string]string{KeyUserHash: "abcde"}, "ab"},
		{"multi-byte characters", map[string]string{KeyUserHash: "héllo wörld"}, "héllo"},
		{"unregistered", nil, ""},
		{"empty hash", map[string]string{KeyUserHash: ""}, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := HalfHash(NewMemoryStore(tt.seed))
			if err != nil {
				t.Fatalf("HalfHash() error = %v", err)
			}
			if got != tt.want {
				t.Errorf("HalfHash() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestClearRegistration(t *testing.T) {
	s := NewMemoryStore(map[string]string{
		KeyEmail:     "dev@example.com",
		KeyUserHash:  "abcdef",
		KeyUserHash2: "123456",
		"other":      "kept",
	})

	if err := ClearRegistration(s); err != nil {
		t.Fatalf("ClearRegistration() error = %v", err)
	}

	for _, key := range []string{KeyEmail, KeyUserHash, KeyUserHash2} {
		if _, ok, _ := s.Get(key); ok {
			t.Errorf("%s should be cleared", key)
		}
	}
	if v, ok, _ := s.Get("other"); !ok || v != "kept" {
		t.Error("unrelated property should be kept")
	}
}

func TestFileStoreRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "identity.toml")
	s := NewFileStore(path)

	if _, ok, err := s.Get(KeyEmail); err != nil || ok {
		t.Fatalf("Get() on missing file = ok %v, err %v; want false, nil", ok, err)
	}

	if err := s.Set(KeyEmail, "dev@example.com"); err != nil {
		t.Fatalf("Set() error = %v", err)
	}
	if err := s.Set(KeyUserHash, "abc123ffffff"); err != nil {
		t.Fatalf("Set() error = %v", err)
	}

	// A fresh store must see the persisted values.
	reopened := NewFileStore(path)
	v, ok, err := reopened.Get(KeyEmail)
	if err != nil || !ok || v != "dev@example.com" {
		t.Errorf("Get(email) = %q, %v, %v", v, ok, err)
	}
	half, err := HalfHash(reopened)
	if err != nil {
		t.Fatalf("HalfHash() error = %v", err)
	}
	if half != "abc123" {
		t.Errorf("HalfHash() = %q, want abc123", half)
	}

	info, err := os.Stat(path)
	if err != nil {
		t.Fatalf("stat identity file: %v", err)
	}
	if perm := info.Mode().Perm(); perm&0077 != 0 {
		t.Errorf("identity file permissions = %v, want owner-only", perm)
	}
}

func TestFileStoreClear(t *testing.T) {
	path := filepath.Join(t.TempDir(), "identity.toml")
	s := NewFileStore(path)
	_ = s.Set(KeyEmail, "dev@example.com")
	_ = s.Set(KeyUserHash, "abcdef")

	if err := ClearRegistration(s); err != nil {
		t.Fatalf("ClearRegistration() error = %v", err)
	}

	for _, key := range []string{KeyEmail, KeyUserHash} {
		_, ok, err := NewFileStore(path).Get(key)
		if err != nil {
			t.Fatalf("Get(%s) error = %v", key, err)
		}
		if ok {
			t.Errorf("%s still stored after ClearRegistration", key)
		}
	}
}

func TestFileStoreCorrupt(t *testing.T) {
	path := filepath.Join(t.TempDir(), "identity.toml")
	if err := os.WriteFile(path, []byte("email = "), 0600); err != nil {
		t.Fatal(err)
	}

	_, _, err := NewFileStore(path).Get(KeyEmail)
	if err == nil {
		t.Fatal("expected parse error")
	}
	if !strings.Contains(err.Error(), "failed to parse identity file") {
		t.Errorf("unexpected error: %v", err)
	}

	if _, err := HalfHash(NewFileStore(path)); err == nil {
		t.Error("HalfHash() should surface store errors")
	}
}
