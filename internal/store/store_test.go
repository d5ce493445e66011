package store

import (
	"path/filepath"
	"testing"
	"time"
)

// conformance runs the Store contract against any backend.
func conformance(t *testing.T, st Store) {
	t.Helper()

	t.Run("get absent key", func(t *testing.T) {
		value, ok, err := st.Get("missing")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if ok {
			t.Error("expected absent key")
		}
		if value != "" {
			t.Errorf("expected empty value, got %q", value)
		}
	})

	t.Run("set then get", func(t *testing.T) {
		if err := st.Set(KeyAccessToken, "token-1"); err != nil {
			t.Fatalf("Set failed: %v", err)
		}

		value, ok, err := st.Get(KeyAccessToken)
		if err != nil {
			t.Fatalf("Get failed: %v", err)
		}
		if !ok {
			t.Fatal("expected key present")
		}
		if value != "token-1" {
			t.Errorf("expected token-1, got %q", value)
		}
	})

	t.Run("overwrite", func(t *testing.T) {
		if err := st.Set(KeyAccessToken, "token-2"); err != nil {
			t.Fatalf("Set failed: %v", err)
		}

		value, _, err := st.Get(KeyAccessToken)
		if err != nil {
			t.Fatalf("Get failed: %v", err)
		}
		if value != "token-2" {
			t.Errorf("expected token-2, got %q", value)
		}
	})

	t.Run("empty value is present", func(t *testing.T) {
		if err := st.Set("empty", ""); err != nil {
			t.Fatalf("Set failed: %v", err)
		}

		value, ok, err := st.Get("empty")
		if err != nil {
			t.Fatalf("Get failed: %v", err)
		}
		if !ok {
			t.Error("expected empty value to be present")
		}
		if value != "" {
			t.Errorf("expected empty value, got %q", value)
		}
	})

	t.Run("remove credential keys leaves preferences", func(t *testing.T) {
		for _, key := range CredentialKeys() {
			if err := st.Set(key, "v"); err != nil {
				t.Fatalf("Set %s failed: %v", key, err)
			}
		}
		if err := st.Set(KeyPreferences, "dark-mode"); err != nil {
			t.Fatalf("Set preferences failed: %v", err)
		}

		if err := st.RemoveAll(CredentialKeys()...); err != nil {
			t.Fatalf("RemoveAll failed: %v", err)
		}

		for _, key := range CredentialKeys() {
			if _, ok, _ := st.Get(key); ok {
				t.Errorf("expected %s removed", key)
			}
		}

		value, ok, _ := st.Get(KeyPreferences)
		if !ok || value != "dark-mode" {
			t.Errorf("expected preferences to survive, got %q (present=%v)", value, ok)
		}
	})

	t.Run("remove absent keys is a no-op", func(t *testing.T) {
		if err := st.RemoveAll("never-set", "also-never-set"); err != nil {
			t.Errorf("RemoveAll on absent keys failed: %v", err)
		}
	})
}

func TestMemory(t *testing.T) {
	st := NewMemory()
	defer st.Close()
	conformance(t, st)
}

func TestSQLite(t *testing.T) {
	st, err := OpenSQLite(filepath.Join(t.TempDir(), "kv.db"))
	if err != nil {
		t.Fatalf("OpenSQLite failed: %v", err)
	}
	defer st.Close()
	conformance(t, st)
}

func TestBolt(t *testing.T) {
	st, err := OpenBolt(filepath.Join(t.TempDir(), "kv.bolt"))
	if err != nil {
		t.Fatalf("OpenBolt failed: %v", err)
	}
	defer st.Close()
	conformance(t, st)
}

func TestMemoryWriteLag(t *testing.T) {
	st := NewMemory()
	st.SetWriteLag(50 * time.Millisecond)

	if err := st.Set(KeyAccessToken, "lagged"); err != nil {
		t.Fatalf("Set failed: %v", err)
	}

	if _, ok, _ := st.Get(KeyAccessToken); ok {
		t.Error("expected write to be invisible before the lag elapses")
	}

	time.Sleep(80 * time.Millisecond)

	value, ok, _ := st.Get(KeyAccessToken)
	if !ok || value != "lagged" {
		t.Errorf("expected lagged value visible, got %q (present=%v)", value, ok)
	}
}

func TestOpen(t *testing.T) {
	tests := []struct {
		name    string
		backend string
		wantErr bool
	}{
		{"sqlite", "sqlite", false},
		{"default is sqlite", "", false},
		{"bolt", "bolt", false},
		{"memory", "memory", false},
		{"unknown", "redis", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			st, err := Open(tt.backend, filepath.Join(t.TempDir(), "store.db"))
			if tt.wantErr {
				if err == nil {
					t.Error("expected error")
				}
				return
			}
			if err != nil {
				t.Fatalf("Open failed: %v", err)
			}
			st.Close()
		})
	}
}
