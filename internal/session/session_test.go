package session

import (
	"encoding/json"
	"os"
	"path/filepath"
	"runtime"
	"testing"
)

func TestStore_SaveAndLoad(t *testing.T) {
	t.Parallel()

	dir := filepath.Join(t.TempDir(), "nested", "reddit-mcp")
	store := NewStore(dir)

	saved, err := store.Save(map[string]string{"reddit_session": "abc"}, "gopher", "firefox")
	if err != nil {
		t.Fatalf("Save returned error: %v", err)
	}
	if saved.SavedAt <= 0 {
		t.Errorf("expected saved_at to be set, got %v", saved.SavedAt)
	}

	loaded, err := store.Load()
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if loaded == nil {
		t.Fatal("expected a session")
	}
	if loaded.Username != "gopher" || loaded.Cookies["reddit_session"] != "abc" || loaded.Browser != "firefox" {
		t.Errorf("unexpected session %+v", loaded)
	}

	if runtime.GOOS != "windows" {
		info, err := os.Stat(store.Path())
		if err != nil {
			t.Fatalf("stat: %v", err)
		}
		if perm := info.Mode().Perm(); perm != filePerm {
			t.Errorf("expected file mode %o, got %o", filePerm, perm)
		}
	}
}

func TestStore_SaveWritesDocumentedFormat(t *testing.T) {
	t.Parallel()

	store := NewStore(t.TempDir())
	if _, err := store.Save(map[string]string{"reddit_session": "abc"}, "gopher", ""); err != nil {
		t.Fatalf("Save returned error: %v", err)
	}

	data, err := os.ReadFile(store.Path())
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	var doc map[string]any
	if err := json.Unmarshal(data, &doc); err != nil {
		t.Fatalf("session file is not JSON: %v", err)
	}
	for _, key := range []string{"cookies", "username", "saved_at"} {
		if _, ok := doc[key]; !ok {
			t.Errorf("expected key %q in %s", key, data)
		}
	}
	if _, ok := doc["browser"]; ok {
		t.Errorf("expected browser to be omitted, got %s", data)
	}
}

func TestStore_LoadMissingOrInvalid(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		content string
	}{
		{"not json", `{"cookies":`},
		{"missing cookies", `{"username":"gopher"}`},
		{"missing username", `{"cookies":{"reddit_session":"abc"}}`},
		{"empty cookies", `{"cookies":{},"username":"gopher"}`},
		{"wrong types", `{"cookies":"abc","username":1}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			store := NewStore(t.TempDir())
			if err := os.WriteFile(store.Path(), []byte(tt.content), 0o600); err != nil {
				t.Fatalf("write: %v", err)
			}
			sess, err := store.Load()
			if err != nil {
				t.Fatalf("expected no error, got %v", err)
			}
			if sess != nil {
				t.Errorf("expected no session, got %+v", sess)
			}
		})
	}

	t.Run("absent", func(t *testing.T) {
		t.Parallel()

		sess, err := NewStore(t.TempDir()).Load()
		if err != nil || sess != nil {
			t.Errorf("expected (nil, nil), got (%v, %v)", sess, err)
		}
	})
}

func TestStore_SaveRejectsEmptyCookies(t *testing.T) {
	t.Parallel()

	store := NewStore(t.TempDir())
	if _, err := store.Save(map[string]string{}, "gopher", ""); err == nil {
		t.Fatal("expected error for empty cookies")
	}
	if _, err := os.Stat(store.Path()); !os.IsNotExist(err) {
		t.Errorf("expected no file to be written, got %v", err)
	}
}

func TestStore_Remove(t *testing.T) {
	t.Parallel()

	store := NewStore(t.TempDir())
	if err := store.Remove(); err != nil {
		t.Fatalf("removing a missing session should succeed, got %v", err)
	}

	if _, err := store.Save(map[string]string{"reddit_session": "abc"}, "gopher", ""); err != nil {
		t.Fatalf("Save returned error: %v", err)
	}
	if err := store.Remove(); err != nil {
		t.Fatalf("Remove returned error: %v", err)
	}
	if sess, _ := store.Load(); sess != nil {
		t.Errorf("expected session to be gone, got %+v", sess)
	}
}

func TestDefaultDir(t *testing.T) {
	t.Setenv(DirEnv, "/tmp/custom-reddit")
	if got := DefaultDir(); got != "/tmp/custom-reddit" {
		t.Errorf("expected env override, got %q", got)
	}
	if got := NewStore("").Path(); got != filepath.Join("/tmp/custom-reddit", FileName) {
		t.Errorf("unexpected path %q", got)
	}

	t.Setenv(DirEnv, "")
	if got := DefaultDir(); filepath.Base(got) != "reddit-mcp" {
		t.Errorf("expected default dir to end in reddit-mcp, got %q", got)
	}
}
