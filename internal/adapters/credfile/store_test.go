package credfile

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/ewilliams-labs/moodlens/internal/core/ports"
)

func newTestStore(t *testing.T) (*Store, string) {
	t.Helper()
	path := filepath.Join(t.TempDir(), "credentials.toml")
	return NewStore(path, nil), path
}

func TestLoadMissingFile(t *testing.T) {
	s, _ := newTestStore(t)

	creds, err := s.Load()
	if err != nil {
		t.Fatalf("Load on missing file returned error: %v", err)
	}
	if creds.Present() {
		t.Fatalf("expected absent credentials, got %+v", creds)
	}
}

func TestSaveThenLoadRoundTrip(t *testing.T) {
	s, path := newTestStore(t)

	want := ports.Credentials{ClientID: "id-123", ClientSecret: "secret-456"}
	if err := s.Save(want); err != nil {
		t.Fatalf("Save failed: %v", err)
	}

	// Fresh store simulates a process restart.
	got, err := NewStore(path, nil).Load()
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if got != want {
		t.Fatalf("round trip = %+v, want %+v", got, want)
	}
}

func TestSavePreservesUnrelatedKeys(t *testing.T) {
	s, path := newTestStore(t)

	prior := "theme = \"dark\"\nspotify_client_id = \"old-id\"\n"
	if err := os.WriteFile(path, []byte(prior), 0o644); err != nil {
		t.Fatal(err)
	}

	if err := s.Save(ports.Credentials{ClientID: "new-id", ClientSecret: "new-secret"}); err != nil {
		t.Fatalf("Save failed: %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	content := string(data)
	if !strings.Contains(content, "theme") || !strings.Contains(content, "dark") {
		t.Fatalf("unrelated key lost:\n%s", content)
	}
	if strings.Contains(content, "old-id") {
		t.Fatalf("old credential value not overwritten:\n%s", content)
	}

	creds, err := s.Load()
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if creds.ClientID != "new-id" || creds.ClientSecret != "new-secret" {
		t.Fatalf("unexpected credentials %+v", creds)
	}
}

func TestLoadCorruptFileYieldsAbsent(t *testing.T) {
	s, path := newTestStore(t)

	if err := os.WriteFile(path, []byte("= not toml ="), 0o644); err != nil {
		t.Fatal(err)
	}

	creds, err := s.Load()
	if err != nil {
		t.Fatalf("Load on corrupt file returned error: %v", err)
	}
	if creds.Present() {
		t.Fatalf("expected absent credentials, got %+v", creds)
	}
}

func TestSaveWriteErrorPropagates(t *testing.T) {
	// Point the store at a directory that does not exist.
	s := NewStore(filepath.Join(t.TempDir(), "missing", "credentials.toml"), nil)

	err := s.Save(ports.Credentials{ClientID: "a", ClientSecret: "b"})
	if err == nil {
		t.Fatal("expected write error, got nil")
	}
}
