// Package credfile persists music-service credentials in a local TOML file.
//
// The file is a flat key-value document. Keys other than the two credential
// keys are preserved across writes so the file can be shared with other
// tooling.
package credfile

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"

	"github.com/BurntSushi/toml"
	"github.com/charmbracelet/log"

	"github.com/ewilliams-labs/moodlens/internal/core/ports"
)

const (
	keyClientID     = "spotify_client_id"
	keyClientSecret = "spotify_client_secret"
)

// Store reads and writes credentials at a fixed path.
// Single-writer assumption: one settings update at a time.
type Store struct {
	path   string
	logger *log.Logger
}

var _ ports.CredentialStore = (*Store)(nil)

// NewStore constructs a store for the given file path.
func NewStore(path string, logger *log.Logger) *Store {
	if logger == nil {
		logger = log.Default()
	}
	return &Store{path: path, logger: logger.With("component", "credfile")}
}

// Load reads credentials from the file. A missing file, unreadable file or
// missing keys yield zero-value fields and a nil error.
func (s *Store) Load() (ports.Credentials, error) {
	doc, err := s.readDocument()
	if err != nil {
		s.logger.Warn("ignoring unreadable credentials file", "path", s.path, "err", err)
		return ports.Credentials{}, nil
	}

	return ports.Credentials{
		ClientID:     stringValue(doc[keyClientID]),
		ClientSecret: stringValue(doc[keyClientSecret]),
	}, nil
}

// Save merges creds into the existing document and rewrites the file via a
// temp file and rename so the common path never leaves a torn file behind.
func (s *Store) Save(creds ports.Credentials) error {
	doc, err := s.readDocument()
	if err != nil {
		// An unreadable prior file loses its unrelated keys, same as Load.
		doc = map[string]any{}
	}

	doc[keyClientID] = creds.ClientID
	doc[keyClientSecret] = creds.ClientSecret

	var buf bytes.Buffer
	if err := toml.NewEncoder(&buf).Encode(doc); err != nil {
		return fmt.Errorf("credfile: encode: %w", err)
	}

	dir := filepath.Dir(s.path)
	tmp, err := os.CreateTemp(dir, ".credentials-*.toml")
	if err != nil {
		return fmt.Errorf("credfile: create temp file: %w", err)
	}
	tmpName := tmp.Name()

	if _, err := tmp.Write(buf.Bytes()); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("credfile: write: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("credfile: close: %w", err)
	}

	if err := os.Rename(tmpName, s.path); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("credfile: rename: %w", err)
	}
	return nil
}

func (s *Store) readDocument() (map[string]any, error) {
	data, err := os.ReadFile(s.path)
	if err != nil {
		if os.IsNotExist(err) {
			return map[string]any{}, nil
		}
		return nil, err
	}

	doc := map[string]any{}
	if err := toml.Unmarshal(data, &doc); err != nil {
		return nil, err
	}
	return doc, nil
}

func stringValue(v any) string {
	s, _ := v.(string)
	return s
}
