// Package statestore persists serialized authenticated-session state,
// one blob per sanitized session key. The local directory is the fast
// path; an optional remote object store acts as the durable source of
// truth when the local copy is missing.
package statestore

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/go-rod/rod/lib/proto"

	"github.com/joss/openoutreach/internal/logging"
)

// State is the serialized authentication artifact for one session.
// Cookies are enough to resume a LinkedIn session; the li_at cookie
// carries the auth.
type State struct {
	Cookies []*proto.NetworkCookie `json:"cookies"`
	SavedAt time.Time              `json:"saved_at"`
}

// Remote mirrors state blobs to a durable object store.
type Remote interface {
	Download(ctx context.Context, key string) ([]byte, error)
	Upload(ctx context.Context, key string, data []byte) error
}

// Store persists session state blobs.
type Store struct {
	dir    string
	remote Remote
	log    *logging.Logger
}

// New creates a store rooted at dir. remote may be nil.
func New(dir string, remote Remote) *Store {
	return &Store{
		dir:    dir,
		remote: remote,
		log:    logging.New("statestore"),
	}
}

// SanitizeKey reduces a user-chosen session identifier to a safe file
// token: letters, digits, dot, dash and underscore survive, everything
// else becomes an underscore.
func SanitizeKey(key string) string {
	var b strings.Builder
	for _, r := range strings.TrimSpace(key) {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9':
			b.WriteRune(r)
		case r == '.' || r == '-' || r == '_':
			b.WriteRune(r)
		default:
			b.WriteRune('_')
		}
	}
	if b.Len() == 0 {
		return "default"
	}
	return b.String()
}

func (s *Store) path(key string) string {
	return filepath.Join(s.dir, SanitizeKey(key)+".json")
}

// Load returns the state for key, or ok=false when absent. If a remote
// is configured and no local copy exists, exactly one download is
// attempted; any remote failure reports absent, never an error.
func (s *Store) Load(ctx context.Context, key string) (*State, bool) {
	data, err := os.ReadFile(s.path(key))
	if err != nil {
		if s.remote == nil {
			return nil, false
		}
		data, err = s.remote.Download(ctx, SanitizeKey(key))
		if err != nil {
			s.log.Debug("remote_miss", map[string]interface{}{"key": SanitizeKey(key)})
			return nil, false
		}
		// Cache the remote copy locally, best effort.
		if werr := s.writeLocal(key, data); werr != nil {
			s.log.Warn("local_cache_failed", map[string]interface{}{"key": SanitizeKey(key)}, werr)
		}
	}

	var state State
	if err := json.Unmarshal(data, &state); err != nil {
		s.log.Warn("state_corrupt", map[string]interface{}{"key": SanitizeKey(key)}, err)
		return nil, false
	}
	return &state, true
}

// Save writes the state locally first, then best-effort mirrors it to
// the remote store. Mirroring failure is logged and swallowed so it
// never fails a login that already succeeded.
func (s *Store) Save(ctx context.Context, key string, state *State) error {
	state.SavedAt = time.Now().UTC()

	data, err := json.MarshalIndent(state, "", "  ")
	if err != nil {
		return err
	}

	if err := s.writeLocal(key, data); err != nil {
		return err
	}

	if s.remote != nil {
		if err := s.remote.Upload(ctx, SanitizeKey(key), data); err != nil {
			s.log.Warn("mirror_failed", map[string]interface{}{"key": SanitizeKey(key)}, err)
		}
	}
	return nil
}

// writeLocal writes atomically via rename so a concurrent reader never
// sees a torn blob.
func (s *Store) writeLocal(key string, data []byte) error {
	if err := os.MkdirAll(s.dir, 0700); err != nil {
		return err
	}
	tmp := s.path(key) + ".tmp"
	if err := os.WriteFile(tmp, data, 0600); err != nil {
		return err
	}
	return os.Rename(tmp, s.path(key))
}

// Delete removes the local copy for key. Used when a restored state
// fails validation; absence is not an error.
func (s *Store) Delete(key string) {
	if err := os.Remove(s.path(key)); err != nil && !os.IsNotExist(err) {
		s.log.Warn("delete_failed", map[string]interface{}{"key": SanitizeKey(key)}, err)
	}
}

// List returns the sanitized keys of all locally persisted states.
func (s *Store) List() ([]string, error) {
	matches, err := doublestar.FilepathGlob(filepath.Join(s.dir, "**", "*.json"))
	if err != nil {
		return nil, err
	}

	keys := make([]string, 0, len(matches))
	for _, m := range matches {
		base := filepath.Base(m)
		keys = append(keys, strings.TrimSuffix(base, ".json"))
	}
	return keys, nil
}
