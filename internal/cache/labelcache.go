package cache

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"time"
)

// Entry is one cached model answer.
type Entry struct {
	Model   string    `json:"model"`
	Label   string    `json:"label"`
	SavedAt time.Time `json:"saved_at"`
}

// LabelCache stores remote classifier answers keyed by a digest of the model
// name and the full prompt, so a re-run over the same document does not
// spend requests on paragraphs it has already seen.
type LabelCache struct {
    Dir         string
    // StrictPerms enforces 0700 on the directory and 0600 on files.
    StrictPerms bool
}

func (c *LabelCache) ensureDir() error {
	if c == nil || c.Dir == "" {
		return errors.New("cache dir not configured")
	}
    perm := os.FileMode(0o755)
    if c.StrictPerms {
        perm = 0o700
    }
    if err := os.MkdirAll(c.Dir, perm); err != nil {
        return err
    }
    if c.StrictPerms {
        if info, err := os.Stat(c.Dir); err == nil && info.Mode()&0o777 != 0o700 {
            _ = os.Chmod(c.Dir, 0o700)
        }
    }
    return nil
}

// KeyFrom builds a cache key from model and prompt.
func KeyFrom(model string, prompt string) string {
	h := sha256.Sum256([]byte(model + "\n\n" + prompt))
	return hex.EncodeToString(h[:])
}

func (c *LabelCache) pathFor(key string) string {
	return filepath.Join(c.Dir, key+".json")
}

// Get returns the cached label for key. A missing or unreadable entry is a
// miss, not an error.
func (c *LabelCache) Get(_ context.Context, key string) (string, bool, error) {
	if err := c.ensureDir(); err != nil {
		return "", false, err
	}
	p := c.pathFor(key)
    b, err := os.ReadFile(p)
    if err != nil {
        return "", false, nil
    }
    var e Entry
    if err := json.Unmarshal(b, &e); err != nil || strings.TrimSpace(e.Label) == "" {
        return "", false, nil
    }
    // mtime tracks last use for EnforceLimits
    now := time.Now()
    _ = os.Chtimes(p, now, now)
	return e.Label, true, nil
}

// Save records label under key.
func (c *LabelCache) Save(_ context.Context, key, model, label string) error {
	if err := c.ensureDir(); err != nil {
		return err
	}
	b, err := json.Marshal(Entry{Model: model, Label: label, SavedAt: time.Now().UTC()})
	if err != nil {
		return err
	}
    mode := os.FileMode(0o644)
    if c.StrictPerms {
        mode = 0o600
    }
    return os.WriteFile(c.pathFor(key), b, mode)
}
