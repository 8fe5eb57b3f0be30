package cache

import (
    "errors"
    "io/fs"
    "os"
    "path/filepath"
    "sort"
    "strings"
    "time"
)

// ClearDir removes the directory and all contents. It recreates the directory
// afterwards to leave a valid empty cache location.
func ClearDir(dir string) error {
    if strings.TrimSpace(dir) == "" {
        return errors.New("empty dir")
    }
    if err := os.RemoveAll(dir); err != nil {
        return err
    }
    return os.MkdirAll(dir, 0o755)
}

type fileInfo struct {
    path string
    mod  time.Time
}

func listEntries(dir string) ([]fileInfo, error) {
    var out []fileInfo
    err := filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
        if err != nil {
            return err
        }
        if d.IsDir() || !strings.HasSuffix(d.Name(), ".json") {
            return nil
        }
        info, err := d.Info()
        if err != nil {
            return nil
        }
        out = append(out, fileInfo{path: path, mod: info.ModTime().UTC()})
        return nil
    })
    if errors.Is(err, fs.ErrNotExist) {
        return nil, nil
    }
    return out, err
}

// PurgeByAge removes entries not used for longer than maxAge, based on file
// modification time. It returns the number of removed entries.
func PurgeByAge(dir string, maxAge time.Duration) (int, error) {
    if maxAge <= 0 {
        return 0, nil
    }
    entries, err := listEntries(dir)
    if err != nil {
        return 0, err
    }
    now := time.Now().UTC()
    removed := 0
    for _, e := range entries {
        if now.Sub(e.mod) <= maxAge {
            continue
        }
        if os.Remove(e.path) == nil {
            removed++
        }
    }
    return removed, nil
}

// EnforceLimits keeps at most maxCount entries, evicting the least recently
// used first. maxCount <= 0 disables the limit.
func EnforceLimits(dir string, maxCount int) (int, error) {
    if maxCount <= 0 {
        return 0, nil
    }
    entries, err := listEntries(dir)
    if err != nil {
        return 0, err
    }
    if len(entries) <= maxCount {
        return 0, nil
    }
    sort.Slice(entries, func(i, j int) bool { return entries[i].mod.Before(entries[j].mod) })
    removed := 0
    for _, e := range entries[:len(entries)-maxCount] {
        if os.Remove(e.path) == nil {
            removed++
        }
    }
    return removed, nil
}
