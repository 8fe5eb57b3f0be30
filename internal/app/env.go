package app

import (
    "bufio"
    "errors"
    "os"
    "strings"
)

// LoadEnvFiles loads dotenv files of KEY=VALUE pairs into the process
// environment. Later files override earlier ones; missing files are skipped.
// The classifier credential file (API_KEY="...") is a valid dotenv file.
func LoadEnvFiles(paths ...string) error {
    for _, p := range paths {
        if strings.TrimSpace(p) == "" {
            continue
        }
        if err := loadEnvFile(p); err != nil && !errors.Is(err, os.ErrNotExist) {
            return err
        }
    }
    return nil
}

func loadEnvFile(path string) error {
    f, err := os.Open(path)
    if err != nil {
        return err
    }
    defer f.Close()

    scanner := bufio.NewScanner(f)
    for scanner.Scan() {
        key, val, ok := parseEnvLine(scanner.Text())
        if !ok {
            continue
        }
        if err := os.Setenv(key, val); err != nil {
            return err
        }
    }
    return scanner.Err()
}

// parseEnvLine splits KEY=VALUE, tolerating an "export " prefix and one pair
// of matching quotes around the value. Comments and malformed lines are
// reported as not ok.
func parseEnvLine(line string) (string, string, bool) {
    line = strings.TrimSpace(line)
    if line == "" || strings.HasPrefix(line, "#") {
        return "", "", false
    }
    line = strings.TrimPrefix(line, "export ")
    key, val, found := strings.Cut(line, "=")
    key = strings.TrimSpace(key)
    if !found || key == "" || strings.ContainsAny(key, " \t") {
        return "", "", false
    }
    val = strings.TrimSpace(val)
    if n := len(val); n >= 2 && (val[0] == '"' || val[0] == '\'') && val[n-1] == val[0] {
        val = val[1 : n-1]
    }
    return key, val, true
}
