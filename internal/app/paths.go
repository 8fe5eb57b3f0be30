package app

import (
    "crypto/sha256"
    "encoding/hex"
    "path/filepath"
    "regexp"
    "strings"
)

var nonSlug = regexp.MustCompile(`[^\p{L}\p{N}]+`)

// reportBase returns a stable report file stem under dir for the document at
// docPath: a slug of the file name plus a short hash of the cleaned path, so
// two "article.docx" files from different folders do not collide.
func reportBase(dir, docPath string) string {
    if strings.TrimSpace(dir) == "" { dir = DefaultOutputDir }
    name := filepath.Base(docPath)
    slug := slugify(strings.TrimSuffix(name, filepath.Ext(name)))
    h := sha256.Sum256([]byte(filepath.Clean(docPath)))
    return filepath.Join(dir, slug+"-"+hex.EncodeToString(h[:])[:8])
}

func slugify(s string) string {
    s = strings.ToLower(strings.TrimSpace(s))
    s = strings.Trim(nonSlug.ReplaceAllString(s, "-"), "-")
    if s == "" { s = "document" }
    return s
}
