package criteria

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	yaml "gopkg.in/yaml.v3"

	"github.com/hyperifyio/papercheck/internal/role"
)

// Load reads a YAML or JSON criteria file and overlays it on the defaults.
// Fields left out of the file keep their default values, so a file may
// adjust a single role or a single margin.
func Load(path string) (*Table, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var fc Table
	switch ext := filepath.Ext(path); ext {
	case ".json":
		if err := json.Unmarshal(b, &fc); err != nil {
			return nil, fmt.Errorf("parse json: %w", err)
		}
	default:
		if err := yaml.Unmarshal(b, &fc); err != nil {
			return nil, fmt.Errorf("parse yaml: %w", err)
		}
	}
	t := Default()
	t.apply(fc)
	if err := t.Validate(); err != nil {
		return nil, err
	}
	return t, nil
}

func (t *Table) apply(fc Table) {
	d := &t.Document
	if fc.Document.TopMarginCM > 0 { d.TopMarginCM = fc.Document.TopMarginCM }
	if fc.Document.BottomMarginCM > 0 { d.BottomMarginCM = fc.Document.BottomMarginCM }
	if fc.Document.LeftMarginCM > 0 { d.LeftMarginCM = fc.Document.LeftMarginCM }
	if fc.Document.RightMarginCM > 0 { d.RightMarginCM = fc.Document.RightMarginCM }
	if fc.Document.LineSpacing > 0 { d.LineSpacing = fc.Document.LineSpacing }
	if fc.Document.Font != "" { d.Font = fc.Document.Font }
	if fc.Document.MinPages != 0 { d.MinPages = fc.Document.MinPages }

	for r, in := range fc.Roles {
		rec := t.Roles[r]
		if in.Font != "" { rec.Font = in.Font }
		if in.Size > 0 { rec.Size = in.Size }
		if in.Alignment != 0 { rec.Alignment = in.Alignment }
		if in.Bold != nil { rec.Bold = in.Bold }
		if in.Italic != nil { rec.Italic = in.Italic }
		if in.IndentCM != nil { rec.IndentCM = in.IndentCM }
		if in.Rules != nil { rec.Rules = append([]string{}, in.Rules...) }
		t.Roles[r] = rec
	}
}

// Save writes the table as YAML, or JSON when path ends in .json.
func (t *Table) Save(path string) error {
	var (
		b   []byte
		err error
	)
	if filepath.Ext(path) == ".json" {
		b, err = json.MarshalIndent(t, "", "  ")
	} else {
		b, err = yaml.Marshal(t)
	}
	if err != nil {
		return fmt.Errorf("encode criteria: %w", err)
	}
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return err
		}
	}
	return os.WriteFile(path, b, 0o644)
}

// RoleOrder returns the roles that have a record, in document order.
func (t *Table) RoleOrder() []role.Role {
	var out []role.Role
	for _, r := range role.All {
		if _, ok := t.Roles[r]; ok {
			out = append(out, r)
		}
	}
	return out
}
