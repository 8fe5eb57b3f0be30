package document

import (
	"fmt"
	"strings"
)

// Alignment is the horizontal alignment of a paragraph.
type Alignment int

const (
	AlignUnset Alignment = iota
	AlignLeft
	AlignCenter
	AlignRight
	AlignJustify
)

var alignmentNames = map[Alignment]string{
	AlignUnset:   "не задано",
	AlignLeft:    "по левому краю",
	AlignCenter:  "по центру",
	AlignRight:   "по правому краю",
	AlignJustify: "по ширине",
}

var alignmentKeys = map[Alignment]string{
	AlignUnset:   "",
	AlignLeft:    "left",
	AlignCenter:  "center",
	AlignRight:   "right",
	AlignJustify: "justify",
}

// Russian returns the name used in validation messages.
func (a Alignment) Russian() string {
	if s, ok := alignmentNames[a]; ok {
		return s
	}
	return "неизвестно"
}

func (a Alignment) String() string { return alignmentKeys[a] }

// ParseAlignment accepts the keys used in criteria files as well as the
// OOXML jc values and CSS text-align values.
func ParseAlignment(s string) (Alignment, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "":
		return AlignUnset, nil
	case "left", "start":
		return AlignLeft, nil
	case "center", "centre":
		return AlignCenter, nil
	case "right", "end":
		return AlignRight, nil
	case "justify", "both", "distribute":
		return AlignJustify, nil
	}
	return AlignUnset, fmt.Errorf("unknown alignment %q", s)
}

// MarshalText implements encoding.TextMarshaler so criteria files and JSON
// output carry readable keys.
func (a Alignment) MarshalText() ([]byte, error) { return []byte(a.String()), nil }

// UnmarshalText implements encoding.TextUnmarshaler.
func (a *Alignment) UnmarshalText(b []byte) error {
	v, err := ParseAlignment(string(b))
	if err != nil {
		return err
	}
	*a = v
	return nil
}
