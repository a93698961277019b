// Package types provides type definitions for structured data used throughout the cover letter generation system.
package types

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"
)

// Section name constants identify the fixed fields of a cover letter.
const (
	SectionOpening          = "opening"
	SectionAlignment        = "alignment"
	SectionLeadership       = "leadership"
	SectionValueProp1Title  = "value_prop_1_title"
	SectionValueProp1Detail = "value_prop_1_detail"
	SectionValueProp2Title  = "value_prop_2_title"
	SectionValueProp2Detail = "value_prop_2_detail"
	SectionValueProp3Title  = "value_prop_3_title"
	SectionValueProp3Detail = "value_prop_3_detail"
	SectionValueProp4Title  = "value_prop_4_title"
	SectionValueProp4Detail = "value_prop_4_detail"
	SectionClosing          = "closing"
	SectionSignatureName    = "signature_name"
)

// sectionTemplateOrder is the canonical field order for rendered letters.
var sectionTemplateOrder = []string{
	SectionOpening,
	SectionAlignment,
	SectionLeadership,
	SectionValueProp1Title,
	SectionValueProp1Detail,
	SectionValueProp2Title,
	SectionValueProp2Detail,
	SectionValueProp3Title,
	SectionValueProp3Detail,
	SectionValueProp4Title,
	SectionValueProp4Detail,
	SectionClosing,
	SectionSignatureName,
}

// SectionNames returns the fixed set of section names in template order.
func SectionNames() []string {
	names := make([]string, len(sectionTemplateOrder))
	copy(names, sectionTemplateOrder)
	return names
}

// SectionMap is the ordered field-to-text structure representing one cover
// letter's content. The key set is fixed at construction; fields cannot be
// added or renamed, only their text replaced.
type SectionMap struct {
	names []string
	text  map[string]string
}

// NewSectionMap creates a SectionMap with the canonical field set, all empty.
func NewSectionMap() *SectionMap {
	m := &SectionMap{
		names: SectionNames(),
		text:  make(map[string]string, len(sectionTemplateOrder)),
	}
	for _, name := range m.names {
		m.text[name] = ""
	}
	return m
}

// Names returns the section names in template order.
func (m *SectionMap) Names() []string {
	names := make([]string, len(m.names))
	copy(names, m.names)
	return names
}

// Get returns the text for a section, or empty string for unknown names.
func (m *SectionMap) Get(name string) string {
	return m.text[name]
}

// Set replaces the text of an existing section.
func (m *SectionMap) Set(name, text string) error {
	if _, ok := m.text[name]; !ok {
		return fmt.Errorf("unknown section %q", name)
	}
	m.text[name] = text
	return nil
}

// ReplaceAll replaces every section's text from the given map. The map must
// cover only known section names; missing names keep their current text.
func (m *SectionMap) ReplaceAll(updated map[string]string) error {
	for name := range updated {
		if _, ok := m.text[name]; !ok {
			return fmt.Errorf("unknown section %q", name)
		}
	}
	for name, text := range updated {
		m.text[name] = text
	}
	return nil
}

// Clone returns a deep copy of the section map.
func (m *SectionMap) Clone() *SectionMap {
	c := NewSectionMap()
	for _, name := range m.names {
		c.text[name] = m.text[name]
	}
	return c
}

// TotalWords returns the whitespace-delimited word count across all sections.
func (m *SectionMap) TotalWords() int {
	total := 0
	for _, name := range m.names {
		total += len(strings.Fields(m.text[name]))
	}
	return total
}

// MarshalJSON encodes the section map as a JSON object preserving template order.
func (m *SectionMap) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, name := range m.names {
		if i > 0 {
			buf.WriteByte(',')
		}
		key, err := json.Marshal(name)
		if err != nil {
			return nil, err
		}
		val, err := json.Marshal(m.text[name])
		if err != nil {
			return nil, err
		}
		buf.Write(key)
		buf.WriteByte(':')
		buf.Write(val)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// UnmarshalJSON decodes a JSON object into the fixed field set, ignoring
// unknown keys.
func (m *SectionMap) UnmarshalJSON(data []byte) error {
	raw := make(map[string]string)
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	fresh := NewSectionMap()
	for name, text := range raw {
		if _, ok := fresh.text[name]; ok {
			fresh.text[name] = text
		}
	}
	*m = *fresh
	return nil
}

// ValueProp is one title/detail value proposition pair.
type ValueProp struct {
	Title  string `json:"title"`
	Detail string `json:"detail"`
}
