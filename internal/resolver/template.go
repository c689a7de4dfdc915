package resolver

import "strings"

// Placeholder marks the single context slot in a reply template.
const Placeholder = "{{context}}"

// Template is a reply with at most one context slot: the first occurrence of
// Placeholder. Any later markers are literal text.
type Template struct {
	raw    string
	before string
	after  string
	slot   bool
}

// ParseTemplate splits s at the first Placeholder.
func ParseTemplate(s string) Template {
	before, after, found := strings.Cut(s, Placeholder)
	if !found {
		return Template{raw: s, before: s}
	}
	return Template{raw: s, before: before, after: after, slot: true}
}

// HasSlot reports whether the template contains a context slot.
func (t Template) HasSlot() bool { return t.slot }

// Fill substitutes value into the slot. Templates without a slot are returned verbatim.
func (t Template) Fill(value string) string {
	if !t.slot {
		return t.raw
	}
	return t.before + value + t.after
}

func (t Template) String() string { return t.raw }
