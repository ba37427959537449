package tagging

import "slices"

// Selection is an ordered set of tag ids. Insertion order is preserved and
// duplicates are ignored. The zero value is ready to use.
type Selection struct {
	ids []string
}

// NewSelection returns a selection holding ids, deduplicated.
func NewSelection(ids ...string) *Selection {
	s := &Selection{}
	for _, id := range ids {
		s.Add(id)
	}
	return s
}

// Add appends id unless it is empty or already selected. It reports whether
// the selection changed.
func (s *Selection) Add(id string) bool {
	if id == "" || s.Contains(id) {
		return false
	}
	s.ids = append(s.ids, id)
	return true
}

// Toggle removes id when selected and appends it otherwise. It returns true
// when id ends up selected.
func (s *Selection) Toggle(id string) bool {
	if i := slices.Index(s.ids, id); i >= 0 {
		s.ids = slices.Delete(s.ids, i, i+1)
		return false
	}
	return s.Add(id)
}

// Replace swaps the whole selection for ids.
func (s *Selection) Replace(ids []string) {
	s.ids = nil
	for _, id := range ids {
		s.Add(id)
	}
}

// Contains reports whether id is selected.
func (s *Selection) Contains(id string) bool {
	return slices.Contains(s.ids, id)
}

// IDs returns a copy of the selected ids in insertion order.
func (s *Selection) IDs() []string {
	return slices.Clone(s.ids)
}

// Len returns the number of selected ids.
func (s *Selection) Len() int {
	return len(s.ids)
}
