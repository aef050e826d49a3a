package listing

import "sort"

// Selection is the client-only set of ids picked on the current page.
type Selection struct {
	ids map[int64]struct{}
}

func NewSelection() Selection {
	return Selection{ids: map[int64]struct{}{}}
}

func (s *Selection) Toggle(id int64) bool {
	if s.ids == nil {
		s.ids = map[int64]struct{}{}
	}
	if _, ok := s.ids[id]; ok {
		delete(s.ids, id)
		return false
	}
	s.ids[id] = struct{}{}
	return true
}

func (s *Selection) Set(ids []int64) {
	s.ids = make(map[int64]struct{}, len(ids))
	for _, id := range ids {
		s.ids[id] = struct{}{}
	}
}

func (s *Selection) Clear() {
	s.ids = map[int64]struct{}{}
}

func (s Selection) Has(id int64) bool {
	_, ok := s.ids[id]
	return ok
}

func (s Selection) Len() int {
	return len(s.ids)
}

func (s Selection) IDs() []int64 {
	out := make([]int64, 0, len(s.ids))
	for id := range s.ids {
		out = append(out, id)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

// Covers reports whether the selection is exactly ids.
func (s Selection) Covers(ids []int64) bool {
	if len(ids) == 0 || len(ids) != len(s.ids) {
		return false
	}
	for _, id := range ids {
		if !s.Has(id) {
			return false
		}
	}
	return true
}
