package set

// Set is an unordered collection of comparable members.
type Set[T comparable] map[T]struct{}

func New[T comparable](items ...T) Set[T] {
	s := make(Set[T], len(items))
	s.Add(items...)
	return s
}

func (s Set[T]) Add(items ...T) {
	for _, item := range items {
		s[item] = struct{}{}
	}
}

// Remove deletes items and reports how many were present.
func (s Set[T]) Remove(items ...T) int {
	removed := 0
	for _, item := range items {
		if _, ok := s[item]; ok {
			delete(s, item)
			removed++
		}
	}
	return removed
}

func (s Set[T]) Contains(item T) bool {
	_, exists := s[item]
	return exists
}

// Filter returns the members of ordered that are in s, keeping their order.
func (s Set[T]) Filter(ordered []T) []T {
	var filtered []T
	for _, item := range ordered {
		if s.Contains(item) {
			filtered = append(filtered, item)
		}
	}
	return filtered
}
