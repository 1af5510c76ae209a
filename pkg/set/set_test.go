package set_test

import (
	"slices"
	"testing"

	"github.com/stateforward/go-lifecycle/pkg/set"
)

func TestSet(t *testing.T) {
	t.Run("New", func(t *testing.T) {
		s := set.New("a", "b", "c", "a")
		if len(s) != 3 {
			t.Errorf("Expected size 3, got %d", len(s))
		}
		for _, item := range []string{"a", "b", "c"} {
			if !s.Contains(item) {
				t.Errorf("Expected set to contain %q", item)
			}
		}
	})

	t.Run("Remove", func(t *testing.T) {
		s := set.New("a", "b")
		if removed := s.Remove("a", "z"); removed != 1 {
			t.Errorf("Expected 1 removal, got %d", removed)
		}
		if s.Contains("a") {
			t.Error("Expected set to not contain 'a'")
		}
		if len(s) != 1 {
			t.Errorf("Expected size 1, got %d", len(s))
		}
	})

	t.Run("Filter", func(t *testing.T) {
		s := set.New("c", "a")
		filtered := s.Filter([]string{"a", "b", "c", "d"})
		if !slices.Equal(filtered, []string{"a", "c"}) {
			t.Errorf("Expected [a c], got %v", filtered)
		}
		if s.Filter(nil) != nil {
			t.Error("Expected nil for nil input")
		}
	})

	t.Run("Pointers", func(t *testing.T) {
		type screen struct{ name string }
		a, b := &screen{"a"}, &screen{"a"}
		s := set.New(a)
		if s.Contains(b) {
			t.Error("Expected membership by identity")
		}
	})
}
