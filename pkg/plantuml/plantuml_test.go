package plantuml_test

import (
	"bytes"
	"context"
	"errors"
	"testing"

	lifecycle "github.com/stateforward/go-lifecycle"
	"github.com/stateforward/go-lifecycle/embedded"
	"github.com/stateforward/go-lifecycle/pkg/plantuml"
)

func TestGenerate(t *testing.T) {
	ctx := context.Background()
	root := lifecycle.NewOneActive[embedded.Screen]("main window")
	documents := lifecycle.NewAllActive[*lifecycle.Screen]("documents")
	settings := lifecycle.NewScreen("settings")
	if err := documents.Add(lifecycle.NewScreen("readme"), lifecycle.NewScreen(`"notes"`)); err != nil {
		t.Fatal(err)
	}
	if err := root.Add(documents); err != nil {
		t.Fatal(err)
	}
	if err := root.ActivateItem(ctx, settings); err != nil {
		t.Fatal(err)
	}
	if err := root.Activate(ctx); err != nil {
		t.Fatal(err)
	}
	var buffer bytes.Buffer
	if err := plantuml.Generate(&buffer, root); err != nil {
		t.Fatal(err)
	}
	expected := `@startuml main_window
state "main window" as s0 <<active>> {
  [*] --> s1
  state "documents" as s2 <<inactive>> {
    state "readme" as s3 <<inactive>>
    state "'notes'" as s4 <<inactive>>
  }
  state "settings" as s1 <<active>>
}
@enduml
`
	if buffer.String() != expected {
		t.Fatalf("unexpected diagram\n%s", buffer.String())
	}
}

func TestGenerateLeaf(t *testing.T) {
	var buffer bytes.Buffer
	if err := plantuml.Generate(&buffer, lifecycle.NewScreen("alone")); err != nil {
		t.Fatal(err)
	}
	expected := "@startuml alone\nstate \"alone\" as s0 <<inactive>>\n@enduml\n"
	if buffer.String() != expected {
		t.Fatalf("unexpected diagram\n%s", buffer.String())
	}
}

type tags struct {
	names []string
}

func (tags) DisplayName() string { return "tags" }

type shelf struct {
	items []any
}

func (s *shelf) DisplayName() string { return "shelf" }
func (s *shelf) Children() []any     { return s.items }

func TestGenerateRejectsNotComparable(t *testing.T) {
	var buffer bytes.Buffer
	err := plantuml.Generate(&buffer, tags{names: []string{"a"}})
	if !errors.Is(err, plantuml.ErrNotComparable) {
		t.Fatal("expected ErrNotComparable", "error", err)
	}
	err = plantuml.Generate(&buffer, &shelf{items: []any{lifecycle.NewScreen("a"), tags{}}})
	if !errors.Is(err, plantuml.ErrNotComparable) {
		t.Fatal("expected ErrNotComparable for a child", "error", err)
	}
	if buffer.Len() != 0 {
		t.Fatal("nothing should be written on error", buffer.String())
	}
	if err := plantuml.Generate(&buffer, &tags{names: []string{"a"}}); err != nil {
		t.Fatal("a pointer should be accepted", err)
	}
}
