// Package plantuml renders a conductor hierarchy as a PlantUML state diagram.
package plantuml

import (
	"errors"
	"fmt"
	"io"
	"reflect"
	"strconv"
	"strings"

	"github.com/stateforward/go-lifecycle/embedded"
)

// ErrNotComparable is returned for nodes that cannot identify themselves,
// such as structs holding slices. Pass a pointer instead.
var ErrNotComparable = errors.New("plantuml: node is not comparable")

type generator struct {
	builder strings.Builder
	ids     map[any]string
	drawn   map[any]bool
}

func (g *generator) id(node any) string {
	if id, ok := g.ids[node]; ok {
		return id
	}
	id := "s" + strconv.Itoa(len(g.ids))
	g.ids[node] = id
	return id
}

func label(node any) string {
	name := fmt.Sprint(node)
	if named, ok := node.(embedded.Named); ok {
		name = named.DisplayName()
	}
	return strings.ReplaceAll(name, `"`, `'`)
}

func stereotype(node any) string {
	activatable, ok := node.(embedded.Activatable)
	if !ok {
		return ""
	}
	if activatable.IsActive() {
		return " <<active>>"
	}
	return " <<inactive>>"
}

func identifiable(node any) error {
	if node == nil || !reflect.ValueOf(node).Comparable() {
		return fmt.Errorf("%w: %T", ErrNotComparable, node)
	}
	return nil
}

func (g *generator) generateNode(depth int, node any) error {
	if err := identifiable(node); err != nil {
		return err
	}
	indent := strings.Repeat(" ", depth*2)
	id := g.id(node)
	g.drawn[node] = true
	var children []any
	if parent, ok := node.(embedded.Parent); ok {
		children = parent.Children()
	}
	if len(children) == 0 {
		fmt.Fprintf(&g.builder, "%sstate \"%s\" as %s%s\n", indent, label(node), id, stereotype(node))
		return nil
	}
	fmt.Fprintf(&g.builder, "%sstate \"%s\" as %s%s {\n", indent, label(node), id, stereotype(node))
	if conductor, ok := node.(embedded.Conductor); ok {
		if active := conductor.Active(); active != nil {
			if err := identifiable(active); err != nil {
				return err
			}
			fmt.Fprintf(&g.builder, "%s  [*] --> %s\n", indent, g.id(active))
		}
	}
	for _, child := range children {
		if err := identifiable(child); err != nil {
			return err
		}
		// a child reachable twice is drawn once
		if g.drawn[child] {
			continue
		}
		if err := g.generateNode(depth+1, child); err != nil {
			return err
		}
	}
	fmt.Fprintf(&g.builder, "%s}\n", indent)
	return nil
}

// Generate writes a state diagram of root and everything it conducts. Each
// screen is annotated with its activation state and the active item of a
// conductor is the target of its initial arrow.
func Generate(writer io.Writer, root any) error {
	g := &generator{ids: map[any]string{}, drawn: map[any]bool{}}
	fmt.Fprintf(&g.builder, "@startuml %s\n", strings.ReplaceAll(label(root), " ", "_"))
	if err := g.generateNode(0, root); err != nil {
		return err
	}
	fmt.Fprintln(&g.builder, "@enduml")
	_, err := writer.Write([]byte(g.builder.String()))
	return err
}
