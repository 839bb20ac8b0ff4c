package seeder

import (
	"strings"

	"github.com/Rana718/seedforge/internal/registry"
	"github.com/Rana718/seedforge/internal/schema"
	"github.com/Rana718/seedforge/internal/types"
	"github.com/spf13/cast"
)

// FieldNode is one column in the reference graph. Source is set for
// Reference fields only.
type FieldNode struct {
	Name   string
	Index  int
	Source string
	IsRef  bool
}

// DependencyGraph orders reference fields so every source column is final
// before anything copies from it.
type DependencyGraph struct {
	nodes map[string]*FieldNode
	names []string
	order []string
}

func NewDependencyGraph() *DependencyGraph {
	return &DependencyGraph{
		nodes: make(map[string]*FieldNode),
	}
}

// AddField registers a node. The first field with a given name wins, which
// matches how values are keyed in a row.
func (g *DependencyGraph) AddField(node *FieldNode) {
	if _, exists := g.nodes[node.Name]; exists {
		return
	}
	g.nodes[node.Name] = node
	g.names = append(g.names, node.Name)
}

// BuildOrder returns reference field names in resolution order. Nodes are
// visited in schema order so the result is stable. Self references and
// missing sources are not edges; the resolver reports them as warnings.
func (g *DependencyGraph) BuildOrder() ([]string, error) {
	visited := make(map[string]bool)
	temp := make(map[string]bool)
	var order []string
	var path []string

	var visit func(string) error
	visit = func(name string) error {
		if temp[name] {
			return cycleError(path, name)
		}
		if visited[name] {
			return nil
		}

		node := g.nodes[name]
		if node == nil || !node.IsRef {
			visited[name] = true
			return nil
		}

		temp[name] = true
		path = append(path, name)
		if node.Source != "" && node.Source != name {
			if _, ok := g.nodes[node.Source]; ok {
				if err := visit(node.Source); err != nil {
					return err
				}
			}
		}
		path = path[:len(path)-1]

		temp[name] = false
		visited[name] = true
		order = append(order, name)
		return nil
	}

	for _, name := range g.names {
		if !visited[name] {
			if err := visit(name); err != nil {
				return nil, err
			}
		}
	}

	g.order = order
	return order, nil
}

func (g *DependencyGraph) GetOrder() []string {
	return g.order
}

func (g *DependencyGraph) Node(name string) (*FieldNode, bool) {
	n, ok := g.nodes[name]
	return n, ok
}

func cycleError(path []string, name string) error {
	start := 0
	for i, p := range path {
		if p == name {
			start = i
			break
		}
	}
	cycle := append(append([]string{}, path[start:]...), name)
	return types.NewError(types.KindReferenceCycle,
		types.ErrReferenceCycle.Message+" ("+strings.Join(cycle, " -> ")+")", path[start:]...)
}

// SourceField reads a reference field's source name from its option bag.
func SourceField(f types.FieldDefinition) string {
	return strings.TrimSpace(cast.ToString(f.Options[registry.OptionSourceField]))
}

// GraphFor builds the reference graph of a schema.
func GraphFor(s types.Schema) *DependencyGraph {
	g := NewDependencyGraph()
	for i, f := range s {
		node := &FieldNode{Name: f.Name, Index: i}
		if schema.IsReference(f) {
			node.IsRef = true
			node.Source = SourceField(f)
		}
		g.AddField(node)
	}
	return g
}

// ReferenceOrder returns the schema indexes of reference fields in the
// order they must be resolved, or a referenceCycle error.
func ReferenceOrder(s types.Schema) ([]int, error) {
	g := GraphFor(s)
	names, err := g.BuildOrder()
	if err != nil {
		return nil, err
	}
	out := make([]int, 0, len(names))
	for _, name := range names {
		node, _ := g.Node(name)
		out = append(out, node.Index)
	}
	return out, nil
}

// AIDependentReferences returns the names of reference fields whose source
// chain ends at an AI Generated field. Their values only exist once the
// enhancement overlay has run.
func AIDependentReferences(s types.Schema) map[string]bool {
	byName := make(map[string]types.FieldDefinition, len(s))
	for _, f := range s {
		byName[f.Name] = f
	}
	out := map[string]bool{}
	for _, f := range s {
		if !schema.IsReference(f) {
			continue
		}
		seen := map[string]bool{f.Name: true}
		cur := f
		for schema.IsReference(cur) {
			next, ok := byName[SourceField(cur)]
			if !ok || seen[next.Name] {
				break
			}
			seen[next.Name] = true
			cur = next
		}
		if schema.IsAIField(cur) {
			out[f.Name] = true
		}
	}
	return out
}
