package layout

import (
	"fmt"
	"math"

	"github.com/go-playground/validator/v10"
	"github.com/quartercastle/vector"
)

// Dataset is the input of a layout run, as delivered by a data source.
type Dataset struct {
	Nodes []DatasetNode `json:"nodes" yaml:"nodes" validate:"dive"`
	Links []DatasetLink `json:"links" yaml:"links" validate:"dive"`
}

type DatasetNode struct {
	ID       string `json:"id" yaml:"id" validate:"required"`
	Category int    `json:"category" yaml:"category" validate:"min=1"`
	Label    string `json:"label,omitempty" yaml:"label,omitempty"`
	// optional initial position, seeded by the simulation if unset
	X *float64 `json:"x,omitempty" yaml:"x,omitempty"`
	Y *float64 `json:"y,omitempty" yaml:"y,omitempty"`
}

type DatasetLink struct {
	Source string  `json:"source" yaml:"source" validate:"required"`
	Target string  `json:"target" yaml:"target" validate:"required"`
	Freq   float64 `json:"freq" yaml:"freq" validate:"gt=0"`
}

type Graph struct {
	Nodes  []*Node `json:"nodes"`
	Links  []*Link `json:"links"`
	lookup map[string]int
}

type Node struct {
	ID       string        `json:"id"`
	Category int           `json:"category"`
	Label    string        `json:"label,omitempty"`
	Pos      vector.Vector `json:"pos,omitempty"`
	vel      vector.Vector
	acc      vector.Vector
	// fixed is the pinned position, nil while the node moves freely
	fixed vector.Vector
	index int
	// number of links incident to this node
	count int
}

type Link struct {
	Source       int     `json:"source"`
	Target       int     `json:"target"`
	Freq         float64 `json:"freq"`
	SameCategory bool    `json:"samecategory"`
	// rest length
	distance float64
	strength float64
	// share of the correction applied to the target
	bias float64
}

var validate = validator.New()

// NewGraph validates ds and converts it into the node/link representation of
// the simulation. Every category must lie in [1, categories]. All problems
// are reported as *DataError.
func NewGraph(ds Dataset, categories int) (*Graph, error) {
	if err := validateDataset(ds); err != nil {
		return nil, err
	}
	graph := Graph{
		Nodes:  make([]*Node, 0, len(ds.Nodes)),
		Links:  make([]*Link, 0, len(ds.Links)),
		lookup: make(map[string]int, len(ds.Nodes)),
	}
	for i, n := range ds.Nodes {
		if _, exists := graph.lookup[n.ID]; exists {
			return nil, &DataError{Kind: DataErrorDuplicateNode, NodeID: n.ID, Detail: fmt.Sprintf("node %d reuses the id", i)}
		}
		if n.Category > categories {
			return nil, &DataError{
				Kind:   DataErrorInvalidCategory,
				NodeID: n.ID,
				Detail: fmt.Sprintf("category %d exceeds the number of categories (%d)", n.Category, categories),
			}
		}
		node := &Node{
			ID:       n.ID,
			Category: n.Category,
			Label:    n.Label,
			index:    i,
			vel:      vector.Vector{0, 0},
			acc:      vector.Vector{0, 0},
		}
		if n.X != nil && n.Y != nil {
			node.Pos = vector.Vector{*n.X, *n.Y}
		}
		graph.lookup[n.ID] = i
		graph.Nodes = append(graph.Nodes, node)
	}
	for i, l := range ds.Links {
		if math.IsInf(l.Freq, 0) {
			return nil, &DataError{Kind: DataErrorInvalidFrequency, Detail: fmt.Sprintf("link %d has frequency %v", i, l.Freq)}
		}
		source, ok := graph.lookup[l.Source]
		if !ok {
			return nil, &DataError{Kind: DataErrorUnknownNode, NodeID: l.Source, Detail: fmt.Sprintf("source of link %d does not exist", i)}
		}
		target, ok := graph.lookup[l.Target]
		if !ok {
			return nil, &DataError{Kind: DataErrorUnknownNode, NodeID: l.Target, Detail: fmt.Sprintf("target of link %d does not exist", i)}
		}
		if source == target {
			return nil, &DataError{Kind: DataErrorSelfLink, NodeID: l.Source, Detail: fmt.Sprintf("link %d connects the node to itself", i)}
		}
		graph.Links = append(graph.Links, &Link{
			Source:       source,
			Target:       target,
			Freq:         l.Freq,
			SameCategory: graph.Nodes[source].Category == graph.Nodes[target].Category,
		})
		graph.Nodes[source].count++
		graph.Nodes[target].count++
	}
	return &graph, nil
}

func validateDataset(ds Dataset) error {
	err := validate.Struct(ds)
	if err == nil {
		return nil
	}
	verrs, ok := err.(validator.ValidationErrors)
	if !ok || len(verrs) == 0 {
		return &DataError{Kind: DataErrorMissingID, Detail: err.Error()}
	}
	fe := verrs[0]
	kind := DataErrorMissingID
	switch fe.Field() {
	case "Category":
		kind = DataErrorInvalidCategory
	case "Freq":
		kind = DataErrorInvalidFrequency
	}
	return &DataError{Kind: kind, Detail: fmt.Sprintf("%s failed on '%s' (value %v)", fe.Namespace(), fe.Tag(), fe.Value())}
}

// Node returns the node with the given id, nil if it does not exist.
func (g *Graph) Node(id string) *Node {
	if g == nil {
		return nil
	}
	if i, ok := g.lookup[id]; ok {
		return g.Nodes[i]
	}
	return nil
}

// MaxFreq returns the highest link frequency, 0 without links.
func (g *Graph) MaxFreq() float64 {
	maxFreq := 0.0
	for _, link := range g.Links {
		maxFreq = max(maxFreq, link.Freq)
	}
	return maxFreq
}

// neighbors returns the indices of all nodes linked to node i.
func (g *Graph) neighbors(i int) []int {
	res := []int{}
	for _, link := range g.Links {
		if link.Source == i {
			res = append(res, link.Target)
		} else if link.Target == i {
			res = append(res, link.Source)
		}
	}
	return res
}

func (node *Node) IsPinned() bool {
	return node.fixed != nil
}

func (node *Node) Velocity() vector.Vector {
	return node.vel
}

// predicted returns the position the node would take with its current
// velocity and acceleration.
func (node *Node) predicted() vector.Vector {
	return vector.Vector{
		node.Pos[0] + node.vel[0] + node.acc[0],
		node.Pos[1] + node.vel[1] + node.acc[1],
	}
}

func (node *Node) size() float64 {
	return 1.0
}
