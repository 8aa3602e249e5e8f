// adapted from https://github.com/jwhandley/graphyz/blob/main/quadtree.go
package layout

import (
	"math"

	"github.com/quartercastle/vector"
)

type QuadTreeConfig struct {
	CapacityOfEachBlock int
	// MaxDepth stops subdivision, so that any number of nodes at the exact
	// same location end up in a single leaf instead of recursing forever.
	MaxDepth int
}

var QUADTREE_DEFAULT_CONFIG = QuadTreeConfig{CapacityOfEachBlock: 10, MaxDepth: 32}

// QuadTree is the spatial index of the many-body and collision forces. It is
// rebuilt from the current positions whenever it is used and holds no state
// across ticks.
type QuadTree struct {
	Center    vector.Vector
	TotalMass float64
	Region    Rect
	Nodes     []*Node
	// positions[i] is the indexed position of Nodes[i]
	positions []vector.Vector
	Children  [4]*QuadTree
	config    *QuadTreeConfig
	depth     int
}

type Rect struct {
	X, Y, Width, Height float64
}

func (r *Rect) Contains(pos vector.Vector) bool {
	contains := pos.X() >= r.X && pos.X() <= r.X+r.Width && pos.Y() >= r.Y && pos.Y() <= r.Y+r.Height
	return contains
}

func (r Rect) Center() vector.Vector {
	return vector.Vector{r.X + r.Width/2, r.Y + r.Height/2}
}

// Intersects reports whether r and o overlap, touching edges count.
func (r *Rect) Intersects(o Rect) bool {
	return r.X <= o.X+o.Width && o.X <= r.X+r.Width && r.Y <= o.Y+o.Height && o.Y <= r.Y+r.Height
}

func NewQuadTree(config *QuadTreeConfig, boundary Rect) *QuadTree {
	if config == nil {
		config = &QUADTREE_DEFAULT_CONFIG
	}
	if config.CapacityOfEachBlock == 0 {
		config.CapacityOfEachBlock = QUADTREE_DEFAULT_CONFIG.CapacityOfEachBlock
	}
	if config.MaxDepth == 0 {
		config.MaxDepth = QUADTREE_DEFAULT_CONFIG.MaxDepth
	}
	qt := new(QuadTree)
	qt.config = config
	qt.Region = boundary
	qt.Nodes = make([]*Node, 0, qt.config.CapacityOfEachBlock)
	qt.Children = [4]*QuadTree{nil, nil, nil, nil}
	qt.Center = vector.Vector{0, 0}
	qt.TotalMass = 0
	return qt
}

// BuildQuadTree indexes nodes at the position returned by pos, inside the
// smallest square covering all of them, and computes the aggregated masses.
// Nodes with a non-finite position are left out.
func BuildQuadTree(config QuadTreeConfig, nodes []*Node, pos func(*Node) vector.Vector) *QuadTree {
	positions := make([]vector.Vector, len(nodes))
	x0, y0 := math.Inf(+1), math.Inf(+1)
	x1, y1 := math.Inf(-1), math.Inf(-1)
	for i, node := range nodes {
		p := pos(node)
		positions[i] = p
		if !isFinite(p) {
			continue
		}
		x0, y0 = min(x0, p[0]), min(y0, p[1])
		x1, y1 = max(x1, p[0]), max(y1, p[1])
	}
	size := max(x1-x0, y1-y0)
	if math.IsInf(size, 0) || math.IsNaN(size) {
		x0, y0, size = 0, 0, 0
	}
	// widen a little, so that boundary points are safely inside
	size = size*(1+1e-9) + 1
	qt := NewQuadTree(&config, Rect{X: x0, Y: y0, Width: size, Height: size})
	for i, node := range nodes {
		if isFinite(positions[i]) {
			qt.insert(node, positions[i])
		}
	}
	qt.CalculateMasses()
	return qt
}

func isFinite(p vector.Vector) bool {
	return len(p) >= 2 && !math.IsNaN(p[0]) && !math.IsNaN(p[1]) && !math.IsInf(p[0], 0) && !math.IsInf(p[1], 0)
}

// Insert indexes node at its current position.
func (qt *QuadTree) Insert(node *Node) bool {
	return qt.insert(node, node.Pos)
}

func (qt *QuadTree) insert(node *Node, pos vector.Vector) bool {
	if !qt.Region.Contains(pos) {
		return false
	}
	if qt.Children[0] == nil {
		if len(qt.Nodes) < qt.config.CapacityOfEachBlock || qt.depth >= qt.config.MaxDepth {
			qt.Nodes = append(qt.Nodes, node)
			qt.positions = append(qt.positions, pos)
			return true
		}
		qt.subdivide()
	}
	for _, child := range qt.Children {
		if child.insert(node, pos) {
			return true
		}
	}
	return false
}

func (qt *QuadTree) subdivide() {
	midX := qt.Region.X + qt.Region.Width/2
	midY := qt.Region.Y + qt.Region.Height/2

	halfWidth := (qt.Region.Width) / 2
	halfHeight := (qt.Region.Height) / 2

	qt.Children[0] = NewQuadTree(qt.config, Rect{X: qt.Region.X, Y: qt.Region.Y, Width: halfWidth, Height: halfHeight}) // Top Left
	qt.Children[1] = NewQuadTree(qt.config, Rect{X: midX, Y: qt.Region.Y, Width: halfWidth, Height: halfHeight})        // Top right
	qt.Children[2] = NewQuadTree(qt.config, Rect{X: qt.Region.X, Y: midY, Width: halfWidth, Height: halfHeight})        // Bottom Left
	qt.Children[3] = NewQuadTree(qt.config, Rect{X: midX, Y: midY, Width: halfWidth, Height: halfHeight})               // Bottom Right
	for _, child := range qt.Children {
		child.depth = qt.depth + 1
	}

	nodes, positions := qt.Nodes, qt.positions
	qt.Nodes, qt.positions = nil, nil
	for i, node := range nodes {
		for _, child := range qt.Children {
			if child.insert(node, positions[i]) {
				break
			}
		}
	}
}

// CalculateMasses aggregates the number of nodes and their centroid for
// every cell. Empty cells keep a zero mass.
func (qt *QuadTree) CalculateMasses() {
	qt.Center = vector.Vector{0, 0}
	qt.TotalMass = 0
	if qt.Children[0] == nil {
		// Leaf
		for i, node := range qt.Nodes {
			qt.TotalMass += node.size()
			vector.In(qt.Center).Add(qt.positions[i].Scale(node.size()))
		}
	} else {
		// Process children
		for _, child := range qt.Children {
			child.CalculateMasses()
			qt.TotalMass += child.TotalMass
			vector.In(qt.Center).Add(child.Center.Scale(child.TotalMass))
		}
	}
	if qt.TotalMass > 0 {
		vector.In(qt.Center).Scale(1 / qt.TotalMass)
	}
}

// ManyBodyParams parametrizes the many-body force.
type ManyBodyParams struct {
	// negative strength repels, positive attracts
	Strength    float64
	DistanceMin float64
	DistanceMax float64
	// a cell is treated as a single mass once its width divided by the
	// distance to its centroid is below Theta
	Theta float64
	Alpha float64
}

// CalculateForce calculates the many-body force acting on a node.
func (qt *QuadTree) CalculateForce(node *Node, p ManyBodyParams) vector.Vector {
	force := vector.Vector{0, 0}
	if len(node.Pos) < 2 {
		return force
	}
	qt.accumulateForce(force, node, p)
	return force
}

func (qt *QuadTree) accumulateForce(force vector.Vector, node *Node, p ManyBodyParams) {
	if qt.TotalMass == 0 {
		return
	}
	if qt.Children[0] == nil {
		for i, other := range qt.Nodes {
			if node == other {
				continue
			}
			p.accumulate(force, node.Pos, qt.positions[i], other.size(), pairJiggle(node.index, other.index))
		}
		return
	}
	dx := qt.Center[0] - node.Pos[0]
	dy := qt.Center[1] - node.Pos[1]
	w := qt.Region.Width
	if !qt.Region.Contains(node.Pos) && w*w < p.Theta*p.Theta*(dx*dx+dy*dy) {
		p.accumulate(force, node.Pos, qt.Center, qt.TotalMass, pairJiggle(node.index, -1))
		return
	}
	for _, child := range qt.Children {
		child.accumulateForce(force, node, p)
	}
}

// accumulate adds the force exerted by mass located at `at` onto a body at
// pos. The distance is clamped to [DistanceMin, DistanceMax], farther masses
// exert no force at all.
func (p ManyBodyParams) accumulate(force, pos, at vector.Vector, mass, jiggle float64) {
	dx := at[0] - pos[0]
	dy := at[1] - pos[1]
	l := dx*dx + dy*dy
	if l >= p.DistanceMax*p.DistanceMax {
		return
	}
	if dx == 0 {
		dx = jiggle
		l += dx * dx
	}
	if dy == 0 {
		dy = jiggle
		l += dy * dy
	}
	if l < p.DistanceMin*p.DistanceMin {
		l = math.Sqrt(p.DistanceMin * p.DistanceMin * l)
	}
	scale := p.Strength * mass * p.Alpha / l
	force[0] += dx * scale
	force[1] += dy * scale
}

// pairJiggle separates coincident bodies deterministically: the offset is
// antisymmetric in (i, j), so both bodies are pushed apart.
func pairJiggle(i, j int) float64 {
	if j > i {
		return 1e-6
	}
	return -1e-6
}

// Visit calls fn for each cell, parents before children. The children of a
// cell are skipped when fn returns true.
func (qt *QuadTree) Visit(fn func(qt *QuadTree) bool) {
	if fn(qt) {
		return
	}
	for _, child := range qt.Children {
		if child != nil {
			child.Visit(fn)
		}
	}
}

// Bodies returns the nodes of a leaf together with their indexed positions.
func (qt *QuadTree) Bodies() ([]*Node, []vector.Vector) {
	return qt.Nodes, qt.positions
}
