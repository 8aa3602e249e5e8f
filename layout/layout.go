package layout

import (
	"time"

	"github.com/quartercastle/vector"
	"golang.org/x/exp/rand"
)

// ForceSimulation holds all information needed for a force based graph
// embedding procedure. It is not safe for concurrent use: one goroutine owns
// it and drives it through Tick.
type ForceSimulation struct {
	conf   SimulationConfig
	forces ForceConfig
	graph  *Graph
	alpha  float64
	// alphaTarget is conf.AlphaTarget, unless raised while dragging
	alphaTarget float64
	// ticks since the last Initialize, Reheat or Update
	ticks int
	// ticks since Initialize
	totalTicks      int
	categoryCenters []vector.Vector
	random          func() float64
}

type Stats struct {
	Iterations int
	TotalTime  time.Duration
}

func NewForceSimulation(conf SimulationConfig) *ForceSimulation {
	fs := &ForceSimulation{}
	fs.ApplyConfig(conf)
	fs.setForces(DefaultForceConfig())
	return fs
}

// ApplyConfig replaces zero values by defaults, clamps out of range values
// and logs a warning for each clamped one.
func (fs *ForceSimulation) ApplyConfig(conf SimulationConfig) {
	conf, errs := conf.withDefaults().Sanitize()
	logConfigErrors(errs)
	fs.conf = conf
	fs.alpha = conf.AlphaInit
	fs.alphaTarget = conf.AlphaTarget
	fs.resetRandom()
}

func (fs *ForceSimulation) resetRandom() {
	if fs.conf.RandomFloat != nil {
		fs.random = fs.conf.RandomFloat
		return
	}
	fs.random = rand.New(rand.NewSource(fs.conf.Seed)).Float64
}

// Initialize takes ownership of g, seeds every node without a position and
// resets the annealing schedule. Calling it again restarts from scratch,
// with the same seeded sequence of positions.
func (fs *ForceSimulation) Initialize(g *Graph, forces ForceConfig) {
	fs.resetRandom()
	fs.graph = g
	fs.setForces(forces)
	for _, node := range g.Nodes {
		node.vel = vector.Vector{0, 0}
		node.acc = vector.Vector{0, 0}
		node.fixed = nil
	}
	fs.seedPositions(func(int) bool { return false })
	fs.alpha = fs.conf.AlphaInit
	fs.alphaTarget = fs.conf.AlphaTarget
	fs.ticks = 0
	fs.totalTicks = 0
}

// ApplyForces replaces the force parameters, effective from the next tick.
// The annealing schedule is left untouched.
func (fs *ForceSimulation) ApplyForces(forces ForceConfig) {
	fs.setForces(forces)
}

func (fs *ForceSimulation) setForces(forces ForceConfig) {
	if fs.graph != nil {
		// categories of the current graph must keep their table entries
		for _, node := range fs.graph.Nodes {
			if node.Category > forces.Categories && node.Category <= MaxCategories {
				forces.Categories = node.Category
			}
		}
	}
	forces, errs := forces.Sanitize()
	logConfigErrors(errs)
	fs.forces = forces
	fs.categoryCenters = CategoryCenters(forces.Categories, forces.Separation.Radius, fs.conf.Rect.Center())
	if fs.graph != nil {
		initializeLinks(fs.graph, forces.Link)
	}
}

// Update replaces the graph by g. Nodes that already existed keep their
// position, velocity and pin; new nodes are placed next to an existing
// neighbor, or seeded like in Initialize otherwise. The simulation is then
// reheated to ReseedAlpha.
func (fs *ForceSimulation) Update(g *Graph) {
	if fs.graph == nil {
		fs.Initialize(g, fs.forces)
		return
	}
	existing := make([]bool, len(g.Nodes))
	for i, node := range g.Nodes {
		node.vel = vector.Vector{0, 0}
		node.acc = vector.Vector{0, 0}
		prev := fs.graph.Node(node.ID)
		if prev == nil {
			continue
		}
		existing[i] = true
		node.Pos = vector.Vector{prev.Pos[0], prev.Pos[1]}
		node.vel = vector.Vector{prev.vel[0], prev.vel[1]}
		if prev.fixed != nil {
			node.fixed = vector.Vector{prev.fixed[0], prev.fixed[1]}
		}
	}
	fs.graph = g
	fs.setForces(fs.forces)
	fs.seedPositions(func(i int) bool { return existing[i] })
	fs.Reheat(fs.conf.ReseedAlpha)
}

// Tick advances the simulation by one step and reports whether it is
// settled. A simulation without nodes is always settled.
func (fs *ForceSimulation) Tick() bool {
	if fs.graph == nil || len(fs.graph.Nodes) == 0 {
		return true
	}
	fs.alpha += (fs.alphaTarget - fs.alpha) * fs.conf.AlphaDecay
	fs.ticks++
	fs.totalTicks++
	fs.resetAcceleration()
	fs.applyForces()
	fs.updatePositions()
	return fs.Settled()
}

func (fs *ForceSimulation) applyForces() {
	nodes := fs.graph.Nodes
	applyLinkForce(fs.graph, fs.forces.Link, fs.alpha)
	applyChargeForce(nodes, fs.forces.Charge, fs.conf.QuadTree, fs.alpha, fs.conf.Parallelization)
	applyCollideForce(nodes, fs.forces.Collide, fs.conf.QuadTree)
	applyCenterForce(nodes, fs.forces.Center, fs.conf.Rect)
	applySeparationForce(nodes, fs.forces.Separation, fs.categoryCenters, fs.alpha)
	applyRadialForce(nodes, fs.forces.Radial, fs.conf.Rect.Center(), fs.alpha)
}

// Settled reports whether alpha dropped to AlphaMin after at least
// ForceMinimumTicks ticks since the last (re)start.
func (fs *ForceSimulation) Settled() bool {
	if fs.graph == nil || len(fs.graph.Nodes) == 0 {
		return true
	}
	return fs.ticks >= fs.conf.ForceMinimumTicks && fs.alpha <= fs.conf.AlphaMin
}

// Reheat sets alpha and restarts the minimum tick count.
func (fs *ForceSimulation) Reheat(alpha float64) {
	fs.alpha = clamp(alpha, 0, 1)
	fs.ticks = 0
}

// SetAlphaTarget overrides the configured alpha target until
// ResetAlphaTarget is called.
func (fs *ForceSimulation) SetAlphaTarget(target float64) {
	fs.alphaTarget = clamp(target, 0, 1)
}

func (fs *ForceSimulation) ResetAlphaTarget() {
	fs.alphaTarget = fs.conf.AlphaTarget
}

// SetPinned fixes node id at (x, y) until ClearPinned. It returns false if
// the node does not exist.
func (fs *ForceSimulation) SetPinned(id string, x, y float64) bool {
	node := fs.graph.Node(id)
	if node == nil {
		return false
	}
	node.fixed = vector.Vector{x, y}
	node.Pos = vector.Vector{x, y}
	node.vel = vector.Vector{0, 0}
	return true
}

// ClearPinned releases node id. It returns false if the node does not exist.
func (fs *ForceSimulation) ClearPinned(id string) bool {
	node := fs.graph.Node(id)
	if node == nil {
		return false
	}
	node.fixed = nil
	return true
}

func (fs *ForceSimulation) Alpha() float64 {
	return fs.alpha
}

func (fs *ForceSimulation) AlphaTarget() float64 {
	return fs.alphaTarget
}

// Ticks returns the number of ticks since Initialize.
func (fs *ForceSimulation) Ticks() int {
	return fs.totalTicks
}

func (fs *ForceSimulation) Graph() *Graph {
	return fs.graph
}

func (fs *ForceSimulation) Config() SimulationConfig {
	return fs.conf
}

func (fs *ForceSimulation) Forces() ForceConfig {
	return fs.forces
}

// Hulls returns the smoothed hull of every non-empty category.
func (fs *ForceSimulation) Hulls() map[int][]vector.Vector {
	if fs.graph == nil {
		return map[int][]vector.Vector{}
	}
	return CategoryHulls(fs.graph.Nodes, fs.conf.HullPadding, fs.conf.HullSegments)
}

// Snapshot captures the current positions and hulls.
func (fs *ForceSimulation) Snapshot() Snapshot {
	snap := Snapshot{
		Tick:      fs.totalTicks,
		Alpha:     fs.alpha,
		Settled:   fs.Settled(),
		Positions: map[string]Point{},
		Hulls:     map[int][]Point{},
	}
	if fs.graph == nil {
		return snap
	}
	for _, node := range fs.graph.Nodes {
		snap.Positions[node.ID] = Point{X: node.Pos[0], Y: node.Pos[1]}
	}
	for category, hull := range fs.Hulls() {
		points := make([]Point, len(hull))
		for i, p := range hull {
			points[i] = Point{X: p[0], Y: p[1]}
		}
		snap.Hulls[category] = points
	}
	return snap
}
