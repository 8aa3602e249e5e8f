package layout

import (
	"math"

	"github.com/quartercastle/vector"
	"golang.org/x/sync/errgroup"
)

// Every force adds its contribution to node.acc. A disabled force is
// evaluated with zero strength, so its contribution is exactly zero.

// NormalizeDistance maps a link frequency x in [xMin, xMax] onto a rest
// length in [minDist, maxDist]. The mapping is inverse: x = xMax yields
// minDist, x = xMin yields maxDist. Values outside the range are clamped.
func NormalizeDistance(x, xMin, xMax, minDist, maxDist float64) float64 {
	if xMax <= xMin {
		return minDist
	}
	dist := xMax + 1 - min(xMax, x)
	return clamp((dist-xMin)/(xMax-xMin)*(maxDist-minDist)+minDist, minDist, maxDist)
}

// CategoryCenters places one center per category evenly on a circle of the
// given radius around center. Category c is pulled towards index c-1.
func CategoryCenters(categories int, radius float64, center vector.Vector) []vector.Vector {
	centers := make([]vector.Vector, categories)
	for i := range centers {
		angle := 2 * math.Pi * float64(i) / float64(categories)
		centers[i] = vector.Vector{
			center.X() + math.Round(radius*math.Cos(angle)),
			center.Y() + math.Round(radius*math.Sin(angle)),
		}
	}
	return centers
}

// initializeLinks derives rest length, strength and bias of every link from
// the link frequencies and node degrees.
func initializeLinks(g *Graph, conf LinkConfig) {
	maxFreq := g.MaxFreq()
	for _, link := range g.Links {
		source, target := g.Nodes[link.Source], g.Nodes[link.Target]
		link.distance = NormalizeDistance(link.Freq, 1, maxFreq, conf.MinDistance, conf.MaxDistance)
		link.strength = 1.0 / float64(min(source.count, target.count))
		link.bias = float64(source.count) / float64(source.count+target.count)
	}
}

// applyLinkForce moves linked nodes towards the rest length of their link.
// Each iteration relaxes every link once against predicted positions.
func applyLinkForce(g *Graph, conf LinkConfig, alpha float64) {
	strength := conf.Strength * enabled(conf.Enabled)
	for k := 0; k < conf.Iterations; k++ {
		for _, link := range g.Links {
			source, target := g.Nodes[link.Source], g.Nodes[link.Target]
			sp, tp := source.predicted(), target.predicted()
			dx, dy := tp[0]-sp[0], tp[1]-sp[1]
			if dx == 0 {
				dx = pairJiggle(source.index, target.index)
			}
			if dy == 0 {
				dy = pairJiggle(source.index, target.index)
			}
			l := math.Sqrt(dx*dx + dy*dy)
			l = (l - link.distance) / l * alpha * strength * link.strength
			dx, dy = dx*l, dy*l
			target.acc[0] -= dx * link.bias
			target.acc[1] -= dy * link.bias
			source.acc[0] += dx * (1 - link.bias)
			source.acc[1] += dy * (1 - link.bias)
		}
	}
}

// applyChargeForce applies the many-body force, approximated by a quadtree
// unless conf.BarnesHut is off. Contributions are computed from the
// positions at the start of the tick, which are read-only here, so nodes can
// be processed by `parallelization` goroutines.
func applyChargeForce(nodes []*Node, conf ChargeConfig, qconf QuadTreeConfig, alpha float64, parallelization int) {
	p := ManyBodyParams{
		Strength:    conf.Strength * enabled(conf.Enabled),
		DistanceMin: conf.DistanceMin,
		DistanceMax: conf.DistanceMax,
		Theta:       conf.Theta,
		Alpha:       alpha,
	}
	calculateForce := func(node *Node) vector.Vector {
		return naiveManyBodyForce(nodes, node, p)
	}
	if conf.BarnesHut {
		qt := BuildQuadTree(qconf, nodes, func(n *Node) vector.Vector { return n.Pos })
		calculateForce = func(node *Node) vector.Vector {
			return qt.CalculateForce(node, p)
		}
	}
	apply := func(part []*Node) {
		for _, node := range part {
			vector.In(node.acc).Add(calculateForce(node))
		}
	}
	if parallelization > 0 && len(nodes) > parallelization {
		total := len(nodes)
		g := errgroup.Group{}
		for i := 0; i < parallelization; i++ {
			part := nodes[i*total/parallelization : (i+1)*total/parallelization]
			g.Go(func() error {
				apply(part)
				return nil
			})
		}
		_ = g.Wait()
	} else {
		apply(nodes)
	}
}

// naiveManyBodyForce is the exact O(n) per node counterpart of
// QuadTree.CalculateForce.
func naiveManyBodyForce(nodes []*Node, node *Node, p ManyBodyParams) vector.Vector {
	force := vector.Vector{0, 0}
	for _, other := range nodes {
		if other == node {
			continue
		}
		p.accumulate(force, node.Pos, other.Pos, other.size(), pairJiggle(node.index, other.index))
	}
	return force
}

// applyCollideForce treats nodes as disks of conf.Radius and pushes
// overlapping pairs apart, proportionally to their overlap.
func applyCollideForce(nodes []*Node, conf CollideConfig, qconf QuadTreeConfig) {
	strength := conf.Strength * enabled(conf.Enabled)
	r := conf.Radius
	if r <= 0 {
		return
	}
	rr := 2 * r
	for k := 0; k < conf.Iterations; k++ {
		qt := BuildQuadTree(qconf, nodes, (*Node).predicted)
		for _, node := range nodes {
			pi := node.predicted()
			search := Rect{X: pi[0] - rr, Y: pi[1] - rr, Width: 2 * rr, Height: 2 * rr}
			qt.Visit(func(cell *QuadTree) bool {
				if cell.TotalMass == 0 || !cell.Region.Intersects(search) {
					return true
				}
				others, _ := cell.Bodies()
				for _, other := range others {
					if other.index <= node.index {
						continue
					}
					pj := other.predicted()
					dx, dy := pi[0]-pj[0], pi[1]-pj[1]
					l := dx*dx + dy*dy
					if l >= rr*rr {
						continue
					}
					if dx == 0 {
						dx = pairJiggle(other.index, node.index)
						l += dx * dx
					}
					if dy == 0 {
						dy = pairJiggle(other.index, node.index)
						l += dy * dy
					}
					l = math.Sqrt(l)
					l = (rr - l) / l * strength
					dx, dy = dx*l, dy*l
					// equal radii: both nodes take half of the correction
					node.acc[0] += dx * 0.5
					node.acc[1] += dy * 0.5
					other.acc[0] -= dx * 0.5
					other.acc[1] -= dy * 0.5
				}
				return false
			})
		}
	}
}

// applyCenterForce translates the whole layout so that its centroid moves
// towards the anchor point.
func applyCenterForce(nodes []*Node, conf CenterConfig, rect Rect) {
	if len(nodes) == 0 {
		return
	}
	strength := conf.Strength * enabled(conf.Enabled)
	mean := vector.Vector{0, 0}
	for _, node := range nodes {
		vector.In(mean).Add(node.Pos)
	}
	vector.In(mean).Scale(1 / float64(len(nodes)))
	anchor := vector.Vector{rect.X + conf.X*rect.Width, rect.Y + conf.Y*rect.Height}
	shift := mean.Sub(anchor).Scale(strength)
	for _, node := range nodes {
		vector.In(node.acc).Sub(shift)
	}
}

// applySeparationForce pulls every node towards the center of its category,
// independently on each axis.
func applySeparationForce(nodes []*Node, conf SeparationConfig, centers []vector.Vector, alpha float64) {
	if len(centers) == 0 {
		return
	}
	strength := conf.Strength * enabled(conf.Enabled)
	for _, node := range nodes {
		center := centers[(node.Category-1)%len(centers)]
		node.acc[0] += (center[0] - node.Pos[0]) * strength * alpha
		node.acc[1] += (center[1] - node.Pos[1]) * strength * alpha
	}
}

// applyRadialForce pulls every node towards the circle around center whose
// radius is configured for the node's category.
func applyRadialForce(nodes []*Node, conf RadialConfig, center vector.Vector, alpha float64) {
	strength := conf.Strength * enabled(conf.Enabled)
	for _, node := range nodes {
		radius := 0.0
		if node.Category >= 1 && node.Category <= len(conf.CategoryRadius) {
			radius = conf.CategoryRadius[node.Category-1]
		}
		dx := node.Pos[0] - center[0]
		if dx == 0 {
			dx = 1e-6
		}
		dy := node.Pos[1] - center[1]
		if dy == 0 {
			dy = 1e-6
		}
		r := math.Sqrt(dx*dx + dy*dy)
		k := (radius - r) * strength * alpha / r
		node.acc[0] += dx * k
		node.acc[1] += dy * k
	}
}
