// adapted from https://github.com/jwhandley/graphyz/blob/main/g.go
package layout

import (
	"math"

	"github.com/quartercastle/vector"
)

const (
	// radius of the ring on which the first node of a category is seeded,
	// grows with the number of nodes in the category
	categoryRingRadius = 10.0
	// new nodes are placed within this distance of an existing neighbor
	reseedJitter = 10.0
)

func pointOnCircle(i, totalPoints int, radius float64, center vector.Vector) vector.Vector {
	return vector.Vector{
		math.Sin(float64(i) * 2.0 * math.Pi / float64(totalPoints)),
		math.Cos(float64(i) * 2.0 * math.Pi / float64(totalPoints)),
	}.Scale(radius).Add(center)
}

func randomVectorInside(rect Rect, rndSource func() float64) vector.Vector {
	return vector.Vector{
		rect.X + rndSource()*rect.Width,
		rect.Y + rndSource()*rect.Height,
	}
}

// phyllotaxis returns the i-th point of a sunflower spiral around center.
func phyllotaxis(i int, center vector.Vector) vector.Vector {
	const initialRadius = 10.0
	initialAngle := math.Pi * (3 - math.Sqrt(5))
	radius := initialRadius * math.Sqrt(0.5+float64(i))
	angle := float64(i) * initialAngle
	return vector.Vector{
		radius*math.Cos(angle) + center.X(),
		radius*math.Sin(angle) + center.Y(),
	}
}

// seedPositions assigns a position to every node that has none. Nodes for
// which existing returns true are anchors: a new node linked to one of them
// is placed close to it.
func (fs *ForceSimulation) seedPositions(existing func(i int) bool) {
	g := fs.graph
	perCategory := map[int]int{}
	for _, node := range g.Nodes {
		perCategory[node.Category]++
	}
	seenInCategory := map[int]int{}
	for i, node := range g.Nodes {
		k := seenInCategory[node.Category]
		seenInCategory[node.Category]++
		if len(node.Pos) >= 2 {
			continue
		}
		if anchor := fs.anchorOf(i, existing); anchor != nil {
			node.Pos = vector.Vector{
				anchor.Pos[0] + (fs.random()*2-1)*reseedJitter,
				anchor.Pos[1] + (fs.random()*2-1)*reseedJitter,
			}
			continue
		}
		switch fs.conf.InitialLayout {
		case InitialLayoutRandom:
			node.Pos = randomVectorInside(fs.conf.Rect, fs.random)
		case InitialLayoutCircle:
			radius := min(fs.conf.Rect.Width, fs.conf.Rect.Height) / 4
			node.Pos = pointOnCircle(i, len(g.Nodes), radius, fs.conf.Rect.Center())
		case InitialLayoutPhyllotaxis:
			node.Pos = phyllotaxis(i, fs.conf.Rect.Center())
		default:
			center := fs.categoryCenters[(node.Category-1)%len(fs.categoryCenters)]
			n := perCategory[node.Category]
			radius := categoryRingRadius * math.Sqrt(float64(n))
			node.Pos = pointOnCircle(k, n, radius, center)
		}
	}
}

// anchorOf returns the first existing neighbor of node i, nil if it has none.
func (fs *ForceSimulation) anchorOf(i int, existing func(i int) bool) *Node {
	for _, j := range fs.graph.neighbors(i) {
		if existing(j) {
			return fs.graph.Nodes[j]
		}
	}
	return nil
}

func VectorClampVector(v, min, max vector.Vector) vector.Vector {
	return vector.Vector{
		clamp(v.X(), min.X(), max.X()),
		clamp(v.Y(), min.Y(), max.Y()),
	}
}

// updatePositions integrates the accumulated forces:
//
//	v = (v + a) * VelocityDecay
//	x = x + v
//
// Pinned nodes are held at their fixed position with zero velocity.
func (fs *ForceSimulation) updatePositions() {
	outOfBoundsFactor := fs.conf.ScreenMultiplierToClampPosition
	center := fs.conf.Rect.Center()
	extent := vector.Vector{outOfBoundsFactor * fs.conf.Rect.Width, outOfBoundsFactor * fs.conf.Rect.Height}
	boundsMin := center.Sub(extent)
	boundsMax := center.Add(extent)
	for _, node := range fs.graph.Nodes {
		if node.fixed != nil {
			node.Pos = vector.Vector{node.fixed[0], node.fixed[1]}
			node.vel = vector.Vector{0, 0}
			continue
		}
		vector.In(node.vel).Add(node.acc)
		vector.In(node.vel).Scale(fs.conf.VelocityDecay)
		vector.In(node.Pos).Add(node.vel)
		node.Pos = VectorClampVector(node.Pos, boundsMin, boundsMax)
	}
}

func (fs *ForceSimulation) resetAcceleration() {
	for _, node := range fs.graph.Nodes {
		node.acc = vector.Vector{0, 0}
	}
}
