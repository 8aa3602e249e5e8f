package layout

import (
	"testing"

	"github.com/quartercastle/vector"
	"github.com/stretchr/testify/assert"
)

func pos(v float64) *float64 { return &v }

func nodeAt(id string, category int, x, y float64) DatasetNode {
	return DatasetNode{ID: id, Category: category, X: pos(x), Y: pos(y)}
}

func newTestGraph(t *testing.T, nodes []DatasetNode, links []DatasetLink) *Graph {
	g, err := NewGraph(Dataset{Nodes: nodes, Links: links}, 4)
	assert.NoError(t, err)
	return g
}

func TestNormalizeDistance(t *testing.T) {
	for _, test := range []struct {
		Name string
		X    float64
		XMax float64
		Exp  float64
	}{
		{Name: "most frequent link is shortest", X: 10, XMax: 10, Exp: 1},
		{Name: "least frequent link is longest", X: 1, XMax: 10, Exp: 50},
		{Name: "in between", X: 5.5, XMax: 10, Exp: 25.5},
		{Name: "below range is clamped", X: 0.5, XMax: 10, Exp: 50},
		{Name: "degenerate range", X: 5, XMax: 1, Exp: 1},
	} {
		t.Run(test.Name, func(t *testing.T) {
			assert.InDelta(t, test.Exp, NormalizeDistance(test.X, 1, test.XMax, 1, 50), 1e-12)
		})
	}
}

func TestCategoryCenters(t *testing.T) {
	centers := CategoryCenters(4, 100, vector.Vector{450, 450})
	assert.Equal(t, []vector.Vector{{550, 450}, {450, 550}, {350, 450}, {450, 350}}, centers)
}

func TestLinkForce(t *testing.T) {
	g := newTestGraph(t,
		[]DatasetNode{nodeAt("A", 1, 0, 0), nodeAt("B", 1, 100, 0)},
		[]DatasetLink{{Source: "A", Target: "B", Freq: 1}},
	)
	conf := DefaultForceConfig().Link
	initializeLinks(g, conf)
	assert := assert.New(t)
	assert.Equal(1.0, g.Links[0].distance)
	assert.Equal(1.0, g.Links[0].strength)
	assert.Equal(0.5, g.Links[0].bias)
	conf.Strength = 1
	applyLinkForce(g, conf, 1)
	// (100 - 1) / 100 * 100, split evenly
	assert.InDelta(49.5, g.Nodes[0].acc.X(), 1e-6)
	assert.InDelta(-49.5, g.Nodes[1].acc.X(), 1e-6)
}

func TestLinkForce_bias(t *testing.T) {
	g := newTestGraph(t,
		[]DatasetNode{nodeAt("hub", 1, 0, 0), nodeAt("B", 1, 100, 0), nodeAt("C", 1, -100, 0), nodeAt("D", 1, 0, 100)},
		[]DatasetLink{
			{Source: "hub", Target: "B", Freq: 1},
			{Source: "hub", Target: "C", Freq: 1},
			{Source: "hub", Target: "D", Freq: 1},
		},
	)
	initializeLinks(g, DefaultForceConfig().Link)
	assert := assert.New(t)
	for _, link := range g.Links {
		assert.Equal(0.75, link.bias, "the leaf takes most of the correction")
		assert.Equal(1.0, link.strength)
	}
}

func TestChargeForce_parallel(t *testing.T) {
	nodes := []DatasetNode{}
	for i := 0; i < 40; i++ {
		nodes = append(nodes, nodeAt(string(rune('a'+i)), 1, float64(i*i%97), float64(i*7%53)))
	}
	sequential := newTestGraph(t, nodes, nil)
	parallel := newTestGraph(t, nodes, nil)
	conf := DefaultForceConfig().Charge
	applyChargeForce(sequential.Nodes, conf, QUADTREE_DEFAULT_CONFIG, 0.5, 0)
	applyChargeForce(parallel.Nodes, conf, QUADTREE_DEFAULT_CONFIG, 0.5, 4)
	for i := range sequential.Nodes {
		assert.Equal(t, sequential.Nodes[i].acc, parallel.Nodes[i].acc)
	}
}

func TestChargeForce_naive(t *testing.T) {
	g := newTestGraph(t, []DatasetNode{nodeAt("A", 1, 0, 0), nodeAt("B", 1, 10, 0)}, nil)
	conf := ChargeConfig{Enabled: true, Strength: -30, DistanceMin: 1, DistanceMax: 1000, Theta: 0.9, BarnesHut: false}
	applyChargeForce(g.Nodes, conf, QUADTREE_DEFAULT_CONFIG, 1, 0)
	assert := assert.New(t)
	assert.InDelta(-3.0, g.Nodes[0].acc.X(), 1e-9)
	assert.InDelta(3.0, g.Nodes[1].acc.X(), 1e-9)
}

func TestCollideForce(t *testing.T) {
	assert := assert.New(t)
	t.Run("overlapping nodes are pushed apart", func(t *testing.T) {
		g := newTestGraph(t, []DatasetNode{nodeAt("A", 1, 0, 0), nodeAt("B", 1, 10, 0)}, nil)
		applyCollideForce(g.Nodes, CollideConfig{Enabled: true, Strength: 1, Iterations: 1, Radius: 29}, QUADTREE_DEFAULT_CONFIG)
		assert.Less(g.Nodes[0].acc.X(), 0.0)
		assert.Greater(g.Nodes[1].acc.X(), 0.0)
		assert.InDelta(-g.Nodes[0].acc.X(), g.Nodes[1].acc.X(), 1e-9)
		// overlap of 48, split evenly
		assert.InDelta(24.0, g.Nodes[1].acc.X(), 1e-6)
	})
	t.Run("distant nodes are left alone", func(t *testing.T) {
		g := newTestGraph(t, []DatasetNode{nodeAt("A", 1, 0, 0), nodeAt("B", 1, 100, 0)}, nil)
		applyCollideForce(g.Nodes, CollideConfig{Enabled: true, Strength: 1, Iterations: 1, Radius: 29}, QUADTREE_DEFAULT_CONFIG)
		assert.Equal(vector.Vector{0, 0}, g.Nodes[0].acc)
		assert.Equal(vector.Vector{0, 0}, g.Nodes[1].acc)
	})
}

func TestCenterForce(t *testing.T) {
	g := newTestGraph(t, []DatasetNode{nodeAt("A", 1, 50, 50), nodeAt("B", 1, 150, 150)}, nil)
	applyCenterForce(g.Nodes, CenterConfig{Enabled: true, X: 0.5, Y: 0.5, Strength: 0.1}, Rect{0, 0, 900, 900})
	assert := assert.New(t)
	for _, node := range g.Nodes {
		assert.InDelta(35.0, node.acc.X(), 1e-9)
		assert.InDelta(35.0, node.acc.Y(), 1e-9)
	}
}

func TestSeparationForce(t *testing.T) {
	g := newTestGraph(t, []DatasetNode{nodeAt("A", 1, 450, 450), nodeAt("B", 2, 450, 450)}, nil)
	centers := CategoryCenters(4, 100, vector.Vector{450, 450})
	applySeparationForce(g.Nodes, SeparationConfig{Enabled: true, Strength: 0.5, Radius: 100}, centers, 1)
	assert := assert.New(t)
	assert.Equal(vector.Vector{50, 0}, g.Nodes[0].acc)
	assert.Equal(vector.Vector{0, 50}, g.Nodes[1].acc)
}

func TestRadialForce(t *testing.T) {
	g := newTestGraph(t, []DatasetNode{nodeAt("A", 1, 550, 450), nodeAt("B", 2, 750, 450)}, nil)
	conf := RadialConfig{Enabled: true, Strength: 1, CategoryRadius: []float64{200, 200}}
	applyRadialForce(g.Nodes, conf, vector.Vector{450, 450}, 1)
	assert := assert.New(t)
	assert.InDelta(100.0, g.Nodes[0].acc.X(), 1e-6, "pushed outwards onto its ring")
	assert.InDelta(-100.0, g.Nodes[1].acc.X(), 1e-6, "pulled inwards onto its ring")
}

func TestDisabledForcesContributeNothing(t *testing.T) {
	g := newTestGraph(t,
		[]DatasetNode{nodeAt("A", 1, 0, 0), nodeAt("B", 2, 10, 0), nodeAt("C", 3, 10, 10)},
		[]DatasetLink{{Source: "A", Target: "B", Freq: 2}, {Source: "B", Target: "C", Freq: 1}},
	)
	fs := NewForceSimulation(SimulationConfig{})
	fs.Initialize(g, DefaultForceConfig().AllDisabled())
	fs.Tick()
	assert := assert.New(t)
	for _, node := range g.Nodes {
		assert.Equal(vector.Vector{0, 0}, node.acc)
	}
	assert.Equal(vector.Vector{0, 0}, g.Nodes[0].Pos)
	assert.Equal(vector.Vector{10, 10}, g.Nodes[2].Pos)
}
