package layout

import (
	"encoding/json"
	"fmt"
	"math"

	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"
	"golang.org/x/exp/constraints"
)

const (
	canvasWidth  = 900.0
	canvasHeight = 900.0
	// MaxCategories bounds the size of per-category tables.
	MaxCategories      = 64
	maxChargeMagnitude = 10000.0
)

// SimulationConfig holds everything the engine needs besides the forces
// themselves: canvas, annealing schedule, seeding and hull parameters.
type SimulationConfig struct {
	// Rect is the canvas. Forces anchored at "the center" use Rect.Center().
	Rect Rect
	// initial temperature of simulation, also used by Initialize
	AlphaInit float64
	// simulation is settled once alpha drops to AlphaMin
	AlphaMin float64
	// fraction of the distance to AlphaTarget that alpha moves per tick
	AlphaDecay float64
	// target temperature of simulation
	AlphaTarget float64
	// VelocityDecay is the multiplier applied to the velocity every tick:
	//	v = (v + a) * VelocityDecay
	VelocityDecay float64
	// ForceMinimumTicks is the minimum number of ticks after Initialize,
	// Reheat or an update before the simulation may report itself settled.
	ForceMinimumTicks int
	// ReseedAlpha is the alpha the simulation is reheated to after the
	// dataset changed.
	ReseedAlpha float64
	// DragAlphaTarget is the alpha target used while at least one node is
	// dragged, which keeps the layout warm around the dragged node.
	DragAlphaTarget float64
	// Seed of the pseudo-random source used for initial placement and
	// re-seeding. The same seed yields the same sequence of positions.
	Seed uint64
	// RandomFloat overrides the seeded source, returns values in [0, 1).
	RandomFloat func() float64
	// InitialLayout defines how nodes are initialized before the force
	// simulation starts
	InitialLayout InitialLayout
	// Parallelization is the number of goroutines used to evaluate the
	// many-body force. 0 evaluates it on the calling goroutine.
	Parallelization int
	QuadTree        QuadTreeConfig
	// positions are clamped to Rect scaled by this factor around its center,
	// to keep nodes from flying away to infinity
	ScreenMultiplierToClampPosition float64
	// HullPadding is the clearance between a category's nodes and its hull.
	HullPadding float64
	// HullSegments is the number of segments used to round a full turn of
	// hull corners.
	HullSegments int
}

type InitialLayout int

const (
	InitialLayoutUndefined InitialLayout = iota
	// initialize nodes in a circle, evenly spread
	InitialLayoutCircle
	// initialize nodes randomly
	InitialLayoutRandom
	// initialize nodes on a small ring around their category center
	InitialLayoutCategoryRing
	// initialize nodes on a sunflower spiral around the canvas center
	InitialLayoutPhyllotaxis
)

func (l InitialLayout) String() string {
	switch l {
	case InitialLayoutCircle:
		return "circle"
	case InitialLayoutRandom:
		return "random"
	case InitialLayoutCategoryRing:
		return "category-ring"
	case InitialLayoutPhyllotaxis:
		return "phyllotaxis"
	}
	return "undefined"
}

// ParseInitialLayout is the inverse of InitialLayout.String.
func ParseInitialLayout(s string) (InitialLayout, error) {
	for _, l := range []InitialLayout{InitialLayoutCircle, InitialLayoutRandom, InitialLayoutCategoryRing, InitialLayoutPhyllotaxis} {
		if l.String() == s {
			return l, nil
		}
	}
	return InitialLayoutUndefined, errors.Errorf("unknown initial layout '%s'", s)
}

var DefaultSimulationConfig = SimulationConfig{
	Rect:                            Rect{0.0, 0.0, canvasWidth, canvasHeight},
	AlphaInit:                       1.0,
	AlphaMin:                        0.001,
	AlphaDecay:                      1 - math.Pow(0.001, 1.0/300),
	AlphaTarget:                     0.0,
	VelocityDecay:                   0.6,
	ReseedAlpha:                     0.5,
	DragAlphaTarget:                 0.3,
	InitialLayout:                   InitialLayoutCategoryRing,
	QuadTree:                        QUADTREE_DEFAULT_CONFIG,
	ScreenMultiplierToClampPosition: 10.0,
	HullPadding:                     25.0,
	HullSegments:                    32,
}

// withDefaults replaces zero values by their DefaultSimulationConfig
// counterpart.
func (conf SimulationConfig) withDefaults() SimulationConfig {
	if conf.Rect.Width == 0.0 || conf.Rect.Height == 0.0 {
		conf.Rect = DefaultSimulationConfig.Rect
	}
	if conf.AlphaInit == 0.0 {
		conf.AlphaInit = DefaultSimulationConfig.AlphaInit
	}
	if conf.AlphaMin == 0.0 {
		conf.AlphaMin = DefaultSimulationConfig.AlphaMin
	}
	if conf.AlphaDecay == 0.0 {
		conf.AlphaDecay = DefaultSimulationConfig.AlphaDecay
	}
	if conf.VelocityDecay == 0.0 {
		conf.VelocityDecay = DefaultSimulationConfig.VelocityDecay
	}
	if conf.ReseedAlpha == 0.0 {
		conf.ReseedAlpha = DefaultSimulationConfig.ReseedAlpha
	}
	if conf.DragAlphaTarget == 0.0 {
		conf.DragAlphaTarget = DefaultSimulationConfig.DragAlphaTarget
	}
	if conf.InitialLayout == InitialLayoutUndefined {
		conf.InitialLayout = DefaultSimulationConfig.InitialLayout
	}
	if conf.QuadTree.CapacityOfEachBlock == 0 {
		conf.QuadTree.CapacityOfEachBlock = DefaultSimulationConfig.QuadTree.CapacityOfEachBlock
	}
	if conf.QuadTree.MaxDepth == 0 {
		conf.QuadTree.MaxDepth = DefaultSimulationConfig.QuadTree.MaxDepth
	}
	if conf.ScreenMultiplierToClampPosition == 0.0 {
		conf.ScreenMultiplierToClampPosition = DefaultSimulationConfig.ScreenMultiplierToClampPosition
	}
	if conf.HullPadding == 0.0 {
		conf.HullPadding = DefaultSimulationConfig.HullPadding
	}
	if conf.HullSegments == 0 {
		conf.HullSegments = DefaultSimulationConfig.HullSegments
	}
	return conf
}

// Sanitize clamps every value into its valid range. Each clamped value is
// reported as a *ConfigError.
func (conf SimulationConfig) Sanitize() (SimulationConfig, []error) {
	s := sanitizer{}
	s.float("alphaInit", &conf.AlphaInit, 0, 1)
	s.float("alphaMin", &conf.AlphaMin, 0, 1)
	s.float("alphaDecay", &conf.AlphaDecay, 0, 1)
	s.float("alphaTarget", &conf.AlphaTarget, 0, 1)
	s.float("velocityDecay", &conf.VelocityDecay, 0, 1)
	s.float("reseedAlpha", &conf.ReseedAlpha, 0, 1)
	s.float("dragAlphaTarget", &conf.DragAlphaTarget, 0, 1)
	s.int("forceMinimumTicks", &conf.ForceMinimumTicks, 0, math.MaxInt32)
	s.int("parallelization", &conf.Parallelization, 0, 1024)
	s.float("hullPadding", &conf.HullPadding, 0, math.MaxFloat64)
	s.int("hullSegments", &conf.HullSegments, 3, 1024)
	return conf, s.errs
}

type CenterConfig struct {
	Enabled bool `json:"enabled" yaml:"enabled"`
	// X and Y are fractions of the canvas width and height
	X        float64 `json:"x" yaml:"x"`
	Y        float64 `json:"y" yaml:"y"`
	Strength float64 `json:"strength" yaml:"strength"`
}

type ChargeConfig struct {
	Enabled bool `json:"enabled" yaml:"enabled"`
	// negative strength repels, positive attracts, as in d3-force
	Strength    float64 `json:"strength" yaml:"strength"`
	DistanceMin float64 `json:"distanceMin" yaml:"distanceMin"`
	DistanceMax float64 `json:"distanceMax" yaml:"distanceMax"`
	// Theta defines the accuracy of the Barnes-Hut approximation, see
	// https://en.wikipedia.org/wiki/Barnes%E2%80%93Hut_simulation#Calculating_the_force_acting_on_a_body
	Theta float64 `json:"theta" yaml:"theta"`
	// BarnesHut selects the quadtree approximation, the naive pairwise
	// computation is used otherwise.
	BarnesHut bool `json:"barnesHut" yaml:"barnesHut"`
}

type CollideConfig struct {
	Enabled    bool    `json:"enabled" yaml:"enabled"`
	Strength   float64 `json:"strength" yaml:"strength"`
	Iterations int     `json:"iterations" yaml:"iterations"`
	Radius     float64 `json:"radius" yaml:"radius"`
}

type SeparationConfig struct {
	Enabled  bool    `json:"enabled" yaml:"enabled"`
	Strength float64 `json:"strength" yaml:"strength"`
	// Radius of the circle on which the category centers are placed
	Radius float64 `json:"radius" yaml:"radius"`
}

type LinkConfig struct {
	Enabled    bool    `json:"enabled" yaml:"enabled"`
	Strength   float64 `json:"strength" yaml:"strength"`
	Iterations int     `json:"iterations" yaml:"iterations"`
	// rest lengths are interpolated between MinDistance (most frequent
	// link) and MaxDistance (least frequent link)
	MinDistance float64 `json:"minDistance" yaml:"minDistance"`
	MaxDistance float64 `json:"maxDistance" yaml:"maxDistance"`
}

type RadialConfig struct {
	Enabled  bool    `json:"enabled" yaml:"enabled"`
	Strength float64 `json:"strength" yaml:"strength"`
	// CategoryRadius[c-1] is the target distance from the canvas center for
	// nodes of category c
	CategoryRadius []float64 `json:"categoryRadius" yaml:"categoryRadius"`
}

// ForceConfig is the complete, explicit set of force parameters. The engine
// keeps its own copy, changes only take effect through ApplyForces.
type ForceConfig struct {
	Categories int              `json:"categories" yaml:"categories"`
	Center     CenterConfig     `json:"center" yaml:"center"`
	Charge     ChargeConfig     `json:"charge" yaml:"charge"`
	Collide    CollideConfig    `json:"collide" yaml:"collide"`
	Separation SeparationConfig `json:"separation" yaml:"separation"`
	Link       LinkConfig       `json:"link" yaml:"link"`
	Radial     RadialConfig     `json:"radial" yaml:"radial"`
}

// DefaultForceConfig returns the force parameters of the concentric layout.
func DefaultForceConfig() ForceConfig {
	return ForceConfig{
		Categories: 4,
		Center:     CenterConfig{Enabled: false, X: 0.5, Y: 0.5, Strength: 0.1},
		Charge:     ChargeConfig{Enabled: true, Strength: -500, DistanceMin: 1, DistanceMax: 1000, Theta: 0.9, BarnesHut: true},
		Collide:    CollideConfig{Enabled: true, Strength: 0.4, Iterations: 1, Radius: 29},
		Separation: SeparationConfig{Enabled: true, Strength: 0.1, Radius: canvasWidth * 0.3},
		Link:       LinkConfig{Enabled: true, Strength: 0.9, Iterations: 1, MinDistance: 1, MaxDistance: 50},
		Radial:     RadialConfig{Enabled: false, Strength: 1, CategoryRadius: []float64{400, 300, 200, 1}},
	}
}

// Clone returns a copy of conf that shares no memory with it.
func (conf ForceConfig) Clone() ForceConfig {
	if conf.Radial.CategoryRadius != nil {
		conf.Radial.CategoryRadius = append([]float64{}, conf.Radial.CategoryRadius...)
	}
	return conf
}

// WithOverrides decodes the JSON object data on top of a copy of conf.
// Parameters missing from data keep their value in conf, a given
// radial.categoryRadius replaces the whole table.
func (conf ForceConfig) WithOverrides(data []byte) (ForceConfig, error) {
	res := conf.Clone()
	if len(data) == 0 {
		return res, nil
	}
	if err := json.Unmarshal(data, &res); err != nil {
		return conf, errors.Wrap(err, "invalid force parameters")
	}
	return res, nil
}

// AllDisabled returns conf with every force group switched off.
func (conf ForceConfig) AllDisabled() ForceConfig {
	conf.Center.Enabled = false
	conf.Charge.Enabled = false
	conf.Collide.Enabled = false
	conf.Separation.Enabled = false
	conf.Link.Enabled = false
	conf.Radial.Enabled = false
	return conf
}

// Sanitize returns a copy of conf with every value clamped into its valid
// range. Each clamped value is reported as a *ConfigError.
func (conf ForceConfig) Sanitize() (ForceConfig, []error) {
	s := sanitizer{}
	s.int("categories", &conf.Categories, 1, MaxCategories)
	s.float("center.x", &conf.Center.X, 0, 1)
	s.float("center.y", &conf.Center.Y, 0, 1)
	s.float("center.strength", &conf.Center.Strength, 0, 1)
	s.float("charge.strength", &conf.Charge.Strength, -maxChargeMagnitude, maxChargeMagnitude)
	s.float("charge.distanceMin", &conf.Charge.DistanceMin, 0, math.MaxFloat64)
	s.float("charge.distanceMax", &conf.Charge.DistanceMax, conf.Charge.DistanceMin, math.Inf(+1))
	s.float("charge.theta", &conf.Charge.Theta, 1e-3, 2)
	s.float("collide.strength", &conf.Collide.Strength, 0, 1)
	s.int("collide.iterations", &conf.Collide.Iterations, 1, 100)
	s.float("collide.radius", &conf.Collide.Radius, 0, math.MaxFloat64)
	s.float("separation.strength", &conf.Separation.Strength, 0, 1)
	s.float("separation.radius", &conf.Separation.Radius, 0, math.MaxFloat64)
	s.float("link.strength", &conf.Link.Strength, 0, 1)
	s.int("link.iterations", &conf.Link.Iterations, 1, 100)
	s.float("link.minDistance", &conf.Link.MinDistance, 0, math.MaxFloat64)
	s.float("link.maxDistance", &conf.Link.MaxDistance, conf.Link.MinDistance, math.MaxFloat64)
	s.float("radial.strength", &conf.Radial.Strength, 0, 1)
	radii := make([]float64, conf.Categories)
	copy(radii, conf.Radial.CategoryRadius)
	if len(conf.Radial.CategoryRadius) < conf.Categories {
		s.errs = append(s.errs, &ConfigError{
			Field:   "radial.categoryRadius",
			Value:   float64(len(conf.Radial.CategoryRadius)),
			Clamped: float64(conf.Categories),
		})
	}
	for i := range radii {
		s.float(fmt.Sprintf("radial.categoryRadius[%d]", i), &radii[i], 0, math.MaxFloat64)
	}
	conf.Radial.CategoryRadius = radii
	return conf, s.errs
}

func enabled(b bool) float64 {
	if b {
		return 1.0
	}
	return 0.0
}

func logConfigErrors(errs []error) {
	for _, err := range errs {
		log.Warn().Msgf("%v", err)
	}
}

type sanitizer struct {
	errs []error
}

func (s *sanitizer) float(field string, v *float64, lo, hi float64) {
	c := clamp(*v, lo, hi)
	if math.IsNaN(c) {
		c = lo
	}
	if c != *v {
		s.errs = append(s.errs, &ConfigError{Field: field, Value: *v, Clamped: c})
		*v = c
	}
}

func (s *sanitizer) int(field string, v *int, lo, hi int) {
	c := clamp(*v, lo, hi)
	if c != *v {
		s.errs = append(s.errs, &ConfigError{Field: field, Value: float64(*v), Clamped: float64(c)})
		*v = c
	}
}

func clamp[T constraints.Ordered](in, lo, hi T) T {
	if in > hi {
		return hi
	} else if in < lo {
		return lo
	}
	return in
}

func min[T constraints.Ordered](a, b T) T {
	if a < b {
		return a
	}
	return b
}

func max[T constraints.Ordered](a, b T) T {
	if a > b {
		return a
	}
	return b
}
