package controller

import (
	"context"
	"io"
	"sync"
	"time"

	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"
	"github.com/suxatcode/concentric-layout/db"
	"github.com/suxatcode/concentric-layout/layout"
)

var ErrSessionRunning = errors.New("layout session is already running")

// command mutates the simulation. Commands submitted while a run is in
// progress are applied at the start of the next tick.
type command func(s *Session)

// Session binds a dataset to a force simulation and drives its tick loop.
// All methods are safe for concurrent use; Run blocks until the layout is
// settled or cancelled.
type Session struct {
	mu        sync.Mutex
	sim       *layout.ForceSimulation
	running   bool
	cancelled bool
	queue     []command
	// ids of the nodes currently pinned by Pin
	dragged map[string]bool
}

func NewSession(conf layout.SimulationConfig) *Session {
	return &Session{
		sim:     layout.NewForceSimulation(conf),
		dragged: map[string]bool{},
	}
}

// Run validates ds, initializes the simulation with it and ticks until the
// layout is settled, Cancel is called or ctx is done. onTick receives a
// snapshot after every tick; an error returned by onTick ends the run with
// that error. An invalid dataset is reported as *layout.DataError before any
// snapshot is emitted.
func (s *Session) Run(ctx context.Context, ds *layout.Dataset, forces layout.ForceConfig, onTick func(layout.Snapshot) error) (layout.Stats, error) {
	stats := layout.Stats{}
	if ds == nil {
		ds = &layout.Dataset{}
	}
	g, err := layout.NewGraph(*ds, layout.MaxCategories)
	if err != nil {
		log.Ctx(ctx).Error().Msgf("%v", err)
		return stats, err
	}
	s.mu.Lock()
	if s.running {
		s.mu.Unlock()
		return stats, ErrSessionRunning
	}
	s.running = true
	s.cancelled = false
	s.queue = nil
	s.dragged = map[string]bool{}
	s.sim.Initialize(g, forces)
	s.mu.Unlock()
	defer func() {
		s.mu.Lock()
		s.running = false
		s.cancelled = false
		s.queue = nil
		s.mu.Unlock()
	}()

	start := time.Now()
	defer func() {
		stats.TotalTime = time.Since(start)
		log.Ctx(ctx).Info().Msgf(
			"graph layout computation finished: stats{iterations: %d, time: %d ms}",
			stats.Iterations,
			stats.TotalTime.Milliseconds(),
		)
	}()
	for {
		if err := ctx.Err(); err != nil {
			return stats, err
		}
		s.mu.Lock()
		if s.cancelled {
			s.mu.Unlock()
			log.Ctx(ctx).Debug().Msg("layout cancelled")
			return stats, nil
		}
		s.drain()
		settled := s.sim.Tick()
		snap := s.sim.Snapshot()
		s.mu.Unlock()
		stats.Iterations++
		if err := onTick(snap); err != nil {
			return stats, err
		}
		if settled {
			return stats, nil
		}
	}
}

// RunFromSource fetches the dataset selected by q from source and runs it.
func (s *Session) RunFromSource(ctx context.Context, source db.DataSource, q db.Query, forces layout.ForceConfig, onTick func(layout.Snapshot) error) (layout.Stats, error) {
	ds, err := source.Dataset(ctx, q)
	if err != nil {
		log.Ctx(ctx).Error().Msgf("%v", err)
		return layout.Stats{}, errors.Wrap(err, "failed to fetch dataset")
	}
	return s.Run(ctx, ds, forces, onTick)
}

// drain applies all queued commands, s.mu must be held.
func (s *Session) drain() {
	for _, cmd := range s.queue {
		cmd(s)
	}
	s.queue = nil
}

func (s *Session) submit(cmd command) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.running {
		s.queue = append(s.queue, cmd)
		return
	}
	cmd(s)
}

// UpdateForces replaces the force parameters without discarding positions
// and reheats the simulation.
func (s *Session) UpdateForces(forces layout.ForceConfig) {
	s.submit(func(s *Session) {
		s.sim.ApplyForces(forces)
		s.sim.Reheat(1.0)
	})
}

// OverrideForces changes the force parameters given in the JSON object data
// and keeps all others, then reheats like UpdateForces. Malformed data is
// rejected before anything is queued.
func (s *Session) OverrideForces(data []byte) error {
	if _, err := s.Forces().WithOverrides(data); err != nil {
		return err
	}
	s.submit(func(s *Session) {
		// data decoded without error above
		forces, _ := s.sim.Forces().WithOverrides(data)
		s.sim.ApplyForces(forces)
		s.sim.Reheat(1.0)
	})
	return nil
}

// Forces returns the force parameters in effect.
func (s *Session) Forces() layout.ForceConfig {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.sim.Forces().Clone()
}

// UpdateDataset replaces the dataset. Nodes that already exist keep their
// state, new ones are placed next to their neighbors.
func (s *Session) UpdateDataset(ds *layout.Dataset) error {
	if ds == nil {
		ds = &layout.Dataset{}
	}
	g, err := layout.NewGraph(*ds, layout.MaxCategories)
	if err != nil {
		return err
	}
	s.submit(func(s *Session) {
		s.sim.Update(g)
		for id := range s.dragged {
			if g.Node(id) == nil {
				delete(s.dragged, id)
			}
		}
		if len(s.dragged) == 0 {
			s.sim.ResetAlphaTarget()
		}
	})
	return nil
}

// Pin fixes node id at (x, y) and keeps the layout warm until the node is
// unpinned. Unknown ids are ignored.
func (s *Session) Pin(id string, x, y float64) {
	s.submit(func(s *Session) {
		if !s.sim.SetPinned(id, x, y) {
			log.Warn().Msgf("cannot pin unknown node '%s'", id)
			return
		}
		s.dragged[id] = true
		s.sim.SetAlphaTarget(s.sim.Config().DragAlphaTarget)
	})
}

// Unpin releases node id. Once no node is pinned anymore, the configured
// alpha target is restored.
func (s *Session) Unpin(id string) {
	s.submit(func(s *Session) {
		if !s.sim.ClearPinned(id) {
			log.Warn().Msgf("cannot unpin unknown node '%s'", id)
			return
		}
		delete(s.dragged, id)
		if len(s.dragged) == 0 {
			s.sim.ResetAlphaTarget()
		}
	})
}

// Cancel stops a running layout before its next tick. Without a running
// layout it does nothing.
func (s *Session) Cancel() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.running {
		s.cancelled = true
	}
}

func (s *Session) Running() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.running
}

// Snapshot returns the current state, also between runs.
func (s *Session) Snapshot() layout.Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.sim.Snapshot()
}

// DrawPNG renders the current layout.
func (s *Session) DrawPNG(w io.Writer, width, height int, invertColor bool) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	g := s.sim.Graph()
	if g == nil {
		g = &layout.Graph{}
	}
	return layout.DrawGraph(w, g, s.sim.Hulls(), width, height, invertColor)
}
