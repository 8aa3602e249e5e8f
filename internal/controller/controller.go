package controller

import (
	"context"

	"github.com/rs/zerolog/log"
	"github.com/suxatcode/concentric-layout/db"
	"github.com/suxatcode/concentric-layout/layout"
)

// Controller creates layout sessions on top of a data source.
type Controller struct {
	source db.DataSource
	conf   layout.SimulationConfig
}

func NewController(source db.DataSource, conf layout.SimulationConfig) *Controller {
	return &Controller{source: source, conf: conf}
}

func (c *Controller) NewSession() *Session {
	return NewSession(c.conf)
}

// Dataset forwards q to the data source.
func (c *Controller) Dataset(ctx context.Context, q db.Query) (*layout.Dataset, error) {
	ds, err := c.source.Dataset(ctx, q)
	if err != nil {
		log.Ctx(ctx).Error().Msgf("%v", err)
		return nil, err
	}
	if ds != nil {
		log.Ctx(ctx).Debug().Msgf("Dataset(%v) -> %d nodes, %d links", q.Entities, len(ds.Nodes), len(ds.Links))
	}
	return ds, nil
}

// Layout runs the dataset selected by q to completion and returns the final
// snapshot.
func (c *Controller) Layout(ctx context.Context, q db.Query, forces layout.ForceConfig) (layout.Snapshot, layout.Stats, error) {
	last := layout.Snapshot{}
	stats, err := c.NewSession().RunFromSource(ctx, c, q, forces, func(snap layout.Snapshot) error {
		last = snap
		return nil
	})
	if err != nil {
		return layout.Snapshot{}, stats, err
	}
	return last, stats, nil
}
