package controller

import (
	"testing"

	"github.com/golang/mock/gomock"
	"github.com/pkg/errors"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/suxatcode/concentric-layout/db"
	"github.com/suxatcode/concentric-layout/layout"
)

func TestController_Layout(t *testing.T) {
	query := db.Query{Entities: []string{"A"}, CategoryCount: map[int]int{2: 1}}
	for _, test := range []struct {
		Name             string
		MockExpectations func(mock *db.MockDataSource)
		ExpectErr        bool
		ExpectPositions  []string
		LogContains      string
	}{
		{
			Name: "dataset laid out to completion",
			MockExpectations: func(mock *db.MockDataSource) {
				mock.EXPECT().Dataset(gomock.Any(), query).Return(&testDataset, nil)
			},
			ExpectPositions: []string{"A", "B", "C", "D"},
		},
		{
			Name: "data source fails",
			MockExpectations: func(mock *db.MockDataSource) {
				mock.EXPECT().Dataset(gomock.Any(), query).Return(nil, errors.New("AAA"))
			},
			ExpectErr:   true,
			LogContains: "AAA",
		},
		{
			Name: "data source returns invalid data",
			MockExpectations: func(mock *db.MockDataSource) {
				mock.EXPECT().Dataset(gomock.Any(), query).Return(&layout.Dataset{
					Nodes: []layout.DatasetNode{{ID: "A", Category: 0}},
				}, nil)
			},
			ExpectErr:   true,
			LogContains: "invalid category",
		},
	} {
		t.Run(test.Name, func(t *testing.T) {
			assert := assert.New(t)
			ctx, logBuffer := testContext(zerolog.ErrorLevel)
			ctrl := gomock.NewController(t)
			source := db.NewMockDataSource(ctrl)
			test.MockExpectations(source)
			c := NewController(source, layout.SimulationConfig{Seed: 1})
			snap, stats, err := c.Layout(ctx, query, layout.DefaultForceConfig())
			assert.Contains(logBuffer.String(), test.LogContains)
			if test.ExpectErr {
				assert.Error(err)
				assert.Equal(layout.Snapshot{}, snap)
				return
			}
			assert.NoError(err)
			assert.True(snap.Settled)
			assert.Equal(stats.Iterations, snap.Tick)
			for _, id := range test.ExpectPositions {
				assert.Contains(snap.Positions, id)
			}
		})
	}
}

func TestController_Layout_deterministic(t *testing.T) {
	assert := assert.New(t)
	ctrl := gomock.NewController(t)
	source := db.NewMockDataSource(ctrl)
	source.EXPECT().Dataset(gomock.Any(), db.Query{}).Return(&testDataset, nil).Times(2)
	c := NewController(source, layout.SimulationConfig{Seed: 42})
	ctx, _ := testContext(zerolog.Disabled)
	first, _, err := c.Layout(ctx, db.Query{}, layout.DefaultForceConfig())
	assert.NoError(err)
	second, _, err := c.Layout(ctx, db.Query{}, layout.DefaultForceConfig())
	assert.NoError(err)
	assert.Equal(first, second)
}
