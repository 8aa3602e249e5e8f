//go:build integration

package postgres

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/suxatcode/concentric-layout/db"
	"github.com/suxatcode/concentric-layout/layout"
)

var testDataset = layout.Dataset{
	Nodes: []layout.DatasetNode{
		{ID: "seed", Category: 1},
		{ID: "a", Category: 2, Label: "Alpha"},
		{ID: "b", Category: 2},
		{ID: "c", Category: 3},
		{ID: "far", Category: 3},
	},
	Links: []layout.DatasetLink{
		{Source: "seed", Target: "a", Freq: 5},
		{Source: "b", Target: "seed", Freq: 9},
		{Source: "seed", Target: "c", Freq: 1},
		{Source: "a", Target: "b", Freq: 2},
		{Source: "c", Target: "far", Freq: 4},
	},
}

func TestPostgresDB_NewPostgresDB(t *testing.T) {
	assert := assert.New(t)
	pg, err := NewPostgresDB(TESTONLY_Config)
	assert.NoError(err)
	assert.NoError(pg.Close())
}

func TestPostgresDB_Import(t *testing.T) {
	pg := TESTONLY_SetupAndCleanup(t)
	assert := assert.New(t)
	ctx := context.Background()
	assert.NoError(pg.Import(ctx, &testDataset))
	entities := []Entity{}
	assert.NoError(pg.db.Find(&entities).Error)
	assert.Len(entities, 5)
	t.Run("re-import updates in place", func(t *testing.T) {
		assert := assert.New(t)
		update := layout.Dataset{
			Nodes: []layout.DatasetNode{{ID: "a", Category: 3, Label: "A"}, {ID: "seed", Category: 1}},
			Links: []layout.DatasetLink{{Source: "seed", Target: "a", Freq: 8}},
		}
		assert.NoError(pg.Import(ctx, &update))
		entity := Entity{}
		assert.NoError(pg.db.Where("name = ?", "a").First(&entity).Error)
		assert.Equal(3, entity.Category)
		assert.Equal("A", entity.Label)
		links := []Cooccurrence{}
		assert.NoError(pg.db.Find(&links).Error)
		assert.Len(links, 5)
		link := Cooccurrence{}
		assert.NoError(pg.db.Where("source = ? AND target = ?", "seed", "a").First(&link).Error)
		assert.Equal(8.0, link.Freq)
	})
	t.Run("invalid dataset is rejected", func(t *testing.T) {
		invalid := layout.Dataset{Links: []layout.DatasetLink{{Source: "x", Target: "y", Freq: 1}}}
		assert.Error(t, pg.Import(ctx, &invalid))
	})
}

func TestPostgresDB_Dataset(t *testing.T) {
	pg := TESTONLY_SetupAndCleanup(t)
	ctx := context.Background()
	assert.NoError(t, pg.Import(ctx, &testDataset))
	for _, test := range []struct {
		Name     string
		Query    db.Query
		ExpNodes []string
		ExpLinks int
	}{
		{
			Name:     "everything",
			Query:    db.Query{},
			ExpNodes: []string{"seed", "a", "b", "c", "far"},
			ExpLinks: 5,
		},
		{
			Name:     "neighbourhood of the seed",
			Query:    db.Query{Entities: []string{"seed"}, CategoryCount: map[int]int{2: 2, 3: 1}},
			ExpNodes: []string{"seed", "a", "b", "c"},
			ExpLinks: 4,
		},
		{
			Name:     "unknown seed",
			Query:    db.Query{Entities: []string{"nope"}},
			ExpNodes: []string{},
			ExpLinks: 0,
		},
	} {
		t.Run(test.Name, func(t *testing.T) {
			assert := assert.New(t)
			ds, err := pg.Dataset(ctx, test.Query)
			if !assert.NoError(err) {
				return
			}
			ids := []string{}
			for _, n := range ds.Nodes {
				ids = append(ids, n.ID)
			}
			assert.ElementsMatch(test.ExpNodes, ids)
			assert.Len(ds.Links, test.ExpLinks)
		})
	}
}
