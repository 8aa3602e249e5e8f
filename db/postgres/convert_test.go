package postgres

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/suxatcode/concentric-layout/layout"
	"gorm.io/gorm"
)

func TestToDataset(t *testing.T) {
	for _, test := range []struct {
		Name string
		InpE []Entity
		InpC []Cooccurrence
		Exp  *layout.Dataset
	}{
		{
			Name: "entities and links",
			InpE: []Entity{{Model: gorm.Model{ID: 7}, Name: "a", Category: 1, Label: "A"}, {Name: "b", Category: 2}},
			InpC: []Cooccurrence{{Source: "a", Target: "b", Freq: 3}},
			Exp: &layout.Dataset{
				Nodes: []layout.DatasetNode{{ID: "a", Category: 1, Label: "A"}, {ID: "b", Category: 2}},
				Links: []layout.DatasetLink{{Source: "a", Target: "b", Freq: 3}},
			},
		},
		{
			Name: "dangling co-occurrence is dropped",
			InpE: []Entity{{Name: "a", Category: 1}},
			InpC: []Cooccurrence{{Source: "a", Target: "gone", Freq: 3}},
			Exp: &layout.Dataset{
				Nodes: []layout.DatasetNode{{ID: "a", Category: 1}},
				Links: []layout.DatasetLink{},
			},
		},
		{
			Name: "empty",
			Exp:  &layout.Dataset{Nodes: []layout.DatasetNode{}, Links: []layout.DatasetLink{}},
		},
	} {
		t.Run(test.Name, func(t *testing.T) {
			assert.Equal(t, test.Exp, toDataset(test.InpE, test.InpC))
		})
	}
}

func TestFromDataset(t *testing.T) {
	assert := assert.New(t)
	entities, links := fromDataset(&layout.Dataset{
		Nodes: []layout.DatasetNode{{ID: "a", Category: 1, Label: "A"}, {ID: "b", Category: 2}},
		Links: []layout.DatasetLink{
			{Source: "a", Target: "b", Freq: 3},
			{Source: "b", Target: "a", Freq: 1},
			{Source: "a", Target: "b", Freq: 2},
		},
	})
	assert.Equal([]Entity{{Name: "a", Category: 1, Label: "A"}, {Name: "b", Category: 2}}, entities)
	assert.Equal([]Cooccurrence{{Source: "a", Target: "b", Freq: 5}, {Source: "b", Target: "a", Freq: 1}}, links)
}
