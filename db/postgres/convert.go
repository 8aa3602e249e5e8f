package postgres

import (
	"github.com/suxatcode/concentric-layout/layout"
)

// toDataset converts the stored rows into a dataset. Co-occurrences with an
// endpoint outside of entities are dropped.
func toDataset(entities []Entity, links []Cooccurrence) *layout.Dataset {
	ds := &layout.Dataset{
		Nodes: make([]layout.DatasetNode, 0, len(entities)),
		Links: make([]layout.DatasetLink, 0, len(links)),
	}
	known := make(map[string]bool, len(entities))
	for _, e := range entities {
		known[e.Name] = true
		ds.Nodes = append(ds.Nodes, layout.DatasetNode{ID: e.Name, Category: e.Category, Label: e.Label})
	}
	for _, l := range links {
		if !known[l.Source] || !known[l.Target] {
			continue
		}
		ds.Links = append(ds.Links, layout.DatasetLink{Source: l.Source, Target: l.Target, Freq: l.Freq})
	}
	return ds
}

// fromDataset converts ds into rows. Repeated links between the same
// endpoints are merged by adding up their frequencies.
func fromDataset(ds *layout.Dataset) ([]Entity, []Cooccurrence) {
	entities := make([]Entity, 0, len(ds.Nodes))
	for _, n := range ds.Nodes {
		entities = append(entities, Entity{Name: n.ID, Category: n.Category, Label: n.Label})
	}
	type key struct{ source, target string }
	index := map[key]int{}
	links := make([]Cooccurrence, 0, len(ds.Links))
	for _, l := range ds.Links {
		k := key{l.Source, l.Target}
		if i, ok := index[k]; ok {
			links[i].Freq += l.Freq
			continue
		}
		index[k] = len(links)
		links = append(links, Cooccurrence{Source: l.Source, Target: l.Target, Freq: l.Freq})
	}
	return entities, links
}
