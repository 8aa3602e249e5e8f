package db

import (
	"strings"

	"github.com/suxatcode/concentric-layout/layout"
	"golang.org/x/exp/slices"
)

// BestSubgraph applies q to the complete dataset ds. Entities are ranked by
// the summed frequency of their links to the seeds, ties are broken by id.
// Without seeds every link counts.
func BestSubgraph(ds *layout.Dataset, q Query) *layout.Dataset {
	if q.IsEmpty() {
		return ds
	}
	seeds := make(map[string]bool, len(q.Entities))
	for _, id := range q.Entities {
		seeds[id] = true
	}
	isSeed := func(id string) bool { return seeds[id] }
	score := map[string]float64{}
	for _, link := range ds.Links {
		if len(q.Entities) == 0 || isSeed(link.Source) {
			score[link.Target] += link.Freq
		}
		if len(q.Entities) == 0 || isSeed(link.Target) {
			score[link.Source] += link.Freq
		}
	}
	selected := FindAll(ds.Nodes, func(n layout.DatasetNode) bool { return isSeed(n.ID) })
	candidates := RemoveIf(ds.Nodes, func(n layout.DatasetNode) bool { return isSeed(n.ID) || score[n.ID] <= 0 })
	slices.SortStableFunc(candidates, func(a, b layout.DatasetNode) int {
		if score[a.ID] != score[b.ID] {
			if score[a.ID] > score[b.ID] {
				return -1
			}
			return 1
		}
		return strings.Compare(a.ID, b.ID)
	})
	taken := map[int]int{}
	for _, n := range candidates {
		if taken[n.Category] < q.CategoryCount[n.Category] {
			selected = append(selected, n)
			taken[n.Category]++
		}
	}
	ids := make(map[string]bool, len(selected))
	for _, n := range selected {
		ids[n.ID] = true
	}
	return &layout.Dataset{
		Nodes: selected,
		Links: FindAll(ds.Links, func(l layout.DatasetLink) bool { return ids[l.Source] && ids[l.Target] }),
	}
}
