// stress-test generates a random dataset of a given size, for load testing
// the layout engine and the data sources. The dataset is written as JSON to
// stdout, or imported into postgres with --import.
package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
	"github.com/suxatcode/concentric-layout/db"
	"github.com/suxatcode/concentric-layout/db/postgres"
	"github.com/suxatcode/concentric-layout/layout"
	"golang.org/x/exp/rand"
)

func generate(nodes, categories, linksPerNode int, seed uint64) *layout.Dataset {
	rnd := rand.New(rand.NewSource(seed))
	ds := &layout.Dataset{}
	for i := 0; i < nodes; i++ {
		ds.Nodes = append(ds.Nodes, layout.DatasetNode{
			ID:       fmt.Sprintf("entity_%d", i),
			Category: 1 + rnd.Intn(categories),
		})
	}
	seen := map[[2]int]bool{}
	for i := 1; i < nodes; i++ {
		for k := 0; k < linksPerNode; k++ {
			j := rnd.Intn(i)
			if seen[[2]int{j, i}] {
				continue
			}
			seen[[2]int{j, i}] = true
			ds.Links = append(ds.Links, layout.DatasetLink{
				Source: ds.Nodes[j].ID,
				Target: ds.Nodes[i].ID,
				Freq:   float64(1 + rnd.Intn(100)),
			})
		}
	}
	return ds
}

func main() {
	var (
		nodes, categories, linksPerNode int
		seed                            uint64
		importDB                        bool
	)
	cmd := &cobra.Command{
		Use:          "stress-test",
		Short:        "Generate a random dataset",
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			ds := generate(nodes, categories, linksPerNode, seed)
			if !importDB {
				return json.NewEncoder(os.Stdout).Encode(ds)
			}
			pg, err := postgres.NewPostgresDB(db.GetEnvConfig())
			if err != nil {
				return err
			}
			defer pg.Close()
			if err := pg.Import(cmd.Context(), ds); err != nil {
				return err
			}
			log.Info().Msgf("imported %d entities and %d co-occurrences", len(ds.Nodes), len(ds.Links))
			return nil
		},
	}
	cmd.Flags().IntVar(&nodes, "nodes", 1000, "number of entities")
	cmd.Flags().IntVar(&categories, "categories", 4, "number of categories")
	cmd.Flags().IntVar(&linksPerNode, "links", 2, "co-occurrences per entity")
	cmd.Flags().Uint64Var(&seed, "seed", 1, "seed of the generator")
	cmd.Flags().BoolVar(&importDB, "import", false, "import into postgres instead of printing")
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
