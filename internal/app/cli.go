package app

import (
	"context"
	"encoding/json"
	"io"
	"os"
	"os/signal"
	"strconv"
	"syscall"

	"github.com/pkg/errors"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
	"github.com/suxatcode/concentric-layout/db"
	"github.com/suxatcode/concentric-layout/internal/controller"
	"github.com/suxatcode/concentric-layout/layout"
)

// Execute runs the gen-layout command line until the command finishes or an
// interrupt is received.
func Execute() error {
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()
	return NewRootCommand(os.Stdout).ExecuteContext(ctx)
}

func NewRootCommand(out io.Writer) *cobra.Command {
	var verbose bool
	root := &cobra.Command{
		Use:          "gen-layout",
		Short:        "Concentric force-directed layouts of category graphs",
		SilenceUsage: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			SetupLogging(GetEnvConfig())
			if verbose {
				zerolog.SetGlobalLevel(zerolog.DebugLevel)
			}
			cmd.SetContext(log.Logger.WithContext(cmd.Context()))
		},
	}
	root.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable debug logging")
	root.AddCommand(newRunCommand(out))
	root.AddCommand(newImportCommand())
	root.AddCommand(newServeCommand())
	return root
}

type runOptions struct {
	forcesPath string
	pngPath    string
	pngWidth   int
	pngHeight  int
	invert     bool
	// every n-th snapshot is printed, the final one always
	every int
}

func newRunCommand(out io.Writer) *cobra.Command {
	var (
		nodes         []string
		categoryCount map[string]int
		file          string
	)
	opts := runOptions{}
	cmd := &cobra.Command{
		Use:   "run",
		Short: "Lay out a dataset and print the snapshots as JSON lines",
		Long: `Lay out the subgraph selected by --node and --category-count and print
one JSON snapshot per line to stdout. The data source is configured by the
DATASOURCE environment, --file selects a JSON or YAML file ('-' for stdin).`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			q, err := newQuery(nodes, categoryCount)
			if err != nil {
				return err
			}
			dbconf := db.GetEnvConfig()
			if file != "" {
				dbconf.DataSource = db.KindFile
				dbconf.File = file
			}
			return runLayout(cmd.Context(), out, GetEnvConfig(), dbconf, q, opts)
		},
	}
	cmd.Flags().StringSliceVarP(&nodes, "node", "n", nil, "seed entities of the subgraph")
	cmd.Flags().StringToIntVarP(&categoryCount, "category-count", "c", nil, "entities per category, e.g. 1=5,2=5")
	cmd.Flags().StringVarP(&file, "file", "f", "", "read the dataset from this file")
	cmd.Flags().StringVar(&opts.forcesPath, "forces", "", "YAML force configuration")
	cmd.Flags().IntVar(&opts.every, "every", 1, "print every n-th snapshot, 0 prints the final one only")
	cmd.Flags().StringVar(&opts.pngPath, "png", "", "render the final layout into this PNG file")
	cmd.Flags().IntVar(&opts.pngWidth, "width", defaultPNGWidth, "PNG width")
	cmd.Flags().IntVar(&opts.pngHeight, "height", defaultPNGHeight, "PNG height")
	cmd.Flags().BoolVar(&opts.invert, "invert", false, "dark PNG background")
	return cmd
}

func newQuery(nodes []string, categoryCount map[string]int) (db.Query, error) {
	q := db.Query{Entities: nodes}
	if len(categoryCount) == 0 {
		return q, nil
	}
	q.CategoryCount = make(map[int]int, len(categoryCount))
	for key, count := range categoryCount {
		category, err := strconv.Atoi(key)
		if err != nil {
			return q, errors.Errorf("invalid category '%s'", key)
		}
		q.CategoryCount[category] = count
	}
	return q, nil
}

func runLayout(ctx context.Context, out io.Writer, conf Config, dbconf db.Config, q db.Query, opts runOptions) error {
	forces, err := LoadForceConfig(opts.forcesPath)
	if err != nil {
		return err
	}
	sim, err := conf.SimulationConfig()
	if err != nil {
		return err
	}
	source, err := NewDataSource(dbconf)
	if err != nil {
		return err
	}
	session := controller.NewSession(sim)
	enc := json.NewEncoder(out)
	_, err = session.RunFromSource(ctx, source, q, forces, func(snap layout.Snapshot) error {
		if snap.Settled || (opts.every > 0 && snap.Tick%opts.every == 0) {
			return enc.Encode(snap)
		}
		return nil
	})
	if err != nil {
		return err
	}
	if opts.pngPath == "" {
		return nil
	}
	file, err := os.Create(opts.pngPath)
	if err != nil {
		return errors.Wrapf(err, "failed to create '%s'", opts.pngPath)
	}
	defer file.Close()
	return session.DrawPNG(file, opts.pngWidth, opts.pngHeight, opts.invert)
}

func newImportCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "import [dataset.json|dataset.yaml|-]",
		Short: "Store a dataset in the postgres data source",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var (
				ds  *layout.Dataset
				err error
			)
			if args[0] == "-" {
				ds, err = db.ReadDataset(cmd.InOrStdin(), false)
			} else {
				ds, err = db.ReadDatasetFile(args[0])
			}
			if err != nil {
				return err
			}
			importer, err := NewImporter(db.GetEnvConfig())
			if err != nil {
				return err
			}
			if err := importer.Import(cmd.Context(), ds); err != nil {
				return err
			}
			log.Info().Msgf("imported %d entities and %d co-occurrences", len(ds.Nodes), len(ds.Links))
			return nil
		},
	}
}

func newServeCommand() *cobra.Command {
	var forcesPath string
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve layouts over HTTP and websocket",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return RunServer(GetEnvConfig(), db.GetEnvConfig(), forcesPath)
		},
	}
	cmd.Flags().StringVar(&forcesPath, "forces", "", "YAML force configuration used unless a request brings its own")
	return cmd
}
