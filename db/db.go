package db

import (
	"context"
	"time"

	"github.com/caarlos0/env/v6"
	"github.com/suxatcode/concentric-layout/layout"
)

// DataSource provides the dataset of a layout run.
//
//go:generate mockgen -destination datasource_mock.go -package db . DataSource
type DataSource interface {
	// Dataset returns the subgraph selected by q.
	Dataset(ctx context.Context, q Query) (*layout.Dataset, error)
}

// Importer stores a dataset, so that it can later be queried.
type Importer interface {
	Import(ctx context.Context, ds *layout.Dataset) error
}

// Query selects the best subgraph around a set of seed entities: the seeds,
// the CategoryCount[c] entities of category c most strongly linked to them,
// and all links among the selected entities. An empty query selects
// everything.
type Query struct {
	Entities      []string    `json:"nodes"`
	CategoryCount map[int]int `json:"category_count"`
}

func (q Query) IsEmpty() bool {
	return len(q.Entities) == 0 && len(q.CategoryCount) == 0
}

const (
	KindFile     = "file"
	KindPostgres = "postgres"
	KindRemote   = "remote"
)

type Config struct {
	// DataSource is one of {file, postgres, remote}
	DataSource string `env:"DATASOURCE" envDefault:"file"`
	File       string `env:"DATASOURCE_FILE" envDefault:"dataset.json"`
	// CacheSize is the number of query results kept in memory, 0 disables
	// caching.
	CacheSize  int    `env:"DATASOURCE_CACHE_SIZE" envDefault:"16"`
	PGHost     string `env:"DB_POSTGRES_HOST" envDefault:"localhost"`
	PGPort     int    `env:"DB_POSTGRES_PORT" envDefault:"5432"`
	PGUser     string `env:"DB_POSTGRES_USER" envDefault:"concentric"`
	PGPassword string `env:"DB_POSTGRES_PASSWORD" envDefault:"example"`
	PGName     string `env:"DB_POSTGRES_NAME" envDefault:"concentric"`
	RemoteURL  string `env:"REMOTE_URL" envDefault:"http://localhost:5000/getbestsubgraph"`
	// RemoteTimeout bounds a single request to the remote source.
	RemoteTimeout time.Duration `env:"REMOTE_TIMEOUT" envDefault:"30s"`
}

func GetEnvConfig() Config {
	conf := Config{}
	env.Parse(&conf)
	return conf
}
