package app

import (
	"time"

	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"
	"github.com/suxatcode/concentric-layout/db"
	"github.com/suxatcode/concentric-layout/db/postgres"
	"github.com/suxatcode/concentric-layout/db/remote"
)

var connectIntervals = []time.Duration{
	1 * time.Second,
	5 * time.Second,
	5 * time.Second,
	10 * time.Second,
}

func connectPostgres(conf db.Config) (*postgres.PostgresDB, error) {
	var (
		backend *postgres.PostgresDB
		err     error
	)
	err = RetryAtIntervals(func() error {
		backend, err = postgres.NewPostgresDB(conf)
		if err != nil {
			log.Error().Msgf("failed to connect to DB: %v", err)
		}
		return err
	}, connectIntervals)
	return backend, err
}

// NewDataSource creates the data source selected by conf.DataSource, with
// an in-memory cache in front unless conf.CacheSize is 0.
func NewDataSource(conf db.Config) (db.DataSource, error) {
	var source db.DataSource
	switch conf.DataSource {
	case db.KindFile, "":
		source = db.NewFileSource(conf.File)
	case db.KindPostgres:
		pg, err := connectPostgres(conf)
		if err != nil {
			return nil, err
		}
		source = pg
	case db.KindRemote:
		source = remote.NewSource(conf)
	default:
		return nil, errors.Errorf("unknown data source '%s', expected one of {%s, %s, %s}", conf.DataSource, db.KindFile, db.KindPostgres, db.KindRemote)
	}
	if conf.CacheSize == 0 {
		return source, nil
	}
	return db.NewCachedSource(source, conf.CacheSize)
}

// NewImporter returns the store datasets are imported into.
func NewImporter(conf db.Config) (db.Importer, error) {
	if conf.DataSource != db.KindPostgres {
		return nil, errors.Errorf("data source '%s' does not support imports, use '%s'", conf.DataSource, db.KindPostgres)
	}
	pg, err := connectPostgres(conf)
	if err != nil {
		return nil, err
	}
	return pg, nil
}
