package postgres

import (
	"context"
	"fmt"

	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"
	"github.com/suxatcode/concentric-layout/db"
	"github.com/suxatcode/concentric-layout/layout"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type Entity struct {
	gorm.Model
	Name     string `gorm:"uniqueIndex;not null"`
	Category int    `gorm:"not null"`
	Label    string
}

// Cooccurrence counts how often two entities were seen together.
type Cooccurrence struct {
	gorm.Model
	Source string  `gorm:"index:noDuplicateLinks,unique;not null"`
	Target string  `gorm:"index:noDuplicateLinks,unique;not null"`
	Freq   float64 `gorm:"not null"`
}

func NewPostgresDB(conf db.Config) (*PostgresDB, error) {
	db, err := gorm.Open(postgres.New(postgres.Config{
		DSN: fmt.Sprintf(
			"host=%s user=%s password=%s dbname=%s port=%d sslmode=disable",
			conf.PGHost, conf.PGUser, conf.PGPassword, conf.PGName, conf.PGPort,
		),
	}), &gorm.Config{})
	if err != nil {
		return nil, err
	}
	pg := &PostgresDB{
		db: db,
	}
	return pg.init()
}

type PostgresDB struct {
	db *gorm.DB
}

func (pg *PostgresDB) init() (*PostgresDB, error) {
	return pg, pg.db.AutoMigrate(&Entity{}, &Cooccurrence{})
}

func (pg *PostgresDB) Close() error {
	sqlDB, err := pg.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

// Dataset implements db.DataSource. Only the co-occurrences of the seeds are
// loaded to rank the candidates, the links among the selected entities are
// loaded afterwards.
func (pg *PostgresDB) Dataset(ctx context.Context, q db.Query) (*layout.Dataset, error) {
	tx := pg.db.WithContext(ctx)
	entities := []Entity{}
	links := []Cooccurrence{}
	if len(q.Entities) == 0 {
		if err := tx.Find(&entities).Error; err != nil {
			return nil, errors.Wrap(err, "failed to load entities")
		}
		if err := tx.Find(&links).Error; err != nil {
			return nil, errors.Wrap(err, "failed to load co-occurrences")
		}
		return db.BestSubgraph(toDataset(entities, links), q), nil
	}
	if err := tx.Where("source IN ? OR target IN ?", q.Entities, q.Entities).Find(&links).Error; err != nil {
		return nil, errors.Wrapf(err, "failed to load co-occurrences of %v", q.Entities)
	}
	names := append([]string{}, q.Entities...)
	for _, link := range links {
		names = append(names, link.Source, link.Target)
	}
	if err := tx.Where("name IN ?", names).Find(&entities).Error; err != nil {
		return nil, errors.Wrap(err, "failed to load entities")
	}
	sub := db.BestSubgraph(toDataset(entities, links), q)
	selected := make([]string, 0, len(sub.Nodes))
	for _, n := range sub.Nodes {
		selected = append(selected, n.ID)
	}
	among := []Cooccurrence{}
	if len(selected) > 0 {
		if err := tx.Where("source IN ? AND target IN ?", selected, selected).Find(&among).Error; err != nil {
			return nil, errors.Wrap(err, "failed to load co-occurrences among the selected entities")
		}
	}
	sub.Links = toDataset(entities, among).Links
	log.Ctx(ctx).Debug().Msgf("best subgraph of %v: %d nodes, %d links", q.Entities, len(sub.Nodes), len(sub.Links))
	return sub, nil
}

// Import implements db.Importer. Existing entities and co-occurrences are
// updated in place.
func (pg *PostgresDB) Import(ctx context.Context, ds *layout.Dataset) error {
	if _, err := layout.NewGraph(*ds, layout.MaxCategories); err != nil {
		return err
	}
	entities, links := fromDataset(ds)
	return pg.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if len(entities) > 0 {
			if err := tx.Clauses(clause.OnConflict{
				Columns:   []clause.Column{{Name: "name"}},
				DoUpdates: clause.AssignmentColumns([]string{"category", "label", "updated_at"}),
			}).Create(&entities).Error; err != nil {
				return errors.Wrap(err, "failed to store entities")
			}
		}
		if len(links) > 0 {
			if err := tx.Clauses(clause.OnConflict{
				Columns:   []clause.Column{{Name: "source"}, {Name: "target"}},
				DoUpdates: clause.AssignmentColumns([]string{"freq", "updated_at"}),
			}).Create(&links).Error; err != nil {
				return errors.Wrap(err, "failed to store co-occurrences")
			}
		}
		return nil
	})
}
