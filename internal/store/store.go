package store

import (
	"database/sql"
	"fmt"

	"gossip/internal/config"
	"gossip/internal/domain"
	"gossip/internal/store/postgres"
	"gossip/internal/store/sqlite"
)

// Stores bundles the repository implementations for the configured driver.
type Stores struct {
	DB       *sql.DB
	Users    domain.UserRepository
	Groups   domain.GroupRepository
	Messages domain.MessageRepository
}

// Open connects to the configured database, runs migrations, and returns
// the repository set.
func Open(cfg *config.Config) (*Stores, error) {
	switch cfg.DBDriver {
	case "postgres":
		db, err := postgres.Open(cfg.DatabaseURL)
		if err != nil {
			return nil, err
		}
		if err := postgres.Migrate(db); err != nil {
			db.Close()
			return nil, err
		}
		return &Stores{
			DB:       db,
			Users:    postgres.NewUserRepo(db),
			Groups:   postgres.NewGroupRepo(db),
			Messages: postgres.NewMessageRepo(db),
		}, nil

	case "sqlite":
		db, err := sqlite.Open(cfg.DatabaseURL)
		if err != nil {
			return nil, err
		}
		if err := sqlite.Migrate(db); err != nil {
			db.Close()
			return nil, err
		}
		return &Stores{
			DB:       db,
			Users:    sqlite.NewUserRepo(db),
			Groups:   sqlite.NewGroupRepo(db),
			Messages: sqlite.NewMessageRepo(db),
		}, nil

	default:
		return nil, fmt.Errorf("unsupported DB_DRIVER %q", cfg.DBDriver)
	}
}

func (s *Stores) Close() error {
	return s.DB.Close()
}
