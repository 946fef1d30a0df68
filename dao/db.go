package dao

import (
	"fmt"
	"time"

	log "github.com/sirupsen/logrus"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	"github.com/softdesk-lab/softdesk/dao/model"
	"github.com/softdesk-lab/softdesk/pkg/config"
)

// InitDB opens the postgres connection pool and returns a Store bound
// to it. TranslateError is enabled so unique violations surface as
// gorm.ErrDuplicatedKey instead of driver-specific errors.
func InitDB(conf *config.Config) (*Store, error) {
	pg := conf.Postgres
	dsn := fmt.Sprintf("host=%s user=%s password=%s dbname=%s port=%s sslmode=%s TimeZone=%s",
		pg.Host, pg.User, pg.Password, pg.DBName, pg.Port, pg.SSLMode, pg.TimeZone)

	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{TranslateError: true})
	if err != nil {
		return nil, err
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, err
	}
	sqlDB.SetMaxIdleConns(5)
	sqlDB.SetMaxOpenConns(20)
	sqlDB.SetConnMaxLifetime(time.Hour)

	log.Info("postgres init success")
	return &Store{db: db}, nil
}

// InitMigration creates or updates the schema for all entities.
func (s *Store) InitMigration() error {
	entities := []any{
		&model.User{},
		&model.Project{},
		&model.ProjectContributor{},
		&model.Issue{},
		&model.Comment{},
	}
	for _, e := range entities {
		if err := s.db.AutoMigrate(e); err != nil {
			return fmt.Errorf("migrate %T: %w", e, err)
		}
	}
	return nil
}
