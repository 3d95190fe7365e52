package database

import (
	"fmt"
	"log/slog"

	"musteat-service/internal/models"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

func NewPostgresConnection(dburi string) (*gorm.DB, error) {
	db, err := gorm.Open(postgres.Open(dburi), &gorm.Config{
		DisableForeignKeyConstraintWhenMigrating: true,
		SkipDefaultTransaction:                   true,
		TranslateError:                           true,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get database instance: %w", err)
	}
	sqlDB.SetMaxIdleConns(10)
	sqlDB.SetMaxOpenConns(50)

	if err := Migrate(db); err != nil {
		return nil, err
	}

	slog.Info("PostgreSQL connection established")
	return db, nil
}

// Migrate creates the schema. The uniqueness constraints on daily vote records,
// comment likes and user sounds come from the model index tags; the engine
// relies on uk_daily_vote to reject concurrent first votes.
func Migrate(db *gorm.DB) error {
	err := db.AutoMigrate(
		&models.User{},
		&models.Entry{},
		&models.VoteLedger{},
		&models.DailyVoteRecord{},
		&models.Comment{},
		&models.CommentLike{},
		&models.Message{},
		&models.Achievement{},
		&models.UserSound{},
	)
	if err != nil {
		return fmt.Errorf("failed to migrate database: %w", err)
	}
	return nil
}
