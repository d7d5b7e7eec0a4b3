package database

import (
	"fmt"
	"log"

	"github.com/cmsgraham/secret-santa/internal/config"
	"github.com/cmsgraham/secret-santa/internal/models"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

func Connect(cfg *config.Config) *gorm.DB {
	dsn := fmt.Sprintf(
		"host=%s port=%s user=%s password=%s dbname=%s sslmode=disable",
		cfg.DBHost, cfg.DBPort, cfg.DBUser, cfg.DBPassword, cfg.DBName,
	)

	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{})
	if err != nil {
		log.Fatalf("failed to connect to database: %v", err)
	}

	log.Println("database connected")
	return db
}

func AutoMigrate(db *gorm.DB) {
	// Add member page columns to participants deployed before the feed update.
	db.Exec(`DO $$
	BEGIN
		IF EXISTS (SELECT 1 FROM information_schema.tables WHERE table_name = 'participants')
		   AND NOT EXISTS (SELECT 1 FROM information_schema.columns WHERE table_name = 'participants' AND column_name = 'hints')
		THEN
			ALTER TABLE participants ADD COLUMN hints text;
			ALTER TABLE participants ADD COLUMN gift_preferences text;
			ALTER TABLE participants ADD COLUMN profile_picture varchar(500);
		END IF;
	END $$;`)

	// Add guessing support to events created before the feature existed.
	db.Exec(`DO $$
	BEGIN
		IF EXISTS (SELECT 1 FROM information_schema.tables WHERE table_name = 'events')
		   AND NOT EXISTS (SELECT 1 FROM information_schema.columns WHERE table_name = 'events' AND column_name = 'guessing_enabled')
		THEN
			ALTER TABLE events ADD COLUMN guessing_enabled boolean NOT NULL DEFAULT false;
		END IF;
	END $$;`)

	err := db.AutoMigrate(
		&models.User{},
		&models.Event{},
		&models.Participant{},
		&models.Assignment{},
		&models.AuthToken{},
		&models.FeedPost{},
		&models.FeedComment{},
		&models.FeedLike{},
	)
	if err != nil {
		log.Fatalf("failed to auto-migrate: %v", err)
	}
	log.Println("database migrated")
}
