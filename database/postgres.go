package database

import (
	"fmt"
	"log"

	"chat-service/model"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

type PostgresConfig struct {
	Host     string
	Port     string
	User     string
	Password string
	DB       string
}

func PostgresConnect(cfg PostgresConfig) (*gorm.DB, error) {
	dsn := fmt.Sprintf("host=%s port=%s user=%s password=%s dbname=%s sslmode=disable",
		cfg.Host,
		cfg.Port,
		cfg.User,
		cfg.Password,
		cfg.DB,
	)
	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{})
	if err != nil {
		return nil, fmt.Errorf("failed to connect postgres: %w", err)
	}
	log.Printf("Connection opened to Postgres")

	if err := Migrate(db); err != nil {
		return nil, fmt.Errorf("failed to migrate: %w", err)
	}
	log.Printf("Postgres Database Migrated")

	return db, nil
}

// Migrate creates the schema, including the canonical-pair unique index on
// friend edges and the canonical-key unique index on chats. Shared with the
// test database setup.
func Migrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&model.User{},
		&model.Friend{},
		&model.Chat{},
		&model.Message{},
		&model.AiChat{},
		&model.AiMessage{},
	)
}
