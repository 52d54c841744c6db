package config

import (
	"os"

	"github.com/glebarez/sqlite"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// ConnectDB opens the shop database. By default the data lives in a local
// sqlite file next to the binary; setting DB_URL switches to postgres for
// shops that already run one.
func ConnectDB() (*gorm.DB, error) {
	cfg := &gorm.Config{Logger: logger.Default.LogMode(logger.Silent)}

	if dsn := os.Getenv("DB_URL"); dsn != "" {
		return gorm.Open(postgres.Open(dsn), cfg)
	}

	path := os.Getenv("DB_PATH")
	if path == "" {
		path = "tailorbook.db"
	}
	return gorm.Open(sqlite.Open(path), cfg)
}
