package database

import (
	"log"
	"time"

	"moonal-billing/internal/config"
	"moonal-billing/internal/models"

	"gorm.io/driver/mysql"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

var DB *gorm.DB

// Connect opens the shared store and syncs the schema. SQLite is the
// single-site default; MySQL is available for shops that already run one.
func Connect(cfg config.Config) {
	gormCfg := &gorm.Config{
		Logger: logger.Default.LogMode(logger.Warn),
	}

	var err error
	switch cfg.DbDriver {
	case "mysql":
		// Wait for the DB to be ready
		for i := 0; i < 5; i++ {
			DB, err = gorm.Open(mysql.Open(cfg.DbDsn), gormCfg)
			if err == nil {
				break
			}
			log.Printf("Failed to connect to database. Retrying in 2 seconds... (%d/5)", i+1)
			time.Sleep(2 * time.Second)
		}
	default:
		DB, err = gorm.Open(sqlite.Open(cfg.DbDsn), gormCfg)
	}

	if err != nil {
		log.Fatal("Failed to connect to database:", err)
	}

	log.Println("✅ Successfully connected to", cfg.DbDriver)

	err = DB.AutoMigrate(
		&models.User{},
		&models.Product{},
		&models.Customer{},
		&models.Invoice{},
		&models.InvoiceItem{},
		&models.AuditLog{},
	)
	if err != nil {
		log.Fatal("Schema migration failed:", err)
	}

	log.Println("✅ Database Schema Synced!")
}
