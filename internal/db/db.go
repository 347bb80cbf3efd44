package db

import (
	"fmt"
	"time"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"assetvault/internal/config"
	"assetvault/internal/models"
	console "assetvault/internal/utils/logger"
)

var DB *gorm.DB
var log = console.New("DB")

func Connect(cfg *config.Config) error {
	dsn := fmt.Sprintf("host=%s user=%s password=%s dbname=%s port=%d sslmode=%s",
		cfg.Database.Host,
		cfg.Database.User,
		cfg.Database.Password,
		cfg.Database.Name,
		cfg.Database.Port,
		cfg.Database.SSLMode,
	)

	log.Info("Connecting to database...")
	maxRetries := 5
	var err error
	for i := 0; i < maxRetries; i++ {
		DB, err = gorm.Open(postgres.Open(dsn), &gorm.Config{
			Logger:            logger.Default.LogMode(logger.Warn),
			PrepareStmt:       true,
			AllowGlobalUpdate: false,
		})
		if err == nil {
			log.Success("Connected to database")

			sqlDB, err := DB.DB()
			if err != nil {
				return log.Error("Failed to get underlying *sql.DB instance", err)
			}

			sqlDB.SetMaxOpenConns(100)
			sqlDB.SetMaxIdleConns(10)
			sqlDB.SetConnMaxLifetime(time.Hour)
			sqlDB.SetConnMaxIdleTime(time.Minute * 30)

			if err := Migrate(DB); err != nil {
				return log.Error("Failed to run migrations", err)
			}

			log.Success("Migrations completed")
			return nil
		}
		log.Warn("Failed to connect to database (attempt %d/%d): %v", i+1, maxRetries, err)
		time.Sleep(time.Second * 5)
	}
	return log.Error("failed to connect to database", fmt.Errorf("gave up after %d attempts", maxRetries))
}

// Migrate runs AutoMigrate for all models in a single transaction.
// Foreign key creation stays enabled: the audit writer depends on the
// audit_logs.user_id constraint actually existing.
func Migrate(db *gorm.DB) error {
	tx := db.Begin()
	if tx.Error != nil {
		return tx.Error
	}

	defer func() {
		if r := recover(); r != nil {
			tx.Rollback()
		}
	}()

	if err := tx.AutoMigrate(
		// Auth
		&models.Role{},
		&models.User{},
		&models.Permission{},
		&models.RolePermission{},
		&models.AssetPermission{},
		&models.UserAssetPermission{},

		// Catalog hierarchy
		&models.BusinessUnit{},
		&models.Product{},
		&models.Folder{},
		&models.AssetFile{},
		&models.AssetFileAssignment{},

		// Audit
		&models.AuditLog{},
	); err != nil {
		tx.Rollback()
		return err
	}

	return tx.Commit().Error
}

func Close() error {
	sqlDB, err := DB.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

func GetDB() *gorm.DB {
	return DB
}
