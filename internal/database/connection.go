// internal/database/connection.go
package database

import (
	"fmt"
	"log"
	"time"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/plantcert/pvp-backend/internal/config"
	"github.com/plantcert/pvp-backend/internal/models"
)

var DB *gorm.DB

func Initialize(cfg config.DatabaseConfig) (*gorm.DB, error) {
	var err error
	var gormConfig *gorm.Config

	// Configure GORM logger
	if cfg.LogLevel == "silent" {
		gormConfig = &gorm.Config{
			Logger:         logger.Default.LogMode(logger.Silent),
			TranslateError: true,
		}
	} else {
		gormConfig = &gorm.Config{
			Logger:         logger.Default.LogMode(logger.Info),
			TranslateError: true,
		}
	}

	// Connect to database
	DB, err = gorm.Open(postgres.Open(cfg.DSN()), gormConfig)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	// Get underlying sql.DB
	sqlDB, err := DB.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get underlying sql.DB: %w", err)
	}

	// Configure connection pool
	sqlDB.SetMaxOpenConns(cfg.MaxOpenConns)
	sqlDB.SetMaxIdleConns(cfg.MaxIdleConns)
	sqlDB.SetConnMaxLifetime(time.Duration(cfg.MaxLifetime) * time.Second)

	// Test connection
	if err := sqlDB.Ping(); err != nil {
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	log.Println("Database connection established successfully")
	return DB, nil
}

func Close(db *gorm.DB) {
	sqlDB, err := db.DB()
	if err != nil {
		log.Printf("Error getting underlying sql.DB: %v", err)
		return
	}

	if err := sqlDB.Close(); err != nil {
		log.Printf("Error closing database connection: %v", err)
	} else {
		log.Println("Database connection closed successfully")
	}
}

func RunMigrations(db *gorm.DB) error {
	log.Println("Running database migrations...")

	// Run auto-migrations
	err := db.AutoMigrate(
		&models.Organization{},
		&models.User{},
		&models.Jurisdiction{},
		&models.RuleSet{},
		&models.RuleDeadline{},
		&models.RuleDocumentRequirement{},
		&models.RuleTerm{},
		&models.RuleFee{},
		&models.Variety{},
		&models.Application{},
		&models.Document{},
		&models.Task{},
		&models.TaskGeneration{},
		&models.RenewalTerm{},
		&models.RuleAuditLog{},
	)

	if err != nil {
		return fmt.Errorf("failed to run migrations: %w", err)
	}

	// Create indexes
	if err := createIndexes(db); err != nil {
		return fmt.Errorf("failed to create indexes: %w", err)
	}

	log.Println("Database migrations completed successfully")
	return nil
}

func createIndexes(db *gorm.DB) error {
	indexes := []string{
		// User indexes
		"CREATE INDEX IF NOT EXISTS idx_users_email ON users(email)",
		"CREATE INDEX IF NOT EXISTS idx_users_org_type ON users(organization_id, user_type)",

		// Rule store indexes
		"CREATE INDEX IF NOT EXISTS idx_rule_sets_jurisdiction_active ON rule_sets(jurisdiction_id, is_active)",
		"CREATE INDEX IF NOT EXISTS idx_rule_deadlines_set_trigger ON rule_deadlines(rule_set_id, trigger_event)",
		"CREATE INDEX IF NOT EXISTS idx_rule_doc_reqs_set_required ON rule_document_requirements(rule_set_id, required)",
		"CREATE INDEX IF NOT EXISTS idx_rule_terms_set_variety ON rule_terms(rule_set_id, variety_type)",

		// Application indexes
		"CREATE INDEX IF NOT EXISTS idx_applications_org_status ON applications(organization_id, status)",
		"CREATE INDEX IF NOT EXISTS idx_applications_jurisdiction ON applications(jurisdiction_id)",
		"CREATE INDEX IF NOT EXISTS idx_varieties_org ON varieties(organization_id)",

		// Task indexes
		"CREATE INDEX IF NOT EXISTS idx_tasks_org_status ON tasks(organization_id, status)",
		"CREATE INDEX IF NOT EXISTS idx_tasks_app_trigger ON tasks(application_id, trigger_event)",
		"CREATE INDEX IF NOT EXISTS idx_tasks_due_date ON tasks(due_date)",

		// Renewal indexes
		"CREATE INDEX IF NOT EXISTS idx_renewal_terms_org_due ON renewal_terms(organization_id, due_date)",

		// Audit indexes
		"CREATE INDEX IF NOT EXISTS idx_rule_audit_logs_org ON rule_audit_logs(organization_id, created_at DESC)",
		"CREATE INDEX IF NOT EXISTS idx_rule_audit_logs_rule_type ON rule_audit_logs(rule_type)",

		// Document indexes
		"CREATE INDEX IF NOT EXISTS idx_documents_app_type ON documents(application_id, doc_type)",
	}

	for _, index := range indexes {
		if err := db.Exec(index).Error; err != nil {
			log.Printf("Warning: Failed to create index: %s, Error: %v", index, err)
			// Continue with other indexes instead of failing completely
		}
	}

	return nil
}

// Seed initial data
func SeedInitialData(db *gorm.DB) error {
	log.Println("Seeding initial data...")

	// Create default super-admin user
	var adminCount int64
	db.Model(&models.User{}).Where("user_type = ?", models.UserTypeSuperAdmin).Count(&adminCount)

	if adminCount == 0 {
		admin := &models.User{
			Username: "admin",
			Email:    "admin@plantcert.io",
			UserType: models.UserTypeSuperAdmin,
			Status:   models.UserStatusActive,
			ProfileData: models.JSONB{
				"first_name": "System",
				"last_name":  "Administrator",
			},
		}

		if err := admin.SetPassword("admin123!@#"); err != nil {
			return fmt.Errorf("failed to set admin password: %w", err)
		}

		if err := db.Create(admin).Error; err != nil {
			return fmt.Errorf("failed to create admin user: %w", err)
		}

		log.Println("Default super-admin user created successfully")
	}

	// Seed common jurisdictions; rule sets are authored per jurisdiction later
	jurisdictions := []models.Jurisdiction{
		{Code: "EU", Name: "European Union (CPVO)", CurrencyCode: "EUR"},
		{Code: "US", Name: "United States (PVPO)", CurrencyCode: "USD"},
		{Code: "GB", Name: "United Kingdom (APHA)", CurrencyCode: "GBP"},
		{Code: "AU", Name: "Australia (IP Australia)", CurrencyCode: "AUD"},
	}

	for _, j := range jurisdictions {
		var count int64
		db.Model(&models.Jurisdiction{}).Where("code = ?", j.Code).Count(&count)
		if count == 0 {
			if err := db.Create(&j).Error; err != nil {
				log.Printf("Warning: Failed to seed jurisdiction %s: %v", j.Code, err)
			}
		}
	}

	log.Println("Initial data seeding completed")
	return nil
}
