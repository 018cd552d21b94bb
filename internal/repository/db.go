package repository

import (
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"tecelaria/internal/catalog"
	"tecelaria/internal/model"
)

// NewDB opens a SQLite database, runs migrations and seeds the reference data
// (predefined categories and the question catalog).
func NewDB(dsn string) (*gorm.DB, error) {
	if dsn == "" {
		dsn = "tecelaria.db"
	}

	if err := ensureDirForSQLite(dsn); err != nil {
		return nil, err
	}

	dbLogger := logger.New(
		log.New(os.Stdout, "", log.LstdFlags),
		logger.Config{
			SlowThreshold:             time.Second,
			LogLevel:                  logger.Warn,
			IgnoreRecordNotFoundError: true,
			Colorful:                  false,
		},
	)

	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: dbLogger,
	})
	if err != nil {
		return nil, fmt.Errorf("open db: %w", err)
	}

	if err := db.AutoMigrate(
		&model.User{},
		&model.Category{},
		&model.Question{},
		&model.Memory{},
		&model.MemoryRecord{},
		&model.Kit{},
		&model.KitMember{},
	); err != nil {
		return nil, fmt.Errorf("migrate db: %w", err)
	}

	if err := seed(db); err != nil {
		return nil, fmt.Errorf("seed db: %w", err)
	}

	return db, nil
}

// seed inserts the predefined categories and the 150-question catalog.
// Idempotent: reference data already present is left untouched.
func seed(db *gorm.DB) error {
	categoryIDs := make(map[string]uint, len(catalog.PredefinedCategories))
	for _, seed := range catalog.PredefinedCategories {
		var category model.Category
		err := db.Where("name = ? AND is_predefined = ?", seed.Name, true).First(&category).Error
		switch {
		case err == nil:
		case err == gorm.ErrRecordNotFound:
			category = model.Category{
				Name:         seed.Name,
				Description:  seed.Description,
				IsPredefined: true,
				SortOrder:    seed.SortOrder,
			}
			if err := db.Create(&category).Error; err != nil {
				return fmt.Errorf("seed category %q: %w", seed.Name, err)
			}
		default:
			return fmt.Errorf("find category %q: %w", seed.Name, err)
		}
		categoryIDs[category.Name] = category.ID
	}

	var questionCount int64
	if err := db.Model(&model.Question{}).Count(&questionCount).Error; err != nil {
		return fmt.Errorf("count questions: %w", err)
	}
	if questionCount > 0 {
		return nil
	}

	byBox, err := catalog.Questions()
	if err != nil {
		return err
	}

	return db.Transaction(func(tx *gorm.DB) error {
		for box := 1; box <= model.BoxCount; box++ {
			for _, seed := range byBox[box] {
				question := model.Question{
					Box:    box,
					Number: seed.Number,
					Text:   seed.Text,
				}
				if seed.Category != "" {
					id := categoryIDs[seed.Category]
					question.CategoryID = &id
				}
				if err := tx.Create(&question).Error; err != nil {
					return fmt.Errorf("seed question %d/%d: %w", box, seed.Number, err)
				}
			}
		}
		return nil
	})
}

// ensureDirForSQLite creates parent dir for SQLite file if needed.
func ensureDirForSQLite(dsn string) error {
	// Ignore DSNs with explicit mode=memory or network.
	if strings.Contains(dsn, ":memory:") || strings.Contains(dsn, "mode=memory") {
		return nil
	}
	// Strip file: prefix if present.
	clean := strings.TrimPrefix(dsn, "file:")
	clean = strings.Split(clean, "?")[0]
	dir := filepath.Dir(clean)
	if dir == "." || dir == "" {
		return nil
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create db dir %q: %w", dir, err)
	}
	return nil
}
