package sqlite

import (
	"log"
	"os"
	"path/filepath"

	"github.com/bonjour-pay/invoice-service/internal/config"
	"github.com/bonjour-pay/invoice-service/internal/infrastructure/sqlite/models"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

func MustInitDB(cfg *config.InvoiceConfig) *gorm.DB {
	path := cfg.PaymentsDB.Path
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			log.Fatalf("failed to create db directory: %v\n", err)
		}
	}

	db, err := gorm.Open(sqlite.Open(path), &gorm.Config{})
	if err != nil {
		log.Fatalf("failed to init db: %v\n", err.Error())
	}

	db.AutoMigrate(&models.PaymentModel{})

	// Старые базы без invoice_id: добавить колонку, ошибка
	// "duplicate column" игнорируется.
	db.Exec("ALTER TABLE payments ADD COLUMN invoice_id INTEGER")

	return db
}
