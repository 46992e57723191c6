package helpers

import (
	"fmt"
	"testing"

	"gorm.io/gorm"

	"github.com/andrescamacho/outpost-go/internal/adapters/persistence"
	"github.com/andrescamacho/outpost-go/internal/infrastructure/database"
)

// NewTestDB opens a private in-memory save database, closed when t ends
func NewTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := database.NewTestConnection()
	if err != nil {
		t.Fatalf("failed to create test database: %v", err)
	}
	t.Cleanup(func() { _ = database.Close(db) })
	return db
}

// SharedTestDB backs every persistence scenario of the BDD suite. Restart
// scenarios need the save to outlive the session that wrote it, so the
// database lives for the whole run and is emptied per scenario.
var SharedTestDB *gorm.DB

func InitializeSharedTestDB() error {
	db, err := database.NewTestConnection()
	if err != nil {
		return fmt.Errorf("failed to open shared test database: %w", err)
	}
	SharedTestDB = db
	return nil
}

// TruncateAllTables wipes every profile's save
func TruncateAllTables() error {
	if SharedTestDB == nil {
		return fmt.Errorf("shared test database not initialized")
	}
	return SharedTestDB.Where("1 = 1").Delete(&persistence.KeyValueModel{}).Error
}

func CloseSharedTestDB() error {
	if SharedTestDB == nil {
		return nil
	}
	err := database.Close(SharedTestDB)
	SharedTestDB = nil
	return err
}
