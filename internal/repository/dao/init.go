package dao

import (
	"fmt"

	"gorm.io/gorm"
)

func InitTables(db *gorm.DB) error {
	if err := db.AutoMigrate(
		&User{},
		&Event{},
		&Registration{},
		&Comment{},
	); err != nil {
		return fmt.Errorf("db.AutoMigrate -> %w", err)
	}

	// gorm tags cannot express a partial unique index portably.
	stmt := fmt.Sprintf(
		"CREATE UNIQUE INDEX IF NOT EXISTS %s ON registrations (event_id, user_id) WHERE active",
		activeRegistrationIndex,
	)
	if err := db.Exec(stmt).Error; err != nil {
		return fmt.Errorf("db.Exec(%s) -> %w", activeRegistrationIndex, err)
	}

	return nil
}

// DropAllTables removes every table of the schema. Tests use it between runs.
func DropAllTables(db *gorm.DB) error {
	return db.Migrator().DropTable(&Comment{}, &Registration{}, &Event{}, &User{})
}
