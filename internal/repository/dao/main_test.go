package dao

import (
	"flag"
	"fmt"
	"log"
	"os"
	"testing"

	"github.com/ory/dockertest/v3"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

// testDB is nil when docker is unavailable or -short is set.
var testDB *gorm.DB

func TestMain(m *testing.M) {
	flag.Parse()
	if testing.Short() {
		os.Exit(m.Run())
	}

	pool, err := dockertest.NewPool("")
	if err == nil {
		err = pool.Client.Ping()
	}
	if err != nil {
		log.Printf("docker unavailable, skipping postgres tests: %v", err)
		os.Exit(m.Run())
	}

	resource, err := pool.Run("postgres", "16-alpine", []string{
		"POSTGRES_USER=postgres",
		"POSTGRES_PASSWORD=secret",
		"POSTGRES_DB=eventhub",
	})
	if err != nil {
		log.Fatalf("could not start postgres: %v", err)
	}
	_ = resource.Expire(180)

	dsn := fmt.Sprintf("postgres://postgres:secret@%s/eventhub?sslmode=disable", resource.GetHostPort("5432/tcp"))
	if err = pool.Retry(func() error {
		db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{Logger: gormlogger.Discard})
		if err != nil {
			return err
		}
		sqlDB, err := db.DB()
		if err != nil {
			return err
		}
		if err = sqlDB.Ping(); err != nil {
			return err
		}
		testDB = db
		return nil
	}); err != nil {
		_ = pool.Purge(resource)
		log.Fatalf("could not connect to postgres: %v", err)
	}

	code := m.Run()

	if err = pool.Purge(resource); err != nil {
		log.Printf("could not purge postgres: %v", err)
	}

	os.Exit(code)
}

// freshDB recreates the schema and returns the shared connection.
func freshDB(t *testing.T) *gorm.DB {
	t.Helper()

	if testDB == nil {
		t.Skip("postgres is not available")
	}
	if err := DropAllTables(testDB); err != nil {
		t.Fatalf("DropAllTables: %v", err)
	}
	if err := InitTables(testDB); err != nil {
		t.Fatalf("InitTables: %v", err)
	}

	return testDB
}
