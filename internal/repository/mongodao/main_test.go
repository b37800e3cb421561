package mongodao

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/ory/dockertest/v3"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// testClient is nil when docker is unavailable or -short is set.
var testClient *mongo.Client

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
		log.Printf("docker unavailable, skipping mongo tests: %v", err)
		os.Exit(m.Run())
	}

	resource, err := pool.Run("mongo", "7", nil)
	if err != nil {
		log.Fatalf("could not start mongo: %v", err)
	}
	_ = resource.Expire(180)

	uri := fmt.Sprintf("mongodb://%s", resource.GetHostPort("27017/tcp"))
	if err = pool.Retry(func() error {
		client, err := mongo.Connect(context.Background(), options.Client().ApplyURI(uri))
		if err != nil {
			return err
		}
		if err = client.Ping(context.Background(), nil); err != nil {
			_ = client.Disconnect(context.Background())
			return err
		}
		testClient = client
		return nil
	}); err != nil {
		_ = pool.Purge(resource)
		log.Fatalf("could not connect to mongo: %v", err)
	}

	code := m.Run()

	_ = testClient.Disconnect(context.Background())
	if err = pool.Purge(resource); err != nil {
		log.Printf("could not purge mongo: %v", err)
	}

	os.Exit(code)
}

// freshDB returns an empty database with the indexes in place.
func freshDB(t *testing.T) *mongo.Database {
	t.Helper()

	if testClient == nil {
		t.Skip("mongo is not available")
	}

	db := testClient.Database("test_" + strings.ReplaceAll(uuid.NewString(), "-", ""))
	if err := InitIndexes(context.Background(), db); err != nil {
		t.Fatalf("InitIndexes: %v", err)
	}
	t.Cleanup(func() {
		_ = db.Drop(context.Background())
	})

	return db
}
