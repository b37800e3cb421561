package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testYAML = `
api:
  environment: test
  port: "8081"
  allowed_cors_domains:
    - http://localhost:3000
    - https://events.example.com
gin:
  mode: test
auth:
  jwt_secret: from-file
  jwt_expires_in: 12h
database:
  driver: postgres
mongo:
  database: eventhub_test
`

func writeConfig(t *testing.T, content string) string {
	t.Helper()

	path := filepath.Join(t.TempDir(), "config.yml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))

	return path
}

func TestLoad_File(t *testing.T) {
	conf, err := Load(writeConfig(t, testYAML))
	require.NoError(t, err)

	assert.Equal(t, EnvTest, conf.API.Environment)
	assert.Equal(t, "8081", conf.API.Port)
	assert.Equal(t, []string{"http://localhost:3000", "https://events.example.com"}, conf.API.CORSDomains())
	assert.Equal(t, "from-file", conf.Auth.JWTSecret)
	assert.Equal(t, DriverPostgres, conf.Database.Driver)
	assert.Equal(t, "eventhub_test", conf.Mongo.Database)
	assert.Equal(t, 10*time.Second, conf.API.ShutdownTimeout)

	ttl, err := conf.Auth.TokenTTL()
	require.NoError(t, err)
	assert.Equal(t, 12*time.Hour, ttl)
}

func TestLoad_MissingFileUsesDefaults(t *testing.T) {
	conf, err := Load(filepath.Join(t.TempDir(), "absent.yml"))
	require.NoError(t, err)

	assert.Equal(t, "4000", conf.API.Port)
	assert.Equal(t, DriverMongo, conf.Database.Driver)
	assert.Equal(t, "7d", conf.Auth.JWTExpiresIn)
	assert.Equal(t, int64(64), conf.PubSub.OutputChannelBuffer)
}

func TestLoad_EnvOverrides(t *testing.T) {
	t.Setenv("PORT", "9090")
	t.Setenv("JWT_SECRET", "from-env")
	t.Setenv("MONGODB_URI", "mongodb://mongo:27017")
	t.Setenv("CORS_ORIGIN", "https://a.example.com, https://b.example.com")

	conf, err := Load(writeConfig(t, testYAML))
	require.NoError(t, err)

	assert.Equal(t, "9090", conf.API.Port)
	assert.Equal(t, "from-env", conf.Auth.JWTSecret)
	assert.Equal(t, "mongodb://mongo:27017", conf.Mongo.URI)
	assert.Equal(t, []string{"https://a.example.com", "https://b.example.com"}, conf.API.CORSDomains())
}

func TestLoad_Invalid(t *testing.T) {
	tests := []struct {
		name string
		yaml string
	}{
		{"unknown driver", "database:\n  driver: sqlite\n"},
		{"bad ttl", "auth:\n  jwt_expires_in: forever\n"},
		{"bad environment", "api:\n  environment: staging\n"},
		{"admin without password", "admin:\n  email: root@example.com\n"},
		{"production with default secret", "api:\n  environment: production\n"},
		{"production with default secret from file", "api:\n  environment: production\nauth:\n  jwt_secret: secret\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Load(writeConfig(t, tt.yaml))
			assert.Error(t, err)
		})
	}
}

func TestLoad_ProductionSecret(t *testing.T) {
	_, err := Load(writeConfig(t, "api:\n  environment: production\n"))
	assert.ErrorIs(t, err, ErrDefaultJWTSecret)

	t.Setenv("JWT_SECRET", "a-long-random-value")
	conf, err := Load(writeConfig(t, "api:\n  environment: production\n"))
	require.NoError(t, err)
	assert.Equal(t, EnvProduction, conf.API.Environment)
}

func TestParseTTL(t *testing.T) {
	tests := []struct {
		in      string
		want    time.Duration
		wantErr bool
	}{
		{"7d", 7 * 24 * time.Hour, false},
		{"90m", 90 * time.Minute, false},
		{"1h30m", 90 * time.Minute, false},
		{"0d", 0, true},
		{"-1h", 0, true},
		{"week", 0, true},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseTTL(tt.in)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}
