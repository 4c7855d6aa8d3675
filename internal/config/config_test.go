package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validConfig() *Config {
	return &Config{
		DBDriver:     DriverSQLite,
		DBPath:       "board.db",
		SessionStore: "cookie",
		OpenAIAPIKey: "sk-test",
		Locale:       LocaleEnglish,
	}
}

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("DB_DRIVER", "")
	t.Setenv("APP_LOCALE", "")

	cfg := Load()

	assert.Equal(t, DriverSQLite, cfg.DBDriver)
	assert.Equal(t, LocaleEnglish, cfg.Locale)
	assert.Equal(t, "cookie", cfg.SessionStore)
}

func TestLoad_EnvironmentOverrides(t *testing.T) {
	t.Setenv("DB_DRIVER", DriverPostgres)
	t.Setenv("OPENAI_MODEL", "gpt-4o-mini")

	cfg := Load()

	assert.Equal(t, DriverPostgres, cfg.DBDriver)
	assert.Equal(t, "gpt-4o-mini", cfg.OpenAIModel)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(c *Config)
		wantErr bool
	}{
		{name: "valid", mutate: func(c *Config) {}},
		{name: "missing api key", mutate: func(c *Config) { c.OpenAIAPIKey = "" }, wantErr: true},
		{name: "unknown driver", mutate: func(c *Config) { c.DBDriver = "oracle" }, wantErr: true},
		{name: "sqlite without path", mutate: func(c *Config) { c.DBPath = "" }, wantErr: true},
		{name: "mysql", mutate: func(c *Config) { c.DBDriver = DriverMySQL }},
		{name: "unknown locale", mutate: func(c *Config) { c.Locale = "fr" }, wantErr: true},
		{name: "unknown session store", mutate: func(c *Config) { c.SessionStore = "memcache" }, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := validConfig()
			tt.mutate(cfg)

			err := cfg.Validate()
			if tt.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
		})
	}
}

func TestValidate_MissingAPIKeySentinel(t *testing.T) {
	cfg := validConfig()
	cfg.OpenAIAPIKey = ""

	assert.ErrorIs(t, cfg.Validate(), ErrMissingAPIKey)
}
