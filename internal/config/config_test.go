package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

// chdirTemp moves into an empty directory so no stray config.yaml is read.
func chdirTemp(t *testing.T) {
	t.Helper()
	wd, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(t.TempDir()))
	t.Cleanup(func() { os.Chdir(wd) })
}

func TestLoad_Defaults(t *testing.T) {
	chdirTemp(t)

	cfg, err := Load(viper.New(), "")
	require.NoError(t, err)
	require.NoError(t, cfg.Validate())

	assert.Empty(t, cfg.File)
	assert.Equal(t, "models/en-sent.json", cfg.Models.Sentence)
	assert.Equal(t, 500, cfg.Classifier.Iterations)
	assert.Equal(t, 0, cfg.Classifier.Cutoff)
	assert.Equal(t, 4, cfg.Pipeline.Workers)
	assert.Equal(t, "conversation-complete", cfg.ClosingCategory)
	assert.Equal(t, "Price is $300,000", cfg.Answers["price-inquiry"])
	assert.Equal(t, map[string]int{"classify": 1}, cfg.Worker.Queues)
	assert.Equal(t, "127.0.0.1:8080", cfg.ListenAddr())
	assert.Empty(t, cfg.StemLanguage())
}

func TestLoad_File(t *testing.T) {
	path := writeConfig(t, `
models:
  sentence: models/sent.json
  token: /abs/token.json
  pos: models/pos.json
  lemma: models/lemma.dict
lemmatizer:
  stem_fallback: true
classifier:
  corpus: corpus.txt
  iterations: 50
  cutoff: 1
answers:
  greeting: "Hey!"
closing_category: done
database:
  dsn: sqlite3://history.db
log:
  level: debug
  format: json
`)
	cfg, err := Load(viper.New(), path)
	require.NoError(t, err)
	require.NoError(t, cfg.Validate())

	dir := filepath.Dir(path)
	assert.Equal(t, path, cfg.File)
	assert.Equal(t, filepath.Join(dir, "models/sent.json"), cfg.Models.Sentence)
	assert.Equal(t, "/abs/token.json", cfg.Models.Token)
	assert.Equal(t, filepath.Join(dir, "corpus.txt"), cfg.Classifier.Corpus)
	assert.Empty(t, cfg.Classifier.ModelPath)
	assert.Equal(t, 50, cfg.Classifier.Iterations)
	assert.Equal(t, map[string]string{"greeting": "Hey!"}, cfg.Answers, "configured answers replace the defaults")
	assert.Equal(t, "done", cfg.ClosingCategory)
	assert.Equal(t, "english", cfg.StemLanguage())
	assert.Equal(t, "json", cfg.Log.Format)
}

func TestLoad_EnvOverride(t *testing.T) {
	chdirTemp(t)
	t.Setenv("INTENTBOT_PIPELINE_WORKERS", "9")
	t.Setenv("INTENTBOT_DATABASE_DSN", "postgres://bot@localhost/bot")

	cfg, err := Load(viper.New(), "")
	require.NoError(t, err)
	assert.Equal(t, 9, cfg.Pipeline.Workers)
	assert.Equal(t, "postgres://bot@localhost/bot", cfg.Database.DSN)
}

func TestLoad_MissingExplicitFile(t *testing.T) {
	_, err := Load(viper.New(), filepath.Join(t.TempDir(), "nope.yaml"))
	assert.Error(t, err)
}

func TestValidate(t *testing.T) {
	chdirTemp(t)

	cases := []struct {
		name string
		edit func(c *Config)
	}{
		{"missing model", func(c *Config) { c.Models.POS = "" }},
		{"no corpus or model", func(c *Config) { c.Classifier.Corpus = ""; c.Classifier.ModelPath = "" }},
		{"retrain without corpus", func(c *Config) { c.Classifier.Corpus = ""; c.Classifier.ModelPath = "m.json"; c.Classifier.Retrain = true }},
		{"zero iterations", func(c *Config) { c.Classifier.Iterations = 0 }},
		{"negative cutoff", func(c *Config) { c.Classifier.Cutoff = -1 }},
		{"zero workers", func(c *Config) { c.Pipeline.Workers = 0 }},
		{"bad stem language", func(c *Config) { c.Lemmatizer.StemFallback = true; c.Lemmatizer.Language = "elvish" }},
		{"empty answer", func(c *Config) { c.Answers["greeting"] = "" }},
		{"bad dsn", func(c *Config) { c.Database.DSN = "mysql://x" }},
		{"no queues", func(c *Config) { c.Worker.Queues = nil }},
		{"bad queue priority", func(c *Config) { c.Worker.Queues = map[string]int{"classify": 0} }},
		{"bad log level", func(c *Config) { c.Log.Level = "loud" }},
		{"bad log format", func(c *Config) { c.Log.Format = "xml" }},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			cfg, err := Load(viper.New(), "")
			require.NoError(t, err)
			tc.edit(cfg)
			assert.Error(t, cfg.Validate())
		})
	}
}

func TestParseDSN(t *testing.T) {
	cases := []struct {
		dsn, driver, conn string
	}{
		{"", DriverNone, ""},
		{"postgres://u@h/db", DriverPostgres, "postgres://u@h/db"},
		{"postgresql://u@h/db", DriverPostgres, "postgresql://u@h/db"},
		{"sqlite3://data/history.db", DriverSQLite, "data/history.db"},
		{"file:history.db?cache=shared", DriverSQLite, "file:history.db?cache=shared"},
		{":memory:", DriverSQLite, ":memory:"},
	}
	for _, tc := range cases {
		driver, conn, err := ParseDSN(tc.dsn)
		require.NoError(t, err, tc.dsn)
		assert.Equal(t, tc.driver, driver, tc.dsn)
		assert.Equal(t, tc.conn, conn, tc.dsn)
	}

	_, _, err := ParseDSN("sqlite3://")
	assert.Error(t, err)
	_, _, err = ParseDSN("redis://localhost")
	assert.Error(t, err)
}
