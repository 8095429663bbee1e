package config

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"

	"intentbot/internal/answers"
	"intentbot/internal/nlp"
)

// EnvPrefix prefixes environment overrides, e.g. INTENTBOT_DATABASE_DSN.
const EnvPrefix = "INTENTBOT"

type Config struct {
	Models nlp.ModelPaths `mapstructure:"models"`

	Lemmatizer struct {
		StemFallback bool   `mapstructure:"stem_fallback"`
		Language     string `mapstructure:"language"`
	} `mapstructure:"lemmatizer"`

	Classifier struct {
		Corpus     string `mapstructure:"corpus"`
		Iterations int    `mapstructure:"iterations"`
		Cutoff     int    `mapstructure:"cutoff"`
		ModelPath  string `mapstructure:"model_path"` // cached trained model, optional
		Retrain    bool   `mapstructure:"retrain"`
	} `mapstructure:"classifier"`

	Pipeline struct {
		Workers int `mapstructure:"workers"`
	} `mapstructure:"pipeline"`

	// Answers maps category labels to replies. Viper lower-cases keys, so
	// labels are expected in lower case.
	Answers         map[string]string `mapstructure:"answers"`
	ClosingCategory string            `mapstructure:"closing_category"`

	Database struct {
		DSN string `mapstructure:"dsn"` // empty disables history
	} `mapstructure:"database"`

	Redis struct {
		Address  string `mapstructure:"address"` // empty disables async jobs
		Password string `mapstructure:"password"`
		DB       int    `mapstructure:"db"`
	} `mapstructure:"redis"`

	Worker struct {
		Concurrency int            `mapstructure:"concurrency"`
		Queues      map[string]int `mapstructure:"queues"`
	} `mapstructure:"worker"`

	Server struct {
		Addr string `mapstructure:"addr"`
		Port string `mapstructure:"port"`
	} `mapstructure:"server"`

	Log struct {
		Level  string `mapstructure:"level"`
		Format string `mapstructure:"format"`
	} `mapstructure:"log"`

	// File is the config file that was read, empty when none was found.
	File string `mapstructure:"-"`
}

// SetDefaults registers a default for every key so environment overrides
// are picked up by Unmarshal.
func SetDefaults(v *viper.Viper) {
	v.SetDefault("models.sentence", "models/en-sent.json")
	v.SetDefault("models.token", "models/en-token.json")
	v.SetDefault("models.pos", "models/en-pos.json")
	v.SetDefault("models.lemma", "models/en-lemmatizer.dict")

	v.SetDefault("lemmatizer.stem_fallback", false)
	v.SetDefault("lemmatizer.language", "english")

	v.SetDefault("classifier.corpus", "response-categories.txt")
	v.SetDefault("classifier.iterations", 500)
	v.SetDefault("classifier.cutoff", 0)
	v.SetDefault("classifier.model_path", "")
	v.SetDefault("classifier.retrain", false)

	v.SetDefault("pipeline.workers", 4)
	v.SetDefault("closing_category", answers.DefaultClosingCategory)

	v.SetDefault("database.dsn", "")

	v.SetDefault("redis.address", "")
	v.SetDefault("redis.password", "")
	v.SetDefault("redis.db", 0)

	v.SetDefault("worker.concurrency", 4)
	v.SetDefault("worker.queues", map[string]int{"classify": 1})

	v.SetDefault("server.addr", "127.0.0.1")
	v.SetDefault("server.port", "8080")

	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "text")
}

// LoadConfig reads config.yaml from the working directory, or configFile when
// set, into the global viper instance.
func LoadConfig(configFile string) (*Config, error) {
	return Load(viper.GetViper(), configFile)
}

// Load reads configuration into v. A missing config.yaml is not an error;
// a missing explicit configFile is.
func Load(v *viper.Viper, configFile string) (*Config, error) {
	SetDefaults(v)

	if configFile != "" {
		v.SetConfigFile(configFile)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
	}

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok || configFile != "" {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("error decoding config: %w", err)
	}
	cfg.File = v.ConfigFileUsed()

	if len(cfg.Answers) == 0 {
		cfg.Answers = answers.DefaultTable()
	}
	if cfg.File != "" {
		cfg.resolvePaths(filepath.Dir(cfg.File))
	}
	return &cfg, nil
}

// StemLanguage is the snowball language for unknown words, empty when the
// stem fallback is off.
func (c *Config) StemLanguage() string {
	if !c.Lemmatizer.StemFallback {
		return ""
	}
	return c.Lemmatizer.Language
}

// ListenAddr is the host:port the API server binds.
func (c *Config) ListenAddr() string {
	return c.Server.Addr + ":" + c.Server.Port
}
