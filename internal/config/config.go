package config

import (
	"log"
	"os"

	"gopkg.in/yaml.v3"
)

const (
	configPathEnv   = "FAKENEWS_CONFIG"
	httpAddrEnv     = "FAKENEWS_HTTP_ADDR"
	artifactPathEnv = "FAKENEWS_ARTIFACT_PATH"
	corpusDirEnv    = "FAKENEWS_CORPUS_DIR"
	databasePathEnv = "FAKENEWS_DB_PATH"
	logLevelEnv     = "FAKENEWS_LOG_LEVEL"
)

// Config holds high-level settings required across the application.
type Config struct {
	Server     ServerConfig     `yaml:"server"`
	Logging    LoggingConfig    `yaml:"logging"`
	Model      ModelConfig      `yaml:"model"`
	Corpus     CorpusConfig     `yaml:"corpus"`
	Validation ValidationConfig `yaml:"validation"`
	Vectorizer VectorizerConfig `yaml:"vectorizer"`
	Training   TrainingConfig   `yaml:"training"`
	Storage    StorageConfig    `yaml:"storage"`
}

// ServerConfig describes the HTTP listener.
type ServerConfig struct {
	Addr string `yaml:"addr"`
}

// LoggingConfig sets the slog level.
type LoggingConfig struct {
	Level string `yaml:"level"`
}

// ModelConfig locates the persisted artifact and controls hot reload.
type ModelConfig struct {
	ArtifactPath string `yaml:"artifactPath"`
	WatchReload  bool   `yaml:"watchReload"`
}

// CorpusConfig points at the raw training data directory.
type CorpusConfig struct {
	Dir string `yaml:"dir"`
}

// ValidationConfig bounds accepted inference input.
type ValidationConfig struct {
	MinTextLength int     `yaml:"minTextLength"`
	MaxTextLength int     `yaml:"maxTextLength"`
	MinAlphaRatio float64 `yaml:"minAlphaRatio"`
	LanguageCheck bool    `yaml:"languageCheck"`
}

// VectorizerConfig bounds the fitted vocabulary.
type VectorizerConfig struct {
	MaxFeatures     int     `yaml:"maxFeatures"`
	NGramMin        int     `yaml:"ngramMin"`
	NGramMax        int     `yaml:"ngramMax"`
	MinDocFreq      int     `yaml:"minDocFreq"`
	MaxDocFreqRatio float64 `yaml:"maxDocFreqRatio"`
}

// TrainingConfig controls the optimizer and the evaluation split.
type TrainingConfig struct {
	RegularizationC float64 `yaml:"regularizationC"`
	MaxIterations   int     `yaml:"maxIterations"`
	Tolerance       float64 `yaml:"tolerance"`
	TestFraction    float64 `yaml:"testFraction"`
	Seed            int64   `yaml:"seed"`
	Stemming        bool    `yaml:"stemming"`
}

// StorageConfig describes the optional prediction-history database.
type StorageConfig struct {
	SQLitePath string `yaml:"sqlitePath"`
}

// Load reads YAML configuration (if present) and applies environment overrides.
func Load() Config {
	cfg := Default()

	if path := os.Getenv(configPathEnv); path != "" {
		if raw, err := os.ReadFile(path); err != nil {
			log.Printf("config: cannot read %s: %v (falling back to defaults)", path, err)
		} else {
			var fileCfg Config
			if err := yaml.Unmarshal(raw, &fileCfg); err != nil {
				log.Printf("config: cannot parse %s: %v (falling back to defaults)", path, err)
			} else {
				cfg = mergeConfig(cfg, fileCfg)
			}
		}
	}

	cfg.applyEnvOverrides()
	return cfg
}

func (c *Config) applyEnvOverrides() {
	if v := os.Getenv(httpAddrEnv); v != "" {
		c.Server.Addr = v
	}
	if v := os.Getenv(artifactPathEnv); v != "" {
		c.Model.ArtifactPath = v
	}
	if v := os.Getenv(corpusDirEnv); v != "" {
		c.Corpus.Dir = v
	}
	if v := os.Getenv(databasePathEnv); v != "" {
		c.Storage.SQLitePath = v
	}
	if v := os.Getenv(logLevelEnv); v != "" {
		c.Logging.Level = v
	}
}

func mergeConfig(base, override Config) Config {
	if override.Server.Addr != "" {
		base.Server.Addr = override.Server.Addr
	}
	if override.Logging.Level != "" {
		base.Logging.Level = override.Logging.Level
	}
	if override.Model.ArtifactPath != "" {
		base.Model.ArtifactPath = override.Model.ArtifactPath
	}
	if override.Model.WatchReload {
		base.Model.WatchReload = true
	}
	if override.Corpus.Dir != "" {
		base.Corpus.Dir = override.Corpus.Dir
	}
	if override.Validation.MinTextLength > 0 {
		base.Validation.MinTextLength = override.Validation.MinTextLength
	}
	if override.Validation.MaxTextLength > 0 {
		base.Validation.MaxTextLength = override.Validation.MaxTextLength
	}
	if override.Validation.MinAlphaRatio > 0 {
		base.Validation.MinAlphaRatio = override.Validation.MinAlphaRatio
	}
	if override.Validation.LanguageCheck {
		base.Validation.LanguageCheck = true
	}
	if override.Vectorizer.MaxFeatures > 0 {
		base.Vectorizer.MaxFeatures = override.Vectorizer.MaxFeatures
	}
	if override.Vectorizer.NGramMin > 0 {
		base.Vectorizer.NGramMin = override.Vectorizer.NGramMin
	}
	if override.Vectorizer.NGramMax > 0 {
		base.Vectorizer.NGramMax = override.Vectorizer.NGramMax
	}
	if override.Vectorizer.MinDocFreq > 0 {
		base.Vectorizer.MinDocFreq = override.Vectorizer.MinDocFreq
	}
	if override.Vectorizer.MaxDocFreqRatio > 0 {
		base.Vectorizer.MaxDocFreqRatio = override.Vectorizer.MaxDocFreqRatio
	}
	if override.Training.RegularizationC > 0 {
		base.Training.RegularizationC = override.Training.RegularizationC
	}
	if override.Training.MaxIterations > 0 {
		base.Training.MaxIterations = override.Training.MaxIterations
	}
	if override.Training.Tolerance > 0 {
		base.Training.Tolerance = override.Training.Tolerance
	}
	if override.Training.TestFraction > 0 {
		base.Training.TestFraction = override.Training.TestFraction
	}
	if override.Training.Seed != 0 {
		base.Training.Seed = override.Training.Seed
	}
	if override.Training.Stemming {
		base.Training.Stemming = true
	}
	if override.Storage.SQLitePath != "" {
		base.Storage.SQLitePath = override.Storage.SQLitePath
	}
	return base
}

// Default returns the built-in configuration.
func Default() Config {
	return Config{
		Server:  ServerConfig{Addr: ":8080"},
		Logging: LoggingConfig{Level: "info"},
		Model:   ModelConfig{ArtifactPath: "models/fake_news_model.json", WatchReload: false},
		Corpus:  CorpusConfig{Dir: "data"},
		Validation: ValidationConfig{
			MinTextLength: 10,
			MaxTextLength: 10000,
			MinAlphaRatio: 0.5,
			LanguageCheck: false,
		},
		Vectorizer: VectorizerConfig{
			MaxFeatures:     10000,
			NGramMin:        1,
			NGramMax:        2,
			MinDocFreq:      2,
			MaxDocFreqRatio: 0.95,
		},
		Training: TrainingConfig{
			RegularizationC: 1.0,
			MaxIterations:   1000,
			Tolerance:       1e-4,
			TestFraction:    0.2,
			Seed:            42,
			Stemming:        false,
		},
		Storage: StorageConfig{SQLitePath: ""},
	}
}
