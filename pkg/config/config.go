package config

import (
	"errors"
	"fmt"
	"os"
	"runtime"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"github.com/spf13/viper"

	"feriaocr/pkg/fields"
	"feriaocr/pkg/vocab"
)

// MaxWorkers bounds the worker pool; each worker holds its own OCR engine.
const MaxWorkers = 64

// ErrInvalidConfig wraps every validation failure reported by Load and
// PrepareDirs.
var ErrInvalidConfig = errors.New("invalid configuration")

// Config holds all application configuration.
type Config struct {
	InputDir    string        `mapstructure:"input_dir" validate:"required"`
	OutputDir   string        `mapstructure:"output_dir" validate:"required"`
	Format      string        `mapstructure:"format" validate:"oneof=csv excel json"`
	Workers     int           `mapstructure:"workers" validate:"gte=1,lte=64"`
	FileTimeout time.Duration `mapstructure:"file_timeout" validate:"gte=0"`
	ArchiveDir  string        `mapstructure:"archive_dir"`

	OCR      OCRConfig      `mapstructure:"ocr"`
	Match    MatchConfig    `mapstructure:"match"`
	Region   RegionConfig   `mapstructure:"region"`
	Vocab    VocabConfig    `mapstructure:"vocab"`
	Database DatabaseConfig `mapstructure:"database"`
	Redis    RedisConfig    `mapstructure:"redis"`
	Server   ServerConfig   `mapstructure:"server"`
	Log      LogConfig      `mapstructure:"log"`
}

// OCRConfig holds recognition settings.
type OCRConfig struct {
	Languages      []string `mapstructure:"languages" validate:"min=1,dive,required"`
	PSMModes       []int    `mapstructure:"psm_modes" validate:"min=1,dive,gte=0,lte=13"`
	MinConfidence  float64  `mapstructure:"min_confidence" validate:"gte=0,lte=100"`
	Scale          float64  `mapstructure:"scale" validate:"gt=0,lte=8"`
	CLAHEClip      float64  `mapstructure:"clahe_clip" validate:"gt=0"`
	TessdataPrefix string   `mapstructure:"tessdata_prefix"`
}

// MatchConfig holds vocabulary matching settings.
type MatchConfig struct {
	Threshold float64 `mapstructure:"threshold" validate:"gte=0,lte=100"`
}

// RegionConfig holds sign detection settings.
type RegionConfig struct {
	MinAreaFraction float64 `mapstructure:"min_area_fraction" validate:"gt=0,lt=1"`
	MaxCandidates   int     `mapstructure:"max_candidates" validate:"gte=1"`
}

// VocabConfig holds the canonical term lists.
type VocabConfig struct {
	Products   []string `mapstructure:"products" validate:"min=1"`
	Units      []string `mapstructure:"units" validate:"min=1"`
	UnitTokens []string `mapstructure:"unit_tokens" validate:"min=1"`
}

// DatabaseConfig holds the optional PostgreSQL connection.
type DatabaseConfig struct {
	DSN string `mapstructure:"dsn"`
}

// RedisConfig holds the optional result cache.
type RedisConfig struct {
	URL string        `mapstructure:"url"`
	TTL time.Duration `mapstructure:"ttl" validate:"gte=0"`
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Port        string `mapstructure:"port" validate:"required"`
	JWTSecret   string `mapstructure:"jwt_secret"`
	MaxUploadMB int64  `mapstructure:"max_upload_mb" validate:"gte=1"`
}

// LogConfig holds logging settings.
type LogConfig struct {
	Level string `mapstructure:"level" validate:"oneof=trace debug info warn error"`
	File  string `mapstructure:"file"`
}

// Products returns the product vocabulary.
func (c *Config) Products() vocab.Vocabulary { return vocab.New(c.Vocab.Products...) }

// Units returns the unit vocabulary.
func (c *Config) Units() vocab.Vocabulary { return vocab.New(c.Vocab.Units...) }

func setDefaults(v *viper.Viper) {
	v.SetDefault("input_dir", "images")
	v.SetDefault("output_dir", "outputs")
	v.SetDefault("format", "csv")
	v.SetDefault("workers", min(runtime.NumCPU(), MaxWorkers))
	v.SetDefault("file_timeout", "0s")
	v.SetDefault("archive_dir", "")

	v.SetDefault("ocr.languages", []string{"spa", "eng"})
	v.SetDefault("ocr.psm_modes", []int{6, 7})
	v.SetDefault("ocr.min_confidence", 50)
	v.SetDefault("ocr.scale", 2.0)
	v.SetDefault("ocr.clahe_clip", 4.0)
	v.SetDefault("ocr.tessdata_prefix", "")

	v.SetDefault("match.threshold", 60)

	v.SetDefault("region.min_area_fraction", 0.01)
	v.SetDefault("region.max_candidates", 5)

	v.SetDefault("vocab.products", vocab.DefaultProducts)
	v.SetDefault("vocab.units", vocab.DefaultUnits)
	v.SetDefault("vocab.unit_tokens", fields.DefaultUnitTokens)

	v.SetDefault("database.dsn", "")
	v.SetDefault("redis.url", "")
	v.SetDefault("redis.ttl", "24h")

	v.SetDefault("server.port", ":8080")
	v.SetDefault("server.jwt_secret", "")
	v.SetDefault("server.max_upload_mb", 10)

	v.SetDefault("log.level", "info")
	v.SetDefault("log.file", "")
}

// Load reads configuration from .env, an optional file at path and
// environment variables with the FERIA_ prefix, in increasing priority.
func Load(path string) (*Config, error) {
	_ = godotenv.Load()

	v := viper.New()
	v.SetEnvPrefix("FERIA")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	setDefaults(v)

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("%w: read %s: %v", ErrInvalidConfig, path, err)
		}
	}

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidConfig, err)
	}
	if cfg.OCR.TessdataPrefix == "" {
		cfg.OCR.TessdataPrefix = os.Getenv("TESSDATA_PREFIX")
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

var validate = validator.New()

// Validate checks field ranges and enumerations.
func (c *Config) Validate() error {
	if err := validate.Struct(c); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) {
			msgs := make([]string, 0, len(verrs))
			for _, fe := range verrs {
				msgs = append(msgs, fmt.Sprintf("%s failed %s", fe.Namespace(), fe.Tag()))
			}
			return fmt.Errorf("%w: %s", ErrInvalidConfig, strings.Join(msgs, "; "))
		}
		return fmt.Errorf("%w: %v", ErrInvalidConfig, err)
	}
	return nil
}

// PrepareDirs checks that the input directory exists and creates the output
// and archive directories.
func (c *Config) PrepareDirs() error {
	st, err := os.Stat(c.InputDir)
	if err != nil {
		return fmt.Errorf("%w: input_dir: %v", ErrInvalidConfig, err)
	}
	if !st.IsDir() {
		return fmt.Errorf("%w: input_dir %s is not a directory", ErrInvalidConfig, c.InputDir)
	}
	if err := os.MkdirAll(c.OutputDir, 0o755); err != nil {
		return fmt.Errorf("%w: output_dir: %v", ErrInvalidConfig, err)
	}
	if c.ArchiveDir != "" {
		if err := os.MkdirAll(c.ArchiveDir, 0o755); err != nil {
			return fmt.Errorf("%w: archive_dir: %v", ErrInvalidConfig, err)
		}
	}
	return nil
}
