package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/kerbaras/shinobix/pkg/data"
	"github.com/kerbaras/shinobix/pkg/mapper"
	"github.com/kerbaras/shinobix/pkg/services"
	"github.com/kerbaras/shinobix/pkg/sources"
	"github.com/kerbaras/shinobix/pkg/utils"
	"github.com/samber/lo"
	"github.com/spf13/viper"
)

// Keys understood in the config file, as SHINOBIX_* environment variables
// (dots become underscores) and through the bound command-line flags.
const (
	KeyDBDriver         = "db.driver"
	KeyDBPath           = "db.path"
	KeyAniListEndpoint  = "anilist.endpoint"
	KeyMangaDexAPI      = "mangadex.api"
	KeyMangaDexUploads  = "mangadex.uploads"
	KeyMangaDexLanguage = "mangadex.language"
	KeyMangaDexRate     = "mangadex.rate"
	KeyFetchProxies     = "fetch.proxies"
	KeyFetchRetries     = "fetch.retries"
	KeyFetchBaseDelay   = "fetch.base_delay"
	KeyFetchStepDelay   = "fetch.step_delay"
	KeyFetchTimeout     = "fetch.timeout"
	KeyPageSize         = "catalog.page_size"
	KeyGenreLimit       = "catalog.genre_limit"
	KeyTopLimit         = "catalog.top_limit"
	KeyTitleLanguage    = "ui.title_language"
	KeySearchDebounce   = "ui.search_debounce"
	KeyLogLevel         = "log.level"
	KeyLogFile          = "log.file"
)

const EnvPrefix = "SHINOBIX"

type Config struct {
	DB       DBConfig
	AniList  AniListConfig
	MangaDex MangaDexConfig
	Fetch    FetchConfig
	Catalog  CatalogConfig
	UI       UIConfig
	Log      LogConfig
}

type DBConfig struct {
	Driver string
	Path   string
}

type AniListConfig struct {
	Endpoint string
}

type MangaDexConfig struct {
	API      string
	Uploads  string
	Language string
	// Rate is the number of requests per second sent to MangaDex.
	Rate float64
}

type FetchConfig struct {
	Proxies   []string
	Retries   int
	BaseDelay time.Duration
	StepDelay time.Duration
	Timeout   time.Duration
}

type CatalogConfig struct {
	PageSize   int
	GenreLimit int
	TopLimit   int
}

type UIConfig struct {
	TitleLanguage  string
	SearchDebounce time.Duration
}

type LogConfig struct {
	Level string
	File  string
}

// Dir is where the database, the log and the optional config file live.
func Dir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		home = "."
	}
	return filepath.Join(home, ".shinobix")
}

func SetDefaults(v *viper.Viper) {
	v.SetDefault(KeyDBDriver, data.DriverDuckDB)
	v.SetDefault(KeyDBPath, filepath.Join(Dir(), "shinobix.db"))
	v.SetDefault(KeyAniListEndpoint, sources.DefaultAniListEndpoint)
	v.SetDefault(KeyMangaDexAPI, sources.DefaultMangaDexAPI)
	v.SetDefault(KeyMangaDexUploads, sources.DefaultMangaDexUploads)
	v.SetDefault(KeyMangaDexLanguage, sources.DefaultMangaDexLang)
	v.SetDefault(KeyMangaDexRate, 5.0)
	v.SetDefault(KeyFetchProxies, utils.DefaultProxyNames)
	v.SetDefault(KeyFetchRetries, utils.DefaultRetries)
	v.SetDefault(KeyFetchBaseDelay, utils.DefaultBaseDelay)
	v.SetDefault(KeyFetchStepDelay, utils.DefaultStepDelay)
	v.SetDefault(KeyFetchTimeout, 20*time.Second)
	v.SetDefault(KeyPageSize, sources.DefaultPageSize)
	v.SetDefault(KeyGenreLimit, mapper.DefaultGenreLimit)
	v.SetDefault(KeyTopLimit, services.DefaultTopLimit)
	v.SetDefault(KeyTitleLanguage, "")
	v.SetDefault(KeySearchDebounce, 450*time.Millisecond)
	v.SetDefault(KeyLogLevel, "info")
	v.SetDefault(KeyLogFile, filepath.Join(Dir(), "shinobix.log"))
}

// New returns a viper instance with defaults and environment lookup set up.
func New() *viper.Viper {
	v := viper.New()
	SetDefaults(v)
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	return v
}

// ReadFile merges a YAML config file into v. With an empty path the default
// location is tried and its absence is not an error.
func ReadFile(v *viper.Viper, path string) error {
	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return fmt.Errorf("failed to read config %s: %w", path, err)
		}
		return nil
	}

	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(Dir())
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if errors.As(err, &notFound) {
			return nil
		}
		return fmt.Errorf("failed to read config: %w", err)
	}
	return nil
}

// Load reads the settings out of v and validates them.
func Load(v *viper.Viper) (Config, error) {
	cfg := Config{
		DB: DBConfig{
			Driver: v.GetString(KeyDBDriver),
			Path:   v.GetString(KeyDBPath),
		},
		AniList: AniListConfig{
			Endpoint: v.GetString(KeyAniListEndpoint),
		},
		MangaDex: MangaDexConfig{
			API:      v.GetString(KeyMangaDexAPI),
			Uploads:  v.GetString(KeyMangaDexUploads),
			Language: v.GetString(KeyMangaDexLanguage),
			Rate:     v.GetFloat64(KeyMangaDexRate),
		},
		Fetch: FetchConfig{
			Proxies:   splitList(v.GetStringSlice(KeyFetchProxies)),
			Retries:   v.GetInt(KeyFetchRetries),
			BaseDelay: v.GetDuration(KeyFetchBaseDelay),
			StepDelay: v.GetDuration(KeyFetchStepDelay),
			Timeout:   v.GetDuration(KeyFetchTimeout),
		},
		Catalog: CatalogConfig{
			PageSize:   v.GetInt(KeyPageSize),
			GenreLimit: v.GetInt(KeyGenreLimit),
			TopLimit:   v.GetInt(KeyTopLimit),
		},
		UI: UIConfig{
			TitleLanguage:  v.GetString(KeyTitleLanguage),
			SearchDebounce: v.GetDuration(KeySearchDebounce),
		},
		Log: LogConfig{
			Level: v.GetString(KeyLogLevel),
			File:  v.GetString(KeyLogFile),
		},
	}
	return cfg, cfg.Validate()
}

func (c Config) Validate() error {
	if c.DB.Driver != data.DriverDuckDB && c.DB.Driver != data.DriverSQLite {
		return fmt.Errorf("%s must be %s or %s, got %q", KeyDBDriver, data.DriverDuckDB, data.DriverSQLite, c.DB.Driver)
	}
	if c.DB.Path == "" {
		return fmt.Errorf("%s is empty", KeyDBPath)
	}
	if _, err := utils.ProxiesByName(c.Fetch.Proxies); err != nil {
		return fmt.Errorf("%s: %w", KeyFetchProxies, err)
	}
	if c.Fetch.Retries < 0 {
		return fmt.Errorf("%s must not be negative", KeyFetchRetries)
	}
	if c.MangaDex.Rate <= 0 {
		return fmt.Errorf("%s must be positive", KeyMangaDexRate)
	}
	return nil
}

// splitList accepts both YAML lists and comma separated env values.
func splitList(values []string) []string {
	parts := lo.FlatMap(values, func(v string, _ int) []string {
		return strings.Split(v, ",")
	})
	return lo.Compact(lo.Map(parts, func(p string, _ int) string {
		return strings.TrimSpace(p)
	}))
}
