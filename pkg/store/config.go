package store

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/mitchellh/go-homedir"
	"github.com/spf13/viper"
	"golang.org/x/text/language"
)

// Config exposes the settings the store and scheduler need.
type Config interface {
	BasePath() string
	LogLevel() string
	ReadyDelay() time.Duration
	HorizonYears() int
	Language() language.Tag
}

const (
	defaultPath       = "~/.bulletin.db"
	defaultReadyDelay = time.Second
)

// LoadConfig reads .bulletin.yaml from $BULLETIN_CONFIG_PATH, the working
// directory, or $HOME. BULLETIN_* environment variables override file values.
func LoadConfig() (Config, error) {
	v := viper.New()
	v.SetDefault("path", defaultPath)
	v.SetDefault("log_level", "info")
	v.SetDefault("ready_delay", defaultReadyDelay)
	v.SetDefault("max_date_horizon", 1)
	v.SetDefault("language", "en")
	v.SetConfigName(".bulletin") // .yaml is implicit
	v.SetEnvPrefix("BULLETIN")
	v.AutomaticEnv()

	if override := os.Getenv("BULLETIN_CONFIG_PATH"); override != "" {
		v.AddConfigPath(override)
	}
	v.AddConfigPath("./")
	if home, err := homedir.Dir(); err == nil {
		v.AddConfigPath(home)
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("store: read config: %w", err)
		}
	}

	path, err := homedir.Expand(v.GetString("path"))
	if err != nil {
		return nil, fmt.Errorf("store: expand path: %w", err)
	}

	lang, err := language.Parse(v.GetString("language"))
	if err != nil {
		lang = language.English
	}

	horizon := v.GetInt("max_date_horizon")
	if horizon <= 0 {
		horizon = 1
	}
	delay := v.GetDuration("ready_delay")
	if delay < 0 {
		delay = defaultReadyDelay
	}

	return &fileConfig{
		Path:    path,
		Level:   v.GetString("log_level"),
		Delay:   delay,
		Horizon: horizon,
		Lang:    lang,
	}, nil
}

type fileConfig struct {
	Path    string
	Level   string
	Delay   time.Duration
	Horizon int
	Lang    language.Tag
}

func (f *fileConfig) BasePath() string          { return f.Path }
func (f *fileConfig) LogLevel() string          { return f.Level }
func (f *fileConfig) ReadyDelay() time.Duration { return f.Delay }
func (f *fileConfig) HorizonYears() int         { return f.Horizon }
func (f *fileConfig) Language() language.Tag    { return f.Lang }

// StaticConfig is a Config with fixed values, useful for tests and embedding.
type StaticConfig struct {
	Path    string
	Level   string
	Delay   time.Duration
	Horizon int
	Lang    language.Tag
}

func (s StaticConfig) BasePath() string { return s.Path }

func (s StaticConfig) LogLevel() string {
	if s.Level == "" {
		return "info"
	}
	return s.Level
}

func (s StaticConfig) ReadyDelay() time.Duration { return s.Delay }

func (s StaticConfig) HorizonYears() int {
	if s.Horizon <= 0 {
		return 1
	}
	return s.Horizon
}

func (s StaticConfig) Language() language.Tag {
	if s.Lang == language.Und {
		return language.English
	}
	return s.Lang
}
