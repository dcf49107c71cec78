package main

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/viper"

	"github.com/gnana997/hooks2vue/pkg/parser"
	"github.com/gnana997/hooks2vue/pkg/util"
	"github.com/gnana997/hooks2vue/pkg/workspace"
)

const (
	configName = ".hooks2vue"
	configType = "yaml"
	envPrefix  = "HOOKS2VUE"
)

// Config is the merged configuration: defaults, then the config file, then
// HOOKS2VUE_* environment variables.
type Config struct {
	Log       LogConfig       `mapstructure:"log"`
	Transform TransformConfig `mapstructure:"transform"`
	Convert   ConvertConfig   `mapstructure:"convert"`
	Watch     WatchConfig     `mapstructure:"watch"`
	Cache     CacheConfig     `mapstructure:"cache"`
	Serve     ServeConfig     `mapstructure:"serve"`
}

type LogConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

type TransformConfig struct {
	RewriteImports bool   `mapstructure:"rewrite_imports"`
	Language       string `mapstructure:"language"`
}

type ConvertConfig struct {
	Include []string `mapstructure:"include"`
	Exclude []string `mapstructure:"exclude"`
	OutDir  string   `mapstructure:"out_dir"`
	Suffix  string   `mapstructure:"suffix"`
	Workers int      `mapstructure:"workers"`
}

type WatchConfig struct {
	DebounceMs int `mapstructure:"debounce_ms"`
}

type CacheConfig struct {
	Size int `mapstructure:"size"`
}

type ServeConfig struct {
	// LogFile enables JSONL tool-call logging when set.
	LogFile string `mapstructure:"log_file"`
}

// LoadConfig loads configuration. An explicit path must exist; otherwise
// .hooks2vue.yaml is looked up in the working directory and $HOME, and a
// missing file just means defaults.
func LoadConfig(path string) (*Config, error) {
	v := viper.New()
	applyDefaults(v)

	v.SetConfigType(configType)
	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName(configName)
		v.AddConfigPath(".")
		if home, err := os.UserHomeDir(); err == nil {
			v.AddConfigPath(home)
		}
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("read config: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("validate config: %w", err)
	}
	return &cfg, nil
}

func applyDefaults(v *viper.Viper) {
	convert := workspace.DefaultConvertOptions()

	v.SetDefault("log.level", string(util.LevelWarn))
	v.SetDefault("log.format", string(util.FormatText))

	v.SetDefault("transform.rewrite_imports", true)
	v.SetDefault("transform.language", "")

	v.SetDefault("convert.include", convert.Include)
	v.SetDefault("convert.exclude", convert.Exclude)
	v.SetDefault("convert.out_dir", "")
	v.SetDefault("convert.suffix", convert.Suffix)
	v.SetDefault("convert.workers", 0)

	v.SetDefault("watch.debounce_ms", workspace.DefaultWatchOptions().DebounceMs)
	v.SetDefault("cache.size", 256)
	v.SetDefault("serve.log_file", "")
}

// Validate rejects values no command could run with.
func (c *Config) Validate() error {
	switch util.LogFormat(c.Log.Format) {
	case util.FormatText, util.FormatJSON:
	default:
		return fmt.Errorf("log.format must be text or json, got %q", c.Log.Format)
	}
	if c.Transform.Language != "" {
		if _, err := parser.ParseDialect(c.Transform.Language); err != nil {
			return fmt.Errorf("transform.language: %w", err)
		}
	}
	if c.Convert.OutDir == "" && c.Convert.Suffix == "" {
		return errors.New("convert.suffix must not be empty when convert.out_dir is unset")
	}
	if c.Convert.Workers < 0 {
		return fmt.Errorf("convert.workers must not be negative, got %d", c.Convert.Workers)
	}
	if c.Watch.DebounceMs < 0 {
		return fmt.Errorf("watch.debounce_ms must not be negative, got %d", c.Watch.DebounceMs)
	}
	if c.Cache.Size <= 0 {
		return fmt.Errorf("cache.size must be positive, got %d", c.Cache.Size)
	}
	return nil
}

// ConvertOptions maps the convert section onto workspace options.
func (c *Config) ConvertOptions() workspace.ConvertOptions {
	return workspace.ConvertOptions{
		Include:        c.Convert.Include,
		Exclude:        c.Convert.Exclude,
		OutDir:         c.Convert.OutDir,
		Suffix:         c.Convert.Suffix,
		Workers:        c.Convert.Workers,
		RewriteImports: c.Transform.RewriteImports,
	}
}
