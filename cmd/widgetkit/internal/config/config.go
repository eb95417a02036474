// Package config loads widgetkit.yaml, WIDGETKIT_* environment variables
// and command-line flags into one Config.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/viper"
	"golang.org/x/mod/modfile"
	"golang.org/x/mod/module"

	"github.com/go-drift/widgetkit/pkg/actions"
	"github.com/go-drift/widgetkit/pkg/host"
	"github.com/go-drift/widgetkit/pkg/imagecache"
)

// FileName is the config file looked up in the working directory.
const FileName = "widgetkit.yaml"

// EnvPrefix prefixes environment overrides: store.backend is read from
// WIDGETKIT_STORE_BACKEND.
const EnvPrefix = "WIDGETKIT"

// DefaultServeAddr is where `widgetkit serve` listens.
const DefaultServeAddr = "127.0.0.1:7333"

// Config is the resolved CLI configuration.
type Config struct {
	Group string `mapstructure:"group"`
	// Assets is a directory of bundled images looked up by name.
	Assets  string        `mapstructure:"assets"`
	Store   StoreConfig   `mapstructure:"store"`
	Images  ImagesConfig  `mapstructure:"images"`
	Actions ActionsConfig `mapstructure:"actions"`
	Reload  ReloadConfig  `mapstructure:"reload"`
	Updater UpdaterConfig `mapstructure:"updater"`
	Serve   ServeConfig   `mapstructure:"serve"`
	Log     LogConfig     `mapstructure:"log"`
}

// StoreConfig selects the key-value backend.
type StoreConfig struct {
	Backend string      `mapstructure:"backend"`
	Dir     string      `mapstructure:"dir"`
	Redis   RedisConfig `mapstructure:"redis"`
}

// RedisConfig configures the redis backend.
type RedisConfig struct {
	Addr     string `mapstructure:"addr"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
}

// ImagesConfig configures the remote image cache.
type ImagesConfig struct {
	TTL            time.Duration `mapstructure:"ttl"`
	MaxBytes       int64         `mapstructure:"maxBytes"`
	ConnectTimeout time.Duration `mapstructure:"connectTimeout"`
	ReadTimeout    time.Duration `mapstructure:"readTimeout"`
	MemoryEntries  int           `mapstructure:"memoryEntries"`
}

type ActionsConfig struct {
	DedupWindow time.Duration `mapstructure:"dedupWindow"`
}

type ReloadConfig struct {
	MinInterval time.Duration `mapstructure:"minInterval"`
}

type UpdaterConfig struct {
	Schedule string `mapstructure:"schedule"`
}

type ServeConfig struct {
	Addr string `mapstructure:"addr"`
}

type LogConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

// New returns a viper instance with defaults and environment binding set.
// Flags are bound by the caller before Load.
func New() *viper.Viper {
	v := viper.New()
	setDefaults(v)
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	return v
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("group", "")
	v.SetDefault("assets", "")
	v.SetDefault("store.backend", "file")
	v.SetDefault("store.dir", "")
	v.SetDefault("store.redis.addr", "127.0.0.1:6379")
	v.SetDefault("store.redis.password", "")
	v.SetDefault("store.redis.db", 0)
	v.SetDefault("images.ttl", imagecache.DefaultTTL)
	v.SetDefault("images.maxBytes", imagecache.DefaultMaxBytes)
	v.SetDefault("images.connectTimeout", imagecache.DefaultConnectTimeout)
	v.SetDefault("images.readTimeout", imagecache.DefaultReadTimeout)
	v.SetDefault("images.memoryEntries", imagecache.DefaultMemoryEntries)
	v.SetDefault("actions.dedupWindow", actions.DefaultDedupWindow)
	v.SetDefault("reload.minInterval", time.Duration(0))
	v.SetDefault("updater.schedule", host.DefaultSchedule)
	v.SetDefault("serve.addr", DefaultServeAddr)
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "console")
}

// Load reads the config file and resolves defaults. An explicit path must
// exist; otherwise widgetkit.yaml in dir is optional.
func Load(v *viper.Viper, path, dir string) (*Config, error) {
	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName(strings.TrimSuffix(FileName, filepath.Ext(FileName)))
		v.SetConfigType("yaml")
		v.AddConfigPath(dir)
	}
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if path != "" || !errors.As(err, &notFound) {
			return nil, fmt.Errorf("failed to read config: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	cfg.Group = strings.TrimSpace(cfg.Group)
	if cfg.Group == "" {
		cfg.Group = DefaultGroup(dir)
	}
	return &cfg, nil
}

// DefaultGroup derives "group.<app id>" from the go.mod above dir, the way
// bundle IDs are derived from module paths. Outside a module it falls back
// to a fixed example group.
func DefaultGroup(dir string) string {
	appID := "com.example.widgetkit"
	if root, err := FindProjectRoot(dir); err == nil {
		if modulePath, err := modulePath(root); err == nil {
			appID = defaultAppID(modulePath, defaultAppName(modulePath, root))
		}
	}
	return "group." + appID
}

// FindProjectRoot walks up from dir to find go.mod.
func FindProjectRoot(dir string) (string, error) {
	dir, err := filepath.Abs(dir)
	if err != nil {
		return "", err
	}

	for {
		if _, err := os.Stat(filepath.Join(dir, "go.mod")); err == nil {
			return dir, nil
		}

		parent := filepath.Dir(dir)
		if parent == dir {
			return "", fmt.Errorf("not in a Go module (no go.mod found)")
		}
		dir = parent
	}
}

func modulePath(dir string) (string, error) {
	data, err := os.ReadFile(filepath.Join(dir, "go.mod"))
	if err != nil {
		return "", fmt.Errorf("failed to read go.mod: %w", err)
	}
	path := modfile.ModulePath(data)
	if path == "" {
		return "", fmt.Errorf("could not determine module path from go.mod")
	}
	return path, nil
}

func defaultAppName(modulePath, dir string) string {
	base := filepath.Base(dir)
	modName, _, ok := module.SplitPathVersion(modulePath)
	if ok {
		parts := strings.Split(modName, "/")
		if len(parts) > 0 {
			base = parts[len(parts)-1]
		}
	}
	if base == "" {
		return "widget"
	}
	return base
}

func defaultAppID(modulePath, appName string) string {
	parts := strings.Split(modulePath, "/")
	if len(parts) < 2 || !strings.Contains(parts[0], ".") {
		return fmt.Sprintf("com.example.%s", sanitizeSegment(appName, true))
	}

	host := strings.Split(parts[0], ".")
	for i, j := 0, len(host)-1; i < j; i, j = i+1, j-1 {
		host[i], host[j] = host[j], host[i]
	}

	var pathParts []string
	for _, p := range parts[1:] {
		if p == "" {
			continue
		}
		pathParts = append(pathParts, p)
	}

	segments := append(host, pathParts...)
	for i, segment := range segments {
		segments[i] = sanitizeSegment(segment, i > 0)
	}

	return strings.Join(segments, ".")
}

// sanitizeSegment lowercases a segment and keeps only [a-z0-9].
func sanitizeSegment(segment string, allowLeadingDigit bool) string {
	segment = strings.TrimSpace(segment)
	if segment == "" {
		segment = "app"
	}

	var out []rune
	for _, r := range segment {
		switch {
		case r >= 'a' && r <= 'z':
			out = append(out, r)
		case r >= 'A' && r <= 'Z':
			out = append(out, r+('a'-'A'))
		case r >= '0' && r <= '9':
			out = append(out, r)
		}
	}

	if len(out) == 0 {
		out = []rune("app")
	}

	if !allowLeadingDigit && out[0] >= '0' && out[0] <= '9' {
		out = append([]rune{'a'}, out...)
	}

	return string(out)
}
