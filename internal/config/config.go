// Package config loads the layered runtime configuration: built-in
// defaults, an optional YAML file, BREAKPONG_* environment variables and
// command-line flags, in increasing order of precedence.
package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/spf13/cast"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"

	"github.com/tomz197/breakpong/internal/audio"
	"github.com/tomz197/breakpong/internal/game"
	"github.com/tomz197/breakpong/internal/logging"
)

// EnvPrefix is prepended to every environment override, e.g. BREAKPONG_SSH_PORT.
const EnvPrefix = "BREAKPONG"

// DefaultFile is looked up in the working directory when no --config is given.
const DefaultFile = "breakpong"

// Renderer names.
const (
	RendererANSI  = "ansi"
	RendererTcell = "tcell"
)

// Config is the full runtime configuration.
type Config struct {
	Game   game.Config    `mapstructure:"game" yaml:"game"`
	Render RenderConfig   `mapstructure:"render" yaml:"render"`
	Input  InputConfig    `mapstructure:"input" yaml:"input"`
	Log    logging.Config `mapstructure:"log" yaml:"log"`
	Audio  audio.Config   `mapstructure:"audio" yaml:"audio"`
	SSH    SSHConfig      `mapstructure:"ssh" yaml:"ssh"`
	Web    WebConfig      `mapstructure:"web" yaml:"web"`
}

// RenderConfig controls how frames reach the terminal.
type RenderConfig struct {
	Renderer string `mapstructure:"renderer" yaml:"renderer"` // "ansi" or "tcell"
	FPS      int    `mapstructure:"fps" yaml:"fps"`
	MaxCols  int    `mapstructure:"max_cols" yaml:"max_cols"` // 0 = unlimited
	MaxRows  int    `mapstructure:"max_rows" yaml:"max_rows"` // 0 = unlimited
}

// InputConfig controls key handling.
type InputConfig struct {
	KeyHold time.Duration `mapstructure:"key_hold" yaml:"key_hold"`
}

// SSHConfig configures the SSH server.
type SSHConfig struct {
	Host            string        `mapstructure:"host" yaml:"host"`
	Port            string        `mapstructure:"port" yaml:"port"`
	HostKeyPath     string        `mapstructure:"host_key_path" yaml:"host_key_path"`
	MaxSessions     int           `mapstructure:"max_sessions" yaml:"max_sessions"` // 0 = unlimited
	IdleTimeout     time.Duration `mapstructure:"idle_timeout" yaml:"idle_timeout"`
	ShutdownNotice  time.Duration `mapstructure:"shutdown_notice" yaml:"shutdown_notice"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout" yaml:"shutdown_timeout"`
}

// WebConfig configures the landing page server.
type WebConfig struct {
	Host        string `mapstructure:"host" yaml:"host"`
	Port        string `mapstructure:"port" yaml:"port"`
	DisplayHost string `mapstructure:"display_host" yaml:"display_host"` // SSH host shown to visitors
}

// Default returns the built-in configuration.
func Default() Config {
	return Config{
		Game: game.DefaultConfig(),
		Render: RenderConfig{
			Renderer: RendererANSI,
			FPS:      60,
			MaxCols:  160,
			MaxRows:  50,
		},
		Input: InputConfig{
			KeyHold: 50 * time.Millisecond,
		},
		Log:   logging.DefaultConfig(),
		Audio: audio.DefaultConfig(),
		SSH: SSHConfig{
			Host:            "::",
			Port:            "2222",
			HostKeyPath:     ".ssh/host_ed25519",
			MaxSessions:     64,
			IdleTimeout:     2 * time.Minute,
			ShutdownNotice:  10 * time.Second,
			ShutdownTimeout: 15 * time.Second,
		},
		Web: WebConfig{
			Host:        "0.0.0.0",
			Port:        "8080",
			DisplayHost: "localhost",
		},
	}
}

// Validate checks every section.
func (c Config) Validate() error {
	if err := c.Game.Validate(); err != nil {
		return err
	}
	if err := c.Log.Validate(); err != nil {
		return err
	}
	if err := c.Audio.Validate(); err != nil {
		return err
	}
	switch c.Render.Renderer {
	case RendererANSI, RendererTcell:
	default:
		return fmt.Errorf("config: unknown renderer %q", c.Render.Renderer)
	}
	if c.Render.FPS < 1 || c.Render.FPS > 240 {
		return fmt.Errorf("config: fps %d out of range [1, 240]", c.Render.FPS)
	}
	if c.Render.MaxCols < 0 || c.Render.MaxRows < 0 {
		return fmt.Errorf("config: max render size must not be negative")
	}
	if c.Input.KeyHold <= 0 {
		return fmt.Errorf("config: key hold must be positive, got %v", c.Input.KeyHold)
	}
	if c.SSH.MaxSessions < 0 {
		return fmt.Errorf("config: max sessions must not be negative")
	}
	return nil
}

// flagKeys maps command-line flags onto configuration keys.
var flagKeys = map[string]string{
	"log-level": "log.level",
	"log-file":  "log.file",
	"renderer":  "render.renderer",
	"fps":       "render.fps",
	"audio":     "audio.enabled",
}

// RegisterFlags adds the shared configuration flags to fs.
func RegisterFlags(fs *pflag.FlagSet) {
	d := Default()
	fs.StringP("config", "c", "", "path to a YAML config file")
	fs.String("log-level", d.Log.Level, "log level (trace, debug, info, warn, error)")
	fs.String("log-file", d.Log.File, "log to this file instead of stderr")
	fs.String("renderer", d.Render.Renderer, "terminal renderer (ansi, tcell)")
	fs.Int("fps", d.Render.FPS, "display frames per second")
	fs.Bool("audio", d.Audio.Enabled, "play sound effects")
	fs.StringArray("set", nil, "override any config key, e.g. --set game.paddle.width=150")
}

// Load builds the configuration from defaults, the config file, environment
// and flags. flags may be nil.
func Load(flags *pflag.FlagSet) (Config, error) {
	v := viper.New()
	v.SetConfigType("yaml")

	defaults, err := yaml.Marshal(Default())
	if err != nil {
		return Config{}, fmt.Errorf("config: encode defaults: %w", err)
	}
	if err := v.ReadConfig(bytes.NewReader(defaults)); err != nil {
		return Config{}, fmt.Errorf("config: read defaults: %w", err)
	}

	path := ""
	if flags != nil {
		path, _ = flags.GetString("config")
	}
	if err := mergeFile(v, path); err != nil {
		return Config{}, err
	}

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if flags != nil {
		for name, key := range flagKeys {
			if f := flags.Lookup(name); f != nil {
				if err := v.BindPFlag(key, f); err != nil {
					return Config{}, fmt.Errorf("config: bind --%s: %w", name, err)
				}
			}
		}
		if sets, err := flags.GetStringArray("set"); err == nil {
			for _, kv := range sets {
				if err := applyOverride(v, kv); err != nil {
					return Config{}, err
				}
			}
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("config: decode: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// mergeFile merges path, or the default file if path is empty and it exists.
func mergeFile(v *viper.Viper, path string) error {
	if path != "" {
		v.SetConfigFile(path)
		if err := v.MergeInConfig(); err != nil {
			return fmt.Errorf("config: read %s: %w", path, err)
		}
		return nil
	}

	v.SetConfigName(DefaultFile)
	v.AddConfigPath(".")
	if err := v.MergeInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if errors.As(err, &notFound) {
			return nil
		}
		return fmt.Errorf("config: read %s: %w", DefaultFile, err)
	}
	return nil
}

// applyOverride sets key=value, converting value to the type of the key's
// current value so that numbers and booleans are not decoded as strings.
func applyOverride(v *viper.Viper, kv string) error {
	key, raw, ok := strings.Cut(kv, "=")
	key = strings.ToLower(strings.TrimSpace(key))
	if !ok || key == "" {
		return fmt.Errorf("config: override %q is not key=value", kv)
	}
	if !v.IsSet(key) {
		return fmt.Errorf("config: unknown key %q", key)
	}

	var (
		value any
		err   error
	)
	switch v.Get(key).(type) {
	case bool:
		value, err = cast.ToBoolE(raw)
	case int, int64:
		// Whole-number defaults may still hold fractional settings
		if value, err = cast.ToIntE(raw); err != nil {
			value, err = cast.ToFloat64E(raw)
		}
	case float64:
		value, err = cast.ToFloat64E(raw)
	case map[string]any:
		return fmt.Errorf("config: %q is a section, not a value", key)
	default:
		value = raw
	}
	if err != nil {
		return fmt.Errorf("config: override %s: %w", key, err)
	}
	v.Set(key, value)
	return nil
}

// Dump writes cfg as YAML.
func Dump(cfg Config, w io.Writer) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(cfg); err != nil {
		return fmt.Errorf("config: encode: %w", err)
	}
	return enc.Close()
}
