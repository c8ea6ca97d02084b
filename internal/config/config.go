package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/example/go-taibun/internal/text"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

type Config struct {
	LogLevel string        `mapstructure:"log_level"`
	LogFile  string        `mapstructure:"log_file"`
	Convert  ConvertConfig `mapstructure:"convert"`
	Server   ServerConfig  `mapstructure:"server"`
	Synth    SynthConfig   `mapstructure:"synth"`
}

type ConvertConfig struct {
	Sandhi  bool   `mapstructure:"sandhi"`
	Variant string `mapstructure:"variant"`
}

type ServerConfig struct {
	ListenAddr      string `mapstructure:"listen_addr"`
	Workers         int    `mapstructure:"workers"`
	MaxTextBytes    int    `mapstructure:"max_text_bytes"`
	RequestTimeout  int    `mapstructure:"request_timeout"`
	ShutdownTimeout int    `mapstructure:"shutdown_timeout"`
}

type SynthConfig struct {
	Backend      string `mapstructure:"backend"`
	BaseURL      string `mapstructure:"base_url"`
	Endpoint     string `mapstructure:"endpoint"`
	Timeout      int    `mapstructure:"timeout"`
	CLIPath      string `mapstructure:"cli_path"`
	FixLongFinal bool   `mapstructure:"fix_long_final"`
	MicroSplit   bool   `mapstructure:"micro_split"`
	MicroSplitMS int    `mapstructure:"micro_split_ms"`
	ChunkChars   int    `mapstructure:"chunk_chars"`
}

type LoadOptions struct {
	Cmd        flagBinder
	ConfigFile string
	Defaults   Config
}

type flagBinder interface {
	Flags() *pflag.FlagSet
}

func DefaultConfig() Config {
	return Config{
		LogLevel: "info",
		LogFile:  "",
		Convert: ConvertConfig{
			Sandhi:  false,
			Variant: "chang",
		},
		Server: ServerConfig{
			ListenAddr:      ":8080",
			Workers:         2,
			MaxTextBytes:    4096,
			RequestTimeout:  60,
			ShutdownTimeout: 30,
		},
		Synth: SynthConfig{
			Backend:      BackendRemote,
			BaseURL:      "http://127.0.0.1:5000",
			Endpoint:     "/bangtsam",
			Timeout:      45,
			CLIPath:      "",
			FixLongFinal: true,
			MicroSplit:   false,
			MicroSplitMS: 200,
			ChunkChars:   0,
		},
	}
}

// flagKeys maps each registered flag to the config key it overrides.
var flagKeys = map[string]string{
	"log-level":          "log_level",
	"log-file":           "log_file",
	"sandhi":             "convert.sandhi",
	"variant":            "convert.variant",
	"server-listen-addr": "server.listen_addr",
	"workers":            "server.workers",
	"max-text-bytes":     "server.max_text_bytes",
	"request-timeout":    "server.request_timeout",
	"shutdown-timeout":   "server.shutdown_timeout",
	"backend":            "synth.backend",
	"synth-base-url":     "synth.base_url",
	"synth-endpoint":     "synth.endpoint",
	"synth-timeout":      "synth.timeout",
	"synth-cli-path":     "synth.cli_path",
	"fix-long-final":     "synth.fix_long_final",
	"micro-split":        "synth.micro_split",
	"micro-split-ms":     "synth.micro_split_ms",
	"chunk-chars":        "synth.chunk_chars",
}

func RegisterFlags(fs *pflag.FlagSet, defaults Config) {
	fs.String("log-level", defaults.LogLevel, "Log level (debug|info|warn|error)")
	fs.String("log-file", defaults.LogFile, "Also write logs to this file, rotated by size")
	fs.Bool("sandhi", defaults.Convert.Sandhi, "Apply tone sandhi to non-final syllables")
	fs.String("variant", defaults.Convert.Variant, "Sandhi variant (chang|chuan)")
	fs.String("server-listen-addr", defaults.Server.ListenAddr, "HTTP listen address")
	fs.Int("workers", defaults.Server.Workers, "Max concurrent synthesis requests")
	fs.Int("max-text-bytes", defaults.Server.MaxTextBytes, "Max request text size in bytes")
	fs.Int("request-timeout", defaults.Server.RequestTimeout, "Per-request synthesis timeout in seconds")
	fs.Int("shutdown-timeout", defaults.Server.ShutdownTimeout, "Graceful shutdown drain period in seconds")
	fs.String("backend", defaults.Synth.Backend, "Synthesis backend (remote|cli)")
	fs.String("synth-base-url", defaults.Synth.BaseURL, "Base URL of the remote synthesis server")
	fs.String("synth-endpoint", defaults.Synth.Endpoint, "Synthesis endpoint path on the remote server")
	fs.Int("synth-timeout", defaults.Synth.Timeout, "Remote synthesis timeout in seconds")
	fs.String("synth-cli-path", defaults.Synth.CLIPath, "Path to the synthesis executable (cli backend)")
	fs.Bool("fix-long-final", defaults.Synth.FixLongFinal, "Rewrite a phrase-final te5 to te7 before synthesis")
	fs.Bool("micro-split", defaults.Synth.MicroSplit, "Synthesize a short phrase's final te5/te7 separately")
	fs.Int("micro-split-ms", defaults.Synth.MicroSplitMS, "Silence inserted by --micro-split in milliseconds")
	fs.Int("chunk-chars", defaults.Synth.ChunkChars, "Split synthesis input into sentence chunks of at most N bytes (0 disables)")
}

func Load(opts LoadOptions) (Config, error) {
	v := viper.New()

	setDefaults(v, opts.Defaults)
	if opts.Cmd != nil {
		if err := bindFlags(v, opts.Cmd.Flags()); err != nil {
			return Config{}, err
		}
	}

	v.SetEnvPrefix("TAIBUN")
	replacer := strings.NewReplacer("-", "_", ".", "_", "__", "_")
	v.SetEnvKeyReplacer(replacer)
	if err := v.BindEnv("synth.base_url", "TAIBUN_SYNTH_BASE_URL", "TTS_SERVER_URL"); err != nil {
		return Config{}, fmt.Errorf("bind synth env vars: %w", err)
	}
	v.AutomaticEnv()

	if opts.ConfigFile != "" {
		v.SetConfigFile(opts.ConfigFile)
		if err := v.ReadInConfig(); err != nil {
			return Config{}, fmt.Errorf("read config file: %w", err)
		}
	} else {
		v.SetConfigName("taibun")
		v.AddConfigPath(".")
		if err := v.ReadInConfig(); err != nil {
			var notFound viper.ConfigFileNotFoundError
			if !errors.As(err, &notFound) {
				return Config{}, fmt.Errorf("read config file: %w", err)
			}
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("decode config: %w", err)
	}

	return cfg, nil
}

// Validate reports settings that parse but cannot be used.
func (c Config) Validate() error {
	if _, err := text.ParseVariant(c.Convert.Variant); err != nil {
		return err
	}
	if _, err := NormalizeBackend(c.Synth.Backend); err != nil {
		return err
	}
	if c.Server.MaxTextBytes <= 0 {
		return fmt.Errorf("server.max_text_bytes must be positive, got %d", c.Server.MaxTextBytes)
	}
	if c.Server.RequestTimeout <= 0 {
		return fmt.Errorf("server.request_timeout must be positive, got %d", c.Server.RequestTimeout)
	}
	if c.Synth.MicroSplitMS < 0 {
		return fmt.Errorf("synth.micro_split_ms must not be negative, got %d", c.Synth.MicroSplitMS)
	}
	return nil
}

// Converter builds a text.Converter from the convert section.
func (c Config) Converter() (text.Converter, error) {
	variant, err := text.ParseVariant(c.Convert.Variant)
	if err != nil {
		return text.Converter{}, err
	}
	return text.NewConverter(text.WithSandhi(c.Convert.Sandhi), text.WithVariant(variant)), nil
}

func bindFlags(v *viper.Viper, fs *pflag.FlagSet) error {
	for name, key := range flagKeys {
		f := fs.Lookup(name)
		if f == nil {
			continue
		}
		if err := v.BindPFlag(key, f); err != nil {
			return fmt.Errorf("bind flag %q: %w", name, err)
		}
	}
	return nil
}

func setDefaults(v *viper.Viper, c Config) {
	v.SetDefault("log_level", c.LogLevel)
	v.SetDefault("log_file", c.LogFile)
	v.SetDefault("convert.sandhi", c.Convert.Sandhi)
	v.SetDefault("convert.variant", c.Convert.Variant)
	v.SetDefault("server.listen_addr", c.Server.ListenAddr)
	v.SetDefault("server.workers", c.Server.Workers)
	v.SetDefault("server.max_text_bytes", c.Server.MaxTextBytes)
	v.SetDefault("server.request_timeout", c.Server.RequestTimeout)
	v.SetDefault("server.shutdown_timeout", c.Server.ShutdownTimeout)
	v.SetDefault("synth.backend", c.Synth.Backend)
	v.SetDefault("synth.base_url", c.Synth.BaseURL)
	v.SetDefault("synth.endpoint", c.Synth.Endpoint)
	v.SetDefault("synth.timeout", c.Synth.Timeout)
	v.SetDefault("synth.cli_path", c.Synth.CLIPath)
	v.SetDefault("synth.fix_long_final", c.Synth.FixLongFinal)
	v.SetDefault("synth.micro_split", c.Synth.MicroSplit)
	v.SetDefault("synth.micro_split_ms", c.Synth.MicroSplitMS)
	v.SetDefault("synth.chunk_chars", c.Synth.ChunkChars)
}
