package cli

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/spf13/pflag"
)

// CacheMemory selects a throwaway in-memory cache
const CacheMemory = "memory"

// Config holds CLI configuration. Precedence: flags, then environment,
// then the config file, then defaults.
type Config struct {
	ServerURL  string
	Token      string
	TokenFile  string
	CachePath  string
	Output     string
	Verbose    bool
	ConfigFile string
}

// DefaultConfig returns a Config with default values
func DefaultConfig() *Config {
	dir := configDir()
	return &Config{
		ServerURL:  getEnvOrDefault("VZEE_SERVER", "http://localhost:8080"),
		Token:      os.Getenv("VZEE_TOKEN"),
		TokenFile:  getEnvOrDefault("VZEE_TOKEN_FILE", filepath.Join(dir, "token")),
		CachePath:  getEnvOrDefault("VZEE_CACHE", filepath.Join(dir, "cache.db")),
		Output:     "text",
		ConfigFile: getEnvOrDefault("VZEE_CONFIG", filepath.Join(dir, "config.toml")),
	}
}

// fileConfig mirrors Config with pointers so unset keys are detectable
type fileConfig struct {
	Server    *string `toml:"server"`
	TokenFile *string `toml:"token_file"`
	Cache     *string `toml:"cache"`
	Output    *string `toml:"output"`
	Verbose   *bool   `toml:"verbose"`
}

// LoadFile applies the TOML config file for settings that were not given
// as flags or environment variables. A missing file is fine.
func (c *Config) LoadFile(flags *pflag.FlagSet) error {
	var fc fileConfig
	meta, err := toml.DecodeFile(c.ConfigFile, &fc)
	if errors.Is(err, fs.ErrNotExist) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("read %s: %w", c.ConfigFile, err)
	}
	if undecoded := meta.Undecoded(); len(undecoded) > 0 {
		return fmt.Errorf("%s: unknown key %q", c.ConfigFile, undecoded[0].String())
	}

	set := func(flag, env string, apply func()) {
		if flags.Changed(flag) || os.Getenv(env) != "" {
			return
		}
		apply()
	}
	if fc.Server != nil {
		set("server", "VZEE_SERVER", func() { c.ServerURL = *fc.Server })
	}
	if fc.TokenFile != nil {
		set("token-file", "VZEE_TOKEN_FILE", func() { c.TokenFile = expandHome(*fc.TokenFile) })
	}
	if fc.Cache != nil {
		set("cache", "VZEE_CACHE", func() { c.CachePath = expandHome(*fc.Cache) })
	}
	if fc.Output != nil && !flags.Changed("output") {
		c.Output = *fc.Output
	}
	if fc.Verbose != nil && !flags.Changed("verbose") {
		c.Verbose = *fc.Verbose
	}
	return nil
}

// LoadToken loads the token from file if not already set
func (c *Config) LoadToken() error {
	if c.Token != "" {
		return nil
	}

	data, err := os.ReadFile(c.TokenFile)
	if err != nil {
		if os.IsNotExist(err) {
			return nil // No token file is fine
		}
		return err
	}

	c.Token = strings.TrimSpace(string(data))
	return nil
}

// SaveToken saves the token to the token file
func (c *Config) SaveToken(token string) error {
	c.Token = token

	if err := os.MkdirAll(filepath.Dir(c.TokenFile), 0o700); err != nil {
		return err
	}
	return os.WriteFile(c.TokenFile, []byte(token), 0o600)
}

// ClearToken removes the saved token
func (c *Config) ClearToken() error {
	c.Token = ""
	if err := os.Remove(c.TokenFile); err != nil && !os.IsNotExist(err) {
		return err
	}
	return nil
}

func configDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ".vzee"
	}
	return filepath.Join(home, ".vzee")
}

func expandHome(path string) string {
	if rest, ok := strings.CutPrefix(path, "~/"); ok {
		if home, err := os.UserHomeDir(); err == nil {
			return filepath.Join(home, rest)
		}
	}
	return path
}

func getEnvOrDefault(key, defaultVal string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return defaultVal
}
