package config

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"time"

	"github.com/mcuadros/go-defaults"
	"github.com/naoina/toml"
	"github.com/sethvargo/go-envconfig"
)

// Config holds everything the import step needs from its environment.
type Config struct {
	// GitDir is the root under which imported repositories are stored as <org>/<repo>.git.
	GitDir string `env:"GITIMPORT_GIT_DIR" default:"/var/lib/gitimport/git"`
	// ImportAccount is the identity projects are created as on the destination server.
	ImportAccount string `env:"GITIMPORT_IMPORT_ACCOUNT" default:"importer"`

	GitServer struct {
		URL        string `env:"GITIMPORT_GITSERVER_URL" default:"http://localhost:3000"`
		Token      string `env:"GITIMPORT_GITSERVER_TOKEN"`
		TimeoutSEC int    `env:"GITIMPORT_GITSERVER_TIMEOUT_SEC" default:"30"`
	}

	GitHub struct {
		URL           string   `env:"GITIMPORT_GITHUB_URL" default:"https://github.com"`
		APIURL        string   `env:"GITIMPORT_GITHUB_API_URL" default:"https://api.github.com/"`
		ResolveViaAPI bool     `env:"GITIMPORT_GITHUB_RESOLVE_VIA_API" default:"false"`
		AllowedHosts  []string `env:"GITIMPORT_GITHUB_ALLOWED_HOSTS"`
	}

	GitLab struct {
		APIURL string `env:"GITIMPORT_GITLAB_API_URL" default:"https://gitlab.com/api/v4"`
	}

	Token struct {
		// Key selects the GIT_TOKEN_<KEY> environment variable holding source credentials.
		Key            string `env:"GITIMPORT_TOKEN_KEY" default:"GITHUB"`
		AllowAnonymous bool   `env:"GITIMPORT_TOKEN_ALLOW_ANONYMOUS" default:"false"`
	}

	Retry struct {
		Attempts int `env:"GITIMPORT_RETRY_ATTEMPTS" default:"3"`
		DelaySEC int `env:"GITIMPORT_RETRY_DELAY_SEC" default:"5"`
	}

	Log struct {
		Level    string `env:"GITIMPORT_LOG_LEVEL" default:"info"`
		Encoding string `env:"GITIMPORT_LOG_ENCODING" default:"text"`
		File     string `env:"GITIMPORT_LOG_FILE"`
	}
}

// DefaultConfig returns a Config populated only from the default tags.
func DefaultConfig() *Config {
	cfg := &Config{}
	defaults.SetDefaults(cfg)
	return cfg
}

// LoadConfig builds the configuration from defaults, the optional TOML file at
// path, and the environment. Environment values win over the file, and the file
// wins over the defaults.
func LoadConfig(path string) (*Config, error) {
	defer slog.Debug("end load config")
	slog.Debug("start load config", slog.String("path", path))

	cfg := DefaultConfig()
	toml.DefaultConfig.MissingField = func(typ reflect.Type, key string) error {
		return nil
	}

	if path != "" {
		f, err := os.Open(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
		defer f.Close()
		if err := toml.NewDecoder(f).Decode(cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config file: %w", err)
		}
	}

	err := envconfig.ProcessWith(context.Background(), &envconfig.Config{
		Target:           cfg,
		DefaultOverwrite: true,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to read environment: %w", err)
	}
	return cfg, nil
}

// Validate checks if the configuration is usable for an import
func (c *Config) Validate() error {
	if c.GitDir == "" {
		return fmt.Errorf("git dir cannot be empty")
	}
	if !filepath.IsAbs(c.GitDir) {
		return fmt.Errorf("git dir must be an absolute path: %s", c.GitDir)
	}
	if strings.TrimSpace(c.ImportAccount) == "" {
		return fmt.Errorf("import account cannot be empty")
	}
	if c.GitServer.URL == "" {
		return fmt.Errorf("git server url cannot be empty")
	}
	if c.Retry.Attempts < 0 {
		return fmt.Errorf("retry attempts cannot be negative")
	}
	return nil
}

// GitServerTimeout returns the destination API timeout.
func (c *Config) GitServerTimeout() time.Duration {
	return time.Duration(c.GitServer.TimeoutSEC) * time.Second
}

// RetryDelay returns the pause between import attempts.
func (c *Config) RetryDelay() time.Duration {
	return time.Duration(c.Retry.DelaySEC) * time.Second
}

// ValidateRepoFormat validates the organisation/repository format
func ValidateRepoFormat(repo string) error {
	_, _, err := ParseTarget(repo)
	return err
}

// ParseTarget splits an organisation/repository string.
func ParseTarget(repo string) (organisation, repository string, err error) {
	if repo == "" {
		return "", "", fmt.Errorf("repository cannot be empty")
	}

	parts := strings.Split(repo, "/")
	if len(parts) != 2 {
		return "", "", fmt.Errorf("invalid repository format, expected 'organisation/repository'")
	}

	if parts[0] == "" || parts[1] == "" {
		return "", "", fmt.Errorf("both organisation and repository must be non-empty")
	}

	return parts[0], parts[1], nil
}
