package config

import (
	"os"
	"path/filepath"
	"time"

	"github.com/goccy/go-json"

	"github.com/merginmaps/mergin-go/internal/utils"
)

var (
	home, _           = os.UserHomeDir()
	DefaultConfigPath = filepath.Join(home, ".mergin", "config.json")
	DefaultDataDir    = filepath.Join(home, "Mergin")
	DefaultAPIRoot    = "https://public.cloudmergin.com"
)

// Config holds the client settings persisted between runs: credentials,
// the last used API root and the data directory with local projects.
type Config struct {
	DataDir  string    `json:"data_dir"`
	APIRoot  string    `json:"api_root"`
	Username string    `json:"username"`
	Password string    `json:"password"`
	UserID   int       `json:"user_id"`
	Token    string    `json:"token"`
	Expire   time.Time `json:"expire"`
	Path     string    `json:"-"`
}

func (c *Config) HasAuthData() bool {
	return c.Username != "" && c.Password != ""
}

func (c *Config) ClearAuth() {
	c.Username = ""
	c.Password = ""
	c.UserID = 0
	c.Token = ""
	c.Expire = time.Time{}
}

func (c *Config) Save() error {
	if err := utils.EnsureParent(c.Path); err != nil {
		return err
	}

	data, err := json.MarshalIndent(c, "", "  ")
	if err != nil {
		return err
	}

	return os.WriteFile(c.Path, data, 0o600)
}

// Load reads the config at path. A missing file yields a config with defaults,
// so first runs work without any setup.
func Load(path string) (*Config, error) {
	cfg := &Config{
		DataDir: DefaultDataDir,
		APIRoot: DefaultAPIRoot,
		Path:    path,
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return nil, err
	}

	if err := json.Unmarshal(data, cfg); err != nil {
		return nil, err
	}

	cfg.Path = path
	if cfg.DataDir == "" {
		cfg.DataDir = DefaultDataDir
	}
	if cfg.APIRoot == "" {
		cfg.APIRoot = DefaultAPIRoot
	}

	return cfg, nil
}
