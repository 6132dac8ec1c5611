package dtsettings

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/datatug/drivetug/pkg/fsutils"
	"gopkg.in/yaml.v3"
)

const UserDir = "~/.drivetug"

const (
	configFileName      = "config.yaml"
	credentialsFileName = "credentials.json"
	logFileName         = "drivetug.log"
	DefaultPageSize     = 100
)

var osUserHomeDir = os.UserHomeDir

func GetUserDir() (string, error) {
	userHomeDir, err := osUserHomeDir()
	if err != nil {
		return UserDir, err
	}
	return filepath.Join(userHomeDir, UserDir[2:]), nil
}

type Config struct {
	// Account to open on start; the last used one when empty.
	Account string `yaml:"account,omitempty"`
	// Credentials is the Google OAuth client file downloaded from the cloud console.
	Credentials string `yaml:"credentials,omitempty"`
	PageSize    int64  `yaml:"page_size,omitempty"`
	LogFile     string `yaml:"log_file,omitempty"`
	Verbose     bool   `yaml:"verbose,omitempty"`
	// Language is a BCP 47 tag used to order folder names.
	Language string `yaml:"language,omitempty"`
	// RedirectPort of the loopback listener used by the login flow, 0 picks a free one.
	RedirectPort int `yaml:"redirect_port,omitempty"`

	Dir string `yaml:"-"`
}

func Defaults(dir string) Config {
	return Config{
		Credentials: filepath.Join(dir, credentialsFileName),
		PageSize:    DefaultPageSize,
		LogFile:     filepath.Join(dir, logFileName),
		Language:    "und",
		Dir:         dir,
	}
}

func DefaultConfigPath() (string, error) {
	dir, err := GetUserDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, configFileName), nil
}

var yamlUnmarshal = yaml.Unmarshal

// Load reads the config file at path on top of the defaults.
// A missing file is not an error unless required.
func Load(path string, required bool) (Config, error) {
	dir := filepath.Dir(path)
	cfg := Defaults(dir)
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) && !required {
			return cfg, nil
		}
		return cfg, fmt.Errorf("failed to read config: %w", err)
	}
	if err = yamlUnmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("failed to parse config %s: %w", path, err)
	}
	cfg.Dir = dir
	cfg.Credentials = fsutils.ExpandHome(cfg.Credentials)
	cfg.LogFile = fsutils.ExpandHome(cfg.LogFile)
	if cfg.PageSize <= 0 {
		cfg.PageSize = DefaultPageSize
	}
	return cfg, nil
}

func (c Config) AccountsDir() string {
	return filepath.Join(c.Dir, "accounts")
}

func (c Config) StateFile() string {
	return filepath.Join(c.Dir, "drivetug-state.json")
}
