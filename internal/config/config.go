package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/viper"
)

// Built-in defaults for the supervised service.
const (
	DefaultUvicornHost = "0.0.0.0"
	DefaultAccessHost  = "localhost"
	DefaultPort        = 8000
)

// DefaultSettings groups the built-in defaults and on-disk locations used by
// the CLI. A single value is constructed at startup and injected into each
// component instead of package-level globals.
type DefaultSettings struct {
	UvicornHost string // bind address for the service listener
	AccessHost  string // advertised host for client-facing URLs
	Port        int    // TCP port
	Command     string // service launch command
	ConfigFile  string // persisted configuration record
	PIDFile     string // PID record for daemon launches
	ServiceLog  string // rotating capture of daemon stdout/stderr
	HistoryDB   string // lifecycle event journal
}

// Defaults returns the standard settings rooted at dir. An empty dir means
// the current working directory.
func Defaults(dir string) DefaultSettings {
	return DefaultSettings{
		UvicornHost: DefaultUvicornHost,
		AccessHost:  DefaultAccessHost,
		Port:        DefaultPort,
		Command:     "mcp-aemps-server",
		ConfigFile:  filepath.Join(dir, ".aempsctl.json"),
		PIDFile:     filepath.Join(dir, ".aempsctl.pid"),
		ServiceLog:  filepath.Join(dir, "aempsctl-service.log"),
		HistoryDB:   filepath.Join(dir, ".aempsctl_history.db"),
	}
}

// Settings is the persisted configuration record.
type Settings struct {
	UvicornHost string `json:"uvicorn_host" mapstructure:"uvicorn_host"`
	AccessHost  string `json:"access_host" mapstructure:"access_host"`
	Port        int    `json:"port" mapstructure:"port"`
}

// Store owns the configuration record on disk.
type Store struct {
	path     string
	defaults DefaultSettings
}

func NewStore(path string, defaults DefaultSettings) *Store {
	return &Store{path: path, defaults: defaults}
}

// Load reads the record if present and well-formed. A missing or corrupt file
// degrades to defaults; the returned error is advisory and the Settings are
// always usable.
func (s *Store) Load() (Settings, error) {
	def := Settings{
		UvicornHost: s.defaults.UvicornHost,
		AccessHost:  s.defaults.AccessHost,
		Port:        s.defaults.Port,
	}

	v := viper.New()
	v.SetConfigFile(s.path)
	v.SetConfigType("json")
	v.SetDefault("uvicorn_host", def.UvicornHost)
	v.SetDefault("access_host", def.AccessHost)
	v.SetDefault("port", def.Port)

	if err := v.ReadInConfig(); err != nil {
		if os.IsNotExist(err) {
			return def, nil
		}
		return def, fmt.Errorf("config file %s unreadable, using defaults: %w", s.path, err)
	}

	var out Settings
	if err := v.Unmarshal(&out); err != nil {
		return def, fmt.Errorf("config file %s malformed, using defaults: %w", s.path, err)
	}

	// Individual fields fall back without failing the whole record.
	if out.UvicornHost == "" {
		out.UvicornHost = def.UvicornHost
	}
	if out.AccessHost == "" {
		out.AccessHost = def.AccessHost
	}
	if out.Port < 1 || out.Port > 65535 {
		out.Port = def.Port
	}
	return out, nil
}

// Save writes a full replacement record. Failure is returned for the caller
// to report as a warning; persistence is best-effort and must never block the
// service from starting.
func (s *Store) Save(set Settings) error {
	b, err := json.MarshalIndent(set, "", "  ")
	if err != nil {
		return err
	}
	b = append(b, '\n')
	if err := os.WriteFile(s.path, b, 0o600); err != nil {
		return fmt.Errorf("save config %s: %w", s.path, err)
	}
	return nil
}

// Path returns the on-disk location of the record.
func (s *Store) Path() string { return s.path }
