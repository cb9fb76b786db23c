package config

import (
	"encoding/json"
	"errors"
	"io/fs"
	"os"
	"path/filepath"
)

// Settings represents the application configuration persisted to disk.
type Settings struct {
	Server  ServerSettings  `json:"server"`
	Storage StorageSettings `json:"storage"`
	Uploads UploadSettings  `json:"uploads"`
	Log     LogConfig       `json:"log"`
}

type ServerSettings struct {
	Host string `json:"host"`
	Port int    `json:"port"`
}

type StorageSettings struct {
	Directory string `json:"directory"`
}

type UploadSettings struct {
	// MaxPosterBytes caps the size of an embedded poster payload.
	MaxPosterBytes int `json:"maxPosterBytes"`
}

// LogConfig configures optional rotating file logging.
type LogConfig struct {
	File       string `json:"file"`
	MaxSize    int    `json:"maxSize"` // megabytes
	MaxBackups int    `json:"maxBackups"`
	MaxAge     int    `json:"maxAge"` // days
	Compress   bool   `json:"compress"`
}

// DefaultSettings returns the configuration used when no settings file exists.
func DefaultSettings() Settings {
	return Settings{
		Server: ServerSettings{
			Host: "0.0.0.0",
			Port: 8080,
		},
		Storage: StorageSettings{
			Directory: "data",
		},
		Uploads: UploadSettings{
			MaxPosterBytes: 2 << 20,
		},
		Log: LogConfig{
			MaxSize:    10,
			MaxBackups: 3,
			MaxAge:     28,
		},
	}
}

// Manager loads and saves the settings file.
type Manager struct {
	path string
}

func NewManager(configPath string) *Manager {
	return &Manager{path: configPath}
}

// Load reads settings from disk, creating the file with defaults when it does
// not exist yet. Missing fields fall back to their defaults.
func (m *Manager) Load() (Settings, error) {
	if m.path == "" {
		return Settings{}, errors.New("config path not set")
	}

	if _, err := os.Stat(m.path); errors.Is(err, fs.ErrNotExist) {
		defaults := DefaultSettings()
		if err := m.Save(defaults); err != nil {
			return Settings{}, err
		}
		return defaults, nil
	}

	data, err := os.ReadFile(m.path)
	if err != nil {
		return Settings{}, err
	}

	settings := DefaultSettings()
	if err := json.Unmarshal(data, &settings); err != nil {
		return Settings{}, err
	}

	if settings.Server.Port <= 0 {
		settings.Server.Port = DefaultSettings().Server.Port
	}
	if settings.Storage.Directory == "" {
		settings.Storage.Directory = DefaultSettings().Storage.Directory
	}
	if settings.Uploads.MaxPosterBytes <= 0 {
		settings.Uploads.MaxPosterBytes = DefaultSettings().Uploads.MaxPosterBytes
	}

	return settings, nil
}

// Save writes settings to disk, creating the parent directory if needed.
func (m *Manager) Save(settings Settings) error {
	if m.path == "" {
		return errors.New("config path not set")
	}

	if dir := filepath.Dir(m.path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return err
		}
	}

	data, err := json.MarshalIndent(settings, "", "  ")
	if err != nil {
		return err
	}

	tmp := m.path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return err
	}
	if err := os.Rename(tmp, m.path); err != nil {
		_ = os.Remove(tmp)
		return err
	}

	return nil
}
