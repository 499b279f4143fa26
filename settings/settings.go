package settings

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/oomph-ac/presence/game"
	"github.com/oomph-ac/presence/skin"
	"github.com/oomph-ac/presence/status"
	"github.com/pelletier/go-toml"
	"github.com/sirupsen/logrus"
)

// Settings contains everything about presence that can be configured.
type Settings struct {
	Presence struct {
		// DataFolder holds npcs.toml and servers.toml.
		DataFolder string
		// LogLevel is the minimum level of messages logged.
		LogLevel string
		// TransferChannel is the plugin message channel used to move players to another server.
		TransferChannel string
		// FacingRange is the horizontal distance within which proxies turn towards moving players.
		FacingRange float64
	}
	Status struct {
		// IntervalMillis is the time between two polls of the remote servers.
		IntervalMillis int64
		// TimeoutMillis bounds a single status ping.
		TimeoutMillis int64
	}
	Crosshair struct {
		MinDistance  float64
		MaxDistance  float64
		MinDot       float64
		EyeHeight    float64
		TargetHeight float64
	}
	Skin struct {
		ProfileURL    string
		SessionURL    string
		TimeoutMillis int64
	}
	Sentry struct {
		// DSN enables reporting of panics to sentry if set.
		DSN string
	}
	Stats struct {
		// Address is the address the runtime statistics viewer listens on.
		Address string
	}
}

// DefaultSettings returns the default settings.
func DefaultSettings() Settings {
	s := Settings{}
	s.Presence.DataFolder = "plugins/presence"
	s.Presence.LogLevel = logrus.InfoLevel.String()
	s.Presence.TransferChannel = "gourd:transfer"
	s.Presence.FacingRange = 32

	s.Status.IntervalMillis = status.DefaultInterval.Milliseconds()
	s.Status.TimeoutMillis = status.DefaultTimeout.Milliseconds()

	c := game.DefaultCrosshair()
	s.Crosshair.MinDistance = c.MinDistance
	s.Crosshair.MaxDistance = c.MaxDistance
	s.Crosshair.MinDot = c.MinDot
	s.Crosshair.EyeHeight = c.EyeHeight
	s.Crosshair.TargetHeight = c.TargetHeight

	s.Skin.ProfileURL = skin.DefaultProfileURL
	s.Skin.SessionURL = skin.DefaultSessionURL
	s.Skin.TimeoutMillis = skin.DefaultTimeout.Milliseconds()

	s.Stats.Address = "localhost:18066"
	return s
}

// Load reads the settings from the file at the path passed. If the file does not exist, the default
// settings are written to it and returned. Fields missing from the file keep their default value.
func Load(path string) (Settings, error) {
	s := DefaultSettings()
	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return s, SaveDefault(path)
	} else if err != nil {
		return Settings{}, fmt.Errorf("error reading config: %v", err)
	}
	if err = toml.Unmarshal(data, &s); err != nil {
		return Settings{}, fmt.Errorf("error decoding config: %v", err)
	}
	return s, nil
}

// SaveDefault will create and save the default settings file. If the file already exists, it will return
// an error.
func SaveDefault(path string) error {
	if _, err := os.Stat(path); !os.IsNotExist(err) {
		return errors.New("settings file already exists")
	}
	data, err := toml.Marshal(DefaultSettings())
	if err != nil {
		return fmt.Errorf("failed encoding default settings: %v", err)
	}
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("failed creating settings folder: %v", err)
		}
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed creating settings file: %v", err)
	}
	return nil
}

// Logger returns a logger writing at the configured level.
func (s Settings) Logger() *logrus.Logger {
	log := logrus.New()
	log.Formatter = &logrus.TextFormatter{ForceColors: true}
	log.Level = logrus.InfoLevel
	if lvl, err := logrus.ParseLevel(s.Presence.LogLevel); err == nil {
		log.Level = lvl
	}
	return log
}

// CrosshairConfig returns the configured crosshair targeting.
func (s Settings) CrosshairConfig() game.Crosshair {
	return game.Crosshair{
		MinDistance:  s.Crosshair.MinDistance,
		MaxDistance:  s.Crosshair.MaxDistance,
		MinDot:       s.Crosshair.MinDot,
		EyeHeight:    s.Crosshair.EyeHeight,
		TargetHeight: s.Crosshair.TargetHeight,
	}
}

// PollInterval returns the configured time between two polls.
func (s Settings) PollInterval() time.Duration {
	return time.Duration(s.Status.IntervalMillis) * time.Millisecond
}

// PingTimeout returns the configured time a status ping may take.
func (s Settings) PingTimeout() time.Duration {
	return time.Duration(s.Status.TimeoutMillis) * time.Millisecond
}

// SkinFetcher returns a skin fetcher using the configured identity service.
func (s Settings) SkinFetcher() *skin.Fetcher {
	f := skin.NewFetcher(time.Duration(s.Skin.TimeoutMillis) * time.Millisecond)
	if s.Skin.ProfileURL != "" {
		f.ProfileURL = s.Skin.ProfileURL
	}
	if s.Skin.SessionURL != "" {
		f.SessionURL = s.Skin.SessionURL
	}
	return f
}

// NPCFile returns the path of the file proxies are stored in.
func (s Settings) NPCFile() string {
	return filepath.Join(s.Presence.DataFolder, "npcs.toml")
}

// ServerFile returns the path of the file remote servers are stored in.
func (s Settings) ServerFile() string {
	return filepath.Join(s.Presence.DataFolder, "servers.toml")
}
