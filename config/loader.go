package config

import (
	"errors"
	"io/fs"
	"os"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"
)

const (
	defaultTrainsURL   = "https://maps.amtrak.com/services/MapDataService/trains/getTrainsData"
	defaultStationsURL = "https://maps.amtrak.com/services/MapDataService/stations/trainStations"
	defaultSchedule    = "*/3 * * * *"
	defaultTimeoutMS   = 30000
	defaultPort        = 8080
	defaultSnapshotKey = "amtraker:trains"
)

// Config is the global application configuration
var Config AppConfig

// LoadAppConfig loads and validates the application configuration from
// config.yml. A missing file is not an error; the service runs entirely on
// defaults.
func LoadAppConfig() error {
	paths := []string{"config.yml", "/etc/amtraker/config.yml"}
	var data []byte
	var err error
	for _, p := range paths {
		data, err = os.ReadFile(p)
		if err == nil {
			break
		}
	}
	if err != nil && !errors.Is(err, fs.ErrNotExist) {
		return err
	}

	var cfg AppConfig
	if len(data) > 0 {
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return err
		}
	}

	applyDefaults(&cfg)

	v := validator.New()
	if err := v.Struct(cfg); err != nil {
		return err
	}

	Config = cfg
	return nil
}

func applyDefaults(cfg *AppConfig) {
	if cfg.Server.Port == 0 {
		cfg.Server.Port = defaultPort
	}
	if cfg.Feeds.TrainsURL == "" {
		cfg.Feeds.TrainsURL = defaultTrainsURL
	}
	if cfg.Feeds.StationsURL == "" {
		cfg.Feeds.StationsURL = defaultStationsURL
	}
	if cfg.Feeds.TimeoutMS == 0 {
		cfg.Feeds.TimeoutMS = defaultTimeoutMS
	}
	if cfg.Refresh.Schedule == "" {
		cfg.Refresh.Schedule = defaultSchedule
	}
	if cfg.Snapshot.Backend == "redis" && cfg.Snapshot.Redis.Key == "" {
		cfg.Snapshot.Redis.Key = defaultSnapshotKey
	}
}
