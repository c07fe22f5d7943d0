package config

// ServerConfig contains API server configuration
type ServerConfig struct {
	Port int `yaml:"port" validate:"gt=0"`
}

// FeedsConfig contains the upstream feed endpoints
type FeedsConfig struct {
	TrainsURL   string `yaml:"trainsURL" validate:"omitempty,url"`
	StationsURL string `yaml:"stationsURL" validate:"omitempty,url"`
	TimeoutMS   int    `yaml:"timeoutMS" validate:"gte=0"`
}

// RefreshConfig contains the refresh schedule
type RefreshConfig struct {
	Schedule string `yaml:"schedule"`
}

// RedisConfig contains the redis snapshot backend settings
type RedisConfig struct {
	Address string `yaml:"address"`
	Key     string `yaml:"key"`
}

// SnapshotConfig selects the optional write-behind snapshot backend
type SnapshotConfig struct {
	Backend string      `yaml:"backend" validate:"omitempty,oneof=file redis"`
	Path    string      `yaml:"path"`
	Redis   RedisConfig `yaml:"redis"`
}

// AppConfig is the root configuration structure
type AppConfig struct {
	Server   ServerConfig   `yaml:"server"`
	Feeds    FeedsConfig    `yaml:"feeds"`
	Refresh  RefreshConfig  `yaml:"refresh"`
	Snapshot SnapshotConfig `yaml:"snapshot"`
}
