package core

// TargetConfig holds database target configuration as read from
// chdialect.yaml, environment variables and flags.
type TargetConfig struct {
	Type string `koanf:"type"`

	Host     string `koanf:"host"`
	Port     int    `koanf:"port"`
	Database string `koanf:"database"`
	User     string `koanf:"user"`
	Password string `koanf:"password"`
	Schema   string `koanf:"schema"`
	Timezone string `koanf:"timezone"`
	Debug    bool   `koanf:"debug"`

	// Additional driver-specific options
	Options map[string]string `koanf:"options"`

	// Params holds adapter-specific configuration (e.g., ClickHouse settings, compression)
	Params map[string]any `koanf:"params"`
}

// AdapterConfig converts the target into the configuration handed to an adapter.
func (t *TargetConfig) AdapterConfig() AdapterConfig {
	return AdapterConfig{
		Type:     t.Type,
		Host:     t.Host,
		Port:     t.Port,
		Database: t.Database,
		Username: t.User,
		Password: t.Password,
		Schema:   t.Schema,
		Timezone: t.Timezone,
		Debug:    t.Debug,
		Options:  t.Options,
		Params:   t.Params,
	}
}
