package config

type Config interface {
	EnvConfig
	DatabaseConfig
	SessionConfig
}

type mainConfig struct {
	EnvVars
	Database
	Sessions
}

func New() Config {
	return mainConfig{}
}
