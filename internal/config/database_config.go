package config

type DatabaseConfig interface {
	GetDatabaseURL() string
}

type Database struct{}

var _ DatabaseConfig = Database{}

func (Database) GetDatabaseURL() string {
	return GetEnv("DATABASE_URL", "postgres://localhost:5432/portfolio?sslmode=disable")
}
