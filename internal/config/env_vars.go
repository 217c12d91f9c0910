package config

import (
	"fmt"
	"os"
)

const (
	portEnvVar   = "PORT"
	appNameVar   = "APP_NAME"
	baseURLVar   = "BASE_URL"
	adminUserVar = "ADMIN_USERNAME"
	adminPassVar = "ADMIN_PASSWORD"
)

type EnvConfig interface {
	GetPort() string
	GetAppName() string
	GetBaseURL() string
	GetEnv() string
	GetAdminUsername() string
	GetAdminPassword() string
}

type EnvVars struct{}

var _ EnvConfig = EnvVars{}

func (EnvVars) GetPort() string {
	port := GetEnv(portEnvVar, "8080")
	if port != "" && port[0] != ':' {
		port = fmt.Sprintf(":%s", port)
	}
	return port
}

func (EnvVars) GetAppName() string {
	return GetEnv(appNameVar, "Portfolio Server")
}

func (EnvVars) GetEnv() string {
	env := os.Getenv("ENV")
	if env == "" {
		return "DEV"
	}
	return env
}

// GetBaseURL returns the public base URL of the site, used for redirects
// and absolute links.
func (EnvVars) GetBaseURL() string {
	return GetEnv(baseURLVar, "http://localhost:8080")
}

// GetAdminUsername returns the username seeded for the admin account on
// first startup.
func (EnvVars) GetAdminUsername() string {
	return GetEnv(adminUserVar, "admin")
}

// GetAdminPassword returns the initial admin password. Empty means no
// account is seeded.
func (EnvVars) GetAdminPassword() string {
	return GetEnv(adminPassVar, "")
}

func GetEnv(envVar, defaultValue string) string {
	value := os.Getenv(envVar)
	if value == "" {
		return defaultValue
	}
	return value
}
