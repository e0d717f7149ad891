package config

import (
	"encoding/json"
	"os"

	"github.com/dmitrijs2005/fileshare/internal/flagx"
	"github.com/dmitrijs2005/fileshare/internal/timex"
)

// JsonConfig is the on-disk shape of the configuration file. Only non-empty
// values override what is already in Config.
type JsonConfig struct {
	ListenAddr     string         `json:"listen_addr"`
	BaseDirectory  string         `json:"base_directory"`
	UsersFile      string         `json:"users_file"`
	StorageType    string         `json:"storage_type"`
	DatabaseDSN    string         `json:"database_dsn"`
	SecretKey      string         `json:"secret_key"`
	SessionTTL     timex.Duration `json:"session_ttl"`
	CookieSecure   *bool          `json:"cookie_secure"`
	LogLevel       string         `json:"log_level"`
	LogFormat      string         `json:"log_format"`
	S3RootUser     string         `json:"s3_root_user"`
	S3RootPassword string         `json:"s3_root_password"`
	S3Bucket       string         `json:"s3_bucket"`
	S3Region       string         `json:"s3_region"`
	S3BaseEndpoint string         `json:"s3_base_endpoint"`
	S3UsersKey     string         `json:"s3_users_key"`
}

// parseJson loads the file named by -c / -config in args into config.
// Without the flag nothing happens. A missing or invalid file panics.
func parseJson(config *Config, args []string) {
	path := flagx.ConfigFileFlag(args)
	if path == "" {
		return
	}

	data, err := os.ReadFile(path)
	if err != nil {
		panic(err)
	}

	c := &JsonConfig{}
	if err := json.Unmarshal(data, c); err != nil {
		panic(err)
	}

	setString(&config.ListenAddr, c.ListenAddr)
	setString(&config.BaseDirectory, c.BaseDirectory)
	setString(&config.UsersFile, c.UsersFile)
	setString(&config.StorageType, c.StorageType)
	setString(&config.DatabaseDSN, c.DatabaseDSN)
	setString(&config.SecretKey, c.SecretKey)
	if c.SessionTTL.Duration != 0 {
		config.SessionTTL = c.SessionTTL.Duration
	}
	if c.CookieSecure != nil {
		config.CookieSecure = *c.CookieSecure
	}
	setString(&config.LogLevel, c.LogLevel)
	setString(&config.LogFormat, c.LogFormat)
	setString(&config.S3RootUser, c.S3RootUser)
	setString(&config.S3RootPassword, c.S3RootPassword)
	setString(&config.S3Bucket, c.S3Bucket)
	setString(&config.S3Region, c.S3Region)
	setString(&config.S3BaseEndpoint, c.S3BaseEndpoint)
	setString(&config.S3UsersKey, c.S3UsersKey)
}

func setString(dst *string, v string) {
	if v != "" {
		*dst = v
	}
}
