package config

import (
	"flag"
	"io"
	"time"

	"github.com/dmitrijs2005/fileshare/internal/flagx"
)

// parseFlags populates Config fields from command-line flags.
//
// Supported flags (short forms):
//
//	-a string   HTTP bind address (e.g., ":3000")
//	-b string   base directory to browse
//	-f string   users file (file/sqlite backends)
//	-m string   user store backend: file, s3, postgres, sqlite
//	-d string   PostgreSQL DSN
//	-s string   session cookie secret key
//	-t int      session lifetime, minutes
//	-l string   log level
//	-u string   S3 root user
//	-p string   S3 root password
//	-k string   S3 bucket name
//	-g string   S3 region
//	-e string   S3 base endpoint (e.g., "http://127.0.0.1:9000/")
//
// args is first filtered through flagx.FilterArgs so flags owned by other
// parsers (-c) do not cause errors.
func parseFlags(config *Config, args []string) {
	args = flagx.FilterArgs(args, []string{"-a", "-b", "-f", "-m", "-d", "-s", "-t", "-l", "-u", "-p", "-k", "-g", "-e"})

	fs := flag.NewFlagSet("main", flag.ContinueOnError)
	fs.SetOutput(io.Discard)

	fs.StringVar(&config.ListenAddr, "a", config.ListenAddr, "address and port to run server")
	fs.StringVar(&config.BaseDirectory, "b", config.BaseDirectory, "base directory")
	fs.StringVar(&config.UsersFile, "f", config.UsersFile, "users file")
	fs.StringVar(&config.StorageType, "m", config.StorageType, "user store backend")
	fs.StringVar(&config.DatabaseDSN, "d", config.DatabaseDSN, "database DSN")
	fs.StringVar(&config.SecretKey, "s", config.SecretKey, "secret key")

	sessionTTL := fs.Int("t", int(config.SessionTTL.Minutes()), "session lifetime (in minutes)")

	fs.StringVar(&config.LogLevel, "l", config.LogLevel, "log level")
	fs.StringVar(&config.S3RootUser, "u", config.S3RootUser, "S3 root user")
	fs.StringVar(&config.S3RootPassword, "p", config.S3RootPassword, "S3 root password")
	fs.StringVar(&config.S3Bucket, "k", config.S3Bucket, "S3 bucket")
	fs.StringVar(&config.S3Region, "g", config.S3Region, "S3 region")
	fs.StringVar(&config.S3BaseEndpoint, "e", config.S3BaseEndpoint, "S3 base endpoint")

	if err := fs.Parse(args); err != nil {
		panic(err)
	}

	// only an explicit -t overrides, so sub-minute values from JSON or env survive
	fs.Visit(func(f *flag.Flag) {
		if f.Name == "t" {
			config.SessionTTL = time.Duration(*sessionTTL) * time.Minute
		}
	})
}
