package config

import (
	"flag"
	"os"
	"time"

	"github.com/dmitrijs2005/securedrive/internal/flagx"
)

// parseFlags populates selected server Config fields from command-line flags.
//
// Supported flags (short forms):
//
//	-a string   HTTP bind address (e.g., ":8080")
//	-m string   metadata backend: postgres | memory
//	-d string   PostgreSQL DSN
//	-k string   blob backend: s3 | fs | memory
//	-f string   blob directory for the fs backend
//	-s string   secret key
//	-t int      session validity, minutes (0 = until logout or restart)
//	-l int      max upload size, MiB
//	-i int      orphan collector interval, minutes
//	-w int      orphan collector grace period, minutes
//	-u string   S3 root user
//	-p string   S3 root password
//	-b string   S3 bucket name
//	-g string   S3 region
//	-e string   S3 base endpoint (e.g., "http://127.0.0.1:9000/")
//
// Duration flags are integers in minutes.
func parseFlags(config *Config) {
	args := flagx.FilterArgs(os.Args[1:], []string{"-a", "-m", "-d", "-k", "-f", "-s", "-t", "-l", "-i", "-w", "-u", "-p", "-b", "-g", "-e"})

	fs := flag.NewFlagSet("main", flag.ContinueOnError)

	fs.StringVar(&config.EndpointAddr, "a", config.EndpointAddr, "address and port to run server")
	fs.StringVar(&config.MetadataBackend, "m", config.MetadataBackend, "metadata backend (postgres|memory)")
	fs.StringVar(&config.DatabaseDSN, "d", config.DatabaseDSN, "database DSN")
	fs.StringVar(&config.BlobBackend, "k", config.BlobBackend, "blob backend (s3|fs|memory)")
	fs.StringVar(&config.BlobDir, "f", config.BlobDir, "blob directory")
	fs.StringVar(&config.SecretKey, "s", config.SecretKey, "secret key")

	sessionValidity := fs.Int("t", int(config.SessionValidityDuration.Minutes()), "session_validity_duration (in minutes)")
	fs.Int64Var(&config.MaxUploadMiB, "l", config.MaxUploadMiB, "max upload size (in MiB)")
	gcInterval := fs.Int("i", int(config.GCInterval.Minutes()), "gc_interval (in minutes)")
	gcGrace := fs.Int("w", int(config.GCGrace.Minutes()), "gc_grace (in minutes)")

	fs.StringVar(&config.S3RootUser, "u", config.S3RootUser, "S3 root user")
	fs.StringVar(&config.S3RootPassword, "p", config.S3RootPassword, "S3 root password")
	fs.StringVar(&config.S3Bucket, "b", config.S3Bucket, "S3 root bucket")
	fs.StringVar(&config.S3Region, "g", config.S3Region, "S3 root region")
	fs.StringVar(&config.S3BaseEndpoint, "e", config.S3BaseEndpoint, "S3 base endpoint")

	if err := fs.Parse(args); err != nil {
		panic(err)
	}

	config.SessionValidityDuration = time.Duration(*sessionValidity) * time.Minute
	config.GCInterval = time.Duration(*gcInterval) * time.Minute
	config.GCGrace = time.Duration(*gcGrace) * time.Minute
}
