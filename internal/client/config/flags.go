package config

import (
	"flag"
	"os"
	"time"

	"github.com/dmitrijs2005/securedrive/internal/flagx"
)

// parseFlags populates Config fields from command-line flags.
//
//	-a string   server URL
//	-t int      request timeout in seconds (0 disables the timeout)
//	-o string   download directory
//
// Only the flags above are parsed; anything else in os.Args is ignored.
func parseFlags(cfg *Config) {
	args := flagx.FilterArgs(os.Args[1:], []string{"-a", "-t", "-o"})

	fs := flag.NewFlagSet("main", flag.ContinueOnError)

	fs.StringVar(&cfg.ServerURL, "a", cfg.ServerURL, "server base URL")
	requestTimeout := fs.Int("t", int(cfg.RequestTimeout.Seconds()), "request timeout (in seconds)")
	fs.StringVar(&cfg.DownloadDir, "o", cfg.DownloadDir, "download directory")

	if err := fs.Parse(args); err != nil {
		panic(err)
	}

	cfg.RequestTimeout = time.Duration(*requestTimeout) * time.Second
}
