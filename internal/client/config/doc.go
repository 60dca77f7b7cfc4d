// Package config loads runtime configuration for the SecureDrive CLI.
//
// Values are applied in order: built-in defaults, then the JSON file named
// by -c or -config, then command-line flags.
//
// Supported flags
//
//	-a string   base URL of the SecureDrive server
//	-t int      per-request timeout (seconds)
//	-o string   directory downloads are written to
//
// The JSON file uses the same settings:
//
//	{
//	  "server_url": "http://127.0.0.1:8080",
//	  "request_timeout": "30s",
//	  "download_dir": "downloads"
//	}
package config
