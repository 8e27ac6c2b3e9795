// Package config loads runtime configuration for the authkeeper CLI.
//
// Sources, in increasing precedence: built-in defaults, an optional JSON file
// selected with -c or -config, then command-line flags.
//
//	{
//	  "server_endpoint_addr": "127.0.0.1:50051",
//	  "session_dir": ".authkeeper",
//	  "request_timeout": "10s"
//	}
package config
