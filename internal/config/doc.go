// Package config provides configuration parsing for the reactor CLI.
//
// The configuration is stored in reactor.json in the working directory.
// This package handles loading, saving, and validating configuration.
//
// # Configuration File Structure
//
//	{
//	  "log": {"level": "info", "format": "text"},
//	  "runtime": {"maxFlushPasses": 1000, "memoCacheSize": 1},
//	  "metrics": {"enabled": true, "namespace": "reactor"},
//	  "tracing": {"enabled": false, "tracerName": "reactor"},
//	  "serve": {"addr": ":8080", "path": "/ws"}
//	}
//
// Missing fields take their defaults.
//
// # Usage
//
//	cfg, err := config.Load(".")
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	rt := reactive.NewRuntime(cfg.RuntimeOptions(cfg.Logger(os.Stderr))...)
package config
