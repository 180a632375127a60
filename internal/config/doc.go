// Package config provides configuration management for the bbs CLI.
//
// # Configuration File
//
// Settings are read from config.yaml in the current directory or in
// $XDG_CONFIG_HOME/bbs. Every key can be overridden by an environment
// variable named after it: BBS_ followed by the key in upper case with dots
// replaced by underscores.
//
//	version: 1
//	history_size: 5
//	tree:
//	  file: ~/.local/share/bbs/bookmarks.json
//	state:
//	  backend: redis        # file, memory or redis
//	  redis:
//	    addr: localhost:6379
//	drive:
//	  max_backups: 10
//	  upload_cooldown: 60s
//	oauth:
//	  client_id: 1234.apps.googleusercontent.com
//
// Variables from a .env file are loaded with [LoadDotEnv] before lookup.
//
// # Loading Configuration
//
//	config.Init()
//	cfg, err := config.Load("")
//	if err != nil {
//	    return err
//	}
//	if errs := config.Validate(cfg); len(errs) > 0 {
//	    ...
//	}
package config
