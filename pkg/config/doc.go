// Package config loads typed configuration structs from environment
// variables using caarlos0/env struct tags, with optional .env support via
// godotenv.
//
// Every package in carenotify exports its own Config struct; main loads the
// ones it needs:
//
//	var wsCfg websocket.Config
//	config.MustLoad(&wsCfg)
//
// Parsed values are cached per type and prefix for the life of the process.
package config
