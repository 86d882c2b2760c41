// Package config loads env-tagged configuration structs from the process
// environment, with optional .env file support for local development.
//
// Configuration in this codebase follows the twelve-factor convention:
// every tunable is an environment variable, declared as an `env` tag on the
// owning package's Config struct (see session.Config and
// credstore.RedisConfig), and parsed once at startup with Load or MustLoad.
package config
