// Package config handles application configuration loading and validation.
//
// Configuration is loaded from config.yml and validated using struct tags.
// Every setting has a usable default, so the service starts with no config
// file at all.
package config
