// Package config provides configuration structures and utilities for
// seoscan. It defines the crawl limits, report format preferences, and
// per-site overrides loaded from the optional .seoscan YAML file.
package config
