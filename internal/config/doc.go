// Package config provides configuration structures and utilities for
// regcrawl. It defines the main options for crawling a jurisdiction's
// regulation hierarchy, resuming interrupted runs, and verifying persisted
// datasets.
package config
