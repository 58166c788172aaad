// Package config provides configuration structures and utilities for cardcrawl.
// It defines the sweep bounds, site URL templates, renderer settings and
// storage locations, and loads them from YAML files and the environment.
package config
