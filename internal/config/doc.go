// Package config loads, normalizes, and validates comicpack configuration.
//
// It supplies repository defaults, expands user paths (including tilde
// shortcuts), reads TOML files, and honours environment fallbacks such as
// COMICPACK_7Z and COMICPACK_LOG_LEVEL. The Config type centralizes the
// recognized image extensions, per-extension compression policy, container
// format, worker counts, and history/logging destinations.
//
// Always obtain settings through this package so downstream code receives
// folded extensions, absolute paths, and clear validation errors.
package config
