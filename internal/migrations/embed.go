// Package migrations provides embedded SQL migration files.
package migrations

import (
	_ "embed"
)

//go:embed sql/001_probe_cache.sql
var ProbeCacheSQL string
