// Package migrations содержит SQL миграции драйвера postgres.
package migrations

import "embed"

// FS содержит миграции, вшитые в бинарник.
//
//go:embed *.sql
var FS embed.FS
