// migrations содержит встраиваемые SQL-миграции схемы (goose).
package migrations

import "embed"

//go:embed *.sql
var FS embed.FS
