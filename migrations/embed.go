// Package migrations embeds the goose SQL migrations so the binary and the
// test harness apply the same schema without a checkout-relative path.
package migrations

import "embed"

//go:embed *.sql
var FS embed.FS
