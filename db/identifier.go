package db

import "strings"

// QuoteIdentifier quotes name for use as a MySQL identifier, such as a
// database name in CREATE DATABASE or USE, which cannot be a placeholder.
func QuoteIdentifier(name string) string {
	return "`" + strings.ReplaceAll(name, "`", "``") + "`"
}
