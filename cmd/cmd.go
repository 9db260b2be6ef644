// Package cmd holds build information stamped in by the linker:
//
//	go build -ldflags "-X github.com/zetteln/server/cmd.Version=1.4.0 -X github.com/zetteln/server/cmd.Date=$(date -u +%FT%TZ)"
package cmd

var (
	Version = "dev"
	Date    = "unknown"
)
