package closer_test

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/zetteln/server/closer"
)

func ExampleErrorHandler() {
	dir, err := os.MkdirTemp("", "closer")
	if err != nil {
		os.Exit(1)
	}
	defer os.RemoveAll(dir)

	path := filepath.Join(dir, "schema.sql")
	if err := os.WriteFile(path, []byte("CREATE TABLE IF NOT EXISTS notes"), 0o600); err != nil {
		os.Exit(1)
	}

	out, err := readAll(path)
	if err != nil {
		os.Exit(1)
	}
	fmt.Println(out)

	// output: CREATE TABLE IF NOT EXISTS notes
}

func readAll(path string) (_ string, err error) {
	f, err := os.Open(path) //#nosec:G304 // this is a test
	if err != nil {
		return "", err
	}
	defer closer.ErrorHandler(f, &err)

	b, err := io.ReadAll(f)
	return string(b), err
}
