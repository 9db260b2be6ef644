package setup

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"gotest.tools/v3/assert"
	"gotest.tools/v3/assert/cmp"

	"github.com/zetteln/server/config/secret"
	"github.com/zetteln/server/db"
	"github.com/zetteln/server/testing/kongtest"
)

func TestCLI_Defaults(t *testing.T) {
	cli := CLI{}
	s := kongtest.Help(t, &cli)
	assert.Check(t, cmp.Contains(s, "--database-socket"))
	assert.Check(t, cmp.Contains(s, "DATABASE_SOCKET"))

	assert.Check(t, cmp.Equal(cli.DatabaseSocket, "/var/run/mysqld/mysqld.sock"))
	assert.Check(t, cmp.Equal(cli.DBUser, "root"))
	assert.Check(t, !cli.DBPassword.IsSet())
	assert.Check(t, cmp.Equal(cli.DBName, "zetteln"))
	assert.Check(t, cmp.Equal(cli.DBMaxOpenConns, 10))
	assert.Check(t, cmp.Equal(cli.DBMaxIdleConns, 5))
	assert.Check(t, cmp.Equal(cli.QueryTimeout, 5*time.Second))
	assert.Check(t, cmp.Equal(cli.AdminAddr, ":8001"))
}

func TestDBConfigs(t *testing.T) {
	cli := CLI{
		DatabaseSocket: "localhost:3306",
		DBUser:         "zk",
		DBPassword:     secret.String("pw"),
		DBName:         "zetteln",
		DBMaxOpenConns: 7,
		DBMaxIdleConns: 3,
	}

	assert.Check(t, cmp.DeepEqual(AdminDBConfig(cli), db.Config{
		Target:         "localhost:3306",
		User:           "zk",
		Pass:           "pw",
		ConnectTimeout: 5 * time.Second,
	}))
	assert.Check(t, cmp.DeepEqual(AppDBConfig(cli), db.Config{
		Target:         "localhost:3306",
		User:           "zk",
		Pass:           "pw",
		Name:           "zetteln",
		MaxOpenConns:   7,
		MaxIdleConns:   3,
		ConnectTimeout: 5 * time.Second,
	}))
}

func TestLoadDotEnv(t *testing.T) {
	dir := t.TempDir()
	parent := filepath.Join(dir, ".env")
	err := os.WriteFile(parent, []byte("ZETTELN_TEST_A=from-file\nZETTELN_TEST_B=from-file\n"), 0600)
	assert.Assert(t, err)

	t.Setenv("ZETTELN_TEST_A", "from-env")
	t.Setenv("ZETTELN_TEST_B", "")
	assert.Assert(t, os.Unsetenv("ZETTELN_TEST_B"))

	err = LoadDotEnv(filepath.Join(dir, "missing", ".env"), parent)
	assert.Assert(t, err)

	assert.Check(t, cmp.Equal(os.Getenv("ZETTELN_TEST_A"), "from-env"), "existing variables win")
	assert.Check(t, cmp.Equal(os.Getenv("ZETTELN_TEST_B"), "from-file"))
}

func TestLoadDotEnv_NoFiles(t *testing.T) {
	assert.Check(t, LoadDotEnv(filepath.Join(t.TempDir(), ".env")))
}
