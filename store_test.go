package plotexp

import (
	"context"
	"database/sql"
	"fmt"
	"io/ioutil"
	"log"
	"testing"
	"time"

	"github.com/go-sql-driver/mysql"
	"github.com/ory/dockertest"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// startMySQL runs a throwaway MySQL container and returns its DSN. The test is
// skipped when Docker is not reachable.
func startMySQL(t *testing.T) string {
	t.Helper()
	if testing.Short() {
		t.Skip("mysql store test needs docker")
	}
	pool, err := dockertest.NewPool("")
	if err != nil {
		t.Skipf("could not connect to docker: %s", err)
	}
	if err = pool.Client.Ping(); err != nil {
		t.Skipf("docker is not running: %s", err)
	}
	pool.MaxWait = 2 * time.Minute

	resource, err := pool.RunWithOptions(&dockertest.RunOptions{
		Repository: "mysql",
		Tag:        "5.7",
		Env:        []string{"MYSQL_ROOT_PASSWORD=secret", "MYSQL_DATABASE=simpledb"},
	})
	require.NoError(t, err, "could not start mysql container")
	t.Cleanup(func() {
		if err := pool.Purge(resource); err != nil {
			t.Logf("could not purge resource: %s", err)
		}
	})

	var cfg = NewStoreConfig()
	cfg.User, cfg.Passwd = "root", "secret"
	cfg.Net, cfg.Addr = "tcp", fmt.Sprintf("localhost:%s", resource.GetPort("3306/tcp"))
	cfg.DBName = "simpledb"
	cfg.table, cfg.queryTimeout = "lock_events_test", 20*time.Second

	_ = mysql.SetLogger(log.New(ioutil.Discard, "", 0)) // silence mysql logger
	require.NoError(t, pool.Retry(func() error {
		db, err := sql.Open(driverName, cfg.DriverDSN())
		if err != nil {
			return err
		}
		defer db.Close()
		return db.Ping()
	}))
	return cfg.FormatDSN()
}

func TestStoreRoundTrip(t *testing.T) {
	var dsn = startMySQL(t)
	logger, _ := test.NewNullLogger()
	var ctx = context.Background()

	store, err := OpenStore(ctx, dsn, logger)
	require.NoError(t, err)
	defer store.Close()
	require.NoError(t, store.Migrate(ctx))

	for _, tx := range BuiltinTransactions() {
		require.NoError(t, store.Insert(ctx, tx))
	}
	var bad = BuiltinTransactions()[0]
	bad.Lock = "READ"
	assert.Error(t, store.Insert(ctx, bad))

	txs, err := store.Transactions(ctx, 0)
	require.NoError(t, err)
	assert.Equal(t, BuiltinTransactions(), txs)

	txs, err = store.Transactions(ctx, 1)
	require.NoError(t, err)
	require.Len(t, txs, 1)
	assert.Equal(t, "transaction.45", txs[0].ID)

	table, err := NewTransactionTable(txs, nil)
	require.NoError(t, err)
	assert.Len(t, table, 1)
}
