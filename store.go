package plotexp

import (
	"context"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
)

const driverName = "mysql"

// Store reads and writes lock events kept in a MySQL table.
type Store struct {
	db  *sqlx.DB
	cfg *StoreConfig
	log logrus.FieldLogger
}

// OpenStore connects to the database named by dsn and pings it.
func OpenStore(ctx context.Context, dsn string, log logrus.FieldLogger) (*Store, error) {
	cfg, err := ParseStoreDSN(dsn)
	if err != nil {
		return nil, err
	}
	db, err := sqlx.Open(driverName, cfg.DriverDSN())
	if err != nil {
		return nil, errors.Wrap(err, "open store")
	}
	var s = &Store{db: db, cfg: cfg, log: log}
	pctx, cancel := s.timeout(ctx)
	defer cancel()
	if err = db.PingContext(pctx); err != nil {
		db.Close()
		return nil, errors.Wrap(err, "ping store")
	}
	log.WithFields(logrus.Fields{"addr": cfg.Addr, "db": cfg.DBName, "table": cfg.table}).Debug("store connected")
	return s, nil
}

func (s *Store) timeout(ctx context.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(ctx, s.cfg.queryTimeout)
}

func (s *Store) Close() error {
	return s.db.Close()
}

// Migrate creates the lock event table if it does not exist.
func (s *Store) Migrate(ctx context.Context) error {
	ctx, cancel := s.timeout(ctx)
	defer cancel()
	var qry = fmt.Sprintf(`CREATE TABLE IF NOT EXISTS %s (
		id INT AUTO_INCREMENT PRIMARY KEY,
		tid VARCHAR(64) NOT NULL,
		page_id VARCHAR(128) NOT NULL,
		lock_kind VARCHAR(16) NOT NULL,
		start_time VARCHAR(16) NOT NULL,
		end_time VARCHAR(16) NOT NULL,
		result VARCHAR(8) NOT NULL
	)`, s.cfg.table)
	_, err := s.db.ExecContext(ctx, qry)
	return errors.Wrap(err, "migrate store")
}

// Insert stores one validated transaction.
func (s *Store) Insert(ctx context.Context, tx Transaction) error {
	if err := tx.Validate(); err != nil {
		return err
	}
	ctx, cancel := s.timeout(ctx)
	defer cancel()
	var qry = fmt.Sprintf(`INSERT INTO %s (tid, page_id, lock_kind, start_time, end_time, result)
		VALUES (:tid, :page_id, :lock_kind, :start_time, :end_time, :result)`, s.cfg.table)
	_, err := s.db.NamedExecContext(ctx, qry, tx)
	return errors.Wrapf(err, "insert %s", tx.ID)
}

// Transactions returns up to limit transactions in insertion order. A limit
// of zero or less returns all of them.
func (s *Store) Transactions(ctx context.Context, limit int) ([]Transaction, error) {
	ctx, cancel := s.timeout(ctx)
	defer cancel()
	var (
		start = time.Now()
		qry   = fmt.Sprintf("SELECT tid, page_id, lock_kind, start_time, end_time, result FROM %s ORDER BY id", s.cfg.table)
		args  []interface{}
		txs   []Transaction
	)
	if limit > 0 {
		qry += " LIMIT ?"
		args = append(args, limit)
	}
	if err := s.db.SelectContext(ctx, &txs, qry, args...); err != nil {
		return nil, errors.Wrap(err, "select transactions")
	}
	s.log.WithFields(logrus.Fields{"rows": len(txs), "took": time.Since(start)}).Debug("transactions loaded")
	return txs, nil
}
