package plotexp

import (
	"bytes"
	"regexp"
	"strings"
	"time"

	"github.com/go-sql-driver/mysql"
	"github.com/pkg/errors"
)

const (
	defaultTable        = "lock_events"
	defaultQueryTimeout = 10 * time.Second
)

var tableNameRe = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*$`)

// StoreConfig is a lock event store configuration parsed from a DSN string.
// Besides the go-sql-driver parameters it understands "table" and
// "queryTimeout", which are stripped before the DSN reaches the driver.
type StoreConfig struct {
	mysql.Config

	table        string
	queryTimeout time.Duration
}

// NewStoreConfig creates a StoreConfig with default values.
func NewStoreConfig() *StoreConfig {
	var cfg = mysql.NewConfig()

	return &StoreConfig{
		Config:       *cfg,
		table:        defaultTable,
		queryTimeout: defaultQueryTimeout,
	}
}

func (cfg *StoreConfig) Clone() *StoreConfig {
	var cp = cfg.Config.Clone()

	return &StoreConfig{
		Config:       *cp,
		table:        cfg.table,
		queryTimeout: cfg.queryTimeout,
	}
}

func (cfg *StoreConfig) Table() string               { return cfg.table }
func (cfg *StoreConfig) QueryTimeout() time.Duration { return cfg.queryTimeout }

func hasParams(dsn string) bool {
	for i := len(dsn) - 1; i >= 0; i-- {
		if dsn[i] == '/' {
			// dbname[?param1=value1&...&paramN=valueN]
			return strings.IndexByte(dsn[i+1:], '?') >= 0
		}
	}

	return false
}

func writeDSNParam(buf *bytes.Buffer, hasParam *bool, name, value string) {
	buf.Grow(1 + len(name) + 1 + len(value))
	if !*hasParam {
		*hasParam = true
		buf.WriteByte('?')
	} else {
		buf.WriteByte('&')
	}
	buf.WriteString(name)
	buf.WriteByte('=')
	buf.WriteString(value)
}

// DriverDSN is the DSN handed to go-sql-driver/mysql.
func (cfg *StoreConfig) DriverDSN() string {
	return cfg.Config.FormatDSN()
}

// FormatDSN formats the full configuration, store parameters included.
func (cfg *StoreConfig) FormatDSN() string {
	var dsn = cfg.DriverDSN()
	var hasParam = hasParams(dsn)

	var buf bytes.Buffer
	buf.WriteString(dsn)

	if cfg.table != "" && cfg.table != defaultTable {
		writeDSNParam(&buf, &hasParam, "table", cfg.table)
	}

	if cfg.queryTimeout > 0 && cfg.queryTimeout != defaultQueryTimeout {
		writeDSNParam(&buf, &hasParam, "queryTimeout", cfg.queryTimeout.String())
	}

	return buf.String()
}

// ParseStoreDSN parses the DSN string to a StoreConfig.
func ParseStoreDSN(dsn string) (*StoreConfig, error) {
	var mysqlCfg, err = mysql.ParseDSN(dsn)
	if err != nil {
		return nil, errors.Wrap(err, "parse dsn")
	}

	var cfg = StoreConfig{
		Config:       *mysqlCfg,
		table:        defaultTable,
		queryTimeout: defaultQueryTimeout,
	}

	for name, value := range mysqlCfg.Params {
		switch name {
		case "table":
			if !tableNameRe.MatchString(value) {
				return nil, errors.Errorf("plotexp: invalid table name %q", value)
			}
			cfg.table = value
		case "queryTimeout":
			cfg.queryTimeout, err = time.ParseDuration(value)
			if err != nil {
				return nil, errors.Wrap(err, "queryTimeout")
			}
		default:
			continue
		}
		delete(cfg.Params, name)
	}
	if len(cfg.Params) == 0 {
		cfg.Params = nil
	}

	return &cfg, nil
}
