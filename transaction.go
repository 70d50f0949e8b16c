package plotexp

import (
	"fmt"
	"strings"
	"time"

	"github.com/pkg/errors"
)

// LockKind is the kind of page lock a transaction asked for.
type LockKind int

const (
	SharedLock LockKind = iota
	ExclusiveLock
)

// Result of a lock acquisition.
const (
	ResultSuccess = "success"
	ResultFailure = "failure"
)

// clockLayout matches lock log timestamps such as "11:12:03,241".
const clockLayout = "15:04:05,000"

var (
	ErrUnknownLock   = errors.New("plotexp: unknown lock kind")
	ErrBadTimestamp  = errors.New("plotexp: malformed timestamp")
	ErrUnknownResult = errors.New("plotexp: unknown transaction result")
)

func (k LockKind) String() string {
	switch k {
	case SharedLock:
		return "SHARED_LOCK"
	case ExclusiveLock:
		return "EXCLUSIVE_LOCK"
	}
	return "UNKNOWN"
}

func ParseLockKind(s string) (LockKind, error) {
	switch strings.TrimSpace(s) {
	case "SHARED_LOCK":
		return SharedLock, nil
	case "EXCLUSIVE_LOCK":
		return ExclusiveLock, nil
	}
	return 0, errors.Wrapf(ErrUnknownLock, "%q", s)
}

// ParseClock parses a "HH:MM:SS,mmm" time of day. The date part is the zero
// date used by time.Parse (January 1, year 0) so two clocks compare by time
// of day only.
func ParseClock(s string) (time.Time, error) {
	var t, err = time.Parse(clockLayout, strings.TrimSpace(s))
	if err != nil {
		return time.Time{}, errors.Wrapf(ErrBadTimestamp, "%q: %v", s, err)
	}
	return t, nil
}

// Transaction is one lock request as recorded by the lock manager.
type Transaction struct {
	ID     string `db:"tid"`
	PageID string `db:"page_id"`
	Lock   string `db:"lock_kind"`
	Start  string `db:"start_time"`
	End    string `db:"end_time"`
	Result string `db:"result"`
}

// Validate checks every field that the charts depend on.
func (t Transaction) Validate() error {
	if t.ID == "" {
		return errors.New("plotexp: transaction without id")
	}
	if _, err := ParseLockKind(t.Lock); err != nil {
		return errors.Wrap(err, t.ID)
	}
	if t.Result != ResultSuccess && t.Result != ResultFailure {
		return errors.Wrapf(ErrUnknownResult, "%s: %q", t.ID, t.Result)
	}
	var start, end, err = t.Span()
	if err != nil {
		return err
	}
	if end.Before(start) {
		return errors.Errorf("plotexp: %s ends before it starts", t.ID)
	}
	return nil
}

// Span returns the parsed start and end clocks.
func (t Transaction) Span() (time.Time, time.Time, error) {
	start, err := ParseClock(t.Start)
	if err != nil {
		return time.Time{}, time.Time{}, errors.Wrapf(err, "%s start", t.ID)
	}
	end, err := ParseClock(t.End)
	if err != nil {
		return time.Time{}, time.Time{}, errors.Wrapf(err, "%s end", t.ID)
	}
	return start, end, nil
}

// BuiltinTransactions returns the two lock records observed on the same heap
// page that the waterfall chart draws when no other source is configured.
func BuiltinTransactions() []Transaction {
	return []Transaction{
		{
			ID:     "transaction.45",
			PageID: "heapPageId.-752505997.0",
			Lock:   SharedLock.String(),
			Start:  "11:12:03,241",
			End:    "11:12:03,242",
			Result: ResultSuccess,
		},
		{
			ID:     "transaction.44",
			PageID: "heapPageId.-752505997.0",
			Lock:   ExclusiveLock.String(),
			Start:  "11:12:03,229",
			End:    "11:12:03,229",
			Result: ResultSuccess,
		},
	}
}

// TransactionRow is one row of the table charted by the waterfall tool.
type TransactionRow struct {
	Name  string
	Start time.Time
	Tx    Transaction
}

// TransactionTable is indexed by thread name, one row per transaction, in
// input order.
type TransactionTable []TransactionRow

// NewTransactionTable parses the start clock of every transaction. names
// supplies the row index; when it is shorter than txs the missing rows are
// named "thread-N" (1-based).
func NewTransactionTable(txs []Transaction, names []string) (TransactionTable, error) {
	var table = make(TransactionTable, 0, len(txs))
	for i, tx := range txs {
		if err := tx.Validate(); err != nil {
			return nil, err
		}
		start, err := ParseClock(tx.Start)
		if err != nil {
			return nil, err
		}
		var name = fmt.Sprintf("thread-%d", i+1)
		if i < len(names) && names[i] != "" {
			name = names[i]
		}
		table = append(table, TransactionRow{Name: name, Start: start, Tx: tx})
	}
	return table, nil
}

// Names returns the row index.
func (tt TransactionTable) Names() []string {
	var names = make([]string, len(tt))
	for i, r := range tt {
		names[i] = r.Name
	}
	return names
}
