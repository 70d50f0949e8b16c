package plotexp

import (
	"io"

	"github.com/go-gota/gota/dataframe"
	"github.com/go-gota/gota/series"
	"github.com/pkg/errors"
)

// transactionColumns is the header of a transaction CSV file.
var transactionColumns = []string{"tid", "pageid", "lock", "start_time", "end_time", "result"}

// ReadTransactionsCSV reads transactions from a CSV file with a header row.
// Columns may appear in any order; extra columns are ignored.
func ReadTransactionsCSV(r io.Reader) ([]Transaction, error) {
	var types = make(map[string]series.Type, len(transactionColumns))
	for _, c := range transactionColumns {
		types[c] = series.String
	}
	var df = dataframe.ReadCSV(r,
		dataframe.HasHeader(true),
		dataframe.DetectTypes(false),
		dataframe.WithTypes(types),
	)
	if df.Err != nil {
		return nil, errors.Wrap(df.Err, "read transactions csv")
	}
	var have = make(map[string]bool)
	for _, n := range df.Names() {
		have[n] = true
	}
	for _, c := range transactionColumns {
		if !have[c] {
			return nil, errors.Errorf("plotexp: transactions csv missing column %q", c)
		}
	}
	df = df.Select(transactionColumns)
	var (
		records = df.Records()
		txs     = make([]Transaction, 0, len(records)-1)
	)
	// records[0] is the header
	for _, rec := range records[1:] {
		txs = append(txs, Transaction{
			ID:     rec[0],
			PageID: rec[1],
			Lock:   rec[2],
			Start:  rec[3],
			End:    rec[4],
			Result: rec[5],
		})
	}
	return txs, nil
}
