package plotexp

import (
	"bufio"
	"io"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/go-gota/gota/dataframe"
	"github.com/go-gota/gota/series"
	"github.com/pkg/errors"
)

// OMNI2 hourly record layout. Only these fields of each row are read.
const (
	fieldYear  = 0
	fieldDOY   = 1
	fieldHour  = 2
	fieldR     = 39
	fieldDst   = 40
	fieldF107  = 50
	minFields  = fieldF107 + 1
	DefaultDat = "omni2_all_years.dat"
)

// Column names of a loaded frame.
const (
	ColYear = "Year"
	ColDOY  = "DOY"
	ColHour = "Hour"
	ColR    = "R"
	ColDst  = "Dst"
	ColF107 = "F10.7"
)

// SeriesColumns are the sensor readings left after the index is derived.
var SeriesColumns = []string{ColR, ColDst, ColF107}

// fillValues are the OMNI2 "no data" markers of the sensor columns.
var fillValues = map[string]float64{
	ColR:    999,
	ColDst:  99999,
	ColF107: 999.9,
}

var (
	ErrShortRow     = errors.New("plotexp: row has too few fields")
	ErrNotMonotonic = errors.New("plotexp: timestamp index is not strictly increasing")
	ErrNoIndex      = errors.New("plotexp: frame has no timestamp index")
	ErrEmptyInput   = errors.New("plotexp: input has no data rows")
)

// Frame is a table of sensor readings with an optional timestamp index.
type Frame struct {
	Index []time.Time
	Data  dataframe.DataFrame
}

// ReadOMNI reads whitespace-delimited OMNI2 rows. The returned frame holds
// Year, DOY, Hour and the three sensor columns, in file order.
func ReadOMNI(r io.Reader) (*Frame, error) {
	var (
		years, doys, hours []int
		rs, dsts, f107s    []float64
		line               int
	)
	var sc = bufio.NewScanner(r)
	sc.Buffer(make([]byte, 64*1024), 1024*1024)
	for sc.Scan() {
		line++
		var text = strings.TrimSpace(sc.Text())
		if text == "" {
			continue
		}
		var fields = strings.Fields(text)
		if len(fields) < minFields {
			return nil, errors.Wrapf(ErrShortRow, "line %d: %d fields, need %d", line, len(fields), minFields)
		}
		var ints [3]int
		for i, idx := range []int{fieldYear, fieldDOY, fieldHour} {
			v, err := strconv.Atoi(fields[idx])
			if err != nil {
				return nil, errors.Wrapf(err, "line %d field %d", line, idx)
			}
			ints[i] = v
		}
		var floats [3]float64
		for i, idx := range []int{fieldR, fieldDst, fieldF107} {
			v, err := strconv.ParseFloat(fields[idx], 64)
			if err != nil {
				return nil, errors.Wrapf(err, "line %d field %d", line, idx)
			}
			floats[i] = v
		}
		years = append(years, ints[0])
		doys = append(doys, ints[1])
		hours = append(hours, ints[2])
		rs = append(rs, floats[0])
		dsts = append(dsts, floats[1])
		f107s = append(f107s, floats[2])
	}
	if err := sc.Err(); err != nil {
		return nil, errors.Wrap(err, "read omni rows")
	}
	if len(years) == 0 {
		return nil, errors.Wrapf(ErrEmptyInput, "%d lines read", line)
	}
	var df = dataframe.New(
		series.New(years, series.Int, ColYear),
		series.New(doys, series.Int, ColDOY),
		series.New(hours, series.Int, ColHour),
		series.New(rs, series.Float, ColR),
		series.New(dsts, series.Float, ColDst),
		series.New(f107s, series.Float, ColF107),
	)
	if df.Err != nil {
		return nil, errors.Wrap(df.Err, "build omni frame")
	}
	return &Frame{Data: df}, nil
}

// HourOfYear converts a (year, day-of-year, hour) triple to a UTC timestamp.
func HourOfYear(year, doy, hour int) (time.Time, error) {
	var days = 365
	if time.Date(year, time.December, 31, 0, 0, 0, 0, time.UTC).YearDay() == 366 {
		days = 366
	}
	if doy < 1 || doy > days {
		return time.Time{}, errors.Wrapf(ErrBadTimestamp, "day %d of %d", doy, year)
	}
	if hour < 0 || hour > 23 {
		return time.Time{}, errors.Wrapf(ErrBadTimestamp, "hour %d", hour)
	}
	return time.Date(year, time.January, doy, hour, 0, 0, 0, time.UTC), nil
}

func (f *Frame) ints(col string) ([]int, error) {
	var vs, err = f.Data.Col(col).Int()
	if err != nil {
		return nil, errors.Wrapf(err, "column %s", col)
	}
	return vs, nil
}

// DeriveIndex sets the index from the Year, DOY and Hour columns and drops
// them. The row count does not change.
func (f *Frame) DeriveIndex() error {
	years, err := f.ints(ColYear)
	if err != nil {
		return err
	}
	doys, err := f.ints(ColDOY)
	if err != nil {
		return err
	}
	hours, err := f.ints(ColHour)
	if err != nil {
		return err
	}
	var index = make([]time.Time, len(years))
	for i := range years {
		t, err := HourOfYear(years[i], doys[i], hours[i])
		if err != nil {
			return errors.Wrapf(err, "row %d", i)
		}
		index[i] = t
	}
	var df = f.Data.Drop([]string{ColYear, ColDOY, ColHour})
	if df.Err != nil {
		return errors.Wrap(df.Err, "drop date columns")
	}
	f.Index, f.Data = index, df
	return nil
}

// CheckIndex reports the first position where the index does not increase.
func CheckIndex(index []time.Time) error {
	for i := 1; i < len(index); i++ {
		if !index[i].After(index[i-1]) {
			return errors.Wrapf(ErrNotMonotonic, "row %d (%s after %s)", i,
				index[i].Format(time.RFC3339), index[i-1].Format(time.RFC3339))
		}
	}
	return nil
}

// Gaps counts index steps that are not exactly one hour.
func Gaps(index []time.Time) int {
	var n int
	for i := 1; i < len(index); i++ {
		if index[i].Sub(index[i-1]) != time.Hour {
			n++
		}
	}
	return n
}

// MaskFill replaces OMNI2 fill values in the sensor columns with NaN.
// It returns the number of values replaced.
func (f *Frame) MaskFill() int {
	var masked int
	for _, name := range f.Data.Names() {
		var fill, ok = fillValues[name]
		if !ok {
			continue
		}
		var vs = f.Data.Col(name).Float()
		for i, v := range vs {
			if v == fill {
				vs[i] = math.NaN()
				masked++
			}
		}
		f.Data = f.Data.Mutate(series.New(vs, series.Float, name))
	}
	return masked
}

// Column returns the values of a sensor column.
func (f *Frame) Column(name string) []float64 {
	return f.Data.Col(name).Float()
}

// Series returns the names of the value columns in frame order.
func (f *Frame) Series() []string {
	var names []string
	for _, n := range f.Data.Names() {
		if n == ColYear || n == ColDOY || n == ColHour {
			continue
		}
		names = append(names, n)
	}
	return names
}

// Shape is (rows, columns) of the data, not counting the index.
func (f *Frame) Shape() (int, int) {
	return f.Data.Dims()
}

// WriteCSV writes the indexed frame with a leading Time column.
func (f *Frame) WriteCSV(w io.Writer) error {
	if f.Index == nil {
		return ErrNoIndex
	}
	var stamps = make([]string, len(f.Index))
	for i, t := range f.Index {
		stamps[i] = t.Format(time.RFC3339)
	}
	var out = dataframe.New(series.New(stamps, series.String, "Time")).CBind(f.Data)
	if out.Err != nil {
		return errors.Wrap(out.Err, "export frame")
	}
	return errors.Wrap(out.WriteCSV(w), "export frame")
}
