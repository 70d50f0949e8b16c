package plotexp

import (
	"bytes"
	"compress/gzip"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/klauspost/compress/zstd"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// omniLine builds a 55-field OMNI2 row with the given date and readings.
func omniLine(year, doy, hour int, r, dst, f107 float64) string {
	var fields = make([]string, 55)
	for i := range fields {
		fields[i] = "0"
	}
	fields[fieldYear] = fmt.Sprint(year)
	fields[fieldDOY] = fmt.Sprint(doy)
	fields[fieldHour] = fmt.Sprint(hour)
	fields[fieldR] = fmt.Sprint(r)
	fields[fieldDst] = fmt.Sprint(dst)
	fields[fieldF107] = fmt.Sprint(f107)
	return strings.Join(fields, "  ")
}

// omniHours returns n consecutive hourly rows starting at doy/hour of year.
func omniHours(year, doy, hour, n int) string {
	var b strings.Builder
	var t = time.Date(year, time.January, doy, hour, 0, 0, 0, time.UTC)
	for i := 0; i < n; i++ {
		fmt.Fprintln(&b, omniLine(t.Year(), t.YearDay(), t.Hour(), float64(i), -float64(i), 70+float64(i)/10))
		t = t.Add(time.Hour)
	}
	return b.String()
}

func TestReadOMNI(t *testing.T) {
	frame, err := ReadOMNI(strings.NewReader(omniHours(1963, 1, 0, 30)))
	require.NoError(t, err)
	rows, cols := frame.Shape()
	assert.Equal(t, 30, rows)
	assert.Equal(t, 6, cols)
	assert.Equal(t, []string{ColYear, ColDOY, ColHour, ColR, ColDst, ColF107}, frame.Data.Names())
	assert.Equal(t, 29.0, frame.Column(ColR)[29])
	assert.Equal(t, -3.0, frame.Column(ColDst)[3])
	assert.Nil(t, frame.Index)
}

func TestReadOMNIShortRow(t *testing.T) {
	var data = omniHours(1963, 1, 0, 2) + "1963 1 2 4\n"
	_, err := ReadOMNI(strings.NewReader(data))
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrShortRow))
	assert.Contains(t, err.Error(), "line 3")
}

func TestReadOMNIBadNumber(t *testing.T) {
	var line = strings.Replace(omniLine(1963, 1, 0, 1, 2, 3), "1963", "19x3", 1)
	_, err := ReadOMNI(strings.NewReader(line))
	assert.Error(t, err)
}

func TestHourOfYear(t *testing.T) {
	got, err := HourOfYear(2000, 366, 23)
	require.NoError(t, err)
	assert.Equal(t, time.Date(2000, time.December, 31, 23, 0, 0, 0, time.UTC), got)

	got, err = HourOfYear(1963, 32, 5)
	require.NoError(t, err)
	assert.Equal(t, time.Date(1963, time.February, 1, 5, 0, 0, 0, time.UTC), got)

	_, err = HourOfYear(1963, 366, 0)
	assert.True(t, errors.Is(err, ErrBadTimestamp))
	_, err = HourOfYear(1963, 0, 0)
	assert.True(t, errors.Is(err, ErrBadTimestamp))
	_, err = HourOfYear(1963, 1, 24)
	assert.True(t, errors.Is(err, ErrBadTimestamp))
}

func TestDeriveIndex(t *testing.T) {
	// crosses a year boundary
	frame, err := ReadOMNI(strings.NewReader(omniHours(1999, 365, 20, 48)))
	require.NoError(t, err)
	rows, _ := frame.Shape()

	require.NoError(t, frame.DeriveIndex())
	after, cols := frame.Shape()
	assert.Equal(t, rows, after)
	assert.Equal(t, 3, cols)
	assert.Equal(t, SeriesColumns, frame.Data.Names())
	assert.Equal(t, SeriesColumns, frame.Series())
	require.Len(t, frame.Index, rows)
	assert.Equal(t, time.Date(1999, time.December, 31, 20, 0, 0, 0, time.UTC), frame.Index[0])
	assert.NoError(t, CheckIndex(frame.Index))
	assert.Zero(t, Gaps(frame.Index))
}

func TestDeriveIndexBadDay(t *testing.T) {
	frame, err := ReadOMNI(strings.NewReader(omniLine(1963, 400, 0, 1, 2, 3)))
	require.NoError(t, err)
	err = frame.DeriveIndex()
	assert.True(t, errors.Is(err, ErrBadTimestamp))
	assert.Nil(t, frame.Index)
}

func TestCheckIndex(t *testing.T) {
	var t0 = time.Date(2000, 1, 1, 0, 0, 0, 0, time.UTC)
	var ok = []time.Time{t0, t0.Add(time.Hour), t0.Add(3 * time.Hour)}
	assert.NoError(t, CheckIndex(ok))
	assert.Equal(t, 1, Gaps(ok))

	var dup = []time.Time{t0, t0.Add(time.Hour), t0.Add(time.Hour)}
	assert.True(t, errors.Is(CheckIndex(dup), ErrNotMonotonic))
	var back = []time.Time{t0, t0.Add(-time.Hour)}
	assert.True(t, errors.Is(CheckIndex(back), ErrNotMonotonic))
}

func TestMaskFill(t *testing.T) {
	var data = omniLine(1963, 1, 0, 999, 5, 999.9) + "\n" + omniLine(1963, 1, 1, 12, 99999, 80) + "\n"
	frame, err := ReadOMNI(strings.NewReader(data))
	require.NoError(t, err)
	require.NoError(t, frame.DeriveIndex())

	assert.Equal(t, 3, frame.MaskFill())
	assert.True(t, math.IsNaN(frame.Column(ColR)[0]))
	assert.Equal(t, 12.0, frame.Column(ColR)[1])
	assert.True(t, math.IsNaN(frame.Column(ColDst)[1]))
	assert.True(t, math.IsNaN(frame.Column(ColF107)[0]))
	assert.Equal(t, 80.0, frame.Column(ColF107)[1])
}

func TestDiagnose(t *testing.T) {
	frame, err := ReadOMNI(strings.NewReader(omniHours(1999, 365, 0, 72)))
	require.NoError(t, err)
	_, err = frame.Diagnose()
	assert.True(t, errors.Is(err, ErrNoIndex))

	require.NoError(t, frame.DeriveIndex())
	d, err := frame.Diagnose()
	require.NoError(t, err)
	assert.Equal(t, 72, d.Rows)
	assert.Equal(t, 3, d.Cols)
	assert.Equal(t, 72.0, d.SpanHours)
	assert.Equal(t, 2, d.Years)
	assert.Equal(t, 24*365*2, d.ExpectedHours)
	assert.Zero(t, d.Gaps)
	assert.Contains(t, d.String(), "Dataframe shape: (72, 3)")
	assert.Contains(t, d.String(), "24 hours/day * 365 days/year * 2 years = 17520 hours")

	var buf bytes.Buffer
	require.NoError(t, frame.WriteTable(&buf))
	assert.Contains(t, buf.String(), "1999-12-31 00:00:00")
	assert.Contains(t, buf.String(), "[72 rows x 3 columns]")
}

func TestWriteCSV(t *testing.T) {
	frame, err := ReadOMNI(strings.NewReader(omniHours(1963, 1, 0, 2)))
	require.NoError(t, err)
	assert.Equal(t, ErrNoIndex, frame.WriteCSV(&bytes.Buffer{}))

	require.NoError(t, frame.DeriveIndex())
	var buf bytes.Buffer
	require.NoError(t, frame.WriteCSV(&buf))
	var lines = strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 3)
	assert.Equal(t, "Time,R,Dst,F10.7", lines[0])
	assert.True(t, strings.HasPrefix(lines[2], "1963-01-01T01:00:00Z,"))
}

func TestOpenInputCompressed(t *testing.T) {
	var data = omniHours(1963, 1, 0, 5)
	var dir = t.TempDir()

	var plain = filepath.Join(dir, "omni.dat")
	require.NoError(t, os.WriteFile(plain, []byte(data), 0644))

	var gz bytes.Buffer
	zw := gzip.NewWriter(&gz)
	_, err := zw.Write([]byte(data))
	require.NoError(t, err)
	require.NoError(t, zw.Close())
	var gzPath = filepath.Join(dir, "omni.dat.gz")
	require.NoError(t, os.WriteFile(gzPath, gz.Bytes(), 0644))

	enc, err := zstd.NewWriter(nil)
	require.NoError(t, err)
	var zstPath = filepath.Join(dir, "omni.dat.zst")
	require.NoError(t, os.WriteFile(zstPath, enc.EncodeAll([]byte(data), nil), 0644))
	require.NoError(t, enc.Close())

	for _, path := range []string{plain, gzPath, zstPath} {
		rc, err := OpenInput(path)
		require.NoError(t, err, path)
		frame, err := ReadOMNI(rc)
		require.NoError(t, err, path)
		require.NoError(t, rc.Close())
		rows, _ := frame.Shape()
		assert.Equal(t, 5, rows, path)
	}

	_, err = OpenInput(filepath.Join(dir, "missing.dat"))
	assert.Error(t, err)
}

func TestReadOMNIEmpty(t *testing.T) {
	for _, data := range []string{"", "\n   \n"} {
		_, err := ReadOMNI(strings.NewReader(data))
		assert.True(t, errors.Is(err, ErrEmptyInput), "%q", data)
	}
}
