package daterange

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func TestParseFullDate(t *testing.T) {
	t.Parallel()

	r, err := Parse("20241215")
	require.NoError(t, err)
	require.Equal(t, date(2024, 12, 15), r.Start())
	require.Equal(t, date(2024, 12, 16), r.End())

	r, err = Parse("2024-06-30")
	require.NoError(t, err)
	require.Equal(t, date(2024, 6, 30), r.Start())
	require.Equal(t, date(2024, 7, 1), r.End())
}

func TestParseMonth(t *testing.T) {
	t.Parallel()

	r, err := Parse("202406")
	require.NoError(t, err)
	require.Equal(t, date(2024, 6, 1), r.Start())
	require.Equal(t, date(2024, 7, 1), r.End())

	r, err = Parse("2024-12")
	require.NoError(t, err)
	require.Equal(t, date(2024, 12, 1), r.Start())
	require.Equal(t, date(2025, 1, 1), r.End())
}

func TestParseYear(t *testing.T) {
	t.Parallel()

	r, err := Parse("2024")
	require.NoError(t, err)
	require.Equal(t, date(2024, 1, 1), r.Start())
	require.Equal(t, date(2025, 1, 1), r.End())
}

func TestParseBadSpecs(t *testing.T) {
	t.Parallel()

	for _, spec := range []string{"", "2024/12/15", "20241301", "202400", "24"} {
		_, err := Parse(spec)
		require.ErrorIs(t, err, ErrBadSpec, "spec %q", spec)
	}
}

func TestSpan(t *testing.T) {
	t.Parallel()

	// Full dates: the end is an exclusive endpoint.
	r, err := Span("20241215", "20241220")
	require.NoError(t, err)
	require.Equal(t, date(2024, 12, 15), r.Start())
	require.Equal(t, date(2024, 12, 20), r.End())

	// Partial end specs extend through their whole period.
	r, err = Span("202406", "202408")
	require.NoError(t, err)
	require.Equal(t, date(2024, 6, 1), r.Start())
	require.Equal(t, date(2024, 9, 1), r.End())

	r, err = Span("2024-11", "2025-02")
	require.NoError(t, err)
	require.Equal(t, date(2024, 11, 1), r.Start())
	require.Equal(t, date(2025, 3, 1), r.End())

	r, err = Span("2024", "2026")
	require.NoError(t, err)
	require.Equal(t, date(2024, 1, 1), r.Start())
	require.Equal(t, date(2027, 1, 1), r.End())
}

func TestSpanOpenSides(t *testing.T) {
	t.Parallel()

	r, err := Span("", "2024-06-15")
	require.NoError(t, err)
	require.Equal(t, date(YearMin, 1, 1), r.Start())
	require.Equal(t, date(2024, 6, 15), r.End())

	r, err = Span("2024-06-15", "")
	require.NoError(t, err)
	require.Equal(t, date(2024, 6, 15), r.Start())
	require.Equal(t, date(YearMax+1, 1, 1), r.End())

	r, err = Span("", "")
	require.NoError(t, err)
	require.Equal(t, date(YearMin, 1, 1), r.Start())
	require.Equal(t, date(YearMax+1, 1, 1), r.End())
}

func TestBefore(t *testing.T) {
	t.Parallel()

	// One unit back from the first known field of the end spec.
	r, err := Before("2024-06")
	require.NoError(t, err)
	require.Equal(t, date(2024, 5, 1), r.Start())
	require.Equal(t, date(2024, 6, 1), r.End())

	r, err = Before("20240101")
	require.NoError(t, err)
	require.Equal(t, date(2023, 12, 31), r.Start())
	require.Equal(t, date(2024, 1, 1), r.End())

	r, err = Before("2024")
	require.NoError(t, err)
	require.Equal(t, date(2023, 1, 1), r.Start())
	require.Equal(t, date(2024, 1, 1), r.End())
}

func TestOf(t *testing.T) {
	t.Parallel()

	r, err := Of(2024, Any, Any)
	require.NoError(t, err)
	require.Equal(t, date(2024, 1, 1), r.Start())
	require.Equal(t, date(2025, 1, 1), r.End())

	r, err = Of(2024, 6, Any)
	require.NoError(t, err)
	require.Equal(t, date(2024, 6, 1), r.Start())
	require.Equal(t, date(2024, 7, 1), r.End())

	r, err = Of(2024, 6, 15)
	require.NoError(t, err)
	require.Equal(t, date(2024, 6, 15), r.Start())
	require.Equal(t, date(2024, 6, 16), r.End())

	r, err = Of(2024, Any, 15)
	require.NoError(t, err)
	require.Equal(t, date(2024, 1, 15), r.Start())
	require.Equal(t, date(2024, 12, 16), r.End())

	r, err = Of(Any, 6, 15)
	require.NoError(t, err)
	require.Equal(t, date(YearMin, 6, 15), r.Start())
	require.Equal(t, date(YearMax, 6, 16), r.End())

	_, err = Of(Any, Any, Any)
	require.ErrorIs(t, err, ErrBadSpec)
	_, err = Of(2024, 13, Any)
	require.ErrorIs(t, err, ErrBadSpec)
}

func TestContains(t *testing.T) {
	t.Parallel()

	r, err := Parse("202406")
	require.NoError(t, err)
	require.True(t, r.Contains(date(2024, 6, 1)))
	require.True(t, r.Contains(date(2024, 6, 30)))
	require.False(t, r.Contains(date(2024, 7, 1)))
	require.False(t, r.Contains(date(2024, 5, 31)))
}

func TestFromTime(t *testing.T) {
	t.Parallel()

	r := FromTime(time.Date(2025, 12, 15, 13, 37, 0, 0, time.UTC))
	require.Equal(t, date(2025, 12, 15), r.Start())
	require.Equal(t, date(2025, 12, 16), r.End())
}

func TestStoreDate(t *testing.T) {
	t.Parallel()

	d, err := ParseStoreDate("20241015")
	require.NoError(t, err)
	require.Equal(t, date(2024, 10, 15), d)
	require.Equal(t, "20241015", FormatStoreDate(d))

	_, err = ParseStoreDate("2024-10-15")
	require.ErrorIs(t, err, ErrBadSpec)
}
