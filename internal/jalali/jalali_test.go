package jalali

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseDateRoundTrip(t *testing.T) {
	start, err := ParseDate("1402/10/11")
	require.NoError(t, err)
	assert.Equal(t, time.UTC, start.Location())
	assert.Equal(t, "1402/10/11", FormatDate(start))
}

func TestParseEndOfDayCoversFullDay(t *testing.T) {
	start, err := ParseDate("1402/10/11")
	require.NoError(t, err)
	end, err := ParseEndOfDay("1402/10/11")
	require.NoError(t, err)

	assert.Equal(t, 24*time.Hour-time.Second, end.Sub(start))
	// the last second still belongs to the same local day
	assert.Equal(t, "1402/10/11", FormatDate(end))
	// one more second rolls over
	assert.Equal(t, "1402/10/12", FormatDate(end.Add(time.Second)))
}

func TestParseDateRejectsMalformedInput(t *testing.T) {
	for _, input := range []string{
		"", "1402-10-11", "1402/10", "1402/10/11/5",
		"1402/13/01", "1402/00/10", "1402/12/32", "abcd/10/11", "1402/xx/11",
	} {
		_, err := ParseDate(input)
		assert.Errorf(t, err, "input %q", input)
	}
}

func TestParseDateRejectsNormalizedOverflow(t *testing.T) {
	// Esfand 1402 has 29 days; day 30 must not normalize into Farvardin.
	_, err := ParseDate("1402/12/30")
	assert.Error(t, err)
}

func TestStartOfLocalDayBuckets(t *testing.T) {
	noon, err := ParseDate("1403/01/15")
	require.NoError(t, err)
	noon = noon.Add(12 * time.Hour)

	bucket := StartOfLocalDay(noon)
	assert.Equal(t, "1403/01/15", FormatDate(bucket))
	assert.True(t, bucket.Before(noon))
	// idempotent
	assert.Equal(t, bucket, StartOfLocalDay(bucket))
}

func TestFormatDateTimeUsesLocalClock(t *testing.T) {
	start, err := ParseDate("1402/10/11")
	require.NoError(t, err)
	assert.Equal(t, "1402/10/11 00:00", FormatDateTime(start))
}
