package domain

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestParseDate(t *testing.T) {
	d, err := ParseDate("2025-03-01")
	require.NoError(t, err)
	require.Equal(t, "2025-03-01", d.String())

	_, err = ParseDate("01.03.2025")
	require.Error(t, err)

	_, err = ParseDate("")
	require.Error(t, err)
}

func TestNewDateDropsTime(t *testing.T) {
	moscow := time.FixedZone("MSK", 3*60*60)
	d := NewDate(time.Date(2025, 3, 1, 23, 59, 58, 0, moscow))
	require.Equal(t, "2025-03-01", d.String())
}

func TestDateJSONRoundTrip(t *testing.T) {
	d, err := ParseDate("2025-12-31")
	require.NoError(t, err)

	encoded, err := json.Marshal(d)
	require.NoError(t, err)
	require.Equal(t, `"2025-12-31"`, string(encoded))

	var decoded Date
	require.NoError(t, json.Unmarshal(encoded, &decoded))
	require.True(t, d.Equal(decoded))
}

func TestDateUnmarshalRejectsGarbage(t *testing.T) {
	var d Date
	require.Error(t, json.Unmarshal([]byte(`"вчера"`), &d))
	require.Error(t, json.Unmarshal([]byte(`42`), &d))
}

func TestDateAddDays(t *testing.T) {
	d, err := ParseDate("2025-02-27")
	require.NoError(t, err)

	require.Equal(t, "2025-03-06", d.AddDays(7).String())
	require.Equal(t, "2025-02-27", d.AddDays(0).String())
}

func TestDateScan(t *testing.T) {
	var d Date
	require.NoError(t, d.Scan(time.Date(2025, 7, 14, 0, 0, 0, 0, time.UTC)))
	require.Equal(t, "2025-07-14", d.String())

	require.NoError(t, d.Scan("2025-07-15"))
	require.Equal(t, "2025-07-15", d.String())

	require.Error(t, d.Scan(12345))
}
