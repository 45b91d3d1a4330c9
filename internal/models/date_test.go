package models

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDateMarshal(t *testing.T) {
	tests := []struct {
		name string
		date Date
		want string
	}{
		{"parsed date", NewDate(time.Date(2024, 1, 2, 16, 5, 11, 0, time.UTC)), `"2024-01-02"`},
		{"raw fallback", RawDate("sometime in May"), `"sometime in May"`},
		{"empty", Date{}, `null`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := json.Marshal(tt.date)
			require.NoError(t, err)
			assert.Equal(t, tt.want, string(got))
		})
	}
}

func TestDateUnmarshal(t *testing.T) {
	var d Date
	require.NoError(t, json.Unmarshal([]byte(`"2024-03-15"`), &d))
	assert.True(t, d.Valid())
	assert.Equal(t, "2024-03-15", d.String())

	require.NoError(t, json.Unmarshal([]byte(`"not a date"`), &d))
	assert.False(t, d.Valid())
	assert.Equal(t, "not a date", d.Raw)

	require.NoError(t, json.Unmarshal([]byte(`null`), &d))
	assert.Equal(t, Date{}, d)
}
