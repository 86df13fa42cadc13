package utils_test

import (
	"testing"
	"time"

	"github.com/jrsteele09/go-condo-client/internal/utils"
	"github.com/stretchr/testify/require"
)

func TestParseTimestamp(t *testing.T) {
	sp, err := time.LoadLocation("America/Sao_Paulo")
	if err != nil {
		sp = time.FixedZone("BRT", -3*60*60)
	}

	tests := []struct {
		in   string
		want time.Time
		ok   bool
	}{
		{"2025-03-10T12:00:00Z", time.Date(2025, 3, 10, 12, 0, 0, 0, time.UTC), true},
		{"2025-03-10T12:00:00.123456+02:00", time.Date(2025, 3, 10, 10, 0, 0, 123456000, time.UTC), true},
		{"2025-03-10T12:00:00.5", time.Date(2025, 3, 10, 12, 0, 0, 500000000, sp), true},
		{"2025-03-10 12:00:00", time.Date(2025, 3, 10, 12, 0, 0, 0, sp), true},
		{"2025-03-10T12:00", time.Date(2025, 3, 10, 12, 0, 0, 0, sp), true},
		{"2025-03-10", time.Time{}, false},
		{"", time.Time{}, false},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, ok := utils.ParseTimestamp(tt.in, sp)
			require.Equal(t, tt.ok, ok)
			require.True(t, tt.want.Equal(got), "got %s want %s", got, tt.want)
		})
	}
}

func TestPtrAndValue(t *testing.T) {
	p := utils.Ptr("x")
	require.Equal(t, "x", *p)
	require.Equal(t, "x", utils.Value(p))

	var nilInt *int
	require.Zero(t, utils.Value(nilInt))
}
