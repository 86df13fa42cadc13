package logging_test

import (
	"bytes"
	"testing"

	"github.com/jrsteele09/go-condo-client/internal/logging"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"
)

func TestParseLevel(t *testing.T) {
	require.Equal(t, zerolog.DebugLevel, logging.ParseLevel("DEBUG"))
	require.Equal(t, zerolog.WarnLevel, logging.ParseLevel(" warn "))
	require.Equal(t, zerolog.InfoLevel, logging.ParseLevel("chatty"))
	require.Equal(t, zerolog.InfoLevel, logging.ParseLevel(""))
}

func TestNewWritesJSONOutsideDev(t *testing.T) {
	var buf bytes.Buffer
	log := logging.New(&buf, "info", "PROD")
	log.Info().Str("path", "/units").Msg("request")
	log.Debug().Msg("hidden")

	require.Contains(t, buf.String(), `"path":"/units"`)
	require.NotContains(t, buf.String(), "hidden")
}
