package logging

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNewWithWriter(t *testing.T) {
	t.Run("respects configured level", func(t *testing.T) {
		var buf bytes.Buffer
		log := NewWithWriter(Config{Level: "warn"}, &buf)

		log.Info().Msg("hidden")
		log.Warn().Msg("visible")

		assert.NotContains(t, buf.String(), "hidden")
		assert.Contains(t, buf.String(), "visible")
	})

	t.Run("unknown level falls back to info", func(t *testing.T) {
		var buf bytes.Buffer
		log := NewWithWriter(Config{Level: "chatty"}, &buf)

		log.Debug().Msg("debug line")
		log.Info().Msg("info line")

		assert.NotContains(t, buf.String(), "debug line")
		assert.Contains(t, buf.String(), "info line")
	})

	t.Run("writes JSON by default", func(t *testing.T) {
		var buf bytes.Buffer
		log := NewWithWriter(Config{}, &buf)

		log.Info().Str("symbol", "AAPL").Msg("processing")

		assert.Contains(t, buf.String(), `"symbol":"AAPL"`)
	})
}
