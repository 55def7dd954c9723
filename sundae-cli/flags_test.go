package sundaecli

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/tj/assert"
)

func TestEnvVar(t *testing.T) {
	assert.Equal(t, "TABLE_NAME", EnvVar("table-name"))
	assert.Equal(t, "COGNITO_USER_POOL_CLIENT_ID", EnvVar("cognito-user-pool-client-id"))
}

func TestStringFlag(t *testing.T) {
	var dest string
	flag := StringFlag("api-url", "push endpoint", &dest, "http://localhost:3001")
	assert.Equal(t, "api-url", flag.Name)
	assert.Equal(t, []string{"API_URL"}, flag.EnvVars)
	assert.Equal(t, "http://localhost:3001", flag.Value)
}

func TestNewLogger(t *testing.T) {
	service := Service{Name: "ws-notify", Version: "abc"}

	t.Run("debug suppressed by default", func(t *testing.T) {
		var buf bytes.Buffer
		logger := NewLogger(&buf, service, false)
		logger.Debug().Msg("hidden")
		assert.Equal(t, 0, buf.Len())

		logger.Info().Msg("shown")
		var line map[string]interface{}
		assert.Nil(t, json.Unmarshal(buf.Bytes(), &line))
		assert.Equal(t, "ws-notify", line["service"])
		assert.Equal(t, "abc", line["version"])
	})

	t.Run("debug enabled", func(t *testing.T) {
		var buf bytes.Buffer
		logger := NewLogger(&buf, service, true)
		logger.Debug().Msg("shown")
		assert.True(t, buf.Len() > 0)
	})
}
