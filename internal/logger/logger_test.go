package logger

import (
	"bytes"
	"encoding/json"
	"errors"
	"net/http/httptest"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewWith(t *testing.T) {
	var buf bytes.Buffer
	log := NewWith("production", "warn", &buf)
	assert.Equal(t, logrus.WarnLevel, log.Logger.GetLevel())

	log.Info("dropped")
	assert.Zero(t, buf.Len())

	log.WithComponent("importer").WithError(errors.New("boom")).Warn("failed")
	var entry map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, "importer", entry["component"])
	assert.Equal(t, "boom", entry["error"])
	assert.Equal(t, "failed", entry["msg"])
}

func TestWithRequest(t *testing.T) {
	var buf bytes.Buffer
	log := NewWith("local", "debug", &buf)

	r := httptest.NewRequest("GET", "/api/kpis", nil)
	r.Header.Set(RequestIDHeader, "abc-123")
	e := log.WithRequest(r)
	assert.Equal(t, "abc-123", e.Data["req_id"])
	assert.Equal(t, "/api/kpis", e.Data["path"])

	fresh := log.WithRequest(httptest.NewRequest("GET", "/", nil))
	assert.Len(t, fresh.Data["req_id"], 36)

	assert.Same(t, log.Entry, log.WithError(nil))
}
