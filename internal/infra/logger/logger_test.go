package logger

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewTo(t *testing.T) {
	var buf bytes.Buffer
	log := NewTo(&buf, "prod")
	log.Debug("hidden")
	log.Info("receipt finalized", "receipt_id", 7)

	var rec map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &rec))
	assert.Equal(t, "receipt finalized", rec["msg"])
	assert.Equal(t, "print-cashier", rec["app"])
	assert.EqualValues(t, 7, rec["receipt_id"])

	buf.Reset()
	NewTo(&buf, "dev").Debug("visible")
	assert.Contains(t, buf.String(), "visible")
}
