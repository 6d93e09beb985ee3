package logging

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoggerV2_WritesStructuredFields(t *testing.T) {
	var buf bytes.Buffer
	logger := New(&buf, "order-service")

	logger.Info("Order created", Fields{"order_id": 42, "pharmacy_id": 7})

	var line map[string]interface{}
	require.NoError(t, json.Unmarshal(buf.Bytes(), &line))
	assert.Equal(t, "info", line["level"])
	assert.Equal(t, "order-service", line["service"])
	assert.Equal(t, "Order created", line["message"])
	assert.EqualValues(t, 42, line["order_id"])
	assert.EqualValues(t, 7, line["pharmacy_id"])
}

func TestLoggerV2_With(t *testing.T) {
	var buf bytes.Buffer
	logger := New(&buf, "cart").With(Fields{"session_id": "abc"})

	logger.Error("Cart save failed")

	var line map[string]interface{}
	require.NoError(t, json.Unmarshal(buf.Bytes(), &line))
	assert.Equal(t, "error", line["level"])
	assert.Equal(t, "abc", line["session_id"])
}

func TestLoggerV2_MultipleFieldSets(t *testing.T) {
	var buf bytes.Buffer
	logger := New(&buf, "test")

	logger.Warn("merged", Fields{"a": "1"}, Fields{"b": "2"})

	var line map[string]interface{}
	require.NoError(t, json.Unmarshal(buf.Bytes(), &line))
	assert.Equal(t, "1", line["a"])
	assert.Equal(t, "2", line["b"])
}
