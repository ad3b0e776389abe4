// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 MindSentry Contributors

package logging_test

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mindsentry/identity/internal/logging"
)

func TestSetup_JSONFormat(t *testing.T) {
	var buf bytes.Buffer
	logger := logging.Setup("identity", "1.0.0", "json", &buf)

	logger.Info("hello", "key", "value")

	var entry map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, "hello", entry["msg"])
	assert.Equal(t, "identity", entry["service"])
	assert.Equal(t, "1.0.0", entry["version"])
	assert.Equal(t, "value", entry["key"])
}

func TestSetup_TextFormat(t *testing.T) {
	var buf bytes.Buffer
	logger := logging.Setup("identity", "1.0.0", "text", &buf)

	logger.Info("hello")

	out := buf.String()
	assert.True(t, strings.Contains(out, "msg=hello"))
	assert.True(t, strings.Contains(out, "service=identity"))
}

func TestSetup_DefaultsToJSON(t *testing.T) {
	var buf bytes.Buffer
	logger := logging.Setup("identity", "1.0.0", "", &buf)

	logger.Info("hello")

	var entry map[string]any
	assert.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
}

func TestSetup_WithAttrsAndGroupPreserveService(t *testing.T) {
	var buf bytes.Buffer
	logger := logging.Setup("identity", "1.0.0", "json", &buf)

	logger.With("request_id", "r1").WithGroup("auth").Info("grouped", "op", "login")

	var entry map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, "identity", entry["service"])
	assert.Equal(t, "r1", entry["request_id"])
}
