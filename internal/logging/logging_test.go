package logging

import (
	"bytes"
	"encoding/json"
	"errors"
	"log"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func captureOutput(t *testing.T) *bytes.Buffer {
	t.Helper()
	var buf bytes.Buffer
	out.SetOutput(&buf)
	t.Cleanup(func() { out.SetOutput(os.Stdout) })
	return &buf
}

func TestWrite(t *testing.T) {
	t.Run("info line carries level, event and fields", func(t *testing.T) {
		buf := captureOutput(t)

		Info("webhook_event_processed", map[string]any{"submission_id": "42"})

		var entry map[string]any
		require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
		assert.Equal(t, "info", entry["level"])
		assert.Equal(t, "webhook_event_processed", entry["event"])
		assert.Equal(t, "42", entry["submission_id"])
		assert.NotEmpty(t, entry["ts"])
	})

	t.Run("error attaches the error string", func(t *testing.T) {
		buf := captureOutput(t)

		Error("signed_document_archive_failed", errors.New("connection reset"), nil)

		var entry map[string]any
		require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
		assert.Equal(t, "error", entry["level"])
		assert.Equal(t, "connection reset", entry["error"])
	})

	t.Run("global log flags are left alone", func(t *testing.T) {
		orig := log.Flags()
		buf := captureOutput(t)

		Warn("subject_user_not_found", nil)

		assert.Equal(t, orig, log.Flags())
		assert.NotEmpty(t, buf.String())
	})
}
