package logging

import (
	"encoding/json"
	"log"
	"os"
	"time"
)

// Package logging emits one JSON object per line to the process log, matching
// the request-log and migration-log format used elsewhere in the service.
// Reconciliation logs every decision point with event type, submission id and
// whatever identities resolved, since the webhook sender only ever sees 200s.

// A dedicated logger so flags and output are set once and never touch the
// global log state other packages use.
var out = log.New(os.Stdout, "", 0)

func Info(event string, fields map[string]any) {
	write("info", event, fields)
}

func Warn(event string, fields map[string]any) {
	write("warn", event, fields)
}

func Error(event string, err error, fields map[string]any) {
	if fields == nil {
		fields = map[string]any{}
	}
	if err != nil {
		fields["error"] = err.Error()
	}
	write("error", event, fields)
}

func write(level, event string, fields map[string]any) {
	entry := map[string]any{
		"ts":    time.Now().UTC().Format(time.RFC3339Nano),
		"level": level,
		"event": event,
	}
	for k, v := range fields {
		entry[k] = v
	}

	b, err := json.Marshal(entry)
	if err != nil {
		out.Printf("failed to marshal log entry: %v", err)
		return
	}
	out.Println(string(b))
}
