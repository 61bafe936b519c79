package migration

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"log"
	"time"
)

type migrationStep struct {
	Name string
	SQL  string
}

var steps = []migrationStep{
	{
		Name: "create_extension_uuid_ossp",
		SQL:  `CREATE EXTENSION IF NOT EXISTS "uuid-ossp";`,
	},
	{
		Name: "create_table_users",
		SQL: `CREATE TABLE IF NOT EXISTS users (
  id           UUID        PRIMARY KEY DEFAULT uuid_generate_v4(),
  email        TEXT        NOT NULL,
  display_name TEXT        NOT NULL DEFAULT '',
  created_at   TIMESTAMPTZ NOT NULL DEFAULT now()
);`,
	},
	{
		Name: "create_index_users_email",
		SQL:  `CREATE INDEX IF NOT EXISTS idx_users_email ON users (email);`,
	},
	{
		Name: "create_table_document_templates",
		SQL: `CREATE TABLE IF NOT EXISTS document_templates (
  id                   UUID        PRIMARY KEY DEFAULT uuid_generate_v4(),
  provider_template_id TEXT        NOT NULL DEFAULT '',
  title                TEXT        NOT NULL,
  active               BOOLEAN     NOT NULL DEFAULT true,
  expiry_days          INT         NOT NULL DEFAULT 0 CHECK (expiry_days >= 0),
  created_at           TIMESTAMPTZ NOT NULL DEFAULT now()
);`,
	},
	{
		Name: "create_index_templates_provider_id",
		SQL:  `CREATE INDEX IF NOT EXISTS idx_templates_provider_id ON document_templates (provider_template_id) WHERE active;`,
	},
	{
		Name: "create_table_document_statuses",
		SQL: `CREATE TABLE IF NOT EXISTS document_statuses (
  id                      UUID        PRIMARY KEY,
  user_id                 UUID        NOT NULL REFERENCES users (id),
  user_name               TEXT        NOT NULL DEFAULT '',
  template_id             UUID        NOT NULL REFERENCES document_templates (id),
  status                  TEXT        NOT NULL DEFAULT 'not_started',
  viewed_at               TIMESTAMPTZ,
  started_at              TIMESTAMPTZ,
  completed_at            TIMESTAMPTZ,
  declined_at             TIMESTAMPTZ,
  expires_at              TIMESTAMPTZ,
  completed_document_url  TEXT        NOT NULL DEFAULT '',
  completed_document_name TEXT        NOT NULL DEFAULT '',
  audit_log_url           TEXT        NOT NULL DEFAULT '',
  submission_url          TEXT        NOT NULL DEFAULT '',
  submission_id           TEXT        NOT NULL DEFAULT '',
  last_payload            JSONB,
  updated_at              TIMESTAMPTZ NOT NULL DEFAULT now(),
  UNIQUE (user_id, template_id)
);`,
	},
	{
		// payload is the raw request body, not parsed JSON. BYTEA keeps the
		// audit insert valid for any body content, including unparseable ones.
		Name: "create_table_webhook_events",
		SQL: `CREATE TABLE IF NOT EXISTS webhook_events (
  id            UUID        PRIMARY KEY DEFAULT uuid_generate_v4(),
  event_type    TEXT        NOT NULL DEFAULT '',
  submission_id TEXT        NOT NULL DEFAULT '',
  payload       BYTEA,
  processed     BOOLEAN     NOT NULL DEFAULT false,
  user_id       UUID,
  template_id   UUID,
  received_at   TIMESTAMPTZ NOT NULL DEFAULT now()
);`,
	},
	{
		Name: "create_index_webhook_events_submission",
		SQL:  `CREATE INDEX IF NOT EXISTS idx_webhook_events_submission ON webhook_events (submission_id, event_type, received_at DESC) WHERE NOT processed;`,
	},
	{
		Name: "create_index_webhook_events_received_at",
		SQL:  `CREATE INDEX IF NOT EXISTS idx_webhook_events_received_at ON webhook_events (received_at);`,
	},
}

// EnsureMigrated checks if the 'webhook_events' table exists and runs migrations if it doesn't.
func EnsureMigrated(ctx context.Context, db *sql.DB, loc *time.Location, dbHost string) error {
	start := time.Now()

	logJSON(loc, map[string]any{
		"component": "database",
		"event":     "db_migration_check",
		"status":    "starting",
		"db_host":   dbHost,
	})

	var exists bool
	query := "SELECT to_regclass('public.webhook_events') IS NOT NULL"
	err := db.QueryRowContext(ctx, query).Scan(&exists)
	if err != nil {
		logJSON(loc, map[string]any{
			"component":     "database",
			"event":         "db_migration_failed",
			"status":        "error",
			"error_message": fmt.Sprintf("failed to check sentinel table: %v", err),
			"db_host":       dbHost,
			"duration_ms":   time.Since(start).Milliseconds(),
		})
		return fmt.Errorf("failed to check sentinel table: %w", err)
	}

	if exists {
		logJSON(loc, map[string]any{
			"component":   "database",
			"event":       "db_migration_skip",
			"status":      "success",
			"msg":         "schema already exists, skipping migration",
			"db_host":     dbHost,
			"duration_ms": time.Since(start).Milliseconds(),
		})
		return nil
	}

	logJSON(loc, map[string]any{
		"component": "database",
		"event":     "db_migration_start",
		"status":    "in_progress",
		"db_host":   dbHost,
	})

	for _, step := range steps {
		stepStart := time.Now()
		_, err := db.ExecContext(ctx, step.SQL)
		if err != nil {
			logJSON(loc, map[string]any{
				"component":        "database",
				"event":            "db_migration_failed",
				"status":           "error",
				"migration_step":   step.Name,
				"error_message":    err.Error(),
				"db_host":          dbHost,
				"duration_ms":      time.Since(start).Milliseconds(),
				"step_duration_ms": time.Since(stepStart).Milliseconds(),
			})
			return fmt.Errorf("migration step %s failed: %w", step.Name, err)
		}

		logJSON(loc, map[string]any{
			"component":        "database",
			"event":            "db_migration_step",
			"status":           "success",
			"migration_step":   step.Name,
			"db_host":          dbHost,
			"step_duration_ms": time.Since(stepStart).Milliseconds(),
		})
	}

	logJSON(loc, map[string]any{
		"component":   "database",
		"event":       "db_migration_success",
		"status":      "success",
		"db_host":     dbHost,
		"duration_ms": time.Since(start).Milliseconds(),
	})

	return nil
}

func logJSON(loc *time.Location, data map[string]any) {
	data["ts"] = time.Now().In(loc).Format(time.RFC3339Nano)
	if _, ok := data["level"]; !ok {
		if data["status"] == "error" {
			data["level"] = "error"
		} else {
			data["level"] = "info"
		}
	}

	b, err := json.Marshal(data)
	if err != nil {
		log.Printf("failed to marshal migration log: %v", err)
		return
	}
	log.SetFlags(0)
	log.Println(string(b))
}
