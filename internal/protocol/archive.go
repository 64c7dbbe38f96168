package protocol

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	apperrors "github.com/argus-ai/argus/internal/errors"
	"github.com/argus-ai/argus/pkg/models"
)

// Archive persists terminal protocol executions to the assistant database so
// they survive restarts. Live executions never touch the archive; only
// completed, failed, and cancelled runs are written.
type Archive struct {
	db *sql.DB
}

const archiveSchema = `
CREATE TABLE IF NOT EXISTS protocol_runs (
	execution_id TEXT PRIMARY KEY,
	protocol_id  TEXT NOT NULL,
	status       TEXT NOT NULL,
	current_step INTEGER NOT NULL,
	started_at   DATETIME NOT NULL,
	completed_at DATETIME,
	last_error   TEXT NOT NULL DEFAULT '',
	step_results TEXT NOT NULL DEFAULT '[]'
);

CREATE INDEX IF NOT EXISTS idx_protocol_runs_protocol
	ON protocol_runs(protocol_id, started_at DESC);
`

// NewArchive prepares the protocol_runs table on the given database.
func NewArchive(db *sql.DB) (*Archive, error) {
	if _, err := db.Exec(archiveSchema); err != nil {
		return nil, apperrors.Wrap(err, apperrors.CodeMemoryUnavailable,
			"create protocol archive schema", apperrors.CategorySystem)
	}
	return &Archive{db: db}, nil
}

// Save upserts one terminal execution.
func (a *Archive) Save(ctx context.Context, view *models.ProtocolStatusView) error {
	results, err := json.Marshal(view.StepResults)
	if err != nil {
		return apperrors.Wrap(err, apperrors.CodeMemoryStoreFailed,
			"encode step results", apperrors.CategorySystem)
	}

	var completedAt any
	if view.CompletedAt != nil {
		completedAt = view.CompletedAt.UTC()
	}

	_, err = a.db.ExecContext(ctx, `
		INSERT INTO protocol_runs
			(execution_id, protocol_id, status, current_step, started_at, completed_at, last_error, step_results)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(execution_id) DO UPDATE SET
			status = excluded.status,
			current_step = excluded.current_step,
			completed_at = excluded.completed_at,
			last_error = excluded.last_error,
			step_results = excluded.step_results`,
		view.ExecutionID, view.ProtocolID, view.Status, view.CurrentStep,
		view.StartedAt.UTC(), completedAt, view.LastError, string(results))
	if err != nil {
		return apperrors.Wrap(err, apperrors.CodeMemoryStoreFailed,
			"store protocol run", apperrors.CategorySystem)
	}
	return nil
}

// RecentRuns returns the newest archived runs for a protocol, or for all
// protocols when protocolID is empty.
func (a *Archive) RecentRuns(ctx context.Context, protocolID string, limit int) ([]*models.ProtocolStatusView, error) {
	if limit <= 0 {
		limit = 10
	}

	query := `
		SELECT execution_id, protocol_id, status, current_step, started_at, completed_at, last_error, step_results
		FROM protocol_runs`
	args := []any{}
	if protocolID != "" {
		query += ` WHERE protocol_id = ?`
		args = append(args, protocolID)
	}
	query += ` ORDER BY started_at DESC LIMIT ?`
	args = append(args, limit)

	rows, err := a.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, apperrors.Wrap(err, apperrors.CodeMemoryRetrieveFailed,
			"query protocol runs", apperrors.CategorySystem)
	}
	defer rows.Close()

	var views []*models.ProtocolStatusView
	for rows.Next() {
		var (
			view        models.ProtocolStatusView
			completedAt sql.NullTime
			results     string
		)
		if err := rows.Scan(&view.ExecutionID, &view.ProtocolID, &view.Status, &view.CurrentStep,
			&view.StartedAt, &completedAt, &view.LastError, &results); err != nil {
			return nil, apperrors.Wrap(err, apperrors.CodeMemoryRetrieveFailed,
				"scan protocol run", apperrors.CategorySystem)
		}
		if completedAt.Valid {
			t := completedAt.Time
			view.CompletedAt = &t
		}
		if err := json.Unmarshal([]byte(results), &view.StepResults); err != nil {
			return nil, apperrors.Wrap(err, apperrors.CodeMemoryRetrieveFailed,
				fmt.Sprintf("decode step results for %s", view.ExecutionID), apperrors.CategorySystem)
		}
		views = append(views, &view)
	}
	return views, rows.Err()
}

// PurgeOlderThan deletes archived runs that started before the cutoff and
// returns the number of rows removed.
func (a *Archive) PurgeOlderThan(ctx context.Context, cutoff time.Time) (int64, error) {
	res, err := a.db.ExecContext(ctx,
		`DELETE FROM protocol_runs WHERE started_at < ?`, cutoff.UTC())
	if err != nil {
		return 0, apperrors.Wrap(err, apperrors.CodeMemoryStoreFailed,
			"purge protocol runs", apperrors.CategorySystem)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("rows affected: %w", err)
	}
	return n, nil
}
