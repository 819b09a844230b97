package store

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"
)

type RunHistoryStore struct {
	db *sqlx.DB
}

var (
	TriggerTypeManual    = "manual"
	TriggerTypeScheduled = "scheduled"
)

var (
	StatusRunning = "running"
	StatusSuccess = "success"
	StatusFailure = "failure"
	StatusPartial = "partial"
)

func (rh *RunHistoryStore) InsertRunHistory(ctx context.Context, history *PipelineRunHistory) error {
	query := `INSERT INTO pipeline_run_history (
		source_dir,
		trigger_type,
		status,
		fact_rows,
		radar_rows,
		total_spend
	) VALUES (
		:source_dir,
		:trigger_type,
		:status,
		:fact_rows,
		:radar_rows,
		:total_spend
	) RETURNING id, processed_at`

	rows, err := rh.db.NamedQuery(query, history)
	if err != nil {
		return err
	}
	defer rows.Close()

	if rows.Next() {
		if err := rows.Scan(&history.ID, &history.ProcessedAt); err != nil {
			return err
		}
	}
	return rows.Err()
}

func (rh *RunHistoryStore) GetLatest(ctx context.Context, limit int) ([]PipelineRunHistory, error) {
	query := `
	SELECT
		id,
		source_dir,
		trigger_type,
		status,
		fact_rows,
		radar_rows,
		total_spend,
		processed_at
	FROM
		pipeline_run_history
	ORDER BY
		processed_at DESC
	LIMIT $1`

	history := []PipelineRunHistory{}
	if err := rh.db.SelectContext(ctx, &history, query, limit); err != nil {
		return nil, fmt.Errorf("failed to query run history: %w", err)
	}
	return history, nil
}

func (rh *RunHistoryStore) UpdateRunStatus(ctx context.Context, id int64, status string) error {
	_, err := rh.db.ExecContext(ctx, `UPDATE pipeline_run_history SET status = $1 WHERE id = $2`, status, id)
	return err
}
