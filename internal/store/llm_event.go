package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"
)

// eventRepo implements EventRepo over database/sql. Timestamps are stored as
// unix milliseconds so both backends compare them the same way.
type eventRepo struct {
	store *Store
}

const llmEventColumns = `id, created_at, provider, model, purpose, input_tokens, output_tokens,
	latency_ms, success, error_message, error_kind, request_body, response_body`

func (r *eventRepo) AppendLLMRequest(ctx context.Context, data LLMRequestEventData) error {
	q := r.store.rebind(`INSERT INTO llm_request_events
		(created_at, provider, model, purpose, input_tokens, output_tokens,
		 latency_ms, success, error_message, error_kind, request_body, response_body)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`)

	_, err := r.store.db.ExecContext(ctx, q,
		time.Now().UTC().UnixMilli(),
		data.Provider,
		data.Model,
		data.Purpose,
		data.InputTokens,
		data.OutputTokens,
		data.LatencyMs,
		data.Success,
		data.ErrorMessage,
		data.ErrorKind,
		data.RequestBody,
		data.ResponseBody,
	)
	if err != nil {
		return fmt.Errorf("save LLM request event: %w", err)
	}
	return nil
}

func (r *eventRepo) QueryLLMEvents(ctx context.Context, opts QueryOpts) ([]LLMEvent, error) {
	var (
		where []string
		args  []any
	)
	if opts.Purpose != "" {
		where = append(where, "purpose = ?")
		args = append(args, opts.Purpose)
	}
	if !opts.From.IsZero() {
		where = append(where, "created_at >= ?")
		args = append(args, opts.From.UTC().UnixMilli())
	}
	if !opts.To.IsZero() {
		where = append(where, "created_at <= ?")
		args = append(args, opts.To.UTC().UnixMilli())
	}

	q := "SELECT " + llmEventColumns + " FROM llm_request_events"
	if len(where) > 0 {
		q += " WHERE " + strings.Join(where, " AND ")
	}
	q += " ORDER BY id DESC"
	if opts.Limit > 0 {
		q += " LIMIT ?"
		args = append(args, opts.Limit)
	}

	rows, err := r.store.db.QueryContext(ctx, r.store.rebind(q), args...)
	if err != nil {
		return nil, fmt.Errorf("query LLM events: %w", err)
	}
	defer rows.Close()

	var events []LLMEvent
	for rows.Next() {
		ev, err := scanLLMEvent(rows)
		if err != nil {
			return nil, err
		}
		events = append(events, *ev)
	}
	return events, rows.Err()
}

func (r *eventRepo) GetLLMEvent(ctx context.Context, id int64) (*LLMEvent, error) {
	q := r.store.rebind("SELECT " + llmEventColumns + " FROM llm_request_events WHERE id = ?")
	ev, err := scanLLMEvent(r.store.db.QueryRowContext(ctx, q, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	return ev, err
}

func (r *eventRepo) LLMUsageByPurpose(ctx context.Context) ([]PurposeUsage, error) {
	rows, err := r.store.db.QueryContext(ctx, `SELECT purpose, COUNT(*),
		SUM(input_tokens), SUM(output_tokens), CAST(AVG(latency_ms) AS BIGINT)
		FROM llm_request_events GROUP BY purpose ORDER BY purpose`)
	if err != nil {
		return nil, fmt.Errorf("usage by purpose: %w", err)
	}
	defer rows.Close()

	var out []PurposeUsage
	for rows.Next() {
		var u PurposeUsage
		if err := rows.Scan(&u.Purpose, &u.Calls, &u.InputTokens, &u.OutputTokens, &u.AvgLatencyMs); err != nil {
			return nil, fmt.Errorf("scan purpose usage: %w", err)
		}
		out = append(out, u)
	}
	return out, rows.Err()
}

func (r *eventRepo) LLMUsageByModel(ctx context.Context) ([]ModelUsage, error) {
	rows, err := r.store.db.QueryContext(ctx, `SELECT model, COUNT(*),
		SUM(input_tokens), SUM(output_tokens)
		FROM llm_request_events GROUP BY model ORDER BY model`)
	if err != nil {
		return nil, fmt.Errorf("usage by model: %w", err)
	}
	defer rows.Close()

	var out []ModelUsage
	for rows.Next() {
		var u ModelUsage
		if err := rows.Scan(&u.Model, &u.Calls, &u.InputTokens, &u.OutputTokens); err != nil {
			return nil, fmt.Errorf("scan model usage: %w", err)
		}
		out = append(out, u)
	}
	return out, rows.Err()
}

func (r *eventRepo) LLMFailuresByKind(ctx context.Context) ([]FailureCount, error) {
	rows, err := r.store.db.QueryContext(ctx, r.store.rebind(`SELECT error_kind, COUNT(*) AS calls
		FROM llm_request_events WHERE success = ?
		GROUP BY error_kind ORDER BY calls DESC, error_kind`), false)
	if err != nil {
		return nil, fmt.Errorf("failures by kind: %w", err)
	}
	defer rows.Close()

	var out []FailureCount
	for rows.Next() {
		var f FailureCount
		if err := rows.Scan(&f.Kind, &f.Calls); err != nil {
			return nil, fmt.Errorf("scan failure count: %w", err)
		}
		out = append(out, f)
	}
	return out, rows.Err()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanLLMEvent(row rowScanner) (*LLMEvent, error) {
	var (
		ev      LLMEvent
		created int64
	)
	err := row.Scan(&ev.ID, &created, &ev.Provider, &ev.Model, &ev.Purpose,
		&ev.InputTokens, &ev.OutputTokens, &ev.LatencyMs, &ev.Success,
		&ev.ErrorMessage, &ev.ErrorKind, &ev.RequestBody, &ev.ResponseBody)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("scan LLM event: %w", err)
	}
	ev.Timestamp = time.UnixMilli(created).UTC()
	return &ev, nil
}
