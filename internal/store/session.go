package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	entsql "entgo.io/ent/dialect/sql"
	"github.com/google/uuid"
)

func (s *Store) GetOrCreateSession(ctx context.Context, userID, questionnaireID string) (string, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return "", fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	b := s.builder()
	query, args := b.Select("id").
		From(entsql.Table(tableSessions)).
		Where(entsql.And(
			entsql.EQ("user_id", userID),
			entsql.EQ("questionnaire_id", questionnaireID),
			entsql.IsNull("completed_at"),
		)).
		OrderBy(entsql.Desc("started_at")).
		Limit(1).
		Query()

	var id string
	err = tx.QueryRowContext(ctx, query, args...).Scan(&id)
	switch {
	case err == nil:
		return id, tx.Commit()
	case !errors.Is(err, sql.ErrNoRows):
		return "", fmt.Errorf("query open session: %w", err)
	}

	id = uuid.New().String()
	query, args = b.Insert(tableSessions).
		Columns("id", "user_id", "questionnaire_id", "started_at").
		Values(id, userID, questionnaireID, time.Now().UTC()).
		Query()
	if _, err := tx.ExecContext(ctx, query, args...); err != nil {
		return "", fmt.Errorf("create session: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return "", fmt.Errorf("commit: %w", err)
	}
	return id, nil
}

func (s *Store) UpsertResponses(ctx context.Context, sessionID string, rows []ResponseRow) error {
	if len(rows) == 0 {
		return nil
	}

	ins := s.builder().Insert(tableResponses).
		Columns("session_id", "question_id", "option_ids", "response_text", "updated_at")

	now := time.Now().UTC()
	for _, r := range rows {
		optionIDs, err := encodeOptionIDs(r.OptionIDs)
		if err != nil {
			return fmt.Errorf("encode response %q: %w", r.QuestionID, err)
		}
		ins.Values(sessionID, r.QuestionID, optionIDs, nullString(r.Text), now)
	}
	ins.OnConflict(
		entsql.ConflictColumns("session_id", "question_id"),
		entsql.ResolveWithNewValues(),
	)

	query, args := ins.Query()
	if _, err := s.db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("upsert responses: %w", err)
	}
	return nil
}

func (s *Store) CompleteSession(ctx context.Context, sessionID string, score *int) error {
	upd := s.builder().Update(tableSessions).
		Set("completed_at", time.Now().UTC()).
		Where(entsql.EQ("id", sessionID))
	if score != nil {
		upd.Set("score", *score)
	}

	query, args := upd.Query()
	res, err := s.db.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("complete session: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("complete session: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("session %q: %w", sessionID, ErrNotFound)
	}
	return nil
}

func (s *Store) LoadResponses(ctx context.Context, sessionID string) ([]ResponseRow, error) {
	query, args := s.builder().
		Select("session_id", "question_id", "option_ids", "response_text", "updated_at").
		From(entsql.Table(tableResponses)).
		Where(entsql.EQ("session_id", sessionID)).
		OrderBy("id").
		Query()

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query responses: %w", err)
	}
	defer rows.Close()

	var out []ResponseRow
	for rows.Next() {
		var (
			r         ResponseRow
			optionIDs sql.NullString
			text      sql.NullString
		)
		if err := rows.Scan(&r.SessionID, &r.QuestionID, &optionIDs, &text, &r.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scan response: %w", err)
		}
		if r.OptionIDs, err = decodeOptionIDs(optionIDs.String); err != nil {
			return nil, fmt.Errorf("decode response %q: %w", r.QuestionID, err)
		}
		r.Text = text.String
		out = append(out, r)
	}
	return out, rows.Err()
}

func (s *Store) ListSessions(ctx context.Context, f SessionFilter) ([]SessionRecord, error) {
	sel := s.builder().
		Select("id", "user_id", "questionnaire_id", "started_at", "completed_at", "score").
		From(entsql.Table(tableSessions)).
		OrderBy(entsql.Desc("started_at"))

	var preds []*entsql.Predicate
	if f.UserID != "" {
		preds = append(preds, entsql.EQ("user_id", f.UserID))
	}
	if f.QuestionnaireID != "" {
		preds = append(preds, entsql.EQ("questionnaire_id", f.QuestionnaireID))
	}
	if f.CompletedOnly {
		preds = append(preds, entsql.NotNull("completed_at"))
	}
	if len(preds) > 0 {
		sel.Where(entsql.And(preds...))
	}
	if f.Limit > 0 {
		sel.Limit(f.Limit)
	}

	query, args := sel.Query()
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query sessions: %w", err)
	}
	defer rows.Close()

	var out []SessionRecord
	for rows.Next() {
		var (
			rec       SessionRecord
			completed sql.NullTime
			score     sql.NullInt64
		)
		if err := rows.Scan(&rec.ID, &rec.UserID, &rec.QuestionnaireID, &rec.StartedAt, &completed, &score); err != nil {
			return nil, fmt.Errorf("scan session: %w", err)
		}
		if completed.Valid {
			t := completed.Time
			rec.CompletedAt = &t
		}
		if score.Valid {
			v := int(score.Int64)
			rec.Score = &v
		}
		out = append(out, rec)
	}
	return out, rows.Err()
}

// encodeOptionIDs stores selected options as a JSON array, NULL when empty.
func encodeOptionIDs(ids []string) (any, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	b, err := json.Marshal(ids)
	if err != nil {
		return nil, err
	}
	return string(b), nil
}

func decodeOptionIDs(raw string) ([]string, error) {
	if raw == "" {
		return nil, nil
	}
	var ids []string
	if err := json.Unmarshal([]byte(raw), &ids); err != nil {
		return nil, err
	}
	return ids, nil
}
