package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	entsql "entgo.io/ent/dialect/sql"
)

func (s *Store) LoadGraph(ctx context.Context, questionnaireID string) (GraphRows, error) {
	var rows GraphRows

	q, err := s.getQuestionnaire(ctx, questionnaireID)
	if err != nil {
		return rows, err
	}
	rows.Questionnaire = q

	query, args := s.builder().
		Select("id", "questionnaire_id", "text", "kind", "is_entry", "order_index", "visibility_rule", "next_question_id").
		From(entsql.Table(tableQuestions)).
		Where(entsql.EQ("questionnaire_id", questionnaireID)).
		OrderBy("order_index", "id").
		Query()

	qrows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return rows, fmt.Errorf("query questions: %w", err)
	}
	defer qrows.Close()

	var ids []any
	for qrows.Next() {
		var (
			r          QuestionRow
			visibility sql.NullString
			next       sql.NullString
		)
		if err := qrows.Scan(&r.ID, &r.QuestionnaireID, &r.Text, &r.Kind, &r.IsEntry, &r.OrderIndex, &visibility, &next); err != nil {
			return rows, fmt.Errorf("scan question: %w", err)
		}
		r.VisibilityRule = visibility.String
		r.NextQuestionID = next.String
		rows.Questions = append(rows.Questions, r)
		ids = append(ids, r.ID)
	}
	if err := qrows.Err(); err != nil {
		return rows, fmt.Errorf("iterate questions: %w", err)
	}
	qrows.Close()

	if len(ids) == 0 {
		return rows, nil
	}

	query, args = s.builder().
		Select("id", "question_id", "text", "score", "next_question_id", "order_index").
		From(entsql.Table(tableOptions)).
		Where(entsql.In("question_id", ids...)).
		OrderBy("question_id", "order_index", "id").
		Query()

	orows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return rows, fmt.Errorf("query options: %w", err)
	}
	defer orows.Close()

	for orows.Next() {
		var (
			r     OptionRow
			score sql.NullInt64
			next  sql.NullString
		)
		if err := orows.Scan(&r.ID, &r.QuestionID, &r.Text, &score, &next, &r.OrderIndex); err != nil {
			return rows, fmt.Errorf("scan option: %w", err)
		}
		if score.Valid {
			v := int(score.Int64)
			r.Score = &v
		}
		r.NextQuestionID = next.String
		rows.Options = append(rows.Options, r)
	}
	if err := orows.Err(); err != nil {
		return rows, fmt.Errorf("iterate options: %w", err)
	}
	return rows, nil
}

func (s *Store) getQuestionnaire(ctx context.Context, id string) (QuestionnaireRow, error) {
	query, args := s.builder().
		Select("id", "title", "scored").
		From(entsql.Table(tableQuestionnaires)).
		Where(entsql.EQ("id", id)).
		Query()

	var q QuestionnaireRow
	err := s.db.QueryRowContext(ctx, query, args...).Scan(&q.ID, &q.Title, &q.Scored)
	if errors.Is(err, sql.ErrNoRows) {
		return q, fmt.Errorf("questionnaire %q: %w", id, ErrNotFound)
	}
	if err != nil {
		return q, fmt.Errorf("query questionnaire: %w", err)
	}
	return q, nil
}

func (s *Store) ListQuestionnaires(ctx context.Context) ([]QuestionnaireRow, error) {
	query, args := s.builder().
		Select("id", "title", "scored").
		From(entsql.Table(tableQuestionnaires)).
		OrderBy("id").
		Query()

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query questionnaires: %w", err)
	}
	defer rows.Close()

	var out []QuestionnaireRow
	for rows.Next() {
		var q QuestionnaireRow
		if err := rows.Scan(&q.ID, &q.Title, &q.Scored); err != nil {
			return nil, fmt.Errorf("scan questionnaire: %w", err)
		}
		out = append(out, q)
	}
	return out, rows.Err()
}

// SaveQuestionnaire replaces the questionnaire atomically. Existing sessions
// and responses are left untouched.
func (s *Store) SaveQuestionnaire(ctx context.Context, g GraphRows) error {
	if g.Questionnaire.ID == "" {
		return errors.New("questionnaire ID is required")
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	b := s.builder()
	qid := g.Questionnaire.ID

	// Options are keyed by question, so delete them through the old question set.
	sub := b.Select("id").From(entsql.Table(tableQuestions)).Where(entsql.EQ("questionnaire_id", qid))
	stmts := []entsql.Querier{
		b.Delete(tableOptions).Where(entsql.In("question_id", sub)),
		b.Delete(tableQuestions).Where(entsql.EQ("questionnaire_id", qid)),
		b.Delete(tableQuestionnaires).Where(entsql.EQ("id", qid)),
		b.Insert(tableQuestionnaires).
			Columns("id", "title", "scored").
			Values(qid, g.Questionnaire.Title, g.Questionnaire.Scored),
	}

	if len(g.Questions) > 0 {
		ins := b.Insert(tableQuestions).
			Columns("id", "questionnaire_id", "text", "kind", "is_entry", "order_index", "visibility_rule", "next_question_id")
		for _, q := range g.Questions {
			ins.Values(q.ID, qid, q.Text, q.Kind, q.IsEntry, q.OrderIndex, nullString(q.VisibilityRule), nullString(q.NextQuestionID))
		}
		stmts = append(stmts, ins)
	}

	if len(g.Options) > 0 {
		ins := b.Insert(tableOptions).
			Columns("id", "question_id", "text", "score", "next_question_id", "order_index")
		for _, o := range g.Options {
			var score any
			if o.Score != nil {
				score = *o.Score
			}
			ins.Values(o.ID, o.QuestionID, o.Text, score, nullString(o.NextQuestionID), o.OrderIndex)
		}
		stmts = append(stmts, ins)
	}

	for _, st := range stmts {
		query, args := st.Query()
		if _, err := tx.ExecContext(ctx, query, args...); err != nil {
			return fmt.Errorf("save questionnaire %q: %w", qid, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit: %w", err)
	}
	return nil
}

// nullString maps the empty string to SQL NULL.
func nullString(s string) any {
	if s == "" {
		return nil
	}
	return s
}
