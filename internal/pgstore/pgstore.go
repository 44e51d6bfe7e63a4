// Package pgstore implements the questionnaire repository on PostgreSQL
// with gorm.
package pgstore

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
	gormLogger "gorm.io/gorm/logger"

	"github.com/abhisek/acompana/internal/store"
)

// Store is the PostgreSQL implementation of store.AdminRepository.
type Store struct {
	db *gorm.DB
}

var _ store.AdminRepository = (*Store)(nil)

// Open connects to dsn and migrates the schema.
func Open(dsn string) (*Store, error) {
	gormLog := gormLogger.New(
		log.New(os.Stderr, "\r\n", log.LstdFlags),
		gormLogger.Config{
			SlowThreshold:             time.Second,
			LogLevel:                  gormLogger.Warn,
			IgnoreRecordNotFoundError: true,
		},
	)
	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{
		DisableForeignKeyConstraintWhenMigrating: true,
		Logger:                                   gormLog,
	})
	if err != nil {
		return nil, fmt.Errorf("connect to postgres: %w", err)
	}
	return New(db)
}

// New wraps an open connection and migrates the schema.
func New(db *gorm.DB) (*Store, error) {
	if err := db.AutoMigrate(allModels()...); err != nil {
		return nil, fmt.Errorf("auto-migrate: %w", err)
	}
	return &Store{db: db}, nil
}

// DB returns the underlying connection.
func (s *Store) DB() *gorm.DB { return s.db }

// Close closes the connection pool.
func (s *Store) Close() error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

func (s *Store) LoadGraph(ctx context.Context, questionnaireID string) (store.GraphRows, error) {
	db := s.db.WithContext(ctx)

	var qn questionnaireModel
	if err := db.First(&qn, "id = ?", questionnaireID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return store.GraphRows{}, fmt.Errorf("questionnaire %q: %w", questionnaireID, store.ErrNotFound)
		}
		return store.GraphRows{}, fmt.Errorf("load questionnaire: %w", err)
	}

	var questions []questionModel
	if err := db.Where("questionnaire_id = ?", questionnaireID).Order("order_index, id").Find(&questions).Error; err != nil {
		return store.GraphRows{}, fmt.Errorf("load questions: %w", err)
	}

	var options []optionModel
	if len(questions) > 0 {
		ids := make([]string, len(questions))
		for i, q := range questions {
			ids[i] = q.ID
		}
		if err := db.Where("question_id IN ?", ids).Order("question_id, order_index").Find(&options).Error; err != nil {
			return store.GraphRows{}, fmt.Errorf("load options: %w", err)
		}
	}

	rows := store.GraphRows{
		Questionnaire: store.QuestionnaireRow{ID: qn.ID, Title: qn.Title, Scored: qn.Scored},
		Questions:     make([]store.QuestionRow, 0, len(questions)),
		Options:       make([]store.OptionRow, 0, len(options)),
	}
	for _, q := range questions {
		rows.Questions = append(rows.Questions, store.QuestionRow{
			ID:              q.ID,
			QuestionnaireID: q.QuestionnaireID,
			Text:            q.Text,
			Kind:            q.Kind,
			IsEntry:         q.IsEntry,
			OrderIndex:      q.OrderIndex,
			VisibilityRule:  deref(q.VisibilityRule),
			NextQuestionID:  deref(q.NextQuestionID),
		})
	}
	for _, o := range options {
		rows.Options = append(rows.Options, store.OptionRow{
			ID:             o.ID,
			QuestionID:     o.QuestionID,
			Text:           o.Text,
			Score:          o.Score,
			NextQuestionID: deref(o.NextQuestionID),
			OrderIndex:     o.OrderIndex,
		})
	}
	return rows, nil
}

func (s *Store) SaveQuestionnaire(ctx context.Context, g store.GraphRows) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		id := g.Questionnaire.ID
		owned := tx.Model(&questionModel{}).Select("id").Where("questionnaire_id = ?", id)
		if err := tx.Where("question_id IN (?)", owned).Delete(&optionModel{}).Error; err != nil {
			return fmt.Errorf("delete options: %w", err)
		}
		if err := tx.Where("questionnaire_id = ?", id).Delete(&questionModel{}).Error; err != nil {
			return fmt.Errorf("delete questions: %w", err)
		}
		if err := tx.Where("id = ?", id).Delete(&questionnaireModel{}).Error; err != nil {
			return fmt.Errorf("delete questionnaire: %w", err)
		}

		qn := questionnaireModel{ID: id, Title: g.Questionnaire.Title, Scored: g.Questionnaire.Scored}
		if err := tx.Create(&qn).Error; err != nil {
			return fmt.Errorf("insert questionnaire: %w", err)
		}

		if len(g.Questions) > 0 {
			questions := make([]questionModel, len(g.Questions))
			for i, q := range g.Questions {
				questions[i] = questionModel{
					ID:              q.ID,
					QuestionnaireID: id,
					Text:            q.Text,
					Kind:            q.Kind,
					IsEntry:         q.IsEntry,
					OrderIndex:      q.OrderIndex,
					VisibilityRule:  optional(q.VisibilityRule),
					NextQuestionID:  optional(q.NextQuestionID),
				}
			}
			if err := tx.Create(&questions).Error; err != nil {
				return fmt.Errorf("insert questions: %w", err)
			}
		}

		if len(g.Options) > 0 {
			options := make([]optionModel, len(g.Options))
			for i, o := range g.Options {
				options[i] = optionModel{
					ID:             o.ID,
					QuestionID:     o.QuestionID,
					Text:           o.Text,
					Score:          o.Score,
					NextQuestionID: optional(o.NextQuestionID),
					OrderIndex:     o.OrderIndex,
				}
			}
			if err := tx.Create(&options).Error; err != nil {
				return fmt.Errorf("insert options: %w", err)
			}
		}
		return nil
	})
}

func (s *Store) ListQuestionnaires(ctx context.Context) ([]store.QuestionnaireRow, error) {
	var models []questionnaireModel
	if err := s.db.WithContext(ctx).Order("id").Find(&models).Error; err != nil {
		return nil, fmt.Errorf("list questionnaires: %w", err)
	}
	out := make([]store.QuestionnaireRow, len(models))
	for i, m := range models {
		out[i] = store.QuestionnaireRow{ID: m.ID, Title: m.Title, Scored: m.Scored}
	}
	return out, nil
}

func (s *Store) GetOrCreateSession(ctx context.Context, userID, questionnaireID string) (string, error) {
	var id string
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var open sessionModel
		err := tx.Where("user_id = ? AND questionnaire_id = ? AND completed_at IS NULL", userID, questionnaireID).
			Order("started_at DESC").
			First(&open).Error
		if err == nil {
			id = open.ID
			return nil
		}
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return err
		}

		created := sessionModel{
			ID:              uuid.NewString(),
			UserID:          userID,
			QuestionnaireID: questionnaireID,
			StartedAt:       time.Now().UTC(),
		}
		if err := tx.Create(&created).Error; err != nil {
			return err
		}
		id = created.ID
		return nil
	})
	if err != nil {
		return "", fmt.Errorf("get or create session: %w", err)
	}
	return id, nil
}

func (s *Store) UpsertResponses(ctx context.Context, sessionID string, rows []store.ResponseRow) error {
	if len(rows) == 0 {
		return nil
	}
	models := make([]responseModel, len(rows))
	for i, r := range rows {
		ids := r.OptionIDs
		if ids == nil {
			ids = []string{}
		}
		raw, err := json.Marshal(ids)
		if err != nil {
			return fmt.Errorf("encode option ids: %w", err)
		}
		updated := r.UpdatedAt
		if updated.IsZero() {
			updated = time.Now().UTC()
		}
		models[i] = responseModel{
			SessionID:  sessionID,
			QuestionID: r.QuestionID,
			OptionIDs:  datatypes.JSON(raw),
			Text:       r.Text,
			UpdatedAt:  updated,
		}
	}

	err := s.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "session_id"}, {Name: "question_id"}},
		DoUpdates: clause.AssignmentColumns([]string{"option_ids", "text", "updated_at"}),
	}).Create(&models).Error
	if err != nil {
		return fmt.Errorf("upsert responses: %w", err)
	}
	return nil
}

func (s *Store) CompleteSession(ctx context.Context, sessionID string, score *int) error {
	updates := map[string]any{"completed_at": time.Now().UTC()}
	if score != nil {
		updates["score"] = *score
	}
	res := s.db.WithContext(ctx).Model(&sessionModel{}).Where("id = ?", sessionID).Updates(updates)
	if res.Error != nil {
		return fmt.Errorf("complete session: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("session %q: %w", sessionID, store.ErrNotFound)
	}
	return nil
}

func (s *Store) LoadResponses(ctx context.Context, sessionID string) ([]store.ResponseRow, error) {
	var models []responseModel
	if err := s.db.WithContext(ctx).Where("session_id = ?", sessionID).Order("id").Find(&models).Error; err != nil {
		return nil, fmt.Errorf("load responses: %w", err)
	}
	out := make([]store.ResponseRow, 0, len(models))
	for _, m := range models {
		var ids []string
		if len(m.OptionIDs) > 0 {
			if err := json.Unmarshal(m.OptionIDs, &ids); err != nil {
				return nil, fmt.Errorf("decode option ids for %s: %w", m.QuestionID, err)
			}
		}
		if len(ids) == 0 {
			ids = nil
		}
		out = append(out, store.ResponseRow{
			SessionID:  m.SessionID,
			QuestionID: m.QuestionID,
			OptionIDs:  ids,
			Text:       m.Text,
			UpdatedAt:  m.UpdatedAt,
		})
	}
	return out, nil
}

func (s *Store) ListSessions(ctx context.Context, f store.SessionFilter) ([]store.SessionRecord, error) {
	q := s.db.WithContext(ctx).Model(&sessionModel{})
	if f.UserID != "" {
		q = q.Where("user_id = ?", f.UserID)
	}
	if f.QuestionnaireID != "" {
		q = q.Where("questionnaire_id = ?", f.QuestionnaireID)
	}
	if f.CompletedOnly {
		q = q.Where("completed_at IS NOT NULL")
	}
	if f.Limit > 0 {
		q = q.Limit(f.Limit)
	}

	var models []sessionModel
	if err := q.Order("started_at DESC").Find(&models).Error; err != nil {
		return nil, fmt.Errorf("list sessions: %w", err)
	}
	out := make([]store.SessionRecord, len(models))
	for i, m := range models {
		out[i] = store.SessionRecord{
			ID:              m.ID,
			UserID:          m.UserID,
			QuestionnaireID: m.QuestionnaireID,
			StartedAt:       m.StartedAt,
			CompletedAt:     m.CompletedAt,
			Score:           m.Score,
		}
	}
	return out, nil
}
