package pgstore

import (
	"time"

	"gorm.io/datatypes"
)

type questionnaireModel struct {
	ID     string `gorm:"column:id;primaryKey;type:text"`
	Title  string `gorm:"column:title;not null"`
	Scored bool   `gorm:"column:scored;not null;default:false"`
}

func (questionnaireModel) TableName() string { return "questionnaires" }

type questionModel struct {
	ID              string  `gorm:"column:id;primaryKey;type:text"`
	QuestionnaireID string  `gorm:"column:questionnaire_id;not null;index:idx_question_order,priority:1"`
	Text            string  `gorm:"column:text;not null"`
	Kind            string  `gorm:"column:kind;not null"`
	IsEntry         bool    `gorm:"column:is_entry;not null;default:false"`
	OrderIndex      int     `gorm:"column:order_index;not null;index:idx_question_order,priority:2"`
	VisibilityRule  *string `gorm:"column:visibility_rule;type:text"` // raw so malformed rules survive
	NextQuestionID  *string `gorm:"column:next_question_id"`
}

func (questionModel) TableName() string { return "questions" }

type optionModel struct {
	ID             string  `gorm:"column:id;primaryKey;type:text"`
	QuestionID     string  `gorm:"column:question_id;not null;index"`
	Text           string  `gorm:"column:text;not null"`
	Score          *int    `gorm:"column:score"`
	NextQuestionID *string `gorm:"column:next_question_id"`
	OrderIndex     int     `gorm:"column:order_index;not null"`
}

func (optionModel) TableName() string { return "options" }

type sessionModel struct {
	ID              string     `gorm:"column:id;primaryKey;type:text"`
	UserID          string     `gorm:"column:user_id;not null;index:idx_session_owner,priority:1"`
	QuestionnaireID string     `gorm:"column:questionnaire_id;not null;index:idx_session_owner,priority:2"`
	StartedAt       time.Time  `gorm:"column:started_at;not null"`
	CompletedAt     *time.Time `gorm:"column:completed_at"`
	Score           *int       `gorm:"column:score"`
}

func (sessionModel) TableName() string { return "sessions" }

type responseModel struct {
	ID         uint           `gorm:"column:id;primaryKey;autoIncrement"`
	SessionID  string         `gorm:"column:session_id;not null;uniqueIndex:response_session_id_question_id,priority:1"`
	QuestionID string         `gorm:"column:question_id;not null;uniqueIndex:response_session_id_question_id,priority:2"`
	OptionIDs  datatypes.JSON `gorm:"column:option_ids;type:jsonb;not null;default:'[]'"`
	Text       string         `gorm:"column:text;not null;default:''"`
	UpdatedAt  time.Time      `gorm:"column:updated_at;not null"`
}

func (responseModel) TableName() string { return "responses" }

func allModels() []any {
	return []any{
		&questionnaireModel{},
		&questionModel{},
		&optionModel{},
		&sessionModel{},
		&responseModel{},
	}
}

func optional(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
