package store

import (
	"context"
	"fmt"

	"entgo.io/ent/dialect"
	"entgo.io/ent/dialect/sql/schema"
	"entgo.io/ent/schema/field"
)

// Table and column names.
const (
	tableQuestionnaires = "questionnaires"
	tableQuestions      = "questions"
	tableOptions        = "options"
	tableSessions       = "sessions"
	tableResponses      = "responses"
)

var (
	questionnairesColumns = []*schema.Column{
		{Name: "id", Type: field.TypeString, Unique: true},
		{Name: "title", Type: field.TypeString},
		{Name: "scored", Type: field.TypeBool, Default: false},
	}
	questionnairesTable = &schema.Table{
		Name:       tableQuestionnaires,
		Columns:    questionnairesColumns,
		PrimaryKey: []*schema.Column{questionnairesColumns[0]},
	}

	questionsColumns = []*schema.Column{
		{Name: "id", Type: field.TypeString, Unique: true},
		{Name: "questionnaire_id", Type: field.TypeString},
		{Name: "text", Type: field.TypeString, Size: 2147483647},
		{Name: "kind", Type: field.TypeString},
		{Name: "is_entry", Type: field.TypeBool, Default: false},
		{Name: "order_index", Type: field.TypeInt},
		{Name: "visibility_rule", Type: field.TypeString, Nullable: true, Size: 2147483647},
		{Name: "next_question_id", Type: field.TypeString, Nullable: true},
	}
	questionsTable = &schema.Table{
		Name:       tableQuestions,
		Columns:    questionsColumns,
		PrimaryKey: []*schema.Column{questionsColumns[0]},
		Indexes: []*schema.Index{
			{Name: "question_questionnaire_id_order_index", Columns: []*schema.Column{questionsColumns[1], questionsColumns[5]}},
		},
	}

	optionsColumns = []*schema.Column{
		{Name: "id", Type: field.TypeString, Unique: true},
		{Name: "question_id", Type: field.TypeString},
		{Name: "text", Type: field.TypeString, Size: 2147483647},
		{Name: "score", Type: field.TypeInt, Nullable: true},
		{Name: "next_question_id", Type: field.TypeString, Nullable: true},
		{Name: "order_index", Type: field.TypeInt},
	}
	optionsTable = &schema.Table{
		Name:       tableOptions,
		Columns:    optionsColumns,
		PrimaryKey: []*schema.Column{optionsColumns[0]},
		Indexes: []*schema.Index{
			{Name: "option_question_id", Columns: []*schema.Column{optionsColumns[1]}},
		},
	}

	sessionsColumns = []*schema.Column{
		{Name: "id", Type: field.TypeString, Unique: true},
		{Name: "user_id", Type: field.TypeString},
		{Name: "questionnaire_id", Type: field.TypeString},
		{Name: "started_at", Type: field.TypeTime},
		{Name: "completed_at", Type: field.TypeTime, Nullable: true},
		{Name: "score", Type: field.TypeInt, Nullable: true},
	}
	sessionsTable = &schema.Table{
		Name:       tableSessions,
		Columns:    sessionsColumns,
		PrimaryKey: []*schema.Column{sessionsColumns[0]},
		Indexes: []*schema.Index{
			{Name: "session_user_id_questionnaire_id", Columns: []*schema.Column{sessionsColumns[1], sessionsColumns[2]}},
		},
	}

	responsesColumns = []*schema.Column{
		{Name: "id", Type: field.TypeInt, Increment: true},
		{Name: "session_id", Type: field.TypeString},
		{Name: "question_id", Type: field.TypeString},
		{Name: "option_ids", Type: field.TypeString, Nullable: true, Size: 2147483647},
		{Name: "response_text", Type: field.TypeString, Nullable: true, Size: 2147483647},
		{Name: "updated_at", Type: field.TypeTime},
	}
	responsesTable = &schema.Table{
		Name:       tableResponses,
		Columns:    responsesColumns,
		PrimaryKey: []*schema.Column{responsesColumns[0]},
		Indexes: []*schema.Index{
			// (session, question) uniqueness is what makes upserts idempotent.
			{Name: "response_session_id_question_id", Unique: true, Columns: []*schema.Column{responsesColumns[1], responsesColumns[2]}},
		},
	}

	tables = []*schema.Table{
		questionnairesTable,
		questionsTable,
		optionsTable,
		sessionsTable,
		responsesTable,
	}
)

// migrate creates or updates all tables.
func migrate(ctx context.Context, drv dialect.Driver) error {
	m, err := schema.NewMigrate(drv)
	if err != nil {
		return fmt.Errorf("new migrate: %w", err)
	}
	return m.Create(ctx, tables...)
}
