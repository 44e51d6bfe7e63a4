package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"
	"slices"

	"github.com/abhisek/acompana/internal/config"
	"github.com/abhisek/acompana/internal/engine"
	"github.com/abhisek/acompana/internal/guest"
	"github.com/abhisek/acompana/internal/logger"
	"github.com/abhisek/acompana/internal/placeholder"
	"github.com/abhisek/acompana/internal/seed"
	"github.com/abhisek/acompana/internal/store"
	"github.com/abhisek/acompana/internal/ui/theme"
	"github.com/abhisek/acompana/internal/who5"
	"github.com/chzyer/readline"
	"github.com/spf13/cobra"
)

var takeCmd = &cobra.Command{
	Use:   "take [questionnaire]",
	Short: "Answer a questionnaire (default: onboarding)",
	Long: "Answer a questionnaire interactively. Answers are saved as you go, so an\n" +
		"interrupted session resumes where it stopped.",
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		id := seed.OnboardingID
		if len(args) == 1 {
			id = args[0]
		}
		return takeQuestionnaire(cmd, id)
	},
}

func takeQuestionnaire(cmd *cobra.Command, questionnaireID string) error {
	ctx := cmd.Context()
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	log, err := newLogger(cfg)
	if err != nil {
		return fmt.Errorf("init logger: %w", err)
	}
	defer log.Sync()

	repo, closeRepo, err := openRepo(cmd, cfg)
	if err != nil {
		return err
	}
	defer closeRepo()

	if err := ensureBuiltin(ctx, repo, questionnaireID); err != nil {
		return err
	}

	gs, closeGuest, err := openGuest(cfg)
	if err != nil {
		return fmt.Errorf("open guest store: %w", err)
	}
	defer closeGuest()

	progress, err := gs.Load(ctx)
	if err != nil {
		// Names are a nicety; fall back to the generic wording.
		fmt.Fprintln(os.Stderr, "Guest progress unavailable:", err)
		progress = guest.Progress{}
	}

	eng := newEngine(repo, cfg, questionnaireID, log, gs)
	defer eng.Dispose()

	if err := eng.Load(ctx); err != nil {
		var tio *engine.TransientIOError
		if errors.As(err, &tio) {
			return fmt.Errorf("%w (inténtalo de nuevo en unos momentos)", err)
		}
		return err
	}

	rl, err := readline.NewEx(&readline.Config{
		Prompt:          "› ",
		// Answers hold personal data; keep them out of history.
		HistoryLimit:    -1,
		InterruptPrompt: "^C",
		EOFPrompt:       "salir",
	})
	if err != nil {
		return fmt.Errorf("init readline: %w", err)
	}
	defer rl.Close()

	r := newRunner(eng, rl, rl.Stdout(), placeholder.Context{Guest: progress})
	err = r.run(ctx)
	if errors.Is(err, errQuit) {
		fmt.Fprintln(os.Stdout, theme.Hint.Render("Hasta pronto. Tus respuestas quedan guardadas."))
		return nil
	}
	return err
}

// newEngine wires an engine for one questionnaire. Only onboarding captures
// names; elsewhere the first answers are ordinary answers.
func newEngine(repo store.Repository, cfg config.Config, questionnaireID string, log *logger.Logger, gs guest.Store) *engine.Engine {
	captures := []engine.Capture{}
	if questionnaireID == seed.OnboardingID {
		captures = nil
	}
	return engine.New(repo, engine.Config{
		QuestionnaireID: questionnaireID,
		UserID:          cfg.UserID,
		Captures:        captures,
		MaxSkips:        cfg.Engine.MaxSkips,
		Progress:        engine.ProgressMode(cfg.Engine.Progress),
	},
		engine.WithLogger(log),
		engine.WithScorer(who5.Scorer{}),
		engine.WithResolver(placeholder.New(placeholder.DefaultFallbacks())),
		engine.WithNamesSink(guest.Names{Store: gs}),
	)
}

// ensureBuiltin installs a built-in questionnaire the first time it is taken.
func ensureBuiltin(ctx context.Context, repo store.AdminRepository, questionnaireID string) error {
	rows, ok := seed.Get(questionnaireID)
	if !ok {
		return nil
	}
	stored, err := repo.ListQuestionnaires(ctx)
	if err != nil {
		return fmt.Errorf("list questionnaires: %w", err)
	}
	if slices.ContainsFunc(stored, func(q store.QuestionnaireRow) bool { return q.ID == questionnaireID }) {
		return nil
	}
	if err := repo.SaveQuestionnaire(ctx, rows); err != nil {
		return fmt.Errorf("install %s: %w", questionnaireID, err)
	}
	return nil
}
