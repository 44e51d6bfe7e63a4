package cmd

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/abhisek/acompana/internal/engine"
	"github.com/abhisek/acompana/internal/placeholder"
	"github.com/abhisek/acompana/internal/qgraph"
	"github.com/abhisek/acompana/internal/ui/components"
	"github.com/abhisek/acompana/internal/ui/theme"
	"github.com/abhisek/acompana/internal/who5"
)

// backKey re-opens the previously shown question.
const backKey = "<"

const barWidth = 40

// errQuit is returned when the user leaves before finishing.
var errQuit = errors.New("questionnaire interrupted")

// lineReader is the part of *readline.Instance the runner needs.
type lineReader interface {
	Readline() (string, error)
	SetPrompt(prompt string)
}

// runner drives an engine from line input.
type runner struct {
	eng   *engine.Engine
	in    lineReader
	out   io.Writer
	names placeholder.Context

	// shown is the stack of questions displayed so far, for going back.
	shown []string
	// revisit, when set, is shown instead of the engine's current question.
	revisit *qgraph.Question
}

func newRunner(eng *engine.Engine, in lineReader, out io.Writer, names placeholder.Context) *runner {
	return &runner{eng: eng, in: in, out: out, names: names}
}

// run loops until the questionnaire completes, the user quits or a fatal
// error occurs.
func (r *runner) run(ctx context.Context) error {
	fmt.Fprintln(r.out, theme.Title.Render(r.eng.Graph().Title()))
	fmt.Fprintln(r.out, theme.Hint.Render(fmt.Sprintf("Escribe %s para volver a la pregunta anterior.", backKey)))

	for {
		st := r.eng.State()
		switch st.Status {
		case engine.StatusCompleted:
			r.showOutcome(st)
			return nil

		case engine.StatusError:
			if !st.Retryable {
				return st.Err
			}
			if err := r.offerRetry(ctx, st); err != nil {
				return err
			}

		case engine.StatusAnswering:
			if err := r.ask(ctx, st); err != nil {
				return err
			}

		default:
			return fmt.Errorf("unexpected engine state %s", st.Status)
		}
	}
}

func (r *runner) ask(ctx context.Context, st engine.State) error {
	q := st.Current
	if r.revisit != nil {
		q = r.revisit
	}
	if len(r.shown) == 0 || r.shown[len(r.shown)-1] != q.ID {
		r.shown = append(r.shown, q.ID)
	}

	fmt.Fprintln(r.out)
	fmt.Fprintln(r.out, r.progressBar())
	fmt.Fprintln(r.out, r.renderQuestion(q, st.Answers[q.ID]))

	line, err := r.read("› ")
	if err != nil {
		return err
	}
	if line == backKey {
		r.back()
		return nil
	}

	sel, err := selection(q, line)
	if err != nil {
		fmt.Fprintln(r.out, theme.ErrorText.Render(err.Error()))
		return nil
	}

	err = r.eng.Submit(ctx, q.ID, sel)
	var ve *qgraph.ValidationError
	switch {
	case err == nil:
		r.revisit = nil
	case errors.As(err, &ve):
		fmt.Fprintln(r.out, theme.ErrorText.Render(validationHint(q.Kind)))
	case r.eng.State().Status == engine.StatusError:
		// Handled by the next loop iteration.
	default:
		return err
	}
	return nil
}

// back re-opens the question shown before the current one.
func (r *runner) back() {
	if len(r.shown) < 2 {
		fmt.Fprintln(r.out, theme.Hint.Render("Ya estás en la primera pregunta."))
		return
	}
	r.shown = r.shown[:len(r.shown)-1]
	prev, ok := r.eng.Graph().Node(r.shown[len(r.shown)-1])
	if !ok {
		return
	}
	r.revisit = prev
}

func (r *runner) offerRetry(ctx context.Context, st engine.State) error {
	fmt.Fprintln(r.out, theme.ErrorText.Render("No hemos podido guardar tu respuesta."))
	fmt.Fprintln(r.out, theme.Hint.Render(st.ErrMessage()))

	line, err := r.read("¿Reintentar? (s/n) ")
	if err != nil {
		return err
	}
	switch strings.ToLower(line) {
	case "n", "no":
		return errQuit
	}
	err = r.eng.Retry(ctx)
	switch {
	case err == nil:
		// The retried save was the revisited answer; resume from the engine.
		r.revisit = nil
	case r.eng.State().Status != engine.StatusError:
		return err
	}
	return nil
}

func (r *runner) read(prompt string) (string, error) {
	r.in.SetPrompt(prompt)
	line, err := r.in.Readline()
	if err != nil {
		return "", errQuit
	}
	return strings.TrimSpace(line), nil
}

func (r *runner) progressBar() string {
	p := r.eng.Progress()
	switch p.Mode {
	case engine.ProgressLinear:
		return components.NewStepBar(p.Linear.Current, p.Linear.Total, false, barWidth).View()
	default:
		// The current question is counted as the next step.
		return components.NewStepBar(p.Graph.Answered+1, max(p.Graph.EstimatedTotal, p.Graph.Answered+1), true, barWidth).View()
	}
}

func (r *runner) renderQuestion(q *qgraph.Question, prev qgraph.Answer) string {
	var b strings.Builder
	b.WriteString(theme.Question.Render(r.eng.Resolve(q.Text, r.names)))

	if q.Kind.IsChoice() {
		list := components.OptionList{Selected: make(map[int]bool)}
		for i, o := range q.Options {
			list.Options = append(list.Options, r.eng.Resolve(o.Text, r.names))
			if prev.Selected(o.ID) {
				list.Selected[i] = true
			}
		}
		b.WriteString("\n\n" + list.View())
	} else if prev.Text != "" {
		b.WriteString("\n" + theme.Subtitle.Render("Respuesta anterior: "+prev.Text))
	}

	b.WriteString("\n" + theme.Hint.Render(inputHint(q.Kind)))
	return theme.Card.Render(b.String())
}

func (r *runner) showOutcome(st engine.State) {
	fmt.Fprintln(r.out)
	if st.Outcome == nil {
		fmt.Fprintln(r.out, theme.SuccessText.Render(r.eng.Resolve("¡Gracias, {{Y}}! Has terminado.", r.names)))
		return
	}

	var b strings.Builder
	tone := ""
	desc := ""
	if res, ok := st.Outcome.Detail.(who5.Result); ok {
		tone = string(res.Category.Tone)
		desc = res.Category.Description
	}
	b.WriteString(theme.Title.Render(fmt.Sprintf("Tu resultado: %d/100", st.Outcome.Score)))
	b.WriteString("\n" + components.NewProgressBar("", float64(st.Outcome.Score)/100, barWidth).View())
	b.WriteString("\n\n" + theme.ToneStyle(tone).Render(st.Outcome.Label))
	if desc != "" {
		b.WriteString("\n" + theme.Body.Render(r.eng.Resolve(desc, r.names)))
	}
	fmt.Fprintln(r.out, theme.Card.Render(b.String()))
}

// selection turns a typed line into an answer for q. Choice questions take
// option numbers; every other kind takes the text as typed.
func selection(q *qgraph.Question, line string) (qgraph.Selection, error) {
	if !q.Kind.IsChoice() {
		return qgraph.Reply(line), nil
	}
	keys, err := components.ParseKeys(line, len(q.Options))
	if err != nil {
		return qgraph.Selection{}, err
	}
	if q.Kind == qgraph.KindSingleChoice && len(keys) > 1 {
		return qgraph.Selection{}, fmt.Errorf("elige solo una opción")
	}
	ids := make([]string, len(keys))
	for i, k := range keys {
		ids[i] = q.Options[k].ID
	}
	return qgraph.Choose(ids...), nil
}

func inputHint(k qgraph.Kind) string {
	switch k {
	case qgraph.KindSingleChoice:
		return "Escribe el número de tu respuesta."
	case qgraph.KindMultipleChoice:
		return "Escribe uno o varios números separados por comas."
	case qgraph.KindNumeric:
		return "Escribe un número."
	case qgraph.KindBoolean:
		return "Responde sí o no."
	}
	return "Escribe tu respuesta."
}

func validationHint(k qgraph.Kind) string {
	switch k {
	case qgraph.KindNumeric:
		return "Necesitamos un número, por ejemplo 4."
	case qgraph.KindBoolean:
		return "Responde sí o no, por favor."
	case qgraph.KindFreeText:
		return "Escribe algo antes de continuar."
	}
	return "Esa respuesta no es válida."
}
