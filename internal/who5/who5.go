// Package who5 scores the WHO-5 Well-Being Index.
//
// Each of the five items is answered on a 0..5 scale. The raw score is the
// item sum (0..25) and the final score is raw multiplied by four (0..100).
// The functions here are pure and can re-score persisted answers without a
// running session.
package who5

// ItemCount is the number of WHO-5 items.
const ItemCount = 5

const (
	itemMin    = 0
	itemMax    = 5
	multiplier = 4
)

// Tone is the emotional register used when presenting a category.
type Tone string

const (
	ToneJoyful    Tone = "joyful"
	ToneCalm      Tone = "calm"
	ToneConcerned Tone = "concerned"
	ToneAlert     Tone = "alert"
)

// Category is a labelled band of final scores. Min and Max are inclusive.
type Category struct {
	Label       string
	Tone        Tone
	Description string
	Min         int
	Max         int
}

// Contains reports whether final falls inside the band.
func (c Category) Contains(final int) bool {
	return final >= c.Min && final <= c.Max
}

// Categories returns the category table, ordered from highest to lowest
// wellbeing.
func Categories() []Category {
	return []Category{
		{
			Label:       "Bienestar alto",
			Tone:        ToneJoyful,
			Description: "Tu bienestar emocional es bueno. Sigue reservando momentos para ti mientras cuidas.",
			Min:         76,
			Max:         100,
		},
		{
			Label:       "Bienestar adecuado",
			Tone:        ToneCalm,
			Description: "Tu bienestar es adecuado, aunque hay aspectos que puedes reforzar con pequeños descansos.",
			Min:         52,
			Max:         75,
		},
		{
			Label:       "Bienestar bajo",
			Tone:        ToneConcerned,
			Description: "Tu bienestar está por debajo de lo deseable. Hablar con alguien de confianza puede ayudarte.",
			Min:         29,
			Max:         51,
		},
		{
			Label:       "Bienestar muy bajo",
			Tone:        ToneAlert,
			Description: "Tu bienestar es muy bajo. Te recomendamos consultar con un profesional de la salud.",
			Min:         0,
			Max:         28,
		},
	}
}

// Result is a computed WHO-5 score.
type Result struct {
	Raw      int
	Final    int
	Answered int
	Category Category
}

// Score sums the item values and maps the total to a category. Values
// outside 0..5 are clamped.
func Score(values map[string]int) Result {
	return ScoreWith(values, Categories())
}

// ScoreWith is Score with a custom category table. The table must be
// ordered highest first; when no band contains the final score the last
// (lowest) band is used.
func ScoreWith(values map[string]int, table []Category) Result {
	var r Result
	for _, v := range values {
		r.Raw += clamp(v)
	}
	r.Answered = len(values)
	r.Final = r.Raw * multiplier
	r.Category = categorize(r.Final, table)
	return r
}

// AllAnswered reports whether exactly expected items have values.
func AllAnswered(values map[string]int, expected int) bool {
	return len(values) == expected
}

func categorize(final int, table []Category) Category {
	for _, c := range table {
		if c.Contains(final) {
			return c
		}
	}
	if len(table) == 0 {
		return Category{}
	}
	return table[len(table)-1]
}

func clamp(v int) int {
	if v < itemMin {
		return itemMin
	}
	if v > itemMax {
		return itemMax
	}
	return v
}
