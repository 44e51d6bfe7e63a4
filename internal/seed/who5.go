package seed

import (
	"fmt"

	"github.com/abhisek/acompana/internal/store"
)

var who5Items = []string{
	"Me he sentido alegre y de buen humor.",
	"Me he sentido tranquilo/a y relajado/a.",
	"Me he sentido activo/a y enérgico/a.",
	"Me he despertado fresco/a y descansado/a.",
	"Mi vida cotidiana ha estado llena de cosas que me interesan.",
}

var who5Scale = []struct {
	text  string
	score int
}{
	{"Todo el tiempo", 5},
	{"La mayor parte del tiempo", 4},
	{"Más de la mitad del tiempo", 3},
	{"Menos de la mitad del tiempo", 2},
	{"De vez en cuando", 1},
	{"Nunca", 0},
}

// WHO5 is the WHO-5 Well-Being Index: five items on a 0..5 scale.
func WHO5() store.GraphRows {
	b := newBuilder(WHO5ID, "Índice de bienestar WHO-5", true)

	for i, item := range who5Items {
		id := fmt.Sprintf("who5-q%d", i+1)
		next := ""
		if i+1 < len(who5Items) {
			next = fmt.Sprintf("who5-q%d", i+2)
		}
		b.question(id, "single_choice", "{{Y}}, durante las últimas dos semanas: "+item, "", "")
		for _, s := range who5Scale {
			score := s.score
			b.option(id, fmt.Sprintf("%s-%d", id, s.score), s.text, next, &score)
		}
	}
	return b.rows
}
