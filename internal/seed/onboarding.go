package seed

import "github.com/abhisek/acompana/internal/store"

const cohabitYes = `{"operator":"all","conditions":[{"question_id":"ob-cohabit","option_ids":["ob-cohabit-yes"]}]}`

const supportYes = `{"operator":"any","conditions":[{"question_id":"ob-support","option_ids":["ob-support-yes"]}]}`

// Onboarding is the first questionnaire a caregiver takes. Its first two
// answers are the caregiver's name and the cared-for person's name.
func Onboarding() store.GraphRows {
	b := newBuilder(OnboardingID, "Conozcámonos", false)

	b.question("ob-name", "free_text", "¿Cómo te llamas?", "ob-cared", "")
	b.question("ob-cared", "free_text", "Hola {{Y}}, ¿cómo se llama la persona a la que cuidas?", "ob-relation", "")

	b.question("ob-relation", "single_choice", "¿Qué relación tienes con {{X}}?", "", "")
	for _, o := range [][2]string{
		{"ob-relation-parent", "Es mi madre o mi padre"},
		{"ob-relation-partner", "Es mi pareja"},
		{"ob-relation-child", "Es mi hijo o mi hija"},
		{"ob-relation-family", "Es otro familiar"},
		{"ob-relation-other", "Amistad, vecindad u otra relación"},
	} {
		b.option("ob-relation", o[0], o[1], "ob-cohabit", nil)
	}

	b.question("ob-cohabit", "single_choice", "¿Vives con {{X}}?", "", "")
	b.option("ob-cohabit", "ob-cohabit-yes", "Sí", "ob-hours", nil)
	b.option("ob-cohabit", "ob-cohabit-no", "No", "ob-visits", nil)

	b.question("ob-hours", "numeric", "¿Cuántas horas al día dedicas a cuidar de {{X}}?", "ob-support", cohabitYes)

	b.question("ob-visits", "single_choice", "¿Con qué frecuencia visitas a {{X}}?", "", "")
	b.option("ob-visits", "ob-visits-daily", "Todos los días", "ob-support", nil)
	b.option("ob-visits", "ob-visits-weekly", "Varias veces por semana", "ob-support", nil)
	b.option("ob-visits", "ob-visits-rarely", "Con menos frecuencia", "ob-support", nil)

	b.question("ob-support", "single_choice", "¿Cuentas con alguien que te ayude con los cuidados?", "", "")
	b.option("ob-support", "ob-support-yes", "Sí", "ob-support-who", nil)
	b.option("ob-support", "ob-support-no", "No, lo hago sin ayuda", "ob-needs", nil)

	b.question("ob-support-who", "multiple_choice", "¿Quién te ayuda?", "", supportYes)
	for _, o := range [][2]string{
		{"ob-support-who-family", "Otros familiares"},
		{"ob-support-who-friends", "Amistades"},
		{"ob-support-who-pro", "Profesionales contratados"},
		{"ob-support-who-public", "Servicios públicos"},
	} {
		b.option("ob-support-who", o[0], o[1], "ob-needs", nil)
	}

	b.question("ob-needs", "multiple_choice", "{{Y}}, ¿en qué te gustaría recibir apoyo?", "", "")
	for _, o := range [][2]string{
		{"ob-needs-info", "Información sobre cuidados"},
		{"ob-needs-rest", "Tiempo para descansar"},
		{"ob-needs-emotional", "Apoyo emocional"},
		{"ob-needs-paperwork", "Trámites y ayudas"},
	} {
		b.option("ob-needs", o[0], o[1], "ob-first-time", nil)
	}

	b.question("ob-first-time", "boolean", "¿Es la primera vez que cuidas de alguien?", "ob-note", "")
	b.question("ob-note", "free_text", "¿Hay algo más que quieras contarnos sobre tu día a día con {{X}}?", "", "")

	return b.rows
}
