package placeholder

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

// lookupFunc adapts a function to Lookup.
type lookupFunc func(string) (string, bool)

func (f lookupFunc) Lookup(key string) (string, bool) { return f(key) }

func TestResolve_Fallbacks(t *testing.T) {
	r := New(nil)
	assert.Equal(t, "Cuidadores", r.Resolve("{{Y}}", Context{}))
	assert.Equal(t, "la persona que acompañas", r.Resolve("{{X}}", Context{}))
	assert.Equal(t, "Hola, MOOD", r.Resolve("Hola, {{MOOD}}", Context{}))
}

func TestResolve_Sanitizes(t *testing.T) {
	r := New(nil)
	ctx := Context{Overrides: Values{"Y": "  Ana  "}}
	assert.Equal(t, "Ana", r.Resolve("{{Y}}", ctx))

	ctx = Context{Overrides: Values{"X": "\tMaría \n  José "}}
	assert.Equal(t, "¿Cómo está María José hoy?", r.Resolve("¿Cómo está {{X}} hoy?", ctx))
}

func TestResolve_Cascade(t *testing.T) {
	r := New(nil)
	guest := Values{"Y": "Invitada", "X": "Papá"}
	profile := Values{"Y": "Perfil", "X": "Mamá"}

	tests := []struct {
		name string
		ctx  Context
		want string
	}{
		{"override wins", Context{Overrides: Values{"Y": "Ana"}, Guest: guest, Profile: profile}, "Ana / Papá"},
		{"blank override falls through", Context{Overrides: Values{"Y": "   "}, Guest: guest, Profile: profile}, "Invitada / Papá"},
		{"guest before profile", Context{Guest: guest, Profile: profile}, "Invitada / Papá"},
		{"profile only", Context{Profile: profile}, "Perfil / Mamá"},
		{"nothing", Context{}, "Cuidadores / la persona que acompañas"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, r.Resolve("{{Y}} / {{X}}", tt.ctx))
		})
	}
}

func TestResolve_Idempotent(t *testing.T) {
	r := New(nil)
	ctx := Context{Guest: Values{"Y": "Ana"}}
	inputs := []string{
		"",
		"sin marcadores",
		"Hola {{Y}}, ¿cómo está {{X}}?",
		"{{ Y }} y {{UNKNOWN}}",
	}
	for _, s := range inputs {
		once := r.Resolve(s, ctx)
		assert.Equal(t, once, r.Resolve(once, ctx), "input %q", s)
	}
}

func TestResolve_LeavesMalformedTokens(t *testing.T) {
	r := New(nil)
	for _, s := range []string{"{{}}", "{{Y", "{Y}", "{{two words}}"} {
		assert.Equal(t, s, r.Resolve(s, Context{}))
	}
}

func TestResolve_CustomFallbacks(t *testing.T) {
	r := New(map[string]string{"Y": "Persona cuidadora"})
	assert.Equal(t, "Persona cuidadora", r.Resolve("{{Y}}", Context{}))
	assert.Equal(t, "X", r.Resolve("{{X}}", Context{}))
}

func TestResolve_LookupInterface(t *testing.T) {
	calls := 0
	src := lookupFunc(func(key string) (string, bool) {
		calls++
		return "Lucía", key == "Y"
	})
	r := New(nil)
	assert.Equal(t, "Lucía", r.Resolve("{{Y}}", Context{Profile: src}))
	assert.Equal(t, 1, calls)
}

func TestKeys(t *testing.T) {
	assert.Equal(t, []string{"Y", "X"}, Keys("{{Y}} {{X}} {{ Y }}"))
	assert.Empty(t, Keys("nada"))
}

func TestChain(t *testing.T) {
	c := Chain{nil, Values{"Y": " "}, Values{"Y": "Ana", "X": "Luis"}, Values{"X": "Otro"}}
	v, ok := c.Lookup("Y")
	assert.True(t, ok)
	assert.Equal(t, "Ana", v)

	v, _ = c.Lookup("X")
	assert.Equal(t, "Luis", v)

	_, ok = c.Lookup("Z")
	assert.False(t, ok)
}
