package wizard

import (
	stderrors "errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"CaronaCondominio/internal/model"
	"CaronaCondominio/pkg/errors"
)

var testNow = time.Date(2024, time.June, 10, 12, 0, 0, 0, time.UTC)

func fieldErrors(t *testing.T, err error) map[string]string {
	t.Helper()
	require.Error(t, err)
	assert.True(t, stderrors.Is(err, errors.ValidationFailed))

	var verr *errors.ValidationError
	require.True(t, stderrors.As(err, &verr))
	return verr.Fields
}

func TestEveryWizardScreenHasAStep(t *testing.T) {
	for p := PositionWelcome; p <= PositionSuccess; p++ {
		s, ok := StepFor(p)
		require.Truef(t, ok, "position %d", p)
		assert.Equal(t, RouteForPosition(p), s.Route)
		assert.Equal(t, RouteForPosition(p+1), s.NextRoute())
	}

	_, ok := StepFor(PositionCompleted)
	assert.False(t, ok)

	s, _ := StepFor(PositionSuccess)
	assert.Equal(t, PostWizardRoute, s.NextRoute())
}

func TestPersonalDataValid(t *testing.T) {
	s, _ := StepFor(PositionPersonal)

	fields, err := s.Validate(Input{
		model.FieldDataNascimento: "1990-05-17",
		model.FieldTelefone:       "(84) 99999-8888",
		model.FieldGenero:         "feminino",
	}, testNow)
	require.NoError(t, err)

	assert.Equal(t, map[string]any{
		model.FieldDataNascimento: "1990-05-17",
		model.FieldTelefone:       "84999998888",
		model.FieldGenero:         "FEMININO",
	}, fields)
}

func TestPersonalDataRules(t *testing.T) {
	s, _ := StepFor(PositionPersonal)

	tests := []struct {
		name  string
		in    Input
		field string
	}{
		{"missing birth date", Input{model.FieldTelefone: "84999998888", model.FieldGenero: "OUTRO"}, model.FieldDataNascimento},
		{"bad date format", Input{model.FieldDataNascimento: "17/05/1990", model.FieldTelefone: "84999998888", model.FieldGenero: "OUTRO"}, model.FieldDataNascimento},
		{"under 18", Input{model.FieldDataNascimento: "2006-06-11", model.FieldTelefone: "84999998888", model.FieldGenero: "OUTRO"}, model.FieldDataNascimento},
		{"over 100", Input{model.FieldDataNascimento: "1923-06-09", model.FieldTelefone: "84999998888", model.FieldGenero: "OUTRO"}, model.FieldDataNascimento},
		{"short phone", Input{model.FieldDataNascimento: "1990-01-01", model.FieldTelefone: "8499999888", model.FieldGenero: "OUTRO"}, model.FieldTelefone},
		{"unknown gender", Input{model.FieldDataNascimento: "1990-01-01", model.FieldTelefone: "84999998888", model.FieldGenero: "X"}, model.FieldGenero},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := s.Validate(tt.in, testNow)
			fields := fieldErrors(t, err)
			assert.Contains(t, fields, tt.field)
			assert.Len(t, fields, 1)
		})
	}
}

func TestPersonalDataAgeBoundaries(t *testing.T) {
	s, _ := StepFor(PositionPersonal)
	base := Input{model.FieldTelefone: "84999998888", model.FieldGenero: "OUTRO"}

	for _, birth := range []string{"2006-06-10", "1924-06-10"} {
		in := Input{model.FieldDataNascimento: birth}
		for k, v := range base {
			in[k] = v
		}
		_, err := s.Validate(in, testNow)
		assert.NoErrorf(t, err, "birth %s", birth)
	}
}

func TestCondoValidAndTrimmed(t *testing.T) {
	s, _ := StepFor(PositionCondo)

	fields, err := s.Validate(Input{
		model.FieldPais:           " BRASIL ",
		model.FieldEstado:         "RN",
		model.FieldNomeCondominio: "  Residencial Jardins ",
		model.FieldBloco:          "B",
		model.FieldApartamento:    "304",
	}, testNow)
	require.NoError(t, err)
	assert.Equal(t, "Residencial Jardins", fields[model.FieldNomeCondominio])
	assert.Equal(t, "BRASIL", fields[model.FieldPais])
}

func TestCondoRules(t *testing.T) {
	s, _ := StepFor(PositionCondo)

	_, err := s.Validate(Input{
		model.FieldPais:           "BRASIL",
		model.FieldEstado:         "   ",
		model.FieldNomeCondominio: "AB",
		model.FieldApartamento:    "30A",
	}, testNow)

	fields := fieldErrors(t, err)
	assert.Equal(t, reasonRequired, fields[model.FieldEstado])
	assert.Equal(t, reasonRequired, fields[model.FieldBloco])
	assert.Contains(t, fields, model.FieldNomeCondominio)
	assert.Contains(t, fields, model.FieldApartamento)
	assert.NotContains(t, fields, model.FieldPais)
}

func TestTermsRequireBothAcceptances(t *testing.T) {
	s, _ := StepFor(PositionTerms)

	_, err := s.Validate(Input{model.FieldAcceptedTerms: true}, testNow)
	fields := fieldErrors(t, err)
	assert.Equal(t, map[string]string{model.FieldAcceptedPrivacy: reasonNotAccepted}, fields)

	fields2, err := s.Validate(Input{model.FieldAcceptedTerms: "on", model.FieldAcceptedPrivacy: true}, testNow)
	require.NoError(t, err)
	assert.Equal(t, true, fields2[model.FieldAcceptedTerms])
	assert.Equal(t, true, fields2[model.FieldAcceptedPrivacy])
}

func TestStepsWithoutFieldsAlwaysPass(t *testing.T) {
	for _, p := range []Position{PositionWelcome, PositionSuccess} {
		s, _ := StepFor(p)
		fields, err := s.Validate(Input{"anything": "ignored"}, testNow)
		require.NoError(t, err)
		assert.Empty(t, fields)
	}
}

func TestPrefill(t *testing.T) {
	condo, _ := StepFor(PositionCondo)

	values := condo.Prefill(nil)
	assert.Equal(t, DefaultPais, values[model.FieldPais])
	assert.Equal(t, DefaultEstado, values[model.FieldEstado])
	assert.Equal(t, "", values[model.FieldBloco])

	progress := &model.UserProgress{
		StepData:      map[string]string{model.FieldEstado: "PB", model.FieldBloco: "C"},
		AcceptedTerms: true,
	}
	values = condo.Prefill(progress)
	assert.Equal(t, "PB", values[model.FieldEstado])
	assert.Equal(t, "C", values[model.FieldBloco])

	terms, _ := StepFor(PositionTerms)
	values = terms.Prefill(progress)
	assert.Equal(t, true, values[model.FieldAcceptedTerms])
	assert.Equal(t, false, values[model.FieldAcceptedPrivacy])
}

func TestInputCoercion(t *testing.T) {
	in := Input{"n": float64(304), "s": "  x ", "b": "TRUE", "f": 1.5}
	assert.Equal(t, "304", in.String("n"))
	assert.Equal(t, "x", in.String("s"))
	assert.Equal(t, "", in.String("missing"))
	assert.Equal(t, "1.5", in.String("f"))
	assert.True(t, in.Bool("b"))
	assert.False(t, in.Bool("n"))
}
