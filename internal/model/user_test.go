package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestUserToProgress(t *testing.T) {
	u := &User{
		UID:                         "u-1",
		PosicaoCadastroComplementar: IntPtr(3),
		Telefone:                    "84999998888",
		Genero:                      "OUTRO",
		AceitouTermos:               true,
	}

	p := u.ToProgress(100)
	assert.Equal(t, "u-1", p.UserID)
	assert.Equal(t, 3, p.Position)
	assert.Equal(t, map[string]string{FieldTelefone: "84999998888", FieldGenero: "OUTRO"}, p.StepData)
	assert.True(t, p.AcceptedTerms)
	assert.False(t, p.AcceptedPrivacy)
	assert.Equal(t, int64(100), p.UpdatedAt)
}

func TestUserToProgressDefaultsPosition(t *testing.T) {
	assert.Equal(t, 1, (&User{UID: "u"}).ToProgress(0).Position)
	assert.Equal(t, 1, (&User{UID: "u", PosicaoCadastroComplementar: IntPtr(0)}).ToProgress(0).Position)
}

func TestUserProgressClone(t *testing.T) {
	orig := &UserProgress{UserID: "u", Position: 2, StepData: map[string]string{FieldBloco: "A"}}
	cp := orig.Clone()
	cp.StepData[FieldBloco] = "B"
	cp.Position = 3

	assert.Equal(t, "A", orig.Field(FieldBloco))
	assert.Equal(t, 2, orig.Position)
	assert.Nil(t, (*UserProgress)(nil).Clone())
	assert.Equal(t, "", (*UserProgress)(nil).Field(FieldBloco))
}
