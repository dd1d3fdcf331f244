package model

// User 远端后端的用户记录（GET /users/me）
type User struct {
	PosicaoCadastroComplementar *int   `json:"posicaoCadastroComplementar,omitempty"`
	UID                         string `json:"uid"`
	Email                       string `json:"email"`
	Name                        string `json:"name"`
	Role                        string `json:"role,omitempty"`
	DataNascimento              string `json:"dataNascimento,omitempty"`
	Telefone                    string `json:"telefone,omitempty"`
	Genero                      string `json:"genero,omitempty"`
	Pais                        string `json:"pais,omitempty"`
	Estado                      string `json:"estado,omitempty"`
	NomeCondominio              string `json:"nomeCondominio,omitempty"`
	Bloco                       string `json:"bloco,omitempty"`
	Apartamento                 string `json:"apartamento,omitempty"`
	Active                      bool   `json:"active"`
	PendenciaCadastro           bool   `json:"pendenciaCadastro"`
	AceitouTermos               bool   `json:"aceitouTermos"`
	AceitouPrivacidade          bool   `json:"aceitouPrivacidade"`
}

// 向导各步骤提交的字段名，与后端 JSON 字段一致
const (
	FieldDataNascimento = "dataNascimento"
	FieldTelefone       = "telefone"
	FieldGenero         = "genero"
	FieldPais           = "pais"
	FieldEstado         = "estado"
	FieldNomeCondominio = "nomeCondominio"
	FieldBloco          = "bloco"
	FieldApartamento    = "apartamento"
)

// ToProgress 转换为本地进度，位置缺失或为 0 时视为 1
func (u *User) ToProgress(updatedAt int64) *UserProgress {
	position := 1
	if u.PosicaoCadastroComplementar != nil && *u.PosicaoCadastroComplementar > 0 {
		position = *u.PosicaoCadastroComplementar
	}

	stepData := make(map[string]string)
	for name, value := range map[string]string{
		FieldDataNascimento: u.DataNascimento,
		FieldTelefone:       u.Telefone,
		FieldGenero:         u.Genero,
		FieldPais:           u.Pais,
		FieldEstado:         u.Estado,
		FieldNomeCondominio: u.NomeCondominio,
		FieldBloco:          u.Bloco,
		FieldApartamento:    u.Apartamento,
	} {
		if value != "" {
			stepData[name] = value
		}
	}

	return &UserProgress{
		UserID:          u.UID,
		Position:        position,
		StepData:        stepData,
		AcceptedTerms:   u.AceitouTermos,
		AcceptedPrivacy: u.AceitouPrivacidade,
		UpdatedAt:       updatedAt,
	}
}

// IntPtr 便于构造可选的位置字段
func IntPtr(v int) *int {
	return &v
}
