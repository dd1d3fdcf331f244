package wizard

import (
	"fmt"
	"strings"
	"time"

	"CaronaCondominio/internal/model"
	"CaronaCondominio/pkg/errors"
	"CaronaCondominio/utils"
)

const (
	MinAge            = 18
	MaxAge            = 100
	MinCondoNameLen   = 3
	DefaultPais       = "BRASIL"
	DefaultEstado     = "RN"
	reasonRequired    = "is required"
	reasonNotAccepted = "must be accepted"
)

// Generos 可选的性别值
var Generos = []string{"MASCULINO", "FEMININO", "OUTRO", "NAO_INFORMAR"}

// Step 一个向导页面：可编辑字段、预填默认值和校验规则
type Step struct {
	Defaults map[string]string
	validate func(in Input, now time.Time) (map[string]any, error)
	Route    string
	Name     string
	Fields   []string
	Position Position
}

var steps = map[Position]*Step{
	PositionWelcome: {
		Position: PositionWelcome,
		Route:    RouteWelcome,
		Name:     "boas-vindas",
	},
	PositionPersonal: {
		Position: PositionPersonal,
		Route:    RoutePersonal,
		Name:     "dados-pessoais",
		Fields:   []string{model.FieldDataNascimento, model.FieldTelefone, model.FieldGenero},
		validate: validatePersonal,
	},
	PositionCondo: {
		Position: PositionCondo,
		Route:    RouteCondo,
		Name:     "condominio",
		Fields: []string{
			model.FieldPais, model.FieldEstado, model.FieldNomeCondominio,
			model.FieldBloco, model.FieldApartamento,
		},
		Defaults: map[string]string{
			model.FieldPais:   DefaultPais,
			model.FieldEstado: DefaultEstado,
		},
		validate: validateCondo,
	},
	PositionTerms: {
		Position: PositionTerms,
		Route:    RouteTerms,
		Name:     "termos",
		Fields:   []string{model.FieldAcceptedTerms, model.FieldAcceptedPrivacy},
		validate: validateTerms,
	},
	PositionSuccess: {
		Position: PositionSuccess,
		Route:    RouteSuccess,
		Name:     "sucesso",
	},
}

// StepFor 返回位置对应的向导页面，6 及以外没有页面
func StepFor(p Position) (*Step, bool) {
	s, ok := steps[p]
	return s, ok
}

// NextRoute 提交成功后的目的地
func (s *Step) NextRoute() string {
	return RouteForPosition(Next(s.Position))
}

// Validate 校验并规范化输入，返回要提交给远端的字段。
// 失败时返回 *errors.ValidationError，不产生任何副作用。
func (s *Step) Validate(in Input, now time.Time) (map[string]any, error) {
	if s.validate == nil {
		return map[string]any{}, nil
	}
	return s.validate(in, now)
}

// Prefill 用已保存的进度填充本页字段，没有保存值时使用默认值
func (s *Step) Prefill(progress *model.UserProgress) map[string]any {
	values := make(map[string]any, len(s.Fields))
	for _, field := range s.Fields {
		switch field {
		case model.FieldAcceptedTerms:
			values[field] = progress != nil && progress.AcceptedTerms
		case model.FieldAcceptedPrivacy:
			values[field] = progress != nil && progress.AcceptedPrivacy
		default:
			v := progress.Field(field)
			if v == "" {
				v = s.Defaults[field]
			}
			values[field] = v
		}
	}
	return values
}

// Input 表单或 JSON 提交的原始值
type Input map[string]any

// String 取字符串字段并去掉首尾空白，数字会被格式化
func (in Input) String(key string) string {
	switch v := in[key].(type) {
	case nil:
		return ""
	case string:
		return strings.TrimSpace(v)
	case float64:
		if v == float64(int64(v)) {
			return fmt.Sprintf("%d", int64(v))
		}
		return fmt.Sprintf("%v", v)
	default:
		return strings.TrimSpace(fmt.Sprintf("%v", v))
	}
}

// Bool 复选框：true、"true"、"on" 视为勾选
func (in Input) Bool(key string) bool {
	switch v := in[key].(type) {
	case bool:
		return v
	case string:
		s := strings.ToLower(strings.TrimSpace(v))
		return s == "true" || s == "on"
	default:
		return false
	}
}

func validatePersonal(in Input, now time.Time) (map[string]any, error) {
	verr := errors.NewValidationError()

	birth := in.String(model.FieldDataNascimento)
	if birth == "" {
		verr.Add(model.FieldDataNascimento, reasonRequired)
	} else if date, ok := utils.ParseDate(birth); !ok {
		verr.Add(model.FieldDataNascimento, "must be a valid date in YYYY-MM-DD format")
	} else if age := utils.AgeAt(date, now); age < MinAge || age > MaxAge {
		verr.Add(model.FieldDataNascimento, fmt.Sprintf("age must be between %d and %d", MinAge, MaxAge))
	}

	phone := utils.StripNonDigits(in.String(model.FieldTelefone))
	if phone == "" {
		verr.Add(model.FieldTelefone, reasonRequired)
	} else if !utils.ValidatePhone(phone) {
		verr.Add(model.FieldTelefone, "must have 11 digits")
	}

	genero := strings.ToUpper(in.String(model.FieldGenero))
	if genero == "" {
		verr.Add(model.FieldGenero, reasonRequired)
	} else if !isGenero(genero) {
		verr.Add(model.FieldGenero, "must be one of "+strings.Join(Generos, ", "))
	}

	if err := verr.OrNil(); err != nil {
		return nil, err
	}
	return map[string]any{
		model.FieldDataNascimento: birth,
		model.FieldTelefone:       phone,
		model.FieldGenero:         genero,
	}, nil
}

func validateCondo(in Input, _ time.Time) (map[string]any, error) {
	verr := errors.NewValidationError()
	fields := make(map[string]any, 5)

	for _, field := range []string{model.FieldPais, model.FieldEstado, model.FieldNomeCondominio, model.FieldBloco, model.FieldApartamento} {
		v := in.String(field)
		if v == "" {
			verr.Add(field, reasonRequired)
			continue
		}
		fields[field] = v
	}

	if name, ok := fields[model.FieldNomeCondominio].(string); ok && len([]rune(name)) < MinCondoNameLen {
		verr.Add(model.FieldNomeCondominio, fmt.Sprintf("must have at least %d characters", MinCondoNameLen))
	}
	if apto, ok := fields[model.FieldApartamento].(string); ok && !utils.IsDigits(apto) {
		verr.Add(model.FieldApartamento, "must contain only digits")
	}

	if err := verr.OrNil(); err != nil {
		return nil, err
	}
	return fields, nil
}

// validateTerms 两项都必须勾选，不勾选时不提交
func validateTerms(in Input, _ time.Time) (map[string]any, error) {
	verr := errors.NewValidationError()
	if !in.Bool(model.FieldAcceptedTerms) {
		verr.Add(model.FieldAcceptedTerms, reasonNotAccepted)
	}
	if !in.Bool(model.FieldAcceptedPrivacy) {
		verr.Add(model.FieldAcceptedPrivacy, reasonNotAccepted)
	}

	if err := verr.OrNil(); err != nil {
		return nil, err
	}
	return map[string]any{
		model.FieldAcceptedTerms:   true,
		model.FieldAcceptedPrivacy: true,
	}, nil
}

func isGenero(g string) bool {
	for _, v := range Generos {
		if v == g {
			return true
		}
	}
	return false
}
