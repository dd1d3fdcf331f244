package backend

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"sync"

	"CaronaCondominio/internal/model"
	"CaronaCondominio/internal/wizard"
)

// MockCall 记录一次调用，测试里用来断言"没有发生网络请求"
type MockCall struct {
	Body           map[string]any
	Op             string
	Token          string
	IdempotencyKey string
}

type mockAccount struct {
	user     *model.User
	password string
}

type mockCondominio struct {
	apartamentos map[string][]string // blocoId -> 公寓
	info         model.Condominio
	blocos       []model.Bloco
}

// MockClient 内存版后端，开发环境和测试使用，实现 Client 接口
type MockClient struct {
	accounts map[string]*mockAccount // email -> account
	tokens   map[string]string       // token -> uid
	caronas  []model.Carona
	Calls    []MockCall

	resetCodes  map[string]string // email -> 验证码
	condominios []mockCondominio

	// FailNext 非 nil 时，下一次调用返回该错误并自动复位
	FailNext error

	mu     sync.Mutex
	nextID int
}

func NewMockClient() *MockClient {
	m := &MockClient{
		accounts:   make(map[string]*mockAccount),
		tokens:     make(map[string]string),
		resetCodes: make(map[string]string),
		Calls:      make([]MockCall, 0),
	}
	m.AddUser(&model.User{
		UID:               "1",
		Email:             "morador@carona.dev",
		Name:              "Morador Demo",
		Role:              "MORADOR",
		Active:            true,
		PendenciaCadastro: true,
	}, "carona123")
	m.caronas = []model.Carona{
		{ID: 1, Data: "16/10", Hora: "08:30", Origem: "Bloco A", Destino: "Shopping Midway", Valor: 10, Nome: "Carlos Souza", Avaliacao: 4.7, Bloco: "A", Apto: "103", Vagas: 3, VagasOcupadas: 1, Status: model.CaronaAgendada},
		{ID: 2, Data: "16/10", Hora: "18:00", Origem: "Bloco C", Destino: "UFRN", Valor: 8, Nome: "Ana Lima", Avaliacao: 4.9, Bloco: "C", Apto: "201", Vagas: 2, Status: model.CaronaAgendada},
		{ID: 3, Data: "17/10", Hora: "07:15", Origem: "Portaria", Destino: "Centro", Valor: 12, Nome: "Morador Demo", Avaliacao: 5, Bloco: "B", Apto: "304", Vagas: 4, VagasOcupadas: 4, Status: model.CaronaConcluida},
	}
	m.condominios = []mockCondominio{
		{
			info:   model.Condominio{Slug: "residencial-ponta-negra", Nome: "Residencial Ponta Negra", Pais: "BRASIL", Estado: "RN", Cidade: "Natal"},
			blocos: []model.Bloco{{BlocoID: "A", BlocoNome: "Bloco A"}, {BlocoID: "B", BlocoNome: "Bloco B"}},
			apartamentos: map[string][]string{
				"A": {"101", "102", "103"},
				"B": {"301", "302", "304"},
			},
		},
		{
			info:   model.Condominio{Slug: "vila-verde", Nome: "Condomínio Vila Verde", Pais: "BRASIL", Estado: "RN", Cidade: "Parnamirim"},
			blocos: []model.Bloco{{BlocoID: "1", BlocoNome: "Torre 1"}},
			apartamentos: map[string][]string{
				"1": {"11", "12"},
			},
		},
	}
	return m
}

// AddUser 注册一个可以登录的账号
func (m *MockClient) AddUser(user *model.User, password string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.accounts[strings.ToLower(user.Email)] = &mockAccount{user: user, password: password}
}

// IssueToken 直接为 uid 签发凭证，测试跳过登录时使用
func (m *MockClient) IssueToken(uid string) string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.issueTokenLocked(uid)
}

// RevokeToken 模拟远端凭证过期
func (m *MockClient) RevokeToken(token string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.tokens, token)
}

// User 返回账号当前记录的副本
func (m *MockClient) User(uid string) (model.User, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if acc := m.accountByUIDLocked(uid); acc != nil {
		return *acc.user, true
	}
	return model.User{}, false
}

// CallCount 指定操作被调用的次数
func (m *MockClient) CallCount(op string) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	n := 0
	for _, c := range m.Calls {
		if c.Op == op {
			n++
		}
	}
	return n
}

func (m *MockClient) Login(_ context.Context, email, password string) (*LoginResult, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if err := m.begin(MockCall{Op: "login"}); err != nil {
		return nil, err
	}

	acc, ok := m.accounts[strings.ToLower(strings.TrimSpace(email))]
	if !ok || acc.password != password {
		return nil, &StatusError{Op: "login", Status: http.StatusUnauthorized, Body: "invalid credentials"}
	}

	return &LoginResult{
		Token:                       m.issueTokenLocked(acc.user.UID),
		UID:                         acc.user.UID,
		Email:                       acc.user.Email,
		Name:                        acc.user.Name,
		Role:                        acc.user.Role,
		PendenciaCadastro:           acc.user.PendenciaCadastro,
		PosicaoCadastroComplementar: acc.user.PosicaoCadastroComplementar,
	}, nil
}

func (m *MockClient) Logout(_ context.Context, token string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if err := m.begin(MockCall{Op: "logout", Token: token}); err != nil {
		return err
	}
	delete(m.tokens, token)
	return nil
}

func (m *MockClient) GetMe(_ context.Context, token string) (*model.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if err := m.begin(MockCall{Op: "get_me", Token: token}); err != nil {
		return nil, err
	}

	acc, err := m.authLocked("get_me", token)
	if err != nil {
		return nil, err
	}
	user := *acc.user
	return &user, nil
}

func (m *MockClient) UpdatePosition(_ context.Context, token, userID string, body map[string]any, idempotencyKey string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if err := m.begin(MockCall{Op: "update_position", Token: token, Body: body, IdempotencyKey: idempotencyKey}); err != nil {
		return err
	}

	acc, err := m.authLocked("update_position", token)
	if err != nil {
		return err
	}
	if acc.user.UID != userID {
		return &StatusError{Op: "update_position", Status: http.StatusForbidden, Body: "user mismatch"}
	}

	return applyUserFields(acc.user, body)
}

func (m *MockClient) ListCaronas(_ context.Context, token string, filter model.CaronaFilter) ([]model.Carona, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if err := m.begin(MockCall{Op: "list_caronas", Token: token}); err != nil {
		return nil, err
	}
	acc, err := m.authLocked("list_caronas", token)
	if err != nil {
		return nil, err
	}

	result := make([]model.Carona, 0, len(m.caronas))
	for _, c := range m.caronas {
		if matchesFilter(c, filter, acc.user.Name) {
			result = append(result, c)
		}
	}
	return paginate(result, filter.Page, filter.PageSize), nil
}

func (m *MockClient) GetCarona(_ context.Context, token string, id int64) (*model.Carona, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if err := m.begin(MockCall{Op: "get_carona", Token: token}); err != nil {
		return nil, err
	}
	if _, err := m.authLocked("get_carona", token); err != nil {
		return nil, err
	}

	for _, c := range m.caronas {
		if c.ID == id {
			carona := c
			return &carona, nil
		}
	}
	return nil, &StatusError{Op: "get_carona", Status: http.StatusNotFound, Body: "carona not found"}
}

// MyCaronas 演示数据里只有司机信息，乘客列表为空
func (m *MockClient) MyCaronas(_ context.Context, token string, role model.CaronaRole) ([]model.Carona, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if err := m.begin(MockCall{Op: "my_caronas", Token: token}); err != nil {
		return nil, err
	}
	acc, err := m.authLocked("my_caronas", token)
	if err != nil {
		return nil, err
	}

	result := make([]model.Carona, 0)
	if role != model.RoleMotorista {
		return result, nil
	}
	for _, c := range m.caronas {
		if c.Nome == acc.user.Name {
			result = append(result, c)
		}
	}
	return result, nil
}

// Register 新账号的补充注册从第 1 步开始
func (m *MockClient) Register(_ context.Context, req RegisterRequest) (*RegisterResult, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if err := m.begin(MockCall{Op: "register"}); err != nil {
		return nil, err
	}

	email := strings.ToLower(strings.TrimSpace(req.Email))
	if _, ok := m.accounts[email]; ok {
		return nil, &StatusError{Op: "register", Status: http.StatusConflict, Body: "email already registered"}
	}

	m.nextID++
	user := &model.User{
		UID:               fmt.Sprintf("u%d", m.nextID),
		Email:             email,
		Name:              req.Name,
		Telefone:          req.Phone,
		Role:              "MORADOR",
		Active:            true,
		PendenciaCadastro: true,
	}
	m.accounts[email] = &mockAccount{user: user, password: req.Password}

	return &RegisterResult{
		UID:     user.UID,
		Email:   user.Email,
		Name:    user.Name,
		Role:    user.Role,
		Message: "Usuário cadastrado com sucesso",
	}, nil
}

// ForgotPassword 邮箱不存在时同样返回成功，不暴露账号是否存在
func (m *MockClient) ForgotPassword(_ context.Context, email string) (*MessageResult, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if err := m.begin(MockCall{Op: "forgot_password"}); err != nil {
		return nil, err
	}

	email = strings.ToLower(strings.TrimSpace(email))
	if _, ok := m.accounts[email]; ok {
		m.nextID++
		m.resetCodes[email] = fmt.Sprintf("%06d", 100000+m.nextID)
	}
	return &MessageResult{Sucesso: true, Mensagem: "Código enviado para o e-mail informado"}, nil
}

func (m *MockClient) ChangePassword(_ context.Context, email, code, newPassword string) (*MessageResult, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if err := m.begin(MockCall{Op: "change_password"}); err != nil {
		return nil, err
	}

	email = strings.ToLower(strings.TrimSpace(email))
	expected, ok := m.resetCodes[email]
	acc, found := m.accounts[email]
	if !ok || !found || expected != code {
		return nil, &StatusError{Op: "change_password", Status: http.StatusBadRequest, Body: "invalid code"}
	}

	acc.password = newPassword
	delete(m.resetCodes, email)
	return &MessageResult{Sucesso: true, Mensagem: "Senha alterada com sucesso"}, nil
}

// ResetCode 最近一次发给 email 的验证码，测试代替邮箱使用
func (m *MockClient) ResetCode(email string) (string, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	code, ok := m.resetCodes[strings.ToLower(email)]
	return code, ok
}

func (m *MockClient) ListCondominios(_ context.Context, token string) ([]model.Condominio, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if err := m.begin(MockCall{Op: "list_condominios", Token: token}); err != nil {
		return nil, err
	}
	if _, err := m.authLocked("list_condominios", token); err != nil {
		return nil, err
	}

	result := make([]model.Condominio, 0, len(m.condominios))
	for _, c := range m.condominios {
		result = append(result, c.info)
	}
	return result, nil
}

func (m *MockClient) ListBlocos(_ context.Context, token, slug string) ([]model.Bloco, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if err := m.begin(MockCall{Op: "list_blocos", Token: token}); err != nil {
		return nil, err
	}
	if _, err := m.authLocked("list_blocos", token); err != nil {
		return nil, err
	}

	c := m.condominioLocked(slug)
	if c == nil {
		return nil, &StatusError{Op: "list_blocos", Status: http.StatusNotFound, Body: "condominio not found"}
	}
	return append([]model.Bloco(nil), c.blocos...), nil
}

func (m *MockClient) ListApartamentos(_ context.Context, token, slug, blocoID string) ([]string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if err := m.begin(MockCall{Op: "list_apartamentos", Token: token}); err != nil {
		return nil, err
	}
	if _, err := m.authLocked("list_apartamentos", token); err != nil {
		return nil, err
	}

	c := m.condominioLocked(slug)
	if c == nil {
		return nil, &StatusError{Op: "list_apartamentos", Status: http.StatusNotFound, Body: "condominio not found"}
	}
	apartamentos, ok := c.apartamentos[blocoID]
	if !ok {
		return nil, &StatusError{Op: "list_apartamentos", Status: http.StatusNotFound, Body: "bloco not found"}
	}
	return append([]string(nil), apartamentos...), nil
}

func (m *MockClient) condominioLocked(slug string) *mockCondominio {
	for i := range m.condominios {
		if m.condominios[i].info.Slug == slug {
			return &m.condominios[i]
		}
	}
	return nil
}

func (m *MockClient) begin(c MockCall) error {
	m.Calls = append(m.Calls, c)
	if m.FailNext != nil {
		err := m.FailNext
		m.FailNext = nil
		return err
	}
	return nil
}

func (m *MockClient) issueTokenLocked(uid string) string {
	m.nextID++
	token := fmt.Sprintf("mock-token-%s-%d", uid, m.nextID)
	m.tokens[token] = uid
	return token
}

func (m *MockClient) authLocked(op, token string) (*mockAccount, error) {
	uid, ok := m.tokens[token]
	if !ok {
		return nil, &StatusError{Op: op, Status: http.StatusUnauthorized, Body: "invalid token"}
	}
	acc := m.accountByUIDLocked(uid)
	if acc == nil {
		return nil, &StatusError{Op: op, Status: http.StatusUnauthorized, Body: "unknown user"}
	}
	return acc, nil
}

func (m *MockClient) accountByUIDLocked(uid string) *mockAccount {
	for _, acc := range m.accounts {
		if acc.user.UID == uid {
			return acc
		}
	}
	return nil
}

// applyUserFields 把提交的字段写回用户记录，未知字段拒绝
func applyUserFields(u *model.User, body map[string]any) error {
	for key, value := range body {
		switch key {
		case "posicaoCadastroComplementar":
			p, ok := wizard.ParsePosition(value)
			if !ok || !wizard.IsValid(p) {
				return &StatusError{Op: "update_position", Status: http.StatusBadRequest, Body: "invalid position"}
			}
			u.PosicaoCadastroComplementar = model.IntPtr(int(p))
			u.PendenciaCadastro = !wizard.IsComplete(p)
		case model.FieldAcceptedTerms:
			u.AceitouTermos, _ = value.(bool)
		case model.FieldAcceptedPrivacy:
			u.AceitouPrivacidade, _ = value.(bool)
		default:
			s, _ := value.(string)
			if !setStringField(u, key, s) {
				return &StatusError{Op: "update_position", Status: http.StatusBadRequest, Body: "unknown field " + key}
			}
		}
	}
	return nil
}

func setStringField(u *model.User, key, value string) bool {
	switch key {
	case model.FieldDataNascimento:
		u.DataNascimento = value
	case model.FieldTelefone:
		u.Telefone = value
	case model.FieldGenero:
		u.Genero = value
	case model.FieldPais:
		u.Pais = value
	case model.FieldEstado:
		u.Estado = value
	case model.FieldNomeCondominio:
		u.NomeCondominio = value
	case model.FieldBloco:
		u.Bloco = value
	case model.FieldApartamento:
		u.Apartamento = value
	default:
		return false
	}
	return true
}

func matchesFilter(c model.Carona, f model.CaronaFilter, userName string) bool {
	if f.Origem != "" && !containsFold(c.Origem, f.Origem) {
		return false
	}
	if f.Destino != "" && !containsFold(c.Destino, f.Destino) {
		return false
	}
	if f.Data != "" && c.Data != f.Data {
		return false
	}
	if f.Status != "" && c.Status != f.Status {
		return false
	}
	if f.ApenasMinhasCaronas != nil && *f.ApenasMinhasCaronas && c.Nome != userName {
		return false
	}
	return true
}

func containsFold(s, sub string) bool {
	return strings.Contains(strings.ToLower(s), strings.ToLower(sub))
}

func paginate(items []model.Carona, page, pageSize int) []model.Carona {
	if pageSize <= 0 {
		return items
	}
	if page <= 0 {
		page = 1
	}
	start := (page - 1) * pageSize
	if start >= len(items) {
		return []model.Carona{}
	}
	end := start + pageSize
	if end > len(items) {
		end = len(items)
	}
	return items[start:end]
}
