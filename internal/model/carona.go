package model

// CaronaStatus carona 状态
type CaronaStatus string

const (
	CaronaAgendada    CaronaStatus = "AGENDADA"
	CaronaEmAndamento CaronaStatus = "EM_ANDAMENTO"
	CaronaConcluida   CaronaStatus = "CONCLUIDA"
	CaronaCancelada   CaronaStatus = "CANCELADA"
)

// IsValid 是否为已知状态
func (s CaronaStatus) IsValid() bool {
	switch s {
	case CaronaAgendada, CaronaEmAndamento, CaronaConcluida, CaronaCancelada:
		return true
	default:
		return false
	}
}

// Carona 远端返回的一次拼车
type Carona struct {
	ID            int64        `json:"id,omitempty"`
	Data          string       `json:"data"`
	Hora          string       `json:"hora"`
	Origem        string       `json:"origem"`
	Destino       string       `json:"destino"`
	Valor         float64      `json:"valor"`
	Nome          string       `json:"nome"`
	Avaliacao     float64      `json:"avaliacao"`
	Bloco         string       `json:"bloco"`
	Apto          string       `json:"apto"`
	Vagas         int          `json:"vagas,omitempty"`
	VagasOcupadas int          `json:"vagasOcupadas,omitempty"`
	Observacoes   string       `json:"observacoes,omitempty"`
	Telefone      string       `json:"telefone,omitempty"`
	Status        CaronaStatus `json:"status,omitempty"`
	CriadoEm      string       `json:"criadoEm,omitempty"`
	AtualizadoEm  string       `json:"atualizadoEm,omitempty"`
}

// VagasLivres 剩余座位数
func (c *Carona) VagasLivres() int {
	free := c.Vagas - c.VagasOcupadas
	if free < 0 {
		return 0
	}
	return free
}

// CaronaRole "my rides" 查询的角色
type CaronaRole string

const (
	RoleMotorista  CaronaRole = "motorista"
	RolePassageiro CaronaRole = "passageiro"
)

// CaronaFilter 列表筛选条件，零值字段不发送
type CaronaFilter struct {
	ApenasMinhasCaronas *bool        `json:"apenasMinhasCaronas,omitempty"`
	Origem              string       `json:"origem,omitempty"`
	Destino             string       `json:"destino,omitempty"`
	Data                string       `json:"data,omitempty"`
	Status              CaronaStatus `json:"status,omitempty"`
	Page                int          `json:"page,omitempty"`
	PageSize            int          `json:"pageSize,omitempty"`
}
