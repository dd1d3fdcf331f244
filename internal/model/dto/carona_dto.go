package dto

import "CaronaCondominio/internal/model"

// ========== Carona 相关 DTO ==========

// ListCaronasQuery GET /v1/caronas 的查询参数
type ListCaronasQuery struct {
	ApenasMinhasCaronas *bool  `query:"apenasMinhasCaronas"`
	Origem              string `query:"origem"`
	Destino             string `query:"destino"`
	Data                string `query:"data"`
	Status              string `query:"status"`
	Page                int    `query:"page"`
	PageSize            int    `query:"pageSize"`
}

// CaronaItem 列表项，附带剩余座位
type CaronaItem struct {
	model.Carona
	VagasLivres int `json:"vagasLivres"`
}

// ListCaronasData 列表响应
type ListCaronasData struct {
	Items    []CaronaItem `json:"items"`
	Page     int          `json:"page"`
	PageSize int          `json:"page_size"`
}
