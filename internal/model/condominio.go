package model

// Condominio 远端登记的小区，slug 用于查询楼栋和公寓
type Condominio struct {
	Slug   string `json:"slug"`
	Nome   string `json:"nome"`
	Pais   string `json:"pais"`
	Estado string `json:"estado"`
	Cidade string `json:"cidade"`
}

type Bloco struct {
	BlocoID   string `json:"blocoId"`
	BlocoNome string `json:"blocoNome"`
}
