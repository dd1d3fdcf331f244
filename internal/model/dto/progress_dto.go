package dto

// ========== 补充注册进度 DTO ==========

// ProgressData 当前进度
type ProgressData struct {
	StepData        map[string]string `json:"step_data"`
	Route           string            `json:"route"`
	Position        int               `json:"position"`
	Completed       bool              `json:"completed"`
	AcceptedTerms   bool              `json:"accepted_terms"`
	AcceptedPrivacy bool              `json:"accepted_privacy"`
}

// StepView 打开向导页面时返回的数据，Values 为预填值
type StepView struct {
	Values   map[string]any `json:"values"`
	Step     string         `json:"step"`
	Route    string         `json:"route"`
	Previous string         `json:"previous,omitempty"`
	Position int            `json:"position"`
}

// StepResult 提交成功后的跳转
type StepResult struct {
	NextRoute string `json:"next_route"`
	Position  int    `json:"position"`
	Completed bool   `json:"completed"`
}
