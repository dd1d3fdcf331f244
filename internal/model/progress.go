package model

// UserProgress 本地缓存的补充注册进度。
// 只在远端确认之后写入，缓存里的 Position 不会超过服务端已确认的位置。
type UserProgress struct {
	StepData        map[string]string `json:"step_data"`
	UserID          string            `json:"user_id"`
	Position        int               `json:"position"`
	AcceptedTerms   bool              `json:"accepted_terms"`
	AcceptedPrivacy bool              `json:"accepted_privacy"`
	UpdatedAt       int64             `json:"updated_at"`
}

// 接受条款字段映射到 UserProgress 的布尔值，不进入 StepData
const (
	FieldAcceptedTerms   = "aceitouTermos"
	FieldAcceptedPrivacy = "aceitouPrivacidade"
)

// Clone 深拷贝 StepData，避免调用方修改缓存中的 map
func (p *UserProgress) Clone() *UserProgress {
	if p == nil {
		return nil
	}
	cp := *p
	if p.StepData != nil {
		cp.StepData = make(map[string]string, len(p.StepData))
		for k, v := range p.StepData {
			cp.StepData[k] = v
		}
	}
	return &cp
}

// Field 读取已保存的步骤字段
func (p *UserProgress) Field(name string) string {
	if p == nil || p.StepData == nil {
		return ""
	}
	return p.StepData[name]
}
