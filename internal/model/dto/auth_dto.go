package dto

// ========== Auth 相关 DTO ==========

// LoginRequest 登录请求，RememberMe 决定远端凭证保存在持久范围还是会话范围
type LoginRequest struct {
	Email      string `json:"email" form:"email"`
	Password   string `json:"password" form:"password"`
	RememberMe bool   `json:"remember_me" form:"remember_me"`
}

// LoginResponse 登录响应
type LoginResponse struct {
	User        AuthUserSnapshot `json:"user"`
	AccessToken string           `json:"access_token"`
	Redirect    string           `json:"redirect"`
	ExpiresIn   int              `json:"expires_in"`
}

// AuthUserSnapshot 登录时的用户快照
type AuthUserSnapshot struct {
	ID                string `json:"id"`
	Email             string `json:"email"`
	Name              string `json:"name"`
	Role              string `json:"role,omitempty"`
	Position          int    `json:"position"`
	PendenciaCadastro bool   `json:"pendencia_cadastro"`
	RememberMe        bool   `json:"remember_me"`
}

// RegisterRequest 注册请求，Phone 可选
type RegisterRequest struct {
	Name     string `json:"name" form:"name"`
	Email    string `json:"email" form:"email"`
	Password string `json:"password" form:"password"`
	Phone    string `json:"phone" form:"phone"`
}

// RegisterResponse 注册不会建立会话，Redirect 指向登录页
type RegisterResponse struct {
	ID       string `json:"id"`
	Email    string `json:"email"`
	Name     string `json:"name"`
	Role     string `json:"role,omitempty"`
	Message  string `json:"message,omitempty"`
	Redirect string `json:"redirect"`
}

type ForgotPasswordRequest struct {
	Email string `json:"email" form:"email"`
}

// ChangePasswordRequest 用邮箱收到的 6 位验证码设置新密码
type ChangePasswordRequest struct {
	Email          string `json:"email" form:"email"`
	Codigo         string `json:"codigo" form:"codigo"`
	NovaSenha      string `json:"novaSenha" form:"novaSenha"`
	ConfirmarSenha string `json:"confirmarSenha" form:"confirmarSenha"`
}

// MessageResponse 找回密码和修改密码的结果
type MessageResponse struct {
	Message  string `json:"mensagem"`
	Redirect string `json:"redirect"`
	Success  bool   `json:"sucesso"`
}
