package errors

import "net/http"

func (d Definition) Error() string {
	return d.Message
}

// Definition 表示业务错误码及默认信息。
// 作为哨兵值使用：fmt.Errorf("%w: %w", errors.ProgressFetchFailed, cause) 之后仍可 errors.Is。
type Definition struct {
	Code    string
	Message string
}

// 认证相关错误。
var (
	AuthRequired       = Definition{Code: "AUTH_REQUIRED", Message: "Authentication required"}
	SessionExpired     = Definition{Code: "SESSION_EXPIRED", Message: "Session expired, please log in again"}
	InvalidCredentials = Definition{Code: "INVALID_CREDENTIALS", Message: "Invalid email or password"}
	Unauthorized       = Definition{Code: "UNAUTHORIZED", Message: "Unauthorized"}
	InvalidUserID      = Definition{Code: "INVALID_USER_ID", Message: "Invalid user ID"}

	EmailAlreadyRegistered = Definition{Code: "EMAIL_ALREADY_REGISTERED", Message: "This email is already registered"}
	ResetCodeInvalid       = Definition{Code: "RESET_CODE_INVALID", Message: "Invalid or expired verification code"}
)

// 向导进度相关错误。
var (
	ProgressFetchFailed  = Definition{Code: "PROGRESS_FETCH_FAILED", Message: "Could not load registration progress"}
	ProgressCommitFailed = Definition{Code: "PROGRESS_COMMIT_FAILED", Message: "Could not save this step, please try again"}
	ValidationFailed     = Definition{Code: "VALIDATION_FAILED", Message: "Some fields are invalid"}
	WizardRedirect       = Definition{Code: "WIZARD_REDIRECT", Message: "This step is not available for the current registration progress"}
	PositionInvalid      = Definition{Code: "POSITION_INVALID", Message: "Registration position out of range"}
)

// carona 列表相关错误。
var (
	RideNotFound = Definition{Code: "RIDE_NOT_FOUND", Message: "Ride not found"}
)

// 小区查询相关错误。
var (
	CondominioNotFound = Definition{Code: "CONDOMINIO_NOT_FOUND", Message: "Condominium, block or apartment list not found"}
)

// 通用错误。
var (
	InvalidRequest     = Definition{Code: "INVALID_REQUEST", Message: "Invalid request"}
	CSRFInvalid        = Definition{Code: "CSRF_INVALID", Message: "Invalid or missing CSRF token"}
	TooManyRequests    = Definition{Code: "TOO_MANY_REQUESTS", Message: "Too many requests, please slow down"}
	BackendUnavailable = Definition{Code: "BACKEND_UNAVAILABLE", Message: "Backend service unavailable"}
	Internal           = Definition{Code: "INTERNAL_ERROR", Message: "Internal error"}
)

// Lookup 提供错误码查询能力。
var Lookup = map[string]Definition{
	AuthRequired.Code:           AuthRequired,
	SessionExpired.Code:         SessionExpired,
	InvalidCredentials.Code:     InvalidCredentials,
	Unauthorized.Code:           Unauthorized,
	InvalidUserID.Code:          InvalidUserID,
	EmailAlreadyRegistered.Code: EmailAlreadyRegistered,
	ResetCodeInvalid.Code:       ResetCodeInvalid,
	ProgressFetchFailed.Code:    ProgressFetchFailed,
	ProgressCommitFailed.Code:   ProgressCommitFailed,
	ValidationFailed.Code:       ValidationFailed,
	WizardRedirect.Code:         WizardRedirect,
	PositionInvalid.Code:        PositionInvalid,
	RideNotFound.Code:           RideNotFound,
	CondominioNotFound.Code:     CondominioNotFound,
	InvalidRequest.Code:         InvalidRequest,
	CSRFInvalid.Code:            CSRFInvalid,
	TooManyRequests.Code:        TooManyRequests,
	BackendUnavailable.Code:     BackendUnavailable,
	Internal.Code:               Internal,
}

// Get 根据错误码返回 Definition，若不存在则返回带原错误码的兜底 Definition。
func Get(code string) Definition {
	if def, ok := Lookup[code]; ok {
		return def
	}
	return Definition{Code: code, Message: "Unexpected error"}
}

// HTTPStatus 错误码对应的 HTTP 状态码
func (d Definition) HTTPStatus() int {
	switch d.Code {
	case AuthRequired.Code, SessionExpired.Code, InvalidCredentials.Code, Unauthorized.Code:
		return http.StatusUnauthorized
	case InvalidRequest.Code, InvalidUserID.Code, PositionInvalid.Code, ResetCodeInvalid.Code:
		return http.StatusBadRequest
	case ValidationFailed.Code:
		return http.StatusUnprocessableEntity
	case CSRFInvalid.Code:
		return http.StatusForbidden
	case WizardRedirect.Code, EmailAlreadyRegistered.Code:
		return http.StatusConflict
	case RideNotFound.Code, CondominioNotFound.Code:
		return http.StatusNotFound
	case TooManyRequests.Code:
		return http.StatusTooManyRequests
	case ProgressFetchFailed.Code, ProgressCommitFailed.Code, BackendUnavailable.Code:
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}
