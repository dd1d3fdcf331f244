package service

import (
	"context"
	stderrors "errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"CaronaCondominio/internal/model"
	"CaronaCondominio/internal/model/dto"
	"CaronaCondominio/internal/store"
	"CaronaCondominio/internal/wizard"
	"CaronaCondominio/pkg/backend"
	"CaronaCondominio/pkg/errors"
	"CaronaCondominio/pkg/token"
)

func newAuthService(t *testing.T) (*AuthService, *backend.MockClient, *ProgressService) {
	t.Helper()
	mock := backend.NewMockClient()
	progress := NewProgressService(mock, store.NewMemoryStores(time.Hour, time.Hour))
	return NewAuthService(mock, progress), mock, progress
}

func TestLoginRememberMeUsesPersistentScope(t *testing.T) {
	auth, mock, progress := newAuthService(t)
	ctx := context.Background()

	resp, err := auth.Login(ctx, dto.LoginRequest{Email: " Morador@Carona.dev ", Password: "carona123", RememberMe: true})
	require.NoError(t, err)

	assert.Equal(t, wizard.RouteWelcome, resp.Redirect)
	assert.Equal(t, "1", resp.User.ID)
	assert.Equal(t, 1, resp.User.Position)
	assert.True(t, resp.User.PendenciaCadastro)
	assert.True(t, resp.User.RememberMe)
	assert.Positive(t, resp.ExpiresIn)

	claims, err := token.ParseAccessToken(resp.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, "1", claims.UserID)
	assert.True(t, claims.Remember())

	assert.True(t, progress.HasCredential(ctx, Identity{UserID: "1", Scope: store.ScopePersistent}))
	assert.False(t, progress.HasCredential(ctx, Identity{UserID: "1", Scope: store.ScopeSession}))
	assert.Equal(t, 1, mock.CallCount("get_me"))
}

func TestLoginRedirectsToSavedStep(t *testing.T) {
	auth, mock, _ := newAuthService(t)
	mock.AddUser(&model.User{
		UID:                         "7",
		Email:                       "bloco.c@carona.dev",
		Name:                        "Bloco C",
		PendenciaCadastro:           true,
		PosicaoCadastroComplementar: model.IntPtr(4),
	}, "segredo")

	resp, err := auth.Login(context.Background(), dto.LoginRequest{Email: "bloco.c@carona.dev", Password: "segredo"})
	require.NoError(t, err)
	assert.Equal(t, wizard.RouteTerms, resp.Redirect)

	claims, err := token.ParseAccessToken(resp.AccessToken)
	require.NoError(t, err)
	assert.False(t, claims.Remember())
}

func TestLoginCompletedUserGoesToRideList(t *testing.T) {
	auth, mock, _ := newAuthService(t)
	mock.AddUser(&model.User{
		UID:                         "8",
		Email:                       "pronto@carona.dev",
		PosicaoCadastroComplementar: model.IntPtr(6),
	}, "segredo")

	resp, err := auth.Login(context.Background(), dto.LoginRequest{Email: "pronto@carona.dev", Password: "segredo"})
	require.NoError(t, err)
	assert.Equal(t, wizard.PostWizardRoute, resp.Redirect)
	assert.False(t, resp.User.PendenciaCadastro)
}

func TestLoginInvalidCredentials(t *testing.T) {
	auth, _, progress := newAuthService(t)

	_, err := auth.Login(context.Background(), dto.LoginRequest{Email: "morador@carona.dev", Password: "errada"})
	require.Error(t, err)
	assert.True(t, stderrors.Is(err, errors.InvalidCredentials))
	assert.False(t, progress.HasCredential(context.Background(), Identity{UserID: "1"}))
}

func TestLoginMissingFields(t *testing.T) {
	auth, mock, _ := newAuthService(t)

	_, err := auth.Login(context.Background(), dto.LoginRequest{Email: "  "})
	require.Error(t, err)

	var verr *errors.ValidationError
	require.True(t, stderrors.As(err, &verr))
	assert.Contains(t, verr.Fields, "email")
	assert.Contains(t, verr.Fields, "password")
	assert.Zero(t, mock.CallCount("login"))
}

func TestLoginBackendDown(t *testing.T) {
	auth, mock, _ := newAuthService(t)
	mock.FailNext = stderrors.New("dial tcp: connection refused")

	_, err := auth.Login(context.Background(), dto.LoginRequest{Email: "morador@carona.dev", Password: "carona123"})
	require.Error(t, err)
	assert.True(t, stderrors.Is(err, errors.BackendUnavailable))
}

func TestLogoutClearsEverything(t *testing.T) {
	auth, mock, progress := newAuthService(t)
	ctx := context.Background()

	_, err := auth.Login(ctx, dto.LoginRequest{Email: "morador@carona.dev", Password: "carona123"})
	require.NoError(t, err)

	require.NoError(t, auth.Logout(ctx, "1"))
	assert.Equal(t, 1, mock.CallCount("logout"))
	assert.False(t, progress.HasCredential(ctx, Identity{UserID: "1", Scope: store.ScopeSession}))

	require.NoError(t, auth.Logout(ctx, "1"), "logout is idempotent")
	assert.Equal(t, 1, mock.CallCount("logout"))
}

func TestRegisterValidatesBeforeBackend(t *testing.T) {
	auth, mock, _ := newAuthService(t)

	_, err := auth.Register(context.Background(), dto.RegisterRequest{
		Name:     "Ana",
		Email:    "ana@x",
		Password: "senha123",
		Phone:    "123",
	})
	require.Error(t, err)

	var verr *errors.ValidationError
	require.True(t, stderrors.As(err, &verr))
	assert.Contains(t, verr.Fields, "name")
	assert.Contains(t, verr.Fields, "email")
	assert.Contains(t, verr.Fields, "password")
	assert.Contains(t, verr.Fields, "phone")
	assert.Zero(t, mock.CallCount("register"))
}

func TestRegisterThenLogin(t *testing.T) {
	auth, mock, _ := newAuthService(t)
	ctx := context.Background()

	resp, err := auth.Register(ctx, dto.RegisterRequest{
		Name:     "  Ana   Lima ",
		Email:    "Ana@X.com",
		Password: "Senha123",
		Phone:    "(84) 99999-1234",
	})
	require.NoError(t, err)
	assert.Equal(t, wizard.LoginRoute, resp.Redirect)
	assert.Equal(t, "Ana Lima", resp.Name)
	assert.Equal(t, "ana@x.com", resp.Email)

	user, ok := mock.User(resp.ID)
	require.True(t, ok)
	assert.Equal(t, "84999991234", user.Telefone)

	login, err := auth.Login(ctx, dto.LoginRequest{Email: "ana@x.com", Password: "Senha123"})
	require.NoError(t, err)
	assert.Equal(t, wizard.RouteWelcome, login.Redirect)
}

func TestRegisterDuplicateEmail(t *testing.T) {
	auth, _, _ := newAuthService(t)

	_, err := auth.Register(context.Background(), dto.RegisterRequest{
		Name:     "Outro Morador",
		Email:    "morador@carona.dev",
		Password: "Senha123",
	})
	assert.True(t, stderrors.Is(err, errors.EmailAlreadyRegistered))
}

func TestPasswordResetFlow(t *testing.T) {
	auth, mock, _ := newAuthService(t)
	ctx := context.Background()

	resp, err := auth.ForgotPassword(ctx, dto.ForgotPasswordRequest{Email: " Morador@Carona.dev "})
	require.NoError(t, err)
	assert.True(t, resp.Success)
	assert.Equal(t, ChangePasswordRoute+"?email=morador%40carona.dev", resp.Redirect)

	code, ok := mock.ResetCode("morador@carona.dev")
	require.True(t, ok)

	_, err = auth.ChangePassword(ctx, dto.ChangePasswordRequest{
		Email:          "morador@carona.dev",
		Codigo:         "999999",
		NovaSenha:      "Nova1234",
		ConfirmarSenha: "Nova1234",
	})
	assert.True(t, stderrors.Is(err, errors.ResetCodeInvalid))

	changed, err := auth.ChangePassword(ctx, dto.ChangePasswordRequest{
		Email:          "morador@carona.dev",
		Codigo:         code,
		NovaSenha:      "Nova1234",
		ConfirmarSenha: "Nova1234",
	})
	require.NoError(t, err)
	assert.True(t, changed.Success)
	assert.Equal(t, wizard.LoginRoute, changed.Redirect)

	_, err = auth.Login(ctx, dto.LoginRequest{Email: "morador@carona.dev", Password: "Nova1234"})
	assert.NoError(t, err)
}

func TestForgotPasswordRequiresValidEmail(t *testing.T) {
	auth, mock, _ := newAuthService(t)

	for _, email := range []string{"", "not-an-email"} {
		_, err := auth.ForgotPassword(context.Background(), dto.ForgotPasswordRequest{Email: email})
		assert.True(t, stderrors.Is(err, errors.ValidationFailed), email)
	}
	assert.Zero(t, mock.CallCount("forgot_password"))
}

func TestChangePasswordValidation(t *testing.T) {
	auth, mock, _ := newAuthService(t)

	_, err := auth.ChangePassword(context.Background(), dto.ChangePasswordRequest{
		Email:          "morador@carona.dev",
		Codigo:         "123",
		NovaSenha:      "Nova1234",
		ConfirmarSenha: "Nova12345",
	})
	var verr *errors.ValidationError
	require.True(t, stderrors.As(err, &verr))
	assert.Contains(t, verr.Fields, "codigo")
	assert.Contains(t, verr.Fields, "confirmarSenha")
	assert.Zero(t, mock.CallCount("change_password"))
}
