package middleware

import (
	"context"
	"encoding/json"
	"net/http"
	"strconv"
	"testing"
	"time"

	"github.com/cloudwego/hertz/pkg/app"
	"github.com/cloudwego/hertz/pkg/common/config"
	"github.com/cloudwego/hertz/pkg/common/ut"
	"github.com/cloudwego/hertz/pkg/route"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"CaronaCondominio/internal/service"
	"CaronaCondominio/internal/store"
	"CaronaCondominio/internal/wizard"
	"CaronaCondominio/pkg/backend"
	"CaronaCondominio/pkg/errors"
	"CaronaCondominio/pkg/response"
	"CaronaCondominio/pkg/token"
)

type guardFixture struct {
	engine *route.Engine
	mock   *backend.MockClient
	bearer string
	remote string
}

func newGuardFixture(t *testing.T) *guardFixture {
	t.Helper()
	require.NoError(t, token.Init())

	mock := backend.NewMockClient()
	progress := service.NewProgressService(mock, store.NewMemoryStores(time.Hour, time.Hour))
	remote := mock.IssueToken("1")
	require.NoError(t, progress.Seed(context.Background(), service.Identity{UserID: "1", Scope: store.ScopeSession}, remote))

	access, _, err := token.GenerateAccessToken("1", token.ScopeSession)
	require.NoError(t, err)

	mw, err := newAuthMiddleware(token.GetGenerator().Key, time.Now)
	require.NoError(t, err)

	engine := route.NewEngine(config.NewOptions([]config.Option{}))
	wizardGroup := engine.Group("/app/cadastro-complementar", optionalIdentity(mw), WizardGuardWith(service.NewGuardService(progress)))
	echo := func(ctx context.Context, c *app.RequestContext) {
		p, _ := GetWizardPosition(c)
		c.String(http.StatusOK, strconv.Itoa(int(p)))
	}
	for _, r := range []string{wizard.RouteWelcome, wizard.RoutePersonal, wizard.RouteCondo} {
		rel := r[len("/app/cadastro-complementar"):]
		wizardGroup.GET(rel, echo)
		wizardGroup.POST(rel, echo)
	}

	return &guardFixture{engine: engine, mock: mock, bearer: "Bearer " + access, remote: remote}
}

func decodeError(t *testing.T, body []byte) response.ErrorDetail {
	t.Helper()
	var resp response.ErrorResponse
	require.NoError(t, json.Unmarshal(body, &resp))
	return resp.Error
}

func TestWizardGuardRedirectsAnonymousNavigation(t *testing.T) {
	f := newGuardFixture(t)

	w := ut.PerformRequest(f.engine, http.MethodGet, wizard.RouteWelcome, nil)
	resp := w.Result()
	assert.Equal(t, http.StatusFound, resp.StatusCode())
	assert.Contains(t, string(resp.Header.Peek("Location")), wizard.LoginRoute)
	assert.Zero(t, f.mock.CallCount("get_me"))
}

func TestWizardGuardRejectsAnonymousSubmit(t *testing.T) {
	f := newGuardFixture(t)

	w := ut.PerformRequest(f.engine, http.MethodPost, wizard.RouteWelcome, nil)
	resp := w.Result()
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode())

	detail := decodeError(t, resp.Body())
	assert.Equal(t, errors.AuthRequired.Code, detail.Code)
	assert.Equal(t, wizard.LoginRoute, detail.Details["redirect"])
}

func TestWizardGuardAllowsCurrentStep(t *testing.T) {
	f := newGuardFixture(t)

	w := ut.PerformRequest(f.engine, http.MethodGet, wizard.RouteWelcome, nil,
		ut.Header{Key: "Authorization", Value: f.bearer})
	resp := w.Result()
	assert.Equal(t, http.StatusOK, resp.StatusCode())
	assert.Equal(t, "1", string(resp.Body()))
}

func TestWizardGuardAcceptsCookie(t *testing.T) {
	f := newGuardFixture(t)
	access := f.bearer[len("Bearer "):]

	w := ut.PerformRequest(f.engine, http.MethodGet, wizard.RouteWelcome, nil,
		ut.Header{Key: "Cookie", Value: TokenCookie + "=" + access})
	assert.Equal(t, http.StatusOK, w.Result().StatusCode())
}

func TestWizardGuardRedirectsSkippedStep(t *testing.T) {
	f := newGuardFixture(t)

	w := ut.PerformRequest(f.engine, http.MethodGet, wizard.RouteCondo, nil,
		ut.Header{Key: "Authorization", Value: f.bearer})
	resp := w.Result()
	assert.Equal(t, http.StatusFound, resp.StatusCode())
	assert.Contains(t, string(resp.Header.Peek("Location")), wizard.RouteWelcome)

	w = ut.PerformRequest(f.engine, http.MethodPost, wizard.RouteCondo, nil,
		ut.Header{Key: "Authorization", Value: f.bearer})
	resp = w.Result()
	assert.Equal(t, http.StatusConflict, resp.StatusCode())
	detail := decodeError(t, resp.Body())
	assert.Equal(t, errors.WizardRedirect.Code, detail.Code)
	assert.Equal(t, wizard.RouteWelcome, detail.Details["redirect"])
}

func TestWizardGuardSessionExpired(t *testing.T) {
	f := newGuardFixture(t)
	f.mock.RevokeToken(f.remote)

	w := ut.PerformRequest(f.engine, http.MethodGet, wizard.RoutePersonal, nil,
		ut.Header{Key: "Authorization", Value: f.bearer})
	resp := w.Result()
	assert.Equal(t, http.StatusFound, resp.StatusCode())
	assert.Contains(t, string(resp.Header.Peek("Location")), "sessionExpired=true")
}

func TestWizardGuardIgnoresTamperedToken(t *testing.T) {
	f := newGuardFixture(t)

	w := ut.PerformRequest(f.engine, http.MethodGet, wizard.RouteWelcome, nil,
		ut.Header{Key: "Authorization", Value: f.bearer + "x"})
	resp := w.Result()
	assert.Equal(t, http.StatusFound, resp.StatusCode())
	assert.Contains(t, string(resp.Header.Peek("Location")), wizard.LoginRoute)
}

func TestAuthMiddlewareRequiresToken(t *testing.T) {
	require.NoError(t, token.Init())
	mw, err := newAuthMiddleware(token.GetGenerator().Key, time.Now)
	require.NoError(t, err)

	engine := route.NewEngine(config.NewOptions([]config.Option{}))
	engine.GET("/v1/me", mw.MiddlewareFunc(), func(ctx context.Context, c *app.RequestContext) {
		id, ok := GetIdentity(ctx, c)
		require.True(t, ok)
		c.String(http.StatusOK, id.UserID+":"+string(id.Scope))
	})

	w := ut.PerformRequest(engine, http.MethodGet, "/v1/me", nil)
	resp := w.Result()
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode())
	assert.Equal(t, errors.AuthRequired.Code, decodeError(t, resp.Body()).Code)

	access, _, err := token.GenerateAccessToken("1", token.ScopePersistent)
	require.NoError(t, err)
	w = ut.PerformRequest(engine, http.MethodGet, "/v1/me", nil, ut.Header{Key: "Authorization", Value: "Bearer " + access})
	resp = w.Result()
	assert.Equal(t, http.StatusOK, resp.StatusCode())
	assert.Equal(t, "1:persistent", string(resp.Body()))
}

func TestRequestIDMiddleware(t *testing.T) {
	engine := route.NewEngine(config.NewOptions([]config.Option{}))
	engine.Use(RequestIDMiddleware())
	engine.GET("/ping", func(ctx context.Context, c *app.RequestContext) {
		c.String(http.StatusOK, c.GetString("request_id"))
	})

	w := ut.PerformRequest(engine, http.MethodGet, "/ping", nil, ut.Header{Key: RequestIDHeader, Value: "abc-123"})
	resp := w.Result()
	assert.Equal(t, "abc-123", string(resp.Body()))
	assert.Equal(t, "abc-123", resp.Header.Get(RequestIDHeader))

	w = ut.PerformRequest(engine, http.MethodGet, "/ping", nil)
	assert.Len(t, string(w.Result().Body()), 36)
}

func TestRecoverMiddleware(t *testing.T) {
	engine := route.NewEngine(config.NewOptions([]config.Option{}))
	engine.Use(RecoverMiddlewareWithConfig(RecoverConfig{StackTraceLevel: "none", IsProduction: true}))
	engine.GET("/boom", func(ctx context.Context, c *app.RequestContext) {
		panic("boom")
	})

	w := ut.PerformRequest(engine, http.MethodGet, "/boom", nil)
	resp := w.Result()
	assert.Equal(t, http.StatusInternalServerError, resp.StatusCode())
	detail := decodeError(t, resp.Body())
	assert.Equal(t, errors.Internal.Code, detail.Code)
	assert.Nil(t, detail.Details, "production responses hide panic details")
}

func TestCORSPreflight(t *testing.T) {
	engine := route.NewEngine(config.NewOptions([]config.Option{}))
	engine.Use(CORSMiddleware())
	engine.OPTIONS("/v1/auth/login", func(ctx context.Context, c *app.RequestContext) {})

	w := ut.PerformRequest(engine, http.MethodOptions, "/v1/auth/login", nil, ut.Header{Key: "Origin", Value: "http://localhost:5173"})
	resp := w.Result()
	assert.Equal(t, http.StatusNoContent, resp.StatusCode())
	assert.Equal(t, "http://localhost:5173", resp.Header.Get("Access-Control-Allow-Origin"))
}
