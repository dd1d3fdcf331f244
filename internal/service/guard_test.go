package service

import (
	"context"
	stderrors "errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"CaronaCondominio/internal/wizard"
	"CaronaCondominio/pkg/errors"
)

func TestGuardWithoutIdentity(t *testing.T) {
	f := newFixture(t)
	guard := NewGuardService(f.progress)

	d := guard.Evaluate(context.Background(), nil, wizard.RouteWelcome)
	assert.False(t, d.Allow)
	assert.Equal(t, wizard.LoginRoute, d.Redirect)
	assert.Equal(t, ReasonNoCredential, d.Reason)
	assert.True(t, stderrors.Is(d.Err, errors.AuthRequired))
	assert.Zero(t, f.mock.CallCount("get_me"))
}

func TestGuardWithoutCredential(t *testing.T) {
	f := newFixture(t)
	guard := NewGuardService(f.progress)

	d := guard.Evaluate(context.Background(), &Identity{UserID: "42"}, wizard.RouteWelcome)
	assert.False(t, d.Allow)
	assert.Equal(t, wizard.LoginRoute, d.Redirect)
	assert.Zero(t, f.mock.CallCount("get_me"), "guard must not call the backend without a credential")
}

func TestGuardAllowsCurrentStepOnly(t *testing.T) {
	f := newFixture(t)
	guard := NewGuardService(f.progress)
	ctx := context.Background()

	d := guard.Evaluate(ctx, &f.id, wizard.RouteWelcome)
	require.True(t, d.Allow)
	assert.Equal(t, wizard.PositionWelcome, d.Position)
	assert.NotNil(t, d.Progress)

	_, err := f.progress.CommitStep(ctx, f.id, wizard.PositionCondo, nil)
	require.NoError(t, err)

	tests := []struct {
		route string
		allow bool
	}{
		{wizard.RouteWelcome, false},
		{wizard.RoutePersonal, false},
		{wizard.RouteCondo, true},
		{wizard.RouteCondo + "/", true},
		{wizard.RouteTerms, false},
		{wizard.RouteSuccess, false},
		{"/app/cadastro-complementar", false},
	}
	for _, tt := range tests {
		t.Run(tt.route, func(t *testing.T) {
			d := guard.Evaluate(ctx, &f.id, tt.route)
			assert.Equal(t, tt.allow, d.Allow)
			if !tt.allow {
				assert.Equal(t, wizard.RouteCondo, d.Redirect)
				assert.Equal(t, ReasonWrongStep, d.Reason)
				assert.True(t, stderrors.Is(d.Err, errors.WizardRedirect))
			}
		})
	}
}

func TestGuardCompletedGoesToRideList(t *testing.T) {
	f := newFixture(t)
	guard := NewGuardService(f.progress)
	ctx := context.Background()

	_, err := f.progress.CommitStep(ctx, f.id, wizard.PositionCompleted, nil)
	require.NoError(t, err)

	for _, route := range []string{wizard.RouteWelcome, wizard.RouteSuccess} {
		d := guard.Evaluate(ctx, &f.id, route)
		assert.False(t, d.Allow)
		assert.Equal(t, wizard.PostWizardRoute, d.Redirect)
		assert.Equal(t, ReasonCompleted, d.Reason)
	}
}

func TestGuardSessionExpired(t *testing.T) {
	f := newFixture(t)
	guard := NewGuardService(f.progress)
	f.mock.RevokeToken(f.remote)

	d := guard.Evaluate(context.Background(), &f.id, wizard.RouteWelcome)
	assert.False(t, d.Allow)
	assert.Equal(t, wizard.SessionExpiredRoute, d.Redirect)
	assert.Equal(t, ReasonSessionExpired, d.Reason)
	assert.True(t, stderrors.Is(d.Err, errors.AuthRequired))
}

func TestGuardBackendFailureRedirectsToLogin(t *testing.T) {
	f := newFixture(t)
	guard := NewGuardService(f.progress)
	f.mock.FailNext = stderrors.New("timeout")

	d := guard.Evaluate(context.Background(), &f.id, wizard.RouteWelcome)
	assert.False(t, d.Allow)
	assert.Equal(t, wizard.LoginRoute, d.Redirect)
	assert.Equal(t, ReasonProgressFailure, d.Reason)
	assert.True(t, f.progress.HasCredential(context.Background(), f.id), "transient failure keeps the session")
}

func TestGuardTermsStepBlocksSuccess(t *testing.T) {
	f := newFixture(t)
	guard := NewGuardService(f.progress)
	ctx := context.Background()

	_, err := f.progress.CommitStep(ctx, f.id, wizard.PositionTerms, nil)
	require.NoError(t, err)

	d := guard.Evaluate(ctx, &f.id, wizard.RouteTerms)
	assert.True(t, d.Allow)
	assert.Equal(t, wizard.PositionTerms, d.Position)

	d = guard.Evaluate(ctx, &f.id, wizard.RouteSuccess)
	assert.False(t, d.Allow)
	assert.Equal(t, wizard.RouteTerms, d.Redirect)
	assert.Equal(t, ReasonWrongStep, d.Reason)
}

func TestGuardRouteLabel(t *testing.T) {
	assert.Equal(t, wizard.RouteTerms, guardRouteLabel(wizard.RouteTerms))
	assert.Equal(t, wizard.RouteCondo, guardRouteLabel(wizard.RouteCondo+"/"))
	assert.Equal(t, "other", guardRouteLabel("/app/cadastro-complementar"))
	assert.Equal(t, "other", guardRouteLabel("/app/cadastro-complementar/xyz"))
}
