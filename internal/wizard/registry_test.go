package wizard

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRouteForPosition(t *testing.T) {
	tests := []struct {
		name string
		pos  Position
		want string
	}{
		{"welcome", 1, RouteWelcome},
		{"personal data", 2, RoutePersonal},
		{"condominium", 3, RouteCondo},
		{"terms", 4, RouteTerms},
		{"success", 5, RouteSuccess},
		{"completed", 6, PostWizardRoute},
		{"zero falls back to welcome", 0, RouteWelcome},
		{"negative falls back to welcome", -3, RouteWelcome},
		{"above range falls back to welcome", 7, RouteWelcome},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, RouteForPosition(tt.pos))
		})
	}
}

func TestRouteTableIsBijective(t *testing.T) {
	seen := make(map[string]Position)
	for p := MinPosition; p <= MaxPosition; p++ {
		route := RouteForPosition(p)
		prev, dup := seen[route]
		require.Falsef(t, dup, "route %s used by %d and %d", route, prev, p)
		seen[route] = p
	}

	for p := PositionWelcome; p <= PositionSuccess; p++ {
		got, ok := PositionForRoute(RouteForPosition(p))
		require.True(t, ok)
		assert.Equal(t, p, got)
	}

	_, ok := PositionForRoute(PostWizardRoute)
	assert.False(t, ok, "post-wizard destination is not a wizard screen")
}

func TestPositionForRouteNormalizes(t *testing.T) {
	p, ok := PositionForRoute(RouteTerms + "/")
	require.True(t, ok)
	assert.Equal(t, PositionTerms, p)

	p, ok = PositionForRoute(RouteCondo + "?from=email")
	require.True(t, ok)
	assert.Equal(t, PositionCondo, p)

	_, ok = PositionForRoute("/app/cadastro-complementar/unknown")
	assert.False(t, ok)
	assert.False(t, IsWizardRoute(LoginRoute))
	assert.True(t, IsWizardRoute(RouteWelcome))
}

func TestIsValidAndIsComplete(t *testing.T) {
	for _, p := range []Position{0, -1, 7, 100} {
		assert.Falsef(t, IsValid(p), "position %d", p)
	}
	for p := MinPosition; p <= MaxPosition; p++ {
		assert.Truef(t, IsValid(p), "position %d", p)
	}

	assert.False(t, IsComplete(5))
	assert.True(t, IsComplete(6))
	assert.True(t, IsComplete(9))
}

func TestNextAndPreviousSaturate(t *testing.T) {
	assert.Equal(t, Position(2), Next(1))
	assert.Equal(t, Position(6), Next(5))
	assert.Equal(t, Position(6), Next(6))

	assert.Equal(t, Position(1), Previous(2))
	assert.Equal(t, Position(1), Previous(1))
	assert.Equal(t, Position(5), Previous(6))
}

func TestParsePosition(t *testing.T) {
	tests := []struct {
		name   string
		in     any
		want   Position
		wantOK bool
	}{
		{"int", 3, 3, true},
		{"int64", int64(4), 4, true},
		{"integral float", float64(2), 2, true},
		{"numeric string", " 5 ", 5, true},
		{"fractional float", 2.5, 0, false},
		{"nan", math.NaN(), 0, false},
		{"nil", nil, 0, false},
		{"text", "abc", 0, false},
		{"bool", true, 0, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := ParsePosition(tt.in)
			assert.Equal(t, tt.wantOK, ok)
			if tt.wantOK {
				assert.Equal(t, tt.want, got)
			}
		})
	}
}
