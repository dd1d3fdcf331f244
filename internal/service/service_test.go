package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"CaronaCondominio/internal/store"
	"CaronaCondominio/pkg/backend"
	"CaronaCondominio/pkg/token"
)

func TestMain(m *testing.M) {
	if err := token.Init(); err != nil {
		panic(err)
	}
	goleak.VerifyTestMain(m, goleak.IgnoreCurrent())
}

var testNow = time.Date(2024, 6, 10, 12, 0, 0, 0, time.UTC)

type fixture struct {
	mock     *backend.MockClient
	stores   *store.Stores
	progress *ProgressService
	id       Identity
	remote   string
}

// newFixture 种子用户 "1" 已登录（会话范围），进度位于 1
func newFixture(t *testing.T) *fixture {
	t.Helper()

	mock := backend.NewMockClient()
	stores := store.NewMemoryStores(time.Hour, time.Hour)
	progress := NewProgressService(mock, stores,
		WithLockTTL(100*time.Millisecond),
		WithClock(func() time.Time { return testNow }),
	)

	f := &fixture{
		mock:     mock,
		stores:   stores,
		progress: progress,
		id:       Identity{UserID: "1", Scope: store.ScopeSession},
		remote:   mock.IssueToken("1"),
	}
	require.NoError(t, progress.Seed(context.Background(), f.id, f.remote))
	return f
}
