package monitoring

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/sells-group/scout/internal/config"
	"github.com/sells-group/scout/internal/model"
)

func TestChecker_Check_SendsAlerts(t *testing.T) {
	ctx := context.Background()
	st := newTestStore(t)

	require.NoError(t, st.InsertAccountPlans(ctx, []model.AccountPlan{
		{ID: "ap-1", AccountName: "Acme Freight", AccountType: model.AccountTypeProspect},
	}))
	require.NoError(t, st.UpsertHealthSnapshot(ctx, &model.HealthSnapshot{
		AccountPlanID: "ap-1",
		Profile:       model.ProfileOutbound,
		Total:         8,
		Band:          model.BandCritical,
		ComputedAt:    time.Now().UTC(),
	}))

	var received atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		received.Add(1)
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	cfg := config.MonitoringConfig{
		WebhookURL:        srv.URL,
		CriticalThreshold: 1,
		StaleAfterHours:   168,
	}
	c := NewChecker(NewCollector(st, 168*time.Hour), NewAlerter(cfg), cfg)

	c.check(ctx, zap.NewNop())

	assert.Equal(t, int32(1), received.Load())
}

func TestChecker_Run_StopsOnCancel(t *testing.T) {
	st := newTestStore(t)
	cfg := config.MonitoringConfig{CheckIntervalSecs: 1}
	c := NewChecker(NewCollector(st, 0), NewAlerter(cfg), cfg)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		c.Run(ctx)
		close(done)
	}()

	cancel()
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("checker did not stop after cancel")
	}
}
