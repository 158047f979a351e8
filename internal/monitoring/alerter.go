package monitoring

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/sells-group/scout/internal/config"
	"github.com/sells-group/scout/internal/model"
)

// AlertType identifies the kind of alert.
type AlertType string

const (
	AlertCriticalHealth AlertType = "critical_health"
	AlertStaleCoverage  AlertType = "stale_coverage"
	AlertGoalShortfall  AlertType = "goal_shortfall"
)

// Alert represents a single alert to be sent.
type Alert struct {
	Type      AlertType      `json:"type"`
	Severity  string         `json:"severity"`
	Message   string         `json:"message"`
	Details   map[string]any `json:"details,omitempty"`
	Timestamp time.Time      `json:"timestamp"`
}

// Alerter evaluates a MetricsSnapshot against configured thresholds
// and sends alerts via webhook when thresholds are breached.
type Alerter struct {
	cfg    config.MonitoringConfig
	client *http.Client
}

// NewAlerter creates a new Alerter with the given monitoring config.
func NewAlerter(cfg config.MonitoringConfig) *Alerter {
	return &Alerter{
		cfg:    cfg,
		client: &http.Client{Timeout: 10 * time.Second},
	}
}

// Evaluate checks the snapshot against thresholds and returns any alerts.
func (a *Alerter) Evaluate(snap *MetricsSnapshot) []Alert {
	var alerts []Alert
	now := time.Now().UTC()

	threshold := a.cfg.CriticalThreshold
	if threshold <= 0 {
		threshold = 1
	}
	if critical := snap.BandCounts[model.BandCritical]; critical >= threshold {
		alerts = append(alerts, Alert{
			Type:     AlertCriticalHealth,
			Severity: "high",
			Message: fmt.Sprintf(
				"%d account(s) in the critical health band (%d of %d plans scored)",
				critical, snap.PlansScored, snap.PlansTotal,
			),
			Details: map[string]any{
				"critical":     critical,
				"at_risk":      snap.BandCounts[model.BandAtRisk],
				"plans_scored": snap.PlansScored,
				"plans_total":  snap.PlansTotal,
			},
			Timestamp: now,
		})
	}

	if stale := snap.StaleSnapshots + snap.UnscoredPlans; stale > 0 {
		alerts = append(alerts, Alert{
			Type:     AlertStaleCoverage,
			Severity: "medium",
			Message: fmt.Sprintf(
				"%d account plan(s) unscored or not rescored within %s",
				stale, snap.StaleAfter,
			),
			Details: map[string]any{
				"unscored": snap.UnscoredPlans,
				"stale":    snap.StaleSnapshots,
			},
			Timestamp: now,
		})
	}

	if snap.UncoveredGoals > 0 {
		alerts = append(alerts, Alert{
			Type:     AlertGoalShortfall,
			Severity: "medium",
			Message: fmt.Sprintf(
				"%d goal(s) have a gap the addressable pool cannot cover (total gap $%.0f, addressable $%.0f)",
				snap.UncoveredGoals, snap.TotalGap, snap.TotalAddressableValue,
			),
			Details: map[string]any{
				"uncovered_goals":   snap.UncoveredGoals,
				"total_gap":         snap.TotalGap,
				"addressable_value": snap.TotalAddressableValue,
			},
			Timestamp: now,
		})
	}

	return alerts
}

// SendAlerts delivers alerts to the configured webhook URL.
// Returns the number of alerts successfully sent.
func (a *Alerter) SendAlerts(ctx context.Context, alerts []Alert) int {
	if a.cfg.WebhookURL == "" || len(alerts) == 0 {
		return 0
	}

	sent := 0
	for _, alert := range alerts {
		if err := a.sendWebhook(ctx, alert); err != nil {
			zap.L().Error("monitoring: failed to send alert",
				zap.String("type", string(alert.Type)),
				zap.Error(err),
			)
			continue
		}
		zap.L().Info("monitoring: alert sent",
			zap.String("type", string(alert.Type)),
			zap.String("severity", alert.Severity),
		)
		sent++
	}
	return sent
}

// sendWebhook posts a single alert to the webhook URL.
func (a *Alerter) sendWebhook(ctx context.Context, alert Alert) error {
	payload, err := json.Marshal(alert)
	if err != nil {
		return eris.Wrap(err, "monitoring: marshal alert")
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, a.cfg.WebhookURL, bytes.NewReader(payload))
	if err != nil {
		return eris.Wrap(err, "monitoring: create webhook request")
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := a.client.Do(req)
	if err != nil {
		return eris.Wrap(err, "monitoring: webhook request")
	}
	defer resp.Body.Close() //nolint:errcheck

	if resp.StatusCode >= 400 {
		return eris.Errorf("monitoring: webhook returned status %d", resp.StatusCode)
	}
	return nil
}
