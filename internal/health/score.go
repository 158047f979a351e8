// Package health computes profile-weighted account health scores from
// observable signals. Scores are banded composites: four weighted
// components per profile, each mapped onto its weight through monotonic
// threshold bands, summing to a 0-100 composite.
package health

import (
	"fmt"

	"github.com/sells-group/scout/internal/model"
)

// Outbound profile weights.
const (
	weightEngagement   = 25
	weightMomentum     = 25
	weightRisk         = 25
	weightIntelligence = 25
)

// Inbound profile weights.
const (
	weightSentiment          = 40
	weightUsage              = 30
	weightSupport            = 20
	weightCustomerEngagement = 10
)

// OutboundInputs are the raw signals for prospect-like accounts.
type OutboundInputs struct {
	DaysSinceContact int
	ContactCount30d  int
	StageMovement    int // -3..+3 stage transitions over 30 days
	OpenRisks        int
	CriticalRisks    int
	ActiveThemes     int
	Stakeholders     int
	Signals30d       int
}

// InboundInputs are the raw signals for customer-like accounts. Nil
// pointer inputs mean the signal is legitimately absent and score the
// lowest band; they are never an error.
type InboundInputs struct {
	NPS              *float64
	CSAT             *float64
	UsagePct         *float64
	CriticalOverdue  int
	HighOverdue      int
	DaysSinceContact int
	ContactCount30d  int
}

// Score is a computed composite before persistence.
type Score struct {
	Profile    model.Profile
	Total      int
	Band       model.Band
	Components []model.ScoreComponent
}

// ComputeOutbound scores a prospect-like account. Deterministic and
// total: any input combination yields a composite in [0, 100].
func ComputeOutbound(in OutboundInputs) Score {
	components := []model.ScoreComponent{
		engagementComponent(in.DaysSinceContact, in.ContactCount30d),
		momentumComponent(in.StageMovement),
		riskComponent(in.OpenRisks, in.CriticalRisks),
		intelligenceComponent(in.ActiveThemes, in.Stakeholders, in.Signals30d),
	}
	return compose(model.ProfileOutbound, components)
}

// ComputeInbound scores a customer-like account.
func ComputeInbound(in InboundInputs) Score {
	components := []model.ScoreComponent{
		sentimentComponent(in.NPS, in.CSAT),
		usageComponent(in.UsagePct),
		supportComponent(in.CriticalOverdue, in.HighOverdue),
		customerEngagementComponent(in.DaysSinceContact, in.ContactCount30d),
	}
	return compose(model.ProfileInbound, components)
}

// BandFor maps a composite score onto the qualitative health band.
func BandFor(total int) model.Band {
	switch {
	case total >= 80:
		return model.BandHealthy
	case total >= 60:
		return model.BandMonitor
	case total >= 40:
		return model.BandAtRisk
	default:
		return model.BandCritical
	}
}

func compose(profile model.Profile, components []model.ScoreComponent) Score {
	total := 0
	maxTotal := 0
	for _, c := range components {
		total += c.Score
		maxTotal += c.Max
	}
	if total < 0 {
		total = 0
	}
	if total > maxTotal {
		total = maxTotal
	}
	return Score{
		Profile:    profile,
		Total:      total,
		Band:       BandFor(total),
		Components: components,
	}
}

// engagementComponent scores contact recency and frequency. Either a
// very recent touch or a sustained cadence earns the full band.
func engagementComponent(daysSince, count30d int) model.ScoreComponent {
	var recency int
	switch {
	case daysSince <= 3:
		recency = 25
	case daysSince <= 7:
		recency = 20
	case daysSince <= 14:
		recency = 12
	case daysSince <= 30:
		recency = 6
	}

	var frequency int
	switch {
	case count30d >= 6:
		frequency = 20
	case count30d >= 3:
		frequency = 12
	case count30d >= 1:
		frequency = 6
	}

	score := recency
	if frequency > score {
		score = frequency
	}

	return model.ScoreComponent{
		Name:        "engagement",
		Score:       score,
		Max:         weightEngagement,
		Explanation: fmt.Sprintf("last contact %dd ago, %d touches in 30d", daysSince, count30d),
	}
}

// momentumComponent scores deal-stage movement over the last 30 days.
func momentumComponent(movement int) model.ScoreComponent {
	movement = clamp(movement, -3, 3)

	var score int
	switch {
	case movement >= 2:
		score = 25
	case movement == 1:
		score = 18
	case movement == 0:
		score = 12
	case movement == -1:
		score = 6
	}

	return model.ScoreComponent{
		Name:        "momentum",
		Score:       score,
		Max:         weightMomentum,
		Explanation: fmt.Sprintf("%+d stage transitions over 30d", movement),
	}
}

// riskComponent scores inverse risk load. Any open critical risk zeroes
// the band.
func riskComponent(open, critical int) model.ScoreComponent {
	var score int
	switch {
	case critical >= 1:
		score = 0
	case open == 0:
		score = 25
	case open <= 2:
		score = 15
	default:
		score = 8
	}

	return model.ScoreComponent{
		Name:        "risk",
		Score:       score,
		Max:         weightRisk,
		Explanation: fmt.Sprintf("%d open risks, %d critical", open, critical),
	}
}

// intelligenceComponent scores research coverage: active themes, mapped
// stakeholders, and recent signals.
func intelligenceComponent(themes, stakeholders, signals int) model.ScoreComponent {
	var themeScore int
	switch {
	case themes >= 2:
		themeScore = 8
	case themes == 1:
		themeScore = 5
	}

	var stakeholderScore int
	switch {
	case stakeholders >= 3:
		stakeholderScore = 7
	case stakeholders >= 1:
		stakeholderScore = 4
	}

	var signalScore int
	switch {
	case signals >= 3:
		signalScore = 10
	case signals >= 1:
		signalScore = 6
	}

	return model.ScoreComponent{
		Name:        "intelligence",
		Score:       themeScore + stakeholderScore + signalScore,
		Max:         weightIntelligence,
		Explanation: fmt.Sprintf("%d active themes, %d stakeholders mapped, %d signals in 30d", themes, stakeholders, signals),
	}
}

// sentimentComponent scores NPS/CSAT. The better of the two available
// survey reads wins; no survey data at all scores zero.
func sentimentComponent(nps, csat *float64) model.ScoreComponent {
	score := 0
	detail := "no survey data"

	if nps != nil {
		var s int
		switch {
		case *nps >= 50:
			s = 40
		case *nps >= 30:
			s = 32
		case *nps >= 0:
			s = 22
		default:
			s = 10
		}
		score = s
		detail = fmt.Sprintf("NPS %.0f", *nps)
	}
	if csat != nil {
		var s int
		switch {
		case *csat >= 90:
			s = 40
		case *csat >= 75:
			s = 32
		case *csat >= 60:
			s = 22
		default:
			s = 10
		}
		if s > score {
			score = s
		}
		if nps != nil {
			detail = fmt.Sprintf("NPS %.0f, CSAT %.0f", *nps, *csat)
		} else {
			detail = fmt.Sprintf("CSAT %.0f", *csat)
		}
	}

	return model.ScoreComponent{
		Name:        "sentiment",
		Score:       score,
		Max:         weightSentiment,
		Explanation: detail,
	}
}

// usageComponent scores product usage percentage; absent analytics
// scores zero.
func usageComponent(pct *float64) model.ScoreComponent {
	score := 0
	detail := "no usage data"
	if pct != nil {
		switch {
		case *pct >= 80:
			score = 30
		case *pct >= 60:
			score = 22
		case *pct >= 40:
			score = 14
		case *pct >= 20:
			score = 7
		}
		detail = fmt.Sprintf("usage %.0f%%", *pct)
	}

	return model.ScoreComponent{
		Name:        "usage",
		Score:       score,
		Max:         weightUsage,
		Explanation: detail,
	}
}

// supportComponent scores overdue support load. An overdue critical
// zeroes the band.
func supportComponent(criticalOverdue, highOverdue int) model.ScoreComponent {
	var score int
	switch {
	case criticalOverdue >= 1:
		score = 0
	case highOverdue == 0:
		score = 20
	case highOverdue == 1:
		score = 12
	case highOverdue == 2:
		score = 6
	}

	return model.ScoreComponent{
		Name:        "support",
		Score:       score,
		Max:         weightSupport,
		Explanation: fmt.Sprintf("%d critical and %d high risks overdue", criticalOverdue, highOverdue),
	}
}

// customerEngagementComponent is the inbound contact-cadence band.
func customerEngagementComponent(daysSince, count30d int) model.ScoreComponent {
	var recency int
	switch {
	case daysSince <= 7:
		recency = 6
	case daysSince <= 14:
		recency = 4
	case daysSince <= 30:
		recency = 2
	}

	var frequency int
	switch {
	case count30d >= 4:
		frequency = 4
	case count30d >= 2:
		frequency = 3
	case count30d >= 1:
		frequency = 2
	}

	score := recency + frequency
	if score > weightCustomerEngagement {
		score = weightCustomerEngagement
	}

	return model.ScoreComponent{
		Name:        "engagement",
		Score:       score,
		Max:         weightCustomerEngagement,
		Explanation: fmt.Sprintf("last contact %dd ago, %d touches in 30d", daysSince, count30d),
	}
}

// Pursuit stages in pipeline order, used to derive stage movement.
var stageOrder = []string{
	"discovery",
	"qualification",
	"proposal",
	"negotiation",
	"closed_won",
}

// StageMovement computes stage transitions between a prior stage and the
// current one, clamped to [-3, 3]. A nil or unknown prior stage means no
// movement signal.
func StageMovement(prior *string, now string) int {
	if prior == nil {
		return 0
	}
	before := stageIndex(*prior)
	after := stageIndex(now)
	if before < 0 || after < 0 {
		return 0
	}
	return clamp(after-before, -3, 3)
}

func stageIndex(stage string) int {
	for i, s := range stageOrder {
		if s == stage {
			return i
		}
	}
	return -1
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
