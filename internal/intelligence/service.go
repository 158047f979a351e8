package intelligence

import (
	"context"
	"fmt"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/sells-group/scout/internal/resilience"
	"github.com/sells-group/scout/pkg/anthropic"
)

// ServiceConfig tunes the research service.
type ServiceConfig struct {
	Model             string
	MaxTokens         int64
	RequestsPerMinute int

	// Retry overrides the default backoff for transient API failures.
	Retry resilience.RetryConfig
}

// Result is a parsed research response. Exactly one of the level fields
// is set, matching Level.
type Result struct {
	Level              Level
	TAMScreening       *TAMScreeningResult
	AccountBuilding    *AccountBuildingResult
	OpportunityMapping *OpportunityMappingResult
	Monitoring         *MonitoringResult
	Usage              anthropic.TokenUsage
}

// Service runs LLM research requests against the Anthropic API.
type Service struct {
	client    anthropic.Client
	model     string
	maxTokens int64
	limiter   *rate.Limiter
	retry     resilience.RetryConfig
	breaker   *resilience.CircuitBreaker
}

func NewService(client anthropic.Client, cfg ServiceConfig) *Service {
	if cfg.MaxTokens <= 0 {
		cfg.MaxTokens = 4096
	}
	if cfg.RequestsPerMinute <= 0 {
		cfg.RequestsPerMinute = 30
	}
	retry := cfg.Retry
	if retry.MaxAttempts <= 0 {
		retry = resilience.DefaultRetryConfig()
	}
	retry.OnRetry = resilience.RetryLogger("anthropic", "create_message")
	breakerCfg := resilience.DefaultCircuitBreakerConfig()
	breakerCfg.OnStateChange = func(from, to resilience.CircuitState) {
		zap.L().Warn("anthropic circuit state changed",
			zap.Stringer("from", from),
			zap.Stringer("to", to))
	}
	return &Service{
		client:    client,
		model:     cfg.Model,
		maxTokens: cfg.MaxTokens,
		limiter:   rate.NewLimiter(rate.Limit(float64(cfg.RequestsPerMinute)/60.0), 1),
		retry:     retry,
		breaker:   resilience.NewCircuitBreaker(breakerCfg),
	}
}

// Research runs a single research request and parses the response into
// the level's result type.
func (s *Service) Research(ctx context.Context, req Request) (*Result, error) {
	if !ValidLevel(req.Level) {
		return nil, eris.Errorf("intelligence: unknown research level %q", req.Level)
	}

	msgReq, err := s.messageRequest(req)
	if err != nil {
		return nil, err
	}

	if err := s.limiter.Wait(ctx); err != nil {
		return nil, eris.Wrap(err, "intelligence: rate limit wait")
	}

	resp, err := resilience.ExecuteVal(ctx, s.breaker, func(ctx context.Context) (*anthropic.MessageResponse, error) {
		return resilience.DoVal(ctx, s.retry, func(ctx context.Context) (*anthropic.MessageResponse, error) {
			return s.client.CreateMessage(ctx, msgReq)
		})
	})
	if err != nil {
		return nil, eris.Wrapf(err, "intelligence: research %s for %s", req.Level, req.Target.Name)
	}
	resp.Usage.LogCost(s.model, string(req.Level))

	return s.parseResponse(req.Level, resp)
}

// BulkOutcome reports one batch item from BulkResearch, keyed back to
// the request index it was built from.
type BulkOutcome struct {
	Index  int
	Result *Result
	Err    error
}

// BulkResearch submits many research requests through the batch API and
// waits for completion. Per-item parse or batch failures land in the
// corresponding BulkOutcome; only submission and polling errors fail the
// call as a whole.
func (s *Service) BulkResearch(ctx context.Context, reqs []Request, opts ...anthropic.PollOption) ([]BulkOutcome, error) {
	if len(reqs) == 0 {
		return nil, nil
	}

	// Warm the prompt cache once so every batch item reads it back.
	primer, err := s.messageRequest(reqs[0])
	if err != nil {
		return nil, err
	}
	if _, err := anthropic.PrimerRequest(ctx, s.client, primer); err != nil {
		zap.L().Warn("intelligence: cache primer failed", zap.Error(err))
	}

	items := make([]anthropic.BatchRequestItem, 0, len(reqs))
	for i, req := range reqs {
		msgReq, err := s.messageRequest(req)
		if err != nil {
			return nil, eris.Wrapf(err, "intelligence: batch item %d", i)
		}
		items = append(items, anthropic.BatchRequestItem{
			CustomID: customID(i),
			Params:   msgReq,
		})
	}

	batch, err := s.client.CreateBatch(ctx, anthropic.BatchRequest{Requests: items})
	if err != nil {
		return nil, eris.Wrap(err, "intelligence: create research batch")
	}
	zap.L().Info("research batch submitted",
		zap.String("batch_id", batch.ID),
		zap.Int("requests", len(items)))

	if _, err := anthropic.PollBatch(ctx, s.client, batch.ID, opts...); err != nil {
		return nil, eris.Wrapf(err, "intelligence: poll batch %s", batch.ID)
	}

	iter, err := s.client.GetBatchResults(ctx, batch.ID)
	if err != nil {
		return nil, eris.Wrapf(err, "intelligence: fetch batch results %s", batch.ID)
	}
	collected, err := anthropic.CollectBatchResultsDetailed(iter)
	if err != nil {
		return nil, err
	}

	outcomes := make([]BulkOutcome, len(reqs))
	for i, req := range reqs {
		outcomes[i].Index = i
		resp, ok := collected.Succeeded[customID(i)]
		if !ok {
			outcomes[i].Err = eris.Errorf("intelligence: batch item for %s did not succeed", req.Target.Name)
			continue
		}
		outcomes[i].Result, outcomes[i].Err = s.parseResponse(req.Level, resp)
	}
	return outcomes, nil
}

func (s *Service) messageRequest(req Request) (anthropic.MessageRequest, error) {
	prompt, err := BuildPrompt(req)
	if err != nil {
		return anthropic.MessageRequest{}, eris.Wrap(err, "intelligence: build prompt")
	}
	return anthropic.MessageRequest{
		Model:     s.model,
		MaxTokens: s.maxTokens,
		System:    anthropic.BuildCachedSystemBlocks(systemPrompt),
		Messages:  []anthropic.Message{{Role: "user", Content: prompt}},
	}, nil
}

func (s *Service) parseResponse(level Level, resp *anthropic.MessageResponse) (*Result, error) {
	parsed, err := Parse(level, responseText(resp))
	if err != nil {
		return nil, err
	}

	res := &Result{Level: level, Usage: resp.Usage}
	switch v := parsed.(type) {
	case *TAMScreeningResult:
		res.TAMScreening = v
	case *AccountBuildingResult:
		res.AccountBuilding = v
	case *OpportunityMappingResult:
		res.OpportunityMapping = v
	case *MonitoringResult:
		res.Monitoring = v
	}
	return res, nil
}

// responseText concatenates all text content blocks.
func responseText(resp *anthropic.MessageResponse) string {
	if resp == nil {
		return ""
	}
	var out string
	for _, b := range resp.Content {
		if b.Type == "" || b.Type == "text" {
			out += b.Text
		}
	}
	return out
}

func customID(i int) string {
	return fmt.Sprintf("research-%d", i)
}
