package main

import (
	"encoding/json"
	"fmt"
	"net/http"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/sells-group/scout/internal/gap"
	"github.com/sells-group/scout/internal/health"
	"github.com/sells-group/scout/internal/match"
	"github.com/sells-group/scout/internal/model"
	"github.com/sells-group/scout/internal/monitoring"
	"github.com/sells-group/scout/internal/reconcile"
	"github.com/sells-group/scout/internal/store"
)

var servePort int

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the planning API server",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		if err := cfg.Validate("serve"); err != nil {
			return err
		}
		policy, err := cfg.Import.Policy()
		if err != nil {
			return err
		}

		st, err := initStore(ctx)
		if err != nil {
			return err
		}
		defer st.Close()

		api := &apiServer{
			store:     st,
			policy:    policy,
			batchSize: cfg.Import.BatchSize,
		}

		if cfg.Monitoring.Enabled {
			staleAfter := time.Duration(cfg.Monitoring.StaleAfterHours) * time.Hour
			checker := monitoring.NewChecker(
				monitoring.NewCollector(st, staleAfter),
				monitoring.NewAlerter(cfg.Monitoring),
				cfg.Monitoring,
			)
			go checker.Run(ctx)
		}

		port := servePort
		if port == 0 {
			port = cfg.Server.Port
		}

		srv := &http.Server{
			Addr:    fmt.Sprintf(":%d", port),
			Handler: api.router(),
		}

		// Graceful shutdown
		go func() {
			<-ctx.Done()
			zap.L().Info("shutting down server")
			srv.Shutdown(ctx)
		}()

		zap.L().Info("starting server", zap.Int("port", port))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			return eris.Wrap(err, "server listen")
		}

		return nil
	},
}

type apiServer struct {
	store     store.Store
	policy    match.CollisionPolicy
	batchSize int
}

func (s *apiServer) router() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Content-Type"},
	}))

	r.Get("/health", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	r.Route("/api", func(r chi.Router) {
		r.Post("/import/preview", s.handleImportPreview)
		r.Post("/import/apply", s.handleImportApply)
		r.Get("/accounts", s.handleListAccounts)
		r.Get("/accounts/{planID}/health", s.handleGetHealth)
		r.Post("/accounts/{planID}/health", s.handleComputeHealth)
		r.Get("/gaps", s.handleGaps)
	})

	return r
}

func (s *apiServer) handleImportPreview(w http.ResponseWriter, r *http.Request) {
	records, ok := decodeImportBody(w, r)
	if !ok {
		return
	}

	result, err := reconcile.New(s.store, s.policy).Preview(r.Context(), records)
	if err != nil {
		if eris.Is(err, match.ErrKeyCollision) {
			writeError(w, http.StatusUnprocessableEntity, err.Error())
			return
		}
		zap.L().Error("import preview failed", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "preview failed")
		return
	}
	writeJSON(w, http.StatusOK, result)
}

func (s *apiServer) handleImportApply(w http.ResponseWriter, r *http.Request) {
	records, ok := decodeImportBody(w, r)
	if !ok {
		return
	}

	rec := reconcile.New(s.store, s.policy)
	preview, err := rec.Preview(r.Context(), records)
	if err != nil {
		if eris.Is(err, match.ErrKeyCollision) {
			writeError(w, http.StatusUnprocessableEntity, err.Error())
			return
		}
		zap.L().Error("import preview failed", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "preview failed")
		return
	}

	outcome, err := rec.Apply(r.Context(), preview.Changes, reconcile.Options{BatchSize: s.batchSize})
	if err != nil {
		zap.L().Error("import apply failed", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "apply failed")
		return
	}
	writeJSON(w, http.StatusOK, outcome)
}

func (s *apiServer) handleListAccounts(w http.ResponseWriter, r *http.Request) {
	filter := store.TAMFilter{
		Status:   model.TAMStatus(r.URL.Query().Get("status")),
		Vertical: r.URL.Query().Get("vertical"),
	}
	if v := r.URL.Query().Get("limit"); v != "" {
		limit, err := strconv.Atoi(v)
		if err != nil || limit < 0 {
			writeError(w, http.StatusBadRequest, "limit must be a non-negative integer")
			return
		}
		filter.Limit = limit
	}

	accounts, err := s.store.QueryTAMAccounts(r.Context(), filter)
	if err != nil {
		zap.L().Error("list accounts failed", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "list accounts failed")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"accounts": accounts,
		"count":    len(accounts),
	})
}

func (s *apiServer) handleGetHealth(w http.ResponseWriter, r *http.Request) {
	planID := chi.URLParam(r, "planID")

	snap, err := s.store.GetHealthSnapshot(r.Context(), planID)
	if err != nil {
		zap.L().Error("load snapshot failed", zap.String("account_plan_id", planID), zap.Error(err))
		writeError(w, http.StatusInternalServerError, "load snapshot failed")
		return
	}
	if snap == nil {
		writeError(w, http.StatusNotFound, "no health snapshot for account plan "+planID)
		return
	}
	writeJSON(w, http.StatusOK, snap)
}

func (s *apiServer) handleComputeHealth(w http.ResponseWriter, r *http.Request) {
	planID := chi.URLParam(r, "planID")

	snap, err := health.NewEngine(s.store).Snapshot(r.Context(), planID)
	if err != nil {
		if eris.Is(err, health.ErrDataUnavailable) {
			writeError(w, http.StatusNotFound, "account plan "+planID+" cannot be scored")
			return
		}
		zap.L().Error("health recompute failed", zap.String("account_plan_id", planID), zap.Error(err))
		writeError(w, http.StatusInternalServerError, "health recompute failed")
		return
	}
	writeJSON(w, http.StatusOK, snap)
}

func (s *apiServer) handleGaps(w http.ResponseWriter, r *http.Request) {
	filter := store.GoalFilter{
		Category:   r.URL.Query().Get("category"),
		ActiveOnly: true,
	}
	if v := r.URL.Query().Get("year"); v != "" {
		year, err := strconv.Atoi(v)
		if err != nil {
			writeError(w, http.StatusBadRequest, "year must be an integer")
			return
		}
		filter.TargetYear = year
	}

	goals, err := s.store.ListGoals(r.Context(), filter)
	if err != nil {
		zap.L().Error("list goals failed", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "list goals failed")
		return
	}

	pool, err := s.store.ListTAMAccounts(r.Context())
	if err != nil {
		zap.L().Error("list accounts failed", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "list accounts failed")
		return
	}
	addressable := pool[:0:0]
	for _, acct := range pool {
		if acct.Status != model.TAMStatusDisqualified {
			addressable = append(addressable, acct)
		}
	}

	writeJSON(w, http.StatusOK, gap.Aggregate(goals, addressable))
}

// decodeImportBody reads {"records": [...]} and rejects empty batches.
func decodeImportBody(w http.ResponseWriter, r *http.Request) ([]model.ImportRecord, bool) {
	var body struct {
		Records []model.ImportRecord `json:"records"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return nil, false
	}
	if len(body.Records) == 0 {
		writeError(w, http.StatusBadRequest, "records is required")
		return nil, false
	}
	return body.Records, true
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}

func init() {
	serveCmd.Flags().IntVar(&servePort, "port", 0, "server port (default from config)")
	rootCmd.AddCommand(serveCmd)
}
