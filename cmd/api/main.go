package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/go-chi/chi/v5"
	"github.com/joho/godotenv"

	"chat-insights-go/internal/config"
	"chat-insights-go/internal/dataset"
	"chat-insights-go/internal/engine"
	"chat-insights-go/internal/logger"
	"chat-insights-go/internal/snapshot"
	"chat-insights-go/internal/trends"
	"chat-insights-go/internal/types"
)

type evaluateRequest struct {
	Conversations []types.RawConversation `json:"conversations"`
	UsageCounters types.UsageCounters     `json:"usage_counters"`
	Date          string                  `json:"date,omitempty"`
}

func main() {
	_ = godotenv.Load() // loads .env

	cfg, err := config.Load()
	if err != nil {
		logger.New().WithError(err).Fatal("failed to load config")
	}

	log := logger.NewWithLevel(cfg.LogLevel)
	log.WithField("service", "chat-insights-go").Info("starting service")

	store, err := snapshot.OpenBolt(cfg.Store.Path)
	if err != nil {
		log.WithError(err).Fatal("failed to open snapshot store")
	}
	defer store.Close()
	log.WithField("store_path", cfg.Store.Path).Info("snapshot store ready")

	eng := engine.New(cfg)

	r := chi.NewRouter()

	// health
	r.Get("/healthz", func(w http.ResponseWriter, req *http.Request) {
		logger.New().WithRequest(req).Info("health check")
		fmt.Fprint(w, "ok")
	})

	// evaluate one batch and persist the resulting snapshot
	r.Post("/evaluate", func(w http.ResponseWriter, req *http.Request) {
		reqLog := logger.New().WithRequest(req).WithField("handler", "evaluate")

		var body evaluateRequest
		if err := json.NewDecoder(req.Body).Decode(&body); err != nil {
			reqLog.WithError(err).Warn("bad request body")
			http.Error(w, "invalid JSON body", http.StatusBadRequest)
			return
		}
		reqLog = reqLog.WithField("date", body.Date).WithField("sample_size", len(body.Conversations))

		prior, err := store.Get(req.Context(), body.Date)
		if err != nil && !errors.Is(err, snapshot.ErrNotFound) {
			reqLog.WithError(err).Error("prior snapshot lookup failed")
			http.Error(w, "store unavailable", http.StatusServiceUnavailable)
			return
		}

		start := time.Now()
		snap, err := eng.Evaluate(req.Context(), body.Conversations, body.UsageCounters, body.Date, prior)
		if err != nil {
			reqLog.WithError(err).Warn("evaluation rejected")
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		reqLog.WithField("duration_ms", time.Since(start).Milliseconds()).Info("evaluation finished")

		// retry policy lives here, not in the engine: the store is external
		op := func() error { return store.Put(req.Context(), snap) }
		b := backoff.WithContext(backoff.WithMaxRetries(backoff.NewExponentialBackOff(), 3), req.Context())
		if err := backoff.Retry(op, b); err != nil {
			reqLog.WithError(err).Error("snapshot write failed")
			http.Error(w, "store unavailable", http.StatusServiceUnavailable)
			return
		}

		writeJSON(w, snap)
	})

	// list stored snapshots, most recent first
	r.Get("/snapshots", func(w http.ResponseWriter, req *http.Request) {
		reqLog := logger.New().WithRequest(req).WithField("handler", "snapshots")
		limit := 30
		if v := req.URL.Query().Get("limit"); v != "" {
			if n, err := strconv.Atoi(v); err == nil && n > 0 {
				limit = n
			}
		}
		snaps, err := store.List(req.Context(), limit)
		if err != nil {
			reqLog.WithError(err).Error("list failed")
			http.Error(w, "store unavailable", http.StatusServiceUnavailable)
			return
		}
		writeJSON(w, snaps)
	})

	// one snapshot by date; "all-time" fetches the undated aggregate
	r.Get("/snapshots/{date}", func(w http.ResponseWriter, req *http.Request) {
		reqLog := logger.New().WithRequest(req).WithField("handler", "snapshot")
		date := chi.URLParam(req, "date")
		if date == "all-time" {
			date = ""
		}
		snap, err := store.Get(req.Context(), date)
		if errors.Is(err, snapshot.ErrNotFound) {
			http.Error(w, "snapshot not found", http.StatusNotFound)
			return
		}
		if err != nil {
			reqLog.WithError(err).Error("get failed")
			http.Error(w, "store unavailable", http.StatusServiceUnavailable)
			return
		}
		writeJSON(w, snap)
	})

	// quality trend across stored snapshots
	r.Get("/trend", func(w http.ResponseWriter, req *http.Request) {
		reqLog := logger.New().WithRequest(req).WithField("handler", "trend")
		snaps, err := store.List(req.Context(), 0)
		if err != nil {
			reqLog.WithError(err).Error("list failed")
			http.Error(w, "store unavailable", http.StatusServiceUnavailable)
			return
		}
		writeJSON(w, trends.Analyze(snaps))
	})

	// pairwise comparison of two stored snapshots
	r.Get("/compare", func(w http.ResponseWriter, req *http.Request) {
		reqLog := logger.New().WithRequest(req).WithField("handler", "compare")
		a := req.URL.Query().Get("a")
		b := req.URL.Query().Get("b")
		if a == "" || b == "" {
			http.Error(w, "missing a or b snapshot id", http.StatusBadRequest)
			return
		}
		snaps, err := store.List(req.Context(), 0)
		if err != nil {
			reqLog.WithError(err).Error("list failed")
			http.Error(w, "store unavailable", http.StatusServiceUnavailable)
			return
		}
		res, err := trends.Compare(snaps, a, b)
		if err != nil {
			http.Error(w, err.Error(), http.StatusNotFound)
			return
		}
		writeJSON(w, res)
	})

	// demo endpoint (evaluate the bundled transcript dataset, no persistence)
	r.Get("/demo", func(w http.ResponseWriter, req *http.Request) {
		reqLog := logger.New().WithRequest(req).WithField("handler", "demo")
		convs, err := dataset.Load(cfg.Dataset.Path)
		if err != nil {
			reqLog.WithError(err).Error("dataset load error")
			http.Error(w, "dataset load error", http.StatusInternalServerError)
			return
		}
		reqLog.WithField("conversations", len(convs)).Info("dataset loaded")
		snap, err := eng.Evaluate(req.Context(), convs, types.UsageCounters{}, "", nil)
		if err != nil {
			reqLog.WithError(err).Error("demo evaluation failed")
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}
		writeJSON(w, snap)
	})

	addr := fmt.Sprintf(":%s", cfg.Server.Port)
	srv := &http.Server{
		Addr:         addr,
		Handler:      r,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 60 * time.Second,
		IdleTimeout:  120 * time.Second,
	}
	log.WithField("addr", addr).Info("listening")
	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		log.WithError(err).Fatal("server terminated")
	}
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	_ = enc.Encode(v)
}
