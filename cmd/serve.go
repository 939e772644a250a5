package main

import (
	"encoding/json"
	"fmt"
	"net/http"
	"os/signal"
	"strconv"
	"syscall"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"
	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/geowerk/plzatlas/internal/app"
	"github.com/geowerk/plzatlas/internal/ledger"
)

var servePort int

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the query, rating, and layer surface over HTTP",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		a := app.New(cfg)
		if err := a.Load(ctx); err != nil {
			return err
		}

		r := chi.NewRouter()
		r.Use(cors.Handler(cors.Options{
			AllowedOrigins: []string{"*"},
			AllowedMethods: []string{"GET", "POST", "OPTIONS"},
			AllowedHeaders: []string{"Content-Type"},
		}))
		if cfg.Server.RatePerSecond > 0 {
			r.Use(rateLimit(rate.NewLimiter(rate.Limit(cfg.Server.RatePerSecond), cfg.Server.RateBurst)))
		}

		r.Get("/health", func(w http.ResponseWriter, _ *http.Request) {
			writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
		})
		r.Get("/api/query", handleQuery(a))
		r.Post("/api/ratings", handleSubmitRating(a))
		r.Get("/api/ratings/{plz}", handleRatingSummary(a))
		r.Get("/api/layers/{name}", handleLayer(a))

		port := servePort
		if port == 0 {
			port = cfg.Server.Port
		}

		srv := &http.Server{
			Addr:    fmt.Sprintf(":%d", port),
			Handler: r,
		}

		// Graceful shutdown
		go func() {
			<-ctx.Done()
			zap.L().Info("shutting down server")
			_ = srv.Shutdown(ctx)
		}()

		zap.L().Info("starting server", zap.Int("port", port))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			return eris.Wrap(err, "server listen")
		}

		return nil
	},
}

// queryResponse is the wire shape of one pincode query. Messages explain a
// fallback to the unfiltered datasets; rows are never empty for loaded data.
type queryResponse struct {
	ResidentsMessage string        `json:"residents_message,omitempty"`
	StationsMessage  string        `json:"stations_message,omitempty"`
	Residents        []residentRow `json:"residents"`
	Stations         []stationRow  `json:"stations"`
}

type residentRow struct {
	PLZ       int `json:"plz"`
	Einwohner int `json:"einwohner"`
}

type stationRow struct {
	PLZ    int `json:"plz"`
	Number int `json:"number"`
}

func handleQuery(a *app.App) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		res, err := a.SubmitPincodeQuery(r.URL.Query().Get("pincode"))
		if err != nil {
			zap.L().Error("query failed", zap.Error(err))
			writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "query failed"})
			return
		}

		resp := queryResponse{
			ResidentsMessage: res.ResidentsMessage,
			StationsMessage:  res.StationsMessage,
			Residents:        make([]residentRow, len(res.Residents)),
			Stations:         make([]stationRow, len(res.Stations)),
		}
		for i, rec := range res.Residents {
			resp.Residents[i] = residentRow{PLZ: rec.PLZ, Einwohner: rec.Residents}
		}
		for i, rec := range res.Stations {
			resp.Stations[i] = stationRow{PLZ: rec.PLZ, Number: rec.Number}
		}
		writeJSON(w, http.StatusOK, resp)
	}
}

func handleSubmitRating(a *app.App) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			PLZ    int    `json:"plz"`
			Rating int    `json:"rating"`
			Review string `json:"review"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
			return
		}

		sub, err := a.SubmitRating(req.PLZ, req.Rating, req.Review)
		if err != nil {
			if eris.Is(err, ledger.ErrInvalidRating) {
				writeJSON(w, http.StatusBadRequest, map[string]string{"error": "rating must be between 1 and 5"})
				return
			}
			zap.L().Error("rating submit failed", zap.Error(err))
			writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "submit failed"})
			return
		}
		writeJSON(w, http.StatusCreated, sub)
	}
}

func handleRatingSummary(a *app.App) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		plz, err := strconv.Atoi(chi.URLParam(r, "plz"))
		if err != nil {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid pincode"})
			return
		}
		writeJSON(w, http.StatusOK, a.RatingSummary(plz))
	}
}

func handleLayer(a *app.App) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		name := chi.URLParam(r, "name")
		results := a.RenderLayers([]string{name})
		if results[0].Err != nil {
			writeJSON(w, http.StatusNotFound, map[string]string{"error": "unknown layer: " + name})
			return
		}
		writeJSON(w, http.StatusOK, results[0].Artifact)
	}
}

// rateLimit applies a process-wide token bucket to all requests.
func rateLimit(limiter *rate.Limiter) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if !limiter.Allow() {
				writeJSON(w, http.StatusTooManyRequests, map[string]string{"error": "rate limit exceeded"})
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func init() {
	serveCmd.Flags().IntVar(&servePort, "port", 0, "server port (default from config)")
	rootCmd.AddCommand(serveCmd)
}
