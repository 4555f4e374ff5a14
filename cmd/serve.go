package main

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os/signal"
	"syscall"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var servePort int

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP API for campaign runs and lead operations",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		env, err := initEnv(ctx)
		if err != nil {
			return err
		}
		defer env.Close()

		mux := http.NewServeMux()

		mux.HandleFunc("GET /health", func(w http.ResponseWriter, r *http.Request) {
			if err := env.Store.Ping(r.Context()); err != nil {
				writeJSON(w, http.StatusServiceUnavailable, map[string]string{"status": "degraded"})
				return
			}
			writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
		})

		mux.HandleFunc("POST /campaigns/{id}/run", func(w http.ResponseWriter, r *http.Request) {
			id := r.PathValue("id")

			// Campaign runs are minutes-scale; the caller polls status.
			go func() {
				status, err := env.Runner.Run(ctx, id)
				if err != nil {
					zap.L().Error("campaign run failed",
						zap.String("campaign_id", id),
						zap.Error(err))
					return
				}
				zap.L().Info("campaign run finished",
					zap.String("campaign_id", id),
					zap.String("status", string(status)))
			}()

			writeJSON(w, http.StatusAccepted, map[string]string{
				"status":      "accepted",
				"campaign_id": id,
			})
		})

		mux.HandleFunc("GET /campaigns/{id}", func(w http.ResponseWriter, r *http.Request) {
			c, err := env.Store.GetCampaign(r.Context(), r.PathValue("id"))
			if err != nil {
				httpError(w, http.StatusInternalServerError, err)
				return
			}
			if c == nil {
				http.Error(w, `{"error":"campaign not found"}`, http.StatusNotFound)
				return
			}
			writeJSON(w, http.StatusOK, c)
		})

		mux.HandleFunc("POST /leads/{id}/convert", func(w http.ResponseWriter, r *http.Request) {
			var req struct {
				CustomerID string `json:"customer_id"`
			}
			if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.CustomerID == "" {
				http.Error(w, `{"error":"customer_id is required"}`, http.StatusBadRequest)
				return
			}

			l, err := env.Leads.Convert(r.Context(), r.PathValue("id"), req.CustomerID)
			if err != nil {
				httpError(w, http.StatusUnprocessableEntity, err)
				return
			}
			writeJSON(w, http.StatusOK, l)
		})

		mux.HandleFunc("POST /leads/{id}/registry", func(w http.ResponseWriter, r *http.Request) {
			blob, err := io.ReadAll(http.MaxBytesReader(w, r.Body, 1<<20))
			if err != nil {
				http.Error(w, `{"error":"body too large"}`, http.StatusRequestEntityTooLarge)
				return
			}

			if err := env.Leads.AttachRegistryData(r.Context(), r.PathValue("id"), blob); err != nil {
				httpError(w, http.StatusUnprocessableEntity, err)
				return
			}
			writeJSON(w, http.StatusOK, map[string]string{"status": "attached"})
		})

		port := servePort
		if port == 0 {
			port = cfg.Server.Port
		}

		srv := &http.Server{
			Addr:    fmt.Sprintf(":%d", port),
			Handler: mux,
		}

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

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func httpError(w http.ResponseWriter, status int, err error) {
	writeJSON(w, status, map[string]string{"error": err.Error()})
}

func init() {
	serveCmd.Flags().IntVar(&servePort, "port", 0, "server port (default from config)")
	rootCmd.AddCommand(serveCmd)
}
