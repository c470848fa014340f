package handler

import (
	"context"
	"dronetracker/internal/logger"
	"encoding/json"
	"net/http"
)

// StopHandler raises the stop signal. The control loop lands the drone at
// the end of its current tick; repeated requests are harmless.
func StopHandler(stop context.CancelFunc, logger *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			w.Header().Set("Allow", http.MethodPost)
			http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
			return
		}

		logger.Info("Stop requested by %s", r.RemoteAddr)
		stop()

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusAccepted)
		json.NewEncoder(w).Encode(map[string]string{"status": "landing"})
	}
}
