package route

import (
	"context"
	"dronetracker/internal/handler"
	"dronetracker/internal/logger"
	"dronetracker/internal/repository"
	hub "dronetracker/internal/service/websocket"
	"net/http"
	"os"
	"path/filepath"
)

// dynamicHTMLHandler serves /path as <dir>/path.html if the file exists; otherwise 404.
func dynamicHTMLHandler(dir string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		path := r.URL.Path

		if path == "/" {
			path = "/index"
		}

		filePath := filepath.Join(dir, filepath.Clean("/"+path)+".html")

		if _, err := os.Stat(filePath); os.IsNotExist(err) {
			http.NotFound(w, r)
			return
		}

		http.ServeFile(w, r, filePath)
	}
}

// SetupRoutes registers the viewer page, the viewer stream, the stop endpoint,
// the flight log API and the log file endpoints. staticDir holds the pages.
func SetupRoutes(viewers *hub.HubService, stop context.CancelFunc, logger *logger.Logger,
	flightRepo repository.FlightRepository, tickRepo repository.TickRepository, staticDir string) http.Handler {
	mux := http.NewServeMux()

	// Static files
	mux.Handle("/static/", http.StripPrefix("/static/", http.FileServer(http.Dir(staticDir))))

	// API endpoints
	mux.HandleFunc("/api/view", handler.ViewWebsocketHandler(viewers, logger))
	mux.HandleFunc("/api/stop", handler.StopHandler(stop, logger))
	mux.HandleFunc("/api/flights", handler.GetFlightsHandler(flightRepo, logger))
	mux.HandleFunc("/api/flights/ticks", handler.GetFlightTicksHandler(flightRepo, tickRepo, logger))

	// Log endpoints
	for _, level := range []string{"info", "warning", "error"} {
		mux.HandleFunc("/logs/"+level, handler.ShowLogsHandler(level, logger))
		mux.HandleFunc("/logs/"+level+"/clear", handler.ClearLogsHandler(level, logger))
	}

	mux.HandleFunc("/", dynamicHTMLHandler(staticDir))

	return mux
}
