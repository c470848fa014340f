package handler

import (
	"dronetracker/internal/dto"
	"dronetracker/internal/logger"
	"dronetracker/internal/repository"
	"encoding/json"
	"net/http"
	"strconv"
)

const (
	defaultFlightsLimit = 20
	defaultTicksLimit   = 500
)

// GetFlightsHandler returns the most recent flights from the flight log.
func GetFlightsHandler(flightRepo repository.FlightRepository, logger *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		limit := atoiDefault(r.URL.Query().Get("limit"), defaultFlightsLimit)

		flights, err := flightRepo.GetAll(limit)
		if err != nil {
			logger.Error("Error querying flights from database: %v", err)
			http.Error(w, "Internal Server Error", http.StatusInternalServerError)
			return
		}

		data := dto.FlightsData{
			Flights: make([]dto.FlightInfo, 0, len(flights)),
			Length:  len(flights),
			Limit:   limit,
		}
		for _, f := range flights {
			data.Flights = append(data.Flights, dto.NewFlightInfo(f))
		}

		writeJSON(w, data, logger)
	}
}

// GetFlightTicksHandler returns the recorded ticks of the flight given by the "id" query parameter.
func GetFlightTicksHandler(flightRepo repository.FlightRepository, tickRepo repository.TickRepository,
	logger *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		id, err := strconv.ParseInt(q.Get("id"), 10, 64)
		if err != nil || id <= 0 {
			http.Error(w, "Flight id required", http.StatusBadRequest)
			return
		}
		limit := atoiDefault(q.Get("limit"), defaultTicksLimit)

		flight, err := flightRepo.GetByID(id)
		if err != nil {
			logger.Error("Error querying flight %d: %v", id, err)
			http.Error(w, "Internal Server Error", http.StatusInternalServerError)
			return
		}
		if flight == nil {
			http.Error(w, "Flight not found", http.StatusNotFound)
			return
		}

		ticks, err := tickRepo.GetByFlightID(id, limit)
		if err != nil {
			logger.Error("Error querying ticks of flight %d: %v", id, err)
			http.Error(w, "Internal Server Error", http.StatusInternalServerError)
			return
		}

		total, err := tickRepo.CountByFlightID(id)
		if err != nil {
			logger.Error("Error counting ticks of flight %d: %v", id, err)
			total = len(ticks)
		}

		writeJSON(w, dto.TicksData{
			Flight: dto.NewFlightInfo(*flight),
			Ticks:  ticks,
			Total:  total,
			Limit:  limit,
		}, logger)
	}
}

func writeJSON(w http.ResponseWriter, v any, logger *logger.Logger) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(v); err != nil {
		logger.Error("Error encoding JSON response: %v", err)
	}
}

// atoiDefault converts string to int or returns a default when conversion fails or value <= 0.
func atoiDefault(s string, def int) int {
	if v, err := strconv.Atoi(s); err == nil && v > 0 {
		return v
	}
	return def
}
