package main

import (
	"encoding/json"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/NotCoffee418/gas_usage_estimator/pkg/estimator"
	"github.com/NotCoffee418/gas_usage_estimator/pkg/interpreter"
	"github.com/NotCoffee418/gas_usage_estimator/pkg/meterdb"
	"github.com/NotCoffee418/gas_usage_estimator/pkg/metrics"
	"github.com/NotCoffee418/gas_usage_estimator/pkg/reference"
	"github.com/NotCoffee418/gas_usage_estimator/pkg/types"
	"github.com/gorilla/websocket"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	log "github.com/sirupsen/logrus"
)

// Readings used by /estimate when no days parameter is given
const defaultEstimateDays = 2 * 365

type latestReadingSource interface {
	GetLatestReading() *interpreter.RawGasReading
}

type server struct {
	reader   latestReadingSource
	metrics  *metrics.Collector
	gatherer prometheus.Gatherer
	dataset  reference.Dataset
	now      func() time.Time

	upgrader websocket.Upgrader

	// ws clients for broadcasting live readings
	wsClients      map[*websocket.Conn]*sync.Mutex
	wsClientsMutex sync.RWMutex
}

func newServer(reader latestReadingSource, collector *metrics.Collector, gatherer prometheus.Gatherer, dataset reference.Dataset) *server {
	return &server{
		reader:   reader,
		metrics:  collector,
		gatherer: gatherer,
		dataset:  dataset,
		now:      time.Now,
		upgrader: websocket.Upgrader{
			CheckOrigin: func(r *http.Request) bool {
				return true // Allow all origins
			},
		},
		wsClients: make(map[*websocket.Conn]*sync.Mutex),
	}
}

func (s *server) routes() *http.ServeMux {
	mux := http.NewServeMux()
	mux.HandleFunc("/", s.handleIndex)
	mux.HandleFunc("/latest", s.handleLatest)
	mux.HandleFunc("/ws", s.handleWebSocket)
	mux.HandleFunc("/estimate", s.handleEstimate)
	mux.Handle("/metrics", promhttp.HandlerFor(s.gatherer, promhttp.HandlerOpts{}))
	return mux
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Printf("Failed to write response: %v", err)
	}
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"error": message})
}

func (s *server) handleIndex(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/" {
		writeError(w, http.StatusNotFound, "Not found")
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{
		"message": "Gas Usage Estimator API",
		"status":  "running",
	})
}

func (s *server) handleLatest(w http.ResponseWriter, r *http.Request) {
	reading := s.reader.GetLatestReading()
	if reading == nil {
		writeError(w, http.StatusNotFound, "No readings available yet")
		return
	}
	writeJSON(w, http.StatusOK, reading)
}

func (s *server) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("WebSocket upgrade error: %v", err)
		return
	}

	writeMutex := s.addWebSocketClient(conn)

	// Send current reading immediately if available
	if reading := s.reader.GetLatestReading(); reading != nil {
		if data, err := reading.ToJsonBytes(); err == nil {
			writeMutex.Lock()
			conn.WriteMessage(websocket.TextMessage, data)
			writeMutex.Unlock()
		}
	}

	// Keep connection alive
	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			s.removeWebSocketClient(conn)
			return
		}
	}
}

func (s *server) broadcast(reading *interpreter.RawGasReading) {
	data, err := reading.ToJsonBytes()
	if err != nil {
		log.Printf("Failed to encode gas reading: %v", err)
		return
	}

	s.wsClientsMutex.RLock()
	clients := make(map[*websocket.Conn]*sync.Mutex, len(s.wsClients))
	for client, writeMutex := range s.wsClients {
		clients[client] = writeMutex
	}
	s.wsClientsMutex.RUnlock()

	for client, writeMutex := range clients {
		writeMutex.Lock()
		err := client.WriteMessage(websocket.TextMessage, data)
		writeMutex.Unlock()
		if err != nil {
			s.removeWebSocketClient(client)
		}
	}
}

func (s *server) addWebSocketClient(conn *websocket.Conn) *sync.Mutex {
	writeMutex := &sync.Mutex{}
	s.wsClientsMutex.Lock()
	s.wsClients[conn] = writeMutex
	s.metrics.WebsocketClients.Set(float64(len(s.wsClients)))
	s.wsClientsMutex.Unlock()
	return writeMutex
}

func (s *server) removeWebSocketClient(conn *websocket.Conn) {
	s.wsClientsMutex.Lock()
	delete(s.wsClients, conn)
	s.metrics.WebsocketClients.Set(float64(len(s.wsClients)))
	s.wsClientsMutex.Unlock()
	conn.Close()
}

type estimateResponse struct {
	Dataset   string      `json:"dataset"`
	Mean      float64     `json:"yearly_usage_m3"`
	StdDev    float64     `json:"yearly_usage_stddev_m3"`
	Intervals int         `json:"intervals"`
	FitStatus string      `json:"fit_status"`
	Converged bool        `json:"converged"`
	StoredFit bool        `json:"stored_fit"`
	Shares    [12]float64 `json:"fitted_shares"`
	From      string      `json:"from"`
	To        string      `json:"to"`
}

// handleEstimate estimates the yearly usage from the daily snapshots of the
// last ?days= days. A model stored by gas_estimator is used when present.
func (s *server) handleEstimate(w http.ResponseWriter, r *http.Request) {
	days := defaultEstimateDays
	if value := r.URL.Query().Get("days"); value != "" {
		parsed, err := strconv.Atoi(value)
		if err != nil || parsed <= 0 {
			writeError(w, http.StatusBadRequest, "days must be a positive number")
			return
		}
		days = parsed
	}

	to := s.now().UTC()
	from := to.AddDate(0, 0, -days)
	readings, err := meterdb.GetDailyGasReadings(from, to)
	if err != nil {
		log.Printf("Failed to load gas snapshots: %v", err)
		s.metrics.RecordEstimateError()
		writeError(w, http.StatusInternalServerError, "Failed to load gas readings")
		return
	}

	started := time.Now()
	est, stored, err := s.estimate(readings)
	if err != nil {
		s.metrics.RecordEstimateError()
		writeError(w, http.StatusUnprocessableEntity, err.Error())
		return
	}
	s.metrics.RecordEstimate(est, time.Since(started))

	writeJSON(w, http.StatusOK, estimateResponse{
		Dataset:   s.dataset.String(),
		Mean:      est.Scaling.Mean,
		StdDev:    est.Scaling.StdDev,
		Intervals: len(est.Scaling.Factors),
		FitStatus: est.Fit.Status.String(),
		Converged: est.Fit.Converged,
		StoredFit: stored,
		Shares:    est.FittedShares,
		From:      from.Format(time.DateOnly),
		To:        to.Format(time.DateOnly),
	})
}

func (s *server) estimate(readings []types.DatedReading) (*estimator.Estimate, bool, error) {
	opts := estimator.DefaultOptions()

	record, err := meterdb.GetLatestFittedModel(string(s.dataset.Source), s.dataset.Year)
	if err != nil {
		log.Printf("Failed to load stored model, fitting instead: %v", err)
	}
	if record != nil {
		est, err := estimator.RunWithFit(s.dataset, record.ToResult(opts.Calendar), readings)
		return est, true, err
	}

	est, err := estimator.Run(s.dataset, readings, opts)
	return est, false, err
}
