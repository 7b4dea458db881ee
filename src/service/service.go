package service

import (
	"encoding/json"
	"net/http"
	"strconv"
	"sync"

	"github.com/armon/go-metrics"
	"github.com/sirupsen/logrus"

	"github.com/mosaicnetworks/poh/src/entry"
)

// Node is the part of a node that the service exposes.
type Node interface {
	GetStats() map[string]string
	GetSlot(slot uint64) (entry.Entries, uint64, error)
}

// Service ...
type Service struct {
	sync.Mutex

	bindAddress string
	node        Node
	sink        *metrics.InmemSink
	mux         *http.ServeMux
	server      *http.Server
	logger      *logrus.Entry
}

// NewService creates the HTTP API of a node. sink may be nil, in which case
// /metrics is not available.
func NewService(bindAddress string, n Node, sink *metrics.InmemSink, logger *logrus.Entry) *Service {
	service := Service{
		bindAddress: bindAddress,
		node:        n,
		sink:        sink,
		mux:         http.NewServeMux(),
		logger:      logger,
	}

	service.server = &http.Server{
		Addr:    bindAddress,
		Handler: service.mux,
	}

	service.registerHandlers()

	return &service
}

func (s *Service) registerHandlers() {
	s.logger.Debug("Registering PoH API handlers")
	s.mux.HandleFunc("/stats", s.makeHandler(s.GetStats))
	s.mux.HandleFunc("/metrics", s.makeHandler(s.GetMetrics))
	s.mux.HandleFunc("/slot/", s.makeHandler(s.GetSlot))
}

func (s *Service) makeHandler(fn func(http.ResponseWriter, *http.Request)) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		s.Lock()
		defer s.Unlock()

		// enable CORS
		w.Header().Set("Access-Control-Allow-Origin", "*")

		fn(w, r)
	}
}

// Handler returns the handler serving the API.
func (s *Service) Handler() http.Handler {
	return s.mux
}

// Serve calls ListenAndServe. This is a blocking call. It returns nil once
// the service is closed.
func (s *Service) Serve() error {
	s.logger.WithField("bind_address", s.bindAddress).Debug("Serving PoH API")

	err := s.server.ListenAndServe()
	if err == http.ErrServerClosed {
		return nil
	}
	if err != nil {
		s.logger.Error(err)
	}
	return err
}

// Close stops the listener and closes open connections.
func (s *Service) Close() error {
	return s.server.Close()
}

// GetStats ...
func (s *Service) GetStats(w http.ResponseWriter, r *http.Request) {
	stats := s.node.GetStats()

	w.Header().Set("Content-Type", "application/json")

	json.NewEncoder(w).Encode(stats)
}

// GetMetrics returns the aggregated metrics of the in-memory sink.
func (s *Service) GetMetrics(w http.ResponseWriter, r *http.Request) {
	if s.sink == nil {
		http.Error(w, "metrics are disabled", http.StatusNotFound)
		return
	}

	summary, err := s.sink.DisplayMetrics(w, r)
	if err != nil {
		s.logger.WithError(err).Error("Displaying metrics")

		http.Error(w, err.Error(), http.StatusInternalServerError)

		return
	}

	w.Header().Set("Content-Type", "application/json")

	json.NewEncoder(w).Encode(summary)
}

// GetSlot ...
func (s *Service) GetSlot(w http.ResponseWriter, r *http.Request) {
	param := r.URL.Path[len("/slot/"):]

	slot, err := strconv.ParseUint(param, 10, 64)

	if err != nil {
		s.logger.WithError(err).Errorf("Parsing slot parameter %s", param)

		http.Error(w, err.Error(), http.StatusBadRequest)

		return
	}

	entries, numTicks, err := s.node.GetSlot(slot)

	if err != nil {
		s.logger.WithError(err).Errorf("Retrieving slot %d", slot)

		http.Error(w, err.Error(), http.StatusNotFound)

		return
	}

	w.Header().Set("Content-Type", "application/json")

	json.NewEncoder(w).Encode(NewSlotView(slot, numTicks, entries))
}
