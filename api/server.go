// Package api exposes the JSON API for the price report service:
// county data, housing records, the prediction endpoint, and model
// introspection.
package api

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/terra-data/price.report/internal/db"
	"github.com/terra-data/price.report/internal/housing"
	"github.com/terra-data/price.report/internal/manifest"
	"github.com/terra-data/price.report/internal/model"
)

var (
	predictionsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "pricereport_predictions_total",
		Help: "Predictions served since start.",
	})
	predictionErrorsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "pricereport_prediction_errors_total",
		Help: "Prediction requests that failed.",
	})
)

// Server wires the database, the trained model, and the asset
// manifest into HTTP handlers.
type Server struct {
	db       *db.DB
	artifact *model.Artifact
	manifest *manifest.Manifest
}

// NewServer creates an API server. artifact and manifest may be nil;
// the corresponding endpoints then report 503.
func NewServer(database *db.DB, artifact *model.Artifact, m *manifest.Manifest) *Server {
	return &Server{
		db:       database,
		artifact: artifact,
		manifest: m,
	}
}

// ServeMux returns the API routes.
func (s *Server) ServeMux() *http.ServeMux {
	mux := http.NewServeMux()
	mux.HandleFunc("/counties", s.listCounties)
	mux.HandleFunc("/records", s.listRecords)
	mux.HandleFunc("/predict", s.predict)
	mux.HandleFunc("/predictions", s.listPredictions)
	mux.HandleFunc("/model", s.modelInfo)
	mux.HandleFunc("/manifest", s.manifestInfo)
	return mux
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func (s *Server) writeJSONError(w http.ResponseWriter, status int, msg string) {
	s.writeJSON(w, status, map[string]string{"error": msg})
}

func (s *Server) listCounties(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		s.writeJSONError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	counties, err := s.db.ListCounties()
	if err != nil {
		s.writeJSONError(w, http.StatusInternalServerError, fmt.Sprintf("failed to list counties: %v", err))
		return
	}
	s.writeJSON(w, http.StatusOK, counties)
}

func (s *Server) listRecords(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		s.writeJSONError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	records, err := s.db.ListRecords(100)
	if err != nil {
		s.writeJSONError(w, http.StatusInternalServerError, fmt.Sprintf("failed to list records: %v", err))
		return
	}
	s.writeJSON(w, http.StatusOK, records)
}

// PredictRequest is the prediction form: the user picks a county and
// supplies building age and income; every other model input falls back
// to the county's medians. MedianIncome uses the dataset scale (tens
// of thousands of USD).
type PredictRequest struct {
	County           string  `json:"county"`
	HousingMedianAge float64 `json:"housing_median_age"`
	MedianIncome     float64 `json:"median_income"`
}

// PredictResponse carries the prediction and the fully assembled model
// inputs for transparency.
type PredictResponse struct {
	ID             string         `json:"id"`
	County         string         `json:"county"`
	PredictedValue float64        `json:"predicted_value"`
	Inputs         housing.Record `json:"inputs"`
}

func (s *Server) predict(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		s.writeJSONError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	if s.artifact == nil {
		s.writeJSONError(w, http.StatusServiceUnavailable, "no model loaded")
		return
	}

	var req PredictRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		predictionErrorsTotal.Inc()
		s.writeJSONError(w, http.StatusBadRequest, fmt.Sprintf("invalid request body: %v", err))
		return
	}
	if req.County == "" {
		predictionErrorsTotal.Inc()
		s.writeJSONError(w, http.StatusBadRequest, "county is required")
		return
	}
	if req.HousingMedianAge < 1 || req.HousingMedianAge > 50 {
		predictionErrorsTotal.Inc()
		s.writeJSONError(w, http.StatusBadRequest, "housing_median_age must be between 1 and 50")
		return
	}
	if req.MedianIncome < 0 {
		predictionErrorsTotal.Inc()
		s.writeJSONError(w, http.StatusBadRequest, "median_income must be non-negative")
		return
	}

	county, err := s.db.County(req.County)
	if errors.Is(err, sql.ErrNoRows) {
		predictionErrorsTotal.Inc()
		s.writeJSONError(w, http.StatusNotFound, fmt.Sprintf("unknown county %q", req.County))
		return
	}
	if err != nil {
		predictionErrorsTotal.Inc()
		s.writeJSONError(w, http.StatusInternalServerError, fmt.Sprintf("failed to load county: %v", err))
		return
	}

	rec := housing.Record{
		Longitude:        county.Medians.Longitude,
		Latitude:         county.Medians.Latitude,
		HousingMedianAge: req.HousingMedianAge,
		TotalRooms:       county.Medians.TotalRooms,
		TotalBedrooms:    county.Medians.TotalBedrooms,
		Population:       county.Medians.Population,
		Households:       county.Medians.Households,
		MedianIncome:     req.MedianIncome,
		OceanProximity:   county.Medians.OceanProximity,
	}

	value, err := s.artifact.Pipeline.Predict(rec)
	if err != nil {
		predictionErrorsTotal.Inc()
		s.writeJSONError(w, http.StatusInternalServerError, fmt.Sprintf("prediction failed: %v", err))
		return
	}

	resp := PredictResponse{
		ID:             uuid.NewString(),
		County:         county.Name,
		PredictedValue: value,
		Inputs:         rec,
	}
	if err := s.db.RecordPrediction(db.Prediction{
		ID:             resp.ID,
		County:         resp.County,
		Inputs:         rec,
		PredictedValue: value,
	}); err != nil {
		predictionErrorsTotal.Inc()
		s.writeJSONError(w, http.StatusInternalServerError, fmt.Sprintf("failed to log prediction: %v", err))
		return
	}

	predictionsTotal.Inc()
	s.writeJSON(w, http.StatusOK, resp)
}

func (s *Server) listPredictions(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		s.writeJSONError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	predictions, err := s.db.RecentPredictions(100)
	if err != nil {
		s.writeJSONError(w, http.StatusInternalServerError, fmt.Sprintf("failed to list predictions: %v", err))
		return
	}
	s.writeJSON(w, http.StatusOK, predictions)
}

// ModelInfo is the /model payload: pipeline metadata, sorted
// coefficients, and the cross-validation scores from training time.
type ModelInfo struct {
	Config       model.Config        `json:"config"`
	TrainedAt    string              `json:"trained_at"`
	Rows         int                 `json:"rows"`
	Coefficients []model.Coefficient `json:"coefficients"`
	CV           *model.CVResult     `json:"cv,omitempty"`
}

func (s *Server) modelInfo(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		s.writeJSONError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	if s.artifact == nil {
		s.writeJSONError(w, http.StatusServiceUnavailable, "no model loaded")
		return
	}
	p := s.artifact.Pipeline
	s.writeJSON(w, http.StatusOK, ModelInfo{
		Config:       p.Config,
		TrainedAt:    p.TrainedAt.Format("2006-01-02T15:04:05Z07:00"),
		Rows:         p.Rows,
		Coefficients: p.Coefficients(),
		CV:           s.artifact.CV,
	})
}

func (s *Server) manifestInfo(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		s.writeJSONError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	if s.manifest == nil {
		s.writeJSONError(w, http.StatusServiceUnavailable, "no manifest loaded")
		return
	}
	type entry struct {
		Name    string `json:"name"`
		Version string `json:"version,omitempty"`
		Pinned  bool   `json:"pinned"`
	}
	entries := make([]entry, 0, len(s.manifest.Entries))
	for _, e := range s.manifest.Entries {
		entries = append(entries, entry{Name: e.Name, Version: e.Version, Pinned: e.Pinned()})
	}
	s.writeJSON(w, http.StatusOK, map[string]any{
		"path":    s.manifest.Path,
		"entries": entries,
	})
}
