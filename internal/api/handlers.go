package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/a20121248/network-dashboard/internal/dashboard"
	"github.com/a20121248/network-dashboard/internal/dataset"
	"github.com/a20121248/network-dashboard/internal/drilldown"
	"github.com/a20121248/network-dashboard/internal/export"
	"github.com/a20121248/network-dashboard/internal/models"
	"github.com/a20121248/network-dashboard/internal/session"
)

// SessionHeader carries the session id on every dataset-scoped request.
const SessionHeader = "X-Session-ID"

type Handler struct {
	Store          *session.Store
	Log            *zap.Logger
	MaxUploadBytes int64
}

func NewHandler(store *session.Store, log *zap.Logger, maxUploadBytes int64) *Handler {
	return &Handler{
		Store:          store,
		Log:            log,
		MaxUploadBytes: maxUploadBytes,
	}
}

func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Get("/health", h.HealthCheck)
	r.Post("/api/session", h.CreateSession)

	r.Post("/api/upload", h.Upload)
	r.Get("/api/status", h.GetStatus)
	r.Get("/api/overview", h.GetOverview)
	r.Delete("/api/datasets", h.ClearDatasets)

	r.Post("/api/faults/summary", h.FaultsSummary)
	r.Post("/api/faults/export", h.FaultsExport)
	r.Post("/api/faults/export/active", h.ActiveFaultsExport)

	r.Post("/api/performance/summary", h.PerformanceSummary)
	r.Post("/api/performance/export", h.PerformanceExport)

	r.Post("/api/quality/summary", h.QualitySummary)
	r.Post("/api/quality/export", h.QualityExport)

	r.Post("/api/availability/summary", h.AvailabilitySummary)
	r.Post("/api/availability/export", h.AvailabilityExport)

	r.Post("/api/configuration/summary", h.ConfigurationSummary)
	r.Post("/api/configuration/export", h.ConfigurationExport)

	r.Post("/api/provisioning/summary", h.ProvisioningSummary)
	r.Post("/api/provisioning/export", h.ProvisioningExport)
	r.Post("/api/provisioning/drill", h.ProvisioningDrill)
	r.Post("/api/provisioning/drill/reset", h.ProvisioningDrillReset)
}

// ============================================================================
// Health & Session
// ============================================================================

func (h *Handler) HealthCheck(w http.ResponseWriter, r *http.Request) {
	w.Write([]byte("OK"))
}

func (h *Handler) CreateSession(w http.ResponseWriter, r *http.Request) {
	sess := h.Store.Create()
	w.Header().Set(SessionHeader, sess.ID)
	writeJSON(w, http.StatusCreated, models.SessionResponse{SessionID: sess.ID})
}

// sessionID resolves the request's session, creating a fresh one when the
// header is missing or the id has expired. The effective id is echoed back so
// clients can adopt it.
func (h *Handler) sessionID(w http.ResponseWriter, r *http.Request) string {
	id := r.Header.Get(SessionHeader)
	if id != "" {
		if _, ok := h.Store.Get(id); ok {
			w.Header().Set(SessionHeader, id)
			return id
		}
	}
	sess := h.Store.Create()
	w.Header().Set(SessionHeader, sess.ID)
	return sess.ID
}

// ============================================================================
// Upload & dataset management
// ============================================================================

// Upload ingests one or more CSV files from a multipart form. Each file is
// classified by filename; failures are reported per file and never abort the
// batch. A new upload replaces the session's dataset of the same category.
func (h *Handler) Upload(w http.ResponseWriter, r *http.Request) {
	id := h.sessionID(w, r)

	r.Body = http.MaxBytesReader(w, r.Body, h.MaxUploadBytes)
	if err := r.ParseMultipartForm(h.MaxUploadBytes); err != nil {
		writeError(w, http.StatusBadRequest, fmt.Sprintf("parsing upload: %v", err))
		return
	}
	files := r.MultipartForm.File["files"]
	if len(files) == 0 {
		writeError(w, http.StatusBadRequest, "no files in upload")
		return
	}

	resp := models.UploadResponse{}
	for _, fh := range files {
		result := models.UploadFileResult{FileName: fh.Filename}

		category, ok := dataset.DetectCategory(fh.Filename)
		if !ok {
			result.Error = "type not recognized"
			resp.Results = append(resp.Results, result)
			continue
		}

		file, err := fh.Open()
		if err != nil {
			result.Error = fmt.Sprintf("opening file: %v", err)
			resp.Results = append(resp.Results, result)
			continue
		}
		frame, err := dataset.ParseCSV(file, fh.Filename)
		file.Close()
		if err != nil {
			result.Error = err.Error()
			resp.Results = append(resp.Results, result)
			continue
		}
		frame.Category = category
		h.Store.SetDataset(id, frame)

		result.Category = string(category)
		result.Rows = len(frame.Rows)
		result.Columns = len(frame.Headers)
		resp.Results = append(resp.Results, result)

		h.Log.Info("dataset uploaded",
			zap.String("session_id", id),
			zap.String("category", string(category)),
			zap.String("file", fh.Filename),
			zap.Int("rows", len(frame.Rows)),
		)
	}
	writeJSON(w, http.StatusOK, resp)
}

func (h *Handler) GetStatus(w http.ResponseWriter, r *http.Request) {
	id := h.sessionID(w, r)
	resp := models.StatusResponse{}
	for _, cat := range dataset.Categories {
		status := models.DatasetStatus{Category: string(cat)}
		if f := h.Store.Dataset(id, cat); f != nil {
			status.Loaded = true
			status.FileName = f.FileName
			status.Rows = len(f.Rows)
			status.Columns = len(f.Headers)
			uploaded := f.UploadedAt
			status.UploadedAt = &uploaded
		}
		resp.Datasets = append(resp.Datasets, status)
	}
	writeJSON(w, http.StatusOK, resp)
}

func (h *Handler) GetOverview(w http.ResponseWriter, r *http.Request) {
	id := h.sessionID(w, r)
	datasets := map[dataset.Category]*dataset.Frame{}
	for _, cat := range dataset.Categories {
		if f := h.Store.Dataset(id, cat); f != nil {
			datasets[cat] = f
		}
	}
	writeJSON(w, http.StatusOK, dashboard.BuildOverview(datasets, time.Now()))
}

func (h *Handler) ClearDatasets(w http.ResponseWriter, r *http.Request) {
	id := h.sessionID(w, r)
	h.Store.ClearDatasets(id)
	h.Log.Info("datasets cleared", zap.String("session_id", id))
	writeJSON(w, http.StatusOK, models.MessageResponse{Message: "all datasets cleared"})
}

// ============================================================================
// Faults
// ============================================================================

func (h *Handler) FaultsSummary(w http.ResponseWriter, r *http.Request) {
	id := h.sessionID(w, r)
	req, err := decodeFilter(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	faults := h.Store.Dataset(id, dataset.Faults)
	sites := h.Store.Dataset(id, dataset.Sites)
	writeJSON(w, http.StatusOK, dashboard.BuildFaultsSummary(faults, sites, req, time.Now()))
}

func (h *Handler) FaultsExport(w http.ResponseWriter, r *http.Request) {
	id := h.sessionID(w, r)
	req, err := decodeExport(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	faults := h.Store.Dataset(id, dataset.Faults)
	if faults == nil {
		writeError(w, http.StatusNotFound, "faults dataset not loaded")
		return
	}
	filtered, _ := dashboard.FilteredFaults(faults, h.Store.Dataset(id, dataset.Sites), req.FilterRequest)
	h.streamFrame(w, filtered, "averias_filtradas", "Averias_Filtradas", req.Format)
}

// ActiveFaultsExport downloads the currently active faults as a workbook,
// oldest first.
func (h *Handler) ActiveFaultsExport(w http.ResponseWriter, r *http.Request) {
	id := h.sessionID(w, r)
	req, err := decodeFilter(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	faults := h.Store.Dataset(id, dataset.Faults)
	if faults == nil {
		writeError(w, http.StatusNotFound, "faults dataset not loaded")
		return
	}
	active := dashboard.ActiveFaultsExport(faults, h.Store.Dataset(id, dataset.Sites), req)
	if active == nil {
		writeError(w, http.StatusNotFound, "no active faults")
		return
	}
	h.streamFrame(w, active, "averias_activas", "Averias_Activas", "xlsx")
}

// ============================================================================
// Performance & Quality
// ============================================================================

func (h *Handler) PerformanceSummary(w http.ResponseWriter, r *http.Request) {
	id := h.sessionID(w, r)
	req, err := decodeFilter(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	f := h.Store.Dataset(id, dataset.Performance)
	writeJSON(w, http.StatusOK, dashboard.BuildPerformanceSummary(f, req))
}

func (h *Handler) PerformanceExport(w http.ResponseWriter, r *http.Request) {
	id := h.sessionID(w, r)
	req, err := decodeExport(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	f := h.Store.Dataset(id, dataset.Performance)
	if f == nil {
		writeError(w, http.StatusNotFound, "performance dataset not loaded")
		return
	}
	filtered := dashboard.PerformanceExportFrame(f, req.FilterRequest)
	h.streamFrame(w, filtered, "desempeno_filtrado", "Desempeno", req.Format)
}

func (h *Handler) QualitySummary(w http.ResponseWriter, r *http.Request) {
	id := h.sessionID(w, r)
	req, err := decodeFilter(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	f := h.Store.Dataset(id, dataset.Quality)
	writeJSON(w, http.StatusOK, dashboard.BuildQualitySummary(f, req))
}

func (h *Handler) QualityExport(w http.ResponseWriter, r *http.Request) {
	id := h.sessionID(w, r)
	req, err := decodeExport(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	f := h.Store.Dataset(id, dataset.Quality)
	if f == nil {
		writeError(w, http.StatusNotFound, "quality dataset not loaded")
		return
	}
	filtered := dashboard.QualityExportFrame(f, req.FilterRequest)
	h.streamFrame(w, filtered, "calidad_filtrado", "Calidad", req.Format)
}

// ============================================================================
// Availability & Configuration
// ============================================================================

func (h *Handler) AvailabilitySummary(w http.ResponseWriter, r *http.Request) {
	id := h.sessionID(w, r)
	req, err := decodeFilter(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	f := h.Store.Dataset(id, dataset.Availability)
	writeJSON(w, http.StatusOK, dashboard.BuildAvailabilitySummary(f, req))
}

func (h *Handler) AvailabilityExport(w http.ResponseWriter, r *http.Request) {
	id := h.sessionID(w, r)
	req, err := decodeExport(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	f := h.Store.Dataset(id, dataset.Availability)
	if f == nil {
		writeError(w, http.StatusNotFound, "availability dataset not loaded")
		return
	}
	filtered := dashboard.AvailabilityExportFrame(f, req.FilterRequest)
	h.streamFrame(w, filtered, "disponibilidad_filtrado", "Disponibilidad", req.Format)
}

func (h *Handler) ConfigurationSummary(w http.ResponseWriter, r *http.Request) {
	id := h.sessionID(w, r)
	f := h.Store.Dataset(id, dataset.Configuration)
	writeJSON(w, http.StatusOK, dashboard.BuildConfigurationSummary(f))
}

func (h *Handler) ConfigurationExport(w http.ResponseWriter, r *http.Request) {
	id := h.sessionID(w, r)
	req, err := decodeExport(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	f := h.Store.Dataset(id, dataset.Configuration)
	if f == nil {
		writeError(w, http.StatusNotFound, "configuration dataset not loaded")
		return
	}
	h.streamFrame(w, f, "configuracion", "Configuracion", req.Format)
}

// ============================================================================
// Provisioning
// ============================================================================

func (h *Handler) ProvisioningSummary(w http.ResponseWriter, r *http.Request) {
	id := h.sessionID(w, r)
	f := h.Store.Dataset(id, dataset.Provisioning)
	drill, _ := h.Store.Drill(id)
	writeJSON(w, http.StatusOK, dashboard.BuildProvisioningSummary(f, drill))
}

// ProvisioningDrill applies one navigation event and returns the re-rendered
// explorer. Selecting a level clears everything below it.
func (h *Handler) ProvisioningDrill(w http.ResponseWriter, r *http.Request) {
	id := h.sessionID(w, r)
	var req models.DrillRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	drill, _ := h.Store.Drill(id)
	drill = drilldown.Apply(drill, drilldown.Event{
		Level: drilldown.Level(req.Level),
		Value: req.Value,
	})
	h.Store.SetDrill(id, drill)

	f := h.Store.Dataset(id, dataset.Provisioning)
	writeJSON(w, http.StatusOK, dashboard.BuildProvisioningSummary(f, drill))
}

func (h *Handler) ProvisioningDrillReset(w http.ResponseWriter, r *http.Request) {
	id := h.sessionID(w, r)
	h.Store.SetDrill(id, drilldown.Reset())
	f := h.Store.Dataset(id, dataset.Provisioning)
	writeJSON(w, http.StatusOK, dashboard.BuildProvisioningSummary(f, drilldown.Reset()))
}

// ProvisioningExport downloads the rows under the current navigation, with
// the deepest selected place in the filename.
func (h *Handler) ProvisioningExport(w http.ResponseWriter, r *http.Request) {
	id := h.sessionID(w, r)
	req, err := decodeExport(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	f := h.Store.Dataset(id, dataset.Provisioning)
	if f == nil {
		writeError(w, http.StatusNotFound, "provisioning dataset not loaded")
		return
	}
	drill, _ := h.Store.Drill(id)
	filtered, suffix := dashboard.ProvisioningExportFrame(f, drill)
	prefix := "provisionamiento"
	if suffix != "" {
		prefix += "_" + suffix
	}
	h.streamFrame(w, filtered, prefix, "Provisionamiento", req.Format)
}

// ============================================================================
// Helpers
// ============================================================================

// streamFrame writes a frame as a CSV or XLSX attachment.
func (h *Handler) streamFrame(w http.ResponseWriter, f *dataset.Frame, prefix, sheet, format string) {
	if f == nil {
		writeError(w, http.StatusNotFound, "nothing to export")
		return
	}
	switch format {
	case "xlsx":
		w.Header().Set("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
		w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", export.Filename(prefix, "xlsx")))
		if err := export.WriteXLSX(w, []export.Sheet{{Name: sheet, Frame: f}}); err != nil {
			h.Log.Error("xlsx export failed", zap.Error(err))
		}
	case "", "csv":
		w.Header().Set("Content-Type", "text/csv; charset=utf-8")
		w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", export.Filename(prefix, "csv")))
		if err := export.WriteCSV(w, f); err != nil {
			h.Log.Error("csv export failed", zap.Error(err))
		}
	default:
		writeError(w, http.StatusBadRequest, fmt.Sprintf("unknown export format %q", format))
	}
}

// decodeFilter reads an optional filter body. An empty body means no filters.
func decodeFilter(r *http.Request) (models.FilterRequest, error) {
	var req models.FilterRequest
	err := decodeJSON(r, &req)
	return req, err
}

func decodeExport(r *http.Request) (models.ExportRequest, error) {
	var req models.ExportRequest
	err := decodeJSON(r, &req)
	return req, err
}

func decodeJSON(r *http.Request, v interface{}) error {
	err := json.NewDecoder(r.Body).Decode(v)
	if err == nil || errors.Is(err, io.EOF) {
		return nil
	}
	return fmt.Errorf("invalid JSON body: %w", err)
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, models.ErrorResponse{Error: msg})
}
