package http

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"mime"
	"net/http"
	"strconv"
	"strings"

	"github.com/couchcryptid/well-registry/internal/auth"
	"github.com/couchcryptid/well-registry/internal/domain"
	"github.com/couchcryptid/well-registry/internal/registry"
	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
)

const (
	maxUploadBytes = 32 << 20
	maxJSONBytes   = 1 << 20

	contentTypeXLSX = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
)

// Handler serves the registry's public and admin API.
type Handler struct {
	svc      *registry.Service
	verifier *auth.Verifier
	groups   domain.AgencyGroups
	logger   *slog.Logger
}

// NewHandler wires the registry service to HTTP.
func NewHandler(svc *registry.Service, verifier *auth.Verifier, groups domain.AgencyGroups, logger *slog.Logger) *Handler {
	return &Handler{svc: svc, verifier: verifier, groups: groups, logger: logger}
}

// Routes returns the router mounted under /registry.
func (h *Handler) Routes() chi.Router {
	r := chi.NewRouter()

	r.Get("/api/monitoring-locations", h.handlePublicList)

	r.Route("/admin", func(r chi.Router) {
		r.Use(requireAuth(h.verifier, h.groups, h.logger))

		r.Get("/site-numbers", h.handleSiteNumbers)
		r.Route("/monitoring-locations", func(r chi.Router) {
			r.Get("/", h.handleList)
			r.Post("/", h.handleCreate)
			r.Post("/fetch-from-nwis", h.handleFetchFromNWIS)
			r.Post("/bulk-upload", h.handleBulkUpload)
			r.Get("/bulk-upload/template", h.handleTemplate)
			r.Get("/export", h.handleExport)
			r.Get("/{id}", h.handleGet)
			r.Put("/{id}", h.handleUpdate)
			r.Delete("/{id}", h.handleDelete)
		})
	})
	return r
}

func (h *Handler) handlePublicList(w http.ResponseWriter, r *http.Request) {
	filter, err := listFilter(r)
	if err != nil {
		badRequest(w, err.Error())
		return
	}
	page, err := h.svc.PublicList(r.Context(), filter)
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	if strings.EqualFold(r.URL.Query().Get("format"), "geojson") {
		writeGeoJSON(w, page.Items)
		return
	}
	writeJSON(w, http.StatusOK, page)
}

func (h *Handler) handleList(w http.ResponseWriter, r *http.Request) {
	filter, err := listFilter(r)
	if err != nil {
		badRequest(w, err.Error())
		return
	}
	page, err := h.svc.List(r.Context(), accessFrom(r), filter)
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, page)
}

func (h *Handler) handleGet(w http.ResponseWriter, r *http.Request) {
	id, ok := locationID(w, r)
	if !ok {
		return
	}
	detail, err := h.svc.Get(r.Context(), accessFrom(r), id)
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, detail)
}

func (h *Handler) handleCreate(w http.ResponseWriter, r *http.Request) {
	var input domain.MonitoringLocation
	if !decodeJSON(w, r, &input) {
		return
	}
	loc, err := h.svc.Create(r.Context(), accessFrom(r), input)
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	writeJSON(w, http.StatusCreated, loc)
}

func (h *Handler) handleUpdate(w http.ResponseWriter, r *http.Request) {
	id, ok := locationID(w, r)
	if !ok {
		return
	}
	var input domain.MonitoringLocation
	if !decodeJSON(w, r, &input) {
		return
	}
	loc, err := h.svc.Update(r.Context(), accessFrom(r), id, input)
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, loc)
}

func (h *Handler) handleDelete(w http.ResponseWriter, r *http.Request) {
	id, ok := locationID(w, r)
	if !ok {
		return
	}
	if err := h.svc.Delete(r.Context(), accessFrom(r), id); err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

type fetchRequest struct {
	SiteNo    string `json:"site_no"`
	Overwrite string `json:"overwrite"`
}

func (h *Handler) handleFetchFromNWIS(w http.ResponseWriter, r *http.Request) {
	var req fetchRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	out, err := h.svc.FetchFromNWIS(r.Context(), accessFrom(r), req.SiteNo, registry.ParseOverwrite(req.Overwrite))
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	status := http.StatusOK
	if out.Status == registry.FetchFailed {
		status = http.StatusUnprocessableEntity
	}
	writeJSON(w, status, out)
}

func (h *Handler) handleBulkUpload(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxUploadBytes)

	body, name, err := uploadBody(r)
	if err != nil {
		badRequest(w, err.Error())
		return
	}
	defer body.Close()

	rows, err := registry.ReadRows(body, name)
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			writeJSON(w, http.StatusRequestEntityTooLarge, errorBody{Error: "upload too large"})
			return
		}
		badRequest(w, err.Error())
		return
	}

	dryRun, _ := strconv.ParseBool(r.URL.Query().Get("dry_run"))
	res, err := h.svc.Ingest(r.Context(), accessFrom(r), rows, dryRun)
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	status := http.StatusOK
	switch {
	case !res.OK():
		status = http.StatusUnprocessableEntity
	case !dryRun:
		status = http.StatusCreated
	}
	writeJSON(w, status, res)
}

// uploadBody returns the "file" part of a multipart form, or the raw body for
// any other content type.
func uploadBody(r *http.Request) (io.ReadCloser, string, error) {
	mediaType, _, _ := mime.ParseMediaType(r.Header.Get("Content-Type"))
	if mediaType != "multipart/form-data" {
		return io.NopCloser(r.Body), r.URL.Query().Get("filename"), nil
	}
	file, header, err := r.FormFile("file")
	if err != nil {
		return nil, "", fmt.Errorf("read upload: %w", err)
	}
	return file, header.Filename, nil
}

func (h *Handler) handleTemplate(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", contentTypeXLSX)
	w.Header().Set("Content-Disposition", `attachment; filename="monitoring_locations_template.xlsx"`)
	if err := registry.WriteTemplate(w); err != nil {
		h.logger.ErrorContext(r.Context(), "write upload template", "error", err)
	}
}

func (h *Handler) handleExport(w http.ResponseWriter, r *http.Request) {
	ac := accessFrom(r)
	if !ac.Has(domain.PermView) {
		writeError(w, r, h.logger, domain.ErrForbidden)
		return
	}
	layout := registry.ParseLayout(r.URL.Query().Get("layout"))

	w.Header().Set("Content-Type", "text/csv; charset=utf-8")
	w.Header().Set("Content-Disposition", `attachment; filename="monitoring_locations.csv"`)
	n, err := h.svc.Export(r.Context(), ac, w, layout)
	if err != nil {
		// Rows may already be written, so the status can no longer change.
		h.logger.ErrorContext(r.Context(), "export failed", "rows", n, "error", err)
	}
}

func (h *Handler) handleSiteNumbers(w http.ResponseWriter, r *http.Request) {
	limit, err := queryInt(r, "limit")
	if err != nil {
		badRequest(w, err.Error())
		return
	}
	sites, err := h.svc.SiteNumbers(r.Context(), accessFrom(r), r.URL.Query().Get("term"), limit)
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	if sites == nil {
		sites = []string{}
	}
	writeJSON(w, http.StatusOK, sites)
}

func locationID(w http.ResponseWriter, r *http.Request) (uuid.UUID, bool) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeJSON(w, http.StatusNotFound, errorBody{Error: "not found"})
		return uuid.Nil, false
	}
	return id, true
}

func decodeJSON(w http.ResponseWriter, r *http.Request, v any) bool {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxJSONBytes))
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		badRequest(w, fmt.Sprintf("invalid request body: %v", err))
		return false
	}
	return true
}

func listFilter(r *http.Request) (domain.ListFilter, error) {
	q := r.URL.Query()
	f := domain.ListFilter{
		AgencyCode: strings.ToUpper(strings.TrimSpace(q.Get("agency_cd"))),
		SiteNo:     strings.TrimSpace(q.Get("site_no")),
	}
	if s := q.Get("display_flag"); s != "" {
		b, err := strconv.ParseBool(s)
		if err != nil {
			return f, fmt.Errorf("invalid display_flag %q", s)
		}
		f.DisplayFlag = &b
	}
	var err error
	if f.Limit, err = queryInt(r, "limit"); err != nil {
		return f, err
	}
	if f.Offset, err = queryInt(r, "offset"); err != nil {
		return f, err
	}
	return f, nil
}

func queryInt(r *http.Request, name string) (int, error) {
	s := r.URL.Query().Get(name)
	if s == "" {
		return 0, nil
	}
	n, err := strconv.Atoi(s)
	if err != nil || n < 0 {
		return 0, fmt.Errorf("invalid %s %q", name, s)
	}
	return n, nil
}
