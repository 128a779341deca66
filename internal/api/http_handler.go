package api

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/hcm-console/project-factory/internal/auth"
	"github.com/hcm-console/project-factory/internal/domain"
	"github.com/hcm-console/project-factory/internal/sheet"
)

// Handler exposes sheet processing as HTTP endpoints.
type Handler struct {
	service *Service
}

// NewHTTPHandler wraps the service with the processing endpoints.
func NewHTTPHandler(service *Service) *Handler {
	return &Handler{service: service}
}

// Register attaches the handler's routes to mux.
func (h *Handler) Register(mux *http.ServeMux) {
	mux.HandleFunc("/api/v1/process", h.handleProcess)
	mux.HandleFunc("/api/v1/status", h.handleStatus)
	mux.HandleFunc("/health", h.handleHealth)
}

func (h *Handler) handleProcess(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	if err := r.ParseMultipartForm(32 << 20); err != nil {
		http.Error(w, fmt.Sprintf("invalid form data: %v", err), http.StatusBadRequest)
		return
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		http.Error(w, fmt.Sprintf("file required: %v", err), http.StatusBadRequest)
		return
	}
	defer file.Close()

	tenantID := strings.TrimSpace(r.FormValue("tenantId"))
	if tenantID == "" {
		tenantID, _ = auth.TenantIDFromContext(r.Context())
	}
	if tenantID == "" {
		http.Error(w, "tenantId is required", http.StatusBadRequest)
		return
	}

	campaignNumber := strings.TrimSpace(r.FormValue("campaignNumber"))
	if campaignNumber == "" {
		http.Error(w, "campaignNumber is required", http.StatusBadRequest)
		return
	}

	resourceType, err := parseResourceType(r.FormValue("type"))
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	var localization sheet.Localizer
	if raw := strings.TrimSpace(r.FormValue("localization")); raw != "" {
		if err := json.Unmarshal([]byte(raw), &localization); err != nil {
			http.Error(w, fmt.Sprintf("invalid localization map: %v", err), http.StatusBadRequest)
			return
		}
	}

	payload, err := io.ReadAll(file)
	if err != nil {
		http.Error(w, fmt.Sprintf("failed to read file: %v", err), http.StatusBadRequest)
		return
	}

	summary, err := h.service.Process(r.Context(), Request{
		TenantID:       tenantID,
		CampaignNumber: campaignNumber,
		ResourceType:   resourceType,
		FileName:       header.Filename,
		Payload:        payload,
		Localization:   localization,
	})
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	writeJSON(w, http.StatusOK, summary)
}

func (h *Handler) handleStatus(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	campaignNumber := strings.TrimSpace(r.URL.Query().Get("campaignNumber"))
	if campaignNumber == "" {
		http.Error(w, "campaignNumber is required", http.StatusBadRequest)
		return
	}

	resourceType, err := parseResourceType(r.URL.Query().Get("type"))
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	report, err := h.service.Status(r.Context(), resourceType, campaignNumber)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	writeJSON(w, http.StatusOK, report)
}

func (h *Handler) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func parseResourceType(raw string) (domain.ResourceType, error) {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case string(domain.ResourceTypeBoundary):
		return domain.ResourceTypeBoundary, nil
	case string(domain.ResourceTypeFacility):
		return domain.ResourceTypeFacility, nil
	case string(domain.ResourceTypeUser):
		return domain.ResourceTypeUser, nil
	default:
		return "", fmt.Errorf("unknown resource type %q", raw)
	}
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	_ = enc.Encode(payload)
}
