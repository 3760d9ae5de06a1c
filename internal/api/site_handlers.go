package api

import (
	"encoding/csv"
	"encoding/json"
	"log"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"bokeeb.kz/site-backend/internal/auth"
	"bokeeb.kz/site-backend/internal/core"
	"bokeeb.kz/site-backend/internal/store"
)

// SiteHandler serves the catalog, lead capture, settings, and the admin
// back-office.
type SiteHandler struct {
	siteService *core.SiteService
	dbStore     *store.SQLiteStore
}

func NewSiteHandler(site *core.SiteService, db *store.SQLiteStore) *SiteHandler {
	return &SiteHandler{siteService: site, dbStore: db}
}

type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

func (h *SiteHandler) LoginHandler(w http.ResponseWriter, r *http.Request) {
	var req LoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSONError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if req.Email == "" || req.Password == "" {
		writeJSONError(w, http.StatusBadRequest, "Email and password are required")
		return
	}

	user, err := h.dbStore.GetAdminUserByEmail(req.Email)
	if err != nil {
		log.Printf("Error getting admin user %s: %v", req.Email, err)
		writeJSONError(w, http.StatusUnauthorized, "Invalid credentials")
		return
	}
	if user == nil || !auth.CheckPasswordHash(req.Password, user.PasswordHash) {
		writeJSONError(w, http.StatusUnauthorized, "Invalid credentials")
		return
	}

	token, err := auth.GenerateJWT(user.Email)
	if err != nil {
		log.Printf("Error generating JWT for %s: %v", req.Email, err)
		writeJSONError(w, http.StatusInternalServerError, "Failed to generate token")
		return
	}

	json.NewEncoder(w).Encode(map[string]string{"token": token})
}

// Public catalog

func (h *SiteHandler) ListHousesHandler(w http.ResponseWriter, r *http.Request) {
	houses, err := h.siteService.GetPublishedHouses()
	if err != nil {
		log.Printf("Error listing houses: %v", err)
		writeJSONError(w, http.StatusInternalServerError, "Failed to list houses")
		return
	}
	if houses == nil {
		houses = []store.House{}
	}
	json.NewEncoder(w).Encode(houses)
}

func (h *SiteHandler) GetHouseHandler(w http.ResponseWriter, r *http.Request) {
	slug := chi.URLParam(r, "slug")
	house, err := h.siteService.GetHouseBySlug(slug)
	if err != nil {
		log.Printf("Error getting house %s: %v", slug, err)
		writeJSONError(w, http.StatusInternalServerError, "Failed to get house")
		return
	}
	if house == nil || !house.IsPublished {
		writeJSONError(w, http.StatusNotFound, "House not found")
		return
	}
	json.NewEncoder(w).Encode(house)
}

// Lead capture

type CreateLeadRequest struct {
	Name    string  `json:"name"`
	Phone   string  `json:"phone"`
	Comment *string `json:"comment,omitempty"`
	HouseID *string `json:"house_id,omitempty"`
	Source  *string `json:"source,omitempty"`
}

func (h *SiteHandler) CreateLeadHandler(w http.ResponseWriter, r *http.Request) {
	var req CreateLeadRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSONError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if strings.TrimSpace(req.Name) == "" || strings.TrimSpace(req.Phone) == "" {
		writeJSONError(w, http.StatusBadRequest, "Name and phone are required")
		return
	}

	lead, err := h.siteService.CreateLead(req.Name, req.Phone, req.Comment, req.HouseID, req.Source)
	if err != nil {
		log.Printf("Error creating lead: %v", err)
		writeJSONError(w, http.StatusInternalServerError, "Failed to create lead")
		return
	}

	w.WriteHeader(http.StatusCreated)
	json.NewEncoder(w).Encode(lead)
}

// Settings

func (h *SiteHandler) GetSettingHandler(w http.ResponseWriter, r *http.Request) {
	key := chi.URLParam(r, "key")
	setting, err := h.siteService.GetSetting(key)
	if err != nil {
		log.Printf("Error getting setting %s: %v", key, err)
		writeJSONError(w, http.StatusInternalServerError, "Failed to get setting")
		return
	}
	if setting == nil {
		writeJSONError(w, http.StatusNotFound, "Setting not found")
		return
	}
	json.NewEncoder(w).Encode(setting)
}

type PutSettingRequest struct {
	Value json.RawMessage `json:"value"`
}

func (h *SiteHandler) PutSettingHandler(w http.ResponseWriter, r *http.Request) {
	key := chi.URLParam(r, "key")

	var req PutSettingRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || len(req.Value) == 0 {
		writeJSONError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	setting, err := h.siteService.PutSetting(key, string(req.Value))
	if err != nil {
		log.Printf("Error saving setting %s: %v", key, err)
		writeJSONError(w, http.StatusInternalServerError, "Failed to save setting")
		return
	}
	json.NewEncoder(w).Encode(setting)
}

// Admin: houses

func (h *SiteHandler) AdminListHousesHandler(w http.ResponseWriter, r *http.Request) {
	houses, err := h.siteService.GetAllHouses()
	if err != nil {
		log.Printf("Error listing houses for admin: %v", err)
		writeJSONError(w, http.StatusInternalServerError, "Failed to list houses")
		return
	}
	if houses == nil {
		houses = []store.House{}
	}
	json.NewEncoder(w).Encode(houses)
}

func (h *SiteHandler) AdminCreateHouseHandler(w http.ResponseWriter, r *http.Request) {
	var house store.House
	if err := json.NewDecoder(r.Body).Decode(&house); err != nil {
		writeJSONError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	if err := h.siteService.CreateHouse(&house); err != nil {
		log.Printf("Error creating house %s: %v", house.Slug, err)
		writeJSONError(w, http.StatusBadRequest, err.Error())
		return
	}

	w.WriteHeader(http.StatusCreated)
	json.NewEncoder(w).Encode(house)
}

func (h *SiteHandler) AdminUpdateHouseHandler(w http.ResponseWriter, r *http.Request) {
	var house store.House
	if err := json.NewDecoder(r.Body).Decode(&house); err != nil {
		writeJSONError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	house.ID = chi.URLParam(r, "houseID")

	if err := h.siteService.UpdateHouse(&house); err != nil {
		if strings.Contains(err.Error(), "not found") {
			writeJSONError(w, http.StatusNotFound, "House not found")
		} else {
			log.Printf("Error updating house %s: %v", house.ID, err)
			writeJSONError(w, http.StatusBadRequest, err.Error())
		}
		return
	}
	json.NewEncoder(w).Encode(house)
}

func (h *SiteHandler) AdminDeleteHouseHandler(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "houseID")
	if err := h.siteService.DeleteHouse(id); err != nil {
		if strings.Contains(err.Error(), "not found") {
			writeJSONError(w, http.StatusNotFound, "House not found")
		} else {
			log.Printf("Error deleting house %s: %v", id, err)
			writeJSONError(w, http.StatusInternalServerError, "Failed to delete house")
		}
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// Admin: leads

func (h *SiteHandler) AdminListLeadsHandler(w http.ResponseWriter, r *http.Request) {
	status := store.LeadStatus(r.URL.Query().Get("status"))
	if status != "" && !status.Valid() {
		writeJSONError(w, http.StatusBadRequest, "Invalid status filter")
		return
	}

	leads, err := h.siteService.GetLeads(status)
	if err != nil {
		log.Printf("Error listing leads: %v", err)
		writeJSONError(w, http.StatusInternalServerError, "Failed to list leads")
		return
	}
	if leads == nil {
		leads = []store.Lead{}
	}
	json.NewEncoder(w).Encode(leads)
}

type UpdateLeadStatusRequest struct {
	Status store.LeadStatus `json:"status"`
}

func (h *SiteHandler) AdminUpdateLeadStatusHandler(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "leadID")

	var req UpdateLeadStatusRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSONError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if !req.Status.Valid() {
		writeJSONError(w, http.StatusBadRequest, "Invalid lead status")
		return
	}

	if err := h.siteService.UpdateLeadStatus(id, req.Status); err != nil {
		if strings.Contains(err.Error(), "not found") {
			writeJSONError(w, http.StatusNotFound, "Lead not found")
		} else {
			log.Printf("Error updating lead %s: %v", id, err)
			writeJSONError(w, http.StatusInternalServerError, "Failed to update lead")
		}
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// AdminExportLeadsHandler streams all leads as CSV, matching the columns
// the admin page exports.
func (h *SiteHandler) AdminExportLeadsHandler(w http.ResponseWriter, r *http.Request) {
	leads, err := h.siteService.GetLeads("")
	if err != nil {
		log.Printf("Error exporting leads: %v", err)
		writeJSONError(w, http.StatusInternalServerError, "Failed to export leads")
		return
	}

	w.Header().Set("Content-Type", "text/csv")
	w.Header().Set("Content-Disposition", `attachment; filename="leads.csv"`)

	cw := csv.NewWriter(w)
	cw.Write([]string{"id", "name", "phone", "comment", "house_id", "source", "status", "created_at"})
	for _, l := range leads {
		cw.Write([]string{
			l.ID,
			l.Name,
			l.Phone,
			derefOr(l.Comment, "-"),
			derefOr(l.HouseID, "-"),
			derefOr(l.Source, "-"),
			string(l.Status),
			l.CreatedAt.Format("2006-01-02 15:04:05"),
		})
	}
	cw.Flush()
	if err := cw.Error(); err != nil {
		log.Printf("Error writing leads CSV: %v", err)
	}
}

func derefOr(s *string, fallback string) string {
	if s == nil || *s == "" {
		return fallback
	}
	return *s
}
