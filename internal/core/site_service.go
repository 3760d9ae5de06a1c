package core

import (
	"fmt"
	"strings"

	"bokeeb.kz/site-backend/internal/store"
)

// SiteService owns the non-chat business flows: the houses catalog,
// lead capture, settings, and the chat exchange log sink.
type SiteService struct {
	dbStore *store.SQLiteStore
}

func NewSiteService(db *store.SQLiteStore) *SiteService {
	return &SiteService{dbStore: db}
}

// RecordChatExchange writes one completed question/answer pair. Entries
// are append-only; two identical exchanges produce two rows.
func (s *SiteService) RecordChatExchange(sessionID, language, question, answer string, ipAddress *string) (*store.ChatLog, error) {
	entry := store.ChatLog{
		SessionID: sessionID,
		Language:  language,
		Question:  question,
		Answer:    answer,
		IPAddress: ipAddress,
	}
	if err := s.dbStore.CreateChatLog(&entry); err != nil {
		return nil, fmt.Errorf("failed to record chat exchange: %w", err)
	}
	return &entry, nil
}

func (s *SiteService) CreateLead(name, phone string, comment, houseID, source *string) (*store.Lead, error) {
	if houseID != nil && *houseID != "" {
		house, err := s.dbStore.GetHouseByID(*houseID)
		if err != nil {
			return nil, fmt.Errorf("failed to verify house for lead: %w", err)
		}
		if house == nil {
			// A stale house reference should not lose the lead.
			houseID = nil
		}
	}

	lead := store.Lead{
		Name:    strings.TrimSpace(name),
		Phone:   strings.TrimSpace(phone),
		Comment: comment,
		HouseID: houseID,
		Source:  source,
		Status:  store.LeadNew,
	}
	if err := s.dbStore.CreateLead(&lead); err != nil {
		return nil, fmt.Errorf("failed to create lead: %w", err)
	}
	return &lead, nil
}

func (s *SiteService) GetLeads(status store.LeadStatus) ([]store.Lead, error) {
	return s.dbStore.GetLeads(status)
}

func (s *SiteService) UpdateLeadStatus(id string, status store.LeadStatus) error {
	if !status.Valid() {
		return fmt.Errorf("invalid lead status %q", status)
	}
	return s.dbStore.UpdateLeadStatus(id, status)
}

func (s *SiteService) GetPublishedHouses() ([]store.House, error) {
	return s.dbStore.GetHouses(true)
}

func (s *SiteService) GetAllHouses() ([]store.House, error) {
	return s.dbStore.GetHouses(false)
}

func (s *SiteService) GetHouseBySlug(slug string) (*store.House, error) {
	return s.dbStore.GetHouseBySlug(slug)
}

func (s *SiteService) CreateHouse(h *store.House) error {
	if err := validateHouse(h); err != nil {
		return err
	}
	existing, err := s.dbStore.GetHouseBySlug(h.Slug)
	if err != nil {
		return fmt.Errorf("failed to check slug uniqueness: %w", err)
	}
	if existing != nil {
		return fmt.Errorf("house slug %q already exists", h.Slug)
	}
	return s.dbStore.CreateHouse(h)
}

func (s *SiteService) UpdateHouse(h *store.House) error {
	if err := validateHouse(h); err != nil {
		return err
	}
	return s.dbStore.UpdateHouse(h)
}

func (s *SiteService) DeleteHouse(id string) error {
	return s.dbStore.DeleteHouse(id)
}

func validateHouse(h *store.House) error {
	if strings.TrimSpace(h.Slug) == "" || strings.TrimSpace(h.Name) == "" {
		return fmt.Errorf("house slug and name are required")
	}
	if !h.Style.Valid() {
		return fmt.Errorf("invalid house style %q", h.Style)
	}
	if h.Area <= 0 || h.PriceFrom <= 0 {
		return fmt.Errorf("house area and price_from must be positive")
	}
	return nil
}

func (s *SiteService) GetSetting(key string) (*store.Setting, error) {
	return s.dbStore.GetSetting(key)
}

func (s *SiteService) PutSetting(key, value string) (*store.Setting, error) {
	if strings.TrimSpace(key) == "" {
		return nil, fmt.Errorf("setting key is required")
	}
	return s.dbStore.UpsertSetting(key, value)
}
