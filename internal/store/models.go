package store

import "time"

type HouseStyle string

const (
	StyleModern       HouseStyle = "modern"
	StyleClassic      HouseStyle = "classic"
	StyleScandinavian HouseStyle = "scandinavian"
	StyleMinimalist   HouseStyle = "minimalist"
	StyleChalet       HouseStyle = "chalet"
)

func (s HouseStyle) Valid() bool {
	switch s {
	case StyleModern, StyleClassic, StyleScandinavian, StyleMinimalist, StyleChalet:
		return true
	}
	return false
}

type LeadStatus string

const (
	LeadNew        LeadStatus = "new"
	LeadInProgress LeadStatus = "in_progress"
	LeadClosed     LeadStatus = "closed"
)

func (s LeadStatus) Valid() bool {
	switch s {
	case LeadNew, LeadInProgress, LeadClosed:
		return true
	}
	return false
}

type House struct {
	ID               string     `json:"id"` // UUID
	Slug             string     `json:"slug"`
	Name             string     `json:"name"`
	Description      *string    `json:"description"` // Nullable
	Area             float64    `json:"area"`
	Floors           int        `json:"floors"`
	Bedrooms         int        `json:"bedrooms"`
	Bathrooms        int        `json:"bathrooms"`
	Style            HouseStyle `json:"style"`
	PriceFrom        int64      `json:"price_from"`
	ConstructionDays *int       `json:"construction_days"` // Nullable
	Images           []string   `json:"images"`
	FloorPlans       []string   `json:"floor_plans"`
	Features         []string   `json:"features"`
	IsPublished      bool       `json:"is_published"`
	CreatedAt        time.Time  `json:"created_at"`
	UpdatedAt        time.Time  `json:"updated_at"`
}

type Lead struct {
	ID        string     `json:"id"` // UUID
	Name      string     `json:"name"`
	Phone     string     `json:"phone"`
	Comment   *string    `json:"comment"`  // Nullable
	HouseID   *string    `json:"house_id"` // Nullable
	Source    *string    `json:"source"`   // Nullable, e.g. "catalog", "contact_form"
	Status    LeadStatus `json:"status"`
	CreatedAt time.Time  `json:"created_at"`
	UpdatedAt time.Time  `json:"updated_at"`
}

type ChatLog struct {
	ID        string    `json:"id"` // UUID
	SessionID string    `json:"session_id"`
	Language  string    `json:"language"`
	Question  string    `json:"question"`
	Answer    string    `json:"answer"`
	IPAddress *string   `json:"ip_address"` // Nullable, best-effort
	CreatedAt time.Time `json:"created_at"`
}

type Setting struct {
	ID        string    `json:"id"` // UUID
	Key       string    `json:"key"`
	Value     string    `json:"value"` // JSON document
	UpdatedAt time.Time `json:"updated_at"`
}

type AdminUser struct {
	ID           string    `json:"id"` // UUID
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"` // Do not expose this in JSON responses
	CreatedAt    time.Time `json:"created_at"`
}
