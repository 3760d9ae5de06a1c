package store

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	_ "github.com/mattn/go-sqlite3" // SQLite driver
)

type SQLiteStore struct {
	db *sql.DB
}

func NewSQLiteStore(dataSourceName string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite3", dataSourceName)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	if err = db.Ping(); err != nil {
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	store := &SQLiteStore{db: db}
	if err = store.initSchema(); err != nil {
		return nil, fmt.Errorf("failed to initialize schema: %w", err)
	}
	return store, nil
}

func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

func (s *SQLiteStore) initSchema() error {
	schema := `
    CREATE TABLE IF NOT EXISTS admin_users (
        id TEXT PRIMARY KEY, -- UUID
        email TEXT UNIQUE NOT NULL,
        password_hash TEXT NOT NULL,
        created_at DATETIME DEFAULT CURRENT_TIMESTAMP
    );

    CREATE TABLE IF NOT EXISTS houses (
        id TEXT PRIMARY KEY, -- UUID
        slug TEXT UNIQUE NOT NULL,
        name TEXT NOT NULL,
        description TEXT,
        area REAL NOT NULL,
        floors INTEGER NOT NULL DEFAULT 1,
        bedrooms INTEGER NOT NULL DEFAULT 0,
        bathrooms INTEGER NOT NULL DEFAULT 0,
        style TEXT NOT NULL CHECK (style IN ('modern', 'classic', 'scandinavian', 'minimalist', 'chalet')),
        price_from INTEGER NOT NULL,
        construction_days INTEGER,
        images_json TEXT NOT NULL DEFAULT '[]',
        floor_plans_json TEXT NOT NULL DEFAULT '[]',
        features_json TEXT NOT NULL DEFAULT '[]',
        is_published BOOLEAN NOT NULL DEFAULT FALSE,
        created_at DATETIME DEFAULT CURRENT_TIMESTAMP,
        updated_at DATETIME DEFAULT CURRENT_TIMESTAMP
    );

    CREATE TABLE IF NOT EXISTS leads (
        id TEXT PRIMARY KEY, -- UUID
        name TEXT NOT NULL,
        phone TEXT NOT NULL,
        comment TEXT,
        house_id TEXT,
        source TEXT,
        status TEXT NOT NULL DEFAULT 'new' CHECK (status IN ('new', 'in_progress', 'closed')),
        created_at DATETIME DEFAULT CURRENT_TIMESTAMP,
        updated_at DATETIME DEFAULT CURRENT_TIMESTAMP,
        FOREIGN KEY (house_id) REFERENCES houses (id)
    );

    CREATE TABLE IF NOT EXISTS chat_logs (
        id TEXT PRIMARY KEY, -- UUID
        session_id TEXT NOT NULL,
        language TEXT NOT NULL,
        question TEXT NOT NULL,
        answer TEXT NOT NULL,
        ip_address TEXT,
        created_at DATETIME DEFAULT CURRENT_TIMESTAMP
    );

    CREATE TABLE IF NOT EXISTS settings (
        id TEXT PRIMARY KEY, -- UUID
        key TEXT UNIQUE NOT NULL,
        value TEXT NOT NULL,
        updated_at DATETIME DEFAULT CURRENT_TIMESTAMP
    );
    `
	_, err := s.db.Exec(schema)
	return err
}

// Admin user methods

func (s *SQLiteStore) GetAdminUserByEmail(email string) (*AdminUser, error) {
	var user AdminUser
	err := s.db.QueryRow("SELECT id, email, password_hash, created_at FROM admin_users WHERE email = ?", email).
		Scan(&user.ID, &user.Email, &user.PasswordHash, &user.CreatedAt)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil // User not found
		}
		return nil, fmt.Errorf("failed to query admin user: %w", err)
	}
	return &user, nil
}

func (s *SQLiteStore) CreateAdminUser(email, passwordHash string) (*AdminUser, error) {
	user := AdminUser{
		ID:           uuid.NewString(),
		Email:        email,
		PasswordHash: passwordHash,
		CreatedAt:    time.Now(),
	}
	_, err := s.db.Exec("INSERT INTO admin_users (id, email, password_hash, created_at) VALUES (?, ?, ?, ?)",
		user.ID, user.Email, user.PasswordHash, user.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("failed to insert admin user: %w", err)
	}
	return &user, nil
}

func (s *SQLiteStore) CountAdminUsers() (int, error) {
	var count int
	if err := s.db.QueryRow("SELECT COUNT(*) FROM admin_users").Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count admin users: %w", err)
	}
	return count, nil
}

// House methods

func (s *SQLiteStore) CreateHouse(h *House) error {
	h.ID = uuid.NewString()
	now := time.Now()
	h.CreatedAt = now
	h.UpdatedAt = now

	images, floorPlans, features, err := marshalHouseLists(h)
	if err != nil {
		return err
	}

	stmt, err := s.db.Prepare(`INSERT INTO houses
        (id, slug, name, description, area, floors, bedrooms, bathrooms, style, price_from,
         construction_days, images_json, floor_plans_json, features_json, is_published, created_at, updated_at)
        VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("failed to prepare house insert: %w", err)
	}
	defer stmt.Close()

	_, err = stmt.Exec(h.ID, h.Slug, h.Name, h.Description, h.Area, h.Floors, h.Bedrooms, h.Bathrooms,
		h.Style, h.PriceFrom, h.ConstructionDays, images, floorPlans, features, h.IsPublished, h.CreatedAt, h.UpdatedAt)
	if err != nil {
		return fmt.Errorf("failed to execute house insert: %w", err)
	}
	return nil
}

func (s *SQLiteStore) UpdateHouse(h *House) error {
	h.UpdatedAt = time.Now()

	images, floorPlans, features, err := marshalHouseLists(h)
	if err != nil {
		return err
	}

	stmt, err := s.db.Prepare(`UPDATE houses SET
        slug = ?, name = ?, description = ?, area = ?, floors = ?, bedrooms = ?, bathrooms = ?,
        style = ?, price_from = ?, construction_days = ?, images_json = ?, floor_plans_json = ?,
        features_json = ?, is_published = ?, updated_at = ?
        WHERE id = ?`)
	if err != nil {
		return fmt.Errorf("failed to prepare house update: %w", err)
	}
	defer stmt.Close()

	res, err := stmt.Exec(h.Slug, h.Name, h.Description, h.Area, h.Floors, h.Bedrooms, h.Bathrooms,
		h.Style, h.PriceFrom, h.ConstructionDays, images, floorPlans, features, h.IsPublished, h.UpdatedAt, h.ID)
	if err != nil {
		return fmt.Errorf("failed to execute house update: %w", err)
	}
	affected, _ := res.RowsAffected()
	if affected == 0 {
		return fmt.Errorf("house not found, nothing updated")
	}
	return nil
}

func (s *SQLiteStore) DeleteHouse(id string) error {
	res, err := s.db.Exec("DELETE FROM houses WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("failed to delete house: %w", err)
	}
	affected, _ := res.RowsAffected()
	if affected == 0 {
		return fmt.Errorf("house not found, nothing deleted")
	}
	return nil
}

const houseColumns = `id, slug, name, description, area, floors, bedrooms, bathrooms, style, price_from,
    construction_days, images_json, floor_plans_json, features_json, is_published, created_at, updated_at`

func (s *SQLiteStore) GetHouseBySlug(slug string) (*House, error) {
	row := s.db.QueryRow("SELECT "+houseColumns+" FROM houses WHERE slug = ?", slug)
	return scanHouse(row)
}

func (s *SQLiteStore) GetHouseByID(id string) (*House, error) {
	row := s.db.QueryRow("SELECT "+houseColumns+" FROM houses WHERE id = ?", id)
	return scanHouse(row)
}

// GetHouses returns houses ordered by creation time, newest first.
// When publishedOnly is set, drafts are excluded.
func (s *SQLiteStore) GetHouses(publishedOnly bool) ([]House, error) {
	query := "SELECT " + houseColumns + " FROM houses"
	if publishedOnly {
		query += " WHERE is_published = TRUE"
	}
	query += " ORDER BY created_at DESC"

	rows, err := s.db.Query(query)
	if err != nil {
		return nil, fmt.Errorf("failed to query houses: %w", err)
	}
	defer rows.Close()

	var houses []House
	for rows.Next() {
		house, err := scanHouse(rows)
		if err != nil {
			return nil, err
		}
		houses = append(houses, *house)
	}
	return houses, rows.Err()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanHouse(row rowScanner) (*House, error) {
	var h House
	var description sql.NullString
	var constructionDays sql.NullInt64
	var imagesJSON, floorPlansJSON, featuresJSON string

	err := row.Scan(&h.ID, &h.Slug, &h.Name, &description, &h.Area, &h.Floors, &h.Bedrooms, &h.Bathrooms,
		&h.Style, &h.PriceFrom, &constructionDays, &imagesJSON, &floorPlansJSON, &featuresJSON,
		&h.IsPublished, &h.CreatedAt, &h.UpdatedAt)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil // Not found
		}
		return nil, fmt.Errorf("failed to scan house row: %w", err)
	}
	if description.Valid {
		h.Description = &description.String
	}
	if constructionDays.Valid {
		days := int(constructionDays.Int64)
		h.ConstructionDays = &days
	}
	if err := json.Unmarshal([]byte(imagesJSON), &h.Images); err != nil {
		return nil, fmt.Errorf("failed to unmarshal house images: %w", err)
	}
	if err := json.Unmarshal([]byte(floorPlansJSON), &h.FloorPlans); err != nil {
		return nil, fmt.Errorf("failed to unmarshal house floor plans: %w", err)
	}
	if err := json.Unmarshal([]byte(featuresJSON), &h.Features); err != nil {
		return nil, fmt.Errorf("failed to unmarshal house features: %w", err)
	}
	return &h, nil
}

func marshalHouseLists(h *House) (images, floorPlans, features string, err error) {
	for _, pair := range []struct {
		list []string
		out  *string
	}{
		{h.Images, &images},
		{h.FloorPlans, &floorPlans},
		{h.Features, &features},
	} {
		list := pair.list
		if list == nil {
			list = []string{}
		}
		b, err := json.Marshal(list)
		if err != nil {
			return "", "", "", fmt.Errorf("failed to marshal house list: %w", err)
		}
		*pair.out = string(b)
	}
	return images, floorPlans, features, nil
}

// Lead methods

func (s *SQLiteStore) CreateLead(l *Lead) error {
	l.ID = uuid.NewString()
	if l.Status == "" {
		l.Status = LeadNew
	}
	now := time.Now()
	l.CreatedAt = now
	l.UpdatedAt = now

	stmt, err := s.db.Prepare(`INSERT INTO leads
        (id, name, phone, comment, house_id, source, status, created_at, updated_at)
        VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("failed to prepare lead insert: %w", err)
	}
	defer stmt.Close()

	_, err = stmt.Exec(l.ID, l.Name, l.Phone, l.Comment, l.HouseID, l.Source, l.Status, l.CreatedAt, l.UpdatedAt)
	if err != nil {
		return fmt.Errorf("failed to execute lead insert: %w", err)
	}
	return nil
}

// GetLeads returns leads newest first, optionally filtered by status.
func (s *SQLiteStore) GetLeads(status LeadStatus) ([]Lead, error) {
	query := "SELECT id, name, phone, comment, house_id, source, status, created_at, updated_at FROM leads"
	var args []any
	if status != "" {
		query += " WHERE status = ?"
		args = append(args, status)
	}
	query += " ORDER BY created_at DESC"

	rows, err := s.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query leads: %w", err)
	}
	defer rows.Close()

	var leads []Lead
	for rows.Next() {
		var l Lead
		var comment, houseID, source sql.NullString
		if err := rows.Scan(&l.ID, &l.Name, &l.Phone, &comment, &houseID, &source, &l.Status, &l.CreatedAt, &l.UpdatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan lead row: %w", err)
		}
		if comment.Valid {
			l.Comment = &comment.String
		}
		if houseID.Valid {
			l.HouseID = &houseID.String
		}
		if source.Valid {
			l.Source = &source.String
		}
		leads = append(leads, l)
	}
	return leads, rows.Err()
}

func (s *SQLiteStore) UpdateLeadStatus(id string, status LeadStatus) error {
	stmt, err := s.db.Prepare("UPDATE leads SET status = ?, updated_at = ? WHERE id = ?")
	if err != nil {
		return fmt.Errorf("failed to prepare lead status update: %w", err)
	}
	defer stmt.Close()

	res, err := stmt.Exec(status, time.Now(), id)
	if err != nil {
		return fmt.Errorf("failed to execute lead status update: %w", err)
	}
	affected, _ := res.RowsAffected()
	if affected == 0 {
		return fmt.Errorf("lead not found, status not updated")
	}
	return nil
}

// Chat log methods

func (s *SQLiteStore) CreateChatLog(entry *ChatLog) error {
	entry.ID = uuid.NewString()
	entry.CreatedAt = time.Now()

	stmt, err := s.db.Prepare(`INSERT INTO chat_logs
        (id, session_id, language, question, answer, ip_address, created_at)
        VALUES (?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("failed to prepare chat log insert: %w", err)
	}
	defer stmt.Close()

	_, err = stmt.Exec(entry.ID, entry.SessionID, entry.Language, entry.Question, entry.Answer, entry.IPAddress, entry.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to execute chat log insert: %w", err)
	}
	return nil
}

func (s *SQLiteStore) GetChatLogsBySession(sessionID string) ([]ChatLog, error) {
	rows, err := s.db.Query(
		"SELECT id, session_id, language, question, answer, ip_address, created_at FROM chat_logs WHERE session_id = ? ORDER BY created_at ASC",
		sessionID)
	if err != nil {
		return nil, fmt.Errorf("failed to query chat logs: %w", err)
	}
	defer rows.Close()

	var logs []ChatLog
	for rows.Next() {
		var entry ChatLog
		var ip sql.NullString
		if err := rows.Scan(&entry.ID, &entry.SessionID, &entry.Language, &entry.Question, &entry.Answer, &ip, &entry.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan chat log row: %w", err)
		}
		if ip.Valid {
			entry.IPAddress = &ip.String
		}
		logs = append(logs, entry)
	}
	return logs, rows.Err()
}

// Setting methods

func (s *SQLiteStore) GetSetting(key string) (*Setting, error) {
	var setting Setting
	err := s.db.QueryRow("SELECT id, key, value, updated_at FROM settings WHERE key = ?", key).
		Scan(&setting.ID, &setting.Key, &setting.Value, &setting.UpdatedAt)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil // Not found
		}
		return nil, fmt.Errorf("failed to query setting: %w", err)
	}
	return &setting, nil
}

// UpsertSetting creates the key on first write and overwrites it afterwards.
func (s *SQLiteStore) UpsertSetting(key, value string) (*Setting, error) {
	now := time.Now()
	stmt, err := s.db.Prepare(`INSERT INTO settings (id, key, value, updated_at) VALUES (?, ?, ?, ?)
        ON CONFLICT(key) DO UPDATE SET value = excluded.value, updated_at = excluded.updated_at`)
	if err != nil {
		return nil, fmt.Errorf("failed to prepare setting upsert: %w", err)
	}
	defer stmt.Close()

	if _, err := stmt.Exec(uuid.NewString(), key, value, now); err != nil {
		return nil, fmt.Errorf("failed to execute setting upsert: %w", err)
	}
	return s.GetSetting(key)
}
