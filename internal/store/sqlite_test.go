package store

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestStore(t *testing.T) *SQLiteStore {
	s, err := NewSQLiteStore(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

func sampleHouse(slug string) *House {
	desc := "Дом в скандинавском стиле"
	days := 120
	return &House{
		Slug:             slug,
		Name:             "Скандинавия 140",
		Description:      &desc,
		Area:             140.5,
		Floors:           2,
		Bedrooms:         3,
		Bathrooms:        2,
		Style:            StyleScandinavian,
		PriceFrom:        28000000,
		ConstructionDays: &days,
		Images:           []string{"houses/scand-140/1.jpg"},
		Features:         []string{"терраса", "панорамные окна"},
		IsPublished:      true,
	}
}

func TestHouseRoundTrip(t *testing.T) {
	s := newTestStore(t)

	h := sampleHouse("scand-140")
	require.NoError(t, s.CreateHouse(h))
	require.NotEmpty(t, h.ID)

	got, err := s.GetHouseBySlug("scand-140")
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, h.Name, got.Name)
	assert.Equal(t, StyleScandinavian, got.Style)
	assert.Equal(t, []string{"houses/scand-140/1.jpg"}, got.Images)
	assert.Equal(t, []string{"терраса", "панорамные окна"}, got.Features)
	assert.Empty(t, got.FloorPlans)
	require.NotNil(t, got.ConstructionDays)
	assert.Equal(t, 120, *got.ConstructionDays)
}

func TestHousePublishedFilter(t *testing.T) {
	s := newTestStore(t)

	published := sampleHouse("published")
	require.NoError(t, s.CreateHouse(published))

	draft := sampleHouse("draft")
	draft.IsPublished = false
	require.NoError(t, s.CreateHouse(draft))

	all, err := s.GetHouses(false)
	require.NoError(t, err)
	assert.Len(t, all, 2)

	visible, err := s.GetHouses(true)
	require.NoError(t, err)
	require.Len(t, visible, 1)
	assert.Equal(t, "published", visible[0].Slug)
}

func TestHouseUpdateAndDelete(t *testing.T) {
	s := newTestStore(t)

	h := sampleHouse("to-edit")
	require.NoError(t, s.CreateHouse(h))

	h.Name = "Скандинавия 160"
	h.Area = 160
	require.NoError(t, s.UpdateHouse(h))

	got, err := s.GetHouseByID(h.ID)
	require.NoError(t, err)
	assert.Equal(t, "Скандинавия 160", got.Name)
	assert.Equal(t, 160.0, got.Area)

	require.NoError(t, s.DeleteHouse(h.ID))
	got, err = s.GetHouseByID(h.ID)
	require.NoError(t, err)
	assert.Nil(t, got)

	assert.Error(t, s.DeleteHouse(h.ID), "deleting a missing house reports an error")
}

func TestLeadLifecycle(t *testing.T) {
	s := newTestStore(t)

	source := "catalog"
	lead := &Lead{Name: "Айдар", Phone: "+7 701 000 00 00", Source: &source}
	require.NoError(t, s.CreateLead(lead))
	assert.Equal(t, LeadNew, lead.Status)

	other := &Lead{Name: "Мария", Phone: "+7 702 000 00 00"}
	require.NoError(t, s.CreateLead(other))
	require.NoError(t, s.UpdateLeadStatus(other.ID, LeadInProgress))

	fresh, err := s.GetLeads(LeadNew)
	require.NoError(t, err)
	require.Len(t, fresh, 1)
	assert.Equal(t, "Айдар", fresh[0].Name)

	all, err := s.GetLeads("")
	require.NoError(t, err)
	assert.Len(t, all, 2)

	assert.Error(t, s.UpdateLeadStatus("missing-id", LeadClosed))
}

func TestChatLogAppendOnly(t *testing.T) {
	s := newTestStore(t)

	ip := "10.0.0.5"
	for i := 0; i < 2; i++ {
		entry := &ChatLog{
			SessionID: "session_x",
			Language:  "ru",
			Question:  "Сколько стоит дом?",
			Answer:    "От 180 000 тг/м².",
			IPAddress: &ip,
		}
		require.NoError(t, s.CreateChatLog(entry))
		require.NotEmpty(t, entry.ID)
	}

	logs, err := s.GetChatLogsBySession("session_x")
	require.NoError(t, err)
	require.Len(t, logs, 2)
	assert.NotEqual(t, logs[0].ID, logs[1].ID)

	none, err := s.GetChatLogsBySession("other-session")
	require.NoError(t, err)
	assert.Empty(t, none)
}

func TestSettingUpsert(t *testing.T) {
	s := newTestStore(t)

	first, err := s.UpsertSetting("contacts", `{"phone":"+7 727 000 00 00"}`)
	require.NoError(t, err)
	assert.Equal(t, `{"phone":"+7 727 000 00 00"}`, first.Value)

	second, err := s.UpsertSetting("contacts", `{"phone":"+7 727 111 11 11"}`)
	require.NoError(t, err)
	assert.Equal(t, first.ID, second.ID, "upsert keeps the original row")
	assert.Equal(t, `{"phone":"+7 727 111 11 11"}`, second.Value)

	missing, err := s.GetSetting("absent")
	require.NoError(t, err)
	assert.Nil(t, missing)
}

func TestAdminUsers(t *testing.T) {
	s := newTestStore(t)

	count, err := s.CountAdminUsers()
	require.NoError(t, err)
	assert.Equal(t, 0, count)

	user, err := s.CreateAdminUser("admin@bokeeb.kz", "hash")
	require.NoError(t, err)

	got, err := s.GetAdminUserByEmail("admin@bokeeb.kz")
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, user.ID, got.ID)

	missing, err := s.GetAdminUserByEmail("nobody@bokeeb.kz")
	require.NoError(t, err)
	assert.Nil(t, missing)
}
