package services

import (
	"context"
	"errors"
	"io"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/Dosada05/medcamp/models"
	"github.com/Dosada05/medcamp/notify"
	"github.com/Dosada05/medcamp/repositories"
	"github.com/Dosada05/medcamp/storage"
)

// memStore is an in-memory implementation of every repository. One mutex
// makes each call atomic, which is what the SQL and Mongo stores guarantee
// with constraints and transactions.
type memStore struct {
	mu            sync.Mutex
	users         map[string]models.User
	camps         map[string]models.Camp
	registrations map[string]models.Registration
	feedback      []models.Feedback

	failWith error
}

func newMemStore() *memStore {
	return &memStore{
		users:         make(map[string]models.User),
		camps:         make(map[string]models.Camp),
		registrations: make(map[string]models.Registration),
	}
}

func (m *memStore) lock() error {
	m.mu.Lock()
	if m.failWith != nil {
		m.mu.Unlock()
		return m.failWith
	}
	return nil
}

func (m *memStore) addCamp(c models.Camp) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.camps[c.ID] = c
}

func (m *memStore) addUser(u models.User) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.users[u.Email] = u
}

func (m *memStore) registrationCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.registrations)
}

func (m *memStore) camp(id string) models.Camp {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.camps[id]
}

// --- users ---

type memUsers struct{ *memStore }

func (r memUsers) Create(ctx context.Context, u *models.User) error {
	if err := r.lock(); err != nil {
		return err
	}
	defer r.mu.Unlock()
	if _, ok := r.users[u.Email]; ok {
		return repositories.ErrUserEmailConflict
	}
	u.CreatedAt = time.Now().UTC()
	r.users[u.Email] = *u
	return nil
}

func (r memUsers) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	if err := r.lock(); err != nil {
		return nil, err
	}
	defer r.mu.Unlock()
	u, ok := r.users[email]
	if !ok {
		return nil, repositories.ErrUserNotFound
	}
	return &u, nil
}

func (r memUsers) UpdateProfile(ctx context.Context, email string, patch models.UserProfilePatch) (*models.User, error) {
	if err := r.lock(); err != nil {
		return nil, err
	}
	defer r.mu.Unlock()
	u, ok := r.users[email]
	if !ok {
		return nil, repositories.ErrUserNotFound
	}
	if patch.Name != nil {
		u.Name = *patch.Name
	}
	if patch.Photo != nil {
		u.Photo = *patch.Photo
	}
	r.users[email] = u
	return &u, nil
}

func (r memUsers) Count(ctx context.Context) (int, error) {
	if err := r.lock(); err != nil {
		return 0, err
	}
	defer r.mu.Unlock()
	return len(r.users), nil
}

// --- camps ---

type memCamps struct{ *memStore }

func (r memCamps) Create(ctx context.Context, c *models.Camp) error {
	if err := r.lock(); err != nil {
		return err
	}
	defer r.mu.Unlock()
	c.CreatedAt = time.Now().UTC()
	r.camps[c.ID] = *c
	return nil
}

func (r memCamps) GetByID(ctx context.Context, id string) (*models.Camp, error) {
	if err := r.lock(); err != nil {
		return nil, err
	}
	defer r.mu.Unlock()
	c, ok := r.camps[id]
	if !ok {
		return nil, repositories.ErrCampNotFound
	}
	return &c, nil
}

func (r memCamps) List(ctx context.Context, f repositories.ListCampsFilter) ([]models.Camp, int, error) {
	if err := r.lock(); err != nil {
		return nil, 0, err
	}
	defer r.mu.Unlock()
	out := make([]models.Camp, 0)
	for _, c := range r.camps {
		if f.Search == "" || strings.Contains(strings.ToLower(c.Name), strings.ToLower(f.Search)) {
			out = append(out, c)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if f.Sort == models.CampSortParticipants {
			return out[i].ParticipantCount > out[j].ParticipantCount
		}
		return out[i].Name < out[j].Name
	})
	total := len(out)
	if f.Offset < len(out) {
		out = out[f.Offset:]
	} else {
		out = out[:0]
	}
	if f.Limit > 0 && len(out) > f.Limit {
		out = out[:f.Limit]
	}
	return out, total, nil
}

func (r memCamps) Update(ctx context.Context, c *models.Camp) error {
	if err := r.lock(); err != nil {
		return err
	}
	defer r.mu.Unlock()
	if _, ok := r.camps[c.ID]; !ok {
		return repositories.ErrCampNotFound
	}
	r.camps[c.ID] = *c
	return nil
}

func (r memCamps) UpdateImageKey(ctx context.Context, id string, key *string) error {
	if err := r.lock(); err != nil {
		return err
	}
	defer r.mu.Unlock()
	c, ok := r.camps[id]
	if !ok {
		return repositories.ErrCampNotFound
	}
	c.ImageKey = key
	r.camps[id] = c
	return nil
}

func (r memCamps) Delete(ctx context.Context, id string) error {
	if err := r.lock(); err != nil {
		return err
	}
	defer r.mu.Unlock()
	if _, ok := r.camps[id]; !ok {
		return repositories.ErrCampNotFound
	}
	delete(r.camps, id)
	for regID, reg := range r.registrations {
		if reg.CampID == id {
			delete(r.registrations, regID)
		}
	}
	return nil
}

func (r memCamps) AdjustParticipantCount(ctx context.Context, id string, delta int) (*models.Camp, error) {
	if err := r.lock(); err != nil {
		return nil, err
	}
	defer r.mu.Unlock()
	return r.adjustLocked(id, delta)
}

func (m *memStore) adjustLocked(id string, delta int) (*models.Camp, error) {
	c, ok := m.camps[id]
	if !ok {
		return nil, repositories.ErrCampNotFound
	}
	if c.ParticipantCount+delta < 0 {
		return nil, repositories.ErrCampCountUnderflow
	}
	c.ParticipantCount += delta
	m.camps[id] = c
	return &c, nil
}

func (r memCamps) SetParticipantCount(ctx context.Context, id string, count int) (*models.Camp, error) {
	if err := r.lock(); err != nil {
		return nil, err
	}
	defer r.mu.Unlock()
	c, ok := r.camps[id]
	if !ok {
		return nil, repositories.ErrCampNotFound
	}
	c.ParticipantCount = count
	r.camps[id] = c
	return &c, nil
}

func (r memCamps) Count(ctx context.Context) (int, error) {
	if err := r.lock(); err != nil {
		return 0, err
	}
	defer r.mu.Unlock()
	return len(r.camps), nil
}

// --- registrations ---

type memRegistrations struct{ *memStore }

func (r memRegistrations) Create(ctx context.Context, reg *models.Registration) error {
	if err := r.lock(); err != nil {
		return err
	}
	defer r.mu.Unlock()
	if _, ok := r.camps[reg.CampID]; !ok {
		return repositories.ErrCampNotFound
	}
	for _, existing := range r.registrations {
		if existing.CampID == reg.CampID && existing.ParticipantEmail == reg.ParticipantEmail {
			return repositories.ErrRegistrationConflict
		}
	}
	r.registrations[reg.ID] = *reg
	_, err := r.adjustLocked(reg.CampID, 1)
	return err
}

func (r memRegistrations) find(match func(models.Registration) bool) (*models.Registration, error) {
	if err := r.lock(); err != nil {
		return nil, err
	}
	defer r.mu.Unlock()
	for _, reg := range r.registrations {
		if match(reg) {
			found := reg
			return &found, nil
		}
	}
	return nil, repositories.ErrRegistrationNotFound
}

func (r memRegistrations) FindByID(ctx context.Context, id string) (*models.Registration, error) {
	return r.find(func(reg models.Registration) bool { return reg.ID == id })
}

func (r memRegistrations) FindByIDAndParticipant(ctx context.Context, id, email string) (*models.Registration, error) {
	return r.find(func(reg models.Registration) bool { return reg.ID == id && reg.ParticipantEmail == email })
}

func (r memRegistrations) FindByCampAndParticipant(ctx context.Context, campID, email string) (*models.Registration, error) {
	return r.find(func(reg models.Registration) bool { return reg.CampID == campID && reg.ParticipantEmail == email })
}

func (r memRegistrations) MarkPaid(ctx context.Context, id string, txID *string, at time.Time) (bool, error) {
	if err := r.lock(); err != nil {
		return false, err
	}
	defer r.mu.Unlock()
	reg, ok := r.registrations[id]
	if !ok || reg.PaymentStatus != models.PaymentPay {
		return false, nil
	}
	if txID != nil {
		for _, other := range r.registrations {
			if other.ID != id && other.TransactionID != nil && *other.TransactionID == *txID {
				return false, repositories.ErrTransactionConflict
			}
		}
	}
	reg.ConfirmationStatus = models.ConfirmationProcessing
	reg.PaymentStatus = models.PaymentPaid
	reg.TransactionID = txID
	reg.PaidAt = &at
	reg.UpdatedAt = at
	r.registrations[id] = reg
	return true, nil
}

func (r memRegistrations) MarkConfirmed(ctx context.Context, id string, at time.Time) (bool, error) {
	if err := r.lock(); err != nil {
		return false, err
	}
	defer r.mu.Unlock()
	reg, ok := r.registrations[id]
	if !ok || reg.ConfirmationStatus != models.ConfirmationProcessing || reg.PaymentStatus != models.PaymentPaid {
		return false, nil
	}
	reg.ConfirmationStatus = models.ConfirmationConfirmed
	reg.UpdatedAt = at
	r.registrations[id] = reg
	return true, nil
}

func (r memRegistrations) deleteWhere(match func(models.Registration) bool) (*models.Registration, error) {
	if err := r.lock(); err != nil {
		return nil, err
	}
	defer r.mu.Unlock()
	for id, reg := range r.registrations {
		if match(reg) {
			delete(r.registrations, id)
			if _, err := r.adjustLocked(reg.CampID, -1); err != nil && !errors.Is(err, repositories.ErrCampCountUnderflow) {
				return nil, err
			}
			deleted := reg
			return &deleted, nil
		}
	}
	return nil, nil
}

func (r memRegistrations) DeleteByCampAndParticipant(ctx context.Context, campID, email string) (*models.Registration, error) {
	return r.deleteWhere(func(reg models.Registration) bool { return reg.CampID == campID && reg.ParticipantEmail == email })
}

func (r memRegistrations) DeleteByID(ctx context.Context, id string) (*models.Registration, error) {
	return r.deleteWhere(func(reg models.Registration) bool { return reg.ID == id })
}

func (r memRegistrations) CountByCamp(ctx context.Context, campID string) (int, error) {
	if err := r.lock(); err != nil {
		return 0, err
	}
	defer r.mu.Unlock()
	n := 0
	for _, reg := range r.registrations {
		if reg.CampID == campID {
			n++
		}
	}
	return n, nil
}

func (r memRegistrations) paid(f models.PaidRegistrationsFilter) []models.RegistrationWithCamp {
	out := make([]models.RegistrationWithCamp, 0)
	search := strings.ToLower(f.Search)
	for _, reg := range r.registrations {
		if reg.PaymentStatus != models.PaymentPaid {
			continue
		}
		if search != "" &&
			!strings.Contains(strings.ToLower(reg.ParticipantName), search) &&
			!strings.Contains(strings.ToLower(string(reg.ConfirmationStatus)), search) {
			continue
		}
		out = append(out, models.RegistrationWithCamp{Registration: reg, Camp: r.camps[reg.CampID]})
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].CreatedAt.After(out[j].CreatedAt)
		}
		return out[i].ID > out[j].ID
	})
	return out
}

func (r memRegistrations) ListPaid(ctx context.Context, f models.PaidRegistrationsFilter) ([]models.RegistrationWithCamp, error) {
	if err := r.lock(); err != nil {
		return nil, err
	}
	defer r.mu.Unlock()
	out := r.paid(f)
	if f.Offset < len(out) {
		out = out[f.Offset:]
	} else {
		out = out[:0]
	}
	if f.Limit > 0 && len(out) > f.Limit {
		out = out[:f.Limit]
	}
	return out, nil
}

func (r memRegistrations) CountPaid(ctx context.Context, f models.PaidRegistrationsFilter) (int, error) {
	if err := r.lock(); err != nil {
		return 0, err
	}
	defer r.mu.Unlock()
	return len(r.paid(f)), nil
}

func (r memRegistrations) ListByParticipant(ctx context.Context, email string) ([]models.RegistrationWithCamp, error) {
	if err := r.lock(); err != nil {
		return nil, err
	}
	defer r.mu.Unlock()
	out := make([]models.RegistrationWithCamp, 0)
	for _, reg := range r.registrations {
		if reg.ParticipantEmail == email {
			out = append(out, models.RegistrationWithCamp{Registration: reg, Camp: r.camps[reg.CampID]})
		}
	}
	return out, nil
}

func (r memRegistrations) Stats(ctx context.Context) (models.RegistrationStats, error) {
	if err := r.lock(); err != nil {
		return models.RegistrationStats{}, err
	}
	defer r.mu.Unlock()
	var s models.RegistrationStats
	for _, reg := range r.registrations {
		s.Total++
		if reg.PaymentStatus == models.PaymentPaid {
			s.Paid++
			s.FeesCollected += r.camps[reg.CampID].Fees
		}
		if reg.ConfirmationStatus == models.ConfirmationConfirmed {
			s.Confirmed++
		}
	}
	return s, nil
}

// --- feedback ---

type memFeedback struct{ *memStore }

func (r memFeedback) Create(ctx context.Context, fb *models.Feedback) error {
	if err := r.lock(); err != nil {
		return err
	}
	defer r.mu.Unlock()
	if _, ok := r.camps[fb.CampID]; !ok {
		return repositories.ErrFeedbackCampInvalid
	}
	r.feedback = append(r.feedback, *fb)
	return nil
}

func (r memFeedback) List(ctx context.Context, limit int) ([]models.Feedback, error) {
	if err := r.lock(); err != nil {
		return nil, err
	}
	defer r.mu.Unlock()
	out := append([]models.Feedback(nil), r.feedback...)
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (r memFeedback) ListByCamp(ctx context.Context, campID string) ([]models.Feedback, error) {
	if err := r.lock(); err != nil {
		return nil, err
	}
	defer r.mu.Unlock()
	out := make([]models.Feedback, 0)
	for _, fb := range r.feedback {
		if fb.CampID == campID {
			out = append(out, fb)
		}
	}
	return out, nil
}

// --- collaborators ---

type recordingNotifier struct {
	mu     sync.Mutex
	events []notify.Event
	err    error
}

func (n *recordingNotifier) Notify(ctx context.Context, e notify.Event) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.events = append(n.events, e)
	return n.err
}

func (n *recordingNotifier) types() []notify.EventType {
	n.mu.Lock()
	defer n.mu.Unlock()
	out := make([]notify.EventType, len(n.events))
	for i, e := range n.events {
		out[i] = e.Type
	}
	return out
}

type mockVerifier struct {
	VerifyPaymentFunc func(ctx context.Context, ref string) (models.PaymentVerification, error)
	calls             int
}

func (m *mockVerifier) VerifyPayment(ctx context.Context, ref string) (models.PaymentVerification, error) {
	m.calls++
	return m.VerifyPaymentFunc(ctx, ref)
}

type mockUploader struct {
	UploadFunc func(ctx context.Context, key, contentType string, r io.Reader) (*storage.UploadResult, error)
	deleted    []string
}

func (m *mockUploader) Upload(ctx context.Context, key, contentType string, r io.Reader) (*storage.UploadResult, error) {
	if m.UploadFunc != nil {
		return m.UploadFunc(ctx, key, contentType, r)
	}
	return &storage.UploadResult{Key: key, Location: m.GetPublicURL(key)}, nil
}

func (m *mockUploader) Delete(ctx context.Context, key string) error {
	m.deleted = append(m.deleted, key)
	return nil
}

func (m *mockUploader) GetPublicURL(key string) string {
	return "https://cdn.test/" + key
}

func organizer() *models.Caller {
	return &models.Caller{Email: "org@example.com", Role: models.RoleOrganizer}
}

func participant(email string) *models.Caller {
	return &models.Caller{Email: email, Role: models.RoleParticipant}
}
