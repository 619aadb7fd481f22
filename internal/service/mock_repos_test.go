package service

import (
	"context"
	"sort"
	"sync"
	"time"

	"gorm.io/gorm"

	"channelpass/gatekeeper/internal/model"
)

// ── Mock CodeRepository ──

type mockCodeRepo struct {
	mu    sync.Mutex
	codes map[string]*model.Code
}

func newMockCodeRepo() *mockCodeRepo {
	return &mockCodeRepo{codes: make(map[string]*model.Code)}
}

func (m *mockCodeRepo) Create(_ context.Context, code *model.Code) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.codes[code.Code]; ok {
		return gorm.ErrDuplicatedKey
	}
	c := *code
	m.codes[code.Code] = &c
	return nil
}

func (m *mockCodeRepo) GetByCode(_ context.Context, code string) (*model.Code, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if c, ok := m.codes[code]; ok {
		cp := *c
		return &cp, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockCodeRepo) MarkUsed(_ context.Context, code string, userID int64, usedAt time.Time) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	c, ok := m.codes[code]
	if !ok || c.IsUsed {
		return false, nil
	}
	c.IsUsed = true
	c.UsedBy = &userID
	c.UsedAt = &usedAt
	return true, nil
}

func (m *mockCodeRepo) List(_ context.Context) ([]model.Code, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	result := make([]model.Code, 0, len(m.codes))
	for _, c := range m.codes {
		result = append(result, *c)
	}
	return result, nil
}

// ── Mock SubscriptionRepository ──

type mockSubscriptionRepo struct {
	mu     sync.Mutex
	nextID uint
	subs   map[uint]*model.Subscription
}

func newMockSubscriptionRepo() *mockSubscriptionRepo {
	return &mockSubscriptionRepo{subs: make(map[uint]*model.Subscription)}
}

func (m *mockSubscriptionRepo) Create(_ context.Context, sub *model.Subscription) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, s := range m.subs {
		if s.UserID == sub.UserID && s.Code == sub.Code {
			return gorm.ErrDuplicatedKey
		}
	}
	m.nextID++
	sub.ID = m.nextID
	cp := *sub
	m.subs[sub.ID] = &cp
	return nil
}

func (m *mockSubscriptionRepo) GetByID(_ context.Context, id uint) (*model.Subscription, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if s, ok := m.subs[id]; ok {
		cp := *s
		return &cp, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockSubscriptionRepo) Find(_ context.Context, userID int64, code string) (*model.Subscription, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, s := range m.subs {
		if s.UserID == userID && s.Code == code {
			cp := *s
			return &cp, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockSubscriptionRepo) FindActiveForUser(_ context.Context, userID int64, now time.Time) (*model.Subscription, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, s := range m.subs {
		if s.UserID == userID && s.ActiveAt(now) {
			cp := *s
			return &cp, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockSubscriptionRepo) RefreshLink(_ context.Context, id uint, link string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.subs[id]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	s.InviteLink = link
	return nil
}

func (m *mockSubscriptionRepo) Expire(_ context.Context, id uint) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if s, ok := m.subs[id]; ok && s.Status == model.SubscriptionStatusActive {
		s.Status = model.SubscriptionStatusExpired
	}
	return nil
}

func (m *mockSubscriptionRepo) Ban(_ context.Context, id uint) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.subs[id]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	s.Status = model.SubscriptionStatusBanned
	return nil
}

func (m *mockSubscriptionRepo) ListExpirable(_ context.Context, now time.Time) ([]model.Subscription, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var result []model.Subscription
	for _, s := range m.subs {
		if s.Status == model.SubscriptionStatusActive && !s.ExpiresAt.After(now) {
			result = append(result, *s)
		}
	}
	sort.Slice(result, func(i, j int) bool { return result[i].ExpiresAt.Before(result[j].ExpiresAt) })
	return result, nil
}

func (m *mockSubscriptionRepo) List(_ context.Context, status model.SubscriptionStatus) ([]model.Subscription, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var result []model.Subscription
	for _, s := range m.subs {
		if status == "" || s.Status == status {
			result = append(result, *s)
		}
	}
	sort.Slice(result, func(i, j int) bool { return result[i].ID < result[j].ID })
	return result, nil
}

func (m *mockSubscriptionRepo) all() []model.Subscription {
	subs, _ := m.List(context.Background(), "")
	return subs
}

// ── Mock AuditRepository ──

type mockAuditRepo struct {
	mu      sync.Mutex
	entries []model.AuditEntry
	err     error
}

func newMockAuditRepo() *mockAuditRepo {
	return &mockAuditRepo{}
}

func (m *mockAuditRepo) Append(_ context.Context, entry *model.AuditEntry) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return m.err
	}
	m.entries = append(m.entries, *entry)
	return nil
}

func (m *mockAuditRepo) ListRecent(_ context.Context, limit int) ([]model.AuditEntry, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var result []model.AuditEntry
	for i := len(m.entries) - 1; i >= 0 && len(result) < limit; i-- {
		result = append(result, m.entries[i])
	}
	return result, nil
}

// count returns how many entries carry action.
func (m *mockAuditRepo) count(action model.AuditAction) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	n := 0
	for _, e := range m.entries {
		if e.Action == action {
			n++
		}
	}
	return n
}

func (m *mockAuditRepo) last(action model.AuditAction) *model.AuditEntry {
	m.mu.Lock()
	defer m.mu.Unlock()
	for i := len(m.entries) - 1; i >= 0; i-- {
		if m.entries[i].Action == action {
			e := m.entries[i]
			return &e
		}
	}
	return nil
}
