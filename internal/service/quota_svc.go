package service

import (
	"context"
	"log"
	"sync"
	"time"

	"github.com/mathieu-neron/NichePulse/nichepulse-go/internal/model"
)

// Feature names tracked by the quota service.
const (
	FeatureClassification = "classification"
	FeatureNicheAnalysis  = "niche-analysis"
)

// UnlimitedDailyLimit is the limit reported for admin identities. Quota is
// informational, so "unbounded" only needs to be large enough that no
// display layer renders it as exhaustible.
const UnlimitedDailyLimit = int64(1) << 31

const nearLimitThreshold = 80.0 // percent

// quotaStore is the counter backend: Redis in production, in-memory when
// Redis is not configured.
type quotaStore interface {
	IncrQuota(ctx context.Context, key string, n int64) (int64, error)
	GetQuota(ctx context.Context, key string) (int64, error)
}

// adminChecker answers the identity provider's "is this user an admin"
// question. Admins bypass quota accounting entirely.
type adminChecker interface {
	IsAdmin(ctx context.Context, userID string) (bool, error)
}

// QuotaService accumulates per-feature usage against a daily limit, with
// the calendar day anchored to a fixed offset from UTC (UTC-8 by default).
// Exhaustion is a reporting signal for the presentation layer, never an
// enforcement gate: CheckQuota does not block and RecordUsage always
// succeeds for non-admins.
type QuotaService struct {
	store       quotaStore
	admins      adminChecker
	offsetHours int
	limits      map[string]int64
	now         func() time.Time
}

func NewQuotaService(store quotaStore, admins adminChecker, offsetHours int, limits map[string]int64) *QuotaService {
	return &QuotaService{
		store:       store,
		admins:      admins,
		offsetHours: offsetHours,
		limits:      limits,
		now:         time.Now,
	}
}

// WithClock overrides the service clock, for tests.
func (s *QuotaService) WithClock(now func() time.Time) *QuotaService {
	s.now = now
	return s
}

// DayKey returns the calendar day of t in the reference timezone.
func (s *QuotaService) DayKey(t time.Time) string {
	return t.UTC().Add(time.Duration(s.offsetHours) * time.Hour).Format("2006-01-02")
}

// CheckQuota reports the user's standing for a feature. Admin identities
// always report zero usage against an unbounded limit, independent of
// recorded volume.
func (s *QuotaService) CheckQuota(ctx context.Context, userID, feature string) (model.QuotaStatus, error) {
	date := s.DayKey(s.now())

	if s.isAdmin(ctx, userID) {
		return model.QuotaStatus{
			Feature:     feature,
			Date:        date,
			QuotaUsed:   0,
			DailyLimit:  UnlimitedDailyLimit,
			PercentUsed: 0,
			APIStatus:   model.QuotaStatusOK,
			IsAdmin:     true,
		}, nil
	}

	used, err := s.store.GetQuota(ctx, counterKey(feature, date))
	if err != nil {
		return model.QuotaStatus{}, err
	}

	limit := s.limitFor(feature)
	pct := float64(used) / float64(limit) * 100
	status := model.QuotaStatusOK
	switch {
	case used >= limit:
		status = model.QuotaStatusExhausted
	case pct >= nearLimitThreshold:
		status = model.QuotaStatusNearLimit
	}

	return model.QuotaStatus{
		Feature:     feature,
		Date:        date,
		QuotaUsed:   used,
		DailyLimit:  limit,
		PercentUsed: round2(pct),
		APIStatus:   status,
	}, nil
}

// RecordUsage adds n to the feature's counter for today. Admin usage is
// never recorded.
func (s *QuotaService) RecordUsage(ctx context.Context, userID, feature string, n int64) error {
	if s.isAdmin(ctx, userID) {
		return nil
	}
	_, err := s.store.IncrQuota(ctx, counterKey(feature, s.DayKey(s.now())), n)
	return err
}

func (s *QuotaService) isAdmin(ctx context.Context, userID string) bool {
	if s.admins == nil || userID == "" {
		return false
	}
	admin, err := s.admins.IsAdmin(ctx, userID)
	if err != nil {
		log.Printf("quota: admin check error for user (treating as non-admin): %v", err)
		return false
	}
	return admin
}

func (s *QuotaService) limitFor(feature string) int64 {
	if limit, ok := s.limits[feature]; ok && limit > 0 {
		return limit
	}
	return 50
}

func counterKey(feature, date string) string {
	return feature + ":" + date
}

// MemoryQuotaStore is the in-process fallback counter store used when Redis
// is not configured. Counters are lost on restart, which matches the
// informational nature of quota reporting.
type MemoryQuotaStore struct {
	mu       sync.Mutex
	counters map[string]int64
}

func NewMemoryQuotaStore() *MemoryQuotaStore {
	return &MemoryQuotaStore{counters: make(map[string]int64)}
}

func (m *MemoryQuotaStore) IncrQuota(_ context.Context, key string, n int64) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.counters[key] += n
	return m.counters[key], nil
}

func (m *MemoryQuotaStore) GetQuota(_ context.Context, key string) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.counters[key], nil
}
