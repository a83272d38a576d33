package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/estatehub/estate-service/internal/domain"
	"github.com/estatehub/estate-service/internal/events"
	"github.com/estatehub/estate-service/internal/notify"
	"github.com/estatehub/estate-service/internal/repository"
)

type fakeLandlordRepo struct {
	mu        sync.Mutex
	rows      map[string]domain.Landlord
	nextID    int
	updates   int
	notified  int
	conflicts int
	// onConflict runs against the stored row when a conflict is injected,
	// standing in for the competing writer.
	onConflict func(*domain.Landlord)
	failUpdate error
}

func newFakeLandlordRepo(seed ...domain.Landlord) *fakeLandlordRepo {
	r := &fakeLandlordRepo{rows: map[string]domain.Landlord{}}
	for _, l := range seed {
		if l.Version == 0 {
			l.Version = 1
		}
		r.rows[l.ID] = l
	}
	return r
}

func (r *fakeLandlordRepo) Create(_ context.Context, landlord *domain.Landlord) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, existing := range r.rows {
		if strings.EqualFold(existing.Email, landlord.Email) {
			return repository.ErrDuplicate
		}
	}
	r.nextID++
	landlord.ID = fmt.Sprintf("11111111-1111-1111-1111-%012d", r.nextID)
	landlord.Version = 1
	landlord.CreatedAt = time.Now().UTC()
	landlord.UpdatedAt = landlord.CreatedAt
	r.rows[landlord.ID] = *landlord
	return nil
}

func (r *fakeLandlordRepo) Update(_ context.Context, landlord *domain.Landlord) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.failUpdate != nil {
		return r.failUpdate
	}
	stored, ok := r.rows[landlord.ID]
	if !ok {
		return pgx.ErrNoRows
	}
	if r.conflicts > 0 {
		r.conflicts--
		if r.onConflict != nil {
			r.onConflict(&stored)
		}
		stored.Version++
		r.rows[stored.ID] = stored
		return repository.ErrVersionConflict
	}
	if stored.Version != landlord.Version {
		return repository.ErrVersionConflict
	}
	landlord.Version++
	landlord.UpdatedAt = time.Now().UTC()
	r.rows[landlord.ID] = *landlord
	r.updates++
	return nil
}

func (r *fakeLandlordRepo) MarkNotified(_ context.Context, id string, at time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	stored, ok := r.rows[id]
	if !ok {
		return pgx.ErrNoRows
	}
	stored.IsSentEmail = true
	stored.IsSentAt = &at
	r.rows[id] = stored
	r.notified++
	return nil
}

func (r *fakeLandlordRepo) GetByID(_ context.Context, id string) (*domain.Landlord, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	stored, ok := r.rows[id]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	return &stored, nil
}

func (r *fakeLandlordRepo) GetByEmail(_ context.Context, email string) (*domain.Landlord, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, stored := range r.rows {
		if strings.EqualFold(stored.Email, email) {
			found := stored
			return &found, nil
		}
	}
	return nil, pgx.ErrNoRows
}

func (r *fakeLandlordRepo) List(_ context.Context, filter repository.LandlordFilter) ([]domain.Landlord, int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []domain.Landlord
	for _, stored := range r.rows {
		if filter.IsVerified != nil && stored.IsVerified != *filter.IsVerified {
			continue
		}
		if filter.Status != nil && stored.Status != *filter.Status {
			continue
		}
		out = append(out, stored)
	}
	return out, len(out), nil
}

func (r *fakeLandlordRepo) Delete(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.rows[id]; !ok {
		return pgx.ErrNoRows
	}
	delete(r.rows, id)
	return nil
}

func (r *fakeLandlordRepo) Summary(context.Context) (repository.LandlordSummary, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var s repository.LandlordSummary
	for _, stored := range r.rows {
		s.Total++
		if stored.IsVerified {
			s.Verified++
		} else {
			s.Unverified++
		}
		if stored.Status == domain.LandlordStatusActive {
			s.Active++
		} else {
			s.Inactive++
		}
	}
	return s, nil
}

func (r *fakeLandlordRepo) stored(id string) domain.Landlord {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.rows[id]
}

type fakePropertyRepo struct {
	mu     sync.Mutex
	rows   map[string]domain.Property
	nextID int
}

func newFakePropertyRepo(seed ...domain.Property) *fakePropertyRepo {
	r := &fakePropertyRepo{rows: map[string]domain.Property{}}
	for _, p := range seed {
		r.rows[p.ID] = p
	}
	return r
}

func (r *fakePropertyRepo) Create(_ context.Context, property *domain.Property) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.nextID++
	property.ID = fmt.Sprintf("22222222-2222-2222-2222-%012d", r.nextID)
	r.rows[property.ID] = *property
	return nil
}

func (r *fakePropertyRepo) Update(_ context.Context, property *domain.Property) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.rows[property.ID]; !ok {
		return pgx.ErrNoRows
	}
	r.rows[property.ID] = *property
	return nil
}

func (r *fakePropertyRepo) GetByID(_ context.Context, id string) (*domain.Property, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	stored, ok := r.rows[id]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	return &stored, nil
}

func (r *fakePropertyRepo) List(_ context.Context, filter repository.PropertyFilter) ([]domain.Property, int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []domain.Property
	for _, stored := range r.rows {
		if filter.Status != nil && stored.Status != *filter.Status {
			continue
		}
		out = append(out, stored)
	}
	return out, len(out), nil
}

func (r *fakePropertyRepo) Delete(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.rows[id]; !ok {
		return pgx.ErrNoRows
	}
	delete(r.rows, id)
	return nil
}

func (r *fakePropertyRepo) CountByLandlord(_ context.Context, landlordID string) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	count := 0
	for _, stored := range r.rows {
		if stored.LandlordID != nil && *stored.LandlordID == landlordID {
			count++
		}
	}
	return count, nil
}

func (r *fakePropertyRepo) CountByStatus(context.Context) (map[domain.PropertyStatus]int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := map[domain.PropertyStatus]int{}
	for _, stored := range r.rows {
		out[stored.Status]++
	}
	return out, nil
}

type presenceWrite struct {
	userID string
	online bool
	at     time.Time
}

type fakeUserStore struct {
	mu        sync.Mutex
	rows      map[string]domain.User
	nextID    int
	presence  []presenceWrite
	staleFrom time.Time
	staleHits int64
	failSet   error
}

func newFakeUserStore(seed ...domain.User) *fakeUserStore {
	s := &fakeUserStore{rows: map[string]domain.User{}}
	for _, u := range seed {
		s.rows[u.ID] = u
	}
	return s
}

func (s *fakeUserStore) Create(_ context.Context, user *domain.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, existing := range s.rows {
		if strings.EqualFold(existing.Email, user.Email) {
			return repository.ErrDuplicate
		}
	}
	s.nextID++
	user.ID = fmt.Sprintf("33333333-3333-3333-3333-%012d", s.nextID)
	s.rows[user.ID] = *user
	return nil
}

func (s *fakeUserStore) Update(_ context.Context, user *domain.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.rows[user.ID]; !ok {
		return pgx.ErrNoRows
	}
	s.rows[user.ID] = *user
	return nil
}

func (s *fakeUserStore) GetByID(_ context.Context, id string) (*domain.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	stored, ok := s.rows[id]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	return &stored, nil
}

func (s *fakeUserStore) GetByEmail(_ context.Context, email string) (*domain.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, stored := range s.rows {
		if strings.EqualFold(stored.Email, email) {
			found := stored
			return &found, nil
		}
	}
	return nil, pgx.ErrNoRows
}

func (s *fakeUserStore) List(_ context.Context, filter repository.UserFilter) ([]domain.User, int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []domain.User
	for _, stored := range s.rows {
		if filter.IsOnline != nil && stored.IsOnline != *filter.IsOnline {
			continue
		}
		if filter.Role != nil && stored.Role != *filter.Role {
			continue
		}
		out = append(out, stored)
	}
	return out, len(out), nil
}

func (s *fakeUserStore) Delete(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.rows[id]; !ok {
		return pgx.ErrNoRows
	}
	delete(s.rows, id)
	return nil
}

func (s *fakeUserStore) SetPresence(_ context.Context, userID string, online bool, at time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.failSet != nil {
		return s.failSet
	}
	s.presence = append(s.presence, presenceWrite{userID: userID, online: online, at: at})
	if stored, ok := s.rows[userID]; ok {
		stored.IsOnline = online
		stored.LastSeen = &at
		s.rows[userID] = stored
	}
	return nil
}

func (s *fakeUserStore) MarkStaleOffline(_ context.Context, cutoff time.Time) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.staleFrom = cutoff
	var affected int64
	for id, stored := range s.rows {
		if stored.IsOnline && stored.LastSeen != nil && stored.LastSeen.Before(cutoff) {
			stored.IsOnline = false
			s.rows[id] = stored
			affected++
		}
	}
	s.staleHits += affected
	return affected, nil
}

func (s *fakeUserStore) CountOnline(context.Context) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	count := 0
	for _, stored := range s.rows {
		if stored.IsOnline {
			count++
		}
	}
	return count, nil
}

func (s *fakeUserStore) writes() []presenceWrite {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]presenceWrite(nil), s.presence...)
}

type fakeActivityRepo struct {
	mu      sync.Mutex
	rows    []domain.UserActivity
	fail    error
	cutoff  time.Time
	deleted int64
	filter  repository.ActivityFilter
}

func (r *fakeActivityRepo) Create(_ context.Context, activity *domain.UserActivity) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.fail != nil {
		return r.fail
	}
	activity.ID = fmt.Sprintf("act-%d", len(r.rows)+1)
	r.rows = append(r.rows, *activity)
	return nil
}

func (r *fakeActivityRepo) List(_ context.Context, filter repository.ActivityFilter) ([]domain.UserActivity, int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.filter = filter
	return append([]domain.UserActivity(nil), r.rows...), len(r.rows), nil
}

func (r *fakeActivityRepo) DeleteOlderThan(_ context.Context, cutoff time.Time) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.cutoff = cutoff
	kept := r.rows[:0]
	for _, row := range r.rows {
		if row.CreatedAt.Before(cutoff) {
			r.deleted++
			continue
		}
		kept = append(kept, row)
	}
	r.rows = kept
	return r.deleted, nil
}

func (r *fakeActivityRepo) actions() []domain.ActivityAction {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]domain.ActivityAction, 0, len(r.rows))
	for _, row := range r.rows {
		out = append(out, row.Action)
	}
	return out
}

type sentNotice struct {
	kind     notify.Kind
	to       notify.Recipient
	reason   string
	password string
}

type fakeNotifier struct {
	mu   sync.Mutex
	sent []sentNotice
	fail error
}

func (n *fakeNotifier) record(kind notify.Kind, to notify.Recipient, reason, password string) notify.Outcome {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.sent = append(n.sent, sentNotice{kind: kind, to: to, reason: reason, password: password})
	if n.fail != nil {
		return notify.Failed(kind, n.fail)
	}
	return notify.Sent(kind)
}

func (n *fakeNotifier) SendApproval(_ context.Context, to notify.Recipient, password string) notify.Outcome {
	return n.record(notify.KindApproval, to, "", password)
}

func (n *fakeNotifier) SendRejection(_ context.Context, to notify.Recipient, reason string) notify.Outcome {
	return n.record(notify.KindRejection, to, reason, "")
}

func (n *fakeNotifier) SendInactive(_ context.Context, to notify.Recipient, reason string) notify.Outcome {
	return n.record(notify.KindInactive, to, reason, "")
}

func (n *fakeNotifier) SendActivation(_ context.Context, to notify.Recipient) notify.Outcome {
	return n.record(notify.KindActivation, to, "", "")
}

func (n *fakeNotifier) kinds() []notify.Kind {
	n.mu.Lock()
	defer n.mu.Unlock()
	out := make([]notify.Kind, 0, len(n.sent))
	for _, s := range n.sent {
		out = append(out, s.kind)
	}
	return out
}

type fakeRecorder struct {
	mu     sync.Mutex
	counts map[string]int
}

func (r *fakeRecorder) RecordNotification(kind string, sent bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.counts == nil {
		r.counts = map[string]int{}
	}
	r.counts[fmt.Sprintf("%s/%t", kind, sent)]++
}

func (r *fakeRecorder) count(kind notify.Kind, sent bool) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.counts[fmt.Sprintf("%s/%t", kind, sent)]
}

type recordingDispatcher struct {
	events.Dispatcher
	mu        sync.Mutex
	published []events.Event
}

func newRecordingDispatcher() *recordingDispatcher {
	return &recordingDispatcher{Dispatcher: events.NewInMemoryDispatcher()}
}

func (d *recordingDispatcher) Publish(ctx context.Context, event events.Event) error {
	d.mu.Lock()
	d.published = append(d.published, event)
	d.mu.Unlock()
	return d.Dispatcher.Publish(ctx, event)
}

func (d *recordingDispatcher) types() []events.EventType {
	d.mu.Lock()
	defer d.mu.Unlock()
	out := make([]events.EventType, 0, len(d.published))
	for _, e := range d.published {
		out = append(out, e.Type)
	}
	return out
}

type fakeGate struct {
	mu     sync.Mutex
	allow  bool
	resets []string
}

func (g *fakeGate) Allow(context.Context, string) bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.allow
}

func (g *fakeGate) Reset(_ context.Context, userID string) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.resets = append(g.resets, userID)
}

var errBoom = errors.New("boom")

func ptr[T any](v T) *T {
	return &v
}
