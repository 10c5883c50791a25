package server

import (
	"context"
	"errors"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"gitlab.com/hmwai/subtrack/internal/config"
	"gitlab.com/hmwai/subtrack/internal/models"
	"gitlab.com/hmwai/subtrack/internal/repository"
)

// fakeStore is an in-memory ChargeStore for handler tests.
type fakeStore struct {
	mu      sync.Mutex
	charges map[string]models.Charge

	failWith error
}

func newFakeStore(seed ...models.Charge) *fakeStore {
	s := &fakeStore{charges: make(map[string]models.Charge)}
	for _, c := range seed {
		if c.ID == "" {
			c.ID = uuid.NewString()
		}
		s.charges[c.ID] = c
	}
	return s
}

func (s *fakeStore) Create(_ context.Context, charge *models.Charge) error {
	if s.failWith != nil {
		return s.failWith
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if charge.ID == "" {
		charge.ID = uuid.NewString()
	}
	charge.CreatedAt = time.Now()
	charge.UpdatedAt = charge.CreatedAt
	s.charges[charge.ID] = *charge
	return nil
}

func (s *fakeStore) GetByID(_ context.Context, id string) (*models.Charge, error) {
	if s.failWith != nil {
		return nil, s.failWith
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	c, ok := s.charges[id]
	if !ok {
		return nil, repository.ErrChargeNotFound
	}
	return &c, nil
}

func (s *fakeStore) Update(_ context.Context, charge *models.Charge) error {
	if s.failWith != nil {
		return s.failWith
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.charges[charge.ID]; !ok {
		return repository.ErrChargeNotFound
	}
	charge.UpdatedAt = time.Now()
	s.charges[charge.ID] = *charge
	return nil
}

func (s *fakeStore) Delete(_ context.Context, id string) error {
	if s.failWith != nil {
		return s.failWith
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.charges[id]; !ok {
		return repository.ErrChargeNotFound
	}
	delete(s.charges, id)
	return nil
}

func (s *fakeStore) List(_ context.Context) ([]models.Charge, error) {
	if s.failWith != nil {
		return nil, s.failWith
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]models.Charge, 0, len(s.charges))
	for _, c := range s.charges {
		out = append(out, c)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

func (s *fakeStore) ListActive(ctx context.Context) ([]models.Charge, error) {
	all, err := s.List(ctx)
	if err != nil {
		return nil, err
	}
	active := all[:0]
	for _, c := range all {
		if c.Active {
			active = append(active, c)
		}
	}
	return active, nil
}

func (s *fakeStore) ReplaceAll(_ context.Context, chargeList []models.Charge) error {
	if s.failWith != nil {
		return s.failWith
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.charges = make(map[string]models.Charge, len(chargeList))
	for _, c := range chargeList {
		s.charges[c.ID] = c
	}
	return nil
}

func (s *fakeStore) ListCategories(_ context.Context) ([]models.Category, error) {
	if s.failWith != nil {
		return nil, s.failWith
	}
	out := make([]models.Category, 0, len(models.DefaultCategories))
	for i, name := range models.DefaultCategories {
		out = append(out, models.Category{ID: i + 1, Name: name})
	}
	return out, nil
}

// fakeAI scripts the language-model collaborators.
type fakeAI struct {
	partial *models.PartialCharge
	err     error
	advice  string
}

func (f *fakeAI) ParseCharge(context.Context, string) (*models.PartialCharge, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.partial, nil
}

func (f *fakeAI) SavingsAdvice(context.Context, []models.Charge) string {
	return f.advice
}

var errStore = errors.New("store exploded")

// testNow is the pinned reference date for all handler tests.
var testNow = time.Date(2024, time.June, 15, 10, 30, 0, 0, time.UTC)

func newTestServer(store ChargeStore, ai AI) *Server {
	srv := New(&config.Config{BaseURL: "http://localhost:8080"}, store, ai, nil)
	srv.now = func() time.Time { return testNow }
	return srv
}
