package profiles

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/profilekit/profilekit/internal/common"
	"github.com/profilekit/profilekit/internal/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// MemoryRepo is an in-memory Repository used in development mode and unit tests.
type MemoryRepo struct {
	mu    sync.RWMutex
	store map[primitive.ObjectID]models.Profile
	seq   int64
}

func NewMemoryRepo() *MemoryRepo {
	return &MemoryRepo{store: make(map[primitive.ObjectID]models.Profile)}
}

// clone copies the slices so callers never alias stored state.
func clone(p models.Profile) models.Profile {
	p.Education = append([]models.Education(nil), p.Education...)
	p.Experience = append([]models.Experience(nil), p.Experience...)
	p.Skills = append([]models.Skill(nil), p.Skills...)
	p.Certification = append([]models.Certification(nil), p.Certification...)
	p.ProjectIDs = append([]primitive.ObjectID{}, p.ProjectIDs...)
	return p
}

func (m *MemoryRepo) Create(_ context.Context, p *models.Profile) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if p.ID.IsZero() {
		p.ID = primitive.NewObjectID()
	}
	m.seq++
	now := time.Now().UTC().Add(time.Duration(m.seq) * time.Microsecond)
	p.CreatedAt = now
	p.UpdatedAt = now
	m.store[p.ID] = clone(*p)
	return nil
}

func (m *MemoryRepo) FindByID(_ context.Context, id primitive.ObjectID) (*models.Profile, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	p, ok := m.store[id]
	if !ok {
		return nil, nil
	}
	c := clone(p)
	return &c, nil
}

func (m *MemoryRepo) FindOwned(ctx context.Context, owner string, id primitive.ObjectID) (*models.Profile, error) {
	p, err := m.FindByID(ctx, id)
	if err != nil || p == nil || p.UserID != owner {
		return nil, err
	}
	return p, nil
}

func (m *MemoryRepo) ListByOwner(_ context.Context, owner string) ([]models.Profile, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := []models.Profile{}
	for _, p := range m.store {
		if p.UserID == owner {
			out = append(out, clone(p))
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

func (m *MemoryRepo) Update(_ context.Context, p *models.Profile) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	cur, ok := m.store[p.ID]
	if !ok || cur.UserID != p.UserID {
		return common.ErrNotFound
	}
	p.CreatedAt = cur.CreatedAt
	p.UpdatedAt = time.Now().UTC()
	m.store[p.ID] = clone(*p)
	return nil
}

func (m *MemoryRepo) DeleteOwned(_ context.Context, owner string, id primitive.ObjectID) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	p, ok := m.store[id]
	if !ok || p.UserID != owner {
		return common.ErrNotFound
	}
	delete(m.store, id)
	return nil
}

func (m *MemoryRepo) PullProject(_ context.Context, owner string, projectID primitive.ObjectID) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var changed int64
	for id, p := range m.store {
		if p.UserID != owner {
			continue
		}
		kept := p.ProjectIDs[:0:0]
		for _, pid := range p.ProjectIDs {
			if pid != projectID {
				kept = append(kept, pid)
			}
		}
		if len(kept) != len(p.ProjectIDs) {
			p.ProjectIDs = kept
			p.UpdatedAt = time.Now().UTC()
			m.store[id] = p
			changed++
		}
	}
	return changed, nil
}

func (m *MemoryRepo) SetProjectIDs(_ context.Context, id primitive.ObjectID, ids []primitive.ObjectID) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	p, ok := m.store[id]
	if !ok {
		return common.ErrNotFound
	}
	p.ProjectIDs = append([]primitive.ObjectID{}, ids...)
	p.UpdatedAt = time.Now().UTC()
	m.store[id] = p
	return nil
}

func (m *MemoryRepo) Each(_ context.Context, fn func(*models.Profile) error) error {
	m.mu.RLock()
	snapshot := make([]models.Profile, 0, len(m.store))
	for _, p := range m.store {
		snapshot = append(snapshot, clone(p))
	}
	m.mu.RUnlock()
	for i := range snapshot {
		if err := fn(&snapshot[i]); err != nil {
			return err
		}
	}
	return nil
}
