package projects

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/profilekit/profilekit/internal/common"
	"github.com/profilekit/profilekit/internal/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// MemoryRepo is an in-memory Repository used in development mode and unit tests.
type MemoryRepo struct {
	mu    sync.RWMutex
	store map[primitive.ObjectID]models.Project
	seq   int64
}

func NewMemoryRepo() *MemoryRepo {
	return &MemoryRepo{store: make(map[primitive.ObjectID]models.Project)}
}

func (m *MemoryRepo) Create(_ context.Context, p *models.Project) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if p.ID.IsZero() {
		p.ID = primitive.NewObjectID()
	}
	// strictly increasing timestamps keep newest-first ordering deterministic
	m.seq++
	now := time.Now().UTC().Add(time.Duration(m.seq) * time.Microsecond)
	p.CreatedAt = now
	p.UpdatedAt = now
	m.store[p.ID] = *p
	return nil
}

func (m *MemoryRepo) FindByID(_ context.Context, id primitive.ObjectID) (*models.Project, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if p, ok := m.store[id]; ok {
		return &p, nil
	}
	return nil, nil
}

func (m *MemoryRepo) FindOwned(ctx context.Context, owner string, id primitive.ObjectID) (*models.Project, error) {
	p, err := m.FindByID(ctx, id)
	if err != nil || p == nil || p.UserID != owner {
		return nil, err
	}
	return p, nil
}

func (m *MemoryRepo) FindManyByIDs(_ context.Context, ids []primitive.ObjectID) ([]models.Project, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	found := make([]models.Project, 0, len(ids))
	for _, id := range ids {
		if p, ok := m.store[id]; ok {
			found = append(found, p)
		}
	}
	return orderByIDs(ids, found), nil
}

func (m *MemoryRepo) ListByOwner(_ context.Context, owner, techStack string) ([]models.Project, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	needle := strings.ToLower(techStack)
	out := []models.Project{}
	for _, p := range m.store {
		if p.UserID != owner {
			continue
		}
		if needle != "" && !strings.Contains(strings.ToLower(p.Technologies), needle) {
			continue
		}
		out = append(out, p)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

func (m *MemoryRepo) Update(_ context.Context, p *models.Project) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	cur, ok := m.store[p.ID]
	if !ok || cur.UserID != p.UserID {
		return common.ErrNotFound
	}
	p.CreatedAt = cur.CreatedAt
	p.UpdatedAt = time.Now().UTC()
	m.store[p.ID] = *p
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

// Remove deletes a project regardless of owner. Tests use it to simulate out-of-band deletion.
func (m *MemoryRepo) Remove(id primitive.ObjectID) {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.store, id)
}
