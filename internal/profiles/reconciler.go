package profiles

import (
	"context"
	"fmt"
	"strings"

	"github.com/profilekit/profilekit/internal/models"
	"github.com/profilekit/profilekit/internal/projects"
	"github.com/profilekit/profilekit/pkg/logger"
	"github.com/profilekit/profilekit/pkg/metrics"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// ProjectStore is the part of the project library the reconciler needs.
type ProjectStore interface {
	FindOwned(ctx context.Context, owner string, id primitive.ObjectID) (*models.Project, error)
	Create(ctx context.Context, p *models.Project) error
}

// Reconciler turns the projects/projectIds pair of a submission into the
// ordered, duplicate-free, owner-checked id list stored on a profile.
type Reconciler struct {
	store ProjectStore
}

func NewReconciler(store ProjectStore) *Reconciler {
	return &Reconciler{store: store}
}

// idList collects ids in first-seen order.
type idList struct {
	seen map[primitive.ObjectID]struct{}
	ids  []primitive.ObjectID
}

func (l *idList) add(id primitive.ObjectID) bool {
	if _, dup := l.seen[id]; dup {
		return false
	}
	l.seen[id] = struct{}{}
	l.ids = append(l.ids, id)
	return true
}

// Reconcile resolves inline entries first, then bare ids, both in input order.
//
// An inline entry whose _id names a project of owner is reused as is. Otherwise,
// when name, description and technologies are non-blank, a new library project is
// created for owner; any foreign or unknown _id it carried is ignored. Entries
// that are neither are skipped. A bare id is kept only when it names a project of
// owner. Store failures abort the whole reconciliation; projects already created
// stay in the library.
func (r *Reconciler) Reconcile(ctx context.Context, owner string, inline []models.ProjectInput, projectIDs []string) ([]primitive.ObjectID, error) {
	out := &idList{seen: map[primitive.ObjectID]struct{}{}, ids: []primitive.ObjectID{}}

	for i, in := range inline {
		if id, ok := projects.ParseID(strings.TrimSpace(in.ID)); ok {
			existing, err := r.store.FindOwned(ctx, owner, id)
			if err != nil {
				return nil, fmt.Errorf("resolve project %s: %w", id.Hex(), err)
			}
			if existing != nil {
				outcome(out.add(existing.ID), "reused")
				continue
			}
		}
		if !in.Complete() {
			logger.Debugf("reconcile: skipping projects[%d] for %s: no owned _id and incomplete fields", i, owner)
			metrics.ReconcileOutcomes.WithLabelValues("skipped").Inc()
			continue
		}
		p := in.ToProject(owner)
		if err := r.store.Create(ctx, p); err != nil {
			return nil, fmt.Errorf("materialize projects[%d]: %w", i, err)
		}
		outcome(out.add(p.ID), "materialized")
	}

	for i, raw := range projectIDs {
		id, ok := projects.ParseID(strings.TrimSpace(raw))
		if !ok {
			logger.Debugf("reconcile: dropping projectIds[%d] for %s: malformed id", i, owner)
			metrics.ReconcileOutcomes.WithLabelValues("dropped").Inc()
			continue
		}
		if _, dup := out.seen[id]; dup {
			metrics.ReconcileOutcomes.WithLabelValues("dropped").Inc()
			continue
		}
		existing, err := r.store.FindOwned(ctx, owner, id)
		if err != nil {
			return nil, fmt.Errorf("resolve project %s: %w", id.Hex(), err)
		}
		if existing == nil {
			logger.Debugf("reconcile: dropping projectIds[%d] for %s: not an owned project", i, owner)
			metrics.ReconcileOutcomes.WithLabelValues("dropped").Inc()
			continue
		}
		outcome(out.add(id), "referenced")
	}

	return out.ids, nil
}

// outcome records label when the id was new and "dropped" when it was a duplicate.
func outcome(added bool, label string) {
	if !added {
		label = "dropped"
	}
	metrics.ReconcileOutcomes.WithLabelValues(label).Inc()
}
