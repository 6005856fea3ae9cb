package projects

import (
	"context"

	"github.com/profilekit/profilekit/internal/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Repository is the project library store. Lookups return (nil, nil) when
// nothing matches; owner-scoped mutations return common.ErrNotFound.
type Repository interface {
	Create(ctx context.Context, p *models.Project) error
	FindByID(ctx context.Context, id primitive.ObjectID) (*models.Project, error)
	FindOwned(ctx context.Context, owner string, id primitive.ObjectID) (*models.Project, error)
	// FindManyByIDs resolves ids in the given order, omitting ids that no longer exist.
	FindManyByIDs(ctx context.Context, ids []primitive.ObjectID) ([]models.Project, error)
	// ListByOwner returns the owner's projects newest first. A non-empty techStack
	// keeps projects whose technologies contain it, case-insensitively.
	ListByOwner(ctx context.Context, owner, techStack string) ([]models.Project, error)
	Update(ctx context.Context, p *models.Project) error
	DeleteOwned(ctx context.Context, owner string, id primitive.ObjectID) error
}

// ParseID converts a client supplied id. ok is false for anything that is not a valid ObjectID.
func ParseID(raw string) (primitive.ObjectID, bool) {
	id, err := primitive.ObjectIDFromHex(raw)
	if err != nil || id.IsZero() {
		return primitive.NilObjectID, false
	}
	return id, true
}

// orderByIDs arranges found projects in the order of ids, skipping missing ones.
func orderByIDs(ids []primitive.ObjectID, found []models.Project) []models.Project {
	byID := make(map[primitive.ObjectID]models.Project, len(found))
	for _, p := range found {
		byID[p.ID] = p
	}
	out := make([]models.Project, 0, len(ids))
	for _, id := range ids {
		if p, ok := byID[id]; ok {
			out = append(out, p)
		}
	}
	return out
}
