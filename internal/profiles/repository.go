package profiles

import (
	"context"

	"github.com/profilekit/profilekit/internal/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Repository is the profile store. Lookups return (nil, nil) when nothing
// matches; owner-scoped mutations return common.ErrNotFound.
type Repository interface {
	Create(ctx context.Context, p *models.Profile) error
	FindByID(ctx context.Context, id primitive.ObjectID) (*models.Profile, error)
	FindOwned(ctx context.Context, owner string, id primitive.ObjectID) (*models.Profile, error)
	ListByOwner(ctx context.Context, owner string) ([]models.Profile, error)
	// Update replaces the stored document of p, scoped by p.UserID.
	Update(ctx context.Context, p *models.Profile) error
	DeleteOwned(ctx context.Context, owner string, id primitive.ObjectID) error
	// PullProject removes projectID from projectIds of every profile of owner
	// and reports how many profiles changed.
	PullProject(ctx context.Context, owner string, projectID primitive.ObjectID) (int64, error)
	// SetProjectIDs overwrites projectIds of one profile without touching other fields.
	SetProjectIDs(ctx context.Context, id primitive.ObjectID, ids []primitive.ObjectID) error
	// Each calls fn for every stored profile until fn returns an error.
	Each(ctx context.Context, fn func(*models.Profile) error) error
}
