package profiles

import (
	"context"
	"errors"
	"time"

	"github.com/profilekit/profilekit/internal/common"
	"github.com/profilekit/profilekit/internal/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// MongoRepo implements Repository on the profiles collection.
// Each profile write is a single document operation.
type MongoRepo struct {
	col *mongo.Collection
}

func NewMongoRepo(col *mongo.Collection) *MongoRepo {
	return &MongoRepo{col: col}
}

func (m *MongoRepo) Create(ctx context.Context, p *models.Profile) error {
	now := time.Now().UTC()
	if p.ID.IsZero() {
		p.ID = primitive.NewObjectID()
	}
	if p.ProjectIDs == nil {
		p.ProjectIDs = []primitive.ObjectID{}
	}
	p.CreatedAt = now
	p.UpdatedAt = now
	_, err := m.col.InsertOne(ctx, p)
	return err
}

func (m *MongoRepo) FindByID(ctx context.Context, id primitive.ObjectID) (*models.Profile, error) {
	return m.findOne(ctx, bson.M{"_id": id})
}

func (m *MongoRepo) FindOwned(ctx context.Context, owner string, id primitive.ObjectID) (*models.Profile, error) {
	return m.findOne(ctx, bson.M{"_id": id, "userId": owner})
}

func (m *MongoRepo) findOne(ctx context.Context, filter bson.M) (*models.Profile, error) {
	var p models.Profile
	if err := m.col.FindOne(ctx, filter).Decode(&p); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, nil
		}
		return nil, err
	}
	return &p, nil
}

func (m *MongoRepo) ListByOwner(ctx context.Context, owner string) ([]models.Profile, error) {
	opts := options.Find().SetSort(bson.D{{Key: "createdAt", Value: -1}})
	cur, err := m.col.Find(ctx, bson.M{"userId": owner}, opts)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)
	out := []models.Profile{}
	for cur.Next(ctx) {
		var p models.Profile
		if err := cur.Decode(&p); err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, cur.Err()
}

func (m *MongoRepo) Update(ctx context.Context, p *models.Profile) error {
	p.UpdatedAt = time.Now().UTC()
	if p.ProjectIDs == nil {
		p.ProjectIDs = []primitive.ObjectID{}
	}
	set := bson.M{
		"name":          p.Name,
		"email":         p.Email,
		"phone":         p.Phone,
		"bio":           p.Bio,
		"designation":   p.Designation,
		"location":      p.Location,
		"website":       p.Website,
		"profileImage":  p.ProfileImage,
		"github":        p.GitHub,
		"linkedin":      p.LinkedIn,
		"twitter":       p.Twitter,
		"education":     p.Education,
		"experience":    p.Experience,
		"skills":        p.Skills,
		"certification": p.Certification,
		"projectIds":    p.ProjectIDs,
		"updatedAt":     p.UpdatedAt,
	}
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)
	var updated models.Profile
	err := m.col.FindOneAndUpdate(ctx, bson.M{"_id": p.ID, "userId": p.UserID}, bson.M{"$set": set}, opts).Decode(&updated)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return common.ErrNotFound
		}
		return err
	}
	*p = updated
	return nil
}

func (m *MongoRepo) DeleteOwned(ctx context.Context, owner string, id primitive.ObjectID) error {
	res, err := m.col.DeleteOne(ctx, bson.M{"_id": id, "userId": owner})
	if err != nil {
		return err
	}
	if res.DeletedCount == 0 {
		return common.ErrNotFound
	}
	return nil
}

func (m *MongoRepo) PullProject(ctx context.Context, owner string, projectID primitive.ObjectID) (int64, error) {
	res, err := m.col.UpdateMany(ctx,
		bson.M{"userId": owner, "projectIds": projectID},
		bson.M{
			"$pull": bson.M{"projectIds": projectID},
			"$set":  bson.M{"updatedAt": time.Now().UTC()},
		},
	)
	if err != nil {
		return 0, err
	}
	return res.ModifiedCount, nil
}

func (m *MongoRepo) SetProjectIDs(ctx context.Context, id primitive.ObjectID, ids []primitive.ObjectID) error {
	if ids == nil {
		ids = []primitive.ObjectID{}
	}
	res, err := m.col.UpdateOne(ctx, bson.M{"_id": id}, bson.M{"$set": bson.M{"projectIds": ids, "updatedAt": time.Now().UTC()}})
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return common.ErrNotFound
	}
	return nil
}

func (m *MongoRepo) Each(ctx context.Context, fn func(*models.Profile) error) error {
	cur, err := m.col.Find(ctx, bson.M{})
	if err != nil {
		return err
	}
	defer cur.Close(ctx)
	for cur.Next(ctx) {
		var p models.Profile
		if err := cur.Decode(&p); err != nil {
			return err
		}
		if err := fn(&p); err != nil {
			return err
		}
	}
	return cur.Err()
}
