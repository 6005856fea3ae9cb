package projects

import (
	"context"
	"errors"
	"regexp"
	"time"

	"github.com/profilekit/profilekit/internal/common"
	"github.com/profilekit/profilekit/internal/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// MongoRepo implements Repository on the projects collection.
type MongoRepo struct {
	col *mongo.Collection
}

func NewMongoRepo(col *mongo.Collection) *MongoRepo {
	return &MongoRepo{col: col}
}

func (m *MongoRepo) Create(ctx context.Context, p *models.Project) error {
	now := time.Now().UTC()
	if p.ID.IsZero() {
		p.ID = primitive.NewObjectID()
	}
	p.CreatedAt = now
	p.UpdatedAt = now
	_, err := m.col.InsertOne(ctx, p)
	return err
}

func (m *MongoRepo) FindByID(ctx context.Context, id primitive.ObjectID) (*models.Project, error) {
	return m.findOne(ctx, bson.M{"_id": id})
}

func (m *MongoRepo) FindOwned(ctx context.Context, owner string, id primitive.ObjectID) (*models.Project, error) {
	return m.findOne(ctx, bson.M{"_id": id, "userId": owner})
}

func (m *MongoRepo) findOne(ctx context.Context, filter bson.M) (*models.Project, error) {
	var p models.Project
	if err := m.col.FindOne(ctx, filter).Decode(&p); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, nil
		}
		return nil, err
	}
	return &p, nil
}

func (m *MongoRepo) FindManyByIDs(ctx context.Context, ids []primitive.ObjectID) ([]models.Project, error) {
	if len(ids) == 0 {
		return []models.Project{}, nil
	}
	found, err := m.find(ctx, bson.M{"_id": bson.M{"$in": ids}}, nil)
	if err != nil {
		return nil, err
	}
	return orderByIDs(ids, found), nil
}

func (m *MongoRepo) ListByOwner(ctx context.Context, owner, techStack string) ([]models.Project, error) {
	filter := bson.M{"userId": owner}
	if techStack != "" {
		filter["technologies"] = primitive.Regex{Pattern: regexp.QuoteMeta(techStack), Options: "i"}
	}
	return m.find(ctx, filter, options.Find().SetSort(bson.D{{Key: "createdAt", Value: -1}}))
}

func (m *MongoRepo) find(ctx context.Context, filter bson.M, opts *options.FindOptions) ([]models.Project, error) {
	var cur *mongo.Cursor
	var err error
	if opts != nil {
		cur, err = m.col.Find(ctx, filter, opts)
	} else {
		cur, err = m.col.Find(ctx, filter)
	}
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)
	out := []models.Project{}
	for cur.Next(ctx) {
		var p models.Project
		if err := cur.Decode(&p); err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, cur.Err()
}

func (m *MongoRepo) Update(ctx context.Context, p *models.Project) error {
	p.UpdatedAt = time.Now().UTC()
	set := bson.M{
		"name":         p.Name,
		"description":  p.Description,
		"technologies": p.Technologies,
		"link":         p.Link,
		"github":       p.GitHub,
		"updatedAt":    p.UpdatedAt,
	}
	update := bson.M{"$set": set}
	unset := bson.M{}
	if p.StartDate != nil {
		set["startDate"] = p.StartDate
	} else {
		unset["startDate"] = ""
	}
	if p.EndDate != nil {
		set["endDate"] = p.EndDate
	} else {
		unset["endDate"] = ""
	}
	if len(unset) > 0 {
		update["$unset"] = unset
	}
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)
	var updated models.Project
	err := m.col.FindOneAndUpdate(ctx, bson.M{"_id": p.ID, "userId": p.UserID}, update, opts).Decode(&updated)
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
