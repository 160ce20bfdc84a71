package mongo

import (
	"context"
	"fmt"
	"slices"
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/eventhub/events-api/internal/core/domain"
)

// UserRepository implements ports.UserRepository using MongoDB.
type UserRepository struct {
	col *mongo.Collection
}

func NewUserRepository(db *mongo.Database) *UserRepository {
	return &UserRepository{col: db.Collection(collectionUsers)}
}

type userDoc struct {
	ID        primitive.ObjectID   `bson:"_id,omitempty"`
	UserName  string               `bson:"userName"`
	Email     string               `bson:"email"`
	Password  string               `bson:"password"`
	Roles     []string             `bson:"roles"`
	Attendees []primitive.ObjectID `bson:"attendees"`
	Events    []primitive.ObjectID `bson:"events"`
	Favorites []primitive.ObjectID `bson:"favorites"`
	CreatedAt time.Time            `bson:"createdAt"`
	UpdatedAt time.Time            `bson:"updatedAt"`
}

func (d userDoc) toDomain() *domain.User {
	roles := d.Roles
	if len(roles) == 0 {
		roles = []string{domain.RoleUser}
	}
	return &domain.User{
		ID:           d.ID.Hex(),
		UserName:     d.UserName,
		Email:        d.Email,
		PasswordHash: d.Password,
		Roles:        roles,
		Attendees:    hexIDs(d.Attendees),
		Events:       hexIDs(d.Events),
		Favorites:    hexIDs(d.Favorites),
		CreatedAt:    d.CreatedAt.UTC(),
		UpdatedAt:    d.UpdatedAt.UTC(),
	}
}

func (r *UserRepository) Create(ctx context.Context, user *domain.User) (*domain.User, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	roles := user.Roles
	if len(roles) == 0 {
		roles = []string{domain.RoleUser}
	}
	doc := userDoc{
		ID:        primitive.NewObjectID(),
		UserName:  user.UserName,
		Email:     strings.ToLower(user.Email),
		Password:  user.PasswordHash,
		Roles:     roles,
		Attendees: objectIDs(user.Attendees),
		Events:    objectIDs(user.Events),
		Favorites: objectIDs(user.Favorites),
		CreatedAt: user.CreatedAt.UTC(),
		UpdatedAt: user.UpdatedAt.UTC(),
	}

	if _, err := r.col.InsertOne(ctx, doc); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return nil, domain.ErrUserExists
		}
		return nil, fmt.Errorf("insert user: %w", err)
	}
	return doc.toDomain(), nil
}

func (r *UserRepository) FindByEmail(ctx context.Context, email string) (*domain.User, error) {
	return r.findOne(ctx, bson.M{"email": strings.ToLower(email)})
}

func (r *UserRepository) FindByID(ctx context.Context, id string) (*domain.User, error) {
	oid, err := objectID(id)
	if err != nil {
		return nil, err
	}
	return r.findOne(ctx, bson.M{"_id": oid})
}

func (r *UserRepository) FindByIDs(ctx context.Context, ids []string) ([]*domain.User, error) {
	return r.find(ctx, bson.M{"_id": bson.M{"$in": objectIDs(ids)}})
}

func (r *UserRepository) List(ctx context.Context) ([]*domain.User, error) {
	return r.find(ctx, bson.M{})
}

func (r *UserRepository) UpdateEmail(ctx context.Context, id, email string) (*domain.User, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	oid, err := objectID(id)
	if err != nil {
		return nil, err
	}
	update := bson.M{"$set": bson.M{"email": strings.ToLower(email), "updatedAt": time.Now().UTC()}}
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)

	var doc userDoc
	err = r.col.FindOneAndUpdate(ctx, bson.M{"_id": oid}, update, opts).Decode(&doc)
	switch {
	case isNoDocuments(err):
		return nil, domain.ErrUserNotFound
	case mongo.IsDuplicateKeyError(err):
		return nil, domain.ErrUserExists
	case err != nil:
		return nil, fmt.Errorf("update user email: %w", err)
	}
	return doc.toDomain(), nil
}

func (r *UserRepository) AddAttendance(ctx context.Context, userID, eventID, attendeeID string) error {
	eid, err := objectID(eventID)
	if err != nil {
		return err
	}
	aid, err := objectID(attendeeID)
	if err != nil {
		return err
	}
	return r.updateOne(ctx, userID, bson.M{
		"$addToSet": bson.M{"events": eid, "attendees": aid},
	})
}

// RemoveAttendance pulls eventID and, when given, attendeeID.
func (r *UserRepository) RemoveAttendance(ctx context.Context, userID, eventID, attendeeID string) error {
	eid, err := objectID(eventID)
	if err != nil {
		return err
	}
	pull := bson.M{"events": eid}
	if attendeeID != "" {
		aid, err := objectID(attendeeID)
		if err != nil {
			return err
		}
		pull["attendees"] = aid
	}
	return r.updateOne(ctx, userID, bson.M{"$pull": pull})
}

func (r *UserRepository) PullEventRefs(ctx context.Context, eventID string, attendeeIDs []string) error {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	eid, err := objectID(eventID)
	if err != nil {
		return err
	}
	aids := objectIDs(attendeeIDs)
	filter := bson.M{"$or": bson.A{
		bson.M{"events": eid},
		bson.M{"favorites": eid},
		bson.M{"attendees": bson.M{"$in": aids}},
	}}
	update := bson.M{
		"$pull": bson.M{
			"events":    eid,
			"favorites": eid,
			"attendees": bson.M{"$in": aids},
		},
		"$set": bson.M{"updatedAt": time.Now().UTC()},
	}
	if _, err := r.col.UpdateMany(ctx, filter, update); err != nil {
		return fmt.Errorf("pull event refs: %w", err)
	}
	return nil
}

// ToggleFavorite flips membership of eventID in a single pipeline update so
// concurrent toggles cannot interleave between read and write.
func (r *UserRepository) ToggleFavorite(ctx context.Context, userID, eventID string) (bool, []string, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	uid, err := objectID(userID)
	if err != nil {
		return false, nil, err
	}
	eid, err := objectID(eventID)
	if err != nil {
		return false, nil, err
	}

	favorites := bson.D{{Key: "$ifNull", Value: bson.A{"$favorites", bson.A{}}}}
	toggled := bson.D{{Key: "$cond", Value: bson.A{
		bson.D{{Key: "$in", Value: bson.A{eid, favorites}}},
		bson.D{{Key: "$filter", Value: bson.D{
			{Key: "input", Value: favorites},
			{Key: "cond", Value: bson.D{{Key: "$ne", Value: bson.A{"$$this", eid}}}},
		}}},
		bson.D{{Key: "$concatArrays", Value: bson.A{favorites, bson.A{eid}}}},
	}}}
	pipeline := mongo.Pipeline{
		{{Key: "$set", Value: bson.D{
			{Key: "favorites", Value: toggled},
			{Key: "updatedAt", Value: time.Now().UTC()},
		}}},
	}

	var doc userDoc
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)
	if err := r.col.FindOneAndUpdate(ctx, bson.M{"_id": uid}, pipeline, opts).Decode(&doc); err != nil {
		if isNoDocuments(err) {
			return false, nil, domain.ErrUserNotFound
		}
		return false, nil, fmt.Errorf("toggle favorite: %w", err)
	}
	return slices.Contains(doc.Favorites, eid), hexIDs(doc.Favorites), nil
}

func (r *UserRepository) updateOne(ctx context.Context, userID string, update bson.M) error {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	uid, err := objectID(userID)
	if err != nil {
		return err
	}
	update["$set"] = bson.M{"updatedAt": time.Now().UTC()}
	res, err := r.col.UpdateOne(ctx, bson.M{"_id": uid}, update)
	if err != nil {
		return fmt.Errorf("update user: %w", err)
	}
	if res.MatchedCount == 0 {
		return domain.ErrUserNotFound
	}
	return nil
}

func (r *UserRepository) findOne(ctx context.Context, filter bson.M) (*domain.User, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	var doc userDoc
	if err := r.col.FindOne(ctx, filter).Decode(&doc); err != nil {
		if isNoDocuments(err) {
			return nil, domain.ErrUserNotFound
		}
		return nil, fmt.Errorf("find user: %w", err)
	}
	return doc.toDomain(), nil
}

func (r *UserRepository) find(ctx context.Context, filter bson.M) ([]*domain.User, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	cur, err := r.col.Find(ctx, filter, options.Find().SetSort(bson.D{{Key: "createdAt", Value: 1}}))
	if err != nil {
		return nil, fmt.Errorf("find users: %w", err)
	}
	docs, err := decodeAll[userDoc](ctx, cur)
	if err != nil {
		return nil, fmt.Errorf("find users: %w", err)
	}
	out := make([]*domain.User, 0, len(docs))
	for _, d := range docs {
		out = append(out, d.toDomain())
	}
	return out, nil
}
