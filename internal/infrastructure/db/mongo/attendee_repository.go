package mongo

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/eventhub/events-api/internal/core/domain"
)

// AttendeeRepository implements ports.AttendeeRepository using MongoDB.
// The unique (userId, eventId) index turns a second registration into a
// duplicate key error, which is the only reliable signal under concurrency.
type AttendeeRepository struct {
	col *mongo.Collection
}

func NewAttendeeRepository(db *mongo.Database) *AttendeeRepository {
	return &AttendeeRepository{col: db.Collection(collectionAttendees)}
}

type attendeeDoc struct {
	ID        primitive.ObjectID `bson:"_id"`
	UserID    primitive.ObjectID `bson:"userId"`
	EventID   primitive.ObjectID `bson:"eventId"`
	UserName  string             `bson:"userName,omitempty"` // only set by $lookup
	CreatedAt time.Time          `bson:"createdAt"`
	UpdatedAt time.Time          `bson:"updatedAt"`
}

func (d attendeeDoc) toDomain() *domain.Attendee {
	return &domain.Attendee{
		ID:        d.ID.Hex(),
		UserID:    d.UserID.Hex(),
		EventID:   d.EventID.Hex(),
		UserName:  d.UserName,
		CreatedAt: d.CreatedAt.UTC(),
		UpdatedAt: d.UpdatedAt.UTC(),
	}
}

func toAttendees(docs []attendeeDoc) []*domain.Attendee {
	out := make([]*domain.Attendee, 0, len(docs))
	for _, d := range docs {
		out = append(out, d.toDomain())
	}
	return out
}

// Create inserts a, keeping a.ID when set so compensations can restore a
// deleted record under its original id.
func (r *AttendeeRepository) Create(ctx context.Context, a *domain.Attendee) (*domain.Attendee, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	id := primitive.NewObjectID()
	if a.ID != "" {
		var err error
		if id, err = objectID(a.ID); err != nil {
			return nil, err
		}
	}
	uid, err := objectID(a.UserID)
	if err != nil {
		return nil, err
	}
	eid, err := objectID(a.EventID)
	if err != nil {
		return nil, err
	}

	doc := attendeeDoc{
		ID:        id,
		UserID:    uid,
		EventID:   eid,
		CreatedAt: a.CreatedAt.UTC(),
		UpdatedAt: a.UpdatedAt.UTC(),
	}
	if _, err := r.col.InsertOne(ctx, doc); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return nil, domain.ErrAlreadyRegistered
		}
		return nil, fmt.Errorf("insert attendee: %w", err)
	}
	return doc.toDomain(), nil
}

func (r *AttendeeRepository) FindByPair(ctx context.Context, eventID, userID string) (*domain.Attendee, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	eid, err := objectID(eventID)
	if err != nil {
		return nil, err
	}
	uid, err := objectID(userID)
	if err != nil {
		return nil, err
	}

	var doc attendeeDoc
	if err := r.col.FindOne(ctx, bson.M{"userId": uid, "eventId": eid}).Decode(&doc); err != nil {
		if isNoDocuments(err) {
			return nil, domain.ErrAttendeeNotFound
		}
		return nil, fmt.Errorf("find attendee: %w", err)
	}
	return doc.toDomain(), nil
}

func (r *AttendeeRepository) FindByIDs(ctx context.Context, ids []string) ([]*domain.Attendee, error) {
	return r.find(ctx, bson.M{"_id": bson.M{"$in": objectIDs(ids)}}, bson.D{{Key: "createdAt", Value: 1}})
}

// ListByEvent returns the event's attendees oldest first, each joined with
// the user name of its user.
func (r *AttendeeRepository) ListByEvent(ctx context.Context, eventID string) ([]*domain.Attendee, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	eid, err := objectID(eventID)
	if err != nil {
		return nil, err
	}

	pipeline := mongo.Pipeline{
		{{Key: "$match", Value: bson.D{{Key: "eventId", Value: eid}}}},
		{{Key: "$sort", Value: bson.D{{Key: "createdAt", Value: 1}, {Key: "_id", Value: 1}}}},
		{{Key: "$lookup", Value: bson.D{
			{Key: "from", Value: collectionUsers},
			{Key: "localField", Value: "userId"},
			{Key: "foreignField", Value: "_id"},
			{Key: "as", Value: "user"},
		}}},
		{{Key: "$set", Value: bson.D{
			{Key: "userName", Value: bson.D{{Key: "$arrayElemAt", Value: bson.A{"$user.userName", 0}}}},
		}}},
		{{Key: "$project", Value: bson.D{{Key: "user", Value: 0}}}},
	}

	cur, err := r.col.Aggregate(ctx, pipeline)
	if err != nil {
		return nil, fmt.Errorf("list attendees: %w", err)
	}
	docs, err := decodeAll[attendeeDoc](ctx, cur)
	if err != nil {
		return nil, fmt.Errorf("list attendees: %w", err)
	}
	return toAttendees(docs), nil
}

// ListByUser returns the user's attendee records newest first.
func (r *AttendeeRepository) ListByUser(ctx context.Context, userID string) ([]*domain.Attendee, error) {
	uid, err := objectID(userID)
	if err != nil {
		return nil, err
	}
	return r.find(ctx, bson.M{"userId": uid}, bson.D{{Key: "createdAt", Value: -1}, {Key: "_id", Value: -1}})
}

func (r *AttendeeRepository) Delete(ctx context.Context, id string) error {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	oid, err := objectID(id)
	if err != nil {
		return err
	}
	res, err := r.col.DeleteOne(ctx, bson.M{"_id": oid})
	if err != nil {
		return fmt.Errorf("delete attendee: %w", err)
	}
	if res.DeletedCount == 0 {
		return domain.ErrAttendeeNotFound
	}
	return nil
}

func (r *AttendeeRepository) DeleteByEvent(ctx context.Context, eventID string) ([]string, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	eid, err := objectID(eventID)
	if err != nil {
		return nil, err
	}
	filter := bson.M{"eventId": eid}

	cur, err := r.col.Find(ctx, filter, options.Find().SetProjection(bson.M{"_id": 1}))
	if err != nil {
		return nil, fmt.Errorf("find event attendees: %w", err)
	}
	docs, err := decodeAll[struct {
		ID primitive.ObjectID `bson:"_id"`
	}](ctx, cur)
	if err != nil {
		return nil, fmt.Errorf("find event attendees: %w", err)
	}
	ids := make([]string, 0, len(docs))
	for _, d := range docs {
		ids = append(ids, d.ID.Hex())
	}

	if _, err := r.col.DeleteMany(ctx, filter); err != nil {
		return nil, fmt.Errorf("delete event attendees: %w", err)
	}
	return ids, nil
}

func (r *AttendeeRepository) find(ctx context.Context, filter bson.M, sort bson.D) ([]*domain.Attendee, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	cur, err := r.col.Find(ctx, filter, options.Find().SetSort(sort))
	if err != nil {
		return nil, fmt.Errorf("find attendees: %w", err)
	}
	docs, err := decodeAll[attendeeDoc](ctx, cur)
	if err != nil {
		return nil, fmt.Errorf("find attendees: %w", err)
	}
	return toAttendees(docs), nil
}
