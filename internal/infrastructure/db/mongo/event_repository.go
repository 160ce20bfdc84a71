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
	"github.com/eventhub/events-api/internal/core/ports"
)

// EventRepository implements ports.EventRepository using MongoDB.
type EventRepository struct {
	col *mongo.Collection
}

// NewEventRepository creates a new EventRepository.
func NewEventRepository(db *mongo.Database) *EventRepository {
	return &EventRepository{col: db.Collection(collectionEvents)}
}

type eventDoc struct {
	ID          primitive.ObjectID   `bson:"_id,omitempty"`
	Title       string               `bson:"title"`
	Category    string               `bson:"category"`
	Date        time.Time            `bson:"date"`
	Location    string               `bson:"location"`
	Description string               `bson:"description"`
	Price       float64              `bson:"price"`
	Creator     primitive.ObjectID   `bson:"creator"`
	Attendees   []primitive.ObjectID `bson:"attendees"`
	Img         string               `bson:"img,omitempty"`
	CreatedAt   time.Time            `bson:"createdAt"`
	UpdatedAt   time.Time            `bson:"updatedAt"`
}

func (d eventDoc) toDomain() *domain.Event {
	return &domain.Event{
		ID:          d.ID.Hex(),
		Title:       d.Title,
		Category:    domain.Category(d.Category),
		Date:        d.Date.UTC(),
		Location:    d.Location,
		Description: d.Description,
		Price:       d.Price,
		CreatorID:   d.Creator.Hex(),
		Attendees:   hexIDs(d.Attendees),
		Img:         d.Img,
		CreatedAt:   d.CreatedAt.UTC(),
		UpdatedAt:   d.UpdatedAt.UTC(),
	}
}

func toEvents(docs []eventDoc) []*domain.Event {
	out := make([]*domain.Event, 0, len(docs))
	for _, d := range docs {
		out = append(out, d.toDomain())
	}
	return out
}

// Create inserts a new event document. A set e.ID is kept so a failed
// delete can restore the event under its original id.
func (r *EventRepository) Create(ctx context.Context, e *domain.Event) (*domain.Event, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	id := primitive.NewObjectID()
	if e.ID != "" {
		var err error
		if id, err = objectID(e.ID); err != nil {
			return nil, err
		}
	}
	creator, err := objectID(e.CreatorID)
	if err != nil {
		return nil, err
	}
	doc := eventDoc{
		ID:          id,
		Title:       e.Title,
		Category:    string(e.Category),
		Date:        e.Date.UTC(),
		Location:    e.Location,
		Description: e.Description,
		Price:       e.Price,
		Creator:     creator,
		Attendees:   objectIDs(e.Attendees),
		Img:         e.Img,
		CreatedAt:   e.CreatedAt.UTC(),
		UpdatedAt:   e.UpdatedAt.UTC(),
	}

	if _, err := r.col.InsertOne(ctx, doc); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return nil, domain.ErrDuplicateTitle
		}
		return nil, fmt.Errorf("insert event: %w", err)
	}
	return doc.toDomain(), nil
}

func (r *EventRepository) FindByID(ctx context.Context, id string) (*domain.Event, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	oid, err := objectID(id)
	if err != nil {
		return nil, err
	}
	var doc eventDoc
	if err := r.col.FindOne(ctx, bson.M{"_id": oid}).Decode(&doc); err != nil {
		if isNoDocuments(err) {
			return nil, domain.ErrEventNotFound
		}
		return nil, fmt.Errorf("find event: %w", err)
	}
	return doc.toDomain(), nil
}

func (r *EventRepository) FindByIDs(ctx context.Context, ids []string) ([]*domain.Event, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	return r.find(ctx, bson.M{"_id": bson.M{"$in": objectIDs(ids)}}, nil)
}

// FindByTitle matches the whole title case-insensitively, using the same
// collation as the unique index.
func (r *EventRepository) FindByTitle(ctx context.Context, title string) (*domain.Event, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	var doc eventDoc
	opts := options.FindOne().SetCollation(titleCollation)
	if err := r.col.FindOne(ctx, bson.M{"title": title}, opts).Decode(&doc); err != nil {
		if isNoDocuments(err) {
			return nil, domain.ErrEventNotFound
		}
		return nil, fmt.Errorf("find event by title: %w", err)
	}
	return doc.toDomain(), nil
}

// List returns one page of events matching the filter, newest first.
func (r *EventRepository) List(ctx context.Context, f ports.ListEventsFilter) ([]*domain.Event, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	opts := options.Find().
		SetSort(bson.D{{Key: "createdAt", Value: -1}, {Key: "_id", Value: -1}}).
		SetSkip(pageSkip(f.Page, f.Limit)).
		SetLimit(int64(f.Limit))
	return r.find(ctx, buildEventFilter(f), opts)
}

func (r *EventRepository) Count(ctx context.Context, f ports.ListEventsFilter) (int64, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	n, err := r.col.CountDocuments(ctx, buildEventFilter(f))
	if err != nil {
		return 0, fmt.Errorf("count events: %w", err)
	}
	return n, nil
}

func (r *EventRepository) SearchTitle(ctx context.Context, term string) ([]*domain.Event, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	opts := options.Find().SetSort(bson.D{{Key: "createdAt", Value: -1}})
	return r.find(ctx, bson.M{"title": containsFold(term)}, opts)
}

// FindByDateRange returns events with from <= date < to, earliest first.
func (r *EventRepository) FindByDateRange(ctx context.Context, from, to time.Time) ([]*domain.Event, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	opts := options.Find().SetSort(bson.D{{Key: "date", Value: 1}})
	return r.find(ctx, bson.M{"date": bson.M{"$gte": from.UTC(), "$lt": to.UTC()}}, opts)
}

func (r *EventRepository) Update(ctx context.Context, id string, p ports.EventPatch) (*domain.Event, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	oid, err := objectID(id)
	if err != nil {
		return nil, err
	}

	set := bson.M{"updatedAt": time.Now().UTC()}
	if p.Title != nil {
		set["title"] = *p.Title
	}
	if p.Category != nil {
		set["category"] = string(*p.Category)
	}
	if p.Date != nil {
		set["date"] = p.Date.UTC()
	}
	if p.Location != nil {
		set["location"] = *p.Location
	}
	if p.Description != nil {
		set["description"] = *p.Description
	}
	if p.Price != nil {
		set["price"] = *p.Price
	}
	if p.Img != nil {
		set["img"] = *p.Img
	}

	var doc eventDoc
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)
	err = r.col.FindOneAndUpdate(ctx, bson.M{"_id": oid}, bson.M{"$set": set}, opts).Decode(&doc)
	switch {
	case isNoDocuments(err):
		return nil, domain.ErrEventNotFound
	case mongo.IsDuplicateKeyError(err):
		return nil, domain.ErrDuplicateTitle
	case err != nil:
		return nil, fmt.Errorf("update event: %w", err)
	}
	return doc.toDomain(), nil
}

func (r *EventRepository) Delete(ctx context.Context, id string) error {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	oid, err := objectID(id)
	if err != nil {
		return err
	}
	res, err := r.col.DeleteOne(ctx, bson.M{"_id": oid})
	if err != nil {
		return fmt.Errorf("delete event: %w", err)
	}
	if res.DeletedCount == 0 {
		return domain.ErrEventNotFound
	}
	return nil
}

// AddAttendee adds userID to the attendee set. $addToSet keeps it a set
// under concurrent registrations.
func (r *EventRepository) AddAttendee(ctx context.Context, eventID, userID string) error {
	return r.updateAttendees(ctx, eventID, userID, "$addToSet")
}

func (r *EventRepository) RemoveAttendee(ctx context.Context, eventID, userID string) error {
	return r.updateAttendees(ctx, eventID, userID, "$pull")
}

func (r *EventRepository) updateAttendees(ctx context.Context, eventID, userID, op string) error {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	eid, err := objectID(eventID)
	if err != nil {
		return err
	}
	uid, err := objectID(userID)
	if err != nil {
		return err
	}

	update := bson.M{
		op:     bson.M{"attendees": uid},
		"$set": bson.M{"updatedAt": time.Now().UTC()},
	}
	res, err := r.col.UpdateOne(ctx, bson.M{"_id": eid}, update)
	if err != nil {
		return fmt.Errorf("update event attendees: %w", err)
	}
	if res.MatchedCount == 0 {
		return domain.ErrEventNotFound
	}
	return nil
}

func (r *EventRepository) SetAttendees(ctx context.Context, eventID string, userIDs []string) error {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	eid, err := objectID(eventID)
	if err != nil {
		return err
	}
	update := bson.M{"$set": bson.M{"attendees": objectIDs(userIDs), "updatedAt": time.Now().UTC()}}
	res, err := r.col.UpdateOne(ctx, bson.M{"_id": eid}, update)
	if err != nil {
		return fmt.Errorf("set event attendees: %w", err)
	}
	if res.MatchedCount == 0 {
		return domain.ErrEventNotFound
	}
	return nil
}

// DeleteAll removes every event and keeps the indexes. Used by the seeder
// before a fresh import.
func (r *EventRepository) DeleteAll(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	if _, err := r.col.DeleteMany(ctx, bson.M{}); err != nil {
		return fmt.Errorf("drop events: %w", err)
	}
	return nil
}

func (r *EventRepository) find(ctx context.Context, filter any, opts *options.FindOptions) ([]*domain.Event, error) {
	if opts == nil {
		opts = options.Find()
	}
	cur, err := r.col.Find(ctx, filter, opts)
	if err != nil {
		return nil, fmt.Errorf("find events: %w", err)
	}
	docs, err := decodeAll[eventDoc](ctx, cur)
	if err != nil {
		return nil, fmt.Errorf("find events: %w", err)
	}
	return toEvents(docs), nil
}
