package history

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/event"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"

	"github.com/doeshing/voicectl/internal/domain"
	"github.com/doeshing/voicectl/internal/pkg/logger"
	"github.com/doeshing/voicectl/internal/ports"
)

// commandDocument is the stored shape of a command record.
type commandDocument struct {
	ID        primitive.ObjectID `bson:"_id,omitempty"`
	Text      string             `bson:"text"`
	Type      string             `bson:"type"`
	Timestamp time.Time          `bson:"timestamp"`
	Status    string             `bson:"status"`
	Response  string             `bson:"response"`
	Platform  string             `bson:"platform"`
	UserAgent string             `bson:"userAgent,omitempty"`
}

func toDocument(rec domain.CommandRecord) commandDocument {
	return commandDocument{
		Text:      rec.Text,
		Type:      string(rec.Source),
		Timestamp: rec.Timestamp,
		Status:    string(rec.Status),
		Response:  rec.Response,
		Platform:  rec.Platform,
		UserAgent: rec.ClientContext,
	}
}

func (d commandDocument) record() domain.CommandRecord {
	return domain.CommandRecord{
		ID:            d.ID.Hex(),
		Text:          d.Text,
		Source:        domain.Source(d.Type),
		Timestamp:     d.Timestamp.UTC(),
		Status:        domain.Status(d.Status),
		Response:      d.Response,
		Platform:      d.Platform,
		ClientContext: d.UserAgent,
	}
}

type linkState int32

const (
	linkUnknown linkState = iota
	linkUp
	linkDown
)

// MongoStore persists records in a MongoDB collection.
type MongoStore struct {
	uri        string
	database   string
	collection string
	logger     ports.Logger

	mu     sync.RWMutex
	client *mongo.Client
	coll   *mongo.Collection

	listenMu  sync.Mutex
	listeners []func(bool)
	link      linkState
}

// NewMongoStore builds an unconnected store.
func NewMongoStore(uri, database, collection string, log ports.Logger) *MongoStore {
	if log == nil {
		log = logger.NewNop()
	}
	if database == "" {
		database = domain.DefaultDatabase
	}
	if collection == "" {
		collection = domain.DefaultCollection
	}
	return &MongoStore{uri: uri, database: database, collection: collection, logger: log}
}

// Name implements ports.PersistentStore.
func (s *MongoStore) Name() string {
	return domain.StorageDriverMongo
}

// OnConnectivityChange implements ports.ConnectivityNotifier. Listeners see
// transitions only, derived from server heartbeats.
func (s *MongoStore) OnConnectivityChange(fn func(up bool)) {
	s.listenMu.Lock()
	defer s.listenMu.Unlock()
	s.listeners = append(s.listeners, fn)
}

func (s *MongoStore) notify(up bool) {
	next := linkDown
	if up {
		next = linkUp
	}
	s.listenMu.Lock()
	if s.link == next {
		s.listenMu.Unlock()
		return
	}
	s.link = next
	listeners := append(([]func(bool))(nil), s.listeners...)
	s.listenMu.Unlock()

	for _, fn := range listeners {
		fn(up)
	}
}

// Connect implements ports.PersistentStore.
func (s *MongoStore) Connect(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.client != nil {
		return nil
	}

	monitor := &event.ServerMonitor{
		ServerHeartbeatSucceeded: func(*event.ServerHeartbeatSucceededEvent) { s.notify(true) },
		ServerHeartbeatFailed:    func(*event.ServerHeartbeatFailedEvent) { s.notify(false) },
	}
	opts := options.Client().ApplyURI(s.uri).SetServerMonitor(monitor)
	if deadline, ok := ctx.Deadline(); ok {
		opts.SetServerSelectionTimeout(time.Until(deadline))
	}

	client, err := mongo.Connect(ctx, opts)
	if err != nil {
		return fmt.Errorf("mongo connect: %w", err)
	}
	if err := client.Ping(ctx, readpref.Primary()); err != nil {
		_ = client.Disconnect(context.WithoutCancel(ctx))
		return fmt.Errorf("mongo ping: %w", err)
	}

	coll := client.Database(s.database).Collection(s.collection)
	index := mongo.IndexModel{Keys: bson.D{{Key: "timestamp", Value: -1}}}
	if _, err := coll.Indexes().CreateOne(ctx, index); err != nil {
		s.logger.Warn("could not ensure timestamp index", map[string]interface{}{"error": err.Error()})
	}

	s.client = client
	s.coll = coll
	return nil
}

// Ping implements ports.PersistentStore. An unconnected store retries Connect.
func (s *MongoStore) Ping(ctx context.Context) error {
	s.mu.RLock()
	client := s.client
	s.mu.RUnlock()
	if client == nil {
		return s.Connect(ctx)
	}
	return client.Ping(ctx, readpref.Primary())
}

func (s *MongoStore) collectionHandle() (*mongo.Collection, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.coll == nil {
		return nil, domain.ErrStorageUnavailable
	}
	return s.coll, nil
}

// Insert implements ports.PersistentStore.
func (s *MongoStore) Insert(ctx context.Context, rec domain.CommandRecord) (domain.CommandRecord, error) {
	coll, err := s.collectionHandle()
	if err != nil {
		return rec, err
	}
	doc := toDocument(rec)
	doc.ID = primitive.NewObjectID()
	if _, err := coll.InsertOne(ctx, doc); err != nil {
		return rec, fmt.Errorf("mongo insert: %w", err)
	}
	rec.ID = doc.ID.Hex()
	return rec, nil
}

// Recent implements ports.PersistentStore. The user agent is projected out.
func (s *MongoStore) Recent(ctx context.Context, limit int) ([]domain.CommandRecord, error) {
	coll, err := s.collectionHandle()
	if err != nil {
		return nil, err
	}
	opts := options.Find().
		SetSort(bson.D{{Key: "timestamp", Value: -1}}).
		SetProjection(bson.D{{Key: "userAgent", Value: 0}})
	if limit > 0 {
		opts.SetLimit(int64(limit))
	}

	cursor, err := coll.Find(ctx, bson.D{}, opts)
	if err != nil {
		return nil, fmt.Errorf("mongo find: %w", err)
	}
	var docs []commandDocument
	if err := cursor.All(ctx, &docs); err != nil {
		return nil, fmt.Errorf("mongo decode: %w", err)
	}
	records := make([]domain.CommandRecord, 0, len(docs))
	for _, d := range docs {
		records = append(records, d.record())
	}
	return records, nil
}

// DeleteAll implements ports.PersistentStore.
func (s *MongoStore) DeleteAll(ctx context.Context) error {
	coll, err := s.collectionHandle()
	if err != nil {
		return err
	}
	if _, err := coll.DeleteMany(ctx, bson.D{}); err != nil {
		return fmt.Errorf("mongo delete: %w", err)
	}
	return nil
}

// Close implements ports.PersistentStore.
func (s *MongoStore) Close(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.client == nil {
		return nil
	}
	err := s.client.Disconnect(ctx)
	s.client, s.coll = nil, nil
	if err != nil && !errors.Is(err, mongo.ErrClientDisconnected) {
		return fmt.Errorf("mongo disconnect: %w", err)
	}
	return nil
}

var (
	_ ports.PersistentStore      = (*MongoStore)(nil)
	_ ports.ConnectivityNotifier = (*MongoStore)(nil)
)
