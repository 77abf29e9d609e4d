package databases

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/linesmerrill/school-board-api/models"
)

const (
	boardCollectionName   = "board"
	mediaCollectionName   = "media"
	appMetaCollectionName = "appmeta"

	boardDocumentID = "board"
)

// boardDocument wraps the board in the single document of the board collection
type boardDocument struct {
	ID        string           `bson:"_id"`
	Data      models.BoardData `bson:"data"`
	UpdatedAt time.Time        `bson:"updatedAt"`
}

type appMetaDocument struct {
	ID     string            `bson:"_id"`
	Values map[string]string `bson:"values"`
}

// MongoStore keeps the board in MongoDB
type MongoStore struct {
	db     DatabaseHelper
	client ClientHelper
}

// NewMongoStore initializes a new instance of the mongo board store with the provided db connection.
// client may be nil when the caller owns the connection.
func NewMongoStore(db DatabaseHelper, client ClientHelper) *MongoStore {
	return &MongoStore{db: db, client: client}
}

// Kind returns models.BackendMongo
func (m *MongoStore) Kind() models.BackendKind { return models.BackendMongo }

// Close disconnects the client when the store owns it
func (m *MongoStore) Close() error {
	if m.client == nil {
		return nil
	}
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return m.client.Disconnect(ctx)
}

// LoadBoard reads the board document
func (m *MongoStore) LoadBoard(ctx context.Context) (models.BoardData, error) {
	doc := &boardDocument{}
	err := m.db.Collection(boardCollectionName).FindOne(ctx, bson.M{"_id": boardDocumentID}).Decode(doc)
	if err != nil {
		return models.BoardData{}, mongoError(err)
	}
	return doc.Data, nil
}

// SaveBoard upserts the board document
func (m *MongoStore) SaveBoard(ctx context.Context, board models.BoardData) error {
	doc := boardDocument{ID: boardDocumentID, Data: board, UpdatedAt: time.Now().UTC()}
	err := m.db.Collection(boardCollectionName).ReplaceOne(ctx,
		bson.M{"_id": boardDocumentID}, doc, options.Replace().SetUpsert(true))
	if err != nil {
		return errors.Wrap(ErrUnavailable, err.Error())
	}
	return nil
}

// LoadMeta reads the app metadata document
func (m *MongoStore) LoadMeta(ctx context.Context) (map[string]string, error) {
	doc := &appMetaDocument{}
	err := m.db.Collection(appMetaCollectionName).FindOne(ctx, bson.M{"_id": boardDocumentID}).Decode(doc)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return map[string]string{}, nil
		}
		return nil, mongoError(err)
	}
	if doc.Values == nil {
		doc.Values = map[string]string{}
	}
	return doc.Values, nil
}

// SaveMeta upserts the app metadata document
func (m *MongoStore) SaveMeta(ctx context.Context, meta map[string]string) error {
	doc := appMetaDocument{ID: boardDocumentID, Values: meta}
	err := m.db.Collection(appMetaCollectionName).ReplaceOne(ctx,
		bson.M{"_id": boardDocumentID}, doc, options.Replace().SetUpsert(true))
	return errors.Wrap(err, "save app meta")
}

// PutMedia inserts the asset under a new UUID
func (m *MongoStore) PutMedia(ctx context.Context, media models.Media) (models.MediaRef, error) {
	media.ID = uuid.NewString()
	if media.CreatedAt.IsZero() {
		media.CreatedAt = time.Now().UTC()
	}
	if err := m.db.Collection(mediaCollectionName).InsertOne(ctx, media); err != nil {
		return models.MediaRef{}, errors.Wrap(err, "insert media")
	}
	return models.MediaRef{Backend: models.BackendMongo, ID: media.ID}, nil
}

// GetMedia reads an asset by id
func (m *MongoStore) GetMedia(ctx context.Context, id string) (models.Media, error) {
	media := &models.Media{}
	if err := m.db.Collection(mediaCollectionName).FindOne(ctx, bson.M{"_id": id}).Decode(media); err != nil {
		return models.Media{}, mongoError(err)
	}
	return *media, nil
}

// MediaURL returns the public path the HTTP API serves the asset from
func (m *MongoStore) MediaURL(id string) string {
	return MediaPath(id)
}

func mongoError(err error) error {
	switch {
	case errors.Is(err, mongo.ErrNoDocuments):
		return ErrNotFound
	case isTransportError(err):
		return errors.Wrap(ErrUnavailable, err.Error())
	default:
		return errors.Wrap(ErrMalformed, err.Error())
	}
}

// isTransportError separates server and network failures from documents that failed to decode
func isTransportError(err error) bool {
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) || errors.Is(err, mongo.ErrClientDisconnected) {
		return true
	}
	if mongo.IsNetworkError(err) || mongo.IsTimeout(err) {
		return true
	}
	var serverErr mongo.ServerError
	return errors.As(err, &serverErr)
}
