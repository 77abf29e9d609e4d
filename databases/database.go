package databases

import (
	"context"

	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/linesmerrill/school-board-api/config"
)

// go generate: mockery --name DatabaseHelper
// go generate: mockery --name CollectionHelper
// go generate: mockery --name SingleResultHelper
// go generate: mockery --name ClientHelper

// DatabaseHelper contains the collection and client to be used to access the methods
// defined below
type DatabaseHelper interface {
	Collection(name string) CollectionHelper
	Client() ClientHelper
}

// CollectionHelper contains all the methods defined for collections in this project
type CollectionHelper interface {
	FindOne(context.Context, interface{}, ...*options.FindOneOptions) SingleResultHelper
	ReplaceOne(context.Context, interface{}, interface{}, ...*options.ReplaceOptions) error
	InsertOne(context.Context, interface{}, ...*options.InsertOneOptions) error
}

// SingleResultHelper contains a single method to decode the result
type SingleResultHelper interface {
	Decode(v interface{}) error
}

// ClientHelper defined to help at client creation inside main.go
type ClientHelper interface {
	Database(string) DatabaseHelper
	Connect(ctx context.Context) error
	Disconnect(ctx context.Context) error
}

type mongoClient struct {
	cl   *mongo.Client
	opts *options.ClientOptions
}

type mongoDatabase struct {
	db *mongo.Database
}

type mongoCollection struct {
	coll *mongo.Collection
}

type mongoSingleResult struct {
	sr *mongo.SingleResult
}

// NewClient uses the values from the config and returns a mongo client that is not connected yet
func NewClient(conf *config.Config) (ClientHelper, error) {
	return &mongoClient{opts: options.Client().ApplyURI(conf.URL)}, nil
}

// NewDatabase uses the client from NewClient and sets the database name
func NewDatabase(conf *config.Config, client ClientHelper) DatabaseHelper {
	return client.Database(conf.DatabaseName)
}

func (mc *mongoClient) Database(dbName string) DatabaseHelper {
	return &mongoDatabase{db: mc.cl.Database(dbName)}
}

func (mc *mongoClient) Connect(ctx context.Context) error {
	cl, err := mongo.Connect(ctx, mc.opts)
	if err != nil {
		return err
	}
	mc.cl = cl
	return cl.Ping(ctx, nil)
}

func (mc *mongoClient) Disconnect(ctx context.Context) error {
	if mc.cl == nil {
		return nil
	}
	return mc.cl.Disconnect(ctx)
}

func (md *mongoDatabase) Collection(colName string) CollectionHelper {
	return &mongoCollection{coll: md.db.Collection(colName)}
}

func (md *mongoDatabase) Client() ClientHelper {
	return &mongoClient{cl: md.db.Client()}
}

func (mc *mongoCollection) FindOne(ctx context.Context, filter interface{}, opts ...*options.FindOneOptions) SingleResultHelper {
	return &mongoSingleResult{sr: mc.coll.FindOne(ctx, filter, opts...)}
}

func (mc *mongoCollection) ReplaceOne(ctx context.Context, filter interface{}, replacement interface{}, opts ...*options.ReplaceOptions) error {
	_, err := mc.coll.ReplaceOne(ctx, filter, replacement, opts...)
	return err
}

func (mc *mongoCollection) InsertOne(ctx context.Context, document interface{}, opts ...*options.InsertOneOptions) error {
	_, err := mc.coll.InsertOne(ctx, document, opts...)
	return err
}

func (sr *mongoSingleResult) Decode(v interface{}) error {
	return sr.sr.Decode(v)
}
