package sink

import (
	"context"
	"fmt"

	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/BartekS5/airline-etl/internal/config"
	"github.com/BartekS5/airline-etl/pkg/logger"
	"github.com/BartekS5/airline-etl/pkg/models"
)

// DefaultMongoDatabase is used when the output table has no dataset part.
const DefaultMongoDatabase = "airline_data"

// Mongo appends rows as documents with an ordered InsertMany. The dataset
// part of the table id names the database and the table names the collection.
type Mongo struct {
	coll *mongo.Collection
	ref  config.TableRef
}

func NewMongo(client *mongo.Client, ref config.TableRef) *Mongo {
	db := ref.Dataset
	if db == "" {
		db = DefaultMongoDatabase
	}
	return &Mongo{coll: client.Database(db).Collection(ref.Table), ref: ref}
}

func (m *Mongo) Name() string { return "mongo:" + m.ref.Qualified() }

func (m *Mongo) Write(ctx context.Context, recs []models.EnrichedFlight) (int64, error) {
	if len(recs) == 0 {
		return 0, nil
	}
	docs := make([]interface{}, len(recs))
	for i := range recs {
		docs[i] = recs[i]
	}

	res, err := m.coll.InsertMany(ctx, docs, options.InsertMany().SetOrdered(true))
	if err != nil {
		var inserted int64
		if res != nil {
			inserted = int64(len(res.InsertedIDs))
		}
		return inserted, writeErr(m.Name(), len(recs), fmt.Errorf("insert many: %w", err))
	}
	logger.Debugf("Mongo InsertMany: %d documents into %s", len(res.InsertedIDs), m.Name())
	return int64(len(res.InsertedIDs)), nil
}
