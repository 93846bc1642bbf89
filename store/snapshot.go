package store

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	log "github.com/sirupsen/logrus"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/jvonk/covidmap/external/jhu"
	"github.com/jvonk/covidmap/schema"
)

const (
	mongoLogPrefix = "mongo"
	defaultTimeout = 30 * time.Second

	// SnapshotCollection - last-known-good copies of the raw source tables
	SnapshotCollection = "source_snapshots"

	geometrySnapshotID = "county_geometry"
)

// ErrNoSnapshot - no cached copy of a source exists yet
var ErrNoSnapshot = fmt.Errorf("no snapshot available")

// SnapshotStore persists the raw source tables after a successful fetch so
// a later startup can fall back to them when the origin is unreachable.
type SnapshotStore interface {
	SaveTables(tables map[jhu.SourceID]*jhu.RawTable) error
	LoadTables() (map[jhu.SourceID]*jhu.RawTable, error)
	SaveGeometry(asset *schema.GeographyAsset) error
	LoadGeometry() (*schema.GeographyAsset, error)
}

type mongoSnapshot struct {
	client   *mongo.Client
	database string
}

// NewMongoSnapshotStore - snapshot store backed by a mongo database
func NewMongoSnapshotStore(client *mongo.Client, database string) SnapshotStore {
	return &mongoSnapshot{client: client, database: database}
}

type tableSnapshot struct {
	ID        string     `bson:"_id"`
	FetchedAt int64      `bson:"fetched_at"`
	Columns   []string   `bson:"columns"`
	Rows      [][]string `bson:"rows"`
}

type geometrySnapshot struct {
	ID        string `bson:"_id"`
	FetchedAt int64  `bson:"fetched_at"`
	Payload   string `bson:"payload"`
}

func (m *mongoSnapshot) collection() *mongo.Collection {
	return m.client.Database(m.database).Collection(SnapshotCollection)
}

func (m *mongoSnapshot) SaveTables(tables map[jhu.SourceID]*jhu.RawTable) error {
	ctx, cancel := context.WithTimeout(context.Background(), defaultTimeout)
	defer cancel()

	now := time.Now().UTC().Unix()
	for id, table := range tables {
		doc := tableSnapshot{
			ID:        string(id),
			FetchedAt: now,
			Columns:   table.Columns,
			Rows:      table.Rows,
		}
		opts := options.Replace().SetUpsert(true)
		if _, err := m.collection().ReplaceOne(ctx, bson.M{"_id": string(id)}, doc, opts); err != nil {
			return err
		}
	}

	log.WithFields(log.Fields{"prefix": mongoLogPrefix, "tables": len(tables)}).Info("source snapshots saved")
	return nil
}

func (m *mongoSnapshot) LoadTables() (map[jhu.SourceID]*jhu.RawTable, error) {
	ctx, cancel := context.WithTimeout(context.Background(), defaultTimeout)
	defer cancel()

	tables := make(map[jhu.SourceID]*jhu.RawTable, len(jhu.TableSources))
	for _, id := range jhu.TableSources {
		var doc tableSnapshot
		err := m.collection().FindOne(ctx, bson.M{"_id": string(id)}).Decode(&doc)
		if err == mongo.ErrNoDocuments {
			return nil, fmt.Errorf("%w: %s", ErrNoSnapshot, id)
		}
		if err != nil {
			return nil, err
		}
		tables[id] = jhu.NewRawTable(doc.Columns, doc.Rows)
	}

	log.WithFields(log.Fields{"prefix": mongoLogPrefix, "tables": len(tables)}).Info("source snapshots loaded")
	return tables, nil
}

func (m *mongoSnapshot) SaveGeometry(asset *schema.GeographyAsset) error {
	payload, err := json.Marshal(asset)
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(context.Background(), defaultTimeout)
	defer cancel()

	doc := geometrySnapshot{
		ID:        geometrySnapshotID,
		FetchedAt: time.Now().UTC().Unix(),
		Payload:   string(payload),
	}
	opts := options.Replace().SetUpsert(true)
	_, err = m.collection().ReplaceOne(ctx, bson.M{"_id": geometrySnapshotID}, doc, opts)
	return err
}

func (m *mongoSnapshot) LoadGeometry() (*schema.GeographyAsset, error) {
	ctx, cancel := context.WithTimeout(context.Background(), defaultTimeout)
	defer cancel()

	var doc geometrySnapshot
	err := m.collection().FindOne(ctx, bson.M{"_id": geometrySnapshotID}).Decode(&doc)
	if err == mongo.ErrNoDocuments {
		return nil, fmt.Errorf("%w: %s", ErrNoSnapshot, geometrySnapshotID)
	}
	if err != nil {
		return nil, err
	}

	var asset schema.GeographyAsset
	if err := json.Unmarshal([]byte(doc.Payload), &asset); err != nil {
		return nil, err
	}
	return &asset, nil
}
