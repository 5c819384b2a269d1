package db

import (
	"context"
	"errors"
	"fmt"

	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/Dost-DS/task1-mongodb-batch-ingest/internal/reading"
)

var (
	ErrBulkInsertFailed = errors.New("bulk insert operation failed")
)

// Mongo server error code for a unique key violation.
const duplicateKeyCode = 11000

// ChunkResult classifies the per-row outcomes of one bulk insert.
type ChunkResult struct {
	Inserted   int64
	Duplicates int64
}

// InsertChunk submits one chunk as an unordered bulk insert. Duplicate-key
// rejections are the expected idempotency signal: they are counted, never
// surfaced as an error, and never block the other rows of the chunk. Any
// other write error fails the chunk.
func (db *DB) InsertChunk(ctx context.Context, docs []reading.Reading) (ChunkResult, error) {
	const fn = "DB:InsertChunk"
	if len(docs) == 0 {
		return ChunkResult{}, nil
	}

	payload := make([]interface{}, len(docs))
	for i, doc := range docs {
		payload[i] = doc
	}

	_, err := db.coll.InsertMany(ctx, payload, options.InsertMany().SetOrdered(false))
	if err == nil {
		return ChunkResult{Inserted: int64(len(docs))}, nil
	}

	var bwe mongo.BulkWriteException
	if !errors.As(err, &bwe) {
		return ChunkResult{}, fmt.Errorf("%s:%w:%w", fn, ErrBulkInsertFailed, err)
	}
	var dup int64
	for _, we := range bwe.WriteErrors {
		if we.Code != duplicateKeyCode {
			return ChunkResult{}, fmt.Errorf("%s:%w:%w", fn, ErrBulkInsertFailed, err)
		}
		dup++
	}
	if bwe.WriteConcernError != nil {
		return ChunkResult{}, fmt.Errorf("%s:%w:%w", fn, ErrBulkInsertFailed, err)
	}

	return ChunkResult{
		Inserted:   int64(len(docs)) - dup,
		Duplicates: dup,
	}, nil
}

// CountDocuments reports the collection size; used by integration tests to
// verify idempotency against a live store.
func (db *DB) CountDocuments(ctx context.Context) (int64, error) {
	return db.coll.EstimatedDocumentCount(ctx)
}
