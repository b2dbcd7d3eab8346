/* fighter_records.go
 * Contains the methods for interacting with the fighter_records collection
 */

package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

func recordFilter(body string, year int, fighterKey string) bson.D {
	return bson.D{
		{Key: "sanctioning_body", Value: body},
		{Key: "year", Value: year},
		{Key: "fighter_key", Value: fighterKey},
	}
}

// UpsertFighterRecord writes a fighter's aggregate record for a sanctioning body year. The stored counters are
// replaced by the ones on the record, so writing the same record twice leaves the same document behind.
// created_at is only set the first time the record is written
// Preconditions: Receives a context and a FighterRecord with body, year and key set
// Postconditions: Record is inserted or updated, or an error is returned
func (s *Store) UpsertFighterRecord(ctx context.Context, record FighterRecord) error {
	if record.SanctioningBody == "" || record.Year == 0 || record.FighterKey == "" {
		return fmt.Errorf("fighter record requires sanctioning body, year and fighter key")
	}

	now := time.Now().UTC()
	record.CreatedAt = time.Time{}
	record.UpdatedAt = now

	filter := recordFilter(record.SanctioningBody, record.Year, record.FighterKey)
	update := bson.D{
		{Key: "$set", Value: record},
		{Key: "$setOnInsert", Value: bson.D{{Key: "created_at", Value: now}}},
	}
	opts := options.Update().SetUpsert(true)

	if _, err := s.Collections.FighterRecords.UpdateOne(ctx, filter, update, opts); err != nil {
		return fmt.Errorf("failed to upsert record for %s: %w", record.FighterKey, err)
	}
	return nil
}

// GetFighterRecord returns one fighter's record. mongo.ErrNoDocuments is returned unwrapped when there is none
func (s *Store) GetFighterRecord(ctx context.Context, body string, year int, fighterKey string) (FighterRecord, error) {
	var record FighterRecord
	err := s.Collections.FighterRecords.FindOne(ctx, recordFilter(body, year, fighterKey)).Decode(&record)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return FighterRecord{}, err
		}
		return FighterRecord{}, fmt.Errorf("error fetching fighter record from db: %w", err)
	}
	return record, nil
}

// GetFighterRecords returns every record stored for a sanctioning body year
func (s *Store) GetFighterRecords(ctx context.Context, body string, year int) ([]FighterRecord, error) {
	filter := bson.D{
		{Key: "sanctioning_body", Value: body},
		{Key: "year", Value: year},
	}

	cursor, err := s.Collections.FighterRecords.Find(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("error fetching fighter records from db: %w", err)
	}

	var records []FighterRecord
	if err = cursor.All(ctx, &records); err != nil {
		return nil, fmt.Errorf("error unpacking cursor into slice of fighter records: %w", err)
	}
	return records, nil
}

// DeleteStaleFighterRecords removes the records of a sanctioning body year whose fighter key is not in keep. A run
// calls it after writing every record it built, so records left behind by earlier runs (for example under a
// fighter key that changed after a corrected date of birth) do not outlive their source
// Preconditions: Receives a context, the sanctioning body, year and the fighter keys to keep
// Postconditions: Returns the number of records removed, or an error
func (s *Store) DeleteStaleFighterRecords(ctx context.Context, body string, year int, keep []string) (int64, error) {
	if body == "" || year == 0 {
		return 0, fmt.Errorf("deleting stale records requires sanctioning body and year")
	}
	// A nil slice encodes as null, which $nin rejects
	if keep == nil {
		keep = []string{}
	}

	filter := bson.D{
		{Key: "sanctioning_body", Value: body},
		{Key: "year", Value: year},
		{Key: "fighter_key", Value: bson.D{{Key: "$nin", Value: keep}}},
	}
	result, err := s.Collections.FighterRecords.DeleteMany(ctx, filter)
	if err != nil {
		return 0, fmt.Errorf("failed to delete stale fighter records: %w", err)
	}
	return result.DeletedCount, nil
}
