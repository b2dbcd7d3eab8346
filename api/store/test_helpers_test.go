/* test_helpers_test.go
 * Contains test helper functions for store package tests
 */

package store

import (
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo/integration/mtest"
)

// newMockedStore binds every collection of a Store to the mtest collection so each test can queue responses
func newMockedStore(mt *mtest.T) *Store {
	return &Store{
		Client:   mt.Client,
		Database: mt.DB,
		Collections: Collections{
			Events:         mt.Coll,
			EventResults:   mt.Coll,
			FighterRecords: mt.Coll,
			RecordRuns:     mt.Coll,
		},
	}
}

// namespace returns the db.collection string mtest cursor responses expect
func namespace(mt *mtest.T) string {
	return mt.DB.Name() + "." + mt.Coll.Name()
}

// sampleEntry creates a raw bout result entry like the ones stored in event_results
func sampleEntry(first, last, dob, result string, mat, bout int) bson.D {
	return bson.D{
		{Key: "first", Value: first},
		{Key: "last", Value: last},
		{Key: "dob", Value: dob},
		{Key: "gym", Value: "Test Gym"},
		{Key: "weightclass", Value: 145},
		{Key: "mat", Value: mat},
		{Key: "bout", Value: bout},
		{Key: "result", Value: result},
		{Key: "gender", Value: "F"},
		{Key: "age", Value: 24},
	}
}
