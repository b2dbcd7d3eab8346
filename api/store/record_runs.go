/* record_runs.go
 * Contains the methods for interacting with the record_runs collection
 */

package store

import (
	"context"
	"fmt"
)

// StoreRunSummary keeps the summary of an aggregation run so failed fighters can be re-triggered later
func (s *Store) StoreRunSummary(ctx context.Context, summary RunSummary) error {
	if summary.RunID == "" {
		return fmt.Errorf("run summary is missing a run id")
	}
	if _, err := s.Collections.RecordRuns.InsertOne(ctx, summary); err != nil {
		return fmt.Errorf("failed to insert run summary: %w", err)
	}
	return nil
}
