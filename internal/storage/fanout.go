package storage

import (
	"context"

	"clad/internal/model"
)

// Fanout writes every batch to each sink in order and stops at the first
// failure.
type Fanout []Storage

var _ Storage = Fanout(nil)

func (f Fanout) PutSnapshots(ctx context.Context, snapshots []model.AccountSnapshot) error {
	for _, sink := range f {
		if err := sink.PutSnapshots(ctx, snapshots); err != nil {
			return err
		}
	}
	return nil
}

func (f Fanout) PutMutations(ctx context.Context, mutations []model.LeafMutationRecord) error {
	for _, sink := range f {
		if err := sink.PutMutations(ctx, mutations); err != nil {
			return err
		}
	}
	return nil
}
