package storage

import (
	"context"

	"clad/internal/model"
)

// Storage is a sink for replay output.
type Storage interface {
	PutSnapshots(ctx context.Context, snapshots []model.AccountSnapshot) error
	PutMutations(ctx context.Context, mutations []model.LeafMutationRecord) error
}
