package postgres

import (
	"context"
	"errors"
	"fmt"
	"strconv"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"clad/internal/model"
	"clad/internal/storage"
)

// Store provides Postgres persistence for replay output.
type Store struct {
	pool *pgxpool.Pool
}

var _ storage.Storage = (*Store)(nil)

func NewStore(ctx context.Context, dsn string) (*Store, error) {
	if dsn == "" {
		return nil, fmt.Errorf("pg dsn is required")
	}
	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		return nil, err
	}
	return &Store{pool: pool}, nil
}

func (s *Store) Close() {
	if s.pool != nil {
		s.pool.Close()
	}
}

// EnsureSchema creates the replay tables when they are missing.
func (s *Store) EnsureSchema(ctx context.Context) error {
	if _, err := s.pool.Exec(ctx, Schema); err != nil {
		return fmt.Errorf("ensure schema: %w", err)
	}
	return nil
}

// PutSnapshots routes each snapshot to its table.
func (s *Store) PutSnapshots(ctx context.Context, snapshots []model.AccountSnapshot) error {
	var pools []model.AccountSnapshot
	var trees []model.AccountSnapshot
	for _, snap := range snapshots {
		switch {
		case snap.Kind == model.KindGlobalpool && snap.Globalpool != nil:
			pools = append(pools, snap)
		case snap.Kind == model.KindTree && snap.Tree != nil:
			trees = append(trees, snap)
		default:
			return fmt.Errorf("snapshot %s: unsupported kind %q", snap.Address, snap.Kind)
		}
	}
	if err := s.UpsertGlobalpools(ctx, pools); err != nil {
		return fmt.Errorf("upsert globalpools: %w", err)
	}
	if err := s.UpsertTreeRoots(ctx, trees); err != nil {
		return fmt.Errorf("upsert tree roots: %w", err)
	}
	return nil
}

func (s *Store) PutMutations(ctx context.Context, mutations []model.LeafMutationRecord) error {
	if err := s.InsertLeafMutations(ctx, mutations); err != nil {
		return fmt.Errorf("insert leaf mutations: %w", err)
	}
	return nil
}

// UpsertGlobalpools inserts or updates the latest state of each pool.
// 128-bit values are bound as text and cast to numeric.
func (s *Store) UpsertGlobalpools(ctx context.Context, snapshots []model.AccountSnapshot) error {
	if len(snapshots) == 0 {
		return nil
	}
	batch := &pgx.Batch{}
	for _, snap := range snapshots {
		p := snap.Globalpool
		batch.Queue(`
			INSERT INTO globalpools (
				address, lifecycle, token_mint_a, token_mint_b, token_vault_a, token_vault_b,
				fee_authority, tick_spacing, fee_rate, protocol_fee_rate,
				liquidity_available, liquidity_borrowed, sqrt_price, tick_current_index,
				fee_growth_global_a, fee_growth_global_b, protocol_fee_owed_a, protocol_fee_owed_b,
				inception_time, last_seq, last_slot, updated_at
			) VALUES (
				$1, $2, $3, $4, $5, $6, $7, $8, $9, $10,
				$11::text::numeric, $12::text::numeric, $13::text::numeric, $14,
				$15::text::numeric, $16::text::numeric, $17::text::numeric, $18::text::numeric,
				$19, $20, $21, now()
			)
			ON CONFLICT (address)
			DO UPDATE SET
				lifecycle = EXCLUDED.lifecycle,
				fee_authority = EXCLUDED.fee_authority,
				fee_rate = EXCLUDED.fee_rate,
				protocol_fee_rate = EXCLUDED.protocol_fee_rate,
				liquidity_available = EXCLUDED.liquidity_available,
				liquidity_borrowed = EXCLUDED.liquidity_borrowed,
				sqrt_price = EXCLUDED.sqrt_price,
				tick_current_index = EXCLUDED.tick_current_index,
				fee_growth_global_a = EXCLUDED.fee_growth_global_a,
				fee_growth_global_b = EXCLUDED.fee_growth_global_b,
				protocol_fee_owed_a = EXCLUDED.protocol_fee_owed_a,
				protocol_fee_owed_b = EXCLUDED.protocol_fee_owed_b,
				last_seq = GREATEST(globalpools.last_seq, EXCLUDED.last_seq),
				last_slot = EXCLUDED.last_slot,
				updated_at = now()
			WHERE globalpools.last_seq <= EXCLUDED.last_seq
		`,
			snap.Address,
			p.Lifecycle,
			p.TokenMintA,
			p.TokenMintB,
			p.TokenVaultA,
			p.TokenVaultB,
			p.FeeAuthority,
			int32(p.TickSpacing),
			int32(p.FeeRate),
			int32(p.ProtocolFeeRate),
			p.LiquidityAvailable,
			p.LiquidityBorrowed,
			p.SqrtPrice,
			p.TickCurrentIndex,
			p.FeeGrowthGlobalA,
			p.FeeGrowthGlobalB,
			strconv.FormatUint(p.ProtocolFeeOwedA, 10),
			strconv.FormatUint(p.ProtocolFeeOwedB, 10),
			int64(p.InceptionTime),
			int64(snap.Seq),
			int64(snap.Slot),
		)
	}

	br := s.pool.SendBatch(ctx, batch)
	defer br.Close()

	for range snapshots {
		if _, err := br.Exec(); err != nil {
			return err
		}
	}
	return nil
}

// UpsertTreeRoots inserts or updates the config and root of each tree.
func (s *Store) UpsertTreeRoots(ctx context.Context, snapshots []model.AccountSnapshot) error {
	if len(snapshots) == 0 {
		return nil
	}
	batch := &pgx.Batch{}
	for _, snap := range snapshots {
		tr := snap.Tree
		batch.Queue(`
			INSERT INTO tree_roots (
				address, authority, creator, delegate, is_public, max_depth, canopy_depth,
				root, sequence, last_seq, last_slot, updated_at
			) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, now())
			ON CONFLICT (address)
			DO UPDATE SET
				delegate = EXCLUDED.delegate,
				is_public = EXCLUDED.is_public,
				root = EXCLUDED.root,
				sequence = EXCLUDED.sequence,
				last_seq = GREATEST(tree_roots.last_seq, EXCLUDED.last_seq),
				last_slot = EXCLUDED.last_slot,
				updated_at = now()
			WHERE tree_roots.last_seq <= EXCLUDED.last_seq
		`,
			snap.Address,
			tr.Authority,
			tr.Creator,
			tr.Delegate,
			tr.IsPublic,
			int32(tr.MaxDepth),
			int32(tr.CanopyDepth),
			tr.Root,
			int64(tr.Sequence),
			int64(snap.Seq),
			int64(snap.Slot),
		)
	}

	br := s.pool.SendBatch(ctx, batch)
	defer br.Close()

	for range snapshots {
		if _, err := br.Exec(); err != nil {
			return err
		}
	}
	return nil
}

// InsertLeafMutations records mutations once per (seq, tree).
func (s *Store) InsertLeafMutations(ctx context.Context, mutations []model.LeafMutationRecord) error {
	if len(mutations) == 0 {
		return nil
	}
	batch := &pgx.Batch{}
	for _, m := range mutations {
		batch.Queue(`
			INSERT INTO leaf_mutations (
				seq, slot, signature, kind, tree, asset_id, leaf_index, nonce,
				state, previous_node, new_node, data_hash, created_at
			) VALUES ($1, $2, $3, $4, $5, $6, $7, $8::text::numeric, $9, $10, $11, $12, now())
			ON CONFLICT (seq, tree) DO NOTHING
		`,
			int64(m.Seq),
			int64(m.Slot),
			m.Signature,
			m.Kind,
			m.Tree,
			m.AssetID,
			int64(m.LeafIndex),
			strconv.FormatUint(m.Nonce, 10),
			m.State,
			m.PreviousNode,
			m.NewNode,
			m.DataHash,
		)
	}

	br := s.pool.SendBatch(ctx, batch)
	defer br.Close()

	for range mutations {
		if _, err := br.Exec(); err != nil {
			return err
		}
	}
	return nil
}

// LoadState returns the last applied sequence for a name.
func (s *Store) LoadState(ctx context.Context, name string) (uint64, bool, error) {
	if name == "" {
		return 0, false, fmt.Errorf("state name required")
	}
	var seq int64
	row := s.pool.QueryRow(ctx, `SELECT last_applied_seq FROM replay_state WHERE name=$1`, name)
	if err := row.Scan(&seq); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return 0, false, nil
		}
		return 0, false, err
	}
	return uint64(seq), true, nil
}

// SaveState upserts the last applied sequence for a name.
func (s *Store) SaveState(ctx context.Context, name string, seq uint64) error {
	if name == "" {
		return fmt.Errorf("state name required")
	}
	_, err := s.pool.Exec(ctx, `
		INSERT INTO replay_state (name, last_applied_seq, updated_at)
		VALUES ($1, $2, now())
		ON CONFLICT (name) DO UPDATE
		SET last_applied_seq = EXCLUDED.last_applied_seq, updated_at = now()
	`, name, int64(seq))
	return err
}
