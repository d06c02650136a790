package postgres

// Schema is the DDL used by EnsureSchema.
const Schema = `
CREATE TABLE IF NOT EXISTS globalpools (
	address             TEXT PRIMARY KEY,
	lifecycle           TEXT NOT NULL,
	token_mint_a        TEXT NOT NULL,
	token_mint_b        TEXT NOT NULL,
	token_vault_a       TEXT NOT NULL,
	token_vault_b       TEXT NOT NULL,
	fee_authority       TEXT NOT NULL,
	tick_spacing        INTEGER NOT NULL,
	fee_rate            INTEGER NOT NULL,
	protocol_fee_rate   INTEGER NOT NULL,
	liquidity_available NUMERIC(39, 0) NOT NULL,
	liquidity_borrowed  NUMERIC(39, 0) NOT NULL,
	sqrt_price          NUMERIC(39, 0) NOT NULL,
	tick_current_index  INTEGER NOT NULL,
	fee_growth_global_a NUMERIC(39, 0) NOT NULL,
	fee_growth_global_b NUMERIC(39, 0) NOT NULL,
	protocol_fee_owed_a NUMERIC(20, 0) NOT NULL,
	protocol_fee_owed_b NUMERIC(20, 0) NOT NULL,
	inception_time      BIGINT NOT NULL,
	last_seq            BIGINT NOT NULL,
	last_slot           BIGINT NOT NULL,
	updated_at          TIMESTAMPTZ NOT NULL
);

CREATE TABLE IF NOT EXISTS tree_roots (
	address      TEXT PRIMARY KEY,
	authority    TEXT NOT NULL,
	creator      TEXT NOT NULL,
	delegate     TEXT NOT NULL,
	is_public    BOOLEAN NOT NULL,
	max_depth    INTEGER NOT NULL,
	canopy_depth INTEGER NOT NULL,
	root         TEXT NOT NULL,
	sequence     BIGINT NOT NULL,
	last_seq     BIGINT NOT NULL,
	last_slot    BIGINT NOT NULL,
	updated_at   TIMESTAMPTZ NOT NULL
);

CREATE TABLE IF NOT EXISTS leaf_mutations (
	seq           BIGINT NOT NULL,
	slot          BIGINT NOT NULL,
	signature     TEXT NOT NULL,
	kind          TEXT NOT NULL,
	tree          TEXT NOT NULL,
	asset_id      TEXT NOT NULL,
	leaf_index    BIGINT NOT NULL,
	nonce         NUMERIC(20, 0) NOT NULL,
	state         TEXT NOT NULL,
	previous_node TEXT NOT NULL,
	new_node      TEXT NOT NULL,
	data_hash     TEXT NOT NULL,
	created_at    TIMESTAMPTZ NOT NULL,
	PRIMARY KEY (seq, tree)
);

CREATE TABLE IF NOT EXISTS replay_state (
	name             TEXT PRIMARY KEY,
	last_applied_seq BIGINT NOT NULL,
	updated_at       TIMESTAMPTZ NOT NULL
);
`
