package model

// Snapshot kinds.
const (
	KindGlobalpool = "globalpool"
	KindTree       = "tree"
)

// AccountSnapshot is the state of one account after a replay batch.
// Exactly one of Globalpool and Tree is set, matching Kind.
type AccountSnapshot struct {
	Seq        uint64            `json:"seq"`
	Slot       uint64            `json:"slot"`
	Kind       string            `json:"kind"`
	Address    string            `json:"address"`
	Globalpool *GlobalpoolRecord `json:"globalpool,omitempty"`
	Tree       *TreeRecord       `json:"tree,omitempty"`
	TakenAt    string            `json:"taken_at"`
}

// GlobalpoolRecord is a pool with 128-bit values as decimal strings.
type GlobalpoolRecord struct {
	Address            string `json:"address"`
	Lifecycle          string `json:"lifecycle"`
	TokenMintA         string `json:"token_mint_a"`
	TokenMintB         string `json:"token_mint_b"`
	TokenVaultA        string `json:"token_vault_a"`
	TokenVaultB        string `json:"token_vault_b"`
	FeeAuthority       string `json:"fee_authority"`
	TickSpacing        uint16 `json:"tick_spacing"`
	FeeRate            uint16 `json:"fee_rate"`
	ProtocolFeeRate    uint16 `json:"protocol_fee_rate"`
	LiquidityAvailable string `json:"liquidity_available"`
	LiquidityBorrowed  string `json:"liquidity_borrowed"`
	SqrtPrice          string `json:"sqrt_price"`
	TickCurrentIndex   int32  `json:"tick_current_index"`
	FeeGrowthGlobalA   string `json:"fee_growth_global_a"`
	FeeGrowthGlobalB   string `json:"fee_growth_global_b"`
	ProtocolFeeOwedA   uint64 `json:"protocol_fee_owed_a"`
	ProtocolFeeOwedB   uint64 `json:"protocol_fee_owed_b"`
	InceptionTime      uint64 `json:"inception_time"`
}

// TreeRecord is a tree config joined with its current root.
type TreeRecord struct {
	Address     string `json:"address"`
	Authority   string `json:"authority"`
	Creator     string `json:"creator"`
	Delegate    string `json:"delegate"`
	IsPublic    bool   `json:"is_public"`
	MaxDepth    uint32 `json:"max_depth"`
	CanopyDepth uint32 `json:"canopy_depth"`
	Root        string `json:"root"`
	Sequence    uint64 `json:"sequence"`
}

// LeafMutationRecord is the outcome of one leaf mutation.
type LeafMutationRecord struct {
	Seq          uint64 `json:"seq"`
	Slot         uint64 `json:"slot"`
	Signature    string `json:"signature"`
	Kind         string `json:"kind"`
	Tree         string `json:"tree"`
	AssetID      string `json:"asset_id"`
	LeafIndex    uint32 `json:"leaf_index"`
	Nonce        uint64 `json:"nonce"`
	State        string `json:"state"`
	PreviousNode string `json:"previous_node"`
	NewNode      string `json:"new_node"`
	DataHash     string `json:"data_hash"`
}
