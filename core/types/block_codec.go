package types

import (
	"errors"
	"fmt"
	"math/big"

	"github.com/ethereum/go-ethereum/rlp"

	"github.com/ethereum/go-evmcore/trie"
)

// MaxUncles is the maximum number of uncle headers a block may carry.
const MaxUncles = 2

var (
	errTooManyUncles       = errors.New("block: too many uncle headers")
	errDuplicateUncleHash  = errors.New("block: duplicate uncle hash")
	errUnclesNotAllowed    = errors.New("block: uncles not allowed under this consensus")
	errWithdrawalsPreShift = errors.New("block: withdrawals present before EIP-4895 activation")
	errPayloadHashMismatch = errors.New("block: computed header hash does not match payload.BlockHash")

	errTransactionsTrieMismatch = errors.New("block: transactionsTrie does not match recomputed root")
	errUncleHashMismatch        = errors.New("block: uncleHash does not match recomputed root")
	errWithdrawalsTrieMismatch  = errors.New("block: withdrawalsRoot does not match recomputed root")
	errBlobGasUsedMismatch      = errors.New("block: blobGasUsed does not match sum of transaction blob gas")
)

// BlockOptions controls the structural checks FromBlockData runs.
type BlockOptions struct {
	ShanghaiActive bool // withdrawals are only legal once true
	PoWConsensus   bool // uncles are only legal under PoW consensus
}

// FromBlockData validates structural invariants and constructs a Block:
// at most MaxUncles uncles with distinct hashes, uncles forbidden outside
// PoW consensus, and withdrawals forbidden before EIP-4895. The header and
// body are otherwise trusted as given; trie-root/uncle-hash/blob-gas
// consistency is a separate check (see TransactionsTrieIsValid and friends)
// since it requires recomputing roots the caller may not always want paid
// for (e.g. when re-hydrating a block already verified once).
func FromBlockData(header *Header, body *Body, opts BlockOptions) (*Block, error) {
	if body == nil {
		body = &Body{}
	}
	if len(body.Uncles) > MaxUncles {
		return nil, fmt.Errorf("%w: have %d, max %d", errTooManyUncles, len(body.Uncles), MaxUncles)
	}
	if len(body.Uncles) > 0 && !opts.PoWConsensus {
		return nil, errUnclesNotAllowed
	}
	seen := make(map[Hash]bool, len(body.Uncles))
	for _, uncle := range body.Uncles {
		h := uncle.Hash()
		if seen[h] {
			return nil, fmt.Errorf("%w: %s", errDuplicateUncleHash, h.Hex())
		}
		seen[h] = true
	}
	if body.Withdrawals != nil && !opts.ShanghaiActive {
		return nil, errWithdrawalsPreShift
	}
	return NewBlock(header, body), nil
}

// txTrieKeyValuePairs builds the [[RLP(index), RLP-encoded tx], ...] pairs
// go-ethereum's DerivableList convention uses for both the transactions and
// withdrawals tries.
func txTrieKeyValuePairs(txs []BlockTransaction) ([]trie.KeyValuePair, error) {
	pairs := make([]trie.KeyValuePair, len(txs))
	for i, tx := range txs {
		key, err := rlp.EncodeToBytes(uint(i))
		if err != nil {
			return nil, fmt.Errorf("encoding tx index %d: %w", i, err)
		}
		val, err := tx.MarshalBinary()
		if err != nil {
			return nil, fmt.Errorf("encoding tx %d: %w", i, err)
		}
		pairs[i] = trie.KeyValuePair{Key: key, Value: val}
	}
	return pairs, nil
}

func withdrawalsTrieKeyValuePairs(withdrawals []*Withdrawal) ([]trie.KeyValuePair, error) {
	pairs := make([]trie.KeyValuePair, len(withdrawals))
	for i, w := range withdrawals {
		key, err := rlp.EncodeToBytes(uint(i))
		if err != nil {
			return nil, fmt.Errorf("encoding withdrawal index %d: %w", i, err)
		}
		pairs[i] = trie.KeyValuePair{Key: key, Value: EncodeWithdrawal(w)}
	}
	return pairs, nil
}

// TransactionsTrieIsValid recomputes the transactions trie root via hasher
// and reports whether it matches the block's header.TxHash.
func TransactionsTrieIsValid(hasher trie.TrieHasher, b *Block) (bool, error) {
	pairs, err := txTrieKeyValuePairs(b.Transactions())
	if err != nil {
		return false, err
	}
	return hasher.HashRoot(pairs) == b.TxHash(), nil
}

// UncleHashIsValid reports whether keccak256(RLP(uncles)) matches the
// block's header.UncleHash. Unlike the transactions/withdrawals roots this
// is a flat RLP hash, not a trie root — go-ethereum never built a trie over
// uncles.
func UncleHashIsValid(b *Block) bool {
	enc, err := rlp.EncodeToBytes(b.Uncles())
	if err != nil {
		return false
	}
	return keccak256Hash(enc) == b.UncleHash()
}

// WithdrawalsTrieIsValid recomputes the withdrawals trie root via hasher and
// reports whether it matches header.WithdrawalsHash. A block with no
// WithdrawalsHash (pre-Shanghai) is vacuously valid only if it also carries
// no withdrawals.
func WithdrawalsTrieIsValid(hasher trie.TrieHasher, b *Block) (bool, error) {
	header := b.header
	if header.WithdrawalsHash == nil {
		return len(b.Withdrawals()) == 0, nil
	}
	pairs, err := withdrawalsTrieKeyValuePairs(b.Withdrawals())
	if err != nil {
		return false, err
	}
	return hasher.HashRoot(pairs) == *header.WithdrawalsHash, nil
}

// BlobGasUsedIsValid sums BlobGasUsed() across the block's transactions and
// reports whether it matches header.BlobGasUsed. A block with no
// header.BlobGasUsed (pre-Cancun) is valid only if no transaction reports
// blob gas.
func BlobGasUsedIsValid(b *Block) bool {
	var sum uint64
	for _, tx := range b.Transactions() {
		sum += tx.BlobGasUsed()
	}
	if b.header.BlobGasUsed == nil {
		return sum == 0
	}
	return sum == *b.header.BlobGasUsed
}

// ValidateStructure runs every structural/consensus check BlockCodec owns
// in one place, returning the first failure.
func ValidateStructure(hasher trie.TrieHasher, b *Block) error {
	if ok, err := TransactionsTrieIsValid(hasher, b); err != nil {
		return err
	} else if !ok {
		return errTransactionsTrieMismatch
	}
	if !UncleHashIsValid(b) {
		return errUncleHashMismatch
	}
	if ok, err := WithdrawalsTrieIsValid(hasher, b); err != nil {
		return err
	} else if !ok {
		return errWithdrawalsTrieMismatch
	}
	if !BlobGasUsedIsValid(b) {
		return errBlobGasUsedMismatch
	}
	return nil
}

// ExecutionPayload mirrors the Engine API's ExecutionPayload object (the
// newPayload/NewPayloadV* argument), the wire shape FromExecutionPayload
// builds a Block from.
type ExecutionPayload struct {
	ParentHash    Hash
	FeeRecipient  Address
	StateRoot     Hash
	ReceiptsRoot  Hash
	LogsBloom     Bloom
	PrevRandao    Hash
	BlockNumber   uint64
	GasLimit      uint64
	GasUsed       uint64
	Timestamp     uint64
	ExtraData     []byte
	BaseFeePerGas *big.Int
	BlockHash     Hash
	Transactions  [][]byte
	Withdrawals   []*Withdrawal

	BlobGasUsed      *uint64
	ExcessBlobGas    *uint64
	ParentBeaconRoot *Hash
}

// FromExecutionPayload builds transaction and withdrawal tries via hasher,
// assembles the header and block, and verifies the supplied payload hash
// matches the computed header hash. Transactions are kept opaque
// (RawTransaction) since this package owns no transaction-type codec.
func FromExecutionPayload(p *ExecutionPayload, hasher trie.TrieHasher, opts HeaderOptions) (*Block, error) {
	txs := make([]BlockTransaction, len(p.Transactions))
	for i, raw := range p.Transactions {
		txs[i] = NewRawTransaction(raw)
	}
	txPairs, err := txTrieKeyValuePairs(txs)
	if err != nil {
		return nil, err
	}
	txRoot := hasher.HashRoot(txPairs)

	var withdrawalsRoot *Hash
	if p.Withdrawals != nil {
		wPairs, err := withdrawalsTrieKeyValuePairs(p.Withdrawals)
		if err != nil {
			return nil, err
		}
		root := hasher.HashRoot(wPairs)
		withdrawalsRoot = &root
	}

	header := &Header{
		ParentHash:       p.ParentHash,
		UncleHash:        EmptyUncleHash,
		Coinbase:         p.FeeRecipient,
		Root:             p.StateRoot,
		TxHash:           txRoot,
		ReceiptHash:      p.ReceiptsRoot,
		Bloom:            p.LogsBloom,
		Difficulty:       new(big.Int),
		Number:           new(big.Int).SetUint64(p.BlockNumber),
		GasLimit:         p.GasLimit,
		GasUsed:          p.GasUsed,
		Time:             p.Timestamp,
		Extra:            p.ExtraData,
		MixDigest:        p.PrevRandao,
		BaseFee:          p.BaseFeePerGas,
		WithdrawalsHash:  withdrawalsRoot,
		BlobGasUsed:      p.BlobGasUsed,
		ExcessBlobGas:    p.ExcessBlobGas,
		ParentBeaconRoot: p.ParentBeaconRoot,
	}
	frozen, err := FromHeaderData(header, opts)
	if err != nil {
		return nil, err
	}
	if frozen.Hash() != p.BlockHash {
		return nil, fmt.Errorf("%w: got %s, want %s", errPayloadHashMismatch, frozen.Hash().Hex(), p.BlockHash.Hex())
	}

	block := NewBlock(frozen, &Body{Transactions: txs, Withdrawals: p.Withdrawals})
	return block, nil
}
