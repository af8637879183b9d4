package types

import (
	"encoding/json"
	"errors"
	"fmt"
	"math/big"

	"github.com/ethereum/go-ethereum/common/hexutil"
)

// EIP-1559 and EIP-2 (gas limit bound) protocol constants.
const (
	GasLimitBoundDivisor     uint64 = 1024
	MinGasLimit              uint64 = 5000
	ElasticityMultiplier     uint64 = 2
	BaseFeeChangeDenominator uint64 = 8
	InitialBaseFee           uint64 = 2 // from_header_data's default for a missing BaseFee

	DifficultyBoundDivisor       = 2048
	MinimumDifficulty            = 131072
	PreHomesteadDurationLimit    = 13
	HomesteadTimestampDivisor    = 10
	ByzantiumTimestampDivisor    = 9
	DifficultyBombDivisor        = 100000
)

var (
	errNilHeaderData   = errors.New("header: nil header data")
	errMissingNumber   = errors.New("header.number: required")
	errBytesArrayShape = errors.New("header: bytes array length out of range [15, 21]")
	errGasLimitBound   = errors.New("header: gas limit delta exceeds parent/gasLimitBoundDivisor")
	errGasLimitFloor   = errors.New("header: gas limit below minGasLimit")
)

// DifficultyRules selects which of canonical_difficulty's three historical
// regimes applies and, for Byzantium and later, how far the ice-age bomb's
// effective block number is pushed back.
type DifficultyRules struct {
	IsHomestead    bool
	IsByzantium    bool
	BombDelayBlock *big.Int // subtracted from header.Number before the bomb term; nil treated as zero
}

// HeaderOptions controls FromHeaderData's optional behaviors: recomputing
// difficulty from a supplied parent, and skipping the consensus-format
// checks that from_bytes_array/from_rpc otherwise always run.
type HeaderOptions struct {
	Parent              *Header
	Difficulty          DifficultyRules
	RecomputeDifficulty bool
	SkipConsensusChecks bool
	ShanghaiActive      bool // governs the WithdrawalsHash default
}

// FromHeaderData validates a caller-constructed Header, fills EIP-gated
// defaults, and returns a frozen copy safe to hand out. The original is
// never mutated.
func FromHeaderData(data *Header, opts HeaderOptions) (*Header, error) {
	if data == nil {
		return nil, errNilHeaderData
	}
	if data.Number == nil {
		return nil, errMissingNumber
	}
	h := copyHeader(data)
	if h.Difficulty == nil {
		h.Difficulty = new(big.Int)
	}

	if opts.RecomputeDifficulty && opts.Parent != nil {
		h.Difficulty = CanonicalDifficulty(h, opts.Parent, opts.Difficulty)
	}

	// EIP-1559: baseFeePerGas defaults to InitialBaseFee when the supplied
	// parent carries a BaseFee but BaseFee itself was left nil.
	if h.BaseFee == nil && opts.Parent != nil && opts.Parent.BaseFee != nil {
		h.BaseFee = new(big.Int).SetUint64(InitialBaseFee)
	}

	// EIP-4895: withdrawalsRoot defaults to the empty-trie root once
	// Shanghai is active and the caller didn't supply one.
	if opts.ShanghaiActive && h.WithdrawalsHash == nil {
		root := EmptyRootHash
		h.WithdrawalsHash = &root
	}

	if !opts.SkipConsensusChecks && opts.Parent != nil {
		if err := ValidateGasLimit(h, opts.Parent.GasLimit, isLondonActivationBlock(h, opts.Parent)); err != nil {
			return nil, err
		}
	}

	return h, nil
}

// isLondonActivationBlock reports whether h is the first London block,
// the one point at which validate_gas_limit scales the parent's gas limit
// by ElasticityMultiplier before comparing (EIP-1559's one-time doubling).
func isLondonActivationBlock(h, parent *Header) bool {
	return h.BaseFee != nil && parent.BaseFee == nil
}

// FromBytesArray decodes a header from its canonical field sequence —
// the 15 base Yellow Paper fields followed by however many of the
// EIP-1559/-4895/-4844/-4788/-7685 optional fields are present — and
// funnels the result through FromHeaderData.
func FromBytesArray(values [][]byte, opts HeaderOptions) (*Header, error) {
	if len(values) < 15 || len(values) > 21 {
		return nil, errBytesArrayShape
	}
	h := &Header{
		ParentHash:  BytesToHash(values[0]),
		UncleHash:   BytesToHash(values[1]),
		Coinbase:    BytesToAddress(values[2]),
		Root:        BytesToHash(values[3]),
		TxHash:      BytesToHash(values[4]),
		ReceiptHash: BytesToHash(values[5]),
		Difficulty:  new(big.Int).SetBytes(values[7]),
		Number:      new(big.Int).SetBytes(values[8]),
		GasLimit:    new(big.Int).SetBytes(values[9]).Uint64(),
		GasUsed:     new(big.Int).SetBytes(values[10]).Uint64(),
		Time:        new(big.Int).SetBytes(values[11]).Uint64(),
		Extra:       append([]byte(nil), values[12]...),
	}
	copy(h.Bloom[:], values[6])
	copy(h.MixDigest[:], values[13])
	copy(h.Nonce[:], values[14])

	if len(values) > 15 {
		h.BaseFee = new(big.Int).SetBytes(values[15])
	}
	if len(values) > 16 {
		wh := BytesToHash(values[16])
		h.WithdrawalsHash = &wh
	}
	if len(values) > 17 {
		v := new(big.Int).SetBytes(values[17]).Uint64()
		h.BlobGasUsed = &v
	}
	if len(values) > 18 {
		v := new(big.Int).SetBytes(values[18]).Uint64()
		h.ExcessBlobGas = &v
	}
	if len(values) > 19 {
		pbr := BytesToHash(values[19])
		h.ParentBeaconRoot = &pbr
	}
	if len(values) > 20 {
		rh := BytesToHash(values[20])
		h.RequestsHash = &rh
	}
	return FromHeaderData(h, opts)
}

// headerRPC mirrors the JSON shape returned by eth_getBlockByHash/Number,
// the wire format from_rpc accepts. Fixed-length binary fields are decoded
// as hexutil.Bytes and copied into the concrete array types below, since
// Hash/Address/Bloom/BlockNonce carry no JSON codec of their own.
type headerRPC struct {
	ParentHash       hexutil.Bytes   `json:"parentHash"`
	UncleHash        hexutil.Bytes   `json:"sha3Uncles"`
	Coinbase         hexutil.Bytes   `json:"miner"`
	Root             hexutil.Bytes   `json:"stateRoot"`
	TxHash           hexutil.Bytes   `json:"transactionsRoot"`
	ReceiptHash      hexutil.Bytes   `json:"receiptsRoot"`
	Bloom            hexutil.Bytes   `json:"logsBloom"`
	Difficulty       *hexutil.Big    `json:"difficulty"`
	Number           *hexutil.Big    `json:"number"`
	GasLimit         hexutil.Uint64  `json:"gasLimit"`
	GasUsed          hexutil.Uint64  `json:"gasUsed"`
	Time             hexutil.Uint64  `json:"timestamp"`
	Extra            hexutil.Bytes   `json:"extraData"`
	MixDigest        hexutil.Bytes   `json:"mixHash"`
	Nonce            hexutil.Bytes   `json:"nonce"`
	BaseFee          *hexutil.Big    `json:"baseFeePerGas,omitempty"`
	WithdrawalsHash  hexutil.Bytes   `json:"withdrawalsRoot,omitempty"`
	BlobGasUsed      *hexutil.Uint64 `json:"blobGasUsed,omitempty"`
	ExcessBlobGas    *hexutil.Uint64 `json:"excessBlobGas,omitempty"`
	ParentBeaconRoot hexutil.Bytes   `json:"parentBeaconBlockRoot,omitempty"`
	RequestsHash     hexutil.Bytes   `json:"requestsHash,omitempty"`
}

// FromRPC decodes a header from an eth_getBlock* JSON object and funnels
// it through FromHeaderData.
func FromRPC(raw []byte, opts HeaderOptions) (*Header, error) {
	var rpc headerRPC
	if err := json.Unmarshal(raw, &rpc); err != nil {
		return nil, fmt.Errorf("header.from_rpc: %w", err)
	}
	h := &Header{
		ParentHash:  BytesToHash(rpc.ParentHash),
		UncleHash:   BytesToHash(rpc.UncleHash),
		Coinbase:    BytesToAddress(rpc.Coinbase),
		Root:        BytesToHash(rpc.Root),
		TxHash:      BytesToHash(rpc.TxHash),
		ReceiptHash: BytesToHash(rpc.ReceiptHash),
		Number:      rpc.Number.ToBig(),
		GasLimit:    uint64(rpc.GasLimit),
		GasUsed:     uint64(rpc.GasUsed),
		Time:        uint64(rpc.Time),
		Extra:       []byte(rpc.Extra),
		MixDigest:   BytesToHash(rpc.MixDigest),
	}
	copy(h.Bloom[:], rpc.Bloom)
	copy(h.Nonce[:], rpc.Nonce)

	if rpc.Difficulty != nil {
		h.Difficulty = rpc.Difficulty.ToBig()
	}
	if rpc.BaseFee != nil {
		h.BaseFee = rpc.BaseFee.ToBig()
	}
	if rpc.WithdrawalsHash != nil {
		wh := BytesToHash(rpc.WithdrawalsHash)
		h.WithdrawalsHash = &wh
	}
	if rpc.BlobGasUsed != nil {
		v := uint64(*rpc.BlobGasUsed)
		h.BlobGasUsed = &v
	}
	if rpc.ExcessBlobGas != nil {
		v := uint64(*rpc.ExcessBlobGas)
		h.ExcessBlobGas = &v
	}
	if rpc.ParentBeaconRoot != nil {
		pbr := BytesToHash(rpc.ParentBeaconRoot)
		h.ParentBeaconRoot = &pbr
	}
	if rpc.RequestsHash != nil {
		rh := BytesToHash(rpc.RequestsHash)
		h.RequestsHash = &rh
	}
	return FromHeaderData(h, opts)
}

// ValidateGasLimit checks header.GasLimit against parentGasLimit per EIP-2's
// elastic bound: the change must be smaller than parent/gasLimitBoundDivisor,
// and the result must not fall below minGasLimit. At the London activation
// block only, parentGasLimit is first doubled (elasticityMultiplier) to
// account for EIP-1559 raising the effective gas target.
func ValidateGasLimit(h *Header, parentGasLimit uint64, londonActivation bool) error {
	if londonActivation {
		parentGasLimit *= ElasticityMultiplier
	}
	var diff uint64
	if h.GasLimit > parentGasLimit {
		diff = h.GasLimit - parentGasLimit
	} else {
		diff = parentGasLimit - h.GasLimit
	}
	if diff >= parentGasLimit/GasLimitBoundDivisor {
		return fmt.Errorf("%w: have %d, limit %d", errGasLimitBound, diff, parentGasLimit/GasLimitBoundDivisor)
	}
	if h.GasLimit < MinGasLimit {
		return fmt.Errorf("%w: have %d, want >= %d", errGasLimitFloor, h.GasLimit, MinGasLimit)
	}
	return nil
}

// CanonicalDifficulty computes the PoW difficulty h must carry given parent,
// following whichever of the three historical regimes rules selects. Callers
// on a PoS chain (post-Merge) should never call this; PREVRANDAO headers
// carry difficulty 0 by convention.
func CanonicalDifficulty(h, parent *Header, rules DifficultyRules) *big.Int {
	bigTime := new(big.Int).SetUint64(h.Time)
	bigParentTime := new(big.Int).SetUint64(parent.Time)
	offset := new(big.Int).Div(parent.Difficulty, big.NewInt(DifficultyBoundDivisor))

	var diff *big.Int
	switch {
	case rules.IsByzantium:
		uncleAddend := int64(1)
		if parent.UncleHash != EmptyUncleHash {
			uncleAddend = 2
		}
		a := new(big.Int).Sub(bigTime, bigParentTime)
		a.Div(a, big.NewInt(ByzantiumTimestampDivisor))
		a.Sub(big.NewInt(uncleAddend), a)
		if a.Cmp(big.NewInt(-99)) < 0 {
			a = big.NewInt(-99)
		}
		diff = new(big.Int).Add(parent.Difficulty, a.Mul(a, offset))

	case rules.IsHomestead:
		a := new(big.Int).Sub(bigTime, bigParentTime)
		a.Div(a, big.NewInt(HomesteadTimestampDivisor))
		a.Sub(big.NewInt(1), a)
		if a.Cmp(big.NewInt(-99)) < 0 {
			a = big.NewInt(-99)
		}
		diff = new(big.Int).Add(parent.Difficulty, a.Mul(a, offset))

	default: // pre-Homestead
		diff = new(big.Int).Set(parent.Difficulty)
		threshold := new(big.Int).Add(bigParentTime, big.NewInt(PreHomesteadDurationLimit))
		if threshold.Cmp(bigTime) > 0 {
			diff.Add(diff, offset)
		} else {
			diff.Sub(diff, offset)
		}
	}

	// Ice-age bomb: exp = bombNumber/100000 - 2; diff += 2^exp when exp >= 0.
	bombNumber := new(big.Int).Set(h.Number)
	if rules.BombDelayBlock != nil {
		bombNumber.Sub(bombNumber, rules.BombDelayBlock)
	}
	if bombNumber.Sign() > 0 {
		periodCount := new(big.Int).Div(bombNumber, big.NewInt(DifficultyBombDivisor))
		periodCount.Sub(periodCount, big.NewInt(2))
		if periodCount.Sign() >= 0 {
			bomb := new(big.Int).Exp(big.NewInt(2), periodCount, nil)
			diff.Add(diff, bomb)
		}
	}

	if diff.Cmp(big.NewInt(MinimumDifficulty)) < 0 {
		diff = big.NewInt(MinimumDifficulty)
	}
	return diff
}

// CalcNextBaseFee computes the EIP-1559 base fee the child block should
// carry, given this (parent) header's gas usage, limit, and base fee.
func CalcNextBaseFee(h *Header) *big.Int {
	if h.BaseFee == nil {
		return new(big.Int).SetUint64(InitialBaseFee)
	}
	parentGasTarget := h.GasLimit / ElasticityMultiplier
	if parentGasTarget == 0 {
		return new(big.Int).Set(h.BaseFee)
	}
	if h.GasUsed == parentGasTarget {
		return new(big.Int).Set(h.BaseFee)
	}

	if h.GasUsed > parentGasTarget {
		delta := h.GasUsed - parentGasTarget
		change := new(big.Int).Mul(h.BaseFee, new(big.Int).SetUint64(delta))
		change.Div(change, new(big.Int).SetUint64(parentGasTarget))
		change.Div(change, new(big.Int).SetUint64(BaseFeeChangeDenominator))
		if change.Sign() == 0 {
			change = big.NewInt(1)
		}
		return new(big.Int).Add(h.BaseFee, change)
	}

	delta := parentGasTarget - h.GasUsed
	change := new(big.Int).Mul(h.BaseFee, new(big.Int).SetUint64(delta))
	change.Div(change, new(big.Int).SetUint64(parentGasTarget))
	change.Div(change, new(big.Int).SetUint64(BaseFeeChangeDenominator))
	next := new(big.Int).Sub(h.BaseFee, change)
	if next.Sign() < 0 {
		return new(big.Int)
	}
	return next
}
