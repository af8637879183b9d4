package types

import (
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/holiman/uint256"
)

// BlockTransaction is the minimal surface BlockCodec needs from a
// transaction. Full transaction-type codecs (legacy, access-list, dynamic
// fee, blob, set-code) are an external collaborator's concern; this package
// never owns a concrete transaction struct, only this interface and the
// wire-opaque fallback below used when decoding a block whose transactions
// are not otherwise being parsed by that collaborator.
type BlockTransaction interface {
	Type() byte
	GasPrice() *uint256.Int
	GasFeeCap() *uint256.Int
	GasTipCap() *uint256.Int
	BlobGasUsed() uint64
	Hash() Hash
	MarshalBinary() ([]byte, error)
}

// AccessListEntry is one (address, storage keys) tuple from a transaction's
// EIP-2930 access list, used for transaction-start warm-set pre-population.
type AccessListEntry struct {
	Address     Address
	StorageKeys []Hash
}

// RawTransaction wraps an undecoded transaction envelope (EIP-2718: a
// single byte string whose first byte is the type for typed transactions,
// or an RLP list for legacy transactions) so block encode/decode round-trips
// without requiring a transaction-type codec. Fee and blob-gas accessors
// return zero since extracting them requires parsing the envelope, which is
// the external collaborator's job; callers that need real fee data decode
// with that collaborator and wrap the result in their own BlockTransaction.
type RawTransaction struct {
	raw []byte
}

// NewRawTransaction wraps a transaction's raw RLP/typed-envelope bytes.
func NewRawTransaction(raw []byte) *RawTransaction {
	cp := make([]byte, len(raw))
	copy(cp, raw)
	return &RawTransaction{raw: cp}
}

func (t *RawTransaction) Type() byte {
	if len(t.raw) == 0 {
		return 0
	}
	// A legacy transaction's RLP list starts with a byte >= 0xc0; typed
	// transactions start with the type byte directly (always < 0xc0 since
	// type values are small and EIP-2718 reserves 0x00-0x7f for that).
	if t.raw[0] >= 0xc0 {
		return 0
	}
	return t.raw[0]
}

func (t *RawTransaction) GasPrice() *uint256.Int  { return new(uint256.Int) }
func (t *RawTransaction) GasFeeCap() *uint256.Int { return new(uint256.Int) }
func (t *RawTransaction) GasTipCap() *uint256.Int { return new(uint256.Int) }
func (t *RawTransaction) BlobGasUsed() uint64     { return 0 }

func (t *RawTransaction) Hash() Hash {
	return Hash(crypto.Keccak256Hash(t.raw))
}

func (t *RawTransaction) MarshalBinary() ([]byte, error) {
	cp := make([]byte, len(t.raw))
	copy(cp, t.raw)
	return cp, nil
}
