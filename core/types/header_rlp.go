package types

import (
	"github.com/ethereum/go-ethereum/rlp"
	"golang.org/x/crypto/sha3"
)

// EncodeRLP writes the RLP encoding of the header in Yellow Paper field
// order. The trailing rlp:"optional" fields on Header (see header.go) let
// the struct-tag-driven encoder stop at the last non-nil one, which is how
// the wire format carries post-London fork extensions without a version byte.
func (h *Header) EncodeRLP() ([]byte, error) {
	return rlp.EncodeToBytes(h)
}

// DecodeHeaderRLP decodes an RLP-encoded header. Optional trailing fields
// are populated according to how many are present in the encoding; a header
// missing BaseFee is pre-London, one missing ParentBeaconRoot is pre-Cancun,
// and so on, following the same rlp:"optional" convention used to encode it.
func DecodeHeaderRLP(data []byte) (*Header, error) {
	h := new(Header)
	if err := rlp.DecodeBytes(data, h); err != nil {
		return nil, err
	}
	return h, nil
}

// computeHeaderHash computes the Keccak-256 hash of the RLP-encoded header.
func computeHeaderHash(h *Header) Hash {
	enc, err := h.EncodeRLP()
	if err != nil {
		return Hash{}
	}
	d := sha3.NewLegacyKeccak256()
	d.Write(enc)
	var hash Hash
	copy(hash[:], d.Sum(nil))
	return hash
}
