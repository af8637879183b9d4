package crypto

// KZG polynomial commitment sizing constants and input validation for
// EIP-4844 blob transactions and EIP-7594 PeerDAS cells.
//
// Actual commitment/proof computation and pairing verification is delegated
// to GoEthKZGRealBackend (kzg_goeth_adapter.go), which wraps
// github.com/crate-crypto/go-eth-kzg and its trusted-setup ceremony SRS.
// This file only carries the wire-format constants and cheap shape checks
// that gate a call into that backend.

import (
	"errors"
	"math/big"
)

const (
	KZGFieldElementsPerBlob  = 4096
	KZGBytesPerFieldElement  = 32
	KZGBytesPerBlob          = KZGFieldElementsPerBlob * KZGBytesPerFieldElement
	KZGBytesPerCommitment    = 48
	KZGBytesPerProof         = 48
	KZGCellsPerExtBlob       = 128
	KZGFieldElementsPerCell  = KZGFieldElementsPerBlob * 2 / KZGCellsPerExtBlob
	KZGBytesPerCell          = KZGFieldElementsPerCell * KZGBytesPerFieldElement
	KZGScalarsPerExtBlob     = KZGCellsPerExtBlob * KZGFieldElementsPerCell
)

// BLSModulus is the scalar field modulus of the BLS12-381 curve, the
// canonical range every 32-byte field element within a blob must lie in.
var BLSModulus, _ = new(big.Int).SetString(
	"52435875175126190479447740508185965837690552500527637822603658699938581184513", 10)

var (
	ErrKZGInvalidBlobSize       = errors.New("kzg: invalid blob size")
	ErrKZGInvalidCommitmentSize = errors.New("kzg: invalid commitment size")
	ErrKZGInvalidProofSize      = errors.New("kzg: invalid proof size")
	ErrKZGInvalidCellIndex      = errors.New("kzg: invalid cell index")
	ErrKZGInvalidCommitmentFormat = errors.New("kzg: commitment is not a valid compressed G1 point")
)

// KZGCeremonyBackend is the interface the point-evaluation precompile and
// blob-sidecar validation code call through. GoEthKZGRealBackend is the
// only implementation; it is named as an interface so callers can inject a
// deterministic stub in tests without paying the ~2-5s real SRS load cost.
type KZGCeremonyBackend interface {
	Name() string
	BlobToCommitment(blob []byte) ([KZGBytesPerCommitment]byte, error)
	VerifyBlobProof(blob, commitment, proof []byte) (bool, error)
	ComputeCells(blob []byte) ([][KZGBytesPerCell]byte, error)
	VerifyCellProof(commitment, cell, proof []byte, cellIndex uint64) (bool, error)
}

// ValidateBlob checks that a blob has the canonical size.
func ValidateBlob(blob []byte) error {
	if len(blob) != KZGBytesPerBlob {
		return ErrKZGInvalidBlobSize
	}
	return nil
}

// ValidateCommitment checks that a commitment has the canonical size and
// its first byte carries a valid compressed-G1 flag (top three bits).
func ValidateCommitment(commitment []byte) error {
	if len(commitment) != KZGBytesPerCommitment {
		return ErrKZGInvalidCommitmentSize
	}
	if commitment[0]&0xE0 == 0x20 || commitment[0]&0xE0 == 0x60 || commitment[0]&0xE0 == 0xE0 {
		return ErrKZGInvalidCommitmentFormat
	}
	return nil
}

// ValidateProof checks that a proof has the canonical size.
func ValidateProof(proof []byte) error {
	if len(proof) != KZGBytesPerProof {
		return ErrKZGInvalidProofSize
	}
	return nil
}
