package crypto

// BN254 precompile interface functions.
//
// These functions provide the EVM precompile interface for BN254 (alt_bn128)
// elliptic curve operations as defined in EIP-196 and EIP-197, built on
// gnark-crypto's field and curve arithmetic rather than a hand-rolled tower.

import (
	"errors"
	"math/big"

	"github.com/consensys/gnark-crypto/ecc/bn254"
	"github.com/consensys/gnark-crypto/ecc/bn254/fp"
)

var (
	errBN254InvalidPoint  = errors.New("bn254: invalid point")
	errBN254InvalidG2     = errors.New("bn254: invalid G2 point")
	errBN254InvalidLength = errors.New("bn254: invalid input length")
)

// bn254DecodeG1 reads a 64-byte (x, y) affine G1 point, right-padding short
// input, and verifies it lies on the curve (the zero point is valid).
func bn254DecodeG1(data []byte) (bn254.G1Affine, error) {
	var p bn254.G1Affine
	data = bn254PadRight(data, 64)

	if !fitsInField(data[0:32]) || !fitsInField(data[32:64]) {
		return p, errBN254InvalidPoint
	}
	p.X.SetBytes(data[0:32])
	p.Y.SetBytes(data[32:64])

	if p.X.IsZero() && p.Y.IsZero() {
		return p, nil
	}
	if !p.IsOnCurve() {
		return p, errBN254InvalidPoint
	}
	return p, nil
}

// bn254DecodeG2 reads a 128-byte G2 point laid out as
// x_imag | x_real | y_imag | y_real, each 32 bytes big-endian.
func bn254DecodeG2(data []byte) (bn254.G2Affine, error) {
	var p bn254.G2Affine
	if len(data) != 128 {
		return p, errBN254InvalidG2
	}
	if !fitsInField(data[0:32]) || !fitsInField(data[32:64]) ||
		!fitsInField(data[64:96]) || !fitsInField(data[96:128]) {
		return p, errBN254InvalidG2
	}

	p.X.A1.SetBytes(data[0:32])
	p.X.A0.SetBytes(data[32:64])
	p.Y.A1.SetBytes(data[64:96])
	p.Y.A0.SetBytes(data[96:128])

	if p.X.IsZero() && p.Y.IsZero() {
		return p, nil
	}
	if !p.IsOnCurve() {
		return p, errBN254InvalidG2
	}
	return p, nil
}

// fitsInField reports whether a 32-byte big-endian integer is a canonical
// element of the BN254 base field (strictly less than the field modulus).
func fitsInField(b []byte) bool {
	var x big.Int
	x.SetBytes(b)
	return x.Cmp(fp.Modulus()) < 0
}

// BN254Add performs point addition on the BN254 curve (precompile 0x06).
// Input: 128 bytes (x1, y1, x2, y2) as 32-byte big-endian integers.
// Output: 64 bytes (x3, y3).
func BN254Add(input []byte) ([]byte, error) {
	input = bn254PadRight(input, 128)

	p1, err := bn254DecodeG1(input[0:64])
	if err != nil {
		return nil, err
	}
	p2, err := bn254DecodeG1(input[64:128])
	if err != nil {
		return nil, err
	}

	var r bn254.G1Jac
	r.FromAffine(&p1)
	var p2j bn254.G1Jac
	p2j.FromAffine(&p2)
	r.AddAssign(&p2j)

	var out bn254.G1Affine
	out.FromJacobian(&r)
	return bn254EncodeG1(&out), nil
}

// BN254ScalarMul performs scalar multiplication on the BN254 curve (precompile 0x07).
// Input: 96 bytes (x, y, s) as 32-byte big-endian integers.
// Output: 64 bytes (x', y').
func BN254ScalarMul(input []byte) ([]byte, error) {
	input = bn254PadRight(input, 96)

	p, err := bn254DecodeG1(input[0:64])
	if err != nil {
		return nil, err
	}
	s := new(big.Int).SetBytes(input[64:96])

	var r bn254.G1Affine
	r.ScalarMultiplication(&p, s)
	return bn254EncodeG1(&r), nil
}

// BN254PairingCheck performs the pairing check (precompile 0x08).
// Input: k * 192 bytes, each 192-byte chunk is (G1_x, G1_y, G2_x_imag,
// G2_x_real, G2_y_imag, G2_y_real) as 32-byte big-endian integers.
// Output: 32 bytes, 1 if the product of pairings equals identity, 0 otherwise.
func BN254PairingCheck(input []byte) ([]byte, error) {
	if len(input)%192 != 0 {
		return nil, errBN254InvalidLength
	}

	k := len(input) / 192
	if k == 0 {
		return bn254PairingResult(true), nil
	}

	g1Points := make([]bn254.G1Affine, 0, k)
	g2Points := make([]bn254.G2Affine, 0, k)

	for i := 0; i < k; i++ {
		offset := i * 192

		g1, err := bn254DecodeG1(input[offset : offset+64])
		if err != nil {
			return nil, err
		}
		g2, err := bn254DecodeG2(input[offset+64 : offset+192])
		if err != nil {
			return nil, err
		}

		// Pairs with either operand at infinity contribute the identity and
		// can be dropped before calling into the multi-pairing routine.
		if g1.X.IsZero() && g1.Y.IsZero() {
			continue
		}
		if g2.X.IsZero() && g2.Y.IsZero() {
			continue
		}
		g1Points = append(g1Points, g1)
		g2Points = append(g2Points, g2)
	}

	if len(g1Points) == 0 {
		return bn254PairingResult(true), nil
	}

	ok, err := bn254.PairingCheck(g1Points, g2Points)
	if err != nil {
		return nil, err
	}
	return bn254PairingResult(ok), nil
}

// bn254EncodeG1 encodes a G1 affine point as 64 bytes (x, y) big-endian.
func bn254EncodeG1(p *bn254.G1Affine) []byte {
	out := make([]byte, 64)
	xBytes := p.X.Bytes()
	yBytes := p.Y.Bytes()
	copy(out[0:32], xBytes[:])
	copy(out[32:64], yBytes[:])
	return out
}

// bn254PairingResult encodes a pairing check result as 32 bytes.
func bn254PairingResult(ok bool) []byte {
	out := make([]byte, 32)
	if ok {
		out[31] = 1
	}
	return out
}

// bn254PadRight pads data with zeros on the right to reach minLen.
func bn254PadRight(data []byte, minLen int) []byte {
	if len(data) >= minLen {
		return data[:minLen]
	}
	padded := make([]byte, minLen)
	copy(padded, data)
	return padded
}
