package crypto

// BLS12-381 precompile interface functions.
//
// These functions provide the EVM precompile interface for BLS12-381
// elliptic curve operations as defined in EIP-2537, built on
// supranational/blst rather than a hand-rolled tower field implementation.

import (
	"errors"
	"math/big"

	blst "github.com/supranational/blst/bindings/go"
)

var (
	errBLS12InvalidPoint  = errors.New("bls12-381: invalid point")
	errBLS12InvalidG2     = errors.New("bls12-381: invalid G2 point")
	errBLS12NotOnCurve    = errors.New("bls12-381: point not on curve")
	errBLS12NotInSubgroup = errors.New("bls12-381: point not in subgroup")
	errBLS12InvalidField  = errors.New("bls12-381: invalid field element")
)

// BLS12-381 precompile encoding sizes (EIP-2537).
const (
	blsFpEncSize  = 64  // field element padded to 64 bytes
	blsG1EncSize  = 128 // G1 point: 2 * 64 bytes
	blsG2EncSize  = 256 // G2 point: 2 * 128 bytes
	blsScalarSize = 32  // Fr scalar
)

// blsFieldModulus is the BLS12-381 base field modulus p.
var blsFieldModulus, _ = new(big.Int).SetString(
	"1a0111ea397fe69a4b1ba7b6434bacd764774b84f38512bf6730d2a0f6b0f6241eabfffeb153ffffb9feffffffffaaab", 16)

// decodeFp reads a 64-byte zero-padded field element.
func decodeFp(data []byte) (*big.Int, error) {
	if len(data) != blsFpEncSize {
		return nil, errBLS12InvalidField
	}
	for i := 0; i < 16; i++ {
		if data[i] != 0 {
			return nil, errBLS12InvalidField
		}
	}
	v := new(big.Int).SetBytes(data)
	if v.Cmp(blsFieldModulus) >= 0 {
		return nil, errBLS12InvalidField
	}
	return v, nil
}

// encodeFp writes a field element as 64 bytes (big-endian, zero-padded).
func encodeFp(v *big.Int) []byte {
	out := make([]byte, blsFpEncSize)
	b := v.Bytes()
	copy(out[blsFpEncSize-len(b):], b)
	return out
}

// bls48 converts a 64-byte EIP-2537 field encoding to the 48-byte
// big-endian form blst's affine coordinates use.
func bls48(v *big.Int) []byte {
	out := make([]byte, 48)
	b := v.Bytes()
	copy(out[48-len(b):], b)
	return out
}

// decodeG1 reads a 128-byte encoded G1 point. All zeros decodes to the
// point at infinity; otherwise it is validated on-curve and in-subgroup.
func decodeG1(data []byte) (*blst.P1Affine, error) {
	if len(data) != blsG1EncSize {
		return nil, errBLS12InvalidPoint
	}
	x, err := decodeFp(data[:blsFpEncSize])
	if err != nil {
		return nil, errBLS12InvalidPoint
	}
	y, err := decodeFp(data[blsFpEncSize:])
	if err != nil {
		return nil, errBLS12InvalidPoint
	}
	if x.Sign() == 0 && y.Sign() == 0 {
		return new(blst.P1Affine), nil
	}

	serialized := append(bls48(x), bls48(y)...)
	p := new(blst.P1Affine).Deserialize(serialized)
	if p == nil {
		return nil, errBLS12NotOnCurve
	}
	if !p.InG1() {
		return nil, errBLS12NotInSubgroup
	}
	return p, nil
}

// encodeG1 writes a G1 point as 128 bytes.
func encodeG1(p *blst.P1Affine) []byte {
	out := make([]byte, blsG1EncSize)
	if p.IsInf() {
		return out
	}
	ser := p.Serialize()
	x := new(big.Int).SetBytes(ser[:48])
	y := new(big.Int).SetBytes(ser[48:])
	copy(out[:blsFpEncSize], encodeFp(x))
	copy(out[blsFpEncSize:], encodeFp(y))
	return out
}

// decodeG2 reads a 256-byte encoded G2 point. Per EIP-2537 each Fp2
// coordinate is encoded imaginary-part-first, then real part.
func decodeG2(data []byte) (*blst.P2Affine, error) {
	if len(data) != blsG2EncSize {
		return nil, errBLS12InvalidG2
	}
	xIm, err := decodeFp(data[0:blsFpEncSize])
	if err != nil {
		return nil, errBLS12InvalidG2
	}
	xRe, err := decodeFp(data[blsFpEncSize : 2*blsFpEncSize])
	if err != nil {
		return nil, errBLS12InvalidG2
	}
	yIm, err := decodeFp(data[2*blsFpEncSize : 3*blsFpEncSize])
	if err != nil {
		return nil, errBLS12InvalidG2
	}
	yRe, err := decodeFp(data[3*blsFpEncSize:])
	if err != nil {
		return nil, errBLS12InvalidG2
	}
	if xIm.Sign() == 0 && xRe.Sign() == 0 && yIm.Sign() == 0 && yRe.Sign() == 0 {
		return new(blst.P2Affine), nil
	}

	// blst serializes Fp2 as (real || imaginary), 96 bytes per coordinate.
	serialized := make([]byte, 0, 192)
	serialized = append(serialized, bls48(xRe)...)
	serialized = append(serialized, bls48(xIm)...)
	serialized = append(serialized, bls48(yRe)...)
	serialized = append(serialized, bls48(yIm)...)

	p := new(blst.P2Affine).Deserialize(serialized)
	if p == nil {
		return nil, errBLS12NotOnCurve
	}
	if !p.InG2() {
		return nil, errBLS12NotInSubgroup
	}
	return p, nil
}

// encodeG2 writes a G2 point as 256 bytes.
func encodeG2(p *blst.P2Affine) []byte {
	out := make([]byte, blsG2EncSize)
	if p.IsInf() {
		return out
	}
	ser := p.Serialize()
	xRe := new(big.Int).SetBytes(ser[0:48])
	xIm := new(big.Int).SetBytes(ser[48:96])
	yRe := new(big.Int).SetBytes(ser[96:144])
	yIm := new(big.Int).SetBytes(ser[144:192])
	copy(out[0:blsFpEncSize], encodeFp(xIm))
	copy(out[blsFpEncSize:2*blsFpEncSize], encodeFp(xRe))
	copy(out[2*blsFpEncSize:3*blsFpEncSize], encodeFp(yIm))
	copy(out[3*blsFpEncSize:], encodeFp(yRe))
	return out
}

// --- Precompile entry points ---

// BLS12G1Add performs G1 point addition (precompile 0x0b).
func BLS12G1Add(input []byte) ([]byte, error) {
	if len(input) != 2*blsG1EncSize {
		return nil, errBLS12InvalidPoint
	}
	p1, err := decodeG1(input[:blsG1EncSize])
	if err != nil {
		return nil, err
	}
	p2, err := decodeG1(input[blsG1EncSize:])
	if err != nil {
		return nil, err
	}

	var acc blst.P1
	acc.FromAffine(p1)
	acc.AddAssign(p2)
	return encodeG1(acc.ToAffine()), nil
}

// BLS12G1Mul performs G1 scalar multiplication (precompile 0x0c).
func BLS12G1Mul(input []byte) ([]byte, error) {
	if len(input) != blsG1EncSize+blsScalarSize {
		return nil, errBLS12InvalidPoint
	}
	p, err := decodeG1(input[:blsG1EncSize])
	if err != nil {
		return nil, err
	}
	scalarBytes := input[blsG1EncSize:]
	r := p.Mult(scalarBytes)
	return encodeG1(r), nil
}

// BLS12G1MSM performs G1 multi-scalar multiplication (precompile 0x0d).
func BLS12G1MSM(input []byte) ([]byte, error) {
	pairSize := blsG1EncSize + blsScalarSize
	if len(input) == 0 || len(input)%pairSize != 0 {
		return nil, errBLS12InvalidPoint
	}

	k := len(input) / pairSize
	var acc blst.P1
	for i := 0; i < k; i++ {
		offset := i * pairSize
		p, err := decodeG1(input[offset : offset+blsG1EncSize])
		if err != nil {
			return nil, err
		}
		scalarBytes := input[offset+blsG1EncSize : offset+pairSize]
		term := p.Mult(scalarBytes)
		acc.AddAssign(term)
	}
	return encodeG1(acc.ToAffine()), nil
}

// BLS12G2Add performs G2 point addition (precompile 0x0e).
func BLS12G2Add(input []byte) ([]byte, error) {
	if len(input) != 2*blsG2EncSize {
		return nil, errBLS12InvalidG2
	}
	p1, err := decodeG2(input[:blsG2EncSize])
	if err != nil {
		return nil, err
	}
	p2, err := decodeG2(input[blsG2EncSize:])
	if err != nil {
		return nil, err
	}

	var acc blst.P2
	acc.FromAffine(p1)
	acc.AddAssign(p2)
	return encodeG2(acc.ToAffine()), nil
}

// BLS12G2Mul performs G2 scalar multiplication (precompile 0x0f).
func BLS12G2Mul(input []byte) ([]byte, error) {
	if len(input) != blsG2EncSize+blsScalarSize {
		return nil, errBLS12InvalidG2
	}
	p, err := decodeG2(input[:blsG2EncSize])
	if err != nil {
		return nil, err
	}
	scalarBytes := input[blsG2EncSize:]
	r := p.Mult(scalarBytes)
	return encodeG2(r), nil
}

// BLS12G2MSM performs G2 multi-scalar multiplication (precompile 0x10).
func BLS12G2MSM(input []byte) ([]byte, error) {
	pairSize := blsG2EncSize + blsScalarSize
	if len(input) == 0 || len(input)%pairSize != 0 {
		return nil, errBLS12InvalidG2
	}

	k := len(input) / pairSize
	var acc blst.P2
	for i := 0; i < k; i++ {
		offset := i * pairSize
		p, err := decodeG2(input[offset : offset+blsG2EncSize])
		if err != nil {
			return nil, err
		}
		scalarBytes := input[offset+blsG2EncSize : offset+pairSize]
		term := p.Mult(scalarBytes)
		acc.AddAssign(term)
	}
	return encodeG2(acc.ToAffine()), nil
}

// BLS12Pairing performs the pairing check (precompile 0x11).
// Input: k * 384 bytes (k pairs of G1 + G2 points).
// Output: 32 bytes, 1 if the product of pairings is the GT identity, 0
// otherwise. An empty input is trivially true (the empty product).
func BLS12Pairing(input []byte) ([]byte, error) {
	pairSize := blsG1EncSize + blsG2EncSize
	if len(input)%pairSize != 0 {
		return nil, errBLS12InvalidPoint
	}
	k := len(input) / pairSize
	if k == 0 {
		return blsPairingResult(true), nil
	}

	var gt *blst.PT
	for i := 0; i < k; i++ {
		offset := i * pairSize
		g1, err := decodeG1(input[offset : offset+blsG1EncSize])
		if err != nil {
			return nil, err
		}
		g2, err := decodeG2(input[offset+blsG1EncSize : offset+pairSize])
		if err != nil {
			return nil, err
		}
		if g1.IsInf() || g2.IsInf() {
			continue
		}
		term := blst.PTMillerLoop(g2, g1)
		if gt == nil {
			gt = term
		} else {
			gt.Mul(term)
		}
	}
	if gt == nil {
		return blsPairingResult(true), nil
	}
	return blsPairingResult(gt.FinalExp().IsOne()), nil
}

// BLS12MapFpToG1 maps a field element to a G1 point (precompile 0x12),
// via blst's implementation of the simplified SWU map with cofactor
// clearing onto the prime-order subgroup.
func BLS12MapFpToG1(input []byte) ([]byte, error) {
	if len(input) != blsFpEncSize {
		return nil, errBLS12InvalidField
	}
	u, err := decodeFp(input)
	if err != nil {
		return nil, err
	}
	fe := new(blst.Fp).FromBEndian(bls48(u))
	p := blst.MapToG1(fe, nil)
	return encodeG1(p.ToAffine()), nil
}

// BLS12MapFp2ToG2 maps an Fp2 element to a G2 point (precompile 0x13).
func BLS12MapFp2ToG2(input []byte) ([]byte, error) {
	if len(input) != 2*blsFpEncSize {
		return nil, errBLS12InvalidField
	}
	im, err := decodeFp(input[:blsFpEncSize])
	if err != nil {
		return nil, err
	}
	re, err := decodeFp(input[blsFpEncSize:])
	if err != nil {
		return nil, err
	}
	fe := new(blst.Fp2).FromBEndian(append(bls48(re), bls48(im)...))
	p := blst.MapToG2(fe, nil)
	return encodeG2(p.ToAffine()), nil
}

// blsPairingResult encodes a pairing result as 32 bytes.
func blsPairingResult(ok bool) []byte {
	out := make([]byte, 32)
	if ok {
		out[31] = 1
	}
	return out
}
