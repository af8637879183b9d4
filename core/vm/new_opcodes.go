package vm

import "github.com/holiman/uint256"

// Opcodes proposed for the Glamsterdan fork: CLZ (EIP-7939), SLOTNUM
// (EIP-7843), and the DUPN/SWAPN/EXCHANGE extended stack operations
// (EIP-8024). None of these are active in any jump table before
// Glamsterdan.
const (
	CLZ     OpCode = 0x1e
	SLOTNUM OpCode = 0x4b

	DUPN     OpCode = 0xe6
	SWAPN    OpCode = 0xe7
	EXCHANGE OpCode = 0xe8
)

func init() {
	opCodeNames[CLZ] = "CLZ"
	opCodeNames[SLOTNUM] = "SLOTNUM"
	opCodeNames[DUPN] = "DUPN"
	opCodeNames[SWAPN] = "SWAPN"
	opCodeNames[EXCHANGE] = "EXCHANGE"
}

// opCLZ counts the leading zero bits of the top stack item, replacing it
// with a value in [0, 256]. CLZ(0) == 256.
func opCLZ(pc *uint64, evm *EVM, contract *Contract, memory *Memory, stack *Stack) ([]byte, error) {
	x := stack.Peek()
	x.SetUint64(uint64(256 - x.BitLen()))
	return nil, nil
}

// opSlotnum pushes the beacon chain slot number of the current block.
func opSlotnum(pc *uint64, evm *EVM, contract *Contract, memory *Memory, stack *Stack) ([]byte, error) {
	stack.Push(new(uint256.Int).SetUint64(evm.Context.SlotNumber))
	return nil, nil
}

// decodeSingle maps a DUPN/SWAPN immediate byte to a 1-indexed stack depth.
// Bytes 91-127 are excluded from the encoding and must be rejected by the
// caller before decodeSingle is used.
func decodeSingle(x byte) int {
	if x <= 90 {
		return int(x) + 17
	}
	return int(x) - 20
}

// decodePair maps an EXCHANGE immediate byte to a pair of 1-indexed stack
// depths. Bytes 80-127 are excluded from the encoding and must be rejected
// by the caller before decodePair is used.
func decodePair(x byte) (int, int) {
	k := int(x)
	q, r := k/29, k%29
	if q >= r {
		return q + 1, 29 - r
	}
	return q + 1, r + 1
}

// opDupN implements DUPN: duplicate the stack item at the depth encoded in
// the immediate byte following the opcode.
func opDupN(pc *uint64, evm *EVM, contract *Contract, memory *Memory, stack *Stack) ([]byte, error) {
	imm := contract.Code[*pc+1]
	if imm >= 91 && imm <= 127 {
		return nil, ErrInvalidOpCode
	}
	n := decodeSingle(imm)
	if stack.Len() < n {
		return nil, ErrStackUnderflow
	}
	stack.Dup(n)
	*pc += 1
	return nil, nil
}

// opSwapN implements SWAPN: swap the top stack item with the one at the
// depth encoded in the immediate byte following the opcode.
func opSwapN(pc *uint64, evm *EVM, contract *Contract, memory *Memory, stack *Stack) ([]byte, error) {
	imm := contract.Code[*pc+1]
	if imm >= 91 && imm <= 127 {
		return nil, ErrInvalidOpCode
	}
	n := decodeSingle(imm)
	if stack.Len() < n+1 {
		return nil, ErrStackUnderflow
	}
	stack.Swap(n)
	*pc += 1
	return nil, nil
}

// opExchange implements EXCHANGE: swap two stack items, at the pair of
// depths encoded in the immediate byte following the opcode.
func opExchange(pc *uint64, evm *EVM, contract *Contract, memory *Memory, stack *Stack) ([]byte, error) {
	imm := contract.Code[*pc+1]
	if imm >= 80 && imm <= 127 {
		return nil, ErrInvalidOpCode
	}
	n, m := decodePair(imm)
	max := n
	if m > max {
		max = m
	}
	if stack.Len() < max+1 {
		return nil, ErrStackUnderflow
	}
	data := stack.Data()
	top := len(data) - 1
	data[top-n], data[top-m] = data[top-m], data[top-n]
	*pc += 1
	return nil, nil
}

// NewGlamsterdanJumpTable returns the speculative Glamsterdan fork jump
// table: Prague plus the EIP-7904 compute/precompile repricing and the
// CLZ/SLOTNUM/DUPN/SWAPN/EXCHANGE opcodes.
func NewGlamsterdanJumpTable() JumpTable {
	tbl := NewPragueJumpTable()

	tbl[DIV].constantGas = GasDivGlamsterdan
	tbl[SDIV].constantGas = GasSdivGlamsterdan
	tbl[MOD].constantGas = GasModGlamsterdan
	tbl[MULMOD].constantGas = GasMulmodGlamsterdan
	tbl[KECCAK256].constantGas = GasKeccak256Glamsterdan

	tbl[CLZ] = &operation{execute: opCLZ, constantGas: GasFastStep, minStack: 1, maxStack: 1024}
	tbl[SLOTNUM] = &operation{execute: opSlotnum, constantGas: GasBase, minStack: 0, maxStack: 1023}
	tbl[DUPN] = &operation{execute: opDupN, constantGas: GasVerylow, minStack: 0, maxStack: 1023}
	tbl[SWAPN] = &operation{execute: opSwapN, constantGas: GasVerylow, minStack: 0, maxStack: 1024}
	tbl[EXCHANGE] = &operation{execute: opExchange, constantGas: GasVerylow, minStack: 0, maxStack: 1024}

	return tbl
}
