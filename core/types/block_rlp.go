package types

import (
	"fmt"

	"github.com/ethereum/go-ethereum/rlp"
)

// blockRLP is the wire representation of a block: [header, transactions,
// uncles] pre-Shanghai, or [header, transactions, uncles, withdrawals] once
// EIP-4895 is active. Transactions are kept as raw byte strings since this
// package does not own a transaction-type codec (see BlockTransaction in
// transaction.go); each is re-wrapped as a RawTransaction on decode.
// Withdrawals is tagged optional so pre-Shanghai blocks round-trip without
// an empty trailing list.
type blockRLP struct {
	Header      *Header
	Txs         [][]byte
	Uncles      []*Header
	Withdrawals []*Withdrawal `rlp:"optional"`
}

// EncodeRLP returns the RLP encoding of the block: [header, [tx1, tx2, ...],
// [uncle1, uncle2, ...]], plus a trailing withdrawals list once the block
// carries one (nil Withdrawals, as opposed to an empty non-nil slice, omits
// the field entirely).
func (b *Block) EncodeRLP() ([]byte, error) {
	enc := blockRLP{
		Header:      b.header,
		Txs:         make([][]byte, len(b.body.Transactions)),
		Uncles:      b.body.Uncles,
		Withdrawals: b.body.Withdrawals,
	}
	for i, tx := range b.body.Transactions {
		raw, err := tx.MarshalBinary()
		if err != nil {
			return nil, fmt.Errorf("encoding tx %d: %w", i, err)
		}
		enc.Txs[i] = raw
	}
	return rlp.EncodeToBytes(&enc)
}

// DecodeBlockRLP decodes an RLP-encoded block.
func DecodeBlockRLP(data []byte) (*Block, error) {
	var dec blockRLP
	if err := rlp.DecodeBytes(data, &dec); err != nil {
		return nil, fmt.Errorf("decoding block: %w", err)
	}

	txs := make([]BlockTransaction, len(dec.Txs))
	for i, raw := range dec.Txs {
		txs[i] = NewRawTransaction(raw)
	}

	block := &Block{header: dec.Header}
	block.body.Transactions = txs
	block.body.Uncles = dec.Uncles
	block.body.Withdrawals = dec.Withdrawals
	return block, nil
}
