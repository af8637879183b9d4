// Package trie names the Merkle-Patricia Trie collaborator this module
// depends on but does not implement. The trie itself — node encoding,
// database backing, proofs, syncing — is out of scope (see spec.md §1);
// HeaderCodec and BlockCodec consume it only through the TrieHasher
// interface below, injected by whatever caller owns the actual trie.
package trie

import "github.com/ethereum/go-evmcore/core/types"

// KeyValuePair is one entry submitted to a TrieHasher for root derivation.
// For transaction and withdrawal tries the key is the RLP-encoded list
// index and the value is the RLP-encoded item, matching go-ethereum's
// types.DerivableList convention.
type KeyValuePair struct {
	Key   []byte
	Value []byte
}

// TrieHasher derives Merkle-Patricia Trie root hashes from an unordered
// set of key-value pairs. BlockCodec calls it to compute the transaction
// root, the withdrawals root, and (via from_execution_payload) to verify
// a payload's declared roots against freshly supplied data.
//
// Implementations are free to choose any internal representation — a
// full in-memory trie, a database-backed trie, or a lighter commitment
// scheme — as long as HashRoot is a deterministic function of the pairs'
// content, independent of the order pairs are supplied in.
type TrieHasher interface {
	HashRoot(pairs []KeyValuePair) types.Hash
}
