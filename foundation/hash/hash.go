// Package hash provides the hashing helpers used to bind off-chain content
// to on-chain records. Only hashes of privacy sensitive values ever reach
// the chain, never the raw values themselves.
package hash

import (
	"crypto/sha256"
	"encoding/json"

	"github.com/ethereum/go-ethereum/common/hexutil"
)

// ZeroHash represents a hash code of zeros.
const ZeroHash string = "0x0000000000000000000000000000000000000000000000000000000000000000"

// Hash returns a unique string for the value.
func Hash(value any) string {
	data, err := json.Marshal(value)
	if err != nil {
		return ZeroHash
	}

	hash := sha256.Sum256(data)
	return hexutil.Encode(hash[:])
}

// String hashes the raw bytes of a string. This is the form used for
// student ids, complaint text and vote commitments.
func String(value string) string {
	hash := sha256.Sum256([]byte(value))
	return hexutil.Encode(hash[:])
}
