package algorand

import (
	"encoding/base64"
	"errors"
	"fmt"

	"github.com/algorand/go-algorand-sdk/v2/encoding/msgpack"
	"github.com/algorand/go-algorand-sdk/v2/transaction"
	"github.com/algorand/go-algorand-sdk/v2/types"
)

// AddressLength is the length of the textual form of an Algorand address.
const AddressLength = 58

// IsValidAddress reports whether the specified value is a well formed
// Algorand address.
func IsValidAddress(address string) bool {
	_, err := types.DecodeAddress(address)
	return err == nil
}

// BuildNotePayment constructs a zero value self payment carrying the
// specified note and returns the unsigned transaction encoded for
// transport. The note is the only information bearing content. No key
// material is involved; the caller signs the result externally.
func BuildNotePayment(sender string, note []byte, params TxParams) (string, error) {
	addr, err := types.DecodeAddress(sender)
	if err != nil {
		return "", fmt.Errorf("decoding sender address: %w", err)
	}

	sp := types.SuggestedParams{
		Fee:             types.MicroAlgos(params.Fee),
		MinFee:          params.MinFee,
		FirstRoundValid: types.Round(params.FirstRound),
		LastRoundValid:  types.Round(params.LastRound),
		GenesisID:       params.GenesisID,
		GenesisHash:     params.GenesisHash,
	}

	txn, err := transaction.MakePaymentTxn(addr.String(), addr.String(), 0, note, "", sp)
	if err != nil {
		return "", fmt.Errorf("constructing payment transaction: %w", err)
	}

	return base64.StdEncoding.EncodeToString(msgpack.Encode(&txn)), nil
}

// DecodeSignedBlob decodes an externally signed transaction from its
// transport encoding and checks the bytes form a well formed signed
// transaction before they are broadcast.
func DecodeSignedBlob(blob string) ([]byte, error) {
	if blob == "" {
		return nil, errors.New("signed transaction blob is empty")
	}

	raw, err := base64.StdEncoding.DecodeString(blob)
	if err != nil {
		return nil, fmt.Errorf("invalid base64 encoding: %w", err)
	}

	if len(raw) == 0 {
		return nil, errors.New("signed transaction blob is empty")
	}

	var stx types.SignedTxn
	if err := msgpack.Decode(raw, &stx); err != nil {
		return nil, fmt.Errorf("malformed signed transaction: %w", err)
	}

	return raw, nil
}
