package txgrp

type prepareRequest struct {
	Type          string         `json:"type" validate:"required"`
	SenderAddress string         `json:"senderAddress" validate:"required"`
	Data          map[string]any `json:"data" validate:"required"`
}

type prepareResponse struct {
	UnsignedTxn string `json:"unsignedTxn"`
	TxType      string `json:"txType"`
}

type broadcastRequest struct {
	SignedTxn string `json:"signedTxn" validate:"required"`
}
