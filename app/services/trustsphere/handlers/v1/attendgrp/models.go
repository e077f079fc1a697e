package attendgrp

type submitRequest struct {
	SessionID string `json:"sessionId" validate:"required"`
	StudentID string `json:"studentId" validate:"required"`
	SignedTxn string `json:"signedTxn" validate:"required"`
}
