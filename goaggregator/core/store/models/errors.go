package models

import "github.com/pkg/errors"

// Every submission failure below rolls the whole operation back; none of them
// leaves partial ledger state behind.
var (
	ErrExpiredBatch           = errors.New("batch deadline has passed")
	ErrMalformedBatch         = errors.New("mismatched submission array lengths")
	ErrQuorumNotMet           = errors.New("verified signatures below minimum threshold")
	ErrNonSequentialRound     = errors.New("round id must follow the last reported round")
	ErrUnauthorizedSubmitter  = errors.New("recovered signer is not an enabled oracle")
	ErrInsufficientFunds      = errors.New("available funds cannot cover payment")
	ErrNoData                 = errors.New("no data present for round")
	ErrUnauthorizedReader     = errors.New("caller lacks access to this endpoint")
	ErrSubmissionOutOfBounds  = errors.New("submission outside configured value bounds")
)
