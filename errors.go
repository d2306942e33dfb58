package beefy

import (
	errorsmod "cosmossdk.io/errors"
)

// beefyCodespace groups this package's registered errors, the way every
// ibc-go light client registers its own codespace (e.g. clienttypes,
// 06-solomachine's types) rather than reusing a shared error type.
const beefyCodespace = "beefy"

// Error kinds, one per failure class in the ingestion algorithm. Every
// IngestMMRUpdate failure wraps exactly one of these, so callers can branch
// on the class of failure with errors.Is without parsing strings.
var (
	ErrStorageRead           = errorsmod.Register(beefyCodespace, 2, "failed to read from storage")
	ErrStorageWrite          = errorsmod.Register(beefyCodespace, 3, "failed to write to storage")
	ErrDecoding              = errorsmod.Register(beefyCodespace, 4, "failed to decode SCALE-encoded value")
	ErrInvalidMmrUpdate      = errorsmod.Register(beefyCodespace, 5, "invalid mmr update")
	ErrInvalidRootHash       = errorsmod.Register(beefyCodespace, 6, "invalid mmr root hash")
	ErrInvalidSignature      = errorsmod.Register(beefyCodespace, 7, "invalid commitment signature")
	ErrInvalidAuthorityProof = errorsmod.Register(beefyCodespace, 8, "invalid authority merkle proof")
	ErrInvalidMmrProof       = errorsmod.Register(beefyCodespace, 9, "invalid mmr inclusion proof")
	ErrAlreadyInitialised    = errorsmod.Register(beefyCodespace, 10, "client already initialised")
)
