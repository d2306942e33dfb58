package beefy

import (
	"errors"

	errorsmod "cosmossdk.io/errors"
	"cosmossdk.io/log"
)

// Client is the stateful wrapper most embedders use: it owns a
// StorageReader/StorageWriter and a Host, and turns the pure
// IngestMMRUpdate function into the five entrypoints named by the
// external-interfaces surface: Initialise, IngestMMRUpdate,
// LatestHeight/LatestMMRRoot/AuthoritySets.
//
// A Client is synchronous and single-threaded per call: it suspends
// nowhere internally, and the only blocking it does is the storage
// round-trips around each call. Callers that drive IngestMMRUpdate from
// multiple goroutines must serialise those calls themselves (a single
// writer, arbitrary concurrent readers of Storage) — otherwise the
// monotonicity check inside IngestMMRUpdate can race with another
// goroutine's commit.
type Client struct {
	store  Storage
	host   Host
	logger log.Logger
}

// NewClient constructs a Client. A nil logger defaults to a no-op logger.
func NewClient(store Storage, host Host, logger log.Logger) *Client {
	if logger == nil {
		logger = log.NewNopLogger()
	}
	return &Client{store: store, host: host, logger: logger}
}

// Initialise sets the client's initial authority sets and activation
// height. It fails with AlreadyInitialised if MmrState has already been
// written by a prior Initialise call.
func (c *Client) Initialise(set AuthoritySet, activationBlock uint32) error {
	_, err := c.store.MmrState()
	switch {
	case err == nil:
		return errorsmod.Wrap(ErrAlreadyInitialised, "client already has an mmr state")
	case !errors.Is(err, ErrNotInitialised):
		return errorsmod.Wrap(ErrStorageRead, err.Error())
	}

	initialState := MmrState{
		LatestBeefyHeight: activationBlock - 1,
	}

	if err := c.store.Commit(initialState, set); err != nil {
		return errorsmod.Wrap(ErrStorageWrite, err.Error())
	}

	c.logger.Info("beefy client initialised",
		"current_set_id", set.Current.ID,
		"next_set_id", set.Next.ID,
		"activation_block", activationBlock,
	)
	return nil
}

// IngestMMRUpdate verifies proof against the client's current state and,
// on success, advances it. On failure the client's persisted state is
// left untouched.
func (c *Client) IngestMMRUpdate(proof MmrUpdateProof) error {
	authorities, err := c.store.AuthoritySet()
	if err != nil {
		return errorsmod.Wrap(ErrStorageRead, err.Error())
	}
	state, err := c.store.MmrState()
	if err != nil {
		return errorsmod.Wrap(ErrStorageRead, err.Error())
	}

	newAuthorities, newState, err := IngestMMRUpdate(c.host, authorities, state, proof)
	if err != nil {
		c.logger.Info("beefy mmr update rejected",
			"block_number", proof.SignedCommitment.Commitment.BlockNumber,
			"validator_set_id", proof.SignedCommitment.Commitment.ValidatorSetID,
			"error", err.Error(),
		)
		return err
	}

	if err := c.store.Commit(newState, newAuthorities); err != nil {
		return errorsmod.Wrap(ErrStorageWrite, err.Error())
	}

	c.logger.Info("beefy mmr update ingested",
		"height", newState.LatestBeefyHeight,
		"authorities_changed", newAuthorities.Current.ID != authorities.Current.ID,
	)
	return nil
}

// LatestHeight returns the latest ingested block number.
func (c *Client) LatestHeight() (uint32, error) {
	state, err := c.store.MmrState()
	if err != nil {
		return 0, errorsmod.Wrap(ErrStorageRead, err.Error())
	}
	return state.LatestBeefyHeight, nil
}

// LatestMMRRoot returns the MMR root carried by the latest ingested
// commitment.
func (c *Client) LatestMMRRoot() (Hash, error) {
	state, err := c.store.MmrState()
	if err != nil {
		return Hash{}, errorsmod.Wrap(ErrStorageRead, err.Error())
	}
	return state.MmrRootHash, nil
}

// AuthoritySets returns the current/next authority-set pair.
func (c *Client) AuthoritySets() (AuthoritySet, error) {
	authorities, err := c.store.AuthoritySet()
	if err != nil {
		return AuthoritySet{}, errorsmod.Wrap(ErrStorageRead, err.Error())
	}
	return authorities, nil
}
