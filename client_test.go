package beefy_test

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/require"

	beefy "github.com/cosmos/ibc-go-beefy"
	"github.com/cosmos/ibc-go-beefy/memstore"
)

// toyValidatorSet is a fixed 3-validator committee (k0, k1, k2) used
// across the end-to-end scenarios, matching the spec's literal-seed toy
// set.
type toyValidatorSet struct {
	host       beefy.Host
	validators []fakeValidator
	leaves     []beefy.Hash
	root       beefy.Hash
}

func newToyValidatorSet(host beefy.Host, n int) toyValidatorSet {
	validators := make([]fakeValidator, n)
	leaves := make([]beefy.Hash, n)
	for i := range validators {
		validators[i] = newFakeValidator()
		leaves[i] = authorityLeafHash(host, validators[i])
	}
	return toyValidatorSet{
		host:       host,
		validators: validators,
		leaves:     leaves,
		root:       authorityTreeRoot(host, leaves),
	}
}

func (s toyValidatorSet) descriptor(id uint64) beefy.BeefyNextAuthoritySet {
	return beefy.BeefyNextAuthoritySet{ID: id, Len: uint32(len(s.validators)), Root: s.root}
}

// buildUpdate constructs a single-leaf (leafCount=1) MmrUpdateProof: the
// latest leaf is always at MMR index 0, so its MMR inclusion proof is
// trivially empty and the payload's mmr root is exactly the leaf hash
// (see VerifyMMRLeafProof's peaks=[0] base case). This isolates each
// scenario to the signature/threshold/authority-proof/monotonicity logic
// update.go actually guards, without needing a multi-leaf MMR fixture.
func (s toyValidatorSet) buildUpdate(signerIdx []uint32, signaturesLen int, blockNumber uint32, vsid uint64, nextSet beefy.BeefyNextAuthoritySet) beefy.MmrUpdateProof {
	leaf := beefy.MmrLeaf{
		Version:               0,
		ParentNumber:          blockNumber - 1,
		BeefyNextAuthoritySet: nextSet,
	}
	leafHash := s.host.Keccak256(leaf.Encode())

	commitment := beefy.Commitment{
		Payload:        beefy.Payload{{ID: beefy.MMRRootPayloadID, Value: leafHash[:]}},
		BlockNumber:    blockNumber,
		ValidatorSetID: vsid,
	}
	msg := s.host.Keccak256(commitment.Encode())

	signatures := make([]beefy.CommitmentSignature, signaturesLen)
	for _, idx := range signerIdx {
		signatures[idx] = s.validators[idx].sign(s.host, msg)
	}

	return beefy.MmrUpdateProof{
		SignedCommitment: beefy.SignedCommitment{
			Commitment: commitment,
			Signatures: signatures,
		},
		LatestMmrLeafWithIndex: beefy.MmrLeafWithIndex{Index: 0, Leaf: leaf},
		MmrProof:               nil,
		AuthorityProof:         authorityTreeProof(s.host, s.leaves, signerIdx),
	}
}

func allIndices(n int) []uint32 {
	idx := make([]uint32, n)
	for i := range idx {
		idx[i] = uint32(i)
	}
	return idx
}

func newTestClient(t *testing.T, toy toyValidatorSet, nextSetID uint64) *beefy.Client {
	t.Helper()
	store := memstore.New()
	client := beefy.NewClient(store, toy.host, nil)

	authorities := beefy.AuthoritySet{
		Current: toy.descriptor(0),
		Next:    toy.descriptor(nextSetID),
	}
	require.NoError(t, client.Initialise(authorities, 11))
	height, err := client.LatestHeight()
	require.NoError(t, err)
	require.EqualValues(t, 10, height)
	return client
}

func TestClientHappyPath(t *testing.T) {
	host := beefy.EthereumHost{}
	toy := newToyValidatorSet(host, 3)
	client := newTestClient(t, toy, 1)

	update := toy.buildUpdate(allIndices(3), len(toy.validators), 11, 0, toy.descriptor(1))
	require.NoError(t, client.IngestMMRUpdate(update))

	height, err := client.LatestHeight()
	require.NoError(t, err)
	require.EqualValues(t, 11, height)

	root, err := client.LatestMMRRoot()
	require.NoError(t, err)
	expectedLeafHash := host.Keccak256(update.LatestMmrLeafWithIndex.Leaf.Encode())
	require.Equal(t, expectedLeafHash, root)

	sets, err := client.AuthoritySets()
	require.NoError(t, err)
	require.EqualValues(t, 0, sets.Current.ID)
}

func TestClientRotation(t *testing.T) {
	host := beefy.EthereumHost{}
	toy := newToyValidatorSet(host, 3)
	client := newTestClient(t, toy, 1)

	first := toy.buildUpdate(allIndices(3), len(toy.validators), 11, 0, toy.descriptor(1))
	require.NoError(t, client.IngestMMRUpdate(first))

	second := toy.buildUpdate(allIndices(3), len(toy.validators), 12, 1, toy.descriptor(2))
	require.NoError(t, client.IngestMMRUpdate(second))

	sets, err := client.AuthoritySets()
	require.NoError(t, err)
	require.EqualValues(t, 1, sets.Current.ID)
	require.EqualValues(t, 2, sets.Next.ID)
}

func TestClientBelowThresholdRejected(t *testing.T) {
	host := beefy.EthereumHost{}
	toy := newToyValidatorSet(host, 3)
	client := newTestClient(t, toy, 1)

	update := toy.buildUpdate([]uint32{0}, len(toy.validators), 11, 0, toy.descriptor(1))
	err := client.IngestMMRUpdate(update)
	require.Error(t, err)
	require.True(t, errors.Is(err, beefy.ErrInvalidMmrUpdate))

	height, _ := client.LatestHeight()
	require.EqualValues(t, 10, height)
}

func TestClientStaleBlockRejected(t *testing.T) {
	host := beefy.EthereumHost{}
	toy := newToyValidatorSet(host, 3)
	client := newTestClient(t, toy, 1)

	update := toy.buildUpdate(allIndices(3), len(toy.validators), 10, 0, toy.descriptor(1))
	err := client.IngestMMRUpdate(update)
	require.Error(t, err)
	require.True(t, errors.Is(err, beefy.ErrInvalidMmrUpdate))
}

func TestClientBadSignatureRejected(t *testing.T) {
	host := beefy.EthereumHost{}
	toy := newToyValidatorSet(host, 3)
	client := newTestClient(t, toy, 1)

	update := toy.buildUpdate(allIndices(3), len(toy.validators), 11, 0, toy.descriptor(1))
	update.SignedCommitment.Signatures[0].Signature[10] ^= 0xFF

	err := client.IngestMMRUpdate(update)
	require.Error(t, err)
	require.True(t, errors.Is(err, beefy.ErrInvalidSignature) || errors.Is(err, beefy.ErrInvalidAuthorityProof))

	height, _ := client.LatestHeight()
	require.EqualValues(t, 10, height)
}

func TestClientBadMmrProofRejected(t *testing.T) {
	host := beefy.EthereumHost{}
	toy := newToyValidatorSet(host, 3)
	client := newTestClient(t, toy, 1)

	leaf := beefy.MmrLeaf{Version: 0, ParentNumber: 10, BeefyNextAuthoritySet: toy.descriptor(1)}
	leafHash := host.Keccak256(leaf.Encode())
	earlierLeafHash := host.Keccak256([]byte("an earlier mmr leaf"))
	root := hashPairFake(host, earlierLeafHash, leafHash)

	commitment := beefy.Commitment{
		Payload:        beefy.Payload{{ID: beefy.MMRRootPayloadID, Value: root[:]}},
		BlockNumber:    11,
		ValidatorSetID: 0,
	}
	msg := host.Keccak256(commitment.Encode())

	signatures := make([]beefy.CommitmentSignature, len(toy.validators))
	for i, v := range toy.validators {
		signatures[i] = v.sign(host, msg)
	}

	update := beefy.MmrUpdateProof{
		SignedCommitment: beefy.SignedCommitment{Commitment: commitment, Signatures: signatures},
		LatestMmrLeafWithIndex: beefy.MmrLeafWithIndex{
			Index: 1,
			Leaf:  leaf,
		},
		MmrProof:       []beefy.Hash{earlierLeafHash},
		AuthorityProof: authorityTreeProof(host, toy.leaves, allIndices(3)),
	}

	update.MmrProof[0][0] ^= 0xFF

	err := client.IngestMMRUpdate(update)
	require.Error(t, err)
	require.True(t, errors.Is(err, beefy.ErrInvalidMmrProof))

	height, _ := client.LatestHeight()
	require.EqualValues(t, 10, height)
}

// TestClientThresholdUsesDeclaredLen covers the mismatch case the
// original source's own comment on authority_threshold flags: the
// threshold is computed from the authority set's declared Len field, not
// from how many validators are actually behind it. Here all three real
// validators sign, but the stored descriptors overstate Len as 5
// (threshold 4), so full participation still falls short.
func TestClientThresholdUsesDeclaredLen(t *testing.T) {
	host := beefy.EthereumHost{}
	toy := newToyValidatorSet(host, 3)

	store := memstore.New()
	client := beefy.NewClient(store, host, nil)
	authorities := beefy.AuthoritySet{
		Current: beefy.BeefyNextAuthoritySet{ID: 0, Len: 5, Root: toy.root},
		Next:    beefy.BeefyNextAuthoritySet{ID: 1, Len: 5, Root: toy.root},
	}
	require.NoError(t, client.Initialise(authorities, 11))

	update := toy.buildUpdate(allIndices(3), len(toy.validators), 11, 0, toy.descriptor(1))
	err := client.IngestMMRUpdate(update)
	require.Error(t, err)
	require.True(t, errors.Is(err, beefy.ErrInvalidMmrUpdate))
}

func TestClientDoubleInitialiseRejected(t *testing.T) {
	host := beefy.EthereumHost{}
	toy := newToyValidatorSet(host, 3)
	client := newTestClient(t, toy, 1)

	err := client.Initialise(beefy.AuthoritySet{Current: toy.descriptor(0), Next: toy.descriptor(1)}, 11)
	require.Error(t, err)
	require.True(t, errors.Is(err, beefy.ErrAlreadyInitialised))
}
