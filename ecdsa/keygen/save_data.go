package keygen

import (
	"encoding/hex"
	"errors"
	"io"
	"math/big"

	"github.com/fxamacker/cbor/v2"

	"github.com/tmpfs/synedrion/common"
	"github.com/tmpfs/synedrion/crypto"
	"github.com/tmpfs/synedrion/crypto/paillier"
	zkpsch "github.com/tmpfs/synedrion/crypto/zkp/sch"
	"github.com/tmpfs/synedrion/tss"
)

type (
	LocalPreParams struct {
		PaillierSK *paillier.PrivateKey // ski
		NTildei,
		H1i, H2i *big.Int
	}

	LocalSecrets struct {
		// secret fields (not shared, but stored locally)
		Xi, ShareID *big.Int // xi, kj
	}

	// Everything in LocalPartySaveData is saved locally to user's HD when done
	LocalPartySaveData struct {
		LocalPreParams
		LocalSecrets

		// original indexes (ki in signing preparation phase)
		Ks []*big.Int

		// n-tilde, h1, h2 for range proofs
		NTildej, H1j, H2j []*big.Int

		// public key shares (Xj = xj*G for each Pj)
		BigXj       []*crypto.ECPoint     // Xj
		PaillierPKs []*paillier.PublicKey // pkj

		// the aggregate verifying key
		ECDSAPub *crypto.ECPoint // y
	}
)

var cborEncMode, _ = cbor.CoreDetEncOptions().EncMode()

func NewLocalPartySaveData(partyCount int) (saveData LocalPartySaveData) {
	saveData.Ks = make([]*big.Int, partyCount)
	saveData.NTildej = make([]*big.Int, partyCount)
	saveData.H1j, saveData.H2j = make([]*big.Int, partyCount), make([]*big.Int, partyCount)
	saveData.BigXj = make([]*crypto.ECPoint, partyCount)
	saveData.PaillierPKs = make([]*paillier.PublicKey, partyCount)
	return
}

func (preParams LocalPreParams) Validate() bool {
	return preParams.PaillierSK != nil &&
		preParams.NTildei != nil &&
		preParams.H1i != nil &&
		preParams.H2i != nil
}

// OriginalIndex returns the party's index in the Ks slice using its ShareID.
func (save LocalPartySaveData) OriginalIndex() (int, error) {
	for j, kj := range save.Ks {
		if kj.Cmp(save.ShareID) == 0 {
			return j, nil
		}
	}
	return -1, errors.New("a party index could not be recovered from Ks")
}

// Validate checks the structural invariant of a key share: the public share
// vectors are complete and their sum equals the aggregate verifying key,
// which must not be the identity point.
func (save LocalPartySaveData) Validate() error {
	if !save.LocalPreParams.Validate() || save.Xi == nil || save.ShareID == nil || save.ECDSAPub == nil {
		return errors.New("key share is missing required fields")
	}
	n := len(save.Ks)
	if len(save.BigXj) != n || len(save.PaillierPKs) != n ||
		len(save.NTildej) != n || len(save.H1j) != n || len(save.H2j) != n {
		return errors.New("key share vectors have inconsistent lengths")
	}
	sum := save.BigXj[0]
	var err error
	for _, Xj := range save.BigXj[1:] {
		if sum, err = sum.Add(Xj); err != nil {
			return err
		}
	}
	if !sum.Equals(save.ECDSAPub) {
		return errors.New("the public shares do not sum to the verifying key")
	}
	if save.ECDSAPub.X().Sign() == 0 && save.ECDSAPub.Y().Sign() == 0 {
		return errors.New("the verifying key is the identity point")
	}
	return nil
}

// ProveShareKnowledge produces a Schnorr proof of knowledge of the secret
// share behind this party's public share.
func (save LocalPartySaveData) ProveShareKnowledge(rnd io.Reader, aux *big.Int) (*zkpsch.ProofSch, error) {
	i, err := save.OriginalIndex()
	if err != nil {
		return nil, err
	}
	return zkpsch.NewProof(rnd, save.BigXj[i], save.Xi, aux)
}

// PaillierProof produces the well-formedness proof of this party's
// Paillier modulus.
func (save LocalPartySaveData) PaillierProof(k *big.Int) paillier.Proof {
	return save.PaillierSK.Proof(k, save.ECDSAPub)
}

// Marshal serializes the key share with a deterministic, self-describing
// binary encoding that is stable across parties.
func (save LocalPartySaveData) Marshal() ([]byte, error) {
	return cborEncMode.Marshal(save)
}

func UnmarshalLocalPartySaveData(bz []byte) (*LocalPartySaveData, error) {
	save := new(LocalPartySaveData)
	if err := cbor.Unmarshal(bz, save); err != nil {
		return nil, err
	}
	return save, nil
}

// BuildLocalSaveDataSubset re-creates the LocalPartySaveData to contain data for only the list of signing parties.
func BuildLocalSaveDataSubset(sourceData LocalPartySaveData, sortedIDs tss.SortedPartyIDs) LocalPartySaveData {
	keysToIndices := make(map[string]int, len(sourceData.Ks))
	for j, kj := range sourceData.Ks {
		keysToIndices[hex.EncodeToString(kj.Bytes())] = j
	}
	newData := NewLocalPartySaveData(sortedIDs.Len())
	newData.LocalPreParams = sourceData.LocalPreParams
	newData.LocalSecrets = sourceData.LocalSecrets
	newData.ECDSAPub = sourceData.ECDSAPub
	for j, id := range sortedIDs {
		savedIdx, ok := keysToIndices[hex.EncodeToString(id.Key)]
		if !ok {
			common.Logger.Warning("BuildLocalSaveDataSubset: unable to find a signer party in the local save data", id)
			continue
		}
		newData.Ks[j] = sourceData.Ks[savedIdx]
		newData.NTildej[j] = sourceData.NTildej[savedIdx]
		newData.H1j[j] = sourceData.H1j[savedIdx]
		newData.H2j[j] = sourceData.H2j[savedIdx]
		newData.BigXj[j] = sourceData.BigXj[savedIdx]
		newData.PaillierPKs[j] = sourceData.PaillierPKs[savedIdx]
	}
	return newData
}
