package signing

import (
	"io"
	"math/big"

	"github.com/tmpfs/synedrion/common"
	zkpdec "github.com/tmpfs/synedrion/crypto/zkp/dec"
	zkpmul "github.com/tmpfs/synedrion/crypto/zkp/mul"
	"github.com/tmpfs/synedrion/ecdsa/keygen"
	"github.com/tmpfs/synedrion/tss"
)

type (
	// IdentificationEvidence is the blame material a party produces when the
	// delta equality check of round 3 fails: a Mul proof that H encrypts
	// k_i * gamma_i, and one Dec proof per verifier attesting that the
	// aggregate MtA ciphertext decrypts to the delta share this party
	// reported. Honest parties' proofs verify; the deviating party cannot
	// produce them.
	IdentificationEvidence struct {
		H          *big.Int
		MulProof   *zkpmul.ProofMul
		Aggregate  *big.Int
		DeltaShare *big.Int
		DecProofs  []*zkpdec.ProofDec // indexed by verifier; own slot nil
	}

	// IdentifiableAbortError is the cause carried by a Protocol-kind session
	// error after a failed delta check.
	IdentifiableAbortError struct {
		Evidence *IdentificationEvidence
	}
)

func (e *IdentifiableAbortError) Error() string {
	return "the delta equality check failed: a party deviated from the protocol"
}

// newIdentificationEvidence reconstructs the aggregate ciphertext
// H ⊕ Σ_j D_{j,i} ⊖ Σ_j F_{i,j} whose plaintext is this party's delta share,
// and proves both the product H and the aggregate's decryption.
func (round *presign3) newIdentificationEvidence(rnd io.Reader) (*IdentificationEvidence, error) {
	i := round.partyIdx
	ec := tss.EC()
	sk := round.key.PaillierSK
	pk := &sk.PublicKey
	aux := common.SessionAuxInt(round.sessionID, i)

	// H = k_i ⊙ G_i encrypts k_i * gamma_i under our own key
	H, err := pk.HomoMult(round.temp.KShare, round.temp.G)
	if err != nil {
		return nil, err
	}
	mulProof, err := zkpmul.NewProof(rnd, ec, pk, round.temp.K, round.temp.G, H,
		round.temp.KShare, round.temp.KNonce, aux)
	if err != nil {
		return nil, err
	}

	aggregate := H
	for j := 0; j < round.PartyCount(); j++ {
		if j == i {
			continue
		}
		if aggregate, err = pk.HomoAdd(aggregate, round.temp.r2msgDs[j]); err != nil {
			return nil, err
		}
		// F encrypts the positive betaNeg, which enters delta negated
		FNeg, err := pk.HomoMultSigned(big.NewInt(-1), round.temp.DeltaMtAFs[j])
		if err != nil {
			return nil, err
		}
		if aggregate, err = pk.HomoAdd(aggregate, FNeg); err != nil {
			return nil, err
		}
	}

	rho, err := sk.DeriveRandomizer(aggregate)
	if err != nil {
		return nil, err
	}

	decProofs := make([]*zkpdec.ProofDec, round.PartyCount())
	for j := 0; j < round.PartyCount(); j++ {
		if j == i {
			continue
		}
		decProofs[j], err = zkpdec.NewProof(rnd, ec, pk, aggregate, round.temp.DeltaShare,
			round.key.NTildej[j], round.key.H1j[j], round.key.H2j[j],
			round.temp.DeltaShareInt, rho, aux)
		if err != nil {
			return nil, err
		}
	}

	return &IdentificationEvidence{
		H:          H,
		MulProof:   mulProof,
		Aggregate:  aggregate,
		DeltaShare: round.temp.DeltaShare,
		DecProofs:  decProofs,
	}, nil
}

// VerifyIdentificationEvidence lets a verifier at index verifierIdx check
// the evidence published by the party at index proverIdx.
func VerifyIdentificationEvidence(
	ev *IdentificationEvidence,
	key *keygen.LocalPartySaveData,
	sessionID []byte,
	proverIdx, verifierIdx int,
	proverK, proverG *big.Int,
) bool {
	if ev == nil || ev.MulProof == nil {
		return false
	}
	ec := tss.EC()
	aux := common.SessionAuxInt(sessionID, proverIdx)
	proverPK := key.PaillierPKs[proverIdx]
	if !ev.MulProof.Verify(ec, proverPK, proverK, proverG, ev.H, aux) {
		return false
	}
	if verifierIdx < 0 || len(ev.DecProofs) <= verifierIdx || ev.DecProofs[verifierIdx] == nil {
		return false
	}
	return ev.DecProofs[verifierIdx].Verify(ec, proverPK, ev.Aggregate, ev.DeltaShare,
		key.NTildej[verifierIdx], key.H1j[verifierIdx], key.H2j[verifierIdx], aux)
}
