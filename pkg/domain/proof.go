package domain

import dErrors "paygate/pkg/domain-errors"

// ProofType is a category of identity attestation tracked independently.
type ProofType string

const (
	ProofAge      ProofType = "age"
	ProofCountry  ProofType = "country"
	ProofSanction ProofType = "sanction"
)

// AllProofTypes lists the proof types that count toward a verification level.
var AllProofTypes = []ProofType{ProofAge, ProofCountry, ProofSanction}

// ParseProofType validates a proof type at the boundary; unknown types are
// rejected rather than falling through to a default.
func ParseProofType(s string) (ProofType, error) {
	t := ProofType(s)
	if !t.IsValid() {
		return "", dErrors.New(dErrors.CodeInvalidInput, "unsupported proof type: "+s)
	}
	return t, nil
}

func (t ProofType) IsValid() bool {
	switch t {
	case ProofAge, ProofCountry, ProofSanction:
		return true
	}
	return false
}

func (t ProofType) String() string {
	return string(t)
}

// VerificationLevel is the aggregate trust tier derived from the count of
// distinct verified proof types for an address. Enterprise is never derived;
// it is only reached through an explicit administrative promotion.
type VerificationLevel int

const (
	LevelUnverified VerificationLevel = iota
	LevelBasic
	LevelEnhanced
	LevelPremium
	LevelEnterprise
)

// LevelForProofCount maps the number of distinct verified proof types to a
// level. The table is monotonic: more verified proof types never lower the
// level.
func LevelForProofCount(n int) VerificationLevel {
	switch {
	case n >= 3:
		return LevelPremium
	case n == 2:
		return LevelEnhanced
	case n == 1:
		return LevelBasic
	default:
		return LevelUnverified
	}
}

// AtLeast reports whether the level satisfies a required minimum.
func (l VerificationLevel) AtLeast(required VerificationLevel) bool {
	return l >= required
}

func (l VerificationLevel) String() string {
	switch l {
	case LevelBasic:
		return "basic"
	case LevelEnhanced:
		return "enhanced"
	case LevelPremium:
		return "premium"
	case LevelEnterprise:
		return "enterprise"
	default:
		return "unverified"
	}
}

// ParseVerificationLevel reads the wire form of a level.
func ParseVerificationLevel(s string) (VerificationLevel, error) {
	switch s {
	case "unverified":
		return LevelUnverified, nil
	case "basic":
		return LevelBasic, nil
	case "enhanced":
		return LevelEnhanced, nil
	case "premium":
		return LevelPremium, nil
	case "enterprise":
		return LevelEnterprise, nil
	}
	return LevelUnverified, dErrors.New(dErrors.CodeInvalidInput, "unknown verification level: "+s)
}
