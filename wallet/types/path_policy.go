package types

import (
	"github.com/pkg/errors"
)

// ErrInvalidAccountPath is returned for paths the Lumina app refuses to
// derive keys for.
var ErrInvalidAccountPath = errors.New("invalid Lumina account path")

// LuminaPurpose and LuminaCoinType are the mandatory leading path indices.
const (
	LuminaPurpose  = HardenedOffset + 44
	LuminaCoinType = HardenedOffset + 148
)

// CheckLuminaPath verifies that the path lives under 44'/148' and that every
// segment is hardened. The Lumina app only derives Ed25519 keys, for which
// non-hardened derivation is undefined.
func CheckLuminaPath(path DerivationPath) error {
	if len(path) < 2 || path[0] != LuminaPurpose || path[1] != LuminaCoinType {
		return errors.Wrapf(ErrInvalidAccountPath, "%s does not start with 44'/148'", path)
	}
	for i, index := range path {
		if index < HardenedOffset {
			return errors.Wrapf(ErrInvalidAccountPath, "segment %d of %s is not hardened, use an all-hardened path such as 44'/148'/0'", i, path)
		}
	}
	return nil
}

// ParseLuminaPath parses the path string and applies CheckLuminaPath.
func ParseLuminaPath(path string) (DerivationPath, error) {
	parsed, err := ParseDerivationPath(path)
	if err != nil {
		return nil, err
	}
	if err := CheckLuminaPath(parsed); err != nil {
		return nil, err
	}
	return parsed, nil
}
