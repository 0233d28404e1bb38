package types

import (
	"encoding/binary"
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/pkg/errors"
)

// HardenedOffset is added to a path index to mark it as hardened.
const HardenedOffset = 0x80000000

// MaxPathSegments is the number of indices that fit behind the one byte
// length prefix of a serialized path.
const MaxPathSegments = math.MaxUint8

var (
	// ErrInvalidPathFormat is returned when a path string cannot be parsed
	// into non-negative 32 bit indices.
	ErrInvalidPathFormat = errors.New("invalid derivation path format")

	// ErrPathTooLong is returned when a path has more segments than the
	// device protocol can carry.
	ErrPathTooLong = errors.New("derivation path too long")
)

// DerivationPath represents the computer friendly version of a hierarchical
// deterministic wallet account derivaion path.
type DerivationPath []uint32

// DefaultLuminaBaseDerivationPath is the base path of Lumina accounts. The
// first account lives at 44'/148'/0', the second at 44'/148'/1', etc.
var DefaultLuminaBaseDerivationPath = DerivationPath{HardenedOffset + 44, HardenedOffset + 148, HardenedOffset + 0}

// ParseDerivationPath converts a BIP32 style path such as "44'/148'/0'" into
// its index list. A leading "m/" is optional, hardened segments are marked
// with ', h or H.
func ParseDerivationPath(path string) (DerivationPath, error) {
	trimmed := strings.TrimSpace(path)
	trimmed = strings.TrimPrefix(trimmed, "m/")
	if trimmed == "" {
		return nil, errors.Wrapf(ErrInvalidPathFormat, "empty path %q", path)
	}

	segments := strings.Split(trimmed, "/")
	if len(segments) > MaxPathSegments {
		return nil, errors.Wrapf(ErrPathTooLong, "%d segments, at most %d allowed", len(segments), MaxPathSegments)
	}

	result := make(DerivationPath, 0, len(segments))
	for i, segment := range segments {
		hardened := false
		if n := len(segment); n > 0 {
			switch segment[n-1] {
			case '\'', 'h', 'H':
				hardened = true
				segment = segment[:n-1]
			}
		}
		if segment == "" || strings.HasPrefix(segment, "+") || strings.HasPrefix(segment, "-") {
			return nil, errors.Wrapf(ErrInvalidPathFormat, "segment %d of %q", i, path)
		}
		value, err := strconv.ParseUint(segment, 10, 32)
		if err != nil {
			return nil, errors.Wrapf(ErrInvalidPathFormat, "segment %d of %q: %v", i, path, err)
		}
		if value >= HardenedOffset {
			return nil, errors.Wrapf(ErrInvalidPathFormat, "segment %d of %q out of range, write large indices as hardened", i, path)
		}
		if hardened {
			value += HardenedOffset
		}
		result = append(result, uint32(value))
	}
	return result, nil
}

// Bytes serializes the path as a length byte followed by every index in big
// endian order.
func (path DerivationPath) Bytes() ([]byte, error) {
	if len(path) > MaxPathSegments {
		return nil, errors.Wrapf(ErrPathTooLong, "%d segments, at most %d allowed", len(path), MaxPathSegments)
	}
	buf := make([]byte, 1+4*len(path))
	buf[0] = byte(len(path))
	for i, index := range path {
		binary.BigEndian.PutUint32(buf[1+4*i:], index)
	}
	return buf, nil
}

// String renders the path back into its textual form, e.g. 44'/148'/0'.
func (path DerivationPath) String() string {
	parts := make([]string, len(path))
	for i, index := range path {
		if index >= HardenedOffset {
			parts[i] = fmt.Sprintf("%d'", index-HardenedOffset)
		} else {
			parts[i] = strconv.FormatUint(uint64(index), 10)
		}
	}
	return strings.Join(parts, "/")
}
