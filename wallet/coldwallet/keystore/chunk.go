package keystore

import (
	"math"

	"github.com/pkg/errors"

	"github.com/thetatoken/lumina/wallet/types"
)

// transactionFrames splits header ++ transaction into SignTransaction frames.
// The first frame carries the header and as much of the transaction as fits
// in APDUMaxSize, every following frame carries up to APDUMaxSize raw
// transaction bytes. The first frame has p1 = P1First, the last p2 = P2Last.
func transactionFrames(header, transaction []byte) ([]Frame, error) {
	capacity := APDUMaxSize - len(header)
	if capacity < 0 {
		return nil, errors.Wrapf(types.ErrPathTooLong, "path header of %d bytes exceeds the %d byte frame limit", len(header), APDUMaxSize)
	}

	var chunks [][]byte
	if len(transaction) <= capacity {
		chunks = append(chunks, concat(header, transaction))
	} else {
		chunks = append(chunks, concat(header, transaction[:capacity]))
		for offset := capacity; offset < len(transaction); offset += APDUMaxSize {
			end := offset + APDUMaxSize
			if end > len(transaction) {
				end = len(transaction)
			}
			chunks = append(chunks, concat(nil, transaction[offset:end]))
		}
	}

	frames := make([]Frame, len(chunks))
	for i, chunk := range chunks {
		p1, p2 := P1More, P2More
		if i == 0 {
			p1 = P1First
		}
		if i == len(chunks)-1 {
			p2 = P2Last
		}
		frames[i] = newFrame(InsSignTransaction, p1, p2, chunk)
	}
	return frames, nil
}

// withHeader prefixes data with the path header for a single-frame command.
func withHeader(header, data []byte) ([]byte, error) {
	if len(header)+len(data) > math.MaxUint8 {
		return nil, errors.Wrapf(types.ErrPathTooLong, "path header of %d bytes leaves no room for %d bytes of data", len(header), len(data))
	}
	return concat(header, data), nil
}

// concat returns a fresh slice so frames never alias the caller's buffer.
func concat(a, b []byte) []byte {
	out := make([]byte, 0, len(a)+len(b))
	out = append(out, a...)
	return append(out, b...)
}
