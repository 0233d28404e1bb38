package keystore

import (
	"context"
)

// Transport performs one request/response round trip with the device. The
// returned response includes the trailing status word. A status outside
// accepted fails with *StatusError.
type Transport interface {
	Send(ctx context.Context, cla byte, ins Instruction, p1, p2 byte, data []byte, accepted []StatusWord) ([]byte, error)
}

// Exchanger moves one raw command APDU to the device and returns the raw
// reply, status word included.
type Exchanger interface {
	Exchange(apdu []byte) ([]byte, error)
}

// APDUTransport implements Transport on top of a raw Exchanger.
type APDUTransport struct {
	exchanger Exchanger
}

var _ Transport = (*APDUTransport)(nil)

// NewAPDUTransport wraps the exchanger into a Transport.
func NewAPDUTransport(exchanger Exchanger) *APDUTransport {
	return &APDUTransport{exchanger: exchanger}
}

// Send implements Transport. Cancellation is checked before the exchange,
// an exchange already in flight runs to completion.
func (t *APDUTransport) Send(ctx context.Context, cla byte, ins Instruction, p1, p2 byte, data []byte, accepted []StatusWord) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	apdu, err := Frame{Class: cla, Instruction: ins, P1: p1, P2: p2, Data: data}.Bytes()
	if err != nil {
		return nil, err
	}
	response, err := t.exchanger.Exchange(apdu)
	if err != nil {
		return nil, err
	}
	_, status, err := ParseStatusWord(response)
	if err != nil {
		return nil, err
	}
	if !statusIn(status, accepted) {
		return nil, &StatusError{Instruction: ins, Status: status}
	}
	return response, nil
}

func statusIn(status StatusWord, accepted []StatusWord) bool {
	if len(accepted) == 0 {
		return status == SWOK
	}
	for _, sw := range accepted {
		if sw == status {
			return true
		}
	}
	return false
}
