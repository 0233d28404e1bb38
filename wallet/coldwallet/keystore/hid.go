// Adapted for Theta
// Copyright 2017 The go-ethereum Authors
// This file is part of the go-ethereum library.
//
// The go-ethereum library is free software: you can redistribute it and/or modify
// it under the terms of the GNU Lesser General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
//
// The go-ethereum library is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE. See the
// GNU Lesser General Public License for more details.
//
// You should have received a copy of the GNU Lesser General Public License
// along with the go-ethereum library. If not, see <http://www.gnu.org/licenses/>.

// This file contains the USB HID framing used by Ledger devices. Every APDU is
// prefixed with its two byte length and streamed in 64 byte packets, each
// starting with the channel ID, the APDU command tag and a sequence index.

package keystore

import (
	"encoding/binary"
	"io"

	"github.com/davecgh/go-spew/spew"
	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"
)

const (
	hidPacketSize   = 64
	hidChannel      = 0x0101
	hidTagAPDU      = 0x05
	hidHeaderSize   = 5
	hidLengthPrefix = 2
)

// hidExchanger implements Exchanger over a Ledger USB HID connection.
type hidExchanger struct {
	device io.ReadWriter // USB device connection to communicate through
}

// NewHIDExchanger wraps an opened HID device.
func NewHIDExchanger(device io.ReadWriter) Exchanger {
	return &hidExchanger{device: device}
}

// Exchange implements Exchanger.
func (e *hidExchanger) Exchange(apdu []byte) ([]byte, error) {
	if err := e.write(apdu); err != nil {
		return nil, err
	}
	return e.read()
}

func (e *hidExchanger) write(apdu []byte) error {
	if len(apdu) > 0xffff {
		return errors.Errorf("apdu of %d bytes does not fit the HID length prefix", len(apdu))
	}
	payload := make([]byte, hidLengthPrefix, hidLengthPrefix+len(apdu))
	binary.BigEndian.PutUint16(payload, uint16(len(apdu)))
	payload = append(payload, apdu...)

	header := []byte{hidChannel >> 8, hidChannel & 0xff, hidTagAPDU, 0x00, 0x00}
	chunk := make([]byte, 0, hidPacketSize)
	space := hidPacketSize - hidHeaderSize
	for i := 0; len(payload) > 0; i++ {
		chunk = append(chunk[:0], header...)
		binary.BigEndian.PutUint16(chunk[3:], uint16(i))
		if len(payload) > space {
			chunk = append(chunk, payload[:space]...)
			payload = payload[space:]
		} else {
			chunk = append(chunk, payload...)
			payload = nil
		}
		traceChunk("HID chunk sent to the Ledger", chunk)
		if _, err := e.device.Write(chunk); err != nil {
			return err
		}
	}
	return nil
}

func (e *hidExchanger) read() ([]byte, error) {
	var reply []byte
	chunk := make([]byte, hidPacketSize)
	for seq := 0; ; seq++ {
		if _, err := io.ReadFull(e.device, chunk); err != nil {
			return nil, err
		}
		traceChunk("HID chunk received from the Ledger", chunk)

		if binary.BigEndian.Uint16(chunk[0:2]) != hidChannel || chunk[2] != hidTagAPDU {
			return nil, ErrInvalidHIDReply
		}
		if int(binary.BigEndian.Uint16(chunk[3:5])) != seq {
			return nil, errors.Wrapf(ErrInvalidHIDReply, "expected sequence %d, got %d", seq, binary.BigEndian.Uint16(chunk[3:5]))
		}
		// The first chunk carries the total reply length
		var payload []byte
		if seq == 0 {
			reply = make([]byte, 0, int(binary.BigEndian.Uint16(chunk[hidHeaderSize:hidHeaderSize+hidLengthPrefix])))
			payload = chunk[hidHeaderSize+hidLengthPrefix:]
		} else {
			payload = chunk[hidHeaderSize:]
		}
		if left := cap(reply) - len(reply); left > len(payload) {
			reply = append(reply, payload...)
		} else {
			reply = append(reply, payload[:left]...)
			break
		}
	}
	return reply, nil
}

func traceChunk(msg string, chunk []byte) {
	if logger.Logger.IsLevelEnabled(log.TraceLevel) {
		logger.Tracef("%s\n%s", msg, spew.Sdump(chunk))
	}
}
