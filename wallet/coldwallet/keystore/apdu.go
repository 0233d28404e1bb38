package keystore

import (
	"encoding/binary"
	"fmt"
	"math"

	"github.com/pkg/errors"
)

// Lumina app command class.
const CLA byte = 0xe0

// Instruction identifies the command sent to the Lumina app.
type Instruction byte

const (
	InsGetPublicKey        Instruction = 0x02
	InsSignTransaction     Instruction = 0x04
	InsGetConfig           Instruction = 0x06
	InsSignTransactionHash Instruction = 0x08
	InsKeepAlive           Instruction = 0x10
)

func (ins Instruction) String() string {
	switch ins {
	case InsGetPublicKey:
		return "GetPublicKey"
	case InsSignTransaction:
		return "SignTransaction"
	case InsGetConfig:
		return "GetConfig"
	case InsSignTransactionHash:
		return "SignTransactionHash"
	case InsKeepAlive:
		return "KeepAlive"
	}
	return fmt.Sprintf("Instruction(0x%02x)", byte(ins))
}

// Parameters of the multi-frame transfer.
const (
	P1First byte = 0x00
	P1More  byte = 0x80
	P2Last  byte = 0x00
	P2More  byte = 0x80
)

const (
	// APDUMaxSize bounds the payload of a transaction frame, leaving room for
	// the APDU and HID headers inside the device's receive buffer.
	APDUMaxSize = 150

	// TxMaxSize is the largest transaction the Lumina app accepts.
	TxMaxSize = 1540

	apduHeaderSize = 5
)

// StatusWord is the two byte code terminating every response.
type StatusWord uint16

const (
	SWOK                        StatusWord = 0x9000
	SWUserCancelled             StatusWord = 0x6985
	SWUnknownOperation          StatusWord = 0x6c24
	SWMultiOperationTransaction StatusWord = 0x6c25
	SWSafeModeRequired          StatusWord = 0x6c66
	SWUnsupported               StatusWord = 0x6d00
	SWKeepAlive                 StatusWord = 0x6e02
)

func (sw StatusWord) String() string {
	var name string
	switch sw {
	case SWOK:
		name = "OK"
	case SWUserCancelled:
		name = "UserCancelled"
	case SWUnknownOperation:
		name = "UnknownOperation"
	case SWMultiOperationTransaction:
		name = "MultiOperationTransaction"
	case SWSafeModeRequired:
		name = "SafeModeRequired"
	case SWUnsupported:
		name = "Unsupported"
	case SWKeepAlive:
		name = "KeepAlive"
	default:
		return fmt.Sprintf("0x%04x", uint16(sw))
	}
	return fmt.Sprintf("0x%04x (%s)", uint16(sw), name)
}

// ParseStatusWord splits a raw response into its body and trailing status.
func ParseStatusWord(response []byte) ([]byte, StatusWord, error) {
	if len(response) < 2 {
		return nil, 0, errors.Wrapf(ErrInvalidResponse, "response of %d bytes lacks a status word", len(response))
	}
	n := len(response) - 2
	return response[:n], StatusWord(binary.BigEndian.Uint16(response[n:])), nil
}

//
// Frame is a single command APDU
//
type Frame struct {
	Class       byte
	Instruction Instruction
	P1          byte
	P2          byte
	Data        []byte
}

// First reports whether the frame opens a multi-frame transfer.
func (f Frame) First() bool {
	return f.P1 == P1First
}

// Last reports whether the frame closes a multi-frame transfer.
func (f Frame) Last() bool {
	return f.P2 == P2Last
}

// Bytes serializes the frame as cla, ins, p1, p2, length, data.
func (f Frame) Bytes() ([]byte, error) {
	if len(f.Data) > math.MaxUint8 {
		return nil, errors.Errorf("apdu payload of %d bytes exceeds %d", len(f.Data), math.MaxUint8)
	}
	buf := make([]byte, apduHeaderSize, apduHeaderSize+len(f.Data))
	buf[0] = f.Class
	buf[1] = byte(f.Instruction)
	buf[2] = f.P1
	buf[3] = f.P2
	buf[4] = byte(len(f.Data))
	return append(buf, f.Data...), nil
}

func newFrame(ins Instruction, p1, p2 byte, data []byte) Frame {
	return Frame{Class: CLA, Instruction: ins, P1: p1, P2: p2, Data: data}
}

func flag(b bool) byte {
	if b {
		return 0x01
	}
	return 0x00
}
