package keystore

import (
	"bytes"
	"context"
	"encoding/binary"
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHIDExchangeShortAPDU(t *testing.T) {
	assert := assert.New(t)
	apdu := []byte{0xe0, 0x06, 0x00, 0x00, 0x00}
	response := []byte{0x00, 0x01, 0x02, 0x03, 0x90, 0x00}

	device := newFakeHIDDevice(hidPackets(response))
	got, err := NewHIDExchanger(device).Exchange(apdu)
	require.Nil(t, err)
	assert.Equal(response, got)

	require.Equal(t, 1, len(device.written))
	assert.Equal(append([]byte{0x01, 0x01, 0x05, 0x00, 0x00, 0x00, 0x05}, apdu...), device.written[0])
}

func TestHIDExchangeMultiPacket(t *testing.T) {
	assert := assert.New(t)
	apdu := sequence(200)
	response := append(sequence(130), 0x90, 0x00)

	device := newFakeHIDDevice(hidPackets(response))
	got, err := NewHIDExchanger(device).Exchange(apdu)
	require.Nil(t, err)
	assert.Equal(response, got)

	// 2 length bytes + 200 apdu bytes in 59 byte slices
	require.Equal(t, 4, len(device.written))
	var payload []byte
	for i, chunk := range device.written {
		assert.True(len(chunk) <= hidPacketSize)
		assert.Equal([]byte{0x01, 0x01, 0x05}, chunk[:3])
		assert.Equal(uint16(i), binary.BigEndian.Uint16(chunk[3:5]))
		payload = append(payload, chunk[5:]...)
	}
	assert.Equal(uint16(len(apdu)), binary.BigEndian.Uint16(payload[:2]))
	assert.Equal(apdu, payload[2:])
}

func TestHIDExchangeInvalidReply(t *testing.T) {
	packets := hidPackets(append(sequence(100), 0x90, 0x00))

	badTag := copyPackets(packets)
	badTag[0][2] = 0x02
	_, err := NewHIDExchanger(newFakeHIDDevice(badTag)).Exchange([]byte{0xe0, 0x06, 0, 0, 0})
	assert.True(t, errors.Is(err, ErrInvalidHIDReply))

	badChannel := copyPackets(packets)
	badChannel[0][1] = 0x02
	_, err = NewHIDExchanger(newFakeHIDDevice(badChannel)).Exchange([]byte{0xe0, 0x06, 0, 0, 0})
	assert.True(t, errors.Is(err, ErrInvalidHIDReply))

	badSequence := copyPackets(packets)
	binary.BigEndian.PutUint16(badSequence[1][3:5], 7)
	_, err = NewHIDExchanger(newFakeHIDDevice(badSequence)).Exchange([]byte{0xe0, 0x06, 0, 0, 0})
	assert.True(t, errors.Is(err, ErrInvalidHIDReply))
}

func TestHIDExchangeTruncatedReply(t *testing.T) {
	packets := hidPackets(append(sequence(100), 0x90, 0x00))
	_, err := NewHIDExchanger(newFakeHIDDevice(packets[:1])).Exchange([]byte{0xe0, 0x06, 0, 0, 0})
	assert.NotNil(t, err)
}

func TestClientOverHID(t *testing.T) {
	assert := assert.New(t)
	signature := sequence(64)

	var packets [][]byte
	packets = append(packets, hidPackets(reply(nil, SWOK))...)
	packets = append(packets, hidPackets(reply(nil, SWOK))...)
	packets = append(packets, hidPackets(reply(signature, SWOK))...)
	device := newFakeHIDDevice(packets)

	client := NewClient(NewAPDUTransport(NewHIDExchanger(device)))
	result, err := client.SignTransaction(context.Background(), testPath, sequence(400))
	require.Nil(t, err)
	assert.Equal(signature, result.Signature)
}

// ---------------- Test Utilities ---------------- //

// fakeHIDDevice records written packets and serves prepared reply packets.
type fakeHIDDevice struct {
	written [][]byte
	replies *bytes.Buffer
}

func newFakeHIDDevice(packets [][]byte) *fakeHIDDevice {
	replies := new(bytes.Buffer)
	for _, packet := range packets {
		replies.Write(packet)
	}
	return &fakeHIDDevice{replies: replies}
}

func (d *fakeHIDDevice) Write(p []byte) (int, error) {
	d.written = append(d.written, append([]byte(nil), p...))
	return len(p), nil
}

func (d *fakeHIDDevice) Read(p []byte) (int, error) {
	return d.replies.Read(p)
}

// hidPackets frames a device reply into zero padded 64 byte packets.
func hidPackets(response []byte) [][]byte {
	payload := make([]byte, 2, 2+len(response))
	binary.BigEndian.PutUint16(payload, uint16(len(response)))
	payload = append(payload, response...)

	var packets [][]byte
	for seq := 0; len(payload) > 0; seq++ {
		packet := make([]byte, hidPacketSize)
		copy(packet, []byte{0x01, 0x01, 0x05})
		binary.BigEndian.PutUint16(packet[3:5], uint16(seq))
		n := copy(packet[5:], payload)
		payload = payload[n:]
		packets = append(packets, packet)
	}
	return packets
}

func copyPackets(packets [][]byte) [][]byte {
	out := make([][]byte, len(packets))
	for i, packet := range packets {
		out[i] = append([]byte(nil), packet...)
	}
	return out
}
