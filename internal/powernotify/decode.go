package powernotify

import (
	"encoding/binary"
	"fmt"

	"github.com/google/uuid"
)

// EnvelopeSize is the size of the POWERBROADCAST_SETTING header: the
// setting GUID followed by a uint32 data length.
const EnvelopeSize = GUIDSize + 4

// Window message values for power broadcasts.
const (
	WMPowerBroadcast        = 0x0218
	PBTAPMPowerStatusChange = 0x000A
	PBTPowerSettingChange   = 0x8013
)

const dwordSize = 4

// expectedSize returns the payload size for a known topic.
func expectedSize(t Topic) (uint32, bool) {
	switch t {
	case TopicPowerSource, TopicRemainingBattery, TopicDisplayState:
		return dwordSize, true
	case TopicPowerPlan:
		return GUIDSize, true
	default:
		return 0, false
	}
}

// Envelope is the decoded header of a power-setting broadcast.
type Envelope struct {
	Topic  Topic
	Length uint32
}

// ReadEnvelope decodes the header at the front of msg.
func ReadEnvelope(msg []byte) (Envelope, error) {
	if len(msg) < EnvelopeSize {
		return Envelope{}, &DecodeError{Err: fmt.Errorf("%w: %d byte envelope", ErrTruncated, len(msg))}
	}
	return Envelope{
		Topic:  Topic(DecodeGUID(msg[:GUIDSize])),
		Length: binary.LittleEndian.Uint32(msg[GUIDSize:EnvelopeSize]),
	}, nil
}

// Decode decodes a raw POWERBROADCAST_SETTING. The boolean reports whether
// the topic is known; unknown topics yield (nil, false, nil).
func Decode(msg []byte) (Event, bool, error) {
	env, err := ReadEnvelope(msg)
	if err != nil {
		return nil, false, err
	}

	want, known := expectedSize(env.Topic)
	if !known {
		return nil, false, nil
	}
	if env.Length != want {
		return nil, true, &DecodeError{Topic: env.Topic, Declared: env.Length, Expected: want, Err: ErrPayloadSize}
	}
	data := msg[EnvelopeSize:]
	if uint32(len(data)) < want {
		return nil, true, &DecodeError{
			Topic:    env.Topic,
			Declared: env.Length,
			Expected: want,
			Err:      fmt.Errorf("%w: %d of %d payload bytes", ErrTruncated, len(data), want),
		}
	}

	switch env.Topic {
	case TopicPowerSource:
		return PowerSourceEvent{Source: PowerSource(readInt32(data))}, true, nil
	case TopicRemainingBattery:
		return RemainingBatteryEvent{Percent: int(readInt32(data))}, true, nil
	case TopicDisplayState:
		return DisplayStateEvent{State: DisplayState(readInt32(data))}, true, nil
	default:
		return PowerPlanEvent{Plan: DecodeGUID(data)}, true, nil
	}
}

// Encode builds the raw broadcast for ev. It is the inverse of Decode and
// is mainly useful for tests and replay tooling.
func Encode(ev Event) []byte {
	var payload []byte
	switch e := ev.(type) {
	case PowerSourceEvent:
		payload = int32Bytes(int32(e.Source))
	case RemainingBatteryEvent:
		payload = int32Bytes(int32(e.Percent))
	case DisplayStateEvent:
		payload = int32Bytes(int32(e.State))
	case PowerPlanEvent:
		g := EncodeGUID(e.Plan)
		payload = g[:]
	}
	return EncodeRaw(ev.Topic(), uint32(len(payload)), payload)
}

// EncodeRaw builds a broadcast with an arbitrary declared length.
func EncodeRaw(topic Topic, declared uint32, payload []byte) []byte {
	msg := make([]byte, EnvelopeSize+len(payload))
	g := EncodeGUID(uuid.UUID(topic))
	copy(msg, g[:])
	binary.LittleEndian.PutUint32(msg[GUIDSize:EnvelopeSize], declared)
	copy(msg[EnvelopeSize:], payload)
	return msg
}

func readInt32(b []byte) int32 {
	return int32(binary.LittleEndian.Uint32(b[:dwordSize]))
}

func int32Bytes(v int32) []byte {
	b := make([]byte, dwordSize)
	binary.LittleEndian.PutUint32(b, uint32(v))
	return b
}
