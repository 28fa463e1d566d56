// Package powernotify decodes Windows power-setting broadcasts into typed events.
//
// A Decoder registers a set of power-setting topics for a recipient window,
// decodes each POWERBROADCAST_SETTING the window receives and calls the
// handler for that topic synchronously on the calling goroutine.
package powernotify

import (
	"encoding/binary"

	"github.com/google/uuid"
)

// Topic identifies a category of power-setting broadcast.
type Topic uuid.UUID

// Power-setting topics understood by the decoder. The values are the
// GUID_* constants from winnt.h and must match exactly.
var (
	TopicPowerSource      = Topic(uuid.MustParse("5d3e9a59-e9d5-4b00-a6bd-ff34ff516548")) // GUID_ACDC_POWER_SOURCE
	TopicRemainingBattery = Topic(uuid.MustParse("a7ad8041-b45a-4cae-87a3-eecbb468a9e1")) // GUID_BATTERY_PERCENTAGE_REMAINING
	TopicDisplayState     = Topic(uuid.MustParse("6fe69556-704a-47a0-8f24-c28d936fda47")) // GUID_CONSOLE_DISPLAY_STATE
	TopicPowerPlan        = Topic(uuid.MustParse("245d8541-3943-4422-b025-13a784f679b7")) // GUID_POWERSCHEME_PERSONALITY
)

// DefaultTopics is the subscription list used by the tray.
var DefaultTopics = []Topic{
	TopicPowerSource,
	TopicRemainingBattery,
	TopicPowerPlan,
	TopicDisplayState,
}

// String returns the canonical GUID form of the topic.
func (t Topic) String() string {
	return uuid.UUID(t).String()
}

// Name returns a short human readable name for known topics.
func (t Topic) Name() string {
	switch t {
	case TopicPowerSource:
		return "power-source"
	case TopicRemainingBattery:
		return "remaining-battery"
	case TopicDisplayState:
		return "display-state"
	case TopicPowerPlan:
		return "power-plan"
	default:
		return t.String()
	}
}

// GUIDSize is the in-memory size of a Windows GUID.
const GUIDSize = 16

// DecodeGUID reads a GUID stored in Windows memory layout: Data1 as a
// little-endian uint32, Data2 and Data3 as little-endian uint16, Data4 as
// eight raw bytes. b must hold at least GUIDSize bytes.
func DecodeGUID(b []byte) uuid.UUID {
	var u uuid.UUID
	binary.BigEndian.PutUint32(u[0:4], binary.LittleEndian.Uint32(b[0:4]))
	binary.BigEndian.PutUint16(u[4:6], binary.LittleEndian.Uint16(b[4:6]))
	binary.BigEndian.PutUint16(u[6:8], binary.LittleEndian.Uint16(b[6:8]))
	copy(u[8:], b[8:16])
	return u
}

// EncodeGUID is the inverse of DecodeGUID.
func EncodeGUID(u uuid.UUID) [GUIDSize]byte {
	var b [GUIDSize]byte
	binary.LittleEndian.PutUint32(b[0:4], binary.BigEndian.Uint32(u[0:4]))
	binary.LittleEndian.PutUint16(b[4:6], binary.BigEndian.Uint16(u[4:6]))
	binary.LittleEndian.PutUint16(b[6:8], binary.BigEndian.Uint16(u[6:8]))
	copy(b[8:], u[8:])
	return b
}
