package powernotify

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGUIDRoundTrip(t *testing.T) {
	for _, topic := range DefaultTopics {
		u := uuid.UUID(topic)
		b := EncodeGUID(u)
		assert.Equal(t, u, DecodeGUID(b[:]), topic.Name())
	}
}

func TestEncodeGUID_Layout(t *testing.T) {
	b := EncodeGUID(uuid.UUID(TopicPowerSource))
	// 5d3e9a59-e9d5-4b00-a6bd-ff34ff516548
	want := []byte{0x59, 0x9a, 0x3e, 0x5d, 0xd5, 0xe9, 0x00, 0x4b, 0xa6, 0xbd, 0xff, 0x34, 0xff, 0x51, 0x65, 0x48}
	assert.Equal(t, want, b[:])
}

func TestTopicName(t *testing.T) {
	assert.Equal(t, "power-source", TopicPowerSource.Name())
	assert.Equal(t, "remaining-battery", TopicRemainingBattery.Name())
	assert.Equal(t, "display-state", TopicDisplayState.Name())
	assert.Equal(t, "power-plan", TopicPowerPlan.Name())

	other := Topic(uuid.MustParse("00000000-0000-0000-0000-000000000001"))
	assert.Equal(t, "00000000-0000-0000-0000-000000000001", other.Name())
}

func TestReadEnvelope(t *testing.T) {
	msg := EncodeRaw(TopicPowerPlan, 16, make([]byte, 16))
	env, err := ReadEnvelope(msg)
	require.NoError(t, err)
	assert.Equal(t, TopicPowerPlan, env.Topic)
	assert.Equal(t, uint32(16), env.Length)
}

func TestEnumStrings(t *testing.T) {
	assert.Equal(t, "Battery", PowerSourceBattery.String())
	assert.Equal(t, "PowerSource(9)", PowerSource(9).String())
	assert.Equal(t, "Dimmed", DisplayDimmed.String())
}
