package alarm_test

import (
	"context"
	"encoding/binary"
	"math"
	"os/exec"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tartampluch/go-medreminder/internal/alarm"
	"github.com/tartampluch/go-medreminder/internal/config"
)

func TestTone_Envelope(t *testing.T) {
	tone := alarm.DefaultTone
	assert.InDelta(t, config.ToneGain, tone.Envelope(0), 1e-9)
	assert.InDelta(t, config.ToneFloorGain, tone.Envelope(tone.Duration), 1e-9)
	assert.InDelta(t, math.Sqrt(config.ToneGain*config.ToneFloorGain), tone.Envelope(tone.Duration/2), 1e-9)
	assert.Greater(t, tone.Envelope(tone.Duration/4), tone.Envelope(tone.Duration/2))
}

func TestTone_WAVHeader(t *testing.T) {
	tone := alarm.DefaultTone
	wav := tone.WAV()

	samples := int(float64(tone.SampleRate) * tone.Duration.Seconds())
	require.Len(t, wav, 44+2*samples)
	assert.Equal(t, "RIFF", string(wav[0:4]))
	assert.Equal(t, "WAVE", string(wav[8:12]))
	assert.Equal(t, "data", string(wav[36:40]))
	assert.Equal(t, uint32(tone.SampleRate), binary.LittleEndian.Uint32(wav[24:28]))
	assert.Equal(t, uint32(2*samples), binary.LittleEndian.Uint32(wav[40:44]))
}

func TestTone_SamplesStayWithinGain(t *testing.T) {
	limit := int16(config.ToneGain*math.MaxInt16) + 1
	for _, s := range alarm.DefaultTone.Samples() {
		assert.LessOrEqual(t, s, limit)
		assert.GreaterOrEqual(t, s, -limit)
	}
}

func TestCommandSpeaker_Override(t *testing.T) {
	if _, err := exec.LookPath("true"); err != nil {
		t.Skip("no true(1) on this platform")
	}
	assert.NoError(t, alarm.CommandSpeaker{Command: "true"}.Speak(context.Background(), "hello", "en-US"))
	assert.Error(t, alarm.CommandSpeaker{Command: "false"}.Speak(context.Background(), "hello", "en-US"))
}

func TestCommandTonePlayer_Override(t *testing.T) {
	if _, err := exec.LookPath("true"); err != nil {
		t.Skip("no true(1) on this platform")
	}
	p := &alarm.CommandTonePlayer{Command: "true"}
	defer func() { _ = p.Close() }()

	assert.NoError(t, p.Play(context.Background(), alarm.DefaultTone))
	assert.NoError(t, p.Play(context.Background(), alarm.DefaultTone), "the rendered file is reused")
}
