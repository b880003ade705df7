package alarm

import (
	"bytes"
	"encoding/binary"
	"math"
	"time"

	"github.com/tartampluch/go-medreminder/internal/config"
)

// Tone describes one beep: a sine at Frequency whose gain decays
// exponentially from Gain to FloorGain over Duration.
type Tone struct {
	Frequency  float64
	Gain       float64
	FloorGain  float64
	Duration   time.Duration
	SampleRate int
}

// DefaultTone is the alarm beep.
var DefaultTone = Tone{
	Frequency:  config.ToneFrequencyHz,
	Gain:       config.ToneGain,
	FloorGain:  config.ToneFloorGain,
	Duration:   config.ToneDuration,
	SampleRate: config.ToneSampleRate,
}

// Envelope returns the gain at offset t into the beep.
func (t Tone) Envelope(at time.Duration) float64 {
	if at <= 0 {
		return t.Gain
	}
	if at >= t.Duration {
		return t.FloorGain
	}
	ratio := float64(at) / float64(t.Duration)
	return t.Gain * math.Pow(t.FloorGain/t.Gain, ratio)
}

// Samples renders the beep as signed 16-bit mono PCM.
func (t Tone) Samples() []int16 {
	n := int(float64(t.SampleRate) * t.Duration.Seconds())
	out := make([]int16, n)
	for i := range out {
		at := time.Duration(float64(i) / float64(t.SampleRate) * float64(time.Second))
		v := t.Envelope(at) * math.Sin(2*math.Pi*t.Frequency*float64(i)/float64(t.SampleRate))
		out[i] = int16(v * math.MaxInt16)
	}
	return out
}

// WAV encodes Samples as a canonical RIFF/WAVE file.
func (t Tone) WAV() []byte {
	samples := t.Samples()
	const (
		channels      = 1
		bitsPerSample = 16
	)
	blockAlign := channels * bitsPerSample / 8
	dataLen := len(samples) * blockAlign

	var buf bytes.Buffer
	buf.Grow(44 + dataLen)
	buf.WriteString("RIFF")
	_ = binary.Write(&buf, binary.LittleEndian, uint32(36+dataLen))
	buf.WriteString("WAVE")
	buf.WriteString("fmt ")
	_ = binary.Write(&buf, binary.LittleEndian, uint32(16))
	_ = binary.Write(&buf, binary.LittleEndian, uint16(1)) // PCM
	_ = binary.Write(&buf, binary.LittleEndian, uint16(channels))
	_ = binary.Write(&buf, binary.LittleEndian, uint32(t.SampleRate))
	_ = binary.Write(&buf, binary.LittleEndian, uint32(t.SampleRate*blockAlign))
	_ = binary.Write(&buf, binary.LittleEndian, uint16(blockAlign))
	_ = binary.Write(&buf, binary.LittleEndian, uint16(bitsPerSample))
	buf.WriteString("data")
	_ = binary.Write(&buf, binary.LittleEndian, uint32(dataLen))
	_ = binary.Write(&buf, binary.LittleEndian, samples)
	return buf.Bytes()
}
