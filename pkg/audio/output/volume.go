// ABOUTME: Software volume for outputs
// ABOUTME: Thread-safe volume state and sample scaling with clipping
package output

import (
	"log"
	"sync"

	"github.com/Resonate-Protocol/resonate-speex/pkg/audio"
)

// volume holds software volume state shared between the writer and a
// control goroutine
type volume struct {
	mu    sync.RWMutex
	level int
	muted bool
}

func newVolume() *volume {
	return &volume{level: 100}
}

// SetVolume sets the volume (0-100)
func (v *volume) SetVolume(level int) {
	if level < 0 {
		level = 0
	}
	if level > 100 {
		level = 100
	}
	v.mu.Lock()
	v.level = level
	v.mu.Unlock()
	log.Printf("Volume set to %d", level)
}

// SetMuted sets mute state
func (v *volume) SetMuted(muted bool) {
	v.mu.Lock()
	v.muted = muted
	v.mu.Unlock()
	log.Printf("Muted: %v", muted)
}

// GetVolume returns current volume
func (v *volume) GetVolume() int {
	v.mu.RLock()
	defer v.mu.RUnlock()
	return v.level
}

// IsMuted returns mute state
func (v *volume) IsMuted() bool {
	v.mu.RLock()
	defer v.mu.RUnlock()
	return v.muted
}

func (v *volume) apply(samples []int32) []int32 {
	v.mu.RLock()
	level, muted := v.level, v.muted
	v.mu.RUnlock()
	return applyVolume(samples, level, muted)
}

// applyVolume applies volume and mute to samples with clipping protection
func applyVolume(samples []int32, volume int, muted bool) []int32 {
	multiplier := getVolumeMultiplier(volume, muted)

	result := make([]int32, len(samples))
	for i, sample := range samples {
		scaled := int64(float64(sample) * multiplier)

		// Clamp to 24-bit range to prevent overflow
		if scaled > audio.Max24Bit {
			scaled = audio.Max24Bit
		} else if scaled < audio.Min24Bit {
			scaled = audio.Min24Bit
		}

		result[i] = int32(scaled)
	}

	return result
}

// getVolumeMultiplier calculates volume multiplier
func getVolumeMultiplier(volume int, muted bool) float64 {
	if muted {
		return 0.0
	}
	return float64(volume) / 100.0
}
