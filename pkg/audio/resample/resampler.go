// ABOUTME: Linear resampler for converting decoded audio to an output rate
// ABOUTME: Keeps the last input frame so consecutive chunks join without gaps
package resample

import "math"

// Resampler performs linear interpolation to convert between sample rates
type Resampler struct {
	inputRate  int
	outputRate int
	channels   int
	ratio      float64

	// position of the next output frame, in input frames relative to the
	// start of the next chunk. -1 addresses lastFrame.
	position  float64
	lastFrame []int32
}

// New creates a new resampler
func New(inputRate, outputRate, channels int) *Resampler {
	return &Resampler{
		inputRate:  inputRate,
		outputRate: outputRate,
		channels:   channels,
		ratio:      float64(inputRate) / float64(outputRate),
		lastFrame:  make([]int32, channels),
	}
}

// Passthrough reports whether input and output rates match
func (r *Resampler) Passthrough() bool {
	return r.inputRate == r.outputRate
}

// MaxOutput returns an output buffer length large enough for inputSamples
// interleaved input samples
func (r *Resampler) MaxOutput(inputSamples int) int {
	frames := inputSamples/r.channels + 1
	return (int(math.Ceil(float64(frames)/r.ratio)) + 1) * r.channels
}

// Resample converts interleaved input samples at the input rate to
// interleaved output samples at the output rate and returns the number of
// output samples written. output should hold MaxOutput(len(input)) samples;
// a shorter buffer drops the frames that do not fit.
func (r *Resampler) Resample(input []int32, output []int32) int {
	inputFrames := len(input) / r.channels
	if inputFrames == 0 {
		return 0
	}
	if r.Passthrough() {
		return copy(output, input[:inputFrames*r.channels])
	}

	frame := func(idx, ch int) int32 {
		if idx < 0 {
			return r.lastFrame[ch]
		}
		return input[idx*r.channels+ch]
	}

	outputFrames := len(output) / r.channels
	outIdx := 0
	for outIdx < outputFrames {
		idx := int(math.Floor(r.position))
		if idx+1 >= inputFrames {
			break
		}
		frac := r.position - float64(idx)

		for ch := 0; ch < r.channels; ch++ {
			s1 := frame(idx, ch)
			s2 := frame(idx+1, ch)
			output[outIdx*r.channels+ch] = int32(float64(s1)*(1.0-frac) + float64(s2)*frac)
		}

		outIdx++
		r.position += r.ratio
	}

	// The next chunk sees this chunk's last frame at index -1
	r.position -= float64(inputFrames)
	if r.position < -1 {
		r.position = -1
	}
	copy(r.lastFrame, input[(inputFrames-1)*r.channels:inputFrames*r.channels])

	return outIdx * r.channels
}

// Reset resets the resampler state
func (r *Resampler) Reset() {
	r.position = 0.0
	for i := range r.lastFrame {
		r.lastFrame[i] = 0
	}
}
