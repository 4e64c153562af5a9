package overlay

import "math"

// FPS is the project's fixed frame rate.
const FPS = 30

// DurationInFrames derives the total timeline length from the collection:
// the furthest overlay end, floored at exactly one second of frames. An empty
// collection therefore yields FPS frames.
func DurationInFrames(c Collection) int {
	duration := FPS
	for _, o := range c {
		if end := o.From + o.DurationInFrames; end > duration {
			duration = end
		}
	}
	return duration
}

// FramesToSeconds converts a frame count to seconds at the fixed rate.
func FramesToSeconds(frames int) float64 {
	return float64(frames) / float64(FPS)
}

// SecondsToFrames converts seconds to the nearest whole frame at the fixed rate.
func SecondsToFrames(seconds float64) int {
	return int(math.Round(seconds * float64(FPS)))
}
