// Package sensor implements the rule-based sensory trigger heuristics.
// Readings arrive anonymously; nothing here touches storage or identity.
package sensor

const (
	// SoundAlertThreshold is the ambient sound level above which a tip is
	// suggested (0-100 scale reported by the client).
	SoundAlertThreshold = 70.0

	// BrightnessAlertThreshold is the brightness level above which a tip is
	// suggested (0-100 scale reported by the client).
	BrightnessAlertThreshold = 80.0
)

// Reading is a single ambient measurement. Nil fields mean the client did
// not report that signal.
type Reading struct {
	Sound      *float64
	Brightness *float64
}

// Check is the result of evaluating a reading against the thresholds.
type Check struct {
	SoundAlert      bool
	BrightnessAlert bool
	Tips            []string
}

// Evaluate applies the threshold checks to a reading.
func Evaluate(r Reading) Check {
	check := Check{Tips: []string{}}

	if r.Sound != nil && *r.Sound > SoundAlertThreshold {
		check.SoundAlert = true
		check.Tips = append(check.Tips,
			"High sound level detected. Consider ear protection or taking a short break.")
	}

	if r.Brightness != nil && *r.Brightness > BrightnessAlertThreshold {
		check.BrightnessAlert = true
		check.Tips = append(check.Tips,
			"Intense brightness detected. Reducing screen or room lighting may help.")
	}

	return check
}
