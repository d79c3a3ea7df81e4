package sensor

import "testing"

func floatPtr(f float64) *float64 { return &f }

func TestEvaluate(t *testing.T) {
	tests := []struct {
		name            string
		reading         Reading
		soundAlert      bool
		brightnessAlert bool
		tipCount        int
	}{
		{name: "no readings", reading: Reading{}},
		{name: "calm environment", reading: Reading{Sound: floatPtr(30), Brightness: floatPtr(40)}},
		{name: "loud only", reading: Reading{Sound: floatPtr(85)}, soundAlert: true, tipCount: 1},
		{name: "bright only", reading: Reading{Brightness: floatPtr(95)}, brightnessAlert: true, tipCount: 1},
		{name: "both over", reading: Reading{Sound: floatPtr(71), Brightness: floatPtr(81)}, soundAlert: true, brightnessAlert: true, tipCount: 2},
		{name: "exactly at thresholds", reading: Reading{Sound: floatPtr(SoundAlertThreshold), Brightness: floatPtr(BrightnessAlertThreshold)}},
		{name: "zero values", reading: Reading{Sound: floatPtr(0), Brightness: floatPtr(0)}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			check := Evaluate(tt.reading)

			if check.SoundAlert != tt.soundAlert {
				t.Errorf("Expected sound alert %v, got %v", tt.soundAlert, check.SoundAlert)
			}
			if check.BrightnessAlert != tt.brightnessAlert {
				t.Errorf("Expected brightness alert %v, got %v", tt.brightnessAlert, check.BrightnessAlert)
			}
			if len(check.Tips) != tt.tipCount {
				t.Errorf("Expected %d tips, got %d", tt.tipCount, len(check.Tips))
			}

			// Tips must always serialize as a list, never null.
			if check.Tips == nil {
				t.Error("Tips should never be nil")
			}
		})
	}
}
