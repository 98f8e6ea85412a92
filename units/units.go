// Package units converts Garmin's vendor-native units to canonical ones and
// formats elapsed-time values. Every function is total: null, zero and
// malformed input yield a defined default instead of an error.
package units

import (
	"fmt"
	"math"
	"strconv"
	"strings"
)

// CmToKm converts the summarized-activities distance feed (centimeters) to
// kilometers. The per-activity feed stores meters instead — see MToKm. The
// two divisors are distinct vendor encodings and must not be conflated.
func CmToKm(v float64) float64 { return v / 100000 }

// MToKm converts the per-activity extraction feed distance (meters) to
// kilometers.
func MToKm(v float64) float64 { return v / 1000 }

// MsToSeconds converts a vendor duration (milliseconds) to seconds.
func MsToSeconds(v float64) float64 { return v / 1000 }

// CmPerMsToMPerS converts a vendor speed (cm/ms) to m/s.
func CmPerMsToMPerS(v float64) float64 { return v * 10 }

// CmToM converts a vendor elevation (centimeters) to meters.
func CmToM(v float64) float64 { return v / 100 }

// FormatDuration renders a second count as "H:MM:SS" with zero-padded
// minutes and seconds and no leading zero on hours. Zero, negative and NaN
// input all yield "0:00:00".
func FormatDuration(seconds float64) string {
	if seconds <= 0 || math.IsNaN(seconds) || math.IsInf(seconds, 0) {
		return "0:00:00"
	}
	total := int(seconds)
	hours := total / 3600
	minutes := (total % 3600) / 60
	secs := total % 60
	return fmt.Sprintf("%d:%02d:%02d", hours, minutes, secs)
}

// FormatPace converts a speed in m/s to a per-kilometer "MM:SS" pace string.
// Zero, negative and NaN speed all yield "0:00".
func FormatPace(speedMps float64) string {
	if speedMps <= 0 || math.IsNaN(speedMps) || math.IsInf(speedMps, 0) {
		return "0:00"
	}
	paceSeconds := 1000 / speedMps
	minutes := int(paceSeconds) / 60
	secs := int(paceSeconds) % 60
	return fmt.Sprintf("%d:%02d", minutes, secs)
}

// DropFraction strips sub-second fractional text from a clock value, e.g.
// "4:53.2" becomes "4:53". Values without a dot pass through unchanged.
func DropFraction(s string) string {
	if i := strings.Index(s, "."); i >= 0 {
		return s[:i]
	}
	return s
}

// StandardizeClock widens "MM:SS" to "0:MM:SS". Values already in "H:MM:SS"
// form, and values without a colon, pass through unchanged.
func StandardizeClock(s string) string {
	parts := strings.Split(s, ":")
	if len(parts) == 2 {
		return "0:" + parts[0] + ":" + parts[1]
	}
	return s
}

// ParseClock converts "MM:SS" or "H:MM:SS" to a total second count. The
// second return is false for anything else.
func ParseClock(s string) (int, bool) {
	parts := strings.Split(strings.TrimSpace(s), ":")
	if len(parts) != 2 && len(parts) != 3 {
		return 0, false
	}
	total := 0
	for _, p := range parts {
		n, err := strconv.Atoi(strings.TrimSpace(p))
		if err != nil || n < 0 {
			return 0, false
		}
		total = total*60 + n
	}
	return total, true
}

// Round1 rounds to one decimal place.
func Round1(v float64) float64 { return math.Round(v*10) / 10 }

// Round2 rounds to two decimal places.
func Round2(v float64) float64 { return math.Round(v*100) / 100 }
