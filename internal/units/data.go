package units

import (
	"math"
	"regexp"
	"strconv"
	"strings"
)

// VoiceOnlyThresholdGB is the allowance below which a plan counts as voice only.
const VoiceOnlyThresholdGB = 0.05

var (
	gbPattern = regexp.MustCompile(`(?i)(\d+(?:\.\d+)?)\s*GB`)
	mbPattern = regexp.MustCompile(`(?i)(\d+(?:\.\d+)?)\s*MB`)
)

// DataAllowance is a parsed data string.
type DataAllowance struct {
	GB     float64
	Known  bool
	Absent bool
}

// Unlimited reports whether the allowance is unbounded.
func (d DataAllowance) Unlimited() bool {
	return d.Known && math.IsInf(d.GB, 1)
}

// ParseDataAllowance understands "unlimited", "<n> GB" and "<n> MB".
// Anything else is unknown; an empty string is absent.
func ParseDataAllowance(text string) DataAllowance {
	s := strings.TrimSpace(text)
	if s == "" {
		return DataAllowance{Absent: true}
	}
	if strings.Contains(strings.ToLower(s), "unlimited") {
		return DataAllowance{GB: math.Inf(1), Known: true}
	}
	if m := gbPattern.FindStringSubmatch(s); m != nil {
		if v, err := strconv.ParseFloat(m[1], 64); err == nil {
			return DataAllowance{GB: v, Known: true}
		}
	}
	if m := mbPattern.FindStringSubmatch(s); m != nil {
		if v, err := strconv.ParseFloat(m[1], 64); err == nil {
			return DataAllowance{GB: v / 1024, Known: true}
		}
	}
	return DataAllowance{}
}
