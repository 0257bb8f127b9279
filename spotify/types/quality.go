package types

import "fmt"

// Quality is the requested audio bitrate class. QualityAuto is a sentinel
// resolved at fetch time based on account entitlement.
type Quality int

const (
	QualityNormal Quality = iota
	QualityHigh
	QualityVeryHigh
	QualityAuto
)

func (q Quality) String() string {
	switch q {
	case QualityNormal:
		return "normal"
	case QualityHigh:
		return "high"
	case QualityVeryHigh:
		return "very_high"
	case QualityAuto:
		return "auto"
	}

	return "unknown"
}

func ParseQuality(s string) (Quality, error) {
	switch s {
	case "normal":
		return QualityNormal, nil
	case "high":
		return QualityHigh, nil
	case "very_high":
		return QualityVeryHigh, nil
	case "auto":
		return QualityAuto, nil
	default:
		return 0, fmt.Errorf("unknown quality %q", s)
	}
}

// Resolve maps the Auto sentinel to a concrete tier based on the account's
// premium entitlement. Concrete tiers pass through unchanged.
func (q Quality) Resolve(premium bool) Quality {
	if q != QualityAuto {
		return q
	}

	if premium {
		return QualityVeryHigh
	}

	return QualityHigh
}

// Bitrate returns the approximate bitrate class in kbps. Auto must be
// resolved first.
func (q Quality) Bitrate() int {
	switch q {
	case QualityNormal:
		return 96
	case QualityHigh:
		return 160
	case QualityVeryHigh:
		return 320
	case QualityAuto:
		panic("auto quality must be resolved before use")
	}

	panic("unexpected quality: " + q.String())
}
