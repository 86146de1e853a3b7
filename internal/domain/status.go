package domain

// Status classifies a measurement against the user's threshold bands.
type Status string

const (
	StatusNormal   Status = "normal"
	StatusWarning  Status = "warning"
	StatusCritical Status = "critical"
)

// Band is a per-metric {min, max} pair defining the normal range.
type Band struct {
	Min float64 `json:"min"`
	Max float64 `json:"max"`
}

// Classify maps a value to a status against the band. The banding is
// asymmetric: 10% tolerance below Min, 20% tolerance above Max.
//
//	normal:   Min <= v <= Max
//	warning:  Min*0.9 <= v < Min, or Max < v <= Max*1.2
//	critical: everything else
func (b Band) Classify(v float64) Status {
	if v >= b.Min && v <= b.Max {
		return StatusNormal
	}
	if v >= b.Min*0.9 && v < b.Min {
		return StatusWarning
	}
	if v > b.Max && v <= b.Max*1.2 {
		return StatusWarning
	}
	return StatusCritical
}

// WorstStatus returns the more severe of two statuses.
func WorstStatus(a, b Status) Status {
	if a == StatusCritical || b == StatusCritical {
		return StatusCritical
	}
	if a == StatusWarning || b == StatusWarning {
		return StatusWarning
	}
	return StatusNormal
}

// Thresholds holds the user's personal normal ranges. Glucose is in mg/dL,
// pressure bands in mmHg.
type Thresholds struct {
	Glucose   Band `json:"glucose"`
	Systolic  Band `json:"systolic"`
	Diastolic Band `json:"diastolic"`
}

// DefaultThresholds returns the bands used until the user sets their own.
func DefaultThresholds() Thresholds {
	return Thresholds{
		Glucose:   Band{Min: 70, Max: 100},
		Systolic:  Band{Min: 90, Max: 120},
		Diastolic: Band{Min: 60, Max: 80},
	}
}

// ClassifyPressure classifies systolic and diastolic independently and
// combines them, worst status winning.
func (t Thresholds) ClassifyPressure(systolic, diastolic float64) Status {
	return WorstStatus(t.Systolic.Classify(systolic), t.Diastolic.Classify(diastolic))
}
