package core

// AlertThresholdPercent is the deviation (in percent) a unit price must
// exceed, in either direction, before an alert fires. Keeps negligible
// rounding differences from producing noise.
const AlertThresholdPercent = 5.0

// AlertLevel classifies a record's unit price against its reference.
type AlertLevel string

const (
	AlertOver  AlertLevel = "over"
	AlertUnder AlertLevel = "under"
	AlertNone  AlertLevel = "none"
)

// Alert is the classification outcome for one record, carrying the
// numbers the presentation layer needs for a badge.
type Alert struct {
	Level     AlertLevel
	Deviation float64 // percent difference against the reference
	Reference float64 // reference average used, 0 when unknown
}

// Classify compares a record's unit price to the reference average for
// its description. Alerts require both a positive observed price and a
// known positive reference; otherwise the level is AlertNone.
func Classify(r Record, averages ReferenceAverages) Alert {
	reference, ok := averages[r.Description]
	if !ok || reference <= 0 || r.Price <= 0 {
		return Alert{Level: AlertNone}
	}

	deviation := (r.Price - reference) / reference * 100
	alert := Alert{Level: AlertNone, Deviation: deviation, Reference: reference}
	switch {
	case deviation > AlertThresholdPercent:
		alert.Level = AlertOver
	case deviation < -AlertThresholdPercent:
		alert.Level = AlertUnder
	}
	return alert
}
