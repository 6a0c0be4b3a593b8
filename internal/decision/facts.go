package decision

import "time"

const (
	reasonVisit     = "visit"
	reasonTransit   = "transit"
	reasonReturning = "returning"

	// visaValidityDays is two years of 365 days. The window is inclusive and
	// applies in both directions around the evaluation date.
	visaValidityDays = 2 * 365
)

// Facts are the per-entry observations the rule book conditions read.
type Facts struct {
	MedicalAdvisory bool `expr:"medical_advisory" json:"medical_advisory"`
	Watchlisted     bool `expr:"watchlisted" json:"watchlisted"`
	Malformed       bool `expr:"malformed" json:"malformed"`
	VisaRequired    bool `expr:"visa_required" json:"visa_required"`
	VisaValid       bool `expr:"visa_valid" json:"visa_valid"`
	Returning       bool `expr:"returning" json:"returning"`
	FromHome        bool `expr:"from_home" json:"from_home"`
}

// gatherFacts inspects one entry against the index. validationErr is the
// result of ValidateEntry for the same entry.
func gatherFacts(e Entry, idx *ReferenceIndex, homeCountry string, today time.Time, validationErr error) Facts {
	reason := Fold(e.EntryReason)
	from := Fold(e.From.Country)

	f := Facts{
		MedicalAdvisory: idx.UnderMedicalAdvisory(from),
		Watchlisted:     idx.Watched(e),
		Malformed:       validationErr != nil,
		Returning:       reason == reasonReturning,
		FromHome:        from != "" && from == homeCountry,
	}

	switch reason {
	case reasonVisit:
		f.VisaRequired = idx.RequiresVisitorVisa(e.Home.Country)
	case reasonTransit:
		f.VisaRequired = idx.RequiresTransitVisa(e.Home.Country)
	}
	if f.VisaRequired {
		f.VisaValid = visaCurrent(e.Visa, today)
	}

	return f
}

// visaCurrent reports whether v carries a date within visaValidityDays of
// today. A missing visa or an unparseable date is never current.
func visaCurrent(v *Visa, today time.Time) bool {
	if v == nil {
		return false
	}
	issued, err := ParseISODate(v.Date)
	if err != nil {
		return false
	}
	days := daysBetween(issued, today)
	if days < 0 {
		days = -days
	}
	return days <= visaValidityDays
}

func daysBetween(from, to time.Time) int {
	return int((dateOnly(to).Unix() - dateOnly(from).Unix()) / 86400)
}

func dateOnly(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
