package decision

type set map[string]struct{}

func (s set) add(v string) {
	if v == "" {
		return
	}
	s[v] = struct{}{}
}

func (s set) has(v string) bool {
	if v == "" {
		return false
	}
	_, ok := s[v]
	return ok
}

// ReferenceIndex holds the batch-scoped lookup sets. It is never mutated after
// NewReferenceIndex returns and may be shared between goroutines.
//
// Watchlist first and last names are indexed independently of each other, so
// a traveller sharing only a first name with a flagged person is a match.
// That widens the net on common names and is intended.
type ReferenceIndex struct {
	medical        set
	visitorVisa    set
	transitVisa    set
	watchFirstName set
	watchLastName  set
	watchPassport  set
}

func NewReferenceIndex(watchlist []WatchlistRecord, countries map[string]Country) *ReferenceIndex {
	idx := &ReferenceIndex{
		medical:        set{},
		visitorVisa:    set{},
		transitVisa:    set{},
		watchFirstName: set{},
		watchLastName:  set{},
		watchPassport:  set{},
	}

	for key, c := range countries {
		code := Fold(c.Code)
		if code == "" {
			code = Fold(key)
		}
		if c.MedicalAdvisory != "" {
			idx.medical.add(code)
		}
		if c.VisitorVisaRequired {
			idx.visitorVisa.add(code)
		}
		if c.TransitVisaRequired {
			idx.transitVisa.add(code)
		}
	}

	for _, w := range watchlist {
		idx.watchFirstName.add(Fold(w.FirstName))
		idx.watchLastName.add(Fold(w.LastName))
		idx.watchPassport.add(Fold(w.Passport))
	}

	return idx
}

func (idx *ReferenceIndex) UnderMedicalAdvisory(country string) bool {
	return idx.medical.has(Fold(country))
}

func (idx *ReferenceIndex) RequiresVisitorVisa(country string) bool {
	return idx.visitorVisa.has(Fold(country))
}

func (idx *ReferenceIndex) RequiresTransitVisa(country string) bool {
	return idx.transitVisa.has(Fold(country))
}

// Watched reports whether any single identity fragment of e is flagged.
func (idx *ReferenceIndex) Watched(e Entry) bool {
	return idx.watchPassport.has(Fold(e.Passport)) ||
		idx.watchFirstName.has(Fold(e.FirstName)) ||
		idx.watchLastName.has(Fold(e.LastName))
}

// Size returns the number of distinct values per set, keyed by set name.
func (idx *ReferenceIndex) Size() map[string]int {
	return map[string]int{
		"medical_advisory":  len(idx.medical),
		"visitor_visa":      len(idx.visitorVisa),
		"transit_visa":      len(idx.transitVisa),
		"watch_first_names": len(idx.watchFirstName),
		"watch_last_names":  len(idx.watchLastName),
		"watch_passports":   len(idx.watchPassport),
	}
}
