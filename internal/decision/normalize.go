package decision

import "golang.org/x/text/cases"

// Fold case-folds s. A Caser keeps state, so one is created per call.
func Fold(s string) string {
	if s == "" {
		return s
	}
	return cases.Fold().String(s)
}

func NormalizeEntries(entries []Entry) []Entry {
	out := make([]Entry, len(entries))
	for i, e := range entries {
		out[i] = normalizeEntry(e)
	}
	return out
}

func normalizeEntry(e Entry) Entry {
	n := Entry{
		Passport:    Fold(e.Passport),
		FirstName:   Fold(e.FirstName),
		LastName:    Fold(e.LastName),
		BirthDate:   Fold(e.BirthDate),
		EntryReason: Fold(e.EntryReason),
		Home:        normalizeLocation(e.Home),
		From:        normalizeLocation(e.From),
	}
	if e.Visa != nil {
		n.Visa = &Visa{Date: Fold(e.Visa.Date), Code: Fold(e.Visa.Code)}
	}
	return n
}

func normalizeLocation(l Location) Location {
	return Location{City: Fold(l.City), Region: Fold(l.Region), Country: Fold(l.Country)}
}

func NormalizeWatchlist(records []WatchlistRecord) []WatchlistRecord {
	out := make([]WatchlistRecord, len(records))
	for i, r := range records {
		out[i] = WatchlistRecord{
			FirstName: Fold(r.FirstName),
			LastName:  Fold(r.LastName),
			Passport:  Fold(r.Passport),
		}
	}
	return out
}

func NormalizeCountries(countries map[string]Country) map[string]Country {
	out := make(map[string]Country, len(countries))
	for k, c := range countries {
		c.Code = Fold(c.Code)
		c.Name = Fold(c.Name)
		c.MedicalAdvisory = Fold(c.MedicalAdvisory)
		out[Fold(k)] = c
	}
	return out
}
