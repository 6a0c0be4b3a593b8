package app

import (
	"context"
	"testing"

	"github.com/awmpietro/entry-decision-engine/internal/decision"
	"github.com/awmpietro/entry-decision-engine/internal/decision/cache"
)

func benchmarkRequest() BatchRequest {
	entries := make([]decision.Entry, 0, 100)
	for i := 0; i < 100; i++ {
		entries = append(entries, decision.Entry{
			Passport:    "JMZ0S-89IA9-OTCLY-MQILJ-P7CTY",
			FirstName:   "Jane",
			LastName:    "Doe",
			BirthDate:   "1952-12-25",
			EntryReason: "visit",
			Home:        decision.Location{City: "Lubu", Region: "North", Country: "LUUG"},
			From:        decision.Location{City: "Lubu", Region: "North", Country: "LUUG"},
			Visa:        &decision.Visa{Date: "2025-12-01"},
		})
	}
	return BatchRequest{
		Entries:   entries,
		Watchlist: []decision.WatchlistRecord{{FirstName: "Gregory", LastName: "Tunnelson"}},
		Countries: map[string]decision.Country{
			"KAN":  {Code: "KAN"},
			"LUUG": {Code: "LUUG", VisitorVisaRequired: true},
			"GOR":  {Code: "GOR", MedicalAdvisory: "flu"},
		},
	}
}

func benchmarkService(b *testing.B, workers int) *Service {
	rb, err := decision.DefaultRulebook()
	if err != nil {
		b.Fatalf("compile rule book: %v", err)
	}
	eng := decision.NewEngine(rb,
		decision.WithWorkers(workers),
		decision.WithIndexCache(cache.NewInMemory(16)),
	)
	return NewService(eng)
}

func BenchmarkServiceDecideBatch(b *testing.B) {
	svc := benchmarkService(b, 1)
	req := benchmarkRequest()

	b.ReportAllocs()
	b.ResetTimer()

	for i := 0; i < b.N; i++ {
		if _, err := svc.DecideBatch(context.Background(), req, false); err != nil {
			b.Fatalf("decide failed: %v", err)
		}
	}
}

func BenchmarkServiceDecideBatchParallel(b *testing.B) {
	svc := benchmarkService(b, 4)
	req := benchmarkRequest()

	b.ReportAllocs()
	b.ResetTimer()

	b.RunParallel(func(pb *testing.PB) {
		for pb.Next() {
			if _, err := svc.DecideBatch(context.Background(), req, false); err != nil {
				b.Fatalf("decide failed: %v", err)
			}
		}
	})
}
