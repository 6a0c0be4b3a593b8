package decision

type EntryTrace struct {
	Index      int          `json:"index"`
	Decision   Decision     `json:"decision"`
	Candidates []Decision   `json:"candidates"`
	Facts      Facts        `json:"facts"`
	Rules      []RuleTrace  `json:"rules"`
	Issues     []FieldIssue `json:"validation_issues,omitempty"`
}

type RuleTrace struct {
	Rule           string   `json:"rule"`
	Outcome        Decision `json:"outcome"`
	Matched        bool     `json:"matched"`
	Error          string   `json:"error,omitempty"`
	DurationMicros int64    `json:"duration_micros"`
}
