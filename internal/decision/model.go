package decision

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"
)

type Decision string

const (
	Quarantine Decision = "Quarantine"
	Reject     Decision = "Reject"
	Secondary  Decision = "Secondary"
	Accept     Decision = "Accept"
)

type Location struct {
	City    string `json:"city" yaml:"city" validate:"required"`
	Region  string `json:"region" yaml:"region" validate:"required"`
	Country string `json:"country" yaml:"country" validate:"required"`
}

type Visa struct {
	Date string `json:"date" yaml:"date"`
	Code string `json:"code,omitempty" yaml:"code,omitempty"`
}

// Entry is one traveller's submission. Visa is nil when the record carries no
// visa object.
type Entry struct {
	Passport    string   `json:"passport" yaml:"passport" validate:"required,passport"`
	FirstName   string   `json:"first_name" yaml:"first_name" validate:"required"`
	LastName    string   `json:"last_name" yaml:"last_name" validate:"required"`
	BirthDate   string   `json:"birth_date" yaml:"birth_date" validate:"required,isodate"`
	EntryReason string   `json:"entry_reason" yaml:"entry_reason" validate:"required"`
	Home        Location `json:"home" yaml:"home"`
	From        Location `json:"from" yaml:"from"`
	Visa        *Visa    `json:"visa,omitempty" yaml:"visa,omitempty"`
}

type WatchlistRecord struct {
	FirstName string `json:"first_name" yaml:"first_name"`
	LastName  string `json:"last_name" yaml:"last_name"`
	Passport  string `json:"passport" yaml:"passport"`
}

type Country struct {
	Code                string `json:"code" yaml:"code"`
	Name                string `json:"name,omitempty" yaml:"name,omitempty"`
	MedicalAdvisory     string `json:"medical_advisory" yaml:"medical_advisory"`
	VisitorVisaRequired Flag   `json:"visitor_visa_required" yaml:"visitor_visa_required"`
	TransitVisaRequired Flag   `json:"transit_visa_required" yaml:"transit_visa_required"`
}

// Flag is a boolean that also accepts the "1"/"0" encoding used by country
// tables in the wild.
type Flag bool

func (f Flag) MarshalJSON() ([]byte, error) {
	return json.Marshal(bool(f))
}

func (f *Flag) UnmarshalJSON(b []byte) error {
	var raw any
	if err := json.Unmarshal(b, &raw); err != nil {
		return err
	}
	v, err := parseFlag(raw)
	if err != nil {
		return err
	}
	*f = Flag(v)
	return nil
}

func (f *Flag) UnmarshalYAML(node *yaml.Node) error {
	var raw any
	if err := node.Decode(&raw); err != nil {
		return err
	}
	v, err := parseFlag(raw)
	if err != nil {
		return err
	}
	*f = Flag(v)
	return nil
}

func parseFlag(raw any) (bool, error) {
	switch v := raw.(type) {
	case nil:
		return false, nil
	case bool:
		return v, nil
	case float64:
		return v != 0, nil
	case int:
		return v != 0, nil
	case string:
		s := strings.TrimSpace(v)
		if s == "" {
			return false, nil
		}
		b, err := strconv.ParseBool(s)
		if err != nil {
			return false, fmt.Errorf("invalid flag value %q", v)
		}
		return b, nil
	default:
		return false, fmt.Errorf("invalid flag value %v (%T)", raw, raw)
	}
}
