package decision

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"
)

func TestFlag_UnmarshalJSON(t *testing.T) {
	tests := []struct {
		raw  string
		want Flag
	}{
		{`true`, true},
		{`false`, false},
		{`"1"`, true},
		{`"0"`, false},
		{`""`, false},
		{`1`, true},
		{`0`, false},
		{`null`, false},
	}

	for _, tt := range tests {
		t.Run(tt.raw, func(t *testing.T) {
			var f Flag
			require.NoError(t, json.Unmarshal([]byte(tt.raw), &f))
			assert.Equal(t, tt.want, f)
		})
	}

	var f Flag
	assert.Error(t, json.Unmarshal([]byte(`"maybe"`), &f))
	assert.Error(t, json.Unmarshal([]byte(`[]`), &f))
}

func TestFlag_UnmarshalYAML(t *testing.T) {
	var c struct {
		A Flag `yaml:"a"`
		B Flag `yaml:"b"`
		C Flag `yaml:"c"`
	}
	require.NoError(t, yaml.Unmarshal([]byte("a: \"1\"\nb: true\nc: 0\n"), &c))
	assert.True(t, bool(c.A))
	assert.True(t, bool(c.B))
	assert.False(t, bool(c.C))
}

func TestEntry_UnmarshalJSON_VisaOptional(t *testing.T) {
	var entries []Entry
	raw := `[
		{"passport":"a","first_name":"b","last_name":"c","birth_date":"d","entry_reason":"visit",
		 "home":{"city":"x","region":"y","country":"z"},"from":{"city":"x","region":"y","country":"z"},
		 "visa":{"date":"2025-01-01","code":"v"}},
		{"passport":"a","first_name":"b","last_name":"c","birth_date":"d","entry_reason":"returning",
		 "home":{"city":"x","region":"y","country":"z"},"from":{"city":"x","region":"y","country":"z"}}
	]`
	require.NoError(t, json.Unmarshal([]byte(raw), &entries))
	require.Len(t, entries, 2)
	require.NotNil(t, entries[0].Visa)
	assert.Equal(t, "2025-01-01", entries[0].Visa.Date)
	assert.Nil(t, entries[1].Visa)
}

func TestDecision_MarshalsAsName(t *testing.T) {
	b, err := json.Marshal([]Decision{Quarantine, Accept})
	require.NoError(t, err)
	assert.JSONEq(t, `["Quarantine","Accept"]`, string(b))
}

func TestNormalize_FoldsEveryTextField(t *testing.T) {
	e := returningCitizen()
	e.Visa = &Visa{Date: "2025-01-01", Code: "ABC"}
	got := NormalizeEntries([]Entry{e})[0]

	assert.Equal(t, "jmz0s-89ia9-otcly-mqilj-p7cty", got.Passport)
	assert.Equal(t, "jane", got.FirstName)
	assert.Equal(t, "kan", got.Home.Country)
	assert.Equal(t, "on", got.From.Region)
	assert.Equal(t, "abc", got.Visa.Code)

	w := NormalizeWatchlist([]WatchlistRecord{{FirstName: "Gregory", Passport: "W3RT5"}})
	assert.Equal(t, WatchlistRecord{FirstName: "gregory", Passport: "w3rt5"}, w[0])

	c := NormalizeCountries(map[string]Country{"GOR": {Code: "GOR", MedicalAdvisory: "FLU"}})
	assert.Equal(t, Country{Code: "gor", MedicalAdvisory: "flu"}, c["gor"])
}
