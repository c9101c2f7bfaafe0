package enrich

import "testing"

func TestParseResponse(t *testing.T) {
	tests := []struct {
		name    string
		raw     string
		want    Enrichment
		wantErr bool
	}{
		{"complete", `{"summary":"A summary.","viralScore":7}`, Enrichment{"A summary.", 7}, false},
		{"code fence", "```json\n{\"summary\":\"Fenced\",\"viralScore\":4}\n```", Enrichment{"Fenced", 4}, false},
		{"missing score", `{"summary":"No score"}`, Enrichment{"No score", 0}, false},
		{"missing summary", `{"viralScore":5}`, Enrichment{"", 5}, false},
		{"empty object", `{}`, Enrichment{"", 0}, false},
		{"fractional score", `{"summary":"s","viralScore":6.6}`, Enrichment{"s", 7}, false},
		{"string score", `{"summary":"s","viralScore":"9"}`, Enrichment{"s", 9}, false},
		{"score above range", `{"summary":"s","viralScore":42}`, Enrichment{"s", 10}, false},
		{"score below range", `{"summary":"s","viralScore":-3}`, Enrichment{"s", 0}, false},
		{"huge score", `{"summary":"s","viralScore":1e300}`, Enrichment{"s", 10}, false},
		{"score beyond int range", `{"summary":"s","viralScore":1e19}`, Enrichment{"s", 10}, false},
		{"huge negative score", `{"summary":"s","viralScore":-1e300}`, Enrichment{"s", 0}, false},
		{"infinite string score", `{"summary":"s","viralScore":"Infinity"}`, Enrichment{"s", 10}, false},
		{"negative infinite string score", `{"summary":"s","viralScore":"-Inf"}`, Enrichment{"s", 0}, false},
		{"NaN string score", `{"summary":"s","viralScore":"NaN"}`, Enrichment{"s", 0}, false},
		{"mistyped score", `{"summary":"s","viralScore":[1]}`, Enrichment{"s", 0}, false},
		{"mistyped summary", `{"summary":12,"viralScore":2}`, Enrichment{"", 2}, false},
		{"not json", `Sure! Here is the summary`, Enrichment{}, true},
		{"empty", ``, Enrichment{}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseResponse(tt.raw)
			if tt.wantErr {
				if err == nil {
					t.Errorf("Expected error for %q", tt.raw)
				}
				return
			}
			if err != nil {
				t.Fatalf("Unexpected error: %v", err)
			}
			if got != tt.want {
				t.Errorf("Expected %+v, got %+v", tt.want, got)
			}
		})
	}
}
