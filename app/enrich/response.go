package enrich

import (
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"
)

type rawResponse struct {
	Summary    json.RawMessage `json:"summary"`
	ViralScore json.RawMessage `json:"viralScore"`
}

// ParseResponse turns model output into an Enrichment. Output that is not a
// JSON object is an error; missing or mistyped fields fall back to an empty
// summary and a zero score.
func ParseResponse(raw string) (Enrichment, error) {
	body := stripCodeFence(raw)

	var resp rawResponse
	if err := json.Unmarshal([]byte(body), &resp); err != nil {
		return Enrichment{}, fmt.Errorf("malformed enrichment response: %w", err)
	}

	return Enrichment{
		Summary: parseSummary(resp.Summary),
		Score:   parseScore(resp.ViralScore),
	}, nil
}

func parseSummary(raw json.RawMessage) string {
	var s string
	if len(raw) == 0 || json.Unmarshal(raw, &s) != nil {
		return ""
	}
	return strings.TrimSpace(s)
}

func parseScore(raw json.RawMessage) int {
	if len(raw) == 0 {
		return 0
	}

	var f float64
	if err := json.Unmarshal(raw, &f); err != nil {
		var s string
		if json.Unmarshal(raw, &s) != nil {
			return 0
		}
		if f, err = strconv.ParseFloat(strings.TrimSpace(s), 64); err != nil {
			return 0
		}
	}

	if math.IsNaN(f) {
		return 0
	}
	// Clamp before converting; out-of-range float to int conversion is undefined.
	f = math.Max(0, math.Min(f, MaxScore))
	return int(math.Round(f))
}

func stripCodeFence(raw string) string {
	s := strings.TrimSpace(raw)
	if !strings.HasPrefix(s, "```") {
		return s
	}
	s = strings.TrimPrefix(s, "```")
	if nl := strings.IndexByte(s, '\n'); nl >= 0 {
		s = s[nl+1:]
	}
	s = strings.TrimSuffix(strings.TrimSpace(s), "```")
	return strings.TrimSpace(s)
}
