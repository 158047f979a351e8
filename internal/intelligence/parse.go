package intelligence

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"
)

const rawTruncateLen = 500

// Parse decodes a model response for the given level into the level's
// result type. Decoding is strict: unknown fields, trailing content, and
// missing required fields all fail with a *ParseError rather than a
// partial result.
func Parse(level Level, text string) (any, error) {
	cleaned, err := extractJSON(text)
	if err != nil {
		return nil, err
	}

	switch level {
	case LevelTAMScreening:
		var res TAMScreeningResult
		if err := decodeStrict(cleaned, &res); err != nil {
			return nil, err
		}
		if err := res.validate(cleaned); err != nil {
			return nil, err
		}
		return &res, nil
	case LevelAccountBuilding:
		var res AccountBuildingResult
		if err := decodeStrict(cleaned, &res); err != nil {
			return nil, err
		}
		if err := res.validate(cleaned); err != nil {
			return nil, err
		}
		return &res, nil
	case LevelOpportunityMapping:
		var res OpportunityMappingResult
		if err := decodeStrict(cleaned, &res); err != nil {
			return nil, err
		}
		if err := res.validate(cleaned); err != nil {
			return nil, err
		}
		return &res, nil
	case LevelOngoingMonitoring:
		var res MonitoringResult
		if err := decodeStrict(cleaned, &res); err != nil {
			return nil, err
		}
		if err := res.validate(cleaned); err != nil {
			return nil, err
		}
		return &res, nil
	default:
		return nil, &ParseError{Stage: "extract", Detail: "unknown research level " + string(level)}
	}
}

// extractJSON strips markdown fences and surrounding prose, returning the
// outermost JSON object.
func extractJSON(text string) (string, error) {
	original := text
	text = strings.TrimSpace(text)

	if strings.HasPrefix(text, "```json") {
		text = strings.TrimPrefix(text, "```json")
		if idx := strings.LastIndex(text, "```"); idx >= 0 {
			text = text[:idx]
		}
	} else if strings.HasPrefix(text, "```") {
		text = strings.TrimPrefix(text, "```")
		if idx := strings.LastIndex(text, "```"); idx >= 0 {
			text = text[:idx]
		}
	}

	start := strings.Index(text, "{")
	end := strings.LastIndex(text, "}")
	if start < 0 || end <= start {
		return "", &ParseError{
			Stage:  "extract",
			Detail: "no JSON object in response",
			Raw:    truncateRaw(original),
		}
	}

	return strings.TrimSpace(text[start : end+1]), nil
}

// decodeStrict unmarshals into v rejecting unknown fields and any content
// after the first value.
func decodeStrict(cleaned string, v any) error {
	dec := json.NewDecoder(bytes.NewReader([]byte(cleaned)))
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		return &ParseError{Stage: "decode", Detail: err.Error(), Raw: truncateRaw(cleaned)}
	}
	if dec.More() {
		return &ParseError{Stage: "decode", Detail: "trailing content after JSON object", Raw: truncateRaw(cleaned)}
	}
	return nil
}

func (r *TAMScreeningResult) validate(raw string) error {
	switch r.FitTier {
	case "A", "B", "C":
	default:
		return validateErr("fit_tier must be A, B, or C", raw)
	}
	if r.FitRationale == "" {
		return validateErr("fit_rationale is required", raw)
	}
	if r.EstimatedValue < 0 {
		return validateErr("estimated_value must be non-negative", raw)
	}
	return nil
}

func (r *AccountBuildingResult) validate(raw string) error {
	if r.CompanySummary == "" {
		return validateErr("company_summary is required", raw)
	}
	for _, s := range r.Stakeholders {
		if s.Name == "" {
			return validateErr("stakeholder name is required", raw)
		}
	}
	for _, t := range r.Themes {
		if t.Title == "" {
			return validateErr("theme title is required", raw)
		}
	}
	return nil
}

var opportunityStages = map[string]bool{
	"discovery":     true,
	"qualification": true,
	"proposal":      true,
}

func (r *OpportunityMappingResult) validate(raw string) error {
	for _, o := range r.Opportunities {
		if o.Name == "" {
			return validateErr("opportunity name is required", raw)
		}
		if !opportunityStages[o.Stage] {
			return validateErr(fmt.Sprintf("opportunity stage %q is not recognized", o.Stage), raw)
		}
		if o.EstimatedValue < 0 {
			return validateErr("opportunity estimated_value must be non-negative", raw)
		}
	}
	return nil
}

var monitoringKinds = map[string]bool{
	"news":       true,
	"funding":    true,
	"leadership": true,
	"risk":       true,
}

func (r *MonitoringResult) validate(raw string) error {
	for _, s := range r.Signals {
		if !monitoringKinds[s.Kind] {
			return validateErr(fmt.Sprintf("signal kind %q is not recognized", s.Kind), raw)
		}
	}
	switch r.Urgency {
	case "low", "medium", "high":
	default:
		return validateErr("urgency must be low, medium, or high", raw)
	}
	return nil
}

func validateErr(detail, raw string) error {
	return &ParseError{Stage: "validate", Detail: detail, Raw: truncateRaw(raw)}
}

func truncateRaw(s string) string {
	if len(s) > rawTruncateLen {
		return s[:rawTruncateLen]
	}
	return s
}
