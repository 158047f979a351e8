// Package intelligence runs LLM-backed account research: it builds
// layered prompts from campaign and account context, calls the model,
// and parses the response into strictly validated result structures.
package intelligence

import "fmt"

// Level selects the research depth and the expected result schema.
type Level string

const (
	LevelTAMScreening       Level = "tam_screening"
	LevelAccountBuilding    Level = "account_building"
	LevelOpportunityMapping Level = "opportunity_mapping"
	LevelOngoingMonitoring  Level = "ongoing_monitoring"
)

// ValidLevel reports whether l is one of the four research levels.
func ValidLevel(l Level) bool {
	switch l {
	case LevelTAMScreening, LevelAccountBuilding, LevelOpportunityMapping, LevelOngoingMonitoring:
		return true
	}
	return false
}

// CampaignContext describes the selling campaign the research serves.
type CampaignContext struct {
	Name          string `json:"name"`
	Objective     string `json:"objective"`
	TargetProfile string `json:"target_profile"`
}

// SellerContext describes who is selling and what.
type SellerContext struct {
	Company        string `json:"company"`
	Offering       string `json:"offering"`
	Differentiator string `json:"differentiator,omitempty"`
}

// TargetCompany is the account under research.
type TargetCompany struct {
	Name     string `json:"name"`
	Website  string `json:"website,omitempty"`
	Vertical string `json:"vertical,omitempty"`
	Summary  string `json:"summary,omitempty"`
}

// SearchResult is one piece of gathered web context fed into the prompt.
type SearchResult struct {
	Title   string `json:"title"`
	URL     string `json:"url"`
	Snippet string `json:"snippet"`
}

// Request is one research invocation.
type Request struct {
	Level         Level           `json:"level"`
	Campaign      CampaignContext `json:"campaign"`
	Seller        SellerContext   `json:"seller"`
	Target        TargetCompany   `json:"target"`
	SearchResults []SearchResult  `json:"search_results,omitempty"`
}

// TAMScreeningResult is the parsed model output for a screening pass.
type TAMScreeningResult struct {
	FitTier        string   `json:"fit_tier"`
	FitRationale   string   `json:"fit_rationale"`
	Vertical       string   `json:"vertical"`
	EstimatedValue int64    `json:"estimated_value"`
	Disqualifiers  []string `json:"disqualifiers"`
}

// AccountBuildingResult is the parsed model output for deep account research.
type AccountBuildingResult struct {
	CompanySummary string            `json:"company_summary"`
	KeyInitiatives []string          `json:"key_initiatives"`
	Stakeholders   []StakeholderLead `json:"stakeholders"`
	Risks          []string          `json:"risks"`
	Themes         []ResearchTheme   `json:"themes"`
}

// StakeholderLead is a suggested contact surfaced by research.
type StakeholderLead struct {
	Name      string `json:"name"`
	Title     string `json:"title"`
	Relevance string `json:"relevance"`
}

// ResearchTheme is a research thread worth tracking on the account.
type ResearchTheme struct {
	Title   string `json:"title"`
	Summary string `json:"summary"`
}

// OpportunityMappingResult is the parsed model output for pursuit mapping.
type OpportunityMappingResult struct {
	Opportunities []Opportunity `json:"opportunities"`
	NextSteps     []string      `json:"next_steps"`
}

// Opportunity is one mapped sales opening.
type Opportunity struct {
	Name           string `json:"name"`
	Stage          string `json:"stage"`
	EstimatedValue int64  `json:"estimated_value"`
	Rationale      string `json:"rationale"`
}

// MonitoringResult is the parsed model output for an ongoing check-in.
type MonitoringResult struct {
	Signals []MonitoringSignal `json:"signals"`
	Urgency string             `json:"urgency"`
	Summary string             `json:"summary"`
}

// MonitoringSignal is one observed change worth recording.
type MonitoringSignal struct {
	Kind   string `json:"kind"`
	Detail string `json:"detail"`
}

// ParseError reports a model response that could not be parsed into the
// level's result schema. It carries the failing stage so callers can
// distinguish malformed JSON from schema violations.
type ParseError struct {
	Stage  string // "extract", "decode", or "validate"
	Detail string
	Raw    string // offending response text, truncated
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("intelligence: parse %s: %s", e.Stage, e.Detail)
}
