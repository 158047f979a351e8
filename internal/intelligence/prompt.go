package intelligence

import (
	"fmt"
	"strings"
)

// systemPrompt anchors the model's role for every research level. It is
// cache-controlled upstream, so keep it stable across requests.
const systemPrompt = `You are a B2B sales research analyst. You research target companies
on behalf of a seller and return findings as a single JSON object, with no
markdown fences and no prose outside the JSON. Base every claim on the
provided context; when the context does not support a field, use an empty
string, zero, or empty array rather than guessing.`

// levelInstructions spells out the task and the exact response schema per
// research level. The parser enforces these schemas strictly.
var levelInstructions = map[Level]string{
	LevelTAMScreening: `Task: screen this company for TAM fit.
Respond with JSON: {"fit_tier": "A"|"B"|"C", "fit_rationale": string,
"vertical": string, "estimated_value": integer USD, "disqualifiers": [string]}`,

	LevelAccountBuilding: `Task: build a working account profile.
Respond with JSON: {"company_summary": string, "key_initiatives": [string],
"stakeholders": [{"name": string, "title": string, "relevance": string}],
"risks": [string], "themes": [{"title": string, "summary": string}]}`,

	LevelOpportunityMapping: `Task: map concrete sales opportunities.
Respond with JSON: {"opportunities": [{"name": string, "stage":
"discovery"|"qualification"|"proposal", "estimated_value": integer USD,
"rationale": string}], "next_steps": [string]}`,

	LevelOngoingMonitoring: `Task: review the latest context for changes since the last check.
Respond with JSON: {"signals": [{"kind": "news"|"funding"|"leadership"|"risk",
"detail": string}], "urgency": "low"|"medium"|"high", "summary": string}`,
}

// BuildPrompt renders the layered user prompt: campaign framing first,
// then seller, target, gathered search context, and the level's task
// block last so the schema sits closest to the response.
func BuildPrompt(req Request) (string, error) {
	instructions, ok := levelInstructions[req.Level]
	if !ok {
		return "", fmt.Errorf("intelligence: unknown research level %q", req.Level)
	}

	var b strings.Builder

	b.WriteString("## Campaign\n")
	fmt.Fprintf(&b, "Name: %s\n", req.Campaign.Name)
	fmt.Fprintf(&b, "Objective: %s\n", req.Campaign.Objective)
	if req.Campaign.TargetProfile != "" {
		fmt.Fprintf(&b, "Target profile: %s\n", req.Campaign.TargetProfile)
	}

	b.WriteString("\n## Seller\n")
	fmt.Fprintf(&b, "Company: %s\n", req.Seller.Company)
	fmt.Fprintf(&b, "Offering: %s\n", req.Seller.Offering)
	if req.Seller.Differentiator != "" {
		fmt.Fprintf(&b, "Differentiator: %s\n", req.Seller.Differentiator)
	}

	b.WriteString("\n## Target company\n")
	fmt.Fprintf(&b, "Name: %s\n", req.Target.Name)
	if req.Target.Website != "" {
		fmt.Fprintf(&b, "Website: %s\n", req.Target.Website)
	}
	if req.Target.Vertical != "" {
		fmt.Fprintf(&b, "Vertical: %s\n", req.Target.Vertical)
	}
	if req.Target.Summary != "" {
		fmt.Fprintf(&b, "Known summary: %s\n", req.Target.Summary)
	}

	if len(req.SearchResults) > 0 {
		b.WriteString("\n## Search results\n")
		for i, sr := range req.SearchResults {
			fmt.Fprintf(&b, "%d. %s (%s)\n%s\n", i+1, sr.Title, sr.URL, sr.Snippet)
		}
	}

	b.WriteString("\n## Instructions\n")
	b.WriteString(instructions)

	return b.String(), nil
}

// GenerateSearchQueries produces the web queries to gather context for a
// research level before prompting.
func GenerateSearchQueries(req Request) []string {
	name := req.Target.Name
	queries := []string{
		fmt.Sprintf("%q company overview", name),
	}

	switch req.Level {
	case LevelTAMScreening:
		queries = append(queries,
			fmt.Sprintf("%q industry revenue employees", name),
		)
	case LevelAccountBuilding:
		queries = append(queries,
			fmt.Sprintf("%q leadership team executives", name),
			fmt.Sprintf("%q strategic initiatives %s", name, req.Campaign.Objective),
		)
	case LevelOpportunityMapping:
		queries = append(queries,
			fmt.Sprintf("%q %s", name, req.Seller.Offering),
			fmt.Sprintf("%q RFP procurement", name),
		)
	case LevelOngoingMonitoring:
		queries = append(queries,
			fmt.Sprintf("%q news", name),
			fmt.Sprintf("%q funding acquisition leadership change", name),
		)
	}

	if req.Target.Vertical != "" {
		queries = append(queries, fmt.Sprintf("%q %s trends", name, req.Target.Vertical))
	}
	return queries
}
