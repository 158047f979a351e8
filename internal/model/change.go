package model

// ChangeType classifies one import record against the existing snapshot.
type ChangeType string

const (
	ChangeNew       ChangeType = "new"
	ChangeModified  ChangeType = "modified"
	ChangeUnchanged ChangeType = "unchanged"
)

// FieldDiff describes a single field-level difference between an import
// record and the matched TAM account. Label is a human-readable rendering
// for the preview UI ("Vertical: None → Healthcare").
type FieldDiff struct {
	Field string `json:"field"`
	Old   string `json:"old"`
	New   string `json:"new"`
	Label string `json:"label"`
}

// ChangeRecord is the matcher's verdict for one import record. TargetID
// is set iff the record matched an existing account (change type is not
// "new").
type ChangeRecord struct {
	ChangeType  ChangeType   `json:"change_type"`
	CompanyName string       `json:"company_name"`
	TargetID    string       `json:"target_id,omitempty"`
	Proposed    ImportRecord `json:"proposed"`
	Current     *TAMAccount  `json:"current,omitempty"`
	Diffs       []FieldDiff  `json:"diffs,omitempty"`
}

// ChangeSummary counts matcher classifications for a preview response.
type ChangeSummary struct {
	New       int `json:"new"`
	Modified  int `json:"modified"`
	Unchanged int `json:"unchanged"`
	Total     int `json:"total"`
}
