package fetcher

import (
	"strconv"
	"strings"

	"github.com/rotisserie/eris"

	"github.com/sells-group/scout/internal/model"
)

// headerAliases maps the column spellings seen in real account
// spreadsheets onto import record fields.
var headerAliases = map[string]string{
	"company name":         "company_name",
	"company_name":         "company_name",
	"company":              "company_name",
	"account name":         "company_name",
	"name":                 "company_name",
	"website":              "website",
	"url":                  "website",
	"domain":               "website",
	"vertical":             "vertical",
	"industry":             "vertical",
	"fit tier":             "fit_tier",
	"fit_tier":             "fit_tier",
	"tier":                 "fit_tier",
	"estimated deal value": "estimated_deal_value",
	"estimated_deal_value": "estimated_deal_value",
	"deal value":           "estimated_deal_value",
	"est value":            "estimated_deal_value",
	"value":                "estimated_deal_value",
	"summary":              "company_summary",
	"company summary":      "company_summary",
	"description":          "company_summary",
	"notes":                "company_summary",
}

// MapRows converts a tabular import (header plus data rows) into import
// records. Unrecognized columns are ignored; a header without any
// company-name column is rejected up front. Rows shorter than the header
// are padded with blanks.
func MapRows(header []string, rows [][]string) ([]model.ImportRecord, error) {
	fieldFor := make(map[int]string, len(header))
	hasName := false
	for i, col := range header {
		field, ok := headerAliases[strings.ToLower(strings.TrimSpace(col))]
		if !ok {
			continue
		}
		fieldFor[i] = field
		if field == "company_name" {
			hasName = true
		}
	}
	if !hasName {
		return nil, eris.New("fetcher: no company name column in header")
	}

	records := make([]model.ImportRecord, 0, len(rows))
	for _, row := range rows {
		var rec model.ImportRecord
		for i, field := range fieldFor {
			var cell string
			if i < len(row) {
				cell = strings.TrimSpace(row[i])
			}
			if cell == "" {
				continue
			}
			switch field {
			case "company_name":
				rec.CompanyName = cell
			case "website":
				rec.Website = cell
			case "vertical":
				rec.Vertical = cell
			case "fit_tier":
				rec.FitTier = cell
			case "estimated_deal_value":
				if v, ok := parseMoney(cell); ok {
					rec.EstimatedDealValue = &v
				}
			case "company_summary":
				rec.CompanySummary = cell
			}
		}
		records = append(records, rec)
	}
	return records, nil
}

// parseMoney reads a dollar amount as written in spreadsheets: optional
// currency sign, thousands separators, optional decimal part (truncated).
func parseMoney(cell string) (int64, bool) {
	cleaned := strings.NewReplacer("$", "", ",", "", " ", "").Replace(cell)
	if cleaned == "" {
		return 0, false
	}
	if i := strings.IndexByte(cleaned, '.'); i >= 0 {
		cleaned = cleaned[:i]
	}
	v, err := strconv.ParseInt(cleaned, 10, 64)
	if err != nil {
		return 0, false
	}
	return v, true
}
