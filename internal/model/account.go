// Package model defines the shared domain types for the Scout
// account-planning core: TAM accounts, account plans, import records,
// health snapshots, and goals.
package model

import (
	"time"
)

// TAMStatus represents the lifecycle stage of a TAM account.
type TAMStatus string

const (
	TAMStatusProspecting  TAMStatus = "Prospecting"
	TAMStatusResearching  TAMStatus = "Researching"
	TAMStatusQualified    TAMStatus = "Qualified"
	TAMStatusPursuing     TAMStatus = "Pursuing"
	TAMStatusDisqualified TAMStatus = "Disqualified"
)

// TAMAccount is a persisted total-addressable-market account. It is the
// canonical entity that import reconciliation creates and updates; it is
// never hard-deleted (status transitions only).
type TAMAccount struct {
	ID                 string    `json:"id" db:"tam_account_id"`
	CompanyName        string    `json:"company_name" db:"company_name"`
	Website            string    `json:"website,omitempty" db:"website"`
	Vertical           string    `json:"vertical,omitempty" db:"vertical"`
	FitTier            string    `json:"fit_tier,omitempty" db:"fit_tier"`
	EstimatedDealValue *int64    `json:"estimated_deal_value,omitempty" db:"estimated_deal_value"`
	CompanySummary     string    `json:"company_summary,omitempty" db:"company_summary"`
	Status             TAMStatus `json:"status" db:"status"`
	AccountPlanID      *string   `json:"account_plan_id,omitempty" db:"account_plan_id"`
	CreatedAt          time.Time `json:"created_at" db:"created_at"`
	UpdatedAt          time.Time `json:"updated_at" db:"updated_at"`
}

// AccountType distinguishes the two health-scoring populations.
type AccountType string

const (
	AccountTypeProspect AccountType = "prospect"
	AccountTypeCustomer AccountType = "customer"
)

// AccountPlan is the working account record. TAM accounts link to a plan
// via AccountPlanID; the reconciler auto-creates missing plans before
// inserting dependent TAM rows.
type AccountPlan struct {
	ID          string      `json:"id" db:"account_plan_id"`
	AccountName string      `json:"account_name" db:"account_name"`
	AccountType AccountType `json:"account_type" db:"account_type"`
	Vertical    string      `json:"vertical,omitempty" db:"vertical"`
	NPSScore    *float64    `json:"nps_score,omitempty" db:"nps_score"`
	CSATScore   *float64    `json:"csat_score,omitempty" db:"csat_score"`
	UsagePct    *float64    `json:"usage_pct,omitempty" db:"usage_pct"`
	CreatedAt   time.Time   `json:"created_at" db:"created_at"`
	UpdatedAt   time.Time   `json:"updated_at" db:"updated_at"`
}

// ImportRecord is one candidate TAM account row from an external source.
// It exists only for the duration of an import run and is never persisted
// directly.
type ImportRecord struct {
	CompanyName        string `json:"company_name"`
	Website            string `json:"website,omitempty"`
	Vertical           string `json:"vertical,omitempty"`
	FitTier            string `json:"fit_tier,omitempty"`
	EstimatedDealValue *int64 `json:"estimated_deal_value,omitempty"`
	CompanySummary     string `json:"company_summary,omitempty"`
}

// Merge folds another record's present values into this one. Absent
// incoming values never clear existing ones; later duplicates in a batch
// fill gaps left by the first occurrence.
func (r *ImportRecord) Merge(other ImportRecord) {
	if other.Website != "" {
		r.Website = other.Website
	}
	if other.Vertical != "" {
		r.Vertical = other.Vertical
	}
	if other.FitTier != "" {
		r.FitTier = other.FitTier
	}
	if other.EstimatedDealValue != nil {
		r.EstimatedDealValue = other.EstimatedDealValue
	}
	if other.CompanySummary != "" {
		r.CompanySummary = other.CompanySummary
	}
}
