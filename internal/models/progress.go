package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// MaxDisplayPercentage caps displayed progress so a runaway ratio never
// produces absurd UI values. Completion decisions use the raw ratios, never
// the clamped display number.
const MaxDisplayPercentage = 999.0

// CriterionResult is the outcome of evaluating one criterion against the
// eligible policy set.
type CriterionResult struct {
	Criterion        Criterion            `json:"criterion"`
	CurrentProgress  float64              `json:"currentProgress"`
	TargetValue      float64              `json:"targetValue"`
	Percentage       float64              `json:"percentage"`
	IsSatisfied      bool                 `json:"isSatisfied"`
	MatchingPolicies []primitive.ObjectID `json:"matchingPolicies"`
}

// ProgressResult is the aggregate outcome of a campaign progress
// calculation.
type ProgressResult struct {
	CampaignID         primitive.ObjectID `json:"campaignId"`
	CurrentValue       float64            `json:"currentValue"`
	ProgressPercentage float64            `json:"progressPercentage"`
	IsCompleted        bool               `json:"isCompleted"`
	TotalPolicies      int                `json:"totalPolicies"`
	Criteria           []CriterionResult  `json:"criteria"`
	CalculatedAt       time.Time          `json:"calculatedAt"`
}

// ProgressUpdate carries the computed fields written back to a campaign
// after reconciliation. AchievedAt is a pointer so the repair path can
// clear it explicitly.
type ProgressUpdate struct {
	CurrentValue       float64        `bson:"currentValue"`
	ProgressPercentage float64        `bson:"progressPercentage"`
	Status             CampaignStatus `bson:"status"`
	AchievedAt         *time.Time     `bson:"achievedAt"`
	AchievedValue      float64        `bson:"achievedValue"`
	LastUpdated        time.Time      `bson:"updatedAt"`
}

// RecalculationError records a single campaign failure inside a batch run
type RecalculationError struct {
	CampaignID primitive.ObjectID `json:"campaignId"`
	Message    string             `json:"message"`
}

// RecalculationSummary is the result of a batch recalculation. One
// campaign's failure never aborts the others; failures are collected here.
type RecalculationSummary struct {
	Total          int                  `json:"total"`
	CorrectedCount int                  `json:"correctedCount"`
	Errors         []RecalculationError `json:"errors"`
	StartedAt      time.Time            `json:"startedAt"`
	FinishedAt     time.Time            `json:"finishedAt"`
}
