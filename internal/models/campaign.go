package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// CampaignStatus represents the lifecycle status of a campaign
type CampaignStatus string

const (
	CampaignStatusActive    CampaignStatus = "ACTIVE"
	CampaignStatusCompleted CampaignStatus = "COMPLETED"
	CampaignStatusCancelled CampaignStatus = "CANCELLED"
)

// AcceptanceStatus represents the broker's opt-in decision for a campaign
type AcceptanceStatus string

const (
	AcceptancePending  AcceptanceStatus = "PENDING"
	AcceptanceAccepted AcceptanceStatus = "ACCEPTED"
	AcceptanceRejected AcceptanceStatus = "REJECTED"
)

// CampaignType determines how the campaign target is interpreted when the
// campaign has no explicit criteria
type CampaignType string

const (
	CampaignTypeQuantity CampaignType = "QUANTITY" // target = number of policies
	CampaignTypeValue    CampaignType = "VALUE"    // target = sum of premium values
)

// TargetType represents the goal type of a single criterion
type TargetType string

const (
	TargetTypeQuantity TargetType = "QUANTITY"
	TargetTypeValue    TargetType = "VALUE"
	TargetTypeUnknown  TargetType = ""
)

// ParseTargetType maps a stored target type string to its enum value.
// Unknown strings map to TargetTypeUnknown, which the evaluator treats as a
// misconfigured criterion (zero progress, never satisfied).
func ParseTargetType(s string) TargetType {
	switch s {
	case "QUANTITY", "quantity":
		return TargetTypeQuantity
	case "VALUE", "value":
		return TargetTypeValue
	default:
		return TargetTypeUnknown
	}
}

// Criterion is one sub-goal within a campaign. Filters are optional; a zero
// value means "match any". MinValuePerPolicy excludes policies below a
// minimum premium from counting at all.
type Criterion struct {
	PolicyType        PolicyType   `bson:"policyType,omitempty" json:"policyType,omitempty"`
	ContractType      ContractType `bson:"contractType,omitempty" json:"contractType,omitempty"`
	MinValuePerPolicy float64      `bson:"minValuePerPolicy,omitempty" json:"minValuePerPolicy,omitempty"`
	TargetType        TargetType   `bson:"targetType" json:"targetType"`
	TargetValue       float64      `bson:"targetValue" json:"targetValue"`
}

// Campaign represents a broker sales incentive with a target and optional
// per-criterion sub-goals. CurrentValue and ProgressPercentage are cached
// display fields; the calculator can always recompute them from the campaign
// configuration and its active policy links.
type Campaign struct {
	ID               primitive.ObjectID `bson:"_id,omitempty" json:"id,omitempty"`
	Name             string             `bson:"name" json:"name"`
	Description      string             `bson:"description,omitempty" json:"description,omitempty"`
	Prize            string             `bson:"prize,omitempty" json:"prize,omitempty"`
	UserID           primitive.ObjectID `bson:"userId" json:"userId"`
	Type             CampaignType       `bson:"type" json:"type"`
	Target           float64            `bson:"target" json:"target"`
	Criteria         []Criterion        `bson:"criteria,omitempty" json:"criteria,omitempty"`
	StartDate        time.Time          `bson:"startDate" json:"startDate"`
	EndDate          time.Time          `bson:"endDate" json:"endDate"`
	AcceptanceStatus AcceptanceStatus   `bson:"acceptanceStatus" json:"acceptanceStatus"`
	AcceptedAt       time.Time          `bson:"acceptedAt,omitempty" json:"acceptedAt,omitempty"`
	Status           CampaignStatus     `bson:"status" json:"status"`

	CurrentValue       float64    `bson:"currentValue" json:"currentValue"`
	ProgressPercentage float64    `bson:"progressPercentage" json:"progressPercentage"`
	AchievedAt         *time.Time `bson:"achievedAt,omitempty" json:"achievedAt,omitempty"`
	AchievedValue      float64    `bson:"achievedValue,omitempty" json:"achievedValue,omitempty"`

	CreatedAt time.Time `bson:"createdAt" json:"createdAt"`
	UpdatedAt time.Time `bson:"updatedAt" json:"updatedAt"`
}

// IsAccepted reports whether the broker has opted in. Only accepted
// campaigns accrue progress.
func (c *Campaign) IsAccepted() bool {
	return c.AcceptanceStatus == AcceptanceAccepted
}

// WindowExpired reports whether the campaign validity period has ended at
// the given instant.
func (c *Campaign) WindowExpired(now time.Time) bool {
	return now.After(c.EndDate)
}

// ImplicitCriterion synthesizes a single criterion from the campaign's own
// target and type. Used for campaigns configured without an explicit
// criteria list.
func (c *Campaign) ImplicitCriterion() Criterion {
	tt := TargetTypeQuantity
	if c.Type == CampaignTypeValue {
		tt = TargetTypeValue
	}
	return Criterion{
		TargetType:  tt,
		TargetValue: c.Target,
	}
}

// CampaignFilter narrows campaign listings
type CampaignFilter struct {
	Status           CampaignStatus
	AcceptanceStatus AcceptanceStatus
}
