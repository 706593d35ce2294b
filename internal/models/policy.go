package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// PolicyType classifies the insured risk
type PolicyType string

const (
	PolicyTypeAny         PolicyType = "" // unset filter matches any type
	PolicyTypeAuto        PolicyType = "AUTO"
	PolicyTypeResidential PolicyType = "RESIDENTIAL"
	PolicyTypeLife        PolicyType = "LIFE"
	PolicyTypeBusiness    PolicyType = "BUSINESS"
	PolicyTypeHealth      PolicyType = "HEALTH"
)

// ContractType distinguishes new business from renewals
type ContractType string

const (
	ContractTypeBoth    ContractType = "" // unset/"both" matches any
	ContractTypeNew     ContractType = "NEW"
	ContractTypeRenewal ContractType = "RENEWAL"
)

// PolicyStatus represents the status of the underlying policy. Only active
// policies count toward campaign progress.
type PolicyStatus string

const (
	PolicyStatusActive    PolicyStatus = "ACTIVE"
	PolicyStatusCancelled PolicyStatus = "CANCELLED"
	PolicyStatusExpired   PolicyStatus = "EXPIRED"
)

// Policy represents a registered insurance policy
type Policy struct {
	ID           primitive.ObjectID `bson:"_id,omitempty" json:"id,omitempty"`
	UserID       primitive.ObjectID `bson:"userId" json:"userId"`
	PolicyNumber string             `bson:"policyNumber" json:"policyNumber"`
	PolicyType   PolicyType         `bson:"policyType" json:"policyType"`
	ContractType ContractType       `bson:"contractType" json:"contractType"`
	PremiumValue float64            `bson:"premiumValue" json:"premiumValue"`
	Status       PolicyStatus       `bson:"status" json:"status"`
	InsuredName  string             `bson:"insuredName,omitempty" json:"insuredName,omitempty"`
	IssuedAt     time.Time          `bson:"issuedAt" json:"issuedAt"`
	CreatedAt    time.Time          `bson:"createdAt" json:"createdAt"`
	UpdatedAt    time.Time          `bson:"updatedAt" json:"updatedAt"`
}

// PolicyLink attributes a policy to a campaign for progress purposes.
// LinkedAt must be at or after the campaign's AcceptedAt for the policy to
// count; IsActive is a soft-delete flag.
type PolicyLink struct {
	ID         primitive.ObjectID `bson:"_id,omitempty" json:"id,omitempty"`
	PolicyID   primitive.ObjectID `bson:"policyId" json:"policyId"`
	CampaignID primitive.ObjectID `bson:"campaignId" json:"campaignId"`
	UserID     primitive.ObjectID `bson:"userId" json:"userId"`
	LinkedAt   time.Time          `bson:"linkedAt" json:"linkedAt"`
	IsActive   bool               `bson:"isActive" json:"isActive"`
	CreatedAt  time.Time          `bson:"createdAt" json:"createdAt"`
}

// LinkedPolicy pairs a policy link with its underlying policy, as returned
// by the repository join for progress calculation.
type LinkedPolicy struct {
	Link   PolicyLink `bson:"link" json:"link"`
	Policy Policy     `bson:"policy" json:"policy"`
}
