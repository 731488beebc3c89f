package domain

import (
	"time"

	"github.com/google/uuid"
)

type AgentInfo struct {
	Agency          string   `json:"agency" bson:"agency"`
	Specializations []string `json:"specializations" bson:"specializations"`
	Languages       []string `json:"languages" bson:"languages"`
	ExperienceYears int      `json:"experience" bson:"experience"`
	Rating          float64  `json:"rating" bson:"rating"`
}

type BuilderInfo struct {
	CompanyName       string   `json:"companyName" bson:"companyName"`
	Specializations   []string `json:"specializations" bson:"specializations"`
	EstablishedYear   int      `json:"establishedYear" bson:"establishedYear"`
	CompletedProjects int      `json:"completedProjects" bson:"completedProjects"`
	Rating            float64  `json:"rating" bson:"rating"`
}

// Profile is an entry of the agents and builders directory.
type Profile struct {
	ID     uuid.UUID `json:"id" bson:"-"`
	UserID uuid.UUID `json:"userId" bson:"userId"`

	Name   string `json:"name" bson:"name"`
	Email  string `json:"email" bson:"email"`
	Phone  string `json:"phone,omitempty" bson:"phone,omitempty"`
	Avatar string `json:"avatar,omitempty" bson:"avatar,omitempty"`
	City   string `json:"city" bson:"city"`
	State  string `json:"state" bson:"state"`

	IsAgent   bool `json:"isAgent" bson:"isAgent"`
	IsBuilder bool `json:"isBuilder" bson:"isBuilder"`
	Verified  bool `json:"verified" bson:"verified"`

	AgentInfo   *AgentInfo   `json:"agentInfo,omitempty" bson:"agentInfo,omitempty"`
	BuilderInfo *BuilderInfo `json:"builderInfo,omitempty" bson:"builderInfo,omitempty"`

	CreatedAt time.Time `json:"createdAt" bson:"createdAt"`
}

// IsVerifiedBuilder gates project submissions.
func (p *Profile) IsVerifiedBuilder() bool {
	return p != nil && p.IsBuilder && p.Verified
}
