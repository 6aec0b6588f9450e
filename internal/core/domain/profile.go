package domain

// Experience is an executor's self-reported seniority.
type Experience string

const (
	ExperienceLessYear      Experience = "lessYear"
	ExperienceOverYear      Experience = "overYear"
	ExperienceOverThreeYear Experience = "overThreeYear"
	ExperienceOverFiveYear  Experience = "overFiveYear"
	ExperienceOverTenYear   Experience = "overTenYear"
)

// CostType says what an executor's cost is quoted per.
type CostType string

const (
	CostTypeNone     CostType = "none"
	CostTypeContract CostType = "contract"
	CostTypeInHour   CostType = "inHour"
	CostTypeInOrder  CostType = "inOrder"
)

// CustomerProfile is the customer side of a user. Rating is maintained by
// order approval, which lives outside this service.
type CustomerProfile struct {
	Rating float64 `json:"rating"`
}

// ExecutorProfile is what an executor shows to customers.
type ExecutorProfile struct {
	Description     string     `json:"description,omitempty"`
	Classification  string     `json:"classification,omitempty"`
	Tags            []string   `json:"tags,omitempty"`
	Specializations []string   `json:"specializations,omitempty"`
	Experience      Experience `json:"experience,omitempty"`
	CostType        CostType   `json:"cost_type,omitempty"`
	Cost            int64      `json:"cost"`
	Rating          float64    `json:"rating"`
}

// ExecutorProfileUpdate is a partial update; nil fields keep their value.
// Rating is not editable by the executor.
type ExecutorProfileUpdate struct {
	Description     *string
	Classification  *string
	Tags            []string
	Specializations []string
	Experience      *Experience
	CostType        *CostType
	Cost            *int64
}

// Apply returns p with the non-nil fields of u set.
func (u ExecutorProfileUpdate) Apply(p ExecutorProfile) ExecutorProfile {
	if u.Description != nil {
		p.Description = *u.Description
	}
	if u.Classification != nil {
		p.Classification = *u.Classification
	}
	if u.Tags != nil {
		p.Tags = append([]string(nil), u.Tags...)
	}
	if u.Specializations != nil {
		p.Specializations = append([]string(nil), u.Specializations...)
	}
	if u.Experience != nil {
		p.Experience = *u.Experience
	}
	if u.CostType != nil {
		p.CostType = *u.CostType
	}
	if u.Cost != nil {
		p.Cost = *u.Cost
	}
	return p
}

// Valid reports whether every set field holds an allowed value.
func (u ExecutorProfileUpdate) Valid() bool {
	if u.Experience != nil {
		switch *u.Experience {
		case ExperienceLessYear, ExperienceOverYear, ExperienceOverThreeYear, ExperienceOverFiveYear, ExperienceOverTenYear:
		default:
			return false
		}
	}
	if u.CostType != nil {
		switch *u.CostType {
		case CostTypeNone, CostTypeContract, CostTypeInHour, CostTypeInOrder:
		default:
			return false
		}
	}
	return u.Cost == nil || *u.Cost >= 0
}
