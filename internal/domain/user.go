package domain

// UserRef is the minimal caller identity attached to gated requests. It is
// supplied by the client alongside the payload and is never persisted here.
type UserRef struct {
	ID        string `json:"id"`
	Plan      string `json:"plan"`
	IsPremium bool   `json:"isPremium"`
}

// PlanPremium is the plan name that unlocks voice training.
const PlanPremium = "premium"

// Premium reports whether the user may use premium-gated features. Either
// signal is sufficient: a premium plan name or the explicit flag.
func (u UserRef) Premium() bool {
	return u.Plan == PlanPremium || u.IsPremium
}
