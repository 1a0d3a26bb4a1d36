package dream

// Decision is the outcome of an entitlement check.
type Decision struct {
	Allowed   bool     `json:"allowed"`
	Plan      PlanTier `json:"plan"`
	Used      int      `json:"interpretationsUsed"`
	Limit     int      `json:"interpretationsAllowed"`
	Remaining int      `json:"remaining"`
	Unlimited bool     `json:"unlimited"`
}

// Gate decides whether a profile may receive another interpretation and owns
// the counter mutation that follows a successful one.
type Gate struct{}

// Check is a pure decision over the profile's plan and counters.
func (Gate) Check(p Profile) Decision {
	if p.IsPremium() {
		return Decision{
			Allowed:   true,
			Plan:      p.Plan,
			Used:      p.InterpretationsUsed,
			Limit:     p.InterpretationsAllowed,
			Unlimited: true,
		}
	}
	remaining := p.InterpretationsAllowed - p.InterpretationsUsed
	if remaining < 0 {
		remaining = 0
	}
	return Decision{
		Allowed:   p.InterpretationsUsed < p.InterpretationsAllowed,
		Plan:      p.Plan,
		Used:      p.InterpretationsUsed,
		Limit:     p.InterpretationsAllowed,
		Remaining: remaining,
	}
}

// RecordUsage returns p with one interpretation consumed. The counter
// saturates at the allowance and premium profiles are returned untouched.
func (Gate) RecordUsage(p Profile) Profile {
	if p.IsPremium() {
		return p
	}
	if p.InterpretationsUsed < p.InterpretationsAllowed {
		p.InterpretationsUsed++
	}
	return p
}

// Upgrade flips p to premium without touching the counters.
func (Gate) Upgrade(p Profile) Profile {
	p.Plan = PlanPremium
	return p
}
