package domain

const (
	MinCreditScore = 300
	MaxCreditScore = 850

	defaultCreditScore = 650
	defaultEnergy      = 100
)

// ApplyDeltas adds resource effects to the profile. A zero delta leaves its field untouched,
// so a null field stays null unless an effect actually lands on it.
func (p *StudentProfile) ApplyDeltas(deltaCredit int, deltaCash float64, deltaEnergy int) {
	if deltaCredit != 0 {
		credit := defaultCreditScore
		if p.CreditScore != nil {
			credit = *p.CreditScore
		}
		credit = clamp(credit+deltaCredit, MinCreditScore, MaxCreditScore)
		p.CreditScore = &credit
	}
	if deltaCash != 0 {
		cash := 0.0
		if p.CashBalance != nil {
			cash = *p.CashBalance
		}
		cash += deltaCash
		p.CashBalance = &cash
	}
	if deltaEnergy != 0 {
		energy := defaultEnergy
		if p.Energy != nil {
			energy = *p.Energy
		}
		energy += deltaEnergy
		if energy < 0 {
			energy = 0
		}
		p.Energy = &energy
	}
}

// GainXP adds experience and promotes the profile until its XP fits inside the current level.
// It returns the number of level transitions.
func (p *StudentProfile) GainXP(gain int, settings GameSettings) int {
	if p.Level < 1 {
		p.Level = 1
	}
	p.XP += gain
	if p.XP < 0 {
		p.XP = 0
	}

	levelUps := 0
	for {
		need := settings.XPNeeded(p.Level)
		if p.XP < need {
			break
		}
		p.XP -= need
		p.Level++
		levelUps++
	}
	return levelUps
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
