package domain

// PlanType enumerates subscription plans assignable at signup.
type PlanType string

const (
	PlanSeed    PlanType = "seed"
	PlanEdge    PlanType = "edge"
	PlanQuantum PlanType = "quantum"
)

// AccountType enumerates account categories.
type AccountType string

const (
	AccountIndividual AccountType = "individual"
	AccountBusiness   AccountType = "business"
)
