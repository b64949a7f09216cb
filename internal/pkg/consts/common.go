package consts

const (
	MimePrefixImage = "image"
)

const (
	PlanBasic   = "basic"
	PlanSilver  = "silver"
	PlanGold    = "gold"
	PlanDiamond = "diamond"
)

const (
	SubscriptionFree       = "free"
	SubscriptionSubscribed = "subscribed"
	SubscriptionCanceled   = "canceled"
)
