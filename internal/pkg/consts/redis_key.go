package consts

const (
	UploadQuotaLock     = "detection:upload:lock:"
	DailySummaryJobLock = "summary:finalize:lock"
	CheckoutSessionKey  = "billing:checkout:session:"
)
