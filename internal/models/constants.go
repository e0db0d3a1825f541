package models

const (
	StatusNew         = "New"
	StatusConfirmed   = "Confirmed"
	StatusDepositPaid = "Deposit Paid"
	StatusScheduled   = "Scheduled"
	StatusShooting    = "Shooting"
	StatusEditing     = "Editing"
	StatusReview      = "Review"
	StatusDelivered   = "Delivered"
	StatusCompleted   = "Completed"
	StatusCancelled   = "Cancelled"
)

const (
	MethodCash         = "Cash"
	MethodBankTransfer = "Bank Transfer"
	MethodCard         = "Card"
	MethodOther        = "Other"
)

const (
	// DefaultRevisionLimit included revision rounds per project
	DefaultRevisionLimit = 2

	// WorkerQueueSize размер очереди воркера
	WorkerQueueSize = 1000

	// DashboardCacheTTL время жизни кэша сводки в секундах
	DashboardCacheTTL = 60

	// SheetsCacheTTL время жизни кэша строк Google Sheets
	SheetsCacheTTL = 60 * 60 // 1 час в секундах

	// DashboardRecentLimit projects shown in the dashboard recent list
	DashboardRecentLimit = 5
)

var projectStatuses = map[string]bool{
	StatusNew:         true,
	StatusConfirmed:   true,
	StatusDepositPaid: true,
	StatusScheduled:   true,
	StatusShooting:    true,
	StatusEditing:     true,
	StatusReview:      true,
	StatusDelivered:   true,
	StatusCompleted:   true,
	StatusCancelled:   true,
}

var paymentMethods = map[string]bool{
	MethodCash:         true,
	MethodBankTransfer: true,
	MethodCard:         true,
	MethodOther:        true,
}

func IsValidStatus(status string) bool {
	return projectStatuses[status]
}

// IsTerminalStatus reports whether no further transition is accepted.
func IsTerminalStatus(status string) bool {
	return status == StatusCompleted || status == StatusCancelled
}

func IsValidMethod(method string) bool {
	return paymentMethods[method]
}
