package dto

// NotificationListFilter represents the query of the notification feed
type NotificationListFilter struct {
	After uint64 `form:"after"`
	Limit int    `form:"limit"`
}
