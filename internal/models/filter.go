package models

// SortOption names the list orderings offered by the client list, mirroring
// the sort picker of the mobile app.
type SortOption string

const (
	SortLastInteractionRecent SortOption = "lastInteractionRecent"
	SortLastInteractionOldest SortOption = "lastInteractionOldest"
	SortReminderDateRecent    SortOption = "reminderDateRecent"
	SortReminderDateOldest    SortOption = "reminderDateOldest"
	SortNameAscending         SortOption = "nameAscending"
	SortNameDescending        SortOption = "nameDescending"
)

// ListFilter narrows and orders a client listing. Zero value lists
// everything, most recently contacted first.
type ListFilter struct {
	Status  *Status
	Product string
	Search  string // matches name, phone, email or product
	Sort    SortOption
}
