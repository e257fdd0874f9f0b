package models

// Member roles, ordered Viewer < Editor < Admin.
const (
	RoleViewer = "Viewer"
	RoleEditor = "Editor"
	RoleAdmin  = "Admin"
)

// Timeline statuses.
const (
	StatusPlanning  = "Planning"
	StatusActive    = "Active"
	StatusCompleted = "Completed"
	StatusArchived  = "Archived"
)

var roleHierarchy = map[string]int{
	RoleViewer: 1,
	RoleEditor: 2,
	RoleAdmin:  3,
}

// IsValidRole reports whether role is one of the three member roles.
func IsValidRole(role string) bool {
	_, ok := roleHierarchy[role]
	return ok
}

// HasMinimumRole reports whether have ranks at least as high as need.
// Unknown roles rank below Viewer.
func HasMinimumRole(have, need string) bool {
	return roleHierarchy[have] >= roleHierarchy[need]
}

// validStatusTransitions is the directed transition table. There are no
// self-loops, and the only way out of Archived is back to Completed; a direct
// Archived -> Planning/Active restart is intentionally not offered.
var validStatusTransitions = map[string][]string{
	StatusPlanning:  {StatusActive, StatusArchived},
	StatusActive:    {StatusCompleted, StatusArchived},
	StatusCompleted: {StatusArchived},
	StatusArchived:  {StatusCompleted},
}

// IsValidStatus reports whether s is a known timeline status.
func IsValidStatus(s string) bool {
	_, ok := validStatusTransitions[s]
	return ok
}

// IsValidStatusTransition reports whether a timeline may move from one status
// to another. Consulted before every status write.
func IsValidStatusTransition(from, to string) bool {
	for _, allowed := range validStatusTransitions[from] {
		if allowed == to {
			return true
		}
	}
	return false
}
