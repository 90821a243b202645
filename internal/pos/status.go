package pos

import "github.com/project-sy789/coffeeorder-sub000/internal/models"

var statusRank = map[string]int{
	models.StatusPending:   0,
	models.StatusPreparing: 1,
	models.StatusReady:     2,
	models.StatusCompleted: 3,
}

// CanTransition reports whether an order may move from one status to another.
// Orders move forward, possibly skipping steps, and can be cancelled until
// they are completed.
func CanTransition(from, to string) bool {
	if from == models.StatusCompleted || from == models.StatusCancelled {
		return false
	}
	if to == models.StatusCancelled {
		return true
	}
	fr, ok := statusRank[from]
	if !ok {
		return false
	}
	tr, ok := statusRank[to]
	if !ok {
		return false
	}
	return tr > fr
}

// ValidStatus reports whether s names an order status.
func ValidStatus(s string) bool {
	_, ok := statusRank[s]
	return ok || s == models.StatusCancelled
}
