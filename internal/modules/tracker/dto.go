package tracker

import (
	"time"

	"projecttracker/internal/domain"
)

type LoginRequest struct {
	Password string `json:"password" binding:"required"`
}

type LoginResponse struct {
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expiresAt"`
}

// ProjectSummaryResponse is the roll-up view of one project.
type ProjectSummaryResponse struct {
	Project domain.Project `json:"project"`
	// Progress is the roll-up computed now; it equals Project.Progress once reconciled.
	Progress       int      `json:"progress"`
	PONumbers      []string `json:"poNumbers"`
	PurchaseOrders int      `json:"purchaseOrders"`
}

type DeletedResponse struct {
	ID string `json:"id"`
}
