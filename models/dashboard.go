package models

type DashboardStats struct {
	UsersTotal             int     `json:"users_total"`
	CampsTotal             int     `json:"camps_total"`
	RegistrationsTotal     int     `json:"registrations_total"`
	PaidRegistrations      int     `json:"paid_registrations"`
	ConfirmedRegistrations int     `json:"confirmed_registrations"`
	FeesCollected          float64 `json:"fees_collected"`
}

// RegistrationStats - агрегаты по заявкам, считаются хранилищем.
type RegistrationStats struct {
	Total         int
	Paid          int
	Confirmed     int
	FeesCollected float64
}
