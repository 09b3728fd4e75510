package api

// MigrateRequest is the body of POST /api/v1/migration
type MigrateRequest struct {
	Identity  string `json:"identity"`
	Recipient string `json:"recipient"`
}

type ErrorResponse struct {
	Status string `json:"status"`
	Error  string `json:"error"`
}

type HealthResponse struct {
	Status string   `json:"status"`
	Chains []uint64 `json:"chains"`
}
