package api

// CountResponse carries a single aggregate count.
type CountResponse struct {
	Total int64 `json:"total" description:"Number of matching entities"`
}

// StatusResponse acknowledges an operation with no entity to return.
type StatusResponse struct {
	Status string `json:"status" description:"Operation outcome"`
}
