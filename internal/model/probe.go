package model

// ProbeRequest is what the backend POSTs to a user's agent endpoint.
type ProbeRequest struct {
	URL string `json:"url" binding:"required,url"`
}

// ProbeResult is the agent's verdict about one reachability probe.
type ProbeResult struct {
	IsUp      bool   `json:"is_up"`
	LatencyMS *int64 `json:"latency_ms"`
	Region    string `json:"region"`
}
