package domain

// SessionRequest is the JSON body accepted by the session registration
// endpoint.
type SessionRequest struct {
	Username string `json:"username"`
	Val      string `json:"val"`
}

// SolveRequest is a single websocket frame asking for a puzzle answer.
type SolveRequest struct {
	Year uint32 `json:"year"`
	Day  uint32 `json:"day"`
}

// SolveResponse answers a [SolveRequest]. Exactly one of Answer or Error
// is set.
type SolveResponse struct {
	Year      uint32 `json:"year"`
	Day       uint32 `json:"day"`
	Answer    string `json:"answer,omitempty"`
	Error     string `json:"error,omitempty"`
	ErrorCode string `json:"error_code,omitempty"`
}

// PuzzleInfo describes a registered solver in listings.
type PuzzleInfo struct {
	Year uint32 `json:"year"`
	Day  uint32 `json:"day"`
}

// ErrorResponse is the JSON body returned by the server for structured errors.
type ErrorResponse struct {
	Error     string `json:"error"`
	ErrorCode string `json:"error_code,omitempty"`
}
