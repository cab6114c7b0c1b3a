package models

// ErrorBody is the standard error payload of the backend.
type ErrorBody struct {
	Message string `json:"error"`
	Details string `json:"details,omitempty"`
}

func (e ErrorBody) IsEmpty() bool {
	return len(e.Message) == 0 && len(e.Details) == 0
}
