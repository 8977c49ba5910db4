package dto

// ProjectAccessResponse describes the caller's resolved access.
type ProjectAccessResponse struct {
	ProjectID string  `json:"project_id"`
	Allowed   bool    `json:"allowed"`
	Level     string  `json:"level"`
	Role      *string `json:"role,omitempty"`
}
