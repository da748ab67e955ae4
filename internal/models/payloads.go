package models

type AskRequest struct {
	Email string `json:"email"`
	Input string `json:"input"`
}

type AskResponse struct {
	Answer  string `json:"answer"`
	Context string `json:"context"`
}

type UploadResponse struct {
	Message          string `json:"message"`
	Status           string `json:"status"`
	EvaluatorInvoked bool   `json:"evaluator_invoked,omitempty"`
}

type TimeoutResponse struct {
	Message    string `json:"message"`
	LastStatus string `json:"lastStatus"`
}

type UsersResponse struct {
	Emails []string `json:"emails"`
}

// EvaluationJob is the payload handed to the evaluation worker by the upload
// workflow. It mirrors the artifact's metadata sidecar.
type EvaluationJob struct {
	Email           string `json:"email"`
	Name            string `json:"name"`
	ToDesignation   string `json:"to_designation"`
	FromDesignation string `json:"from_designation"`
}
