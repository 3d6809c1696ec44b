package action

import "time"

// Params are the invocation parameters. All four fields are required and must
// be non-empty after trimming.
type Params struct {
	UserName        string `json:"userName"`
	IdentityStoreID string `json:"identityStoreId"`
	GroupID         string `json:"groupId"`
	Region          string `json:"region"`
}

// Secrets carries the AWS credentials sourced from the secret store. Values
// are never logged.
type Secrets struct {
	AccessKeyID     string `json:"ACCESS_KEY_ID"`
	SecretAccessKey string `json:"SECRET_ACCESS_KEY"`
}

// Result is returned once per successful invocation. Removed is false when no
// membership record was found at lookup or delete time.
type Result struct {
	UserName  string    `json:"userName"`
	GroupID   string    `json:"groupId"`
	UserID    string    `json:"userId"`
	Removed   bool      `json:"removed"`
	RemovedAt time.Time `json:"removedAt"`
}

// HaltParams describe why the framework aborted the job.
type HaltParams struct {
	Reason   string `json:"reason"`
	UserName string `json:"userName,omitempty"`
	GroupID  string `json:"groupId,omitempty"`
}

// HaltSummary is the best-effort report returned from Halt. No cleanup is
// performed; CleanupCompleted is reported true unconditionally.
type HaltSummary struct {
	UserName         string    `json:"userName"`
	GroupID          string    `json:"groupId"`
	Reason           string    `json:"reason"`
	HaltedAt         time.Time `json:"haltedAt"`
	CleanupCompleted bool      `json:"cleanupCompleted"`
}
