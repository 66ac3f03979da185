package logger

// Field names shared across packages so log queries stay consistent.
const (
	FieldUserID    = "user_id"
	FieldJobID     = "job_id"
	FieldThemeID   = "theme_id"
	FieldCandidate = "candidate_id"
	FieldTaskType  = "task_type"
	FieldStatus    = "status"
	FieldError     = "error"
	FieldKind      = "kind"
	FieldRetryIn   = "retry_after_seconds"
	FieldPostID    = "post_id"
)
