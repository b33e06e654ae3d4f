package models

// TargetAction is the per-file state a client asks for. Only cancel exists.
type TargetAction string

const TargetCancel TargetAction = "CANCEL"

// FileTarget addresses one file of a request.
type FileTarget struct {
	FileID string
	Action TargetAction
}

// UpdateRequest is a batch of per-file targets for one request. Domains is
// shorthand for "every file of these domains".
type UpdateRequest struct {
	RequestID string
	Targets   []FileTarget
	Domains   []string
}

// UpdateAck reports which files were cancelled and which the device had
// already finished by the time the gateway acknowledged.
type UpdateAck struct {
	RequestID string
	Cancelled []string
	Skipped   []string
}
