package models

// FileStatus is the lifecycle state of one log file within an upload request.
type FileStatus string

const (
	StatusPending   FileStatus = "PENDING"
	StatusUploading FileStatus = "UPLOADING"
	StatusCancelled FileStatus = "CANCELLED"
	StatusFailed    FileStatus = "FAILED"
	StatusCompleted FileStatus = "COMPLETED"
)

// transitions lists, for every state, the states it may move to.
// UPLOADING -> UPLOADING is a progress update.
var transitions = map[FileStatus][]FileStatus{
	StatusPending:   {StatusUploading, StatusCompleted, StatusFailed, StatusCancelled},
	StatusUploading: {StatusUploading, StatusCompleted, StatusFailed, StatusCancelled},
	StatusCancelled: nil,
	StatusFailed:    nil,
	StatusCompleted: nil,
}

// Valid reports whether s is one of the known states.
func (s FileStatus) Valid() bool {
	_, ok := transitions[s]
	return ok
}

// Terminal reports whether no further transitions are allowed out of s.
func (s FileStatus) Terminal() bool {
	return s == StatusCompleted || s == StatusFailed || s == StatusCancelled
}

// CanTransition reports whether the table allows from -> to.
func CanTransition(from, to FileStatus) bool {
	for _, s := range transitions[from] {
		if s == to {
			return true
		}
	}
	return false
}

// SourcesOf returns every state from which to is reachable in one step, in a
// stable order. Stores use it as the compare-and-set precondition.
func SourcesOf(to FileStatus) []FileStatus {
	var out []FileStatus
	for _, from := range []FileStatus{StatusPending, StatusUploading, StatusCancelled, StatusFailed, StatusCompleted} {
		if CanTransition(from, to) {
			out = append(out, from)
		}
	}
	return out
}

// ActiveStatuses are the non-terminal states.
var ActiveStatuses = []FileStatus{StatusPending, StatusUploading}
