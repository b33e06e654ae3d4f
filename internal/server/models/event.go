package models

import "time"

type EventKind string

const (
	EventProgress  EventKind = "PROGRESS"
	EventCompleted EventKind = "COMPLETED"
	EventFailed    EventKind = "FAILED"
)

// DeviceEvent is an asynchronous, possibly duplicated, status report for one
// file, correlated by device serial and file id.
type DeviceEvent struct {
	Kind      EventKind
	Progress  int
	ObjectKey string
	Size      int64
	Reason    string
}

// TargetStatus maps the event to the file state it moves towards.
func (e DeviceEvent) TargetStatus() (FileStatus, bool) {
	switch e.Kind {
	case EventProgress:
		return StatusUploading, true
	case EventCompleted:
		return StatusCompleted, true
	case EventFailed:
		return StatusFailed, true
	default:
		return "", false
	}
}

// DomainDescriptor is a log domain currently listable on a live device.
// Never persisted.
type DomainDescriptor struct {
	DeviceSN string
	Domain   string
	Files    []LogFileDescriptor
}

type LogFileDescriptor struct {
	BootIndex int
	StartTime time.Time
	EndTime   time.Time
	Size      int64
}
