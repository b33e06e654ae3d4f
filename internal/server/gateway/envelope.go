package gateway

import (
	"fmt"
	"time"

	"github.com/dmitrijs2005/devlogs/internal/server/models"
	"github.com/fxamacker/cbor/v2"
)

// Methods carried on the gateway channel.
const (
	MethodFileUploadStart    = "fileupload_start"
	MethodFileUploadUpdate   = "fileupload_update"
	MethodFileUploadList     = "fileupload_list"
	MethodFileUploadProgress = "fileupload_progress"
	MethodSessionOnline      = "session_online"
	MethodSessionOffline     = "session_offline"
)

// Envelope kinds.
const (
	KindCommand = "command"
	KindReply   = "reply"
	KindEvent   = "event"
)

// Envelope is the unit exchanged with gateways. Bid correlates a command
// with its reply; Tid identifies one logical transaction (an upload request).
type Envelope struct {
	Bid       string          `cbor:"bid"`
	Tid       string          `cbor:"tid,omitempty"`
	Timestamp int64           `cbor:"timestamp"`
	Gateway   string          `cbor:"gateway,omitempty"`
	DeviceSN  string          `cbor:"device_sn"`
	Kind      string          `cbor:"kind"`
	Method    string          `cbor:"method"`
	Result    int             `cbor:"result,omitempty"`
	Data      cbor.RawMessage `cbor:"data,omitempty"`
}

func newEnvelope(kind, method, deviceSN, bid, tid string, data any, now time.Time) (*Envelope, error) {
	env := &Envelope{
		Bid:       bid,
		Tid:       tid,
		Timestamp: now.UnixMilli(),
		DeviceSN:  deviceSN,
		Kind:      kind,
		Method:    method,
	}
	if data != nil {
		raw, err := Marshal(data)
		if err != nil {
			return nil, fmt.Errorf("encode %s data: %w", method, err)
		}
		env.Data = raw
	}
	return env, nil
}

// DecodeData unmarshals the envelope payload into v.
func (e *Envelope) DecodeData(v any) error {
	if len(e.Data) == 0 {
		return fmt.Errorf("%s: empty data", e.Method)
	}
	return Unmarshal(e.Data, v)
}

// FileCommand names one file in a start command.
type FileCommand struct {
	FileID    string `cbor:"file_id"`
	Module    string `cbor:"module"`
	BootIndex int    `cbor:"boot_index"`
	StartTime int64  `cbor:"start_time,omitempty"`
	EndTime   int64  `cbor:"end_time,omitempty"`
}

type StartData struct {
	Files []FileCommand `cbor:"files"`
}

type TargetCommand struct {
	FileID string `cbor:"file_id"`
	Action string `cbor:"action"`
}

type UpdateData struct {
	Targets []TargetCommand `cbor:"targets"`
}

type ListData struct {
	Modules []string `cbor:"module_list"`
}

type FileInfo struct {
	BootIndex int   `cbor:"boot_index"`
	StartTime int64 `cbor:"start_time"`
	EndTime   int64 `cbor:"end_time"`
	Size      int64 `cbor:"size"`
}

type ModuleFiles struct {
	DeviceSN string     `cbor:"device_sn"`
	Module   string     `cbor:"module"`
	List     []FileInfo `cbor:"list"`
}

// ListReply is the payload of a fileupload_list reply.
type ListReply struct {
	Files []ModuleFiles `cbor:"files"`
}

// Upload progress statuses reported by devices.
const (
	ProgressInProgress = "in_progress"
	ProgressOK         = "ok"
	ProgressFailed     = "failed"
)

// ProgressData is the payload of a fileupload_progress event.
type ProgressData struct {
	FileID    string `cbor:"file_id"`
	Status    string `cbor:"status"`
	Progress  int    `cbor:"progress"`
	ObjectKey string `cbor:"object_key,omitempty"`
	Size      int64  `cbor:"size,omitempty"`
	Reason    string `cbor:"reason,omitempty"`
}

// Event converts the payload into a device event. ok is false for an
// unrecognised status.
func (p ProgressData) Event() (ev models.DeviceEvent, ok bool) {
	ev = models.DeviceEvent{Progress: p.Progress, ObjectKey: p.ObjectKey, Size: p.Size, Reason: p.Reason}
	switch p.Status {
	case ProgressInProgress:
		ev.Kind = models.EventProgress
	case ProgressOK:
		ev.Kind = models.EventCompleted
	case ProgressFailed:
		ev.Kind = models.EventFailed
	default:
		return ev, false
	}
	return ev, true
}

func unixMilli(t time.Time) int64 {
	if t.IsZero() {
		return 0
	}
	return t.UnixMilli()
}

func fromUnixMilli(ms int64) time.Time {
	if ms == 0 {
		return time.Time{}
	}
	return time.UnixMilli(ms).UTC()
}
