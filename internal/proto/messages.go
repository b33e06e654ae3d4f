package proto

import "time"

type FileSpec struct {
	FileID    string    `json:"file_id"`
	Domain    string    `json:"domain"`
	BootIndex int       `json:"boot_index,omitempty"`
	StartTime time.Time `json:"start_time"`
	EndTime   time.Time `json:"end_time"`
}

type FileEntry struct {
	FileID          string    `json:"file_id"`
	Domain          string    `json:"domain"`
	BootIndex       int       `json:"boot_index"`
	StartTime       time.Time `json:"start_time"`
	EndTime         time.Time `json:"end_time"`
	Status          string    `json:"status"`
	Progress        int       `json:"progress"`
	ObjectKey       string    `json:"object_key,omitempty"`
	Size            int64     `json:"size,omitempty"`
	CancelRequested bool      `json:"cancel_requested,omitempty"`
	FailReason      string    `json:"fail_reason,omitempty"`
	UpdatedAt       time.Time `json:"updated_at"`
}

type UploadRequest struct {
	ID          string       `json:"id"`
	WorkspaceID string       `json:"workspace_id,omitempty"`
	DeviceSN    string       `json:"device_sn"`
	RequestedBy string       `json:"requested_by"`
	Description string       `json:"description,omitempty"`
	Status      string       `json:"status"`
	Files       []*FileEntry `json:"files"`
	CreatedAt   time.Time    `json:"created_at"`
	UpdatedAt   time.Time    `json:"updated_at"`
}

type ListUploadedLogsRequest struct {
	DeviceSN  string    `json:"device_sn"`
	Page      int       `json:"page"`
	PageSize  int       `json:"page_size"`
	BeginTime time.Time `json:"begin_time"`
	EndTime   time.Time `json:"end_time"`
	Status    string    `json:"status,omitempty"`
	Keyword   string    `json:"keyword,omitempty"`
	Ascending bool      `json:"ascending,omitempty"`
}

type ListUploadedLogsResponse struct {
	Items    []*UploadRequest `json:"items"`
	Page     int              `json:"page"`
	PageSize int              `json:"page_size"`
	Total    int              `json:"total"`
}

type LogFile struct {
	BootIndex int       `json:"boot_index"`
	StartTime time.Time `json:"start_time"`
	EndTime   time.Time `json:"end_time"`
	Size      int64     `json:"size"`
}

type DomainDescriptor struct {
	DeviceSN string     `json:"device_sn"`
	Domain   string     `json:"domain"`
	Files    []*LogFile `json:"files"`
}

type ListRealtimeDomainsRequest struct {
	DeviceSN string   `json:"device_sn"`
	Domains  []string `json:"domains"`
}

type ListRealtimeDomainsResponse struct {
	Domains []*DomainDescriptor `json:"domains"`
}

type StartUploadRequest struct {
	DeviceSN    string      `json:"device_sn"`
	WorkspaceID string      `json:"workspace_id,omitempty"`
	Description string      `json:"description,omitempty"`
	Files       []*FileSpec `json:"files"`
}

type StartUploadResponse struct {
	Request *UploadRequest `json:"request"`
}

type CancelUploadRequest struct {
	DeviceSN  string   `json:"device_sn"`
	RequestID string   `json:"request_id"`
	FileIDs   []string `json:"file_ids,omitempty"`
	Domains   []string `json:"domains,omitempty"`
}

type CancelUploadResponse struct {
	RequestID string   `json:"request_id"`
	Cancelled []string `json:"cancelled"`
	Skipped   []string `json:"skipped"`
}

type DeleteHistoryRequest struct {
	DeviceSN  string `json:"device_sn"`
	RequestID string `json:"request_id"`
}

type DeleteHistoryResponse struct{}

type GetDownloadURLRequest struct {
	RequestID string `json:"request_id"`
	FileID    string `json:"file_id"`
}

type GetDownloadURLResponse struct {
	URL string `json:"url"`
}
