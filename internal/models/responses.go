package models

import "time"

// ErrorResponse is the JSON body of every non-2xx reply.
type ErrorResponse struct {
	Error string `json:"error"`
}

// MessageResponse acknowledges state-changing calls with no payload.
type MessageResponse struct {
	Message string `json:"message"`
}

// SessionResponse returns the id clients echo in X-Session-ID.
type SessionResponse struct {
	SessionID string `json:"session_id"`
}

// UploadFileResult reports the outcome of one file in a multipart upload.
// Error is set when the file was rejected; the other files still load.
type UploadFileResult struct {
	FileName string `json:"file_name"`
	Category string `json:"category,omitempty"`
	Rows     int    `json:"rows,omitempty"`
	Columns  int    `json:"columns,omitempty"`
	Error    string `json:"error,omitempty"`
}

// UploadResponse lists per-file results in upload order.
type UploadResponse struct {
	Results []UploadFileResult `json:"results"`
}

// DatasetStatus describes one category slot of a session.
type DatasetStatus struct {
	Category   string     `json:"category"`
	Loaded     bool       `json:"loaded"`
	FileName   string     `json:"file_name,omitempty"`
	Rows       int        `json:"rows,omitempty"`
	Columns    int        `json:"columns,omitempty"`
	UploadedAt *time.Time `json:"uploaded_at,omitempty"`
}

// StatusResponse lists every category slot, loaded or not.
type StatusResponse struct {
	Datasets []DatasetStatus `json:"datasets"`
}
