package constants

import (
	"time"
)

// Dashboard timing
const (
	// SearchDebounceDelay - quiet period after the last criteria change before
	// the catalog refetches (300ms)
	SearchDebounceDelay = 300 * time.Millisecond

	// StatusMessageTimeout - how long a status message stays visible (3 seconds)
	StatusMessageTimeout = 3 * time.Second

	// MinSearchDebounceDelay / MaxSearchDebounceDelay bound the configurable debounce
	MinSearchDebounceDelay = 0
	MaxSearchDebounceDelay = 5 * time.Second

	// MaxStatusMessageTimeout caps the configurable status timeout
	MaxStatusMessageTimeout = time.Minute
)

// API and Context Timeouts
const (
	// APIRequestTimeout - default end-to-end timeout for one API request (30 seconds)
	APIRequestTimeout = 30 * time.Second

	// ProxyWarmupTimeout - timeout for the optional proxy warmup request (15 seconds)
	ProxyWarmupTimeout = 15 * time.Second
)

// HTTP Client Timeouts
const (
	// HTTPIdleConnTimeout - how long to keep idle connections open (90 seconds)
	HTTPIdleConnTimeout = 90 * time.Second

	// HTTPTLSHandshakeTimeout - timeout for TLS handshake (30 seconds)
	HTTPTLSHandshakeTimeout = 30 * time.Second

	// HTTPExpectContinueTimeout - timeout for 100-continue response (1 second)
	HTTPExpectContinueTimeout = 1 * time.Second

	// HTTPDialTimeout - timeout for establishing connection (30 seconds)
	HTTPDialTimeout = 30 * time.Second

	// HTTPDialKeepAlive - keep-alive period for dialer (30 seconds)
	HTTPDialKeepAlive = 30 * time.Second

	// HTTPMaxIdleConnsPerHost - the dashboard talks to a single API host
	HTTPMaxIdleConnsPerHost = 16
)

// Event System
const (
	// EventBusDefaultBuffer - default buffer size for event channels (256)
	// The dashboard emits a handful of events per user action
	EventBusDefaultBuffer = 256

	// EventBusMaxBuffer - maximum buffer size (2048)
	EventBusMaxBuffer = 2048
)

// Log rotation (lumberjack)
const (
	LogMaxSizeMB  = 10
	LogMaxBackups = 5
	LogMaxAgeDays = 30
)

// Status message texts shown to the user
const (
	MsgUploadSucceeded  = "File uploaded successfully"
	MsgUploadFailed     = "Upload failed"
	MsgChooseFileFirst  = "Choose a file first"
	MsgDownloadFailed   = "Failed to download file."
	MsgDeleteFailed     = "Failed to delete file."
	MsgPreviewMissing   = "[Preview not available]"
	MsgPreviewErrorName = "Error"
	MsgPreviewNoSupport = "Preview not supported for this file type."
)
