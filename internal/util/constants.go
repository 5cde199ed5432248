package util

const (
	DateFormat = "2006-01-02"
	TimeFormat = "2006-01-02 15:04:05"
)

const (
	StorageLocal = "local"
	StorageMinio = "minio"
)

const (
	MimeJSON = "application/json"

	// ReportPrefix is the object prefix of archived assessment reports.
	ReportPrefix = "reports"
)

// Context keys set by middleware.
const (
	ContextUserKey = "user"
)
