package util

const (
	DateFormat = "2006-01-02"
	TimeFormat = "2006-01-02 15:04:05"
)

const (
	StorageLocal = "local"
	StorageMinio = "minio"
	StorageOSS   = "oss"
)

// 限流端点标识，中间件和配置共用
const (
	EndpointSendMessage   = "messages.send"
	EndpointUploadFile    = "files.upload"
	EndpointCreateVersion = "files.version"
)

const (
	MimeOctetStream = "application/octet-stream"
)
