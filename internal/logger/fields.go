package logger

import (
	"log/slog"
)

// Standard field keys for structured logging. Use these consistently
// across all log statements so aggregation/querying keys line up.
const (
	// Distributed tracing
	KeyTraceID = "trace_id"
	KeySpanID  = "span_id"

	// Connection / request identification
	KeyConnectionID = "connection_id" // reactor connection ID
	KeyRequestID    = "request_id"    // envelope request_id
	KeyClientIP     = "client_ip"
	KeyClientPort   = "client_port"

	// Envelope / frame
	KeyPath        = "path"
	KeyRequestType = "request_type"
	KeyStatus      = "status"
	KeyStatusMsg   = "status_msg"
	KeyContentType = "content_type"

	// I/O
	KeyOffset       = "offset"
	KeyCount        = "count"
	KeyBytesRead    = "bytes_read"
	KeyBytesWritten = "bytes_written"

	// Operation metadata
	KeyDurationMs = "duration_ms"
	KeyError      = "error"
	KeyErrorCode  = "error_code"
	KeyOperation  = "operation"

	// Mailbox / worker pool
	KeyQueueDepth = "queue_depth"
	KeyWorkerID   = "worker_id"

	// Block storage / repository backends
	KeyStoreName = "store_name"
	KeyStoreType = "store_type" // disk, s3
	KeyBucket    = "bucket"
	KeyRegion    = "region"
	KeyAttempt   = "attempt"
)

// TraceID returns a slog.Attr for a trace ID
func TraceID(id string) slog.Attr {
	return slog.String(KeyTraceID, id)
}

// SpanID returns a slog.Attr for a span ID
func SpanID(id string) slog.Attr {
	return slog.String(KeySpanID, id)
}

// ConnectionID returns a slog.Attr for a reactor connection ID
func ConnectionID(id uint64) slog.Attr {
	return slog.Uint64(KeyConnectionID, id)
}

// RequestID returns a slog.Attr for an envelope request ID
func RequestID(id uint64) slog.Attr {
	return slog.Uint64(KeyRequestID, id)
}

// ClientIP returns a slog.Attr for a client IP address
func ClientIP(addr string) slog.Attr {
	return slog.String(KeyClientIP, addr)
}

// ClientPort returns a slog.Attr for a client source port
func ClientPort(port int) slog.Attr {
	return slog.Int(KeyClientPort, port)
}

// Path returns a slog.Attr for an envelope request path
func Path(p string) slog.Attr {
	return slog.String(KeyPath, p)
}

// RequestType returns a slog.Attr for an envelope request type
func RequestType(t string) slog.Attr {
	return slog.String(KeyRequestType, t)
}

// Status returns a slog.Attr for an envelope response status
func Status(code int) slog.Attr {
	return slog.Int(KeyStatus, code)
}

// StatusMsg returns a slog.Attr for a human-readable status message
func StatusMsg(msg string) slog.Attr {
	return slog.String(KeyStatusMsg, msg)
}

// ContentType returns a slog.Attr for an envelope content type
func ContentType(t string) slog.Attr {
	return slog.String(KeyContentType, t)
}

// Offset returns a slog.Attr for a block offset
func Offset(off uint64) slog.Attr {
	return slog.Uint64(KeyOffset, off)
}

// Count returns a slog.Attr for a requested byte count
func Count(c uint32) slog.Attr {
	return slog.Uint64(KeyCount, uint64(c))
}

// BytesRead returns a slog.Attr for actual bytes read
func BytesRead(n int) slog.Attr {
	return slog.Int(KeyBytesRead, n)
}

// BytesWritten returns a slog.Attr for actual bytes written
func BytesWritten(n int) slog.Attr {
	return slog.Int(KeyBytesWritten, n)
}

// DurationMs returns a slog.Attr for an operation duration
func DurationMs(ms float64) slog.Attr {
	return slog.Float64(KeyDurationMs, ms)
}

// Err returns a slog.Attr for an error
func Err(err error) slog.Attr {
	if err == nil {
		return slog.Attr{}
	}
	return slog.String(KeyError, err.Error())
}

// ErrorCode returns a slog.Attr for a numeric error code
func ErrorCode(code int) slog.Attr {
	return slog.Int(KeyErrorCode, code)
}

// Operation returns a slog.Attr for a sub-operation name
func Operation(op string) slog.Attr {
	return slog.String(KeyOperation, op)
}

// QueueDepth returns a slog.Attr for a mailbox/worker-pool queue depth
func QueueDepth(n int) slog.Attr {
	return slog.Int(KeyQueueDepth, n)
}

// WorkerID returns a slog.Attr for a worker-pool goroutine index
func WorkerID(id int) slog.Attr {
	return slog.Int(KeyWorkerID, id)
}

// StoreName returns a slog.Attr for a named block-store/repository backend
func StoreName(name string) slog.Attr {
	return slog.String(KeyStoreName, name)
}

// StoreType returns a slog.Attr for a block-store backend kind
func StoreType(t string) slog.Attr {
	return slog.String(KeyStoreType, t)
}

// Bucket returns a slog.Attr for an S3 bucket name
func Bucket(name string) slog.Attr {
	return slog.String(KeyBucket, name)
}

// Region returns a slog.Attr for an S3 region
func Region(r string) slog.Attr {
	return slog.String(KeyRegion, r)
}

// Attempt returns a slog.Attr for a retry attempt number
func Attempt(n int) slog.Attr {
	return slog.Int(KeyAttempt, n)
}
