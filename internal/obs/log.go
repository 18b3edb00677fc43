package obs

import (
	"encoding/json"
	"log"
	"os"
	"sync"
)

var (
	loggerOnce sync.Once
	logger     *log.Logger
)

// Logger returns the shared line-oriented logger. Every line it carries is
// a self-contained JSON object (request logs, audit events).
func Logger() *log.Logger {
	loggerOnce.Do(func() {
		logger = log.New(os.Stdout, "", 0)
	})
	return logger
}

// RequestEntry is one completed HTTP request as logged by the API.
type RequestEntry struct {
	TS         string `json:"ts"`
	Level      string `json:"level"`
	Msg        string `json:"msg"`
	RequestID  string `json:"request_id"`
	Method     string `json:"method"`
	Path       string `json:"path"`
	Status     int    `json:"status"`
	DurationMS int64  `json:"duration_ms"`
	RemoteIP   string `json:"remote_ip"`
	UserAgent  string `json:"user_agent"`
}

// LogRequest emits one JSON line per completed request. Level and message
// are fixed here so every request line has the same shape.
func LogRequest(e RequestEntry) {
	e.Level = "info"
	e.Msg = "request_complete"
	data, err := json.Marshal(e)
	if err != nil {
		Logger().Printf(`{"ts":%q,"level":"error","msg":"request_log_marshal_failed","request_id":%q}`,
			e.TS, e.RequestID)
		return
	}
	Logger().Println(string(data))
}
