package notify

// Logger интерфейс логгера, реализуется pkg/logger
type Logger interface {
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}
