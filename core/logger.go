package core

// Logger is any leveled logger.
// args may carry errors, maps of extra data, or the acting user (reported to the error tracker).
type Logger interface {
	Debug(msg string, args ...interface{})
	Info(msg string, args ...interface{})
	Warn(msg string, args ...interface{})
	Error(msg string, args ...interface{})
	Fatal(msg string, args ...interface{})
}

// LogPerson identifies the acting user in log reports.
type LogPerson struct {
	ID    string
	Email string
}
