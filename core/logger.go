package core

// Logger is any leveled logger the services can report through.
// Implementations may inspect args for known types (eg. a user.User to
// attach caller identity, or an error to attach a stack trace).
type Logger interface {
	Debug(msg string, args ...interface{})
	Info(msg string, args ...interface{})
	Warn(msg string, args ...interface{})
	Error(msg string, args ...interface{})
	Fatal(msg string, args ...interface{})
}
