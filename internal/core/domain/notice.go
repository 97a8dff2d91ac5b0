package domain

// NoticeLevel distinguishes success toasts from failures.
type NoticeLevel int

const (
	NoticeInfo NoticeLevel = iota
	NoticeError
)

// Notice is a transient operator notification. Failures of response
// actions surface here and are never stored on an Email or Response.
type Notice struct {
	ID      string
	Level   NoticeLevel
	Title   string
	Message string
}
