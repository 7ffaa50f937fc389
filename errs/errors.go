package errs

import "strings"

const (
	// StoreUnavailable is returned when a read or batch commit against the
	// document store fails. Callers roll back any optimistic state.
	StoreUnavailable engineError = "engage: document store unavailable"
	// ContentNotFound is returned when an operation targets a content
	// document that does not exist.
	ContentNotFound engineError = "engage: content not found"
	// CommentNotFound is returned when a comment id cannot be resolved
	// within its content item's collection.
	CommentNotFound engineError = "engage: comment not found"
	// UserNotFound is returned by the account directory when no profile
	// matches the given id or auth uid.
	UserNotFound engineError = "engage: user not found"
	// UnknownKind is returned when a content kind tag has no registered
	// descriptor.
	UnknownKind engineError = "engage: unknown content kind"
	// SelfFollow is returned when a user attempts to follow themselves.
	SelfFollow engineError = "engage: cannot follow yourself"
	// Busy is returned by the optimistic controller when a toggle is
	// already in flight for the same value.
	Busy engineError = "engage: operation already in progress"

	// ReplyDepthExceeded is returned when a comment's parent is itself a
	// reply; threads are two levels deep at most.
	ReplyDepthExceeded privateError = "engage: replies may not target another reply"
	// PathInvalid is returned by store adapters for malformed document paths.
	PathInvalid privateError = "engage: document path is invalid"
)

type engineError string

func (e engineError) Error() string {
	return string(e)
}

// Public strips the package prefix so the message can be shown to end users.
func (e engineError) Public() string {
	s := strings.Replace(string(e), "engage: ", "", 1)
	split := strings.Split(s, " ")
	split[0] = strings.Title(split[0])
	return strings.Join(split, " ")
}

type privateError string

func (e privateError) Error() string {
	return string(e)
}
