package pipeline

// Kind classifies a submission failure for the caller. Every remote-dependency
// failure is converted to one of these before it leaves the pipeline.
type Kind int

const (
	// KindClientInput covers bad geometry, bad coordinates and unreadable,
	// unsupported or too-small images. Never retried.
	KindClientInput Kind = iota
	// KindContentRejected means moderation flagged the image. The image is
	// never uploaded.
	KindContentRejected
	// KindDependencyUnavailable means moderation or the media host could not
	// be reached. No document is persisted.
	KindDependencyUnavailable
	// KindPersistence means the metadata insert failed after a successful
	// upload; the uploaded asset has been rolled back.
	KindPersistence
)

func (k Kind) String() string {
	switch k {
	case KindClientInput:
		return "client_input"
	case KindContentRejected:
		return "content_rejected"
	case KindDependencyUnavailable:
		return "dependency_unavailable"
	case KindPersistence:
		return "persistence"
	default:
		return "unknown"
	}
}

// Error is the only error type Submit returns. Detail is safe to show to the
// caller; Err carries the underlying cause for logs.
type Error struct {
	Kind   Kind
	Detail string
	Err    error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return e.Detail + ": " + e.Err.Error()
	}
	return e.Detail
}

func (e *Error) Unwrap() error { return e.Err }

func clientInputErr(err error) *Error {
	return &Error{Kind: KindClientInput, Detail: err.Error(), Err: err}
}
