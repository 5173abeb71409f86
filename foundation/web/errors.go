package web

// Error carries an application error together with the HTTP status the
// gateway should answer with. Repositories return these so controllers can
// pass them straight to RespondError.
type Error struct {
	Err    error
	Status int
}

func NewRequestError(err error, status int) error {
	return &Error{Err: err, Status: status}
}

func (e *Error) Error() string {
	return e.Err.Error()
}

// Unwrap lets errors.Is reach the sentinel error kinds wrapped inside.
func (e *Error) Unwrap() error {
	return e.Err
}
