package kopilock

// Request bundles everything a single acquisition attempt needs. It is
// immutable once constructed; build a new Request per attempt.
type Request struct {
	Scope    Scope
	Budget   Budget
	Backoff  *Backoff
	Observer WaitObserver
	Token    *Token
}

// NewRequest builds a Request, defaulting Backoff to NewBackoff() and
// Observer to NoopObserver{} when left zero-valued.
func NewRequest(scope Scope, budget Budget, token *Token, opts ...RequestOption) Request {
	r := Request{
		Scope:    scope,
		Budget:   budget,
		Backoff:  NewBackoff(),
		Observer: NoopObserver{},
		Token:    token,
	}
	for _, opt := range opts {
		opt(&r)
	}
	return r
}

// RequestOption customises a Request built by NewRequest.
type RequestOption func(*Request)

// WithObserver overrides the default NoopObserver.
func WithObserver(o WaitObserver) RequestOption {
	return func(r *Request) {
		if o != nil {
			r.Observer = o
		}
	}
}

// WithBackoff overrides the default NewBackoff() schedule.
func WithBackoff(b *Backoff) RequestOption {
	return func(r *Request) {
		if b != nil {
			r.Backoff = b
		}
	}
}
