package kopilock

// AcquireOptions bundles the pieces a caller needs to go from "I want the
// lock for this scope" straight to a held Guard: where $KOPI_HOME lives,
// the precedence sources for the timeout resolver, the observer to report
// wait feedback to, and the cancellation token to honour.
type AcquireOptions struct {
	Home      string
	Resolver  Resolver
	Sources   Sources
	Observer  WaitObserver
	Token     *Token
	Inspector Inspector
}

// Acquire resolves scope's timeout, builds the request, constructs the
// right Controller for scope's backing volume, and acquires it — the
// single call site the install/uninstall/cache-refresh glue (§4.11) uses
// in place of driving LockTimeoutResolver / Request / Controller by hand.
func Acquire(scope Scope, opts AcquireOptions) (*Guard, error) {
	if err := scope.Validate(); err != nil {
		return nil, err
	}
	budget, err := opts.Resolver.ResolveBudget(scope.Kind, opts.Sources)
	if err != nil {
		return nil, err
	}
	controller, err := NewController(scope, opts.Home, opts.Inspector)
	if err != nil {
		return nil, err
	}
	token := opts.Token
	if token == nil {
		token = Registry()
	}
	req := NewRequest(scope, budget, token, WithObserver(opts.Observer))
	return controller.AcquireWith(req)
}
