package journal

import (
	"context"
	"sync"

	"github.com/roach88/fluxkeys/internal/accessor"
)

// WrapStore returns a store that journals every Commit and Dispatch under
// session before forwarding it to s unchanged. Getters pass through.
//
// A dispatch outcome is journaled when the returned promise is awaited to
// settlement. A dispatch nobody awaits stays pending in the journal.
func WrapStore(s accessor.Store, j *Journal, session string) accessor.Store {
	return &journaledStore{Store: s, rec: recorder{j: j, session: session}}
}

// WrapContext is WrapStore for an action context.
func WrapContext(ac accessor.ActionContext, j *Journal, session string) accessor.ActionContext {
	return &journaledContext{ActionContext: ac, rec: recorder{j: j, session: session}}
}

type journaledStore struct {
	accessor.Store
	rec recorder
}

func (s *journaledStore) Commit(key string, payload any, opts accessor.Options) {
	s.rec.commit(key, payload, opts)
	s.Store.Commit(key, payload, opts)
}

func (s *journaledStore) Dispatch(key string, payload any, opts accessor.Options) accessor.Promise {
	return s.rec.dispatch(s.Store, key, payload, opts)
}

type journaledContext struct {
	accessor.ActionContext
	rec recorder
}

func (c *journaledContext) Commit(key string, payload any, opts accessor.Options) {
	c.rec.commit(key, payload, opts)
	c.ActionContext.Commit(key, payload, opts)
}

func (c *journaledContext) Dispatch(key string, payload any, opts accessor.Options) accessor.Promise {
	return c.rec.dispatch(c.ActionContext, key, payload, opts)
}

// recorder writes calls for one session. Write failures are logged and
// swallowed; the store call always proceeds.
type recorder struct {
	j       *Journal
	session string
}

func (r recorder) record(op Op, key string, payload any, opts accessor.Options) (Call, bool) {
	call, err := r.j.Record(context.Background(), Call{
		Session: r.session,
		Op:      op,
		Key:     key,
		Payload: MarshalPayload(payload),
		Root:    opts.Root,
	})
	if err != nil {
		r.j.logger.Warn("journal write failed", "op", op, "key", key, "session", r.session, "error", err)
		return call, false
	}
	return call, true
}

func (r recorder) commit(key string, payload any, opts accessor.Options) {
	r.record(OpCommit, key, payload, opts)
}

func (r recorder) dispatch(next accessor.Dispatcher, key string, payload any, opts accessor.Options) accessor.Promise {
	call, ok := r.record(OpDispatch, key, payload, opts)
	p := next.Dispatch(key, payload, opts)
	if !ok || p == nil {
		return p
	}
	return &settlingPromise{inner: p, j: r.j, callID: call.ID}
}

// settlingPromise journals the settlement of a dispatch the first time it
// is observed. A wait abandoned through ctx is not a settlement.
type settlingPromise struct {
	inner  accessor.Promise
	j      *Journal
	callID string
	once   sync.Once
}

func (p *settlingPromise) Await(ctx context.Context) (any, error) {
	v, err := p.inner.Await(ctx)
	if err != nil && ctx.Err() != nil {
		return v, err
	}

	p.once.Do(func() {
		res := Result{CallID: p.callID, Outcome: OutcomeResolved, Value: MarshalPayload(v)}
		if err != nil {
			res = Result{CallID: p.callID, Outcome: OutcomeRejected, Error: err.Error()}
		}
		if _, serr := p.j.Settle(context.WithoutCancel(ctx), res); serr != nil {
			p.j.logger.Warn("journal settle failed", "call_id", p.callID, "error", serr)
		}
	})
	return v, err
}
