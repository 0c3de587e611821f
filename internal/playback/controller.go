package playback

import (
	"context"
	"errors"
	"sync"

	"github.com/charmbracelet/log"

	"github.com/llehouerou/bilimusic/internal/errmsg"
	"github.com/llehouerou/bilimusic/internal/logging"
	"github.com/llehouerou/bilimusic/internal/metrics"
	"github.com/llehouerou/bilimusic/internal/player"
	"github.com/llehouerou/bilimusic/internal/resolver"
	"github.com/llehouerou/bilimusic/internal/state"
)

// ErrClosed is returned by Do once the controller has been closed.
var ErrClosed = errors.New("controller closed")

// Resolver turns user input into a playable track.
type Resolver interface {
	ResolveInput(ctx context.Context, input string) (*resolver.Result, error)
}

// OutputLookup finds outputs by id.
type OutputLookup interface {
	Lookup(id string) (player.Output, error)
}

// Options configures a Controller.
type Options struct {
	Resolver Resolver
	Store    state.Interface
	Outputs  OutputLookup
	Binder   *Binder // nil selects NewBinder defaults
	Logger   *log.Logger
}

// Controller is the playlist state machine. Intents are applied one at a
// time by the goroutine running Run; all other methods are safe for
// concurrent use.
type Controller struct {
	resolver Resolver
	store    state.Interface
	outputs  OutputLookup
	binder   *Binder
	logger   *log.Logger

	inbox mailbox

	// model is owned by the Run goroutine.
	model model

	snapMu   sync.RWMutex
	snapshot State

	subsMu sync.RWMutex
	subs   []*Subscription

	done      chan struct{}
	closeOnce sync.Once
}

// New creates a controller whose initial state is loaded from opts.Store.
func New(opts Options) *Controller {
	if opts.Logger == nil {
		opts.Logger = logging.Discard()
	}
	if opts.Binder == nil {
		opts.Binder = NewBinder(BinderOptions{Logger: opts.Logger})
	}

	initial := FromStored(opts.Store.LoadPlayer())
	return &Controller{
		resolver: opts.Resolver,
		store:    opts.Store,
		outputs:  opts.Outputs,
		binder:   opts.Binder,
		logger:   opts.Logger.With("component", "controller"),
		inbox:    mailbox{signal: make(chan struct{}, 1)},
		model:    model{state: initial},
		snapshot: initial.Clone(),
		done:     make(chan struct{}),
	}
}

// Run applies intents until ctx is cancelled or Close is called.
func (c *Controller) Run(ctx context.Context) error {
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-c.done:
			return nil
		case <-c.inbox.signal:
			for _, it := range c.inbox.drain() {
				c.process(ctx, it)
			}
		}
	}
}

// Dispatch queues in without waiting for it to be handled.
func (c *Controller) Dispatch(in Intent) {
	c.inbox.push(item{intent: in})
}

// Do queues in and waits until it and every follow-up it causes, including
// async resolves, have been handled. It returns the first failure surfaced
// along the way.
func (c *Controller) Do(ctx context.Context, in Intent) error {
	j := newJob()
	c.inbox.push(item{intent: in, job: j})
	select {
	case err := <-j.reply:
		return err
	case <-ctx.Done():
		return ctx.Err()
	case <-c.done:
		return ErrClosed
	}
}

// State returns a snapshot of the current state.
func (c *Controller) State() State {
	c.snapMu.RLock()
	defer c.snapMu.RUnlock()
	return c.snapshot.Clone()
}

// Subscribe creates a new event subscription.
func (c *Controller) Subscribe() *Subscription {
	c.subsMu.Lock()
	defer c.subsMu.Unlock()
	sub := newSubscription()
	c.subs = append(c.subs, sub)
	return sub
}

// Close stops Run, detaches from the output and closes all subscriptions.
func (c *Controller) Close() error {
	c.closeOnce.Do(func() {
		close(c.done)
		c.binder.Close()

		c.subsMu.Lock()
		for _, sub := range c.subs {
			sub.close()
		}
		c.subs = nil
		c.subsMu.Unlock()
	})
	return nil
}

// process handles one external intent and all of its follow-ups before
// returning, so follow-ups never interleave with other external intents.
func (c *Controller) process(ctx context.Context, first item) {
	queue := []item{first}
	for len(queue) > 0 {
		it := queue[0]
		queue = queue[1:]
		queue = append(queue, c.handle(ctx, it)...)
	}
}

func (c *Controller) handle(ctx context.Context, it item) (followUps []item) {
	defer it.job.finish()

	metrics.IntentsTotal.WithLabelValues(it.intent.intentName()).Inc()

	next, effects := reduce(c.model, it.intent)
	c.model = next
	c.snapMu.Lock()
	c.snapshot = next.state.Clone()
	c.snapMu.Unlock()

	for _, e := range effects {
		f, err := c.run(ctx, e, it.job)
		if err != nil {
			c.logger.Warn("effect failed, skipping the rest",
				"intent", it.intent.intentName(), "err", err)
			break
		}
		if f != nil {
			followUps = append(followUps, *f)
		}
	}
	return followUps
}

func (c *Controller) run(ctx context.Context, e effect, j *job) (*item, error) {
	switch e := e.(type) {
	case effResolve:
		j.add()
		go c.resolve(ctx, e, j)

	case effApply:
		c.binder.ApplyResolution(e.res)

	case effPersist:
		c.store.SavePlayer(c.model.state.Stored())

	case effSync:
		c.binder.SyncListeners(c.model.state, c.Dispatch)

	case effBind:
		out, err := c.outputs.Lookup(e.target)
		if err != nil {
			c.fail(j, Failure{Op: errmsg.OpInitOutput, Input: e.target, Err: err})
			return nil, err
		}
		c.binder.Bind(out)

	case effNotify:
		c.publishState(c.model.state)

	case effDispatch:
		j.add()
		return &item{intent: e.intent, job: j}, nil

	case effFail:
		c.fail(j, e.failure)

	case effRetry:
		c.binder.ScheduleRetry(e.id, e.err, c.Dispatch)

	case effWarn:
		c.logger.Warn(e.msg, e.keyvals...)
	}
	return nil, nil
}

// resolve runs off the actor and reports back through the inbox. The job's
// pending count taken in run is carried by the reply item.
func (c *Controller) resolve(ctx context.Context, e effResolve, j *job) {
	res, err := c.resolver.ResolveInput(ctx, e.input)
	if err != nil {
		c.inbox.push(item{intent: resolveFailed{kind: e.kind, input: e.input, gen: e.gen, err: err}, job: j})
		return
	}
	c.inbox.push(item{intent: resolved{kind: e.kind, input: e.input, gen: e.gen, res: res}, job: j})
}

func (c *Controller) fail(j *job, f Failure) {
	c.logger.Warn(f.Message())
	j.setErr(f.Err)

	c.subsMu.RLock()
	defer c.subsMu.RUnlock()
	for _, sub := range c.subs {
		sub.sendFailure(f)
	}
}

func (c *Controller) publishState(st State) {
	c.subsMu.RLock()
	defer c.subsMu.RUnlock()
	for _, sub := range c.subs {
		sub.sendState(StateChange{State: st.Clone()})
	}
}
