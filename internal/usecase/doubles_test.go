package usecase

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/example/storefront-console/internal/domain"
)

// fakeTransport — транспорт каналов, считающий открытые подписки.
type fakeTransport struct {
	mu       sync.Mutex
	failWith error
	open     int
	maxOpen  int
	topics   []string
	last     *fakeChannel
}

func (t *fakeTransport) Subscribe(_ context.Context, topic string) (domain.Channel, error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.failWith != nil {
		return nil, t.failWith
	}
	t.topics = append(t.topics, topic)
	t.open++
	if t.open > t.maxOpen {
		t.maxOpen = t.open
	}
	ch := &fakeChannel{t: t, events: make(chan domain.BroadcastEvent, 8)}
	t.last = ch
	return ch, nil
}

func (t *fakeTransport) openCount() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.open
}

type fakeChannel struct {
	t      *fakeTransport
	events chan domain.BroadcastEvent
	once   sync.Once
}

func (c *fakeChannel) Events() <-chan domain.BroadcastEvent { return c.events }

func (c *fakeChannel) Close() error {
	c.once.Do(func() {
		c.t.mu.Lock()
		c.t.open--
		c.t.mu.Unlock()
		close(c.events)
	})
	return nil
}

func (c *fakeChannel) emit(ev domain.BroadcastEvent) { c.events <- ev }

// fakeGateway — сетевой шлюз заказов по сценарию теста.
type fakeGateway struct {
	mu          sync.Mutex
	fetchErr    error
	acceptErrs  []error
	fetchCalls  []string
	acceptCalls []string

	// acceptRelease, если задан, задерживает Accept до сигнала
	acceptRelease chan struct{}
}

func (g *fakeGateway) Fetch(_ context.Context, publicID string) (domain.Order, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.fetchCalls = append(g.fetchCalls, publicID)
	if g.fetchErr != nil {
		return domain.Order{}, g.fetchErr
	}
	return domain.Order{ID: publicID, PublicID: publicID, Status: domain.OrderStatusPending}, nil
}

func (g *fakeGateway) Accept(_ context.Context, orderID string) error {
	g.mu.Lock()
	release := g.acceptRelease
	g.acceptCalls = append(g.acceptCalls, orderID)
	var err error
	if len(g.acceptErrs) > 0 {
		err = g.acceptErrs[0]
		g.acceptErrs = g.acceptErrs[1:]
	}
	g.mu.Unlock()
	if release != nil {
		<-release
	}
	return err
}

func (g *fakeGateway) accepted() []string {
	g.mu.Lock()
	defer g.mu.Unlock()
	return append([]string(nil), g.acceptCalls...)
}

func (g *fakeGateway) fetched() []string {
	g.mu.Lock()
	defer g.mu.Unlock()
	return append([]string(nil), g.fetchCalls...)
}

// fakePresenter — поверхность предъявления, отдающая ручки тесту.
type fakePresenter struct {
	mu       sync.Mutex
	failWith error
	shows    int
	shown    chan *fakePresentation
}

func newFakePresenter() *fakePresenter {
	return &fakePresenter{shown: make(chan *fakePresentation, 8)}
}

func (p *fakePresenter) Show(_ context.Context, a domain.Alert) (domain.Presentation, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.failWith != nil {
		return nil, p.failWith
	}
	p.shows++
	pres := &fakePresentation{
		alert:     a,
		decisions: make(chan domain.Decision, 8),
		closedCh:  make(chan struct{}),
	}
	p.shown <- pres
	return pres, nil
}

func (p *fakePresenter) showCount() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.shows
}

func (p *fakePresenter) waitShown(t *testing.T) *fakePresentation {
	t.Helper()
	select {
	case pres := <-p.shown:
		return pres
	case <-time.After(2 * time.Second):
		t.Fatal("presentation was not shown")
		return nil
	}
}

type fakePresentation struct {
	alert     domain.Alert
	decisions chan domain.Decision

	mu       sync.Mutex
	busyLog  []bool
	errors   []string
	closed   bool
	closedCh chan struct{}
}

func (f *fakePresentation) Decisions() <-chan domain.Decision { return f.decisions }

func (f *fakePresentation) SetBusy(busy bool) {
	f.mu.Lock()
	f.busyLog = append(f.busyLog, busy)
	f.mu.Unlock()
}

func (f *fakePresentation) NotifyError(msg string) {
	f.mu.Lock()
	f.errors = append(f.errors, msg)
	f.mu.Unlock()
}

func (f *fakePresentation) Close() {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.closed {
		return
	}
	f.closed = true
	close(f.closedCh)
}

func (f *fakePresentation) decide(d domain.Decision) { f.decisions <- d }

func (f *fakePresentation) waitClosed(t *testing.T) {
	t.Helper()
	select {
	case <-f.closedCh:
	case <-time.After(2 * time.Second):
		t.Fatal("presentation was not closed")
	}
}

func (f *fakePresentation) isClosed() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.closed
}

func (f *fakePresentation) errorCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.errors)
}

func (f *fakePresentation) busyHistory() []bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]bool(nil), f.busyLog...)
}

// fakeChime — звуковое оповещение по сценарию теста.
type fakeChime struct {
	mu    sync.Mutex
	err   error
	plays int
}

func (c *fakeChime) Play() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.plays++
	return c.err
}

func (c *fakeChime) playCount() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.plays
}
