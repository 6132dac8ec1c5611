package drivetug

import (
	"sync"

	"github.com/rivo/tview"
)

// App is the part of *tview.Application the browser uses, so tests can run without a terminal.
type App interface {
	Run() error
	QueueUpdateDraw(f func())
	SetFocus(p tview.Primitive)
	SetRoot(root tview.Primitive, fullscreen bool)
	Stop()
	EnableMouse(bool)
	Suspend(f func()) bool
}

type UpdateDrawQueuer func(f func())
type Focuser func(p tview.Primitive)
type RootSetter func(root tview.Primitive, fullscreen bool)

type AppMethod func(na *appProxy)

func NewApp(app *tview.Application, o ...AppMethod) App {
	a := &appProxy{}
	if app != nil {
		a.setFocus = func(primitive tview.Primitive) {
			_ = app.SetFocus(primitive)
		}
		a.setRoot = func(root tview.Primitive, fullscreen bool) {
			_ = app.SetRoot(root, fullscreen)
		}
		a.enableMouse = func(b bool) {
			_ = app.EnableMouse(b)
		}
		a.queueUpdateDraw = func(f func()) {
			_ = app.QueueUpdateDraw(f)
		}
		a.run = app.Run
		a.stop = app.Stop
		a.suspend = app.Suspend
	}
	for _, m := range o {
		m(a)
	}
	return a
}

func WithQueueUpdateDraw(queueUpdateDraw UpdateDrawQueuer) AppMethod {
	return func(na *appProxy) {
		na.queueUpdateDraw = queueUpdateDraw
	}
}

func WithSetFocus(setFocus Focuser) AppMethod {
	return func(na *appProxy) {
		na.setFocus = setFocus
	}
}

func WithSetRoot(setRoot RootSetter) AppMethod {
	return func(na *appProxy) {
		na.setRoot = setRoot
	}
}

func WithEnableMouse(enableMouse func(bool)) AppMethod {
	return func(na *appProxy) {
		na.enableMouse = enableMouse
	}
}

func WithRun(run func() error) AppMethod {
	return func(na *appProxy) {
		na.run = run
	}
}

func WithStop(stop func()) AppMethod {
	return func(na *appProxy) {
		na.stop = stop
	}
}

func WithSuspend(suspend func(f func()) bool) AppMethod {
	return func(na *appProxy) {
		na.suspend = suspend
	}
}

var _ App = (*appProxy)(nil)

// appProxy holds back updates queued while the terminal is suspended and
// queues them as one update once it is resumed.
type appProxy struct {
	queueUpdateDraw UpdateDrawQueuer
	setFocus        Focuser
	setRoot         RootSetter
	enableMouse     func(bool)
	run             func() error
	stop            func()
	suspend         func(f func()) bool

	mu        sync.Mutex
	suspended int
	pending   []func()
}

func (n *appProxy) EnableMouse(b bool) {
	n.enableMouse(b)
}

func (n *appProxy) QueueUpdateDraw(f func()) {
	n.mu.Lock()
	if n.suspended > 0 {
		n.pending = append(n.pending, f)
		n.mu.Unlock()
		return
	}
	n.mu.Unlock()
	n.queueUpdateDraw(f)
}

func (n *appProxy) SetFocus(p tview.Primitive) {
	n.setFocus(p)
}

func (n *appProxy) SetRoot(root tview.Primitive, fullscreen bool) {
	n.setRoot(root, fullscreen)
}

func (n *appProxy) Run() error {
	return n.run()
}

func (n *appProxy) Stop() {
	n.stop()
}

func (n *appProxy) Suspend(f func()) bool {
	n.mu.Lock()
	n.suspended++
	n.mu.Unlock()
	defer n.resume()
	return n.suspend(f)
}

func (n *appProxy) resume() {
	n.mu.Lock()
	n.suspended--
	if n.suspended > 0 || len(n.pending) == 0 {
		n.mu.Unlock()
		return
	}
	pending := n.pending
	n.pending = nil
	n.mu.Unlock()
	n.queueUpdateDraw(func() {
		for _, f := range pending {
			f()
		}
	})
}
