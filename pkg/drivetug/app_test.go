package drivetug

import (
	"testing"

	"github.com/rivo/tview"
	"github.com/stretchr/testify/assert"
)

func TestNewApp(t *testing.T) {
	t.Run("nil", func(t *testing.T) {
		a := NewApp(nil)
		assert.NotNil(t, a)
	})
	t.Run("not_nil", func(t *testing.T) {
		app := tview.NewApplication()
		a := NewApp(app, WithQueueUpdateDraw(func(f func()) {
			f()
		}))
		assert.NotNil(t, a)

		ap := a.(*appProxy)
		assert.NotNil(t, ap.queueUpdateDraw)
		assert.NotNil(t, ap.setFocus)
		assert.NotNil(t, ap.setRoot)
		assert.NotNil(t, ap.enableMouse)
		assert.NotNil(t, ap.run)
		assert.NotNil(t, ap.stop)
		assert.NotNil(t, ap.suspend)

		a.EnableMouse(true)
		root := tview.NewTextView()
		a.SetFocus(root)
		a.SetRoot(root, true)
		queueUpdateDrawCalled := false
		a.QueueUpdateDraw(func() {
			queueUpdateDrawCalled = true
		})
		assert.True(t, queueUpdateDrawCalled)
	})
}

func TestAppProxy_Methods(t *testing.T) {
	var (
		queueCalled   bool
		focusCalled   bool
		rootCalled    bool
		mouseCalled   bool
		runCalled     bool
		stopCalled    bool
		suspendCalled bool
	)

	a := NewApp(nil,
		WithQueueUpdateDraw(func(f func()) { queueCalled = true; f() }),
		WithSetFocus(func(p tview.Primitive) { focusCalled = true }),
		WithSetRoot(func(root tview.Primitive, fullscreen bool) { rootCalled = true }),
		WithEnableMouse(func(b bool) { mouseCalled = true }),
		WithRun(func() error { runCalled = true; return nil }),
		WithStop(func() { stopCalled = true }),
		WithSuspend(func(f func()) bool { suspendCalled = true; f(); return true }),
	)

	innerCalled := false
	a.QueueUpdateDraw(func() { innerCalled = true })
	assert.True(t, queueCalled)
	assert.True(t, innerCalled)

	a.SetFocus(nil)
	assert.True(t, focusCalled)

	a.SetRoot(nil, true)
	assert.True(t, rootCalled)

	a.EnableMouse(true)
	assert.True(t, mouseCalled)

	assert.NoError(t, a.Run())
	assert.True(t, runCalled)

	a.Stop()
	assert.True(t, stopCalled)

	suspended := false
	assert.True(t, a.Suspend(func() { suspended = true }))
	assert.True(t, suspendCalled)
	assert.True(t, suspended)
}

func TestAppProxy_QueueUpdateDrawWhileSuspended(t *testing.T) {
	var queued int
	var ran []string
	a := NewApp(nil,
		WithQueueUpdateDraw(func(f func()) { queued++; f() }),
		WithSuspend(func(f func()) bool { f(); return true }),
	)

	a.Suspend(func() {
		a.QueueUpdateDraw(func() { ran = append(ran, "status") })
		a.QueueUpdateDraw(func() { ran = append(ran, "list") })
		assert.Empty(t, ran, "nothing is drawn while suspended")
		assert.Equal(t, 0, queued)
	})
	assert.Equal(t, []string{"status", "list"}, ran)
	assert.Equal(t, 1, queued, "held updates are queued as one")

	a.Suspend(func() {})
	assert.Equal(t, 1, queued, "nothing to queue")

	a.QueueUpdateDraw(func() { ran = append(ran, "after") })
	assert.Equal(t, 2, queued)
	assert.Equal(t, "after", ran[2])
}
