package main

import (
	"bytes"
	"context"
	"errors"
	"io"
	"os"
	"strings"
	"testing"
)

func captureStderr(t *testing.T, f func()) string {
	t.Helper()
	oldStderr := os.Stderr
	r, w, _ := os.Pipe()
	os.Stderr = w
	defer func() {
		os.Stderr = oldStderr
	}()
	f()
	_ = w.Close()
	var buf bytes.Buffer
	_, _ = io.Copy(&buf, r)
	return buf.String()
}

func withSeams(t *testing.T, runFunc func(ctx context.Context, args []string) error) *int {
	t.Helper()
	oldRun, oldExit := run, osExit
	t.Cleanup(func() {
		run, osExit = oldRun, oldExit
	})
	exitCode := -1
	run = runFunc
	osExit = func(code int) {
		exitCode = code
	}
	return &exitCode
}

func TestMainRoot(t *testing.T) {
	runCalled := false
	exitCode := withSeams(t, func(ctx context.Context, args []string) error {
		runCalled = true
		if ctx == nil {
			t.Error("expected a context")
		}
		return nil
	})

	main()

	if !runCalled {
		t.Fatal("expected main function to call run")
	}
	if *exitCode != -1 {
		t.Errorf("expected no exit, got %d", *exitCode)
	}
}

func TestMain_error(t *testing.T) {
	expectedErr := errors.New("test error")
	exitCode := withSeams(t, func(context.Context, []string) error {
		return expectedErr
	})

	output := captureStderr(t, main)

	if !strings.Contains(output, expectedErr.Error()) {
		t.Errorf("expected stderr to contain %q, got %q", expectedErr.Error(), output)
	}
	if *exitCode != 1 {
		t.Errorf("expected exit code 1, got %d", *exitCode)
	}
}

func TestMain_panic(t *testing.T) {
	exitCode := withSeams(t, func(context.Context, []string) error {
		panic("boom")
	})

	output := captureStderr(t, main)

	if !strings.Contains(output, "Recovered from panic: boom") {
		t.Errorf("unexpected stderr: %q", output)
	}
	if *exitCode != 1 {
		t.Errorf("expected exit code 1, got %d", *exitCode)
	}
}
