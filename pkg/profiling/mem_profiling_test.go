package profiling

import (
	"bytes"
	"errors"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/rs/zerolog"
)

func TestDoMemProfiling(t *testing.T) {
	tempFile := filepath.Join(t.TempDir(), "mem.prof")

	writeMemProfile := DoMemProfiling(tempFile, zerolog.Nop())
	if writeMemProfile == nil {
		t.Fatal("expected writeMemProfile to be not nil")
	}
	if _, err := os.Stat(tempFile); !os.IsNotExist(err) {
		t.Errorf("expected profile file to be created only when written")
	}

	writeMemProfile()

	info, err := os.Stat(tempFile)
	if err != nil {
		t.Fatalf("expected profile file to be created: %v", err)
	}
	if info.Size() == 0 {
		t.Errorf("expected profile file to be not empty")
	}
}

func TestDoMemProfiling_ErrorOsCreate(t *testing.T) {
	origOsCreate := osCreate
	defer func() {
		osCreate = origOsCreate
	}()
	osCreate = func(name string) (*os.File, error) {
		return nil, errors.New("mock error")
	}

	var buf bytes.Buffer
	DoMemProfiling("invalid", zerolog.New(&buf))()
	if !bytes.Contains(buf.Bytes(), []byte("mock error")) {
		t.Errorf("expected error to be logged, got %q", buf.String())
	}
}

func TestDoMemProfiling_ErrorPprofWriteHeapProfile(t *testing.T) {
	origPprofWrite := pprofWriteHeapProfile
	defer func() {
		pprofWriteHeapProfile = origPprofWrite
	}()
	pprofWriteHeapProfile = func(w io.Writer) error {
		return errors.New("mock pprof error")
	}

	var buf bytes.Buffer
	DoMemProfiling(filepath.Join(t.TempDir(), "mem_err.prof"), zerolog.New(&buf))()
	if !bytes.Contains(buf.Bytes(), []byte("mock pprof error")) {
		t.Errorf("expected error to be logged, got %q", buf.String())
	}
}
