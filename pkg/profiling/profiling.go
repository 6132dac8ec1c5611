// Package profiling writes CPU and heap profiles for the hidden --cpuprofile and --memprofile flags.
package profiling

import (
	"io"
	"os"
	"runtime"
	"runtime/pprof"

	"github.com/rs/zerolog"
)

var (
	osCreate              = os.Create
	pprofStartCPUProfile  = pprof.StartCPUProfile
	pprofStopCPUProfile   = pprof.StopCPUProfile
	pprofWriteHeapProfile = func(w io.Writer) error {
		return pprof.WriteHeapProfile(w)
	}
)

// DoCPUProfiling starts CPU profiling into path. The returned func stops it and is never nil.
func DoCPUProfiling(path string, log zerolog.Logger) (stop func()) {
	f, err := osCreate(path)
	if err != nil {
		log.Error().Err(err).Str("path", path).Msg("profiling: could not create CPU profile")
		return func() {}
	}
	if err = pprofStartCPUProfile(f); err != nil {
		log.Error().Err(err).Msg("profiling: could not start CPU profile")
		_ = f.Close()
		return func() {}
	}
	return func() {
		pprofStopCPUProfile()
		if err := f.Close(); err != nil {
			log.Error().Err(err).Msg("profiling: could not close CPU profile")
		}
	}
}

// DoMemProfiling returns a func that writes the heap profile to path, usually on exit.
func DoMemProfiling(path string, log zerolog.Logger) (write func()) {
	return func() {
		f, err := osCreate(path)
		if err != nil {
			log.Error().Err(err).Str("path", path).Msg("profiling: could not create memory profile")
			return
		}
		defer func() {
			_ = f.Close()
		}()
		runtime.GC()
		if err = pprofWriteHeapProfile(f); err != nil {
			log.Error().Err(err).Msg("profiling: could not write memory profile")
		}
	}
}
