// Package rembed embeds the R runtime in-process through cgo.
//
// The real implementation is compiled with the "rembed" build tag and needs
// the libR headers and pkg-config entry:
//
//	go build -tags rembed ./...
//
// Without the tag the package still builds and every Interpreter method
// returns errors.ErrUnavailable, so callers can select another backend.
//
// R is a process-wide singleton bound to the thread that started it. All
// calls are executed by one goroutine locked to its OS thread, and Start
// succeeds at most once per process.
package rembed
