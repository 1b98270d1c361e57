// Package host embeds an interpreter and drives calls into it.
//
// A Session owns the interpreter's process-wide lifecycle:
//
//	Uninitialized --Initialize--> Running --Shutdown--> Shutdown
//
// Library and RateConv are valid only while Running. Every operation checks
// its precondition and returns a *errors.LifecycleError when it does not
// hold, so misuse is reported instead of reaching the runtime.
//
// The embedded runtime supports one live session per process and is not safe
// for concurrent use; Session serialises its own calls but does not make
// multiple sessions possible.
package host
