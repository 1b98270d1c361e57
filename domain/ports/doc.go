// Package ports defines the interfaces the host depends on.
// Backends in infrastructure/ implement them; the host package only sees
// the abstractions.
package ports
