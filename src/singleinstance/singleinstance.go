package singleinstance

// This file defines the API for single-instance ownership and CLI
// delegation. A resident instance owns a loopback TCP port; `cast`
// invocations find it by PING scan and delegate LIST/CAST requests
// instead of running spells themselves.

import (
	"context"

	"spellpaste/src/spell"
)

// RequestKind discriminates delegated requests.
type RequestKind int

const (
	// KindList asks for the spell inventory.
	KindList RequestKind = iota
	// KindCast runs a trigger with the request body as its input.
	KindCast
)

// Request is one parsed client request.
type Request struct {
	Kind    RequestKind
	Trigger string
	Input   string
}

// Server owns the TCP endpoint and answers delegated requests.
type Server interface {
	// Start begins listening on the start port of the configured range.
	Start(ctx context.Context) error
	// Port returns the bound TCP port, or 0 if not started.
	Port() int
	// Next returns the next accepted connection as a Conn, or ctx error.
	Next(ctx context.Context) (Conn, error)
	// Close releases ownership and stops accepting clients.
	Close() error
}

// Conn represents one client connection and exposes request + response API.
type Conn interface {
	Request() Request
	// RespondSuccess sends success plus the response text (spell output
	// for CAST, the formatted inventory for LIST).
	RespondSuccess(text string) error
	// RespondError sends an error with a human-readable message.
	RespondError(msg string) error
	Close() error
}

// Client attempts to delegate an invocation to a resident server.
type Client interface {
	// TryCast scans the configured port range and delegates a CAST.
	// delegated=false with err=nil means no resident was found.
	TryCast(ctx context.Context, trigger, input string) (delegated bool, output string, err error)
	// TryList delegates a LIST request.
	TryList(ctx context.Context) (delegated bool, spells []spell.Info, err error)
}

// NewServer returns the TCP implementation.
func NewServer() Server { return newTcpServer() }

// NewClient returns the TCP implementation.
func NewClient() Client { return newTcpClient() }
