// File: doc.go
// Title: Structured Logging Package Documentation
// Description: Documents the structured logger shared by the dispatch engine,
//              the console and the CLI.
// Author: msto63
// Version: v0.2.0
// Created: 2025-01-24
// Modified: 2025-03-02
//
// Change History:
// - 2025-01-24 v0.1.0: Initial implementation with structured logging
// - 2025-03-02 v0.2.0: Session context, Critical level call, async removed

/*
Package log provides structured, leveled logging for dcmd.

A Logger carries persistent context fields (component, session, command) that
are merged into every entry. Entries are rendered by a Formatter: JSON for
machine consumption, text and console for humans, logfmt for log shippers.

	logger := log.New().WithField("component", "dispatch")
	logger.Info("command registered", log.Fields{"name": "greet"})

	timer := logger.StartTimer("invoke")
	defer timer.Stop()

Fatal terminates the process. Critical logs at the same severity but returns,
which is what the dispatch boundary needs when it recovers a failing command.
*/
package log
