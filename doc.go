// Copyright 2026 The Ember Authors. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

// Package ember is an asynchronous, low-latency structured-logging core.
//
// A producer builds a record.Record, appends typed arguments to it through
// package record, and hands it to a Logger:
//
//	logger := ember.Initialize(ember.NewOptions().Build(), sink.NewStderr(priority.Info))
//	logger.Start()
//	defer logger.Shutdown()
//
//	logger.Log(priority.Info, "main.go", 42, "main", "listening on {0}", addr)
//
// Log enqueues the record onto a segmented lock-free queue (package queue),
// which a single consumer goroutine owned by the Logger polls. The consumer
// formats each record (package format) and forwards it to every registered
// sink (package sink) whose priority threshold is met.
//
// # Lifecycle
//
// A Logger moves through three states: Init, Ready, Shutdown. Sinks may
// only be added in Init. Start transitions to Ready and begins delivering
// records to sinks; before that, records accumulate on the queue. Shutdown
// drains every record already enqueued, then stops the consumer goroutine.
//
// # Exceptions
//
// ThrowWithContext wraps an error with the call site that produced it, plus
// an optional nested argument buffer, so a later handler can render the
// original context even after the error has been wrapped further:
//
//	err := ember.ThrowWithContext(io.EOF, "reader.go", 10, "Read", "short read of {0} bytes", n)
//	...
//	if _, ok := ember.CurrentExceptionContext(err); ok {
//	    logger.Log(priority.Error, "reader.go", 10, "Read", "{0}", err)
//	}
//
// # Recursion guard
//
// If a sink's Write itself fails, the consumer re-enters the logging path
// at an elevated priority to report the failure, rather than dropping it
// silently. A two-bit attempt counter embedded in the record's priority
// byte bounds this recursion to three attempts; the fourth failure calls
// sink.Panic directly instead of re-enqueueing, guaranteeing the consumer
// loop can never fail silently or loop forever.
package ember
