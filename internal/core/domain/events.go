package domain

import (
	"encoding/json"
	"fmt"
	"strings"
)

// Event is a diagnostic emitted by the build engine and consumed externally.
type Event interface {
	// Kind names the event class.
	Kind() EventKind
	// String renders the event as a single human-readable line.
	String() string
}

// EventKind names an event class.
type EventKind string

const (
	// EventInvocation is emitted once per plugin invocation.
	EventInvocation EventKind = "invocation"
	// EventCacheLoaded is emitted when a program snapshot is loaded from disk.
	EventCacheLoaded EventKind = "cache_loaded"
	// EventDanglingDependency is emitted when a root reads a file outside its program.
	EventDanglingDependency EventKind = "dangling_dependency"
	// EventRefresh is emitted when only client programs changed.
	EventRefresh EventKind = "refresh"
	// EventRestart is emitted when a server-affecting program changed.
	EventRestart EventKind = "restart"
	// EventPassFailed is emitted when a program's pass could not complete.
	EventPassFailed EventKind = "pass_failed"
)

// InvocationEvent reports the exact ordered file list submitted to a plugin instance.
type InvocationEvent struct {
	Program string
	Invocation
}

// Kind implements Event.
func (InvocationEvent) Kind() EventKind { return EventInvocation }

func (e InvocationEvent) String() string {
	files := e.Files
	if files == nil {
		files = []string{}
	}
	list, _ := json.Marshal(files)
	return fmt.Sprintf("Ran %s (#%d) on: %s", e.Plugin, e.Seq, list)
}

// CacheLoadedEvent names the per-plugin caches that were loaded from disk for a program.
type CacheLoadedEvent struct {
	Program string
	Plugins []string
}

// Kind implements Event.
func (CacheLoadedEvent) Kind() EventKind { return EventCacheLoaded }

func (e CacheLoadedEvent) String() string {
	lines := make([]string, len(e.Plugins))
	for i, p := range e.Plugins {
		lines[i] = fmt.Sprintf("Loaded %s cache", p)
	}
	return strings.Join(lines, "\n")
}

// DanglingDependencyEvent reports files a root read that are not part of the program's source set.
type DanglingDependencyEvent struct {
	Program string
	Plugin  string
	Root    string
	Files   []string
}

// Kind implements Event.
func (DanglingDependencyEvent) Kind() EventKind { return EventDanglingDependency }

func (e DanglingDependencyEvent) String() string {
	return fmt.Sprintf("%s: %s depends on files outside %s: %s",
		e.Plugin, e.Root, e.Program, strings.Join(e.Files, ", "))
}

// RefreshEvent reports a client-only change.
type RefreshEvent struct {
	Programs []string
}

// Kind implements Event.
func (RefreshEvent) Kind() EventKind { return EventRefresh }

func (RefreshEvent) String() string { return "Client modified -- refreshing" }

// RestartEvent reports a change that affects a server program.
type RestartEvent struct {
	Programs []string
}

// Kind implements Event.
func (RestartEvent) Kind() EventKind { return EventRestart }

func (RestartEvent) String() string { return "Server modified -- restarting" }

// PassFailedEvent reports a program pass that published nothing.
type PassFailedEvent struct {
	Program string
	Err     error
}

// Kind implements Event.
func (PassFailedEvent) Kind() EventKind { return EventPassFailed }

func (e PassFailedEvent) String() string {
	return fmt.Sprintf("%s: build pass failed: %v", e.Program, e.Err)
}
