/*
 * Jacobin VM - A Java virtual machine
 * Copyright (c) 2021-4 by the Jacobin authors. All rights reserved.
 * Licensed under Mozilla Public License 2.0 (MPL 2.0)
 */

// Package globals holds the small amount of process-wide, set-once state
// this core depends on: the effective classpath (spec.md §4.2), a trace
// flag, and the system-initialized marker. There is no config file format or flag-parsing library here
// on purpose — spec.md's Non-goals exclude building a CLI, and the only
// "configuration" this core owns is the classpath list and a couple of
// booleans, which a struct field is simplest and clearest for; there is no
// third-party config library in the pack that this would meaningfully
// exercise (see DESIGN.md).
package globals

import "sync"

// Globals is the process-wide runtime state. Exactly one instance exists
// per process, mirroring the teacher's single package-level Global.
type Globals struct {
	mu sync.RWMutex

	// JavaHome, if set, points at the Java Class Library root. Nothing here
	// reads it: classloader.SetClasspath takes the JCL root as its jclPath
	// argument and appends that as the final classpath entry.
	JavaHome string

	// Classpath is the effective, normalized, ordered classpath computed by
	// classloader.SetClasspath (spec.md §4.2). Empty until set.
	Classpath []string

	// TraceClass records whether verbose class-loading/dispatch tracing was
	// requested. It does not change the logger's level by itself; that is
	// done by trace.SetVerbose.
	TraceClass bool

	// SystemInitialized is set once initSystemClass (spec.md §4.7 step 3)
	// has completed successfully; the launch driver checks this to avoid
	// re-running system initialization on repeat launches within a process.
	SystemInitialized bool
}

var (
	global     Globals
	globalOnce sync.Once
)

// GetGlobalRef returns the process-wide Globals instance, initializing it
// on first use.
func GetGlobalRef() *Globals {
	globalOnce.Do(func() {
		global = Globals{}
	})
	return &global
}

// SetClasspath installs the effective classpath computed by
// classloader.SetClasspath. Process-wide configuration, set once at
// startup (spec.md §9 "Process-wide classpath").
func (g *Globals) SetClasspath(cp []string) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.Classpath = cp
}

// GetClasspath returns the effective classpath in lookup order.
func (g *Globals) GetClasspath() []string {
	g.mu.RLock()
	defer g.mu.RUnlock()
	out := make([]string, len(g.Classpath))
	copy(out, g.Classpath)
	return out
}

// MarkSystemInitialized records that initSystemClass has run.
func (g *Globals) MarkSystemInitialized() {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.SystemInitialized = true
}

// IsSystemInitialized reports whether initSystemClass has already run.
func (g *Globals) IsSystemInitialized() bool {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return g.SystemInitialized
}

// ResetForTest clears all state. Test-only helper, mirroring the teacher's
// globals.InitGlobals("test") reset-between-tests pattern.
func ResetForTest() {
	global = Globals{}
}
