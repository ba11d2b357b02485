// Package harness runs one co-simulation under the lock-file/log-file
// protocol expected by an external test runner.
//
// # Run Protocol
//
// A Runner executes these steps in order:
//
//  1. validate the invocation parameters (nothing on disk changes on failure)
//  2. write "<engine>_running" to the lock file
//  3. truncate the log file and send every further line there
//  4. call the engine exactly once
//  5. report: assertion lines or a raw sample dump
//  6. write "<scenario> done" to the log
//  7. write "<engine>_done" to the lock file, then delete it
//
// Engine errors, malformed results and panics inside steps 4-5 never
// escape. They are written to the log as a trace followed by one failing
// assertion line, so the consumer always gets something it can evaluate.
//
// # Scenario Format
//
// Scenarios are YAML documents checked against an embedded CUE schema,
// which also supplies defaults:
//
//	name: fmpy-bouncing_ball
//	mode: assert            # or dump
//	solver: CVode           # or Euler
//	record_events: true
//	output_interval: 0      # 0 = engine default
//	tolerance: 1.0e-6
//	final_time:
//	  check: true
//	  comment: "@test isapprox(ts[end], t_stop; atol=1e-6)"
//	checkpoints:
//	  - time: 0.5
//	    field: 1
//	    expected: 0.3456658910552819
//	    comment: "height just after the first bounce"
//	final_states:
//	  - field: 1
//	    expected: 0.0
//	dump_tag: fmpy-simulation   # dump mode marker name
//
// Unknown fields are rejected. Built-in scenarios ship with the binary;
// see Builtin and ListBuiltin.
//
// # Report Format
//
// Assert mode prints one line per check:
//
//	<prefix>isapprox(<actual>, <expected>; atol=<tol>) # <comment>
//
// Dump mode prints the samples between two marker lines:
//
//	---begin_of_<tag>_results---
//	0.0;1.0;0.0
//	...
//	---end_of_<tag>_results---
package harness
