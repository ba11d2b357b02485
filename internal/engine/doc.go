// Package engine defines the co-simulation collaborator used by the harness.
//
// The harness never integrates anything itself. It hands a Request to an
// Engine and receives a Solution: an ordered list of samples whose first
// field is simulation time.
//
// Two implementations ship with the package:
//
//   - FMPy runs an embedded Python driver around the fmpy library in a
//     subprocess. The driver's stdout and stderr stream into the caller's
//     diagnostic writer; results come back through a temporary CSV file.
//   - Func adapts a plain function, which is how tests inject stub engines.
package engine
