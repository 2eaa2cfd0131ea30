// Package pipeline is the execution core of mediagrid. It turns a declarative
// list of generate, transform and save steps into an ordered series of waves
// and runs each wave concurrently against the registered collaborators.
//
// The flow of a single run is:
//
//  1. BuildGraph derives, for every step, the variables it reads and writes.
//  2. ComputeWaves groups the steps so that each wave only depends on the
//     outputs of earlier waves. Cycles, missing inputs and duplicate outputs
//     are reported here, before any collaborator is called.
//  3. Engine.Run executes the waves in order. Inside a wave the steps are
//     fanned out through the bounded executor, and their outputs are bound in
//     the run's VarTable once the whole wave has completed.
//
// Nothing in this package knows how an image is produced or stored; that is
// the job of the Collaborators passed to New.
package pipeline
