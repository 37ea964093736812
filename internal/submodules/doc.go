// Package submodules registers the submodules declared in the manifest and
// brings each checkout onto its target branch.
//
// Registry prepares git's submodule configuration once per run. Synchronizer
// then works through the resulting records one at a time: it populates a
// missing checkout, fetches, resolves the branch to use (requested, the
// remote's default, or "main"), checks it out and pulls. A failing submodule
// produces an Outcome carrying the error and never stops the remaining ones.
package submodules
