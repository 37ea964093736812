// Package reachability decides whether remotes can be reached over SSH and
// whether the machine has a network route at all.
package reachability
