// Package gitrepo contains helpers for reasoning about Git remotes.
//
// It parses the three remote spellings found in submodule manifests
// (user@host:path, ssh://user@host/path and https://host/path) into RemoteURL
// values and formats them back, which lets callers switch a remote between
// transports without touching its host or repository path.
package gitrepo
