// Package manifest reads the .gitmodules submodule manifest and rewrites its
// remote URLs between transports.
//
// Rewriting is line based so that comments, ordering and formatting survive;
// only the value of url assignments in SSH form changes. Store applies a
// rewrite to a billy filesystem and replaces the file by rename.
package manifest
