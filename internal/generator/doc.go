// Package generator locates the build generator binary under the workspace,
// downloads and unpacks a pinned release when it is missing, and runs it with
// the action matching the selected IDE.
package generator
