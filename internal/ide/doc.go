// Package ide picks the development environment a workspace is generated for
// and maps it to a build generator action.
package ide
