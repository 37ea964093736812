// Package hostdeps makes sure the Debian packages a workspace build needs are
// installed, offering to install the missing ones through apt.
package hostdeps
