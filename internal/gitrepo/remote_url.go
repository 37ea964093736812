package gitrepo

import (
	"fmt"
	"strings"
)

const (
	sshProtocolPrefixConstant           = "ssh://"
	httpsProtocolPrefixConstant         = "https://"
	sshUserDelimiterConstant            = "@"
	sshPathDelimiterConstant            = ":"
	pathSeparatorConstant               = "/"
	remoteURLParseErrorTemplateConstant = "%s: %s"
	invalidRemoteURLMessageConstant     = "invalid remote url"
	requiredValueMessageConstant        = "value required"
	unknownProtocolMessageConstant      = "unsupported remote protocol"
	defaultSSHUserConstant              = "git"
)

// RemoteProtocol enumerates supported git remote protocols.
type RemoteProtocol string

// Supported remote protocols.
const (
	RemoteProtocolSSH   RemoteProtocol = RemoteProtocol("ssh")
	RemoteProtocolHTTPS RemoteProtocol = RemoteProtocol("https")
)

// RemoteURL represents a structured git remote URL.
// Path keeps the repository path exactly as written, including any ".git" suffix.
type RemoteURL struct {
	Protocol RemoteProtocol
	User     string
	Host     string
	Port     string
	Path     string
}

// RemoteURLParseError indicates a remote string could not be parsed.
type RemoteURLParseError struct {
	Input   string
	Message string
}

// Error describes the parse failure.
func (parseError RemoteURLParseError) Error() string {
	return fmt.Sprintf(remoteURLParseErrorTemplateConstant, parseError.Input, parseError.Message)
}

// UnsupportedProtocolError indicates the provided protocol cannot be formatted.
type UnsupportedProtocolError struct {
	Protocol RemoteProtocol
}

// Error describes the unsupported protocol.
func (protocolError UnsupportedProtocolError) Error() string {
	return fmt.Sprintf(remoteURLParseErrorTemplateConstant, protocolError.Protocol, unknownProtocolMessageConstant)
}

// IsSSHForm reports whether the remote is written as user@host:path or ssh://user@host/path.
func IsSSHForm(remote string) bool {
	trimmedRemote := strings.TrimSpace(remote)
	if strings.HasPrefix(trimmedRemote, sshProtocolPrefixConstant) {
		return true
	}
	if strings.Contains(trimmedRemote, "://") {
		return false
	}
	userSplitIndex := strings.Index(trimmedRemote, sshUserDelimiterConstant)
	pathSplitIndex := strings.Index(trimmedRemote, sshPathDelimiterConstant)
	return userSplitIndex > 0 && pathSplitIndex > userSplitIndex+1
}

// ParseRemoteURL converts a textual remote URL into a structured representation.
func ParseRemoteURL(remote string) (RemoteURL, error) {
	trimmedRemote := strings.TrimSpace(remote)
	if len(trimmedRemote) == 0 {
		return RemoteURL{}, RemoteURLParseError{Input: remote, Message: requiredValueMessageConstant}
	}

	switch {
	case strings.HasPrefix(trimmedRemote, sshProtocolPrefixConstant):
		return parseSSHURL(trimmedRemote, strings.TrimPrefix(trimmedRemote, sshProtocolPrefixConstant))
	case strings.HasPrefix(trimmedRemote, httpsProtocolPrefixConstant):
		return parseHTTPSURL(trimmedRemote, strings.TrimPrefix(trimmedRemote, httpsProtocolPrefixConstant))
	case IsSSHForm(trimmedRemote):
		return parseSSHShorthand(trimmedRemote)
	default:
		return RemoteURL{}, RemoteURLParseError{Input: remote, Message: invalidRemoteURLMessageConstant}
	}
}

// ssh://user@host[:port]/path
func parseSSHURL(original string, remainder string) (RemoteURL, error) {
	user := ""
	if userSplitIndex := strings.Index(remainder, sshUserDelimiterConstant); userSplitIndex != -1 {
		user = remainder[:userSplitIndex]
		remainder = remainder[userSplitIndex+1:]
	}
	slashIndex := strings.Index(remainder, pathSeparatorConstant)
	if slashIndex <= 0 {
		return RemoteURL{}, RemoteURLParseError{Input: original, Message: invalidRemoteURLMessageConstant}
	}
	hostAndPort := remainder[:slashIndex]
	path := remainder[slashIndex+1:]
	host := hostAndPort
	port := ""
	if portSplitIndex := strings.Index(hostAndPort, sshPathDelimiterConstant); portSplitIndex != -1 {
		host = hostAndPort[:portSplitIndex]
		port = hostAndPort[portSplitIndex+1:]
	}
	return newRemoteURL(original, RemoteURL{Protocol: RemoteProtocolSSH, User: user, Host: host, Port: port, Path: path})
}

// user@host:path
func parseSSHShorthand(original string) (RemoteURL, error) {
	userSplitIndex := strings.Index(original, sshUserDelimiterConstant)
	user := original[:userSplitIndex]
	hostAndPath := original[userSplitIndex+1:]
	pathSplitIndex := strings.Index(hostAndPath, sshPathDelimiterConstant)
	if pathSplitIndex == -1 {
		return RemoteURL{}, RemoteURLParseError{Input: original, Message: invalidRemoteURLMessageConstant}
	}
	return newRemoteURL(original, RemoteURL{
		Protocol: RemoteProtocolSSH,
		User:     user,
		Host:     hostAndPath[:pathSplitIndex],
		Path:     strings.TrimPrefix(hostAndPath[pathSplitIndex+1:], pathSeparatorConstant),
	})
}

func parseHTTPSURL(original string, remainder string) (RemoteURL, error) {
	slashIndex := strings.Index(remainder, pathSeparatorConstant)
	if slashIndex <= 0 {
		return RemoteURL{}, RemoteURLParseError{Input: original, Message: invalidRemoteURLMessageConstant}
	}
	return newRemoteURL(original, RemoteURL{Protocol: RemoteProtocolHTTPS, Host: remainder[:slashIndex], Path: remainder[slashIndex+1:]})
}

func newRemoteURL(original string, remote RemoteURL) (RemoteURL, error) {
	if len(strings.TrimSpace(remote.Host)) == 0 || len(strings.TrimSpace(remote.Path)) == 0 {
		return RemoteURL{}, RemoteURLParseError{Input: original, Message: invalidRemoteURLMessageConstant}
	}
	return remote, nil
}

// Destination returns the user@host form used to address an SSH server.
func (remote RemoteURL) Destination() string {
	user := remote.User
	if len(user) == 0 {
		user = defaultSSHUserConstant
	}
	return user + sshUserDelimiterConstant + remote.Host
}

// FormatRemoteURL creates a textual remote URL from a structured representation.
// SSH remotes are written in the user@host:path shorthand; the port is only kept
// for SSH, HTTPS remotes always use the default port.
func FormatRemoteURL(remote RemoteURL) (string, error) {
	if len(strings.TrimSpace(remote.Host)) == 0 {
		return "", RemoteURLParseError{Input: remote.Host, Message: requiredValueMessageConstant}
	}
	if len(strings.TrimSpace(remote.Path)) == 0 {
		return "", RemoteURLParseError{Input: remote.Path, Message: requiredValueMessageConstant}
	}

	switch remote.Protocol {
	case RemoteProtocolSSH:
		if len(remote.Port) > 0 {
			return fmt.Sprintf("%s%s%s%s%s%s", sshProtocolPrefixConstant, remote.Destination(), sshPathDelimiterConstant, remote.Port, pathSeparatorConstant, remote.Path), nil
		}
		return fmt.Sprintf("%s%s%s", remote.Destination(), sshPathDelimiterConstant, remote.Path), nil
	case RemoteProtocolHTTPS:
		return fmt.Sprintf("%s%s%s%s", httpsProtocolPrefixConstant, remote.Host, pathSeparatorConstant, remote.Path), nil
	default:
		return "", UnsupportedProtocolError{Protocol: remote.Protocol}
	}
}
