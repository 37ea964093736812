package manifest

import (
	"strings"

	"github.com/temirov/wsboot/internal/gitrepo"
)

const lineTerminatorConstant = "\n"

// RewriteContents rewrites every SSH-form url value to the requested transport
// and reports how many URLs changed. Lines keep their order, indentation and
// terminators; anything that is not an SSH url assignment is copied verbatim.
// Rewriting towards SSH is the identity: the manifest never gains SSH URLs.
func RewriteContents(contents string, mode TransportMode) (string, int) {
	if mode != TransportHTTPS {
		return contents, 0
	}

	var builder strings.Builder
	builder.Grow(len(contents))
	rewrittenCount := 0
	for _, line := range strings.SplitAfter(contents, lineTerminatorConstant) {
		rewrittenLine, rewritten := rewriteURLLine(line)
		if rewritten {
			rewrittenCount++
		}
		builder.WriteString(rewrittenLine)
	}
	return builder.String(), rewrittenCount
}

func rewriteURLLine(line string) (string, bool) {
	separatorIndex := strings.Index(line, keyValueSeparatorConstant)
	if separatorIndex == -1 {
		return line, false
	}
	if !strings.EqualFold(strings.TrimSpace(line[:separatorIndex]), urlKeyConstant) {
		return line, false
	}

	valueSection := line[separatorIndex+1:]
	value := strings.TrimSpace(valueSection)
	if len(value) == 0 {
		return line, false
	}
	quoted := strings.HasPrefix(value, quoteCharacterConstant) && strings.HasSuffix(value, quoteCharacterConstant) && len(value) > 1
	remoteValue := value
	if quoted {
		remoteValue = value[1 : len(value)-1]
	}
	if !gitrepo.IsSSHForm(remoteValue) {
		return line, false
	}

	remote, parseError := gitrepo.ParseRemoteURL(remoteValue)
	if parseError != nil {
		return line, false
	}
	remote.Protocol = gitrepo.RemoteProtocolHTTPS
	remote.Port = ""
	httpsValue, formatError := gitrepo.FormatRemoteURL(remote)
	if formatError != nil {
		return line, false
	}
	if quoted {
		httpsValue = quoteCharacterConstant + httpsValue + quoteCharacterConstant
	}

	valueStart := separatorIndex + 1 + strings.Index(valueSection, value)
	return line[:valueStart] + httpsValue + line[valueStart+len(value):], true
}
