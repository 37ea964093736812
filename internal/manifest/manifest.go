package manifest

import (
	"bufio"
	"fmt"
	"strings"

	"github.com/temirov/wsboot/internal/gitrepo"
)

const (
	sectionPrefixConstant          = "["
	sectionSuffixConstant          = "]"
	submoduleSectionKindConstant   = "submodule"
	keyValueSeparatorConstant      = "="
	commentPrefixHashConstant      = "#"
	commentPrefixSemicolonConstant = ";"
	pathKeyConstant                = "path"
	urlKeyConstant                 = "url"
	branchKeyConstant              = "branch"
	quoteCharacterConstant         = "\""
	entryMissingPathTemplate       = "submodule %q declares no path"
	entryMissingURLTemplate        = "submodule %q declares no url"
	malformedLineTemplate          = "line %d: malformed manifest line %q"
)

// DefaultFileName is the manifest file git uses to declare submodules.
const DefaultFileName = ".gitmodules"

// TransportMode selects how remotes are reached for a run.
type TransportMode string

// Supported transport modes.
const (
	TransportSSH   TransportMode = TransportMode("ssh")
	TransportHTTPS TransportMode = TransportMode("https")
)

// Entry is a single [submodule "name"] declaration.
type Entry struct {
	Name   string
	Path   string
	URL    string
	Branch string
}

// Manifest is the ordered list of submodule declarations.
type Manifest struct {
	Entries []Entry
}

// SSHEntries returns the entries whose URL uses an SSH form, in manifest order.
func (manifest Manifest) SSHEntries() []Entry {
	var sshEntries []Entry
	for _, entry := range manifest.Entries {
		if gitrepo.IsSSHForm(entry.URL) {
			sshEntries = append(sshEntries, entry)
		}
	}
	return sshEntries
}

// ProbeDestination returns the user@host of the first SSH remote, if any.
func (manifest Manifest) ProbeDestination() (string, bool) {
	for _, entry := range manifest.SSHEntries() {
		remote, parseError := gitrepo.ParseRemoteURL(entry.URL)
		if parseError != nil {
			continue
		}
		return remote.Destination(), true
	}
	return "", false
}

// Parse reads manifest contents in git-config syntax. Sections other than
// submodule sections are ignored.
func Parse(contents string) (Manifest, error) {
	var manifest Manifest
	var current *Entry

	flush := func() error {
		if current == nil {
			return nil
		}
		if len(current.Path) == 0 {
			return fmt.Errorf(entryMissingPathTemplate, current.Name)
		}
		if len(current.URL) == 0 {
			return fmt.Errorf(entryMissingURLTemplate, current.Name)
		}
		manifest.Entries = append(manifest.Entries, *current)
		current = nil
		return nil
	}

	scanner := bufio.NewScanner(strings.NewReader(contents))
	lineNumber := 0
	for scanner.Scan() {
		lineNumber++
		line := strings.TrimSpace(scanner.Text())
		if len(line) == 0 || strings.HasPrefix(line, commentPrefixHashConstant) || strings.HasPrefix(line, commentPrefixSemicolonConstant) {
			continue
		}

		if strings.HasPrefix(line, sectionPrefixConstant) {
			if flushError := flush(); flushError != nil {
				return Manifest{}, flushError
			}
			kind, name, isSection := parseSectionHeader(line)
			if !isSection {
				return Manifest{}, fmt.Errorf(malformedLineTemplate, lineNumber, line)
			}
			if kind == submoduleSectionKindConstant {
				current = &Entry{Name: name}
			}
			continue
		}

		key, value, isAssignment := parseAssignment(line)
		if !isAssignment {
			return Manifest{}, fmt.Errorf(malformedLineTemplate, lineNumber, line)
		}
		if current == nil {
			continue
		}
		switch key {
		case pathKeyConstant:
			current.Path = value
		case urlKeyConstant:
			current.URL = value
		case branchKeyConstant:
			current.Branch = value
		}
	}
	if scanError := scanner.Err(); scanError != nil {
		return Manifest{}, scanError
	}
	if flushError := flush(); flushError != nil {
		return Manifest{}, flushError
	}
	return manifest, nil
}

func parseSectionHeader(line string) (string, string, bool) {
	if !strings.HasSuffix(line, sectionSuffixConstant) {
		return "", "", false
	}
	inner := strings.TrimSpace(line[1 : len(line)-1])
	kind, name, _ := strings.Cut(inner, " ")
	name = strings.Trim(strings.TrimSpace(name), quoteCharacterConstant)
	return strings.ToLower(kind), name, len(kind) > 0
}

func parseAssignment(line string) (string, string, bool) {
	key, value, found := strings.Cut(line, keyValueSeparatorConstant)
	if !found {
		return "", "", false
	}
	trimmedKey := strings.ToLower(strings.TrimSpace(key))
	if len(trimmedKey) == 0 {
		return "", "", false
	}
	return trimmedKey, strings.Trim(strings.TrimSpace(value), quoteCharacterConstant), true
}
