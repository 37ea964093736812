package manifest

import (
	"fmt"
	"path/filepath"

	billy "github.com/go-git/go-billy/v5"
	"github.com/go-git/go-billy/v5/util"
)

const (
	temporaryFilePrefixConstant      = ".manifest-rewrite-"
	manifestReadErrorTemplate        = "unable to read manifest %s: %w"
	manifestParseErrorTemplate       = "unable to parse manifest %s: %w"
	manifestWriteErrorTemplate       = "unable to write manifest %s: %w"
	manifestPermissionsErrorTemplate = "unable to preserve permissions of manifest %s: %w"
	manifestReplaceErrorTemplate     = "unable to replace manifest %s: %w"
)

// Store reads and rewrites a manifest file on a billy filesystem rooted at the workspace.
type Store struct {
	fileSystem billy.Filesystem
	path       string
}

// NewStore constructs a Store for the manifest at path, relative to the filesystem root.
func NewStore(fileSystem billy.Filesystem, path string) *Store {
	if len(path) == 0 {
		path = DefaultFileName
	}
	return &Store{fileSystem: fileSystem, path: path}
}

// Path reports the manifest location relative to the filesystem root.
func (store *Store) Path() string {
	return store.path
}

// Load reads and parses the manifest.
func (store *Store) Load() (Manifest, error) {
	contents, readError := util.ReadFile(store.fileSystem, store.path)
	if readError != nil {
		return Manifest{}, fmt.Errorf(manifestReadErrorTemplate, store.path, readError)
	}
	parsed, parseError := Parse(string(contents))
	if parseError != nil {
		return Manifest{}, fmt.Errorf(manifestParseErrorTemplate, store.path, parseError)
	}
	return parsed, nil
}

// Rewrite switches every SSH remote in the manifest to the requested transport.
// The new contents are assembled in memory and written to a sibling temporary
// file that replaces the manifest by rename, so a failed write leaves the
// original untouched. Nothing is written when no URL changes.
func (store *Store) Rewrite(mode TransportMode) (int, error) {
	fileInfo, statError := store.fileSystem.Stat(store.path)
	if statError != nil {
		return 0, fmt.Errorf(manifestReadErrorTemplate, store.path, statError)
	}
	contents, readError := util.ReadFile(store.fileSystem, store.path)
	if readError != nil {
		return 0, fmt.Errorf(manifestReadErrorTemplate, store.path, readError)
	}

	rewrittenContents, rewrittenCount := RewriteContents(string(contents), mode)
	if rewrittenCount == 0 {
		return 0, nil
	}

	temporaryFile, createError := store.fileSystem.TempFile(filepath.Dir(store.path), temporaryFilePrefixConstant)
	if createError != nil {
		return 0, fmt.Errorf(manifestWriteErrorTemplate, store.path, createError)
	}
	temporaryPath := temporaryFile.Name()

	_, writeError := temporaryFile.Write([]byte(rewrittenContents))
	closeError := temporaryFile.Close()
	if writeError == nil {
		writeError = closeError
	}
	if writeError != nil {
		_ = store.fileSystem.Remove(temporaryPath)
		return 0, fmt.Errorf(manifestWriteErrorTemplate, store.path, writeError)
	}

	if changer, supportsChange := store.fileSystem.(billy.Change); supportsChange {
		if chmodError := changer.Chmod(temporaryPath, fileInfo.Mode().Perm()); chmodError != nil {
			_ = store.fileSystem.Remove(temporaryPath)
			return 0, fmt.Errorf(manifestPermissionsErrorTemplate, store.path, chmodError)
		}
	}

	if renameError := store.fileSystem.Rename(temporaryPath, store.path); renameError != nil {
		_ = store.fileSystem.Remove(temporaryPath)
		return 0, fmt.Errorf(manifestReplaceErrorTemplate, store.path, renameError)
	}
	return rewrittenCount, nil
}
