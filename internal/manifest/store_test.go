package manifest_test

import (
	"errors"
	"os"
	"testing"

	billy "github.com/go-git/go-billy/v5"
	"github.com/go-git/go-billy/v5/memfs"
	"github.com/go-git/go-billy/v5/util"
	"github.com/stretchr/testify/require"

	"github.com/temirov/wsboot/internal/manifest"
)

var errRenameRefused = errors.New("rename refused")

type renameFailingFilesystem struct {
	billy.Filesystem
	attemptedSource string
}

func (fileSystem *renameFailingFilesystem) Rename(from string, to string) error {
	fileSystem.attemptedSource = from
	return errRenameRefused
}

func writeManifest(t *testing.T, fileSystem billy.Filesystem, contents string) {
	t.Helper()
	require.NoError(t, util.WriteFile(fileSystem, manifest.DefaultFileName, []byte(contents), 0o644))
}

func readManifest(t *testing.T, fileSystem billy.Filesystem) string {
	t.Helper()
	contents, readError := util.ReadFile(fileSystem, manifest.DefaultFileName)
	require.NoError(t, readError)
	return string(contents)
}

func TestStoreRewriteReplacesManifest(t *testing.T) {
	fileSystem := memfs.New()
	writeManifest(t, fileSystem, sampleManifestContents)
	store := manifest.NewStore(fileSystem, "")
	require.Equal(t, manifest.DefaultFileName, store.Path())

	rewrittenCount, rewriteError := store.Rewrite(manifest.TransportHTTPS)
	require.NoError(t, rewriteError)
	require.Equal(t, 2, rewrittenCount)

	expected, _ := manifest.RewriteContents(sampleManifestContents, manifest.TransportHTTPS)
	require.Equal(t, expected, readManifest(t, fileSystem))

	loaded, loadError := store.Load()
	require.NoError(t, loadError)
	require.Empty(t, loaded.SSHEntries())
	require.Len(t, loaded.Entries, 3)
}

func TestStoreRewriteWithoutSSHRemotesLeavesFileAlone(t *testing.T) {
	fileSystem := memfs.New()
	httpsContents, _ := manifest.RewriteContents(sampleManifestContents, manifest.TransportHTTPS)
	writeManifest(t, fileSystem, httpsContents)

	rewrittenCount, rewriteError := manifest.NewStore(fileSystem, manifest.DefaultFileName).Rewrite(manifest.TransportHTTPS)
	require.NoError(t, rewriteError)
	require.Zero(t, rewrittenCount)
	require.Equal(t, httpsContents, readManifest(t, fileSystem))
}

func TestStoreRewriteFailureLeavesManifestUntouched(t *testing.T) {
	fileSystem := &renameFailingFilesystem{Filesystem: memfs.New()}
	writeManifest(t, fileSystem, sampleManifestContents)

	_, rewriteError := manifest.NewStore(fileSystem, manifest.DefaultFileName).Rewrite(manifest.TransportHTTPS)
	require.ErrorIs(t, rewriteError, errRenameRefused)
	require.Equal(t, sampleManifestContents, readManifest(t, fileSystem))

	require.NotEmpty(t, fileSystem.attemptedSource)
	_, statError := fileSystem.Stat(fileSystem.attemptedSource)
	require.ErrorIs(t, statError, os.ErrNotExist)
}

func TestStoreReportsMissingManifest(t *testing.T) {
	store := manifest.NewStore(memfs.New(), manifest.DefaultFileName)

	_, loadError := store.Load()
	require.ErrorIs(t, loadError, os.ErrNotExist)

	_, rewriteError := store.Rewrite(manifest.TransportHTTPS)
	require.ErrorIs(t, rewriteError, os.ErrNotExist)
}
