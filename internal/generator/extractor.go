package generator

import (
	"archive/tar"
	"archive/zip"
	"compress/gzip"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path"
	"strings"

	"github.com/bodgit/sevenzip"
	billy "github.com/go-git/go-billy/v5"
	"github.com/xi2/xz"
)

const (
	archiveSuffixTarGzipConstant      = ".tar.gz"
	archiveSuffixTgzConstant          = ".tgz"
	archiveSuffixTarXzConstant        = ".tar.xz"
	archiveSuffixTarConstant          = ".tar"
	archiveSuffixZipConstant          = ".zip"
	archiveSuffixSevenZipConstant     = ".7z"
	rootPathConstant                  = "/"
	backslashConstant                 = "\\"
	defaultDirectoryModeConstant      = fs.FileMode(0o755)
	defaultFileModeConstant           = fs.FileMode(0o644)
	unsupportedArchiveMessageConstant = "unsupported archive format"
	unsupportedArchiveTemplate        = "%w: %s"
	archiveOpenFailedTemplate         = "unable to open archive %s: %w"
	archiveEntryFailedTemplate        = "unable to extract %s from %s: %w"
)

// ErrUnsupportedArchive indicates the archive extension is not recognized.
var ErrUnsupportedArchive = errors.New(unsupportedArchiveMessageConstant)

// ExtractArchive unpacks archivePath into destination on fileSystem. The format
// is chosen from the file extension: .tar.gz, .tgz, .tar.xz, .tar, .zip or .7z.
// It returns the paths of the regular files written, relative to the filesystem root.
func ExtractArchive(fileSystem billy.Filesystem, archivePath string, destination string) ([]string, error) {
	lowerPath := strings.ToLower(archivePath)
	switch {
	case strings.HasSuffix(lowerPath, archiveSuffixZipConstant):
		return extractZip(fileSystem, archivePath, destination)
	case strings.HasSuffix(lowerPath, archiveSuffixSevenZipConstant):
		return extractSevenZip(fileSystem, archivePath, destination)
	case strings.HasSuffix(lowerPath, archiveSuffixTarGzipConstant),
		strings.HasSuffix(lowerPath, archiveSuffixTgzConstant),
		strings.HasSuffix(lowerPath, archiveSuffixTarXzConstant),
		strings.HasSuffix(lowerPath, archiveSuffixTarConstant):
		return extractTar(fileSystem, archivePath, destination)
	default:
		return nil, fmt.Errorf(unsupportedArchiveTemplate, ErrUnsupportedArchive, archivePath)
	}
}

func extractTar(fileSystem billy.Filesystem, archivePath string, destination string) ([]string, error) {
	archiveFile, openError := fileSystem.Open(archivePath)
	if openError != nil {
		return nil, fmt.Errorf(archiveOpenFailedTemplate, archivePath, openError)
	}
	defer archiveFile.Close()

	var reader io.Reader = archiveFile
	lowerPath := strings.ToLower(archivePath)
	switch {
	case strings.HasSuffix(lowerPath, archiveSuffixTarGzipConstant), strings.HasSuffix(lowerPath, archiveSuffixTgzConstant):
		gzipReader, gzipError := gzip.NewReader(archiveFile)
		if gzipError != nil {
			return nil, fmt.Errorf(archiveOpenFailedTemplate, archivePath, gzipError)
		}
		defer gzipReader.Close()
		reader = gzipReader
	case strings.HasSuffix(lowerPath, archiveSuffixTarXzConstant):
		xzReader, xzError := xz.NewReader(archiveFile, 0)
		if xzError != nil {
			return nil, fmt.Errorf(archiveOpenFailedTemplate, archivePath, xzError)
		}
		reader = xzReader
	}

	var extracted []string
	tarReader := tar.NewReader(reader)
	for {
		header, nextError := tarReader.Next()
		if errors.Is(nextError, io.EOF) {
			break
		}
		if nextError != nil {
			return nil, fmt.Errorf(archiveOpenFailedTemplate, archivePath, nextError)
		}

		target := entryTarget(destination, header.Name)
		switch header.Typeflag {
		case tar.TypeDir:
			if mkdirError := fileSystem.MkdirAll(target, defaultDirectoryModeConstant); mkdirError != nil {
				return nil, fmt.Errorf(archiveEntryFailedTemplate, header.Name, archivePath, mkdirError)
			}
		case tar.TypeReg:
			if writeError := writeEntry(fileSystem, target, header.FileInfo().Mode(), tarReader); writeError != nil {
				return nil, fmt.Errorf(archiveEntryFailedTemplate, header.Name, archivePath, writeError)
			}
			extracted = append(extracted, target)
		}
	}
	return extracted, nil
}

func extractZip(fileSystem billy.Filesystem, archivePath string, destination string) ([]string, error) {
	archiveFile, size, openError := openSized(fileSystem, archivePath)
	if openError != nil {
		return nil, openError
	}
	defer archiveFile.Close()

	zipReader, readerError := zip.NewReader(archiveFile, size)
	if readerError != nil {
		return nil, fmt.Errorf(archiveOpenFailedTemplate, archivePath, readerError)
	}

	var extracted []string
	for _, entry := range zipReader.File {
		target := entryTarget(destination, entry.Name)
		if entry.FileInfo().IsDir() {
			if mkdirError := fileSystem.MkdirAll(target, defaultDirectoryModeConstant); mkdirError != nil {
				return nil, fmt.Errorf(archiveEntryFailedTemplate, entry.Name, archivePath, mkdirError)
			}
			continue
		}
		if copyError := copyOpenedEntry(fileSystem, target, entry.Mode(), entry.Open); copyError != nil {
			return nil, fmt.Errorf(archiveEntryFailedTemplate, entry.Name, archivePath, copyError)
		}
		extracted = append(extracted, target)
	}
	return extracted, nil
}

func extractSevenZip(fileSystem billy.Filesystem, archivePath string, destination string) ([]string, error) {
	archiveFile, size, openError := openSized(fileSystem, archivePath)
	if openError != nil {
		return nil, openError
	}
	defer archiveFile.Close()

	sevenZipReader, readerError := sevenzip.NewReader(archiveFile, size)
	if readerError != nil {
		return nil, fmt.Errorf(archiveOpenFailedTemplate, archivePath, readerError)
	}

	var extracted []string
	for _, entry := range sevenZipReader.File {
		target := entryTarget(destination, entry.Name)
		if entry.FileInfo().IsDir() {
			if mkdirError := fileSystem.MkdirAll(target, defaultDirectoryModeConstant); mkdirError != nil {
				return nil, fmt.Errorf(archiveEntryFailedTemplate, entry.Name, archivePath, mkdirError)
			}
			continue
		}
		if copyError := copyOpenedEntry(fileSystem, target, entry.Mode(), entry.Open); copyError != nil {
			return nil, fmt.Errorf(archiveEntryFailedTemplate, entry.Name, archivePath, copyError)
		}
		extracted = append(extracted, target)
	}
	return extracted, nil
}

func openSized(fileSystem billy.Filesystem, archivePath string) (billy.File, int64, error) {
	fileInfo, statError := fileSystem.Stat(archivePath)
	if statError != nil {
		return nil, 0, fmt.Errorf(archiveOpenFailedTemplate, archivePath, statError)
	}
	archiveFile, openError := fileSystem.Open(archivePath)
	if openError != nil {
		return nil, 0, fmt.Errorf(archiveOpenFailedTemplate, archivePath, openError)
	}
	return archiveFile, fileInfo.Size(), nil
}

func copyOpenedEntry(fileSystem billy.Filesystem, target string, mode fs.FileMode, open func() (io.ReadCloser, error)) error {
	entryReader, openError := open()
	if openError != nil {
		return openError
	}
	defer entryReader.Close()
	return writeEntry(fileSystem, target, mode, entryReader)
}

func writeEntry(fileSystem billy.Filesystem, target string, mode fs.FileMode, contents io.Reader) error {
	if mkdirError := fileSystem.MkdirAll(path.Dir(target), defaultDirectoryModeConstant); mkdirError != nil {
		return mkdirError
	}
	permissions := mode.Perm()
	if permissions == 0 {
		permissions = defaultFileModeConstant
	}
	outputFile, createError := fileSystem.OpenFile(target, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, permissions)
	if createError != nil {
		return createError
	}
	_, copyError := io.Copy(outputFile, contents)
	closeError := outputFile.Close()
	if copyError != nil {
		return copyError
	}
	return closeError
}

// entryTarget confines an archive entry name to destination; names such as
// "../x" or "/etc/x" land inside it.
func entryTarget(destination string, entryName string) string {
	cleanedName := path.Clean(rootPathConstant + strings.ReplaceAll(entryName, backslashConstant, rootPathConstant))
	return path.Join(destination, cleanedName)
}
