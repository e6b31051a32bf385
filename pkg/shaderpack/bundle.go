// Package shaderpack bundles compiled shaders into a zstd-compressed tar with
// a SHA-256 manifest, and verifies such bundles.
package shaderpack

import (
	"archive/tar"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/valyala/gozstd"

	"shader-tools/pkg/logbowl"
)

// ManifestName is the bundle entry holding the manifest. It is always the
// last entry written.
const ManifestName = "manifest.json"

// DefaultInclude selects SPIR-V binaries and the reflection data.
var DefaultInclude = []string{"**/*.spv", "reflection.json"}

type ManifestEntry struct {
	Path   string `json:"path"`
	Sha256 string `json:"sha256"`
	Size   int64  `json:"size"`
}

type Manifest struct {
	Files []ManifestEntry `json:"files"`
}

// Options selects which files go into a bundle. Patterns are doublestar globs
// matched against slash-separated paths relative to the bundled directory.
type Options struct {
	Include []string
	Exclude []string
}

func matchAny(patterns []string, relPath string) (bool, error) {
	for _, pattern := range patterns {
		match, err := doublestar.Match(pattern, relPath)
		if err != nil {
			return false, fmt.Errorf("bad pattern %q: %w", pattern, err)
		}
		if match {
			return true, nil
		}
	}
	return false, nil
}

// selectFiles walks dir and returns the relative slash paths to bundle,
// sorted so bundles of identical trees are identical.
func selectFiles(log logbowl.Logger, dir string, opts Options) ([]string, error) {
	include := opts.Include
	if len(include) == 0 {
		include = DefaultInclude
	}
	var files []string
	err := filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		rel, err := filepath.Rel(dir, path)
		if err != nil {
			return err
		}
		if rel == "." {
			return nil
		}
		rel = filepath.ToSlash(rel)

		excluded, err := matchAny(opts.Exclude, rel)
		if err != nil {
			return err
		}
		if excluded {
			log.Debug("bundle", "pack", "skip", "Excluding path based on pattern", "path", rel)
			if d.IsDir() {
				return filepath.SkipDir
			}
			return nil
		}
		if !d.Type().IsRegular() {
			return nil
		}
		included, err := matchAny(include, rel)
		if err != nil {
			return err
		}
		if included && rel != ManifestName {
			files = append(files, rel)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	sort.Strings(files)
	return files, nil
}

// Pack writes a bundle of dir to outPath and returns its manifest.
func Pack(log logbowl.Logger, dir, outPath string, opts Options) (*Manifest, error) {
	files, err := selectFiles(log, dir, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to scan %s: %w", dir, err)
	}
	if len(files) == 0 {
		return nil, fmt.Errorf("no files in %s match the include patterns", dir)
	}

	out, err := os.OpenFile(outPath, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0644)
	if err != nil {
		return nil, err
	}
	defer out.Close()

	zw := gozstd.NewWriter(out)
	defer zw.Release()
	tw := tar.NewWriter(zw)

	manifest := &Manifest{}
	for _, rel := range files {
		entry, err := addFile(tw, filepath.Join(dir, filepath.FromSlash(rel)), rel)
		if err != nil {
			return nil, fmt.Errorf("failed to add %s: %w", rel, err)
		}
		log.Debug("bundle", "write", "progress", "Added file", "path", rel, "size", entry.Size)
		manifest.Files = append(manifest.Files, entry)
	}

	manifestBytes, err := json.MarshalIndent(manifest, "", "  ")
	if err != nil {
		return nil, err
	}
	hdr := &tar.Header{Name: ManifestName, Mode: 0644, Size: int64(len(manifestBytes)), Typeflag: tar.TypeReg}
	if err := tw.WriteHeader(hdr); err != nil {
		return nil, err
	}
	if _, err := tw.Write(manifestBytes); err != nil {
		return nil, err
	}

	if err := tw.Close(); err != nil {
		return nil, err
	}
	if err := zw.Close(); err != nil {
		return nil, err
	}
	if err := out.Close(); err != nil {
		return nil, err
	}
	log.Info("bundle", "pack", "success", "Shader bundle written", "path", outPath, "files", len(manifest.Files))
	return manifest, nil
}

func addFile(tw *tar.Writer, path, rel string) (ManifestEntry, error) {
	info, err := os.Stat(path)
	if err != nil {
		return ManifestEntry{}, err
	}
	hdr, err := tar.FileInfoHeader(info, "")
	if err != nil {
		return ManifestEntry{}, err
	}
	hdr.Name = rel
	if err := tw.WriteHeader(hdr); err != nil {
		return ManifestEntry{}, err
	}

	f, err := os.Open(path)
	if err != nil {
		return ManifestEntry{}, err
	}
	defer f.Close()
	h := sha256.New()
	n, err := io.Copy(io.MultiWriter(tw, h), f)
	if err != nil {
		return ManifestEntry{}, err
	}
	return ManifestEntry{Path: rel, Sha256: hex.EncodeToString(h.Sum(nil)), Size: n}, nil
}

// Extract unpacks a bundle into dest and returns the regular files written.
// Entries that would land outside dest, and anything other than regular
// files and directories, are rejected.
func Extract(r io.Reader, dest string) ([]string, error) {
	zr := gozstd.NewReader(r)
	defer zr.Release()
	tr := tar.NewReader(zr)

	root := filepath.Clean(dest)
	var files []string
	for {
		header, err := tr.Next()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, err
		}
		target := filepath.Join(root, filepath.FromSlash(header.Name))
		if target != root && !strings.HasPrefix(target, root+string(os.PathSeparator)) {
			return nil, fmt.Errorf("bundle entry %q escapes the destination directory", header.Name)
		}

		switch header.Typeflag {
		case tar.TypeDir:
			if err := os.MkdirAll(target, 0755); err != nil {
				return nil, err
			}
		case tar.TypeReg:
			if err := os.MkdirAll(filepath.Dir(target), 0755); err != nil {
				return nil, err
			}
			f, err := os.OpenFile(target, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0644)
			if err != nil {
				return nil, err
			}
			if _, err := io.Copy(f, tr); err != nil {
				f.Close()
				return nil, err
			}
			if err := f.Close(); err != nil {
				return nil, err
			}
			files = append(files, header.Name)
		default:
			return nil, fmt.Errorf("bundle entry %q has unsupported type %q", header.Name, header.Typeflag)
		}
	}
	return files, nil
}

// Verify extracts the bundle at path into a temporary directory and checks
// every manifest checksum. Files missing from the manifest are an error too.
func Verify(log logbowl.Logger, path string) (*Manifest, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	tmp, err := os.MkdirTemp("", "shader-bundle-verify-")
	if err != nil {
		return nil, err
	}
	defer os.RemoveAll(tmp)

	extracted, err := Extract(f, tmp)
	if err != nil {
		return nil, fmt.Errorf("failed to extract bundle: %w", err)
	}

	manifestBytes, err := os.ReadFile(filepath.Join(tmp, ManifestName))
	if err != nil {
		return nil, fmt.Errorf("bundle has no %s: %w", ManifestName, err)
	}
	var manifest Manifest
	if err := json.Unmarshal(manifestBytes, &manifest); err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", ManifestName, err)
	}

	listed := make(map[string]bool, len(manifest.Files))
	for _, entry := range manifest.Files {
		listed[entry.Path] = true
		sum, err := fileSha256(filepath.Join(tmp, filepath.FromSlash(entry.Path)))
		if err != nil {
			return nil, fmt.Errorf("manifest entry %s: %w", entry.Path, err)
		}
		if sum != entry.Sha256 {
			log.Error("bundle", "verify", "failure", "Checksum mismatch", "path", entry.Path, "expected", entry.Sha256, "actual", sum)
			return nil, fmt.Errorf("checksum mismatch for %s", entry.Path)
		}
		log.Debug("bundle", "verify", "ok", "Checksum matches", "path", entry.Path)
	}
	for _, name := range extracted {
		if name != ManifestName && !listed[name] {
			return nil, fmt.Errorf("bundle file %s is not listed in the manifest", name)
		}
	}
	return &manifest, nil
}

func fileSha256(path string) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", err
	}
	defer f.Close()
	h := sha256.New()
	if _, err := io.Copy(h, f); err != nil {
		return "", err
	}
	return hex.EncodeToString(h.Sum(nil)), nil
}
