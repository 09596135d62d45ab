// Package scanner reads the Steam library metadata off a mounted microSD card.
package scanner

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/microsdeck/microsdeck-server/internal/domain"
	"github.com/microsdeck/microsdeck-server/internal/vdf"
)

// DefaultMountPath is where SteamOS mounts the card's first partition.
// The device holds exactly one card, so the path is fixed.
const DefaultMountPath = "/run/media/mmcblk0p1"

const (
	libraryDescriptor = "libraryfolder.vdf"
	steamAppsDir      = "steamapps"
	appManifestExt    = ".acf"
)

// ErrNotACard is returned when the mount point carries no library-root
// descriptor. A freshly formatted or non-Steam card is a normal outcome,
// not an error.
var ErrNotACard = errors.New("mount is not a steam library card")

// Scanner reads library metadata from a fixed mount point.
type Scanner struct {
	mount  string
	logger *slog.Logger
}

// New creates a scanner rooted at the given mount point.
func New(mount string, logger *slog.Logger) *Scanner {
	return &Scanner{
		mount:  mount,
		logger: logger,
	}
}

// Scan reads the card's library-root descriptor and every app descriptor
// under steamapps/. It returns ErrNotACard when the root descriptor is
// absent. Individual app descriptors that fail to read or parse are skipped
// with a warning: one corrupt file must not mask the rest of the library.
func (s *Scanner) Scan(ctx context.Context) (*domain.LibraryScan, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	scan, err := s.readLibraryRoot()
	if err != nil {
		return nil, err
	}

	appsPath := filepath.Join(s.mount, steamAppsDir)
	entries, err := os.ReadDir(appsPath)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", appsPath, err)
	}

	for _, entry := range entries {
		if !entry.Type().IsRegular() || !strings.HasSuffix(entry.Name(), appManifestExt) {
			continue
		}

		path := filepath.Join(appsPath, entry.Name())
		app, err := readAppManifest(path)
		if err != nil {
			s.logger.Warn("skipping unreadable app descriptor",
				"path", path,
				"error", err)
			continue
		}
		scan.Apps = append(scan.Apps, *app)
	}

	return scan, nil
}

// readLibraryRoot parses <mount>/libraryfolder.vdf into the scan skeleton.
func (s *Scanner) readLibraryRoot() (*domain.LibraryScan, error) {
	path := filepath.Join(s.mount, libraryDescriptor)
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, ErrNotACard
		}
		return nil, fmt.Errorf("read %s: %w", path, err)
	}

	root, err := vdf.Parse(data)
	if err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}

	lib, ok := root.Object("libraryfolder")
	if !ok {
		return nil, fmt.Errorf("parse %s: missing libraryfolder block", path)
	}

	contentID, _ := lib.String("contentid")
	if contentID == "" {
		return nil, fmt.Errorf("parse %s: missing contentid", path)
	}
	label, _ := lib.String("label")
	if label == "" {
		return nil, fmt.Errorf("parse %s: missing label", path)
	}

	return &domain.LibraryScan{
		ContentID: contentID,
		Label:     label,
	}, nil
}

// readAppManifest parses one .acf descriptor.
func readAppManifest(path string) (*domain.AppState, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	root, err := vdf.Parse(data)
	if err != nil {
		return nil, err
	}

	state, ok := root.Object("AppState")
	if !ok {
		return nil, fmt.Errorf("missing AppState block")
	}

	appID, _ := state.String("appid")
	if appID == "" {
		return nil, fmt.Errorf("missing appid")
	}
	name, _ := state.String("name")
	size, _ := state.Int64("SizeOnDisk")

	return &domain.AppState{
		AppID:      appID,
		Name:       name,
		SizeOnDisk: size,
	}, nil
}
