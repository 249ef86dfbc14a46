package system

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/mitchellh/go-ps"

	"github.com/julianstephens/steady/internal/constants"
	"github.com/julianstephens/steady/internal/logger"
)

const watchLockfileName = "watch.lock"

var findProcessFunc = ps.FindProcess

func watchLockPath(dataDir string) string {
	return filepath.Join(dataDir, watchLockfileName)
}

// runningWatcher returns the pid of a live watcher recorded in dataDir, or 0
// when the lockfile is missing or stale.
func runningWatcher(dataDir string) (int, error) {
	content, err := os.ReadFile(watchLockPath(dataDir))
	if errors.Is(err, fs.ErrNotExist) {
		return 0, nil
	}
	if err != nil {
		return 0, fmt.Errorf("failed to read lockfile: %w", err)
	}

	pid, err := strconv.Atoi(strings.TrimSpace(string(content)))
	if err != nil || pid <= 0 {
		logger.Warn("Ignoring malformed watch lockfile", "path", watchLockPath(dataDir))
		return 0, nil
	}

	process, err := findProcessFunc(pid)
	if err != nil {
		return 0, fmt.Errorf("failed to inspect process %d: %w", pid, err)
	}
	// A reused pid belongs to some other program.
	if process == nil || !strings.HasPrefix(process.Executable(), constants.AppName) {
		return 0, nil
	}
	return pid, nil
}

// acquireWatchLock records the current process as the watcher for dataDir.
// The returned release removes the lockfile if it still names this process.
func acquireWatchLock(dataDir string) (release func(), err error) {
	pid, err := runningWatcher(dataDir)
	if err != nil {
		return nil, err
	}
	if pid != 0 && pid != os.Getpid() {
		return nil, fmt.Errorf("%s watch is already running (pid %d)", constants.AppName, pid)
	}

	if err := os.MkdirAll(dataDir, 0o700); err != nil {
		return nil, fmt.Errorf("failed to create data directory: %w", err)
	}
	path := watchLockPath(dataDir)
	self := strconv.Itoa(os.Getpid())
	if err := os.WriteFile(path, []byte(self), 0o600); err != nil {
		return nil, fmt.Errorf("failed to write lockfile: %w", err)
	}

	return func() {
		content, err := os.ReadFile(path)
		if err == nil && strings.TrimSpace(string(content)) == self {
			if err := os.Remove(path); err != nil {
				logger.Warn("Failed to remove watch lockfile", "path", path, "error", err)
			}
		}
	}, nil
}
