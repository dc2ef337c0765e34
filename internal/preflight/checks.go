package preflight

import (
	"fmt"
	"os"

	"github.com/dustin/go-humanize"
	"golang.org/x/sys/unix"

	"ytcs/internal/services"
)

// MinFreeBytes is the free space required in the output directory.
const MinFreeBytes uint64 = 500 << 20

// CheckDirectoryAccess verifies that the directory exists and is readable/writable.
func CheckDirectoryAccess(name, path string) Result {
	info, err := os.Stat(path)
	if err != nil {
		if os.IsNotExist(err) {
			return failed(name, services.ErrConfiguration, "%s (error: does not exist)", path)
		}
		return failed(name, services.ErrConfiguration, "%s (error: stat: %v)", path, err)
	}
	if !info.IsDir() {
		return failed(name, services.ErrConfiguration, "%s (error: is not a directory)", path)
	}
	if err := unix.Access(path, unix.R_OK|unix.W_OK|unix.X_OK); err != nil {
		return failed(name, services.ErrConfiguration, "%s (error: insufficient permissions: %v)", path, err)
	}
	return Result{Name: name, Passed: true, Detail: fmt.Sprintf("%s (read/write ok)", path)}
}

// CheckFreeSpace verifies the filesystem holding path has at least minBytes available.
func CheckFreeSpace(name, path string, minBytes uint64) Result {
	var stat unix.Statfs_t
	if err := unix.Statfs(path, &stat); err != nil {
		return failed(name, services.ErrConfiguration, "%s (error: statfs: %v)", path, err)
	}
	free := stat.Bavail * uint64(stat.Bsize) //nolint:gosec
	if free < minBytes {
		return failed(name, services.ErrValidation, "%s (%s free, need %s)",
			path, humanize.IBytes(free), humanize.IBytes(minBytes))
	}
	return Result{Name: name, Passed: true, Detail: fmt.Sprintf("%s (%s free)", path, humanize.IBytes(free))}
}

func failed(name string, marker error, format string, args ...any) Result {
	return Result{Name: name, Marker: marker, Detail: fmt.Sprintf(format, args...)}
}
