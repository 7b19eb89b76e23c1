package collector

import (
	"fmt"

	"golang.org/x/sys/unix"
)

// FilesystemCollector measures the filesystem holding Path with statfs.
type FilesystemCollector struct {
	Path string
}

func (f *FilesystemCollector) Name() string { return "filesystem" }

func (f *FilesystemCollector) Collect(s *Sample) error {
	path := f.Path
	if path == "" {
		path = "/"
	}
	var st unix.Statfs_t
	if err := unix.Statfs(path, &st); err != nil {
		return fmt.Errorf("statfs %s: %w", path, err)
	}
	bsize := uint64(st.Bsize)
	s.DiskTotal = st.Blocks * bsize
	// Used excludes reserved blocks, matching df.
	s.DiskUsed = (st.Blocks - st.Bfree) * bsize
	return nil
}
