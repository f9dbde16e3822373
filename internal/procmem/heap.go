package procmem

import (
	"bufio"
	"bytes"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"strings"
)

var (
	// ErrHeapNotFound is returned when the process maps contain no
	// writable heap region.
	ErrHeapNotFound = errors.New("procmem: no writable [heap] region found")

	// ErrStringNotFound is returned when the search string does not occur
	// in the heap region.
	ErrStringNotFound = errors.New("procmem: search string not found in heap")

	// ErrReplacementTooLong is returned when the replacement would not fit
	// in the space occupied by the search string.
	ErrReplacementTooLong = errors.New("procmem: replacement longer than search string")
)

// Region is one mapped memory range of a process.
type Region struct {
	Start uint64
	End   uint64
	Perms string
	Path  string
}

// Size returns the region length in bytes.
func (r Region) Size() uint64 {
	return r.End - r.Start
}

// writable reports whether the region is mapped read-write.
func (r Region) writable() bool {
	return strings.HasPrefix(r.Perms, "rw")
}

// PatchResult describes a completed heap patch.
type PatchResult struct {
	Region  Region
	Offset  uint64 // byte offset of the match inside the region
	Address uint64 // absolute address of the patched string
}

// Patcher rewrites strings in a process heap.
type Patcher struct {
	procRoot string
	logger   *slog.Logger
}

// PatcherOption configures a Patcher.
type PatcherOption func(*Patcher)

// WithProcRoot overrides the /proc mount point.
func WithProcRoot(root string) PatcherOption {
	return func(p *Patcher) {
		p.procRoot = root
	}
}

// WithPatcherLogger sets the logger.
func WithPatcherLogger(logger *slog.Logger) PatcherOption {
	return func(p *Patcher) {
		p.logger = logger
	}
}

// NewPatcher creates a Patcher with the given options.
func NewPatcher(opts ...PatcherOption) *Patcher {
	p := &Patcher{
		procRoot: "/proc",
		logger:   slog.Default(),
	}

	for _, opt := range opts {
		opt(p)
	}

	return p
}

// Patch finds search in the heap of pid and overwrites it with replace.
// The replacement is NUL padded to the length of the search string and
// must not be longer than it.
func (p *Patcher) Patch(pid int, search, replace string) (*PatchResult, error) {
	if search == "" {
		return nil, errors.New("procmem: search string must not be empty")
	}
	if len(replace) > len(search) {
		return nil, fmt.Errorf("%w: %d > %d bytes", ErrReplacementTooLong, len(replace), len(search))
	}

	region, err := p.heapRegion(pid)
	if err != nil {
		return nil, err
	}

	p.logger.Debug("located heap region",
		slog.Int("pid", pid),
		slog.String("start", fmt.Sprintf("0x%x", region.Start)),
		slog.String("end", fmt.Sprintf("0x%x", region.End)),
	)

	memPath := filepath.Join(p.procRoot, strconv.Itoa(pid), "mem")
	mem, err := os.OpenFile(memPath, os.O_RDWR, 0)
	if err != nil {
		return nil, fmt.Errorf("procmem: open process memory: %w", err)
	}
	defer mem.Close()

	heap := make([]byte, region.Size())
	if _, err := mem.ReadAt(heap, int64(region.Start)); err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("procmem: read heap: %w", err)
	}

	offset := bytes.Index(heap, []byte(search))
	if offset < 0 {
		return nil, fmt.Errorf("%w: %q", ErrStringNotFound, search)
	}

	// Pad with NULs so the string terminator lands where the old one was.
	patched := make([]byte, len(search))
	copy(patched, replace)

	address := region.Start + uint64(offset)
	if _, err := mem.WriteAt(patched, int64(address)); err != nil {
		return nil, fmt.Errorf("procmem: write heap: %w", err)
	}

	p.logger.Debug("patched heap string",
		slog.Int("pid", pid),
		slog.String("address", fmt.Sprintf("0x%x", address)),
		slog.Int("bytes", len(patched)),
	)

	return &PatchResult{
		Region:  region,
		Offset:  uint64(offset),
		Address: address,
	}, nil
}

// heapRegion finds the writable [heap] mapping of pid.
func (p *Patcher) heapRegion(pid int) (Region, error) {
	mapsPath := filepath.Join(p.procRoot, strconv.Itoa(pid), "maps")
	f, err := os.Open(mapsPath)
	if err != nil {
		return Region{}, fmt.Errorf("procmem: open process maps: %w", err)
	}
	defer f.Close()

	return findHeapRegion(f)
}

// findHeapRegion scans a maps listing for the writable heap mapping.
func findHeapRegion(r io.Reader) (Region, error) {
	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		region, err := parseMapsLine(scanner.Text())
		if err != nil {
			continue
		}
		if region.Path == "[heap]" && region.writable() {
			return region, nil
		}
	}
	if err := scanner.Err(); err != nil {
		return Region{}, fmt.Errorf("procmem: read process maps: %w", err)
	}
	return Region{}, ErrHeapNotFound
}

// parseMapsLine parses one line of /proc/<pid>/maps. The format is
// "start-end perms offset dev inode [path]".
func parseMapsLine(line string) (Region, error) {
	fields := strings.Fields(line)
	if len(fields) < 5 {
		return Region{}, fmt.Errorf("procmem: malformed maps line: %q", line)
	}

	startStr, endStr, ok := strings.Cut(fields[0], "-")
	if !ok {
		return Region{}, fmt.Errorf("procmem: malformed address range: %q", fields[0])
	}

	startAddr, err := strconv.ParseUint(startStr, 16, 64)
	if err != nil {
		return Region{}, fmt.Errorf("procmem: parse start address: %w", err)
	}
	endAddr, err := strconv.ParseUint(endStr, 16, 64)
	if err != nil {
		return Region{}, fmt.Errorf("procmem: parse end address: %w", err)
	}

	region := Region{
		Start: startAddr,
		End:   endAddr,
		Perms: fields[1],
	}
	if len(fields) >= 6 {
		region.Path = fields[5]
	}
	return region, nil
}
