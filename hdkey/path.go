package hdkey

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

const (
	// HardenedKeyStart is the index of the first hardened child. Indices
	// at or above it can only be derived from a private key.
	HardenedKeyStart uint32 = 0x80000000
)

// ErrInvalidPath is returned when a textual derivation path can't be parsed.
var ErrInvalidPath = errors.New("invalid derivation path")

// ChildIndex is the index of a child key below its parent.
type ChildIndex uint32

// Hardened returns the hardened form of a non-hardened index i.
func Hardened(i uint32) ChildIndex {
	return ChildIndex(i | HardenedKeyStart)
}

// IsHardened returns true if the index lies in the hardened range.
func (c ChildIndex) IsHardened() bool {
	return uint32(c) >= HardenedKeyStart
}

// String returns the index in path notation, using an apostrophe to mark
// hardened indices, e.g. 84'.
func (c ChildIndex) String() string {
	if c.IsHardened() {
		return fmt.Sprintf("%d'", uint32(c)-HardenedKeyStart)
	}

	return strconv.FormatUint(uint64(c), 10)
}

// Path is an ordered list of child indices, applied left to right.
type Path []ChildIndex

// String renders the path. Paths starting at a master key are rendered with
// the leading "m" by PathFromMaster; a plain Path is relative, e.g. 0/5.
func (p Path) String() string {
	parts := make([]string, len(p))
	for i, idx := range p {
		parts[i] = idx.String()
	}

	return strings.Join(parts, "/")
}

// PathFromMaster renders p as an absolute path, e.g. m/84'/0'/0'.
func PathFromMaster(p Path) string {
	if len(p) == 0 {
		return "m"
	}

	return "m/" + p.String()
}

// HasHardened returns true if any index of the path is hardened.
func (p Path) HasHardened() bool {
	for _, c := range p {
		if c.IsHardened() {
			return true
		}
	}

	return false
}

// ParsePath parses an absolute (m/84'/0'/0') or relative (0/5) derivation
// path. Both the apostrophe and the h suffix mark a hardened index.
func ParsePath(s string) (Path, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil, fmt.Errorf("%w: empty path", ErrInvalidPath)
	}

	parts := strings.Split(s, "/")
	if parts[0] == "m" || parts[0] == "M" {
		parts = parts[1:]
	}

	path := make(Path, 0, len(parts))
	for _, part := range parts {
		hardened := false
		switch {
		case strings.HasSuffix(part, "'"):
			hardened = true
			part = strings.TrimSuffix(part, "'")

		case strings.HasSuffix(part, "h"), strings.HasSuffix(part, "H"):
			hardened = true
			part = part[:len(part)-1]
		}

		idx, err := strconv.ParseUint(part, 10, 32)
		if err != nil {
			return nil, fmt.Errorf("%w: element %q: %v",
				ErrInvalidPath, part, err)
		}

		if uint32(idx) >= HardenedKeyStart {
			return nil, fmt.Errorf("%w: index %d out of range, use "+
				"the hardened notation instead", ErrInvalidPath,
				idx)
		}

		child := ChildIndex(idx)
		if hardened {
			child = Hardened(uint32(idx))
		}

		path = append(path, child)
	}

	return path, nil
}
