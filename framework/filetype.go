package framework

// FileType identifies the kind of filesystem entry a test case is run
// against. The set is closed: POSIX defines exactly these variants.
type FileType int

const (
	Regular FileType = iota
	Dir
	Fifo
	Block
	Char
	Socket
	Symlink
)

// AllFileTypes is the full variant set in canonical order, usable directly
// as a descriptor's FileTypes field.
var AllFileTypes = []FileType{Regular, Dir, Fifo, Block, Char, Socket, Symlink}

func (ft FileType) String() string {
	switch ft {
	case Regular:
		return "regular"
	case Dir:
		return "dir"
	case Fifo:
		return "fifo"
	case Block:
		return "block"
	case Char:
		return "char"
	case Socket:
		return "socket"
	case Symlink:
		return "symlink"
	default:
		return "unknown"
	}
}

// Privileged reports whether creating an entry of this type requires root.
// Device nodes can only be created by a privileged principal.
func (ft FileType) Privileged() bool {
	return ft == Block || ft == Char
}
