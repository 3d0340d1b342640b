package eventprocessor

import (
	"io/fs"
	"os"

	"github.com/spf13/afero"
	"golang.org/x/sys/unix"

	"github.com/mrzor/etrace-parser/internal/record"
)

const existsBit = 0x40

// stat fills in the exists bit, the file type and the size of a file access
// from the filesystem as it is now, not as it was when the trace was taken.
// Symlinks are not followed.
func (p *Processor) stat(fa *record.FileAccess) {
	fa.Size = 0
	if p.fs == nil {
		return
	}
	name := fa.Original
	if name == "" {
		name = fa.Path
	}
	fi, err := p.lstat(name)
	if err != nil {
		return
	}
	fa.Size = fi.Size()
	fa.Mode |= existsBit | typeBits(fi.Mode())>>10
}

func (p *Processor) lstat(name string) (os.FileInfo, error) {
	if l, ok := p.fs.(afero.Lstater); ok {
		fi, _, err := l.LstatIfPossible(name)
		return fi, err
	}
	return p.fs.Stat(name)
}

// typeBits maps a FileMode back onto the S_IFMT encoding of stat(2).
func typeBits(m fs.FileMode) uint32 {
	switch {
	case m&fs.ModeSymlink != 0:
		return unix.S_IFLNK
	case m.IsDir():
		return unix.S_IFDIR
	case m&fs.ModeNamedPipe != 0:
		return unix.S_IFIFO
	case m&fs.ModeSocket != 0:
		return unix.S_IFSOCK
	case m&fs.ModeCharDevice != 0:
		return unix.S_IFCHR
	case m&fs.ModeDevice != 0:
		return unix.S_IFBLK
	default:
		return unix.S_IFREG
	}
}
