package record

// Op is one accepted syscall event as written to the raw event log. Every
// variant embeds OpHeader; K is the single-letter discriminator.
type Op interface {
	Header() *OpHeader
}

// OpHeader carries the fields shared by all ops.
type OpHeader struct {
	K string `json:"k"`
	P int64  `json:"p"`
	X int    `json:"x"`
	T int64  `json:"t"`
}

func (h *OpHeader) Header() *OpHeader { return h }

func header(k string, ref ExecRef, t int64) OpHeader {
	return OpHeader{K: k, P: ref.Pid, X: ref.Index, T: t}
}

type ExecOp struct {
	OpHeader
	Binary      string   `json:"b"`
	Cwd         string   `json:"w"`
	Argv        []string `json:"v"`
	Interpreter string   `json:"i,omitempty"`
}

type ForkOp struct {
	OpHeader
	Child int64  `json:"c"`
	Flags uint64 `json:"f"`
}

type CloseOp struct {
	OpHeader
	Fd int `json:"fd"`
}

type PipeOp struct {
	OpHeader
	Read  int    `json:"r"`
	Write int    `json:"w"`
	Flags uint64 `json:"f"`
}

type DupOp struct {
	OpHeader
	Old   int    `json:"o"`
	New   int    `json:"n"`
	Flags uint64 `json:"f"`
}

type OpenOp struct {
	OpHeader
	Path     string `json:"n"`
	Original string `json:"g,omitempty"`
	Flags    uint64 `json:"f"`
	Mode     int64  `json:"m"`
	Fd       int    `json:"fd"`
}

// PathPairOp serves rename (k=r) and link (k=l).
type PathPairOp struct {
	OpHeader
	From  string `json:"s"`
	To    string `json:"d"`
	Flags uint64 `json:"f"`
}

type SymlinkOp struct {
	OpHeader
	Target   string `json:"tg"`
	Resolved string `json:"rs,omitempty"`
	Link     string `json:"ln"`
}

type ExitOp struct {
	OpHeader
	Status    int  `json:"s"`
	Synthetic bool `json:"y,omitempty"`
}

func NewExecOp(ref ExecRef, t int64, binary, cwd string, argv []string, interp string) *ExecOp {
	return &ExecOp{OpHeader: header("e", ref, t), Binary: binary, Cwd: cwd, Argv: argv, Interpreter: interp}
}

func NewForkOp(ref ExecRef, t int64, child int64, flags uint64) *ForkOp {
	return &ForkOp{OpHeader: header("f", ref, t), Child: child, Flags: flags}
}

func NewCloseOp(ref ExecRef, t int64, fd int) *CloseOp {
	return &CloseOp{OpHeader: header("c", ref, t), Fd: fd}
}

func NewPipeOp(ref ExecRef, t int64, read, write int, flags uint64) *PipeOp {
	return &PipeOp{OpHeader: header("p", ref, t), Read: read, Write: write, Flags: flags}
}

func NewDupOp(ref ExecRef, t int64, oldFd, newFd int, flags uint64) *DupOp {
	return &DupOp{OpHeader: header("d", ref, t), Old: oldFd, New: newFd, Flags: flags}
}

func NewOpenOp(ref ExecRef, t int64, key FileKey, flags uint64, mode int64, fd int) *OpenOp {
	return &OpenOp{OpHeader: header("o", ref, t), Path: key.Path, Original: key.Original, Flags: flags, Mode: mode, Fd: fd}
}

func NewRenameOp(ref ExecRef, t int64, from, to string, flags uint64) *PathPairOp {
	return &PathPairOp{OpHeader: header("r", ref, t), From: from, To: to, Flags: flags}
}

func NewLinkOp(ref ExecRef, t int64, from, to string, flags uint64) *PathPairOp {
	return &PathPairOp{OpHeader: header("l", ref, t), From: from, To: to, Flags: flags}
}

func NewSymlinkOp(ref ExecRef, t int64, target, resolved, link string) *SymlinkOp {
	return &SymlinkOp{OpHeader: header("s", ref, t), Target: target, Resolved: resolved, Link: link}
}

func NewExitOp(ref ExecRef, t int64, status int, synthetic bool) *ExitOp {
	return &ExitOp{OpHeader: header("x", ref, t), Status: status, Synthetic: synthetic}
}
