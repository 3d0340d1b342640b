package tracelog

import (
	"fmt"
	"strconv"
	"strings"
)

// NewProcArgs are the declared sizes of an exec's strings.
type NewProcArgs struct {
	ArgSize       uint64
	ProgNameISize uint64
	ProgNamePSize uint64
	CwdSize       uint64
}

// ForkArgs identify the child created by a fork.
type ForkArgs struct {
	ChildPid int64
}

// CloneArgs carry the clone(2) flags.
type CloneArgs struct {
	Flags uint64
}

type CloseArgs struct {
	Fd int
}

type PipeArgs struct {
	Fd1   int
	Fd2   int
	Flags uint64
}

type DupArgs struct {
	OldFd int
	NewFd int
	Flags uint64
}

type OpenArgs struct {
	FnameSize uint64
	ForigSize uint64
	Flags     uint64
	Mode      int64
	Fd        int
}

// PathArgs is shared by the rename and link families.
type PathArgs struct {
	FnameSize uint64
	Flags     uint64
}

type SymlinkArgs struct {
	TargetNameSize uint64
	// ResolvedNameSize is -1 when the tracer could not resolve the target.
	ResolvedNameSize int64
	LinkNameSize     uint64
}

type ExitArgs struct {
	Status int
}

type MountArgs struct {
	TargetNameSize uint64
	SourceNameSize uint64
	TypeNameSize   uint64
	Flags          uint64
}

type field struct {
	set      func(string) error
	optional bool
}

type fields map[string]field

func uintField(dst *uint64) field {
	return field{set: func(v string) (err error) {
		*dst, err = strconv.ParseUint(v, 10, 64)
		return err
	}}
}

func intField(dst *int64) field {
	return field{set: func(v string) (err error) {
		*dst, err = strconv.ParseInt(v, 10, 64)
		return err
	}}
}

func fdField(dst *int) field {
	return field{set: func(v string) error {
		n, err := strconv.ParseInt(v, 10, 32)
		*dst = int(n)
		return err
	}}
}

// flagsField accepts the signed decimal the tracer prints for int flags.
func flagsField(dst *uint64) field {
	return field{set: func(v string) error {
		if n, err := strconv.ParseUint(v, 10, 64); err == nil {
			*dst = n
			return nil
		}
		n, err := strconv.ParseInt(v, 10, 64)
		*dst = uint64(n)
		return err
	}}
}

func optional(f field) field {
	f.optional = true
	return f
}

func mustTag(ev *Event, tags ...Tag) {
	for _, t := range tags {
		if ev.Tag == t {
			return
		}
	}
	panic(fmt.Sprintf("tracelog: decoding %s arguments from a %s event", tags[0], ev.Tag))
}

func decodeArgs(ev *Event, layout fields) error {
	seen := make(map[string]bool, len(layout))
	for _, token := range strings.Split(ev.Payload, ",") {
		if token == "" {
			continue
		}
		key, value, ok := strings.Cut(token, "=")
		if !ok {
			return fmt.Errorf("%w: %s token %q is not key=value", ErrBadArgument, ev.Tag, token)
		}
		f, known := layout[key]
		if !known {
			continue
		}
		if err := f.set(value); err != nil {
			return fmt.Errorf("%w: %s %s=%q", ErrBadArgument, ev.Tag, key, value)
		}
		seen[key] = true
	}
	for key, f := range layout {
		if !f.optional && !seen[key] {
			return fmt.Errorf("%w: %s has no %s", ErrMissingArgument, ev.Tag, key)
		}
	}
	return nil
}

func ParseNewProcArgs(ev *Event) (NewProcArgs, error) {
	mustTag(ev, TagNewProc)
	var a NewProcArgs
	err := decodeArgs(ev, fields{
		"argsize":       uintField(&a.ArgSize),
		"prognameisize": uintField(&a.ProgNameISize),
		"prognamepsize": uintField(&a.ProgNamePSize),
		"cwdsize":       uintField(&a.CwdSize),
	})
	return a, err
}

func ParseForkArgs(ev *Event) (ForkArgs, error) {
	mustTag(ev, TagSchedFork)
	var a ForkArgs
	err := decodeArgs(ev, fields{"pid": intField(&a.ChildPid)})
	return a, err
}

func ParseCloneArgs(ev *Event) (CloneArgs, error) {
	mustTag(ev, TagSysClone)
	var a CloneArgs
	err := decodeArgs(ev, fields{"flags": flagsField(&a.Flags)})
	return a, err
}

func ParseCloseArgs(ev *Event) (CloseArgs, error) {
	mustTag(ev, TagClose)
	var a CloseArgs
	err := decodeArgs(ev, fields{"fd": fdField(&a.Fd)})
	return a, err
}

func ParsePipeArgs(ev *Event) (PipeArgs, error) {
	mustTag(ev, TagPipe)
	var a PipeArgs
	err := decodeArgs(ev, fields{
		"fd1":   fdField(&a.Fd1),
		"fd2":   fdField(&a.Fd2),
		"flags": flagsField(&a.Flags),
	})
	return a, err
}

func ParseDupArgs(ev *Event) (DupArgs, error) {
	mustTag(ev, TagDup)
	var a DupArgs
	err := decodeArgs(ev, fields{
		"oldfd": fdField(&a.OldFd),
		"newfd": fdField(&a.NewFd),
		"flags": flagsField(&a.Flags),
	})
	return a, err
}

func ParseOpenArgs(ev *Event) (OpenArgs, error) {
	mustTag(ev, TagOpen)
	var a OpenArgs
	err := decodeArgs(ev, fields{
		"fnamesize": uintField(&a.FnameSize),
		"forigsize": uintField(&a.ForigSize),
		"flags":     flagsField(&a.Flags),
		"mode":      intField(&a.Mode),
		"fd":        fdField(&a.Fd),
	})
	return a, err
}

// ParsePathArgs decodes the rename and link events. Only Rename2From and
// LinkatFrom carry flags.
func ParsePathArgs(ev *Event) (PathArgs, error) {
	mustTag(ev, TagRenameFrom, TagRename2From, TagRenameTo, TagLinkFrom, TagLinkatFrom, TagLinkTo)
	var a PathArgs
	layout := fields{"fnamesize": uintField(&a.FnameSize)}
	if ev.Tag == TagRename2From || ev.Tag == TagLinkatFrom {
		layout["flags"] = flagsField(&a.Flags)
	}
	err := decodeArgs(ev, layout)
	return a, err
}

func ParseSymlinkArgs(ev *Event) (SymlinkArgs, error) {
	mustTag(ev, TagSymlink)
	a := SymlinkArgs{ResolvedNameSize: -1}
	err := decodeArgs(ev, fields{
		"targetnamesize":   uintField(&a.TargetNameSize),
		"resolvednamesize": optional(intField(&a.ResolvedNameSize)),
		"linknamesize":     uintField(&a.LinkNameSize),
	})
	return a, err
}

func ParseExitArgs(ev *Event) (ExitArgs, error) {
	mustTag(ev, TagExit)
	var a ExitArgs
	err := decodeArgs(ev, fields{"status": optional(fdField(&a.Status))})
	return a, err
}

// ParseMountArgs decodes Mount and Umount. Umount only has a target.
func ParseMountArgs(ev *Event) (MountArgs, error) {
	mustTag(ev, TagMount, TagUmount)
	var a MountArgs
	layout := fields{
		"targetnamesize": uintField(&a.TargetNameSize),
		"flags":          flagsField(&a.Flags),
	}
	if ev.Tag == TagMount {
		layout["sourcenamesize"] = uintField(&a.SourceNameSize)
		layout["typenamesize"] = optional(uintField(&a.TypeNameSize))
	}
	err := decodeArgs(ev, layout)
	return a, err
}
