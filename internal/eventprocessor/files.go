package eventprocessor

import (
	"go.uber.org/zap"
	"golang.org/x/sys/unix"

	"github.com/mrzor/etrace-parser/internal/reassembler"
	"github.com/mrzor/etrace-parser/internal/record"
	"github.com/mrzor/etrace-parser/internal/tracelog"
)

const (
	accessRead  = uint32(unix.O_RDONLY)
	accessWrite = uint32(unix.O_WRONLY)
	accessRW    = uint32(unix.O_RDWR)
	accessMask  = uint32(unix.O_ACCMODE)
)

func (p *Processor) handleOpen(s *procState, ev *tracelog.Event) error {
	args, err := tracelog.ParseOpenArgs(ev)
	if err != nil {
		return err
	}
	final, err := readSized(s, tracelog.TagFN, args.FnameSize)
	if err != nil {
		return err
	}
	orig, err := readSized(s, tracelog.TagFO, args.ForigSize)
	if err != nil {
		return err
	}

	key := fileKey(final, orig)
	p.addFile(s.entry, key, uint32(args.Flags)&accessMask)
	s.res.Ops = append(s.res.Ops, record.NewOpenOp(s.ref(), ev.Timestamp, key, args.Flags, args.Mode, args.Fd))
	s.res.Kinds.Open++
	return nil
}

// handleRename reads RenameFrom/Rename2From plus its outcome.
func (p *Processor) handleRename(s *procState, ev *tracelog.Event) error {
	from, to, flags, ok, err := p.readPathPair(s, ev, tracelog.TagRF, tracelog.TagRenameTo, tracelog.TagRT, tracelog.TagRenameFailed)
	if err != nil || !ok {
		return err
	}
	p.addFile(s.entry, record.FileKey{Path: from}, accessRead)
	p.addFile(s.entry, record.FileKey{Path: to}, accessWrite)
	s.res.Ops = append(s.res.Ops, record.NewRenameOp(s.ref(), ev.Timestamp, from, to, flags))
	s.res.Kinds.Rename++
	return nil
}

// handleLink reads LinkFrom/LinkatFrom plus its outcome.
func (p *Processor) handleLink(s *procState, ev *tracelog.Event) error {
	from, to, flags, ok, err := p.readPathPair(s, ev, tracelog.TagLF, tracelog.TagLinkTo, tracelog.TagLT, tracelog.TagLinkFailed)
	if err != nil || !ok {
		return err
	}
	p.addFile(s.entry, record.FileKey{Path: from}, accessRead)
	p.addFile(s.entry, record.FileKey{Path: to}, accessWrite)
	s.res.Ops = append(s.res.Ops, record.NewLinkOp(s.ref(), ev.Timestamp, from, to, flags))
	s.res.Kinds.Link++
	return nil
}

// readPathPair handles the shared shape of rename and link:
//
//	<From>|fnamesize=N   <fromTag> string
//	<To>|fnamesize=M     <toTag> string     (or <failed>)
//
// ok is false when the operation failed or its second half is missing.
func (p *Processor) readPathPair(s *procState, ev *tracelog.Event, fromTag, toEvent, toTag, failed tracelog.Tag) (from, to string, flags uint64, ok bool, err error) {
	fromArgs, err := tracelog.ParsePathArgs(ev)
	if err != nil {
		return "", "", 0, false, err
	}
	if from, err = readSized(s, fromTag, fromArgs.FnameSize); err != nil {
		return "", "", 0, false, err
	}

	next, more := s.cur.Next()
	switch {
	case !more:
		p.log.Warn("path operation without outcome at end of process",
			zap.Int64("pid", s.pid),
			zap.Int("line", ev.Line),
			zap.String("tag", ev.Name))
		return "", "", 0, false, nil
	case next.Tag == failed:
		return "", "", 0, false, nil
	case next.Tag != toEvent:
		s.cur.Backup()
		p.log.Warn("path operation interrupted",
			zap.Int64("pid", s.pid),
			zap.Int("line", next.Line),
			zap.String("tag", ev.Name),
			zap.String("next", next.Name))
		return "", "", 0, false, nil
	}

	toArgs, err := tracelog.ParsePathArgs(next)
	if err != nil {
		return "", "", 0, false, err
	}
	if to, err = readSized(s, toTag, toArgs.FnameSize); err != nil {
		return "", "", 0, false, err
	}
	return from, to, fromArgs.Flags, true, nil
}

// handleStrayTarget consumes a RenameTo/LinkTo that has no matching source.
func (p *Processor) handleStrayTarget(s *procState, ev *tracelog.Event) error {
	args, err := tracelog.ParsePathArgs(ev)
	if err != nil {
		return err
	}
	tag := tracelog.TagRT
	if ev.Tag == tracelog.TagLinkTo {
		tag = tracelog.TagLT
	}
	if _, err := readSized(s, tag, args.FnameSize); err != nil {
		return err
	}
	p.log.Warn("dropping path target without source",
		zap.Int64("pid", s.pid),
		zap.Int("line", ev.Line),
		zap.String("tag", ev.Name))
	return nil
}

func (p *Processor) handleSymlink(s *procState, ev *tracelog.Event) error {
	args, err := tracelog.ParseSymlinkArgs(ev)
	if err != nil {
		return err
	}
	target, err := readSized(s, tracelog.TagST, args.TargetNameSize)
	if err != nil {
		return err
	}
	var resolved string
	if args.ResolvedNameSize >= 0 {
		if resolved, err = readSized(s, tracelog.TagSR, uint64(args.ResolvedNameSize)); err != nil {
			return err
		}
	}
	link, err := readSized(s, tracelog.TagSL, args.LinkNameSize)
	if err != nil {
		return err
	}

	if args.ResolvedNameSize >= 0 {
		p.addFile(s.entry, record.FileKey{Path: resolved}, accessRead)
	}
	p.addFile(s.entry, record.FileKey{Path: link}, accessWrite)
	s.res.Ops = append(s.res.Ops, record.NewSymlinkOp(s.ref(), ev.Timestamp, target, resolved, link))
	s.res.Kinds.Symlink++
	return nil
}

// handleMount consumes mount and umount strings. They do not produce
// records; the tracer swaps the declared source and target sizes, so they
// are not checked.
func (p *Processor) handleMount(s *procState, ev *tracelog.Event) error {
	if _, err := tracelog.ParseMountArgs(ev); err != nil {
		return err
	}
	for _, tag := range []tracelog.Tag{tracelog.TagMS, tracelog.TagMT, tracelog.TagMX} {
		if _, _, err := reassembler.ReadLongString(s.cur, tag); err != nil {
			return err
		}
	}
	s.res.Kinds.Mount++
	return nil
}

func fileKey(final, orig string) record.FileKey {
	if orig == "" || orig == final {
		return record.FileKey{Path: final}
	}
	return record.FileKey{Path: final, Original: orig}
}

// addFile merges an access into the entry's file map. A second access with
// a different mode upgrades the file to read-write.
func (p *Processor) addFile(entry *record.Entry, key record.FileKey, access uint32) {
	fa, ok := entry.Files[key]
	if !ok {
		fa = &record.FileAccess{FileKey: key, Mode: access}
		entry.Files[key] = fa
		p.stat(fa)
		return
	}
	if fa.Mode&accessMask != access {
		fa.Mode = accessRW
		p.stat(fa)
	}
}
