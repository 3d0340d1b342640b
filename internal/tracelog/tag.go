package tracelog

// Tag identifies the kind of an event line.
type Tag uint8

const (
	TagUnknown Tag = iota

	TagNewProc
	TagSchedFork
	TagSysClone
	TagSysCloneFailed
	TagClose
	TagPipe
	TagDup
	TagOpen
	TagRenameFrom
	TagRename2From
	TagRenameTo
	TagRenameFailed
	TagLinkFrom
	TagLinkatFrom
	TagLinkTo
	TagLinkFailed
	TagSymlink
	TagExit
	TagMount
	TagMountFailed
	TagUmount
	TagUmountFailed

	TagArg
	TagEndOfArgs
	TagCont
	TagContEnd

	// Long-string fields. Each has a matching *End terminator below.
	TagPI
	TagPP
	TagCW
	TagFN
	TagFO
	TagRF
	TagRT
	TagLF
	TagLT
	TagST
	TagSR
	TagSL
	TagMS
	TagMT
	TagMX

	TagPIEnd
	TagPPEnd
	TagCWEnd
	TagFNEnd
	TagFOEnd
	TagRFEnd
	TagRTEnd
	TagLFEnd
	TagLTEnd
	TagSTEnd
	TagSREnd
	TagSLEnd
	TagMSEnd
	TagMTEnd
	TagMXEnd
)

const longStringCount = TagMX - TagPI + 1

var tagNames = map[Tag]string{
	TagNewProc:        "New_proc",
	TagSchedFork:      "SchedFork",
	TagSysClone:       "SysClone",
	TagSysCloneFailed: "SysCloneFailed",
	TagClose:          "Close",
	TagPipe:           "Pipe",
	TagDup:            "Dup",
	TagOpen:           "Open",
	TagRenameFrom:     "RenameFrom",
	TagRename2From:    "Rename2From",
	TagRenameTo:       "RenameTo",
	TagRenameFailed:   "RenameFailed",
	TagLinkFrom:       "LinkFrom",
	TagLinkatFrom:     "LinkatFrom",
	TagLinkTo:         "LinkTo",
	TagLinkFailed:     "LinkFailed",
	TagSymlink:        "Symlink",
	TagExit:           "Exit",
	TagMount:          "Mount",
	TagMountFailed:    "MountFailed",
	TagUmount:         "Umount",
	TagUmountFailed:   "UmountFailed",
	TagArg:            "A",
	TagEndOfArgs:      "End_of_args",
	TagCont:           "Cont",
	TagContEnd:        "Cont_end",
	TagPI:             "PI",
	TagPP:             "PP",
	TagCW:             "CW",
	TagFN:             "FN",
	TagFO:             "FO",
	TagRF:             "RF",
	TagRT:             "RT",
	TagLF:             "LF",
	TagLT:             "LT",
	TagST:             "ST",
	TagSR:             "SR",
	TagSL:             "SL",
	TagMS:             "MS",
	TagMT:             "MT",
	TagMX:             "MX",
}

var tagsByName map[string]Tag

func init() {
	tagsByName = make(map[string]Tag, len(tagNames)+int(longStringCount))
	for tag, name := range tagNames {
		tagsByName[name] = tag
	}
	for tag := TagPI; tag <= TagMX; tag++ {
		end := tag.End()
		tagNames[end] = tagNames[tag] + "_end"
		tagsByName[tagNames[end]] = end
	}
}

// LookupTag returns the tag for a name, or TagUnknown.
func LookupTag(name string) Tag {
	return tagsByName[name]
}

func (t Tag) String() string {
	if name, ok := tagNames[t]; ok {
		return name
	}
	return "unknown"
}

// IsLongString reports whether t starts or continues a long-string field.
func (t Tag) IsLongString() bool {
	return t >= TagPI && t <= TagMX
}

// IsLongStringEnd reports whether t terminates a long-string field.
func (t Tag) IsLongStringEnd() bool {
	return t >= TagPIEnd && t <= TagMXEnd
}

// End returns the terminator of a long-string tag, or TagUnknown.
func (t Tag) End() Tag {
	if !t.IsLongString() {
		return TagUnknown
	}
	return t + longStringCount
}

// Indexable reports whether the tag may carry a [index] chunk number.
func (t Tag) Indexable() bool {
	return t == TagArg || t.IsLongString()
}
