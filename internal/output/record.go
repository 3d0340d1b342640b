package output

import (
	"github.com/mrzor/etrace-parser/internal/record"
)

// Ref is an (pid, index) pair as written out.
type Ref struct {
	P int64 `json:"p"`
	X int   `json:"x"`
}

type ChildRecord struct {
	P int64  `json:"p"`
	F uint64 `json:"f"`
}

// FileRecord is one accessed file. O is only set when the path was opened
// under a different name.
type FileRecord struct {
	P string `json:"p"`
	O string `json:"o,omitempty"`
	M uint32 `json:"m"`
	S int64  `json:"s"`
}

// Record is one element of the JSON database.
type Record struct {
	P int64         `json:"p"`
	X int           `json:"x"`
	E int64         `json:"e"`
	B string        `json:"b"`
	W string        `json:"w"`
	V []string      `json:"v"`
	C []ChildRecord `json:"c"`
	R Ref           `json:"r"`
	I []Ref         `json:"i"`
	O []FileRecord  `json:"o"`
}

func toRef(r record.ExecRef) Ref {
	return Ref{P: r.Pid, X: r.Index}
}

// BuildRecords renders one entry. With split > 0 the files are cut into
// several records once the accumulated path bytes reach split; every record
// repeats the header fields.
func BuildRecords(e *record.Entry, parent record.ExecRef, partners []record.ExecRef, split int64) []Record {
	head := Record{
		P: e.Pid,
		X: e.Index,
		E: e.Elapsed,
		B: e.Binary,
		W: e.Cwd,
		V: e.Argv,
		C: make([]ChildRecord, 0, len(e.Children)),
		R: toRef(parent),
		I: make([]Ref, 0, len(partners)),
	}
	if head.V == nil {
		head.V = []string{}
	}
	for _, c := range e.Children {
		head.C = append(head.C, ChildRecord{P: c.Pid, F: c.Flags})
	}
	for _, p := range partners {
		head.I = append(head.I, toRef(p))
	}

	files := e.SortedFiles()
	var out []Record
	cur := head
	cur.O = []FileRecord{}
	var size int64
	for i, f := range files {
		cur.O = append(cur.O, FileRecord{P: f.Path, O: f.Original, M: f.Mode, S: f.Size})
		size += int64(len(f.Path) + len(f.Original))
		if split > 0 && size >= split && i < len(files)-1 {
			out = append(out, cur)
			cur = head
			cur.O = []FileRecord{}
			size = 0
		}
	}
	return append(out, cur)
}

// UnmarshalRecords decodes a JSON database written by WriteEntries.
func UnmarshalRecords(data []byte, recs *[]Record) error {
	return json.Unmarshal(data, recs)
}
