package tracelog

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseLine(t *testing.T) {
	tests := []struct {
		name    string
		line    string
		want    Event
		wantErr error
	}{
		{
			name: "event with payload",
			line: "0: 10,3,2,500!New_proc|argsize=3,prognameisize=0,prognamepsize=4,cwdsize=1",
			want: Event{
				Pid: 10, CPU: 3, Timestamp: 2_000_000_500, Tag: TagNewProc, Name: "New_proc",
				Index: -1, Payload: "argsize=3,prognameisize=0,prognamepsize=4,cwdsize=1", Line: 7,
			},
		},
		{
			name: "tag without pipe",
			line: "0: 10,0,0,0!End_of_args",
			want: Event{Pid: 10, Tag: TagEndOfArgs, Name: "End_of_args", Index: -1, Line: 7},
		},
		{
			name: "indexed chunk",
			line: "0: 10,0,0,1!A[2]--verbose|x",
			want: Event{Pid: 10, Timestamp: 1, Tag: TagArg, Name: "A", Index: 2, Payload: "--verbose|x", Line: 7},
		},
		{
			name: "long string end",
			line: "0: 10,0,0,0!PP_end|",
			want: Event{Pid: 10, Tag: TagPPEnd, Name: "PP_end", Index: -1, Line: 7},
		},
		{
			name: "pipe before bracket is not indexed",
			line: "0: 10,0,0,0!PP|/a[0]b",
			want: Event{Pid: 10, Tag: TagPP, Name: "PP", Index: -1, Payload: "/a[0]b", Line: 7},
		},
		{
			name: "negative synthetic pid",
			line: "0: -4,1,0,0!Exit|status=0",
			want: Event{Pid: -4, CPU: 1, Tag: TagExit, Name: "Exit", Index: -1, Payload: "status=0", Line: 7},
		},
		{
			name: "unknown tag survives",
			line: "0: 1,0,0,0!UPID|whatever",
			want: Event{Pid: 1, Tag: TagUnknown, Name: "UPID", Index: -1, Payload: "whatever", Line: 7},
		},
		{name: "missing marker", line: "10,0,0,0!Exit|", wantErr: ErrBadHeader},
		{name: "missing bang", line: "0: 10,0,0,0Exit|", wantErr: ErrBadHeader},
		{name: "missing comma", line: "0: 10,0,0!Exit|", wantErr: ErrBadHeader},
		{name: "bad pid", line: "0: x,0,0,0!Exit|", wantErr: ErrBadHeader},
		{name: "bad nanoseconds", line: "0: 1,0,0,-5!Exit|", wantErr: ErrBadHeader},
		{name: "index on plain tag", line: "0: 1,0,0,0!Open[0]x", wantErr: ErrBadHeader},
		{name: "unterminated index", line: "0: 1,0,0,0!A[0", wantErr: ErrBadHeader},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseLine(tt.line, 7)
			if tt.wantErr != nil {
				require.Error(t, err)
				assert.ErrorIs(t, err, tt.wantErr)
				var lineErr *LineError
				require.True(t, errors.As(err, &lineErr))
				assert.Equal(t, 7, lineErr.Line)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestTagEnd(t *testing.T) {
	assert.Equal(t, TagPPEnd, TagPP.End())
	assert.Equal(t, TagMXEnd, TagMX.End())
	assert.Equal(t, TagUnknown, TagOpen.End())
	assert.Equal(t, "SL_end", TagSLEnd.String())
	assert.Equal(t, TagFOEnd, LookupTag("FO_end"))
	assert.True(t, TagCW.Indexable())
	assert.False(t, TagCWEnd.Indexable())
}
