package reassembler

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mrzor/etrace-parser/internal/tracelog"
)

func TestReadArgv(t *testing.T) {
	tests := []struct {
		name   string
		events []tracelog.Event
		want   []string
	}{
		{
			name:   "no arguments",
			events: []tracelog.Event{ev(tracelog.TagEndOfArgs, -1, "")},
			want:   []string{},
		},
		{
			name: "trailing nul stripped",
			events: []tracelog.Event{
				ev(tracelog.TagArg, 0, "ls\x00"),
				ev(tracelog.TagEndOfArgs, -1, ""),
			},
			want: []string{"ls"},
		},
		{
			name: "repeated index appends",
			events: []tracelog.Event{
				ev(tracelog.TagArg, 0, "gcc"),
				ev(tracelog.TagArg, 1, "-DLONG_"),
				ev(tracelog.TagArg, 1, "MACRO"),
				ev(tracelog.TagArg, 2, "main.c"),
				ev(tracelog.TagEndOfArgs, -1, ""),
			},
			want: []string{"gcc", "-DLONG_MACRO", "main.c"},
		},
		{
			name: "empty argument",
			events: []tracelog.Event{
				ev(tracelog.TagArg, 0, "echo"),
				ev(tracelog.TagArg, 1, ""),
				ev(tracelog.TagEndOfArgs, -1, ""),
			},
			want: []string{"echo", ""},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ReadArgv(tracelog.NewCursor(tt.events))
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestReadArgv_Errors(t *testing.T) {
	_, err := ReadArgv(tracelog.NewCursor([]tracelog.Event{
		ev(tracelog.TagArg, 0, "a"),
		ev(tracelog.TagArg, 2, "c"),
		ev(tracelog.TagEndOfArgs, -1, ""),
	}))
	assert.ErrorIs(t, err, ErrMalformedChunks)

	_, err = ReadArgv(tracelog.NewCursor([]tracelog.Event{ev(tracelog.TagArg, 1, "b")}))
	assert.ErrorIs(t, err, ErrMalformedChunks)

	_, err = ReadArgv(tracelog.NewCursor([]tracelog.Event{ev(tracelog.TagArg, 0, "a")}))
	assert.ErrorIs(t, err, ErrMissingTerminator)

	cur := tracelog.NewCursor([]tracelog.Event{ev(tracelog.TagArg, 0, "a"), ev(tracelog.TagOpen, -1, "")})
	_, err = ReadArgv(cur)
	assert.ErrorIs(t, err, ErrMissingTerminator)
	assert.Equal(t, 1, cur.Pos(), "the interrupting event is left for the caller")
}
