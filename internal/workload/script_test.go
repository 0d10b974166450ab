package workload

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/joshuapare/ringarena/ring"
)

const wrapScript = `
# three 48-byte allocations fill most of a 256-byte ring
alloc a 48 16
alloc b 48 16
alloc c 48 16

free b          # interior: leaves a hole
alloc d 48 16   # served after c, not from the hole
alloc e 48 16   # out of memory
free a
free c
alloc f 176 16  # wraps to the start
`

func TestParseScript(t *testing.T) {
	cmds, err := ParseScript(strings.NewReader("alloc x 1KiB\n\n# c\nfree x\nALLOC y 2kb 64\n"))
	require.NoError(t, err)
	require.Len(t, cmds, 3)

	assert.Equal(t, Command{Line: 1, Op: OpAlloc, Name: "x", Size: 1024}, cmds[0])
	assert.Equal(t, Command{Line: 4, Op: OpFree, Name: "x"}, cmds[1])
	assert.Equal(t, Command{Line: 5, Op: OpAlloc, Name: "y", Size: 2000, Alignment: 64}, cmds[2])
	assert.Equal(t, "alloc y 2000 64", cmds[2].String())
	assert.Equal(t, "free x", cmds[1].String())
}

func TestParseScript_TrailingComment(t *testing.T) {
	cmds, err := ParseScript(strings.NewReader("free b # gone\n"))
	require.Error(t, err, "inline comments are only allowed as whole lines")
	assert.Nil(t, cmds)
}

func TestParseScript_Errors(t *testing.T) {
	tests := []struct {
		name   string
		script string
	}{
		{"unknown verb", "grow a 10"},
		{"alloc missing size", "alloc a"},
		{"alloc extra field", "alloc a 1 8 9"},
		{"bad size", "alloc a lots"},
		{"bad alignment", "alloc a 10 sixteen"},
		{"free missing name", "free"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseScript(strings.NewReader(tt.script))
			require.Error(t, err)
			assert.Contains(t, err.Error(), "line 1")
		})
	}
}

func TestReplay_WrapAndHole(t *testing.T) {
	script := stripInlineComments(wrapScript)
	cmds, err := ParseScript(strings.NewReader(script))
	require.NoError(t, err)

	e, err := ring.New(256, nil)
	require.NoError(t, err)
	defer e.Close()

	var steps []ReplayStep
	require.NoError(t, Replay(e, cmds, func(s ReplayStep) { steps = append(steps, s) }))
	require.Len(t, steps, len(cmds))

	refs := map[string]ring.Ref{}
	for _, s := range steps {
		if s.Command.Op == OpAlloc && s.Err == nil {
			refs[s.Command.Name] = s.Ref
		}
	}
	assert.Equal(t, ring.Ref(16), refs["a"])
	assert.Equal(t, ring.Ref(80), refs["b"])
	assert.Equal(t, ring.Ref(144), refs["c"])
	assert.Equal(t, ring.Ref(208), refs["d"])
	assert.Equal(t, ring.Ref(16), refs["f"])
	assert.NotContains(t, refs, "e")

	failed := steps[5]
	assert.Equal(t, "e", failed.Command.Name)
	assert.ErrorIs(t, failed.Err, ring.ErrOutOfMemory)

	st := e.Stats()
	assert.Equal(t, 2, st.Live)
	assert.EqualValues(t, 1, st.Wraps)
	assert.EqualValues(t, 1, st.Holes)
}

func TestReplay_NameErrors(t *testing.T) {
	e, err := ring.New(1024, nil)
	require.NoError(t, err)
	defer e.Close()

	cmds, err := ParseScript(strings.NewReader("free ghost"))
	require.NoError(t, err)
	require.ErrorIs(t, Replay(e, cmds, nil), ErrUnknownName)

	cmds, err = ParseScript(strings.NewReader("alloc a 8\nalloc a 8"))
	require.NoError(t, err)
	require.ErrorIs(t, Replay(e, cmds, nil), ErrDuplicateName)
}

func TestReplay_BadAlignmentStops(t *testing.T) {
	e, err := ring.New(1024, nil)
	require.NoError(t, err)
	defer e.Close()

	cmds, err := ParseScript(strings.NewReader("alloc a 8 3"))
	require.NoError(t, err)
	require.ErrorIs(t, Replay(e, cmds, nil), ring.ErrBadAlignment)
}

// stripInlineComments drops "# ..." tails so fixtures can be annotated.
func stripInlineComments(s string) string {
	lines := strings.Split(s, "\n")
	for i, l := range lines {
		if j := strings.Index(l, "#"); j > 0 {
			lines[i] = l[:j]
		}
	}
	return strings.Join(lines, "\n")
}
