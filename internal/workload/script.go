package workload

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/dustin/go-humanize"

	"github.com/joshuapare/ringarena/ring"
)

const (
	commentPrefix = "#"
	verbAlloc     = "alloc"
	verbFree      = "free"
)

// Command is one line of a replay script:
//
//	alloc <name> <size> [alignment]
//	free <name>
//
// Sizes accept unit suffixes ("48", "1KiB", "2kb"). Blank lines and lines
// starting with # are ignored.
type Command struct {
	Line      int
	Op        Op
	Name      string
	Size      int
	Alignment int // zero means ring.MinAlignment
}

func (c Command) String() string {
	if c.Op == OpFree {
		return verbFree + " " + c.Name
	}
	s := fmt.Sprintf("%s %s %d", verbAlloc, c.Name, c.Size)
	if c.Alignment != 0 {
		s += " " + strconv.Itoa(c.Alignment)
	}
	return s
}

// ParseScript reads replay commands from r.
func ParseScript(r io.Reader) ([]Command, error) {
	scanner := bufio.NewScanner(r)
	var cmds []Command
	line := 0
	for scanner.Scan() {
		line++
		trim := strings.TrimSpace(scanner.Text())
		if trim == "" || strings.HasPrefix(trim, commentPrefix) {
			continue
		}
		cmd, err := parseCommand(trim)
		if err != nil {
			return nil, fmt.Errorf("workload: line %d: %w", line, err)
		}
		cmd.Line = line
		cmds = append(cmds, cmd)
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	return cmds, nil
}

func parseCommand(line string) (Command, error) {
	fields := strings.Fields(line)
	switch strings.ToLower(fields[0]) {
	case verbAlloc:
		if len(fields) < 3 || len(fields) > 4 {
			return Command{}, fmt.Errorf("want %q, got %q", "alloc <name> <size> [alignment]", line)
		}
		size, err := humanize.ParseBytes(fields[2])
		if err != nil {
			return Command{}, fmt.Errorf("size %q: %w", fields[2], err)
		}
		if size > uint64(1<<31-1) {
			return Command{}, fmt.Errorf("size %q too large", fields[2])
		}
		cmd := Command{Op: OpAlloc, Name: fields[1], Size: int(size)}
		if len(fields) == 4 {
			align, err := strconv.Atoi(fields[3])
			if err != nil {
				return Command{}, fmt.Errorf("alignment %q: %w", fields[3], err)
			}
			cmd.Alignment = align
		}
		return cmd, nil

	case verbFree:
		if len(fields) != 2 {
			return Command{}, fmt.Errorf("want %q, got %q", "free <name>", line)
		}
		return Command{Op: OpFree, Name: fields[1]}, nil

	default:
		return Command{}, fmt.Errorf("unknown command %q", fields[0])
	}
}

// ErrUnknownName is returned when a script frees a name that is not live.
var ErrUnknownName = errors.New("workload: free of unknown allocation")

// ErrDuplicateName is returned when a script allocates a name that is
// already live.
var ErrDuplicateName = errors.New("workload: allocation name already live")

// ReplayStep reports the outcome of one script command.
type ReplayStep struct {
	Command Command
	Ref     ring.Ref
	Err     error // allocation failure, typically ring.ErrOutOfMemory
}

type named struct {
	ref   ring.Ref
	size  int
	align int
}

// Replay runs cmds against a in order. Allocation failures are reported to
// observe and do not stop the replay; freeing a name that is not live does.
// Allocations still live at the end are left in place.
func Replay(a ring.Arena, cmds []Command, observe func(ReplayStep)) error {
	live := make(map[string]named)
	for _, cmd := range cmds {
		step := ReplayStep{Command: cmd}
		switch cmd.Op {
		case OpAlloc:
			if _, ok := live[cmd.Name]; ok {
				return fmt.Errorf("%w: line %d: %q", ErrDuplicateName, cmd.Line, cmd.Name)
			}
			align := cmd.Alignment
			if align == 0 {
				align = ring.MinAlignment
			}
			ref, _, err := a.Allocate(cmd.Size, align)
			step.Ref, step.Err = ref, err
			if err == nil {
				live[cmd.Name] = named{ref: ref, size: cmd.Size, align: align}
			} else if !errors.Is(err, ring.ErrOutOfMemory) {
				return fmt.Errorf("workload: line %d: %w", cmd.Line, err)
			}

		case OpFree:
			n, ok := live[cmd.Name]
			if !ok {
				return fmt.Errorf("%w: line %d: %q", ErrUnknownName, cmd.Line, cmd.Name)
			}
			a.Deallocate(n.ref, n.size, n.align)
			delete(live, cmd.Name)
			step.Ref = n.ref
		}
		if observe != nil {
			observe(step)
		}
	}
	return nil
}
