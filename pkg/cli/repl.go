// pkg/cli/repl.go
package cli

import (
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/pingcap/errors"
	"github.com/xlab/treeprint"
	"go.uber.org/zap"

	"shareable/pkg/shareable"
)

// Options configures a REPL.
type Options struct {
	// Capacity is the bucket capacity of the tree, 0 for the default.
	Capacity int
	// History is how many versions are kept, 0 for all.
	History int
	// Prompt replaces the default prompt when set.
	Prompt string
	Logger *zap.Logger
}

// REPL is an interactive shell over a string dictionary. Every change
// publishes a new version; old versions stay readable and can be checked
// out again, because a change never modifies the version it started from.
type REPL struct {
	shell     *Shell
	output    io.Writer
	errOutput io.Writer
	logger    *zap.Logger

	// versions[i] is version base+i
	versions []shareable.Dict[string, string]
	base     int
	// head is the index of the checked out version
	head    int
	history int

	exitRequested bool
}

// NewREPL creates a REPL reading from stdin.
func NewREPL(output, errOutput io.Writer, opts Options) *REPL {
	return NewREPLWithInput(os.Stdin, output, errOutput, opts)
}

// NewREPLWithInput creates a REPL with custom input/output streams.
func NewREPLWithInput(input io.Reader, output, errOutput io.Writer, opts Options) *REPL {
	if errOutput == nil {
		errOutput = output
	}
	var dopts []shareable.Option
	if opts.Capacity != 0 {
		dopts = append(dopts, shareable.WithCapacity(opts.Capacity))
	}
	lg := opts.Logger
	if lg == nil {
		lg = zap.NewNop()
	}

	shell := NewShell(input, output, errOutput)
	if opts.Prompt != "" {
		shell.SetPrompt(opts.Prompt)
	}
	return &REPL{
		shell:     shell,
		output:    output,
		errOutput: errOutput,
		logger:    lg,
		versions:  []shareable.Dict[string, string]{shareable.New[string, string](dopts...)},
		history:   opts.History,
	}
}

// Run reads and executes commands until EOF or .exit.
func (r *REPL) Run() {
	r.exitRequested = false

	fmt.Fprintln(r.output, "shareable dictionary shell")
	fmt.Fprintln(r.output, "Enter \".help\" for usage hints.")

	for !r.exitRequested {
		cmd, eof := r.shell.ReadCommand()
		if eof && cmd == "" {
			fmt.Fprintln(r.output)
			break
		}

		if err := r.Execute(cmd); err != nil {
			r.printError(err)
		}
		if eof {
			break
		}
	}
}

// Current returns the checked out version.
func (r *REPL) Current() shareable.Dict[string, string] {
	return r.versions[r.head]
}

// Version returns the number of the checked out version.
func (r *REPL) Version() int {
	return r.base + r.head
}

// Execute runs a single command line.
func (r *REPL) Execute(line string) error {
	line = strings.TrimSpace(line)
	if line == "" {
		return nil
	}
	if strings.HasPrefix(line, ".") {
		return r.handleDotCommand(strings.Fields(line))
	}

	args, err := splitFields(line)
	if err != nil {
		return errors.Trace(err)
	}
	cmd, args := strings.ToLower(args[0]), args[1:]
	switch cmd {
	case "set":
		if len(args) != 2 {
			return errors.New("usage: set KEY VALUE")
		}
		r.publish(r.Current().Add(args[0], args[1]))
	case "del":
		if len(args) != 1 {
			return errors.New("usage: del KEY")
		}
		cur := r.Current()
		next := cur.Remove(args[0])
		if next.Same(cur) {
			return errors.Errorf("no such key: %s", args[0])
		}
		r.publish(next)
	case "get":
		if len(args) != 1 {
			return errors.New("usage: get KEY")
		}
		v, ok := r.Current().Lookup(args[0])
		if !ok {
			return errors.Errorf("no such key: %s", args[0])
		}
		fmt.Fprintln(r.output, v)
	case "scan":
		if len(args) > 1 {
			return errors.New("usage: scan [PREFIX]")
		}
		prefix := ""
		if len(args) == 1 {
			prefix = args[0]
		}
		r.scan(prefix)
	default:
		return errors.Errorf("unknown command: %s", cmd)
	}
	return nil
}

// publish appends d as a new version and checks it out. Versions beyond
// the history limit are dropped from the front.
func (r *REPL) publish(d shareable.Dict[string, string]) {
	r.versions = append(r.versions, d)
	r.head = len(r.versions) - 1
	if r.history > 0 && len(r.versions) > r.history {
		drop := len(r.versions) - r.history
		r.versions = append(r.versions[:0:0], r.versions[drop:]...)
		r.base += drop
		r.head -= drop
	}
	r.logger.Debug("version published",
		zap.Int("version", r.Version()),
		zap.Int("count", d.Count()),
		zap.Int("height", d.Height()))
	fmt.Fprintf(r.output, "version %d\n", r.Version())
}

func (r *REPL) scan(prefix string) {
	n := 0
	for b := r.Current().Seek(prefix); b != nil && strings.HasPrefix(b.Key(), prefix); b = b.Next() {
		fmt.Fprintf(r.output, "%4d  %s = %s\n", b.Position(), b.Key(), b.Value())
		n++
	}
	fmt.Fprintf(r.output, "%d key(s)\n", n)
}

func (r *REPL) handleDotCommand(parts []string) error {
	switch strings.ToLower(parts[0]) {
	case ".exit", ".quit":
		r.exitRequested = true
	case ".help":
		r.printHelp()
	case ".tree":
		r.showTree()
	case ".stats":
		s := r.Current().Stats()
		fmt.Fprintf(r.output, "version %d: %d key(s), height %d, %d leaf and %d inner bucket(s), capacity %d\n",
			r.Version(), s.Count, s.Height, s.Leaves, s.Inners, r.Current().Capacity())
	case ".check":
		if err := r.Current().Verify(); err != nil {
			return errors.Annotatef(err, "version %d", r.Version())
		}
		fmt.Fprintln(r.output, "ok")
	case ".versions":
		for i, d := range r.versions {
			mark := " "
			if i == r.head {
				mark = "*"
			}
			fmt.Fprintf(r.output, "%s %d  %d key(s)\n", mark, r.base+i, d.Count())
		}
	case ".checkout":
		if len(parts) != 2 {
			return errors.New("usage: .checkout VERSION")
		}
		v, err := strconv.Atoi(parts[1])
		if err != nil {
			return errors.Annotatef(err, "bad version %q", parts[1])
		}
		if v < r.base || v >= r.base+len(r.versions) {
			return errors.Errorf("no such version: %d", v)
		}
		r.head = v - r.base
		r.logger.Debug("version checked out", zap.Int("version", v))
		fmt.Fprintf(r.output, "version %d\n", v)
	case ".history":
		if len(parts) == 2 && strings.ToLower(parts[1]) == "clear" {
			r.shell.ClearHistory()
			return nil
		}
		for i, cmd := range r.shell.History() {
			fmt.Fprintf(r.output, "%4d  %s\n", i+1, cmd)
		}
	default:
		return errors.Errorf("unknown command: %s (use \".help\" for usage hints)", parts[0])
	}
	return nil
}

// showTree prints the bucket structure of the checked out version.
func (r *REPL) showTree() {
	d := r.Current()
	if d.Count() == 0 {
		fmt.Fprintln(r.output, "(empty)")
		return
	}

	tree := treeprint.New()
	var path []treeprint.Tree
	d.Walk(func(level int, leaf bool, keys []string) bool {
		label := fmt.Sprintf("leaf %v", keys)
		if !leaf {
			label = fmt.Sprintf("inner %v", keys)
		}
		if level == 0 {
			tree.SetValue(label)
			path = append(path[:0], tree)
			return true
		}
		parent := path[level-1]
		if leaf {
			parent.AddNode(label)
			return true
		}
		path = append(path[:level], parent.AddBranch(label))
		return true
	})
	fmt.Fprint(r.output, tree.String())
}

func (r *REPL) printHelp() {
	help := `
set KEY VALUE      Store VALUE under KEY as a new version
del KEY            Remove KEY as a new version
get KEY            Show the value stored under KEY
scan [PREFIX]      List keys starting with PREFIX with their positions

.check             Verify the tree of the current version
.checkout VERSION  Make an older version current
.exit              Exit this program
.help              Show this help message
.history [clear]   Show or forget the commands entered so far
.stats             Show the shape of the current tree
.tree              Print the buckets of the current tree
.versions          List the kept versions

Words containing spaces can be quoted with ' or ".
`
	fmt.Fprintln(r.output, help)
}

func (r *REPL) printError(err error) {
	fmt.Fprintf(r.errOutput, "Error: %v\n", err)
}
