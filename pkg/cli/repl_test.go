// pkg/cli/repl_test.go
package cli

import (
	"bytes"
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

func newTestREPL(opts Options) (*REPL, *bytes.Buffer) {
	output := &bytes.Buffer{}
	return NewREPLWithInput(nil, output, output, opts), output
}

func TestREPLSetGetDel(t *testing.T) {
	re := require.New(t)
	repl, output := newTestREPL(Options{})

	re.NoError(repl.Execute("set a 1"))
	re.NoError(repl.Execute(`set b "two words"`))
	re.Equal("version 1\nversion 2\n", output.String())
	re.Equal(2, repl.Version())

	output.Reset()
	re.NoError(repl.Execute("get b"))
	re.Equal("two words\n", output.String())

	re.NoError(repl.Execute("del a"))
	re.Equal(3, repl.Version())
	re.Error(repl.Execute("get a"))
	re.Error(repl.Execute("del a"))
	re.Equal(3, repl.Version())

	re.Error(repl.Execute("set a"))
	re.Error(repl.Execute("frobnicate"))
	re.Error(repl.Execute(`set a "open`))
	re.NoError(repl.Execute("   "))
}

func TestREPLScan(t *testing.T) {
	re := require.New(t)
	repl, output := newTestREPL(Options{})
	for _, k := range []string{"b1", "a2", "a1", "c"} {
		re.NoError(repl.Execute("set " + k + " v" + k))
	}

	output.Reset()
	re.NoError(repl.Execute("scan a"))
	re.Equal("   0  a1 = va1\n   1  a2 = va2\n2 key(s)\n", output.String())

	output.Reset()
	re.NoError(repl.Execute("scan b"))
	re.Equal("   2  b1 = vb1\n1 key(s)\n", output.String())

	output.Reset()
	re.NoError(repl.Execute("scan"))
	re.Contains(output.String(), "4 key(s)")

	output.Reset()
	re.NoError(repl.Execute("scan zz"))
	re.Equal("0 key(s)\n", output.String())
}

func TestREPLCheckout(t *testing.T) {
	re := require.New(t)
	repl, output := newTestREPL(Options{})
	re.NoError(repl.Execute("set a 1"))
	re.NoError(repl.Execute("set a 2"))

	re.NoError(repl.Execute(".checkout 1"))
	output.Reset()
	re.NoError(repl.Execute("get a"))
	re.Equal("1\n", output.String())

	// writing on an old version appends a new one
	re.NoError(repl.Execute("set b 3"))
	re.Equal(3, repl.Version())
	output.Reset()
	re.NoError(repl.Execute(".versions"))
	re.Equal("  0  0 key(s)\n  1  1 key(s)\n  2  1 key(s)\n* 3  2 key(s)\n", output.String())

	re.Error(repl.Execute(".checkout 9"))
	re.Error(repl.Execute(".checkout x"))
	re.Error(repl.Execute(".checkout"))
}

func TestREPLHistoryLimit(t *testing.T) {
	re := require.New(t)
	repl, output := newTestREPL(Options{History: 3})
	for i := 0; i < 5; i++ {
		re.NoError(repl.Execute(fmt.Sprintf("set k%d v", i)))
	}
	re.Equal(5, repl.Version())

	output.Reset()
	re.NoError(repl.Execute(".versions"))
	re.Equal("  3  3 key(s)\n  4  4 key(s)\n* 5  5 key(s)\n", output.String())
	re.Error(repl.Execute(".checkout 2"))
	re.NoError(repl.Execute(".checkout 3"))
	re.Equal(3, repl.Current().Count())
}

func TestREPLTreeStatsCheck(t *testing.T) {
	re := require.New(t)
	repl, output := newTestREPL(Options{Capacity: 6})

	re.NoError(repl.Execute(".tree"))
	re.Equal("(empty)\n", output.String())

	for i := 0; i < 20; i++ {
		re.NoError(repl.Execute(fmt.Sprintf("set k%02d v", i)))
	}

	output.Reset()
	re.NoError(repl.Execute(".tree"))
	tree := output.String()
	re.True(strings.HasPrefix(tree, "inner ["), tree)
	re.Contains(tree, "leaf [k00")
	re.Contains(tree, "k19]")

	output.Reset()
	re.NoError(repl.Execute(".stats"))
	s := repl.Current().Stats()
	re.Equal(20, s.Count)
	re.Contains(output.String(), "20 key(s)")
	re.Contains(output.String(), fmt.Sprintf("height %d", s.Height))
	re.Contains(output.String(), "capacity 6")

	output.Reset()
	re.NoError(repl.Execute(".check"))
	re.Equal("ok\n", output.String())
}

func TestREPLRun(t *testing.T) {
	re := require.New(t)
	input := strings.NewReader("set a 1\nget a\n.bogus\nget missing\n.history\n.exit\nget a\n")
	output := &bytes.Buffer{}
	errOutput := &bytes.Buffer{}
	core, logs := observer.New(zap.DebugLevel)

	repl := NewREPLWithInput(input, output, errOutput, Options{Prompt: "> ", Logger: zap.New(core)})
	repl.Run()

	out := output.String()
	re.Contains(out, "> version 1\n")
	re.Contains(out, "> 1\n")
	re.Contains(out, "   1  set a 1\n")
	re.Equal(1, strings.Count(out, "> 1\n"), "commands after .exit must not run")

	re.Contains(errOutput.String(), "Error: unknown command: .bogus")
	re.Contains(errOutput.String(), "Error: no such key: missing")

	entries := logs.FilterMessage("version published").All()
	re.Len(entries, 1)
	re.Equal(int64(1), entries[0].ContextMap()["version"])
}

func TestREPLMultiLineValue(t *testing.T) {
	re := require.New(t)
	input := strings.NewReader("set k 'a  \nb'\n.history clear\n.history\n")
	output := &bytes.Buffer{}
	repl := NewREPLWithInput(input, output, output, Options{Prompt: "> "})
	repl.Run()

	v, ok := repl.Current().Lookup("k")
	re.True(ok)
	re.Equal("a  \nb", v)
	re.Equal([]string{".history"}, repl.shell.History())
	re.NotContains(output.String(), "set k")
}

func TestREPLHelp(t *testing.T) {
	re := require.New(t)
	repl, output := newTestREPL(Options{})
	re.NoError(repl.Execute(".help"))
	for _, cmd := range []string{"set KEY VALUE", "scan [PREFIX]", ".checkout VERSION", ".tree"} {
		re.Contains(output.String(), cmd)
	}
}
