package cmd

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
	"github.com/stretchr/testify/require"

	"github.com/zjrosen/observer/internal/config"
	"github.com/zjrosen/observer/internal/tracing"
)

// resetFlags restores every flag of c and its children to its default so
// runs of the shared rootCmd do not leak into each other.
func resetFlags(c *cobra.Command) {
	reset := func(f *pflag.Flag) {
		if sv, ok := f.Value.(pflag.SliceValue); ok {
			_ = sv.Replace(nil)
		} else {
			_ = f.Value.Set(f.DefValue)
		}
		f.Changed = false
	}
	c.PersistentFlags().VisitAll(reset)
	c.Flags().VisitAll(reset)
	for _, child := range c.Commands() {
		resetFlags(child)
	}
}

// executeCommand runs the CLI with args from an empty home directory.
func executeCommand(t *testing.T, args ...string) (string, string, error) {
	t.Helper()
	t.Setenv("HOME", t.TempDir())
	t.Chdir(t.TempDir())

	viper.Reset()
	resetFlags(rootCmd)

	var stdout, stderr bytes.Buffer
	rootCmd.SetOut(&stdout)
	rootCmd.SetErr(&stderr)
	rootCmd.SetArgs(args)

	err := Execute()
	return stdout.String(), stderr.String(), err
}

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

const demoOutput = `Holder: 'test1' has value = 0

HexFormatter: 'test1' has now hex data = 0x3
Holder: 'test1' has value = 3

HexFormatter: 'test1' has now hex data = 0x15
BinaryFormatter: 'test1' has now bin data = 0b10101
Holder: 'test1' has value = 21

BinaryFormatter: 'test1' has now bin data = 0b101000
Holder: 'test1' has value = 40

Holder: 'test1' has value = 40

BinaryFormatter: 'test1' has now bin data = 0b1111
Holder: 'test1' has value = 15
`

const demoErrors = `Failed to remove: observer not registered: HexFormatter
Failed to add: observer already registered: BinaryFormatter
Error: invalid literal for integer with base 10: "hello": invalid syntax
`

func TestDemo(t *testing.T) {
	for _, args := range [][]string{{"demo"}, {}} {
		stdout, stderr, err := executeCommand(t, args...)
		require.NoError(t, err)
		require.Equal(t, demoOutput, stdout)
		require.Equal(t, demoErrors, stderr)
	}
}

func TestDemo_UsesConfiguredName(t *testing.T) {
	stdout, _, err := executeCommand(t, "demo", "--name", "counter")
	require.NoError(t, err)
	require.True(t, strings.HasPrefix(stdout, "Holder: 'counter' has value = 0\n"))
}

func TestSet_AppliesValuesInOrder(t *testing.T) {
	stdout, stderr, err := executeCommand(t, "set", "-o", "hex,oct", "--name", "counter", "255", "hello", "1.9")
	require.NoError(t, err)
	require.Equal(t, `HexFormatter: 'counter' has now hex data = 0xff
OctalFormatter: 'counter' has now oct data = 0o377
HexFormatter: 'counter' has now hex data = 0x1
OctalFormatter: 'counter' has now oct data = 0o1
Holder: 'counter' has value = 1
`, stdout)
	require.Equal(t, "Error: invalid literal for integer with base 10: \"hello\": invalid syntax\n", stderr)
}

func TestSet_Summary(t *testing.T) {
	stdout, _, err := executeCommand(t, "set", "-o", "dec", "--summary", "4", "x")
	require.NoError(t, err)
	require.Equal(t, `DecimalFormatter: 'test1' has now dec data = 4
Holder: 'test1' has value = 4
Holder: 'test1' has value = 4
`, stdout)
}

func TestSet_ObserversFromConfigFile(t *testing.T) {
	path := writeConfig(t, "name: fromfile\nobservers: [bin]\n")

	stdout, _, err := executeCommand(t, "set", "--config", path, "5")
	require.NoError(t, err)
	require.Equal(t, "BinaryFormatter: 'fromfile' has now bin data = 0b101\nHolder: 'fromfile' has value = 5\n", stdout)
}

func TestSet_NameFromEnv(t *testing.T) {
	t.Setenv("OBSERVER_NAME", "envname")

	stdout, _, err := executeCommand(t, "set", "-o", "dec", "7")
	require.NoError(t, err)
	require.Contains(t, stdout, "DecimalFormatter: 'envname' has now dec data = 7")
}

func TestSet_RequiresValue(t *testing.T) {
	_, _, err := executeCommand(t, "set")
	require.Error(t, err)
}

func TestInvalidConfig(t *testing.T) {
	path := writeConfig(t, "observers: [hex, roman]\n")

	_, _, err := executeCommand(t, "demo", "--config", path)
	require.ErrorContains(t, err, `invalid configuration: observers[1]: unknown kind "roman"`)

	_, _, err = executeCommand(t, "demo", "--config", filepath.Join(t.TempDir(), "missing.yaml"))
	require.ErrorContains(t, err, "reading config")
}

func TestKinds(t *testing.T) {
	stdout, _, err := executeCommand(t, "kinds")
	require.NoError(t, err)
	require.Equal(t, "bin\ndec\nhex\noct\n", stdout)
}

func TestInit(t *testing.T) {
	path := filepath.Join(t.TempDir(), "cfg", "config.yaml")

	stdout, _, err := executeCommand(t, "init", path)
	require.NoError(t, err)
	require.Equal(t, "Wrote "+path+"\n", stdout)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	require.Equal(t, config.DefaultConfigTemplate(), string(data))

	_, _, err = executeCommand(t, "init", path)
	require.ErrorContains(t, err, "already exists")

	_, _, err = executeCommand(t, "init", "--force", "-o", "oct,dec", path)
	require.NoError(t, err)

	stdout, _, err = executeCommand(t, "set", "--config", path, "8")
	require.NoError(t, err)
	require.Equal(t, `OctalFormatter: 'test1' has now oct data = 0o10
DecimalFormatter: 'test1' has now dec data = 8
Holder: 'test1' has value = 8
`, stdout)
}

func TestLogFile(t *testing.T) {
	logPath := filepath.Join(t.TempDir(), "observer.log")

	_, _, err := executeCommand(t, "set", "--log-file", logPath, "-o", "hex", "2", "nope")
	require.NoError(t, err)

	data, err := os.ReadFile(logPath)
	require.NoError(t, err)
	content := string(data)
	require.Contains(t, content, "[DEBUG] [cli] Running command command=set")
	require.Contains(t, content, "[DEBUG] [holder] Value set name=test1 value=2")
	require.Contains(t, content, "[WARN] [holder] Rejected value name=test1 input=nope")
}

func TestDebugLogsToStderr(t *testing.T) {
	path := writeConfig(t, "log:\n  level: warn\n")

	_, stderr, err := executeCommand(t, "set", "--config", path, "--debug", "-o", "hex", "bad")
	require.NoError(t, err)
	require.NotContains(t, stderr, "[DEBUG]")
	require.Contains(t, stderr, "[WARN] [holder] Rejected value")
}

func TestTracingToFile(t *testing.T) {
	tracePath := filepath.Join(t.TempDir(), "traces.jsonl")
	path := writeConfig(t, "tracing:\n  enabled: true\n  exporter: file\n  file_path: "+tracePath+"\n")

	stdout, stderr, err := executeCommand(t, "set", "--config", path, "-o", "hex", "3")
	require.NoError(t, err)
	require.Equal(t, "HexFormatter: 'test1' has now hex data = 0x3\nHolder: 'test1' has value = 3\n", stdout)
	require.Empty(t, stderr, "traced observers keep their plain names in output")

	data, err := os.ReadFile(tracePath)
	require.NoError(t, err)
	require.Contains(t, string(data), `"name":"observer.update.HexFormatter"`)
	require.Contains(t, string(data), `"name":"`+tracing.SpanPrefixCLI+`set"`)
}
