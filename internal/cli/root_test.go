package cli

import (
	"bytes"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/OscarFredriksson/tire-logger/internal/testutil"
)

// cliEnv runs root commands against one database in an isolated directory.
type cliEnv struct {
	t     *testing.T
	dir   string
	db    string
	clock *testutil.FixedClock
	ids   *testutil.SequentialIDs
}

func newCLIEnv(t *testing.T) *cliEnv {
	t.Helper()
	dir := t.TempDir()
	chdir(t, dir)
	t.Setenv("HOME", dir)
	return &cliEnv{
		t:     t,
		dir:   dir,
		db:    filepath.Join(dir, "garage.db"),
		clock: testutil.NewFixedClock(testutil.Epoch),
		ids:   testutil.NewSequentialIDs("id"),
	}
}

// run executes args with --db pointing at the env database and returns
// stdout.
func (e *cliEnv) run(stdin string, args ...string) (string, error) {
	e.t.Helper()
	return e.runDB(e.db, stdin, args...)
}

func (e *cliEnv) runDB(db, stdin string, args ...string) (string, error) {
	e.t.Helper()
	cmd := newRootCommand(&RootOptions{Now: e.clock.Now, IDs: e.ids})
	var stdout, stderr bytes.Buffer
	cmd.SetOut(&stdout)
	cmd.SetErr(&stderr)
	cmd.SetIn(strings.NewReader(stdin))
	cmd.SetArgs(append([]string{"--db", db}, args...))
	err := cmd.Execute()
	return stdout.String(), err
}

func (e *cliEnv) mustRun(args ...string) string {
	e.t.Helper()
	out, err := e.run("", args...)
	require.NoError(e.t, err, out)
	return out
}

func TestRootCommand(t *testing.T) {
	cmd := NewRootCommand()
	require.NotNil(t, cmd)
	assert.Equal(t, "tirelog", cmd.Use)
	assert.Contains(t, cmd.Long, "merge back in")
}

func TestCommandPresence(t *testing.T) {
	cmd := NewRootCommand()
	commands := []string{"import", "export", "tables", "status", "add", "list", "usage", "serve"}

	for _, cmdName := range commands {
		t.Run(cmdName, func(t *testing.T) {
			subCmd, _, err := cmd.Find([]string{cmdName})
			require.NoError(t, err, "Command %s should exist", cmdName)
			require.NotNil(t, subCmd)
			assert.Equal(t, cmdName, subCmd.Name())
		})
	}
}

func TestGlobalFlags(t *testing.T) {
	cmd := NewRootCommand()

	verboseFlag := cmd.PersistentFlags().Lookup("verbose")
	require.NotNil(t, verboseFlag)
	assert.Equal(t, "v", verboseFlag.Shorthand)
	assert.Equal(t, "false", verboseFlag.DefValue)

	formatFlag := cmd.PersistentFlags().Lookup("format")
	require.NotNil(t, formatFlag)
	assert.Equal(t, "text", formatFlag.DefValue)

	dbFlag := cmd.PersistentFlags().Lookup("db")
	require.NotNil(t, dbFlag)
	assert.Equal(t, "", dbFlag.DefValue)
}

func TestImportCommandFlags(t *testing.T) {
	cmd := NewRootCommand()
	importCmd, _, err := cmd.Find([]string{"import"})
	require.NoError(t, err)

	modeFlag := importCmd.Flags().Lookup("mode")
	require.NotNil(t, modeFlag)
	assert.Equal(t, "", modeFlag.DefValue)

	for _, name := range []string{"clear", "dry-run"} {
		flag := importCmd.Flags().Lookup(name)
		require.NotNil(t, flag, name)
		assert.Equal(t, "false", flag.DefValue)
	}
}

func TestAddCommandSubcommands(t *testing.T) {
	cmd := NewRootCommand()
	for _, entity := range []string{"car", "track", "tire", "stint"} {
		sub, _, err := cmd.Find([]string{"add", entity})
		require.NoError(t, err)
		assert.Equal(t, entity, sub.Name())
		assert.NotNil(t, sub.Flags().Lookup("id"), "add %s --id", entity)
	}
}

func TestFormatValidationIntegration(t *testing.T) {
	env := newCLIEnv(t)

	_, err := env.run("", "--format", "invalid", "tables")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid format")
}

func TestConfigFileSetsDatabase(t *testing.T) {
	env := newCLIEnv(t)
	cfg := "database:\n  path: from-config.db\n"
	require.NoError(t, writeTestFile(filepath.Join(env.dir, "tirelog.yaml"), cfg))

	cmd := newRootCommand(&RootOptions{Now: env.clock.Now, IDs: env.ids})
	var stdout bytes.Buffer
	cmd.SetOut(&stdout)
	cmd.SetErr(&bytes.Buffer{})
	cmd.SetArgs([]string{"add", "car", "--name", "Miata"})
	require.NoError(t, cmd.Execute())

	assert.FileExists(t, filepath.Join(env.dir, "from-config.db"))
	assert.NoFileExists(t, env.db)
}
