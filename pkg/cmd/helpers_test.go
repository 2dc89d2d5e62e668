package cmd

import (
	"bytes"
	"context"
	"testing"

	"github.com/pseudomuto/cirrus/pkg/config"
	"github.com/pseudomuto/cirrus/pkg/store"
	"github.com/spf13/afero"
	"github.com/stretchr/testify/require"
	"github.com/urfave/cli/v3"
)

var fixtureFiles = map[string]string{
	"/db/0001-init.sql": `-- Create the accounts table
CREATE TABLE accounts (id INT);
CREATE INDEX accounts_id ON accounts (id);
`,
	"/db/0001-init.rollback.sql": "DROP INDEX accounts_id;\nDROP TABLE accounts;\n",
	"/db/0002-users.sql": `-- Users belong to accounts
-- depends: 0001-init
-- transactional: false
CREATE TABLE users (id INT, account_id INT);
CREATE INDEX CONCURRENTLY users_account ON users (account_id);
`,
	"/db/post-apply-analyze.sql": "ANALYZE;\n",
}

func testParams(t *testing.T, files map[string]string, locations ...string) (commandParams, afero.Fs) {
	t.Helper()

	fs := afero.NewMemMapFs()
	for name, content := range files {
		require.NoError(t, afero.WriteFile(fs, name, []byte(content), 0o644))
	}

	mux := store.NewMux()
	mux.Handle(store.SchemeFile, store.NewFS(fs))

	cfg := config.Default()
	cfg.Locations = locations

	return commandParams{Config: cfg, Store: mux}, fs
}

// runCommand runs command as a sub-command of a test app and returns what it
// wrote.
func runCommand(t *testing.T, command *cli.Command, args ...string) (string, error) {
	t.Helper()

	var buf bytes.Buffer
	app := &cli.Command{
		Name:     "cirrus",
		Writer:   &buf,
		Commands: []*cli.Command{command},
	}

	err := app.Run(context.Background(), append([]string{"cirrus", command.Name}, args...))
	return buf.String(), err
}
