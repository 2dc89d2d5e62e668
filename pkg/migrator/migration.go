package migrator

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/pkg/errors"
	"github.com/pseudomuto/cirrus/pkg/consts"
	"github.com/pseudomuto/cirrus/pkg/parser"
)

// Migration is a single SQL migration discovered in a location. The identity
// fields are set during discovery; everything else is populated by Load.
type Migration struct {
	// ID is the file name without its extension, e.g. "0001-create-users".
	ID string

	// Path is the full path of the forward file, including the location.
	Path string

	// SourceDir is the location the migration was discovered in.
	SourceDir string

	// IsPostApplyHook is true for migrations whose file name starts with
	// "post-apply". They run after every other migration.
	IsPostApplyHook bool

	// UseTransactions reflects the transactional directive. Defaults to true.
	UseTransactions bool

	// Description is the free text of the leading comment block.
	Description string

	// Directives holds every recognized directive in the leading comment block.
	Directives parser.Directives

	// DependsOn lists the dependency ids exactly as declared.
	DependsOn []string

	// Steps are the executable step groups in order.
	Steps []*StepGroup

	source  Source
	index   map[string]*Migration
	parser  *parser.Parser
	pairing PairingPolicy

	mu     sync.Mutex
	loaded bool
	deps   []*Migration
}

// RollbackPath returns the path of the rollback file for this migration.
func (m *Migration) RollbackPath() string {
	return RollbackPath(m.Path)
}

// Dependencies returns the migrations this one depends on. It is empty until
// the migration has been loaded.
func (m *Migration) Dependencies() []*Migration {
	m.mu.Lock()
	defer m.mu.Unlock()

	return m.deps
}

// Loaded reports whether Load has completed successfully.
func (m *Migration) Loaded() bool {
	m.mu.Lock()
	defer m.mu.Unlock()

	return m.loaded
}

func (m *Migration) String() string {
	return m.ID
}

// Load fetches and parses the migration and its rollback, builds the steps and
// resolves dependencies against the discovery batch. Calling Load again after
// it succeeds does nothing. On failure the migration is left unloaded.
//
// Errors:
//   - *ValidationError when the path is not a .sql file, the migration was
//     not built by Discover, the transactional directive is not true/false,
//     or strict pairing rejects the statements
//   - *NotFoundError when the forward file is missing
//   - *BadMigrationError when a dependency is not in the discovery batch
func (m *Migration) Load(ctx context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.loaded {
		return nil
	}

	if !strings.HasSuffix(m.Path, consts.MigrationExt) {
		return &ValidationError{
			Path:   m.Path,
			Reason: fmt.Sprintf("migration files must end in %s", consts.MigrationExt),
		}
	}

	if m.source == nil || m.parser == nil {
		return &ValidationError{Path: m.Path, Reason: "migration was not created by Discover"}
	}

	forwardText, err := m.source.ForwardText(ctx)
	if err != nil {
		return err
	}

	rollbackText, err := m.source.RollbackText(ctx)
	if err != nil {
		return err
	}

	forward, err := m.parser.Parse(forwardText)
	if err != nil {
		return errors.Wrapf(err, "failed to parse migration: %s", m.Path)
	}

	var rollback []string
	if rollbackText != nil {
		res, err := m.parser.Parse(*rollbackText)
		if err != nil {
			return errors.Wrapf(err, "failed to parse rollback: %s", m.RollbackPath())
		}
		rollback = res.Statements
	}

	useTx, err := forward.Directives.Transactional()
	if err != nil {
		return &ValidationError{Path: m.Path, Reason: err.Error(), Err: err}
	}

	if pairingMismatch(m.pairing, forward.Statements, rollback) {
		return &ValidationError{
			Path: m.Path,
			Reason: fmt.Sprintf("%d forward statements but %d rollback statements",
				len(forward.Statements), len(rollback)),
		}
	}

	dependsOn := forward.Directives.Depends()
	deps, err := ResolveDependencies(m, dependsOn, m.index)
	if err != nil {
		return err
	}

	m.UseTransactions = useTx
	m.Description = forward.Description
	m.Directives = forward.Directives
	m.DependsOn = dependsOn
	m.Steps = CollectSteps(forward.Statements, rollback, useTx)
	m.deps = deps
	m.loaded = true

	return nil
}
