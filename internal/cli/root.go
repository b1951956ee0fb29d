// Package cli implements the defmctl command tree. Each subcommand plays the
// role of a console page: it restores the session, calls the backend through
// the API client and prints the result.
package cli

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/rs/zerolog"
	"github.com/sethvargo/go-envconfig"
	"github.com/spf13/cobra"

	"github.com/defm/console/internal/core/domain"
	"github.com/defm/console/internal/core/ports"
	"github.com/defm/console/internal/core/service"
	"github.com/defm/console/internal/infrastructure/apiclient"
	"github.com/defm/console/internal/infrastructure/config"
	"github.com/defm/console/pkg/logger"
)

// Options lets callers replace the process environment, mostly for tests.
type Options struct {
	Version string
	Stdin   io.Reader
	Stdout  io.Writer
	Stderr  io.Writer
	// Lookuper replaces the environment and skips .env loading when set.
	Lookuper envconfig.Lookuper
	// Store replaces the store selected by DEFM_STORE when set.
	Store ports.KeyValueStore
	// Args replaces os.Args[1:] when non-nil.
	Args []string
}

// errNotLoggedIn is returned by commands that need a session when none was
// restored.
var errNotLoggedIn = &domain.APIError{
	Kind:    domain.KindUnauthorized,
	Message: "not logged in",
}

type app struct {
	opts Options

	// flags
	output  string
	apiURL  string
	profile string
	driver  string

	stdin *bufio.Reader

	cfg     *config.Config
	log     zerolog.Logger
	kv      ports.KeyValueStore
	store   ports.KeyValueStore // opened by connect, closed by close
	client  *apiclient.Client
	session *service.SessionService
}

// NewRootCommand builds the defmctl command tree. Stores its commands open
// are closed by Execute, not by the tree itself.
func NewRootCommand(opts Options) *cobra.Command {
	root, _ := newRoot(opts)
	return root
}

func newRoot(opts Options) (*cobra.Command, *app) {
	if opts.Stdin == nil {
		opts.Stdin = os.Stdin
	}
	if opts.Stdout == nil {
		opts.Stdout = os.Stdout
	}
	if opts.Stderr == nil {
		opts.Stderr = os.Stderr
	}
	if opts.Version == "" {
		opts.Version = "dev"
	}
	a := &app{opts: opts}

	root := &cobra.Command{
		Use:           "defmctl",
		Short:         "Console for the Digital Evidence Framework Management backend",
		Version:       opts.Version,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return a.configure(cmd.Context())
		},
	}
	root.SetIn(opts.Stdin)
	root.SetOut(opts.Stdout)
	root.SetErr(opts.Stderr)
	if opts.Args != nil {
		root.SetArgs(opts.Args)
	}

	pf := root.PersistentFlags()
	pf.StringVarP(&a.output, "output", "o", "yaml", "output format: yaml or json")
	pf.StringVar(&a.apiURL, "api-url", "", "backend base address (overrides DEFM_API_URL)")
	pf.StringVar(&a.profile, "profile", "", "session profile (overrides DEFM_PROFILE)")
	pf.StringVar(&a.driver, "store", "", "token store: memory, sqlite, redis or mongo (overrides DEFM_STORE)")

	root.AddCommand(
		newLoginCommand(a),
		newLogoutCommand(a),
		newWhoamiCommand(a),
		newHealthCommand(a),
		newDashboardCommand(a),
		newCasesCommand(a),
		newEvidenceCommand(a),
		newCustodyCommand(a),
		newReportsCommand(a),
		newUsersCommand(a),
		newAuditCommand(a),
		newStatusServerCommand(a),
		newDevBackendCommand(a),
	)
	return root, a
}

// Execute runs the command tree and prints a classified message on failure.
// It returns the process exit code.
func Execute(ctx context.Context, opts Options) int {
	root, a := newRoot(opts)
	if err := run(ctx, root, a); err != nil {
		fmt.Fprintln(root.ErrOrStderr(), "Error:", describe(err))
		return 1
	}
	return 0
}

func describe(err error) string {
	if errors.Is(err, errNotLoggedIn) {
		return "Not logged in. Run `defmctl login` first."
	}
	msg := domain.UserMessage(err)
	if domain.KindOf(err) == domain.KindUnauthorized {
		msg += " Run `defmctl login`."
	}
	return msg
}

func (a *app) configure(ctx context.Context) error {
	var (
		cfg *config.Config
		err error
	)
	if a.opts.Lookuper != nil {
		cfg, err = config.LoadFrom(ctx, a.opts.Lookuper)
	} else {
		cfg, err = config.Load(ctx)
	}
	if err != nil {
		return err
	}
	if a.apiURL != "" {
		cfg.APIURL = a.apiURL
	}
	if a.profile != "" {
		cfg.Store.Profile = a.profile
	}
	if a.driver != "" {
		cfg.Store.Driver = a.driver
	}
	if a.output != "yaml" && a.output != "json" {
		return fmt.Errorf("unknown output format %q", a.output)
	}
	a.cfg = cfg
	a.log = logger.Init(logger.Options{
		Level:  cfg.LogLevel,
		Pretty: cfg.LogPretty,
		Output: a.opts.Stderr,
	})
	return nil
}

// connect opens the token store, builds the API client and restores the
// persisted session.
func (a *app) connect(ctx context.Context) error {
	if a.session != nil {
		return nil
	}
	store := a.opts.Store
	if store == nil {
		s, err := storeOpener(ctx, a.cfg)
		if err != nil {
			return err
		}
		a.store = s
		store = s
	}
	a.kv = store

	client, err := apiclient.New(apiclient.Options{
		BaseURL:   a.cfg.APIURL,
		Timeout:   a.cfg.Timeout,
		UserAgent: apiclient.DefaultUserAgent + "/" + a.opts.Version,
		Logger:    logger.For("apiclient"),
	}, store)
	if err != nil {
		return err
	}
	a.client = client
	a.session = service.NewSessionService(store, apiclient.NewGateway(client),
		logger.For("session"))

	if err := a.session.Initialize(ctx); err != nil {
		a.log.Warn().Err(err).Msg("session restore failed")
	}
	return nil
}

// authed is connect plus the guard a protected page applies.
func (a *app) authed(ctx context.Context) error {
	if err := a.connect(ctx); err != nil {
		return err
	}
	if !a.session.Authenticated() {
		return errNotLoggedIn
	}
	return nil
}

// run executes root and releases the store whether or not the command failed.
func run(ctx context.Context, root *cobra.Command, a *app) error {
	defer a.close()
	return root.ExecuteContext(ctx)
}

// close releases a store opened by connect. Injected stores belong to the
// caller.
func (a *app) close() {
	if a.store == nil {
		return
	}
	if err := a.store.Close(); err != nil {
		a.log.Warn().Err(err).Msg("close store")
	}
	a.store = nil
}
