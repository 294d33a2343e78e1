package main

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/okian/skillmatrix/internal/adapters/http/client"
	"github.com/okian/skillmatrix/internal/app"
	"github.com/okian/skillmatrix/internal/config"
	"github.com/okian/skillmatrix/internal/domain/model"
	"github.com/okian/skillmatrix/pkg/logger"
)

type rootOptions struct {
	ConfigPath string
	BaseURL    string
	Role       string
	User       int
	Employee   int
	LogLevel   string
}

// env is what every subcommand works with.
type env struct {
	cfg     *config.Config
	session *app.Session
	log     logger.Logger
	out     io.Writer
}

func newRootCmd(out, errOut io.Writer) *cobra.Command {
	var opts rootOptions

	cmd := &cobra.Command{
		Use:           "skillmatrix",
		Short:         "Skill assessment client for the HR backend",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	cmd.SetOut(out)
	cmd.SetErr(errOut)

	pf := cmd.PersistentFlags()
	pf.StringVar(&opts.ConfigPath, "config", "", "YAML config file (default $SKILLMATRIX_CONFIG)")
	pf.StringVar(&opts.BaseURL, "base-url", "", "backend root URL, overrides base_url")
	pf.StringVar(&opts.Role, "role", string(model.RoleEmployee), "role of the signed-in account: employee, manager, hr or admin")
	pf.IntVar(&opts.User, "user", 0, "id of the signed-in account")
	pf.IntVar(&opts.Employee, "employee", 0, "id of the employee a manager or HR viewer is looking at")
	pf.StringVar(&opts.LogLevel, "log-level", "", "log level, overrides log_level")

	cmd.AddCommand(
		newProfileCmd(&opts),
		newRateCmd(&opts),
		newAssessCmd(&opts),
		newCompareCmd(&opts),
		newSearchCmd(&opts),
		newSkillsCmd(&opts),
		newUsersCmd(&opts),
		newStatsCmd(&opts),
		newExportCmd(&opts),
		newServeCmd(&opts),
	)
	return cmd
}

// setup loads the configuration, initialises logging and builds a started session.
func setup(ctx context.Context, cmd *cobra.Command, opts *rootOptions) (*env, error) {
	cfg, err := config.Load(ctx, config.WithFile(opts.ConfigPath))
	if err != nil {
		return nil, err
	}
	if opts.BaseURL != "" {
		cfg.BaseURL = strings.TrimSpace(opts.BaseURL)
		if err := cfg.Validate(); err != nil {
			return nil, err
		}
	}
	if opts.LogLevel != "" {
		cfg.LogLevel = opts.LogLevel
	}

	if err := logger.Init(logger.WithWriter(cmd.ErrOrStderr()), logger.WithFormat(cfg.LogFormat)); err != nil {
		return nil, fmt.Errorf("init logging: %w", err)
	}
	log := logger.Named("skillmatrix")
	if err := logger.SetLevelString(cfg.LogLevel); err != nil {
		log.Warn(ctx, "invalid log_level; falling back to info", logger.String("log_level", cfg.LogLevel), logger.Error(err))
		_ = logger.SetLevelString("info")
	}

	role, err := model.ParseRole(opts.Role)
	if err != nil {
		return nil, err
	}

	api, err := client.New(cfg.BaseURL,
		client.WithTimeout(cfg.RequestTimeout()),
		client.WithLogger(log.Named("client")),
	)
	if err != nil {
		return nil, err
	}

	s := app.New(api,
		app.WithConfig(cfg),
		app.WithRole(role),
		app.WithUser(opts.User),
		app.WithEmployee(opts.Employee),
		app.WithLogger(log.Named("session")),
	)
	if err := s.Start(ctx); err != nil {
		return nil, err
	}
	return &env{cfg: cfg, session: s, log: log, out: cmd.OutOrStdout()}, nil
}

// run executes fn against a fresh session and prints the resulting view,
// including any notification fn raised, before returning fn's error.
func run(cmd *cobra.Command, opts *rootOptions, fn func(ctx context.Context, rt *env) error) error {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	rt, err := setup(ctx, cmd, opts)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := rt.session.Close(context.WithoutCancel(ctx)); cerr != nil {
			rt.log.Warn(ctx, "session close failed", logger.Error(cerr))
		}
	}()

	ferr := fn(ctx, rt)
	if werr := rt.session.Document().WriteText(rt.out); werr != nil && ferr == nil {
		ferr = werr
	}
	return ferr
}
