// =============================================================================
// internal/cli/session.go - Per command setup of profile, logging and router
// =============================================================================
package cli

import (
	"context"
	"io"
	"os"

	"github.com/AndrewSav/mktool/internal/config"
	"github.com/AndrewSav/mktool/internal/logging"
	"github.com/AndrewSav/mktool/internal/mikrotik"
	"github.com/AndrewSav/mktool/internal/report"
	"github.com/AndrewSav/mktool/internal/vault"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
)

// session is the state one command run works with
type session struct {
	app    *app
	cmd    *cobra.Command
	config *config.Config
	log    zerolog.Logger
	report *report.Reporter
	router RouterConn

	closers []io.Closer
}

// prepare loads the profile, validates the global options and starts
// logging. Nothing is sent to the router or Vault yet.
func (a *app) prepare(cmd *cobra.Command) (*session, error) {
	cfg, err := config.New(a.globals.profile)
	if err != nil {
		return nil, err
	}
	a.globals.applyProfile(cmd, cfg)

	if err := a.globals.validate(); err != nil {
		return nil, err
	}

	log, closer, err := logging.New(a.globals.logLevel, cfg.LogFile)
	if err != nil {
		return nil, err
	}

	s := &session{
		app:     a,
		cmd:     cmd,
		config:  cfg,
		log:     log.With().Str("command", cmd.CommandPath()).Logger(),
		report:  newReporter(cmd),
		closers: []io.Closer{closer},
	}
	s.log.Info().Msg("Command started")
	return s, nil
}

// newReporter colors output only when it goes to the real terminal
func newReporter(cmd *cobra.Command) *report.Reporter {
	out, errOut := cmd.OutOrStdout(), cmd.ErrOrStderr()
	if out == io.Writer(os.Stdout) && errOut == io.Writer(os.Stderr) {
		return report.NewConsole()
	}
	return report.New(out, errOut)
}

// connect resolves credentials and opens the router session
func (s *session) connect(ctx context.Context) error {
	g := &s.app.globals

	opts := g.credentialOptions()
	opts.Vault.Logger = s.log
	user, password, err := vault.Credentials(ctx, opts)
	if err != nil {
		if body, ok := vault.Response(err); ok && g.vaultDebug {
			s.log.Debug().Str("response", body).Msg("Vault response")
			s.report.Error("%s", body)
		}
		return err
	}

	router, err := s.app.dial(mikrotik.DialOptions{
		Address:  g.address,
		User:     user,
		Password: password,
		TLS:      g.tls,
		Insecure: g.insecure,
		Logger:   s.log,
	})
	if err != nil {
		s.log.Error().Err(err).Msg("Connection failed")
		return err
	}
	s.router = router
	s.closers = append(s.closers, router)
	return nil
}

// Close ends the router session and flushes the log file
func (s *session) Close() {
	for i := len(s.closers) - 1; i >= 0; i-- {
		_ = s.closers[i].Close()
	}
}
