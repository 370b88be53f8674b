package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/mespms/clinicalforms/internal/config"
	"github.com/mespms/clinicalforms/internal/logging"
	"github.com/mespms/clinicalforms/pkg/client"
	"github.com/mespms/clinicalforms/pkg/fields"
	"github.com/mespms/clinicalforms/pkg/form"
	"github.com/mespms/clinicalforms/pkg/schema"
	"github.com/mespms/clinicalforms/pkg/session"
)

const builtinPrefix = "builtin:"

// app carries what every command needs once flags and config are read.
type app struct {
	out    io.Writer
	errOut io.Writer
	viper  *viper.Viper

	configPath  string
	sessionPath string

	cfg     *config.Config
	logger  zerolog.Logger
	session *session.Session
}

func newApp(out, errOut io.Writer) *app {
	return &app{out: out, errOut: errOut, viper: config.New(), logger: zerolog.Nop()}
}

func newRootCmd(a *app) *cobra.Command {
	root := &cobra.Command{
		Use:           "clinicalforms",
		Short:         "Check, render and fill clinical note templates",
		SilenceUsage:  true,
		SilenceErrors: false,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return a.init(cmd.Context())
		},
	}
	root.SetOut(a.out)
	root.SetErr(a.errOut)

	flags := root.PersistentFlags()
	flags.StringVar(&a.configPath, "config", "", "config file (YAML)")
	flags.StringVar(&a.sessionPath, "session-file", "", "session file (default: user config dir)")
	flags.String("log-level", "", "log level (debug, info, warn, error)")
	flags.String("log-format", "", "log format (console, json)")
	flags.String("api", "", "backend API base url")
	_ = a.viper.BindPFlag("log.level", flags.Lookup("log-level"))
	_ = a.viper.BindPFlag("log.format", flags.Lookup("log-format"))
	_ = a.viper.BindPFlag("api.base_url", flags.Lookup("api"))

	root.AddCommand(
		newCheckCmd(a),
		newRenderCmd(a),
		newFillCmd(a),
		newSchemaCmd(a),
		newListCmd(a),
		newNoteCmd(a),
		newSessionCmd(a),
	)
	return root
}

func (a *app) init(ctx context.Context) error {
	if ctx == nil {
		ctx = context.Background()
	}
	cfg, err := config.Load(a.viper, a.configPath)
	if err != nil {
		return err
	}
	a.cfg = cfg
	logger, err := logging.NewWriter(a.errOut, cfg.Log.Level, cfg.Log.Format)
	if err != nil {
		return err
	}
	a.logger = logger

	path := a.sessionPath
	if path == "" {
		dir, err := os.UserConfigDir()
		if err != nil {
			dir = "."
		}
		path = filepath.Join(dir, "clinicalforms", "session.json")
	}
	a.session = session.New(session.FileStore{Path: path})
	if err := a.session.Load(ctx); err != nil && !errors.Is(err, session.ErrNoSession) {
		a.logger.Warn().Err(err).Str("path", path).Msg("could not load session")
	}
	return nil
}

func (a *app) client() (*client.Client, error) {
	return client.New(a.cfg.API.BaseURL,
		client.WithToken(a.cfg.API.Token),
		client.WithRefreshToken(a.cfg.API.RefreshToken),
		client.WithTimeout(a.cfg.API.Timeout),
		client.WithLogger(a.logger),
	)
}

// user returns the signed-in user, or the zero user when nobody is.
func (a *app) user() session.User {
	u, err := a.session.User()
	if err != nil {
		return session.User{}
	}
	return u
}

func (a *app) formOptions() []form.Option {
	if a.cfg.CheckboxAnswered() {
		return []form.Option{form.WithCheckboxPolicy(fields.CheckboxAnswered)}
	}
	return nil
}

// loadTemplate resolves a template reference: a file path, "builtin:<file>"
// for a bundled template, or a numeric id fetched from the backend.
func (a *app) loadTemplate(ctx context.Context, ref string) (schema.Template, error) {
	ref = strings.TrimSpace(ref)
	switch {
	case strings.HasPrefix(ref, builtinPrefix):
		return schema.LoadFSFile(schema.EmbeddedFS(), strings.TrimPrefix(ref, builtinPrefix))
	case isID(ref):
		c, err := a.client()
		if err != nil {
			return schema.Template{}, err
		}
		id, _ := strconv.ParseInt(ref, 10, 64)
		return c.Templates.Get(ctx, id)
	default:
		return schema.LoadFile(ref)
	}
}

func isID(ref string) bool {
	n, err := strconv.ParseInt(ref, 10, 64)
	return err == nil && n > 0
}

func parseID(raw string) (int64, error) {
	id, err := strconv.ParseInt(strings.TrimSpace(raw), 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("invalid id %q", raw)
	}
	return id, nil
}

func readAnswers(path string) (map[string]any, error) {
	if path == "" {
		return nil, nil
	}
	var data []byte
	var err error
	if path == "-" {
		data, err = io.ReadAll(os.Stdin)
	} else {
		data, err = os.ReadFile(path)
	}
	if err != nil {
		return nil, fmt.Errorf("read answers: %w", err)
	}
	var answers map[string]any
	if err := json.Unmarshal(data, &answers); err != nil {
		return nil, fmt.Errorf("decode answers %s: %w", path, err)
	}
	return answers, nil
}

func writeOutput(out io.Writer, path string, data []byte) error {
	if path == "" || path == "-" {
		_, err := out.Write(data)
		return err
	}
	return os.WriteFile(path, data, 0o644)
}

func printJSON(out io.Writer, v any) error {
	enc := json.NewEncoder(out)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
