package reader

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"

	cli "github.com/urfave/cli/v3"
	"go.uber.org/multierr"
	"go.uber.org/zap"

	"bookview/book"
	"bookview/hosts"
	"bookview/session"
	"bookview/state"
)

// Run is the action of the read command.
func Run(ctx context.Context, cmd *cli.Command) (err error) {
	if err := ctx.Err(); err != nil {
		return err
	}

	env := state.EnvFromContext(ctx)
	log := env.Log.Named("read")

	src := cmd.Args().Get(0)
	if len(src) == 0 {
		return errors.New("no input source has been specified")
	}
	if src, err = filepath.Abs(src); err != nil {
		return err
	}
	if cmd.Args().Len() > 1 {
		log.Warn("Malformed command line, too many sources", zap.Strings("ignoring", cmd.Args().Slice()[1:]))
	}

	source, err := hosts.OpenSource(src, log)
	if err != nil {
		return err
	}
	defer func() {
		err = multierr.Append(err, source.Close())
	}()

	store, id, err := session.Open(env.Cfg.Session.Path, src, log)
	if err != nil {
		return err
	}
	defer func() {
		err = multierr.Append(err, store.Close())
	}()
	env.SessionID = id
	if cmd.Bool("fresh") {
		if err := store.SetBookMode(false); err != nil {
			return err
		}
	}

	start := int(cmd.Int("chapter")) - 1
	if start < 0 || start >= source.Len() {
		return fmt.Errorf("chapter %d out of range, source has %d", start+1, source.Len())
	}

	opts, settings := book.FromConfig(env.Cfg)
	log.Info("Reading", zap.String("source", src), zap.String("name", source.Name()),
		zap.Int("chapters", source.Len()), zap.String("session", id))

	r := New(ctx, source, hosts.NewRegistry(log), store, Config{
		Options:   opts,
		Settings:  settings,
		FrameRate: env.Cfg.Animation.FrameRate,
		Viewport:  book.ViewportFromConfig(env.Cfg),
	}, log)
	return r.Run(start)
}
