package export

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	cli "github.com/urfave/cli/v3"
	"go.uber.org/multierr"
	"go.uber.org/zap"

	"bookview/config"
	"bookview/hosts"
	"bookview/state"
)

// Run is the action of the export command.
func Run(ctx context.Context, cmd *cli.Command) (err error) {
	if err := ctx.Err(); err != nil {
		return err
	}

	env := state.EnvFromContext(ctx)
	log := env.Log.Named("export")

	src := cmd.Args().Get(0)
	if len(src) == 0 {
		return errors.New("no input source has been specified")
	}
	if src, err = filepath.Abs(src); err != nil {
		return err
	}

	dst := cmd.Args().Get(1)
	if len(dst) == 0 {
		if dst, err = os.Getwd(); err != nil {
			return fmt.Errorf("unable to get working directory: %w", err)
		}
	}
	if dst, err = filepath.Abs(dst); err != nil {
		return err
	}
	if cmd.Args().Len() > 2 {
		log.Warn("Malformed command line, too many destinations", zap.Strings("ignoring", cmd.Args().Slice()[2:]))
	}

	format := env.Cfg.Export.Format
	if to := cmd.String("to"); len(to) > 0 {
		f, err := config.ParseExportFmt(to)
		if err != nil {
			log.Warn("Unknown export format requested, using configured one", zap.Error(err), zap.Stringer("format", format))
		} else {
			format = f
		}
	}

	source, err := hosts.OpenSource(src, log)
	if err != nil {
		return err
	}
	defer func() {
		err = multierr.Append(err, source.Close())
	}()

	log.Info("Processing starting", zap.String("source", src), zap.String("destination", dst), zap.Stringer("format", format))
	defer func(start time.Time) {
		log.Info("Processing completed", zap.Duration("elapsed", time.Since(start)))
	}(time.Now())

	_, err = New(env, hosts.NewRegistry(log), format).Export(ctx, source, dst)
	return err
}
