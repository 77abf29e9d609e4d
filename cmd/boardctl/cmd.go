package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/pkg/errors"

	"github.com/linesmerrill/school-board-api/board"
	"github.com/linesmerrill/school-board-api/models"
	"github.com/linesmerrill/school-board-api/schedule"
)

var (
	nowFunc = time.Now // mockable

	errHelp = errors.New("help provided")
)

type commandLine struct {
	store *board.Store
	out   io.Writer
}

func (cli *commandLine) printUsage() {
	fmt.Fprintln(cli.out, "Usage:")
	fmt.Fprintln(cli.out, "  seed [-force]               - write the default board when none is stored")
	fmt.Fprintln(cli.out, "  backup -out FILE            - write a board snapshot, - for stdout")
	fmt.Fprintln(cli.out, "  restore -in FILE            - replace the board with a snapshot")
	fmt.Fprintln(cli.out, "  show [-feed] [-lang LANG]   - print the board or what the display shows now")
}

func (cli *commandLine) run(args []string) error {
	if len(args) < 2 {
		cli.printUsage()
		return errHelp
	}

	seedCmd := flag.NewFlagSet("seed", flag.ContinueOnError)
	seedForce := seedCmd.Bool("force", false, "Overwrite the stored board with the default board.")

	backupCmd := flag.NewFlagSet("backup", flag.ContinueOnError)
	backupOut := backupCmd.String("out", "", "The snapshot file to write, - for stdout.")

	restoreCmd := flag.NewFlagSet("restore", flag.ContinueOnError)
	restoreIn := restoreCmd.String("in", "", "The snapshot file to read.")

	showCmd := flag.NewFlagSet("show", flag.ContinueOnError)
	showFeed := showCmd.Bool("feed", false, "Print the display feed instead of the stored board.")
	showLang := showCmd.String("lang", "", "The display language of the feed (tr, en).")

	for _, fs := range []*flag.FlagSet{seedCmd, backupCmd, restoreCmd, showCmd} {
		fs.SetOutput(cli.out)
	}

	ctx := context.Background()
	switch args[1] {
	case "seed":
		if err := seedCmd.Parse(args[2:]); err != nil {
			return err
		}
		return cli.seed(ctx, *seedForce)
	case "backup":
		if err := backupCmd.Parse(args[2:]); err != nil {
			return err
		}
		if *backupOut == "" {
			backupCmd.Usage()
			return errHelp
		}
		return cli.backup(ctx, *backupOut)
	case "restore":
		if err := restoreCmd.Parse(args[2:]); err != nil {
			return err
		}
		if *restoreIn == "" {
			restoreCmd.Usage()
			return errHelp
		}
		return cli.restore(ctx, *restoreIn)
	case "show":
		if err := showCmd.Parse(args[2:]); err != nil {
			return err
		}
		return cli.show(ctx, *showFeed, *showLang)
	default:
		cli.printUsage()
		return errHelp
	}
}

func (cli *commandLine) seed(ctx context.Context, force bool) error {
	if force {
		if err := cli.store.Save(ctx, models.DefaultBoard()); err != nil {
			return err
		}
		fmt.Fprintln(cli.out, "default board written")
		return nil
	}
	// Load writes the default board when the backend has none
	data := cli.store.Load(ctx)
	fmt.Fprintf(cli.out, "board %s ready on the %s backend\n", board.Revision(data)[:12], cli.store.Kind())
	return nil
}

func (cli *commandLine) backup(ctx context.Context, path string) error {
	if path == "-" {
		return cli.store.Backup(ctx, cli.out)
	}
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := cli.store.Backup(ctx, f); err != nil {
		_ = f.Close()
		return err
	}
	return f.Close()
}

func (cli *commandLine) restore(ctx context.Context, path string) error {
	f, err := os.Open(path)
	if err != nil {
		return err
	}
	defer f.Close()
	if err := cli.store.Restore(ctx, f); err != nil {
		return err
	}
	fmt.Fprintf(cli.out, "board restored from %s\n", path)
	return nil
}

func (cli *commandLine) show(ctx context.Context, feed bool, lang string) error {
	data := cli.store.Load(ctx)
	var v interface{} = data
	if feed {
		tag := schedule.DefaultTag()
		if lang != "" {
			tag = schedule.MatchTag(lang)
		}
		v = schedule.BuildFeed(data, nowFunc(), schedule.Printer(tag))
	}
	enc := json.NewEncoder(cli.out)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
