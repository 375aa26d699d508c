package main

import (
	"fmt"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"

	log "github.com/sirupsen/logrus"
	"github.com/urfave/cli/v2"

	"github.com/tokenstd/nip13d/internal/config"
	"github.com/tokenstd/nip13d/internal/core/application"
)

var Version string

func main() {
	app := cli.NewApp()
	app.Version = Version
	app.Name = "nip13d"
	app.Usage = "security token composition daemon"
	app.Flags = config.Flags
	app.Commands = append(
		app.Commands,
		&createCommand,
		&executeCommand,
		&canExecuteCommand,
		&announceCommand,
		&trackCommand,
		&untrackCommand,
		&tokensCommand,
		&infoCommand,
		&watchCommand,
	)

	if err := app.Run(os.Args); err != nil {
		fmt.Println(fmt.Errorf("error: %v", err))
		os.Exit(1)
	}
}

var (
	createCommand = cli.Command{
		Name:  "create",
		Usage: "Issue a new token and start tracking it",
		Flags: []cli.Flag{
			actorFlag, nameFlag, sourceFlag, operatorsFlag, supplyFlag,
			divisibilityFlag, metadataFlag, optionFlag,
		},
		Action: func(ctx *cli.Context) error {
			return create(ctx)
		},
	}
	executeCommand = cli.Command{
		Name:      "execute",
		Usage:     "Compose the contract of a lifecycle command on a tracked token",
		ArgsUsage: "<command>",
		Flags:     []cli.Flag{tokenFlag, actorFlag, optionFlag},
		Action: func(ctx *cli.Context) error {
			return execute(ctx)
		},
	}
	canExecuteCommand = cli.Command{
		Name:      "can-execute",
		Usage:     "Check whether a command could run, without composing anything",
		ArgsUsage: "<command>",
		Flags:     []cli.Flag{tokenFlag, actorFlag, optionFlag},
		Action: func(ctx *cli.Context) error {
			return canExecute(ctx)
		},
	}
	announceCommand = cli.Command{
		Name:  "announce",
		Usage: "Submit a composed contract to the network",
		Flags: []cli.Flag{contractIdFlag},
		Action: func(ctx *cli.Context) error {
			return announce(ctx)
		},
	}
	trackCommand = cli.Command{
		Name:  "track",
		Usage: "Register an externally issued token for tracking",
		Flags: []cli.Flag{tokenFlag, nameFlag, sourceFlag, targetKeyFlag, accountIndexFlag},
		Action: func(ctx *cli.Context) error {
			return track(ctx)
		},
	}
	untrackCommand = cli.Command{
		Name:  "untrack",
		Usage: "Stop tracking a token",
		Flags: []cli.Flag{tokenFlag},
		Action: func(ctx *cli.Context) error {
			return untrack(ctx)
		},
	}
	tokensCommand = cli.Command{
		Name:  "tokens",
		Usage: "List tracked tokens",
		Action: func(ctx *cli.Context) error {
			return listTokens(ctx)
		},
	}
	infoCommand = cli.Command{
		Name:  "info",
		Usage: "Show everything known about a tracked token",
		Flags: []cli.Flag{tokenFlag},
		Action: func(ctx *cli.Context) error {
			return tokenInfo(ctx)
		},
	}
	watchCommand = cli.Command{
		Name:  "watch",
		Usage: "Run the daemon, refreshing tracked token snapshots until stopped",
		Action: func(ctx *cli.Context) error {
			return watch(ctx)
		},
	}
)

func create(ctx *cli.Context) error {
	svc, cfg, err := appService(ctx)
	if err != nil {
		return err
	}
	defer svc.Stop()

	actor, err := actorAccount(ctx, cfg)
	if err != nil {
		return err
	}

	opts, err := commandOptions(ctx)
	if err != nil {
		return err
	}
	if name := ctx.String(nameFlagName); name != "" {
		opts = opts.With(application.CommandOption{
			Name: application.OptionName, Value: name,
		})
	}
	if source := ctx.String(sourceFlagName); source != "" {
		opts = opts.With(application.CommandOption{
			Name: application.OptionSource, Value: source,
		})
	}
	if operators := ctx.String(operatorsFlagName); operators != "" {
		opts = opts.With(application.CommandOption{
			Name: application.OptionOperators, Value: operators,
		})
	}
	if ctx.IsSet(supplyFlagName) {
		opts = opts.With(application.CommandOption{
			Name:  application.OptionSupply,
			Value: strconv.FormatUint(ctx.Uint64(supplyFlagName), 10),
		})
	}
	if ctx.IsSet(divisibilityFlagName) {
		opts = opts.With(application.CommandOption{
			Name:  application.OptionDivisibility,
			Value: strconv.FormatUint(uint64(ctx.Uint(divisibilityFlagName)), 10),
		})
	}
	if metadata := ctx.StringSlice(metadataFlagName); len(metadata) > 0 {
		opts = opts.With(application.CommandOption{
			Name: application.OptionMetadata, Value: strings.Join(metadata, ","),
		})
	}

	result, execErr := svc.CreateToken(ctx.Context, actor, opts)
	if execErr != nil {
		return execErr
	}
	return printResult(result)
}

func execute(ctx *cli.Context) error {
	commandName := ctx.Args().First()
	if commandName == "" {
		return fmt.Errorf("missing command name, usage: execute <command>")
	}
	kind, kindErr := application.CommandKindFromName(commandName)
	if kindErr != nil {
		return kindErr
	}

	svc, cfg, err := appService(ctx)
	if err != nil {
		return err
	}
	defer svc.Stop()

	actor, err := actorAccount(ctx, cfg)
	if err != nil {
		return err
	}
	opts, err := commandOptions(ctx)
	if err != nil {
		return err
	}

	result, execErr := svc.Execute(ctx.Context, kind, ctx.String(tokenFlagName), actor, opts)
	if execErr != nil {
		return execErr
	}
	return printResult(result)
}

func canExecute(ctx *cli.Context) error {
	commandName := ctx.Args().First()
	if commandName == "" {
		return fmt.Errorf("missing command name, usage: can-execute <command>")
	}
	kind, kindErr := application.CommandKindFromName(commandName)
	if kindErr != nil {
		return kindErr
	}

	svc, cfg, err := appService(ctx)
	if err != nil {
		return err
	}
	defer svc.Stop()

	actor, err := actorAccount(ctx, cfg)
	if err != nil {
		return err
	}
	opts, err := commandOptions(ctx)
	if err != nil {
		return err
	}

	allowance, execErr := svc.CanExecute(ctx.Context, kind, ctx.String(tokenFlagName), actor, opts)
	if execErr != nil {
		return execErr
	}
	return printJSON(map[string]any{
		"allowed": allowance.Allowed,
		"reason":  allowance.Reason,
	})
}

func announce(ctx *cli.Context) error {
	svc, _, err := appService(ctx)
	if err != nil {
		return err
	}
	defer svc.Stop()

	hash, announceErr := svc.Announce(ctx.Context, ctx.String(contractIdFlagName))
	if announceErr != nil {
		return announceErr
	}
	return printJSON(map[string]any{
		"hash": hash,
	})
}

func track(ctx *cli.Context) error {
	svc, _, err := appService(ctx)
	if err != nil {
		return err
	}
	defer svc.Stop()

	if trackErr := svc.TrackToken(
		ctx.Context,
		ctx.String(tokenFlagName), ctx.String(nameFlagName), ctx.String(sourceFlagName),
		ctx.String(targetKeyFlagName), uint32(ctx.Uint(accountIndexFlagName)),
	); trackErr != nil {
		return trackErr
	}
	return printJSON(map[string]any{
		"token_id": ctx.String(tokenFlagName),
		"tracked":  true,
	})
}

func untrack(ctx *cli.Context) error {
	svc, _, err := appService(ctx)
	if err != nil {
		return err
	}
	defer svc.Stop()

	if untrackErr := svc.UntrackToken(ctx.Context, ctx.String(tokenFlagName)); untrackErr != nil {
		return untrackErr
	}
	return printJSON(map[string]any{
		"token_id": ctx.String(tokenFlagName),
		"tracked":  false,
	})
}

func listTokens(ctx *cli.Context) error {
	svc, _, err := appService(ctx)
	if err != nil {
		return err
	}
	defer svc.Stop()

	tokens, listErr := svc.ListTokens(ctx.Context)
	if listErr != nil {
		return listErr
	}
	return printJSON(tokens)
}

func tokenInfo(ctx *cli.Context) error {
	svc, _, err := appService(ctx)
	if err != nil {
		return err
	}
	defer svc.Stop()

	info, infoErr := svc.GetTokenInfo(ctx.Context, ctx.String(tokenFlagName))
	if infoErr != nil {
		return infoErr
	}
	return printJSON(info)
}

func watch(ctx *cli.Context) error {
	svc, cfg, err := appService(ctx)
	if err != nil {
		return err
	}

	log.Infof("nip13d config: %s", cfg)

	log.Info("starting service...")
	if err := svc.Start(); err != nil {
		return fmt.Errorf("failed to start service: %s", err)
	}

	log.RegisterExitHandler(svc.Stop)

	sigChan := make(chan os.Signal, 1)
	signal.Notify(
		sigChan, syscall.SIGTERM, syscall.SIGINT, syscall.SIGQUIT, syscall.SIGHUP, os.Interrupt,
	)
	<-sigChan

	log.Info("shutting down service...")
	log.Exit(0)
	return nil
}
