package main

import (
	"encoding/json"
	"fmt"
	"strings"

	log "github.com/sirupsen/logrus"
	"github.com/urfave/cli/v2"

	"github.com/tokenstd/nip13d/internal/config"
	"github.com/tokenstd/nip13d/internal/core/application"
	"github.com/tokenstd/nip13d/pkg/symbol"
)

// appService loads and validates the config, then builds the application
// service. Construction dials the node, so command kinds and arguments are
// checked before calling this.
func appService(ctx *cli.Context) (application.Service, *config.Config, error) {
	cfg, err := config.LoadConfig(ctx)
	if err != nil {
		return nil, nil, fmt.Errorf("invalid config: %s", err)
	}

	log.SetLevel(log.Level(cfg.LogLevel))

	if err := cfg.Validate(); err != nil {
		return nil, nil, fmt.Errorf("invalid config: %s", err)
	}

	svc, err := cfg.AppService()
	if err != nil {
		return nil, nil, fmt.Errorf("failed to create service: %s", err)
	}
	return svc, cfg, nil
}

func actorAccount(ctx *cli.Context, cfg *config.Config) (symbol.PublicAccount, error) {
	return symbol.PublicAccountFromKey(ctx.String(actorFlagName), cfg.NetworkType())
}

func commandOptions(ctx *cli.Context) (application.Options, error) {
	opts := make([]application.CommandOption, 0)
	for _, raw := range ctx.StringSlice(optionFlagName) {
		name, value, ok := strings.Cut(raw, "=")
		name = strings.TrimSpace(name)
		if !ok || name == "" {
			return application.Options{}, fmt.Errorf(
				"invalid option %q, expected name=value", raw,
			)
		}
		opts = append(opts, application.CommandOption{
			Name: name, Value: strings.TrimSpace(value),
		})
	}
	return application.NewOptions(opts...), nil
}

func printResult(result *application.ExecutionResult) error {
	cosigners := make([]string, 0, len(result.Cosigners))
	for _, cosigner := range result.Cosigners {
		cosigners = append(cosigners, cosigner.PublicKey)
	}
	return printJSON(map[string]any{
		"contract_id": result.ContractId,
		"token_id":    result.TokenId,
		"command":     result.Command,
		"uri":         result.URI,
		"hash":        result.Hash,
		"inner_count": result.InnerCount,
		"cosigners":   cosigners,
	})
}

func printJSON(resp interface{}) error {
	jsonBytes, err := json.MarshalIndent(resp, "", "\t")
	if err != nil {
		return err
	}
	fmt.Println(string(jsonBytes))
	return nil
}
