package main

import (
	"github.com/urfave/cli/v2"
)

const (
	actorFlagName        = "actor"
	tokenFlagName        = "token"
	nameFlagName         = "name"
	sourceFlagName       = "source"
	operatorsFlagName    = "operators"
	supplyFlagName       = "supply"
	divisibilityFlagName = "divisibility"
	metadataFlagName     = "metadata"
	optionFlagName       = "opt"
	contractIdFlagName   = "id"
	targetKeyFlagName    = "target-key"
	accountIndexFlagName = "account-index"
)

var (
	actorFlag = &cli.StringFlag{
		Name:     actorFlagName,
		Usage:    "public key of the account running the command",
		Required: true,
	}
	tokenFlag = &cli.StringFlag{
		Name:     tokenFlagName,
		Usage:    "id of the token",
		Required: true,
	}
	nameFlag = &cli.StringFlag{
		Name:  nameFlagName,
		Usage: "dotted token name, e.g. reg.main.bond2027",
	}
	sourceFlag = &cli.StringFlag{
		Name:  sourceFlagName,
		Usage: "generation hash of the network the token lives on",
	}
	operatorsFlag = &cli.StringFlag{
		Name:  operatorsFlagName,
		Usage: "comma-separated operator addresses",
	}
	supplyFlag = &cli.Uint64Flag{
		Name:  supplyFlagName,
		Usage: "initial token supply",
	}
	divisibilityFlag = &cli.UintFlag{
		Name:  divisibilityFlagName,
		Usage: "token divisibility",
	}
	metadataFlag = &cli.StringSliceFlag{
		Name:    metadataFlagName,
		Aliases: []string{"m"},
		Usage:   "metadata to attach to the token, in key=value form",
	}
	optionFlag = &cli.StringSliceFlag{
		Name:    optionFlagName,
		Aliases: []string{"o"},
		Usage:   "command option in name=value form, repeatable",
	}
	contractIdFlag = &cli.StringFlag{
		Name:     contractIdFlagName,
		Usage:    "id of the contract to announce",
		Required: true,
	}
	targetKeyFlag = &cli.StringFlag{
		Name:     targetKeyFlagName,
		Usage:    "public key of the token's target account",
		Required: true,
	}
	accountIndexFlag = &cli.UintFlag{
		Name:  accountIndexFlagName,
		Usage: "derivation account index reserved for the token",
	}
)
