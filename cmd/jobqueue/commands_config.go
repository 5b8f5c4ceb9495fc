package main

import (
	"fmt"
	"strconv"

	"oss.nandlabs.io/taskqueue/cli"
	"oss.nandlabs.io/taskqueue/internal/jobs"
)

func newConfigCommand() *cli.Command {
	cmd := cli.NewCommand("config", "view or change config.json's recognized keys", version, nil)
	cmd.AddSubCommand(cli.NewCommand("set", "set K V: set a recognized config key to a positive number", version, runConfigSet))
	cmd.AddSubCommand(cli.NewCommand("get", "get K: print a config key's current value", version, runConfigGet))
	cmd.AddSubCommand(cli.NewCommand("list", "list every recognized config key with its current or default value", version, runConfigList))
	return cmd
}

func runConfigSet(ctx *cli.Context) error {
	if len(ctx.Args) < 2 {
		return die(&jobs.ValidationError{Field: "args", Reason: "config set requires K and V arguments"})
	}
	key, value := ctx.Args[0], ctx.Args[1]
	if !recognizedConfigKeys[key] {
		return die(&jobs.ValidationError{Field: key, Reason: "unrecognized config key"})
	}
	n, err := strconv.ParseFloat(value, 64)
	if err != nil || n <= 0 {
		return die(&jobs.ValidationError{Field: key, Reason: "value must be a positive number"})
	}

	dir := dataDir()
	cfg, err := loadJSONConfig(dir)
	if err != nil {
		return die(err)
	}
	cfg.Put(key, value)
	if err := saveJSONConfig(dir, cfg); err != nil {
		return die(err)
	}
	fmt.Printf("%s = %s\n", key, value)
	return nil
}

func runConfigGet(ctx *cli.Context) error {
	if len(ctx.Args) < 1 {
		return die(&jobs.ValidationError{Field: "args", Reason: "config get requires a K argument"})
	}
	key := ctx.Args[0]
	if !recognizedConfigKeys[key] {
		return die(&jobs.ValidationError{Field: key, Reason: "unrecognized config key"})
	}

	dir := dataDir()
	cfg, err := loadJSONConfig(dir)
	if err != nil {
		return die(err)
	}
	fmt.Println(cfg.Get(key, defaultFor(key)))
	return nil
}

func runConfigList(ctx *cli.Context) error {
	dir := dataDir()
	cfg, err := loadJSONConfig(dir)
	if err != nil {
		return die(err)
	}
	for key := range recognizedConfigKeys {
		fmt.Printf("%s = %s\n", key, cfg.Get(key, defaultFor(key)))
	}
	return nil
}

func defaultFor(key string) string {
	switch key {
	case "max-retries":
		return strconv.Itoa(jobs.DefaultMaxRetries)
	case "backoff-base":
		return "2"
	default:
		return ""
	}
}
