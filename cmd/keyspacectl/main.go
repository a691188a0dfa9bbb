// Command keyspacectl inspects the keys of one prefix on a Redis-compatible server.
//
//	keyspacectl [-config dir] [-prefix p] scan [pattern]
//	keyspacectl [-config dir] [-prefix p] get|ttl|type key
//	keyspacectl [-config dir] [-prefix p] del key...
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"go.uber.org/zap"

	"github.com/eternalApril/keyspace/internal/codec"
	"github.com/eternalApril/keyspace/internal/config"
	"github.com/eternalApril/keyspace/internal/executor/redisexec"
	"github.com/eternalApril/keyspace/internal/keyspace"
	"github.com/eternalApril/keyspace/internal/logger"
)

func main() {
	configPath := flag.String("config", ".", "directory holding config.yaml")
	prefix := flag.String("prefix", "", "key prefix of the space")
	flag.Parse()

	if err := run(*configPath, *prefix, flag.Args()); err != nil {
		fmt.Fprintln(os.Stderr, "keyspacectl:", err)
		os.Exit(1)
	}
}

func run(configPath, prefix string, args []string) error {
	if len(args) == 0 {
		return errors.New("missing command, want scan, get, ttl, type or del")
	}

	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}
	log, err := logger.FromConfig(cfg.Log)
	if err != nil {
		return err
	}
	defer log.Sync() //nolint:errcheck

	client := redisexec.NewClient(cfg.Redis)
	defer client.Close() //nolint:errcheck

	opts := []keyspace.Option{keyspace.WithLogger(log)}
	if cfg.Redis.LegacyTTL {
		opts = append(opts, keyspace.WithLegacyTTL())
	}
	space, err := keyspace.NewSpace(redisexec.New(client), codec.String, prefix, codec.String, opts...)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	log.Debug("running", zap.String("command", args[0]), zap.String("addr", cfg.Redis.Addr))

	switch cmd, rest := args[0], args[1:]; cmd {
	case "scan":
		pattern := prefix + "*"
		if len(rest) > 0 {
			pattern = prefix + rest[0]
		}
		for name, err := range space.KeyScanner(codec.String, keyspace.Match(pattern)).All(ctx) {
			if err != nil {
				return err
			}
			fmt.Println(name)
		}
		return nil

	case "get":
		if len(rest) != 1 {
			return errors.New("get takes one key")
		}
		k, err := keyspace.NewSimple(space, rest[0], codec.Bytes)
		if err != nil {
			return err
		}
		v, found, err := k.Get(ctx)
		if err != nil {
			return err
		}
		if !found {
			fmt.Println("(nil)")
			return nil
		}
		fmt.Printf("%s\n", v)
		return nil

	case "ttl", "type":
		if len(rest) != 1 {
			return fmt.Errorf("%s takes one key", cmd)
		}
		k, err := space.Key(rest[0])
		if err != nil {
			return err
		}
		if cmd == "type" {
			kind, err := k.Type(ctx)
			if err != nil {
				return err
			}
			fmt.Println(kind)
			return nil
		}
		ttl, err := k.PTTL(ctx)
		if err != nil {
			return err
		}
		fmt.Println(ttl)
		return nil

	case "del":
		n, err := space.Del(ctx, rest...)
		if err != nil {
			return err
		}
		fmt.Println(n)
		return nil
	}

	return fmt.Errorf("unknown command %q", args[0])
}
