// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

// Command yamdbctl runs administrative tasks against the YaMDb database.
//
// # Usage
//
//	yamdbctl createsuperuser -email admin@example.com [-username admin]
//	yamdbctl recompute-ratings [-title <uuid>]
//
// The superuser password is read from YAMDB_SUPERUSER_PASSWORD so it never
// appears in the process list or shell history.
package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/taibuivan/yamdb/internal/core/rating"
	"github.com/taibuivan/yamdb/internal/users/account"
)

const passwordEnv = "YAMDB_SUPERUSER_PASSWORD"

func main() {
	if len(os.Args) < 2 {
		usage()
		os.Exit(2)
	}

	log := slog.New(slog.NewTextHandler(os.Stderr, nil)).With(slog.String("app", "yamdbctl"))

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	var err error
	switch os.Args[1] {
	case "createsuperuser":
		err = createSuperuser(ctx, log, os.Args[2:])
	case "recompute-ratings":
		err = recomputeRatings(ctx, log, os.Args[2:])
	default:
		usage()
		os.Exit(2)
	}

	if err != nil {
		log.Error("command_failed", slog.String("command", os.Args[1]), slog.Any("error", err))
		os.Exit(1)
	}
}

func usage() {
	fmt.Fprintln(os.Stderr, "usage: yamdbctl <createsuperuser|recompute-ratings> [flags]")
}

// # Commands

func createSuperuser(ctx context.Context, log *slog.Logger, args []string) error {
	flags := flag.NewFlagSet("createsuperuser", flag.ExitOnError)
	email := flags.String("email", "", "administrator email (required)")
	username := flags.String("username", "", "optional username")
	_ = flags.Parse(args)

	password := os.Getenv(passwordEnv)
	if password == "" {
		return fmt.Errorf("%s is not set", passwordEnv)
	}

	profile := account.Profile{}
	if *username != "" {
		profile.Username = username
	}

	return withDatabase(ctx, log, func(database *database) error {
		service := account.NewService(account.NewPostgresRepository(database.pool), log)

		user, err := service.CreateSuperuser(ctx, *email, password, profile)
		if err != nil {
			return err
		}

		fmt.Printf("superuser %s created (%s)\n", user.Email, user.ID)
		return nil
	})
}

func recomputeRatings(ctx context.Context, log *slog.Logger, args []string) error {
	flags := flag.NewFlagSet("recompute-ratings", flag.ExitOnError)
	titleID := flags.String("title", "", "recompute a single title instead of all")
	_ = flags.Parse(args)

	return withDatabase(ctx, log, func(database *database) error {
		aggregator := rating.NewAggregator(database.pool, log)

		if *titleID != "" {
			value, err := aggregator.Recompute(ctx, *titleID)
			if err != nil {
				return err
			}
			if value == nil {
				fmt.Printf("title %s has no reviews\n", *titleID)
				return nil
			}
			fmt.Printf("title %s rating %d\n", *titleID, *value)
			return nil
		}

		count, err := aggregator.RecomputeAll(ctx)
		if err != nil {
			return err
		}
		fmt.Printf("recomputed %d titles\n", count)
		return nil
	})
}
