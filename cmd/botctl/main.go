// Command botctl performs operator tasks against the bot's database and admin API
// without going through Telegram.
package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/spf13/pflag"
	"go.uber.org/zap"

	"channelpass/gatekeeper/internal/config"
	"channelpass/gatekeeper/internal/model"
	"channelpass/gatekeeper/internal/repository"
	"channelpass/gatekeeper/internal/service"
	jwtpkg "channelpass/gatekeeper/pkg/jwt"
	"channelpass/gatekeeper/pkg/logger"
)

const usage = `usage: botctl [--config path] <command> [flags]

commands:
  code   --days N    mint a redemption code
  token  [--ttl D]   print an admin API bearer token
`

func main() {
	if err := run(os.Args[1:]); err != nil {
		fmt.Fprintln(os.Stderr, "botctl:", err)
		os.Exit(1)
	}
}

func run(args []string) error {
	global := pflag.NewFlagSet("botctl", pflag.ContinueOnError)
	global.SetInterspersed(false)
	configPath := global.StringP("config", "c", config.DefaultPath(), "path to the YAML config file")
	global.Usage = func() { fmt.Fprint(os.Stderr, usage) }
	if err := global.Parse(args); err != nil {
		return err
	}
	if global.NArg() == 0 {
		global.Usage()
		return fmt.Errorf("missing command")
	}

	cfg, err := config.Load(*configPath)
	if err != nil {
		return err
	}

	cmd, rest := global.Arg(0), global.Args()[1:]
	switch cmd {
	case "code":
		return runCode(cfg, rest)
	case "token":
		return runToken(cfg, rest)
	default:
		global.Usage()
		return fmt.Errorf("unknown command %q", cmd)
	}
}

func runCode(cfg *config.Config, args []string) error {
	fs := pflag.NewFlagSet("code", pflag.ContinueOnError)
	days := fs.IntP("days", "d", model.Duration30Days, "subscription length in days")
	if err := fs.Parse(args); err != nil {
		return err
	}

	zlog, err := logger.New(cfg.Log)
	if err != nil {
		return err
	}
	defer zlog.Sync()

	db, err := config.NewPostgresDB(cfg.Database.Postgres, zlog)
	if err != nil {
		return err
	}
	if sqlDB, err := db.DB(); err == nil {
		defer sqlDB.Close()
	}

	audit := service.NewAuditLog(repository.NewPGAuditRepository(db), zlog)
	codes := service.NewCodeRegistry(
		repository.NewPGCodeRepository(db),
		audit,
		cfg.Subscription.AllowedDurations,
		cfg.Subscription.CodeLength,
		zlog,
	)

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	code, err := codes.Issue(ctx, *days, model.SystemActor)
	if err != nil {
		return err
	}

	zlog.Info("code minted from cli", zap.Int("days", code.DurationDays))
	fmt.Printf("%s\t%d days\n", code.Code, code.DurationDays)
	return nil
}

func runToken(cfg *config.Config, args []string) error {
	fs := pflag.NewFlagSet("token", pflag.ContinueOnError)
	ttl := fs.Duration("ttl", cfg.JWT.AccessTokenTTL, "token lifetime")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if cfg.JWT.SigningKey == "" {
		return fmt.Errorf("jwt.signing_key is not configured")
	}

	m := jwtpkg.NewManager(cfg.JWT.SigningKey, cfg.JWT.Issuer, cfg.JWT.AccessTokenTTL)
	token, err := m.GenerateAdminToken(cfg.Telegram.AdminID, *ttl)
	if err != nil {
		return err
	}
	fmt.Println(token)
	return nil
}
