package main

import (
	"fmt"
	"log"
	"os"

	"school-attendance/backend/foundation/web"
	"school-attendance/backend/internal/auth"
	"school-attendance/backend/internal/commands"
	"school-attendance/backend/internal/pkg/config"
	"school-attendance/backend/internal/pkg/repository/postgresql"
	"school-attendance/backend/internal/router"

	"github.com/ardanlabs/conf"
	"github.com/pkg/errors"
	"github.com/redis/go-redis/v9"
)

var build = "develop"

func main() {
	log := log.New(os.Stdout, "ATTENDANCE : ", log.LstdFlags|log.Lmicroseconds|log.Lshortfile)

	if err := run(log); err != nil {
		if !errors.Is(err, commands.ErrHelp) {
			log.Println("main: error:", err)
		}
		os.Exit(1)
	}
}

func run(log *log.Logger) error {
	var cfg struct {
		conf.Version
		ConfigPath string `conf:"default:config.yaml"`
		Args       conf.Args
	}
	cfg.Version.SVN = build
	cfg.Version.Desc = "school attendance backend"

	if err := conf.Parse(os.Args[1:], "ATTENDANCE", &cfg); err != nil {
		switch err {
		case conf.ErrHelpWanted:
			usage, err := conf.Usage("ATTENDANCE", &cfg)
			if err != nil {
				return errors.Wrap(err, "generating config usage")
			}
			fmt.Println(usage)
			return commands.ErrHelp
		case conf.ErrVersionWanted:
			version, err := conf.VersionString("ATTENDANCE", &cfg)
			if err != nil {
				return errors.Wrap(err, "generating config version")
			}
			fmt.Println(version)
			return commands.ErrHelp
		}
		return errors.Wrap(err, "parsing config")
	}

	appConfig, err := config.NewConfig(cfg.ConfigPath)
	if err != nil {
		return errors.Wrap(err, "loading config file")
	}

	location, err := appConfig.Location()
	if err != nil {
		return errors.Wrap(err, "resolving school timezone")
	}

	postgresDB := postgresql.NewConnection(appConfig)
	defer postgresDB.Close()

	switch cfg.Args.Num(0) {
	case "migrate":
		commands.MigrateUP(postgresDB)
		log.Println("main: migrations applied")
		return nil
	}

	commands.MigrateUP(postgresDB)

	redisDB := redis.NewClient(&redis.Options{
		Addr: fmt.Sprintf("%s:%s", appConfig.RedisHost, appConfig.RedisPort),
	})
	defer redisDB.Close()

	authenticator, err := auth.NewAuth(appConfig.PrivateKeyPath)
	if err != nil {
		return errors.Wrap(err, "constructing authenticator")
	}

	app := web.NewApp()

	r := router.NewRouter(
		app,
		postgresDB,
		redisDB,
		appConfig.ServerPort,
		authenticator,
		appConfig.PrivateKeyPath,
		"./statics",
		location,
	)

	log.Println("main: api listening on", appConfig.ServerPort)

	return r.Init()
}
