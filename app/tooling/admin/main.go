// This program performs administrative tasks against the ledger journal
// without the service running.
package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/ardanlabs/ledger/app/tooling/admin/commands"
	"github.com/ardanlabs/ledger/foundation/ledger/database"
	"github.com/ardanlabs/ledger/foundation/ledger/database/storage/disk"
	"github.com/ardanlabs/ledger/foundation/ledger/database/storage/leveldb"
	"github.com/ardanlabs/ledger/foundation/ledger/genesis"
	"github.com/ardanlabs/ledger/foundation/logger"
	"github.com/ardanlabs/conf/v3"
	"github.com/joho/godotenv"
	"go.uber.org/zap"
)

// build is the git version of this program. It is set using build flags in the makefile.
var build = "develop"

func main() {

	// Construct the application logger.
	log, err := logger.New("ADMIN")
	if err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
	defer log.Sync()

	// Perform the startup and shutdown sequence.
	if err := run(log); err != nil {
		log.Errorw("startup", "ERROR", err)
		log.Sync()
		os.Exit(1)
	}
}

func run(log *zap.SugaredLogger) error {

	// Local overrides live in a .env file next to the tooling.
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("loading .env file: %w", err)
	}

	cfg := struct {
		conf.Version
		Args        conf.Args
		GenesisPath string `conf:"default:zledger/genesis.json"`
		Storage     string `conf:"default:disk"`
		DBPath      string `conf:"default:zledger/journal/"`
	}{
		Version: conf.Version{
			Build: build,
			Desc:  "copyright information here",
		},
	}

	const prefix = "ADMIN"
	help, err := conf.Parse(prefix, &cfg)
	if err != nil {
		if errors.Is(err, conf.ErrHelpWanted) {
			fmt.Println(help)
			return nil
		}
		return fmt.Errorf("parsing config: %w", err)
	}

	gen, err := genesis.Load(cfg.GenesisPath)
	if err != nil {
		return fmt.Errorf("unable to load genesis file: %w", err)
	}

	var storage database.Serializer
	switch cfg.Storage {
	case "disk":
		storage, err = disk.New(cfg.DBPath)
	case "leveldb":
		storage, err = leveldb.New(cfg.DBPath)
	default:
		return fmt.Errorf("unknown storage backend %q", cfg.Storage)
	}
	if err != nil {
		return fmt.Errorf("unable to open journal storage: %w", err)
	}

	db, err := database.New(gen, storage, nil)
	if err != nil {
		return err
	}
	defer db.Close()

	return processCommands(cfg.Args, db)
}

// processCommands handles the execution of the commands specified on
// the command line.
func processCommands(args conf.Args, db *database.Database) error {
	switch args.Num(0) {
	case "bals":
		if err := commands.Balances(args, db); err != nil {
			return fmt.Errorf("getting balances: %w", err)
		}
	case "journal":
		if err := commands.Journal(args, db); err != nil {
			return fmt.Errorf("getting journal: %w", err)
		}
	case "verify":
		if err := commands.Verify(args, db); err != nil {
			return fmt.Errorf("verifying journal: %w", err)
		}
	default:
		fmt.Println("bals:    display the current account balances")
		fmt.Println("journal: dump the journal records")
		fmt.Println("verify:  replay the journal and audit conservation")
		return errors.New("no command provided")
	}

	return nil
}
