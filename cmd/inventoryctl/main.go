// Command inventoryctl runs maintenance tasks against the inventory database.
package main

import (
	"fmt"
	"log"
	"os"

	"go-warehouse-inventory/config"
	"go-warehouse-inventory/internal/repository"
	"go-warehouse-inventory/internal/seed"
	"go-warehouse-inventory/internal/service"
	"go-warehouse-inventory/pkg/database"
	"go-warehouse-inventory/pkg/jwt"
	"go-warehouse-inventory/pkg/logger"

	"github.com/pkg/errors"
	"github.com/urfave/cli/v2"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type env struct {
	cfg *config.Config
	log *zap.Logger
	db  *gorm.DB
}

func setup() (*env, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, errors.Wrap(err, "load config")
	}
	zl, err := logger.New(cfg.Logger, cfg.Server.IsDevelopment())
	if err != nil {
		return nil, errors.Wrap(err, "init logger")
	}
	db, err := database.Connect(cfg.Database)
	if err != nil {
		return nil, err
	}
	return &env{cfg: cfg, log: zl, db: db}, nil
}

func main() {
	app := &cli.App{
		Name:  "inventoryctl",
		Usage: "maintenance tasks for the warehouse inventory database",
		Commands: []*cli.Command{
			{
				Name:  "migrate",
				Usage: "create or update every table",
				Action: func(c *cli.Context) error {
					e, err := setup()
					if err != nil {
						return err
					}
					if err := database.Migrate(e.db); err != nil {
						return err
					}
					e.log.Info("migration complete")
					return nil
				},
			},
			{
				Name:  "seed",
				Usage: "insert default privileges, roles and the admin user",
				Action: func(c *cli.Context) error {
					e, err := setup()
					if err != nil {
						return err
					}
					return seed.Run(c.Context, e.db, e.cfg.Seed, e.log)
				},
			},
			{
				Name:      "reset-password",
				Usage:     "set a user's password and end their sessions",
				ArgsUsage: "<email>",
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "password", Aliases: []string{"p"}, Required: true, Usage: "new password"},
				},
				Action: func(c *cli.Context) error {
					email := c.Args().First()
					if email == "" {
						return cli.Exit("email is required", 2)
					}
					e, err := setup()
					if err != nil {
						return err
					}
					auth := service.NewAuthService(repository.NewUserRepo(e.db), jwt.NewManager(e.cfg.JWT), e.log)
					if err := auth.SetPassword(c.Context, email, c.String("password")); err != nil {
						return err
					}
					fmt.Printf("password updated for %s\n", email)
					return nil
				},
			},
			{
				Name:  "recount",
				Usage: "compare every ledger quantity with its stock movements",
				Action: func(c *cli.Context) error {
					e, err := setup()
					if err != nil {
						return err
					}
					audit := service.NewAuditService(e.db, repository.NewInventoryRepo(e.db), repository.NewStockRepo(e.db))
					drifts, err := audit.Recount(c.Context)
					if err != nil {
						return err
					}
					if len(drifts) == 0 {
						fmt.Println("ledger consistent")
						return nil
					}
					for _, d := range drifts {
						fmt.Printf("%s\t%s\tledger=%d\texpected=%d\n", d.ProductID, d.ProductCode, d.Ledger, d.Expected)
					}
					return cli.Exit(fmt.Sprintf("%d products drifted", len(drifts)), 1)
				},
			},
		},
	}

	if err := app.Run(os.Args); err != nil {
		log.Fatal(err)
	}
}
