package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"text/tabwriter"

	"github.com/urfave/cli/v2"

	"github.com/jhoicas/inventario-sucursales/internal/application/analytics"
	"github.com/jhoicas/inventario-sucursales/internal/application/inventory"
	"github.com/jhoicas/inventario-sucursales/internal/bootstrap"
	domaininv "github.com/jhoicas/inventario-sucursales/internal/domain/inventory"
	"github.com/jhoicas/inventario-sucursales/internal/infrastructure/archive"
	"github.com/jhoicas/inventario-sucursales/internal/infrastructure/csvimport"
	"github.com/jhoicas/inventario-sucursales/internal/infrastructure/postgres"
	"github.com/jhoicas/inventario-sucursales/pkg/config"
	"github.com/jhoicas/inventario-sucursales/pkg/jwt"
	"github.com/jhoicas/inventario-sucursales/pkg/logger"
)

// exitInconsistent código de salida cuando el historial no cuadra.
const exitInconsistent = 2

func newApp(out io.Writer) *cli.App {
	return &cli.App{
		Name:   "ledgerctl",
		Usage:  "operación del inventario por sucursales",
		Writer: out,
		// el código de salida lo decide main
		ExitErrHandler: func(*cli.Context, error) {},
		Commands: []*cli.Command{
			migrateCommand(),
			reconcileCommand(),
			journalCommand(),
			catalogCommand(),
			tokenCommand(),
		},
	}
}

// env carga configuración, logger y backend.
type env struct {
	cfg     *config.Config
	log     *logger.Logger
	backend *bootstrap.Backend
	svc     *bootstrap.Services
}

func openEnv(ctx context.Context) (*env, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("cargar configuración: %w", err)
	}
	log := logger.New(logger.Config{Env: cfg.App.Env, Level: cfg.Log.Level, Out: os.Stderr})
	backend, err := bootstrap.Open(ctx, cfg, log)
	if err != nil {
		return nil, err
	}
	svc, err := bootstrap.NewServices(backend, cfg, log)
	if err != nil {
		backend.Close()
		return nil, err
	}
	return &env{cfg: cfg, log: log, backend: backend, svc: svc}, nil
}

func migrateCommand() *cli.Command {
	run := func(fn func(m *postgres.Migrator, w io.Writer) error) cli.ActionFunc {
		return func(c *cli.Context) error {
			cfg, err := config.Load()
			if err != nil {
				return err
			}
			m, err := postgres.NewMigrator(cfg.DB.ConnectionString())
			if err != nil {
				return err
			}
			defer m.Close()
			return fn(m, c.App.Writer)
		}
	}
	printVersion := func(m *postgres.Migrator, w io.Writer) error {
		v, dirty, err := m.Version()
		if err != nil {
			return err
		}
		fmt.Fprintf(w, "versión %d (dirty=%t)\n", v, dirty)
		return nil
	}
	return &cli.Command{
		Name:  "migrate",
		Usage: "esquema PostgreSQL embebido",
		Subcommands: []*cli.Command{
			{Name: "up", Usage: "aplicar migraciones pendientes", Action: run(func(m *postgres.Migrator, w io.Writer) error {
				if err := m.Up(); err != nil {
					return err
				}
				return printVersion(m, w)
			})},
			{Name: "down", Usage: "revertir la última migración", Action: run(func(m *postgres.Migrator, w io.Writer) error {
				if err := m.Down(); err != nil {
					return err
				}
				return printVersion(m, w)
			})},
			{Name: "version", Usage: "versión aplicada", Action: run(printVersion)},
		},
	}
}

func reconcileCommand() *cli.Command {
	return &cli.Command{
		Name:  "reconcile",
		Usage: "comparar existencias contra la suma del historial",
		Action: func(c *cli.Context) error {
			e, err := openEnv(c.Context)
			if err != nil {
				return err
			}
			defer e.backend.Close()

			diffs, err := e.svc.Ledger.Reconcile(c.Context)
			if err != nil {
				return err
			}
			if len(diffs) == 0 {
				fmt.Fprintln(c.App.Writer, "consistente")
				return nil
			}
			tw := tabwriter.NewWriter(c.App.Writer, 0, 4, 2, ' ', 0)
			fmt.Fprintln(tw, "VARIANTE\tSUCURSAL\tEXISTENCIA\tHISTORIAL")
			for _, d := range diffs {
				fmt.Fprintf(tw, "%s\t%s\t%d\t%d\n", d.VariantID, d.BranchID, d.Quantity, d.JournalSum)
			}
			_ = tw.Flush()
			return cli.Exit(fmt.Sprintf("%d pares inconsistentes", len(diffs)), exitInconsistent)
		},
	}
}

func journalCommand() *cli.Command {
	return &cli.Command{
		Name:  "journal",
		Usage: "archivo del historial (.jsonl.zst)",
		Subcommands: []*cli.Command{
			{
				Name:  "export",
				Usage: "exportar asientos en orden cronológico",
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "out", Required: true, Usage: "archivo de salida"},
					&cli.StringFlag{Name: "start", Usage: "desde (YYYY-MM-DD)"},
					&cli.StringFlag{Name: "end", Usage: "hasta inclusive (YYYY-MM-DD)"},
				},
				Action: exportJournal,
			},
			{
				Name:  "balances",
				Usage: "reconstruir saldos por par desde un archivo",
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "in", Required: true, Usage: "archivo de entrada"},
				},
				Action: journalBalances,
			},
		},
	}
}

func exportJournal(c *cli.Context) error {
	e, err := openEnv(c.Context)
	if err != nil {
		return err
	}
	defer e.backend.Close()

	r, err := analytics.ParseRange(c.String("start"), c.String("end"), e.svc.Engine.Location())
	if err != nil {
		return err
	}
	snap, err := e.backend.SnapshotRepo.Snapshot(c.Context, r.From, r.To)
	if err != nil {
		return err
	}
	f, err := os.Create(c.String("out"))
	if err != nil {
		return err
	}
	n, err := archive.WriteJournal(f, snap.Records)
	if cerr := f.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		return err
	}
	fmt.Fprintf(c.App.Writer, "%d asientos exportados a %s\n", n, c.String("out"))
	return nil
}

func journalBalances(c *cli.Context) error {
	f, err := os.Open(c.String("in"))
	if err != nil {
		return err
	}
	defer f.Close()

	records, err := archive.ReadJournal(f)
	if err != nil {
		return err
	}
	balances := domaininv.Balances(records)
	negatives := 0
	tw := tabwriter.NewWriter(c.App.Writer, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "VARIANTE\tSUCURSAL\tSALDO\tASIENTOS\tNEGATIVO_EN")
	for _, b := range balances {
		if b.NegativeAt != "" {
			negatives++
		}
		fmt.Fprintf(tw, "%s\t%s\t%d\t%d\t%s\n", b.Key.VariantID, b.Key.BranchID, b.Quantity, b.Records, b.NegativeAt)
	}
	_ = tw.Flush()
	fmt.Fprintf(c.App.Writer, "%d asientos, %d pares\n", len(records), len(balances))
	if negatives > 0 {
		return cli.Exit(fmt.Sprintf("%d pares con saldo negativo en algún punto", negatives), exitInconsistent)
	}
	return nil
}

func catalogCommand() *cli.Command {
	return &cli.Command{
		Name:  "catalog",
		Usage: "catálogo de productos",
		Subcommands: []*cli.Command{
			{
				Name:  "import",
				Usage: "crear productos y variantes desde un CSV",
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "file", Required: true, Usage: "archivo CSV"},
					&cli.StringFlag{Name: "charset", Value: "utf8", Usage: "utf8|latin1|windows1252"},
					&cli.StringFlag{Name: "user", Value: "ledgerctl", Usage: "user_id del stock inicial"},
					&cli.StringFlag{Name: "name", Value: "importación de catálogo", Usage: "nombre del usuario"},
				},
				Action: importCatalog,
			},
		},
	}
}

func importCatalog(c *cli.Context) error {
	f, err := os.Open(c.String("file"))
	if err != nil {
		return err
	}
	defer f.Close()

	products, err := csvimport.ReadCatalog(f, c.String("charset"))
	if err != nil {
		return err
	}
	e, err := openEnv(c.Context)
	if err != nil {
		return err
	}
	defer e.backend.Close()

	actor := inventory.Actor{UserID: c.String("user"), Name: c.String("name")}
	failed := 0
	for _, p := range products {
		out, err := e.svc.ProductUC.CreateProduct(c.Context, p, actor)
		if err != nil {
			failed++
			e.log.Error().Err(err).Str("product", p.Name).Msg("producto no importado")
			continue
		}
		fmt.Fprintf(c.App.Writer, "%s\t%s\t%d variantes\n", out.ID, out.Name, len(out.Variants))
	}
	if failed > 0 {
		return cli.Exit(fmt.Sprintf("%d de %d productos fallaron", failed, len(products)), 1)
	}
	return nil
}

func tokenCommand() *cli.Command {
	return &cli.Command{
		Name:  "token",
		Usage: "firmar un JWT de prueba",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "user", Required: true},
			&cli.StringFlag{Name: "name"},
			&cli.StringFlag{Name: "role", Value: "admin", Usage: "admin|bodeguero|vendedor"},
			&cli.IntFlag{Name: "minutes", Value: 60},
			&cli.StringFlag{Name: "secret", EnvVars: []string{"JWT_SECRET"}},
			&cli.StringFlag{Name: "issuer", Value: "inventario-sucursales", EnvVars: []string{"JWT_ISSUER"}},
		},
		Action: func(c *cli.Context) error {
			switch c.String("role") {
			case "admin", "bodeguero", "vendedor":
			default:
				return fmt.Errorf("rol %q no reconocido", c.String("role"))
			}
			tok, err := jwt.Generate(c.String("secret"), c.String("user"), c.String("name"),
				c.String("role"), c.String("issuer"), c.Int("minutes"))
			if err != nil {
				return err
			}
			fmt.Fprintln(c.App.Writer, tok)
			return nil
		},
	}
}
