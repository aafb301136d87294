// vendas é a CLI operacional: importa um período do ERP para o ledger,
// aplica migrações do schema e emite tokens de acesso à API.
package main

import (
	"context"
	"fmt"
	"os"
	"strconv"

	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/source/file"
	"github.com/spf13/cobra"

	"github.com/rmarquesvinicius/vendas-api/internal/application/importer"
	"github.com/rmarquesvinicius/vendas-api/internal/domain/nfe"
	"github.com/rmarquesvinicius/vendas-api/internal/infrastructure/erp"
	"github.com/rmarquesvinicius/vendas-api/internal/infrastructure/postgres"
	"github.com/rmarquesvinicius/vendas-api/pkg/config"
	"github.com/rmarquesvinicius/vendas-api/pkg/jwt"
	"github.com/rmarquesvinicius/vendas-api/pkg/logger"
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "vendas",
		Short: "Importação de notas fiscais do ERP para o ledger",
		CompletionOptions: cobra.CompletionOptions{
			DisableDefaultCmd: true,
		},
		SilenceUsage: true,
	}

	rootCmd.AddCommand(importCmd(), migrateCmd(), tokenCmd())

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func importCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "import <ano> <mês>",
		Short: "Importa as notas fiscais emitidas no mês indicado",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			year, err := strconv.Atoi(args[0])
			if err != nil {
				return fmt.Errorf("ano inválido: %q", args[0])
			}
			month, err := strconv.Atoi(args[1])
			if err != nil {
				return fmt.Errorf("mês inválido: %q", args[1])
			}

			cfg, err := config.Load()
			if err != nil {
				return fmt.Errorf("carregar configuração: %w", err)
			}
			log := logger.New(logger.Config{Env: cfg.App.Env, Level: "info"})

			ctx := context.Background()
			pool, err := postgres.NewPool(ctx, cfg.DB)
			if err != nil {
				return fmt.Errorf("conexão ao PostgreSQL: %w", err)
			}
			defer pool.Close()

			source, err := erp.NewSource(cfg.ERP)
			if err != nil {
				return fmt.Errorf("conexão à réplica do ERP: %w", err)
			}
			defer func() { _ = source.Close() }()

			var parser nfe.Parser = nfe.NewStreamParser()
			if cfg.Import.StrictXML {
				parser = nfe.NewETreeParser()
			}

			uc := importer.NewUseCase(source, postgres.NewTxRunner(pool), parser, log)
			count, err := uc.Run(ctx, year, month)
			if err != nil {
				return err
			}
			fmt.Printf("%d notas gravadas para %04d-%02d\n", count, year, month)
			return nil
		},
	}
}

func migrateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "migrate [up|down|version]",
		Short: "Aplica as migrações do schema do ledger",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load()
			if err != nil {
				return fmt.Errorf("carregar configuração: %w", err)
			}
			m, err := migrate.New("file://db/migrations", cfg.DB.ConnectionString())
			if err != nil {
				return fmt.Errorf("criar instância de migração: %w", err)
			}
			defer m.Close()

			switch args[0] {
			case "up":
				if err := m.Up(); err != nil && err != migrate.ErrNoChange {
					return fmt.Errorf("migração up: %w", err)
				}
				fmt.Println("migrações aplicadas")
			case "down":
				if err := m.Down(); err != nil && err != migrate.ErrNoChange {
					return fmt.Errorf("migração down: %w", err)
				}
				fmt.Println("migrações revertidas")
			case "version":
				version, dirty, err := m.Version()
				if err != nil {
					return fmt.Errorf("consultar versão: %w", err)
				}
				fmt.Printf("versão: %d, dirty: %v\n", version, dirty)
			default:
				return fmt.Errorf("comando desconhecido: %s", args[0])
			}
			return nil
		},
	}
}

func tokenCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "token <sujeito> <papel>",
		Short: "Emite um token JWT de acesso à API (papéis: operador, leitor)",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load()
			if err != nil {
				return fmt.Errorf("carregar configuração: %w", err)
			}
			tok, err := jwt.Generate(cfg.JWT.Secret, args[0], args[1], cfg.JWT.Issuer, cfg.JWT.Expiration)
			if err != nil {
				return err
			}
			fmt.Println(tok)
			return nil
		},
	}
}
