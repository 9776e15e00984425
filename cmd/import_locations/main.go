// import_locations carga sedes de una organización desde un CSV exportado del ERP anterior.
//
// Uso: go run ./cmd/import_locations <organization_id> [ruta/sedes.csv]
// Por defecto busca sedes.csv en el directorio actual.
// Columnas: code,name,address,is_headquarters (la primera fila es cabecera).
// Los archivos exportados desde Excel suelen venir en Windows-1252; IMPORT_CHARSET=utf-8 lo desactiva.
package main

import (
	"context"
	"fmt"
	"os"

	"github.com/bizsuite/ledger-api/internal/application/usecase"
	"github.com/bizsuite/ledger-api/internal/infrastructure/postgres"
	"github.com/bizsuite/ledger-api/pkg/config"
	"github.com/bizsuite/ledger-api/pkg/logger"
)

func main() {
	if len(os.Args) < 2 {
		fmt.Fprintln(os.Stderr, "Uso: import_locations <organization_id> [sedes.csv]")
		os.Exit(2)
	}
	organizationID := os.Args[1]
	csvPath := "sedes.csv"
	if len(os.Args) > 2 {
		csvPath = os.Args[2]
	}

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Cargar configuración: %v\n", err)
		os.Exit(1)
	}
	log := logger.New(logger.Config{Env: cfg.App.Env, Level: cfg.Log.Level})

	f, err := os.Open(csvPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Abrir CSV: %v\n", err)
		os.Exit(1)
	}
	defer f.Close()

	ctx := context.Background()
	pool, err := postgres.NewPool(ctx, cfg.DB)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Conexión a PostgreSQL: %v\n", err)
		os.Exit(1)
	}
	defer pool.Close()

	repo := postgres.NewLocationRepository(pool)
	imp := &importer{
		repo: repo,
		uc: usecase.NewLocationUseCase(repo, usecase.LocationConfig{
			SingleHeadquarters: cfg.Validation.SingleHeadquarters,
		}, log.Component("import")),
		charset: os.Getenv("IMPORT_CHARSET"),
	}

	res, err := imp.Run(ctx, organizationID, f)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Importar sedes: %v\n", err)
		os.Exit(1)
	}
	for _, e := range res.Rejected {
		fmt.Fprintf(os.Stderr, "fila %d (%s): %v\n", e.Row, e.Code, e.Err)
	}
	fmt.Printf("Importado %s: %d creadas, %d actualizadas, %d rechazadas\n",
		csvPath, res.Created, res.Updated, len(res.Rejected))
}
