package main

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/transform"

	"github.com/bizsuite/ledger-api/internal/application/dto"
	"github.com/bizsuite/ledger-api/internal/application/usecase"
	"github.com/bizsuite/ledger-api/internal/domain"
	"github.com/bizsuite/ledger-api/internal/domain/repository"
)

// importer crea o actualiza sedes por código. Las filas inválidas se reportan y no detienen la carga.
type importer struct {
	repo    repository.LocationRepository
	uc      *usecase.LocationUseCase
	charset string // vacío = windows-1252
}

type rowError struct {
	Row  int
	Code string
	Err  error
}

type importResult struct {
	Created  int
	Updated  int
	Rejected []rowError
}

func (imp *importer) decoder(r io.Reader) io.Reader {
	switch strings.ToLower(strings.TrimSpace(imp.charset)) {
	case "utf-8", "utf8":
		return r
	case "iso-8859-1", "iso8859-1", "latin1":
		return transform.NewReader(r, charmap.ISO8859_1.NewDecoder())
	default:
		return transform.NewReader(r, charmap.Windows1252.NewDecoder())
	}
}

// Run procesa el CSV completo. Solo los errores de lectura o de almacenamiento abortan.
func (imp *importer) Run(ctx context.Context, organizationID string, r io.Reader) (importResult, error) {
	var res importResult

	cr := csv.NewReader(imp.decoder(r))
	cr.FieldsPerRecord = -1
	cr.TrimLeadingSpace = true

	header, err := cr.Read()
	if err != nil {
		return res, fmt.Errorf("leer cabecera: %w", err)
	}
	cols := make(map[string]int, len(header))
	for i, h := range header {
		cols[strings.ToLower(strings.TrimSpace(h))] = i
	}
	for _, required := range []string{"code", "name"} {
		if _, ok := cols[required]; !ok {
			return res, fmt.Errorf("columna %q requerida", required)
		}
	}
	field := func(rec []string, name string) string {
		i, ok := cols[name]
		if !ok || i >= len(rec) {
			return ""
		}
		return strings.TrimSpace(rec[i])
	}

	for row := 2; ; row++ {
		rec, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return res, fmt.Errorf("fila %d: %w", row, err)
		}

		code := field(rec, "code")
		name := field(rec, "name")
		address := field(rec, "address")
		if code == "" || name == "" {
			res.Rejected = append(res.Rejected, rowError{Row: row, Code: code, Err: fmt.Errorf("%w: code y name requeridos", domain.ErrInvalidInput)})
			continue
		}
		hq := false
		if v := field(rec, "is_headquarters"); v != "" {
			hq, err = strconv.ParseBool(v)
			if err != nil {
				res.Rejected = append(res.Rejected, rowError{Row: row, Code: code, Err: fmt.Errorf("is_headquarters: %w", err)})
				continue
			}
		}

		existing, err := imp.repo.GetByCode(ctx, organizationID, code)
		if err != nil {
			return res, err
		}
		if existing == nil {
			_, err = imp.uc.Create(ctx, organizationID, dto.CreateLocationRequest{
				Code: code, Name: name, Address: address, IsHeadquarters: hq,
			})
			if err == nil {
				res.Created++
			}
		} else {
			_, err = imp.uc.Update(ctx, organizationID, existing.ID, dto.UpdateLocationRequest{
				Name: &name, Address: &address, IsHeadquarters: &hq,
			})
			if err == nil {
				res.Updated++
			}
		}
		if err != nil {
			res.Rejected = append(res.Rejected, rowError{Row: row, Code: code, Err: err})
		}
	}
	return res, nil
}
