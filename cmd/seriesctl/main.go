// seriesctl queries INEGI BIE series from the terminal using the same
// fetch/filter pipeline as the dashboard.
//
// Usage:
//   seriesctl fetch --indicador 910407 --token XXX --filtro 2005/01
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"os"
	"time"

	"github.com/joho/godotenv"
	"github.com/urfave/cli/v2"

	"inegidash/internal/config"
	"inegidash/internal/core"
	"inegidash/internal/inegi"
	applog "inegidash/internal/log"
)

func main() {
	_ = godotenv.Load()

	app := &cli.App{
		Name:  "seriesctl",
		Usage: "Consulta una serie del BIE de INEGI y muéstrala en la terminal",
		Commands: []*cli.Command{
			fetchCommand(),
		},
	}

	if err := app.Run(os.Args); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func fetchCommand() *cli.Command {
	return &cli.Command{
		Name:  "fetch",
		Usage: "Descarga una serie, la filtra por periodo y la imprime",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:  "indicador",
				Value: "910407",
				Usage: "Código de indicador BIE",
			},
			&cli.StringFlag{
				Name:    "token",
				Usage:   "Token de acceso del INEGI",
				EnvVars: []string{"INEGI_TOKEN"},
			},
			&cli.StringFlag{
				Name:  "filtro",
				Value: "2005/01",
				Usage: "Periodo inicial (YYYY/MM, YYYY-MM o YYYYMM)",
			},
			&cli.BoolFlag{
				Name:  "json",
				Usage: "Imprime el documento JSON en lugar de la tabla",
			},
			&cli.DurationFlag{
				Name:  "timeout",
				Value: 30 * time.Second,
				Usage: "Timeout de la consulta HTTP",
			},
		},
		Action: runFetch,
	}
}

func runFetch(c *cli.Context) error {
	cfg := config.Load()
	logger := applog.New(applog.Config{
		Level:     slog.LevelWarn,
		Component: applog.ComponentCLI,
	})

	client := inegi.NewClient(inegi.Config{
		BaseURL:   cfg.INEGIBaseURL,
		Timeout:   c.Duration("timeout"),
		CacheSize: cfg.SeriesCacheSize,
	}, logger.WithComponent(applog.ComponentINEGI))

	indicador := c.String("indicador")
	filtro := core.NormalizeFilter(c.String("filtro"))

	series, err := client.Series(context.Background(), indicador, c.String("token"))
	if err != nil {
		return err
	}
	filtered := series.From(filtro)

	if c.Bool("json") {
		return printJSON(os.Stdout, indicador, filtro, filtered)
	}
	printTable(os.Stdout, indicador, filtro, filtered)
	return nil
}

func printJSON(w io.Writer, indicador, filtro string, s core.Series) error {
	type point struct {
		X string   `json:"x"`
		Y *float64 `json:"y"`
	}
	doc := struct {
		Indicator string  `json:"indicator"`
		Filtro    string  `json:"filtro"`
		Count     int     `json:"count"`
		Data      []point `json:"data"`
	}{
		Indicator: indicador,
		Filtro:    filtro,
		Count:     len(s),
		Data:      make([]point, 0, len(s)),
	}
	for _, obs := range s {
		doc.Data = append(doc.Data, point{X: obs.Period, Y: obs.Value})
	}

	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(doc)
}

func printTable(w io.Writer, indicador, filtro string, s core.Series) {
	fmt.Fprintf(w, "Indicador %s desde %s\n", indicador, filtro)
	if len(s) == 0 {
		fmt.Fprintln(w, "Sin datos para los parámetros proporcionados")
		return
	}
	for _, obs := range s {
		if obs.Value != nil {
			fmt.Fprintf(w, "%s\t%g\n", obs.Period, *obs.Value)
		} else {
			fmt.Fprintf(w, "%s\t-\n", obs.Period)
		}
	}
	fmt.Fprintf(w, "%d observaciones\n", len(s))
}
