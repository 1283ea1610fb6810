package main

import (
	"context"
	"database/sql"
	"fmt"
	"log"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/alecthomas/kong"
	kongdotenv "github.com/titusjaka/kong-dotenv-go"
	_ "modernc.org/sqlite"

	"github.com/skycast/skycast/internal/api"
	"github.com/skycast/skycast/internal/format"
	"github.com/skycast/skycast/internal/openmeteo"
	"github.com/skycast/skycast/internal/refresh"
	"github.com/skycast/skycast/internal/session"
	"github.com/skycast/skycast/internal/store"
	"github.com/skycast/skycast/internal/weather"
)

type Globals struct {
	DB           string        `help:"Path to SQLite database." default:"data/skycast.db" env:"SKYCAST_DB"`
	Fixture      bool          `help:"Serve embedded fixture data instead of calling open-meteo." env:"SKYCAST_FIXTURE"`
	FixtureDelay time.Duration `help:"Artificial latency applied to fixture lookups." default:"150ms" env:"SKYCAST_FIXTURE_DELAY"`
}

type CLI struct {
	Globals

	Serve   ServeCmd   `cmd:"" help:"Run the HTTP API server."`
	Lookup  LookupCmd  `cmd:"" help:"Look up current weather and the 7-day forecast for a city."`
	History HistoryCmd `cmd:"" help:"Show recent searches."`
}

func main() {
	var cli CLI
	ctx := kong.Parse(&cli,
		kong.Name("skycast"),
		kong.Description("City weather lookup backed by open-meteo."),
		kong.Configuration(kongdotenv.ENVFileReader, ".env"),
	)
	ctx.FatalIfErrorf(ctx.Run(&cli.Globals))
}

// newSource picks the live or fixture weather source from configuration.
// Fixture mode is an explicit flag; nothing here sniffs the environment.
func newSource(g *Globals) (weather.Source, error) {
	if g.Fixture {
		log.Printf("using embedded fixture data (delay %s)", g.FixtureDelay)
		return weather.NewFixtureSource(g.FixtureDelay)
	}
	return weather.NewService(openmeteo.NewClient()), nil
}

func openStore(path string) (*store.Store, *sql.DB, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, nil, fmt.Errorf("open database: %w", err)
	}

	db.Exec("PRAGMA journal_mode=WAL")
	db.Exec("PRAGMA busy_timeout=5000")

	st := store.New(db)
	if err := st.Migrate(); err != nil {
		db.Close()
		return nil, nil, fmt.Errorf("migrate: %w", err)
	}
	return st, db, nil
}

type ServeCmd struct {
	Port            string        `help:"HTTP server port." default:"8080" env:"SKYCAST_PORT"`
	DefaultCity     string        `help:"City loaded when no saved search exists." default:"London" env:"SKYCAST_DEFAULT_CITY"`
	RefreshInterval time.Duration `help:"Background refresh interval for the last-searched city." default:"30m" env:"SKYCAST_REFRESH_INTERVAL"`
	NoRefresh       bool          `help:"Disable the background refresher (server only, for local dev)."`
}

func (c *ServeCmd) Run(g *Globals) error {
	st, db, err := openStore(g.DB)
	if err != nil {
		return err
	}
	defer db.Close()

	svc, err := newSource(g)
	if err != nil {
		return err
	}

	sess := session.New(svc, st, c.DefaultCity)
	server := api.NewServer(svc, sess, st, c.Port)

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	// Initial load in the background so the server comes up immediately.
	go sess.Start(ctx)

	if !c.NoRefresh {
		go refresh.New(svc, st, c.RefreshInterval).Run(ctx)
	} else {
		log.Println("background refresh disabled (--no-refresh)")
	}

	log.Printf("starting server on :%s", c.Port)
	return server.Run(ctx)
}

type LookupCmd struct {
	City []string `arg:"" help:"City name to look up."`
}

func (c *LookupCmd) Run(g *Globals) error {
	svc, err := newSource(g)
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	data, err := svc.GetWeatherByCity(ctx, strings.Join(c.City, " "))
	if err != nil {
		return err
	}

	loc := data.Location
	cur := data.Current
	if loc.Country != "" {
		fmt.Printf("%s, %s (%.4f, %.4f)\n", loc.Name, loc.Country, loc.Latitude, loc.Longitude)
	} else {
		fmt.Printf("%s (%.4f, %.4f)\n", loc.Name, loc.Latitude, loc.Longitude)
	}
	fmt.Printf("%s %s, feels like %s\n",
		format.WeatherIcon(cur.WeatherCode, cur.IsDay),
		format.Temperature(cur.Temperature),
		format.Temperature(cur.ApparentTemperature))
	fmt.Printf("%s, humidity %s, wind %s %s, pressure %s\n",
		format.WeatherDescription(cur.WeatherCode),
		format.Humidity(cur.Humidity),
		format.WindSpeed(cur.WindSpeed),
		format.WindDirection(cur.WindDirection),
		format.Pressure(cur.PressureMSL))

	now := time.Now()
	for i := 0; i < data.Daily.Days(); i++ {
		d := data.Daily
		fmt.Printf("  %-9s %s %s / %s  %s\n",
			format.Day(d.Time[i], now),
			format.WeatherIcon(d.WeatherCode[i], true),
			format.Temperature(d.TempMax[i]),
			format.Temperature(d.TempMin[i]),
			format.WeatherDescription(d.WeatherCode[i]))
	}
	return nil
}

type HistoryCmd struct {
	Limit int `help:"Number of searches to show." default:"10"`
}

func (c *HistoryCmd) Run(g *Globals) error {
	st, db, err := openStore(g.DB)
	if err != nil {
		return err
	}
	defer db.Close()

	records, err := st.RecentSearches(c.Limit)
	if err != nil {
		return err
	}
	if len(records) == 0 {
		fmt.Println("no searches recorded")
		return nil
	}

	for _, rec := range records {
		line := fmt.Sprintf("%s  %s", rec.SearchedAt.Local().Format("2006-01-02 15:04"), rec.City)
		if rec.Temperature.Valid {
			line += "  " + format.Temperature(rec.Temperature.Float64)
		}
		if rec.WeatherCode.Valid {
			line += "  " + format.WeatherDescription(int(rec.WeatherCode.Int64))
		}
		fmt.Println(line)
	}
	return nil
}
