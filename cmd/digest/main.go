// Package main provides the CLI entry point for daily-digest.
package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/alecthomas/kong"
	"github.com/google/uuid"
	"github.com/robfig/cron/v3"

	"daily-digest/internal/config"
	"daily-digest/internal/domain/entity"
	"daily-digest/internal/infra/mailer"
	"daily-digest/internal/infra/scraper"
	"daily-digest/internal/observability/logging"
	"daily-digest/internal/render"
	digestUC "daily-digest/internal/usecase/digest"
)

// CLI structure
var CLI struct {
	Feeds    string `help:"Feed list YAML path (built-in defaults when empty)"`
	Max      int    `help:"Max total items across all feeds" default:"20"`
	PerFeed  int    `help:"Max items per feed" default:"10"`
	Since    int    `help:"Only include items published within N hours" default:"24"`
	Subject  string `help:"Email subject" default:"Your News Digest"`
	Preview  bool   `help:"Print digest to stdout instead of sending"`
	NoHTML   bool   `name:"no-html" help:"Send plain-text only (no HTML part)"`
	Schedule string `help:"Cron expression; keep running and send on schedule"`
	Timezone string `help:"IANA timezone for the schedule and displayed times" default:"Local"`
	Debug    bool   `help:"Enable debug logging"`
}

func main() {
	kong.Parse(&CLI)

	if CLI.Debug {
		_ = os.Setenv("LOG_LEVEL", "debug")
	}
	logger := logging.NewLogger()
	slog.SetDefault(logger)

	if err := run(logger); err != nil {
		logger.Error("digest run failed", slog.Any("error", err))
		os.Exit(1)
	}
}

func run(logger *slog.Logger) error {
	loc, err := resolveLocation(CLI.Timezone)
	if err != nil {
		return err
	}

	sources, err := config.LoadSources(CLI.Feeds)
	if err != nil {
		return fmt.Errorf("load feed sources: %w", err)
	}

	smtpCfg, err := config.LoadSMTP()
	if err != nil {
		return fmt.Errorf("load smtp settings: %w", err)
	}
	if !CLI.Preview {
		if err := smtpCfg.Validate(); err != nil {
			return fmt.Errorf("smtp settings: %w", err)
		}
	}

	app := &application{
		logger:  logger,
		loc:     loc,
		sources: sources,
		smtp:    smtpCfg,
		service: digestUC.NewService(
			scraper.NewRSSFetcher(httpClient()),
			digestUC.DefaultConfig(),
		),
	}

	if CLI.Schedule != "" {
		return app.runScheduled(CLI.Schedule)
	}
	return app.runOnce(context.Background())
}

// application holds the wired collaborators for one process lifetime.
type application struct {
	logger  *slog.Logger
	loc     *time.Location
	sources []entity.Source
	smtp    config.SMTP
	service *digestUC.Service
}

// runOnce builds one digest, then previews or sends it.
func (a *application) runOnce(ctx context.Context) error {
	runID := uuid.NewString()
	logger := logging.WithRunID(a.logger, runID)
	ctx, cancel := context.WithTimeout(logging.WithLogger(ctx, logger), 5*time.Minute)
	defer cancel()

	items, _, err := a.service.Build(ctx, a.sources, digestUC.Params{
		PerSourceLimit: CLI.PerFeed,
		SinceHours:     CLI.Since,
		TotalLimit:     CLI.Max,
	})
	if err != nil {
		return fmt.Errorf("build digest: %w", err)
	}

	plain := render.Plain(items, a.loc)

	var htmlBody string
	if !CLI.NoHTML {
		htmlBody, err = render.HTML(items, CLI.Subject, a.loc)
		if err != nil {
			return fmt.Errorf("render html digest: %w", err)
		}
	}

	if CLI.Preview {
		fmt.Println("===== PLAIN TEXT DIGEST =====")
		fmt.Println()
		fmt.Println(plain)
		if htmlBody != "" {
			fmt.Println("===== HTML DIGEST (source) =====")
			fmt.Println()
			fmt.Println(htmlBody)
		}
		return nil
	}

	sender := mailer.NewSMTPMailer(mailer.SMTPConfig{
		Host:     a.smtp.Host,
		Port:     a.smtp.Port,
		Username: a.smtp.Username,
		Password: a.smtp.Password,
		Timeout:  30 * time.Second,
	})

	msg := mailer.Message{
		Subject:   CLI.Subject,
		From:      a.smtp.Sender(),
		To:        a.smtp.Recipients(),
		PlainBody: plain,
		HTMLBody:  htmlBody,
	}
	if err := sender.Send(ctx, msg); err != nil {
		return fmt.Errorf("send digest: %w", err)
	}

	logger.Info("digest delivered",
		slog.Int("items", len(items)),
		slog.Int("recipients", len(msg.To)))
	return nil
}

// runScheduled keeps the process alive and builds a digest on the cron
// schedule until the process receives SIGINT or SIGTERM.
func (a *application) runScheduled(schedule string) error {
	if err := config.ValidateCronSchedule(schedule); err != nil {
		return err
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	startMetricsServer(ctx, a.logger)

	c := cron.New(cron.WithLocation(a.loc))
	if _, err := c.AddFunc(schedule, func() {
		if err := a.runOnce(ctx); err != nil {
			a.logger.Error("scheduled digest failed", slog.Any("error", err))
		}
	}); err != nil {
		return fmt.Errorf("register cron job: %w", err)
	}

	c.Start()
	a.logger.Info("scheduler started",
		slog.String("schedule", schedule),
		slog.String("timezone", a.loc.String()))

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	<-stop

	a.logger.Info("scheduler shutting down")
	cancel()
	<-c.Stop().Done()
	return nil
}

// resolveLocation maps the timezone flag to a *time.Location.
// "Local" keeps the system time zone.
func resolveLocation(name string) (*time.Location, error) {
	if name == "" || name == "Local" {
		return time.Local, nil
	}
	if err := config.ValidateTimezone(name); err != nil {
		return nil, err
	}
	return time.LoadLocation(name)
}

// httpClient returns the shared client for feed retrieval. The client timeout
// is a backstop; each fetch also runs under the service's per-fetch context.
func httpClient() *http.Client {
	return &http.Client{Timeout: 20 * time.Second}
}
