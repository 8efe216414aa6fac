package main

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"text/tabwriter"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/jask/triage/internal/cards"
	"github.com/jask/triage/internal/config"
	"github.com/jask/triage/internal/database"
	"github.com/jask/triage/internal/database/repository"
	"github.com/jask/triage/internal/gesture"
	"github.com/jask/triage/internal/haptics"
	"github.com/jask/triage/internal/logging"
	"github.com/jask/triage/internal/observability"
	"github.com/jask/triage/internal/prefs"
	"github.com/jask/triage/internal/service"
	"github.com/jask/triage/internal/testdata"
	"github.com/jask/triage/internal/triage"
	"github.com/jask/triage/internal/tui"
)

var dbPath string

func main() {
	_ = godotenv.Load()

	rootCmd := &cobra.Command{
		Use:          "triage",
		Short:        "Swipe through your inbox one card at a time",
		SilenceUsage: true,
		RunE:         runTUI,
	}
	rootCmd.PersistentFlags().StringVar(&dbPath, "db", "", "database path (overrides config)")

	rootCmd.AddCommand(seedCmd())
	rootCmd.AddCommand(importCmd())
	rootCmd.AddCommand(journalCmd())
	rootCmd.AddCommand(resetCmd())
	rootCmd.AddCommand(configCmd())

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

type app struct {
	cfg    config.Config
	logger *zap.Logger
	db     *sql.DB
}

func setup() (*app, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}
	if dbPath != "" {
		cfg.Database.Path = dbPath
	}
	logger, err := logging.New(cfg.Log)
	if err != nil {
		return nil, err
	}
	db, err := database.Open(cfg.Database.Path)
	if err != nil {
		return nil, fmt.Errorf("open db: %w", err)
	}
	if err := database.RunMigrations(cfg.Database.Path); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}
	return &app{cfg: cfg, logger: logger, db: db}, nil
}

func (a *app) Close() {
	_ = a.db.Close()
	_ = a.logger.Sync()
}

func runTUI(cmd *cobra.Command, _ []string) error {
	a, err := setup()
	if err != nil {
		return err
	}
	defer a.Close()

	ctx, cancel := context.WithCancel(cmd.Context())
	defer cancel()

	cardRepo := repository.NewCardRepo(a.db)
	if seeded, err := database.SeedIfEmpty(ctx, a.db, testdata.Deck(time.Now())); err != nil {
		return fmt.Errorf("seed: %w", err)
	} else if seeded {
		a.logger.Info("seeded demo deck")
	}
	deck, err := loadDeck(ctx, cardRepo, a.logger)
	if err != nil {
		return err
	}

	saved, err := prefs.Load()
	if err != nil {
		a.logger.Warn("load prefs", zap.Error(err))
	}

	var port haptics.Port = haptics.Nop{}
	if a.cfg.Haptics.Bell {
		port = haptics.Bell{W: os.Stderr, Logger: a.logger}
	}
	buzz := &haptics.Switch{Enabled: a.cfg.Haptics.Enabled, Next: port}
	classifier := gesture.NewClassifier(gesture.Thresholds{
		Short:         a.cfg.Gesture.ShortThreshold,
		Long:          a.cfg.Gesture.LongThreshold,
		SnapZone:      a.cfg.Gesture.SnapZone,
		SnapOvershoot: a.cfg.Gesture.SnapOvershoot,
	}, buzz, a.logger)

	snoozeHours := a.cfg.Triage.DefaultSnoozeHours
	if saved.SnoozeHours > 0 {
		snoozeHours = saved.SnoozeHours
	}
	session := triage.NewSession(triage.Options{
		Classifier: classifier,
		Logger:     a.logger,
		Durations: triage.Durations{
			UndoWindow:   a.cfg.Triage.UndoWindow,
			AdvanceDelay: a.cfg.Triage.AdvanceDelay,
		},
		SkipThreshold:      a.cfg.Triage.SkipThreshold,
		Promo:              triage.NewPromoDetector(a.cfg.Triage.PromoKeywords, a.cfg.Triage.PromoMaxDistance),
		SnoozeDefaultHours: snoozeHours,
	})
	session.Subscribe(&service.JournalRecorder{
		Cards:   cardRepo,
		Journal: repository.NewJournalRepo(a.db),
		Logger:  a.logger,
	})
	collector := observability.NewCollector("triage")
	session.Subscribe(collector)

	if err := session.LoadCards(deck); err != nil {
		return err
	}
	if saved.LastCategory != "" {
		if c, err := cards.ParseCategory(saved.LastCategory); err == nil {
			_ = session.SelectCategory(c)
		}
	}

	if addr := a.cfg.Metrics.Addr; addr != "" {
		go func() {
			if err := observability.Serve(ctx, addr, observability.Router(collector), a.logger); err != nil {
				a.logger.Error("metrics server", zap.Error(err))
			}
		}()
	}

	model := tui.New(tui.Options{
		Session:    session,
		Haptics:    buzz,
		Logger:     a.logger,
		CellWidth:  a.cfg.Gesture.CellWidth,
		CellHeight: a.cfg.Gesture.CellHeight,
		SavePrefs:  prefs.Update,
	})
	p := tea.NewProgram(model, tea.WithAltScreen(), tea.WithMouseCellMotion())

	if w, err := config.Watch(config.Path(), a.logger, func(c config.Config) {
		p.Send(tui.ConfigMsg{Config: c})
	}); err != nil {
		a.logger.Warn("config watch disabled", zap.Error(err))
	} else {
		defer w.Stop()
	}

	_, err = p.Run()
	return err
}

// loadDeck reads the stored deck and readmits snoozes that have elapsed,
// writing the readmission back so the journal and the table agree.
func loadDeck(ctx context.Context, repo *repository.CardRepo, logger *zap.Logger) ([]cards.Card, error) {
	stored, err := repo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list cards: %w", err)
	}
	deck, n := cards.ReadmitElapsed(stored, time.Now())
	if n == 0 {
		return deck, nil
	}
	for i, c := range deck {
		if stored[i].State == c.State {
			continue
		}
		if err := repo.UpdateState(ctx, c.ID, c.State, nil); err != nil {
			return nil, fmt.Errorf("readmit %s: %w", c.ID, err)
		}
	}
	logger.Info("snoozed cards readmitted", zap.Int("count", n))
	return deck, nil
}

func seedCmd() *cobra.Command {
	var force bool
	cmd := &cobra.Command{
		Use:   "seed",
		Short: "Load the demo deck into an empty database",
		RunE: func(cmd *cobra.Command, _ []string) error {
			a, err := setup()
			if err != nil {
				return err
			}
			defer a.Close()
			if force {
				if err := (&service.MaintenanceService{DB: a.db}).Reset(cmd.Context()); err != nil {
					return err
				}
			}
			deck := testdata.Deck(time.Now())
			seeded, err := database.SeedIfEmpty(cmd.Context(), a.db, deck)
			if err != nil {
				return err
			}
			if !seeded {
				fmt.Println("Deck already has cards; use --force to replace it.")
				return nil
			}
			fmt.Printf("Seeded %d cards.\n", len(deck))
			return nil
		},
	}
	cmd.Flags().BoolVar(&force, "force", false, "wipe existing cards first")
	return cmd
}

func importCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "import [file]",
		Short: "Import cards from a YAML or JSON deck",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := setup()
			if err != nil {
				return err
			}
			defer a.Close()
			svc := &service.ImportService{Cards: repository.NewCardRepo(a.db), Logger: a.logger}
			res, err := svc.ImportFile(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			fmt.Printf("Imported %d, skipped %d, errors %d\n", res.Imported, res.Skipped, len(res.Errors))
			for _, e := range res.Errors {
				fmt.Println("  " + e.Error())
			}
			return nil
		},
	}
}

func journalCmd() *cobra.Command {
	var limit int
	cmd := &cobra.Command{
		Use:   "journal",
		Short: "Show recent triage actions",
		RunE: func(cmd *cobra.Command, _ []string) error {
			a, err := setup()
			if err != nil {
				return err
			}
			defer a.Close()
			entries, err := repository.NewJournalRepo(a.db).Recent(cmd.Context(), limit)
			if err != nil {
				return err
			}
			if len(entries) == 0 {
				fmt.Println("No actions yet.")
				return nil
			}
			tw := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
			fmt.Fprintln(tw, "WHEN\tCARD\tCATEGORY\tACTION\tSTATE\t")
			for _, e := range entries {
				label := e.Label
				if e.Undone {
					label += " (undone)"
				}
				fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s -> %s\t\n",
					e.CreatedAt.Local().Format(time.DateTime), e.CardID, e.Category.Title(), label, e.FromState, e.ToState)
			}
			return tw.Flush()
		},
	}
	cmd.Flags().IntVar(&limit, "limit", 20, "number of entries")
	return cmd
}

func resetCmd() *cobra.Command {
	var yes bool
	cmd := &cobra.Command{
		Use:   "reset",
		Short: "Delete every card and the action journal",
		RunE: func(cmd *cobra.Command, _ []string) error {
			if !yes {
				return fmt.Errorf("refusing to reset without --yes")
			}
			a, err := setup()
			if err != nil {
				return err
			}
			defer a.Close()
			if err := (&service.MaintenanceService{DB: a.db}).Reset(cmd.Context()); err != nil {
				return err
			}
			fmt.Println("Database reset.")
			return nil
		},
	}
	cmd.Flags().BoolVar(&yes, "yes", false, "confirm")
	return cmd
}

func configCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "config",
		Short: "Write the effective config to the config file if it does not exist",
		RunE: func(_ *cobra.Command, _ []string) error {
			path := config.Path()
			if _, err := os.Stat(path); err == nil {
				fmt.Println(path)
				return nil
			}
			cfg, err := config.Load()
			if err != nil {
				return err
			}
			if err := config.Save(cfg); err != nil {
				return err
			}
			fmt.Println("Wrote " + path)
			return nil
		},
	}
}
