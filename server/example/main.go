package main

import (
	"context"
	"flag"
	"log/slog"
	"net/http"
	"os"
	"time"

	"github.com/dailyflo/dailyflo/recurrence"
	"github.com/dailyflo/dailyflo/server"
	"github.com/dailyflo/dailyflo/server/auth"
	authmemory "github.com/dailyflo/dailyflo/server/auth/memory"
	"github.com/dailyflo/dailyflo/storage"
	"github.com/dailyflo/dailyflo/storage/memory"
	"github.com/dailyflo/dailyflo/storage/sqlite"
	"github.com/dailyflo/dailyflo/task"
)

func main() {
	configPath := flag.String("config", "", "path to YAML config file")
	flag.Parse()

	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelDebug}))

	cfg, err := server.LoadConfig(*configPath)
	if err != nil {
		logger.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	var store storage.Store
	if cfg.DatabasePath != "" {
		db, err := sqlite.New(cfg.DatabasePath)
		if err != nil {
			logger.Error("failed to open database", "path", cfg.DatabasePath, "error", err)
			os.Exit(1)
		}
		defer db.Close()
		store = db
	} else {
		mem := memory.New()
		seedTasks(mem, logger)
		store = mem
	}

	authStore := authmemory.New(authmemory.WithLogger(logger))
	authStore.AddUser("alice", "password")
	authStore.AddUser("bob", "password")

	handler := server.New(store,
		server.WithLogger(logger),
		server.WithWindowConfig(recurrence.WindowConfig{LookbackDays: cfg.LookbackDays}),
	)

	logger.Info("starting task server", "addr", cfg.Addr)
	err = http.ListenAndServe(cfg.Addr, auth.Middleware(authStore, cfg.Realm)(handler))
	if err != nil {
		logger.Error("server failed", "error", err)
		os.Exit(1)
	}
}

// seedTasks fills the in-memory store with sample data for Alice.
func seedTasks(store *memory.Store, logger *slog.Logger) {
	ctx := context.Background()
	now := time.Now()
	lastMonday := now.AddDate(0, 0, -int(now.Weekday()-time.Monday+7)%7)

	samples := []task.Task{
		{
			UserID:  "alice",
			Title:   "Water the plants",
			Routine: task.RoutineDaily,
			DueDate: timePtr(now.AddDate(0, 0, -30)),
			Time:    "09:00",
		},
		{
			UserID:  "alice",
			Title:   "Weekly review",
			Routine: task.RoutineWeekly,
			DueDate: timePtr(lastMonday.AddDate(0, 0, -28)),
			Time:    "17:30",
		},
		{
			UserID:  "alice",
			Title:   "Pay rent",
			Routine: task.RoutineMonthly,
			DueDate: timePtr(time.Date(now.Year()-1, time.January, 31, 0, 0, 0, 0, time.Local)),
		},
		{
			UserID:  "alice",
			Title:   "Pick up package",
			Routine: task.RoutineOnce,
			DueDate: timePtr(now.AddDate(0, 0, -3)),
		},
	}

	for i := range samples {
		if err := store.CreateTask(ctx, &samples[i]); err != nil {
			logger.Warn("failed to seed task", "title", samples[i].Title, "error", err)
		}
	}
}

func timePtr(t time.Time) *time.Time {
	return &t
}
