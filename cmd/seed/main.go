package main

import (
	"context"
	"log"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/noah-isme/slot-booking-api/db/migrations"
	"github.com/noah-isme/slot-booking-api/internal/dto"
	"github.com/noah-isme/slot-booking-api/internal/repository"
	"github.com/noah-isme/slot-booking-api/internal/service"
	"github.com/noah-isme/slot-booking-api/pkg/config"
	"github.com/noah-isme/slot-booking-api/pkg/database"
	"github.com/noah-isme/slot-booking-api/pkg/logger"
	"github.com/noah-isme/slot-booking-api/pkg/validation"
)

var dailyWindows = []dto.SlotWindow{
	{StartTime: "09:00", EndTime: "09:30"},
	{StartTime: "10:00", EndTime: "10:30"},
	{StartTime: "14:00", EndTime: "14:30"},
	{StartTime: "15:00", EndTime: "15:30"},
}

// plan returns one create-slots request per day, starting the day after today.
func plan(today time.Time, days int) []dto.CreateSlotsRequest {
	if days < 0 {
		days = 0
	}
	out := make([]dto.CreateSlotsRequest, 0, days)
	for i := 1; i <= days; i++ {
		windows := make([]dto.SlotWindow, len(dailyWindows))
		copy(windows, dailyWindows)
		out = append(out, dto.CreateSlotsRequest{
			Date:  today.AddDate(0, 0, i).Format(validation.DateLayout),
			Slots: windows,
		})
	}
	return out
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	logr, err := logger.New(cfg)
	if err != nil {
		log.Fatalf("failed to init logger: %v", err)
	}
	defer logr.Sync() //nolint:errcheck

	db, err := database.NewPostgres(cfg.Database)
	if err != nil {
		logr.Fatal("connect postgres", zap.Error(err))
	}
	defer db.Close()

	ctx := context.Background()
	if _, err := database.Migrate(ctx, db, migrations.FS); err != nil {
		logr.Fatal("apply migrations", zap.Error(err))
	}

	owner := cfg.Seed.OwnerID
	if owner == "" {
		owner = uuid.NewString()
	}

	slots := service.NewSlotService(repository.NewTimeSlotRepository(db), nil, nil, validation.New(), logr)
	created := 0
	for _, req := range plan(time.Now(), cfg.Seed.Days) {
		resp, err := slots.CreateSlots(ctx, owner, req)
		if err != nil {
			logr.Fatal("seed slots", zap.String("date", req.Date), zap.Error(err))
		}
		created += len(resp.Slots)
	}

	logr.Info("seed complete", zap.String("owner_id", owner), zap.Int("slots", created), zap.Int("days", cfg.Seed.Days))
}
