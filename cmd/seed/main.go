package main

import (
	"context"
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/brianvoe/gofakeit/v7"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/hackgods/appointment-calendar/internal/appointment"
	"github.com/hackgods/appointment-calendar/internal/config"
	"github.com/hackgods/appointment-calendar/internal/logger"
	"github.com/hackgods/appointment-calendar/internal/seed"
)

// seed writes a YAML fixture of fake, valid appointments that the api-server
// loads through SEED_FILE.
func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config load error: %v", err)
	}

	lg, err := logger.New(cfg.Env, cfg.LogLevel)
	if err != nil {
		log.Fatalf("logger init error: %v", err)
	}
	defer func() { _ = lg.Sync() }()

	calendars := getInt("SEED_CALENDARS", 3)
	perCalendar := getInt("SEED_PER_CALENDAR", 20)
	days := getInt("SEED_DAYS", 10)
	out := os.Getenv("SEED_OUT")
	if out == "" {
		out = "seed.yaml"
	}

	startDate := time.Now()
	if v := os.Getenv("SEED_START_DATE"); v != "" {
		startDate, err = time.ParseInLocation(appointment.DateLayout, v, time.Local)
		if err != nil {
			lg.Fatal("invalid SEED_START_DATE", zap.String("value", v), zap.Error(err))
		}
	}

	hours := appointment.WorkingHours{
		StartHour: cfg.WorkingHoursStart,
		EndHour:   cfg.WorkingHoursEnd,
		Strict:    cfg.WorkingHoursStrict,
	}

	lg.Info("seed starting",
		zap.Int("calendars", calendars),
		zap.Int("per_calendar", perCalendar),
		zap.Int("days", days),
	)

	faker := gofakeit.New(uint64(time.Now().UnixNano()))
	fixture := generate(context.Background(), faker, lg, hours, startDate, calendars, perCalendar, days)

	data, err := seed.Marshal(fixture)
	if err != nil {
		lg.Fatal("marshal fixture", zap.Error(err))
	}

	if err := os.WriteFile(out, data, 0o644); err != nil {
		lg.Fatal("write fixture", zap.String("path", out), zap.Error(err))
	}
	lg.Info("seed complete", zap.String("path", out))
}

var specialties = []string{
	"Dermatology",
	"Cardiology",
	"General Practice",
	"Orthopedics",
	"Endocrinology",
	"Neurology",
	"Pediatrics",
	"Psychiatry",
	"Ophthalmology",
	"ENT",
}

var notes = []string{
	"",
	"Routine checkup",
	"Follow-up appointment",
	"First visit",
	"Bring previous results",
}

// generate fills each calendar by proposing random slots and keeping the ones
// that commit, so the fixture always loads cleanly.
func generate(ctx context.Context, faker *gofakeit.Faker, lg *zap.Logger, hours appointment.WorkingHours,
	startDate time.Time, calendars, perCalendar, days int) map[string][]appointment.Appointment {
	out := make(map[string][]appointment.Appointment, calendars)
	opts := appointment.CommitOptions{Hours: hours}
	y, m, d := startDate.Date()
	firstDay := time.Date(y, m, d, 0, 0, 0, 0, time.Local)
	slots := (hours.EndHour - hours.StartHour) * 2

	for len(out) < calendars {
		if ctx.Err() != nil {
			break
		}
		lastName := faker.LastName()
		calendarID := "dr-" + strings.ToLower(lastName)
		if _, taken := out[calendarID]; taken {
			continue
		}
		doctor := "Dr. " + lastName
		specialty := faker.RandomString(specialties)

		var snap appointment.Snapshot
		for attempt := 0; len(snap) < perCalendar && attempt < perCalendar*10; attempt++ {
			day := firstDay.AddDate(0, 0, faker.Number(0, days-1))
			start := day.Add(time.Duration(hours.StartHour)*time.Hour + time.Duration(faker.Number(0, slots-1))*30*time.Minute)
			end := start.Add(time.Duration(faker.Number(1, 4)) * 30 * time.Minute)

			next, _, err := appointment.ValidateAndCommit(appointment.Appointment{
				Title:   specialty,
				Patient: faker.Name(),
				Doctor:  doctor,
				Notes:   faker.RandomString(notes),
				Start:   start,
				End:     end,
			}, snap, opts)
			if err != nil {
				continue
			}
			snap = next
		}

		// Ids are assigned again when the fixture is loaded.
		appts := make([]appointment.Appointment, len(snap))
		for i, a := range snap {
			a.ID = uuid.Nil
			appts[i] = a
		}
		out[calendarID] = appts
		lg.Info("calendar generated", zap.String("calendar_id", calendarID), zap.Int("appointments", len(appts)))
	}
	return out
}

func getInt(key string, def int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			return n
		}
	}
	return def
}
