package main

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"log"
	"math/rand"
	"net/http"
	"os"
	"sort"
	"strconv"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/brianvoe/gofakeit/v7"
	"github.com/goccy/go-json"
	"github.com/google/uuid"
)

type SimConfig struct {
	APIBaseURL   string
	Calendar     string
	Duration     time.Duration
	Workers      int
	CreateRatio  float64
	UpdateRatio  float64
	DeleteRatio  float64
	ReadRatio    float64
	StartDate    time.Time
	DaysInWindow int
}

type DataPool struct {
	mu           sync.RWMutex
	appointments []uuid.UUID
}

func (dp *DataPool) AddAppointment(id uuid.UUID) {
	dp.mu.Lock()
	defer dp.mu.Unlock()
	dp.appointments = append(dp.appointments, id)
}

func (dp *DataPool) RemoveAppointment(id uuid.UUID) {
	dp.mu.Lock()
	defer dp.mu.Unlock()
	for i, a := range dp.appointments {
		if a == id {
			dp.appointments = append(dp.appointments[:i], dp.appointments[i+1:]...)
			return
		}
	}
}

func (dp *DataPool) GetRandomAppointment(rng *rand.Rand) (uuid.UUID, bool) {
	dp.mu.RLock()
	defer dp.mu.RUnlock()
	if len(dp.appointments) == 0 {
		return uuid.Nil, false
	}
	return dp.appointments[rng.Intn(len(dp.appointments))], true
}

func (dp *DataPool) Len() int {
	dp.mu.RLock()
	defer dp.mu.RUnlock()
	return len(dp.appointments)
}

// OperationMetrics counts outcomes of one kind of request. Conflicts are
// overlap or lock contention (409), rejections are working-hours or interval
// failures (422).
type OperationMetrics struct {
	Total     int64
	Success   int64
	Conflict  int64
	Rejected  int64
	Error     int64
	Latencies []time.Duration
	mu        sync.Mutex
}

func (om *OperationMetrics) Record(latency time.Duration, status int, err error) {
	atomic.AddInt64(&om.Total, 1)
	switch {
	case err != nil:
		atomic.AddInt64(&om.Error, 1)
	case status >= 200 && status < 300:
		atomic.AddInt64(&om.Success, 1)
	case status == http.StatusConflict:
		atomic.AddInt64(&om.Conflict, 1)
	case status == http.StatusUnprocessableEntity:
		atomic.AddInt64(&om.Rejected, 1)
	default:
		atomic.AddInt64(&om.Error, 1)
	}

	om.mu.Lock()
	om.Latencies = append(om.Latencies, latency)
	om.mu.Unlock()
}

func (om *OperationMetrics) Stats() (avg, min, max, p50, p95 time.Duration) {
	om.mu.Lock()
	defer om.mu.Unlock()

	if len(om.Latencies) == 0 {
		return 0, 0, 0, 0, 0
	}

	latencies := make([]time.Duration, len(om.Latencies))
	copy(latencies, om.Latencies)
	sort.Slice(latencies, func(i, j int) bool {
		return latencies[i] < latencies[j]
	})

	var sum time.Duration
	for _, l := range latencies {
		sum += l
	}

	avg = sum / time.Duration(len(latencies))
	min = latencies[0]
	max = latencies[len(latencies)-1]
	p50 = latencies[percentileIndex(len(latencies), 50)]
	p95 = latencies[percentileIndex(len(latencies), 95)]
	return avg, min, max, p50, p95
}

func percentileIndex(n, p int) int {
	idx := n * p / 100
	if idx >= n {
		idx = n - 1
	}
	return idx
}

type Metrics struct {
	Create OperationMetrics
	Update OperationMetrics
	Delete OperationMetrics
	List   OperationMetrics
	Export OperationMetrics
}

type Simulator struct {
	config  SimConfig
	pool    *DataPool
	client  *http.Client
	metrics Metrics
}

type appointmentBody struct {
	Title     string `json:"title"`
	Patient   string `json:"patient"`
	Doctor    string `json:"doctor"`
	Notes     string `json:"notes"`
	Date      string `json:"date"`
	StartTime string `json:"start_time"`
	EndTime   string `json:"end_time"`
}

func main() {
	log.SetFlags(log.LstdFlags | log.Lshortfile)
	log.Println("simulator starting")

	cfg := loadConfig()
	if err := validateConfig(cfg); err != nil {
		log.Fatalf("invalid config: %v", err)
	}

	log.Printf("config: calendar=%s duration=%s workers=%d create=%.2f update=%.2f delete=%.2f read=%.2f",
		cfg.Calendar, cfg.Duration, cfg.Workers, cfg.CreateRatio, cfg.UpdateRatio, cfg.DeleteRatio, cfg.ReadRatio)

	sim := &Simulator{
		config: cfg,
		pool:   &DataPool{},
		client: &http.Client{Timeout: 10 * time.Second},
	}

	sim.Run()
	sim.PrintReport()
}

func loadConfig() SimConfig {
	start := time.Now()
	if v := os.Getenv("SIM_START_DATE"); v != "" {
		if d, err := time.ParseInLocation("2006-01-02", v, time.Local); err == nil {
			start = d
		}
	}

	cfg := SimConfig{
		APIBaseURL:   getEnv("SIM_API_BASE_URL", "http://localhost:8080"),
		Calendar:     getEnv("SIM_CALENDAR", "simulation"),
		Duration:     getDuration("SIM_DURATION", 30*time.Second),
		Workers:      getInt("SIM_WORKERS", 10),
		CreateRatio:  getFloat("SIM_CREATE_RATIO", 0.5),
		UpdateRatio:  getFloat("SIM_UPDATE_RATIO", 0.15),
		DeleteRatio:  getFloat("SIM_DELETE_RATIO", 0.05),
		ReadRatio:    getFloat("SIM_READ_RATIO", 0.3),
		StartDate:    start,
		DaysInWindow: getInt("SIM_DAYS", 5),
	}

	total := cfg.CreateRatio + cfg.UpdateRatio + cfg.DeleteRatio + cfg.ReadRatio
	if total > 0 {
		cfg.CreateRatio /= total
		cfg.UpdateRatio /= total
		cfg.DeleteRatio /= total
		cfg.ReadRatio /= total
	}

	return cfg
}

func validateConfig(cfg SimConfig) error {
	if cfg.Workers <= 0 {
		return fmt.Errorf("SIM_WORKERS must be > 0")
	}
	if cfg.Duration <= 0 {
		return fmt.Errorf("SIM_DURATION must be > 0")
	}
	if cfg.DaysInWindow <= 0 {
		return fmt.Errorf("SIM_DAYS must be > 0")
	}
	if cfg.Calendar == "" {
		return fmt.Errorf("SIM_CALENDAR must not be empty")
	}
	return nil
}

func (s *Simulator) Run() {
	ctx, cancel := context.WithTimeout(context.Background(), s.config.Duration)
	defer cancel()

	log.Printf("starting simulation for %s with %d workers", s.config.Duration, s.config.Workers)

	var wg sync.WaitGroup
	for i := 0; i < s.config.Workers; i++ {
		wg.Add(1)
		go func(workerID int) {
			defer wg.Done()
			s.worker(ctx, workerID)
		}(i)
	}

	wg.Wait()
	log.Printf("simulation complete, %d appointments left on %s", s.pool.Len(), s.config.Calendar)
}

func (s *Simulator) worker(ctx context.Context, workerID int) {
	seed := time.Now().UnixNano() + int64(workerID)
	rng := rand.New(rand.NewSource(seed))
	faker := gofakeit.New(uint64(seed))

	c := s.config
	for {
		select {
		case <-ctx.Done():
			return
		default:
			r := rng.Float64()
			switch {
			case r < c.CreateRatio:
				s.doCreate(ctx, rng, faker)
			case r < c.CreateRatio+c.UpdateRatio:
				s.doUpdate(ctx, rng, faker)
			case r < c.CreateRatio+c.UpdateRatio+c.DeleteRatio:
				s.doDelete(ctx, rng)
			default:
				if rng.Intn(4) == 0 {
					s.doExport(ctx)
				} else {
					s.doList(ctx, rng)
				}
			}
		}
	}
}

// randomBody picks a slot on a day in the window. Start hours run from 7 to
// 17 so some requests land outside working hours on purpose.
func (s *Simulator) randomBody(rng *rand.Rand, faker *gofakeit.Faker) appointmentBody {
	day := s.config.StartDate.AddDate(0, 0, rng.Intn(s.config.DaysInWindow))
	startMin := (7*60 + rng.Intn(21)*30)
	length := 30 * (1 + rng.Intn(4))
	endMin := startMin + length

	return appointmentBody{
		Title:     "Visit: " + faker.Noun(),
		Patient:   faker.Name(),
		Doctor:    "Dr. " + faker.LastName(),
		Notes:     faker.Verb() + " " + faker.Noun(),
		Date:      day.Format("2006-01-02"),
		StartTime: fmt.Sprintf("%02d:%02d", startMin/60, startMin%60),
		EndTime:   fmt.Sprintf("%02d:%02d", (endMin/60)%24, endMin%60),
	}
}

func (s *Simulator) doCreate(ctx context.Context, rng *rand.Rand, faker *gofakeit.Faker) {
	body, _ := json.Marshal(s.randomBody(rng, faker))

	start := time.Now()
	status, respBody, err := s.send(ctx, http.MethodPost, s.appointmentsURL(""), body)
	latency := time.Since(start)

	if err == nil && status == http.StatusCreated {
		var created struct {
			ID uuid.UUID `json:"id"`
		}
		if json.Unmarshal(respBody, &created) == nil && created.ID != uuid.Nil {
			s.pool.AddAppointment(created.ID)
		}
	}

	s.metrics.Create.Record(latency, status, err)
}

func (s *Simulator) doUpdate(ctx context.Context, rng *rand.Rand, faker *gofakeit.Faker) {
	id, ok := s.pool.GetRandomAppointment(rng)
	if !ok {
		return
	}
	body, _ := json.Marshal(s.randomBody(rng, faker))

	start := time.Now()
	status, _, err := s.send(ctx, http.MethodPut, s.appointmentsURL("/"+id.String()), body)
	s.metrics.Update.Record(time.Since(start), status, err)
}

func (s *Simulator) doDelete(ctx context.Context, rng *rand.Rand) {
	id, ok := s.pool.GetRandomAppointment(rng)
	if !ok {
		return
	}

	start := time.Now()
	status, _, err := s.send(ctx, http.MethodDelete, s.appointmentsURL("/"+id.String()), nil)
	if err == nil && status == http.StatusNoContent {
		s.pool.RemoveAppointment(id)
	}
	s.metrics.Delete.Record(time.Since(start), status, err)
}

func (s *Simulator) doList(ctx context.Context, rng *rand.Rand) {
	views := []string{"day", "week", "month"}
	day := s.config.StartDate.AddDate(0, 0, rng.Intn(s.config.DaysInWindow))
	query := fmt.Sprintf("?view=%s&date=%s", views[rng.Intn(len(views))], day.Format("2006-01-02"))

	start := time.Now()
	status, _, err := s.send(ctx, http.MethodGet, s.appointmentsURL(query), nil)
	s.metrics.List.Record(time.Since(start), status, err)
}

func (s *Simulator) doExport(ctx context.Context) {
	url := fmt.Sprintf("%s/calendars/%s/appointments.ics", s.config.APIBaseURL, s.config.Calendar)

	start := time.Now()
	status, _, err := s.send(ctx, http.MethodGet, url, nil)
	s.metrics.Export.Record(time.Since(start), status, err)
}

func (s *Simulator) appointmentsURL(suffix string) string {
	return fmt.Sprintf("%s/calendars/%s/appointments%s", s.config.APIBaseURL, s.config.Calendar, suffix)
}

func (s *Simulator) send(ctx context.Context, method, url string, body []byte) (int, []byte, error) {
	var reader io.Reader
	if body != nil {
		reader = bytes.NewReader(body)
	}

	req, err := http.NewRequestWithContext(ctx, method, url, reader)
	if err != nil {
		return 0, nil, err
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := s.client.Do(req)
	if err != nil {
		return 0, nil, err
	}
	defer resp.Body.Close()

	respBody, _ := io.ReadAll(resp.Body)
	return resp.StatusCode, respBody, nil
}

func (s *Simulator) PrintReport() {
	fmt.Println("\n" + strings.Repeat("=", 80))
	fmt.Println("SIMULATION REPORT")
	fmt.Println(strings.Repeat("=", 80))
	fmt.Printf("Calendar: %s\n", s.config.Calendar)
	fmt.Printf("Duration: %s\n", s.config.Duration)
	fmt.Printf("Workers: %d\n", s.config.Workers)
	fmt.Println()

	printOperationReport("Create", &s.metrics.Create)
	printOperationReport("Update", &s.metrics.Update)
	printOperationReport("Delete", &s.metrics.Delete)
	printOperationReport("List view", &s.metrics.List)
	printOperationReport("ICS export", &s.metrics.Export)
}

func printOperationReport(name string, om *OperationMetrics) {
	total := atomic.LoadInt64(&om.Total)
	if total == 0 {
		return
	}

	success := atomic.LoadInt64(&om.Success)
	conflict := atomic.LoadInt64(&om.Conflict)
	rejected := atomic.LoadInt64(&om.Rejected)
	failed := atomic.LoadInt64(&om.Error)

	avg, min, max, p50, p95 := om.Stats()

	pct := func(n int64) float64 { return float64(n) / float64(total) * 100 }

	fmt.Printf("%s:\n", name)
	fmt.Printf("  Total: %d\n", total)
	fmt.Printf("  Success: %d (%.1f%%)\n", success, pct(success))
	if conflict > 0 {
		fmt.Printf("  Conflicts: %d (%.1f%%)\n", conflict, pct(conflict))
	}
	if rejected > 0 {
		fmt.Printf("  Out of hours / invalid: %d (%.1f%%)\n", rejected, pct(rejected))
	}
	if failed > 0 {
		fmt.Printf("  Errors: %d (%.1f%%)\n", failed, pct(failed))
	}
	fmt.Printf("  Latency: avg=%s min=%s max=%s p50=%s p95=%s\n",
		avg.Round(time.Millisecond), min.Round(time.Millisecond), max.Round(time.Millisecond),
		p50.Round(time.Millisecond), p95.Round(time.Millisecond))
	fmt.Println()
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getDuration(key string, def time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return def
}

func getInt(key string, def int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return def
}

func getFloat(key string, def float64) float64 {
	if v := os.Getenv(key); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			return f
		}
	}
	return def
}
