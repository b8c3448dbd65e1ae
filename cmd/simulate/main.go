package main

import (
	"bytes"
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"math/rand"
	"net/http"
	"sort"
	"sync"
	"sync/atomic"
	"time"

	"github.com/brianvoe/gofakeit/v7"
	"github.com/google/uuid"
)

// simulate fires deliberately colliding public bookings at a running API and
// reports how the contention resolved. Every worker aims at the same small
// window of slots, so most requests should come back 409.
type simConfig struct {
	baseURL  string
	slug     string
	workers  int
	duration time.Duration
	slots    int
}

type metrics struct {
	total     int64
	booked    int64
	conflict  int64
	quota     int64
	other     int64
	mu        sync.Mutex
	latencies []time.Duration
}

func (m *metrics) record(latency time.Duration, status int) {
	atomic.AddInt64(&m.total, 1)
	switch status {
	case http.StatusCreated:
		atomic.AddInt64(&m.booked, 1)
	case http.StatusConflict:
		atomic.AddInt64(&m.conflict, 1)
	case http.StatusUnprocessableEntity:
		atomic.AddInt64(&m.quota, 1)
	default:
		atomic.AddInt64(&m.other, 1)
	}
	m.mu.Lock()
	m.latencies = append(m.latencies, latency)
	m.mu.Unlock()
}

type publicInfo struct {
	Services []struct {
		ID uuid.UUID `json:"id"`
	} `json:"services"`
	Staff []struct {
		ID uuid.UUID `json:"id"`
	} `json:"staff"`
}

func main() {
	log.SetFlags(log.LstdFlags | log.Lshortfile)

	cfg := simConfig{}
	flag.StringVar(&cfg.baseURL, "base-url", "http://127.0.0.1:8080", "API base URL")
	flag.StringVar(&cfg.slug, "slug", "salon-bern", "salon slug to book against")
	flag.IntVar(&cfg.workers, "workers", 16, "concurrent workers")
	flag.DurationVar(&cfg.duration, "duration", 15*time.Second, "how long to run")
	flag.IntVar(&cfg.slots, "slots", 8, "number of distinct slots workers fight over")
	flag.Parse()

	info, err := fetchInfo(cfg)
	if err != nil {
		log.Fatalf("fetch salon info: %v", err)
	}
	if len(info.Services) == 0 || len(info.Staff) == 0 {
		log.Fatal("salon has no services or staff, run cmd/seed first")
	}

	log.Printf("simulating %d workers against %s/%s for %s", cfg.workers, cfg.baseURL, cfg.slug, cfg.duration)

	// All workers target the same day far in the future, so seeded data
	// never interferes.
	base := time.Now().UTC().Add(30 * 24 * time.Hour).Truncate(24 * time.Hour).Add(9 * time.Hour)

	m := &metrics{}
	deadline := time.Now().Add(cfg.duration)
	var wg sync.WaitGroup
	for w := 0; w < cfg.workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			client := &http.Client{Timeout: 10 * time.Second}
			for time.Now().Before(deadline) {
				slot := base.Add(time.Duration(rand.Intn(cfg.slots)) * time.Hour)
				fire(client, cfg, info, slot, m)
			}
		}()
	}
	wg.Wait()

	report(m)
}

func fetchInfo(cfg simConfig) (*publicInfo, error) {
	resp, err := http.Get(fmt.Sprintf("%s/public/%s/info", cfg.baseURL, cfg.slug))
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("status %d", resp.StatusCode)
	}

	var info publicInfo
	if err := json.NewDecoder(resp.Body).Decode(&info); err != nil {
		return nil, err
	}
	return &info, nil
}

func fire(client *http.Client, cfg simConfig, info *publicInfo, slot time.Time, m *metrics) {
	body, _ := json.Marshal(map[string]any{
		"service_id":    info.Services[rand.Intn(len(info.Services))].ID,
		"staff_id":      info.Staff[rand.Intn(len(info.Staff))].ID,
		"start_at":      slot.Format(time.RFC3339),
		"customer_name": gofakeit.Name(),
	})

	start := time.Now()
	resp, err := client.Post(
		fmt.Sprintf("%s/public/%s/appointments", cfg.baseURL, cfg.slug),
		"application/json",
		bytes.NewReader(body),
	)
	if err != nil {
		m.record(time.Since(start), 0)
		return
	}
	resp.Body.Close()
	m.record(time.Since(start), resp.StatusCode)
}

func report(m *metrics) {
	m.mu.Lock()
	latencies := append([]time.Duration(nil), m.latencies...)
	m.mu.Unlock()
	sort.Slice(latencies, func(i, j int) bool { return latencies[i] < latencies[j] })

	pct := func(p float64) time.Duration {
		if len(latencies) == 0 {
			return 0
		}
		idx := int(float64(len(latencies)-1) * p)
		return latencies[idx]
	}

	log.Printf("total=%d booked=%d conflict=%d quota=%d other=%d",
		m.total, m.booked, m.conflict, m.quota, m.other)
	log.Printf("latency p50=%s p95=%s p99=%s", pct(0.50), pct(0.95), pct(0.99))
}
