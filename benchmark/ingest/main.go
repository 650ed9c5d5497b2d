package main

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log"
	"math"
	"math/rand"
	"net/http"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
)

var maxAssets int = 500
var rowsPerBatch int = 96
var batchesPerAsset int = 4
var httpHostPort string = "127.0.0.1:1080"
var grpcHostPort string = "127.0.0.1:10801"

// ids are offset so repeated runs against the same database do not collide
var idBase int = int(time.Now().Unix()%100000) * 10000

var rnd *rand.Rand = rand.New(rand.NewSource(time.Now().UnixNano()))
var rndMu sync.Mutex

var failures atomic.Int64

func main() {
	conn, err := grpc.NewClient(grpcHostPort, grpc.WithTransportCredentials(insecure.NewCredentials()))
	if err != nil {
		log.Fatal("Failed to connect to gRPC server:", err)
	}
	defer conn.Close()

	health, err := healthpb.NewHealthClient(conn).Check(context.Background(), &healthpb.HealthCheckRequest{})
	if err != nil || health.Status != healthpb.HealthCheckResponse_SERVING {
		log.Fatalf("storage not serving: status=%v err=%v", health.GetStatus(), err)
	}
	fmt.Printf("gRPC health verified\n")

	var startTime time.Time
	var usedTime time.Duration

	startTime = time.Now()
	registerCatalog()
	usedTime = time.Since(startTime)
	fmt.Printf("registered %v meters with one BESS asset each: used time=%v seconds\n", maxAssets, usedTime.Seconds())

	startTime = time.Now()
	wg := sync.WaitGroup{}
	for i := range maxAssets {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for b := range batchesPerAsset {
				postMeasurements(idBase+i, b)
			}
			fmt.Printf("\rinjected measurements for asset %v", i)
		}()
	}
	wg.Wait()
	usedTime = time.Since(startTime)

	rows := maxAssets * batchesPerAsset * rowsPerBatch
	fmt.Printf(
		"\rinjected %v rows: used time=%v seconds, throughput=%v rows/second\n",
		rows, usedTime.Seconds(), float64(rows)/usedTime.Seconds(),
	)

	startTime = time.Now()
	wg = sync.WaitGroup{}
	for i := range maxAssets {
		wg.Add(1)
		go func() {
			defer wg.Done()
			getSeries(idBase + i)
		}()
	}
	wg.Wait()
	usedTime = time.Since(startTime)

	fmt.Printf(
		"read %v pivoted series: used time=%v seconds, throughput=%v reads/second, failures=%v\n",
		maxAssets, usedTime.Seconds(), float64(maxAssets)/usedTime.Seconds(), failures.Load(),
	)
}

func rndFloat64(min, max float64, decimal int) float64 {
	rndMu.Lock()
	val := min + rnd.Float64()*(max-min)
	rndMu.Unlock()
	multiplier := math.Pow10(decimal)
	return math.Round(val*multiplier) / multiplier
}

func post(path string, payload any) (*http.Response, error) {
	jsonData, _ := json.Marshal(payload)
	req, err := http.NewRequest(http.MethodPost, fmt.Sprintf("http://%s%s", httpHostPort, path), bytes.NewBuffer(jsonData))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-Request-ID", uuid.NewString())
	return http.DefaultClient.Do(req)
}

func registerCatalog() {
	meters := make([]map[string]any, maxAssets)
	assets := make([]map[string]any, maxAssets)
	for i := range maxAssets {
		id := idBase + i
		meters[i] = map[string]any{"meter_id": id, "meter_type": "MAIN"}
		assets[i] = map[string]any{"asset_id": id, "asset_type": "BESS", "meter_id": id}
	}

	for _, step := range []struct {
		path    string
		payload any
	}{
		{"/catalogs/meters", meters},
		{"/catalogs/assets", assets},
	} {
		resp, err := post(step.path, step.payload)
		if err != nil {
			log.Fatal("Failed to register catalog:", err)
		}
		resp.Body.Close()
		if resp.StatusCode != http.StatusCreated {
			log.Fatalf("register %s: unexpected status %v", step.path, resp.StatusCode)
		}
	}
}

func postMeasurements(assetID, batch int) {
	start := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC).Add(time.Duration(batch*rowsPerBatch) * 15 * time.Minute)
	rows := make([]map[string]any, rowsPerBatch)
	for i := range rowsPerBatch {
		rows[i] = map[string]any{
			"asset_id":       assetID,
			"timestamp":      start.Add(time.Duration(i) * 15 * time.Minute).Format(time.RFC3339),
			"imported_power": rndFloat64(0, 500, 2),
			"exported_power": rndFloat64(0, 500, 2),
			"soc":            rndFloat64(0, 100, 1),
		}
	}

	resp, err := post("/measurements/storage", rows)
	if err != nil {
		failures.Add(1)
		fmt.Printf("\nerror: %v\n", err)
		return
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusCreated {
		failures.Add(1)
		fmt.Printf("\nresponse status code != 201: %v\n", resp.StatusCode)
	}
}

func getSeries(assetID int) {
	resp, err := http.Get(fmt.Sprintf("http://%s/measurements/storage?ref=%d&start_date=2024-01-01T00:00:00Z", httpHostPort, assetID))
	if err != nil {
		failures.Add(1)
		fmt.Printf("\nerror: %v\n", err)
		return
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		failures.Add(1)
		fmt.Printf("\nresponse status code != 200: %v\n", resp.StatusCode)
	}
}
