package main

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"math/rand"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/google/uuid"
	"github.com/segmentio/kafka-go"

	"github.com/procsight/procsight/internal/telemetry"
)

const (
	kafkaBroker = "localhost:9092"
	topic       = "process-telemetry"

	processCount = 8
)

// fakeProcess is one synthetic monitored process.
type fakeProcess struct {
	id       string
	pid      float64
	name     string
	baseCPU  float64 // zero for idle processes
	baseRSS  float64
	hasGPU   bool
	reported bool // identity attributes sent
}

func main() {
	writer := &kafka.Writer{
		Addr:     kafka.TCP(kafkaBroker),
		Topic:    topic,
		Balancer: &kafka.LeastBytes{},
	}
	defer func() {
		if err := writer.Close(); err != nil {
			log.Fatalf("Error closing kafka writer: %v", err)
		}
	}()

	sessionID := uuid.NewString()
	log.Printf("Starting sampler for session %s on topic %s (broker %s)", sessionID, topic, kafkaBroker)

	// Handle graceful shutdown
	ctx, cancel := context.WithCancel(context.Background())
	signals := make(chan os.Signal, 1)
	signal.Notify(signals, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		<-signals
		log.Println("Shutdown signal received, stopping sampler...")
		cancel()
	}()

	rng := rand.New(rand.NewSource(time.Now().UnixNano()))
	procs := makeProcesses(rng)

	ticker := time.NewTicker(1 * time.Second)
	defer ticker.Stop()

	step := 0.0
	for {
		select {
		case <-ticker.C:
			env := telemetry.Envelope{
				SessionID: sessionID,
				Series:    sampleBatch(rng, procs, step),
			}
			step++

			msgBytes, err := json.Marshal(env)
			if err != nil {
				log.Printf("Error marshalling envelope: %v", err)
				continue
			}

			if err := writer.WriteMessages(ctx, kafka.Message{Value: msgBytes}); err != nil {
				if ctx.Err() != nil {
					log.Println("Context cancelled, exiting message loop.")
					return
				}
				log.Printf("Error writing message: %v", err)
			} else {
				log.Printf("Produced batch: step=%v keys=%d", step, len(env.Series))
			}

		case <-ctx.Done():
			log.Println("Sampler loop stopped.")
			return
		}
	}
}

func makeProcesses(rng *rand.Rand) []*fakeProcess {
	procs := make([]*fakeProcess, 0, processCount)
	for i := 0; i < processCount; i++ {
		pid := float64(1000 + rng.Intn(30000))
		p := &fakeProcess{
			id:      fmt.Sprintf("%s.%d", telemetry.TypeProcess, int(pid)),
			pid:     pid,
			name:    fmt.Sprintf("worker-%d", i),
			baseCPU: 5 + rng.Float64()*60,
			baseRSS: 100e6 + rng.Float64()*900e6,
			hasGPU:  i%3 == 0,
		}
		if i%4 == 0 {
			p.baseCPU = 0 // idle process, lands in the zero-cpu table
		}
		procs = append(procs, p)
	}
	return procs
}

func sampleBatch(rng *rand.Rand, procs []*fakeProcess, step float64) telemetry.Batch {
	batch := telemetry.Batch{}
	steps := []float64{step}

	for _, p := range procs {
		if !p.reported {
			batch[p.id+".name"] = sample(steps, p.name)
			batch[p.id+".exe"] = sample(steps, "/usr/bin/"+p.name)
			batch[p.id+".cmdline"] = sample(steps, p.name+" --serve")
			batch[p.id+".create_time"] = sample(steps, float64(time.Now().Unix()))
			batch[p.id+".pid"] = sample(steps, p.pid)
			batch[p.id+".ppids"] = sample(steps, 1.0)
			batch[p.id+".dead"] = sample(steps, false)
			p.reported = true
		}

		cpu := p.baseCPU
		if cpu > 0 {
			cpu += rng.NormFloat64() * 2
			if cpu < 0 {
				cpu = 0
			}
		}
		batch[p.id+".cpu"] = sample(steps, cpu)
		batch[p.id+".rss"] = sample(steps, p.baseRSS+rng.Float64()*10e6)
		batch[p.id+".vms"] = sample(steps, p.baseRSS*2)
		batch[p.id+".threads"] = sample(steps, float64(4+rng.Intn(12)))
		batch[p.id+".user"] = sample(steps, cpu*0.7)
		batch[p.id+".system"] = sample(steps, cpu*0.3)

		if p.hasGPU {
			batch[p.id+".gpu.0.mem"] = sample(steps, 200e6+rng.Float64()*50e6)
		}
	}
	return batch
}

func sample(steps []float64, value interface{}) telemetry.SamplePayload {
	return telemetry.SamplePayload{Step: steps, Value: []interface{}{value}}
}
