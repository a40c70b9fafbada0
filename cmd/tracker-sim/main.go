package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"math/rand"
	"os"
	"os/signal"
	"strings"
	"sync"
	"sync/atomic"
	"syscall"
	"time"

	"github.com/IBM/sarama"

	"github.com/hero-tracker/internal/domain"
)

func main() {
	// Command line flags
	brokers := flag.String("brokers", "localhost:9094", "Kafka brokers (comma-separated)")
	topic := flag.String("topic", "tracker-events", "Kafka topic")
	userID := flag.String("user", "", "User ID to emit events for (required)")
	date := flag.String("date", "", "Workout date YYYY-MM-DD (default: today)")
	targetKM := flag.Float64("target", 10.0, "Total distance to simulate in km")
	tickInterval := flag.Duration("interval", time.Second, "Interval between distance ticks")
	complete := flag.Bool("complete", true, "Emit a completed event after the target distance")
	flag.Parse()

	if *userID == "" {
		log.Fatal("the -user flag is required")
	}
	if *date == "" {
		*date = time.Now().Format("2006-01-02")
	}

	brokerList := strings.Split(*brokers, ",")

	fmt.Println("━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━")
	fmt.Println("  🏃 Tracker Event Simulator")
	fmt.Println("━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━")
	fmt.Printf("  Brokers:        %s\n", *brokers)
	fmt.Printf("  Topic:          %s\n", *topic)
	fmt.Printf("  User:           %s\n", *userID)
	fmt.Printf("  Date:           %s\n", *date)
	fmt.Printf("  Target:         %.1f km\n", *targetKM)
	fmt.Println("━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━")
	fmt.Println()

	// Configure Sarama producer
	config := sarama.NewConfig()
	config.Producer.RequiredAcks = sarama.WaitForLocal
	config.Producer.Compression = sarama.CompressionSnappy
	config.Producer.Flush.Frequency = 100 * time.Millisecond
	config.Producer.Return.Successes = true
	config.Producer.Return.Errors = true

	// Create producer
	producer, err := sarama.NewAsyncProducer(brokerList, config)
	if err != nil {
		log.Fatalf("Failed to create producer: %v", err)
	}
	defer producer.Close()

	// Handle producer errors and successes
	var successCount, errorCount int64
	var wg sync.WaitGroup

	wg.Add(1)
	go func() {
		defer wg.Done()
		for range producer.Successes() {
			atomic.AddInt64(&successCount, 1)
		}
	}()

	wg.Add(1)
	go func() {
		defer wg.Done()
		for err := range producer.Errors() {
			atomic.AddInt64(&errorCount, 1)
			log.Printf("Producer error: %v", err)
		}
	}()

	// Handle shutdown
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	done := make(chan struct{})

	// Send message helper
	sendEvent := func(event domain.TrackerEvent) {
		data, err := json.Marshal(event)
		if err != nil {
			log.Printf("Failed to marshal event: %v", err)
			return
		}

		msg := &sarama.ProducerMessage{
			Topic: *topic,
			Key:   sarama.StringEncoder(event.UserID),
			Value: sarama.ByteEncoder(data),
		}

		select {
		case producer.Input() <- msg:
		case <-done:
			return
		}
	}

	shutdown := func() {
		close(done)
		producer.AsyncClose()
		wg.Wait()
		fmt.Printf("\n✓ Completed. Sent: %d, Errors: %d\n",
			atomic.LoadInt64(&successCount), atomic.LoadInt64(&errorCount))
	}

	ticker := time.NewTicker(*tickInterval)
	defer ticker.Stop()

	fmt.Println("Emitting distance ticks (Ctrl+C to stop)")
	fmt.Println()

	var total float64
	for total < *targetKM {
		select {
		case <-sigChan:
			fmt.Println("\n\nShutting down...")
			shutdown()
			return

		case <-ticker.C:
			// 50 to 250 meters per tick, a plausible run pace
			delta := float64(rand.Intn(200)+50) / 1000.0
			if total+delta > *targetKM {
				delta = *targetKM - total
			}
			total += delta

			sendEvent(domain.TrackerEvent{
				UserID:     *userID,
				Date:       *date,
				DistanceKM: delta,
				EventType:  domain.TrackerEventDistance,
				Timestamp:  time.Now().Unix(),
			})
			fmt.Printf("\r  Distance: %.2f / %.1f km", total, *targetKM)
		}
	}
	fmt.Println()

	if *complete {
		fmt.Println("Target reached, emitting completed event")
		sendEvent(domain.TrackerEvent{
			UserID:    *userID,
			Date:      *date,
			EventType: domain.TrackerEventCompleted,
			Timestamp: time.Now().Unix(),
		})
	}

	shutdown()
}
