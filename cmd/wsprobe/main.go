// Command wsprobe is a load and smoke testing tool for the websocket
// endpoints: it floods a chat room with clients and optionally watches
// the live feed, reporting delivery counts at the end.
package main

import (
	"bytes"
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"net/http"
	"net/url"
	"os"
	"os/signal"
	"sync"
	"sync/atomic"
	"syscall"
	"time"

	"github.com/gorilla/websocket"
	"gopkg.in/yaml.v3"
)

// Scenario is an optional YAML description of a probe run, so repeated
// load profiles don't have to be retyped as flags.
type Scenario struct {
	Host        string `yaml:"host"`
	Clients     int    `yaml:"clients"`
	FeedClients int    `yaml:"feed_clients"`
	Duration    string `yaml:"duration"`
	Interval    string `yaml:"interval"`
}

func loadScenario(path string) (*Scenario, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var sc Scenario
	if err := yaml.Unmarshal(raw, &sc); err != nil {
		return nil, fmt.Errorf("parse scenario %s: %w", path, err)
	}
	return &sc, nil
}

func parseDurationField(name, value string) time.Duration {
	d, err := time.ParseDuration(value)
	if err != nil {
		log.Fatalf("Invalid %s in scenario: %v", name, err)
	}
	return d
}

// Metrics tracks the probe results.
type Metrics struct {
	ConnectionsAttempted int64
	ConnectionsSuccess   int64
	ConnectionsFailed    int64
	MessagesSent         int64
	MessagesReceived     int64
	SystemNotices        int64
	Errors               int64
}

var metrics Metrics

func main() {
	host := flag.String("host", "localhost:8375", "API server host")
	clients := flag.Int("clients", 20, "Number of concurrent room clients")
	feedClients := flag.Int("feed", 5, "Number of feed observers")
	duration := flag.Duration("duration", 30*time.Second, "Probe duration")
	interval := flag.Duration("interval", 2*time.Second, "Per-client send interval")
	scenario := flag.String("scenario", "", "Path to a YAML scenario file (overrides flags)")
	flag.Parse()

	if *scenario != "" {
		sc, err := loadScenario(*scenario)
		if err != nil {
			log.Fatalf("Failed to load scenario: %v", err)
		}
		if sc.Host != "" {
			*host = sc.Host
		}
		if sc.Clients > 0 {
			*clients = sc.Clients
		}
		if sc.FeedClients > 0 {
			*feedClients = sc.FeedClients
		}
		if sc.Duration != "" {
			*duration = parseDurationField("duration", sc.Duration)
		}
		if sc.Interval != "" {
			*interval = parseDurationField("interval", sc.Interval)
		}
	}

	log.Printf("Starting websocket probe against %s", *host)

	roomID, err := createRoom(*host)
	if err != nil {
		log.Fatalf("Failed to create room: %v", err)
	}
	log.Printf("Created room %s", roomID)

	interrupt := make(chan os.Signal, 1)
	signal.Notify(interrupt, os.Interrupt, syscall.SIGTERM)

	var wg sync.WaitGroup
	stopChan := make(chan struct{})

	for i := 0; i < *feedClients; i++ {
		wg.Add(1)
		go runFeedClient(*host, i, stopChan, &wg)
	}
	for i := 0; i < *clients; i++ {
		wg.Add(1)
		go runRoomClient(*host, roomID, i, *interval, stopChan, &wg)
		time.Sleep(25 * time.Millisecond)
	}

	select {
	case <-time.After(*duration):
		log.Println("Probe duration reached")
	case <-interrupt:
		log.Println("Interrupted")
	}

	close(stopChan)
	wg.Wait()
	printMetrics()
}

func createRoom(host string) (string, error) {
	token, err := login(host)
	if err != nil {
		return "", err
	}

	req, err := http.NewRequest(http.MethodPost, "http://"+host+"/api/rooms", bytes.NewReader(nil))
	if err != nil {
		return "", err
	}
	req.Header.Set("Authorization", "Bearer "+token)

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusCreated {
		return "", fmt.Errorf("unexpected status %d", resp.StatusCode)
	}

	var body struct {
		RoomID string `json:"room_id"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return "", err
	}
	return body.RoomID, nil
}

func login(host string) (string, error) {
	payload, _ := json.Marshal(map[string]string{
		"username": "wsprobe",
		"email":    "wsprobe@example.com",
		"password": "password123",
	})

	// Try signup first; fall back to login if the account exists.
	for _, path := range []string{"/api/auth/signup", "/api/auth/login"} {
		resp, err := http.Post("http://"+host+path, "application/json", bytes.NewReader(payload))
		if err != nil {
			return "", err
		}
		var body struct {
			Token string `json:"token"`
		}
		err = json.NewDecoder(resp.Body).Decode(&body)
		resp.Body.Close()
		if err == nil && body.Token != "" {
			return body.Token, nil
		}
	}
	return "", fmt.Errorf("could not obtain token")
}

func runRoomClient(host, roomID string, id int, interval time.Duration, stop <-chan struct{}, wg *sync.WaitGroup) {
	defer wg.Done()
	atomic.AddInt64(&metrics.ConnectionsAttempted, 1)

	u := url.URL{
		Scheme:   "ws",
		Host:     host,
		Path:     "/api/ws/rooms/" + roomID,
		RawQuery: "username=" + fmt.Sprintf("prober%d", id),
	}
	conn, _, err := websocket.DefaultDialer.Dial(u.String(), nil)
	if err != nil {
		atomic.AddInt64(&metrics.ConnectionsFailed, 1)
		return
	}
	atomic.AddInt64(&metrics.ConnectionsSuccess, 1)
	defer conn.Close()

	go func() {
		for {
			_, msg, err := conn.ReadMessage()
			if err != nil {
				return
			}
			atomic.AddInt64(&metrics.MessagesReceived, 1)
			if bytes.HasPrefix(msg, []byte("[system] ")) {
				atomic.AddInt64(&metrics.SystemNotices, 1)
			}
		}
	}()

	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	seq := 0
	for {
		select {
		case <-stop:
			_ = conn.WriteMessage(websocket.CloseMessage,
				websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
			return
		case <-ticker.C:
			seq++
			msg := fmt.Sprintf("probe message %d from client %d", seq, id)
			if err := conn.WriteMessage(websocket.TextMessage, []byte(msg)); err != nil {
				atomic.AddInt64(&metrics.Errors, 1)
				return
			}
			atomic.AddInt64(&metrics.MessagesSent, 1)
		}
	}
}

func runFeedClient(host string, id int, stop <-chan struct{}, wg *sync.WaitGroup) {
	defer wg.Done()
	atomic.AddInt64(&metrics.ConnectionsAttempted, 1)

	u := url.URL{Scheme: "ws", Host: host, Path: "/api/ws/feed"}
	conn, _, err := websocket.DefaultDialer.Dial(u.String(), nil)
	if err != nil {
		atomic.AddInt64(&metrics.ConnectionsFailed, 1)
		return
	}
	atomic.AddInt64(&metrics.ConnectionsSuccess, 1)
	defer conn.Close()

	done := make(chan struct{})
	go func() {
		defer close(done)
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
			atomic.AddInt64(&metrics.MessagesReceived, 1)
		}
	}()

	select {
	case <-stop:
		_ = conn.WriteMessage(websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
	case <-done:
	}
	_ = id
}

func printMetrics() {
	log.Println("=== Probe results ===")
	log.Printf("Connections: %d attempted, %d ok, %d failed",
		atomic.LoadInt64(&metrics.ConnectionsAttempted),
		atomic.LoadInt64(&metrics.ConnectionsSuccess),
		atomic.LoadInt64(&metrics.ConnectionsFailed))
	log.Printf("Messages: %d sent, %d received (%d system notices)",
		atomic.LoadInt64(&metrics.MessagesSent),
		atomic.LoadInt64(&metrics.MessagesReceived),
		atomic.LoadInt64(&metrics.SystemNotices))
	log.Printf("Errors: %d", atomic.LoadInt64(&metrics.Errors))
}
