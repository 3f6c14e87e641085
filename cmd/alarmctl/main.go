package main

import (
	"bufio"
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"strconv"
	"strings"
)

func main() {
	api := os.Getenv("API_BASE")
	if api == "" {
		api = "http://localhost:8080"
	}

	reader := bufio.NewReader(os.Stdin)
	fmt.Print("Alarm time HH:MM (e.g., 07:30): ")
	raw, _ := reader.ReadString('\n')
	hour, minute, ok := parseTime(strings.TrimSpace(raw))
	if !ok {
		fmt.Println("Invalid time.")
		return
	}

	fmt.Print("Label (optional): ")
	label, _ := reader.ReadString('\n')
	label = strings.TrimSpace(label)

	body, _ := json.Marshal(map[string]any{
		"hour":   hour,
		"minute": minute,
		"label":  label,
	})
	req, _ := http.NewRequest(http.MethodPost, api+"/api/alarms", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	if key := os.Getenv("API_KEY"); key != "" {
		req.Header.Set("X-API-Key", key)
	}

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		fmt.Println("Error contacting API:", err)
		return
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		fmt.Println("Added! Check the daemon logs and GET /api/alarms.")
	} else {
		fmt.Println("API returned status:", resp.Status)
	}
}

func parseTime(s string) (hour, minute int, ok bool) {
	parts := strings.SplitN(s, ":", 2)
	if len(parts) != 2 {
		return 0, 0, false
	}
	h, err1 := strconv.Atoi(parts[0])
	m, err2 := strconv.Atoi(parts[1])
	if err1 != nil || err2 != nil || h < 0 || h > 23 || m < 0 || m > 59 {
		return 0, 0, false
	}
	return h, m, true
}
