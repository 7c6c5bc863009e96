package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"math/rand"
	"net/http"
	"os"
	"time"
)

var apiBase = envOr("API_URL", "http://localhost:8080") + "/api"

type DemoUser struct {
	Username string `json:"username"`
	PIN      string `json:"pin"`
	Token    string `json:"token"`
	UserID   string `json:"userId"`
}

type demoApplication struct {
	Company     string   `json:"company"`
	Position    string   `json:"position"`
	Location    string   `json:"location,omitempty"`
	Status      string   `json:"status"`
	AppliedDate string   `json:"appliedDate,omitempty"`
	Deadline    string   `json:"deadline,omitempty"`
	Tags        []string `json:"tags,omitempty"`
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func post(path, token string, payload, out interface{}) error {
	body, _ := json.Marshal(payload)

	req, _ := http.NewRequest("POST", apiBase+path, bytes.NewBuffer(body))
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusCreated {
		bodyBytes, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("%s failed (%d): %s", path, resp.StatusCode, string(bodyBytes))
	}

	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode failed: %w", err)
	}
	return nil
}

func registerUser(username, pin string) (*DemoUser, error) {
	var result struct {
		Token  string `json:"token"`
		UserID string `json:"userId"`
	}
	if err := post("/auth", "", map[string]string{
		"username": username,
		"pin":      pin,
		"action":   "register",
	}, &result); err != nil {
		return nil, err
	}

	return &DemoUser{
		Username: username,
		PIN:      pin,
		Token:    result.Token,
		UserID:   result.UserID,
	}, nil
}

func generateUsername() string {
	const letters = "abcdefghijklmnopqrstuvwxyz0123456789"
	random := make([]byte, 4)
	for i := range random {
		random[i] = letters[rand.Intn(len(letters))]
	}
	return fmt.Sprintf("demo_%d_%s", time.Now().Unix(), string(random))
}

func sampleApplications() []demoApplication {
	today := time.Now()
	day := func(offset int) string {
		return today.AddDate(0, 0, offset).Format("2006-01-02")
	}

	return []demoApplication{
		{Company: "Acme Corp", Position: "Backend Engineer", Location: "Remote", Status: "applied", AppliedDate: day(-10), Tags: []string{"go", "remote"}},
		{Company: "Globex", Position: "Platform Engineer", Location: "Berlin", Status: "interviewing", AppliedDate: day(-21), Tags: []string{"kubernetes"}},
		{Company: "Initech", Position: "Site Reliability Engineer", Status: "wishlist", Deadline: day(14)},
		{Company: "Umbrella", Position: "Data Engineer", Location: "London", Status: "rejected", AppliedDate: day(-45)},
		{Company: "Hooli", Position: "Staff Engineer", Location: "Palo Alto", Status: "offer", AppliedDate: day(-60), Tags: []string{"go", "leadership"}},
	}
}

func main() {
	fmt.Printf("Seeding demo data against %s...\n\n", apiBase)

	pin := "1234"
	user, err := registerUser(generateUsername(), pin)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to register demo user: %v\n", err)
		os.Exit(1)
	}
	fmt.Printf("  ✓ User: %s\n", user.Username)

	fmt.Println("\nCreating applications...")
	for _, app := range sampleApplications() {
		if err := post("/applications", user.Token, app, nil); err != nil {
			fmt.Fprintf(os.Stderr, "Failed to create %s application: %v\n", app.Company, err)
			os.Exit(1)
		}
		fmt.Printf("  ✓ %s at %s (%s)\n", app.Position, app.Company, app.Status)
	}

	fmt.Println("\n" + "============================================================")
	fmt.Println("DEMO DATA READY")
	fmt.Println("============================================================")
	fmt.Printf("\nLog in with username %q and PIN %s\n", user.Username, user.PIN)

	fmt.Println("\n" + "============================================================")
	fmt.Println("JSON OUTPUT (for scripts):")
	fmt.Println("============================================================")
	jsonOutput, _ := json.MarshalIndent(user, "", "  ")
	fmt.Println(string(jsonOutput))
}
