// cmd/preflight/main.go
package main

import (
	"fmt"
	"os"
	"strings"
)

func main() {
	fail := func(msg string) {
		fmt.Fprintln(os.Stderr, "✖", msg)
		os.Exit(1)
	}
	warn := func(msg string) { fmt.Fprintln(os.Stderr, "⚠", msg) }
	ok := func(msg string) { fmt.Println("✔", msg) }

	admin := strings.TrimSpace(os.Getenv("ADMIN_API_KEYS"))
	pub := strings.TrimSpace(os.Getenv("PUBLIC_API_KEYS"))
	apiAddr := strings.TrimSpace(os.Getenv("API_ADDR"))
	db := strings.TrimSpace(os.Getenv("SQLITE_PATH"))
	webhook := strings.TrimSpace(os.Getenv("WEBHOOK_URL"))

	if admin == "" && pub == "" {
		warn("no API keys configured — every route is open (fine for loopback-only use).")
	}
	if admin == "" && pub != "" {
		fail("PUBLIC_API_KEYS set without ADMIN_API_KEYS (mutations would stay open).")
	}

	// Normalize and sanity-check lists (no spaces around commas).
	for name, v := range map[string]string{"ADMIN_API_KEYS": admin, "PUBLIC_API_KEYS": pub} {
		if strings.Contains(v, " ") {
			warn(name + " contains spaces; use comma-separated with no spaces, e.g. key1,key2")
		}
	}

	if apiAddr == "" {
		warn("API_ADDR is empty; the daemon falls back to 127.0.0.1:8080.")
	} else {
		ok("API_ADDR=" + apiAddr)
	}

	if db == "" {
		warn("SQLITE_PATH empty — alarms will not survive a daemon restart.")
	} else {
		ok("SQLITE_PATH=" + db)
	}

	if webhook == "" {
		warn("WEBHOOK_URL empty — ringing state is only visible in logs and /api/active.")
	} else {
		ok("WEBHOOK_URL present")
	}

	ok("preflight passed")
}
