// netkitctl prints a live speed readout from a running netkitd, replacing
// the need to keep the dashboard open for a quick glance.
package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"net/http"
	"os"
	"time"

	"github.com/sh44ni/internetkit/internal/models"
)

func main() {
	addr := flag.String("addr", "localhost:8321", "daemon address host:port")
	interval := flag.Duration("interval", time.Second, "refresh interval")
	once := flag.Bool("once", false, "print one reading and exit")
	flag.Parse()

	client := &http.Client{Timeout: 5 * time.Second}
	url := "http://" + *addr + "/api/live"

	for {
		live, err := fetchLive(client, url)
		if err != nil {
			fmt.Fprintf(os.Stderr, "netkitctl: %v\n", err)
			os.Exit(1)
		}
		fmt.Printf("↓ %s  ↑ %s  (today: %s down, %s up)\n",
			live.DownHuman, live.UpHuman, live.TotalDown, live.TotalUp)
		if *once {
			return
		}
		time.Sleep(*interval)
	}
}

func fetchLive(client *http.Client, url string) (models.LiveResponse, error) {
	var live models.LiveResponse
	resp, err := client.Get(url)
	if err != nil {
		return live, fmt.Errorf("fetch live stats: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return live, fmt.Errorf("fetch live stats: status %d", resp.StatusCode)
	}
	if err := json.NewDecoder(resp.Body).Decode(&live); err != nil {
		return live, fmt.Errorf("decode live stats: %w", err)
	}
	return live, nil
}
