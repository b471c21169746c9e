package httpclient_test

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"time"

	"github.com/kart-io/docpipe/pkg/utils/httpclient"
)

// Basic usage: a client with a timeout and retry on 5xx responses.
func ExampleClient() {
	client := httpclient.NewClient(30*time.Second, 3)

	req, err := http.NewRequestWithContext(context.Background(),
		http.MethodGet, "https://api.example.com/health", nil)
	if err != nil {
		log.Fatal(err)
	}

	var result struct {
		Status string `json:"status"`
	}
	if err := client.DoJSON(req, &result); err != nil {
		log.Fatal(err)
	}

	fmt.Println(result.Status)
}
