package kassa_test

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"

	"github.com/kassakit/kassakit/cache"
	"github.com/kassakit/kassakit/kassa"
)

func Example() {
	// A stand-in for the remote service.
	mux := http.NewServeMux()
	mux.HandleFunc("/Token", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"token":"T1"}`)
	})
	mux.HandleFunc("/StateSystem", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"status":"ready"}`)
	})
	srv := httptest.NewServer(mux)
	defer srv.Close()

	client, err := kassa.New(context.Background(), kassa.Config{
		Account: srv.URL,
		AppID:   "42",
		Secret:  "s3cret",
		Cache:   cache.NewMemoryCache(),
	})
	if err != nil {
		fmt.Println("construct:", err)
		return
	}

	state, err := client.GetStateSystem(context.Background())
	if err != nil {
		fmt.Println("state:", err)
		return
	}
	fmt.Println("status:", state["status"])
	// Output:
	// status: ready
}
