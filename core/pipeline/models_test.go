package pipeline

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"reflect"
	"testing"
)

func TestListModels(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/v1/models" {
			t.Errorf("path = %q, want /v1/models", r.URL.Path)
		}
		if auth := r.Header.Get("Authorization"); auth != "Bearer key" {
			t.Errorf("Authorization = %q, want bearer header", auth)
		}
		fmt.Fprint(w, `{"data":[{"id":"gpt-4o"},{"id":"gpt-4o-mini"},{"id":"embedding-small"}]}`)
	}))
	defer server.Close()

	tests := []struct {
		name   string
		filter string
		want   []string
	}{
		{name: "filter by substring", filter: "gpt", want: []string{"gpt-4o", "gpt-4o-mini"}},
		{name: "no filter returns all", filter: "", want: []string{"gpt-4o", "gpt-4o-mini", "embedding-small"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			config := testConfig(server.URL + "/v1/chat/completions")
			config.APIKey = "key"
			config.ModelFilter = tt.filter

			got, err := New(config).ListModels(context.Background())
			if err != nil {
				t.Fatalf("ListModels() error = %v", err)
			}
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("ListModels() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestListModels_TransportError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "denied", http.StatusUnauthorized)
	}))
	defer server.Close()

	_, err := New(testConfig(server.URL)).ListModels(context.Background())
	if !errors.Is(err, ErrTransport) {
		t.Errorf("ListModels() error = %v, want ErrTransport", err)
	}
}
