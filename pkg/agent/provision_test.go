package agent

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/insightlab/insightlab/pkg/interview"
)

func TestProvisioner_CreateSession(t *testing.T) {
	var gotAuth string
	var gotCfg AssistantConfig

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost || r.URL.Path != "/assistant" {
			t.Errorf("unexpected request: %s %s", r.Method, r.URL.Path)
		}
		gotAuth = r.Header.Get("Authorization")
		_ = json.NewDecoder(r.Body).Decode(&gotCfg)
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]string{"id": "asst_real_1"})
	}))
	defer srv.Close()

	p := &Provisioner{BaseURL: srv.URL, APIKey: "vk_test"}

	id := p.CreateSession(context.Background(), AssistantConfig{
		Name:         "Checkout study interviewer",
		Model:        "gpt-4o",
		Voice:        "jennifer",
		SystemPrompt: "You are a user researcher.",
		FirstMessage: "Hi, thanks for joining.",
	})

	if id != "asst_real_1" {
		t.Errorf("id = %q, want asst_real_1", id)
	}
	if gotAuth != "Bearer vk_test" {
		t.Errorf("auth = %q", gotAuth)
	}
	if gotCfg.Name != "Checkout study interviewer" {
		t.Errorf("name = %q", gotCfg.Name)
	}
}

func TestProvisioner_FallsBackToPlaceholder(t *testing.T) {
	tests := []struct {
		name string
		prov func(t *testing.T) *Provisioner
	}{
		{
			name: "vendor 500",
			prov: func(t *testing.T) *Provisioner {
				srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
					http.Error(w, "upstream exploded", http.StatusInternalServerError)
				}))
				t.Cleanup(srv.Close)
				return &Provisioner{BaseURL: srv.URL, APIKey: "vk_test"}
			},
		},
		{
			name: "vendor unreachable",
			prov: func(t *testing.T) *Provisioner {
				return &Provisioner{BaseURL: "http://127.0.0.1:1", APIKey: "vk_test"}
			},
		},
		{
			name: "missing api key",
			prov: func(t *testing.T) *Provisioner {
				return &Provisioner{BaseURL: "http://example.invalid"}
			},
		},
		{
			name: "response missing id",
			prov: func(t *testing.T) *Provisioner {
				srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
					_, _ = w.Write([]byte(`{}`))
				}))
				t.Cleanup(srv.Close)
				return &Provisioner{BaseURL: srv.URL, APIKey: "vk_test"}
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			id := tt.prov(t).CreateSession(context.Background(), AssistantConfig{Name: "x"})
			if !strings.HasPrefix(id, interview.DefaultPlaceholderPrefix) {
				t.Errorf("id = %q, want placeholder with prefix %q", id, interview.DefaultPlaceholderPrefix)
			}
			if !interview.IsPlaceholderID(id, "") {
				t.Errorf("IsPlaceholderID(%q) = false, want true", id)
			}
		})
	}
}

func TestProvisioner_Bind(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(map[string]string{"id": "asst_bound"})
	}))
	defer srv.Close()

	p := &Provisioner{BaseURL: srv.URL, APIKey: "vk_test"}
	bound := p.Bind(AssistantConfig{Name: "bound"})

	id, err := bound.CreateSession(context.Background())
	if err != nil {
		t.Fatalf("CreateSession: %v", err)
	}
	if id != "asst_bound" {
		t.Errorf("id = %q, want asst_bound", id)
	}
}
