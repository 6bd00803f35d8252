package platform

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/DMUsenkov/sports-platform-notifier/internal/domain/model"
)

func newTestClient(t *testing.T, handler http.HandlerFunc) (*Client, *httptest.Server) {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	c, err := NewClient(srv.URL, "test-token", 2*time.Second)
	if err != nil {
		t.Fatalf("NewClient: %v", err)
	}
	return c, srv
}

func TestClient_UpcomingMatches(t *testing.T) {
	t.Parallel()

	c, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/matches/upcoming" {
			t.Errorf("unexpected path %q", r.URL.Path)
		}
		if got := r.URL.Query().Get("days"); got != "2" {
			t.Errorf("days query = %q, want 2", got)
		}
		if got := r.Header.Get("Authorization"); got != "Bearer test-token" {
			t.Errorf("authorization header = %q", got)
		}
		_ = json.NewEncoder(w).Encode([]model.Match{{
			ID: 5, TournamentName: "Кубок", HomeTeamID: 1, AwayTeamID: 2,
			HomeTeamName: "A", AwayTeamName: "B",
		}})
	})

	matches, err := c.UpcomingMatches(context.Background(), 2)
	if err != nil {
		t.Fatalf("UpcomingMatches: %v", err)
	}
	if len(matches) != 1 || matches[0].ID != 5 {
		t.Fatalf("unexpected matches: %+v", matches)
	}
}

func TestClient_AcceptInvitationPath(t *testing.T) {
	t.Parallel()

	var gotMethod, gotPath string
	c, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		gotMethod, gotPath = r.Method, r.URL.Path
		w.WriteHeader(http.StatusOK)
	})

	if err := c.AcceptInvitation(context.Background(), model.InvitationTeam, 42); err != nil {
		t.Fatalf("AcceptInvitation: %v", err)
	}
	if gotMethod != http.MethodPost || gotPath != "/invitations/team/42/accept" {
		t.Fatalf("got %s %s", gotMethod, gotPath)
	}
}

func TestClient_TeamDetails(t *testing.T) {
	t.Parallel()

	c, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/teams/42" {
			t.Errorf("unexpected path %q", r.URL.Path)
		}
		_ = json.NewEncoder(w).Encode(model.TeamDetails{
			ID: 42, Name: "Спартак", MemberCount: 11, Wins: 3,
			Members: []model.RosterMember{{UserID: 1, FirstName: "Анна", IsCaptain: true}},
		})
	})

	team, err := c.TeamDetails(context.Background(), 42)
	if err != nil {
		t.Fatalf("TeamDetails: %v", err)
	}
	if team.Name != "Спартак" || len(team.Members) != 1 || !team.Members[0].IsCaptain {
		t.Fatalf("unexpected team: %+v", team)
	}
}

func TestClient_ChampionshipDetails(t *testing.T) {
	t.Parallel()

	c, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/championships/7" {
			t.Errorf("unexpected path %q", r.URL.Path)
		}
		_ = json.NewEncoder(w).Encode(model.ChampionshipDetails{
			ID: 7, Name: "Кубок", Stages: []model.ChampionshipStage{{Name: "Групповой этап", IsPublished: true}},
		})
	})

	ch, err := c.ChampionshipDetails(context.Background(), 7)
	if err != nil {
		t.Fatalf("ChampionshipDetails: %v", err)
	}
	if ch.Name != "Кубок" || len(ch.Stages) != 1 || !ch.Stages[0].IsPublished {
		t.Fatalf("unexpected championship: %+v", ch)
	}
}

func TestClient_RecommendedChampionships(t *testing.T) {
	t.Parallel()

	c, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/users/3/championships/recommended" {
			t.Errorf("unexpected path %q", r.URL.Path)
		}
		_ = json.NewEncoder(w).Encode([]model.ChampionshipDetails{{ID: 7, Name: "Кубок"}})
	})

	recs, err := c.RecommendedChampionships(context.Background(), 3)
	if err != nil {
		t.Fatalf("RecommendedChampionships: %v", err)
	}
	if len(recs) != 1 || recs[0].ID != 7 {
		t.Fatalf("unexpected recommendations: %+v", recs)
	}
}

func TestClient_DeclineMatch(t *testing.T) {
	t.Parallel()

	var gotPath string
	var gotBody map[string]interface{}
	c, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		_ = json.NewDecoder(r.Body).Decode(&gotBody)
		w.WriteHeader(http.StatusOK)
	})

	if err := c.DeclineMatch(context.Background(), 17, 42, "травма вратаря"); err != nil {
		t.Fatalf("DeclineMatch: %v", err)
	}
	if gotPath != "/matches/17/decline" {
		t.Fatalf("path = %q", gotPath)
	}
	if gotBody["team_id"] != float64(42) || gotBody["reason"] != "травма вратаря" {
		t.Fatalf("unexpected body: %+v", gotBody)
	}
}

func TestClient_ErrorEnvelope(t *testing.T) {
	t.Parallel()

	c, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusConflict)
		_ = json.NewEncoder(w).Encode(map[string]string{"error": "already a member"})
	})

	err := c.AcceptInvitation(context.Background(), model.InvitationTeam, 42)
	if err == nil {
		t.Fatalf("expected error on 409")
	}
	if !strings.Contains(err.Error(), "already a member") {
		t.Fatalf("error should carry the envelope message, got %v", err)
	}
}

func TestClient_ErrorWithoutEnvelope(t *testing.T) {
	t.Parallel()

	c, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "oops", http.StatusInternalServerError)
	})

	_, err := c.TeamRoster(context.Background(), 1)
	if err == nil || !strings.Contains(err.Error(), "status 500") {
		t.Fatalf("expected status error, got %v", err)
	}
}

func TestNewClient_Validation(t *testing.T) {
	t.Parallel()

	if _, err := NewClient("", "tok", time.Second); err == nil {
		t.Fatalf("empty base url must be rejected")
	}
}
