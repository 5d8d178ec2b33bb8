// ABOUTME: MCP resource implementations for recent workouts and the stats summary.
// ABOUTME: Provides gymlog://recent and gymlog://summary.
package mcp

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/harperreed/gymlog/internal/stats"
	"github.com/modelcontextprotocol/go-sdk/mcp"
)

const (
	recentURI  = "gymlog://recent"
	summaryURI = "gymlog://summary"
)

func (s *Server) registerResources() {
	// gymlog://recent - the recent window with exercises attached
	s.mcpServer.AddResource(&mcp.Resource{
		URI:         recentURI,
		Name:        "Recent Workouts",
		Description: "Most recent workouts with their exercises",
		MIMEType:    "application/json",
	}, s.handleRecentResource)

	// gymlog://summary - stats over the recent window plus lifetime count
	s.mcpServer.AddResource(&mcp.Resource{
		URI:         summaryURI,
		Name:        "Workout Summary",
		Description: "Counts for this week and this month, lifetime total, and the profile name",
		MIMEType:    "application/json",
	}, s.handleSummaryResource)
}

// Resource handlers

func (s *Server) handleRecentResource(ctx context.Context, req *mcp.ReadResourceRequest) (*mcp.ReadResourceResult, error) {
	ctx = s.session(ctx)

	list, err := s.repo.ListWorkouts(ctx, s.user.UserID, s.window)
	if err != nil {
		return nil, toolError(err)
	}

	byWorkout, err := s.repo.ExercisesForWorkouts(ctx, list)
	if err != nil {
		return nil, toolError(err)
	}

	views := make([]workoutView, 0, len(list))
	for _, w := range list {
		views = append(views, newWorkoutView(w, byWorkout[w.ID]))
	}

	return jsonResource(recentURI, map[string]interface{}{
		"workouts": views,
		"count":    len(views),
	})
}

func (s *Server) handleSummaryResource(ctx context.Context, req *mcp.ReadResourceRequest) (*mcp.ReadResourceResult, error) {
	ctx = s.session(ctx)
	now := s.now()

	summary, err := stats.Summarize(ctx, s.repo, s.user.UserID, s.window, now)
	if err != nil {
		return nil, toolError(err)
	}

	profile, err := s.repo.Profile(ctx)
	if err != nil {
		return nil, toolError(err)
	}

	recent := make([]workoutView, 0, len(summary.Recent))
	for _, w := range summary.Recent {
		recent = append(recent, newWorkoutView(w, nil))
	}

	return jsonResource(summaryURI, map[string]interface{}{
		"generated_at": now.Format(time.RFC3339),
		"user":         profile.DisplayName(),
		"stats":        summary.Stats,
		"lifetime":     summary.Lifetime,
		"window":       s.window,
		"recent":       recent,
	})
}

func jsonResource(uri string, v interface{}) (*mcp.ReadResourceResult, error) {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("failed to marshal result: %w", err)
	}

	return &mcp.ReadResourceResult{
		Contents: []*mcp.ResourceContents{{
			URI:      uri,
			MIMEType: "application/json",
			Text:     string(data),
		}},
	}, nil
}
