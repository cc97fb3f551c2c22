package app

import (
	"context"
	"fmt"
	"strings"

	"vidinsights/internal/errors"
)

// Command names one dashboard action
type Command string

const (
	CommandExplore        Command = "explore"
	CommandTopVideos      Command = "top_videos"
	CommandRegression     Command = "regression"
	CommandHypothesisTest Command = "hypothesis_test"
	CommandGroupTest      Command = "group_test"
	CommandFilter         Command = "filter"
	CommandInsights       Command = "insights"
)

var commands = []Command{
	CommandExplore,
	CommandTopVideos,
	CommandRegression,
	CommandHypothesisTest,
	CommandGroupTest,
	CommandFilter,
	CommandInsights,
}

// Commands lists every supported command
func Commands() []Command {
	out := make([]Command, len(commands))
	copy(out, commands)
	return out
}

// ParseCommand resolves a command name, accepting dashes in place of underscores
func ParseCommand(s string) (Command, error) {
	name := strings.ReplaceAll(strings.ToLower(strings.TrimSpace(s)), "-", "_")
	for _, c := range commands {
		if string(c) == name {
			return c, nil
		}
	}
	return "", errors.InvalidInput(fmt.Sprintf("unknown command %q", s))
}

// Request carries the parameters for one command. Only the fields the
// command reads need to be set.
type Request struct {
	Command      Command            `json:"command"`
	Bins         int                `json:"bins,omitempty"`
	TopN         int                `json:"top_n,omitempty"`
	LikeIncrease float64            `json:"like_increase,omitempty"`
	Thresholds   map[string]float64 `json:"thresholds,omitempty"`
	Regression   RegressionRequest  `json:"regression"`
	OneSample    OneSampleRequest   `json:"one_sample"`
	Groups       GroupTestRequest   `json:"groups"`
}

// Response wraps the command result
type Response struct {
	Command Command     `json:"command"`
	Result  interface{} `json:"result"`
}

// Execute dispatches a request to its command
func (s *DashboardService) Execute(ctx context.Context, req Request) (*Response, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	var (
		result interface{}
		err    error
	)
	switch req.Command {
	case CommandExplore:
		result, err = s.Explore(req.Bins)
	case CommandTopVideos:
		result, err = s.TopVideos(req.TopN)
	case CommandRegression:
		result, err = s.Regression(req.Regression)
	case CommandHypothesisTest:
		result, err = s.OneSampleTest(req.OneSample)
	case CommandGroupTest:
		result, err = s.GroupTest(req.Groups)
	case CommandFilter:
		result, err = s.Filter(req.Thresholds)
	case CommandInsights:
		result, err = s.Insights(req.LikeIncrease, req.Bins)
	default:
		return nil, errors.InvalidInput(fmt.Sprintf("unknown command %q", req.Command))
	}
	if err != nil {
		s.logger.Debug("command %s failed: %v", req.Command, err)
		return nil, err
	}
	return &Response{Command: req.Command, Result: result}, nil
}
