package handlers

import (
	"context"

	"peoplenet/application/ports"
	"peoplenet/application/queries"
	"peoplenet/domain/config"
	"peoplenet/domain/core/aggregates"
	"peoplenet/domain/core/valueobjects"
	"peoplenet/domain/layout"
	pkgerrors "peoplenet/pkg/errors"

	"go.uber.org/zap"
)

// LayoutRecorder observes how long force layouts ran
type LayoutRecorder interface {
	LayoutRun(ticks int)
}

// networkLoader builds the user's network snapshot under the current rules
type networkLoader struct {
	repo  ports.PersonRepository
	rules config.Provider
}

func (l networkLoader) load(ctx context.Context, userID string) (*aggregates.Network, error) {
	people, err := l.repo.ListByUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	return aggregates.NewNetwork(people, l.rules.Current()), nil
}

// GetNetworkGraphHandler builds and positions the network scene
type GetNetworkGraphHandler struct {
	networkLoader
	metrics LayoutRecorder
	logger  *zap.Logger
}

// NewGetNetworkGraphHandler creates a new network graph handler
func NewGetNetworkGraphHandler(
	repo ports.PersonRepository,
	rules config.Provider,
	metrics LayoutRecorder,
	logger *zap.Logger,
) *GetNetworkGraphHandler {
	return &GetNetworkGraphHandler{
		networkLoader: networkLoader{repo: repo, rules: rules},
		metrics:       metrics,
		logger:        logger,
	}
}

// Handle executes the network graph query
func (h *GetNetworkGraphHandler) Handle(ctx context.Context, query queries.GetNetworkGraphQuery) (*layout.Scene, error) {
	net, err := h.load(ctx, query.UserID)
	if err != nil {
		return nil, err
	}

	opts := layout.SceneOptions{
		ViewMode: aggregates.ParseViewMode(query.ViewMode),
		GroupBy:  layout.ParseGroupBy(query.GroupBy),
	}
	if query.Selected != "" {
		id, err := valueobjects.NewPersonIDFromString(query.Selected)
		if err != nil {
			return nil, pkgerrors.NewFieldValidationError("selected", err.Error())
		}
		opts.SelectedID = id
	}

	scene := layout.BuildScene(net, opts)
	strategy := layout.ParseStrategy(query.Layout)
	scene, err = layout.Position(ctx, scene, layout.Options{
		Strategy: strategy,
		Width:    query.Width,
		Height:   query.Height,
		Ticks:    query.Ticks,
	}, net.Config())
	if err != nil {
		return nil, pkgerrors.NewTimeoutError("layout").WithCause(err)
	}
	if strategy == layout.StrategyForce {
		h.metrics.LayoutRun(scene.Ticks)
	}

	h.logger.Debug("Network graph built",
		zap.String("userID", query.UserID),
		zap.Int("nodes", len(scene.Nodes)),
		zap.Int("edges", len(scene.Edges)),
		zap.Int("ticks", scene.Ticks),
	)
	return &scene, nil
}

// GetConnectionPathHandler reconstructs the introduction chain to a person
type GetConnectionPathHandler struct {
	networkLoader
}

// NewGetConnectionPathHandler creates a new connection path handler
func NewGetConnectionPathHandler(repo ports.PersonRepository, rules config.Provider) *GetConnectionPathHandler {
	return &GetConnectionPathHandler{networkLoader{repo: repo, rules: rules}}
}

// Handle executes the connection path query
func (h *GetConnectionPathHandler) Handle(ctx context.Context, query queries.GetConnectionPathQuery) (*aggregates.ConnectionPath, error) {
	id, err := valueobjects.NewPersonIDFromString(query.PersonID)
	if err != nil {
		return nil, pkgerrors.NewFieldValidationError("id", err.Error())
	}
	net, err := h.load(ctx, query.UserID)
	if err != nil {
		return nil, err
	}
	path, err := net.ReconstructPath(id)
	if err != nil {
		return nil, err
	}
	return &path, nil
}

// GetNetworkIssuesHandler reports cycles and broken references
type GetNetworkIssuesHandler struct {
	networkLoader
}

// NewGetNetworkIssuesHandler creates a new network issues handler
func NewGetNetworkIssuesHandler(repo ports.PersonRepository, rules config.Provider) *GetNetworkIssuesHandler {
	return &GetNetworkIssuesHandler{networkLoader{repo: repo, rules: rules}}
}

// Handle executes the network issues query
func (h *GetNetworkIssuesHandler) Handle(ctx context.Context, query queries.GetNetworkIssuesQuery) (*queries.NetworkIssuesResult, error) {
	net, err := h.load(ctx, query.UserID)
	if err != nil {
		return nil, err
	}
	issues := net.Validate()
	if issues == nil {
		issues = []aggregates.Issue{}
	}
	return &queries.NetworkIssuesResult{Issues: issues, Count: len(issues)}, nil
}
