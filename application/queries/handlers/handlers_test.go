package handlers

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"peoplenet/application/queries"
	"peoplenet/domain/config"
	"peoplenet/domain/core/aggregates"
	"peoplenet/domain/core/entities"
	"peoplenet/domain/core/valueobjects"
	"peoplenet/infrastructure/persistence/memory"
	"peoplenet/pkg/common"
	pkgerrors "peoplenet/pkg/errors"
)

type layoutRecorder struct {
	runs []int
}

func (r *layoutRecorder) LayoutRun(ticks int) { r.runs = append(r.runs, ticks) }

// seed stores grace (direct, core), alan (introduced by grace) and linus
// (introduced by an outsider) for user u1
func seed(t *testing.T) *memory.PersonRepository {
	t.Helper()
	repo := memory.NewPersonRepository()
	ctx := context.Background()

	grace, err := entities.NewPersonWithID(valueobjects.MustPersonID("grace"), "u1", "Grace",
		entities.DirectConnection(valueobjects.StrengthCore))
	require.NoError(t, err)
	require.NoError(t, grace.Apply(entities.ProfileUpdate{Team: ptr("Compilers"), Tags: &[]string{"navy"}}))

	alan, err := entities.NewPersonWithID(valueobjects.MustPersonID("alan"), "u1", "Alan",
		entities.IntroducedBy(valueobjects.StrengthWorking, valueobjects.MustPersonID("grace")))
	require.NoError(t, err)

	linus, err := entities.NewPersonWithID(valueobjects.MustPersonID("linus"), "u1", "Linus",
		entities.IntroducedByExternal(valueobjects.StrengthAcquaintance, "Andrew"))
	require.NoError(t, err)

	for _, p := range []*entities.Person{grace, alan, linus} {
		require.NoError(t, repo.Save(ctx, p))
	}
	return repo
}

func ptr(s string) *string { return &s }

func TestListPeopleHandler(t *testing.T) {
	h := NewListPeopleHandler(seed(t), zap.NewNop())

	tests := []struct {
		name  string
		query queries.ListPeopleQuery
		want  []string
		total int
	}{
		{name: "all in insertion order", query: queries.ListPeopleQuery{}, want: []string{"grace", "alan", "linus"}, total: 3},
		{name: "search by team", query: queries.ListPeopleQuery{Search: "compil"}, want: []string{"grace"}, total: 1},
		{name: "search by tag", query: queries.ListPeopleQuery{Search: "NAVY"}, want: []string{"grace"}, total: 1},
		{name: "minimum rank", query: queries.ListPeopleQuery{MinRank: valueobjects.StrengthWorking.Rank()}, want: []string{"grace", "alan"}, total: 2},
		{
			name:  "second page",
			query: queries.ListPeopleQuery{Pagination: common.PaginationParams{Page: 2, PageSize: 2}},
			want:  []string{"linus"},
			total: 3,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			q := tt.query
			q.UserID = "u1"
			result, err := h.Handle(context.Background(), q)
			require.NoError(t, err)

			ids := make([]string, 0, len(result.People))
			for _, p := range result.People {
				ids = append(ids, p.ID)
			}
			assert.Equal(t, tt.want, ids)
			assert.Equal(t, tt.total, result.Pagination.Total)
		})
	}
}

func TestListPeopleHandler_OtherUserIsEmpty(t *testing.T) {
	h := NewListPeopleHandler(seed(t), zap.NewNop())
	result, err := h.Handle(context.Background(), queries.ListPeopleQuery{UserID: "u2"})
	require.NoError(t, err)
	assert.Empty(t, result.People)
}

func TestGetPersonHandler(t *testing.T) {
	h := NewGetPersonHandler(seed(t))

	view, err := h.Handle(context.Background(), queries.GetPersonQuery{UserID: "u1", PersonID: "alan"})
	require.NoError(t, err)
	assert.Equal(t, "Alan", view.Name)
	assert.Equal(t, valueobjects.IntroducedExisting, view.IntroducedByType)
	assert.Equal(t, "grace", view.IntroducedBy.String())
	assert.Equal(t, valueobjects.StrengthWorking.Label(), view.StrengthLabel)
	assert.NotNil(t, view.Tags)
	assert.NotNil(t, view.Interactions)

	_, err = h.Handle(context.Background(), queries.GetPersonQuery{UserID: "u2", PersonID: "alan"})
	assert.True(t, pkgerrors.IsNotFound(err))
}

func TestGetNetworkGraphHandler(t *testing.T) {
	recorder := &layoutRecorder{}
	h := NewGetNetworkGraphHandler(seed(t), config.NewStatic(nil), recorder, zap.NewNop())

	t.Run("circular with selected path", func(t *testing.T) {
		scene, err := h.Handle(context.Background(), queries.GetNetworkGraphQuery{
			UserID:   "u1",
			Selected: "alan",
			Layout:   "circular",
			Width:    800,
			Height:   600,
		})
		require.NoError(t, err)

		ids := make([]string, 0, len(scene.Nodes))
		for _, n := range scene.Nodes {
			ids = append(ids, n.ID)
		}
		assert.ElementsMatch(t, []string{valueobjects.RootPersonID, "grace", "alan", "linus"}, ids)
		require.NotNil(t, scene.Path)
		assert.Equal(t, aggregates.LabelNetwork, scene.Path.Label)
		assert.Equal(t, []string{valueobjects.RootPersonID, "grace", "alan"}, scene.PathNodeIDs)
		assert.Empty(t, recorder.runs)
	})

	t.Run("force layout records ticks", func(t *testing.T) {
		scene, err := h.Handle(context.Background(), queries.GetNetworkGraphQuery{
			UserID: "u1",
			Layout: "force",
			Width:  800,
			Height: 600,
			Ticks:  5,
		})
		require.NoError(t, err)
		require.Len(t, recorder.runs, 1)
		assert.Equal(t, scene.Ticks, recorder.runs[0])
		assert.LessOrEqual(t, scene.Ticks, 5)
	})

	t.Run("direct view drops introduced edges", func(t *testing.T) {
		scene, err := h.Handle(context.Background(), queries.GetNetworkGraphQuery{UserID: "u1", ViewMode: "direct"})
		require.NoError(t, err)
		require.NotEmpty(t, scene.Edges)
		for _, e := range scene.Edges {
			assert.Equal(t, valueobjects.RootPersonID, e.Source)
		}
	})
}

func TestGetConnectionPathHandler(t *testing.T) {
	h := NewGetConnectionPathHandler(seed(t), config.NewStatic(nil))

	tests := []struct {
		personID string
		chain    []string
		label    string
	}{
		{personID: "grace", chain: []string{"You", "Grace"}, label: aggregates.LabelDirect},
		{personID: "alan", chain: []string{"You", "Grace", "Alan"}, label: aggregates.LabelNetwork},
		{personID: "linus", chain: []string{"You", "Andrew", "Linus"}, label: aggregates.LabelExternal},
	}

	for _, tt := range tests {
		t.Run(tt.personID, func(t *testing.T) {
			path, err := h.Handle(context.Background(), queries.GetConnectionPathQuery{UserID: "u1", PersonID: tt.personID})
			require.NoError(t, err)
			assert.Equal(t, tt.chain, path.Chain)
			assert.Equal(t, tt.label, path.Label)
			assert.False(t, path.Truncated)
		})
	}
}

func TestGetNetworkIssuesHandler(t *testing.T) {
	repo := seed(t)
	h := NewGetNetworkIssuesHandler(repo, config.NewStatic(nil))

	result, err := h.Handle(context.Background(), queries.GetNetworkIssuesQuery{UserID: "u1"})
	require.NoError(t, err)
	assert.Empty(t, result.Issues)
	assert.Equal(t, 0, result.Count)

	require.NoError(t, repo.Delete(context.Background(), "u1", valueobjects.MustPersonID("grace")))

	result, err = h.Handle(context.Background(), queries.GetNetworkIssuesQuery{UserID: "u1"})
	require.NoError(t, err)
	require.Equal(t, 1, result.Count)
	assert.Equal(t, aggregates.IssueDanglingRef, result.Issues[0].Type)
	assert.Equal(t, "alan", result.Issues[0].PersonID.String())
}
