package observability

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/aws/aws-sdk-go-v2/service/cloudwatch"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type mockPutter struct {
	mock.Mock
}

func (m *mockPutter) PutMetricData(ctx context.Context, in *cloudwatch.PutMetricDataInput, _ ...func(*cloudwatch.Options)) (*cloudwatch.PutMetricDataOutput, error) {
	args := m.Called(ctx, in)
	return &cloudwatch.PutMetricDataOutput{}, args.Error(0)
}

func TestCollector_RecordOperation(t *testing.T) {
	c := NewCollector("test")

	c.RecordOperation(context.Background(), "command", "AddPerson", 5*time.Millisecond, nil)
	c.RecordOperation(context.Background(), "command", "AddPerson", 5*time.Millisecond, errors.New("x"))
	c.CityLookup("memory")

	assert.Equal(t, 1.0, testutil.ToFloat64(c.Operations.WithLabelValues("command", "AddPerson", "success")))
	assert.Equal(t, 1.0, testutil.ToFloat64(c.Operations.WithLabelValues("command", "AddPerson", "failure")))
	assert.Equal(t, 1.0, testutil.ToFloat64(c.CityLookups.WithLabelValues("memory")))
}

func TestCollector_Handler(t *testing.T) {
	c := NewCollector("peoplenet")
	c.PersonMutation("added")

	rec := httptest.NewRecorder()
	c.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `peoplenet_people_mutations_total{action="added"} 1`)
}

func TestCloudWatchRecorder(t *testing.T) {
	putter := new(mockPutter)
	putter.On("PutMetricData", mock.Anything, mock.MatchedBy(func(in *cloudwatch.PutMetricDataInput) bool {
		return *in.Namespace == "PeopleNet" && len(in.MetricData) == 2
	})).Return(nil).Once()

	r := NewCloudWatchRecorder("PeopleNet", putter, zap.NewNop())
	Recorders{r, nil}.RecordOperation(context.Background(), "query", "GetNetworkGraph", time.Millisecond, nil)

	putter.AssertExpectations(t)
}

func TestCloudWatchRecorder_NilClient(t *testing.T) {
	r := NewCloudWatchRecorder("PeopleNet", nil, zap.NewNop())
	require.NotPanics(t, func() {
		r.RecordOperation(context.Background(), "query", "x", time.Millisecond, nil)
	})
}

func TestTracer_DisabledPassesThrough(t *testing.T) {
	tr := NewTracer("peoplenet", false)
	called := false

	err := tr.TraceFunction(context.Background(), "op", func(context.Context) error {
		called = true
		return nil
	})

	require.NoError(t, err)
	assert.True(t, called)
	assert.False(t, tr.Enabled())
}
