package api

import (
	"net/http"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestScenarios_AllEvaluate(t *testing.T) {
	for _, sc := range scenarios {
		t.Run(sc.Name, func(t *testing.T) {
			// GIVEN: A server with default configuration
			s := newTestServer(t)

			// WHEN: The scenario is evaluated
			rec := s.do(t, http.MethodPost, "/api/scenarios/"+sc.Name+"/evaluate", "", "")

			// THEN: It produces a positive total without failures
			require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
			view := decode[reportView](t, rec)
			assert.Empty(t, view.Report.Failures)
			total, err := decimal.NewFromString(view.Report.Total)
			require.NoError(t, err)
			assert.True(t, total.IsPositive(), "total %s", total)
		})
	}
}

func TestScenarios_List(t *testing.T) {
	s := newTestServer(t)

	rec := s.do(t, http.MethodGet, "/api/scenarios", "", "")

	require.Equal(t, http.StatusOK, rec.Code)
	list := decode[[]ScenarioDTO](t, rec)
	require.Len(t, list, len(scenarios))
	assert.Equal(t, "single-pos", list[0].Name)
}

func TestScenarios_Unknown(t *testing.T) {
	s := newTestServer(t)

	rec := s.do(t, http.MethodPost, "/api/scenarios/nope/evaluate", "", "")

	assert.Equal(t, http.StatusNotFound, rec.Code)
}
