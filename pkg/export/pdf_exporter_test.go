package export

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/teach-app/teach-api/internal/models"
)

func TestSchedulePDFExporterRender(t *testing.T) {
	var plan models.WeeklyPlan
	plan.AddSlot(models.Monday, models.TimeOfDay{Hour: 9}, models.TimeOfDay{Hour: 11})

	pdf, err := NewSchedulePDFExporter().Render("Alex", &plan)
	require.NoError(t, err)
	require.NotEmpty(t, pdf)
	assert.Equal(t, "%PDF", string(pdf[:4]))
}

func TestSchedulePDFExporterRenderEmptyPlan(t *testing.T) {
	pdf, err := NewSchedulePDFExporter().Render("Alex", &models.WeeklyPlan{})
	require.NoError(t, err)
	assert.NotEmpty(t, pdf)
}
