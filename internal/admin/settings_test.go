package admin

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"idcard/internal/apiclient"
)

func TestOpenSettingsPrefills(t *testing.T) {
	api := seeded()
	d := newDashboard(api)
	d.Mount(context.Background())

	d.OpenSettings()
	v := d.Settings().View()
	assert.True(t, v.Open)
	assert.Equal(t, "RV", v.Name)
	assert.Equal(t, "Road", v.Address)

	d.Settings().Close()
	assert.False(t, d.Settings().View().Open)
}

func TestSaveSettingsSuccessClosesAfterDelay(t *testing.T) {
	api := seeded()
	d := newDashboard(api)
	now := time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)
	d.settings.now = func() time.Time { return now }
	d.OpenSettings()

	logo := &apiclient.File{Name: "logo.png", Body: strings.NewReader("png")}
	require.NoError(t, d.SaveSettings(context.Background(), "New Name", "New Road", logo))

	require.Len(t, api.updates, 1)
	assert.Equal(t, "New Name", api.updates[0].Name)
	assert.NotNil(t, api.updates[0].Logo)
	assert.Equal(t, 1, api.collegeCalls)
	assert.Equal(t, "New Name", d.college.Info().Name)

	v := d.Settings().View()
	assert.True(t, v.Open)
	assert.Equal(t, SettingsSavedMessage, v.Message)

	now = now.Add(1999 * time.Millisecond)
	assert.True(t, d.Settings().View().Open)
	now = now.Add(time.Millisecond)
	assert.False(t, d.Settings().View().Open)
}

func TestSaveSettingsFailure(t *testing.T) {
	api := seeded()
	api.updateErr = &apiclient.APIError{Status: 403, Message: "Forbidden"}
	d := newDashboard(api)
	d.OpenSettings()

	require.Error(t, d.SaveSettings(context.Background(), "N", "A", nil))
	v := d.Settings().View()
	assert.True(t, v.Open)
	assert.Equal(t, "Forbidden", v.Error)
	assert.Empty(t, v.Message)
	assert.Equal(t, 0, api.collegeCalls)

	api.updateErr = &apiclient.APIError{Status: 500}
	require.Error(t, d.SaveSettings(context.Background(), "N", "A", nil))
	assert.Equal(t, SettingsFailedMessage, d.Settings().View().Error)
}

func TestSaveSettingsRequiresNameAndAddress(t *testing.T) {
	api := seeded()
	d := newDashboard(api)
	d.OpenSettings()

	assert.ErrorIs(t, d.SaveSettings(context.Background(), " ", "A", nil), ErrSettingsIncomplete)
	assert.Empty(t, api.updates)
	assert.NotEmpty(t, d.Settings().View().Error)
}
