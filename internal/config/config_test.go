package config

import (
	"testing"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"

	"stockroom/internal/domain"
)

func TestDefaults(t *testing.T) {
	cfg := Defaults()
	assert.Equal(t, "3000", cfg.Port)
	assert.Equal(t, "sqlite", cfg.DBDriver)
	assert.Equal(t, int64(2<<20), cfg.UploadMaxBytes)
	assert.True(t, cfg.RequireCategory)
	assert.Equal(t, domain.DeleteNullify, cfg.CategoryDeletePolicy)
	assert.Equal(t, "http://localhost:3000", cfg.APIBaseURL)
}

func TestFromEnv(t *testing.T) {
	t.Setenv("PORT", "9090")
	t.Setenv("REQUIRE_CATEGORY", "false")
	t.Setenv("CATEGORY_DELETE_POLICY", "Restrict")
	t.Setenv("API_BASE_URL", "http://api.local/")

	v := viper.New()
	defaults(v)
	v.AutomaticEnv()
	cfg := FromViper(v)

	assert.Equal(t, "9090", cfg.Port)
	assert.False(t, cfg.RequireCategory)
	assert.Equal(t, domain.DeleteRestrict, cfg.CategoryDeletePolicy)
	assert.Equal(t, "http://api.local", cfg.APIBaseURL)
}

func TestUnknownDeletePolicyFallsBack(t *testing.T) {
	v := viper.New()
	defaults(v)
	v.Set("CATEGORY_DELETE_POLICY", "explode")
	assert.Equal(t, domain.DeleteNullify, FromViper(v).CategoryDeletePolicy)
}

func TestUploadBackend(t *testing.T) {
	cases := map[string]string{"local": "local", " GCS ": "gcs", "disk": "local", "": "local"}
	for in, want := range cases {
		v := viper.New()
		defaults(v)
		v.Set("UPLOAD_BACKEND", in)
		assert.Equal(t, want, FromViper(v).UploadBackend, in)
	}
}
