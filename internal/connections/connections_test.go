package connections

import (
	"testing"
	"time"

	"github.com/jjckrbbt/wrapped/internal/logger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPoolConfig(t *testing.T) {
	testCases := []struct {
		name    string
		url     string
		wantApp string
	}{
		{name: "defaults application name", url: "postgres://wrapped:pw@db.internal:5432/wrapped", wantApp: "wrapped"},
		{name: "keeps explicit application name", url: "postgres://wrapped:pw@db.internal:5432/wrapped?application_name=wrapped-cli", wantApp: "wrapped-cli"},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			cfg, err := poolConfig(tc.url)
			require.NoError(t, err)
			assert.Equal(t, tc.wantApp, cfg.ConnConfig.RuntimeParams["application_name"])
			assert.Equal(t, 5*time.Minute, cfg.MaxConnIdleTime)
			assert.Equal(t, "db.internal", cfg.ConnConfig.Host)
		})
	}
}

func TestConnectDBRejectsBadURL(t *testing.T) {
	_, err := ConnectDB("postgres://wrapped:pw@db.internal:notaport/wrapped", logger.Discard())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid DATABASE_URL")
}
