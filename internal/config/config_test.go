package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "streamer_config.txt")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

const fullConfig = `# production glove rig
ENDPOINT_URL = ws://10.117.170.219:8080
CREDENTIALS_FILE = /var/lib/streamer/credentials.txt

SAMPLE_INTERVAL_MS = 33
BUFFER_CAPACITY = 10
PUBLISH_MIN_BATCH = 3
RANGE_DEGREES = 340

ADC_DRIVER = mcp3208
ADC_SPI_DEVICE = /dev/spidev0.0

BANK1_SELECT_PINS = GPIO25,GPIO33,GPIO32,GPIO12
BANK1_ENABLE_PIN = GPIO26
BANK1_CHANNELS = 16
BANK1_ADC_CHANNEL = 0

BANK2_SELECT_PINS = GPIO23,GPIO22,GPIO21
BANK2_ENABLE_PIN = GPIO5
BANK2_CHANNELS = 6
BANK2_ADC_CHANNEL = 1

MQTT_BROKER = tcp://localhost:1883
RECONNECT_MIN_MS = 250
RECONNECT_MAX_MS = 5000
`

func TestLoadFullConfig(t *testing.T) {
	cfg, err := Load(writeConfig(t, fullConfig))
	require.NoError(t, err)

	assert.Equal(t, "ws://10.117.170.219:8080", cfg.EndpointURL)
	assert.Equal(t, "/var/lib/streamer/credentials.txt", cfg.CredentialsFile)
	assert.Equal(t, 33, cfg.SampleIntervalMS)
	assert.Equal(t, 340.0, cfg.RangeDegrees)
	assert.Equal(t, ADCDriverMCP3208, cfg.ADCDriver)

	banks := cfg.Banks()
	require.Len(t, banks, 2)
	assert.Equal(t, []string{"GPIO25", "GPIO33", "GPIO32", "GPIO12"}, banks[0].SelectPins)
	assert.Equal(t, "GPIO26", banks[0].EnablePin)
	assert.Equal(t, 16, banks[0].Channels)
	assert.Equal(t, []string{"GPIO23", "GPIO22", "GPIO21"}, banks[1].SelectPins)
	assert.Equal(t, 6, banks[1].Channels)
	assert.Equal(t, 1, banks[1].ADCChannel)

	assert.Equal(t, 22, cfg.TotalChannels())
	assert.Equal(t, "tcp://localhost:1883", cfg.MQTTBroker)
	assert.Equal(t, "angular-streamer", cfg.MQTTClientID, "default client id")
}

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load(writeConfig(t, `
ENDPOINT_URL = ws://example.com:8080
ADC_DRIVER = mock
BANK1_CHANNELS = 22
`))
	require.NoError(t, err)

	assert.Equal(t, 33, cfg.SampleIntervalMS)
	assert.Equal(t, 10, cfg.BufferCapacity)
	assert.Equal(t, 3, cfg.PublishMinBatch)
	assert.Equal(t, 340.0, cfg.RangeDegrees)
	assert.Equal(t, 250, cfg.ReconnectMinMS)
	assert.Empty(t, cfg.MQTTBroker, "mirror disabled by default")
}

func TestLoadErrors(t *testing.T) {
	tests := []struct {
		name    string
		content string
		errLike string
	}{
		{
			name:    "missing endpoint",
			content: "ADC_DRIVER = mock\nBANK1_CHANNELS = 22\n",
			errLike: "ENDPOINT_URL is required",
		},
		{
			name:    "non websocket endpoint",
			content: "ENDPOINT_URL = http://x\nADC_DRIVER = mock\nBANK1_CHANNELS = 22\n",
			errLike: "ws://",
		},
		{
			name:    "unknown key",
			content: "ENDPOINT_URL = ws://x\nADC_DRIVER = mock\nBANK1_CHANNELS = 22\nBOGUS = 1\n",
			errLike: "unknown config key",
		},
		{
			name:    "bad line",
			content: "ENDPOINT_URL = ws://x\nnot a key value pair\n",
			errLike: "invalid config line",
		},
		{
			name:    "unknown adc driver",
			content: "ENDPOINT_URL = ws://x\nADC_DRIVER = ads1299\nBANK1_CHANNELS = 22\n",
			errLike: "ADC_DRIVER",
		},
		{
			name:    "mcp3208 without spi device",
			content: "ENDPOINT_URL = ws://x\nADC_DRIVER = mcp3208\nBANK1_SELECT_PINS = GPIO1\nBANK1_CHANNELS = 2\n",
			errLike: "ADC_SPI_DEVICE",
		},
		{
			name: "channels exceed select lines",
			content: "ENDPOINT_URL = ws://x\nADC_DRIVER = mcp3208\nADC_SPI_DEVICE = /dev/spidev0.0\n" +
				"BANK1_SELECT_PINS = GPIO1,GPIO2,GPIO3\nBANK1_CHANNELS = 9\n",
			errLike: "does not fit",
		},
		{
			name: "backoff window inverted",
			content: "ENDPOINT_URL = ws://x\nADC_DRIVER = mock\nBANK1_CHANNELS = 22\n" +
				"RECONNECT_MIN_MS = 500\nRECONNECT_MAX_MS = 100\n",
			errLike: "RECONNECT_MAX_MS",
		},
		{
			name:    "negative interval",
			content: "ENDPOINT_URL = ws://x\nADC_DRIVER = mock\nBANK1_CHANNELS = 22\nSAMPLE_INTERVAL_MS = -5\n",
			errLike: "must be positive",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Load(writeConfig(t, tt.content))
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.errLike)
		})
	}
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.txt"))
	assert.Error(t, err)
}
