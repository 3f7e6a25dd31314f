package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func Test_ProcessConfig_Validate(t *testing.T) {
	testCases := []struct {
		name      string
		validator interface{ Validate() error }
		wantErr   bool
	}{
		{name: "log level empty", validator: &LogConfig{}},
		{name: "log level warn", validator: &LogConfig{Level: "warn"}},
		{name: "log level unknown", validator: &LogConfig{Level: "verbose"}, wantErr: true},
		{name: "pprof disabled without address", validator: &PProfConfig{}},
		{name: "pprof enabled without address", validator: &PProfConfig{Enabled: true}, wantErr: true},
		{name: "shutdown timeout set", validator: &ShutdownConfig{Timeout: time.Second}},
		{name: "shutdown timeout missing", validator: &ShutdownConfig{}, wantErr: true},
		{name: "storage memory", validator: &StorageConfig{Driver: StorageDriverMemory, Timeout: time.Second}},
		{name: "storage unknown driver", validator: &StorageConfig{Driver: "etcd", Timeout: time.Second}, wantErr: true},
		{name: "kafka without brokers", validator: &KafkaConfig{Brokers: " , ", Topic: "t", WriteTimeout: time.Second}, wantErr: true},
		{name: "breaker disabled", validator: &CircuitBreakerConfig{}},
		{name: "breaker rate out of range", validator: &CircuitBreakerConfig{Enabled: true, MaxRequests: 1, ConsecutiveFailures: 1, ErrorRatePercent: 120, OpenTimeout: time.Second}, wantErr: true},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			// when
			err := tc.validator.Validate()

			// then
			if tc.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func Test_PProfConfig_StringHidesAddressWhenDisabled(t *testing.T) {
	disabled := &PProfConfig{Addr: "localhost:6060"}
	enabled := &PProfConfig{Enabled: true, Addr: "localhost:6060"}

	assert.NotContains(t, disabled.String(), "localhost:6060")
	assert.Contains(t, enabled.String(), "address: localhost:6060")
}

func Test_KafkaConfig_BrokerList(t *testing.T) {
	c := &KafkaConfig{Brokers: "a:9092, ,b:9092 "}
	assert.Equal(t, []string{"a:9092", "b:9092"}, c.BrokerList())
}
