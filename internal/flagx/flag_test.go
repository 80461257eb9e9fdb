package flagx

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFilterArgs(t *testing.T) {
	tests := []struct {
		name    string
		args    []string
		allowed []string
		want    []string
	}{
		{"separate value", []string{"-a", ":8000", "-x", "1"}, []string{"-a"}, []string{"-a", ":8000"}},
		{"equals form", []string{"-l=debug", "-x"}, []string{"-l"}, []string{"-l=debug"}},
		{"unknown only", []string{"-x", "1", "pos"}, []string{"-a"}, []string{}},
		{"trailing flag without value", []string{"-a"}, []string{"-a"}, []string{"-a"}},
		{"dash token is not a value", []string{"-a", "-b"}, []string{"-a", "-b"}, []string{"-a", "-b"}},
		{"order preserved", []string{"-b", "2", "-z", "-a", "1"}, []string{"-a", "-b"}, []string{"-b", "2", "-a", "1"}},
		{"empty", nil, []string{"-a"}, []string{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, FilterArgs(tt.args, tt.allowed))
		})
	}
}

func TestConfigFileFlag(t *testing.T) {
	assert.Equal(t, "/etc/sundaram.yaml", ConfigFileFlag([]string{"-c", "/etc/sundaram.yaml", "-a", ":1"}))
	assert.Equal(t, "conf.json", ConfigFileFlag([]string{"-config=conf.json"}))
	assert.Equal(t, "two.json", ConfigFileFlag([]string{"-c", "one.json", "-config", "two.json"}))
	assert.Empty(t, ConfigFileFlag([]string{"-a", ":8000"}))
}
